package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"printworks/internal/pricing"
)

// Stats contains seed operation counters.
type Stats struct {
	Presets  int
	Products int
}

type presetSeed struct {
	key    string
	name   string
	config pricing.Config
}

type productSeed struct {
	name      string
	category  string
	presetKey string
}

// Run seeds one preset per pricing model plus sample products, idempotently
// and in one transaction, so a fresh database can quote immediately.
func Run(ctx context.Context, db *pgxpool.Pool, engine *pricing.Engine) (Stats, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stats := Stats{}
	presetIDs := map[string]uuid.UUID{}
	for _, ps := range defaultPresets() {
		id, inserted, err := ensurePreset(ctx, tx, ps)
		if err != nil {
			return Stats{}, err
		}
		presetIDs[ps.key] = id
		if inserted {
			stats.Presets++
		}
	}

	for _, pr := range defaultProducts() {
		inserted, err := ensureProduct(ctx, tx, engine, pr, presetIDs)
		if err != nil {
			return Stats{}, err
		}
		if inserted {
			stats.Products++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}
	return stats, nil
}

func ensurePreset(ctx context.Context, tx pgx.Tx, ps presetSeed) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM presets WHERE key = $1`, ps.key).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, false, fmt.Errorf("check preset %s: %w", ps.key, err)
	}

	if res := pricing.Validate(ps.config); !res.Valid {
		return uuid.Nil, false, fmt.Errorf("seed preset %s: %w: %v", ps.key, pricing.ErrInvalidConfig, res.Errors)
	}
	raw, err := pricing.EncodeConfig(ps.config)
	if err != nil {
		return uuid.Nil, false, err
	}

	id = uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO presets (id, key, name, model, config, is_active, version)
		VALUES ($1, $2, $3, $4, $5, true, 1)
	`, id, ps.key, ps.name, string(ps.config.Model()), raw)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("insert preset %s: %w", ps.key, err)
	}
	return id, true, nil
}

func ensureProduct(ctx context.Context, tx pgx.Tx, engine *pricing.Engine, pr productSeed, presetIDs map[string]uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE name = $1)`, pr.name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product %s: %w", pr.name, err)
	}
	if exists {
		return false, nil
	}

	presetID, ok := presetIDs[pr.presetKey]
	if !ok {
		return false, fmt.Errorf("product %s references unknown preset %s", pr.name, pr.presetKey)
	}

	var (
		model string
		raw   []byte
	)
	if err := tx.QueryRow(ctx, `SELECT model, config FROM presets WHERE id = $1`, presetID).Scan(&model, &raw); err != nil {
		return false, fmt.Errorf("load preset %s: %w", pr.presetKey, err)
	}
	m, err := pricing.ParseModel(model)
	if err != nil {
		return false, err
	}
	cfg, err := pricing.DecodeConfig(m, raw)
	if err != nil {
		return false, err
	}
	quote, err := engine.MinQuote(&pricing.Preset{
		ID: presetID, Key: pr.presetKey, Model: m, Config: cfg, IsActive: true, Version: 1,
	})
	if err != nil {
		return false, fmt.Errorf("min quote for product %s: %w", pr.name, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO products (id, name, category, pricing_preset_id, base_price_cents, min_price_cents, is_active)
		VALUES ($1, $2, $3, $4, $5, $5, true)
	`, uuid.New(), pr.name, pr.category, presetID, quote.TotalCents)
	if err != nil {
		return false, fmt.Errorf("insert product %s: %w", pr.name, err)
	}
	return true, nil
}

func defaultPresets() []presetSeed {
	return []presetSeed{
		{
			key:  "stickers-qty",
			name: "Stickers (quantity tiers)",
			config: &pricing.QtyTieredConfig{
				Tiers: []pricing.QtyTier{
					{MinQty: 1, UnitPrice: 1.50},
					{MinQty: 50, UnitPrice: 0.95},
					{MinQty: 100, UnitPrice: 0.75},
				},
				MinimumPrice: 25,
				FileFee:      0,
			},
		},
		{
			key:  "banners-area",
			name: "Banners (area tiers)",
			config: &pricing.AreaTieredConfig{
				Tiers: []pricing.AreaTier{
					{UpToSqft: 2, Rate: 16},
					{UpToSqft: 20, Rate: 13},
					{UpToSqft: 100, Rate: 11},
				},
				Materials: map[string]pricing.AreaMaterial{
					"vinyl-13oz": {Multiplier: 1},
					"mesh":       {Multiplier: 1.15},
				},
				Finishings: []pricing.Fee{
					{Key: "hems", Mode: pricing.FeeFlat, Amount: 5},
					{Key: "grommets", Mode: pricing.FeePerUnit, Amount: 0.5},
				},
				MinimumPrice: 20,
				FileFee:      0,
			},
		},
		{
			key:  "name-labels-options",
			name: "Name labels (size options)",
			config: &pricing.QtyOptionsConfig{
				Sizes: []pricing.SizeOption{
					{Label: "small", Tiers: []pricing.SizeTier{
						{Qty: 1, UnitPrice: 0.40},
						{Qty: 100, UnitPrice: 0.25},
					}},
					{Label: "large", Tiers: []pricing.SizeTier{
						{Qty: 1, UnitPrice: 0.60},
						{Qty: 100, UnitPrice: 0.40},
					}},
				},
				Addons: []pricing.Fee{
					{Key: "laminate", Mode: pricing.FeePerUnit, Amount: 0.1},
				},
				ExtraNameFee: 2.5,
				MinimumPrice: 12,
				FileFee:      0,
			},
		},
		{
			key:  "signage-cost-plus",
			name: "Signage (cost plus)",
			config: &pricing.CostPlusConfig{
				Materials: map[string]pricing.CostPlusMaterial{
					"acm-3mm":   {CostPerSqft: 2.8},
					"coroplast": {CostPerSqft: 1.1},
				},
				InkCosts: map[string]pricing.InkCost{
					"uv":    {InkPerSqft: 0.35, SqmPerHour: 18},
					"latex": {InkPerSqft: 0.28, SqmPerHour: 22},
				},
				MachineLabor: pricing.MachineLabor{HourlyRate: 45},
				Cutting: pricing.CuttingRates{
					RectangularPerFt: 0.3,
					ContourPerSqft:   1.2,
					ContourMinimum:   6,
				},
				Waste: pricing.Curve{Tiers: []pricing.TierPoint{
					{At: 1, Factor: 18},
					{At: 10, Factor: 10},
					{At: 50, Factor: 6},
				}},
				QtyEfficiency: pricing.Curve{Tiers: []pricing.TierPoint{
					{At: 1, Factor: 1},
					{At: 25, Factor: 0.85},
					{At: 100, Factor: 0.7},
				}},
				Markup: pricing.MarkupCurves{
					Floor: 1.35,
					RetailTiers: []pricing.TierPoint{
						{At: 1, Factor: 2.6},
						{At: 20, Factor: 2.1},
						{At: 100, Factor: 1.7},
					},
					B2BTiers: []pricing.TierPoint{
						{At: 1, Factor: 2.2},
						{At: 20, Factor: 1.8},
						{At: 100, Factor: 1.5},
					},
				},
				FileFee:      10,
				MinimumPrice: 35,
			},
		},
	}
}

func defaultProducts() []productSeed {
	return []productSeed{
		{name: "Die-cut stickers", category: "stickers", presetKey: "stickers-qty"},
		{name: "Kiss-cut sticker sheets", category: "stickers", presetKey: "stickers-qty"},
		{name: "Outdoor banner", category: "banners", presetKey: "banners-area"},
		{name: "Iron-on name labels", category: "labels", presetKey: "name-labels-options"},
		{name: "Rigid yard sign", category: "signage", presetKey: "signage-cost-plus"},
	}
}
