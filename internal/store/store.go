package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"printworks/internal/pricing"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when a transactional preset update loses an
// optimistic concurrency check: the preset changed between preview and apply.
var ErrVersionConflict = errors.New("preset version conflict")

// Store is the pgx-backed Preset/Product store.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Product is a sellable configuration referencing at most one preset. The
// price columns are a display cache computed from the preset, not the
// authoritative checkout price.
type Product struct {
	ID             uuid.UUID
	Name           string
	Category       string
	PresetID       *uuid.UUID
	BasePriceCents int64
	MinPriceCents  int64
	IsActive       bool
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := s.db.QueryRow(ctx, `
		SELECT id, name, category, pricing_preset_id, base_price_cents, min_price_cents, is_active
		FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Category, &p.PresetID, &p.BasePriceCents, &p.MinPriceCents, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ActiveProductsByCategory lists active products in a category, including
// those without a preset; callers filter as needed.
func (s *Store) ActiveProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, category, pricing_preset_id, base_price_cents, min_price_cents, is_active
		FROM products
		WHERE category = $1 AND is_active
		ORDER BY name
	`, category)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PresetID, &p.BasePriceCents, &p.MinPriceCents, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPreset(ctx context.Context, id uuid.UUID) (*pricing.Preset, error) {
	return scanPreset(s.db.QueryRow(ctx, `
		SELECT id, key, name, model, config, is_active, version
		FROM presets WHERE id = $1
	`, id))
}

func (s *Store) GetPresetByKey(ctx context.Context, key string) (*pricing.Preset, error) {
	return scanPreset(s.db.QueryRow(ctx, `
		SELECT id, key, name, model, config, is_active, version
		FROM presets WHERE key = $1
	`, key))
}

// PresetsByIDs loads presets in a stable key order.
func (s *Store) PresetsByIDs(ctx context.Context, ids []uuid.UUID) ([]*pricing.Preset, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, key, name, model, config, is_active, version
		FROM presets WHERE id = ANY($1)
		ORDER BY key
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var out []*pricing.Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (*pricing.Preset, error) {
	var (
		p     pricing.Preset
		model string
		raw   []byte
	)
	if err := row.Scan(&p.ID, &p.Key, &p.Name, &model, &raw, &p.IsActive, &p.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("preset: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scan preset: %w", err)
	}
	m, err := pricing.ParseModel(model)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Key, err)
	}
	p.Model = m
	cfg, err := pricing.DecodeConfig(m, raw)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Key, err)
	}
	p.Config = cfg
	return &p, nil
}

// Usage is a preset's referencing-product footprint, broken down by product
// category. A preset spanning more than one category is shared.
type Usage struct {
	ByCategory map[string]int
}

func (u Usage) Total() int {
	total := 0
	for _, n := range u.ByCategory {
		total += n
	}
	return total
}

func (u Usage) Categories() []string {
	cats := make([]string, 0, len(u.ByCategory))
	for c := range u.ByCategory {
		cats = append(cats, c)
	}
	return cats
}

func (u Usage) Shared() bool {
	return len(u.ByCategory) > 1
}

// PresetUsage computes usage sets for the given presets over active products.
func (s *Store) PresetUsage(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Usage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT pricing_preset_id, category, COUNT(*)
		FROM products
		WHERE is_active AND pricing_preset_id = ANY($1)
		GROUP BY pricing_preset_id, category
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("preset usage: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]Usage, len(ids))
	for rows.Next() {
		var (
			id       uuid.UUID
			category string
			count    int
		)
		if err := rows.Scan(&id, &category, &count); err != nil {
			return nil, fmt.Errorf("scan preset usage: %w", err)
		}
		u, ok := out[id]
		if !ok {
			u = Usage{ByCategory: map[string]int{}}
		}
		u.ByCategory[category] = count
		out[id] = u
	}
	return out, rows.Err()
}

// InsertPreset persists a new preset after structural validation.
func (s *Store) InsertPreset(ctx context.Context, p *pricing.Preset) error {
	if res := pricing.Validate(p.Config); !res.Valid {
		return fmt.Errorf("%w: %v", pricing.ErrInvalidConfig, res.Errors)
	}
	raw, err := pricing.EncodeConfig(p.Config)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO presets (id, key, name, model, config, is_active, version)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
	`, p.ID, p.Key, p.Name, string(p.Model), raw, p.IsActive)
	if err != nil {
		return fmt.Errorf("insert preset: %w", err)
	}
	return nil
}

// UpdatePresetConfig is the manual-edit path. It validates before writing and
// carries the same optimistic version check as the bulk path.
func (s *Store) UpdatePresetConfig(ctx context.Context, id uuid.UUID, version int64, cfg pricing.Config) error {
	if res := pricing.Validate(cfg); !res.Valid {
		return fmt.Errorf("%w: %v", pricing.ErrInvalidConfig, res.Errors)
	}
	raw, err := pricing.EncodeConfig(cfg)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE presets SET config = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3
	`, id, raw, version)
	if err != nil {
		return fmt.Errorf("update preset config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

// UpdateProductMinPrice refreshes the denormalized display cache. Best
// effort by contract: callers log failures and move on.
func (s *Store) UpdateProductMinPrice(ctx context.Context, id uuid.UUID, minPriceCents int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE products SET min_price_cents = $2, updated_at = now() WHERE id = $1
	`, id, minPriceCents)
	if err != nil {
		return fmt.Errorf("update product min price: %w", err)
	}
	return nil
}
