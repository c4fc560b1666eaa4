package bulkadjust

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"printworks/internal/pricing"
	"printworks/internal/store"
)

// Mode distinguishes a dry run from an application.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeApply   Mode = "apply"
)

// Status classifies each preset in a run.
type Status string

const (
	StatusReady         Status = "ready"
	StatusSkippedShared Status = "skipped_shared"
	StatusInvalid       Status = "invalid"
)

// Request describes one bulk adjustment over a product category.
type Request struct {
	Category             string  `json:"category"`
	Percent              float64 `json:"percent"`
	Adjust               Flags   `json:"adjust"`
	IncludeSharedPresets bool    `json:"includeSharedPresets"`
	Mode                 Mode    `json:"mode"`
}

// UsageSummary reports how widely a preset is referenced. A preset whose
// categories span beyond the target is shared and protected by default.
type UsageSummary struct {
	TotalProducts int      `json:"totalProducts"`
	InCategory    int      `json:"inCategory"`
	Categories    []string `json:"categories"`
}

// Sample shows one representative field's before/after values so an admin
// can sanity-check a preview at a glance.
type Sample struct {
	Field  string  `json:"field"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// PresetResult is the per-preset outcome of a run.
type PresetResult struct {
	PresetID uuid.UUID    `json:"presetId"`
	Key      string       `json:"key"`
	Name     string       `json:"name"`
	Status   Status       `json:"status"`
	Usage    UsageSummary `json:"usage"`
	Sample   *Sample      `json:"sample,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// Report summarizes a run. Previews are always computable even when some
// presets are invalid or skipped, so the valid subset can still be applied.
type Report struct {
	TouchedPresets    int            `json:"touchedPresets"`
	TouchedProducts   int            `json:"touchedProducts"`
	SkippedShared     int            `json:"skippedShared"`
	InvalidConfigs    int            `json:"invalidConfigs"`
	Applied           bool           `json:"applied"`
	MinPriceRefreshed int            `json:"minPriceRefreshed"`
	Results           []PresetResult `json:"results"`
}

// Store is the slice of the preset/product store the tool needs.
type Store interface {
	ActiveProductsByCategory(ctx context.Context, category string) ([]store.Product, error)
	PresetUsage(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]store.Usage, error)
	PresetsByIDs(ctx context.Context, ids []uuid.UUID) ([]*pricing.Preset, error)
	ApplyBulk(ctx context.Context, run store.AuditRun, changes []store.PresetChange) error
	UpdateProductMinPrice(ctx context.Context, id uuid.UUID, minPriceCents int64) error
}

// Tool runs bulk price adjustments over every preset used by active products
// in a category.
type Tool struct {
	store  Store
	engine *pricing.Engine
}

func New(st Store, engine *pricing.Engine) *Tool {
	return &Tool{store: st, engine: engine}
}

// Run executes a preview or apply. Apply writes all ready presets and their
// audit snapshots in one transaction, then refreshes each touched product's
// minPrice cache best-effort.
func (t *Tool) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if req.Mode != ModePreview && req.Mode != ModeApply {
		return nil, fmt.Errorf("mode must be %q or %q", ModePreview, ModeApply)
	}
	if err := checkPercent(req.Percent); err != nil {
		return nil, err
	}
	if !req.Adjust.any() {
		return nil, fmt.Errorf("no adjustment fields selected")
	}

	products, err := t.store.ActiveProductsByCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{}
	var presetIDs []uuid.UUID
	touchedProducts := 0
	for _, p := range products {
		if p.PresetID == nil {
			continue
		}
		touchedProducts++
		if !seen[*p.PresetID] {
			seen[*p.PresetID] = true
			presetIDs = append(presetIDs, *p.PresetID)
		}
	}

	report := &Report{TouchedProducts: touchedProducts, Results: []PresetResult{}}
	if len(presetIDs) == 0 {
		return report, nil
	}

	usage, err := t.store.PresetUsage(ctx, presetIDs)
	if err != nil {
		return nil, err
	}
	presets, err := t.store.PresetsByIDs(ctx, presetIDs)
	if err != nil {
		return nil, err
	}

	var changes []store.PresetChange
	adjusted := map[uuid.UUID]*pricing.Preset{}
	for _, preset := range presets {
		u := usage[preset.ID]
		cats := u.Categories()
		sort.Strings(cats)
		res := PresetResult{
			PresetID: preset.ID,
			Key:      preset.Key,
			Name:     preset.Name,
			Usage: UsageSummary{
				TotalProducts: u.Total(),
				InCategory:    u.ByCategory[req.Category],
				Categories:    cats,
			},
		}

		if u.Shared() && !req.IncludeSharedPresets {
			res.Status = StatusSkippedShared
			report.SkippedShared++
			report.Results = append(report.Results, res)
			continue
		}

		after, err := AdjustConfig(preset.Config, req.Percent, req.Adjust)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", preset.Key, err)
		}
		if v := pricing.Validate(after); !v.Valid {
			res.Status = StatusInvalid
			res.Errors = v.Errors
			report.InvalidConfigs++
			report.Results = append(report.Results, res)
			continue
		}

		res.Status = StatusReady
		res.Sample = sampleChange(preset.Config, after, req.Adjust)
		report.TouchedPresets++
		report.Results = append(report.Results, res)

		changes = append(changes, store.PresetChange{
			PresetID: preset.ID,
			Version:  preset.Version,
			Before:   preset.Config,
			After:    after,
		})
		adjusted[preset.ID] = &pricing.Preset{
			ID:       preset.ID,
			Key:      preset.Key,
			Name:     preset.Name,
			Model:    preset.Model,
			Config:   after,
			IsActive: preset.IsActive,
			Version:  preset.Version + 1,
		}
	}

	if req.Mode != ModeApply {
		return report, nil
	}

	run := store.AuditRun{RunID: uuid.New(), Category: req.Category, Percent: req.Percent}
	if err := t.store.ApplyBulk(ctx, run, changes); err != nil {
		return nil, err
	}
	report.Applied = true

	// Display-cache refresh is best-effort and non-transactional: a failure
	// here never rolls back the price change that triggered it.
	for _, p := range products {
		if p.PresetID == nil {
			continue
		}
		preset, ok := adjusted[*p.PresetID]
		if !ok {
			continue
		}
		q, err := t.engine.MinQuote(preset)
		if err != nil {
			log.Printf("bulkadjust: min price requote for product %s failed: %v", p.ID, err)
			continue
		}
		if err := t.store.UpdateProductMinPrice(ctx, p.ID, q.TotalCents); err != nil {
			log.Printf("bulkadjust: min price refresh for product %s failed: %v", p.ID, err)
			continue
		}
		report.MinPriceRefreshed++
	}

	return report, nil
}

// sampleChange picks the first adjusted field, in flag priority order, and
// reports its before/after values.
func sampleChange(before, after pricing.Config, flags Flags) *Sample {
	if flags.Tiers {
		switch b := before.(type) {
		case *pricing.QtyTieredConfig:
			a := after.(*pricing.QtyTieredConfig)
			if len(b.Tiers) > 0 {
				return &Sample{Field: "tiers[0].unitPrice", Before: b.Tiers[0].UnitPrice, After: a.Tiers[0].UnitPrice}
			}
		case *pricing.AreaTieredConfig:
			a := after.(*pricing.AreaTieredConfig)
			if len(b.Tiers) > 0 {
				return &Sample{Field: "tiers[0].rate", Before: b.Tiers[0].Rate, After: a.Tiers[0].Rate}
			}
		case *pricing.QtyOptionsConfig:
			a := after.(*pricing.QtyOptionsConfig)
			if len(b.Sizes) > 0 && len(b.Sizes[0].Tiers) > 0 {
				return &Sample{Field: "sizes[0].tiers[0].unitPrice", Before: b.Sizes[0].Tiers[0].UnitPrice, After: a.Sizes[0].Tiers[0].UnitPrice}
			}
		case *pricing.CostPlusConfig:
			a := after.(*pricing.CostPlusConfig)
			if key := firstMaterialKey(b.Materials); key != "" {
				return &Sample{
					Field:  fmt.Sprintf("materials[%s].costPerSqft", key),
					Before: b.Materials[key].CostPerSqft,
					After:  a.Materials[key].CostPerSqft,
				}
			}
		}
	}
	if flags.Addons {
		if s := sampleFeeList(before, after, "addons"); s != nil {
			return s
		}
	}
	if flags.Finishings {
		if s := sampleFeeList(before, after, "finishings"); s != nil {
			return s
		}
	}
	if flags.MinimumPrice {
		return &Sample{Field: "minimumPrice", Before: configMinimum(before), After: configMinimum(after)}
	}
	if flags.FileFee {
		return &Sample{Field: "fileFee", Before: configFileFee(before), After: configFileFee(after)}
	}
	return nil
}

func sampleFeeList(before, after pricing.Config, field string) *Sample {
	pick := func(cfg pricing.Config) []pricing.Fee {
		switch c := cfg.(type) {
		case *pricing.AreaTieredConfig:
			if field == "finishings" {
				return c.Finishings
			}
			return c.Addons
		case *pricing.QtyOptionsConfig:
			if field == "addons" {
				return c.Addons
			}
		}
		return nil
	}
	b, a := pick(before), pick(after)
	if len(b) == 0 || len(a) == 0 {
		return nil
	}
	return &Sample{Field: field + "[0].amount", Before: b[0].Amount, After: a[0].Amount}
}

func configMinimum(cfg pricing.Config) float64 {
	switch c := cfg.(type) {
	case *pricing.QtyTieredConfig:
		return c.MinimumPrice
	case *pricing.AreaTieredConfig:
		return c.MinimumPrice
	case *pricing.QtyOptionsConfig:
		return c.MinimumPrice
	case *pricing.CostPlusConfig:
		return c.MinimumPrice
	}
	return 0
}

func configFileFee(cfg pricing.Config) float64 {
	switch c := cfg.(type) {
	case *pricing.QtyTieredConfig:
		return c.FileFee
	case *pricing.AreaTieredConfig:
		return c.FileFee
	case *pricing.QtyOptionsConfig:
		return c.FileFee
	case *pricing.CostPlusConfig:
		return c.FileFee
	}
	return 0
}

func firstMaterialKey(m map[string]pricing.CostPlusMaterial) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return keys[0]
}
