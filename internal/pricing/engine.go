package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Engine is the quoting façade: it dispatches a request to the calculator
// for the preset's model and applies the global post-processing (file fee,
// multi-name fee, rounding, minimum-price floor). It is stateless and safe
// for concurrent use.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Quote prices one product configuration against its active preset. It fails
// rather than returning a zero price: missing preset, non-positive inputs,
// unresolvable keys and non-positive computed totals are all errors.
func (e *Engine) Quote(preset *Preset, p Params) (*Quote, error) {
	if preset == nil || !preset.IsActive || preset.Config == nil {
		return nil, ErrNoActivePreset
	}
	if res := Validate(preset.Config); !res.Valid {
		return nil, fmt.Errorf("%w: preset %s: %s", ErrInvalidConfig, preset.Key, strings.Join(res.Errors, "; "))
	}
	if len(p.Rows) > 0 {
		return e.quoteRows(preset.Config, p)
	}
	return e.quoteSingle(preset.Config, p)
}

func (e *Engine) quoteSingle(cfg Config, p Params) (*Quote, error) {
	raw, meta, err := rawQuote(cfg, p)
	if err != nil {
		return nil, err
	}

	fileFee := configFileFee(cfg)
	nameFee := extraNameFee(cfg, p.Names)
	raw += fileFee + nameFee
	if raw <= 0 {
		return nil, fmt.Errorf("%w: computed total is not positive", ErrUnpriceable)
	}

	minimum := configMinimumPrice(cfg)
	total := RoundTo99(raw, minimum)

	meta.FileFeeCents = Cents(fileFee)
	meta.NameFeeCents = Cents(nameFee)
	meta.MinimumApplied = total == Cents(minimum) && total != RoundTo99(raw, 0)
	return &Quote{
		TotalCents: total,
		UnitCents:  int64(math.Round(float64(total) / float64(p.Quantity))),
		Meta:       meta,
	}, nil
}

// quoteRows prices a mixed-size order: each row runs through the full
// single-row path (rounding and minimum included), totals are summed, and
// the file and name fees are charged once on top. The reported unit price
// is the weighted average across rows, not a per-row price list; that is a
// deliberate simplification of the buyer-facing number.
func (e *Engine) quoteRows(cfg Config, p Params) (*Quote, error) {
	minimum := configMinimumPrice(cfg)

	var totalCents int64
	var totalQty int
	rows := make([]RowQuote, 0, len(p.Rows))
	for i, row := range p.Rows {
		rp := Params{
			Quantity:   row.Quantity,
			WidthIn:    row.WidthIn,
			HeightIn:   row.HeightIn,
			SizeLabel:  row.SizeLabel,
			Material:   p.Material,
			PrintMode:  p.PrintMode,
			CutType:    p.CutType,
			Addons:     p.Addons,
			Finishings: p.Finishings,
			IsB2B:      p.IsB2B,
		}
		raw, meta, err := rawQuote(cfg, rp)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if raw <= 0 {
			return nil, fmt.Errorf("%w: row %d total is not positive", ErrUnpriceable, i)
		}
		cents := RoundTo99(raw, minimum)
		totalCents += cents
		totalQty += row.Quantity
		rows = append(rows, RowQuote{
			SizeLabel:  row.SizeLabel,
			WidthIn:    row.WidthIn,
			HeightIn:   row.HeightIn,
			Quantity:   row.Quantity,
			TotalCents: cents,
			UnitPrice:  meta.UnitPrice,
		})
	}
	if totalQty <= 0 {
		return nil, ErrInvalidQuantity
	}

	fileFee := Cents(configFileFee(cfg))
	nameFee := Cents(extraNameFee(cfg, p.Names))
	totalCents += fileFee + nameFee

	return &Quote{
		TotalCents: totalCents,
		UnitCents:  int64(math.Round(float64(totalCents) / float64(totalQty))),
		Meta: Meta{
			Model:        cfg.Model(),
			RawTotal:     float64(totalCents) / 100,
			FileFeeCents: fileFee,
			NameFeeCents: nameFee,
			Rows:         rows,
		},
	}, nil
}

// MinQuote prices the preset's cheapest valid configuration. It backs the
// denormalized product minPrice display cache; the result goes stale after a
// preset edit and must be explicitly refreshed.
func (e *Engine) MinQuote(preset *Preset) (*Quote, error) {
	if preset == nil || !preset.IsActive || preset.Config == nil {
		return nil, ErrNoActivePreset
	}
	p := Params{Quantity: 1, WidthIn: 12, HeightIn: 12}
	switch c := preset.Config.(type) {
	case *QtyTieredConfig:
		if len(c.Tiers) > 0 && c.Tiers[0].MinQty > 1 {
			p.Quantity = c.Tiers[0].MinQty
		}
	case *QtyOptionsConfig:
		if len(c.Sizes) > 0 {
			p.SizeLabel = c.Sizes[0].Label
			if len(c.Sizes[0].Tiers) > 0 && c.Sizes[0].Tiers[0].Qty > 1 {
				p.Quantity = c.Sizes[0].Tiers[0].Qty
			}
		}
	case *CostPlusConfig:
		p.Material = firstKey(mapKeys(c.Materials))
		p.PrintMode = firstKey(mapKeysInk(c.InkCosts))
		p.CutType = CutRectangular
	}
	return e.Quote(preset, p)
}

func rawQuote(cfg Config, p Params) (float64, Meta, error) {
	switch c := cfg.(type) {
	case *QtyTieredConfig:
		return quoteQtyTiered(c, p)
	case *AreaTieredConfig:
		return quoteAreaTiered(c, p)
	case *QtyOptionsConfig:
		return quoteQtyOptions(c, p)
	case *CostPlusConfig:
		return quoteCostPlus(c, p)
	}
	return 0, Meta{}, fmt.Errorf("%w: unknown configuration type %T", ErrInvalidConfig, cfg)
}

func configMinimumPrice(cfg Config) float64 {
	switch c := cfg.(type) {
	case *QtyTieredConfig:
		return c.MinimumPrice
	case *AreaTieredConfig:
		return c.MinimumPrice
	case *QtyOptionsConfig:
		return c.MinimumPrice
	case *CostPlusConfig:
		return c.MinimumPrice
	}
	return 0
}

func configFileFee(cfg Config) float64 {
	switch c := cfg.(type) {
	case *QtyTieredConfig:
		return c.FileFee
	case *AreaTieredConfig:
		return c.FileFee
	case *QtyOptionsConfig:
		return c.FileFee
	case *CostPlusConfig:
		return c.FileFee
	}
	return 0
}

// extraNameFee charges for each name beyond the first on multi-name orders.
// Only QTY_OPTIONS presets define a per-name fee.
func extraNameFee(cfg Config, names int) float64 {
	if names <= 1 {
		return 0
	}
	if c, ok := cfg.(*QtyOptionsConfig); ok {
		return c.ExtraNameFee * float64(names-1)
	}
	return 0
}

func mapKeys(m map[string]CostPlusMaterial) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func mapKeysInk(m map[string]InkCost) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// firstKey picks deterministically so MinQuote is stable across calls.
func firstKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return keys[0]
}
