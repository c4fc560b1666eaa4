package bulkadjust

import (
	"fmt"
	"math"

	"printworks/internal/pricing"
)

// Flags selects which configuration sub-fields a percentage adjustment
// touches. For cost-plus presets the Tiers flag scales the cost basis
// (material, ink, labor and cutting rates); the waste, efficiency and markup
// factor curves are multipliers, not prices, and are never scaled.
type Flags struct {
	Tiers        bool `json:"tiers"`
	Addons       bool `json:"addons"`
	Finishings   bool `json:"finishings"`
	MinimumPrice bool `json:"minimumPrice"`
	FileFee      bool `json:"fileFee"`
}

func (f Flags) any() bool {
	return f.Tiers || f.Addons || f.Finishings || f.MinimumPrice || f.FileFee
}

// Percent bounds: a configuration cannot be reduced to zero or below, and a
// 5x+ increase requires explicit confirmation upstream.
const (
	minPercent = -95.0
	maxPercent = 500.0
)

// ErrBadPercent is returned for a percentage outside (-95, 500].
var ErrBadPercent = fmt.Errorf("percent must be greater than %v and at most %v", minPercent, maxPercent)

func checkPercent(percent float64) error {
	if percent <= minPercent || percent > maxPercent {
		return ErrBadPercent
	}
	return nil
}

// scaleFee adjusts a flat currency amount, rounded to 2 decimal places.
func scaleFee(v, percent float64) float64 {
	return roundTo(scale(v, percent), 2)
}

// scaleRate adjusts a per-unit rate, rounded to 3 decimal places. Rates keep
// finer precision because they are later multiplied by large areas and
// quantities.
func scaleRate(v, percent float64) float64 {
	return roundTo(scale(v, percent), 3)
}

func scale(v, percent float64) float64 {
	adjusted := v * (1 + percent/100)
	if adjusted < 0 {
		return 0
	}
	return adjusted
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// AdjustConfig returns a fresh configuration with the percentage applied to
// every numeric field selected by flags. The input is never mutated, which
// keeps preview and apply symmetric by construction.
func AdjustConfig(cfg pricing.Config, percent float64, flags Flags) (pricing.Config, error) {
	if err := checkPercent(percent); err != nil {
		return nil, err
	}
	if !flags.any() {
		return nil, fmt.Errorf("no adjustment fields selected")
	}

	switch c := cfg.(type) {
	case *pricing.QtyTieredConfig:
		return adjustQtyTiered(c, percent, flags), nil
	case *pricing.AreaTieredConfig:
		return adjustAreaTiered(c, percent, flags), nil
	case *pricing.QtyOptionsConfig:
		return adjustQtyOptions(c, percent, flags), nil
	case *pricing.CostPlusConfig:
		return adjustCostPlus(c, percent, flags), nil
	}
	return nil, fmt.Errorf("%w: unknown configuration type %T", pricing.ErrInvalidConfig, cfg)
}

func adjustQtyTiered(c *pricing.QtyTieredConfig, percent float64, flags Flags) *pricing.QtyTieredConfig {
	out := &pricing.QtyTieredConfig{
		Tiers:        make([]pricing.QtyTier, len(c.Tiers)),
		MinimumPrice: c.MinimumPrice,
		FileFee:      c.FileFee,
	}
	copy(out.Tiers, c.Tiers)
	if flags.Tiers {
		for i := range out.Tiers {
			out.Tiers[i].UnitPrice = scaleRate(out.Tiers[i].UnitPrice, percent)
		}
	}
	adjustCommonFees(&out.MinimumPrice, &out.FileFee, percent, flags)
	return out
}

func adjustAreaTiered(c *pricing.AreaTieredConfig, percent float64, flags Flags) *pricing.AreaTieredConfig {
	out := &pricing.AreaTieredConfig{
		Tiers:        make([]pricing.AreaTier, len(c.Tiers)),
		Materials:    copyMaterials(c.Materials),
		Finishings:   copyFees(c.Finishings),
		Addons:       copyFees(c.Addons),
		MinimumPrice: c.MinimumPrice,
		FileFee:      c.FileFee,
	}
	copy(out.Tiers, c.Tiers)
	if flags.Tiers {
		for i := range out.Tiers {
			out.Tiers[i].Rate = scaleRate(out.Tiers[i].Rate, percent)
		}
	}
	if flags.Finishings {
		scaleFeeList(out.Finishings, percent)
	}
	if flags.Addons {
		scaleFeeList(out.Addons, percent)
	}
	adjustCommonFees(&out.MinimumPrice, &out.FileFee, percent, flags)
	return out
}

func adjustQtyOptions(c *pricing.QtyOptionsConfig, percent float64, flags Flags) *pricing.QtyOptionsConfig {
	out := &pricing.QtyOptionsConfig{
		Sizes:        make([]pricing.SizeOption, len(c.Sizes)),
		Addons:       copyFees(c.Addons),
		ExtraNameFee: c.ExtraNameFee,
		MinimumPrice: c.MinimumPrice,
		FileFee:      c.FileFee,
	}
	for i, s := range c.Sizes {
		tiers := make([]pricing.SizeTier, len(s.Tiers))
		copy(tiers, s.Tiers)
		if flags.Tiers {
			for j := range tiers {
				tiers[j].UnitPrice = scaleRate(tiers[j].UnitPrice, percent)
			}
		}
		out.Sizes[i] = pricing.SizeOption{Label: s.Label, Tiers: tiers}
	}
	if flags.Addons {
		scaleFeeList(out.Addons, percent)
		out.ExtraNameFee = scaleFee(out.ExtraNameFee, percent)
	}
	adjustCommonFees(&out.MinimumPrice, &out.FileFee, percent, flags)
	return out
}

func adjustCostPlus(c *pricing.CostPlusConfig, percent float64, flags Flags) *pricing.CostPlusConfig {
	out := &pricing.CostPlusConfig{
		Materials:     make(map[string]pricing.CostPlusMaterial, len(c.Materials)),
		InkCosts:      make(map[string]pricing.InkCost, len(c.InkCosts)),
		MachineLabor:  c.MachineLabor,
		Cutting:       c.Cutting,
		Waste:         copyCurve(c.Waste),
		QtyEfficiency: copyCurve(c.QtyEfficiency),
		Markup: pricing.MarkupCurves{
			Floor:       c.Markup.Floor,
			RetailTiers: copyPoints(c.Markup.RetailTiers),
			B2BTiers:    copyPoints(c.Markup.B2BTiers),
		},
		FileFee:      c.FileFee,
		MinimumPrice: c.MinimumPrice,
	}
	for k, v := range c.Materials {
		out.Materials[k] = v
	}
	for k, v := range c.InkCosts {
		out.InkCosts[k] = v
	}

	if flags.Tiers {
		for k, m := range out.Materials {
			m.CostPerSqft = scaleRate(m.CostPerSqft, percent)
			out.Materials[k] = m
		}
		for k, ic := range out.InkCosts {
			ic.InkPerSqft = scaleRate(ic.InkPerSqft, percent)
			out.InkCosts[k] = ic
		}
		out.MachineLabor.HourlyRate = scaleRate(out.MachineLabor.HourlyRate, percent)
		out.Cutting.RectangularPerFt = scaleRate(out.Cutting.RectangularPerFt, percent)
		out.Cutting.ContourPerSqft = scaleRate(out.Cutting.ContourPerSqft, percent)
		out.Cutting.ContourMinimum = scaleFee(out.Cutting.ContourMinimum, percent)
	}
	adjustCommonFees(&out.MinimumPrice, &out.FileFee, percent, flags)
	return out
}

func adjustCommonFees(minimumPrice, fileFee *float64, percent float64, flags Flags) {
	if flags.MinimumPrice {
		*minimumPrice = scaleFee(*minimumPrice, percent)
	}
	if flags.FileFee {
		*fileFee = scaleFee(*fileFee, percent)
	}
}

func scaleFeeList(fees []pricing.Fee, percent float64) {
	for i := range fees {
		switch fees[i].Mode {
		case pricing.FeePerUnit:
			fees[i].Amount = scaleRate(fees[i].Amount, percent)
		default:
			fees[i].Amount = scaleFee(fees[i].Amount, percent)
		}
	}
}

func copyFees(fees []pricing.Fee) []pricing.Fee {
	if fees == nil {
		return nil
	}
	out := make([]pricing.Fee, len(fees))
	copy(out, fees)
	return out
}

func copyMaterials(m map[string]pricing.AreaMaterial) map[string]pricing.AreaMaterial {
	if m == nil {
		return nil
	}
	out := make(map[string]pricing.AreaMaterial, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyCurve(c pricing.Curve) pricing.Curve {
	return pricing.Curve{Tiers: copyPoints(c.Tiers)}
}

func copyPoints(points []pricing.TierPoint) []pricing.TierPoint {
	if points == nil {
		return nil
	}
	out := make([]pricing.TierPoint, len(points))
	copy(out, points)
	return out
}
