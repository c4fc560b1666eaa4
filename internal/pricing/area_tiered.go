package pricing

import "fmt"

// selectAreaRate picks the first tier whose upToSqft covers the piece area,
// a ceiling match. Areas past the last threshold use the last tier's rate.
func selectAreaRate(tiers []AreaTier, area float64) float64 {
	for _, t := range tiers {
		if t.UpToSqft >= area {
			return t.Rate
		}
	}
	return tiers[len(tiers)-1].Rate
}

func quoteAreaTiered(c *AreaTieredConfig, p Params) (float64, Meta, error) {
	if p.Quantity <= 0 {
		return 0, Meta{}, ErrInvalidQuantity
	}
	if p.WidthIn <= 0 || p.HeightIn <= 0 {
		return 0, Meta{}, ErrInvalidDimensions
	}

	area := p.WidthIn * p.HeightIn / 144
	rate := selectAreaRate(c.Tiers, area)
	raw := rate * area * float64(p.Quantity)

	if p.Material != "" {
		m, ok := c.Materials[p.Material]
		if !ok {
			return 0, Meta{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, p.Material)
		}
		raw *= m.Multiplier
	}

	finishing, err := resolveFees(p.Finishings, c.Finishings, p.Quantity)
	if err != nil {
		return 0, Meta{}, fmt.Errorf("finishings: %w", err)
	}
	addon, err := resolveFees(p.Addons, c.Addons, p.Quantity)
	if err != nil {
		return 0, Meta{}, fmt.Errorf("addons: %w", err)
	}
	raw += finishing + addon

	return raw, Meta{
		Model:          ModelAreaTiered,
		RawTotal:       raw,
		UnitPrice:      raw / float64(p.Quantity),
		AddonCents:     Cents(addon),
		FinishingCents: Cents(finishing),
	}, nil
}

// resolveFees sums the selected addon/finishing fees. Flat fees are charged
// once per order, per-unit fees scale with quantity. An unrecognized key is
// a hard input failure, not a zero fee.
func resolveFees(selected []string, fees []Fee, quantity int) (float64, error) {
	var total float64
	for _, key := range selected {
		found := false
		for _, f := range fees {
			if f.Key != key {
				continue
			}
			found = true
			switch f.Mode {
			case FeePerUnit:
				total += f.Amount * float64(quantity)
			default:
				total += f.Amount
			}
			break
		}
		if !found {
			return 0, fmt.Errorf("unknown option %q", key)
		}
	}
	return total, nil
}
