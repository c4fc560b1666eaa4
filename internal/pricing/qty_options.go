package pricing

import "fmt"

// selectSizeTier is the floor match within one named size's tier ladder.
func selectSizeTier(tiers []SizeTier, quantity int) float64 {
	unit := tiers[0].UnitPrice
	for _, t := range tiers {
		if t.Qty > quantity {
			break
		}
		unit = t.UnitPrice
	}
	return unit
}

func quoteQtyOptions(c *QtyOptionsConfig, p Params) (float64, Meta, error) {
	if p.Quantity <= 0 {
		return 0, Meta{}, ErrInvalidQuantity
	}
	size := c.Size(p.SizeLabel)
	if size == nil {
		return 0, Meta{}, fmt.Errorf("%w: %q", ErrUnknownSize, p.SizeLabel)
	}

	unit := selectSizeTier(size.Tiers, p.Quantity)
	raw := unit * float64(p.Quantity)

	addon, err := resolveFees(p.Addons, c.Addons, p.Quantity)
	if err != nil {
		return 0, Meta{}, fmt.Errorf("addons: %w", err)
	}
	raw += addon

	return raw, Meta{
		Model:      ModelQtyOptions,
		RawTotal:   raw,
		UnitPrice:  unit,
		AddonCents: Cents(addon),
	}, nil
}
