package pricing

// selectQtyTier picks the entry with the greatest minQty at or below the
// quantity. This is a floor match, not interpolation: prices step down at
// breakpoints. Quantities below the first breakpoint fall back to the first
// tier's price.
func selectQtyTier(tiers []QtyTier, quantity int) float64 {
	unit := tiers[0].UnitPrice
	for _, t := range tiers {
		if t.MinQty > quantity {
			break
		}
		unit = t.UnitPrice
	}
	return unit
}

func quoteQtyTiered(c *QtyTieredConfig, p Params) (float64, Meta, error) {
	if p.Quantity <= 0 {
		return 0, Meta{}, ErrInvalidQuantity
	}
	unit := selectQtyTier(c.Tiers, p.Quantity)
	raw := unit * float64(p.Quantity)
	return raw, Meta{
		Model:     ModelQtyTiered,
		RawTotal:  raw,
		UnitPrice: unit,
	}, nil
}
