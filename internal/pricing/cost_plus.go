package pricing

import "fmt"

// sqftToSqm converts square feet to square meters for machine throughput.
const sqftToSqm = 0.09290304

// quoteCostPlus composes six additive cost components, inflates by the waste
// curve, and multiplies by the markup curve. Every intermediate lands in
// Meta so simulators and audit tooling can reproduce the breakdown.
func quoteCostPlus(c *CostPlusConfig, p Params) (float64, Meta, error) {
	if p.Quantity <= 0 {
		return 0, Meta{}, ErrInvalidQuantity
	}
	if p.WidthIn <= 0 || p.HeightIn <= 0 {
		return 0, Meta{}, ErrInvalidDimensions
	}
	mat, ok := c.Materials[p.Material]
	if !ok {
		return 0, Meta{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, p.Material)
	}
	ink, ok := c.InkCosts[p.PrintMode]
	if !ok {
		return 0, Meta{}, fmt.Errorf("%w: %q", ErrUnknownPrintMode, p.PrintMode)
	}
	cut, err := parseCutType(p.CutType)
	if err != nil {
		return 0, Meta{}, err
	}

	qty := float64(p.Quantity)
	area := p.WidthIn * p.HeightIn / 144 // sqft per piece

	// Larger runs shrink variable (labor/cutting) cost per unit.
	qtyEff := Interpolate(c.QtyEfficiency.Tiers, qty, 0)

	materialCost := mat.CostPerSqft * area * qty
	inkCost := ink.InkPerSqft * area * qty

	// Zero throughput means the mode has no metered machine time.
	var laborCost float64
	if ink.SqmPerHour > 0 {
		laborCost = (area * sqftToSqm * qty / ink.SqmPerHour) * c.MachineLabor.HourlyRate * qtyEff
	}

	var cuttingCost float64
	switch cut {
	case CutContour:
		cuttingCost = c.Cutting.ContourPerSqft * area * qty
		if cuttingCost < c.Cutting.ContourMinimum {
			cuttingCost = c.Cutting.ContourMinimum
		}
		cuttingCost *= qtyEff
	default:
		perimeterFt := 2 * (p.WidthIn + p.HeightIn) / 12
		cuttingCost = perimeterFt * c.Cutting.RectangularPerFt * qty * qtyEff
	}

	// Smaller pieces carry proportionally more waste.
	wastePct := Interpolate(c.Waste.Tiers, area, 0)
	rawCost := (materialCost + inkCost + laborCost + cuttingCost) * (1 + wastePct/100)

	markupTiers := c.Markup.RetailTiers
	if p.IsB2B {
		markupTiers = c.Markup.B2BTiers
	}
	markup := Interpolate(markupTiers, area, c.Markup.Floor)

	raw := rawCost * markup
	return raw, Meta{
		Model:             ModelCostPlus,
		RawTotal:          raw,
		UnitPrice:         raw / qty,
		MaterialCostCents: Cents(materialCost),
		InkCostCents:      Cents(inkCost),
		LaborCostCents:    Cents(laborCost),
		CuttingCostCents:  Cents(cuttingCost),
		WasteFactor:       wastePct,
		QtyEfficiency:     qtyEff,
		MarkupFactor:      markup,
	}, nil
}
