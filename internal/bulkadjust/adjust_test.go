package bulkadjust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printworks/internal/pricing"
)

func TestCheckPercent(t *testing.T) {
	assert.NoError(t, checkPercent(10))
	assert.NoError(t, checkPercent(-10))
	assert.NoError(t, checkPercent(-94.9))
	assert.NoError(t, checkPercent(500))
	assert.ErrorIs(t, checkPercent(-95), ErrBadPercent)
	assert.ErrorIs(t, checkPercent(-100), ErrBadPercent)
	assert.ErrorIs(t, checkPercent(500.1), ErrBadPercent)
}

func TestAdjustConfigGuards(t *testing.T) {
	cfg := &pricing.QtyTieredConfig{Tiers: []pricing.QtyTier{{MinQty: 1, UnitPrice: 1}}}

	_, err := AdjustConfig(cfg, 600, Flags{Tiers: true})
	assert.ErrorIs(t, err, ErrBadPercent)

	_, err = AdjustConfig(cfg, 10, Flags{})
	assert.Error(t, err)
}

func TestAdjustQtyTiered(t *testing.T) {
	orig := &pricing.QtyTieredConfig{
		Tiers: []pricing.QtyTier{
			{MinQty: 1, UnitPrice: 1.00},
			{MinQty: 50, UnitPrice: 0.95},
		},
		MinimumPrice: 25,
		FileFee:      5,
	}

	out, err := AdjustConfig(orig, 10, Flags{Tiers: true})
	require.NoError(t, err)
	got := out.(*pricing.QtyTieredConfig)
	assert.InDelta(t, 1.10, got.Tiers[0].UnitPrice, 1e-9)
	assert.InDelta(t, 1.045, got.Tiers[1].UnitPrice, 1e-9) // rates keep 3dp
	assert.InDelta(t, 25, got.MinimumPrice, 1e-9)          // unflagged fields untouched
	assert.InDelta(t, 5, got.FileFee, 1e-9)

	// The input is never mutated.
	assert.InDelta(t, 1.00, orig.Tiers[0].UnitPrice, 1e-9)
	assert.InDelta(t, 0.95, orig.Tiers[1].UnitPrice, 1e-9)
}

func TestAdjustFeeFlags(t *testing.T) {
	orig := &pricing.QtyTieredConfig{
		Tiers:        []pricing.QtyTier{{MinQty: 1, UnitPrice: 1.00}},
		MinimumPrice: 25,
		FileFee:      5,
	}

	out, err := AdjustConfig(orig, -20, Flags{MinimumPrice: true, FileFee: true})
	require.NoError(t, err)
	got := out.(*pricing.QtyTieredConfig)
	assert.InDelta(t, 20, got.MinimumPrice, 1e-9)
	assert.InDelta(t, 4, got.FileFee, 1e-9)
	assert.InDelta(t, 1.00, got.Tiers[0].UnitPrice, 1e-9)
}

func TestAdjustAreaTiered(t *testing.T) {
	orig := &pricing.AreaTieredConfig{
		Tiers: []pricing.AreaTier{{UpToSqft: 2, Rate: 16}, {UpToSqft: 20, Rate: 13}},
		Finishings: []pricing.Fee{
			{Key: "hems", Mode: pricing.FeeFlat, Amount: 5},
			{Key: "grommets", Mode: pricing.FeePerUnit, Amount: 0.5},
		},
		Addons:       []pricing.Fee{{Key: "wind-slits", Mode: pricing.FeeFlat, Amount: 8}},
		MinimumPrice: 20,
	}

	out, err := AdjustConfig(orig, 10, Flags{Tiers: true, Finishings: true})
	require.NoError(t, err)
	got := out.(*pricing.AreaTieredConfig)
	assert.InDelta(t, 17.6, got.Tiers[0].Rate, 1e-9)
	assert.InDelta(t, 5.5, got.Finishings[0].Amount, 1e-9)
	assert.InDelta(t, 0.55, got.Finishings[1].Amount, 1e-9)
	assert.InDelta(t, 8, got.Addons[0].Amount, 1e-9) // addons not flagged

	assert.InDelta(t, 16, orig.Tiers[0].Rate, 1e-9)
	assert.InDelta(t, 5, orig.Finishings[0].Amount, 1e-9)
}

func TestAdjustQtyOptions(t *testing.T) {
	orig := &pricing.QtyOptionsConfig{
		Sizes: []pricing.SizeOption{
			{Label: "small", Tiers: []pricing.SizeTier{{Qty: 1, UnitPrice: 0.40}}},
		},
		Addons:       []pricing.Fee{{Key: "laminate", Mode: pricing.FeePerUnit, Amount: 0.1}},
		ExtraNameFee: 2.5,
	}

	out, err := AdjustConfig(orig, 10, Flags{Addons: true})
	require.NoError(t, err)
	got := out.(*pricing.QtyOptionsConfig)
	// The addons flag covers the per-name surcharge too.
	assert.InDelta(t, 0.11, got.Addons[0].Amount, 1e-9)
	assert.InDelta(t, 2.75, got.ExtraNameFee, 1e-9)
	assert.InDelta(t, 0.40, got.Sizes[0].Tiers[0].UnitPrice, 1e-9)

	assert.InDelta(t, 2.5, orig.ExtraNameFee, 1e-9)
}

func TestAdjustCostPlus(t *testing.T) {
	orig := &pricing.CostPlusConfig{
		Materials:    map[string]pricing.CostPlusMaterial{"acm": {CostPerSqft: 2.0}},
		InkCosts:     map[string]pricing.InkCost{"uv": {InkPerSqft: 0.5, SqmPerHour: 18}},
		MachineLabor: pricing.MachineLabor{HourlyRate: 45},
		Cutting: pricing.CuttingRates{
			RectangularPerFt: 0.3,
			ContourPerSqft:   1.2,
			ContourMinimum:   6,
		},
		Waste:         pricing.Curve{Tiers: []pricing.TierPoint{{At: 1, Factor: 10}}},
		QtyEfficiency: pricing.Curve{Tiers: []pricing.TierPoint{{At: 1, Factor: 1}}},
		Markup: pricing.MarkupCurves{
			Floor:       1.2,
			RetailTiers: []pricing.TierPoint{{At: 1, Factor: 2}},
			B2BTiers:    []pricing.TierPoint{{At: 1, Factor: 1.5}},
		},
	}

	out, err := AdjustConfig(orig, 10, Flags{Tiers: true})
	require.NoError(t, err)
	got := out.(*pricing.CostPlusConfig)

	// The cost basis scales.
	assert.InDelta(t, 2.2, got.Materials["acm"].CostPerSqft, 1e-9)
	assert.InDelta(t, 0.55, got.InkCosts["uv"].InkPerSqft, 1e-9)
	assert.InDelta(t, 49.5, got.MachineLabor.HourlyRate, 1e-9)
	assert.InDelta(t, 0.33, got.Cutting.RectangularPerFt, 1e-9)
	assert.InDelta(t, 1.32, got.Cutting.ContourPerSqft, 1e-9)
	assert.InDelta(t, 6.6, got.Cutting.ContourMinimum, 1e-9)

	// Throughput and factor curves never scale: they are not prices.
	assert.InDelta(t, 18, got.InkCosts["uv"].SqmPerHour, 1e-9)
	assert.InDelta(t, 10, got.Waste.Tiers[0].Factor, 1e-9)
	assert.InDelta(t, 1, got.QtyEfficiency.Tiers[0].Factor, 1e-9)
	assert.InDelta(t, 2, got.Markup.RetailTiers[0].Factor, 1e-9)
	assert.InDelta(t, 1.2, got.Markup.Floor, 1e-9)

	assert.InDelta(t, 2.0, orig.Materials["acm"].CostPerSqft, 1e-9)
}

func TestScaleClampsAtZero(t *testing.T) {
	assert.InDelta(t, 0.05, scale(1, -95+1e-9), 1e-6)
	assert.Zero(t, scale(0, 50))
}
