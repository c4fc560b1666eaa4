package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQtyTiered(t *testing.T) {
	ok := &QtyTieredConfig{
		Tiers:        []QtyTier{{MinQty: 1, UnitPrice: 1.5}, {MinQty: 50, UnitPrice: 0.95}},
		MinimumPrice: 25,
	}
	assert.True(t, Validate(ok).Valid)

	t.Run("empty tiers", func(t *testing.T) {
		r := Validate(&QtyTieredConfig{})
		assert.False(t, r.Valid)
		assert.Contains(t, r.Errors, "tiers must not be empty")
	})

	t.Run("non-ascending breakpoints", func(t *testing.T) {
		r := Validate(&QtyTieredConfig{
			Tiers: []QtyTier{{MinQty: 50, UnitPrice: 1}, {MinQty: 50, UnitPrice: 0.9}},
		})
		assert.False(t, r.Valid)
	})

	t.Run("negative price", func(t *testing.T) {
		r := Validate(&QtyTieredConfig{
			Tiers: []QtyTier{{MinQty: 1, UnitPrice: -0.5}},
		})
		assert.False(t, r.Valid)
	})

	t.Run("negative fees", func(t *testing.T) {
		r := Validate(&QtyTieredConfig{
			Tiers:        []QtyTier{{MinQty: 1, UnitPrice: 1}},
			MinimumPrice: -1,
			FileFee:      -2,
		})
		assert.False(t, r.Valid)
		assert.Len(t, r.Errors, 2)
	})
}

func TestValidateAreaTiered(t *testing.T) {
	ok := &AreaTieredConfig{
		Tiers:     []AreaTier{{UpToSqft: 2, Rate: 16}, {UpToSqft: 20, Rate: 13}},
		Materials: map[string]AreaMaterial{"vinyl": {Multiplier: 1}},
	}
	assert.True(t, Validate(ok).Valid)

	t.Run("zero multiplier", func(t *testing.T) {
		r := Validate(&AreaTieredConfig{
			Tiers:     []AreaTier{{UpToSqft: 2, Rate: 16}},
			Materials: map[string]AreaMaterial{"vinyl": {}},
		})
		assert.False(t, r.Valid)
	})

	t.Run("bad fee mode", func(t *testing.T) {
		r := Validate(&AreaTieredConfig{
			Tiers:      []AreaTier{{UpToSqft: 2, Rate: 16}},
			Finishings: []Fee{{Key: "hems", Mode: "per_order", Amount: 5}},
		})
		assert.False(t, r.Valid)
	})
}

func TestValidateQtyOptions(t *testing.T) {
	ok := &QtyOptionsConfig{
		Sizes: []SizeOption{{Label: "small", Tiers: []SizeTier{{Qty: 1, UnitPrice: 0.4}}}},
	}
	assert.True(t, Validate(ok).Valid)

	t.Run("duplicate labels", func(t *testing.T) {
		r := Validate(&QtyOptionsConfig{
			Sizes: []SizeOption{
				{Label: "small", Tiers: []SizeTier{{Qty: 1, UnitPrice: 0.4}}},
				{Label: "small", Tiers: []SizeTier{{Qty: 1, UnitPrice: 0.6}}},
			},
		})
		assert.False(t, r.Valid)
	})

	t.Run("empty label and tiers", func(t *testing.T) {
		r := Validate(&QtyOptionsConfig{Sizes: []SizeOption{{}}})
		assert.False(t, r.Valid)
		assert.Len(t, r.Errors, 2)
	})

	t.Run("negative name fee", func(t *testing.T) {
		r := Validate(&QtyOptionsConfig{
			Sizes:        []SizeOption{{Label: "small", Tiers: []SizeTier{{Qty: 1, UnitPrice: 0.4}}}},
			ExtraNameFee: -1,
		})
		assert.False(t, r.Valid)
	})
}

func TestValidateCostPlus(t *testing.T) {
	ok := costPlusPreset().Config
	assert.True(t, Validate(ok).Valid)

	t.Run("empty maps and curves are all reported", func(t *testing.T) {
		r := Validate(&CostPlusConfig{})
		assert.False(t, r.Valid)
		assert.Contains(t, r.Errors, "materials must not be empty")
		assert.Contains(t, r.Errors, "inkCosts must not be empty")
		assert.Contains(t, r.Errors, "waste.tiers must not be empty")
		assert.Contains(t, r.Errors, "markup.retailTiers must not be empty")
	})
}

func TestValidateNil(t *testing.T) {
	r := Validate(nil)
	assert.False(t, r.Valid)
}
