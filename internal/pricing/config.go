package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Model identifies which pricing algorithm a preset is bound to.
type Model string

const (
	ModelQtyTiered  Model = "QTY_TIERED"
	ModelAreaTiered Model = "AREA_TIERED"
	ModelQtyOptions Model = "QTY_OPTIONS"
	ModelCostPlus   Model = "COST_PLUS"
)

// ParseModel validates a stored model tag.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelQtyTiered, ModelAreaTiered, ModelQtyOptions, ModelCostPlus:
		return Model(s), nil
	}
	return "", fmt.Errorf("%w: unknown pricing model %q", ErrInvalidConfig, s)
}

// Preset is a named, versioned pricing configuration. Version backs the
// optimistic concurrency check on bulk writes.
type Preset struct {
	ID       uuid.UUID
	Key      string
	Name     string
	Model    Model
	Config   Config
	IsActive bool
	Version  int64
}

// Config is the tagged union of per-model configuration shapes. Exactly one
// concrete variant exists per Model, so calculator dispatch is exhaustive.
type Config interface {
	Model() Model
}

// QtyTier is one quantity breakpoint: the unit price for orders of at least
// MinQty pieces.
type QtyTier struct {
	MinQty    int     `json:"minQty"`
	UnitPrice float64 `json:"unitPrice"`
}

// QtyTieredConfig prices purely by quantity break.
type QtyTieredConfig struct {
	Tiers        []QtyTier `json:"tiers"`
	MinimumPrice float64   `json:"minimumPrice"`
	FileFee      float64   `json:"fileFee"`
}

func (c *QtyTieredConfig) Model() Model { return ModelQtyTiered }

// AreaTier is one area breakpoint: the per-sqft rate for pieces up to
// UpToSqft square feet.
type AreaTier struct {
	UpToSqft float64 `json:"upToSqft"`
	Rate     float64 `json:"rate"`
}

// FeeMode distinguishes how an addon or finishing fee is charged.
type FeeMode string

const (
	FeeFlat    FeeMode = "flat"
	FeePerUnit FeeMode = "per_unit"
)

// Fee is a selectable addon or finishing charge.
type Fee struct {
	Key    string  `json:"key"`
	Mode   FeeMode `json:"mode"`
	Amount float64 `json:"amount"`
}

// AreaMaterial carries the price multiplier applied when a material is
// selected on an area-priced product.
type AreaMaterial struct {
	Multiplier float64 `json:"multiplier"`
}

// AreaTieredConfig prices by piece area with optional material multipliers
// and addon/finishing fees.
type AreaTieredConfig struct {
	Tiers        []AreaTier              `json:"tiers"`
	Materials    map[string]AreaMaterial `json:"materials,omitempty"`
	Finishings   []Fee                   `json:"finishings,omitempty"`
	Addons       []Fee                   `json:"addons,omitempty"`
	MinimumPrice float64                 `json:"minimumPrice"`
	FileFee      float64                 `json:"fileFee"`
}

func (c *AreaTieredConfig) Model() Model { return ModelAreaTiered }

// SizeTier is one quantity breakpoint within a named size.
type SizeTier struct {
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
}

// SizeOption is a named size with its own quantity tier ladder.
type SizeOption struct {
	Label string     `json:"label"`
	Tiers []SizeTier `json:"tiers"`
}

// QtyOptionsConfig prices by caller-selected size, each size carrying its own
// quantity tiers. ExtraNameFee is charged per name beyond the first on
// multi-name orders.
type QtyOptionsConfig struct {
	Sizes        []SizeOption `json:"sizes"`
	Addons       []Fee        `json:"addons,omitempty"`
	ExtraNameFee float64      `json:"extraNameFee,omitempty"`
	MinimumPrice float64      `json:"minimumPrice"`
	FileFee      float64      `json:"fileFee"`
}

func (c *QtyOptionsConfig) Model() Model { return ModelQtyOptions }

// Size returns the size option for a label, or nil.
func (c *QtyOptionsConfig) Size(label string) *SizeOption {
	for i := range c.Sizes {
		if c.Sizes[i].Label == label {
			return &c.Sizes[i]
		}
	}
	return nil
}

// CostPlusMaterial is the raw material cost basis for cost-plus pricing.
type CostPlusMaterial struct {
	CostPerSqft float64 `json:"costPerSqft"`
}

// InkCost carries per-print-mode consumable cost and machine throughput.
// SqmPerHour of zero means the mode has no metered machine time.
type InkCost struct {
	InkPerSqft float64 `json:"inkPerSqft"`
	SqmPerHour float64 `json:"sqmPerHour"`
}

// MachineLabor is the operator cost basis.
type MachineLabor struct {
	HourlyRate float64 `json:"hourlyRate"`
}

// CuttingRates holds the two cutting cost schedules.
type CuttingRates struct {
	RectangularPerFt float64 `json:"rectangularPerFt"`
	ContourPerSqft   float64 `json:"contourPerSqft"`
	ContourMinimum   float64 `json:"contourMinimum"`
}

// Curve is a declarative factor curve resolved through Interpolate.
type Curve struct {
	Tiers []TierPoint `json:"tiers"`
}

// MarkupCurves holds separate retail and B2B markup curves over piece area,
// both clamped to Floor so gross margin stays positive by construction.
type MarkupCurves struct {
	Floor       float64     `json:"floor"`
	RetailTiers []TierPoint `json:"retailTiers"`
	B2BTiers    []TierPoint `json:"b2bTiers"`
}

// CostPlusConfig composes material, ink, labor and cutting costs, then waste
// and markup curves, into a sell price.
type CostPlusConfig struct {
	Materials     map[string]CostPlusMaterial `json:"materials"`
	InkCosts      map[string]InkCost          `json:"inkCosts"`
	MachineLabor  MachineLabor                `json:"machineLabor"`
	Cutting       CuttingRates                `json:"cutting"`
	Waste         Curve                       `json:"waste"`
	QtyEfficiency Curve                       `json:"qtyEfficiency"`
	Markup        MarkupCurves                `json:"markup"`
	FileFee       float64                     `json:"fileFee"`
	MinimumPrice  float64                     `json:"minimumPrice"`
}

func (c *CostPlusConfig) Model() Model { return ModelCostPlus }

// DecodeConfig parses a stored configuration document into the concrete
// variant for its model tag. Decoding is strict: unknown fields and malformed
// numbers fail loudly instead of surviving as zero values.
func DecodeConfig(model Model, raw []byte) (Config, error) {
	var cfg Config
	switch model {
	case ModelQtyTiered:
		cfg = &QtyTieredConfig{}
	case ModelAreaTiered:
		cfg = &AreaTieredConfig{}
	case ModelQtyOptions:
		cfg = &QtyOptionsConfig{}
	case ModelCostPlus:
		cfg = &CostPlusConfig{}
	default:
		return nil, fmt.Errorf("%w: unknown pricing model %q", ErrInvalidConfig, model)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: decode %s config: %v", ErrInvalidConfig, model, err)
	}
	return cfg, nil
}

// EncodeConfig serializes a configuration for storage.
func EncodeConfig(cfg Config) ([]byte, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode %s config: %w", cfg.Model(), err)
	}
	return b, nil
}
