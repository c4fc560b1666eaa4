package pricing

import "fmt"

// CutType selects the cutting cost schedule for cost-plus pricing.
type CutType string

const (
	CutRectangular CutType = "rectangular"
	CutContour     CutType = "contour"
)

// SizeRow is one row of a mixed-size order: a size and quantity priced
// independently of the other rows.
type SizeRow struct {
	WidthIn   float64 `json:"widthIn,omitempty"`
	HeightIn  float64 `json:"heightIn,omitempty"`
	SizeLabel string  `json:"sizeLabel,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Params are the per-quote request inputs. They are constructed per call and
// never persisted.
type Params struct {
	Quantity   int
	WidthIn    float64
	HeightIn   float64
	SizeLabel  string
	Material   string
	PrintMode  string
	CutType    CutType
	Addons     []string
	Finishings []string
	Names      int
	IsB2B      bool

	// Rows, when non-empty, makes this a mixed-size order: each row is
	// priced independently and the totals are summed. Quantity and the
	// single-size fields above are ignored in that case.
	Rows []SizeRow
}

// Meta is the per-quote breakdown. Downstream simulators and audit tooling
// reproduce the numbers from here instead of re-deriving them.
type Meta struct {
	Model     Model   `json:"model"`
	RawTotal  float64 `json:"rawTotal"`
	UnitPrice float64 `json:"unitPrice,omitempty"`

	// Cost-plus components.
	MaterialCostCents int64   `json:"materialCostCents,omitempty"`
	InkCostCents      int64   `json:"inkCostCents,omitempty"`
	LaborCostCents    int64   `json:"laborCostCents,omitempty"`
	CuttingCostCents  int64   `json:"cuttingCostCents,omitempty"`
	WasteFactor       float64 `json:"wasteFactor,omitempty"`
	QtyEfficiency     float64 `json:"qtyEfficiency,omitempty"`
	MarkupFactor      float64 `json:"markupFactor,omitempty"`

	// Fees applied by the engine after the model run.
	AddonCents     int64 `json:"addonCents,omitempty"`
	FinishingCents int64 `json:"finishingCents,omitempty"`
	FileFeeCents   int64 `json:"fileFeeCents,omitempty"`
	NameFeeCents   int64 `json:"nameFeeCents,omitempty"`

	MinimumApplied bool `json:"minimumApplied,omitempty"`

	// Rows carries the per-row quotes of a mixed-size order. The top-level
	// unit price is then a weighted average across rows, not a price list.
	Rows []RowQuote `json:"rows,omitempty"`
}

// RowQuote is the quote of a single mixed-size row.
type RowQuote struct {
	SizeLabel  string  `json:"sizeLabel,omitempty"`
	WidthIn    float64 `json:"widthIn,omitempty"`
	HeightIn   float64 `json:"heightIn,omitempty"`
	Quantity   int     `json:"quantity"`
	TotalCents int64   `json:"totalCents"`
	UnitPrice  float64 `json:"unitPrice,omitempty"`
}

// Quote is the authoritative pricing output for one product configuration.
type Quote struct {
	TotalCents int64 `json:"totalCents"`
	UnitCents  int64 `json:"unitCents"`
	Meta       Meta  `json:"meta"`
}

func parseCutType(s CutType) (CutType, error) {
	switch s {
	case CutRectangular, CutContour:
		return s, nil
	case "":
		return CutRectangular, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCutType, s)
}
