package server

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"printworks/internal/checkout"
	"printworks/internal/pricing"
)

// ErrMissingProduct is returned when a payload carries no product id.
var ErrMissingProduct = errors.New("productId is required")

// QuoteRequest is the wire shape of a quote simulation. Normalize is the
// explicit parse-and-validate boundary: invalid input fails loudly here and
// never reaches the pricing math as a disguised zero.
type QuoteRequest struct {
	ProductID  string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	WidthIn    float64         `json:"widthIn,omitempty"`
	HeightIn   float64         `json:"heightIn,omitempty"`
	SizeLabel  string          `json:"sizeLabel,omitempty"`
	Material   string          `json:"material,omitempty"`
	PrintMode  string          `json:"printMode,omitempty"`
	CutType    string          `json:"cutType,omitempty"`
	Addons     []string        `json:"addons,omitempty"`
	Finishings []string        `json:"finishings,omitempty"`
	Names      int             `json:"names,omitempty"`
	IsB2B      bool            `json:"isB2B,omitempty"`
	Rows       []QuoteRowParam `json:"rows,omitempty"`
}

// QuoteRowParam is one row of a mixed-size quote request.
type QuoteRowParam struct {
	WidthIn   float64 `json:"widthIn,omitempty"`
	HeightIn  float64 `json:"heightIn,omitempty"`
	SizeLabel string  `json:"sizeLabel,omitempty"`
	Quantity  int     `json:"quantity"`
}

func (q *QuoteRequest) Normalize() (uuid.UUID, pricing.Params, error) {
	if q.ProductID == "" {
		return uuid.Nil, pricing.Params{}, ErrMissingProduct
	}
	id, err := uuid.Parse(q.ProductID)
	if err != nil {
		return uuid.Nil, pricing.Params{}, fmt.Errorf("productId must be a valid uuid")
	}

	params := pricing.Params{
		Quantity:   q.Quantity,
		WidthIn:    q.WidthIn,
		HeightIn:   q.HeightIn,
		SizeLabel:  q.SizeLabel,
		Material:   q.Material,
		PrintMode:  q.PrintMode,
		CutType:    pricing.CutType(q.CutType),
		Addons:     q.Addons,
		Finishings: q.Finishings,
		Names:      q.Names,
		IsB2B:      q.IsB2B,
	}
	for i, row := range q.Rows {
		if row.Quantity <= 0 {
			return uuid.Nil, pricing.Params{}, fmt.Errorf("rows[%d].quantity must be positive", i)
		}
		params.Rows = append(params.Rows, pricing.SizeRow{
			WidthIn:   row.WidthIn,
			HeightIn:  row.HeightIn,
			SizeLabel: row.SizeLabel,
			Quantity:  row.Quantity,
		})
	}
	if len(params.Rows) == 0 && params.Quantity <= 0 {
		return uuid.Nil, pricing.Params{}, fmt.Errorf("quantity must be positive")
	}
	return id, params, nil
}

// CartRequest is the wire shape of a reprice/checkout call. Lines carry the
// buyer's configuration only; a client-supplied price has no field to land in.
type CartRequest struct {
	Lines []CartLineRequest `json:"lines"`
}

type CartLineRequest struct {
	ProductID string `json:"productId"`
	QuoteRequest
}

func (c *CartRequest) Normalize() ([]checkout.CartLine, error) {
	if len(c.Lines) == 0 {
		return nil, fmt.Errorf("lines must not be empty")
	}
	lines := make([]checkout.CartLine, 0, len(c.Lines))
	for i, l := range c.Lines {
		l.QuoteRequest.ProductID = l.ProductID
		id, params, err := l.QuoteRequest.Normalize()
		if err != nil {
			return nil, fmt.Errorf("lines[%d]: %w", i, err)
		}
		lines = append(lines, checkout.CartLine{ProductID: id, Params: params})
	}
	return lines, nil
}

// OrderResponse is the wire shape of a placed order.
type OrderResponse struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	SubtotalCents int64  `json:"subtotalCents"`
	TotalCents    int64  `json:"totalCents"`
}
