package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"printworks/internal/pricing"
	"printworks/internal/store"
)

// ErrUnavailable blocks the whole order when any line cannot be priced.
// A line is never silently defaulted to zero or to a client-supplied price.
var ErrUnavailable = errors.New("product unavailable")

// CartLine is one client cart entry. It carries the configuration the buyer
// chose, never a price: the price is always recomputed server-side.
type CartLine struct {
	ProductID uuid.UUID      `json:"productId"`
	Params    pricing.Params `json:"params"`
}

// PricedLine is the server-trusted repricing of one cart line.
type PricedLine struct {
	ProductID  uuid.UUID    `json:"productId"`
	Name       string       `json:"name"`
	Quantity   int          `json:"quantity"`
	UnitCents  int64        `json:"unitCents"`
	TotalCents int64        `json:"totalCents"`
	Meta       pricing.Meta `json:"meta"`
}

// Totals aggregates a repriced cart.
type Totals struct {
	SubtotalCents int64        `json:"subtotalCents"`
	TotalCents    int64        `json:"totalCents"`
	Lines         []PricedLine `json:"lines"`
}

// Catalog is the read side the repricer trusts: products and presets come
// from the store, never from the client.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*store.Product, error)
	GetPreset(ctx context.Context, id uuid.UUID) (*pricing.Preset, error)
}

// OrderWriter persists a repriced order.
type OrderWriter interface {
	InsertOrder(ctx context.Context, o *store.Order) error
}

// Repricer prices carts line by line through the quote engine.
type Repricer struct {
	catalog Catalog
	orders  OrderWriter
	engine  *pricing.Engine
}

func New(catalog Catalog, orders OrderWriter, engine *pricing.Engine) *Repricer {
	return &Repricer{catalog: catalog, orders: orders, engine: engine}
}

// Reprice quotes every cart line from server-trusted data and aggregates
// order totals. Any unpriceable line fails the whole order.
func (r *Repricer) Reprice(ctx context.Context, lines []CartLine) (*Totals, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	totals := &Totals{Lines: make([]PricedLine, 0, len(lines))}
	for _, line := range lines {
		product, err := r.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %s: %v", ErrUnavailable, line.ProductID, err)
		}
		if !product.IsActive || product.PresetID == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, product.Name)
		}
		preset, err := r.catalog.GetPreset(ctx, *product.PresetID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, product.Name, err)
		}

		quote, err := r.engine.Quote(preset, line.Params)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, product.Name, err)
		}

		qty := line.Params.Quantity
		if len(line.Params.Rows) > 0 {
			qty = totalRowQty(line.Params.Rows)
		}

		totals.SubtotalCents += quote.TotalCents
		totals.Lines = append(totals.Lines, PricedLine{
			ProductID:  product.ID,
			Name:       product.Name,
			Quantity:   qty,
			UnitCents:  quote.UnitCents,
			TotalCents: quote.TotalCents,
			Meta:       quote.Meta,
		})
	}
	totals.TotalCents = totals.SubtotalCents
	return totals, nil
}

// PlaceOrder reprices the cart and persists the order with the engine's
// totals.
func (r *Repricer) PlaceOrder(ctx context.Context, lines []CartLine) (*store.Order, error) {
	totals, err := r.Reprice(ctx, lines)
	if err != nil {
		return nil, err
	}

	order := &store.Order{
		ID:            uuid.New(),
		Status:        "created",
		SubtotalCents: totals.SubtotalCents,
		TotalCents:    totals.TotalCents,
		CreatedAt:     time.Now().UTC(),
	}
	for _, l := range totals.Lines {
		meta, err := json.Marshal(l.Meta)
		if err != nil {
			return nil, fmt.Errorf("encode line meta: %w", err)
		}
		order.Lines = append(order.Lines, store.OrderLine{
			ID:         uuid.New(),
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitCents:  l.UnitCents,
			TotalCents: l.TotalCents,
			Meta:       meta,
		})
	}
	if err := r.orders.InsertOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func totalRowQty(rows []pricing.SizeRow) int {
	qty := 0
	for _, row := range rows {
		qty += row.Quantity
	}
	return qty
}
