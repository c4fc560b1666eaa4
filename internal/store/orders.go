package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order is a repriced order. Line totals come from the quote engine; a
// client-supplied price is never persisted.
type Order struct {
	ID            uuid.UUID
	Status        string
	SubtotalCents int64
	TotalCents    int64
	Lines         []OrderLine
	CreatedAt     time.Time
}

// OrderLine is one priced cart line. Meta keeps the quote breakdown for
// audit.
type OrderLine struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	UnitCents  int64
	TotalCents int64
	Meta       json.RawMessage
}

// InsertOrder persists the order and its lines in one transaction.
func (s *Store) InsertOrder(ctx context.Context, o *Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, status, subtotal_cents, total_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, o.ID, o.Status, o.SubtotalCents, o.TotalCents, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, l := range o.Lines {
		meta := l.Meta
		if meta == nil {
			meta = json.RawMessage("{}")
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, product_id, quantity, unit_cents, total_cents, meta)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, l.ID, o.ID, l.ProductID, l.Quantity, l.UnitCents, l.TotalCents, meta)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert order: %w", err)
	}
	return nil
}
