package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"printworks/internal/pricing"
)

// PresetChange is one preset's pending configuration replacement. Version is
// the version observed when the change was computed; the apply asserts it.
type PresetChange struct {
	PresetID uuid.UUID
	Version  int64
	Before   pricing.Config
	After    pricing.Config
}

// AuditRun identifies one bulk adjustment application in the audit log.
type AuditRun struct {
	RunID    uuid.UUID
	Category string
	Percent  float64
}

// ApplyBulk writes every change and its before/after audit snapshot in a
// single transaction, so a reader never observes a half-updated batch. Any
// version mismatch aborts the whole batch with ErrVersionConflict; the
// caller re-previews rather than retrying blindly.
func (s *Store) ApplyBulk(ctx context.Context, run AuditRun, changes []PresetChange) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bulk apply: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	for _, ch := range changes {
		after, err := pricing.EncodeConfig(ch.After)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE presets SET config = $2, version = version + 1, updated_at = $3
			WHERE id = $1 AND version = $4
		`, ch.PresetID, after, now, ch.Version)
		if err != nil {
			return fmt.Errorf("update preset %s: %w", ch.PresetID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("preset %s: %w", ch.PresetID, ErrVersionConflict)
		}

		before, err := pricing.EncodeConfig(ch.Before)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO price_audit_log (id, run_id, preset_id, category, percent, config_before, config_after, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.New(), run.RunID, ch.PresetID, run.Category, run.Percent, before, after, now)
		if err != nil {
			return fmt.Errorf("insert audit row for preset %s: %w", ch.PresetID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk apply: %w", err)
	}
	return nil
}
