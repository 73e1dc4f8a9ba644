// Package audit implements the rule-change audit engine: every rule
// mutation, its field-level diff and any resulting notification land in one
// store transaction, giving exactly one audit entry per mutating operation.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/netsentry/netsentry/internal/datastore"
	"github.com/netsentry/netsentry/internal/datastore/entities"
	"github.com/netsentry/netsentry/internal/datastore/repository"
	"github.com/netsentry/netsentry/internal/errors"
	"github.com/netsentry/netsentry/internal/logger"
	"github.com/netsentry/netsentry/internal/notification"
	"github.com/netsentry/netsentry/internal/observability/metrics"
)

// Actor identifies who performed a mutation, plus caller-context metadata
// (e.g. origin address). Both are opaque pass-through: recorded on the
// audit entry, never interpreted here.
type Actor struct {
	ID       *uint
	Metadata map[string]any
}

// RuleInput carries the fields for a new rule. Name and Pattern are
// mandatory; the flags default to false when the caller omits them.
type RuleInput struct {
	Name           string `json:"name"`
	OwnerID        *uint  `json:"owner_id"`
	Pattern        string `json:"pattern"`
	Enabled        bool   `json:"enabled"`
	NotifyOnChange bool   `json:"notify_on_change"`
}

// RulePatch carries a partial update. Nil fields retain their prior values;
// the boolean flags change only when the patch carries an explicit boolean.
type RulePatch struct {
	Name           *string `json:"name"`
	OwnerID        *uint   `json:"owner_id"`
	Pattern        *string `json:"pattern"`
	Enabled        *bool   `json:"enabled"`
	NotifyOnChange *bool   `json:"notify_on_change"`
}

// Engine performs audited rule mutations.
type Engine struct {
	store   *datastore.Store
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewEngine creates a rule audit engine. metrics may be nil.
func NewEngine(store *datastore.Store, m *metrics.Metrics, log logger.Logger) *Engine {
	return &Engine{
		store:   store,
		metrics: m,
		log:     log.With(logger.String("component", "audit")),
	}
}

// Create inserts a rule and records a rule.create audit entry. No
// notification is enqueued on create.
func (e *Engine) Create(ctx context.Context, input RuleInput, actor Actor) (*entities.Rule, error) {
	if input.Name == "" {
		return nil, errors.NewValidation("name", "is required")
	}
	if input.Pattern == "" {
		return nil, errors.NewValidation("pattern", "is required")
	}

	rule := entities.Rule{
		Name:           input.Name,
		OwnerID:        input.OwnerID,
		Pattern:        input.Pattern,
		Enabled:        input.Enabled,
		NotifyOnChange: input.NotifyOnChange,
	}

	err := e.store.Transaction(ctx, func(tx *datastore.Store) error {
		if err := tx.Rules().Create(ctx, &rule); err != nil {
			return err
		}
		diff := []entities.FieldDiff{{
			Field: "create",
			Old:   nil,
			New:   map[string]any{"name": rule.Name, "pattern": rule.Pattern},
		}}
		return tx.Audit().Append(ctx, e.buildEntry(entities.ActionRuleCreate, rule.ID, diff, actor))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	e.log.Info("rule created",
		logger.Uint64("id", uint64(rule.ID)),
		logger.String("name", rule.Name))
	return &rule, nil
}

// Update applies a partial patch, bumps updated_at, records a rule.update
// audit entry with the field-level diff, and enqueues a rule.changed
// notification when either the pre- or post-image has notify_on_change set.
// A no-op patch still records an audit entry, with an empty diff.
func (e *Engine) Update(ctx context.Context, id uint, patch RulePatch, actor Actor) (*entities.Rule, error) {
	var updated entities.Rule
	var diffs []entities.FieldDiff
	var notified bool

	err := e.store.Transaction(ctx, func(tx *datastore.Store) error {
		existing, err := tx.Rules().Get(ctx, id)
		if err != nil {
			return err
		}
		pre := imageOf(existing)
		preNotify := existing.NotifyOnChange

		updated = *existing
		applyPatch(&updated, patch)
		if err := tx.Rules().Save(ctx, &updated); err != nil {
			return err
		}

		diffs = computeDiff(pre, imageOf(&updated))
		if err := tx.Audit().Append(ctx, e.buildEntry(entities.ActionRuleUpdate, id, diffs, actor)); err != nil {
			return err
		}

		if !preNotify && !updated.NotifyOnChange {
			return nil
		}
		payload, err := json.Marshal(notification.RuleChangedPayload{
			RuleID:   id,
			RuleName: updated.Name,
			Diffs:    diffs,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal rule.changed payload: %w", err)
		}
		if err := tx.Queue().Enqueue(ctx, &entities.NotificationQueueEntry{
			EventType: notification.EventRuleChanged,
			Payload:   string(payload),
		}); err != nil {
			return err
		}
		notified = true
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update rule %d: %w", id, err)
	}

	if notified {
		e.metrics.NotificationEnqueued(notification.EventRuleChanged)
	}
	e.log.Info("rule updated",
		logger.Uint64("id", uint64(id)),
		logger.Int("changed_fields", len(diffs)),
		logger.Bool("notified", notified))
	return &updated, nil
}

// Delete removes a rule, nulls the rule reference on its alerts, records a
// rule.delete audit entry carrying the full prior row, and unconditionally
// enqueues a rule.deleted notification. The missing notify_on_change gate
// is a deliberate asymmetry with Update: deletions are always announced.
func (e *Engine) Delete(ctx context.Context, id uint, actor Actor) error {
	err := e.store.Transaction(ctx, func(tx *datastore.Store) error {
		existing, err := tx.Rules().Get(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Alerts().ClearRule(ctx, id); err != nil {
			return err
		}
		if err := tx.Rules().Delete(ctx, id); err != nil {
			return err
		}

		diff := []entities.FieldDiff{{Field: "delete", Old: fullImageOf(existing), New: nil}}
		if err := tx.Audit().Append(ctx, e.buildEntry(entities.ActionRuleDelete, id, diff, actor)); err != nil {
			return err
		}

		payload, err := json.Marshal(notification.RuleDeletedPayload{
			RuleID:   id,
			RuleName: existing.Name,
			Deleted:  true,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal rule.deleted payload: %w", err)
		}
		return tx.Queue().Enqueue(ctx, &entities.NotificationQueueEntry{
			EventType: notification.EventRuleDeleted,
			Payload:   string(payload),
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete rule %d: %w", id, err)
	}

	e.metrics.NotificationEnqueued(notification.EventRuleDeleted)
	e.log.Info("rule deleted", logger.Uint64("id", uint64(id)))
	return nil
}

// List returns all rules. Read path for the API layer.
func (e *Engine) List(ctx context.Context) ([]entities.Rule, error) {
	return e.store.Rules().List(ctx)
}

// Get returns one rule by ID.
func (e *Engine) Get(ctx context.Context, id uint) (*entities.Rule, error) {
	return e.store.Rules().Get(ctx, id)
}

func applyPatch(rule *entities.Rule, patch RulePatch) {
	if patch.Name != nil {
		rule.Name = *patch.Name
	}
	if patch.OwnerID != nil {
		rule.OwnerID = patch.OwnerID
	}
	if patch.Pattern != nil {
		rule.Pattern = *patch.Pattern
	}
	if patch.Enabled != nil {
		rule.Enabled = *patch.Enabled
	}
	if patch.NotifyOnChange != nil {
		rule.NotifyOnChange = *patch.NotifyOnChange
	}
}

// buildEntry assembles an audit row. Diff marshalling cannot fail for the
// value shapes produced here; the fallback keeps the row valid regardless.
func (e *Engine) buildEntry(action string, targetID uint, diffs []entities.FieldDiff, actor Actor) *entities.AuditLog {
	diffJSON, err := json.Marshal(diffs)
	if err != nil {
		diffJSON = []byte("[]")
	}
	meta := "{}"
	if len(actor.Metadata) > 0 {
		if metaJSON, err := json.Marshal(actor.Metadata); err == nil {
			meta = string(metaJSON)
		}
	}
	return &entities.AuditLog{
		ActorID:    actor.ID,
		Action:     action,
		TargetType: entities.TargetTypeRule,
		TargetID:   targetID,
		Diff:       string(diffJSON),
		Metadata:   meta,
	}
}
