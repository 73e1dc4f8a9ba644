package repository

import (
	"context"

	"github.com/netsentry/netsentry/internal/datastore/entities"
)

// AlertRepository handles persisted alerts.
type AlertRepository interface {
	// Insert writes one alert and populates its assigned ID.
	Insert(ctx context.Context, alert *entities.Alert) error
	Get(ctx context.Context, id uint) (*entities.Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]entities.Alert, error)

	// ClearRule nulls the rule reference on all alerts attributed to the
	// given rule. Used when the rule is deleted.
	ClearRule(ctx context.Context, ruleID uint) (int64, error)
}

// AlertFilter controls alert listing queries.
type AlertFilter struct {
	Severity string
	Limit    int
}
