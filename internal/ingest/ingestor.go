// Package ingest validates decoded sensor events and persists them. Writing
// the alert and deciding whether to queue a notification form one atomic
// unit, so a qualifying ingest enqueues exactly once even under concurrent
// ingestion.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/netsentry/netsentry/internal/datastore"
	"github.com/netsentry/netsentry/internal/datastore/entities"
	"github.com/netsentry/netsentry/internal/errors"
	"github.com/netsentry/netsentry/internal/logger"
	"github.com/netsentry/netsentry/internal/notification"
	"github.com/netsentry/netsentry/internal/observability/metrics"
	"github.com/netsentry/netsentry/internal/severity"
)

// Ingestor writes alerts to the store and applies the severity-based
// notification policy.
type Ingestor struct {
	store   *datastore.Store
	metrics *metrics.Metrics
	log     logger.Logger

	// now is swappable for tests that pin the default timestamp.
	now func() time.Time
}

// New creates an Ingestor. metrics may be nil.
func New(store *datastore.Store, m *metrics.Metrics, log logger.Logger) *Ingestor {
	return &Ingestor{
		store:   store,
		metrics: m,
		log:     log.With(logger.String("component", "ingest")),
		now:     time.Now,
	}
}

// Ingest validates one event, writes the alert row and, when the normalized
// severity qualifies, enqueues one alert.high notification in the same
// transaction. Returns the assigned alert ID.
//
// Validation runs before any persistence attempt; a missing source or
// destination address yields a ValidationError and no row.
func (i *Ingestor) Ingest(ctx context.Context, raw RawEvent) (uint, error) {
	if strings.TrimSpace(raw.SrcIP) == "" {
		return 0, errors.NewValidation("src_ip", "is required")
	}
	if strings.TrimSpace(raw.DstIP) == "" {
		return 0, errors.NewValidation("dst_ip", "is required")
	}

	ts, ok, err := raw.eventTime()
	if err != nil {
		return 0, errors.NewValidation("timestamp", err.Error())
	}
	if !ok {
		ts = i.now().UTC()
	}

	// Severity is stored exactly as provided; normalization applies only to
	// the notification gate. The default fills in only a blank value.
	storedSeverity := raw.Severity
	if strings.TrimSpace(storedSeverity) == "" {
		storedSeverity = string(severity.Default)
	}
	sev := severity.Normalize(raw.Severity)

	alert := entities.Alert{
		Timestamp:   ts,
		SrcIP:       raw.SrcIP,
		DstIP:       raw.DstIP,
		Proto:       raw.Proto,
		Rule:        raw.Rule,
		RuleID:      raw.RuleID,
		Severity:    storedSeverity,
		Description: raw.description(),
		PayloadRef:  raw.PayloadRef,
		Host:        raw.Host,
	}

	var enqueued *entities.NotificationQueueEntry
	err = i.store.Transaction(ctx, func(tx *datastore.Store) error {
		if err := tx.Alerts().Insert(ctx, &alert); err != nil {
			return err
		}
		if !sev.Notifiable() {
			return nil
		}
		entry, err := buildAlertNotification(&alert)
		if err != nil {
			return err
		}
		if err := tx.Queue().Enqueue(ctx, entry); err != nil {
			return err
		}
		enqueued = entry
		return nil
	})
	if err != nil {
		i.metrics.IngestFailed()
		return 0, fmt.Errorf("failed to ingest alert: %w", err)
	}

	i.metrics.AlertIngested(string(sev))
	i.log.Info("alert ingested",
		logger.Uint64("id", uint64(alert.ID)),
		logger.String("src", alert.SrcIP),
		logger.String("dst", alert.DstIP),
		logger.String("severity", storedSeverity))

	if enqueued != nil {
		i.metrics.NotificationEnqueued(notification.EventAlertHigh)
		i.log.Info("notification enqueued",
			logger.Uint64("alert_id", uint64(alert.ID)),
			logger.Uint64("entry_id", uint64(enqueued.ID)))
	}
	return alert.ID, nil
}

func buildAlertNotification(alert *entities.Alert) (*entities.NotificationQueueEntry, error) {
	payload, err := json.Marshal(notification.AlertPayload{
		AlertID:     alert.ID,
		SrcIP:       alert.SrcIP,
		DstIP:       alert.DstIP,
		Proto:       alert.Proto,
		Rule:        alert.Rule,
		Description: alert.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification payload: %w", err)
	}
	return &entities.NotificationQueueEntry{
		EventType: notification.EventAlertHigh,
		Payload:   string(payload),
	}, nil
}
