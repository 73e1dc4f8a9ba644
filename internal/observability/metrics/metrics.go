// Package metrics exposes Prometheus instrumentation for the ingestion
// pipeline and the sensor supervisor. All collectors live on a dedicated
// registry served by the API layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Supervisor state labels reported on the sensor state gauge.
const (
	StateLabelStopped   = "stopped"
	StateLabelLaunching = "launching"
	StateLabelRunning   = "running"
	StateLabelExited    = "exited"
)

var stateLabels = []string{
	StateLabelStopped,
	StateLabelLaunching,
	StateLabelRunning,
	StateLabelExited,
}

// Metrics holds all collectors. A nil *Metrics is valid and records
// nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	registry *prometheus.Registry

	alertsIngested        *prometheus.CounterVec
	ingestFailures        prometheus.Counter
	notificationsEnqueued *prometheus.CounterVec
	decodeFailures        prometheus.Counter
	sensorRestarts        prometheus.Counter
	sensorState           *prometheus.GaugeVec
}

// New creates all collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		alertsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netsentry_alerts_ingested_total",
			Help: "Alerts persisted, labelled by normalized severity.",
		}, []string{"severity"}),
		ingestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsentry_ingest_failures_total",
			Help: "Ingestion attempts rejected by validation or the store.",
		}),
		notificationsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netsentry_notifications_enqueued_total",
			Help: "Notification queue entries created, labelled by event type.",
		}, []string{"event_type"}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsentry_sensor_decode_failures_total",
			Help: "Sensor output lines that failed JSON decoding.",
		}),
		sensorRestarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netsentry_sensor_restarts_total",
			Help: "Restart attempts scheduled after sensor exits.",
		}),
		sensorState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netsentry_sensor_state",
			Help: "Current supervisor state (1 for the active state, 0 otherwise).",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		m.alertsIngested,
		m.ingestFailures,
		m.notificationsEnqueued,
		m.decodeFailures,
		m.sensorRestarts,
		m.sensorState,
	)
	return m
}

// Registry returns the registry serving these collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// AlertIngested records one persisted alert.
func (m *Metrics) AlertIngested(severity string) {
	if m == nil {
		return
	}
	m.alertsIngested.WithLabelValues(severity).Inc()
}

// IngestFailed records one rejected ingestion attempt.
func (m *Metrics) IngestFailed() {
	if m == nil {
		return
	}
	m.ingestFailures.Inc()
}

// NotificationEnqueued records one queued notification.
func (m *Metrics) NotificationEnqueued(eventType string) {
	if m == nil {
		return
	}
	m.notificationsEnqueued.WithLabelValues(eventType).Inc()
}

// DecodeFailed records one undecodable sensor line.
func (m *Metrics) DecodeFailed() {
	if m == nil {
		return
	}
	m.decodeFailures.Inc()
}

// SensorRestartScheduled records one scheduled restart.
func (m *Metrics) SensorRestartScheduled() {
	if m == nil {
		return
	}
	m.sensorRestarts.Inc()
}

// SensorStateChanged sets the state gauge: 1 for the current state, 0 for
// the rest.
func (m *Metrics) SensorStateChanged(state string) {
	if m == nil {
		return
	}
	for _, label := range stateLabels {
		v := 0.0
		if label == state {
			v = 1.0
		}
		m.sensorState.WithLabelValues(label).Set(v)
	}
}
