// Package severity defines the event-importance labels that drive the
// notification gate. Normalization happens here, at the boundary, so the
// ingestion and audit paths cannot drift apart on string handling.
package severity

import "strings"

// Severity is a normalized event-importance label.
type Severity string

const (
	Low      Severity = "low"
	Medium   Severity = "medium"
	High     Severity = "high"
	Critical Severity = "critical"
)

// Default is applied when the source omits a severity.
const Default = Medium

// Normalize lower-cases a raw severity label, applying the default for a
// blank value. Unknown labels pass through lower-cased; they simply never
// qualify for notification.
func Normalize(raw string) Severity {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Default
	}
	return Severity(s)
}

// Notifiable reports whether alerts at this severity are queued for
// downstream notification.
func (s Severity) Notifiable() bool {
	return s == High || s == Critical
}
