// Package notification defines the durable queue's event vocabulary and
// payload shapes. This core only ever enqueues; the consumer that drains
// the queue and performs delivery is an external component.
package notification

import "github.com/netsentry/netsentry/internal/datastore/entities"

// Event types carried by notification queue entries.
const (
	EventAlertHigh   = "alert.high"
	EventRuleChanged = "rule.changed"
	EventRuleDeleted = "rule.deleted"
)

// AlertPayload is the payload for alert.high entries: the alert identifier
// plus the core identifying fields. Recipients stay null until the external
// notifier resolves them.
type AlertPayload struct {
	AlertID     uint    `json:"alert_id"`
	SrcIP       string  `json:"src_ip"`
	DstIP       string  `json:"dst_ip"`
	Proto       *string `json:"proto"`
	Rule        *string `json:"rule"`
	Description *string `json:"desc"`
}

// RuleChangedPayload is the payload for rule.changed entries.
type RuleChangedPayload struct {
	RuleID   uint                 `json:"rule_id"`
	RuleName string               `json:"rule_name"`
	Diffs    []entities.FieldDiff `json:"diffs"`
}

// RuleDeletedPayload is the payload for rule.deleted entries.
type RuleDeletedPayload struct {
	RuleID   uint   `json:"rule_id"`
	RuleName string `json:"rule_name"`
	Deleted  bool   `json:"deleted"`
}
