package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// RawEvent is the wire shape shared by the sensor's stdout records and the
// ingestion API. Only src_ip and dst_ip are required; the timestamp may be
// an ISO-8601 string or a Unix-epoch-seconds number under any of the
// accepted keys.
type RawEvent struct {
	SrcIP       string          `json:"src_ip"`
	DstIP       string          `json:"dst_ip"`
	Proto       *string         `json:"proto"`
	Rule        *string         `json:"rule"`
	RuleID      *uint           `json:"rule_id"`
	Severity    string          `json:"severity"`
	Desc        *string         `json:"desc"`
	Description *string         `json:"description"`
	PayloadRef  *string         `json:"payload_ref"`
	Host        *string         `json:"host"`
	Time        json.RawMessage `json:"time"`
	TS          json.RawMessage `json:"ts"`
	Timestamp   json.RawMessage `json:"timestamp"`
}

// DecodeEvent parses one framed sensor line. On failure the caller logs
// the offending line and moves on.
func DecodeEvent(line []byte) (RawEvent, error) {
	var raw RawEvent
	if err := json.Unmarshal(line, &raw); err != nil {
		return RawEvent{}, fmt.Errorf("failed to decode sensor event: %w", err)
	}
	return raw, nil
}

// description returns desc, falling back to the long-form description key.
func (r *RawEvent) description() *string {
	if r.Desc != nil {
		return r.Desc
	}
	return r.Description
}

// Accepted ISO-8601 layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// eventTime resolves the event timestamp from whichever key carries it.
// Both string and epoch-seconds forms normalize to the same UTC instant,
// so equivalent inputs store identically. Returns ok=false when no
// timestamp field is present.
func (r *RawEvent) eventTime() (t time.Time, ok bool, err error) {
	for _, raw := range []json.RawMessage{r.Time, r.TS, r.Timestamp} {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		t, err = parseTimestamp(raw)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}
	return time.Time{}, false, nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range timeLayouts {
			if t, perr := time.Parse(layout, s); perr == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}

	var epoch float64
	if err := json.Unmarshal(raw, &epoch); err == nil {
		sec, frac := math.Modf(epoch)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("timestamp is neither a string nor a number: %s", raw)
}
