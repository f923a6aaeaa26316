package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the millisecond UTC form browsers produce with toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Accepted ISO-8601 forms, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02",
}

// Timestamp is a point in time that keeps the exact text it was decoded from,
// so stored values are written back unchanged.
type Timestamp struct {
	time.Time
	raw string
}

// NewTimestamp returns t truncated to milliseconds in TimestampLayout.
func NewTimestamp(t time.Time) Timestamp {
	t = t.UTC().Truncate(time.Millisecond)
	return Timestamp{Time: t, raw: t.Format(TimestampLayout)}
}

// ParseTimestamp keeps s verbatim. Text that matches no known layout is kept
// with a zero time rather than rejected.
func ParseTimestamp(s string) Timestamp {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, raw: s}
		}
	}
	return Timestamp{raw: s}
}

func (t Timestamp) String() string {
	if t.raw != "" {
		return t.raw
	}
	return t.Time.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Timestamp) UnmarshalText(text []byte) error {
	*t = ParseTimestamp(string(text))
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	*t = ParseTimestamp(s)
	return nil
}

func (t Timestamp) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
