package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Legacy layouts written by older data files.
const (
	legacyISOLayout  = "2006-01-02T15:04:05.999999"
	legacyDateLayout = "2006-01-02 15:04"
)

// Timestamp is a time.Time that also decodes the legacy data-file formats:
// epoch seconds as a JSON number, zone-less ISO strings and "YYYY-MM-DD HH:MM".
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// MarshalText implements encoding.TextMarshaler.
func (ts Timestamp) MarshalText() ([]byte, error) {
	return []byte(ts.Time.Format(time.RFC3339Nano)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ts *Timestamp) UnmarshalText(text []byte) error {
	parsed, err := parseTimestamp(string(text))
	if err != nil {
		return err
	}
	ts.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] != '"' {
		var secs float64
		if err := json.Unmarshal(data, &secs); err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		whole, frac := math.Modf(secs)
		ts.Time = time.Unix(int64(whole), int64(frac*1e9))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return ts.UnmarshalText([]byte(s))
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{legacyISOLayout, legacyDateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
