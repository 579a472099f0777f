package models

import (
	"errors"
	"strings"
	"time"
)

// RawReading is one entry as received from a reading source. Value holds the
// untouched field text; Present is false when the source omitted the field.
type RawReading struct {
	Timestamp time.Time
	Channel   string
	Value     string
	Present   bool
}

// Reading is a validated numeric observation for one channel.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Channel   string    `json:"channel"`
	Value     float64   `json:"value"`
}

func (r *Reading) Validate() error {
	if r.Channel == "" {
		return errors.New("channel is required")
	}

	if r.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}

	return nil
}

// Series is the arrival-ordered actual series of one channel.
type Series struct {
	Channel  string    `json:"channel"`
	Readings []Reading `json:"readings"`
}

func (s Series) Len() int {
	return len(s.Readings)
}

func (s Series) Empty() bool {
	return len(s.Readings) == 0
}

// Last returns the most recent reading. It must not be called on an empty series.
func (s Series) Last() Reading {
	return s.Readings[len(s.Readings)-1]
}

func (s Series) Values() []float64 {
	values := make([]float64, len(s.Readings))
	for i, r := range s.Readings {
		values[i] = r.Value
	}
	return values
}

// ParseTimestamp accepts the timestamp layouts produced by the supported
// sources: RFC3339 (ThingSpeak) and the space separated form pandas writes.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
