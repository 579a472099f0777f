package models

import "time"

// Point is a renderable (timestamp, value) pair.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ValueRange is the padded value axis of a fused view.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r ValueRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FusedView is the render-ready bundle for one channel. Forecast starts with
// the bridge point when both series are present. Divider and Range are nil
// when they are undefined.
type FusedView struct {
	Channel  string      `json:"channel"`
	Actual   []Point     `json:"actual"`
	Forecast []Point     `json:"forecast"`
	Divider  *time.Time  `json:"divider,omitempty"`
	Range    *ValueRange `json:"range,omitempty"`
}

// Empty reports the "nothing to render" case.
func (v FusedView) Empty() bool {
	return len(v.Actual) == 0 && len(v.Forecast) == 0
}
