package models

import "time"

// ForecastPoint is one projected value.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ForecastSeries holds horizon points with strictly increasing timestamps,
// all later than the last actual reading the model was fitted on.
type ForecastSeries struct {
	Channel string          `json:"channel"`
	Points  []ForecastPoint `json:"points"`
}

func (f ForecastSeries) Empty() bool {
	return len(f.Points) == 0
}

func (f ForecastSeries) Values() []float64 {
	values := make([]float64, len(f.Points))
	for i, p := range f.Points {
		values[i] = p.Value
	}
	return values
}

// Clone returns a deep copy so stored records never alias caller slices.
func (f ForecastSeries) Clone() ForecastSeries {
	points := make([]ForecastPoint, len(f.Points))
	copy(points, f.Points)
	return ForecastSeries{Channel: f.Channel, Points: points}
}

// ForecastRecord is the single live forecast for a channel.
type ForecastRecord struct {
	Channel     string          `json:"channel"`
	RunID       string          `json:"run_id,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Points      []ForecastPoint `json:"points"`
}

func (r ForecastRecord) Series() ForecastSeries {
	return ForecastSeries{Channel: r.Channel, Points: r.Points}.Clone()
}
