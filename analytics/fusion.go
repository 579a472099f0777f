package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"greenhouse-forecaster/models"
)

const (
	DefaultPadFraction    = 0.10
	DefaultDiscreteMargin = 1.0
)

type FusionOptions struct {
	PadFraction    float64
	DiscreteMargin float64
	Discrete       bool
}

func DefaultFusionOptions() FusionOptions {
	return FusionOptions{
		PadFraction:    DefaultPadFraction,
		DiscreteMargin: DefaultDiscreteMargin,
	}
}

// Fuse merges an actual series and a forecast into one view. It never
// mutates its inputs and reads no clock.
//
// When both sides are present the forecast line is prefixed with the last
// actual point so the two lines meet, and the divider sits on the first real
// forecast point. Discrete channels ignore the forecast entirely.
func Fuse(actual models.Series, forecast models.ForecastSeries, opts FusionOptions) models.FusedView {
	if opts.Discrete {
		forecast = models.ForecastSeries{}
	}

	view := models.FusedView{
		Channel:  actual.Channel,
		Actual:   make([]models.Point, 0, actual.Len()),
		Forecast: make([]models.Point, 0, len(forecast.Points)+1),
	}
	if view.Channel == "" {
		view.Channel = forecast.Channel
	}

	for _, r := range actual.Readings {
		view.Actual = append(view.Actual, models.Point{Timestamp: r.Timestamp, Value: r.Value})
	}

	if !actual.Empty() && !forecast.Empty() {
		last := actual.Last()
		view.Forecast = append(view.Forecast, models.Point{Timestamp: last.Timestamp, Value: last.Value})
		divider := forecast.Points[0].Timestamp
		view.Divider = &divider
	}
	for _, p := range forecast.Points {
		view.Forecast = append(view.Forecast, models.Point{Timestamp: p.Timestamp, Value: p.Value})
	}

	values := append(actual.Values(), forecast.Values()...)
	if len(values) > 0 {
		r := padRange(floats.Min(values), floats.Max(values), opts)
		view.Range = &r
	}

	return view
}

// padRange widens [lo, hi] outward. The multiplicative form scales by the
// magnitude so negative bounds move away from the data too.
func padRange(lo, hi float64, opts FusionOptions) models.ValueRange {
	if opts.Discrete {
		return models.ValueRange{Min: lo - opts.DiscreteMargin, Max: hi + opts.DiscreteMargin}
	}
	return models.ValueRange{
		Min: lo - math.Abs(lo)*opts.PadFraction,
		Max: hi + math.Abs(hi)*opts.PadFraction,
	}
}

// DividerTime is a convenience for renderers that need a zero value.
func DividerTime(v models.FusedView) (time.Time, bool) {
	if v.Divider == nil {
		return time.Time{}, false
	}
	return *v.Divider, true
}
