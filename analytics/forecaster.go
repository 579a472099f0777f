package analytics

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"greenhouse-forecaster/models"
)

const (
	DefaultHorizon = 5
	DefaultStep    = time.Minute
)

// LinearModel is value = Slope*t + Intercept where t is seconds elapsed since
// Start.
type LinearModel struct {
	Slope     float64
	Intercept float64
	Start     time.Time
	Last      time.Time
	N         int
}

// Fit computes the ordinary least squares line over the series.
func Fit(s models.Series) (LinearModel, error) {
	if s.Len() < 2 {
		return LinearModel{}, fmt.Errorf("%w: %d points", models.ErrInsufficientHistory, s.Len())
	}

	start, last := s.Readings[0].Timestamp, s.Readings[0].Timestamp
	for _, r := range s.Readings[1:] {
		if r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}

	xs := make([]float64, s.Len())
	for i, r := range s.Readings {
		xs[i] = elapsedSeconds(start, r.Timestamp)
	}
	ys := s.Values()

	m := LinearModel{Start: start, Last: last, N: s.Len()}
	if last.Equal(start) {
		// every reading shares one timestamp; the best line is flat
		m.Intercept = stat.Mean(ys, nil)
		return m, nil
	}

	m.Intercept, m.Slope = stat.LinearRegression(xs, ys, nil, false)
	return m, nil
}

func (m LinearModel) Predict(elapsed float64) float64 {
	return m.Slope*elapsed + m.Intercept
}

// Project returns horizon points spaced by step, the first one step after
// the last observation.
func (m LinearModel) Project(channel string, horizon int, step time.Duration) models.ForecastSeries {
	points := make([]models.ForecastPoint, 0, horizon)
	for k := 1; k <= horizon; k++ {
		at := m.Last.Add(time.Duration(k) * step)
		points = append(points, models.ForecastPoint{
			Timestamp: at,
			Value:     m.Predict(elapsedSeconds(m.Start, at)),
		})
	}
	return models.ForecastSeries{Channel: channel, Points: points}
}

func FitAndProject(s models.Series, horizon int, step time.Duration) (models.ForecastSeries, error) {
	if horizon <= 0 || step <= 0 {
		return models.ForecastSeries{}, fmt.Errorf("invalid projection: horizon=%d step=%s", horizon, step)
	}

	m, err := Fit(s)
	if err != nil {
		return models.ForecastSeries{}, err
	}
	return m.Project(s.Channel, horizon, step), nil
}

// Forecaster applies FitAndProject with a fixed horizon and step and refuses
// discrete channels.
type Forecaster struct {
	Horizon int
	Step    time.Duration
}

func NewForecaster(horizon int, step time.Duration) Forecaster {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	if step <= 0 {
		step = DefaultStep
	}
	return Forecaster{Horizon: horizon, Step: step}
}

func (f Forecaster) Forecast(ch models.Channel, s models.Series) (models.ForecastSeries, error) {
	if ch.Discrete {
		return models.ForecastSeries{}, fmt.Errorf("%w: %s", models.ErrDiscreteChannel, ch.ID)
	}
	return FitAndProject(s, f.Horizon, f.Step)
}

func elapsedSeconds(start, t time.Time) float64 {
	return t.Sub(start).Seconds()
}
