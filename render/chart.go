// Package render draws a fused view as a PNG: a solid actual line, a dashed
// predicted line and a dotted divider at the forecast origin.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"greenhouse-forecaster/analytics"
	"greenhouse-forecaster/models"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

var (
	actualStyle = chart.Style{
		StrokeColor: chart.ColorBlue,
		StrokeWidth: 2,
		DotColor:    chart.ColorBlue,
		DotWidth:    3,
	}
	predictedStyle = chart.Style{
		StrokeColor:     chart.ColorRed,
		StrokeWidth:     2,
		StrokeDashArray: []float64{6, 4},
		DotColor:        chart.ColorRed,
		DotWidth:        3,
	}
	dividerStyle = chart.Style{
		StrokeColor:     chart.ColorAlternateGray,
		StrokeWidth:     1,
		StrokeDashArray: []float64{2, 3},
	}
)

// Chart builds the go-chart definition for view.
func Chart(view models.FusedView, label string) (chart.Chart, error) {
	if view.Empty() || view.Range == nil {
		return chart.Chart{}, models.ErrNothingToRender
	}

	var series []chart.Series
	if len(view.Actual) > 0 {
		xs, ys := split(view.Actual)
		series = append(series, chart.TimeSeries{Name: "Actual", XValues: xs, YValues: ys, Style: actualStyle})
	}
	if len(view.Forecast) > 0 {
		xs, ys := split(view.Forecast)
		series = append(series, chart.TimeSeries{Name: "Predicted", XValues: xs, YValues: ys, Style: predictedStyle})
	}

	yMin, yMax := view.Range.Min, view.Range.Max
	if yMin == yMax {
		yMin, yMax = yMin-1, yMax+1
	}
	if divider, ok := analytics.DividerTime(view); ok {
		series = append(series, chart.TimeSeries{
			Name:    "Forecast origin",
			XValues: []time.Time{divider, divider},
			YValues: []float64{yMin, yMax},
			Style:   dividerStyle,
		})
	}

	xMin, xMax := timeBounds(view)
	if !xMax.After(xMin) {
		xMin, xMax = xMin.Add(-time.Minute), xMax.Add(time.Minute)
	}

	ch := chart.Chart{
		Title:  fmt.Sprintf("Sensor vs Prediction: %s", label),
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: chart.TimeMinuteValueFormatter,
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(xMin), Max: chart.TimeToFloat64(xMax)},
		},
		YAxis: chart.YAxis{
			Name:  label,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch, nil
}

// PNG renders view into w.
func PNG(w io.Writer, view models.FusedView, label string) error {
	ch, err := Chart(view, label)
	if err != nil {
		return err
	}
	return ch.Render(chart.PNG, w)
}

// GraphWriter saves Predicted_<channel>.png files into a directory.
type GraphWriter struct {
	dir string
}

func NewGraphWriter(dir string) (*GraphWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create graph dir: %w", err)
	}
	return &GraphWriter{dir: dir}, nil
}

func (g *GraphWriter) Path(ch models.Channel) string {
	return filepath.Join(g.dir, "Predicted_"+ch.ID+".png")
}

func (g *GraphWriter) WriteGraph(ch models.Channel, view models.FusedView) error {
	var buf bytes.Buffer
	if err := PNG(&buf, view, ch.Label); err != nil {
		return err
	}

	target := g.Path(ch)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

func split(points []models.Point) ([]time.Time, []float64) {
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.Timestamp, p.Value
	}
	return xs, ys
}

func timeBounds(view models.FusedView) (time.Time, time.Time) {
	var lo, hi time.Time
	for _, set := range [][]models.Point{view.Actual, view.Forecast} {
		for _, p := range set {
			if lo.IsZero() || p.Timestamp.Before(lo) {
				lo = p.Timestamp
			}
			if hi.IsZero() || p.Timestamp.After(hi) {
				hi = p.Timestamp
			}
		}
	}
	return lo, hi
}
