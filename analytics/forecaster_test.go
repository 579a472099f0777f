package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-forecaster/models"
)

func TestFitAndProjectLinearTrend(t *testing.T) {
	s := series("Air_Temperature", 10, 12, 14)

	fc, err := FitAndProject(s, 3, time.Minute)
	require.NoError(t, err)
	require.Len(t, fc.Points, 3)

	for i, want := range []float64{16, 18, 20} {
		assert.InDelta(t, want, fc.Points[i].Value, 1e-9)
		assert.Equal(t, t0.Add(time.Duration(3+i)*time.Minute), fc.Points[i].Timestamp)
	}
	assert.Equal(t, "Air_Temperature", fc.Channel)
}

func TestFitAndProjectHorizonAndSpacing(t *testing.T) {
	s := series("Humidity", 60, 58, 61, 59, 63, 62)
	step := 90 * time.Second

	fc, err := FitAndProject(s, DefaultHorizon, step)
	require.NoError(t, err)
	require.Len(t, fc.Points, DefaultHorizon)

	last := s.Last().Timestamp
	for i, p := range fc.Points {
		assert.True(t, p.Timestamp.After(last))
		if i > 0 {
			assert.Equal(t, step, p.Timestamp.Sub(fc.Points[i-1].Timestamp))
		}
	}
	assert.Equal(t, step, fc.Points[0].Timestamp.Sub(last))
}

func TestFitAndProjectDeterministic(t *testing.T) {
	s := series("Light_Intensity", 300, 312.5, 290, 350, 333.25)

	a, err := FitAndProject(s, 5, time.Minute)
	require.NoError(t, err)
	b, err := FitAndProject(s, 5, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFitInsufficientHistory(t *testing.T) {
	for _, s := range []models.Series{series("Humidity"), series("Humidity", 60)} {
		_, err := FitAndProject(s, 5, time.Minute)
		assert.ErrorIs(t, err, models.ErrInsufficientHistory)
	}
}

func TestFitSharedTimestampIsFlat(t *testing.T) {
	s := series("Humidity", 60, 62)
	s.Readings[1].Timestamp = s.Readings[0].Timestamp

	fc, err := FitAndProject(s, 2, time.Minute)
	require.NoError(t, err)
	for _, p := range fc.Points {
		assert.InDelta(t, 61, p.Value, 1e-9)
	}
}

func TestFitUsesLatestTimestampAsOrigin(t *testing.T) {
	s := series("Humidity", 60, 61, 62)
	s.Readings[0], s.Readings[2] = s.Readings[2], s.Readings[0]

	fc, err := FitAndProject(s, 1, time.Minute)
	require.NoError(t, err)
	for _, r := range s.Readings {
		assert.True(t, fc.Points[0].Timestamp.After(r.Timestamp))
	}
}

func TestFitAndProjectRejectsBadProjection(t *testing.T) {
	_, err := FitAndProject(series("Humidity", 1, 2), 0, time.Minute)
	assert.Error(t, err)
	_, err = FitAndProject(series("Humidity", 1, 2), 3, 0)
	assert.Error(t, err)
}

func TestForecasterSkipsDiscreteChannels(t *testing.T) {
	f := NewForecaster(0, 0)
	assert.Equal(t, DefaultHorizon, f.Horizon)
	assert.Equal(t, DefaultStep, f.Step)

	_, err := f.Forecast(models.Channel{ID: "Fan_State", Discrete: true}, series("Fan_State", 0, 1, 0, 1))
	assert.ErrorIs(t, err, models.ErrDiscreteChannel)

	fc, err := f.Forecast(models.Channel{ID: "Humidity"}, series("Humidity", 1, 2))
	require.NoError(t, err)
	assert.Len(t, fc.Points, DefaultHorizon)
}
