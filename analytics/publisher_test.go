package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-forecaster/models"
)

var humidity = models.Channel{ID: "Humidity", Label: "Humidity (%)", Field: 3}

func TestPublisherLatestWithoutPublish(t *testing.T) {
	p := NewPublisher(newMemStore(), zerolog.Nop())

	fc, ok := p.Latest(context.Background(), humidity)
	assert.False(t, ok)
	assert.True(t, fc.Empty())
}

func TestPublisherRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewPublisher(newMemStore(), zerolog.Nop())
	f := forecastSeries("Humidity", t0, 61, 62, 63, 64, 65)

	require.NoError(t, p.Publish(ctx, humidity, models.ForecastRecord{Points: f.Points}))

	got, ok := p.Latest(ctx, humidity)
	require.True(t, ok)
	assert.Equal(t, f, got)
}

func TestPublisherLastWriteWins(t *testing.T) {
	ctx := context.Background()
	p := NewPublisher(newMemStore(), zerolog.Nop())
	f1 := forecastSeries("Humidity", t0, 1, 2, 3, 4, 5)
	f2 := forecastSeries("Humidity", t0.Add(time.Hour), 20, 22)

	require.NoError(t, p.Publish(ctx, humidity, models.ForecastRecord{RunID: "a", Points: f1.Points}))
	require.NoError(t, p.Publish(ctx, humidity, models.ForecastRecord{RunID: "b", Points: f2.Points}))

	got, ok := p.Latest(ctx, humidity)
	require.True(t, ok)
	assert.Equal(t, f2, got)

	rec, ok := p.LatestRecord(ctx, humidity)
	require.True(t, ok)
	assert.Equal(t, "b", rec.RunID)
}

func TestPublisherCopiesPoints(t *testing.T) {
	ctx := context.Background()
	p := NewPublisher(newMemStore(), zerolog.Nop())
	f := forecastSeries("Humidity", t0, 1, 2)

	require.NoError(t, p.Publish(ctx, humidity, models.ForecastRecord{Points: f.Points}))
	f.Points[0].Value = 100

	got, _ := p.Latest(ctx, humidity)
	assert.Equal(t, 1.0, got.Points[0].Value)
}

func TestPublisherAbsorbsLoadFailures(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("%w: bad csv", models.ErrArtifactCorrupt),
		errors.New("connection refused"),
	} {
		store := newMemStore()
		store.loadErr["Humidity"] = err
		p := NewPublisher(store, zerolog.Nop())

		_, ok := p.Latest(context.Background(), humidity)
		assert.False(t, ok)
	}
}

func TestPublisherSaveError(t *testing.T) {
	store := newMemStore()
	store.failSave = errors.New("disk full")
	p := NewPublisher(store, zerolog.Nop())

	err := p.Publish(context.Background(), humidity, models.ForecastRecord{})
	assert.ErrorIs(t, err, store.failSave)
}
