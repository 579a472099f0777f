package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-forecaster/models"
	"greenhouse-forecaster/source"
)

func TestBuildSeriesFiltersMissingAndNonNumeric(t *testing.T) {
	readings := raw("Humidity", "60.5", "", "abc", "NaN", " 62 ", "+Inf", "63")

	s := BuildSeries("Humidity", readings)

	assert.Equal(t, []float64{60.5, 62, 63}, s.Values())
	assert.Equal(t, readings[0].Timestamp, s.Readings[0].Timestamp)
	assert.Equal(t, readings[4].Timestamp, s.Readings[1].Timestamp)
}

func TestSeriesStoreLoadSnapshots(t *testing.T) {
	src := newFakeSource()
	src.setValues("Humidity", 60, 61)
	store := NewSeriesStore(src, 100, zerolog.Nop())
	ch := models.Channel{ID: "Humidity"}

	_, ok := store.Snapshot("Humidity")
	assert.False(t, ok)

	s := store.Load(context.Background(), ch)
	assert.Equal(t, 2, s.Len())

	snap, ok := store.Snapshot("Humidity")
	require.True(t, ok)
	assert.Equal(t, s, snap)
}

func TestSeriesStoreUnavailableIsEmpty(t *testing.T) {
	src := newFakeSource()
	src.setValues("Humidity", 60, 61)
	store := NewSeriesStore(src, 100, zerolog.Nop())
	ch := models.Channel{ID: "Humidity"}
	store.Load(context.Background(), ch)

	for _, res := range []source.Result{
		source.Unavailable(errors.New("timeout")),
		source.Corrupt(errors.New("bad json")),
	} {
		src.set("Humidity", res)
		s := store.Load(context.Background(), ch)
		assert.True(t, s.Empty())
		assert.Equal(t, "Humidity", s.Channel)
	}

	snap, ok := store.Snapshot("Humidity")
	require.True(t, ok)
	assert.Equal(t, 2, snap.Len(), "failed loads keep the last good snapshot")
}
