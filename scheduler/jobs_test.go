package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse-forecaster/analytics"
	"greenhouse-forecaster/models"
	"greenhouse-forecaster/source"
	"greenhouse-forecaster/storage"
)

func newEngine(t *testing.T) *analytics.Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "master.csv")
	body := "created_at,Humidity\n" +
		"2025-03-01T10:00:00Z,60\n" +
		"2025-03-01T10:01:00Z,62\n" +
		"2025-03-01T10:02:00Z,64\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	catalog, err := models.NewCatalog([]models.Channel{{ID: "Humidity"}})
	require.NoError(t, err)

	return analytics.NewEngine(
		catalog,
		analytics.NewSeriesStore(source.NewCSVFile(path), 100, zerolog.Nop()),
		analytics.NewPublisher(storage.NewMemoryStore(), zerolog.Nop()),
		analytics.EngineOptions{},
		zerolog.Nop(),
	)
}

func TestForecastJobPublishes(t *testing.T) {
	engine := newEngine(t)
	job := ForecastJob{Engine: engine, Now: func() time.Time { return time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC) }}

	require.NoError(t, job.Run())

	rec, ok, err := engine.LatestForecast(context.Background(), "Humidity")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, rec.Points, analytics.DefaultHorizon)
	assert.InDelta(t, 66, rec.Points[0].Value, 1e-9)
}

func TestRefreshJobLoadsSnapshot(t *testing.T) {
	engine := newEngine(t)
	require.NoError(t, RefreshJob{Engine: engine}.Run())

	view, _, err := engine.View(context.Background(), "Humidity")
	require.NoError(t, err)
	assert.Len(t, view.Actual, 3)
	assert.Empty(t, view.Forecast)
}
