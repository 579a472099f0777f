package analytics

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"greenhouse-forecaster/models"
	"greenhouse-forecaster/source"
)

// SeriesStore turns raw source readings into actual series and keeps the
// most recently loaded series of every channel for the display path.
type SeriesStore struct {
	source source.Source
	limit  int
	log    zerolog.Logger

	mu        sync.RWMutex
	snapshots map[string]models.Series
}

func NewSeriesStore(src source.Source, limit int, log zerolog.Logger) *SeriesStore {
	return &SeriesStore{
		source:    src,
		limit:     limit,
		log:       log.With().Str("component", "series_store").Logger(),
		snapshots: make(map[string]models.Series),
	}
}

// Load fetches the channel from the source. Unavailable or corrupt sources
// yield an empty series; the previous snapshot is kept in that case.
func (s *SeriesStore) Load(ctx context.Context, ch models.Channel) models.Series {
	res := s.source.Fetch(ctx, ch, s.limit)
	if res.Status != source.StatusOK {
		s.log.Warn().
			Err(res.Err).
			Str("channel", ch.ID).
			Str("status", res.Status.String()).
			Msg("Readings unavailable")
		return models.Series{Channel: ch.ID}
	}

	series := BuildSeries(ch.ID, res.Readings)
	skipped := len(res.Readings) - series.Len()
	if skipped > 0 {
		s.log.Debug().Str("channel", ch.ID).Int("skipped", skipped).Msg("Dropped missing or non-numeric readings")
	}

	s.mu.Lock()
	s.snapshots[ch.ID] = series
	s.mu.Unlock()

	return series
}

// Snapshot returns the last series Load produced for the channel.
func (s *SeriesStore) Snapshot(channel string) (models.Series, bool) {
	s.mu.RLock()
	series, ok := s.snapshots[channel]
	s.mu.RUnlock()
	return series, ok
}

// BuildSeries keeps the readings whose value is present and a finite number,
// preserving arrival order.
func BuildSeries(channel string, raw []models.RawReading) models.Series {
	readings := make([]models.Reading, 0, len(raw))
	for _, r := range raw {
		if !r.Present {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Value), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		reading := models.Reading{Timestamp: r.Timestamp, Channel: channel, Value: v}
		if reading.Validate() != nil {
			continue
		}
		readings = append(readings, reading)
	}
	return models.Series{Channel: channel, Readings: readings}
}
