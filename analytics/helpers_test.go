package analytics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"greenhouse-forecaster/models"
	"greenhouse-forecaster/source"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func series(channel string, values ...float64) models.Series {
	s := models.Series{Channel: channel}
	for i, v := range values {
		s.Readings = append(s.Readings, models.Reading{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Channel:   channel,
			Value:     v,
		})
	}
	return s
}

func raw(channel string, values ...string) []models.RawReading {
	out := make([]models.RawReading, 0, len(values))
	for i, v := range values {
		out = append(out, models.RawReading{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Channel:   channel,
			Value:     v,
			Present:   v != "",
		})
	}
	return out
}

// fakeSource serves canned results per channel and counts fetches.
type fakeSource struct {
	mu      sync.Mutex
	results map[string]source.Result
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{results: map[string]source.Result{}, calls: map[string]int{}}
}

func (f *fakeSource) set(channel string, res source.Result) {
	f.mu.Lock()
	f.results[channel] = res
	f.mu.Unlock()
}

func (f *fakeSource) setValues(channel string, values ...float64) {
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	f.set(channel, source.OK(raw(channel, strs...)))
}

func (f *fakeSource) Fetch(_ context.Context, ch models.Channel, _ int) source.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ch.ID]++
	res, ok := f.results[ch.ID]
	if !ok {
		return source.Unavailable(nil)
	}
	return res
}

func (f *fakeSource) fetches(channel string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[channel]
}

// memStore is a minimal ForecastStore; failSave forces Save errors.
type memStore struct {
	mu       sync.Mutex
	records  map[string]models.ForecastRecord
	loadErr  map[string]error
	failSave error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]models.ForecastRecord{}, loadErr: map[string]error{}}
}

func (m *memStore) Save(_ context.Context, ch models.Channel, rec models.ForecastRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return m.failSave
	}
	m.records[ch.ID] = rec
	return nil
}

func (m *memStore) Load(_ context.Context, ch models.Channel) (models.ForecastRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadErr[ch.ID]; err != nil {
		return models.ForecastRecord{}, err
	}
	rec, ok := m.records[ch.ID]
	if !ok {
		return models.ForecastRecord{}, models.ErrArtifactNotFound
	}
	return rec, nil
}
