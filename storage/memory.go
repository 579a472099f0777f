// Package storage holds the forecast artifact backends: memory, redis and
// CSV files.
package storage

import (
	"context"
	"sync"

	"greenhouse-forecaster/models"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.ForecastRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.ForecastRecord)}
}

func (ms *MemoryStore) Save(_ context.Context, ch models.Channel, rec models.ForecastRecord) error {
	rec.Points = models.ForecastSeries{Points: rec.Points}.Clone().Points

	ms.mu.Lock()
	ms.records[ch.ID] = rec
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Load(_ context.Context, ch models.Channel) (models.ForecastRecord, error) {
	ms.mu.RLock()
	rec, ok := ms.records[ch.ID]
	ms.mu.RUnlock()

	if !ok {
		return models.ForecastRecord{}, models.ErrArtifactNotFound
	}
	rec.Points = models.ForecastSeries{Points: rec.Points}.Clone().Points
	return rec, nil
}
