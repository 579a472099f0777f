package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"greenhouse-forecaster/models"
)

// ForecastStore persists one forecast record per channel. Save must replace
// the previous record atomically; Load returns models.ErrArtifactNotFound or
// models.ErrArtifactCorrupt for the two non-error absences.
type ForecastStore interface {
	Save(ctx context.Context, ch models.Channel, rec models.ForecastRecord) error
	Load(ctx context.Context, ch models.Channel) (models.ForecastRecord, error)
}

type Publisher struct {
	store ForecastStore
	log   zerolog.Logger
}

func NewPublisher(store ForecastStore, log zerolog.Logger) *Publisher {
	return &Publisher{
		store: store,
		log:   log.With().Str("component", "publisher").Logger(),
	}
}

// Publish replaces the channel's live forecast.
func (p *Publisher) Publish(ctx context.Context, ch models.Channel, rec models.ForecastRecord) error {
	rec.Channel = ch.ID
	rec.Points = models.ForecastSeries{Points: rec.Points}.Clone().Points

	if err := p.store.Save(ctx, ch, rec); err != nil {
		return fmt.Errorf("publish forecast for %s: %w", ch.ID, err)
	}
	return nil
}

// Latest returns the live forecast series, or false when none is usable.
func (p *Publisher) Latest(ctx context.Context, ch models.Channel) (models.ForecastSeries, bool) {
	rec, ok := p.LatestRecord(ctx, ch)
	if !ok {
		return models.ForecastSeries{}, false
	}
	return rec.Series(), true
}

func (p *Publisher) LatestRecord(ctx context.Context, ch models.Channel) (models.ForecastRecord, bool) {
	rec, err := p.store.Load(ctx, ch)
	switch {
	case err == nil:
		return rec, true
	case errors.Is(err, models.ErrArtifactNotFound):
		return models.ForecastRecord{}, false
	case errors.Is(err, models.ErrArtifactCorrupt):
		p.log.Warn().Err(err).Str("channel", ch.ID).Msg("Ignoring corrupt forecast artifact")
		return models.ForecastRecord{}, false
	default:
		p.log.Error().Err(err).Str("channel", ch.ID).Msg("Failed to read forecast artifact")
		return models.ForecastRecord{}, false
	}
}
