package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"greenhouse-forecaster/models"
)

type Outcome string

const (
	OutcomePublished    Outcome = "published"
	OutcomeUnchanged    Outcome = "unchanged"
	OutcomeNoData       Outcome = "no_data"
	OutcomeInsufficient Outcome = "insufficient_history"
	OutcomeDiscrete     Outcome = "discrete"
	OutcomeFailed       Outcome = "failed"
)

type OutcomeCallback func(channel string, outcome Outcome)

// Notifier is told about every record that was published.
type Notifier interface {
	ForecastPublished(ctx context.Context, rec models.ForecastRecord) error
}

// GraphSink receives the fused view of a freshly forecast channel.
type GraphSink interface {
	WriteGraph(ch models.Channel, view models.FusedView) error
}

type ChannelReport struct {
	Channel     string  `json:"channel"`
	Outcome     Outcome `json:"outcome"`
	Fingerprint string  `json:"fingerprint,omitempty"`
	Points      int     `json:"points"`
	Error       string  `json:"error,omitempty"`
}

type TickReport struct {
	RunID    string          `json:"run_id"`
	At       time.Time       `json:"at"`
	Channels []ChannelReport `json:"channels"`
}

type EngineOptions struct {
	Forecaster Forecaster
	Fusion     FusionOptions
	Notifier   Notifier
	Graphs     GraphSink
	OnOutcome  OutcomeCallback
}

// Engine owns the per-channel change state and runs the forecasting tick.
// Views are served from published records and never wait on a tick.
type Engine struct {
	catalog    *models.Catalog
	series     *SeriesStore
	publisher  *Publisher
	forecaster Forecaster
	fusion     FusionOptions
	notifier   Notifier
	graphs     GraphSink
	onOutcome  OutcomeCallback
	log        zerolog.Logger

	mu     sync.Mutex
	states map[string]ChangeState
}

func NewEngine(catalog *models.Catalog, series *SeriesStore, publisher *Publisher, opts EngineOptions, log zerolog.Logger) *Engine {
	if opts.Forecaster.Horizon <= 0 || opts.Forecaster.Step <= 0 {
		opts.Forecaster = NewForecaster(opts.Forecaster.Horizon, opts.Forecaster.Step)
	}
	if opts.Fusion == (FusionOptions{}) {
		opts.Fusion = DefaultFusionOptions()
	}

	return &Engine{
		catalog:    catalog,
		series:     series,
		publisher:  publisher,
		forecaster: opts.Forecaster,
		fusion:     opts.Fusion,
		notifier:   opts.Notifier,
		graphs:     opts.Graphs,
		onOutcome:  opts.OnOutcome,
		log:        log.With().Str("component", "engine").Logger(),
		states:     make(map[string]ChangeState),
	}
}

// Tick runs one forecasting pass over every catalog channel.
func (e *Engine) Tick(ctx context.Context, now time.Time) TickReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := TickReport{RunID: uuid.NewString(), At: now}
	for _, ch := range e.catalog.Channels() {
		cr := e.tickChannel(ctx, ch, report.RunID, now)
		report.Channels = append(report.Channels, cr)

		if e.onOutcome != nil {
			e.onOutcome(ch.ID, cr.Outcome)
		}
	}

	e.log.Info().
		Str("run_id", report.RunID).
		Int("channels", len(report.Channels)).
		Int("published", report.Count(OutcomePublished)).
		Msg("Forecast tick finished")

	return report
}

func (e *Engine) tickChannel(ctx context.Context, ch models.Channel, runID string, now time.Time) ChannelReport {
	cr := ChannelReport{Channel: ch.ID}

	series := e.series.Load(ctx, ch)
	if series.Empty() {
		cr.Outcome = OutcomeNoData
		return cr
	}
	if ch.Discrete {
		cr.Outcome = OutcomeDiscrete
		return cr
	}

	changed, next := HasChanged(e.states[ch.ID], series)
	cr.Fingerprint = next.Fingerprint.String()
	if !changed {
		cr.Outcome = OutcomeUnchanged
		e.log.Debug().Str("channel", ch.ID).Msg("No new data, skipping")
		return cr
	}

	forecast, err := e.forecaster.Forecast(ch, series)
	if errors.Is(err, models.ErrInsufficientHistory) {
		e.states[ch.ID] = next
		cr.Outcome = OutcomeInsufficient
		e.log.Info().Str("channel", ch.ID).Int("points", series.Len()).Msg("Not enough valid data to forecast")
		return cr
	}
	if err != nil {
		cr.Outcome, cr.Error = OutcomeFailed, err.Error()
		return cr
	}

	rec := models.ForecastRecord{
		Channel:     ch.ID,
		RunID:       runID,
		GeneratedAt: now,
		Points:      forecast.Points,
	}
	if err := e.publisher.Publish(ctx, ch, rec); err != nil {
		// state is not committed so the next tick retries
		cr.Outcome, cr.Error = OutcomeFailed, err.Error()
		e.log.Error().Err(err).Str("channel", ch.ID).Msg("Failed to publish forecast")
		return cr
	}

	e.states[ch.ID] = next
	cr.Outcome = OutcomePublished
	cr.Points = len(forecast.Points)

	if e.notifier != nil {
		if err := e.notifier.ForecastPublished(ctx, rec); err != nil {
			e.log.Warn().Err(err).Str("channel", ch.ID).Msg("Forecast notification failed")
		}
	}
	if e.graphs != nil {
		view := Fuse(series, forecast, e.fusionFor(ch))
		if err := e.graphs.WriteGraph(ch, view); err != nil {
			e.log.Warn().Err(err).Str("channel", ch.ID).Msg("Failed to write graph")
		}
	}

	return cr
}

// RefreshActuals reloads every channel's actual series for the display path
// and returns how many channels have data.
func (e *Engine) RefreshActuals(ctx context.Context) int {
	loaded := 0
	for _, ch := range e.catalog.Channels() {
		if !e.series.Load(ctx, ch).Empty() {
			loaded++
		}
	}
	return loaded
}

// View builds the fused view of one channel from the latest actual snapshot
// (loading it on demand) and the latest published forecast.
func (e *Engine) View(ctx context.Context, channelID string) (models.FusedView, models.Channel, error) {
	ch, err := e.catalog.Lookup(channelID)
	if err != nil {
		return models.FusedView{}, models.Channel{}, err
	}

	actual, ok := e.series.Snapshot(ch.ID)
	if !ok {
		actual = e.series.Load(ctx, ch)
	}

	var forecast models.ForecastSeries
	if !ch.Discrete {
		forecast, _ = e.publisher.Latest(ctx, ch)
	}

	view := Fuse(actual, forecast, e.fusionFor(ch))
	view.Channel = ch.ID
	return view, ch, nil
}

// LatestForecast returns the live record of one channel.
func (e *Engine) LatestForecast(ctx context.Context, channelID string) (models.ForecastRecord, bool, error) {
	ch, err := e.catalog.Lookup(channelID)
	if err != nil {
		return models.ForecastRecord{}, false, err
	}
	rec, ok := e.publisher.LatestRecord(ctx, ch)
	return rec, ok, nil
}

func (e *Engine) Catalog() *models.Catalog {
	return e.catalog
}

func (e *Engine) fusionFor(ch models.Channel) FusionOptions {
	opts := e.fusion
	opts.Discrete = ch.Discrete
	return opts
}

func (r TickReport) Count(o Outcome) int {
	n := 0
	for _, c := range r.Channels {
		if c.Outcome == o {
			n++
		}
	}
	return n
}
