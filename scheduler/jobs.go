package scheduler

import (
	"context"
	"time"

	"greenhouse-forecaster/analytics"
)

// ForecastJob runs one forecasting tick.
type ForecastJob struct {
	Engine  *analytics.Engine
	Timeout time.Duration
	Now     func() time.Time
}

func (j ForecastJob) Name() string { return "forecast" }

func (j ForecastJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), timeoutOr(j.Timeout))
	defer cancel()

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	j.Engine.Tick(ctx, now().UTC())
	return nil
}

// RefreshJob reloads the actual series served by the display path.
type RefreshJob struct {
	Engine  *analytics.Engine
	Timeout time.Duration
}

func (j RefreshJob) Name() string { return "display_refresh" }

func (j RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), timeoutOr(j.Timeout))
	defer cancel()

	j.Engine.RefreshActuals(ctx)
	return nil
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Minute
	}
	return d
}
