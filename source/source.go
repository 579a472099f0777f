// Package source fetches raw readings from external feeds and reports the
// outcome as an explicit Result instead of an error the core has to handle.
package source

import (
	"context"

	"greenhouse-forecaster/models"
)

type Status int

const (
	StatusOK Status = iota
	StatusUnavailable
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// Result is what a Source hands back. Err carries the diagnosis for the
// non-OK statuses and is only meant for logging.
type Result struct {
	Status   Status
	Readings []models.RawReading
	Err      error
}

func OK(readings []models.RawReading) Result {
	return Result{Status: StatusOK, Readings: readings}
}

func Unavailable(err error) Result {
	return Result{Status: StatusUnavailable, Err: err}
}

func Corrupt(err error) Result {
	return Result{Status: StatusCorrupt, Err: err}
}

// Source supplies up to limit most recent readings for a channel.
type Source interface {
	Fetch(ctx context.Context, ch models.Channel, limit int) Result
}
