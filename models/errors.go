package models

import "errors"

var (
	ErrUnknownChannel      = errors.New("unknown channel")
	ErrInsufficientHistory = errors.New("insufficient history to fit")
	ErrDiscreteChannel     = errors.New("channel is discrete-valued")
	ErrArtifactNotFound    = errors.New("forecast artifact not found")
	ErrArtifactCorrupt     = errors.New("forecast artifact corrupt")
	ErrNothingToRender     = errors.New("nothing to render")
)
