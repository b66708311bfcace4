// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"fmt"
)

// Stage names a step of a request.
type Stage string

// Request stages, in execution order.
const (
	StageConfig    Stage = "config"
	StageComposite Stage = "composite"
	StageIW        Stage = "iw"
	StageIRMAD     Stage = "irmad"
	StageNormalize Stage = "normalize"
	StageVectorize Stage = "vectorize"
)

var (
	// ErrNilProvider indicates a Runner without a CompositeProvider.
	ErrNilProvider = errors.New("pipeline: nil composite provider")

	// ErrUnknownMethod indicates a Method outside the declared set.
	ErrUnknownMethod = errors.New("pipeline: unknown method")

	// ErrInvalidRequest indicates a request with a negative minimum area or
	// no coefficient table.
	ErrInvalidRequest = errors.New("pipeline: invalid request")
)

// StageError reports the request and stage a failure happened in.
type StageError struct {
	Request string
	Stage   Stage
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: request %q: %s: %v", e.Request, e.Stage, e.Err)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *StageError) Unwrap() error { return e.Err }

func stageErr(req string, stage Stage, err error) error {
	return &StageError{Request: req, Stage: stage, Err: err}
}
