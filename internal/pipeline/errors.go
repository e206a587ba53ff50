package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/process"
	"github.com/lexiqai/speaker-aligner/internal/resilience"
)

// ErrDuplicateStem is returned for an input whose stem collides with an
// earlier input, since both would write the same output files
var ErrDuplicateStem = errors.New("another input file has the same name stem")

// StageError records which stage failed for which input file
type StageError struct {
	File  string
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.File, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// errorType buckets err for the errors_total metric
func errorType(err error) string {
	var (
		exitErr       *process.ExitError
		formatErr     *align.FormatError
		degenerateErr *align.DegenerateSegmentError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, align.ErrNoSpeakers):
		return "no_speakers"
	case errors.Is(err, ErrDuplicateStem):
		return "duplicate"
	case errors.As(err, &exitErr):
		return "exit"
	case errors.As(err, &formatErr):
		return "format"
	case errors.As(err, &degenerateErr):
		return "degenerate"
	}
	return "error"
}
