package align

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSpeakers is returned when speaker assignment is attempted with an
	// empty speaker segment list
	ErrNoSpeakers = errors.New("no speaker segments to assign from")

	// ErrEmptyTranscript is a warning: there was nothing to align
	ErrEmptyTranscript = errors.New("transcript has no segments")
)

// FormatError reports malformed timestamp or segment-line text
type FormatError struct {
	Input  string // offending text
	Line   int    // 1-based line number, 0 when not line oriented
	Reason string
	Err    error // underlying parse error, if any
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("malformed input %q: %s", e.Input, e.Reason)
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// DegenerateSegmentError reports a speaker segment that cannot be scored
type DegenerateSegmentError struct {
	Index   int
	Segment SpeakerSegment
}

func (e *DegenerateSegmentError) Error() string {
	return fmt.Sprintf("degenerate speaker segment %d (%s, %d-%d ms)",
		e.Index, e.Segment.Speaker, e.Segment.Start, e.Segment.End)
}
