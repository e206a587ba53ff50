package align

// Interval is a time span in milliseconds
type Interval struct {
	Start int64
	End   int64
}

// Duration returns End - Start
func (i Interval) Duration() int64 {
	return i.End - i.Start
}

// TranscribedSegment is one timestamped span of recognized text
type TranscribedSegment struct {
	Start int64
	End   int64
	Text  string
}

// Interval returns the segment's time span
func (t TranscribedSegment) Interval() Interval {
	return Interval{Start: t.Start, End: t.End}
}

// SpeakerSegment is one diarization span labeled with a speaker
type SpeakerSegment struct {
	Start   int64
	End     int64
	Speaker string
}

// Interval returns the segment's time span
func (s SpeakerSegment) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// MatchedLine is a transcribed text attributed to a single speaker
type MatchedLine struct {
	Speaker string
	Text    string
}

// MergedLine is a paragraph of consecutive text from one speaker
type MergedLine struct {
	Speaker string
	Text    string
}

// Result is the output of Align for one recording
type Result struct {
	// Lines are the merged paragraphs in chronological order
	Lines []MergedLine

	// Matched is the number of transcribed segments that were attributed
	Matched int

	// Warnings holds non-fatal conditions, e.g. ErrEmptyTranscript
	Warnings []error
}

// HasWarnings reports whether the alignment produced any warnings
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
