package align

// MergeParagraphs folds chronologically adjacent lines from the same speaker
// into one paragraph, joining their texts with a single space. The input is
// not modified and no text is dropped or reordered.
func MergeParagraphs(lines []MatchedLine) []MergedLine {
	merged := make([]MergedLine, 0, len(lines))
	for _, line := range lines {
		// An empty output means no previous speaker, so "" is still a real label
		if n := len(merged); n > 0 && merged[n-1].Speaker == line.Speaker {
			merged[n-1].Text += " " + line.Text
			continue
		}
		merged = append(merged, MergedLine{Speaker: line.Speaker, Text: line.Text})
	}
	return merged
}

// Align assigns speakers to the transcript and merges the result into
// paragraphs. An empty transcript is not an error; it yields an empty result
// carrying ErrEmptyTranscript as a warning.
func Align(transcribed []TranscribedSegment, speakers []SpeakerSegment) (*Result, error) {
	if len(transcribed) == 0 {
		return &Result{
			Lines:    []MergedLine{},
			Warnings: []error{ErrEmptyTranscript},
		}, nil
	}

	matched, err := AssignSpeakers(transcribed, speakers)
	if err != nil {
		return nil, err
	}

	return &Result{
		Lines:   MergeParagraphs(matched),
		Matched: len(matched),
	}, nil
}
