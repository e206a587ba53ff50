package align

import "math"

// AssignSpeakers attributes every transcribed segment to exactly one speaker.
//
// Each candidate speaker segment s is scored by overlap(t, s) / duration(s),
// i.e. normalized by the speaker segment's length, not the transcribed
// segment's. The highest score wins; ties go to the candidate that appears
// first in speakers. A transcribed segment that overlaps nothing still gets
// the first candidate with a positive duration, since every score is 0.
//
// Zero-length speaker segments can never overlap anything and are skipped.
// A segment ending before it starts is rejected with *DegenerateSegmentError,
// as is a speaker list made only of zero-length segments.
func AssignSpeakers(transcribed []TranscribedSegment, speakers []SpeakerSegment) ([]MatchedLine, error) {
	if len(speakers) == 0 {
		return nil, ErrNoSpeakers
	}
	if err := validateSpeakers(speakers); err != nil {
		return nil, err
	}

	matched := make([]MatchedLine, 0, len(transcribed))
	for _, t := range transcribed {
		best := bestSpeaker(t.Interval(), speakers)
		matched = append(matched, MatchedLine{
			Speaker: speakers[best].Speaker,
			Text:    t.Text,
		})
	}
	return matched, nil
}

func validateSpeakers(speakers []SpeakerSegment) error {
	usable := false
	for i, s := range speakers {
		d := s.Interval().Duration()
		if d < 0 {
			return &DegenerateSegmentError{Index: i, Segment: s}
		}
		if d > 0 {
			usable = true
		}
	}
	if !usable {
		return &DegenerateSegmentError{Index: 0, Segment: speakers[0]}
	}
	return nil
}

// bestSpeaker returns the index of the highest scoring speaker segment.
// validateSpeakers guarantees at least one finite score.
func bestSpeaker(t Interval, speakers []SpeakerSegment) int {
	best := -1
	bestScore := math.Inf(-1)
	for i, s := range speakers {
		score := overlapFraction(t, s.Interval())
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func overlapFraction(t, s Interval) float64 {
	d := s.Duration()
	if d <= 0 {
		return math.Inf(-1)
	}
	return float64(Overlap(t, s)) / float64(d)
}
