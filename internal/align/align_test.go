package align

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"00:00:00.000", 0},
		{"01:02:03.500", 3723500},
		{"00:01:30.250", 90250},
		{"10:00:00", 36000000},
		{" 00:00:02.125 ", 2125},
		{"00:00:01.0009", 1000}, // truncated, not rounded
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.input)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimestamp(%q): expected %d, got %d", tt.input, tt.want, got)
		}
	}
}

func TestParseTimestamp_Malformed(t *testing.T) {
	inputs := []string{
		"", "12", "00:01", "aa:00:00.000", "00:bb:00.000", "00:00:cc", "00:00:00:00",
		"00:00:NaN", "00:00:inf", "00:00:-Inf",
		"9223372036854775807:00:00.000", "99999999999999999999:00:00.000",
	}

	for _, input := range inputs {
		_, err := ParseTimestamp(input)
		if err == nil {
			t.Errorf("Expected error for %q", input)
			continue
		}
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("Expected *FormatError for %q, got %T", input, err)
		}
	}
}

func TestValidSeconds(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected bool
	}{
		{0, true},
		{-1.5, true},
		{86400.25, true},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
		{1e16, false},
	}

	for _, tt := range tests {
		if got := ValidSeconds(tt.seconds); got != tt.expected {
			t.Errorf("ValidSeconds(%v): expected %v, got %v", tt.seconds, tt.expected, got)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	values := []int64{0, 497, 3723500, 90250, 36000000}
	for _, ms := range values {
		s := FormatTimestamp(ms)
		back, err := ParseTimestamp(s)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) failed: %v", s, err)
		}
		// .497 is not exact in binary, allow the truncation to lose 1 ms
		if back != ms && back != ms-1 {
			t.Errorf("Round trip of %d via %q gave %d", ms, s, back)
		}
	}

	if got := FormatTimestamp(3723500); got != "01:02:03.500" {
		t.Errorf("Expected '01:02:03.500', got '%s'", got)
	}
}

func TestSecondsToMillis(t *testing.T) {
	tests := []struct {
		in       float64
		expected int64
	}{
		{0, 0},
		{1.5, 1500},
		{12.3456, 12345},
		{0.0009, 0},
	}
	for _, tt := range tests {
		if got := SecondsToMillis(tt.in); got != tt.expected {
			t.Errorf("SecondsToMillis(%v): expected %d, got %d", tt.in, tt.expected, got)
		}
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want int64
	}{
		{"identical", Interval{0, 1000}, Interval{0, 1000}, 1000},
		{"partial", Interval{0, 1000}, Interval{500, 1500}, 500},
		{"contained", Interval{0, 1000}, Interval{200, 300}, 100},
		{"touching", Interval{0, 1000}, Interval{1000, 2000}, 0},
		{"disjoint", Interval{0, 1000}, Interval{3000, 4000}, 0},
		{"zero length inside", Interval{0, 1000}, Interval{500, 500}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlap(tt.a, tt.b); got != tt.want {
				t.Errorf("Expected overlap %d, got %d", tt.want, got)
			}
		})
	}
}

func TestOverlap_SymmetricAndNonNegative(t *testing.T) {
	points := []int64{-500, 0, 250, 1000, 1500, 4000}
	for _, as := range points {
		for _, ae := range points {
			for _, bs := range points {
				for _, be := range points {
					a := Interval{as, ae}
					b := Interval{bs, be}
					ab, ba := Overlap(a, b), Overlap(b, a)
					if ab != ba {
						t.Fatalf("Overlap not symmetric for %v %v: %d vs %d", a, b, ab, ba)
					}
					if ab < 0 {
						t.Fatalf("Negative overlap for %v %v: %d", a, b, ab)
					}
					if (a.End <= b.Start || b.End <= a.Start) && ab != 0 {
						t.Fatalf("Expected 0 for disjoint %v %v, got %d", a, b, ab)
					}
				}
			}
		}
	}
}

func TestAlign_SingleSpeaker(t *testing.T) {
	ts := []TranscribedSegment{{0, 1000, "Hello"}, {1000, 2000, "there"}}
	ss := []SpeakerSegment{{0, 2000, "A"}}

	res, err := Align(ts, ss)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}

	want := []MergedLine{{Speaker: "A", Text: "Hello there"}}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Errorf("Expected %v, got %v", want, res.Lines)
	}
	if res.Matched != 2 {
		t.Errorf("Expected 2 matched lines, got %d", res.Matched)
	}
	if res.HasWarnings() {
		t.Errorf("Expected no warnings, got %v", res.Warnings)
	}
}

func TestAlign_SpeakerChange(t *testing.T) {
	ts := []TranscribedSegment{{0, 1000, "Hi"}, {1000, 2000, "Bye"}}
	ss := []SpeakerSegment{{0, 1000, "A"}, {1000, 2000, "B"}}

	res, err := Align(ts, ss)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}

	want := []MergedLine{{"A", "Hi"}, {"B", "Bye"}}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Errorf("Expected %v, got %v", want, res.Lines)
	}
}

func TestAlign_NoSpeakers(t *testing.T) {
	ts := []TranscribedSegment{{0, 1000, "X"}}

	_, err := Align(ts, nil)
	if !errors.Is(err, ErrNoSpeakers) {
		t.Errorf("Expected ErrNoSpeakers, got %v", err)
	}
}

func TestAlign_EmptyTranscript(t *testing.T) {
	res, err := Align(nil, []SpeakerSegment{{0, 1000, "A"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Lines) != 0 {
		t.Errorf("Expected empty output, got %v", res.Lines)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrEmptyTranscript) {
		t.Errorf("Expected ErrEmptyTranscript warning, got %v", res.Warnings)
	}
}

func TestAssignSpeakers_TieGoesToFirst(t *testing.T) {
	ts := []TranscribedSegment{{2000, 3000, "Z"}}
	ss := []SpeakerSegment{{0, 500, "A"}, {500, 1000, "B"}}

	for i := 0; i < 3; i++ {
		matched, err := AssignSpeakers(ts, ss)
		if err != nil {
			t.Fatalf("AssignSpeakers failed: %v", err)
		}
		if matched[0].Speaker != "A" {
			t.Errorf("Expected speaker 'A', got '%s'", matched[0].Speaker)
		}
	}
}

func TestAssignSpeakers_NormalizesBySpeakerDuration(t *testing.T) {
	// B overlaps less in absolute terms but is fully covered
	ts := []TranscribedSegment{{0, 10000, "long sentence"}}
	ss := []SpeakerSegment{{0, 12000, "A"}, {9000, 9500, "B"}}

	matched, err := AssignSpeakers(ts, ss)
	if err != nil {
		t.Fatalf("AssignSpeakers failed: %v", err)
	}
	if matched[0].Speaker != "B" {
		t.Errorf("Expected speaker 'B', got '%s'", matched[0].Speaker)
	}
}

func TestAssignSpeakers_OverlappingSpeakers(t *testing.T) {
	ts := []TranscribedSegment{{0, 1000, "a"}, {1000, 2000, "b"}, {2000, 3000, "c"}}
	ss := []SpeakerSegment{{0, 2500, "A"}, {900, 3000, "B"}}

	matched, err := AssignSpeakers(ts, ss)
	if err != nil {
		t.Fatalf("AssignSpeakers failed: %v", err)
	}

	// A scores .40 .40 .20, B scores .05 .48 .48
	want := []MatchedLine{{"A", "a"}, {"B", "b"}, {"B", "c"}}
	if !reflect.DeepEqual(matched, want) {
		t.Errorf("Expected %v, got %v", want, matched)
	}
}

func TestAssignSpeakers_ZeroDurationSkipped(t *testing.T) {
	ts := []TranscribedSegment{{0, 1000, "x"}}
	ss := []SpeakerSegment{{500, 500, "Z"}, {5000, 6000, "A"}}

	matched, err := AssignSpeakers(ts, ss)
	if err != nil {
		t.Fatalf("AssignSpeakers failed: %v", err)
	}
	if matched[0].Speaker != "A" {
		t.Errorf("Expected speaker 'A', got '%s'", matched[0].Speaker)
	}
}

func TestAssignSpeakers_Degenerate(t *testing.T) {
	ts := []TranscribedSegment{{0, 1000, "x"}}

	tests := []struct {
		name      string
		speakers  []SpeakerSegment
		wantIndex int
	}{
		{"all zero length", []SpeakerSegment{{0, 0, "A"}, {10, 10, "B"}}, 0},
		{"reversed", []SpeakerSegment{{0, 1000, "A"}, {2000, 1500, "B"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AssignSpeakers(ts, tt.speakers)
			var de *DegenerateSegmentError
			if !errors.As(err, &de) {
				t.Fatalf("Expected *DegenerateSegmentError, got %v", err)
			}
			if de.Index != tt.wantIndex {
				t.Errorf("Expected index %d, got %d", tt.wantIndex, de.Index)
			}
		})
	}
}

func TestAssignSpeakers_PreservesOrderAndCount(t *testing.T) {
	ts := []TranscribedSegment{{3000, 4000, "c"}, {0, 1000, "a"}, {1000, 2000, "b"}}
	ss := []SpeakerSegment{{0, 1500, "A"}, {1500, 5000, "B"}}

	matched, err := AssignSpeakers(ts, ss)
	if err != nil {
		t.Fatalf("AssignSpeakers failed: %v", err)
	}
	if len(matched) != len(ts) {
		t.Fatalf("Expected %d matched lines, got %d", len(ts), len(matched))
	}
	for i := range ts {
		if matched[i].Text != ts[i].Text {
			t.Errorf("Line %d: expected text %q, got %q", i, ts[i].Text, matched[i].Text)
		}
	}
}

func TestMergeParagraphs(t *testing.T) {
	lines := []MatchedLine{
		{"A", "one"}, {"A", "two"}, {"B", "three"}, {"A", "four"}, {"A", "five"}, {"A", "six"},
	}

	got := MergeParagraphs(lines)
	want := []MergedLine{{"A", "one two"}, {"B", "three"}, {"A", "four five six"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// input untouched
	if lines[0].Text != "one" {
		t.Errorf("Expected input to be unchanged, got %q", lines[0].Text)
	}
}

func TestMergeParagraphs_EmptyLabelIsARealSpeaker(t *testing.T) {
	got := MergeParagraphs([]MatchedLine{{"", "a"}, {"", "b"}, {"A", "c"}})
	want := []MergedLine{{"", "a b"}, {"A", "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestMergeParagraphs_Properties(t *testing.T) {
	lines := []MatchedLine{
		{"A", "w1"}, {"B", "w2"}, {"B", "w3"}, {"C", "w4"}, {"A", "w5"}, {"A", "w6"}, {"B", "w7"},
	}
	merged := MergeParagraphs(lines)

	// conservation
	var orig, joined strings.Builder
	for _, l := range lines {
		orig.WriteString(l.Text)
	}
	for _, m := range merged {
		joined.WriteString(strings.ReplaceAll(m.Text, " ", ""))
	}
	if orig.String() != joined.String() {
		t.Errorf("Expected text %q, got %q", orig.String(), joined.String())
	}

	// boundary fidelity
	for i := 1; i < len(merged); i++ {
		if merged[i].Speaker == merged[i-1].Speaker {
			t.Errorf("Adjacent paragraphs %d and %d share speaker %q", i-1, i, merged[i].Speaker)
		}
	}

	// idempotence
	again := make([]MatchedLine, len(merged))
	for i, m := range merged {
		again[i] = MatchedLine{Speaker: m.Speaker, Text: m.Text}
	}
	if remerged := MergeParagraphs(again); !reflect.DeepEqual(remerged, merged) {
		t.Errorf("Expected idempotent merge, got %v from %v", remerged, merged)
	}
}

func TestMergeParagraphs_Empty(t *testing.T) {
	if got := MergeParagraphs(nil); len(got) != 0 {
		t.Errorf("Expected empty output, got %v", got)
	}
}
