package diarization

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/lexiqai/speaker-aligner/internal/align"
)

// Output formats understood by ParseFile
const (
	FormatPyannote = "pyannote"
	FormatRTTM     = "rttm"
)

// ParsePyannote reads the text form of a pyannote Annotation, one turn per
// line:
//
//	[ 00:00:00.497 -->  00:00:01.983] A SPEAKER_00
//
// The track name is optional when the label is a single word. A label may
// contain spaces when a track precedes it. Blank lines are skipped.
func ParsePyannote(r io.Reader) ([]align.SpeakerSegment, error) {
	var segments []align.SpeakerSegment

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		seg, err := parsePyannoteLine(line)
		if err != nil {
			err.Line = lineNo
			return nil, err
		}
		segments = append(segments, seg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read diarization: %w", err)
	}
	return segments, nil
}

func parsePyannoteLine(line string) (align.SpeakerSegment, *align.FormatError) {
	closeIdx := strings.IndexByte(line, ']')
	if !strings.HasPrefix(line, "[") || closeIdx < 0 {
		return align.SpeakerSegment{}, &align.FormatError{Input: line, Reason: "expected [ start --> end ] label"}
	}

	start, end, ok := strings.Cut(line[1:closeIdx], "-->")
	if !ok {
		return align.SpeakerSegment{}, &align.FormatError{Input: line, Reason: "missing -->"}
	}

	startMs, err := align.ParseTimestamp(start)
	if err != nil {
		return align.SpeakerSegment{}, &align.FormatError{Input: line, Reason: "invalid start", Err: err}
	}
	endMs, err := align.ParseTimestamp(end)
	if err != nil {
		return align.SpeakerSegment{}, &align.FormatError{Input: line, Reason: "invalid end", Err: err}
	}

	// "<track> <label>" or just "<label>"; the label runs to end of line
	rest := strings.TrimSpace(line[closeIdx+1:])
	if rest == "" {
		return align.SpeakerSegment{}, &align.FormatError{Input: line, Reason: "expected [track] label after ]"}
	}
	label := rest
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		label = strings.TrimSpace(rest[i:])
	}

	return align.SpeakerSegment{Start: startMs, End: endMs, Speaker: label}, nil
}

// ParseRTTM reads NIST RTTM. Only SPEAKER records are used:
//
//	SPEAKER <file> <chan> <onset_s> <dur_s> <NA> <NA> <label> <NA> <NA>
//
// Other record types and ";;" comments are skipped.
func ParseRTTM(r io.Reader) ([]align.SpeakerSegment, error) {
	var segments []align.SpeakerSegment

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;") {
			continue
		}

		fields := strings.Fields(line)
		if fields[0] != "SPEAKER" {
			continue
		}
		if len(fields) < 8 {
			return nil, &align.FormatError{Input: line, Line: lineNo, Reason: "SPEAKER record needs at least 8 fields"}
		}

		onset, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, &align.FormatError{Input: line, Line: lineNo, Reason: "invalid onset", Err: err}
		}
		duration, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, &align.FormatError{Input: line, Line: lineNo, Reason: "invalid duration", Err: err}
		}
		if !align.ValidSeconds(onset) || !align.ValidSeconds(duration) || !align.ValidSeconds(onset+duration) {
			return nil, &align.FormatError{Input: line, Line: lineNo, Reason: "onset or duration out of range"}
		}

		segments = append(segments, align.SpeakerSegment{
			Start:   align.SecondsToMillis(onset),
			End:     align.SecondsToMillis(onset + duration),
			Speaker: fields[7],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rttm: %w", err)
	}
	return segments, nil
}

// Parse dispatches on format
func Parse(r io.Reader, format string) ([]align.SpeakerSegment, error) {
	switch format {
	case FormatPyannote, "":
		return ParsePyannote(r)
	case FormatRTTM:
		return ParseRTTM(r)
	}
	return nil, fmt.Errorf("unknown diarization format %q", format)
}

// ParseFile parses the diarization file at path
func ParseFile(path, format string) ([]align.SpeakerSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	segments, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return segments, nil
}
