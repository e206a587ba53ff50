package transcript

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lexiqai/speaker-aligner/internal/align"
)

// ParseCSV reads whisper.cpp -ocsv output: rows of
// <start_ms>, <end_ms>, "<text>". A leading start,end,text header and blank
// lines are skipped. Text is kept exactly as quoted.
func ParseCSV(r io.Reader) ([]align.TranscribedSegment, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var segments []align.TranscribedSegment
	first := true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.StartLine
			}
			return nil, &align.FormatError{Line: line, Reason: "malformed csv record", Err: err}
		}
		line, _ := reader.FieldPos(0)

		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[0]), "start") {
				continue
			}
		}

		start, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, &align.FormatError{Input: record[0], Line: line, Reason: "invalid start", Err: err}
		}
		end, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, &align.FormatError{Input: record[1], Line: line, Reason: "invalid end", Err: err}
		}
		if end < start {
			return nil, &align.FormatError{Input: fmt.Sprintf("%d,%d", start, end), Line: line, Reason: "end before start"}
		}

		segments = append(segments, align.TranscribedSegment{
			Start: start,
			End:   end,
			Text:  record[2],
		})
	}

	return segments, nil
}

// ReadCSVFile parses the whisper.cpp CSV at path
func ReadCSVFile(path string) ([]align.TranscribedSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	segments, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return segments, nil
}
