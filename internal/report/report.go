// Package report writes the speaker-attributed transcript and the raw
// diarization dump.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lexiqai/speaker-aligner/internal/align"
)

// Write renders each paragraph as "<speaker>: <text>" followed by a blank line
func Write(w io.Writer, lines []align.MergedLine) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := fmt.Fprintf(bw, "%s: %s\n\n", line.Speaker, line.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteDiarization dumps speaker segments in pyannote's text form, which
// diarization.ParsePyannote reads back
func WriteDiarization(w io.Writer, segments []align.SpeakerSegment) error {
	bw := bufio.NewWriter(w)
	for i, seg := range segments {
		_, err := fmt.Fprintf(bw, "[ %s -->  %s] %s %s\n",
			align.FormatTimestamp(seg.Start), align.FormatTimestamp(seg.End), trackName(i), seg.Speaker)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// trackName returns A, B, ..., Z, AA, AB, ... for i = 0, 1, ...
func trackName(i int) string {
	name := ""
	for i++; i > 0; i = (i - 1) / 26 {
		name = string(rune('A'+(i-1)%26)) + name
	}
	return name
}

// WriteFile writes the paragraph report to path. The file is written to a
// temporary name first so a failed run never leaves a truncated report.
func WriteFile(path string, lines []align.MergedLine) error {
	return writeAtomic(path, func(w io.Writer) error { return Write(w, lines) })
}

// WriteDiarizationFile writes the diarization dump to path
func WriteDiarizationFile(path string, segments []align.SpeakerSegment) error {
	return writeAtomic(path, func(w io.Writer) error { return WriteDiarization(w, segments) })
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
