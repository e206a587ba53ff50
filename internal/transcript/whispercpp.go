package transcript

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/config"
	"github.com/lexiqai/speaker-aligner/internal/process"
)

// WhisperCpp runs the whisper.cpp CLI and reads the CSV it writes next to
// the input as <wav>.csv
type WhisperCpp struct {
	binary   string
	model    string
	maxLen   int
	language string
	runner   process.Runner
}

// NewWhisperCpp creates a whisper.cpp transcriber
func NewWhisperCpp(cfg *config.Config, runner process.Runner) *WhisperCpp {
	if runner == nil {
		runner = process.ExecRunner{}
	}
	return &WhisperCpp{
		binary:   cfg.WhisperPath,
		model:    cfg.WhisperModel,
		maxLen:   cfg.WhisperMaxLen,
		language: cfg.Language,
		runner:   runner,
	}
}

// Args returns the whisper.cpp command line for wavPath
func (w *WhisperCpp) Args(wavPath string) []string {
	args := []string{"-m", w.model}
	if w.maxLen > 0 {
		args = append(args, "-ml", strconv.Itoa(w.maxLen))
	}
	if w.language != "" {
		args = append(args, "-l", w.language)
	}
	return append(args, "-ocsv", "-f", wavPath)
}

// CSVPath is where whisper.cpp writes its transcript for wavPath
func CSVPath(wavPath string) string {
	return wavPath + ".csv"
}

// Transcribe runs whisper.cpp on wavPath and parses its CSV output
func (w *WhisperCpp) Transcribe(ctx context.Context, wavPath string) ([]align.TranscribedSegment, error) {
	if _, err := w.runner.Run(ctx, process.Command{Binary: w.binary, Args: w.Args(wavPath)}); err != nil {
		return nil, fmt.Errorf("whisper.cpp: %w", err)
	}
	return ReadCSVFile(CSVPath(wavPath))
}

// HealthCheck reports whether the whisper.cpp binary can be found
func (w *WhisperCpp) HealthCheck(ctx context.Context) (bool, error) {
	if err := process.LookPath(w.binary); err != nil {
		return false, err
	}
	return true, nil
}
