package audio

import (
	"context"
	"fmt"

	"github.com/lexiqai/speaker-aligner/internal/process"
)

// Target format every backend consumes
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
)

// Converter turns an arbitrary media file into a mono 16 kHz s16le WAV
type Converter interface {
	Convert(ctx context.Context, input, output string) error
}

// FFmpeg converts media by shelling out to the ffmpeg binary
type FFmpeg struct {
	binary string
	runner process.Runner
}

// NewFFmpeg creates a converter. An empty binary means "ffmpeg" from PATH.
func NewFFmpeg(binary string, runner process.Runner) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	if runner == nil {
		runner = process.ExecRunner{}
	}
	return &FFmpeg{binary: binary, runner: runner}
}

// Args returns the ffmpeg arguments used for a conversion. Existing output is
// overwritten.
func (f *FFmpeg) Args(input, output string) []string {
	return []string{
		"-y",
		"-i", input,
		"-ar", fmt.Sprint(SampleRate),
		"-ac", fmt.Sprint(Channels),
		"-c:a", "pcm_s16le",
		output,
	}
}

// Convert runs ffmpeg and waits for it to finish
func (f *FFmpeg) Convert(ctx context.Context, input, output string) error {
	_, err := f.runner.Run(ctx, process.Command{
		Binary: f.binary,
		Args:   f.Args(input, output),
	})
	if err != nil {
		return fmt.Errorf("ffmpeg convert %s: %w", input, err)
	}
	return nil
}

// HealthCheck reports whether the ffmpeg binary can be found
func (f *FFmpeg) HealthCheck(ctx context.Context) (bool, error) {
	if err := process.LookPath(f.binary); err != nil {
		return false, err
	}
	return true, nil
}
