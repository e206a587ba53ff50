package diarization

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/config"
	"github.com/lexiqai/speaker-aligner/internal/process"
)

// Command runs an external diarization program as `<cmd> <wav>` and parses
// what it prints on stdout. The program receives HF_TOKEN and NUM_SPEAKERS
// in its environment.
type Command struct {
	binary      string
	format      string
	hfToken     string
	numSpeakers int
	runner      process.Runner
}

// NewCommand creates a command diarizer
func NewCommand(cfg *config.Config, runner process.Runner) *Command {
	if runner == nil {
		runner = process.ExecRunner{}
	}
	return &Command{
		binary:      cfg.DiarizeCommand,
		format:      cfg.DiarizeFormat,
		hfToken:     cfg.HFToken,
		numSpeakers: cfg.NumSpeakers,
		runner:      runner,
	}
}

// Diarize runs the program and parses its output
func (c *Command) Diarize(ctx context.Context, wavPath string) ([]align.SpeakerSegment, error) {
	env := []string{"NUM_SPEAKERS=" + strconv.Itoa(c.numSpeakers)}
	if c.hfToken != "" {
		env = append(env, "HF_TOKEN="+c.hfToken)
	}

	res, err := c.runner.Run(ctx, process.Command{
		Binary: c.binary,
		Args:   []string{wavPath},
		Env:    env,
	})
	if err != nil {
		return nil, fmt.Errorf("diarize command: %w", err)
	}

	segments, err := Parse(bytes.NewReader(res.Stdout), c.format)
	if err != nil {
		return nil, fmt.Errorf("diarize command output: %w", err)
	}
	return segments, nil
}

// HealthCheck reports whether the diarization program can be found
func (c *Command) HealthCheck(ctx context.Context) (bool, error) {
	if err := process.LookPath(c.binary); err != nil {
		return false, err
	}
	return true, nil
}
