package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lexiqai/speaker-aligner/internal/observability"
)

// Summary counts the outcome of a batch run
type Summary struct {
	Processed int
	Failed    int
	Warnings  int
	Failures  []error
	Duration  time.Duration
}

// BatchOptions bounds a batch run
type BatchOptions struct {
	Workers     int           // files processed concurrently, at least 1
	FileTimeout time.Duration // per-file deadline, 0 for none
}

// ListInputs returns the regular, non-hidden files directly inside dir,
// sorted by name
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var inputs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}
		inputs = append(inputs, filepath.Join(dir, e.Name()))
	}
	sort.Strings(inputs)
	return inputs, nil
}

// Batch processes every input file in inputDir. A failing file is logged
// and counted but does not stop the others; only ctx cancellation does.
func (p *Processor) Batch(ctx context.Context, inputDir string, opts BatchOptions) (*Summary, error) {
	logger := observability.GetLogger()
	start := time.Now()

	inputs, err := ListInputs(inputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	logger.Info().
		Str("input_dir", inputDir).
		Str("output_dir", p.outputDir).
		Int("files", len(inputs)).
		Int("workers", opts.Workers).
		Msg("Batch starting")

	summary := &Summary{}
	var mu sync.Mutex
	record := func(res *FileResult, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, err)
			return
		}
		summary.Processed++
		summary.Warnings += len(res.Warnings)
	}

	var g errgroup.Group
	g.SetLimit(max(opts.Workers, 1))

	seen := make(map[string]string, len(inputs))
	for _, input := range inputs {
		if ctx.Err() != nil {
			break
		}

		stem := Stem(input)
		if first, dup := seen[stem]; dup {
			err := &StageError{File: input, Stage: "plan", Err: fmt.Errorf("%w: %s", ErrDuplicateStem, filepath.Base(first))}
			logger.Error().Err(err).Str("file", input).Msg("Skipping file")
			record(nil, err)
			continue
		}
		seen[stem] = input

		input := input // per-iteration copy (go directive is below 1.22)
		g.Go(func() error {
			fileCtx := ctx
			if opts.FileTimeout > 0 {
				var cancel context.CancelFunc
				fileCtx, cancel = context.WithTimeout(ctx, opts.FileTimeout)
				defer cancel()
			}
			record(p.ProcessFile(fileCtx, input))
			return nil
		})
	}
	g.Wait()

	summary.Duration = time.Since(start)
	logger.Info().
		Int("processed", summary.Processed).
		Int("failed", summary.Failed).
		Int("warnings", summary.Warnings).
		Dur("duration", summary.Duration).
		Msg("Batch finished")

	return summary, ctx.Err()
}
