package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/audio"
	"github.com/lexiqai/speaker-aligner/internal/diarization"
	"github.com/lexiqai/speaker-aligner/internal/observability"
	"github.com/lexiqai/speaker-aligner/internal/report"
	"github.com/lexiqai/speaker-aligner/internal/transcript"
)

// forgetter is implemented by backends that cache per-file state
type forgetter interface {
	Forget(wavPath string)
}

// FileResult describes the outputs of one processed file
type FileResult struct {
	Input           string
	WavPath         string
	DiarizationPath string
	ReportPath      string
	Paragraphs      int
	Warnings        []error
}

// Processor runs convert, transcribe, diarize, align and write for a file
type Processor struct {
	outputDir   string
	converter   audio.Converter
	transcriber transcript.Transcriber
	diarizer    diarization.Diarizer
}

// NewProcessor creates a processor writing into outputDir
func NewProcessor(outputDir string, converter audio.Converter, transcriber transcript.Transcriber, diarizer diarization.Diarizer) *Processor {
	return &Processor{
		outputDir:   outputDir,
		converter:   converter,
		transcriber: transcriber,
		diarizer:    diarizer,
	}
}

// Stem is the input file name without its extension
func Stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Outputs returns the paths ProcessFile writes for input
func (p *Processor) Outputs(input string) (wavPath, diarizationPath, reportPath string) {
	stem := Stem(input)
	return filepath.Join(p.outputDir, stem+".wav"),
		filepath.Join(p.outputDir, filepath.Base(input)+"-diarization.txt"),
		filepath.Join(p.outputDir, stem+"-output.txt")
}

// ProcessFile runs the whole pipeline for one input. Every failure is
// returned as a *StageError.
func (p *Processor) ProcessFile(ctx context.Context, input string) (*FileResult, error) {
	logger, correlationID := observability.ForFile(input)
	metrics := observability.NewFileMetrics(input)
	metrics.RecordFileStart()

	result, err := p.process(ctx, input, logger, metrics)
	metrics.RecordFileEnd(err == nil)
	if err != nil {
		var stageErr *StageError
		stage := "unknown"
		if errors.As(err, &stageErr) {
			stage = stageErr.Stage
		}
		metrics.RecordError(errorType(err), stage)
		logger.Error().Err(err).Str("stage", stage).Str("correlation_id", correlationID).Msg("File failed")
		return nil, err
	}

	logger.Info().
		Int("paragraphs", result.Paragraphs).
		Str("report", result.ReportPath).
		Msg("File processed")
	return result, nil
}

func (p *Processor) process(ctx context.Context, input string, logger zerolog.Logger, metrics *observability.Metrics) (*FileResult, error) {
	wavPath, diarizationPath, reportPath := p.Outputs(input)
	result := &FileResult{
		Input:           input,
		WavPath:         wavPath,
		DiarizationPath: diarizationPath,
		ReportPath:      reportPath,
	}

	stage := func(name string, fn func() error) error {
		metrics.RecordStageStart(name)
		logger.Debug().Str("stage", name).Msg("Stage started")
		err := fn()
		metrics.RecordStageEnd(name, err == nil)
		if err != nil {
			return &StageError{File: input, Stage: name, Err: err}
		}
		return nil
	}

	err := stage(observability.StageConvert, func() error {
		return p.converter.Convert(ctx, input, wavPath)
	})
	if err != nil {
		return nil, err
	}
	defer p.forget(wavPath)

	var (
		transcribed []align.TranscribedSegment
		speakers    []align.SpeakerSegment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return stage(observability.StageTranscribe, func() error {
			var err error
			transcribed, err = p.transcriber.Transcribe(gctx, wavPath)
			return err
		})
	})
	g.Go(func() error {
		return stage(observability.StageDiarize, func() error {
			var err error
			speakers, err = p.diarizer.Diarize(gctx, wavPath)
			if err != nil {
				return err
			}
			return report.WriteDiarizationFile(diarizationPath, speakers)
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.RecordSegments(len(transcribed), len(speakers))
	logger.Debug().
		Int("transcribed_segments", len(transcribed)).
		Int("speaker_segments", len(speakers)).
		Msg("Aligning")

	var aligned *align.Result
	err = stage(observability.StageAlign, func() error {
		var err error
		aligned, err = align.Align(transcribed, speakers)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, w := range aligned.Warnings {
		metrics.RecordWarning(warningType(w))
		logger.Warn().Err(w).Msg("Alignment warning")
	}
	result.Warnings = aligned.Warnings
	result.Paragraphs = len(aligned.Lines)

	err = stage(observability.StageWrite, func() error {
		return report.WriteFile(reportPath, aligned.Lines)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordParagraphs(result.Paragraphs)

	return result, nil
}

func (p *Processor) forget(wavPath string) {
	for _, backend := range []interface{}{p.transcriber, p.diarizer} {
		if f, ok := backend.(forgetter); ok {
			f.Forget(wavPath)
		}
	}
}

func warningType(err error) string {
	if errors.Is(err, align.ErrEmptyTranscript) {
		return "empty_transcript"
	}
	return "other"
}
