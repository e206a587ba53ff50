package transcript

import (
	"context"
	"fmt"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/config"
	"github.com/lexiqai/speaker-aligner/internal/deepgram"
	"github.com/lexiqai/speaker-aligner/internal/process"
	"github.com/lexiqai/speaker-aligner/internal/resilience"
	"github.com/lexiqai/speaker-aligner/internal/sidecar"
)

// Transcriber turns a converted WAV file into timed text segments
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) ([]align.TranscribedSegment, error)
}

// New builds the transcriber selected by cfg.Transcriber. dg is only used by
// the deepgram backend and may be nil otherwise.
func New(cfg *config.Config, runner process.Runner, dg *deepgram.Client) (Transcriber, error) {
	switch cfg.Transcriber {
	case config.TranscriberWhisperCpp:
		return NewWhisperCpp(cfg, runner), nil

	case config.TranscriberWhisperHTTP:
		breaker := resilience.NewCircuitBreaker("whisper", cfg.CircuitBreakerMaxFailures, cfg.BreakerResetTimeout())
		retryConfig := resilience.DefaultRetryConfig()
		retryConfig.MaxAttempts = cfg.RetryMaxAttempts
		retryConfig.InitialBackoff = cfg.RetryBackoff()

		client := sidecar.New("whisper", cfg.WhisperURL, cfg.PerFileTimeout(),
			sidecar.WithBreaker(breaker),
			sidecar.WithRetry(retryConfig),
		)
		return NewWhisperHTTP(client, cfg.Language), nil

	case config.TranscriberDeepgram:
		if dg == nil {
			return nil, fmt.Errorf("deepgram transcriber requires a deepgram client")
		}
		return NewDeepgram(dg), nil
	}
	return nil, fmt.Errorf("unknown transcriber %q", cfg.Transcriber)
}
