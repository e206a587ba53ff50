package diarization

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/config"
	"github.com/lexiqai/speaker-aligner/internal/deepgram"
	"github.com/lexiqai/speaker-aligner/internal/process"
	"github.com/lexiqai/speaker-aligner/internal/resilience"
	"github.com/lexiqai/speaker-aligner/internal/sidecar"
)

// Diarizer splits a converted WAV file into speaker turns
type Diarizer interface {
	Diarize(ctx context.Context, wavPath string) ([]align.SpeakerSegment, error)
}

// New builds the diarizer selected by cfg.Diarizer. dg is only used by the
// deepgram backend and may be nil otherwise.
func New(cfg *config.Config, runner process.Runner, dg *deepgram.Client) (Diarizer, error) {
	switch cfg.Diarizer {
	case config.DiarizerPyannoteHTTP:
		breaker := resilience.NewCircuitBreaker("pyannote", cfg.CircuitBreakerMaxFailures, cfg.BreakerResetTimeout())
		retryConfig := resilience.DefaultRetryConfig()
		retryConfig.MaxAttempts = cfg.RetryMaxAttempts
		retryConfig.InitialBackoff = cfg.RetryBackoff()

		opts := []sidecar.Option{
			sidecar.WithBreaker(breaker),
			sidecar.WithRetry(retryConfig),
		}
		if cfg.HFToken != "" {
			opts = append(opts, sidecar.WithHeader("Authorization", "Bearer "+cfg.HFToken))
		}
		client := sidecar.New("pyannote", cfg.PyannoteURL, cfg.PerFileTimeout(), opts...)
		return NewPyannoteHTTP(client, cfg.NumSpeakers), nil

	case config.DiarizerCommand:
		return NewCommand(cfg, runner), nil

	case config.DiarizerDeepgram:
		if dg == nil {
			return nil, fmt.Errorf("deepgram diarizer requires a deepgram client")
		}
		return NewDeepgram(dg), nil

	case config.DiarizerVAD:
		return NewVAD(cfg), nil
	}
	return nil, fmt.Errorf("unknown diarizer %q", cfg.Diarizer)
}

func numSpeakersField(n int) map[string]string {
	if n <= 0 {
		return nil
	}
	return map[string]string{"num_speakers": strconv.Itoa(n)}
}
