package deepgram

import (
	"context"
	"fmt"
	"sync"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"golang.org/x/sync/singleflight"

	"github.com/lexiqai/speaker-aligner/internal/config"
	"github.com/lexiqai/speaker-aligner/internal/observability"
	"github.com/lexiqai/speaker-aligner/internal/resilience"
)

const serviceName = "deepgram"

// sdkSource calls the pre-recorded REST endpoint through the Deepgram SDK
type sdkSource struct {
	client  *api.Client
	options *interfaces.PreRecordedTranscriptionOptions
}

func newSDKSource(cfg *config.Config) *sdkSource {
	c := listenClient.NewREST(cfg.DeepgramAPIKey, &interfaces.ClientOptions{})
	return &sdkSource{
		client: api.New(c),
		options: &interfaces.PreRecordedTranscriptionOptions{
			Model:      cfg.DeepgramModel,
			Language:   cfg.DeepgramLanguage,
			Punctuate:  true,
			Diarize:    true,
			Utterances: true,
		},
	}
}

func (s *sdkSource) FromFile(ctx context.Context, path string) ([]Utterance, error) {
	res, err := s.client.FromFile(ctx, path, s.options)
	if err != nil {
		return nil, err
	}
	if res == nil || res.Results == nil {
		return nil, fmt.Errorf("deepgram: empty response")
	}

	utterances := make([]Utterance, 0, len(res.Results.Utterances))
	for _, u := range res.Results.Utterances {
		speaker := 0
		if u.Speaker != nil {
			speaker = *u.Speaker
		}
		utterances = append(utterances, Utterance{
			Start:      u.Start,
			End:        u.End,
			Speaker:    speaker,
			Transcript: u.Transcript,
			Confidence: u.Confidence,
		})
	}
	return utterances, nil
}

// Client is a goroutine-safe Deepgram client shared by the deepgram
// transcriber and diarizer. One API call is made per file: concurrent
// callers for the same path share the in-flight request and later callers
// read the cached response until Forget is called.
type Client struct {
	source         Source
	circuitBreaker *resilience.CircuitBreaker
	retryConfig    *resilience.RetryConfig

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string][]Utterance
}

// NewClient creates a client backed by the Deepgram SDK
func NewClient(cfg *config.Config) *Client {
	return NewClientWithSource(cfg, newSDKSource(cfg))
}

// NewClientWithSource creates a client around an arbitrary Source
func NewClientWithSource(cfg *config.Config, source Source) *Client {
	circuitBreaker := resilience.NewCircuitBreaker(
		serviceName,
		cfg.CircuitBreakerMaxFailures,
		cfg.BreakerResetTimeout(),
	)
	circuitBreaker.OnStateChange = func(name string, state resilience.CircuitState) {
		observability.UpdateCircuitBreakerState(name, int(state))
	}

	retryConfig := resilience.DefaultRetryConfig()
	retryConfig.MaxAttempts = cfg.RetryMaxAttempts
	retryConfig.InitialBackoff = cfg.RetryBackoff()

	return &Client{
		source:         source,
		circuitBreaker: circuitBreaker,
		retryConfig:    retryConfig,
		cache:          make(map[string][]Utterance),
	}
}

// Utterances returns the diarized utterances for the audio file at path
func (c *Client) Utterances(ctx context.Context, path string) ([]Utterance, error) {
	c.mu.RLock()
	cached, ok := c.cache[path]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(path, func() (interface{}, error) {
		utterances, err := c.fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[path] = utterances
		c.mu.Unlock()
		return utterances, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Utterance), nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]Utterance, error) {
	var utterances []Utterance

	err := resilience.Retry(ctx, func(ctx context.Context) error {
		return c.circuitBreaker.Call(func() error {
			u, err := c.source.FromFile(ctx, path)
			if err != nil {
				observability.IncrementCircuitBreakerFailures(serviceName)
				return err
			}
			utterances = u
			return nil
		})
	}, c.retryConfig, resilience.IsRetryableNetworkError)
	if err != nil {
		return nil, fmt.Errorf("deepgram transcribe %s: %w", path, err)
	}

	return utterances, nil
}

// Forget drops the cached response for path
func (c *Client) Forget(path string) {
	c.mu.Lock()
	delete(c.cache, path)
	c.mu.Unlock()
}

// HealthCheck reports whether the circuit breaker currently admits requests.
// It does not call the API.
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	if state := c.circuitBreaker.GetState(); state == resilience.StateOpen {
		return false, fmt.Errorf("deepgram circuit breaker is %s", state)
	}
	return true, nil
}
