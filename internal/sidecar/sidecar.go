// Package sidecar talks to the HTTP model servers (faster-whisper,
// pyannote) that accept a multipart audio upload and answer with JSON.
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lexiqai/speaker-aligner/internal/resilience"
)

// Client posts audio files to one sidecar
type Client struct {
	baseURL     string
	name        string
	http        *http.Client
	headers     map[string]string
	breaker     *resilience.CircuitBreaker
	retryConfig *resilience.RetryConfig
}

// Option customizes a Client
type Option func(*Client)

// WithHeader sets a header sent with every upload
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.headers[key] = value
		}
	}
}

// WithBreaker guards uploads with a circuit breaker
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// WithRetry retries transient upload failures
func WithRetry(cfg *resilience.RetryConfig) Option {
	return func(c *Client) { c.retryConfig = cfg }
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the sidecar at baseURL. name prefixes errors.
func New(name, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		name:    name,
		http:    &http.Client{Timeout: timeout},
		headers: make(map[string]string),
		retryConfig: &resilience.RetryConfig{
			MaxAttempts: 1,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HealthCheck calls GET /health
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%s health: status %d", c.name, resp.StatusCode)
	}
	return true, nil
}

// PostAudio uploads the file at audioPath as the "audio" form field along
// with fields, and decodes the JSON response into out
func (c *Client) PostAudio(ctx context.Context, route, audioPath string, fields map[string]string, out interface{}) error {
	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return fmt.Errorf("read audio file: %w", err)
	}

	return resilience.Retry(ctx, func(ctx context.Context) error {
		if c.breaker == nil {
			return c.post(ctx, route, filepath.Base(audioPath), audioData, fields, out)
		}
		return c.breaker.Call(func() error {
			return c.post(ctx, route, filepath.Base(audioPath), audioData, fields, out)
		})
	}, c.retryConfig, resilience.IsRetryableNetworkError)
}

func (c *Client) post(ctx context.Context, route, filename string, audioData []byte, fields map[string]string, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return fmt.Errorf("write audio data: %w", err)
	}
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		statusErr := fmt.Errorf("%s error (status %d): %s", c.name, resp.StatusCode, bytes.TrimSpace(body))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return resilience.NewRetryableError(statusErr)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	return nil
}
