package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Transcription backends
const (
	TranscriberWhisperCpp  = "whispercpp"
	TranscriberWhisperHTTP = "whisper-http"
	TranscriberDeepgram    = "deepgram"
)

// Diarization backends
const (
	DiarizerPyannoteHTTP = "pyannote-http"
	DiarizerCommand      = "command"
	DiarizerDeepgram     = "deepgram"
	DiarizerVAD          = "vad"
)

// Config holds all configuration for the aligner
type Config struct {
	// Batch configuration
	InputDir    string `envconfig:"INPUT_DIR" default:"input"`
	OutputDir   string `envconfig:"OUTPUT_DIR" default:"output"`
	Workers     int    `envconfig:"WORKERS" default:"1"`         // Files processed concurrently
	FileTimeout int    `envconfig:"FILE_TIMEOUT" default:"7200"` // Seconds allowed per file

	// Audio conversion
	FFmpegPath string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`

	// Transcription
	Transcriber   string `envconfig:"TRANSCRIBER" default:"whispercpp"` // whispercpp, whisper-http, deepgram
	WhisperPath   string `envconfig:"WHISPER_PATH" default:"/whisper.cpp/main"`
	WhisperModel  string `envconfig:"WHISPER_MODEL" default:"/models/ggml-large.bin"`
	WhisperMaxLen int    `envconfig:"WHISPER_MAX_LEN" default:"50"` // -ml, max segment length in characters
	WhisperURL    string `envconfig:"WHISPER_URL" default:"http://localhost:8387"`
	Language      string `envconfig:"LANGUAGE" default:""`

	// Diarization
	Diarizer       string `envconfig:"DIARIZER" default:"pyannote-http"` // pyannote-http, command, deepgram, vad
	PyannoteURL    string `envconfig:"PYANNOTE_URL" default:"http://localhost:8388"`
	HFToken        string `envconfig:"HF_TOKEN" default:""`
	DiarizeCommand string `envconfig:"DIARIZE_COMMAND" default:""`         // Executable invoked as <cmd> <wav>
	DiarizeFormat  string `envconfig:"DIARIZE_FORMAT" default:"pyannote"` // pyannote or rttm
	NumSpeakers    int    `envconfig:"NUM_SPEAKERS" default:"0"`          // 0 = auto-detect

	// Deepgram pre-recorded API
	DeepgramAPIKey   string `envconfig:"DEEPGRAM_API_KEY" default:""`
	DeepgramModel    string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"`
	DeepgramLanguage string `envconfig:"DEEPGRAM_LANGUAGE" default:"en"`

	// Energy based diarization fallback
	VADEnergyThreshold float64 `envconfig:"VAD_ENERGY_THRESHOLD" default:"500.0"` // RMS energy threshold
	VADSilenceFrames   int     `envconfig:"VAD_SILENCE_FRAMES" default:"25"`      // 20ms frames of silence to end speech
	VADSpeakerGapMs    int64   `envconfig:"VAD_SPEAKER_GAP_MS" default:"1500"`    // Gap that switches speaker

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery
	RetryMaxAttempts           int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`             // Maximum attempts per backend call
	RetryInitialBackoff        int `envconfig:"RETRY_INITIAL_BACKOFF" default:"500"`        // Initial backoff in milliseconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`        // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`      // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"` // Serve /metrics, /health, /ready
	MetricsPort    string `envconfig:"METRICS_PORT" default:"9090"`
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// LOG_LEVEL= set but empty skips the default tag
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend names and the keys each selected backend needs
func (c *Config) Validate() error {
	switch c.Transcriber {
	case TranscriberWhisperCpp, TranscriberWhisperHTTP, TranscriberDeepgram:
	default:
		return fmt.Errorf("unknown TRANSCRIBER %q", c.Transcriber)
	}

	switch c.Diarizer {
	case DiarizerPyannoteHTTP, DiarizerDeepgram, DiarizerVAD:
	case DiarizerCommand:
		if c.DiarizeCommand == "" {
			return fmt.Errorf("DIARIZE_COMMAND is required when DIARIZER=%s", DiarizerCommand)
		}
		if c.DiarizeFormat != "pyannote" && c.DiarizeFormat != "rttm" {
			return fmt.Errorf("unknown DIARIZE_FORMAT %q", c.DiarizeFormat)
		}
	default:
		return fmt.Errorf("unknown DIARIZER %q", c.Diarizer)
	}

	if c.UsesDeepgram() && c.DeepgramAPIKey == "" {
		return fmt.Errorf("DEEPGRAM_API_KEY is required for the deepgram backend")
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return fmt.Errorf("INPUT_DIR and OUTPUT_DIR are required")
	}
	return nil
}

// UsesDeepgram reports whether any selected backend talks to Deepgram
func (c *Config) UsesDeepgram() bool {
	return c.Transcriber == TranscriberDeepgram || c.Diarizer == DiarizerDeepgram
}

// PerFileTimeout returns FileTimeout as a duration
func (c *Config) PerFileTimeout() time.Duration {
	return time.Duration(c.FileTimeout) * time.Second
}

// RetryBackoff returns RetryInitialBackoff as a duration
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryInitialBackoff) * time.Millisecond
}

// BreakerResetTimeout returns CircuitBreakerResetTimeout as a duration
func (c *Config) BreakerResetTimeout() time.Duration {
	return time.Duration(c.CircuitBreakerResetTimeout) * time.Second
}
