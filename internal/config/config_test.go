package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.InputDir != "input" {
		t.Errorf("Expected default InputDir 'input', got '%s'", cfg.InputDir)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("Expected default OutputDir 'output', got '%s'", cfg.OutputDir)
	}
	if cfg.Workers != 1 {
		t.Errorf("Expected default Workers 1, got %d", cfg.Workers)
	}
	if cfg.Transcriber != TranscriberWhisperCpp {
		t.Errorf("Expected default Transcriber '%s', got '%s'", TranscriberWhisperCpp, cfg.Transcriber)
	}
	if cfg.WhisperPath != "/whisper.cpp/main" {
		t.Errorf("Expected default WhisperPath '/whisper.cpp/main', got '%s'", cfg.WhisperPath)
	}
	if cfg.WhisperModel != "/models/ggml-large.bin" {
		t.Errorf("Expected default WhisperModel '/models/ggml-large.bin', got '%s'", cfg.WhisperModel)
	}
	if cfg.WhisperMaxLen != 50 {
		t.Errorf("Expected default WhisperMaxLen 50, got %d", cfg.WhisperMaxLen)
	}
	if cfg.Diarizer != DiarizerPyannoteHTTP {
		t.Errorf("Expected default Diarizer '%s', got '%s'", DiarizerPyannoteHTTP, cfg.Diarizer)
	}
	if cfg.DeepgramModel != "nova-2" {
		t.Errorf("Expected default DeepgramModel 'nova-2', got '%s'", cfg.DeepgramModel)
	}
	if cfg.PerFileTimeout() != 2*time.Hour {
		t.Errorf("Expected default per-file timeout 2h, got %v", cfg.PerFileTimeout())
	}
}

func TestLoad_DeepgramRequiresKey(t *testing.T) {
	t.Setenv("TRANSCRIBER", TranscriberDeepgram)
	t.Setenv("DEEPGRAM_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when DEEPGRAM_API_KEY is missing")
	}

	t.Setenv("DEEPGRAM_API_KEY", "test-deepgram-key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DeepgramAPIKey != "test-deepgram-key" {
		t.Errorf("Expected DeepgramAPIKey 'test-deepgram-key', got '%s'", cfg.DeepgramAPIKey)
	}
	if !cfg.UsesDeepgram() {
		t.Error("Expected UsesDeepgram to be true")
	}
}

func TestLoad_UnknownBackends(t *testing.T) {
	t.Run("transcriber", func(t *testing.T) {
		t.Setenv("TRANSCRIBER", "nope")
		if _, err := LoadFromEnv(); err == nil {
			t.Error("Expected error for unknown transcriber")
		}
	})
	t.Run("diarizer", func(t *testing.T) {
		t.Setenv("DIARIZER", "nope")
		if _, err := LoadFromEnv(); err == nil {
			t.Error("Expected error for unknown diarizer")
		}
	})
}

func TestLoad_CommandDiarizer(t *testing.T) {
	t.Setenv("DIARIZER", DiarizerCommand)

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error when DIARIZE_COMMAND is missing")
	}

	t.Setenv("DIARIZE_COMMAND", "/opt/diarize.py")
	t.Setenv("DIARIZE_FORMAT", "xml")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for unknown DIARIZE_FORMAT")
	}

	t.Setenv("DIARIZE_FORMAT", "rttm")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}
	if cfg.DiarizeCommand != "/opt/diarize.py" {
		t.Errorf("Expected DiarizeCommand '/opt/diarize.py', got '%s'", cfg.DiarizeCommand)
	}
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("WORKERS", "0")
	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for WORKERS=0")
	}
}

func TestConfig_ResilienceDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.CircuitBreakerMaxFailures != 5 {
		t.Errorf("Expected default CircuitBreakerMaxFailures 5, got %d", cfg.CircuitBreakerMaxFailures)
	}
	if cfg.BreakerResetTimeout() != 30*time.Second {
		t.Errorf("Expected default breaker reset 30s, got %v", cfg.BreakerResetTimeout())
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Errorf("Expected default RetryMaxAttempts 3, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryBackoff() != 500*time.Millisecond {
		t.Errorf("Expected default retry backoff 500ms, got %v", cfg.RetryBackoff())
	}
}

func TestConfig_ObservabilityDefaults(t *testing.T) {
	// restored after the test by t.Setenv
	t.Setenv("LOG_LEVEL", "debug")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.LogPretty {
		t.Error("Expected default LogPretty false, got true")
	}
	if cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled false, got true")
	}
	if cfg.MetricsPort != "9090" {
		t.Errorf("Expected default MetricsPort '9090', got '%s'", cfg.MetricsPort)
	}
}

func TestConfig_EmptyLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected empty LOG_LEVEL to fall back to 'info', got '%s'", cfg.LogLevel)
	}
}
