package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lexiqai/speaker-aligner/internal/audio"
	"github.com/lexiqai/speaker-aligner/internal/config"
	"github.com/lexiqai/speaker-aligner/internal/deepgram"
	"github.com/lexiqai/speaker-aligner/internal/diarization"
	"github.com/lexiqai/speaker-aligner/internal/observability"
	"github.com/lexiqai/speaker-aligner/internal/pipeline"
	"github.com/lexiqai/speaker-aligner/internal/process"
	"github.com/lexiqai/speaker-aligner/internal/transcript"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("input_dir", cfg.InputDir).
		Str("output_dir", cfg.OutputDir).
		Str("transcriber", cfg.Transcriber).
		Str("diarizer", cfg.Diarizer).
		Int("workers", cfg.Workers).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Speaker aligner starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := process.ExecRunner{}

	var dg *deepgram.Client
	if cfg.UsesDeepgram() {
		dg = deepgram.NewClient(cfg)
	}

	converter := audio.NewFFmpeg(cfg.FFmpegPath, runner)
	transcriber, err := transcript.New(cfg, runner, dg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create transcriber")
		return 1
	}
	diarizer, err := diarization.New(cfg, runner, dg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create diarizer")
		return 1
	}

	if cfg.MetricsEnabled {
		checks := map[string]observability.HealthCheckFunc{
			"ffmpeg": converter.HealthCheck,
		}
		checks["transcriber_"+cfg.Transcriber] = healthCheckOf(transcriber)
		checks["diarizer_"+cfg.Diarizer] = healthCheckOf(diarizer)
		server := startMetricsServer(cfg.MetricsPort, checks, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Metrics server forced to shutdown")
			}
		}()
	}

	processor := pipeline.NewProcessor(cfg.OutputDir, converter, transcriber, diarizer)
	summary, err := processor.Batch(ctx, cfg.InputDir, pipeline.BatchOptions{
		Workers:     cfg.Workers,
		FileTimeout: cfg.PerFileTimeout(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("Interrupted, remaining files skipped")
		} else {
			logger.Error().Err(err).Msg("Batch failed")
		}
		return 1
	}

	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// healthCheckOf exposes a backend's HealthCheck method if it has one
func healthCheckOf(backend interface{}) observability.HealthCheckFunc {
	if hc, ok := backend.(interface {
		HealthCheck(ctx context.Context) (bool, error)
	}); ok {
		return hc.HealthCheck
	}
	return nil
}

func startMetricsServer(port string, checks map[string]observability.HealthCheckFunc, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", observability.HealthCheckHandler())
	mux.HandleFunc("/ready", observability.ReadinessHandler(checks))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Msg("Metrics server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	return server
}
