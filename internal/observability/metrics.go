package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages used as metric labels
const (
	StageConvert    = "convert"
	StageTranscribe = "transcribe"
	StageDiarize    = "diarize"
	StageAlign      = "align"
	StageWrite      = "write"
)

var (
	// File metrics
	activeFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aligner_active_files",
		Help: "Number of files currently being processed",
	})

	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aligner_files_total",
		Help: "Total number of files processed",
	}, []string{"status"})

	fileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aligner_file_duration_seconds",
		Help:    "End to end processing time per file in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
	})

	// Stage metrics
	stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aligner_stage_latency_seconds",
		Help:    "Latency of each pipeline stage in seconds",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
	}, []string{"stage"})

	stageRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aligner_stage_requests_total",
		Help: "Total number of pipeline stage runs",
	}, []string{"stage", "status"})

	// Alignment metrics
	segmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aligner_segments_total",
		Help: "Total number of segments consumed by alignment",
	}, []string{"kind"}) // kind: "transcribed" or "speaker"

	paragraphsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aligner_paragraphs_total",
		Help: "Total number of merged paragraphs written",
	})

	warningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aligner_warnings_total",
		Help: "Total number of alignment warnings",
	}, []string{"type"})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aligner_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "stage"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aligner_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aligner_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// Metrics tracks metrics for a single input file
type Metrics struct {
	file       string
	startTime  time.Time
	mu         sync.Mutex
	stageStart map[string]time.Time
}

// NewFileMetrics creates a new metrics tracker for a file
func NewFileMetrics(file string) *Metrics {
	return &Metrics{
		file:       file,
		startTime:  time.Now(),
		stageStart: make(map[string]time.Time),
	}
}

// RecordFileStart records the start of a file
func (m *Metrics) RecordFileStart() {
	activeFiles.Inc()
}

// RecordFileEnd records the end of a file
func (m *Metrics) RecordFileEnd(success bool) {
	activeFiles.Dec()
	fileDuration.Observe(time.Since(m.startTime).Seconds())
	filesTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordStageStart records the start of a pipeline stage
func (m *Metrics) RecordStageStart(stage string) {
	m.mu.Lock()
	m.stageStart[stage] = time.Now()
	m.mu.Unlock()
}

// RecordStageEnd records the end of a pipeline stage
func (m *Metrics) RecordStageEnd(stage string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if start, ok := m.stageStart[stage]; ok {
		stageLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
		delete(m.stageStart, stage)
	}
	stageRequests.WithLabelValues(stage, statusLabel(success)).Inc()
}

// RecordSegments records the sizes of the alignment inputs
func (m *Metrics) RecordSegments(transcribed, speakers int) {
	segmentsTotal.WithLabelValues("transcribed").Add(float64(transcribed))
	segmentsTotal.WithLabelValues("speaker").Add(float64(speakers))
}

// RecordParagraphs records merged paragraphs written for the file
func (m *Metrics) RecordParagraphs(n int) {
	paragraphsTotal.Add(float64(n))
}

// RecordWarning records a non-fatal alignment warning
func (m *Metrics) RecordWarning(warningType string) {
	warningsTotal.WithLabelValues(warningType).Inc()
}

// RecordError records an error
func (m *Metrics) RecordError(errorType, stage string) {
	errorsTotal.WithLabelValues(errorType, stage).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
