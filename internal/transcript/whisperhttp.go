package transcript

import (
	"context"
	"fmt"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/sidecar"
)

// WhisperHTTP transcribes through a faster-whisper HTTP sidecar
type WhisperHTTP struct {
	client   *sidecar.Client
	language string
}

// NewWhisperHTTP creates a transcriber backed by the sidecar client
func NewWhisperHTTP(client *sidecar.Client, language string) *WhisperHTTP {
	return &WhisperHTTP{client: client, language: language}
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Error    string           `json:"error,omitempty"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcribe uploads wavPath to /transcribe
func (w *WhisperHTTP) Transcribe(ctx context.Context, wavPath string) ([]align.TranscribedSegment, error) {
	fields := map[string]string{}
	if w.language != "" {
		fields["language"] = w.language
	}

	var result whisperResponse
	if err := w.client.PostAudio(ctx, "/transcribe", wavPath, fields, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("whisper error: %s", result.Error)
	}

	segments := make([]align.TranscribedSegment, len(result.Segments))
	for i, seg := range result.Segments {
		segments[i] = align.TranscribedSegment{
			Start: align.SecondsToMillis(seg.Start),
			End:   align.SecondsToMillis(seg.End),
			Text:  seg.Text,
		}
	}
	return segments, nil
}

// HealthCheck probes the sidecar's /health route
func (w *WhisperHTTP) HealthCheck(ctx context.Context) (bool, error) {
	return w.client.HealthCheck(ctx)
}
