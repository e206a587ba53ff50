package diarization

import (
	"context"
	"fmt"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/sidecar"
)

// PyannoteHTTP diarizes through a pyannote HTTP sidecar
type PyannoteHTTP struct {
	client      *sidecar.Client
	numSpeakers int
}

// NewPyannoteHTTP creates a diarizer backed by the sidecar client.
// numSpeakers <= 0 lets pyannote pick the count.
func NewPyannoteHTTP(client *sidecar.Client, numSpeakers int) *PyannoteHTTP {
	return &PyannoteHTTP{client: client, numSpeakers: numSpeakers}
}

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
	Error       string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Diarize uploads wavPath to /diarize
func (p *PyannoteHTTP) Diarize(ctx context.Context, wavPath string) ([]align.SpeakerSegment, error) {
	var result pyannoteResponse
	if err := p.client.PostAudio(ctx, "/diarize", wavPath, numSpeakersField(p.numSpeakers), &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("diarization error: %s", result.Error)
	}

	segments := make([]align.SpeakerSegment, len(result.Segments))
	for i, seg := range result.Segments {
		segments[i] = align.SpeakerSegment{
			Start:   align.SecondsToMillis(seg.StartTime),
			End:     align.SecondsToMillis(seg.EndTime),
			Speaker: seg.SpeakerID,
		}
	}
	return segments, nil
}

// HealthCheck probes the sidecar's /health route
func (p *PyannoteHTTP) HealthCheck(ctx context.Context) (bool, error) {
	return p.client.HealthCheck(ctx)
}
