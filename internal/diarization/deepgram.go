package diarization

import (
	"context"
	"fmt"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/deepgram"
)

// Deepgram derives speaker turns from Deepgram's diarized utterances
type Deepgram struct {
	client *deepgram.Client
}

// NewDeepgram creates a diarizer over a shared Deepgram client
func NewDeepgram(client *deepgram.Client) *Deepgram {
	return &Deepgram{client: client}
}

// SpeakerLabel renders a Deepgram speaker index the way pyannote names speakers
func SpeakerLabel(i int) string {
	return fmt.Sprintf("SPEAKER_%02d", i)
}

// Diarize returns one speaker segment per utterance
func (d *Deepgram) Diarize(ctx context.Context, wavPath string) ([]align.SpeakerSegment, error) {
	utterances, err := d.client.Utterances(ctx, wavPath)
	if err != nil {
		return nil, err
	}

	segments := make([]align.SpeakerSegment, len(utterances))
	for i, u := range utterances {
		segments[i] = align.SpeakerSegment{
			Start:   align.SecondsToMillis(u.Start),
			End:     align.SecondsToMillis(u.End),
			Speaker: SpeakerLabel(u.Speaker),
		}
	}
	return segments, nil
}

// Forget releases the cached Deepgram response for wavPath
func (d *Deepgram) Forget(wavPath string) {
	d.client.Forget(wavPath)
}

// HealthCheck reports the Deepgram client's breaker state
func (d *Deepgram) HealthCheck(ctx context.Context) (bool, error) {
	return d.client.HealthCheck(ctx)
}
