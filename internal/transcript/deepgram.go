package transcript

import (
	"context"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/deepgram"
)

// Deepgram uses the utterances of the pre-recorded API as transcript segments
type Deepgram struct {
	client *deepgram.Client
}

// NewDeepgram creates a transcriber over a shared Deepgram client
func NewDeepgram(client *deepgram.Client) *Deepgram {
	return &Deepgram{client: client}
}

// Transcribe returns one segment per utterance
func (d *Deepgram) Transcribe(ctx context.Context, wavPath string) ([]align.TranscribedSegment, error) {
	utterances, err := d.client.Utterances(ctx, wavPath)
	if err != nil {
		return nil, err
	}

	segments := make([]align.TranscribedSegment, len(utterances))
	for i, u := range utterances {
		segments[i] = align.TranscribedSegment{
			Start: align.SecondsToMillis(u.Start),
			End:   align.SecondsToMillis(u.End),
			Text:  u.Transcript,
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
