package deepgram

import "context"

// Utterance is one diarized utterance from the pre-recorded API.
// Times are seconds, as reported by Deepgram.
type Utterance struct {
	Start      float64
	End        float64
	Speaker    int
	Transcript string
	Confidence float64
}

// Source fetches utterances for a local audio file. The SDK-backed
// implementation is the production one; tests substitute their own.
type Source interface {
	FromFile(ctx context.Context, path string) ([]Utterance, error)
}
