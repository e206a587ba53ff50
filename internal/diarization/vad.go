package diarization

import (
	"context"

	"github.com/lexiqai/speaker-aligner/internal/align"
	"github.com/lexiqai/speaker-aligner/internal/audio"
	"github.com/lexiqai/speaker-aligner/internal/config"
)

// VAD is a heuristic two-speaker diarizer for when no model is available:
// speech regions come from energy detection and the speaker flips whenever
// the pause before a region is longer than the gap threshold.
type VAD struct {
	config *audio.VADConfig
	gapMs  int64
}

// NewVAD creates an energy based diarizer
func NewVAD(cfg *config.Config) *VAD {
	vadConfig := audio.DefaultVADConfig()
	if cfg.VADEnergyThreshold > 0 {
		vadConfig.EnergyThreshold = cfg.VADEnergyThreshold
	}
	if cfg.VADSilenceFrames > 0 {
		vadConfig.SilenceFrames = cfg.VADSilenceFrames
	}
	return &VAD{config: vadConfig, gapMs: cfg.VADSpeakerGapMs}
}

// Diarize decodes wavPath and labels its speech regions
func (v *VAD) Diarize(ctx context.Context, wavPath string) ([]align.SpeakerSegment, error) {
	pcm, err := audio.ReadWAVFile(wavPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return AlternateSpeakers(audio.DetectSpeech(pcm, v.config), v.gapMs), nil
}

// AlternateSpeakers labels regions SPEAKER_00 / SPEAKER_01, switching when
// the silence before a region exceeds gapMs
func AlternateSpeakers(regions []audio.Region, gapMs int64) []align.SpeakerSegment {
	segments := make([]align.SpeakerSegment, len(regions))
	speaker := 0
	for i, r := range regions {
		if i > 0 && r.Start-regions[i-1].End > gapMs {
			speaker = 1 - speaker
		}
		segments[i] = align.SpeakerSegment{Start: r.Start, End: r.End, Speaker: SpeakerLabel(speaker)}
	}
	return segments
}
