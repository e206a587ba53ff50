package audio

import "math"

// VADConfig holds configuration for Voice Activity Detection
type VADConfig struct {
	EnergyThreshold float64 // RMS energy threshold for speech detection
	SilenceFrames   int     // Number of consecutive silence frames to mark as end of speech
	FrameSize       int     // Number of samples per frame (320 for 20ms at 16kHz)
}

// DefaultVADConfig returns a default VAD configuration
func DefaultVADConfig() *VADConfig {
	return &VADConfig{
		EnergyThreshold: 500.0,
		SilenceFrames:   25,  // 500ms of silence (25 frames * 20ms)
		FrameSize:       320, // 20ms at 16kHz (16000 * 0.02 = 320)
	}
}

// VADDetector performs frame-by-frame Voice Activity Detection
type VADDetector struct {
	config         *VADConfig
	silenceCounter int
	isSpeaking     bool
}

// NewVADDetector creates a new VAD detector
func NewVADDetector(config *VADConfig) *VADDetector {
	if config == nil {
		config = DefaultVADConfig()
	}
	return &VADDetector{config: config}
}

// ProcessFrame processes an audio frame and returns whether speech is detected
// Returns: (isSpeaking, speechStarted, speechEnded)
func (v *VADDetector) ProcessFrame(samples []int16) (bool, bool, bool) {
	frameHasSpeech := CalculateRMS(samples) > v.config.EnergyThreshold

	var speechStarted, speechEnded bool

	if frameHasSpeech {
		v.silenceCounter = 0
		if !v.isSpeaking {
			speechStarted = true
			v.isSpeaking = true
		}
	} else {
		v.silenceCounter++
		if v.isSpeaking && v.silenceCounter >= v.config.SilenceFrames {
			speechEnded = true
			v.isSpeaking = false
			v.silenceCounter = 0
		}
	}

	return v.isSpeaking, speechStarted, speechEnded
}

// Reset resets the VAD detector state
func (v *VADDetector) Reset() {
	v.silenceCounter = 0
	v.isSpeaking = false
}

// IsSpeaking returns whether speech is currently detected
func (v *VADDetector) IsSpeaking() bool {
	return v.isSpeaking
}

// Region is a stretch of detected speech in milliseconds
type Region struct {
	Start int64
	End   int64
}

// DetectSpeech runs the detector over a whole recording and returns the
// speech regions in order. A region ends at the last loud frame, so the
// trailing silence that closed it is not included.
func DetectSpeech(pcm *PCM, config *VADConfig) []Region {
	if config == nil {
		config = DefaultVADConfig()
	}
	if pcm == nil || pcm.SampleRate <= 0 || config.FrameSize <= 0 {
		return nil
	}

	vad := NewVADDetector(config)
	frameMs := func(frame int) int64 {
		return int64(frame) * int64(config.FrameSize) * 1000 / int64(pcm.SampleRate)
	}

	var regions []Region
	startFrame, lastSpeechFrame := 0, 0
	frame := 0

	for off := 0; off < len(pcm.Samples); off += config.FrameSize {
		end := min(off+config.FrameSize, len(pcm.Samples))
		samples := pcm.Samples[off:end]

		_, started, ended := vad.ProcessFrame(samples)
		if started {
			startFrame = frame
		}
		if CalculateRMS(samples) > config.EnergyThreshold {
			lastSpeechFrame = frame
		}
		if ended {
			regions = append(regions, Region{Start: frameMs(startFrame), End: frameMs(lastSpeechFrame + 1)})
		}
		frame++
	}

	if vad.IsSpeaking() {
		regions = append(regions, Region{
			Start: frameMs(startFrame),
			End:   min(frameMs(lastSpeechFrame+1), pcm.DurationMs()),
		})
	}
	return regions
}

// CalculateRMS calculates the root mean square (RMS) of audio samples
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}

	return math.Sqrt(sum / float64(len(samples)))
}

// DetectSilence detects if audio samples represent silence
func DetectSilence(samples []int16, threshold float64) bool {
	return CalculateRMS(samples) < threshold
}
