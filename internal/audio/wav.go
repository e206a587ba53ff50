package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/youpy/go-wav"
)

// ErrUnsupportedFormat is returned for WAV files that are not 16-bit mono PCM
var ErrUnsupportedFormat = errors.New("unsupported wav format")

const readChunk = 4096

// PCM holds decoded mono 16-bit samples
type PCM struct {
	SampleRate int
	Samples    []int16
}

// DurationMs returns the audio length in milliseconds
func (p *PCM) DurationMs() int64 {
	if p.SampleRate == 0 {
		return 0
	}
	return int64(len(p.Samples)) * 1000 / int64(p.SampleRate)
}

// Duration returns the audio length
func (p *PCM) Duration() time.Duration {
	return time.Duration(p.DurationMs()) * time.Millisecond
}

// wavSource is what the RIFF parser needs to walk chunks
type wavSource interface {
	io.Reader
	io.ReaderAt
}

// DecodeWAV reads every sample from a 16-bit mono PCM WAV stream
func DecodeWAV(src wavSource) (*PCM, error) {
	reader := wav.NewReader(src)

	format, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("read wav format: %w", err)
	}
	if format.AudioFormat != wav.AudioFormatPCM || format.NumChannels != Channels || format.BitsPerSample != BitsPerSample {
		return nil, fmt.Errorf("%w: format=%d channels=%d bits=%d",
			ErrUnsupportedFormat, format.AudioFormat, format.NumChannels, format.BitsPerSample)
	}

	pcm := &PCM{SampleRate: int(format.SampleRate)}
	for {
		samples, err := reader.ReadSamples(readChunk)
		for _, s := range samples {
			pcm.Samples = append(pcm.Samples, int16(reader.IntValue(s, 0)))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read wav samples: %w", err)
		}
	}

	return pcm, nil
}

// ReadWAVFile decodes the WAV file at path
func ReadWAVFile(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pcm, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pcm, nil
}
