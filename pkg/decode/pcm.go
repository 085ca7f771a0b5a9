package decode

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/audiosync/pkg/audio"
	"github.com/xaionaro-go/audiosync/pkg/audio/resampler"
)

// PCM decodes headerless interleaved PCM of a known layout.
type PCM struct {
	Encoding audio.EncodingPCM
	Channels audio.Channel
}

var _ Decoder = PCM{}

func (d PCM) Name() string {
	return fmt.Sprintf("pcm-%s-%dHz-%dch", d.Encoding.PCMFormat, d.Encoding.SampleRate, d.Channels)
}

func (d PCM) Decode(ctx context.Context, raw []byte) (*Decoded, error) {
	if len(raw) == 0 {
		return nil, ErrSourceUnavailable
	}
	if d.Encoding.SampleRate == 0 {
		return nil, fmt.Errorf("sample rate is mandatory")
	}
	if d.Channels == 0 {
		return nil, fmt.Errorf("the amount of channels is mandatory")
	}
	sampleSize := int(d.Encoding.BytesPerSample())
	if sampleSize == 0 {
		return nil, fmt.Errorf("%w: PCM format %v", ErrUnsupportedFormat, d.Encoding.PCMFormat)
	}

	numChannels := int(d.Channels)
	offsets := make([]int, len(raw)/sampleSize)
	for i := range offsets {
		offsets[i] = i * sampleSize
	}

	decoded := newDecoded(numChannels, int(d.Encoding.SampleRate), len(offsets)/numChannels)
	deinterleave(decoded, offsets, func(offset int) float64 {
		return resampler.SampleToFloat64(d.Encoding.PCMFormat, raw[offset:])
	})
	return decoded, nil
}
