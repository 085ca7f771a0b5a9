package envelope

import (
	"bytes"
	"fmt"

	"github.com/xaionaro-go/audiosync/pkg/audio"
	"github.com/xaionaro-go/audiosync/pkg/audio/resampler"
)

// ToSamples converts interleaved PCM into a mono signal by averaging
// the channels.
func ToSamples(
	encoding audio.Encoding,
	channels audio.Channel,
	data []byte,
) ([]float64, error) {
	encPCM, ok := encoding.(audio.EncodingPCM)
	if !ok {
		return nil, fmt.Errorf("unsupported encoding type: %T", encoding)
	}

	sampleRate := encPCM.SampleRate
	if sampleRate == 0 {
		return nil, fmt.Errorf("sample rate is mandatory")
	}

	inFmt := resampler.Format{
		Channels:   channels,
		SampleRate: sampleRate,
		PCMFormat:  encPCM.PCMFormat,
	}
	outFmt := resampler.Format{
		Channels:   1,
		SampleRate: sampleRate,
		PCMFormat:  audio.PCMFormatFloat64LE,
	}

	r, err := resampler.NewResampler(inFmt, bytes.NewReader(data), outFmt)
	if err != nil {
		return nil, err
	}

	samples, err := resampler.ReadAllFloat64s(r)
	if err != nil {
		return nil, fmt.Errorf("unable to convert %d bytes of %s to samples: %w", len(data), encPCM.PCMFormat, err)
	}
	return samples, nil
}
