package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

type FLAC struct{}

var (
	_ Decoder = FLAC{}
	_ Sniffer = FLAC{}
)

func (FLAC) Name() string {
	return "flac"
}

func (FLAC) Sniff(head []byte) bool {
	return len(head) >= 4 && string(head[0:4]) == "fLaC"
}

// flacSampleScale returns the divisor mapping samples of the given bit
// depth to [-1, 1].
func flacSampleScale(bitsPerSample uint8) (float64, error) {
	if bitsPerSample == 0 || bitsPerSample > 32 {
		return 0, fmt.Errorf("%w: FLAC bit depth %d", ErrUnsupportedFormat, bitsPerSample)
	}
	return float64(int64(1) << (bitsPerSample - 1)), nil
}

func (FLAC) Decode(ctx context.Context, raw []byte) (_ret *Decoded, _err error) {
	if len(raw) == 0 {
		return nil, ErrSourceUnavailable
	}

	stream, err := flac.New(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unable to open the FLAC stream: %w", err)
	}
	defer func() {
		if err := stream.Close(); err != nil && _err == nil {
			_err = fmt.Errorf("unable to close the FLAC stream: %w", err)
		}
	}()

	info := stream.Info
	if info == nil || info.NChannels == 0 {
		return nil, ErrNoAudioData
	}
	numChannels := int(info.NChannels)
	scale, err := flacSampleScale(info.BitsPerSample)
	if err != nil {
		return nil, err
	}

	decoded := newDecoded(numChannels, int(info.SampleRate), int(info.NSamples))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to parse a FLAC frame: %w", err)
		}
		if len(frame.Subframes) < numChannels {
			return nil, fmt.Errorf("a FLAC frame has %d subframes, but %d channels are declared", len(frame.Subframes), numChannels)
		}
		for ch := 0; ch < numChannels; ch++ {
			for _, v := range frame.Subframes[ch].Samples[:frame.BlockSize] {
				decoded.Channels[ch] = append(decoded.Channels[ch], float64(v)/scale)
			}
		}
	}
	return decoded, nil
}
