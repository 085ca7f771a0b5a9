package decode

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

type WAV struct{}

var (
	_ Decoder = WAV{}
	_ Sniffer = WAV{}
)

func (WAV) Name() string {
	return "wav"
}

func (WAV) Sniff(head []byte) bool {
	return len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WAVE"
}

func (WAV) Decode(ctx context.Context, raw []byte) (*Decoded, error) {
	if len(raw) == 0 {
		return nil, ErrSourceUnavailable
	}

	d := wav.NewDecoder(bytes.NewReader(raw))
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedFormat)
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV audio format %d (only integer PCM is supported)", ErrUnsupportedFormat, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to read the PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, ErrNoAudioData
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(d.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, bitDepth)
	}

	conv := func(v int) float64 {
		return float64(v) / float64(int64(1)<<(bitDepth-1))
	}
	if bitDepth == 8 {
		// 8-bit WAV is unsigned
		conv = func(v int) float64 {
			return (float64(v) - 128) / 128
		}
	}

	numChannels := buf.Format.NumChannels
	decoded := newDecoded(numChannels, buf.Format.SampleRate, len(buf.Data)/numChannels)
	deinterleave(decoded, buf.Data, conv)
	return decoded, nil
}
