package decode

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jfreymuth/oggvorbis"
)

type Vorbis struct{}

var (
	_ Decoder = Vorbis{}
	_ Sniffer = Vorbis{}
)

func (Vorbis) Name() string {
	return "vorbis"
}

func (Vorbis) Sniff(head []byte) bool {
	return len(head) >= 4 && string(head[0:4]) == "OggS"
}

func (Vorbis) Decode(ctx context.Context, raw []byte) (*Decoded, error) {
	if len(raw) == 0 {
		return nil, ErrSourceUnavailable
	}

	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unable to decode Ogg/Vorbis: %w", err)
	}
	if format == nil || format.Channels <= 0 {
		return nil, ErrNoAudioData
	}

	decoded := newDecoded(format.Channels, format.SampleRate, len(samples)/format.Channels)
	deinterleave(decoded, samples, func(v float32) float64 {
		return float64(v)
	})
	return decoded, nil
}
