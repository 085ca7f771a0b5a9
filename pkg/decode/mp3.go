package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// MP3 decodes MPEG-1/2 Layer III. go-mp3 always produces 16-bit stereo.
type MP3 struct{}

var (
	_ Decoder = MP3{}
	_ Sniffer = MP3{}
)

func (MP3) Name() string {
	return "mp3"
}

func (MP3) Sniff(head []byte) bool {
	if len(head) >= 3 && string(head[0:3]) == "ID3" {
		return true
	}
	// frame sync
	return len(head) >= 2 && head[0] == 0xff && head[1]&0xe0 == 0xe0
}

func (MP3) Decode(ctx context.Context, raw []byte) (*Decoded, error) {
	if len(raw) == 0 {
		return nil, ErrSourceUnavailable
	}

	d, err := mp3.NewDecoder(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize an MP3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("unable to decode MP3: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	decoded := newDecoded(2, d.SampleRate(), len(samples)/2)
	deinterleave(decoded, samples, func(v int16) float64 {
		return float64(v) / 32768
	})
	return decoded, nil
}
