// Package decode turns encoded audio containers into per-channel signals.
//
// The offset estimator knows nothing about containers; whatever produces
// a Decoded can feed it. Auto picks the decoder by content.
package decode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
)

var (
	// ErrSourceUnavailable means there are no bytes to decode at all.
	ErrSourceUnavailable = errors.New("audio blob is not available")

	// ErrNoAudioData means the container was parsed, but it has no audio.
	ErrNoAudioData = errors.New("no audio data")

	// ErrUnsupportedFormat means no decoder recognized the data.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Decoded is a decoded audio clip; samples are in [-1, 1].
type Decoded struct {
	Channels   [][]float64
	SampleRate int
}

// Channel returns the samples of the given channel, or nil if there
// is no such channel.
func (d *Decoded) Channel(idx int) []float64 {
	if idx < 0 || idx >= len(d.Channels) {
		return nil
	}
	return d.Channels[idx]
}

func (d *Decoded) NumSamples() int {
	if len(d.Channels) == 0 {
		return 0
	}
	return len(d.Channels[0])
}

func (d *Decoded) Duration() time.Duration {
	if d.SampleRate <= 0 {
		return 0
	}
	return time.Duration(d.NumSamples()) * time.Second / time.Duration(d.SampleRate)
}

type Decoder interface {
	Name() string
	Decode(ctx context.Context, raw []byte) (*Decoded, error)
}

// Sniffer is implemented by decoders that can recognize their format
// by the first bytes of the data.
type Sniffer interface {
	Sniff(head []byte) bool
}

func newDecoded(channels int, sampleRate int, numSamples int) *Decoded {
	d := &Decoded{
		Channels:   make([][]float64, channels),
		SampleRate: sampleRate,
	}
	for ch := range d.Channels {
		d.Channels[ch] = make([]float64, 0, numSamples)
	}
	return d
}

// deinterleave appends interleaved samples to the channels, converting
// each of them with the given function.
func deinterleave[T any](d *Decoded, interleaved []T, conv func(T) float64) {
	numChannels := len(d.Channels)
	for i := 0; i+numChannels <= len(interleaved); i += numChannels {
		for ch := 0; ch < numChannels; ch++ {
			d.Channels[ch] = append(d.Channels[ch], conv(interleaved[i+ch]))
		}
	}
}

// LoadSignal decodes raw and returns the first channel together with
// its sample rate.
func LoadSignal(
	ctx context.Context,
	decoder Decoder,
	raw []byte,
) (_signal []float64, _sampleRate int, _err error) {
	logger.Tracef(ctx, "LoadSignal(%s, %d bytes)", decoder.Name(), len(raw))
	defer func() { logger.Tracef(ctx, "/LoadSignal: %d samples at %d Hz, %v", len(_signal), _sampleRate, _err) }()

	if len(raw) == 0 {
		return nil, 0, ErrSourceUnavailable
	}

	decoded, err := decoder.Decode(ctx, raw)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to decode using %s: %w", decoder.Name(), err)
	}
	if len(decoded.Channels) == 0 {
		return nil, 0, fmt.Errorf("%w: %s produced no channels", ErrNoAudioData, decoder.Name())
	}
	if decoded.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("%w: %s produced an invalid sample rate %d", ErrNoAudioData, decoder.Name(), decoded.SampleRate)
	}
	return decoded.Channel(0), decoded.SampleRate, nil
}
