package decode

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
)

const sniffLength = 16

type decoderWithPriority struct {
	Priority int
	Decoder
}

// Auto tries the decoders that recognize the data first, and then the rest
// of them in the order of priority.
type Auto struct {
	decoders []decoderWithPriority
}

var _ Decoder = (*Auto)(nil)

func NewAuto() *Auto {
	return &Auto{}
}

// NewAutoDefault returns an Auto with every container decoder of
// this package registered.
func NewAutoDefault() *Auto {
	a := NewAuto()
	a.Register(40, WAV{})
	a.Register(30, FLAC{})
	a.Register(20, Vorbis{})
	a.Register(10, MP3{})
	return a
}

// Register adds a decoder. Decoders with a higher priority are tried
// first. Registering two decoders of the same name is a programming
// error and panics.
func (a *Auto) Register(priority int, decoder Decoder) {
	for _, d := range a.decoders {
		if d.Name() == decoder.Name() {
			panic(fmt.Errorf("there is already registered a decoder named '%s'", decoder.Name()))
		}
	}
	a.decoders = append(a.decoders, decoderWithPriority{
		Priority: priority,
		Decoder:  decoder,
	})
	sort.SliceStable(a.decoders, func(i, j int) bool {
		return a.decoders[i].Priority > a.decoders[j].Priority
	})
}

func (a *Auto) Decoders() []Decoder {
	result := make([]Decoder, 0, len(a.decoders))
	for _, d := range a.decoders {
		result = append(result, d.Decoder)
	}
	return result
}

func (a *Auto) Name() string {
	names := make([]string, 0, len(a.decoders))
	for _, d := range a.decoders {
		names = append(names, d.Name())
	}
	return "auto(" + strings.Join(names, ",") + ")"
}

// candidates returns the decoders in the order they should be tried.
func (a *Auto) candidates(raw []byte) []Decoder {
	head := raw[:min(len(raw), sniffLength)]
	var recognized, rest []Decoder
	for _, d := range a.decoders {
		if sniffer, ok := d.Decoder.(Sniffer); ok && sniffer.Sniff(head) {
			recognized = append(recognized, d.Decoder)
			continue
		}
		rest = append(rest, d.Decoder)
	}
	return append(recognized, rest...)
}

func (a *Auto) Decode(ctx context.Context, raw []byte) (_ret *Decoded, _err error) {
	logger.Tracef(ctx, "Decode(%d bytes)", len(raw))
	defer func() { logger.Tracef(ctx, "/Decode: %v", _err) }()

	if len(raw) == 0 {
		return nil, ErrSourceUnavailable
	}

	var mErr *multierror.Error
	for _, decoder := range a.candidates(raw) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decoded, err := decoder.Decode(ctx, raw)
		logger.Debugf(ctx, "decoding using %s result is %v", decoder.Name(), err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("%s: %w", decoder.Name(), err))
			continue
		}
		if decoded == nil || len(decoded.Channels) == 0 {
			mErr = multierror.Append(mErr, fmt.Errorf("%s: %w", decoder.Name(), ErrNoAudioData))
			continue
		}
		return decoded, nil
	}

	if mErr == nil {
		return nil, fmt.Errorf("%w: no decoders registered", ErrUnsupportedFormat)
	}
	return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, mErr)
}
