package oto

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audiosync/pkg/audio/resampler"
	"github.com/xaionaro-go/audiosync/pkg/audio/types"
)

// contextFormat is what every stream is converted to before reaching oto.
var contextFormat = resampler.Format{
	Channels:   Channels,
	SampleRate: SampleRate,
	PCMFormat:  Format,
}

type PlayerPCM struct {
	OtoCtx *oto.Context
}

var _ types.PlayerPCM = (*PlayerPCM)(nil)

func NewPlayerPCM() (*PlayerPCM, error) {
	otoCtx, err := getOtoContext()
	if err != nil {
		return nil, fmt.Errorf("unable to get an oto context: %w", err)
	}
	return &PlayerPCM{OtoCtx: otoCtx}, nil
}

// Close is a no-op: the oto context lives until the process exits.
func (p *PlayerPCM) Close() error {
	return nil
}

func (p *PlayerPCM) Ping(context.Context) error {
	return p.OtoCtx.Err()
}

func toContextFormat(in resampler.Format, reader io.Reader) (io.Reader, error) {
	if in == contextFormat {
		return reader, nil
	}
	r, err := resampler.NewResampler(in, reader, contextFormat)
	if err != nil {
		return nil, fmt.Errorf("unable to convert %#+v to %#+v: %w", in, contextFormat, err)
	}
	return r, nil
}

func (p *PlayerPCM) PlayPCM(
	ctx context.Context,
	sampleRate types.SampleRate,
	channels types.Channel,
	format types.PCMFormat,
	bufferSize time.Duration,
	reader io.Reader,
) (_ret types.PlayStream, _err error) {
	logger.Tracef(ctx, "PlayPCM(%d, %d, %s, %v)", sampleRate, channels, format, bufferSize)
	defer func() { logger.Tracef(ctx, "/PlayPCM: %v", _err) }()

	if bufferSize != BufferSize {
		logger.Debugf(ctx, "requested buffer size %v, but the oto context uses %v", bufferSize, BufferSize)
	}

	reader, err := toContextFormat(resampler.Format{
		Channels:   channels,
		SampleRate: sampleRate,
		PCMFormat:  format,
	}, reader)
	if err != nil {
		return nil, err
	}

	player := p.OtoCtx.NewPlayer(reader)
	player.Play()
	return newStream(player), nil
}
