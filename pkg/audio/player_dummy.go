package audio

import (
	"context"
	"fmt"
	"io"
	"time"
)

// PlayerPCMDummy consumes the PCM data without playing it.
type PlayerPCMDummy struct{}

var _ PlayerPCM = PlayerPCMDummy{}

func (PlayerPCMDummy) Close() error {
	return nil
}

func (PlayerPCMDummy) Ping(context.Context) error {
	return nil
}

func (PlayerPCMDummy) PlayPCM(
	ctx context.Context,
	sampleRate SampleRate,
	channels Channel,
	format PCMFormat,
	bufferSize time.Duration,
	reader io.Reader,
) (PlayStream, error) {
	if format.Size() == 0 {
		return nil, fmt.Errorf("unknown PCM format: %v", format)
	}
	return &StreamDummy{Reader: reader}, nil
}

type StreamDummy struct {
	Reader io.Reader
}

var _ PlayStream = (*StreamDummy)(nil)

func (s *StreamDummy) Drain() error {
	if s.Reader == nil {
		return nil
	}
	_, err := io.Copy(io.Discard, s.Reader)
	return err
}

func (*StreamDummy) Close() error {
	return nil
}
