package mixer

import (
	"bufio"
	"context"

	"github.com/xaionaro-go/audiosync/pkg/audio"
)

// PlaybackChunkSize is the size of the reads the player gets from the mix:
// one audio.BufferSize of mono float32 PCM.
func (m *Mixer) PlaybackChunkSize() int {
	enc := audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatFloat32LE,
		SampleRate: audio.SampleRate(m.SampleRate),
	}
	return int(enc.BytesForDuration(audio.BufferSize))
}

// Play plays the remainder of the mix and blocks until it ends or ctx
// is cancelled.
func (m *Mixer) Play(ctx context.Context, player *audio.Player) error {
	return player.Play(
		ctx,
		audio.SampleRate(m.SampleRate), 1, audio.PCMFormatFloat32LE,
		bufio.NewReaderSize(m, m.PlaybackChunkSize()),
	)
}
