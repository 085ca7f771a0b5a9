package oto

import (
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/xaionaro-go/audiosync/pkg/audio/types"
)

const drainPollInterval = 10 * time.Millisecond

type stream struct {
	player *oto.Player
}

var _ types.PlayStream = (*stream)(nil)

func newStream(player *oto.Player) *stream {
	return &stream{
		player: player,
	}
}

func (s *stream) Drain() error {
	for s.player.IsPlaying() {
		time.Sleep(drainPollInterval)
	}
	return s.player.Err()
}

func (s *stream) Close() error {
	return s.player.Close()
}
