package registry

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiosync/pkg/audio/types"
)

type dummyPlayer struct{}

func (dummyPlayer) Close() error               { return nil }
func (dummyPlayer) Ping(context.Context) error { return nil }
func (dummyPlayer) PlayPCM(
	context.Context,
	types.SampleRate,
	types.Channel,
	types.PCMFormat,
	time.Duration,
	io.Reader,
) (types.PlayStream, error) {
	return nil, nil
}

type factoryLow struct{}

func (factoryLow) NewPlayerPCM() (types.PlayerPCM, error) { return dummyPlayer{}, nil }

type factoryHigh struct{}

func (factoryHigh) NewPlayerPCM() (types.PlayerPCM, error) { return dummyPlayer{}, nil }

type factoryHighToo struct{}

func (*factoryHighToo) NewPlayerPCM() (types.PlayerPCM, error) { return dummyPlayer{}, nil }

func TestPlayerFactories(t *testing.T) {
	RegisterPlayerFactory(1, factoryLow{})
	RegisterPlayerFactory(10, factoryHigh{})
	RegisterPlayerFactory(10, &factoryHighToo{})

	factories := PlayerFactories()
	require.Len(t, factories, 3)
	assert.IsType(t, factoryHigh{}, factories[0])
	assert.IsType(t, &factoryHighToo{}, factories[1])
	assert.IsType(t, factoryLow{}, factories[2])

	assert.Panics(t, func() {
		RegisterPlayerFactory(5, factoryLow{})
	})
	assert.Panics(t, func() {
		RegisterPlayerFactory(5, &factoryLow{})
	})
}
