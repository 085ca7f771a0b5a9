package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMix(t *testing.T) {
	ctx := context.Background()
	decoder := mapDecoder{
		"ref":   mono(10, []float64{0.5, 0.5}),
		"late":  mono(10, []float64{0.25}),
		"early": mono(10, []float64{0.125}),
		"loud":  mono(10, []float64{1, 1, 1}),
	}

	p := New("mix")
	p.AddAudioFile("ref", []byte("ref"))
	late := p.AddAudioFile("late", []byte("late"))
	late.Offset = 300 * time.Millisecond
	late.Volume = 2
	early := p.AddAudioFile("early", []byte("early"))
	early.Offset = -100 * time.Millisecond
	loud := p.AddAudioFile("loud", []byte("loud"))
	loud.Muted = true

	m, err := Mix(ctx, p, decoder)
	require.NoError(t, err)
	assert.Equal(t, 10, m.SampleRate)
	assert.Equal(t, -1, m.Origin())
	assert.Equal(t, []float64{0.125, 0.5, 0.5, 0, 0.5}, m.Mix())

	_, err = Mix(ctx, New("empty"), decoder)
	assert.ErrorIs(t, err, ErrNoAudioFiles)
}
