package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiosync/internal/testutil"
	"github.com/xaionaro-go/audiosync/pkg/decode"
	"github.com/xaionaro-go/audiosync/pkg/offset"
)

// mapDecoder "decodes" a file by looking up its content in the map.
type mapDecoder map[string]*decode.Decoded

func (mapDecoder) Name() string { return "map" }

func (d mapDecoder) Decode(_ context.Context, raw []byte) (*decode.Decoded, error) {
	decoded, ok := d[string(raw)]
	if !ok {
		return nil, decode.ErrUnsupportedFormat
	}
	return decoded, nil
}

func mono(sampleRate int, samples []float64) *decode.Decoded {
	return &decode.Decoded{
		Channels:   [][]float64{samples},
		SampleRate: sampleRate,
	}
}

func speechLike() []float64 {
	return testutil.BurstTone(1000, 10000, 20000, 0.05, 100, 3000, 4700, 7100, 10200)
}

func TestNew(t *testing.T) {
	p := New("interview")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "interview", p.Name)
	assert.False(t, p.Created.IsZero())

	f := p.AddAudioFile("mic1.wav", []byte{1, 2, 3})
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, 1.0, f.Volume)
	assert.Zero(t, f.Offset)
	assert.Same(t, f, p.AudioFile(f.ID))
	assert.Nil(t, p.AudioFile("unknown"))

	speaker := p.AddSpeaker("Alice", "A")
	segment := p.AddSegment(time.Second, 2*time.Second, "hello", speaker.ID)
	assert.Equal(t, []Segment{segment}, p.Transcript.Segments)
	assert.NotEqual(t, speaker.ID, segment.ID)
}

func TestSynchronize(t *testing.T) {
	ctx := context.Background()
	base := speechLike()
	delayedBy2000 := testutil.Delay(base, 2000)
	halfRate := make([]float64, len(delayedBy2000)/2)
	for i := range halfRate {
		halfRate[i] = delayedBy2000[i*2]
	}

	decoder := mapDecoder{
		"ref":     mono(10000, base),
		"late":    mono(10000, testutil.Delay(base, 3000)),
		"early":   mono(10000, base[1500:]),
		"5kHz":    mono(5000, halfRate),
		"silence": mono(10000, make([]float64, 20000)),
	}

	p := New("test")
	for _, name := range []string{"ref", "late", "early", "5kHz", "silence"} {
		p.AddAudioFile(name, []byte(name))
	}

	estimator, err := offset.New(offset.DefaultConfig())
	require.NoError(t, err)
	reports, err := Synchronize(ctx, p, decoder, estimator, offset.SearchParameters{MaxOffsetSeconds: 1, StepSeconds: 0.01})
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Zero(t, p.AudioFiles[0].Offset)
	assert.Equal(t, 2*time.Second, p.AudioFiles[0].Duration)

	assert.Equal(t, "late", reports[0].Name)
	assert.Equal(t, p.AudioFiles[1].ID, reports[0].AudioFileID)
	assert.InDelta(t, 0.3, reports[0].OffsetSeconds, 0.01)
	assert.InDelta(t, float64(-300*time.Millisecond), float64(p.AudioFiles[1].Offset), float64(10*time.Millisecond))
	assert.Equal(t, 2300*time.Millisecond, p.AudioFiles[1].Duration)

	assert.InDelta(t, -0.15, reports[1].OffsetSeconds, 0.01)
	assert.InDelta(t, float64(150*time.Millisecond), float64(p.AudioFiles[2].Offset), float64(10*time.Millisecond))

	assert.InDelta(t, 0.2, reports[2].OffsetSeconds, 0.01)
	assert.Equal(t, 2200*time.Millisecond, p.AudioFiles[3].Duration)

	assert.Zero(t, reports[3].Confidence)
	for _, r := range reports[:3] {
		assert.Greater(t, r.Confidence, 0.0, r.Name)
	}
}

func TestSynchronizeErrors(t *testing.T) {
	ctx := context.Background()
	estimator, err := offset.New(offset.DefaultConfig())
	require.NoError(t, err)
	params := offset.DefaultSearchParameters()

	_, err = Synchronize(ctx, New("empty"), mapDecoder{}, estimator, params)
	assert.ErrorIs(t, err, ErrNoAudioFiles)

	p := New("missing blob")
	p.AddAudioFile("ref", []byte("ref"))
	p.AddAudioFile("lost", nil)
	_, err = Synchronize(ctx, p, mapDecoder{"ref": mono(8000, make([]float64, 8000))}, estimator, params)
	assert.ErrorIs(t, err, decode.ErrSourceUnavailable)

	p = New("undecodable")
	p.AddAudioFile("ref", []byte("garbage"))
	_, err = Synchronize(ctx, p, mapDecoder{}, estimator, params)
	assert.ErrorIs(t, err, decode.ErrUnsupportedFormat)

	p = New("invalid parameters")
	p.AddAudioFile("a", []byte("a"))
	p.AddAudioFile("b", []byte("a"))
	_, err = Synchronize(ctx, p, mapDecoder{"a": mono(8000, make([]float64, 8000))}, estimator, offset.SearchParameters{})
	assert.True(t, errors.Is(err, offset.ErrInvalidParameters))
}
