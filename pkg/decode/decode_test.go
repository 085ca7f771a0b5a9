package decode

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audiosync/pkg/audio"
)

func wavBytes(t *testing.T, sampleRate, numChannels int, interleaved []int) []byte {
	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, numChannels, wavFormatPCM)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		Data:           interleaved,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return raw
}

type fakeDecoder struct {
	decoded *Decoded
	err     error
}

func (fakeDecoder) Name() string { return "fake" }

func (d fakeDecoder) Decode(context.Context, []byte) (*Decoded, error) {
	return d.decoded, d.err
}

func TestWAV(t *testing.T) {
	raw := wavBytes(t, 8000, 2, []int{16384, -16384, 0, 8192, -32768, 32767})

	decoded, err := WAV{}.Decode(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 8000, decoded.SampleRate)
	require.Len(t, decoded.Channels, 2)
	assert.InDeltaSlice(t, []float64{0.5, 0, -1}, decoded.Channel(0), 1e-4)
	assert.InDeltaSlice(t, []float64{-0.5, 0.25, 1}, decoded.Channel(1), 1e-4)

	_, err = WAV{}.Decode(context.Background(), []byte("definitely not a WAV file"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPCM(t *testing.T) {
	raw := make([]byte, 10)
	for i, v := range []int16{16384, -16384, 0, 8192, 1} {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(v))
	}
	d := PCM{
		Encoding: audio.EncodingPCM{PCMFormat: audio.PCMFormatS16LE, SampleRate: 16000},
		Channels: 2,
	}

	decoded, err := d.Decode(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 16000, decoded.SampleRate)
	// the last sample does not make a complete frame
	assert.Equal(t, [][]float64{{0.5, 0}, {-0.5, 0.25}}, decoded.Channels)
	assert.Equal(t, "pcm-s16le-16000Hz-2ch", d.Name())

	_, err = PCM{Encoding: audio.EncodingPCM{PCMFormat: audio.PCMFormatS16LE}, Channels: 1}.Decode(context.Background(), raw)
	assert.Error(t, err)
	_, err = PCM{Encoding: audio.EncodingPCM{SampleRate: 8000}, Channels: 1}.Decode(context.Background(), raw)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSniff(t *testing.T) {
	for _, tc := range []struct {
		name    string
		head    []byte
		sniffer Sniffer
		match   bool
	}{
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), WAV{}, true},
		{"riff but not wav", []byte("RIFF\x24\x00\x00\x00AVI LIST"), WAV{}, false},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), FLAC{}, true},
		{"ogg", []byte("OggS\x00\x02"), Vorbis{}, true},
		{"mp3 with tags", []byte("ID3\x04\x00"), MP3{}, true},
		{"mp3 frame", []byte{0xff, 0xfb, 0x90, 0x64}, MP3{}, true},
		{"not mp3", []byte("fLaC"), MP3{}, false},
		{"too short", []byte("RIF"), WAV{}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.match, tc.sniffer.Sniff(tc.head))
		})
	}
}

func TestFLACSampleScale(t *testing.T) {
	scale, err := flacSampleScale(16)
	require.NoError(t, err)
	assert.Equal(t, 32768.0, scale)

	scale, err = flacSampleScale(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, scale)

	for _, bitsPerSample := range []uint8{0, 33, 255} {
		_, err := flacSampleScale(bitsPerSample)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, "bits per sample: %d", bitsPerSample)
	}
}

func TestAuto(t *testing.T) {
	ctx := context.Background()

	t.Run("wav", func(t *testing.T) {
		raw := wavBytes(t, 44100, 1, []int{100, 200, 300})
		decoded, err := NewAutoDefault().Decode(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, 44100, decoded.SampleRate)
		assert.Equal(t, 3, decoded.NumSamples())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewAutoDefault().Decode(ctx, []byte("hello, this is not an audio file at all"))
		require.ErrorIs(t, err, ErrUnsupportedFormat)
		for _, name := range []string{"wav", "flac", "vorbis", "mp3"} {
			assert.Contains(t, err.Error(), name)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewAutoDefault().Decode(ctx, nil)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("no decoders", func(t *testing.T) {
		_, err := NewAuto().Decode(ctx, []byte{1, 2, 3})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("order", func(t *testing.T) {
		a := NewAutoDefault()
		assert.Equal(t, "auto(wav,flac,vorbis,mp3)", a.Name())

		// a recognized format goes first regardless of the priority
		candidates := a.candidates([]byte("OggS\x00\x02"))
		require.Len(t, candidates, 4)
		assert.Equal(t, "vorbis", candidates[0].Name())
		assert.Equal(t, "wav", candidates[1].Name())

		assert.Panics(t, func() {
			a.Register(100, WAV{})
		})
	})

	t.Run("fallback", func(t *testing.T) {
		a := NewAuto()
		a.Register(2, fakeDecoder{err: errors.New("nope")})
		a.Register(1, PCM{
			Encoding: audio.EncodingPCM{PCMFormat: audio.PCMFormatU8, SampleRate: 8000},
			Channels: 1,
		})
		decoded, err := a.Decode(ctx, []byte{128, 255})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0, 1}, decoded.Channel(0), 0.01)
	})
}

func TestLoadSignal(t *testing.T) {
	ctx := context.Background()

	t.Run("first channel", func(t *testing.T) {
		raw := wavBytes(t, 22050, 2, []int{16384, 0, -16384, 0})
		signal, sampleRate, err := LoadSignal(ctx, NewAutoDefault(), raw)
		require.NoError(t, err)
		assert.Equal(t, 22050, sampleRate)
		assert.InDeltaSlice(t, []float64{0.5, -0.5}, signal, 1e-4)
	})

	t.Run("unavailable", func(t *testing.T) {
		_, _, err := LoadSignal(ctx, NewAutoDefault(), nil)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Equal(t, "audio blob is not available", err.Error())
	})

	t.Run("decoder error is propagated", func(t *testing.T) {
		myErr := errors.New("my error")
		_, _, err := LoadSignal(ctx, fakeDecoder{err: myErr}, []byte{1})
		assert.ErrorIs(t, err, myErr)
	})

	t.Run("no channels", func(t *testing.T) {
		_, _, err := LoadSignal(ctx, fakeDecoder{decoded: &Decoded{SampleRate: 8000}}, []byte{1})
		assert.ErrorIs(t, err, ErrNoAudioData)
	})

	t.Run("invalid sample rate", func(t *testing.T) {
		_, _, err := LoadSignal(ctx, fakeDecoder{decoded: &Decoded{Channels: [][]float64{{0}}}}, []byte{1})
		assert.ErrorIs(t, err, ErrNoAudioData)
	})
}

func TestDecoded(t *testing.T) {
	d := &Decoded{
		Channels:   [][]float64{make([]float64, 4000), make([]float64, 4000)},
		SampleRate: 8000,
	}
	assert.Equal(t, 4000, d.NumSamples())
	assert.Equal(t, "500ms", d.Duration().String())
	assert.Nil(t, d.Channel(2))
	assert.Nil(t, d.Channel(-1))
	assert.Zero(t, (&Decoded{}).Duration())
}
