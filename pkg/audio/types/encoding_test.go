package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodingPCM(t *testing.T) {
	enc := EncodingPCM{PCMFormat: PCMFormatS16LE, SampleRate: 48000}
	assert.Equal(t, uint(2), enc.BytesPerSample())
	assert.Equal(t, uint(9600), enc.BytesForDuration(100*time.Millisecond))
	assert.Zero(t, enc.BytesForDuration(0))

	// rounded down to a whole sample
	enc = EncodingPCM{PCMFormat: PCMFormatFloat32LE, SampleRate: 1000}
	assert.Equal(t, uint(4), enc.BytesForDuration(1500*time.Microsecond))
}

func TestParsePCMFormat(t *testing.T) {
	for f := PCMFormatUndefined + 1; f < EndOfPCMFormat; f++ {
		parsed, err := ParsePCMFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	_, err := ParsePCMFormat("s12le")
	assert.Error(t, err)
}
