package resampler

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/xaionaro-go/audiosync/pkg/audio/types"
)

// Float64sToBytes encodes samples as PCMFormatFloat64LE.
func Float64sToBytes(samples []float64) []byte {
	out := make([]byte, len(samples)*8)
	for i, v := range samples {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

// ReadAllFloat64s reads r till EOF, interpreting it as PCMFormatFloat64LE.
// A trailing incomplete sample is ignored.
func ReadAllFloat64s(r io.Reader) ([]float64, error) {
	var samples []float64
	buf := make([]byte, 8*4096)
	for {
		n, err := io.ReadFull(r, buf)
		for i := 0; i+8 <= n; i += 8 {
			samples = append(samples, math.Float64frombits(binary.LittleEndian.Uint64(buf[i:])))
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return samples, nil
		default:
			return samples, err
		}
	}
}

// ResampleFloat64s converts a mono signal from one sample rate to another.
func ResampleFloat64s(
	samples []float64,
	from types.SampleRate,
	to types.SampleRate,
) ([]float64, error) {
	if from == to {
		return samples, nil
	}
	inFmt := Format{Channels: 1, SampleRate: from, PCMFormat: types.PCMFormatFloat64LE}
	outFmt := Format{Channels: 1, SampleRate: to, PCMFormat: types.PCMFormatFloat64LE}
	r, err := NewResampler(inFmt, bytes.NewReader(Float64sToBytes(samples)), outFmt)
	if err != nil {
		return nil, err
	}
	out, err := ReadAllFloat64s(r)
	if err != nil {
		return nil, fmt.Errorf("unable to resample from %d to %d: %w", from, to, err)
	}
	return out, nil
}
