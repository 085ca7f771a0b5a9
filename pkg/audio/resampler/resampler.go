// Package resampler converts PCM streams between sample formats, channel
// layouts and sample rates.
//
// Sample rate conversion is nearest-neighbour; it is meant for analysis and
// monitoring, not for mastering.
package resampler

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/xaionaro-go/audiosync/pkg/audio/types"
)

const (
	distanceStep = 10000
)

type Format struct {
	Channels   types.Channel
	SampleRate types.SampleRate
	PCMFormat  types.PCMFormat
}

func (f Format) Validate() error {
	if f.Channels == 0 {
		return fmt.Errorf("the amount of channels is mandatory")
	}
	if f.SampleRate == 0 {
		return fmt.Errorf("sample rate is mandatory")
	}
	if f.PCMFormat.Size() == 0 {
		return fmt.Errorf("unknown PCM format: %v", f.PCMFormat)
	}
	return nil
}

// FrameSize returns the size of one sample of all channels, in bytes.
func (f Format) FrameSize() uint {
	return f.PCMFormat.Size() * uint(f.Channels)
}

type channelMapping uint

const (
	channelMappingCopy channelMapping = iota
	channelMappingSpread
	channelMappingAverage
)

type precalculated struct {
	inSampleSize    uint
	outSampleSize   uint
	inFrameSize     uint
	outFrameSize    uint
	channelMapping  channelMapping
	outDistanceStep uint64
}

type Resampler struct {
	inReader    io.Reader
	inFormat    Format
	outFormat   Format
	inDistance  uint64
	outDistance uint64
	locker      sync.Mutex

	// pending contains the input bytes read but not consumed yet.
	pending []byte
	precalculated
}

var _ io.Reader = (*Resampler)(nil)

func NewResampler(
	inFormat Format,
	inReader io.Reader,
	outFormat Format,
) (*Resampler, error) {
	r := &Resampler{
		inReader:  inReader,
		inFormat:  inFormat,
		outFormat: outFormat,
	}
	err := r.init()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize a resampler from %#+v to %#+v: %w", inFormat, outFormat, err)
	}
	return r, nil
}

func (r *Resampler) init() error {
	if err := r.inFormat.Validate(); err != nil {
		return fmt.Errorf("invalid input format: %w", err)
	}
	if err := r.outFormat.Validate(); err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}

	r.inSampleSize = r.inFormat.PCMFormat.Size()
	r.outSampleSize = r.outFormat.PCMFormat.Size()

	r.inFrameSize = r.inFormat.FrameSize()
	r.outFrameSize = r.outFormat.FrameSize()

	switch {
	case r.inFormat.Channels == r.outFormat.Channels:
		r.channelMapping = channelMappingCopy
	case r.inFormat.Channels == 1:
		r.channelMapping = channelMappingSpread
	case r.outFormat.Channels == 1:
		r.channelMapping = channelMappingAverage
	default:
		return fmt.Errorf("do not know how to convert %d channels to %d", r.inFormat.Channels, r.outFormat.Channels)
	}

	sampleRateAdjust := float64(r.outFormat.SampleRate) / float64(r.inFormat.SampleRate)
	r.outDistanceStep = uint64(float64(distanceStep) / sampleRateAdjust)
	if r.outDistanceStep == 0 {
		return fmt.Errorf("the sample rate ratio %v is too high", sampleRateAdjust)
	}

	r.inDistance = 0
	r.outDistance = 0

	return nil
}

func (r *Resampler) Read(p []byte) (int, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	inFrameSize := r.inFrameSize
	outFrameSize := r.outFrameSize
	frame := make([]float64, r.outFormat.Channels)

	maxOutChunks := uint64(len(p)) / uint64(outFrameSize)
	if maxOutChunks == 0 {
		return 0, io.ErrShortBuffer
	}

	chunksToRead := uint64(float64(maxOutChunks)*float64(r.inFormat.SampleRate)/float64(r.outFormat.SampleRate)) + 1
	bytesToRead := int(chunksToRead * uint64(inFrameSize))

	var readErr error
	if len(r.pending) < bytesToRead {
		alreadyHave := len(r.pending)
		if cap(r.pending) < bytesToRead {
			buf := make([]byte, bytesToRead)
			copy(buf, r.pending)
			r.pending = buf
		}
		r.pending = r.pending[:bytesToRead]
		var n int
		n, readErr = r.inReader.Read(r.pending[alreadyHave:])
		r.pending = r.pending[:alreadyHave+n]
	}
	chunksAvailable := uint64(len(r.pending)) / uint64(inFrameSize)

	dstChunkIdx := uint64(0)
	srcChunkIdx := uint64(0)
	for srcChunkIdx < chunksAvailable && dstChunkIdx < maxOutChunks {
		// skip the input samples we are already past
		for r.inDistance < r.outDistance && srcChunkIdx < chunksAvailable {
			srcChunkIdx++
			r.inDistance += distanceStep
		}
		if srcChunkIdx >= chunksAvailable {
			break
		}

		r.decodeFrame(frame, r.pending[srcChunkIdx*uint64(inFrameSize):])

		for dstChunkIdx < maxOutChunks && r.outDistance <= r.inDistance {
			dst := p[dstChunkIdx*uint64(outFrameSize):]
			for channelIdx, v := range frame {
				Float64ToSample(r.outFormat.PCMFormat, dst[uint(channelIdx)*r.outSampleSize:], v)
			}
			dstChunkIdx++
			r.outDistance += r.outDistanceStep
		}
		if r.outDistance <= r.inDistance {
			// the output is full, but the current input sample is still needed
			break
		}

		srcChunkIdx++
		r.inDistance += distanceStep
	}

	consumed := int(srcChunkIdx * uint64(inFrameSize))
	left := copy(r.pending, r.pending[consumed:])
	r.pending = r.pending[:left]

	n := int(dstChunkIdx * uint64(outFrameSize))
	if errors.Is(readErr, io.EOF) && uint(len(r.pending)) >= inFrameSize {
		readErr = nil
	}
	return n, readErr
}

// decodeFrame converts one input frame into the output channel layout.
func (r *Resampler) decodeFrame(dst []float64, src []byte) {
	sample := func(channelIdx int) float64 {
		return SampleToFloat64(r.inFormat.PCMFormat, src[uint(channelIdx)*r.inSampleSize:])
	}
	switch r.channelMapping {
	case channelMappingCopy:
		for channelIdx := range dst {
			dst[channelIdx] = sample(channelIdx)
		}
	case channelMappingSpread:
		v := sample(0)
		for channelIdx := range dst {
			dst[channelIdx] = v
		}
	case channelMappingAverage:
		var sum float64
		for channelIdx := 0; channelIdx < int(r.inFormat.Channels); channelIdx++ {
			sum += sample(channelIdx)
		}
		dst[0] = sum / float64(r.inFormat.Channels)
	}
}
