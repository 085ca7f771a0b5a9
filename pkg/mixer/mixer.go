// Package mixer renders aligned tracks into a single mono signal.
package mixer

import (
	"encoding/binary"
	"io"
	"math"
)

type Track struct {
	Samples []float64

	// Offset is where the track starts on the common timeline, in seconds.
	Offset float64

	Volume float64
	Muted  bool
}

// Mixer is an io.Reader of the mixed tracks as mono PCMFormatFloat32LE.
//
// The timeline starts at the earliest track start (or at zero if no
// track starts before zero) and ends at the latest track end.
type Mixer struct {
	SampleRate int
	Tracks     []Track

	starts   []int
	origin   int
	length   int
	position int
}

var _ io.Reader = (*Mixer)(nil)

func New(sampleRate int, tracks ...Track) *Mixer {
	m := &Mixer{
		SampleRate: sampleRate,
		Tracks:     tracks,
		starts:     make([]int, len(tracks)),
	}

	end := 0
	for idx, track := range tracks {
		start := int(math.Round(track.Offset * float64(sampleRate)))
		m.starts[idx] = start
		if start < m.origin {
			m.origin = start
		}
		if trackEnd := start + len(track.Samples); trackEnd > end {
			end = trackEnd
		}
	}
	if end > m.origin {
		m.length = end - m.origin
	}
	return m
}

// NumSamples is the total length of the mix.
func (m *Mixer) NumSamples() int {
	return m.length
}

// Origin is the timeline position (in samples) of the first mixed sample;
// it is never positive.
func (m *Mixer) Origin() int {
	return m.origin
}

func (m *Mixer) sampleAt(idx int) float64 {
	t := m.origin + idx
	var sum float64
	for trackIdx, track := range m.Tracks {
		if track.Muted {
			continue
		}
		pos := t - m.starts[trackIdx]
		if pos < 0 || pos >= len(track.Samples) {
			continue
		}
		sum += track.Samples[pos] * track.Volume
	}
	return clamp(sum)
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	case math.IsNaN(v):
		return 0
	}
	return v
}

func (m *Mixer) Read(p []byte) (int, error) {
	if m.position >= m.length {
		return 0, io.EOF
	}
	n := 0
	for n+4 <= len(p) && m.position < m.length {
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(float32(m.sampleAt(m.position))))
		m.position++
		n += 4
	}
	if n == 0 {
		return 0, io.ErrShortBuffer
	}
	return n, nil
}

// Mix renders the whole timeline at once.
func (m *Mixer) Mix() []float64 {
	out := make([]float64, m.length)
	for i := range out {
		out[i] = m.sampleAt(i)
	}
	return out
}
