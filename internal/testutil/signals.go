// Package testutil contains synthetic signal generators shared by tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a sine wave.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates white noise in [-amplitude, amplitude) with a fixed seed.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// BurstTone generates a sine carrier at amplitude `quiet` with full-scale
// bursts of burstLen samples starting at each of burstStarts. It imitates
// the uneven energy profile of speech.
func BurstTone(
	freqHz, sampleRate float64,
	length int,
	quiet float64,
	burstLen int,
	burstStarts ...int,
) []float64 {
	out := Sine(freqHz, sampleRate, 1, length)
	amplitude := make([]float64, length)
	for i := range amplitude {
		amplitude[i] = quiet
	}
	for _, start := range burstStarts {
		for i := start; i < start+burstLen && i < length; i++ {
			if i >= 0 {
				amplitude[i] = 1
			}
		}
	}
	for i := range out {
		out[i] *= amplitude[i]
	}
	return out
}

// Delay prepends the given amount of silence.
func Delay(signal []float64, samples int) []float64 {
	out := make([]float64, samples+len(signal))
	copy(out[samples:], signal)
	return out
}
