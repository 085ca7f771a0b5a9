package offset

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultDownsampleFactor is the amount of consecutive samples collapsed
	// into a single envelope value. 100 was chosen empirically as a
	// speed/accuracy tradeoff: it divides the correlation cost by 100^2.
	DefaultDownsampleFactor = 100

	// DefaultMaxSampleLength caps the amount of envelope values summed per
	// candidate offset, so the cost of a single candidate is bounded
	// regardless of the length of the signals.
	DefaultMaxSampleLength = 10000

	// DefaultNormalizationConstant is the empirical scale the best score is
	// divided by before being clamped to [0, 1]. The resulting confidence is
	// a heuristic, not a probability.
	DefaultNormalizationConstant = 1000

	// DefaultMaxOffsetSeconds is the default search window in each direction.
	DefaultMaxOffsetSeconds = 30

	// DefaultStepSeconds is the default granularity of candidate offsets.
	DefaultStepSeconds = 0.01
)

// ErrInvalidParameters is returned when the estimator is asked to search
// with parameters that cannot produce a finite scan.
var ErrInvalidParameters = errors.New("invalid offset search parameters")

// Config contains the tunables of the Estimator.
type Config struct {
	DownsampleFactor      int
	MaxSampleLength       int
	NormalizationConstant float64

	// Parallelism is the amount of goroutines scanning candidate offsets.
	// Values <= 1 mean a serial scan. The result does not depend on it.
	Parallelism int
}

func DefaultConfig() Config {
	return Config{
		DownsampleFactor:      DefaultDownsampleFactor,
		MaxSampleLength:       DefaultMaxSampleLength,
		NormalizationConstant: DefaultNormalizationConstant,
		Parallelism:           1,
	}
}

func (cfg Config) Validate() error {
	if cfg.DownsampleFactor < 1 {
		return fmt.Errorf("%w: downsample factor must be at least 1: got %d", ErrInvalidParameters, cfg.DownsampleFactor)
	}
	if cfg.MaxSampleLength < 1 {
		return fmt.Errorf("%w: max sample length must be at least 1: got %d", ErrInvalidParameters, cfg.MaxSampleLength)
	}
	if !(cfg.NormalizationConstant > 0) {
		return fmt.Errorf("%w: normalization constant must be positive: got %v", ErrInvalidParameters, cfg.NormalizationConstant)
	}
	return nil
}

// SearchParameters defines which candidate offsets are evaluated.
type SearchParameters struct {
	// MaxOffsetSeconds is the upper bound of the search window in
	// each direction.
	MaxOffsetSeconds float64

	// StepSeconds is the distance between two consecutive candidates.
	StepSeconds float64
}

func DefaultSearchParameters() SearchParameters {
	return SearchParameters{
		MaxOffsetSeconds: DefaultMaxOffsetSeconds,
		StepSeconds:      DefaultStepSeconds,
	}
}

func (p SearchParameters) Validate() error {
	if !(p.StepSeconds > 0) || math.IsInf(p.StepSeconds, 0) {
		return fmt.Errorf("%w: step must be positive and finite: got %v", ErrInvalidParameters, p.StepSeconds)
	}
	if !(p.MaxOffsetSeconds >= 0) || math.IsInf(p.MaxOffsetSeconds, 0) {
		return fmt.Errorf("%w: max offset must be finite and not negative: got %v", ErrInvalidParameters, p.MaxOffsetSeconds)
	}
	return nil
}

// toEnvelopeUnits converts the parameters into the range and the step of the
// scan, both in envelope samples. The step is never less than 1.
func (p SearchParameters) toEnvelopeUnits(
	sampleRate float64,
	downsampleFactor int,
) (rangeSamples int, stepSamples int) {
	rangeSamples = int(p.MaxOffsetSeconds * sampleRate / float64(downsampleFactor))
	stepSamples = int(p.StepSeconds * sampleRate / float64(downsampleFactor))
	if stepSamples < 1 {
		stepSamples = 1
	}
	return rangeSamples, stepSamples
}
