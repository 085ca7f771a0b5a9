// Package offset estimates the time shift between two independent
// recordings of the same acoustic event (e.g. two microphones capturing
// the same interview).
//
// Both signals are reduced to a coarse energy envelope (see Downsample),
// which is robust against phase and timbre differences between the
// recordings. The envelopes are then compared at every candidate shift
// within the search window by a windowed dot product (see Score), and the
// best scoring shift wins.
//
// The estimator is stateless: it is safe to use one Estimator concurrently
// for independent pairs of signals.
package offset

import (
	"context"
	"fmt"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// Result is the outcome of a single estimation.
type Result struct {
	// OffsetSeconds is the shift of the second signal relative to
	// the first one; positive means the second signal lags.
	OffsetSeconds float64

	// Confidence is the best score divided by the normalization constant,
	// clamped to [0, 1]. It is a heuristic match strength and must not be
	// interpreted as a probability.
	Confidence float64
}

type Estimator struct {
	Config Config
}

func New(cfg Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{
		Config: cfg,
	}, nil
}

// EstimateOffset finds the shift that best aligns signal2 to signal1.
// Both signals must have the given sample rate; reconciling different
// rates is up to the caller.
//
// It returns an error only if the parameters are invalid. Degenerate inputs
// (like empty signals) produce a zero confidence instead.
func (e *Estimator) EstimateOffset(
	ctx context.Context,
	signal1 []float64,
	signal2 []float64,
	sampleRate float64,
	params SearchParameters,
) (_ret Result, _err error) {
	logger.Tracef(ctx, "EstimateOffset(len1:%d, len2:%d, rate:%v, %#+v)", len(signal1), len(signal2), sampleRate, params)
	defer func() { logger.Tracef(ctx, "/EstimateOffset: %#+v, %v", _ret, _err) }()

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return Result{}, fmt.Errorf("%w: sample rate must be positive and finite: got %v", ErrInvalidParameters, sampleRate)
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	factor := e.Config.DownsampleFactor
	envelope1 := Downsample(signal1, factor)
	envelope2 := Downsample(signal2, factor)

	rangeSamples, stepSamples := params.toEnvelopeUnits(sampleRate, factor)
	logger.Debugf(ctx, "envelopes: %d and %d values; scanning ±%d by %d", len(envelope1), len(envelope2), rangeSamples, stepSamples)

	bestK, bestScore := Correlate(
		ctx,
		envelope1, envelope2,
		rangeSamples, stepSamples,
		e.Config.MaxSampleLength,
		e.Config.Parallelism,
	)

	return Result{
		OffsetSeconds: float64(bestK) * float64(factor) / sampleRate,
		Confidence:    e.confidence(bestScore),
	}, nil
}

func (e *Estimator) confidence(score float64) float64 {
	c := score / e.Config.NormalizationConstant
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// EstimateOffset is a shorthand for an Estimator with DefaultConfig.
// Invalid parameters are replaced with DefaultSearchParameters; a
// non-positive sample rate yields a zero Result.
func EstimateOffset(
	signal1 []float64,
	signal2 []float64,
	sampleRate float64,
	params SearchParameters,
) Result {
	if params.Validate() != nil {
		params = DefaultSearchParameters()
	}
	e := &Estimator{Config: DefaultConfig()}
	r, err := e.EstimateOffset(context.Background(), signal1, signal2, sampleRate, params)
	if err != nil {
		return Result{}
	}
	return r
}
