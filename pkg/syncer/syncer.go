package syncer

import (
	"context"

	"github.com/xaionaro-go/audiosync/pkg/audio"
)

type ShiftResult struct {
	Shift       float64 // Delay relative to the reference, in seconds (positive means the comparison lags)
	SampleShift int64   // Shift expressed in samples of the input encoding
	Confidence  float64 // Confidence score (0..1), a heuristic rather than a probability
}

type Syncer interface {
	audio.AbstractAnalyzer

	// CalculateShiftBetween returns, for each comparison track, the time
	// the comparison track is delayed by relative to the reference track.
	// The tracks are raw PCM in the syncer's Encoding and Channels.
	CalculateShiftBetween(
		ctx context.Context,
		referenceTrack []byte,
		comparisonTracks ...[]byte,
	) ([]ShiftResult, error)
}
