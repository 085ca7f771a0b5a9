// Package envelope implements an audio synchronization algorithm that
// compares the coarse loudness envelopes of the tracks.
//
// Unlike phase-based methods it does not require the tracks to be
// recorded by similar microphones: two people talking into two different
// microphones produce similar envelopes even though the waveforms differ.
// The precision is limited by the envelope resolution (see
// offset.Config.DownsampleFactor).
package envelope

import (
	"context"
	"fmt"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audiosync/pkg/audio"
	"github.com/xaionaro-go/audiosync/pkg/offset"
	"github.com/xaionaro-go/audiosync/pkg/syncer"
)

type Syncer struct {
	EncodingValue    audio.Encoding
	ChannelsValue    audio.Channel
	Estimator        *offset.Estimator
	SearchParameters offset.SearchParameters
}

var _ syncer.Syncer = (*Syncer)(nil)

// NewSyncer initializes a new one-shot envelope syncer.
func NewSyncer(
	encoding audio.Encoding,
	channels audio.Channel,
	cfg offset.Config,
	params offset.SearchParameters,
) (*Syncer, error) {
	if encoding == nil {
		return nil, fmt.Errorf("encoding is mandatory")
	}
	if channels <= 0 {
		return nil, fmt.Errorf("channels must be greater than 0: got %d", channels)
	}
	if pcm, ok := encoding.(audio.EncodingPCM); !ok || pcm.SampleRate == 0 {
		return nil, fmt.Errorf("sample rate is mandatory and could not be determined from encoding %T", encoding)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	estimator, err := offset.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the estimator: %w", err)
	}

	return &Syncer{
		EncodingValue:    encoding,
		ChannelsValue:    channels,
		Estimator:        estimator,
		SearchParameters: params,
	}, nil
}

func (s *Syncer) Close() error {
	return nil
}

func (s *Syncer) Encoding(
	ctx context.Context,
) (audio.Encoding, error) {
	return s.EncodingValue, nil
}

func (s *Syncer) Channels(
	ctx context.Context,
) (audio.Channel, error) {
	return s.ChannelsValue, nil
}

func (s *Syncer) sampleRate() float64 {
	return float64(s.EncodingValue.(audio.EncodingPCM).SampleRate)
}

func (s *Syncer) CalculateShiftBetween(
	ctx context.Context,
	referenceTrack []byte,
	comparisonTracks ...[]byte,
) (_ret []syncer.ShiftResult, _err error) {
	logger.Tracef(ctx, "CalculateShiftBetween(%d bytes, %d comparisons)", len(referenceTrack), len(comparisonTracks))
	defer func() { logger.Tracef(ctx, "/CalculateShiftBetween: %v %v", _ret, _err) }()

	refSamples, err := ToSamples(s.EncodingValue, s.ChannelsValue, referenceTrack)
	if err != nil {
		return nil, fmt.Errorf("failed to convert reference track to samples: %w", err)
	}

	sampleRate := s.sampleRate()
	results := make([]syncer.ShiftResult, 0, len(comparisonTracks))
	for idx, compTrack := range comparisonTracks {
		compSamples, err := ToSamples(s.EncodingValue, s.ChannelsValue, compTrack)
		if err != nil {
			return nil, fmt.Errorf("failed to convert comparison track #%d to samples: %w", idx, err)
		}

		r, err := s.Estimator.EstimateOffset(ctx, refSamples, compSamples, sampleRate, s.SearchParameters)
		if err != nil {
			return nil, fmt.Errorf("unable to estimate the offset of comparison track #%d: %w", idx, err)
		}
		logger.Debugf(ctx, "comparison track #%d: shift %v (confidence %v)", idx, r.OffsetSeconds, r.Confidence)

		results = append(results, syncer.ShiftResult{
			Shift:       r.OffsetSeconds,
			SampleShift: int64(math.Round(r.OffsetSeconds * sampleRate)),
			Confidence:  r.Confidence,
		})
	}

	return results, nil
}
