package project

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audiosync/pkg/audio"
	"github.com/xaionaro-go/audiosync/pkg/audio/resampler"
	"github.com/xaionaro-go/audiosync/pkg/decode"
	"github.com/xaionaro-go/audiosync/pkg/offset"
)

type SyncReport struct {
	AudioFileID   string
	Name          string
	OffsetSeconds float64
	Confidence    float64
}

// Synchronize aligns every audio file of the project to the first one
// and updates their Offset and Duration. A file that lags the reference
// by N seconds gets the offset -N, so it is started earlier.
//
// The returned reports do not include the reference file.
func Synchronize(
	ctx context.Context,
	p *Project,
	decoder decode.Decoder,
	estimator *offset.Estimator,
	params offset.SearchParameters,
) (_ret []SyncReport, _err error) {
	logger.Tracef(ctx, "Synchronize(%s)", p.ID)
	defer func() { logger.Tracef(ctx, "/Synchronize(%s): %v", p.ID, _err) }()

	if len(p.AudioFiles) == 0 {
		return nil, ErrNoAudioFiles
	}

	reference := p.AudioFiles[0]
	refSignal, refSampleRate, err := decode.LoadSignal(ctx, decoder, reference.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to load the reference file '%s': %w", reference.Name, err)
	}
	reference.Offset = 0
	reference.Duration = samplesDuration(len(refSignal), refSampleRate)

	reports := make([]SyncReport, 0, len(p.AudioFiles)-1)
	for _, f := range p.AudioFiles[1:] {
		signal, duration, err := loadResampled(ctx, decoder, f, refSampleRate)
		if err != nil {
			return nil, err
		}
		f.Duration = duration

		r, err := estimator.EstimateOffset(ctx, refSignal, signal, float64(refSampleRate), params)
		if err != nil {
			return nil, fmt.Errorf("unable to estimate the offset of '%s': %w", f.Name, err)
		}
		logger.Debugf(ctx, "'%s': offset %v, confidence %v", f.Name, r.OffsetSeconds, r.Confidence)

		f.Offset = -secondsDuration(r.OffsetSeconds)
		reports = append(reports, SyncReport{
			AudioFileID:   f.ID,
			Name:          f.Name,
			OffsetSeconds: r.OffsetSeconds,
			Confidence:    r.Confidence,
		})
	}

	p.Updated = time.Now()
	return reports, nil
}

// loadResampled decodes the file and converts it to the given sample rate.
// The returned duration is of the signal as it is stored.
func loadResampled(
	ctx context.Context,
	decoder decode.Decoder,
	f *AudioFile,
	sampleRate int,
) ([]float64, time.Duration, error) {
	signal, fileSampleRate, err := decode.LoadSignal(ctx, decoder, f.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to load file '%s': %w", f.Name, err)
	}
	duration := samplesDuration(len(signal), fileSampleRate)

	if fileSampleRate != sampleRate {
		logger.Debugf(ctx, "resampling '%s' from %d to %d", f.Name, fileSampleRate, sampleRate)
		signal, err = resampler.ResampleFloat64s(signal, audio.SampleRate(fileSampleRate), audio.SampleRate(sampleRate))
		if err != nil {
			return nil, 0, fmt.Errorf("unable to resample '%s': %w", f.Name, err)
		}
	}
	return signal, duration, nil
}

func samplesDuration(samples int, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

func secondsDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
