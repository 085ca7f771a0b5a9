package project

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/audiosync/pkg/decode"
	"github.com/xaionaro-go/audiosync/pkg/mixer"
)

// Mix lays out the audio files on the common timeline according to their
// Offset, Volume and Muted. The mix has the sample rate of the first file.
func Mix(
	ctx context.Context,
	p *Project,
	decoder decode.Decoder,
) (_ret *mixer.Mixer, _err error) {
	logger.Tracef(ctx, "Mix(%s)", p.ID)
	defer func() { logger.Tracef(ctx, "/Mix(%s): %v", p.ID, _err) }()

	if len(p.AudioFiles) == 0 {
		return nil, ErrNoAudioFiles
	}

	reference := p.AudioFiles[0]
	refSignal, sampleRate, err := decode.LoadSignal(ctx, decoder, reference.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to load the reference file '%s': %w", reference.Name, err)
	}

	tracks := make([]mixer.Track, 0, len(p.AudioFiles))
	tracks = append(tracks, trackOf(reference, refSignal))
	for _, f := range p.AudioFiles[1:] {
		signal, _, err := loadResampled(ctx, decoder, f, sampleRate)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, trackOf(f, signal))
	}

	return mixer.New(sampleRate, tracks...), nil
}

func trackOf(f *AudioFile, signal []float64) mixer.Track {
	return mixer.Track{
		Samples: signal,
		Offset:  f.Offset.Seconds(),
		Volume:  f.Volume,
		Muted:   f.Muted,
	}
}
