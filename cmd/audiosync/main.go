package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/audiosync/pkg/audio"
	_ "github.com/xaionaro-go/audiosync/pkg/audio/backends/oto"
	"github.com/xaionaro-go/audiosync/pkg/decode"
	"github.com/xaionaro-go/audiosync/pkg/mixer"
	"github.com/xaionaro-go/audiosync/pkg/offset"
	"github.com/xaionaro-go/audiosync/pkg/project"
	"github.com/xaionaro-go/audiosync/pkg/project/storage/sqlite"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/observability"
)

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	maxOffset := pflag.Float64("max-offset", offset.DefaultMaxOffsetSeconds, "the maximal shift to search for in each direction, in seconds")
	step := pflag.Float64("step", offset.DefaultStepSeconds, "the granularity of the search, in seconds")
	downsampleFactor := pflag.Int("downsample-factor", offset.DefaultDownsampleFactor, "the amount of samples collapsed into one envelope value")
	maxSampleLength := pflag.Int("max-sample-length", offset.DefaultMaxSampleLength, "the maximal amount of envelope values compared per candidate shift")
	normalization := pflag.Float64("normalization", offset.DefaultNormalizationConstant, "the score that maps to the confidence 1")
	parallelism := pflag.Int("parallelism", runtime.NumCPU(), "the amount of goroutines scanning candidate shifts")
	projectDB := pflag.String("project-db", "", "if set, the files and the found offsets are stored as a project in this SQLite database")
	projectName := pflag.String("project-name", "", "the name of the stored project (default: the name of the reference file)")
	exportWAV := pflag.String("export-wav", "", "if set, the aligned mix is written to this WAV file")
	play := pflag.Bool("play", false, "play the aligned mix")
	rawPCMFormat := pflag.String("raw-pcm-format", "", "if set, files that are not recognized as a container are read as headerless PCM of this format (e.g. s16le, f32le)")
	rawPCMRate := pflag.Uint32("raw-pcm-rate", 48000, "the sample rate of headerless PCM files")
	rawPCMChannels := pflag.Uint16("raw-pcm-channels", 1, "the amount of channels of headerless PCM files")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()

	if pflag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <reference> <comparison>...\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
		os.Exit(2)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt)
	defer cancelFn()

	if *netPprofAddr != "" {
		observability.Go(ctx, func() { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	estimator, err := offset.New(offset.Config{
		DownsampleFactor:      *downsampleFactor,
		MaxSampleLength:       *maxSampleLength,
		NormalizationConstant: *normalization,
		Parallelism:           *parallelism,
	})
	if err != nil {
		logger.Fatalf(ctx, "%v", err)
	}
	params := offset.SearchParameters{
		MaxOffsetSeconds: *maxOffset,
		StepSeconds:      *step,
	}

	name := *projectName
	if name == "" {
		name = filepath.Base(pflag.Arg(0))
	}
	p := project.New(name)
	for _, path := range pflag.Args() {
		data, err := readFile(ctx, path)
		if err != nil {
			logger.Fatalf(ctx, "%v", err)
		}
		p.AddAudioFile(path, data)
	}

	decoder := decode.NewAutoDefault()
	if *rawPCMFormat != "" {
		pcmFormat, err := audio.ParsePCMFormat(*rawPCMFormat)
		if err != nil {
			logger.Fatalf(ctx, "%v", err)
		}
		decoder.Register(0, decode.PCM{
			Encoding: audio.EncodingPCM{
				PCMFormat:  pcmFormat,
				SampleRate: audio.SampleRate(*rawPCMRate),
			},
			Channels: audio.Channel(*rawPCMChannels),
		})
	}
	reports, err := project.Synchronize(ctx, p, decoder, estimator, params)
	if err != nil {
		logger.Fatalf(ctx, "unable to synchronize: %v", err)
	}
	for _, r := range reports {
		fmt.Printf("%s: offset=%.3f confidence=%.4f\n", r.Name, r.OffsetSeconds, r.Confidence)
	}

	if *projectDB != "" {
		if err := saveProject(ctx, *projectDB, p); err != nil {
			logger.Fatalf(ctx, "%v", err)
		}
		logger.Infof(ctx, "saved project %s to '%s'", p.ID, *projectDB)
	}

	if *exportWAV == "" && !*play {
		return
	}

	mix, err := project.Mix(ctx, p, decoder)
	if err != nil {
		logger.Fatalf(ctx, "unable to mix: %v", err)
	}

	if *exportWAV != "" {
		if err := writeWAV(*exportWAV, mix); err != nil {
			logger.Fatalf(ctx, "%v", err)
		}
	}

	if *play {
		player := audio.NewPlayerAuto(ctx)
		defer player.Close()
		logger.Debugf(ctx, "playing using %T", player.PlayerPCM)
		if err := mix.Play(ctx, player); err != nil {
			logger.Errorf(ctx, "unable to play the mix: %v", err)
		}
	}
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	rc := datacounter.NewReaderCounter(f)
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	logger.Debugf(ctx, "read %d bytes from '%s'", rc.Count(), path)
	return data, nil
}

func saveProject(ctx context.Context, dbPath string, p *project.Project) error {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("unable to open the project database: %w", err)
	}
	defer store.Close()

	if err := store.Save(ctx, p); err != nil {
		return fmt.Errorf("unable to save the project: %w", err)
	}
	return nil
}

func writeWAV(path string, mix *mixer.Mixer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create '%s': %w", path, err)
	}
	if err := mixer.WriteWAV(f, mix.SampleRate, mix.Mix()); err != nil {
		f.Close()
		return fmt.Errorf("unable to write '%s': %w", path, err)
	}
	return f.Close()
}
