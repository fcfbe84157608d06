package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"rectanim/pkg/codec"
	"rectanim/pkg/colors"
	"rectanim/pkg/config"
	"rectanim/pkg/output"
	"rectanim/pkg/pipeline"
	"rectanim/pkg/preview"
	"rectanim/pkg/source"
	"rectanim/pkg/store"
)

var configFile = flag.String("config", "", "tuning json file")
var saveConfig = flag.String("save-config", "", "write the effective tuning to this json file")

var skip = flag.Int("skip", 0, "drop the first n frames")
var count = flag.Int("count", 0, "keep at most n frames, 0 keeps all")
var stride = flag.Int("stride", 5, "keep every nth frame")
var minArea = flag.Int("min-area", 50, "drop rectangles with an area up to this")
var maxRects = flag.Int("max-rects", 70, "keep at most n rectangles per frame, 0 keeps all")

var primary = flag.String("primary", "#000000", "primary color, or auto")
var secondary = flag.String("secondary", "#ffffff", "secondary color, or auto")
var metric = flag.String("metric", "deltae", "color distance: deltae or euclidean")
var diff = flag.Bool("diff", false, "only encode cells changed since the previous frame")
var keyframe = flag.Int("keyframe", 12, "perceptual hash distance that forces a full frame in diff mode")
var width = flag.Int("width", 0, "fit frames into this width")
var height = flag.Int("height", 0, "fit frames into this height")
var workers = flag.Int("workers", 0, "render workers, 0 uses every cpu")

var fps = flag.Int("fps", 10, "frames per second taken from video input")
var cacheFile = flag.String("cache", "", "sqlite file caching rendered frames")
var tmpDir = flag.String("tmp", "", "download directory for url input")

var out = flag.StringP("out", "o", "anim.bin", "binary output")
var compress = flag.Bool("lz4", false, "lz4 compress the binary output")
var header = flag.String("header", "", "also write the stream as c source")
var gifFile = flag.String("preview", "", "also write an animated gif preview")
var delay = flag.Int("delay", 20, "preview frame delay in 100ths of a second")

var debug = flag.Bool("debug", false, "set debug")
var quiet = flag.Bool("quiet", false, "hide progress bars")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <dir | video | url | images...>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	var logger *zap.Logger
	if *debug {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer func() {
		_ = logger.Sync()
	}()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, afero.NewOsFs(), logger); err != nil {
		logger.With(zap.Error(err)).Fatal("convert failed")
	}
}

func tuning(fs afero.Fs) (*config.Tuning, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(fs, *configFile); err != nil {
			return nil, err
		}
	}

	changed := flag.CommandLine.Changed
	if *configFile == "" || changed("skip") {
		cfg.Skip = *skip
	}
	if *configFile == "" || changed("count") {
		cfg.Count = *count
	}
	if *configFile == "" || changed("stride") {
		cfg.Stride = *stride
	}
	if *configFile == "" || changed("min-area") {
		cfg.MinRectArea = *minArea
	}
	if *configFile == "" || changed("max-rects") {
		cfg.MaxRectCount = *maxRects
	}
	if *configFile == "" || changed("primary") {
		cfg.Primary = *primary
	}
	if *configFile == "" || changed("secondary") {
		cfg.Secondary = *secondary
	}
	if *configFile == "" || changed("metric") {
		cfg.Metric = *metric
	}
	if *configFile == "" || changed("diff") {
		cfg.Diff = *diff
	}
	if *configFile == "" || changed("keyframe") {
		cfg.KeyframeDistance = *keyframe
	}
	if *configFile == "" || changed("width") {
		cfg.Width = *width
	}
	if *configFile == "" || changed("height") {
		cfg.Height = *height
	}
	if *configFile == "" || changed("workers") {
		cfg.Workers = *workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func input(ctx context.Context, fs afero.Fs, cfg *config.Tuning, logger *zap.Logger) (source.Source, error) {
	args := flag.Args()

	if len(args) == 1 && (strings.HasPrefix(args[0], "http://") || strings.HasPrefix(args[0], "https://")) {
		var fopts []source.FetcherOption
		if *quiet {
			fopts = append(fopts, source.WithQuiet())
		}
		f, err := source.NewFetcher(*tmpDir, logger, fopts...)
		if err != nil {
			return nil, err
		}
		p, err := f.Fetch(ctx, args[0])
		if err != nil {
			return nil, err
		}
		args = []string{p}
	}

	if len(args) == 1 {
		if ok, err := afero.DirExists(fs, args[0]); err != nil {
			return nil, err
		} else if ok {
			return source.NewDir(fs, args[0], logger)
		}
		if !source.IsImage(args[0]) {
			return source.NewVideo(args[0], *fps, cfg.Width, logger), nil
		}
	}

	return source.NewFiles(fs, args, logger), nil
}

func run(ctx context.Context, fs afero.Fs, logger *zap.Logger) error {
	cfg, err := tuning(fs)
	if err != nil {
		return fmt.Errorf("load tuning failed: %w", err)
	}

	if *saveConfig != "" {
		if err := cfg.Save(fs, *saveConfig); err != nil {
			return fmt.Errorf("save tuning failed: %w", err)
		}
	}

	src, err := input(ctx, fs, cfg, logger)
	if err != nil {
		return fmt.Errorf("open input failed: %w", err)
	}
	src = source.Resize(src, cfg.Width, cfg.Height)

	m, _ := colors.ParseMetric(cfg.Metric)
	opts := []pipeline.Option{
		pipeline.WithMetric(m),
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithProgress(!*quiet),
	}

	if p, s, ok, err := cfg.Colors(); err != nil {
		return err
	} else if ok {
		opts = append(opts, pipeline.WithColors(p, s))
	} else {
		opts = append(opts, pipeline.WithAutoColors())
	}

	if cfg.Diff {
		opts = append(opts, pipeline.WithDiff(cfg.KeyframeDistance))
	}

	if *cacheFile != "" {
		cache, err := store.Open(*cacheFile, logger)
		if err != nil {
			return err
		}
		defer func() {
			_ = cache.Close()
		}()
		opts = append(opts, pipeline.WithCache(cache))
	}

	res, err := pipeline.New(logger, opts...).Run(ctx, src)
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		logger.With(zap.Error(e)).Warn("frame dropped")
	}

	var stream bytes.Buffer
	rep, err := codec.NewEncoder(cfg.Selection(), logger).Encode(&stream, res.Frames)
	if err != nil {
		return err
	}
	for _, e := range rep.Errors {
		logger.With(zap.Error(e)).Warn("frame not encoded")
	}

	written, err := output.WriteBinary(fs, *out, stream.Bytes(), *compress)
	if err != nil {
		return err
	}

	if *header != "" {
		if err := output.SaveHeader(fs, *header, rep, cfg.Selection()); err != nil {
			return err
		}
	}

	if *gifFile != "" {
		decoded, err := codec.Decode(stream.Bytes())
		if err != nil {
			return err
		}
		bounds := preview.Size(res.Frames)
		if bounds.Empty() {
			bounds = preview.Bounds(decoded)
		}
		if err := preview.Save(fs, *gifFile, stream.Bytes(), bounds, *delay); err != nil {
			return err
		}
	}

	logger.With(
		zap.Int("rendered", len(res.Frames)),
		zap.Int("cached", res.Cached),
		zap.Int("encoded", rep.Frames),
		zap.Int("rects", rep.Rects),
		zap.String("stream", output.Size(rep.Bytes)),
		zap.String("file", output.Size(written)),
		zap.String("out", *out),
	).Info("done")

	return nil
}
