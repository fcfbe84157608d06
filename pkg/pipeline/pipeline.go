package pipeline

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sort"
	"sync"

	"github.com/corona10/goimagehash"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"rectanim/pkg/bitmap"
	"rectanim/pkg/codec"
	"rectanim/pkg/colors"
	"rectanim/pkg/frame"
	"rectanim/pkg/source"
	"rectanim/pkg/store"
)

// Cache keeps rendered frames across runs.
type Cache interface {
	Load(ctx context.Context, key string) (bool, frame.Rendered, error)
	Save(ctx context.Context, key string, f frame.Rendered) error
}

func New(logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		primary:   colors.Black,
		secondary: colors.White,
		metric:    colors.DeltaE,
		workers:   runtime.NumCPU(),
		logger:    logger.With(zap.String("via", "pipeline")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type Pipeline struct {
	primary          colors.RGB
	secondary        colors.RGB
	auto             bool
	metric           colors.Metric
	diff             bool
	keyframeDistance int
	cache            Cache
	workers          int
	progress         bool
	logger           *zap.Logger
}

type Result struct {
	// Frames is ordered by Seq whatever order the workers finished in.
	Frames []frame.Rendered
	// Errors holds a *codec.FrameError per frame that could not be rendered.
	Errors []error
	Cached int
}

type job struct {
	cur  source.Frame
	prev image.Image
}

type outcome struct {
	seq      int
	rendered frame.Rendered
	cached   bool
	err      error
}

// Run reads every frame of src and renders them concurrently. Per-frame
// failures are collected in the result; only a failing source or a
// cancelled context aborts the run.
func (p *Pipeline) Run(ctx context.Context, src source.Source) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames, err := p.gather(ctx, src)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if p.progress {
		bar = progressbar.Default(int64(len(frames)), "Rendering")
	}

	jobs := p.feed(ctx, frames)
	out := make(chan outcome)

	var wg sync.WaitGroup
	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer wg.Done()
			p.worker(ctx, jobs, out)
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	res := &Result{}
	var failed []outcome
	for o := range out {
		if bar != nil {
			_ = bar.Add(1)
		}
		if o.err != nil {
			failed = append(failed, o)
			continue
		}
		if o.cached {
			res.Cached++
		}
		res.Frames = append(res.Frames, o.rendered)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame.Sort(res.Frames)
	sort.SliceStable(failed, func(i, j int) bool {
		return failed[i].seq < failed[j].seq
	})
	for _, o := range failed {
		res.Errors = append(res.Errors, o.err)
	}

	p.logger.With(
		zap.Int("frames", len(res.Frames)),
		zap.Int("cached", res.Cached),
		zap.Int("errors", len(res.Errors)),
	).Info("frames rendered")

	return res, nil
}

func (p *Pipeline) gather(ctx context.Context, src source.Source) ([]source.Frame, error) {
	in, errc := src.Frames(ctx)

	var frames []source.Frame
	for f := range in {
		frames = append(frames, f)
	}
	if err := <-errc; err != nil {
		return nil, fmt.Errorf("read frames failed: %w", err)
	}

	sort.SliceStable(frames, func(i, j int) bool {
		if frames[i].Seq != frames[j].Seq {
			return frames[i].Seq < frames[j].Seq
		}
		return frames[i].Label < frames[j].Label
	})
	return frames, nil
}

// feed pairs each frame with its predecessor when diffing. A frame that
// failed to load has no usable predecessor for the next one.
func (p *Pipeline) feed(ctx context.Context, frames []source.Frame) <-chan job {
	jobs := make(chan job)
	go func() {
		defer close(jobs)
		var prev image.Image
		for _, f := range frames {
			j := job{cur: f}
			if p.diff {
				j.prev = prev
				prev = f.Image
			}
			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
		}
	}()
	return jobs
}

func (p *Pipeline) worker(ctx context.Context, in <-chan job, out chan<- outcome) {
	for j := range in {
		o := outcome{seq: j.cur.Seq}
		o.rendered, o.cached, o.err = p.render(ctx, j)
		if o.err != nil {
			o.err = &codec.FrameError{Seq: j.cur.Seq, Label: j.cur.Label, Err: o.err}
			p.logger.With(zap.Int("seq", j.cur.Seq), zap.Error(o.err)).Warn("frame failed")
		}

		select {
		case out <- o:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pipeline) render(ctx context.Context, j job) (frame.Rendered, bool, error) {
	if j.cur.Err != nil {
		return frame.Rendered{}, false, j.cur.Err
	}
	img := j.cur.Image

	primary, secondary := p.primary, p.secondary
	if p.auto {
		var err error
		if primary, secondary, err = colors.Dominant(img); err != nil {
			return frame.Rendered{}, false, fmt.Errorf("pick colors failed: %w", err)
		}
		secondary = bitmap.Distinct(primary, secondary)
	}

	prev := j.prev
	if prev != nil && p.isKeyframe(img, prev) {
		prev = nil
	}

	var key string
	if p.cache != nil {
		key = store.Key(img, prev, store.Params{Primary: primary, Secondary: secondary, Metric: p.metric})
		ok, r, err := p.cache.Load(ctx, key)
		if err != nil {
			p.logger.With(zap.Error(err)).Warn("cache load failed")
		} else if ok {
			r.Seq, r.Label = j.cur.Seq, j.cur.Label
			r.Width, r.Height = img.Bounds().Dx(), img.Bounds().Dy()
			return r, true, nil
		}
	}

	g, err := frame.Classify(img, prev, primary, secondary, p.metric)
	if err != nil {
		return frame.Rendered{}, false, err
	}
	r := frame.Render(j.cur.Seq, j.cur.Label, g)

	p.logger.With(
		zap.Int("seq", r.Seq),
		zap.Int("rects", len(r.Rects)),
		zap.Bool("swapped", r.Swapped),
		zap.Bool("keyframe", prev == nil),
	).Debug("frame rendered")

	if p.cache != nil {
		if err := p.cache.Save(ctx, key, r); err != nil {
			p.logger.With(zap.Error(err)).Warn("cache save failed")
		}
	}

	return r, false, nil
}

// isKeyframe reports whether cur should be encoded in full instead of as a
// difference to prev.
func (p *Pipeline) isKeyframe(cur, prev image.Image) bool {
	cb, pb := cur.Bounds(), prev.Bounds()
	if cb.Dx() != pb.Dx() || cb.Dy() != pb.Dy() {
		return true
	}
	if p.keyframeDistance <= 0 {
		return false
	}

	ch, err := goimagehash.PerceptionHash(cur)
	if err != nil {
		return true
	}
	ph, err := goimagehash.PerceptionHash(prev)
	if err != nil {
		return true
	}
	dist, err := ch.Distance(ph)
	if err != nil {
		return true
	}

	return dist > p.keyframeDistance
}
