package pipeline

import (
	"runtime"

	"rectanim/pkg/colors"
)

type Option func(*Pipeline)

func WithColors(primary, secondary colors.RGB) Option {
	return func(p *Pipeline) {
		p.primary, p.secondary = primary, secondary
		p.auto = false
	}
}

// WithAutoColors picks each frame's two colors by quantizing the frame.
func WithAutoColors() Option {
	return func(p *Pipeline) {
		p.auto = true
	}
}

func WithMetric(m colors.Metric) Option {
	return func(p *Pipeline) {
		p.metric = m
	}
}

// WithDiff encodes only the cells that changed since the previous frame.
// A frame whose perceptual hash is more than keyframeDistance bits away from
// its predecessor is treated as a scene cut and encoded in full; 0 never
// cuts.
func WithDiff(keyframeDistance int) Option {
	return func(p *Pipeline) {
		p.diff = true
		p.keyframeDistance = keyframeDistance
	}
}

func WithCache(c Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		p.workers = n
	}
}

func WithProgress(show bool) Option {
	return func(p *Pipeline) {
		p.progress = show
	}
}
