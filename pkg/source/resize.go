package source

import (
	"context"

	"github.com/disintegration/imaging"

	"rectanim/pkg/frame"
)

// Resize scales every frame of src to fit inside width x height, keeping the
// aspect ratio. Frames already small enough pass through. A zero bound is
// replaced by the largest encodable size.
func Resize(src Source, width, height int) Source {
	if width <= 0 {
		width = frame.MaxSize
	}
	if height <= 0 {
		height = frame.MaxSize
	}
	return &resized{src: src, width: width, height: height}
}

type resized struct {
	src           Source
	width, height int
}

func (r *resized) Frames(ctx context.Context) (<-chan Frame, <-chan error) {
	in, errc := r.src.Frames(ctx)
	out := make(chan Frame)

	go func() {
		defer close(out)
		for f := range in {
			if f.Err == nil {
				b := f.Image.Bounds()
				if b.Dx() > r.width || b.Dy() > r.height {
					f.Image = imaging.Fit(f.Image, r.width, r.height, imaging.Lanczos)
				}
			}
			select {
			case out <- f:
			case <-ctx.Done():
				// keep draining so the inner source can exit
				for range in {
				}
				return
			}
		}
	}()

	return out, errc
}
