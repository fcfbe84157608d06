package preview

import (
	"fmt"
	"image"
	"image/gif"
	"io"

	"github.com/spf13/afero"

	"rectanim/pkg/codec"
	"rectanim/pkg/frame"
)

// GIF plays the decoded stream the way the device does: each frame clears
// the screen to its background color and draws its rectangles. delay is in
// 100ths of a second.
func GIF(w io.Writer, frames []codec.Decoded, bounds image.Rectangle, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to preview")
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, s := range codec.Replay(frames, bounds) {
		anim.Image = append(anim.Image, s.Paletted())
		anim.Delay = append(anim.Delay, delay)
	}

	return gif.EncodeAll(w, anim)
}

// Save decodes stream and writes its preview to path.
func Save(fs afero.Fs, path string, stream []byte, bounds image.Rectangle, delay int) error {
	frames, err := codec.Decode(stream)
	if err != nil {
		return fmt.Errorf("decode stream failed: %w", err)
	}

	fh, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create preview failed: %w", err)
	}

	if err := GIF(fh, frames, bounds, delay); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write preview failed: %w", err)
	}
	return fh.Close()
}

// Size returns the screen that fits the largest rendered source frame. It is
// empty when no frame carries a size.
func Size(frames []frame.Rendered) image.Rectangle {
	var w, h int
	for _, f := range frames {
		w = max(w, f.Width)
		h = max(h, f.Height)
	}
	return image.Rect(0, 0, w, h)
}

// Bounds returns the smallest screen that holds every rectangle.
func Bounds(frames []codec.Decoded) image.Rectangle {
	var r image.Rectangle
	for _, f := range frames {
		for _, rc := range f.Rects {
			r = r.Union(rc.Bounds())
		}
	}
	return r.Union(image.Rect(0, 0, 1, 1))
}
