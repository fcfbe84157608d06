package colors

import (
	"errors"
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// Dominant reduces img to a two color palette and returns the darker color
// first. A single-color image returns that color and its complement.
func Dominant(img image.Image) (RGB, RGB, error) {
	if img == nil || img.Bounds().Empty() {
		return RGB{}, RGB{}, errors.New("empty image")
	}

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, 2), img)

	switch len(p) {
	case 0:
		return RGB{}, RGB{}, errors.New("quantize returned no colors")
	case 1:
		c := FromColor(p[0])
		return order(c, c.Complement())
	}

	a, b := FromColor(p[0]), FromColor(p[1])
	if a == b {
		b = a.Complement()
	}
	return order(a, b)
}

func order(a, b RGB) (RGB, RGB, error) {
	if b.Luma() < a.Luma() {
		return b, a, nil
	}
	return a, b, nil
}
