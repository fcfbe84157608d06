package bitmap

import (
	"image"
	"image/color"
)

func NewScreen(r image.Rectangle) *Screen {
	return &Screen{
		pixels: make([]byte, r.Dx()*r.Dy()),
		stride: r.Dx(),
		bounds: r,
	}
}

// Screen is a one byte per pixel frame buffer in the player's color format.
// It implements the draw.Image interface.
type Screen struct {
	pixels []byte
	stride int
	bounds image.Rectangle
}

// Bounds implements the image.Image (and draw.Image) interface.
func (s *Screen) Bounds() image.Rectangle {
	return s.bounds
}

// ColorModel implements the image.Image (and draw.Image) interface.
func (s *Screen) ColorModel() color.Model {
	return Model
}

// At implements the image.Image (and draw.Image) interface.
func (s *Screen) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(s.bounds) {
		return RGB332(0)
	}
	return RGB332(s.pixels[s.offset(x, y)])
}

// Set implements the draw.Image interface.
func (s *Screen) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(s.bounds) {
		return
	}
	s.pixels[s.offset(x, y)] = byte(Model.Convert(c).(RGB332))
}

func (s *Screen) offset(x, y int) int {
	return (y-s.bounds.Min.Y)*s.stride + (x - s.bounds.Min.X)
}

func (s *Screen) Clear(c RGB332) {
	for i := range s.pixels {
		s.pixels[i] = byte(c)
	}
}

// Fill paints r clipped to the screen. Parts outside are dropped the same
// way the player ignores writes past its buffer.
func (s *Screen) Fill(r image.Rectangle, c RGB332) {
	r = r.Intersect(s.bounds)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := s.offset(r.Min.X, y)
		for i := 0; i < r.Dx(); i++ {
			s.pixels[row+i] = byte(c)
		}
	}
}

// Paletted copies the screen into an image whose palette index equals the
// color byte.
func (s *Screen) Paletted() *image.Paletted {
	p := image.NewPaletted(s.bounds, Palette)
	copy(p.Pix, s.pixels)
	return p
}
