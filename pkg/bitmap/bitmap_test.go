package bitmap

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rectanim/pkg/colors"
)

func TestPack(t *testing.T) {
	cases := []struct {
		in   colors.RGB
		want byte
	}{
		{colors.Black, 0x00},
		{colors.White, 0xFF},
		{colors.RGB{R: 255}, 0xE0},
		{colors.RGB{G: 255}, 0x1C},
		{colors.RGB{B: 255}, 0x03},
		{colors.RGB{R: 6, G: 1, B: 1}, 0xC5},
		{colors.RGB{R: 8, G: 8, B: 4}, 0x00},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Pack(tc.in), "Pack(%s)", tc.in)
	}
}

func TestDistinct(t *testing.T) {
	cases := []struct {
		primary, secondary colors.RGB
	}{
		{colors.RGB{R: 0x10, G: 0x10, B: 0x10}, colors.RGB{R: 0xF0, G: 0xF0, B: 0xF0}},
		{colors.Black, colors.RGB{R: 0xF8, G: 0xF8, B: 0xF8}},
		{colors.White, colors.RGB{R: 0xFF, G: 0xFF, B: 0xFF}},
		{colors.Black, colors.White},
	}

	for _, tc := range cases {
		got := Distinct(tc.primary, tc.secondary)
		assert.NotEqual(t, Pack(tc.primary), Pack(got), "Distinct(%s, %s) = %s", tc.primary, tc.secondary, got)
		assert.Equal(t, tc.secondary.R, got.R)
		assert.Equal(t, tc.secondary.G, got.G)
		assert.InDelta(t, int(tc.secondary.B), int(got.B), 1)
	}

	assert.Equal(t, colors.White, Distinct(colors.Black, colors.White))
}

func TestRGB332Expansion(t *testing.T) {
	assert.Equal(t, colors.White, RGB332(0xFF).RGB())
	assert.Equal(t, colors.Black, RGB332(0x00).RGB())
	assert.Equal(t, colors.RGB{R: 255}, RGB332(0xE0).RGB())

	r, g, b, a := RGB332(0x1C).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xFFFF), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xFFFF), a)
}

func TestQuantizeRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		c := RGB332(i)
		assert.Equal(t, c, Quantize(c.RGB()))
		assert.Equal(t, c, Model.Convert(c))
	}
	assert.Len(t, Palette, 256)
}

func TestScreen(t *testing.T) {
	s := NewScreen(image.Rect(0, 0, 4, 3))
	s.Clear(0xFF)
	s.Fill(image.Rect(1, 1, 10, 10), 0xE0)

	assert.Equal(t, RGB332(0xFF), s.At(0, 0))
	assert.Equal(t, RGB332(0xE0), s.At(3, 2))
	assert.Equal(t, RGB332(0), s.At(9, 9))

	s.Set(0, 0, color.Black)
	assert.Equal(t, RGB332(0), s.At(0, 0))

	p := s.Paletted()
	require.Equal(t, s.Bounds(), p.Bounds())
	assert.Equal(t, uint8(0xE0), p.ColorIndexAt(1, 1))
	assert.Equal(t, uint8(0xFF), p.ColorIndexAt(1, 0))
}
