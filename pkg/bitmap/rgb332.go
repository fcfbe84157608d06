package bitmap

import (
	"image/color"

	"rectanim/pkg/colors"
)

// Pack builds the one byte color the player understands:
//
//	bit 76543210
//	    RRRGGGBB
//
// Each field takes the low bits of the channel, the same way the player's
// COLOR(r, g, b) macro masks its arguments.
func Pack(c colors.RGB) byte {
	return (c.R&0x7)<<5 | (c.G&0x7)<<2 | (c.B & 0x3)
}

// RGB332 implements the color.Color interface for a packed color byte.
type RGB332 byte

// RGBA implements the color.Color interface.
func (c RGB332) RGBA() (r, g, b, a uint32) {
	// The 3 and 2 bit fields are duplicated to fill 8 bits, then the byte is
	// duplicated to fill 16 bits, so 0 and the all-ones field map to 0 and
	// 0xFFFF.
	r8 := expand3(uint32(c>>5) & 0x7)
	g8 := expand3(uint32(c>>2) & 0x7)
	b8 := expand2(uint32(c) & 0x3)

	r = r8<<8 | r8
	g = g8<<8 | g8
	b = b8<<8 | b8
	a = 0xFFFF
	return
}

func (c RGB332) RGB() colors.RGB {
	return colors.RGB{
		R: uint8(expand3(uint32(c>>5) & 0x7)),
		G: uint8(expand3(uint32(c>>2) & 0x7)),
		B: uint8(expand2(uint32(c) & 0x3)),
	}
}

func expand3(v uint32) uint32 {
	return v<<5 | v<<2 | v>>1
}

func expand2(v uint32) uint32 {
	return v<<6 | v<<4 | v<<2 | v
}

// Model quantizes by the highest bits of each channel. Use Pack for the wire
// byte.
var Model color.Model = color.ModelFunc(func(c color.Color) color.Color {
	if v, ok := c.(RGB332); ok {
		return v
	}
	return Quantize(colors.FromColor(c))
})

func Quantize(c colors.RGB) RGB332 {
	return RGB332(c.R&0xE0 | (c.G&0xE0)>>3 | c.B>>6)
}

// Palette holds every RGB332 value at its own index.
var Palette = func() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = RGB332(i)
	}
	return p
}()

// Distinct returns secondary, nudged when it packs to the same byte as
// primary. Equal color bytes end the stream on the player, so a frame must
// never carry them. Only the lowest blue bit changes.
func Distinct(primary, secondary colors.RGB) colors.RGB {
	if Pack(primary) != Pack(secondary) {
		return secondary
	}
	secondary.B ^= 1
	return secondary
}
