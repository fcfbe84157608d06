package codec

import (
	"rectanim/pkg/frame"
)

const (
	RecordSize = 5
	FieldMax   = 1<<9 - 1
)

// Record flags, stored in the top nibble of the first byte.
const (
	FlagLast uint8 = 0x8
	FlagB    uint8 = 0x4
	FlagC    uint8 = 0x2
	FlagD    uint8 = 0x1
)

// Sentinel ends the stream: a pseudo frame whose two color bytes are equal.
var Sentinel = [2]byte{0x00, 0x00}

// PackRecord lays out a rectangle as a 40-bit big endian value:
//
//	ABCDxxxx xxxxxyyy yyyyyyww wwwwwwwh hhhhhhhh
//
// Callers must range check the fields first; extra bits are masked off.
func PackRecord(flags uint8, x, y, w, h int) [RecordSize]byte {
	var bs [RecordSize]byte

	x &= FieldMax
	y &= FieldMax
	w &= FieldMax
	h &= FieldMax

	bs[0] = (byte)((int(flags&0xF) << 4) + (x >> 5))
	bs[1] = (byte)(((x & 0x1F) << 3) + (y >> 6))
	bs[2] = (byte)(((y & 0x3F) << 2) + (w >> 7))
	bs[3] = (byte)(((w & 0x7F) << 1) + (h >> 8))
	bs[4] = (byte)(h & 0xFF)

	return bs
}

func UnpackRecord(bs [RecordSize]byte) (flags uint8, r frame.Rect) {
	var data uint64
	for _, b := range bs {
		data = data<<8 | uint64(b)
	}

	flags = uint8(data>>36) & 0xF
	r.X = int(data>>27) & FieldMax
	r.Y = int(data>>18) & FieldMax
	r.W = int(data>>9) & FieldMax
	r.H = int(data) & FieldMax
	return
}
