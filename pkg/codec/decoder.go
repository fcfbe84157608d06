package codec

import (
	"errors"
	"fmt"
	"image"

	"rectanim/pkg/bitmap"
	"rectanim/pkg/frame"
)

var ErrTruncated = errors.New("stream truncated")

// Decoded is one frame as the player sees it.
type Decoded struct {
	Screen bitmap.RGB332
	Color  bitmap.RGB332
	Rects  []frame.Rect
}

// Decode walks the stream like the player does: two color bytes, records
// until the last flag, repeat until the color bytes are equal.
func Decode(data []byte) ([]Decoded, error) {
	var frames []Decoded
	pos := 0

	for {
		if len(data)-pos < 2 {
			return frames, fmt.Errorf("frame %d colors: %w", len(frames), ErrTruncated)
		}

		screen, rect := data[pos], data[pos+1]
		pos += 2
		if screen == rect {
			return frames, nil
		}

		d := Decoded{Screen: bitmap.RGB332(screen), Color: bitmap.RGB332(rect)}
		for {
			if len(data)-pos < RecordSize {
				return frames, fmt.Errorf("frame %d record %d: %w", len(frames), len(d.Rects), ErrTruncated)
			}

			var rec [RecordSize]byte
			copy(rec[:], data[pos:pos+RecordSize])
			pos += RecordSize

			flags, r := UnpackRecord(rec)
			d.Rects = append(d.Rects, r)
			if flags&FlagLast != 0 {
				break
			}
		}

		frames = append(frames, d)
	}
}

// Draw clears s with the screen color and paints every rectangle.
func (d Decoded) Draw(s *bitmap.Screen) {
	s.Clear(d.Screen)
	for _, r := range d.Rects {
		s.Fill(r.Bounds().Add(s.Bounds().Min), d.Color)
	}
}

// Replay renders each decoded frame onto its own screen of the given size.
func Replay(frames []Decoded, bounds image.Rectangle) []*bitmap.Screen {
	out := make([]*bitmap.Screen, 0, len(frames))
	for _, d := range frames {
		s := bitmap.NewScreen(bounds)
		d.Draw(s)
		out = append(out, s)
	}
	return out
}
