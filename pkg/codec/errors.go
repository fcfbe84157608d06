package codec

import (
	"fmt"

	"rectanim/pkg/frame"
)

// RangeError reports a rectangle field that does not fit the 9-bit wire
// field. It means an upstream image exceeded the coordinate ceiling.
type RangeError struct {
	Rect  frame.Rect
	Field string
	Value int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("rect %s: %s=%d out of range [0,%d]", e.Rect, e.Field, e.Value, FieldMax)
}

type EmptyInputError struct {
	Frames int
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no frames left after selection (%d available)", e.Frames)
}

// FrameError ties a per-frame failure to the frame that caused it.
type FrameError struct {
	Seq   int
	Label string
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (%s): %v", e.Seq, e.Label, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func checkRect(r frame.Rect) error {
	fields := []struct {
		name string
		v    int
	}{{"x", r.X}, {"y", r.Y}, {"w", r.W}, {"h", r.H}}

	for _, f := range fields {
		if f.v < 0 || f.v > FieldMax {
			return &RangeError{Rect: r, Field: f.name, Value: f.v}
		}
	}
	return nil
}
