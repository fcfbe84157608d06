package frame

import (
	"fmt"

	"rectanim/pkg/colors"
)

// MaxSize is the largest width or height the 9-bit wire fields can carry.
const MaxSize = 511

type State uint8

const (
	Primary State = iota
	Secondary
	Consumed
)

func (s State) String() string {
	switch s {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Consumed:
		return "consumed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

type DimensionError struct {
	Width  int
	Height int
	Reason string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("invalid frame size %dx%d: %s", e.Width, e.Height, e.Reason)
}

func checkSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return &DimensionError{Width: w, Height: h, Reason: "zero extent"}
	}
	if w > MaxSize || h > MaxSize {
		return &DimensionError{Width: w, Height: h, Reason: fmt.Sprintf("exceeds %dx%d", MaxSize, MaxSize)}
	}
	return nil
}

// Grid is the per-frame classification buffer. A grid is owned by the task
// that created it; it is mutated by diffing, role selection and extraction.
type Grid struct {
	width     int
	height    int
	cells     []State
	primary   colors.RGB
	secondary colors.RGB
}

func NewGrid(width, height int, primary, secondary colors.RGB) (*Grid, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}

	return &Grid{
		width:     width,
		height:    height,
		cells:     make([]State, width*height),
		primary:   primary,
		secondary: secondary,
	}, nil
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

func (g *Grid) Primary() colors.RGB {
	return g.primary
}

func (g *Grid) Secondary() colors.RGB {
	return g.secondary
}

func (g *Grid) At(x, y int) State {
	return g.cells[y*g.width+x]
}

func (g *Grid) Set(x, y int, s State) {
	g.cells[y*g.width+x] = s
}

func (g *Grid) consume(x, y int) {
	g.cells[y*g.width+x] = Consumed
}

func (g *Grid) Count() (primary, secondary, consumed int) {
	for _, s := range g.cells {
		switch s {
		case Primary:
			primary++
		case Secondary:
			secondary++
		default:
			consumed++
		}
	}
	return
}

// SwapRoles makes the less common color the primary one, so the majority
// becomes the implicit background. Ties keep the current roles, and so do
// uniform grids (no secondary cells) so they still encode as one rectangle.
// Reports whether a swap happened.
func (g *Grid) SwapRoles() bool {
	p, s, _ := g.Count()
	if s == 0 || s >= p {
		return false
	}

	for i, c := range g.cells {
		switch c {
		case Primary:
			g.cells[i] = Secondary
		case Secondary:
			g.cells[i] = Primary
		}
	}
	g.primary, g.secondary = g.secondary, g.primary

	return true
}
