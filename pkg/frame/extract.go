package frame

import (
	"fmt"
	"image"
)

type Rect struct {
	X, Y int
	W, H int
}

func (r Rect) Area() int {
	return r.W * r.H
}

func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

func (r Rect) Overlaps(o Rect) bool {
	return r.Bounds().Overlaps(o.Bounds())
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// Extract consumes every primary cell of the grid and returns the covering
// rectangles in seed discovery order (column by column, top to bottom).
func (g *Grid) Extract() []Rect {
	var rects []Rect
	for {
		x, y, ok := g.nextSeed()
		if !ok {
			return rects
		}
		rects = append(rects, g.grow(x, y))
	}
}

func (g *Grid) nextSeed() (int, int, bool) {
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			if g.At(x, y) == Primary {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// grow extends a rectangle from the seed by adding the next column and the
// next row together while both are fully primary. Once one edge is blocked
// (by a non-primary cell or the image border) the other keeps growing alone.
// x and y are exclusive bounds, the seed alone is [x0,x0+1) x [y0,y0+1).
func (g *Grid) grow(x0, y0 int) Rect {
	g.consume(x0, y0)

	x, y := x0+1, y0+1
	xLimitHit, yLimitHit := false, false

	for !xLimitHit || !yLimitHit {
		if x >= g.width {
			xLimitHit = true
		}
		if y >= g.height {
			yLimitHit = true
		}

		growX := !xLimitHit && g.columnPrimary(x, y0, y)
		growY := !yLimitHit && g.rowPrimary(y, x0, x)
		if !growX {
			xLimitHit = true
		}
		if !growY {
			yLimitHit = true
		}

		// both edges are free but the shared corner is not
		if growX && growY && g.At(x, y) != Primary {
			growY = false
			yLimitHit = true
		}

		if growX {
			for yy := y0; yy < y; yy++ {
				g.consume(x, yy)
			}
		}
		if growY {
			for xx := x0; xx < x; xx++ {
				g.consume(xx, y)
			}
		}
		if growX && growY {
			g.consume(x, y)
		}

		if growX {
			x++
		}
		if growY {
			y++
		}
	}

	w := min(x-x0, g.width-x0)
	h := min(y-y0, g.height-y0)

	for xx := x0; xx < x0+w; xx++ {
		for yy := y0; yy < y0+h; yy++ {
			g.consume(xx, yy)
		}
	}

	return Rect{X: x0, Y: y0, W: w, H: h}
}

func (g *Grid) columnPrimary(x, fromY, toY int) bool {
	for y := fromY; y < toY; y++ {
		if g.At(x, y) != Primary {
			return false
		}
	}
	return true
}

func (g *Grid) rowPrimary(y, fromX, toX int) bool {
	for x := fromX; x < toX; x++ {
		if g.At(x, y) != Primary {
			return false
		}
	}
	return true
}
