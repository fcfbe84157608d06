package frame

import (
	"sort"

	"rectanim/pkg/colors"
)

// Rendered is the immutable result for one input image: its rectangles in
// extraction order and the colors after role selection. Seq is the external
// ordering key, Label is informational. Width and Height are the source
// image size.
type Rendered struct {
	Seq       int
	Label     string
	Width     int
	Height    int
	Rects     []Rect
	Primary   colors.RGB
	Secondary colors.RGB
	Swapped   bool
}

// Render takes ownership of g; the grid is fully consumed afterwards and
// must not be reused.
func Render(seq int, label string, g *Grid) Rendered {
	swapped := g.SwapRoles()
	rects := g.Extract()

	return Rendered{
		Seq:       seq,
		Label:     label,
		Width:     g.width,
		Height:    g.height,
		Rects:     rects,
		Primary:   g.primary,
		Secondary: g.secondary,
		Swapped:   swapped,
	}
}

func Sort(frames []Rendered) {
	sort.SliceStable(frames, func(i, j int) bool {
		if frames[i].Seq != frames[j].Seq {
			return frames[i].Seq < frames[j].Seq
		}
		return frames[i].Label < frames[j].Label
	})
}
