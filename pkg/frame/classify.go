package frame

import (
	"image"
	"image/color"

	"rectanim/pkg/colors"
)

type judge interface {
	isPrimary(c colors.RGB) bool
}

type deltaJudge struct {
	primary   colors.Lab
	secondary colors.Lab
}

// the pixel is the first operand, matching DeltaEDistance(pixel, ref)
func (j *deltaJudge) isPrimary(c colors.RGB) bool {
	lab := colors.ToLab(c)
	return lab.DeltaE(j.primary) < lab.DeltaE(j.secondary)
}

type euclidJudge struct {
	primary   colors.RGB
	secondary colors.RGB
}

func (j *euclidJudge) isPrimary(c colors.RGB) bool {
	return colors.EuclideanDistance(c, j.primary) < colors.EuclideanDistance(c, j.secondary)
}

func newJudge(m colors.Metric, primary, secondary colors.RGB) judge {
	if m == colors.Euclidean {
		return &euclidJudge{primary: primary, secondary: secondary}
	}
	return &deltaJudge{primary: colors.ToLab(primary), secondary: colors.ToLab(secondary)}
}

// Classify splits img into primary and secondary cells by whichever
// reference color is nearer; ties go to secondary. When prev is given, cells
// whose classification did not change since prev are marked Consumed.
func Classify(img, prev image.Image, primary, secondary colors.RGB, metric colors.Metric) (*Grid, error) {
	b := img.Bounds()
	g, err := NewGrid(b.Dx(), b.Dy(), primary, secondary)
	if err != nil {
		return nil, err
	}

	var pb image.Rectangle
	if prev != nil {
		pb = prev.Bounds()
		if pb.Dx() != b.Dx() || pb.Dy() != b.Dy() {
			return nil, &DimensionError{Width: pb.Dx(), Height: pb.Dy(), Reason: "previous frame size differs"}
		}
	}

	j := newJudge(metric, primary, secondary)
	at := pixelReader(img)
	var prevAt func(x, y int) colors.RGB
	if prev != nil {
		prevAt = pixelReader(prev)
	}

	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			state := stateOf(j, at(b.Min.X+x, b.Min.Y+y))

			if prevAt != nil {
				if stateOf(j, prevAt(pb.Min.X+x, pb.Min.Y+y)) == state {
					state = Consumed
				}
			}

			g.Set(x, y, state)
		}
	}

	return g, nil
}

func stateOf(j judge, c colors.RGB) State {
	if j.isPrimary(c) {
		return Primary
	}
	return Secondary
}

// pixelReader avoids the color.Color allocation of At for the common
// decoder output types.
// premul matches color.NRGBA.RGBA followed by colors.FromColor.
func premul(v, a uint8) uint8 {
	c := uint32(v)
	c |= c << 8
	c *= uint32(a)
	c /= 0xffff
	return uint8(c >> 8)
}

func pixelReader(img image.Image) func(x, y int) colors.RGB {
	switch m := img.(type) {
	case *image.RGBA:
		return func(x, y int) colors.RGB {
			i := m.PixOffset(x, y)
			return colors.RGB{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2]}
		}
	case *image.NRGBA:
		return func(x, y int) colors.RGB {
			i := m.PixOffset(x, y)
			a := m.Pix[i+3]
			if a == 0xff {
				return colors.RGB{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2]}
			}
			return colors.RGB{R: premul(m.Pix[i], a), G: premul(m.Pix[i+1], a), B: premul(m.Pix[i+2], a)}
		}
	case *image.Gray:
		return func(x, y int) colors.RGB {
			v := m.Pix[m.PixOffset(x, y)]
			return colors.RGB{R: v, G: v, B: v}
		}
	case *image.Paletted:
		lut := make([]colors.RGB, len(m.Palette))
		for i, c := range m.Palette {
			lut[i] = colors.FromColor(c)
		}
		return func(x, y int) colors.RGB {
			idx := int(m.Pix[m.PixOffset(x, y)])
			if idx >= len(lut) {
				return colors.FromColor(color.Black)
			}
			return lut[idx]
		}
	}

	return func(x, y int) colors.RGB {
		return colors.FromColor(img.At(x, y))
	}
}
