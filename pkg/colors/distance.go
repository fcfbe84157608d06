package colors

import (
	"fmt"
	"math"
	"strings"
)

type Metric int

const (
	DeltaE Metric = iota
	Euclidean
)

func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deltae", "delta-e", "de":
		return DeltaE, nil
	case "euclidean", "rgb":
		return Euclidean, nil
	}
	return DeltaE, fmt.Errorf("unknown metric %q", s)
}

func (m Metric) String() string {
	switch m {
	case DeltaE:
		return "deltae"
	case Euclidean:
		return "euclidean"
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

func (m Metric) Distance(a, b RGB) float64 {
	if m == Euclidean {
		return EuclideanDistance(a, b)
	}
	return DeltaEDistance(a, b)
}

// EuclideanDistance is the squared distance in RGB space. The root is
// skipped since only the ordering of distances matters.
func EuclideanDistance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return dr*dr + dg*dg + db*db
}

// DeltaEDistance converts both colors to CIE-LAB and measures a weighted
// difference. It is not symmetric: chroma weights come from a.
func DeltaEDistance(a, b RGB) float64 {
	return ToLab(a).DeltaE(ToLab(b))
}

// Lab is a color in CIE-LAB space (D65 white point).
type Lab struct {
	L, A, B float64
}

// linear maps an 8-bit sRGB channel to its linear 0..1 value.
var linear [256]float64

func init() {
	for i := range linear {
		c := float64(i) / 255
		if c > 0.04045 {
			linear[i] = math.Pow((c+0.055)/1.055, 2.4)
		} else {
			linear[i] = c / 12.92
		}
	}
}

func labPivot(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116
}

func ToLab(c RGB) Lab {
	r, g, b := linear[c.R], linear[c.G], linear[c.B]

	x := labPivot((r*0.4124 + g*0.3576 + b*0.1805) / 0.95047)
	y := labPivot((r*0.2126 + g*0.7152 + b*0.0722) / 1.00000)
	z := labPivot((r*0.0193 + g*0.1192 + b*0.9505) / 1.08883)

	return Lab{L: 116*y - 16, A: 500 * (x - y), B: 200 * (y - z)}
}

func (l Lab) Chroma() float64 {
	return math.Sqrt(l.A*l.A + l.B*l.B)
}

func (l Lab) DeltaE(o Lab) float64 {
	dL := l.L - o.L
	dA := l.A - o.A
	dB := l.B - o.B

	c1 := l.Chroma()
	dC := c1 - o.Chroma()

	// rounding can push this slightly below zero for near-equal colors
	dH := dA*dA + dB*dB - dC*dC
	if dH < 0 {
		dH = 0
	} else {
		dH = math.Sqrt(dH)
	}

	sc := 1 + 0.045*c1
	sh := 1 + 0.015*c1

	dCs := dC / sc
	dHs := dH / sh

	sum := dL*dL + dCs*dCs + dHs*dHs
	if sum <= 0 {
		return 0
	}
	return math.Sqrt(sum)
}
