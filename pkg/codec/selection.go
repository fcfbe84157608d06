package codec

import (
	"errors"
	"fmt"
)

// Selection picks which frames and rectangles make it into the stream.
// Zero values mean: no skip, no frame limit, every frame, no area
// threshold, no rectangle limit.
type Selection struct {
	Skip         int `json:"skip"`
	Count        int `json:"count"`
	Stride       int `json:"stride"`
	MinRectArea  int `json:"min_rect_area"`
	MaxRectCount int `json:"max_rect_count"`
}

func (s Selection) Validate() error {
	var errs []error
	if s.Skip < 0 {
		errs = append(errs, fmt.Errorf("skip must not be negative, got %d", s.Skip))
	}
	if s.Count < 0 {
		errs = append(errs, fmt.Errorf("count must not be negative, got %d", s.Count))
	}
	if s.Stride < 0 {
		errs = append(errs, fmt.Errorf("stride must not be negative, got %d", s.Stride))
	}
	if s.MinRectArea < 0 {
		errs = append(errs, fmt.Errorf("min rect area must not be negative, got %d", s.MinRectArea))
	}
	if s.MaxRectCount < 0 {
		errs = append(errs, fmt.Errorf("max rect count must not be negative, got %d", s.MaxRectCount))
	}
	return errors.Join(errs...)
}

// Pick returns the indexes kept by skip, then stride, then count. The first
// frame after the skipped ones is always kept.
func (s Selection) Pick(n int) []int {
	stride := max(s.Stride, 1)

	var out []int
	for i := max(s.Skip, 0); i < n; i += stride {
		if s.Count > 0 && len(out) >= s.Count {
			break
		}
		out = append(out, i)
	}
	return out
}
