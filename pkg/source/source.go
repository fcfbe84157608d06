package source

import (
	"context"
	"image"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Frame is one decoded input image. Seq orders frames for encoding; Label
// names the frame in logs and in the generated C header. Err is set instead
// of Image when this single frame could not be read.
type Frame struct {
	Seq   int
	Label string
	Image image.Image
	Err   error
}

// Source produces frames in any order. The error channel carries at most one
// fatal error and is closed after the frame channel.
type Source interface {
	Frames(ctx context.Context) (<-chan Frame, <-chan error)
}

var digits = regexp.MustCompile(`\d+`)

// seqFromName returns the last run of digits in the base name, so that
// "frame_010.png" sorts after "frame_9.png".
func seqFromName(name string) (int, bool) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	all := digits.FindAllString(base, -1)
	if len(all) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(all[len(all)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func labelFromName(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}
