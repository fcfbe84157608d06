package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// NewVideo extracts frames with ffmpeg at the given rate. maxWidth scales
// the video down inside ffmpeg, 0 keeps the source width.
func NewVideo(path string, fps, maxWidth int, logger *zap.Logger) *Video {
	if fps <= 0 {
		fps = 1
	}
	return &Video{
		path:     path,
		fps:      fps,
		maxWidth: maxWidth,
		logger:   logger.With(zap.String("via", "video"), zap.String("path", path)),
	}
}

type Video struct {
	path     string
	fps      int
	maxWidth int
	logger   *zap.Logger
}

func (v *Video) args() ffmpeg.KwArgs {
	args := ffmpeg.KwArgs{
		"format": "image2pipe",
		"vcodec": "png",
		"r":      strconv.Itoa(v.fps),
	}
	if v.maxWidth > 0 {
		args["vf"] = fmt.Sprintf("scale='min(%d,iw)':-2", v.maxWidth)
	}
	return args
}

func (v *Video) Frames(ctx context.Context) (<-chan Frame, <-chan error) {
	out := make(chan Frame)
	errc := make(chan error, 1)

	pr, pw := io.Pipe()
	var stderr bytes.Buffer

	cmd := ffmpeg.Input(v.path).
		Output("pipe:1", v.args()).
		WithOutput(pw).
		WithErrorOutput(&stderr)
	cmd.Context = ctx

	go func() {
		err := cmd.Run()
		if err != nil {
			err = fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(stderr.Bytes()))
		}
		_ = pw.CloseWithError(err)
	}()

	go func() {
		defer close(errc)
		defer close(out)
		defer func() {
			_ = pr.Close()
		}()

		errc <- v.decode(ctx, bufio.NewReader(pr), out)
	}()

	return out, errc
}

func (v *Video) decode(ctx context.Context, r *bufio.Reader, out chan<- Frame) error {
	for index := 0; ; index++ {
		if _, err := r.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				if index == 0 {
					return errors.New("no frames extracted")
				}
				v.logger.With(zap.Int("frames", index)).Debug("video drained")
				return nil
			}
			return err
		}

		img, err := png.Decode(r)
		if err != nil {
			// the stream is out of sync after a bad frame
			return fmt.Errorf("decode frame %d failed: %w", index, err)
		}

		select {
		case out <- Frame{Seq: index, Label: fmt.Sprintf("f%05d", index), Image: img}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func lastLine(bs []byte) string {
	bs = bytes.TrimSpace(bs)
	if i := bytes.LastIndexByte(bs, '\n'); i >= 0 {
		bs = bs[i+1:]
	}
	return string(bs)
}
