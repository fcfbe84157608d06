package codec

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"rectanim/pkg/bitmap"
	"rectanim/pkg/frame"
)

func NewEncoder(sel Selection, logger *zap.Logger) *Encoder {
	return &Encoder{
		sel:    sel,
		logger: logger.With(zap.String("via", "encoder")),
	}
}

type Encoder struct {
	sel    Selection
	logger *zap.Logger
}

// Block is one encoded frame: two color bytes followed by its records.
type Block struct {
	Seq   int
	Label string
	Rects int
	Data  []byte
}

type Report struct {
	Frames int
	Rects  int
	Bytes  int
	Blocks []Block
	// Errors holds one *FrameError per selected frame that failed to encode.
	Errors []error
}

// Encode writes the selected frames followed by the end of stream sentinel.
// Frames are ordered by Seq first, whatever order they arrive in. A frame
// that fails to encode is left out and reported in Report.Errors; nothing is
// written when the selection is empty.
func (e *Encoder) Encode(w io.Writer, frames []frame.Rendered) (*Report, error) {
	sorted := append([]frame.Rendered(nil), frames...)
	frame.Sort(sorted)

	picked := e.sel.Pick(len(sorted))
	if len(picked) == 0 {
		return nil, &EmptyInputError{Frames: len(frames)}
	}

	r := &Report{}
	var buf bytes.Buffer

	for _, i := range picked {
		f := sorted[i]
		blk, err := e.block(f)
		if err != nil {
			e.logger.With(zap.Int("seq", f.Seq), zap.String("label", f.Label), zap.Error(err)).Warn("frame skipped")
			r.Errors = append(r.Errors, &FrameError{Seq: f.Seq, Label: f.Label, Err: err})
			continue
		}

		buf.Write(blk.Data)
		r.Blocks = append(r.Blocks, blk)
		r.Frames++
		r.Rects += blk.Rects
	}

	buf.Write(Sentinel[:])

	n, err := w.Write(buf.Bytes())
	r.Bytes = n
	if err != nil {
		return r, fmt.Errorf("write stream failed: %w", err)
	}

	e.logger.With(
		zap.Int("frames", r.Frames),
		zap.Int("rects", r.Rects),
		zap.Int("bytes", r.Bytes),
		zap.Int("errors", len(r.Errors)),
	).Debug("encoded")

	return r, nil
}

// Rects returns the rectangles of f that survive the area threshold and
// count limit, largest first.
func (e *Encoder) Rects(f frame.Rendered) []frame.Rect {
	rects := append([]frame.Rect(nil), f.Rects...)
	sort.SliceStable(rects, func(i, j int) bool {
		return rects[i].Area() > rects[j].Area()
	})

	rects = lo.Filter(rects, func(r frame.Rect, _ int) bool {
		return r.Area() > e.sel.MinRectArea
	})

	if e.sel.MaxRectCount > 0 && len(rects) > e.sel.MaxRectCount {
		rects = rects[:e.sel.MaxRectCount]
	}

	return rects
}

func (e *Encoder) block(f frame.Rendered) (Block, error) {
	rects := e.Rects(f)
	if len(rects) == 0 {
		// the player stops reading a frame on the last flag, so there must
		// always be one record
		rects = []frame.Rect{{X: 0, Y: 0, W: 1, H: 1}}
	}

	for _, rc := range rects {
		if err := checkRect(rc); err != nil {
			return Block{}, err
		}
	}

	secondary := bitmap.Pack(f.Secondary)
	primary := bitmap.Pack(f.Primary)
	if secondary == primary {
		e.logger.With(
			zap.Int("seq", f.Seq),
			zap.String("primary", f.Primary.Hex()),
			zap.String("secondary", f.Secondary.Hex()),
		).Warn("color bytes collide, player will read this frame as end of stream")
	}

	data := make([]byte, 0, 2+len(rects)*RecordSize)
	data = append(data, secondary, primary)
	for i, rc := range rects {
		var flags uint8
		if i == len(rects)-1 {
			flags |= FlagLast
		}
		rec := PackRecord(flags, rc.X, rc.Y, rc.W, rc.H)
		data = append(data, rec[:]...)
	}

	return Block{Seq: f.Seq, Label: f.Label, Rects: len(rects), Data: data}, nil
}
