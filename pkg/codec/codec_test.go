package codec

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"rectanim/pkg/bitmap"
	"rectanim/pkg/colors"
	"rectanim/pkg/frame"
)

var (
	red   = colors.RGB{R: 255}
	green = colors.RGB{G: 255}
)

func rendered(seq int, rects ...frame.Rect) frame.Rendered {
	return frame.Rendered{
		Seq:       seq,
		Label:     string(rune('a' + seq)),
		Rects:     rects,
		Primary:   colors.Black,
		Secondary: colors.White,
	}
}

func TestPackRecord(t *testing.T) {
	bs := PackRecord(FlagLast, 3, 4, 10, 20)
	assert.Equal(t, [RecordSize]byte{0x80, 0x18, 0x10, 0x14, 0x14}, bs)

	bs = PackRecord(0, FieldMax, FieldMax, FieldMax, FieldMax)
	assert.Equal(t, [RecordSize]byte{0x0F, 0xFF, 0xFF, 0xFF, 0xFF}, bs)

	flags, r := UnpackRecord(PackRecord(FlagLast|FlagD, 511, 0, 256, 1))
	assert.Equal(t, FlagLast|FlagD, flags)
	assert.Equal(t, frame.Rect{X: 511, Y: 0, W: 256, H: 1}, r)
}

func TestEncodeSingleFrameBitLayout(t *testing.T) {
	f := frame.Rendered{
		Seq:       0,
		Rects:     []frame.Rect{{X: 3, Y: 4, W: 10, H: 20}},
		Primary:   red,
		Secondary: green,
	}

	var buf bytes.Buffer
	rep, err := NewEncoder(Selection{}, zap.NewNop()).Encode(&buf, []frame.Rendered{f})
	require.NoError(t, err)
	require.Empty(t, rep.Errors)

	out := buf.Bytes()
	require.Len(t, out, 2+RecordSize+2)

	// secondary first: R=0 G=7 B=0
	assert.Equal(t, byte(0), out[0]>>5)
	assert.Equal(t, byte(7), (out[0]>>2)&0x7)
	assert.Equal(t, byte(0), out[0]&0x3)
	assert.Equal(t, byte(0xE0), out[1])

	var data uint64
	for _, b := range out[2 : 2+RecordSize] {
		data = data<<8 | uint64(b)
	}
	assert.Equal(t, uint64(1), data>>39&1, "last flag")
	assert.Equal(t, uint64(0), data>>36&0x7, "reserved flags")
	assert.Equal(t, uint64(3), data>>27&0x1FF)
	assert.Equal(t, uint64(4), data>>18&0x1FF)
	assert.Equal(t, uint64(10), data>>9&0x1FF)
	assert.Equal(t, uint64(20), data&0x1FF)

	assert.Equal(t, Sentinel[:], out[len(out)-2:])
	assert.Equal(t, 1, rep.Frames)
	assert.Equal(t, len(out), rep.Bytes)
}

func TestEncodeSelection(t *testing.T) {
	frames := []frame.Rendered{
		rendered(0, frame.Rect{W: 4, H: 4}, frame.Rect{X: 5, W: 2, H: 2}),
		rendered(1, frame.Rect{W: 3, H: 3}, frame.Rect{X: 5, W: 1, H: 2}),
		rendered(2, frame.Rect{W: 5, H: 5}, frame.Rect{X: 6, W: 1, H: 1}),
	}
	sel := Selection{Skip: 1, Stride: 1, Count: 1, MinRectArea: 0, MaxRectCount: 10}

	var buf bytes.Buffer
	rep, err := NewEncoder(sel, zap.NewNop()).Encode(&buf, frames)
	require.NoError(t, err)
	require.Len(t, rep.Blocks, 1)
	assert.Equal(t, 1, rep.Blocks[0].Seq)

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	want := []frame.Rect{{W: 3, H: 3}, {X: 5, W: 1, H: 2}}
	if diff := cmp.Diff(want, decoded[0].Rects); diff != "" {
		t.Errorf("decoded rects mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeOrdersBySeq(t *testing.T) {
	frames := []frame.Rendered{
		rendered(2, frame.Rect{W: 1, H: 1}),
		rendered(0, frame.Rect{W: 1, H: 1}),
		rendered(1, frame.Rect{W: 1, H: 1}),
	}

	var buf bytes.Buffer
	rep, err := NewEncoder(Selection{}, zap.NewNop()).Encode(&buf, frames)
	require.NoError(t, err)

	var seqs []int
	for _, b := range rep.Blocks {
		seqs = append(seqs, b.Seq)
	}
	assert.Equal(t, []int{0, 1, 2}, seqs)
	assert.Equal(t, 2, frames[0].Seq, "input must not be reordered")
}

func TestRectsFilter(t *testing.T) {
	f := rendered(0,
		frame.Rect{W: 2, H: 2},
		frame.Rect{X: 10, W: 10, H: 1},
		frame.Rect{X: 20, W: 1, H: 1},
		frame.Rect{X: 30, W: 5, H: 2},
		frame.Rect{X: 40, W: 3, H: 3},
	)

	e := NewEncoder(Selection{MinRectArea: 4, MaxRectCount: 2}, zap.NewNop())
	got := e.Rects(f)
	want := []frame.Rect{{X: 10, W: 10, H: 1}, {X: 30, W: 5, H: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rects() mismatch (-want +got):\n%s", diff)
	}

	e = NewEncoder(Selection{MinRectArea: 4}, zap.NewNop())
	assert.Len(t, e.Rects(f), 3)
	assert.Len(t, f.Rects, 5)

	// zero area is not an error, it never clears the threshold
	degenerate := rendered(1, frame.Rect{X: 2, W: 0, H: 3}, frame.Rect{W: 1, H: 1})
	e = NewEncoder(Selection{}, zap.NewNop())
	assert.Equal(t, []frame.Rect{{W: 1, H: 1}}, e.Rects(degenerate))
}

func TestEncodePlaceholder(t *testing.T) {
	frames := []frame.Rendered{
		rendered(0),
		rendered(1, frame.Rect{W: 2, H: 2}),
	}

	var buf bytes.Buffer
	_, err := NewEncoder(Selection{MinRectArea: 100}, zap.NewNop()).Encode(&buf, frames)
	require.NoError(t, err)

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	for _, d := range decoded {
		assert.Equal(t, []frame.Rect{{X: 0, Y: 0, W: 1, H: 1}}, d.Rects)
		assert.Equal(t, bitmap.RGB332(0xFF), d.Screen)
		assert.Equal(t, bitmap.RGB332(0x00), d.Color)
	}
}

func TestEncodeCollidingColors(t *testing.T) {
	clash := rendered(1, frame.Rect{W: 2, H: 2})
	clash.Primary = colors.RGB{}
	clash.Secondary = colors.RGB{R: 0xF8, G: 0xF8, B: 0xF8}
	frames := []frame.Rendered{
		rendered(0, frame.Rect{W: 1, H: 1}),
		clash,
		rendered(2, frame.Rect{W: 3, H: 3}),
	}

	core, logs := observer.New(zap.WarnLevel)
	var buf bytes.Buffer
	rep, err := NewEncoder(Selection{}, zap.New(core)).Encode(&buf, frames)
	require.NoError(t, err)
	require.Empty(t, rep.Errors)
	require.Len(t, rep.Blocks, 3)
	assert.Equal(t, rep.Blocks[1].Data[0], rep.Blocks[1].Data[1])
	assert.Equal(t, 1, logs.FilterMessageSnippet("collide").Len())

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, []frame.Rect{{X: 0, Y: 0, W: 1, H: 1}}, decoded[0].Rects)
}

func TestEncodeRangeError(t *testing.T) {
	frames := []frame.Rendered{
		rendered(0, frame.Rect{W: 1, H: 1}),
		rendered(1, frame.Rect{X: 600, W: 1, H: 1}),
		rendered(2, frame.Rect{W: 2, H: 1}),
	}

	var buf bytes.Buffer
	rep, err := NewEncoder(Selection{}, zap.NewNop()).Encode(&buf, frames)
	require.NoError(t, err)
	require.Len(t, rep.Errors, 1)

	var fe *FrameError
	require.True(t, errors.As(rep.Errors[0], &fe))
	assert.Equal(t, 1, fe.Seq)

	var re *RangeError
	require.True(t, errors.As(rep.Errors[0], &re))
	assert.Equal(t, "x", re.Field)
	assert.Equal(t, 600, re.Value)

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, decoded, 2)
	assert.Equal(t, 2, rep.Frames)
}

func TestEncodeEmptySelection(t *testing.T) {
	var buf bytes.Buffer
	rep, err := NewEncoder(Selection{Skip: 5}, zap.NewNop()).Encode(&buf, []frame.Rendered{rendered(0)})
	assert.Nil(t, rep)

	var ee *EmptyInputError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 1, ee.Frames)
	assert.Zero(t, buf.Len())

	_, err = NewEncoder(Selection{}, zap.NewNop()).Encode(&buf, nil)
	assert.True(t, errors.As(err, &ee))
}

func TestPick(t *testing.T) {
	cases := []struct {
		name string
		sel  Selection
		n    int
		want []int
	}{
		{"all", Selection{}, 4, []int{0, 1, 2, 3}},
		{"skip", Selection{Skip: 2}, 4, []int{2, 3}},
		{"stride", Selection{Stride: 3}, 8, []int{0, 3, 6}},
		{"skip stride count", Selection{Skip: 1, Stride: 2, Count: 2}, 10, []int{1, 3}},
		{"skip past end", Selection{Skip: 9}, 3, nil},
		{"count", Selection{Count: 1}, 3, []int{0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sel.Pick(tc.n))
		})
	}
}

func TestSelectionValidate(t *testing.T) {
	assert.NoError(t, Selection{Skip: 1, Stride: 5}.Validate())
	assert.Error(t, Selection{Skip: -1}.Validate())
	assert.Error(t, Selection{MaxRectCount: -3}.Validate())
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{0xFF})
	assert.ErrorIs(t, err, ErrTruncated)

	rec := PackRecord(0, 1, 1, 1, 1)
	_, err = Decode(append([]byte{0xFF, 0x00}, rec[:]...))
	assert.ErrorIs(t, err, ErrTruncated)

	frames, err := Decode(Sentinel[:])
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestReplay(t *testing.T) {
	f := frame.Rendered{
		Rects:     []frame.Rect{{X: 1, Y: 0, W: 2, H: 2}},
		Primary:   colors.Black,
		Secondary: colors.White,
	}

	var buf bytes.Buffer
	_, err := NewEncoder(Selection{}, zap.NewNop()).Encode(&buf, []frame.Rendered{f})
	require.NoError(t, err)

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)

	screens := Replay(decoded, image.Rect(0, 0, 4, 2))
	require.Len(t, screens, 1)
	s := screens[0]
	assert.Equal(t, bitmap.RGB332(0xFF), s.At(0, 0))
	assert.Equal(t, bitmap.RGB332(0x00), s.At(1, 0))
	assert.Equal(t, bitmap.RGB332(0x00), s.At(2, 1))
	assert.Equal(t, bitmap.RGB332(0xFF), s.At(3, 1))
}
