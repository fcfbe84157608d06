package preview

import (
	"bytes"
	"image"
	"image/gif"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rectanim/pkg/bitmap"
	"rectanim/pkg/codec"
	"rectanim/pkg/colors"
	"rectanim/pkg/frame"
)

func stream(t *testing.T) []byte {
	t.Helper()
	frames := []frame.Rendered{
		{Seq: 0, Rects: []frame.Rect{{X: 0, Y: 0, W: 2, H: 2}}, Primary: colors.Black, Secondary: colors.White},
		{Seq: 1, Rects: []frame.Rect{{X: 4, Y: 1, W: 2, H: 3}}, Primary: colors.Black, Secondary: colors.White},
	}
	var buf bytes.Buffer
	_, err := codec.NewEncoder(codec.Selection{}, zap.NewNop()).Encode(&buf, frames)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, Save(fs, "/p.gif", stream(t), image.Rect(0, 0, 8, 4), 10))

	fh, err := fs.Open("/p.gif")
	require.NoError(t, err)
	defer fh.Close()

	anim, err := gif.DecodeAll(fh)
	require.NoError(t, err)
	require.Len(t, anim.Image, 2)
	assert.Equal(t, []int{10, 10}, anim.Delay)

	second := anim.Image[1]
	assert.Equal(t, uint8(0x00), second.ColorIndexAt(4, 1))
	assert.Equal(t, uint8(0xFF), second.ColorIndexAt(0, 0))
	assert.Equal(t, colors.FromColor(bitmap.Palette[0xFF]), colors.FromColor(second.Palette[0xFF]))
}

func TestGIFEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, GIF(&buf, nil, image.Rect(0, 0, 1, 1), 1))
}

func TestSize(t *testing.T) {
	frames := []frame.Rendered{
		{Width: 16, Height: 8, Rects: []frame.Rect{{X: 0, Y: 0, W: 2, H: 2}}},
		{Width: 12, Height: 10},
	}
	assert.Equal(t, image.Rect(0, 0, 16, 10), Size(frames))
	assert.True(t, Size(nil).Empty())
	assert.True(t, Size([]frame.Rendered{{Rects: []frame.Rect{{W: 1, H: 1}}}}).Empty())
}

func TestSaveUsesSourceSize(t *testing.T) {
	fs := afero.NewMemMapFs()
	frames := []frame.Rendered{
		{Seq: 0, Width: 16, Height: 8, Rects: []frame.Rect{{X: 0, Y: 0, W: 2, H: 2}}, Primary: colors.Black, Secondary: colors.White},
	}
	var buf bytes.Buffer
	_, err := codec.NewEncoder(codec.Selection{}, zap.NewNop()).Encode(&buf, frames)
	require.NoError(t, err)

	require.NoError(t, Save(fs, "/p.gif", buf.Bytes(), Size(frames), 10))
	fh, err := fs.Open("/p.gif")
	require.NoError(t, err)
	defer fh.Close()

	anim, err := gif.DecodeAll(fh)
	require.NoError(t, err)
	require.Len(t, anim.Image, 1)
	assert.Equal(t, image.Rect(0, 0, 16, 8), anim.Image[0].Bounds())
	assert.Equal(t, uint8(0xFF), anim.Image[0].ColorIndexAt(15, 7))
}

func TestBounds(t *testing.T) {
	frames, err := codec.Decode(stream(t))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 4), Bounds(frames))
	assert.Equal(t, image.Rect(0, 0, 1, 1), Bounds(nil))
}
