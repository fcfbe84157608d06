package store

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rectanim/pkg/colors"
	"rectanim/pkg/frame"
)

func TestKey(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewRGBA(image.Rect(0, 0, 4, 4))
	p := Params{Primary: colors.Black, Secondary: colors.White, Metric: colors.DeltaE}

	assert.Equal(t, Key(a, nil, p), Key(b, nil, p))

	b.Set(1, 1, color.White)
	assert.NotEqual(t, Key(a, nil, p), Key(b, nil, p))
	assert.NotEqual(t, Key(a, nil, p), Key(a, b, p))

	q := p
	q.Metric = colors.Euclidean
	assert.NotEqual(t, Key(a, nil, p), Key(a, nil, q))

	wide := image.NewRGBA(image.Rect(0, 0, 8, 2))
	assert.NotEqual(t, Key(a, nil, p), Key(wide, nil, p))
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	ok, _, err := c.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := frame.Rendered{
		Rects:     []frame.Rect{{X: 1, Y: 2, W: 3, H: 4}, {X: 0, Y: 0, W: 1, H: 1}},
		Primary:   colors.RGB{R: 10, G: 20, B: 30},
		Secondary: colors.White,
		Swapped:   true,
	}
	require.NoError(t, c.Save(ctx, "k", want))
	require.NoError(t, c.Save(ctx, "k", want))

	ok, got, err := c.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cached frame mismatch (-want +got):\n%s", diff)
	}

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCacheEmptyRects(t *testing.T) {
	ctx := context.Background()
	c, err := Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Save(ctx, "empty", frame.Rendered{Primary: colors.Black, Secondary: colors.White}))
	ok, got, err := c.Load(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got.Rects)
}
