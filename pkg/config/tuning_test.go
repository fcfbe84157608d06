package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rectanim/pkg/codec"
	"rectanim/pkg/colors"
)

func TestDefault(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())

	assert.Equal(t, codec.Selection{Stride: 5, MinRectArea: 50, MaxRectCount: 70}, d.Selection())

	p, s, ok, err := d.Colors()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, colors.Black, p)
	assert.Equal(t, colors.White, s)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/tuning.json", []byte(`{"skip": 3, "metric": "euclidean"}`), 0644))

	cfg, err := Load(fs, "/cfg/tuning.json")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Skip)
	assert.Equal(t, "euclidean", cfg.Metric)
	assert.Equal(t, 5, cfg.Stride)
	assert.Equal(t, 70, cfg.MaxRectCount)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte(`{"skip": `), 0644))
	require.NoError(t, afero.WriteFile(fs, "/invalid.json", []byte(`{"stride": -1}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/tuning.yaml", []byte(`skip: 1`), 0644))

	cases := []string{"/missing.json", "/bad.json", "/invalid.json", "/tuning.yaml"}
	for _, path := range cases {
		t.Run(path, func(t *testing.T) {
			_, err := Load(fs, path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Default()
	cfg.Primary, cfg.Secondary = Auto, "AUTO"
	cfg.Diff = true
	cfg.Width = 320

	require.NoError(t, cfg.Save(fs, "/out.json"))
	got, err := Load(fs, "/out.json")
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	_, _, ok, err := got.Colors()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Tuning){
		"bad metric":      func(c *Tuning) { c.Metric = "manhattan" },
		"bad color":       func(c *Tuning) { c.Primary = "#zzzzzz" },
		"half auto":       func(c *Tuning) { c.Primary = Auto },
		"too wide":        func(c *Tuning) { c.Width = 512 },
		"negative count":  func(c *Tuning) { c.Count = -1 },
		"same color byte": func(c *Tuning) { c.Primary, c.Secondary = "#000000", "#f8f8f8" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
