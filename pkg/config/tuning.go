package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"rectanim/pkg/bitmap"
	"rectanim/pkg/codec"
	"rectanim/pkg/colors"
	"rectanim/pkg/frame"
)

// Auto asks the pipeline to pick a frame's colors by quantization.
const Auto = "auto"

const maxFileSize = 1 << 20

// Tuning holds every knob of a conversion run. The same JSON can be saved
// after an interactive session and replayed with --config.
type Tuning struct {
	Skip         int `json:"skip"`
	Count        int `json:"count"`
	Stride       int `json:"stride"`
	MinRectArea  int `json:"min_rect_area"`
	MaxRectCount int `json:"max_rect_count"`

	// Primary and Secondary are hex colors or "auto".
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Metric    string `json:"metric"`

	// Diff only encodes cells that changed since the previous frame.
	// A frame whose perceptual hash is further than KeyframeDistance from
	// the previous one is encoded in full.
	Diff             bool `json:"diff"`
	KeyframeDistance int  `json:"keyframe_distance"`

	// Width and Height bound the resized input, 0 keeps the source size.
	Width   int `json:"width"`
	Height  int `json:"height"`
	Workers int `json:"workers"`
}

func Default() *Tuning {
	return &Tuning{
		Stride:           5,
		MinRectArea:      50,
		MaxRectCount:     70,
		Primary:          colors.Black.Hex(),
		Secondary:        colors.White.Hex(),
		Metric:           colors.DeltaE.String(),
		KeyframeDistance: 12,
	}
}

// Load reads a JSON tuning file. Fields missing from the file keep their
// default values.
func Load(fs afero.Fs, path string) (*Tuning, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fi, err := fs.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("stat config file failed: %w", err)
	}
	if fi.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fi.Size(), maxFileSize)
	}

	data, err := afero.ReadFile(fs, clean)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}

	t := Default()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse config JSON failed: %w", err)
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return t, nil
}

func (t *Tuning) Save(fs afero.Fs, path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, append(data, '\n'), 0644)
}

func (t *Tuning) Validate() error {
	errs := []error{t.Selection().Validate()}

	if _, err := colors.ParseMetric(t.Metric); err != nil {
		errs = append(errs, err)
	}
	for _, c := range []string{t.Primary, t.Secondary} {
		if IsAuto(c) {
			continue
		}
		if _, err := colors.ParseHex(c); err != nil {
			errs = append(errs, err)
		}
	}
	if IsAuto(t.Primary) != IsAuto(t.Secondary) {
		errs = append(errs, errors.New("primary and secondary must both be auto or both be colors"))
	}
	if p, s, ok, err := t.Colors(); err == nil && ok && bitmap.Pack(p) == bitmap.Pack(s) {
		errs = append(errs, fmt.Errorf("primary %s and secondary %s share color byte 0x%02X, the player would stop there",
			p.Hex(), s.Hex(), bitmap.Pack(p)))
	}

	if t.Width < 0 || t.Width > frame.MaxSize {
		errs = append(errs, fmt.Errorf("width must be in [0,%d], got %d", frame.MaxSize, t.Width))
	}
	if t.Height < 0 || t.Height > frame.MaxSize {
		errs = append(errs, fmt.Errorf("height must be in [0,%d], got %d", frame.MaxSize, t.Height))
	}
	if t.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", t.Workers))
	}
	if t.KeyframeDistance < 0 {
		errs = append(errs, fmt.Errorf("keyframe distance must not be negative, got %d", t.KeyframeDistance))
	}

	return errors.Join(errs...)
}

func (t *Tuning) Selection() codec.Selection {
	return codec.Selection{
		Skip:         t.Skip,
		Count:        t.Count,
		Stride:       t.Stride,
		MinRectArea:  t.MinRectArea,
		MaxRectCount: t.MaxRectCount,
	}
}

// Colors returns the fixed reference colors, ok is false for auto.
func (t *Tuning) Colors() (primary, secondary colors.RGB, ok bool, err error) {
	if IsAuto(t.Primary) || IsAuto(t.Secondary) {
		return
	}
	if primary, err = colors.ParseHex(t.Primary); err != nil {
		return
	}
	if secondary, err = colors.ParseHex(t.Secondary); err != nil {
		return
	}
	ok = true
	return
}

func IsAuto(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), Auto)
}
