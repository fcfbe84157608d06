package source

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"}

func IsImage(name string) bool {
	return lo.Contains(imageExts, strings.ToLower(path.Ext(name)))
}

// NewDir lists the images directly inside dir. Hidden files are ignored.
func NewDir(fs afero.Fs, dir string, logger *zap.Logger) (*Files, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir failed: %w", err)
	}

	var names []string
	for _, fi := range infos {
		if fi.IsDir() || strings.HasPrefix(fi.Name(), ".") || !IsImage(fi.Name()) {
			continue
		}
		names = append(names, path.Join(dir, fi.Name()))
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no images in %s", dir)
	}

	return NewFiles(fs, names, logger), nil
}

// NewFiles reads the given image files. When every name carries a number the
// number is the frame's Seq, otherwise frames are numbered in name order.
func NewFiles(fs afero.Fs, names []string, logger *zap.Logger) *Files {
	f := &Files{
		fs:     fs,
		logger: logger.With(zap.String("via", "files")),
	}

	names = append([]string(nil), names...)
	sort.Strings(names)

	numbered := lo.EveryBy(names, func(n string) bool {
		_, ok := seqFromName(n)
		return ok
	})

	for i, n := range names {
		seq := i
		if numbered {
			seq, _ = seqFromName(n)
		}
		f.entries = append(f.entries, entry{seq: seq, name: n})
	}

	return f
}

type entry struct {
	seq  int
	name string
}

type Files struct {
	fs      afero.Fs
	entries []entry
	logger  *zap.Logger
}

func (f *Files) Len() int {
	return len(f.entries)
}

func (f *Files) Frames(ctx context.Context) (<-chan Frame, <-chan error) {
	out := make(chan Frame)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(out)

		for _, e := range f.entries {
			if err := ctx.Err(); err != nil {
				errc <- err
				return
			}

			fr := f.read(e)
			select {
			case out <- fr:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	return out, errc
}

func (f *Files) read(e entry) Frame {
	fr := Frame{Seq: e.seq, Label: labelFromName(e.name)}

	fh, err := f.fs.Open(e.name)
	if err != nil {
		fr.Err = fmt.Errorf("open %s failed: %w", e.name, err)
		return fr
	}
	defer func() {
		_ = fh.Close()
	}()

	img, err := imaging.Decode(fh, imaging.AutoOrientation(true))
	if err != nil {
		fr.Err = fmt.Errorf("decode %s failed: %w", e.name, err)
		return fr
	}

	f.logger.With(zap.String("file", e.name), zap.Int("seq", e.seq)).Debug("frame loaded")

	fr.Image = img
	return fr
}
