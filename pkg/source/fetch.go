package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"

	"github.com/go-resty/resty/v2"
	"github.com/rs/xid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type FetcherOption func(*Fetcher)

func WithQuiet() FetcherOption {
	return func(f *Fetcher) {
		f.quiet = true
	}
}

func WithClient(cli *resty.Client) FetcherOption {
	return func(f *Fetcher) {
		f.cli = cli.SetDoNotParseResponse(true)
	}
}

// NewFetcher downloads remote inputs into dir, the system temp dir when
// empty. Files are kept so ffmpeg and the image decoders can read them by
// path.
func NewFetcher(dir string, logger *zap.Logger, opts ...FetcherOption) (*Fetcher, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	osFs := afero.NewOsFs()
	if exists, err := afero.DirExists(osFs, dir); err != nil {
		return nil, fmt.Errorf("create fetcher failed: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("create fetcher failed: %s not exists", dir)
	}

	f := &Fetcher{
		fs:     afero.NewBasePathFs(osFs, dir).(*afero.BasePathFs),
		cli:    resty.New().SetDoNotParseResponse(true),
		logger: logger.With(zap.String("via", "fetcher")),
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

type Fetcher struct {
	fs     *afero.BasePathFs
	cli    *resty.Client
	quiet  bool
	logger *zap.Logger
}

// Fetch stores the body of rawURL under a fresh name and returns its real
// path. The file extension of the URL is kept.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url failed: %w", err)
	}

	resp, err := f.cli.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.StatusCode() >= 400 {
		return "", fmt.Errorf("download failed: %s", resp.Status())
	}

	name := xid.New().String() + path.Ext(u.Path)
	fh, err := f.fs.Create(name)
	if err != nil {
		return "", fmt.Errorf("create tmp file failed: %w", err)
	}

	var w io.Writer = fh
	if !f.quiet {
		bar := progressbar.DefaultBytes(resp.RawResponse.ContentLength, fmt.Sprintf("Downloading %s", rawURL))
		w = io.MultiWriter(fh, bar)
	}

	_, err = io.Copy(w, resp.RawBody())
	err = errors.Join(err, fh.Close())
	if err != nil {
		_ = f.fs.Remove(name)
		return "", fmt.Errorf("save download failed: %w", err)
	}

	p, err := f.fs.RealPath(name)
	if err != nil {
		return "", err
	}

	f.logger.With(zap.String("url", rawURL), zap.String("file", p)).Debug("input downloaded")
	return p, nil
}
