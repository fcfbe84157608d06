package store

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"rectanim/pkg/colors"
	"rectanim/pkg/frame"
)

// Params are the classification settings that change a frame's result.
type Params struct {
	Primary   colors.RGB
	Secondary colors.RGB
	Metric    colors.Metric
}

func (p Params) String() string {
	return fmt.Sprintf("%s/%s/%s", p.Primary.Hex(), p.Secondary.Hex(), p.Metric)
}

// Key identifies a rendered frame by its pixels, the previous frame's pixels
// when diffing, and the classification parameters.
func Key(img, prev image.Image, p Params) string {
	h := sha1.New()
	_, _ = h.Write([]byte(p.String()))
	writePixels(h, img)
	if prev != nil {
		_, _ = h.Write([]byte{'|'})
		writePixels(h, prev)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writePixels(h interface{ Write([]byte) (int, error) }, img image.Image) {
	b := img.Bounds()
	_, _ = fmt.Fprintf(h, "%dx%d;", b.Dx(), b.Dy())

	row := make([]byte, 0, b.Dx()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row = row[:0]
		for x := b.Min.X; x < b.Max.X; x++ {
			c := colors.FromColor(img.At(x, y))
			row = append(row, c.R, c.G, c.B)
		}
		_, _ = h.Write(row)
	}
}

// Open creates or reuses the cache database at path. ":memory:" gives a
// private in-process cache.
func Open(path string, logger *zap.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache failed: %w", err)
	}
	// sqlite allows a single writer, and :memory: is per connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS rendered (
			key TEXT PRIMARY KEY,
			primary_color TEXT NOT NULL,
			secondary_color TEXT NOT NULL,
			swapped INTEGER NOT NULL,
			rects TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema failed: %w", err)
	}

	return &Cache{
		db:     db,
		logger: logger.With(zap.String("via", "cache"), zap.String("path", path)),
	}, nil
}

type Cache struct {
	db     *sql.DB
	logger *zap.Logger
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Load returns the stored frame for key. Seq and Label are left zero, they
// belong to the input and not to the cached pixels.
func (c *Cache) Load(ctx context.Context, key string) (bool, frame.Rendered, error) {
	var (
		f                  frame.Rendered
		primary, secondary string
		swapped            bool
		rects              string
	)

	err := c.db.QueryRowContext(ctx,
		"SELECT primary_color, secondary_color, swapped, rects FROM rendered WHERE key = ?", key,
	).Scan(&primary, &secondary, &swapped, &rects)
	if errors.Is(err, sql.ErrNoRows) {
		return false, f, nil
	}
	if err != nil {
		return false, f, fmt.Errorf("load cached frame failed: %w", err)
	}

	if f.Primary, err = colors.ParseHex(primary); err != nil {
		return false, f, err
	}
	if f.Secondary, err = colors.ParseHex(secondary); err != nil {
		return false, f, err
	}
	if err := json.Unmarshal([]byte(rects), &f.Rects); err != nil {
		return false, f, fmt.Errorf("decode cached rects failed: %w", err)
	}
	f.Swapped = swapped

	c.logger.With(zap.String("key", key), zap.Int("rects", len(f.Rects))).Debug("cache hit")
	return true, f, nil
}

func (c *Cache) Save(ctx context.Context, key string, f frame.Rendered) error {
	rects, err := json.Marshal(f.Rects)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO rendered (key, primary_color, secondary_color, swapped, rects) VALUES (?, ?, ?, ?, ?)`,
		key, f.Primary.Hex(), f.Secondary.Hex(), f.Swapped, string(rects),
	)
	if err != nil {
		return fmt.Errorf("save cached frame failed: %w", err)
	}
	return nil
}

// Len reports how many frames are stored.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rendered").Scan(&n)
	return n, err
}
