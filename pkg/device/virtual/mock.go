package virtual

import (
	"image"
	"sync"

	"go.uber.org/zap"

	"rectanim/pkg/bitmap"
	"rectanim/pkg/codec"
	"rectanim/pkg/proto"
)

// Mock is a player that draws into memory and logs what a device would do.
// Looping playback renders the stream once.
func Mock(bounds image.Rectangle, logger *zap.Logger) *Mocker {
	return &Mocker{bounds: bounds, l: logger.With(zap.String("via", "virtual"))}
}

var _ proto.Player = (*Mocker)(nil)

type Mocker struct {
	bounds image.Rectangle
	l      *zap.Logger

	mu      sync.Mutex
	on      bool
	light   uint8
	frames  []codec.Decoded
	screens []*bitmap.Screen
}

func (m *Mocker) Startup() error {
	m.mu.Lock()
	m.on = true
	m.mu.Unlock()

	m.l.Info("startup")
	return nil
}

func (m *Mocker) Shutdown() error {
	m.mu.Lock()
	m.on = false
	m.mu.Unlock()

	m.l.Info("shutdown")
	return nil
}

func (m *Mocker) SetLight(light uint8) error {
	m.mu.Lock()
	m.light = light
	m.mu.Unlock()

	m.l.With(zap.Uint8("light", light)).Info("set-light")
	return nil
}

func (m *Mocker) Upload(stream []byte) error {
	frames, err := codec.Decode(stream)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.frames = frames
	m.mu.Unlock()

	m.l.With(zap.Int("bytes", len(stream)), zap.Int("frames", len(frames))).Info("upload")
	return nil
}

func (m *Mocker) Play(delay uint16, loop bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.screens = codec.Replay(m.frames, m.bounds)
	for i, f := range m.frames {
		m.l.With(
			zap.Int("frame", i),
			zap.Int("rects", len(f.Rects)),
			zap.Uint8("screen", uint8(f.Screen)),
			zap.Uint8("color", uint8(f.Color)),
		).Debug("draw-frame")
	}

	m.l.With(zap.Uint16("delay", delay), zap.Bool("loop", loop), zap.Int("frames", len(m.frames))).Info("play")
	return nil
}

// Screens returns what the last Play drew, one screen per frame.
func (m *Mocker) Screens() []*bitmap.Screen {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.screens
}

func (m *Mocker) On() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on
}
