package uart

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rectanim/pkg/codec"
	"rectanim/pkg/proto"
)

const (
	Shutdown = 108
	Startup  = 109
	SetLight = 110

	// Upload and Play are local to rectanim players; stock screen firmware
	// does not know them.
	Upload = 200
	Play   = 201
)

// VarMax is the largest value a 10-bit command variable can carry.
const VarMax = 1<<10 - 1

// MaxStream is the largest upload, its length is split over two variables.
const MaxStream = 1<<20 - 1

type Option func(*Device)

func WithChunkSize(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.chunk = n
		}
	}
}

func WithProgress(show bool) Option {
	return func(d *Device) {
		d.progress = show
	}
}

// Open connects to the player on a serial port.
func Open(serial *proto.Serial, logger *zap.Logger) (proto.Player, error) {
	err := serial.Open(&proto.Options{
		DTR:         true,
		RTS:         true,
		BaudRate:    115200,
		ReadTimeout: time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	return New(serial, logger), nil
}

func New(port io.Writer, logger *zap.Logger, opts ...Option) *Device {
	d := &Device{
		port:   port,
		chunk:  4096,
		logger: logger.With(zap.String("via", "uart")),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type Device struct {
	port     io.Writer
	chunk    int
	progress bool
	logger   *zap.Logger
}

func (d *Device) Startup() error {
	return d.sendCMD(Startup)
}

func (d *Device) Shutdown() error {
	return d.sendCMD(Shutdown)
}

func (d *Device) SetLight(light uint8) error {
	return d.sendCMD(SetLight, int(light))
}

func (d *Device) Upload(stream []byte) error {
	if len(stream) > MaxStream {
		return errors.Errorf("stream too large: %d bytes", len(stream))
	}
	if _, err := codec.Decode(stream); err != nil {
		return errors.Wrap(err, "refusing malformed stream")
	}

	n := len(stream)
	if err := d.sendCMD(Upload, n>>10, n&VarMax); err != nil {
		return err
	}

	return d.sendChunks(stream)
}

func (d *Device) Play(delay uint16, loop bool) error {
	if int(delay) > VarMax {
		return errors.Errorf("delay %dms exceeds %dms", delay, VarMax)
	}

	var l int
	if loop {
		l = 1
	}
	return d.sendCMD(Play, int(delay), l)
}
