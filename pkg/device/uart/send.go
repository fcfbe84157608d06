package uart

import (
	"fmt"
	"io"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Header packs four 10-bit variables and a command code:
//
//	11111111 11222222 22223333 33333344 44444444 cccccccc
func Header(code uint8, var1, var2, var3, var4 int) [6]byte {
	var bs [6]byte

	bs[0] = (byte)(var1 >> 2)
	bs[1] = (byte)(((var1 & 3) << 6) + (var2 >> 4))
	bs[2] = (byte)(((var2 & 0xF) << 4) + (var3 >> 6))
	bs[3] = (byte)(((var3 & 0x3F) << 2) + (var4 >> 8))
	bs[4] = (byte)(var4 & 0xFF)
	bs[5] = code

	return bs
}

func (d *Device) sendCMD(code uint8, vars ...int) error {
	if len(vars) > 4 {
		return errors.New("too many vars")
	}

	var vars2 [4]int
	for i, v := range vars {
		if v < 0 || v > VarMax {
			return errors.Errorf("var %d out of range: %d", i, v)
		}
		vars2[i] = v
	}

	bs := Header(code, vars2[0], vars2[1], vars2[2], vars2[3])
	return d.sendBytes(bs[:])
}

func (d *Device) sendChunks(data []byte) error {
	var w io.Writer = d.port
	if d.progress {
		bar := progressbar.DefaultBytes(int64(len(data)), "Uploading")
		w = io.MultiWriter(d.port, bar)
	}

	start := time.Now()
	for _, chunk := range lo.Chunk(data, d.chunk) {
		if _, err := w.Write(chunk); err != nil {
			return errors.Wrap(err, "upload failed")
		}
	}

	d.logger.With(
		zap.String("size", bytesize.New(float64(len(data))).String()),
		zap.String("cost", time.Since(start).String()),
	).Debug("uploaded")

	return nil
}

func (d *Device) sendBytes(bytes []byte) error {
	var sent int
	var cost time.Duration

	start := time.Now()
	if n, err := d.port.Write(bytes); err != nil {
		return err
	} else {
		sent = n
		cost = time.Since(start)
	}

	ext := ""
	if len(bytes) <= 16 {
		ext = fmt.Sprintf("%x", bytes)
	}

	d.logger.With(
		zap.Int("sent", sent),
		zap.String("cost", cost.String()),
		zap.String("data", ext),
	).Debug("transfer")

	return nil
}
