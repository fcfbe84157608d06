package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/inhies/go-bytesize"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
)

// WriteBinary stores the encoded stream at path. With compress the file is
// an lz4 frame, for flashing through loaders that inflate on the fly.
// It returns the number of bytes written to disk.
func WriteBinary(fs afero.Fs, path string, data []byte, compress bool) (int, error) {
	if !compress {
		if err := afero.WriteFile(fs, path, data, 0644); err != nil {
			return 0, fmt.Errorf("write binary failed: %w", err)
		}
		return len(data), nil
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	_, err := zw.Write(data)
	if err = errors.Join(err, zw.Close()); err != nil {
		return 0, fmt.Errorf("compress binary failed: %w", err)
	}

	if err := afero.WriteFile(fs, path, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("write binary failed: %w", err)
	}
	return buf.Len(), nil
}

// ReadBinary loads a stream written by WriteBinary, inflating lz4 frames.
func ReadBinary(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read binary failed: %w", err)
	}

	if !IsLZ4(data) {
		return data, nil
	}

	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decompress binary failed: %w", err)
	}
	return out, nil
}

var lz4Magic = []byte{0x04, 0x22, 0x4D, 0x18}

// IsLZ4 checks for the lz4 frame magic number. A raw stream could start with
// the same four bytes, so this is a guess.
func IsLZ4(data []byte) bool {
	return bytes.HasPrefix(data, lz4Magic)
}

func Size(n int) string {
	return bytesize.New(float64(n)).String()
}
