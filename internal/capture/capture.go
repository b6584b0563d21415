// Package capture reads and writes raw interleaved I/Q captures.
//
// A capture file is a flat stream of little-endian signed 16-bit integers
// laid out as I, Q, I, Q, ... with no header. Files ending in .zst hold the
// same stream zstd-compressed.
package capture

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"qosst-scope/internal/failure"
)

// BytesPerSample is the on-disk size of one (I, Q) pair
const BytesPerSample = 4

// CompressedSuffix marks zstd-compressed captures
const CompressedSuffix = ".zst"

// IsCompressed reports whether path names a zstd-compressed capture
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedSuffix)
}

// Sample is one baseband sample
type Sample struct {
	I int16
	Q int16
}

// Capture is an ordered sequence of samples in file order
type Capture []Sample

// Len returns the number of samples
func (c Capture) Len() int {
	return len(c)
}

// I returns the in-phase component of every sample as float64
func (c Capture) I() []float64 {
	out := make([]float64, len(c))
	for k, s := range c {
		out[k] = float64(s.I)
	}
	return out
}

// Q returns the quadrature component of every sample as float64
func (c Capture) Q() []float64 {
	out := make([]float64, len(c))
	for k, s := range c {
		out[k] = float64(s.Q)
	}
	return out
}

// Complex converts the capture to complex128 values
func (c Capture) Complex() []complex128 {
	out := make([]complex128, len(c))
	for k, s := range c {
		out[k] = complex(float64(s.I), float64(s.Q))
	}
	return out
}

// Every returns every step-th sample starting at the first one
func (c Capture) Every(step int) Capture {
	if step <= 1 {
		return c
	}
	out := make(Capture, 0, (len(c)+step-1)/step)
	for k := 0; k < len(c); k += step {
		out = append(out, c[k])
	}
	return out
}

// FromInterleaved groups a flat I, Q, I, Q, ... slice into samples.
// The slice length must be even.
func FromInterleaved(values []int16) (Capture, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of 16-bit values (%d), expected interleaved I/Q pairs",
			failure.ErrFormat, len(values))
	}
	c := make(Capture, len(values)/2)
	for k := range c {
		c[k] = Sample{I: values[2*k], Q: values[2*k+1]}
	}
	return c, nil
}

// Interleaved flattens the capture back to I, Q, I, Q, ...
func (c Capture) Interleaved() []int16 {
	out := make([]int16, 2*len(c))
	for k, s := range c {
		out[2*k] = s.I
		out[2*k+1] = s.Q
	}
	return out
}

// Read decodes a whole capture from r
func Read(r io.Reader) (Capture, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	return decode(raw)
}

// ReadFile reads the complete capture file at path
func ReadFile(path string) (Capture, error) {
	raw, err := readRaw(path)
	if err != nil {
		return nil, err
	}
	c, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func readRaw(path string) ([]byte, error) {
	if !IsCompressed(path) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", failure.ErrMissingFile, path, err)
		}
		return raw, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", failure.ErrMissingFile, path, err)
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, failure.ErrFormat, err)
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: corrupt zstd stream: %w", path, failure.ErrFormat, err)
	}
	return raw, nil
}

// Stat returns the number of complete samples in the capture file at path.
// Plain captures are sized without reading their contents, compressed ones
// are decompressed once.
func Stat(path string) (int, error) {
	var size int64
	if IsCompressed(path) {
		raw, err := readRaw(path)
		if err != nil {
			return 0, err
		}
		size = int64(len(raw))
	} else {
		info, err := os.Stat(path)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", failure.ErrMissingFile, path, err)
		}
		size = info.Size()
	}

	if size%BytesPerSample != 0 {
		return 0, fmt.Errorf("%s: %w: size %d bytes is not a whole number of I/Q pairs",
			path, failure.ErrFormat, size)
	}
	return int(size / BytesPerSample), nil
}

// ReadRange reads count samples starting at sample offset
func ReadRange(path string, offset, count int) (Capture, error) {
	if IsCompressed(path) {
		c, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		if offset < 0 || count < 0 || offset+count > c.Len() {
			return nil, fmt.Errorf("%s: %w: range [%d, %d) exceeds %d samples",
				path, failure.ErrBounds, offset, offset+count, c.Len())
		}
		return c[offset : offset+count], nil
	}

	total, err := Stat(path)
	if err != nil {
		return nil, err
	}
	if offset < 0 || count < 0 || offset+count > total {
		return nil, fmt.Errorf("%s: %w: range [%d, %d) exceeds %d samples",
			path, failure.ErrBounds, offset, offset+count, total)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", failure.ErrMissingFile, path, err)
	}
	defer file.Close()

	if _, err := file.Seek(int64(offset)*BytesPerSample, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to sample %d: %w", offset, err)
	}

	values := make([]int16, 2*count)
	if err := binary.Read(bufio.NewReader(file), binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	return FromInterleaved(values)
}

func decode(raw []byte) (Capture, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of 16-bit values",
			failure.ErrFormat, len(raw))
	}
	values := make([]int16, len(raw)/2)
	for k := range values {
		values[k] = int16(binary.LittleEndian.Uint16(raw[2*k:]))
	}
	return FromInterleaved(values)
}
