package capture

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Writer writes captures in the raw interleaved int16 format
type Writer struct {
	level zstd.EncoderLevel
}

// NewWriter creates a capture writer
func NewWriter() *Writer {
	return &Writer{level: zstd.SpeedDefault}
}

// WriteFile creates or truncates filename and writes every sample to it.
// A .zst filename gets a zstd-compressed stream.
func (w *Writer) WriteFile(filename string, samples Capture) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := w.writeSamples(file, samples, IsCompressed(filename)); err != nil {
		file.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}

	return file.Close()
}

func (w *Writer) writeSamples(file *os.File, samples Capture, compress bool) error {
	buf := bufio.NewWriterSize(file, 1<<16)

	var out io.Writer = buf
	var enc *zstd.Encoder
	if compress {
		var err error
		enc, err = zstd.NewWriter(buf, zstd.WithEncoderLevel(w.level))
		if err != nil {
			return err
		}
		out = enc
	}

	if err := binary.Write(out, binary.LittleEndian, samples.Interleaved()); err != nil {
		return err
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return buf.Flush()
}
