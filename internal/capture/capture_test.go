package capture

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"qosst-scope/internal/failure"
)

func writeRaw(t *testing.T, values []int16) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, values))
	path := filepath.Join(t.TempDir(), "iq.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestReadFilePairsValues(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 64).Draw(rt, "pairs")
		raw := rapid.SliceOfN(rapid.Int16(), 2*n, 2*n).Draw(rt, "raw")

		var buf bytes.Buffer
		require.NoError(rt, binary.Write(&buf, binary.LittleEndian, raw))

		c, err := Read(&buf)
		require.NoError(rt, err)
		require.Equal(rt, n, c.Len())
		for k := 0; k < n; k++ {
			assert.Equal(rt, raw[2*k], c[k].I, "I of sample %d", k)
			assert.Equal(rt, raw[2*k+1], c[k].Q, "Q of sample %d", k)
		}
		if n > 0 {
			assert.Equal(rt, raw, c.Interleaved())
		}
	})
}

func TestReadFileIsIdempotent(t *testing.T) {
	path := writeRaw(t, []int16{1, -1, 32767, -32768, 0, 7})

	first, err := ReadFile(path)
	require.NoError(t, err)
	second, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, Capture{{1, -1}, {32767, -32768}, {0, 7}}, first)
}

func TestReadFileOddValueCount(t *testing.T) {
	path := writeRaw(t, []int16{1, 2, 3})

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrFormat)
}

func TestReadFileOddByteCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iq.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4, 5}, 0644))

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, failure.ErrFormat)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.bin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrMissingFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadRange(t *testing.T) {
	values := make([]int16, 0, 20)
	for k := int16(0); k < 10; k++ {
		values = append(values, k, -k)
	}
	path := writeRaw(t, values)

	total, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, 10, total)

	c, err := ReadRange(path, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, Capture{{3, -3}, {4, -4}, {5, -5}, {6, -6}}, c)

	_, err = ReadRange(path, 8, 5)
	assert.ErrorIs(t, err, failure.ErrBounds)
}

func TestEvery(t *testing.T) {
	c := make(Capture, 10)
	for k := range c {
		c[k] = Sample{I: int16(k)}
	}

	got := c.Every(4)
	assert.Equal(t, Capture{{I: 0}, {I: 4}, {I: 8}}, got)
	assert.Equal(t, c, c.Every(1))
	assert.Equal(t, []float64{0, 4, 8}, got.I())
	assert.Equal(t, []float64{0, 0, 0}, got.Q())
}

func TestWriterRoundTrip(t *testing.T) {
	want := Capture{{100, -100}, {-32768, 32767}, {0, 1}}
	path := filepath.Join(t.TempDir(), "out_iq.bin")

	require.NoError(t, NewWriter().WriteFile(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)*BytesPerSample), info.Size())

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCompressedRoundTrip(t *testing.T) {
	want := make(Capture, 5000)
	for k := range want {
		want[k] = Sample{I: int16(k), Q: int16(-k)}
	}
	path := filepath.Join(t.TempDir(), "out_iq.bin.zst")

	require.NoError(t, NewWriter().WriteFile(path, want))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	n, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, n)

	window, err := ReadRange(path, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, Capture{{10, -10}, {11, -11}, {12, -12}}, window)

	_, err = ReadRange(path, 4999, 2)
	assert.ErrorIs(t, err, failure.ErrBounds)
}

func TestCompressedCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out_iq.bin.zst")
	require.NoError(t, os.WriteFile(path, []byte("not a zstd stream"), 0644))

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, failure.ErrFormat)
}
