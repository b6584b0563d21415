package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"qosst-scope/internal/capture"
	"qosst-scope/internal/config"
	"qosst-scope/internal/failure"
)

func rampCapture(n int) capture.Capture {
	c := make(capture.Capture, n)
	for k := range c {
		c[k] = capture.Sample{I: int16(k), Q: int16(-k)}
	}
	return c
}

func TestDefaultLayout(t *testing.T) {
	l, err := NewLayout(config.DefaultConfig().Frame)
	require.NoError(t, err)

	assert.Equal(t, Region{0, 159560}, l.SyncRegion())
	assert.Equal(t, Region{159560, 160060}, l.DataRegion())
	assert.Equal(t, 3989*40+25*20, l.RequiredSamples())
	assert.Len(t, l.SymbolOffsets(), 25)
	assert.Equal(t, 480.0, l.SymbolOffsets()[24])
}

func TestNewLayoutRejectsInvalid(t *testing.T) {
	_, err := NewLayout(config.FrameConfig{ZCLength: 10, Decimation: 0, NumSymbols: 1, SymbolSpan: 1})
	assert.ErrorIs(t, err, failure.ErrConfig)
}

func TestSyncDecimationLength(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := config.FrameConfig{
			ZCLength:   rapid.IntRange(1, 200).Draw(rt, "zc"),
			Decimation: rapid.IntRange(1, 50).Draw(rt, "decimation"),
			NumSymbols: rapid.IntRange(1, 30).Draw(rt, "symbols"),
			SymbolSpan: rapid.IntRange(1, 30).Draw(rt, "span"),
		}
		l, err := NewLayout(f)
		require.NoError(rt, err)

		extra := rapid.IntRange(0, 100).Draw(rt, "extra")
		c := rampCapture(l.RequiredSamples() + extra)

		sync, err := l.Sync(c)
		require.NoError(rt, err)
		assert.Equal(rt, f.ZCLength, sync.Len())
		for k, s := range sync {
			assert.Equal(rt, c[k*f.Decimation], s)
		}

		data, err := l.Data(c)
		require.NoError(rt, err)
		assert.Equal(rt, f.NumSymbols*f.SymbolSpan, data.Len())
		assert.Equal(rt, c[l.SyncRegion().End], data[0])
	})
}

func TestShortCaptureIsBoundsError(t *testing.T) {
	l, err := NewLayout(config.FrameConfig{ZCLength: 5, Decimation: 4, NumSymbols: 3, SymbolSpan: 2})
	require.NoError(t, err)

	short := rampCapture(l.RequiredSamples() - 1)

	_, err = l.Sync(short)
	assert.ErrorIs(t, err, failure.ErrBounds)
	_, err = l.Data(short)
	assert.ErrorIs(t, err, failure.ErrBounds)

	assert.NoError(t, l.CheckBounds(l.RequiredSamples()))
}
