package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stereoTestSignal(n int) (left, right []float64) {
	left = make([]float64, n)
	right = make([]float64, n)
	for i := 0; i < n; i++ {
		left[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
		right[i] = 0.4 * math.Sin(2*math.Pi*660*float64(i)/44100)
	}
	return left, right
}

func TestWidthUnityIsLossless(t *testing.T) {
	left, right := stereoTestSignal(4096)

	outL, outR, err := ApplyWidth(left, right, 100)
	require.NoError(t, err)

	for i := range left {
		assert.InDelta(t, left[i], outL[i], 1e-9)
		assert.InDelta(t, right[i], outR[i], 1e-9)
	}
}

func TestWidthZeroCollapsesToMono(t *testing.T) {
	left, right := stereoTestSignal(4096)

	outL, outR, err := ApplyWidth(left, right, 0)
	require.NoError(t, err)

	for i := range outL {
		assert.InDelta(t, outL[i], outR[i], 1e-12)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	left, right := stereoTestSignal(1024)

	mid, side, err := EncodeMS(left, right)
	require.NoError(t, err)

	outL, outR, err := DecodeMS(mid, side)
	require.NoError(t, err)

	for i := range left {
		assert.InDelta(t, left[i], outL[i], 1e-12)
		assert.InDelta(t, right[i], outR[i], 1e-12)
	}
}

func TestEncodeMSLengthMismatch(t *testing.T) {
	_, _, err := EncodeMS(make([]float64, 10), make([]float64, 12))
	assert.Error(t, err)
}

func TestMonoCompatibilityIdenticalChannels(t *testing.T) {
	left, _ := stereoTestSignal(8192)

	mc, err := CheckMonoCompatibility(left, left)
	require.NoError(t, err)

	assert.True(t, mc.Compatible)
	assert.InDelta(t, 1.0, mc.Correlation, 1e-9)
	assert.InDelta(t, 0.0, mc.CancellationDB, 0.1)
}

func TestMonoCompatibilityPhaseInverted(t *testing.T) {
	left, _ := stereoTestSignal(8192)
	right := make([]float64, len(left))
	for i, v := range left {
		right[i] = -v
	}

	mc, err := CheckMonoCompatibility(left, right)
	require.NoError(t, err)

	assert.False(t, mc.Compatible)
	assert.Less(t, mc.Correlation, -0.9)
}
