package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIRCrossoverBandsSumToOriginal(t *testing.T) {
	signal := make([]float64, 8192)
	for i := range signal {
		signal[i] = 0.3*math.Sin(2*math.Pi*80*float64(i)/44100) +
			0.3*math.Sin(2*math.Pi*1000*float64(i)/44100) +
			0.2*math.Sin(2*math.Pi*9000*float64(i)/44100)
	}

	fc, err := NewFIRCrossover(44100, 1025)
	require.NoError(t, err)

	bands, err := fc.Split(signal, []float64{200, 4000})
	require.NoError(t, err)
	require.Len(t, bands, 3)

	// Complementary subtraction makes the reconstruction exact
	sum := SumBands(bands)
	for i := range signal {
		assert.InDelta(t, signal[i], sum[i], 1e-9)
	}
}

func TestFIRCrossoverSeparatesBands(t *testing.T) {
	low := sineBuffer(60, 0.5, 8192, 44100)

	fc, err := NewFIRCrossover(44100, 1025)
	require.NoError(t, err)

	bands, err := fc.Split(low, []float64{500, 5000})
	require.NoError(t, err)

	// A 60 Hz tone should land almost entirely in the low band
	assert.Greater(t, rms(bands[0]), 10*rms(bands[2]))
}

func TestFIRCrossoverRejectsEvenTaps(t *testing.T) {
	_, err := NewFIRCrossover(44100, 1024)
	assert.Error(t, err)
}

func TestSplitBandsZeroPhaseSumsApproximately(t *testing.T) {
	signal := make([]float64, 8192)
	for i := range signal {
		signal[i] = 0.4*math.Sin(2*math.Pi*100*float64(i)/44100) +
			0.4*math.Sin(2*math.Pi*2000*float64(i)/44100)
	}

	bands, err := SplitBands(signal, 44100, []float64{500})
	require.NoError(t, err)
	require.Len(t, bands, 2)

	// IIR crossovers are not perfectly complementary; the sum should
	// still track the input closely
	sum := SumBands(bands)
	assert.InDelta(t, rms(signal), rms(sum), rms(signal)*0.2)
}
