package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, amplitude float64, n, sampleRate int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestCentroidOrdersByFrequency(t *testing.T) {
	fa := NewFeatureAnalyzer()

	lowFeat, err := fa.Compute(sine(100, 0.5, 44100, 44100), 44100)
	require.NoError(t, err)
	highFeat, err := fa.Compute(sine(8000, 0.5, 44100, 44100), 44100)
	require.NoError(t, err)

	assert.Greater(t, highFeat.Centroid, lowFeat.Centroid)
	assert.InDelta(t, 100, lowFeat.Centroid, 80)
	assert.InDelta(t, 8000, highFeat.Centroid, 1000)
}

func TestBandEnergyRatiosForBandLimitedSignals(t *testing.T) {
	fa := NewFeatureAnalyzer()

	low, err := fa.Compute(sine(60, 0.5, 44100, 44100), 44100)
	require.NoError(t, err)
	assert.Greater(t, low.LowEnergyRatio, 0.8)

	mid, err := fa.Compute(sine(1000, 0.5, 44100, 44100), 44100)
	require.NoError(t, err)
	assert.Greater(t, mid.MidEnergyRatio, 0.8)

	high, err := fa.Compute(sine(8000, 0.5, 44100, 44100), 44100)
	require.NoError(t, err)
	assert.Greater(t, high.HighEnergyRatio, 0.8)
}

func TestZeroCrossingRateTracksFrequency(t *testing.T) {
	fa := NewFeatureAnalyzer()

	low, err := fa.Compute(sine(100, 0.5, 44100, 44100), 44100)
	require.NoError(t, err)
	high, err := fa.Compute(sine(5000, 0.5, 44100, 44100), 44100)
	require.NoError(t, err)

	assert.Greater(t, high.ZeroCrossingRate, low.ZeroCrossingRate)
}

func TestHarmonicRatioHigherForToneThanNoise(t *testing.T) {
	fa := NewFeatureAnalyzer()

	tone, err := fa.Compute(sine(220, 0.5, 44100, 44100), 44100)
	require.NoError(t, err)

	// Deterministic wideband noise stand-in
	noise := make([]float64, 44100)
	seed := uint64(1)
	for i := range noise {
		seed = seed*6364136223846793005 + 1442695040888963407
		noise[i] = (float64(seed>>11)/float64(1<<53) - 0.5) * 0.8
	}
	noisy, err := fa.Compute(noise, 44100)
	require.NoError(t, err)

	assert.Greater(t, tone.HarmonicRatio, noisy.HarmonicRatio)
}

func TestComputeRejectsShortSignal(t *testing.T) {
	fa := NewFeatureAnalyzer()
	_, err := fa.Compute(make([]float64, 100), 44100)
	assert.Error(t, err)
}

func TestOnsetEnvelopePeaksOnBursts(t *testing.T) {
	// Four short decaying bursts over two seconds
	signal := make([]float64, 88200)
	for b := 0; b < 4; b++ {
		start := b * 22050
		for i := 0; i < 4410; i++ {
			env := math.Exp(-float64(i) / 800.0)
			signal[start+i] = 0.9 * env * math.Sin(2*math.Pi*200*float64(i)/44100)
		}
	}

	s := NewSTFT()
	result, err := s.Compute(signal, 1024, 512, 44100, NewHannWindow(1024))
	require.NoError(t, err)

	onset := result.OnsetEnvelope()
	require.NotEmpty(t, onset)

	peak := 0.0
	for _, v := range onset {
		if v > peak {
			peak = v
		}
	}
	assert.Greater(t, peak, 0.0)
}
