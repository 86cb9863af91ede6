package genre

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// kickPattern lays decaying low-frequency bursts on a beat grid.
func kickPattern(bpm float64, seconds, sampleRate int) []float64 {
	signal := make([]float64, seconds*sampleRate)
	beatLen := 60.0 / bpm * float64(sampleRate)

	for beat := 0; ; beat++ {
		start := int(float64(beat) * beatLen)
		if start >= len(signal) {
			break
		}
		for i := 0; i < 2000 && start+i < len(signal); i++ {
			env := math.Exp(-float64(i) / 400.0)
			signal[start+i] += 0.9 * env * math.Sin(2*math.Pi*60*float64(i)/float64(sampleRate))
		}
	}
	return signal
}

func TestEstimateFindsBeatGrid(t *testing.T) {
	te := NewTempoEstimator(44100)

	tempo := te.Estimate(kickPattern(128, 10, 44100))
	assert.InDelta(t, 128.0, tempo, 2.0)
}

func TestEstimateSlowerTempo(t *testing.T) {
	te := NewTempoEstimator(44100)

	tempo := te.Estimate(kickPattern(90, 10, 44100))
	assert.InDelta(t, 90.0, tempo, 3.0)
}

func TestEstimateFlatSignalReturnsDefault(t *testing.T) {
	te := NewTempoEstimator(44100)

	assert.Equal(t, 120.0, te.Estimate(make([]float64, 44100)))
	assert.Equal(t, 120.0, te.Estimate(make([]float64, 100)))
}

func TestFourOnFloorScoreRegularKicks(t *testing.T) {
	te := NewTempoEstimator(44100)
	signal := kickPattern(128, 10, 44100)

	score := te.FourOnFloorScore(signal, 128)
	assert.Greater(t, score, 0.6)
}

func TestFourOnFloorScoreOffGridMaterial(t *testing.T) {
	te := NewTempoEstimator(44100)

	// Kicks landing mid-beat should not read as four-on-floor
	signal := make([]float64, 441000)
	beatLen := 60.0 / 128.0 * 44100
	for beat := 0; ; beat++ {
		start := int((float64(beat) + 0.5) * beatLen)
		if start >= len(signal) {
			break
		}
		for i := 0; i < 2000 && start+i < len(signal); i++ {
			env := math.Exp(-float64(i) / 400.0)
			signal[start+i] += 0.9 * env * math.Sin(2*math.Pi*60*float64(i)/44100)
		}
	}

	score := te.FourOnFloorScore(signal, 128)
	assert.Less(t, score, 0.3)
}

func TestFourOnFloorScoreOutsideDanceRange(t *testing.T) {
	te := NewTempoEstimator(44100)
	signal := kickPattern(80, 10, 44100)

	assert.Equal(t, 0.0, te.FourOnFloorScore(signal, 80))
}
