package master

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyanBlaney/sonido-mix/audio"
)

func hotStereoBuffer(amplitude float64, seconds float64, sampleRate int) *audio.Buffer {
	n := int(seconds * float64(sampleRate))
	left := make([]float64, n)
	right := make([]float64, n)
	for i := 0; i < n; i++ {
		v := amplitude * math.Sin(2*math.Pi*220*float64(i)/float64(sampleRate))
		left[i] = v
		right[i] = v * 0.9
	}
	buf, _ := audio.NewStereoBuffer(left, right, sampleRate)
	return buf
}

func TestLimiterHoldsCeiling(t *testing.T) {
	l := NewLimiter(44100)
	buf := hotStereoBuffer(1.4, 2, 44100)

	l.Process(buf, -1, -4, 100)

	ceiling := audio.DBToLinear(-1)
	assert.LessOrEqual(t, buf.Peak(), ceiling+1e-9)
}

func TestLimiterLeavesQuietSignal(t *testing.T) {
	l := NewLimiter(44100)
	buf := hotStereoBuffer(0.05, 1, 44100)
	before := buf.RMSDB()

	l.Process(buf, -1, -4, 100)

	assert.InDelta(t, before, buf.RMSDB(), 0.5)
}

func TestMultiStageHoldsCeiling(t *testing.T) {
	l := NewLimiter(44100)
	buf := hotStereoBuffer(1.8, 2, 44100)

	l.MultiStage(buf, -1, 150, 3)

	ceiling := audio.DBToLinear(-1)
	assert.LessOrEqual(t, buf.Peak(), ceiling+1e-9)
	assert.False(t, buf.IsSilent(-40))
}

func TestMultiStageSingleStage(t *testing.T) {
	l := NewLimiter(44100)
	buf := hotStereoBuffer(1.4, 1, 44100)

	l.MultiStage(buf, -0.5, 150, 1)

	ceiling := audio.DBToLinear(-0.5)
	assert.LessOrEqual(t, buf.Peak(), ceiling+1e-9)
}

func TestTransparentHoldsCeiling(t *testing.T) {
	l := NewLimiter(44100)
	buf := hotStereoBuffer(1.4, 2, 44100)

	l.Transparent(buf, -1)

	ceiling := audio.DBToLinear(-1)
	assert.LessOrEqual(t, buf.Peak(), ceiling+1e-9)
	assert.False(t, buf.IsSilent(-40))
}

func TestTransparentPreservesQuietMaterial(t *testing.T) {
	l := NewLimiter(44100)
	buf := hotStereoBuffer(0.1, 1, 44100)
	before := buf.Clone()

	l.Transparent(buf, -1)

	// Below the ceiling the signal passes essentially untouched
	assert.InDelta(t, before.RMSDB(), buf.RMSDB(), 0.3)
}
