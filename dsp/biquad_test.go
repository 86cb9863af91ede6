package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiquadLowpassResponse(t *testing.T) {
	bq, err := NewBiquad(44100, Lowpass, 1000, 0.707, 0)
	require.NoError(t, err)

	passMag, _ := bq.FrequencyResponse(100)
	stopMag, _ := bq.FrequencyResponse(10000)

	assert.InDelta(t, 1.0, passMag, 0.05, "passband should be near unity")
	assert.Less(t, stopMag, 0.1, "stopband should be well attenuated")
}

func TestBiquadPeakingGainAtCenter(t *testing.T) {
	bq, err := NewBiquad(44100, Peaking, 1000, 1.0, 6)
	require.NoError(t, err)

	mag, _ := bq.FrequencyResponse(1000)
	expected := math.Pow(10, 6.0/20.0)
	assert.InDelta(t, expected, mag, 0.05)
}

func TestBiquadHighpassBlocksDC(t *testing.T) {
	bq, err := NewBiquad(44100, Highpass, 100, 0.707, 0)
	require.NoError(t, err)

	dc := make([]float64, 44100)
	for i := range dc {
		dc[i] = 1.0
	}
	out := bq.ProcessBuffer(dc)

	// After settling, DC should be gone
	tail := out[len(out)/2:]
	maxTail := 0.0
	for _, v := range tail {
		if a := math.Abs(v); a > maxTail {
			maxTail = a
		}
	}
	assert.Less(t, maxTail, 0.01)
}

func TestBiquadInvalidParameters(t *testing.T) {
	_, err := NewBiquad(0, Lowpass, 1000, 0.707, 0)
	assert.Error(t, err)

	_, err = NewBiquad(44100, Lowpass, -5, 0.707, 0)
	assert.Error(t, err)

	_, err = NewBiquad(44100, Lowpass, 1000, 0, 0)
	assert.Error(t, err)
}

func TestBiquadReset(t *testing.T) {
	bq, err := NewBiquad(44100, Lowpass, 1000, 0.707, 0)
	require.NoError(t, err)

	bq.Process(1.0)
	bq.Process(0.5)
	bq.Reset()

	// A fresh filter and a reset filter must agree sample for sample
	fresh, err := NewBiquad(44100, Lowpass, 1000, 0.707, 0)
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		x := math.Sin(float64(i) * 0.3)
		assert.Equal(t, fresh.Process(x), bq.Process(x))
	}
}
