package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// DeEsser tames sibilance by compressing an isolated high band and
// recombining it with the untouched remainder of the signal.
type DeEsser struct {
	sampleRate  int
	ThresholdDB float64
	Ratio       float64
	LowEdge     float64
	HighEdge    float64
	AttackMs    float64
	ReleaseMs   float64
}

// NewDeEsser creates a de-esser centered on the usual sibilance range.
func NewDeEsser(sampleRate int) *DeEsser {
	return &DeEsser{
		sampleRate:  sampleRate,
		ThresholdDB: -20.0,
		Ratio:       4.0,
		LowEdge:     4500.0,
		HighEdge:    9000.0,
		AttackMs:    1.0,
		ReleaseMs:   50.0,
	}
}

// ProcessBuffer de-esses a mono signal: extract the sibilant band,
// follow its envelope, compute gain reduction above threshold in the
// dB domain, smooth, and subtract the reduced portion of the band.
func (de *DeEsser) ProcessBuffer(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	bp, err := NewButterworthBandpass(de.sampleRate, de.LowEdge, de.HighEdge)
	if err != nil {
		return nil, fmt.Errorf("de-esser band filter: %w", err)
	}
	band := bp.ProcessBuffer(input)

	follower := NewEnvelopeFollower(de.sampleRate, de.AttackMs, de.ReleaseMs, PeakEnvelope)
	envelope := follower.ProcessBuffer(band)

	gain := make([]float64, len(input))
	for i, env := range envelope {
		envDB := 20.0 * math.Log10(math.Max(env, 1e-10))
		if envDB > de.ThresholdDB {
			reductionDB := (envDB - de.ThresholdDB) * (1.0 - 1.0/de.Ratio)
			gain[i] = math.Pow(10.0, -reductionDB/20.0)
		} else {
			gain[i] = 1.0
		}
	}

	smoothGain(gain, de.sampleRate)

	output := make([]float64, len(input))
	for i := range input {
		output[i] = input[i] - band[i] + band[i]*gain[i]
	}
	return output, nil
}

// smoothGain runs a short moving average over the gain curve to avoid
// zipper noise. 1 ms window.
func smoothGain(gain []float64, sampleRate int) {
	window := sampleRate / 1000
	if window < 2 {
		return
	}

	smoothed := make([]float64, len(gain))
	acc := 0.0
	for i := range gain {
		acc += gain[i]
		if i >= window {
			acc -= gain[i-window]
			smoothed[i] = acc / float64(window)
		} else {
			smoothed[i] = acc / float64(i+1)
		}
	}
	copy(gain, smoothed)
}

// DetectSibilance finds the strongest spectral peak in the 4-10 kHz
// range and derives a threshold from the band level. Returns the peak
// frequency and a threshold clamped to [-30, -10] dB.
func DetectSibilance(input []float64, sampleRate int) (centerFreq, thresholdDB float64) {
	centerFreq = 6000.0
	thresholdDB = -20.0
	if len(input) == 0 {
		return centerFreq, thresholdDB
	}

	spectrum := fft.FFTReal(input)
	binHz := float64(sampleRate) / float64(len(input))

	lowBin := int(4000.0 / binHz)
	highBin := int(10000.0 / binHz)
	if highBin > len(spectrum)/2 {
		highBin = len(spectrum) / 2
	}
	if lowBin >= highBin {
		return centerFreq, thresholdDB
	}

	maxMag := 0.0
	maxBin := lowBin
	bandPower := 0.0
	for i := lowBin; i < highBin; i++ {
		mag := cmplx.Abs(spectrum[i])
		bandPower += mag * mag
		if mag > maxMag {
			maxMag = mag
			maxBin = i
		}
	}

	centerFreq = float64(maxBin) * binHz

	// Parseval-scaled band RMS back in the time domain
	bandRMS := math.Sqrt(2.0*bandPower) / float64(len(input))
	bandDB := 20.0 * math.Log10(math.Max(bandRMS, 1e-10))
	thresholdDB = math.Max(-30.0, math.Min(-10.0, bandDB-6.0))

	return centerFreq, thresholdDB
}
