package genre

import (
	"math"

	"github.com/RyanBlaney/sonido-mix/dsp"
)

// Tempo search range in BPM. Doubling/halving ambiguity outside this
// range folds back in.
const (
	minBPM     = 60.0
	maxBPM     = 200.0
	defaultBPM = 120.0
)

// TempoEstimator detects tempo from the autocorrelation of the signal's
// energy envelope.
type TempoEstimator struct {
	sampleRate int
	windowSize int
	hopSize    int
}

// NewTempoEstimator creates an estimator with the standard envelope
// resolution (1024-sample window, 512-sample hop).
func NewTempoEstimator(sampleRate int) *TempoEstimator {
	return &TempoEstimator{
		sampleRate: sampleRate,
		windowSize: 1024,
		hopSize:    512,
	}
}

// Estimate returns the tempo in BPM, clipped to [60, 200]. Flat or too
// short material returns the 120 BPM default.
func (te *TempoEstimator) Estimate(signal []float64) float64 {
	envelope := te.energyEnvelope(signal)
	if len(envelope) < 4 {
		return defaultBPM
	}

	// Remove DC so the autocorrelation reflects rhythm, not level
	mean := 0.0
	for _, v := range envelope {
		mean += v
	}
	mean /= float64(len(envelope))

	variance := 0.0
	for i := range envelope {
		envelope[i] -= mean
		variance += envelope[i] * envelope[i]
	}
	if variance < 1e-12 {
		return defaultBPM
	}

	framesPerSecond := float64(te.sampleRate) / float64(te.hopSize)
	minLag := int(framesPerSecond * 60.0 / maxBPM)
	maxLag := int(framesPerSecond * 60.0 / minBPM)
	if maxLag >= len(envelope) {
		maxLag = len(envelope) - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return defaultBPM
	}

	// Autocorrelation over the candidate lag range
	autocorr := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i+lag < len(envelope); i++ {
			sum += envelope[i] * envelope[i+lag]
		}
		autocorr[lag] = sum
	}

	// Pick the strongest local maximum
	bestLag := 0
	bestValue := 0.0
	for lag := minLag + 1; lag < maxLag; lag++ {
		if autocorr[lag] > autocorr[lag-1] && autocorr[lag] >= autocorr[lag+1] && autocorr[lag] > bestValue {
			bestValue = autocorr[lag]
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return defaultBPM
	}

	bpm := 60.0 * framesPerSecond / float64(bestLag)
	return math.Max(minBPM, math.Min(maxBPM, bpm))
}

// energyEnvelope computes frame RMS energy.
func (te *TempoEstimator) energyEnvelope(signal []float64) []float64 {
	if len(signal) < te.windowSize {
		return nil
	}

	numFrames := (len(signal)-te.windowSize)/te.hopSize + 1
	envelope := make([]float64, numFrames)
	for f := 0; f < numFrames; f++ {
		start := f * te.hopSize
		sum := 0.0
		for i := start; i < start+te.windowSize; i++ {
			sum += signal[i] * signal[i]
		}
		envelope[f] = math.Sqrt(sum / float64(te.windowSize))
	}
	return envelope
}

// FourOnFloorScore measures how regularly the low end hits on the beat
// grid: the fraction of beat-length segments whose energy peak falls in
// the first 20% of the segment. Only meaningful for tempos in the
// dance range; other tempos return 0.
func (te *TempoEstimator) FourOnFloorScore(signal []float64, bpm float64) float64 {
	if bpm < 100 || bpm > 150 || len(signal) == 0 {
		return 0
	}

	// First 30 seconds, low end only
	maxSamples := 30 * te.sampleRate
	if len(signal) < maxSamples {
		maxSamples = len(signal)
	}

	lp, err := dsp.NewButterworthLowpass(te.sampleRate, 100.0)
	if err != nil {
		return 0
	}
	lows := lp.ProcessBuffer(signal[:maxSamples])

	beatLen := int(60.0 / bpm * float64(te.sampleRate))
	if beatLen < 1 {
		return 0
	}

	numBeats := len(lows) / beatLen
	if numBeats < 4 {
		return 0
	}

	onBeat := 0
	for b := 0; b < numBeats; b++ {
		segment := lows[b*beatLen : (b+1)*beatLen]

		peakIdx := 0
		peakVal := 0.0
		for i, v := range segment {
			if a := math.Abs(v); a > peakVal {
				peakVal = a
				peakIdx = i
			}
		}

		if peakVal > 1e-6 && peakIdx < beatLen/5 {
			onBeat++
		}
	}

	return float64(onBeat) / float64(numBeats)
}
