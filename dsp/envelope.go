package dsp

import "math"

// EnvelopeMode selects how the follower rectifies its input.
type EnvelopeMode int

const (
	// PeakEnvelope tracks the absolute value of the signal
	PeakEnvelope EnvelopeMode = iota
	// RMSEnvelope tracks the square of the signal and returns its root
	RMSEnvelope
)

// EnvelopeFollower tracks signal level with independent attack and
// release time constants. The smoothing coefficient for a time t is
// alpha = 1 - exp(-1/(t*Fs)) so that the envelope reaches ~63% of a
// step within t.
type EnvelopeFollower struct {
	sampleRate   int
	attackAlpha  float64
	releaseAlpha float64
	mode         EnvelopeMode
	env          float64
}

// NewEnvelopeFollower creates a follower with attack/release in milliseconds.
func NewEnvelopeFollower(sampleRate int, attackMs, releaseMs float64, mode EnvelopeMode) *EnvelopeFollower {
	return &EnvelopeFollower{
		sampleRate:   sampleRate,
		attackAlpha:  envelopeAlpha(sampleRate, attackMs),
		releaseAlpha: envelopeAlpha(sampleRate, releaseMs),
		mode:         mode,
	}
}

func envelopeAlpha(sampleRate int, ms float64) float64 {
	samples := ms * float64(sampleRate) / 1000.0
	if samples < 1.0 {
		samples = 1.0
	}
	return 1.0 - math.Exp(-1.0/samples)
}

// Process advances the envelope by one sample and returns the current level.
func (ef *EnvelopeFollower) Process(input float64) float64 {
	var level float64
	switch ef.mode {
	case RMSEnvelope:
		level = input * input
	default:
		level = math.Abs(input)
	}

	if level > ef.env {
		ef.env += ef.attackAlpha * (level - ef.env)
	} else {
		ef.env += ef.releaseAlpha * (level - ef.env)
	}

	if ef.mode == RMSEnvelope {
		return math.Sqrt(ef.env)
	}
	return ef.env
}

// ProcessBuffer computes the envelope of an entire buffer.
func (ef *EnvelopeFollower) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = ef.Process(sample)
	}
	return output
}

// Reset clears the envelope state.
func (ef *EnvelopeFollower) Reset() {
	ef.env = 0.0
}

// SetTimes updates the attack and release times in milliseconds.
func (ef *EnvelopeFollower) SetTimes(attackMs, releaseMs float64) {
	ef.attackAlpha = envelopeAlpha(ef.sampleRate, attackMs)
	ef.releaseAlpha = envelopeAlpha(ef.sampleRate, releaseMs)
}
