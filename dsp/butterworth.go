package dsp

import "fmt"

// Butterworth Q values for a 4th-order filter realized as two cascaded
// biquad sections.
var butterworth4Q = [2]float64{0.54119610, 1.30656296}

// ButterworthFilter is a 4th-order Butterworth filter built from
// cascaded biquad sections. Maximally flat passband.
type ButterworthFilter struct {
	sections []*Biquad
}

// NewButterworthLowpass creates a 4th-order Butterworth lowpass.
func NewButterworthLowpass(sampleRate int, cutoff float64) (*ButterworthFilter, error) {
	return newButterworthCascade(sampleRate, Lowpass, cutoff)
}

// NewButterworthHighpass creates a 4th-order Butterworth highpass.
func NewButterworthHighpass(sampleRate int, cutoff float64) (*ButterworthFilter, error) {
	return newButterworthCascade(sampleRate, Highpass, cutoff)
}

// NewButterworthBandpass creates a band-pass as a highpass/lowpass cascade.
func NewButterworthBandpass(sampleRate int, lowFreq, highFreq float64) (*ButterworthFilter, error) {
	if lowFreq >= highFreq {
		return nil, fmt.Errorf("band edges out of order: %f >= %f", lowFreq, highFreq)
	}

	hp, err := newButterworthCascade(sampleRate, Highpass, lowFreq)
	if err != nil {
		return nil, err
	}
	lp, err := newButterworthCascade(sampleRate, Lowpass, highFreq)
	if err != nil {
		return nil, err
	}

	sections := append(hp.sections, lp.sections...)
	return &ButterworthFilter{sections: sections}, nil
}

func newButterworthCascade(sampleRate int, filterType BiquadType, cutoff float64) (*ButterworthFilter, error) {
	nyquist := float64(sampleRate) / 2.0
	if cutoff >= nyquist {
		cutoff = nyquist * 0.99
	}

	sections := make([]*Biquad, 0, len(butterworth4Q))
	for _, q := range butterworth4Q {
		bq, err := NewBiquad(sampleRate, filterType, cutoff, q, 0)
		if err != nil {
			return nil, fmt.Errorf("butterworth section: %w", err)
		}
		sections = append(sections, bq)
	}

	return &ButterworthFilter{sections: sections}, nil
}

// Process applies all cascade sections to a single sample.
func (bw *ButterworthFilter) Process(input float64) float64 {
	out := input
	for _, s := range bw.sections {
		out = s.Process(out)
	}
	return out
}

// ProcessBuffer applies the filter to an entire buffer of samples.
func (bw *ButterworthFilter) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = bw.Process(sample)
	}
	return output
}

// ProcessZeroPhase filters forward then backward, cancelling the phase
// shift at the cost of doubling the effective filter order. Used for
// crossover band splits where phase alignment between bands matters.
func (bw *ButterworthFilter) ProcessZeroPhase(input []float64) []float64 {
	forward := bw.ProcessBuffer(input)
	bw.Reset()

	// Reverse, filter again, reverse back
	n := len(forward)
	reversed := make([]float64, n)
	for i, v := range forward {
		reversed[n-1-i] = v
	}

	backward := bw.ProcessBuffer(reversed)
	bw.Reset()

	output := make([]float64, n)
	for i, v := range backward {
		output[n-1-i] = v
	}
	return output
}

// Reset clears the state of every cascade section.
func (bw *ButterworthFilter) Reset() {
	for _, s := range bw.sections {
		s.Reset()
	}
}
