package dsp

import (
	"fmt"
	"math"
)

// SplitBands divides a mono signal into len(crossovers)+1 frequency
// bands using zero-phase Butterworth filters: a lowpass below the first
// crossover, bandpasses between adjacent crossovers, and a highpass
// above the last. Zero-phase filtering keeps the bands summable without
// comb artifacts.
func SplitBands(signal []float64, sampleRate int, crossovers []float64) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if len(crossovers) == 0 {
		return nil, fmt.Errorf("no crossover frequencies")
	}
	for i := 1; i < len(crossovers); i++ {
		if crossovers[i] <= crossovers[i-1] {
			return nil, fmt.Errorf("crossover frequencies must be ascending")
		}
	}

	bands := make([][]float64, 0, len(crossovers)+1)

	lp, err := NewButterworthLowpass(sampleRate, crossovers[0])
	if err != nil {
		return nil, err
	}
	bands = append(bands, lp.ProcessZeroPhase(signal))

	for i := 0; i < len(crossovers)-1; i++ {
		bp, err := NewButterworthBandpass(sampleRate, crossovers[i], crossovers[i+1])
		if err != nil {
			return nil, err
		}
		bands = append(bands, bp.ProcessZeroPhase(signal))
	}

	hp, err := NewButterworthHighpass(sampleRate, crossovers[len(crossovers)-1])
	if err != nil {
		return nil, err
	}
	bands = append(bands, hp.ProcessZeroPhase(signal))

	return bands, nil
}

// SumBands adds band signals back together.
func SumBands(bands [][]float64) []float64 {
	if len(bands) == 0 {
		return nil
	}
	out := make([]float64, len(bands[0]))
	for _, band := range bands {
		for i, v := range band {
			out[i] += v
		}
	}
	return out
}

// FIRCrossover splits a signal with linear-phase windowed-sinc filters.
// More expensive than the IIR split but free of phase distortion, which
// keeps transients intact through multiband dynamics.
type FIRCrossover struct {
	sampleRate int
	taps       int
}

// NewFIRCrossover creates a linear-phase crossover. Tap count must be
// odd; the canonical mastering setting is 1025.
func NewFIRCrossover(sampleRate, taps int) (*FIRCrossover, error) {
	if taps < 3 || taps%2 == 0 {
		return nil, fmt.Errorf("tap count must be odd and >= 3, got %d", taps)
	}
	return &FIRCrossover{sampleRate: sampleRate, taps: taps}, nil
}

// lowpassKernel designs a Hamming-windowed sinc lowpass.
func (fc *FIRCrossover) lowpassKernel(cutoff float64) []float64 {
	kernel := make([]float64, fc.taps)
	fc2 := cutoff / float64(fc.sampleRate) // normalized cutoff (cycles/sample)
	mid := (fc.taps - 1) / 2

	sum := 0.0
	for i := range kernel {
		n := float64(i - mid)
		var v float64
		if n == 0 {
			v = 2.0 * fc2
		} else {
			v = math.Sin(2.0*math.Pi*fc2*n) / (math.Pi * n)
		}
		// Hamming window
		v *= 0.54 - 0.46*math.Cos(2.0*math.Pi*float64(i)/float64(fc.taps-1))
		kernel[i] = v
		sum += v
	}

	// Unity DC gain
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// convolveCentered convolves the signal with a symmetric kernel and
// compensates the group delay so output aligns with input.
func convolveCentered(signal, kernel []float64) []float64 {
	mid := (len(kernel) - 1) / 2
	out := make([]float64, len(signal))
	for i := range signal {
		acc := 0.0
		for k, kv := range kernel {
			idx := i + mid - k
			if idx >= 0 && idx < len(signal) {
				acc += signal[idx] * kv
			}
		}
		out[i] = acc
	}
	return out
}

// Split divides the signal into len(crossovers)+1 bands. Bands are
// complementary: the low band is the lowpassed signal and each higher
// band is the residual below the next crossover, so the bands sum back
// to the input exactly.
func (fc *FIRCrossover) Split(signal []float64, crossovers []float64) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if len(crossovers) == 0 {
		return nil, fmt.Errorf("no crossover frequencies")
	}

	bands := make([][]float64, 0, len(crossovers)+1)
	residual := signal

	for _, cutoff := range crossovers {
		kernel := fc.lowpassKernel(cutoff)
		low := convolveCentered(residual, kernel)

		high := make([]float64, len(residual))
		for i := range residual {
			high[i] = residual[i] - low[i]
		}

		bands = append(bands, low)
		residual = high
	}

	bands = append(bands, residual)
	return bands, nil
}
