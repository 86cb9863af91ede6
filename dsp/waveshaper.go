package dsp

import "math"

// TapeSaturator models magnetic tape compression: symmetric tanh soft
// clipping with an even-harmonic term that grows with drive.
type TapeSaturator struct {
	Drive float64 // 0..1
	Bias  float64 // -1..1
	Mix   float64 // wet/dry 0..1
}

// NewTapeSaturator creates a tape stage with the given drive at full wet mix.
func NewTapeSaturator(drive float64) *TapeSaturator {
	return &TapeSaturator{Drive: drive, Mix: 1.0}
}

// Process shapes a single sample.
func (ts *TapeSaturator) Process(input float64) float64 {
	driven := input * (1.0 + ts.Drive*3.0)
	biased := driven + ts.Bias*0.1

	saturated := math.Tanh(biased * 1.5)

	// Even harmonics, the tape characteristic
	h := math.Tanh(biased * 3.0)
	saturated += 0.1 * ts.Drive * h * h

	saturated -= ts.Bias * 0.1
	saturated /= 1.0 + ts.Drive*0.3

	return (1.0-ts.Mix)*input + ts.Mix*saturated
}

// ProcessBuffer shapes an entire buffer.
func (ts *TapeSaturator) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = ts.Process(sample)
	}
	return output
}

// TubeSaturator models valve asymmetry: positive excursions clip softer
// than negative ones, with an odd-harmonic term and a low-frequency
// warmth emphasis.
type TubeSaturator struct {
	Drive  float64 // 0..1
	Warmth float64 // 0..1
	Mix    float64 // wet/dry 0..1

	warmthFilter *Biquad
}

// NewTubeSaturator creates a tube stage at full wet mix. The warmth
// path low-passes at 500 Hz.
func NewTubeSaturator(sampleRate int, drive, warmth float64) *TubeSaturator {
	// Q of 0.707 keeps the warmth path free of resonance
	lp, _ := NewBiquad(sampleRate, Lowpass, 500.0, 0.707, 0)
	return &TubeSaturator{
		Drive:        drive,
		Warmth:       warmth,
		Mix:          1.0,
		warmthFilter: lp,
	}
}

// Process shapes a single sample.
func (ts *TubeSaturator) Process(input float64) float64 {
	driven := input * (1.0 + ts.Drive*5.0)

	var saturated float64
	if driven > 0 {
		saturated = math.Tanh(driven * 0.8)
	} else {
		saturated = math.Tanh(driven * 1.2)
	}

	// Odd harmonics, the tube characteristic
	h := math.Tanh(driven * 2.0)
	saturated += 0.15 * ts.Drive * h * h * h

	if ts.Warmth > 0 && ts.warmthFilter != nil {
		warm := ts.warmthFilter.Process(saturated)
		saturated += ts.Warmth * 0.2 * warm
	}

	saturated /= 1.0 + ts.Drive*0.4

	return (1.0-ts.Mix)*input + ts.Mix*saturated
}

// ProcessBuffer shapes an entire buffer.
func (ts *TubeSaturator) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = ts.Process(sample)
	}
	return output
}

// Reset clears the warmth filter state.
func (ts *TubeSaturator) Reset() {
	if ts.warmthFilter != nil {
		ts.warmthFilter.Reset()
	}
}

// HarmonicExciter adds synthesized upper harmonics above a crossover
// frequency for brightness and presence.
type HarmonicExciter struct {
	sampleRate int
	Frequency  float64
	Amount     float64 // 0..1
	Harmonics  int
}

// NewHarmonicExciter creates an exciter. Typical settings: 3000 Hz,
// amount 0.3, 3 harmonics.
func NewHarmonicExciter(sampleRate int, frequency, amount float64, harmonics int) *HarmonicExciter {
	if harmonics < 2 {
		harmonics = 2
	}
	return &HarmonicExciter{
		sampleRate: sampleRate,
		Frequency:  frequency,
		Amount:     amount,
		Harmonics:  harmonics,
	}
}

// ProcessBuffer returns the input with excited highs mixed in.
func (he *HarmonicExciter) ProcessBuffer(input []float64) ([]float64, error) {
	hp, err := NewButterworthHighpass(he.sampleRate, he.Frequency)
	if err != nil {
		return nil, err
	}
	highs := hp.ProcessBuffer(input)

	excited := make([]float64, len(highs))
	copy(excited, highs)
	for h := 2; h <= he.Harmonics; h++ {
		hf := float64(h)
		for i, v := range highs {
			excited[i] += (math.Tanh(v*hf) / hf) * (he.Amount / hf)
		}
	}

	// Keep the excitation out of the mids
	hp2, err := NewButterworthHighpass(he.sampleRate, he.Frequency*1.5)
	if err != nil {
		return nil, err
	}
	excited = hp2.ProcessBuffer(excited)

	output := make([]float64, len(input))
	for i, v := range input {
		output[i] = v + excited[i]*he.Amount
	}
	return output, nil
}
