package dsp

import (
	"fmt"
	"math"
)

// BiquadType selects the response shape of a Biquad filter.
type BiquadType int

const (
	Lowpass BiquadType = iota
	Highpass
	Bandpass
	Notch
	Peaking
	LowShelf
	HighShelf
)

func (t BiquadType) String() string {
	switch t {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Notch:
		return "notch"
	case Peaking:
		return "peaking"
	case LowShelf:
		return "lowshelf"
	case HighShelf:
		return "highshelf"
	default:
		return "unknown"
	}
}

// Biquad implements a second-order IIR filter using the cookbook formulas
// from Robert Bristow-Johnson's "Cookbook formulae for audio EQ biquad
// filter coefficients".
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
type Biquad struct {
	sampleRate int
	filterType BiquadType
	freq       float64 // Corner/center frequency in Hz
	q          float64 // Quality factor
	gainDB     float64 // Gain for peaking/shelf types

	// Biquad coefficients, normalized by a0
	b0, b1, b2 float64
	a1, a2     float64

	// State variables for direct form II implementation
	w1, w2 float64
}

// NewBiquad creates a biquad of the given type. gainDB is ignored for
// lowpass/highpass/bandpass/notch types.
func NewBiquad(sampleRate int, filterType BiquadType, freq, q, gainDB float64) (*Biquad, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if freq <= 0 {
		return nil, fmt.Errorf("frequency must be positive, got %f", freq)
	}
	if q <= 0 {
		return nil, fmt.Errorf("Q must be positive, got %f", q)
	}

	bq := &Biquad{
		sampleRate: sampleRate,
		filterType: filterType,
		freq:       freq,
		q:          q,
		gainDB:     gainDB,
	}
	bq.computeCoefficients()
	return bq, nil
}

// computeCoefficients calculates the biquad coefficients using the cookbook formulas.
func (bq *Biquad) computeCoefficients() {
	// Normalize frequency: w0 = 2*pi*f0/Fs
	w0 := 2.0 * math.Pi * bq.freq / float64(bq.sampleRate)

	// Prevent numerical issues at Nyquist
	if w0 >= math.Pi {
		w0 = math.Pi * 0.99
	}

	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2.0 * bq.q)

	// A = sqrt(10^(gain/20)) for peaking and shelving filters
	amp := math.Pow(10.0, bq.gainDB/40.0)

	var b0, b1, b2, a0, a1, a2 float64

	switch bq.filterType {
	case Lowpass:
		b0 = (1.0 - cosW0) / 2.0
		b1 = 1.0 - cosW0
		b2 = (1.0 - cosW0) / 2.0
		a0 = 1.0 + alpha
		a1 = -2.0 * cosW0
		a2 = 1.0 - alpha

	case Highpass:
		b0 = (1.0 + cosW0) / 2.0
		b1 = -(1.0 + cosW0)
		b2 = (1.0 + cosW0) / 2.0
		a0 = 1.0 + alpha
		a1 = -2.0 * cosW0
		a2 = 1.0 - alpha

	case Bandpass:
		// Constant 0 dB peak gain variant
		b0 = alpha
		b1 = 0.0
		b2 = -alpha
		a0 = 1.0 + alpha
		a1 = -2.0 * cosW0
		a2 = 1.0 - alpha

	case Notch:
		b0 = 1.0
		b1 = -2.0 * cosW0
		b2 = 1.0
		a0 = 1.0 + alpha
		a1 = -2.0 * cosW0
		a2 = 1.0 - alpha

	case Peaking:
		b0 = 1.0 + alpha*amp
		b1 = -2.0 * cosW0
		b2 = 1.0 - alpha*amp
		a0 = 1.0 + alpha/amp
		a1 = -2.0 * cosW0
		a2 = 1.0 - alpha/amp

	case LowShelf:
		sqrtA := math.Sqrt(amp)
		b0 = amp * ((amp + 1) - (amp-1)*cosW0 + 2*sqrtA*alpha)
		b1 = 2 * amp * ((amp - 1) - (amp+1)*cosW0)
		b2 = amp * ((amp + 1) - (amp-1)*cosW0 - 2*sqrtA*alpha)
		a0 = (amp + 1) + (amp-1)*cosW0 + 2*sqrtA*alpha
		a1 = -2 * ((amp - 1) + (amp+1)*cosW0)
		a2 = (amp + 1) + (amp-1)*cosW0 - 2*sqrtA*alpha

	case HighShelf:
		sqrtA := math.Sqrt(amp)
		b0 = amp * ((amp + 1) + (amp-1)*cosW0 + 2*sqrtA*alpha)
		b1 = -2 * amp * ((amp - 1) + (amp+1)*cosW0)
		b2 = amp * ((amp + 1) + (amp-1)*cosW0 - 2*sqrtA*alpha)
		a0 = (amp + 1) - (amp-1)*cosW0 + 2*sqrtA*alpha
		a1 = 2 * ((amp - 1) - (amp+1)*cosW0)
		a2 = (amp + 1) - (amp-1)*cosW0 - 2*sqrtA*alpha
	}

	// Normalize by a0 for direct form II implementation
	bq.b0 = b0 / a0
	bq.b1 = b1 / a0
	bq.b2 = b2 / a0
	bq.a1 = a1 / a0
	bq.a2 = a2 / a0
}

// Process applies the filter to a single sample.
// Uses Direct Form II biquad implementation for numerical stability.
func (bq *Biquad) Process(input float64) float64 {
	// w[n] = x[n] - a1*w[n-1] - a2*w[n-2]
	w := input - bq.a1*bq.w1 - bq.a2*bq.w2

	// y[n] = b0*w[n] + b1*w[n-1] + b2*w[n-2]
	output := bq.b0*w + bq.b1*bq.w1 + bq.b2*bq.w2

	bq.w2 = bq.w1
	bq.w1 = w

	return output
}

// ProcessBuffer applies the filter to an entire buffer of samples.
func (bq *Biquad) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = bq.Process(sample)
	}
	return output
}

// ProcessInPlace filters the buffer in place.
func (bq *Biquad) ProcessInPlace(buf []float64) {
	for i, sample := range buf {
		buf[i] = bq.Process(sample)
	}
}

// Reset clears the filter's internal state (delay line).
// Call this when processing discontinuous audio segments.
func (bq *Biquad) Reset() {
	bq.w1, bq.w2 = 0.0, 0.0
}

// SetParameters updates frequency, Q and gain and recomputes coefficients.
func (bq *Biquad) SetParameters(freq, q, gainDB float64) error {
	if freq <= 0 || freq >= float64(bq.sampleRate)/2 {
		return fmt.Errorf("frequency must be between 0 and Nyquist (%d Hz)", bq.sampleRate/2)
	}
	if q <= 0 {
		return fmt.Errorf("Q must be positive")
	}

	bq.freq = freq
	bq.q = q
	bq.gainDB = gainDB
	bq.computeCoefficients()
	return nil
}

// FrequencyResponse computes the magnitude and phase response at the
// given frequency. Returns magnitude (linear scale) and phase (radians).
func (bq *Biquad) FrequencyResponse(frequency float64) (magnitude, phase float64) {
	w := 2.0 * math.Pi * frequency / float64(bq.sampleRate)

	cosW := math.Cos(w)
	sinW := math.Sin(w)
	cos2W := math.Cos(2 * w)
	sin2W := math.Sin(2 * w)

	// Numerator: b0 + b1*e^-jw + b2*e^-j2w
	numReal := bq.b0 + bq.b1*cosW + bq.b2*cos2W
	numImag := -bq.b1*sinW - bq.b2*sin2W

	// Denominator: 1 + a1*e^-jw + a2*e^-j2w
	denReal := 1.0 + bq.a1*cosW + bq.a2*cos2W
	denImag := -bq.a1*sinW - bq.a2*sin2W

	denMagSq := denReal*denReal + denImag*denImag

	hReal := (numReal*denReal + numImag*denImag) / denMagSq
	hImag := (numImag*denReal - numReal*denImag) / denMagSq

	magnitude = math.Sqrt(hReal*hReal + hImag*hImag)
	phase = math.Atan2(hImag, hReal)

	return magnitude, phase
}

// Coefficients returns the normalized biquad coefficients.
func (bq *Biquad) Coefficients() (b0, b1, b2, a1, a2 float64) {
	return bq.b0, bq.b1, bq.b2, bq.a1, bq.a2
}
