package spectral

import "math"

// HannWindow is a raised-cosine window. Good sidelobe behavior for
// general spectral analysis and exact COLA reconstruction at 50% overlap.
type HannWindow struct {
	size   int
	coeffs []float64
}

// NewHannWindow precomputes coefficients for the given size.
func NewHannWindow(size int) *HannWindow {
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 0.5 - 0.5*math.Cos(2.0*math.Pi*float64(i)/float64(size-1))
	}
	return &HannWindow{size: size, coeffs: coeffs}
}

// ApplyInPlace multiplies the signal by the window coefficients.
// Signals shorter than the window are windowed up to their length.
func (h *HannWindow) ApplyInPlace(signal []float64) error {
	n := min(len(signal), h.size)
	for i := 0; i < n; i++ {
		signal[i] *= h.coeffs[i]
	}
	return nil
}

// Size returns the window length.
func (h *HannWindow) Size() int {
	return h.size
}
