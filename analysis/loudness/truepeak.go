package loudness

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/sonido-mix/audio"
)

const oversampleFactor = 4

// TruePeakDB estimates the inter-sample peak by 4x FFT oversampling,
// processed in chunks to bound memory on long material.
func (m *Meter) TruePeakDB(buf *audio.Buffer) float64 {
	peak := 0.0
	for _, ch := range buf.Samples {
		if p := truePeakChannel(ch); p > peak {
			peak = p
		}
	}
	return audio.LinearToDB(peak)
}

// truePeakChannel oversamples one channel chunk by chunk. Chunks
// overlap by a margin so peaks near boundaries are not missed.
func truePeakChannel(signal []float64) float64 {
	const chunkSize = 1 << 15
	const margin = 64

	peak := 0.0
	for start := 0; start < len(signal); start += chunkSize {
		lo := start - margin
		if lo < 0 {
			lo = 0
		}
		hi := start + chunkSize + margin
		if hi > len(signal) {
			hi = len(signal)
		}

		if p := oversampledPeak(signal[lo:hi]); p > peak {
			peak = p
		}
	}
	return peak
}

// oversampledPeak zero-stuffs the spectrum to interpolate the waveform
// at 4x the sample rate and returns the absolute peak.
func oversampledPeak(chunk []float64) float64 {
	n := len(chunk)
	if n == 0 {
		return 0
	}
	if n < 8 {
		peak := 0.0
		for _, s := range chunk {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
		return peak
	}

	spectrum := fft.FFTReal(chunk)

	padded := make([]complex128, n*oversampleFactor)
	half := n / 2
	copy(padded[:half+1], spectrum[:half+1])
	for i := 1; i < half; i++ {
		padded[len(padded)-i] = spectrum[n-i]
	}

	interpolated := fft.IFFT(padded)

	peak := 0.0
	for _, v := range interpolated {
		// IFFT normalizes by the padded length; rescale to signal amplitude
		if a := math.Abs(real(v)) * oversampleFactor; a > peak {
			peak = a
		}
	}
	return peak
}
