package spectral

import (
	"fmt"
	"math"
)

// Features summarizes the spectral character of a stem for role
// classification. Ratios are fractions of total energy, strengths are
// normalized to [0, 1].
type Features struct {
	Centroid          float64 `json:"centroid"`
	LowEnergyRatio    float64 `json:"low_energy_ratio"`  // 20-250 Hz
	MidEnergyRatio    float64 `json:"mid_energy_ratio"`  // 250-4000 Hz
	HighEnergyRatio   float64 `json:"high_energy_ratio"` // 4000-20000 Hz
	HarmonicRatio     float64 `json:"harmonic_ratio"`
	TransientStrength float64 `json:"transient_strength"`
	FormantPresence   float64 `json:"formant_presence"`
	ZeroCrossingRate  float64 `json:"zero_crossing_rate"`
}

// FeatureAnalyzer extracts classification features from mono audio.
type FeatureAnalyzer struct {
	stft       *STFT
	windowSize int
	hopSize    int
}

// NewFeatureAnalyzer creates an analyzer with the standard analysis
// resolution (2048-sample window, 512-sample hop).
func NewFeatureAnalyzer() *FeatureAnalyzer {
	return &FeatureAnalyzer{
		stft:       NewSTFT(),
		windowSize: 2048,
		hopSize:    512,
	}
}

// Compute extracts the full feature set from a mono signal.
func (fa *FeatureAnalyzer) Compute(signal []float64, sampleRate int) (*Features, error) {
	if len(signal) < fa.windowSize {
		return nil, fmt.Errorf("signal too short for feature analysis: %d samples", len(signal))
	}

	window := NewHannWindow(fa.windowSize)
	result, err := fa.stft.Compute(signal, fa.windowSize, fa.hopSize, sampleRate, window)
	if err != nil {
		return nil, fmt.Errorf("stft: %w", err)
	}

	nyquist := float64(sampleRate) / 2.0

	features := &Features{
		Centroid:          fa.centroid(result),
		LowEnergyRatio:    result.BandEnergyRatio(20, 250),
		MidEnergyRatio:    result.BandEnergyRatio(250, 4000),
		HighEnergyRatio:   result.BandEnergyRatio(4000, math.Min(20000, nyquist)),
		HarmonicRatio:     fa.harmonicRatio(result),
		TransientStrength: fa.transientStrength(result),
		FormantPresence:   fa.formantPresence(result),
		ZeroCrossingRate:  zeroCrossingRate(signal),
	}

	return features, nil
}

// centroid averages the per-frame spectral centroid, skipping
// near-silent frames.
func (fa *FeatureAnalyzer) centroid(r *STFTResult) float64 {
	sum := 0.0
	count := 0
	for _, frame := range r.Magnitude {
		magSum := 0.0
		weighted := 0.0
		for bin, mag := range frame {
			magSum += mag
			weighted += mag * r.BinFrequency(bin)
		}
		if magSum > 1e-10 {
			sum += weighted / magSum
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// harmonicRatio proxies harmonicity by inverse spectral flatness:
// tonal material has peaky spectra (flatness near 0), percussive
// material is closer to noise (flatness near 1).
func (fa *FeatureAnalyzer) harmonicRatio(r *STFTResult) float64 {
	flatnessSum := 0.0
	count := 0
	for _, frame := range r.Magnitude {
		logSum := 0.0
		linSum := 0.0
		n := 0
		for _, mag := range frame {
			p := mag*mag + 1e-12
			logSum += math.Log(p)
			linSum += p
			n++
		}
		if n == 0 || linSum <= 0 {
			continue
		}
		geoMean := math.Exp(logSum / float64(n))
		arithMean := linSum / float64(n)
		flatnessSum += geoMean / arithMean
		count++
	}
	if count == 0 {
		return 0
	}
	return 1.0 - flatnessSum/float64(count)
}

// transientStrength is mean onset strength over peak onset strength.
// Sustained material scores high (dense flux relative to its peak);
// isolated hits score low.
func (fa *FeatureAnalyzer) transientStrength(r *STFTResult) float64 {
	onsets := r.OnsetEnvelope()
	if len(onsets) == 0 {
		return 0
	}

	sum := 0.0
	peak := 0.0
	for _, o := range onsets {
		sum += o
		if o > peak {
			peak = o
		}
	}
	if peak <= 0 {
		return 0
	}
	return (sum / float64(len(onsets))) / peak
}

// formantPresence counts spectral peaks in the vocal formant range
// (500-3000 Hz) of the average spectrum, scaled by 10 and capped at 1.
func (fa *FeatureAnalyzer) formantPresence(r *STFTResult) float64 {
	avg := r.AverageSpectrum()
	lowBin := r.BinForFrequency(500)
	highBin := r.BinForFrequency(3000)
	if highBin-lowBin < 3 {
		return 0
	}

	mean := 0.0
	for bin := lowBin; bin <= highBin; bin++ {
		mean += avg[bin]
	}
	mean /= float64(highBin - lowBin + 1)

	peaks := 0
	for bin := lowBin + 1; bin < highBin; bin++ {
		if avg[bin] > avg[bin-1] && avg[bin] > avg[bin+1] && avg[bin] > mean {
			peaks++
		}
	}

	return math.Min(1.0, float64(peaks)/10.0)
}

// zeroCrossingRate counts sign changes per sample.
func zeroCrossingRate(signal []float64) float64 {
	if len(signal) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(signal); i++ {
		if (signal[i] >= 0) != (signal[i-1] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(signal)-1)
}
