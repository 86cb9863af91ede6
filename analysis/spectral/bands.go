package spectral

// BandEnergy sums magnitude-squared energy between two frequencies
// across all frames of an STFT result.
func (r *STFTResult) BandEnergy(lowFreq, highFreq float64) float64 {
	lowBin := r.BinForFrequency(lowFreq)
	highBin := r.BinForFrequency(highFreq)

	energy := 0.0
	for _, frame := range r.Magnitude {
		for bin := lowBin; bin <= highBin; bin++ {
			energy += frame[bin] * frame[bin]
		}
	}
	return energy
}

// TotalEnergy sums magnitude-squared energy across the whole spectrogram.
func (r *STFTResult) TotalEnergy() float64 {
	energy := 0.0
	for _, frame := range r.Magnitude {
		for _, mag := range frame {
			energy += mag * mag
		}
	}
	return energy
}

// BandEnergyRatio returns the share of total energy between two frequencies.
func (r *STFTResult) BandEnergyRatio(lowFreq, highFreq float64) float64 {
	total := r.TotalEnergy()
	if total <= 0 {
		return 0
	}
	return r.BandEnergy(lowFreq, highFreq) / total
}

// FrameBandEnergies returns per-frame mean energy inside a band,
// one value per STFT frame.
func (r *STFTResult) FrameBandEnergies(lowFreq, highFreq float64) []float64 {
	lowBin := r.BinForFrequency(lowFreq)
	highBin := r.BinForFrequency(highFreq)
	binCount := float64(highBin - lowBin + 1)

	energies := make([]float64, r.TimeFrames)
	for t, frame := range r.Magnitude {
		sum := 0.0
		for bin := lowBin; bin <= highBin; bin++ {
			sum += frame[bin] * frame[bin]
		}
		energies[t] = sum / binCount
	}
	return energies
}

// OnsetEnvelope computes an onset strength curve as the positive
// spectral flux between consecutive frames.
func (r *STFTResult) OnsetEnvelope() []float64 {
	if r.TimeFrames < 2 {
		return []float64{}
	}

	onsets := make([]float64, r.TimeFrames-1)
	for t := 1; t < r.TimeFrames; t++ {
		flux := 0.0
		for bin := range r.Magnitude[t] {
			diff := r.Magnitude[t][bin] - r.Magnitude[t-1][bin]
			if diff > 0 {
				flux += diff
			}
		}
		onsets[t-1] = flux
	}
	return onsets
}

// AverageSpectrum returns the time-averaged magnitude per bin.
func (r *STFTResult) AverageSpectrum() []float64 {
	avg := make([]float64, r.FreqBins)
	if r.TimeFrames == 0 {
		return avg
	}
	for _, frame := range r.Magnitude {
		for bin, mag := range frame {
			avg[bin] += mag
		}
	}
	for bin := range avg {
		avg[bin] /= float64(r.TimeFrames)
	}
	return avg
}
