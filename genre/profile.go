package genre

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-mix/analysis/spectral"
)

// SpectralProfile summarizes the tonal balance of a track for genre
// scoring. Band values are fractions of total energy.
type SpectralProfile struct {
	SubRatio     float64 `json:"sub_ratio"`      // 20-60 Hz
	BassRatio    float64 `json:"bass_ratio"`     // 60-250 Hz
	LowMidRatio  float64 `json:"low_mid_ratio"`  // 250-500 Hz
	MidRatio     float64 `json:"mid_ratio"`      // 500-2000 Hz
	HighMidRatio float64 `json:"high_mid_ratio"` // 2000-6000 Hz
	HighRatio    float64 `json:"high_ratio"`     // 6000-20000 Hz
	LowEndRatio  float64 `json:"low_end_ratio"`  // sub + bass
	Brightness   float64 `json:"brightness"`     // high / bass
}

// DynamicsProfile summarizes the dynamic character of a track.
type DynamicsProfile struct {
	RMSDB            float64 `json:"rms_db"`
	PeakDB           float64 `json:"peak_db"`
	CrestDB          float64 `json:"crest_db"`
	DynamicRangeDB   float64 `json:"dynamic_range_db"` // p95/p10 spread, clipped [0, 40]
	TransientDensity float64 `json:"transient_density"` // clipped [0, 1]
}

// profiler extracts spectral and dynamic profiles from the first 30
// seconds of a mono signal.
type profiler struct {
	sampleRate int
	stft       *spectral.STFT
}

func newProfiler(sampleRate int) *profiler {
	return &profiler{sampleRate: sampleRate, stft: spectral.NewSTFT()}
}

// analysisWindow truncates to the first 30 seconds; intros are usually
// representative enough and it keeps detection fast.
func (p *profiler) analysisWindow(signal []float64) []float64 {
	maxSamples := 30 * p.sampleRate
	if len(signal) > maxSamples {
		return signal[:maxSamples]
	}
	return signal
}

func (p *profiler) spectralProfile(signal []float64) (*SpectralProfile, error) {
	window := p.analysisWindow(signal)

	result, err := p.stft.Compute(window, 4096, 2048, p.sampleRate, spectral.NewHannWindow(4096))
	if err != nil {
		return nil, err
	}

	total := result.TotalEnergy()
	if total <= 0 {
		return &SpectralProfile{}, nil
	}

	nyquist := float64(p.sampleRate) / 2.0
	profile := &SpectralProfile{
		SubRatio:     result.BandEnergy(20, 60) / total,
		BassRatio:    result.BandEnergy(60, 250) / total,
		LowMidRatio:  result.BandEnergy(250, 500) / total,
		MidRatio:     result.BandEnergy(500, 2000) / total,
		HighMidRatio: result.BandEnergy(2000, 6000) / total,
		HighRatio:    result.BandEnergy(6000, math.Min(20000, nyquist)) / total,
	}
	profile.LowEndRatio = profile.SubRatio + profile.BassRatio
	if profile.BassRatio > 1e-10 {
		profile.Brightness = profile.HighRatio / profile.BassRatio
	}

	return profile, nil
}

func (p *profiler) dynamicsProfile(signal []float64) *DynamicsProfile {
	window := p.analysisWindow(signal)
	if len(window) == 0 {
		return &DynamicsProfile{}
	}

	sum := 0.0
	peak := 0.0
	for _, s := range window {
		sum += s * s
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	rms := math.Sqrt(sum / float64(len(window)))

	rmsDB := 20.0 * math.Log10(math.Max(rms, 1e-10))
	peakDB := 20.0 * math.Log10(math.Max(peak, 1e-10))

	return &DynamicsProfile{
		RMSDB:            rmsDB,
		PeakDB:           peakDB,
		CrestDB:          peakDB - rmsDB,
		DynamicRangeDB:   p.dynamicRange(window),
		TransientDensity: p.transientDensity(window),
	}
}

// dynamicRange is the p95/p10 spread of frame RMS levels in dB.
func (p *profiler) dynamicRange(signal []float64) float64 {
	frameSize := p.sampleRate / 20
	if frameSize < 1 || len(signal) < frameSize*2 {
		return 0
	}

	frames := make([]float64, 0, len(signal)/frameSize)
	for start := 0; start+frameSize <= len(signal); start += frameSize {
		sum := 0.0
		for i := start; i < start+frameSize; i++ {
			sum += signal[i] * signal[i]
		}
		frames = append(frames, math.Sqrt(sum/float64(frameSize)))
	}
	if len(frames) < 2 {
		return 0
	}

	sort.Float64s(frames)
	p10 := stat.Quantile(0.10, stat.Empirical, frames, nil)
	p95 := stat.Quantile(0.95, stat.Empirical, frames, nil)
	if p10 < 1e-10 {
		p10 = 1e-10
	}

	dr := 20.0 * math.Log10(p95/p10)
	return math.Max(0, math.Min(40, dr))
}

// transientDensity counts frame-energy jumps above mean+std of the
// positive diffs, normalized to transients per second / 10.
func (p *profiler) transientDensity(signal []float64) float64 {
	frameSize := 512
	if len(signal) < frameSize*4 {
		return 0
	}

	numFrames := len(signal) / frameSize
	energies := make([]float64, numFrames)
	for f := 0; f < numFrames; f++ {
		sum := 0.0
		for i := f * frameSize; i < (f+1)*frameSize; i++ {
			sum += signal[i] * signal[i]
		}
		energies[f] = sum
	}

	diffs := make([]float64, 0, numFrames-1)
	for i := 1; i < numFrames; i++ {
		if d := energies[i] - energies[i-1]; d > 0 {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) < 2 {
		return 0
	}

	mean, std := stat.MeanStdDev(diffs, nil)
	threshold := mean + std

	transients := 0
	for _, d := range diffs {
		if d > threshold {
			transients++
		}
	}

	duration := float64(len(signal)) / float64(p.sampleRate)
	if duration <= 0 {
		return 0
	}

	perSecond := float64(transients) / duration
	return math.Max(0, math.Min(1, perSecond/10.0))
}
