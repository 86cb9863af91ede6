package master

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/dsp"
	"github.com/RyanBlaney/sonido-mix/logging"
	"github.com/RyanBlaney/sonido-mix/presets"
)

// Multiband compressor defaults. Attack and release are shared across
// bands; per-band thresholds and ratios come from the genre preset.
const (
	crossoverTaps  = 1025
	bandAttackMs   = 10.0
	bandReleaseMs  = 100.0
	rmsWindowMs    = 10.0
	makeupFraction = 0.7 // compensate 70% of the average gain reduction
	parallelBlend  = 0.3
)

// MultibandCompressor splits the program into frequency bands with
// linear-phase crossovers and compresses each band independently with
// a soft ratio curve and automatic makeup gain.
type MultibandCompressor struct {
	sampleRate int
	logger     logging.Logger
}

// NewMultibandCompressor creates a compressor for the given rate.
func NewMultibandCompressor(sampleRate int) *MultibandCompressor {
	return &MultibandCompressor{
		sampleRate: sampleRate,
		logger:     logging.WithFields(logging.Fields{"component": "multiband"}),
	}
}

// Process compresses the buffer in place. Settings must carry one
// threshold and ratio per band (len(crossovers)+1).
func (mc *MultibandCompressor) Process(buf *audio.Buffer, settings presets.MultibandSettings) error {
	numBands := len(settings.Crossovers) + 1
	if len(settings.Thresholds) != numBands || len(settings.Ratios) != numBands {
		return fmt.Errorf("multiband: %d crossovers need %d thresholds and ratios, got %d/%d",
			len(settings.Crossovers), numBands, len(settings.Thresholds), len(settings.Ratios))
	}

	fc, err := dsp.NewFIRCrossover(mc.sampleRate, crossoverTaps)
	if err != nil {
		return fmt.Errorf("multiband crossover: %w", err)
	}

	for ch, signal := range buf.Samples {
		bands, err := fc.Split(signal, settings.Crossovers)
		if err != nil {
			return fmt.Errorf("multiband split: %w", err)
		}

		for i, band := range bands {
			bands[i] = mc.compressBand(band, settings.Thresholds[i], settings.Ratios[i])
		}

		compressed := dsp.SumBands(bands)
		buf.Samples[ch] = dsp.ParallelMix(signal, compressed, 1.0-parallelBlend)
	}

	mc.logger.Debug("multiband compression applied", logging.Fields{
		"bands": numBands,
	})
	return nil
}

// compressBand applies a soft compression curve to one band. The curve
// works in the linear domain: gain = 1/(1+(excess-1)(1-1/ratio)) for
// envelope excess over the threshold, which bends gently into
// compression instead of hinging at a hard knee.
func (mc *MultibandCompressor) compressBand(band []float64, thresholdDB, ratio float64) []float64 {
	threshold := math.Pow(10.0, thresholdDB/20.0)
	envelope := mc.rmsEnvelope(band)

	gain := make([]float64, len(band))
	gainSum := 0.0
	for i, env := range envelope {
		g := 1.0
		if env > threshold && ratio > 1 {
			excess := env / threshold
			g = 1.0 / (1.0 + (excess-1.0)*(1.0-1.0/ratio))
		}
		gain[i] = g
		gainSum += g
	}

	makeup := 1.0
	if len(gain) > 0 {
		avgGain := gainSum / float64(len(gain))
		makeupDB := -20.0 * math.Log10(math.Max(avgGain, 1e-10)) * makeupFraction
		makeup = math.Pow(10.0, makeupDB/20.0)
	}

	output := make([]float64, len(band))
	for i, sample := range band {
		output[i] = sample * gain[i] * makeup
	}
	return output
}

// rmsEnvelope computes a windowed RMS level and smooths it with
// asymmetric attack/release.
func (mc *MultibandCompressor) rmsEnvelope(signal []float64) []float64 {
	window := int(rmsWindowMs * float64(mc.sampleRate) / 1000.0)
	if window < 1 {
		window = 1
	}

	// Centered moving average of the squared signal
	rms := make([]float64, len(signal))
	half := window / 2
	acc := 0.0
	count := 0
	for i := 0; i < len(signal) && i < half; i++ {
		acc += signal[i] * signal[i]
		count++
	}
	for i := range signal {
		if lead := i + half; lead < len(signal) {
			acc += signal[lead] * signal[lead]
			count++
		}
		if trail := i - half - 1; trail >= 0 {
			acc -= signal[trail] * signal[trail]
			count--
		}
		if count > 0 {
			rms[i] = math.Sqrt(acc / float64(count))
		}
	}

	attackAlpha := envelopeAlpha(mc.sampleRate, bandAttackMs)
	releaseAlpha := envelopeAlpha(mc.sampleRate, bandReleaseMs)

	envelope := make([]float64, len(rms))
	if len(rms) > 0 {
		envelope[0] = rms[0]
	}
	for i := 1; i < len(rms); i++ {
		alpha := releaseAlpha
		if rms[i] > envelope[i-1] {
			alpha = attackAlpha
		}
		envelope[i] = alpha*rms[i] + (1.0-alpha)*envelope[i-1]
	}
	return envelope
}

func envelopeAlpha(sampleRate int, ms float64) float64 {
	samples := ms * float64(sampleRate) / 1000.0
	if samples < 1 {
		samples = 1
	}
	return 1.0 - math.Exp(-1.0/samples)
}
