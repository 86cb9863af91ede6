package dsp

import (
	"fmt"
	"math"
)

// Compressor is a feed-forward dynamics compressor with dB-domain gain
// computation. Stereo processing is linked: one gain curve derived from
// the channel peak drives both channels.
type Compressor struct {
	sampleRate  int
	ThresholdDB float64
	Ratio       float64
	AttackMs    float64
	ReleaseMs   float64
	MakeupDB    float64
}

// NewCompressor creates a compressor with the given settings.
func NewCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs float64) *Compressor {
	return &Compressor{
		sampleRate:  sampleRate,
		ThresholdDB: thresholdDB,
		Ratio:       ratio,
		AttackMs:    attackMs,
		ReleaseMs:   releaseMs,
	}
}

// gainCurve computes the per-sample linear gain from a key signal.
func (c *Compressor) gainCurve(key []float64) []float64 {
	follower := NewEnvelopeFollower(c.sampleRate, c.AttackMs, c.ReleaseMs, PeakEnvelope)
	makeup := math.Pow(10.0, c.MakeupDB/20.0)

	gain := make([]float64, len(key))
	for i, sample := range key {
		env := follower.Process(sample)
		envDB := 20.0 * math.Log10(math.Max(env, 1e-10))

		g := 1.0
		if envDB > c.ThresholdDB && c.Ratio > 1 {
			reductionDB := (envDB - c.ThresholdDB) * (1.0 - 1.0/c.Ratio)
			g = math.Pow(10.0, -reductionDB/20.0)
		}
		gain[i] = g * makeup
	}
	return gain
}

// ProcessBuffer compresses a mono signal keyed on itself.
func (c *Compressor) ProcessBuffer(input []float64) []float64 {
	gain := c.gainCurve(input)
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = sample * gain[i]
	}
	return output
}

// ProcessStereo compresses linked stereo: the key is the sample-wise
// channel maximum so the image does not shift under gain reduction.
func (c *Compressor) ProcessStereo(left, right []float64) (outLeft, outRight []float64, err error) {
	if len(left) != len(right) {
		return nil, nil, fmt.Errorf("channel length mismatch: %d vs %d", len(left), len(right))
	}

	key := make([]float64, len(left))
	for i := range left {
		key[i] = math.Max(math.Abs(left[i]), math.Abs(right[i]))
	}

	gain := c.gainCurve(key)
	outLeft = make([]float64, len(left))
	outRight = make([]float64, len(right))
	for i := range left {
		outLeft[i] = left[i] * gain[i]
		outRight[i] = right[i] * gain[i]
	}
	return outLeft, outRight, nil
}

// ParallelMix blends compressed and dry signals. mix of 0.25 means a
// quarter of the output comes from the compressed path.
func ParallelMix(dry, compressed []float64, mix float64) []float64 {
	output := make([]float64, len(dry))
	for i := range dry {
		output[i] = (1.0-mix)*dry[i] + mix*compressed[i]
	}
	return output
}

// SidechainCompressor ducks a target signal when a key signal plays.
// The key can be band-filtered so only part of the source (a kick's
// thump, a snare's crack) triggers the ducking.
type SidechainCompressor struct {
	sampleRate  int
	ThresholdDB float64
	Ratio       float64
	AttackMs    float64
	ReleaseMs   float64
	LowFreq     float64 // 0 for broadband keying
	HighFreq    float64
}

// NewSidechainCompressor creates a ducker.
func NewSidechainCompressor(sampleRate int, thresholdDB, ratio, attackMs, releaseMs float64) *SidechainCompressor {
	return &SidechainCompressor{
		sampleRate:  sampleRate,
		ThresholdDB: thresholdDB,
		Ratio:       ratio,
		AttackMs:    attackMs,
		ReleaseMs:   releaseMs,
	}
}

// GainCurve returns the ducking gain derived from the key signal.
func (sc *SidechainCompressor) GainCurve(key []float64) ([]float64, error) {
	filtered := key
	if sc.LowFreq > 0 && sc.HighFreq > sc.LowFreq {
		bp, err := NewButterworthBandpass(sc.sampleRate, sc.LowFreq, sc.HighFreq)
		if err != nil {
			return nil, fmt.Errorf("sidechain key filter: %w", err)
		}
		filtered = bp.ProcessBuffer(key)
	}

	follower := NewEnvelopeFollower(sc.sampleRate, sc.AttackMs, sc.ReleaseMs, PeakEnvelope)

	gain := make([]float64, len(filtered))
	for i, sample := range filtered {
		env := follower.Process(sample)
		envDB := 20.0 * math.Log10(math.Max(env, 1e-10))

		g := 1.0
		if envDB > sc.ThresholdDB && sc.Ratio > 1 {
			reductionDB := (envDB - sc.ThresholdDB) * (1.0 - 1.0/sc.Ratio)
			g = math.Pow(10.0, -reductionDB/20.0)
		}
		gain[i] = g
	}
	return gain, nil
}

// Process ducks the target using the key. Both signals must have equal
// length; the target is modified into a new slice.
func (sc *SidechainCompressor) Process(target, key []float64) ([]float64, error) {
	if len(target) != len(key) {
		return nil, fmt.Errorf("target/key length mismatch: %d vs %d", len(target), len(key))
	}

	gain, err := sc.GainCurve(key)
	if err != nil {
		return nil, err
	}

	output := make([]float64, len(target))
	for i := range target {
		output[i] = target[i] * gain[i]
	}
	return output, nil
}
