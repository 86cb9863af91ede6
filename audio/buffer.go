package audio

import (
	"fmt"
	"math"
)

// epsilon floors dB conversions so that digital silence maps to a
// large negative number instead of -Inf.
const epsilon = 1e-10

// SilenceFloorDB is the dB value reported for digital silence.
const SilenceFloorDB = -200.0

// Buffer holds planar PCM audio at a fixed sample rate. Channel count
// is 1 (mono) or 2 (stereo); all channels have equal length.
type Buffer struct {
	Samples    [][]float64 `json:"-"`
	SampleRate int         `json:"sample_rate"`
}

// NewBuffer allocates a silent buffer with the given channel count and length.
func NewBuffer(channels, length, sampleRate int) (*Buffer, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	if length < 0 {
		return nil, fmt.Errorf("negative buffer length %d", length)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	samples := make([][]float64, channels)
	for ch := range samples {
		samples[ch] = make([]float64, length)
	}

	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// NewMonoBuffer wraps a single channel of samples.
func NewMonoBuffer(samples []float64, sampleRate int) *Buffer {
	return &Buffer{Samples: [][]float64{samples}, SampleRate: sampleRate}
}

// NewStereoBuffer wraps left/right channels. Both slices must have equal length.
func NewStereoBuffer(left, right []float64, sampleRate int) (*Buffer, error) {
	if len(left) != len(right) {
		return nil, fmt.Errorf("channel length mismatch: left %d, right %d", len(left), len(right))
	}
	return &Buffer{Samples: [][]float64{left, right}, SampleRate: sampleRate}, nil
}

// Channels returns the channel count.
func (b *Buffer) Channels() int {
	return len(b.Samples)
}

// Length returns the per-channel sample count.
func (b *Buffer) Length() int {
	if len(b.Samples) == 0 {
		return 0
	}
	return len(b.Samples[0])
}

// Duration returns the buffer duration in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Length()) / float64(b.SampleRate)
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	samples := make([][]float64, len(b.Samples))
	for ch, src := range b.Samples {
		samples[ch] = make([]float64, len(src))
		copy(samples[ch], src)
	}
	return &Buffer{Samples: samples, SampleRate: b.SampleRate}
}

// Mono returns a mono downmix. Stereo buffers average the channels;
// mono buffers return their channel directly (no copy).
func (b *Buffer) Mono() []float64 {
	if len(b.Samples) == 0 {
		return nil
	}
	if len(b.Samples) == 1 {
		return b.Samples[0]
	}

	left, right := b.Samples[0], b.Samples[1]
	mono := make([]float64, len(left))
	for i := range mono {
		mono[i] = 0.5 * (left[i] + right[i])
	}
	return mono
}

// Stereo returns the buffer as stereo, duplicating the channel when mono.
// The returned buffer shares sample storage with the receiver when already
// stereo.
func (b *Buffer) Stereo() *Buffer {
	if len(b.Samples) == 2 {
		return b
	}

	mono := b.Samples[0]
	left := make([]float64, len(mono))
	right := make([]float64, len(mono))
	copy(left, mono)
	copy(right, mono)

	return &Buffer{Samples: [][]float64{left, right}, SampleRate: b.SampleRate}
}

// Peak returns the absolute sample peak across all channels (linear).
func (b *Buffer) Peak() float64 {
	peak := 0.0
	for _, ch := range b.Samples {
		for _, s := range ch {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// PeakDB returns the sample peak in dBFS.
func (b *Buffer) PeakDB() float64 {
	return LinearToDB(b.Peak())
}

// RMS returns the root-mean-square level across all channels (linear).
func (b *Buffer) RMS() float64 {
	sum := 0.0
	count := 0
	for _, ch := range b.Samples {
		for _, s := range ch {
			sum += s * s
		}
		count += len(ch)
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}

// RMSDB returns the RMS level in dBFS.
func (b *Buffer) RMSDB() float64 {
	return LinearToDB(b.RMS())
}

// Gain scales all samples by the given dB amount in place.
func (b *Buffer) Gain(db float64) {
	g := DBToLinear(db)
	for _, ch := range b.Samples {
		for i := range ch {
			ch[i] *= g
		}
	}
}

// Scale multiplies all samples by a linear factor in place.
func (b *Buffer) Scale(factor float64) {
	for _, ch := range b.Samples {
		for i := range ch {
			ch[i] *= factor
		}
	}
}

// PadTo extends each channel with trailing zeros to the given length.
// Buffers already at or beyond the length are unchanged.
func (b *Buffer) PadTo(length int) {
	for ch, src := range b.Samples {
		if len(src) >= length {
			continue
		}
		padded := make([]float64, length)
		copy(padded, src)
		b.Samples[ch] = padded
	}
}

// Clip hard-limits every sample to [-ceiling, ceiling] in place.
func (b *Buffer) Clip(ceiling float64) {
	for _, ch := range b.Samples {
		for i, s := range ch {
			if s > ceiling {
				ch[i] = ceiling
			} else if s < -ceiling {
				ch[i] = -ceiling
			}
		}
	}
}

// IsSilent reports whether the peak is below the given dBFS threshold.
func (b *Buffer) IsSilent(thresholdDB float64) bool {
	return b.PeakDB() < thresholdDB
}

// LinearToDB converts a linear amplitude to dB with an epsilon floor.
func LinearToDB(linear float64) float64 {
	if linear < epsilon {
		return SilenceFloorDB
	}
	return 20.0 * math.Log10(linear)
}

// DBToLinear converts dB to a linear amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}
