package audio

import "fmt"

// AlignStems zero-pads every stem to the length of the longest one so
// that sample indexes line up across the session. All stems must share
// a sample rate; resampling is out of scope.
func AlignStems(stems []*Stem) error {
	if len(stems) == 0 {
		return fmt.Errorf("no stems to align")
	}

	sampleRate := stems[0].Buffer.SampleRate
	maxLen := 0
	for _, s := range stems {
		if s.Buffer == nil || s.Buffer.Length() == 0 {
			return fmt.Errorf("stem %q has no audio", s.Name)
		}
		if s.Buffer.SampleRate != sampleRate {
			return fmt.Errorf("stem %q sample rate %d does not match session rate %d",
				s.Name, s.Buffer.SampleRate, sampleRate)
		}
		if n := s.Buffer.Length(); n > maxLen {
			maxLen = n
		}
	}

	for _, s := range stems {
		s.Buffer.PadTo(maxLen)
	}

	return nil
}

// RoughMix builds a quick reference mix for analysis: each stem is
// peak-normalized, attenuated, and summed, then the sum is normalized
// with headroom. Good enough for genre detection, not for listening.
func RoughMix(stems []*Stem) (*Buffer, error) {
	if len(stems) == 0 {
		return nil, fmt.Errorf("no stems to mix")
	}

	maxLen := 0
	for _, s := range stems {
		if n := s.Buffer.Length(); n > maxLen {
			maxLen = n
		}
	}

	sum, err := NewBuffer(2, maxLen, stems[0].Buffer.SampleRate)
	if err != nil {
		return nil, err
	}

	for _, s := range stems {
		st := s.Buffer.Stereo()
		peak := st.Peak()
		scale := 0.5
		if peak > epsilon {
			scale = 0.5 / peak
		}
		for ch := 0; ch < 2; ch++ {
			dst := sum.Samples[ch]
			src := st.Samples[ch]
			for i, v := range src {
				dst[i] += v * scale
			}
		}
	}

	if peak := sum.Peak(); peak > epsilon {
		sum.Scale(0.8 / peak)
	}

	return sum, nil
}

// SumStems adds stem buffers sample-for-sample into a new stereo buffer.
// Stems must already be aligned.
func SumStems(stems []*Stem) (*Buffer, error) {
	if len(stems) == 0 {
		return nil, fmt.Errorf("no stems to sum")
	}

	length := stems[0].Buffer.Length()
	sum, err := NewBuffer(2, length, stems[0].Buffer.SampleRate)
	if err != nil {
		return nil, err
	}

	for _, s := range stems {
		st := s.Buffer.Stereo()
		if st.Length() != length {
			return nil, fmt.Errorf("stem %q length %d does not match session length %d",
				s.Name, st.Length(), length)
		}
		for ch := 0; ch < 2; ch++ {
			dst := sum.Samples[ch]
			for i, v := range st.Samples[ch] {
				dst[i] += v
			}
		}
	}

	return sum, nil
}

// MixBuffers sums pre-rendered buses into a single stereo buffer.
func MixBuffers(bufs []*Buffer) (*Buffer, error) {
	if len(bufs) == 0 {
		return nil, fmt.Errorf("no buffers to mix")
	}

	maxLen := 0
	for _, b := range bufs {
		if n := b.Length(); n > maxLen {
			maxLen = n
		}
	}

	out, err := NewBuffer(2, maxLen, bufs[0].SampleRate)
	if err != nil {
		return nil, err
	}

	for _, b := range bufs {
		st := b.Stereo()
		for ch := 0; ch < 2; ch++ {
			dst := out.Samples[ch]
			for i, v := range st.Samples[ch] {
				dst[i] += v
			}
		}
	}

	return out, nil
}
