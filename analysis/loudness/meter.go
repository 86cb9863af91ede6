package loudness

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/dsp"
)

// SilenceLUFS is reported for material with no gated blocks.
const SilenceLUFS = -70.0

// Metrics holds the loudness measurements for a piece of audio.
type Metrics struct {
	IntegratedLUFS float64 `json:"integrated_lufs"`
	LoudnessRange  float64 `json:"loudness_range"`
	TruePeakDB     float64 `json:"true_peak_db"`
	SamplePeakDB   float64 `json:"sample_peak_db"`
	RMSDB          float64 `json:"rms_db"`
	CrestDB        float64 `json:"crest_db"`
	DynamicRangeDB float64 `json:"dynamic_range_db"`
}

// Meter measures loudness following the ITU-R BS.1770 model:
// K-weighting prefilter, 400 ms gating blocks with 75% overlap, an
// absolute gate at -70 LUFS and a relative gate 10 LU below the
// ungated mean.
type Meter struct {
	sampleRate int
}

// NewMeter creates a meter for the given sample rate.
func NewMeter(sampleRate int) (*Meter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	return &Meter{sampleRate: sampleRate}, nil
}

// kWeight applies the two-stage K-weighting prefilter: a high shelf
// modelling head diffraction and a high-pass removing inaudible lows.
// Filter parameters follow the BS.1770 reference corner frequencies
// and are recomputed for the meter's sample rate.
func (m *Meter) kWeight(signal []float64) ([]float64, error) {
	shelf, err := dsp.NewBiquad(m.sampleRate, dsp.HighShelf, 1681.97, 0.7071, 3.99984)
	if err != nil {
		return nil, err
	}
	highpass, err := dsp.NewBiquad(m.sampleRate, dsp.Highpass, 38.135, 0.5003, 0)
	if err != nil {
		return nil, err
	}

	out := shelf.ProcessBuffer(signal)
	return highpass.ProcessBuffer(out), nil
}

// blockLoudness computes gating-block loudness values with the given
// block and hop sizes over K-weighted channels.
func blockLoudness(channels [][]float64, blockSize, hopSize int) []float64 {
	if len(channels) == 0 || len(channels[0]) < blockSize {
		return nil
	}

	n := len(channels[0])
	numBlocks := (n-blockSize)/hopSize + 1
	blocks := make([]float64, 0, numBlocks)

	for b := 0; b < numBlocks; b++ {
		start := b * hopSize
		power := 0.0
		for _, ch := range channels {
			sum := 0.0
			for i := start; i < start+blockSize; i++ {
				sum += ch[i] * ch[i]
			}
			power += sum / float64(blockSize)
		}
		blocks = append(blocks, -0.691+10.0*math.Log10(math.Max(power, 1e-12)))
	}

	return blocks
}

// IntegratedLUFS measures gated integrated loudness.
func (m *Meter) IntegratedLUFS(buf *audio.Buffer) (float64, error) {
	if buf == nil || buf.Length() == 0 {
		return SilenceLUFS, nil
	}

	st := buf.Stereo()
	weighted := make([][]float64, 2)
	for ch := 0; ch < 2; ch++ {
		w, err := m.kWeight(st.Samples[ch])
		if err != nil {
			return SilenceLUFS, fmt.Errorf("k-weighting: %w", err)
		}
		weighted[ch] = w
	}

	blockSize := int(0.400 * float64(m.sampleRate))
	hopSize := blockSize / 4
	blocks := blockLoudness(weighted, blockSize, hopSize)
	if len(blocks) == 0 {
		// Too short for a gating block; fall back to a single block
		blocks = blockLoudness(weighted, buf.Length(), buf.Length())
		if len(blocks) == 0 {
			return SilenceLUFS, nil
		}
	}

	// Absolute gate
	gated := blocks[:0:0]
	for _, l := range blocks {
		if l > -70.0 {
			gated = append(gated, l)
		}
	}
	if len(gated) == 0 {
		return SilenceLUFS, nil
	}

	// Relative gate: 10 LU below the mean of absolutely gated blocks
	relThreshold := meanLoudness(gated) - 10.0

	final := gated[:0:0]
	for _, l := range gated {
		if l > relThreshold {
			final = append(final, l)
		}
	}
	if len(final) == 0 {
		return SilenceLUFS, nil
	}

	return meanLoudness(final), nil
}

// meanLoudness averages block loudness values in the power domain.
func meanLoudness(blocks []float64) float64 {
	power := 0.0
	for _, l := range blocks {
		power += math.Pow(10.0, (l+0.691)/10.0)
	}
	power /= float64(len(blocks))
	return -0.691 + 10.0*math.Log10(math.Max(power, 1e-12))
}

// LoudnessRange measures LRA from 3 s short-term blocks at a 100 ms
// hop, as the p95-p10 spread of blocks above the absolute gate.
func (m *Meter) LoudnessRange(buf *audio.Buffer) (float64, error) {
	if buf == nil || buf.Length() == 0 {
		return 0, nil
	}

	st := buf.Stereo()
	weighted := make([][]float64, 2)
	for ch := 0; ch < 2; ch++ {
		w, err := m.kWeight(st.Samples[ch])
		if err != nil {
			return 0, fmt.Errorf("k-weighting: %w", err)
		}
		weighted[ch] = w
	}

	blockSize := 3 * m.sampleRate
	hopSize := m.sampleRate / 10
	blocks := blockLoudness(weighted, blockSize, hopSize)

	gated := blocks[:0:0]
	for _, l := range blocks {
		if l > -70.0 {
			gated = append(gated, l)
		}
	}
	if len(gated) < 2 {
		return 0, nil
	}

	sorted := make([]float64, len(gated))
	copy(sorted, gated)
	sortFloats(sorted)

	p10 := stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p95 := stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return p95 - p10, nil
}

// Measure computes the full metric set for a buffer.
func (m *Meter) Measure(buf *audio.Buffer) (*Metrics, error) {
	if buf == nil || buf.Length() == 0 {
		return &Metrics{
			IntegratedLUFS: SilenceLUFS,
			TruePeakDB:     audio.SilenceFloorDB,
			SamplePeakDB:   audio.SilenceFloorDB,
			RMSDB:          audio.SilenceFloorDB,
		}, nil
	}

	lufs, err := m.IntegratedLUFS(buf)
	if err != nil {
		return nil, err
	}
	lra, err := m.LoudnessRange(buf)
	if err != nil {
		return nil, err
	}

	samplePeak := buf.PeakDB()
	truePeak := m.TruePeakDB(buf)
	rmsDB := buf.RMSDB()

	return &Metrics{
		IntegratedLUFS: lufs,
		LoudnessRange:  lra,
		TruePeakDB:     truePeak,
		SamplePeakDB:   samplePeak,
		RMSDB:          rmsDB,
		CrestDB:        samplePeak - rmsDB,
		DynamicRangeDB: m.dynamicRange(buf),
	}, nil
}

// dynamicRange measures the spread between the loud and quiet frame
// RMS levels: 20*log10(p95/p10) over 50 ms frames, clipped to [0, 40].
func (m *Meter) dynamicRange(buf *audio.Buffer) float64 {
	mono := buf.Mono()
	frameSize := m.sampleRate / 20
	if frameSize < 1 || len(mono) < frameSize*2 {
		return 0
	}

	frames := make([]float64, 0, len(mono)/frameSize)
	for start := 0; start+frameSize <= len(mono); start += frameSize {
		sum := 0.0
		for i := start; i < start+frameSize; i++ {
			sum += mono[i] * mono[i]
		}
		frames = append(frames, math.Sqrt(sum/float64(frameSize)))
	}
	if len(frames) < 2 {
		return 0
	}

	sortFloats(frames)
	p10 := stat.Quantile(0.10, stat.Empirical, frames, nil)
	p95 := stat.Quantile(0.95, stat.Empirical, frames, nil)
	if p10 < 1e-10 {
		p10 = 1e-10
	}

	dr := 20.0 * math.Log10(p95/p10)
	return math.Max(0, math.Min(40, dr))
}

func sortFloats(x []float64) {
	sort.Float64s(x)
}
