package master

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/dsp"
	"github.com/RyanBlaney/sonido-mix/presets"
)

// programMaterial approximates a finished mix: broadband tonal content
// with beat-synced low-end hits and a touch of stereo difference.
func programMaterial(seconds float64, sampleRate int) *audio.Buffer {
	n := int(seconds * float64(sampleRate))
	left := make([]float64, n)
	right := make([]float64, n)

	beatLen := sampleRate / 2
	for i := 0; i < n; i++ {
		tsec := float64(i) / float64(sampleRate)
		v := 0.2*math.Sin(2*math.Pi*80*tsec) +
			0.15*math.Sin(2*math.Pi*440*tsec) +
			0.1*math.Sin(2*math.Pi*2000*tsec) +
			0.05*math.Sin(2*math.Pi*8000*tsec)

		kick := 0.0
		if phase := i % beatLen; phase < 4000 {
			kick = 0.4 * math.Exp(-float64(phase)/1000.0) * math.Sin(2*math.Pi*55*float64(phase)/float64(sampleRate))
		}

		left[i] = v + kick
		right[i] = v + kick + 0.03*math.Sin(2*math.Pi*660*tsec)
	}

	buf, _ := audio.NewStereoBuffer(left, right, sampleRate)
	return buf
}

func TestMasterProChain(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	buf := programMaterial(8, 44100)
	opts := Options{TargetLUFS: -14, CeilingDB: -1, TempoBPM: 120}

	report, err := e.Master(context.Background(), buf, presets.MasteringFor("house"), opts)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.LessOrEqual(t, buf.Peak(), audio.DBToLinear(-1)+1e-9)
	assert.NotEmpty(t, report.Chain)
	require.NotNil(t, report.Metrics)

	// Loudness matching converges near the target
	assert.InDelta(t, -14.0, report.Metrics.IntegratedLUFS, 2.0)
}

func TestMasterTransparentMode(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	buf := programMaterial(8, 44100)
	opts := Options{TargetLUFS: -16, CeilingDB: -1, Transparent: true}

	report, err := e.Master(context.Background(), buf, presets.MasteringPreset{}, opts)
	require.NoError(t, err)

	assert.LessOrEqual(t, buf.Peak(), audio.DBToLinear(-1)+1e-9)
	assert.Contains(t, report.Chain, "transparent")
}

func TestMasterTransparentSilenceStaysSilent(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	buf, _ := audio.NewBuffer(2, 44100*2, 44100)
	opts := Options{TargetLUFS: -14, CeilingDB: -1, Transparent: true}

	report, err := e.Master(context.Background(), buf, presets.MasteringPreset{}, opts)
	require.NoError(t, err)

	assert.True(t, buf.IsSilent(-100))
	assert.Equal(t, 0.0, report.GainDB)
}

func TestMasterRejectsEmptyBuffer(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	_, err = e.Master(context.Background(), nil, presets.MasteringPreset{}, Options{})
	assert.Error(t, err)
}

func TestMasterRejectsRateMismatch(t *testing.T) {
	e, err := NewEngine(44100)
	require.NoError(t, err)

	buf, _ := audio.NewBuffer(2, 48000, 48000)
	_, err = e.Master(context.Background(), buf, presets.MasteringPreset{}, Options{})
	assert.Error(t, err)
}

func TestMultibandCompressorReducesDynamics(t *testing.T) {
	mc := NewMultibandCompressor(44100)
	buf := programMaterial(4, 44100)
	buf.Gain(6)
	crestBefore := buf.PeakDB() - buf.RMSDB()

	settings := presets.MultibandSettings{
		Crossovers: []float64{200, 4000},
		Thresholds: []float64{-18, -20, -22},
		Ratios:     []float64{3, 2.5, 2},
	}
	require.NoError(t, mc.Process(buf, settings))

	crestAfter := buf.PeakDB() - buf.RMSDB()
	assert.Less(t, crestAfter, crestBefore+0.5)
	assert.False(t, buf.IsSilent(-40))
}

func TestMultibandRejectsMismatchedSettings(t *testing.T) {
	mc := NewMultibandCompressor(44100)
	buf := programMaterial(1, 44100)

	err := mc.Process(buf, presets.MultibandSettings{
		Crossovers: []float64{200, 4000},
		Thresholds: []float64{-18},
		Ratios:     []float64{3, 2.5, 2},
	})
	assert.Error(t, err)
}

func sideRMS(t *testing.T, buf *audio.Buffer) float64 {
	t.Helper()
	_, side, err := dsp.EncodeMS(buf.Samples[0], buf.Samples[1])
	require.NoError(t, err)

	sum := 0.0
	for _, v := range side {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(side)))
}

func TestStereoImagerWidening(t *testing.T) {
	si := NewStereoImager(44100)
	buf := programMaterial(2, 44100)
	before := sideRMS(t, buf)

	require.NoError(t, si.Process(buf, 150))

	assert.Greater(t, sideRMS(t, buf), before)
}
