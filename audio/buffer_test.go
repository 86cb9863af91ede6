package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampBuffer(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / float64(n)
	}
	return out
}

func TestDBConversionRoundTrip(t *testing.T) {
	for _, db := range []float64{-60, -12, -6, 0, 6} {
		assert.InDelta(t, db, LinearToDB(DBToLinear(db)), 1e-9)
	}

	assert.InDelta(t, -6.02, LinearToDB(0.5), 0.01)
	assert.Equal(t, SilenceFloorDB, LinearToDB(0))
}

func TestNewBufferValidation(t *testing.T) {
	buf, err := NewBuffer(2, 100, 44100)
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Channels())
	assert.Equal(t, 100, buf.Length())

	_, err = NewBuffer(0, 100, 44100)
	assert.Error(t, err)
	_, err = NewBuffer(3, 100, 44100)
	assert.Error(t, err)
}

func TestMonoDownmixAverages(t *testing.T) {
	left := []float64{1, 0, 0.5}
	right := []float64{0, 1, 0.5}
	buf, err := NewStereoBuffer(left, right, 44100)
	require.NoError(t, err)

	mono := buf.Mono()
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, mono)
}

func TestStereoDuplicatesMono(t *testing.T) {
	buf := NewMonoBuffer([]float64{0.1, 0.2}, 44100)
	st := buf.Stereo()

	require.Equal(t, 2, st.Channels())
	assert.Equal(t, st.Samples[0], st.Samples[1])

	// Already-stereo buffers come back as-is
	two, _ := NewStereoBuffer([]float64{1}, []float64{0}, 44100)
	assert.Same(t, two, two.Stereo())
}

func TestGainAndScale(t *testing.T) {
	buf := NewMonoBuffer([]float64{0.5}, 44100)
	buf.Gain(6.02)
	assert.InDelta(t, 1.0, buf.Samples[0][0], 0.01)

	buf.Scale(0.5)
	assert.InDelta(t, 0.5, buf.Samples[0][0], 0.01)
}

func TestClip(t *testing.T) {
	buf := NewMonoBuffer([]float64{-2, -0.5, 0.5, 2}, 44100)
	buf.Clip(1.0)
	assert.Equal(t, []float64{-1, -0.5, 0.5, 1}, buf.Samples[0])
}

func TestPeakAndRMS(t *testing.T) {
	samples := make([]float64, 44100)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
	}
	buf := NewMonoBuffer(samples, 44100)

	assert.InDelta(t, 0.5, buf.Peak(), 0.001)
	assert.InDelta(t, 0.5/math.Sqrt2, buf.RMS(), 0.001)
	assert.InDelta(t, 3.01, buf.PeakDB()-buf.RMSDB(), 0.05)
}

func TestPadTo(t *testing.T) {
	buf := NewMonoBuffer(rampBuffer(10), 44100)
	buf.PadTo(20)

	assert.Equal(t, 20, buf.Length())
	assert.Equal(t, 0.0, buf.Samples[0][15])

	// Shorter targets leave the buffer alone
	buf.PadTo(5)
	assert.Equal(t, 20, buf.Length())
}

func TestAlignStemsPadsToLongest(t *testing.T) {
	a := NewStem("a", NewMonoBuffer(rampBuffer(100), 44100))
	b := NewStem("b", NewMonoBuffer(rampBuffer(250), 44100))

	require.NoError(t, AlignStems([]*Stem{a, b}))

	assert.Equal(t, 250, a.Buffer.Length())
	assert.Equal(t, 250, b.Buffer.Length())
}

func TestAlignStemsRejectsMixedRates(t *testing.T) {
	a := NewStem("a", NewMonoBuffer(rampBuffer(100), 44100))
	b := NewStem("b", NewMonoBuffer(rampBuffer(100), 48000))

	assert.Error(t, AlignStems([]*Stem{a, b}))
}

func TestAlignStemsRejectsEmptyStem(t *testing.T) {
	a := NewStem("a", NewMonoBuffer(nil, 44100))
	assert.Error(t, AlignStems([]*Stem{a}))
}

func TestRoughMixNormalizesWithHeadroom(t *testing.T) {
	loud := make([]float64, 44100)
	quiet := make([]float64, 44100)
	for i := range loud {
		loud[i] = 0.9 * math.Sin(2*math.Pi*100*float64(i)/44100)
		quiet[i] = 0.05 * math.Sin(2*math.Pi*500*float64(i)/44100)
	}

	stems := []*Stem{
		NewStem("loud", NewMonoBuffer(loud, 44100)),
		NewStem("quiet", NewMonoBuffer(quiet, 44100)),
	}

	mix, err := RoughMix(stems)
	require.NoError(t, err)

	assert.Equal(t, 2, mix.Channels())
	assert.InDelta(t, 0.8, mix.Peak(), 1e-9)
}

func TestSumStemsRequiresAlignment(t *testing.T) {
	a := NewStem("a", NewMonoBuffer(rampBuffer(100), 44100))
	b := NewStem("b", NewMonoBuffer(rampBuffer(250), 44100))

	_, err := SumStems([]*Stem{a, b})
	assert.Error(t, err)

	require.NoError(t, AlignStems([]*Stem{a, b}))
	sum, err := SumStems([]*Stem{a, b})
	require.NoError(t, err)
	assert.Equal(t, 250, sum.Length())
}

func TestMixBuffersSums(t *testing.T) {
	a := NewMonoBuffer([]float64{0.25, 0.25}, 44100)
	b := NewMonoBuffer([]float64{0.25, -0.25}, 44100)

	out, err := MixBuffers([]*Buffer{a, b})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Channels())
	assert.InDelta(t, 0.5, out.Samples[0][0], 1e-12)
	assert.InDelta(t, 0.0, out.Samples[0][1], 1e-12)
}

func TestIsSilent(t *testing.T) {
	silent := NewMonoBuffer(make([]float64, 100), 44100)
	assert.True(t, silent.IsSilent(-90))

	tone := NewMonoBuffer([]float64{0.1}, 44100)
	assert.False(t, tone.IsSilent(-90))
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, RoleKick.IsDrum())
	assert.True(t, RoleHihat.IsDrum())
	assert.False(t, RoleBass.IsDrum())

	assert.True(t, RoleVocal.IsVocal())
	assert.True(t, RoleBackingVocal.IsVocal())
	assert.False(t, RoleSynth.IsVocal())
}
