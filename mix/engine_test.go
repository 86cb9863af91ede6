package mix

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mix/analysis/loudness"
	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/genre"
)

// sessionStems builds a small but realistic session: gridded kick,
// sustained bass and a mid-range synth, named so classification is
// deterministic.
func sessionStems() []*audio.Stem {
	n := 220500

	kickSig := make([]float64, n)
	for beat := 0; beat*22050 < n; beat++ {
		start := beat * 22050
		for i := 0; i < 4000 && start+i < n; i++ {
			env := math.Exp(-float64(i) / 1000.0)
			kickSig[start+i] = 0.8 * env * math.Sin(2*math.Pi*60*float64(i)/44100)
		}
	}

	bassSig := make([]float64, n)
	synthSig := make([]float64, n)
	for i := 0; i < n; i++ {
		tsec := float64(i) / 44100
		bassSig[i] = 0.4 * math.Sin(2*math.Pi*80*tsec)
		synthSig[i] = 0.3*math.Sin(2*math.Pi*440*tsec) + 0.2*math.Sin(2*math.Pi*880*tsec)
	}

	return []*audio.Stem{
		audio.NewStem("kick.wav", audio.NewMonoBuffer(kickSig, 44100)),
		audio.NewStem("bass.wav", audio.NewMonoBuffer(bassSig, 44100)),
		audio.NewStem("synth.wav", audio.NewMonoBuffer(synthSig, 44100)),
	}
}

func TestMixProducesStereoOutput(t *testing.T) {
	e := NewEngine()
	detected := &genre.Result{Genre: genre.House, Confidence: 0.8, Tempo: 120}

	out, report, err := e.Mix(context.Background(), sessionStems(), detected)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.NotNil(t, report)

	assert.Equal(t, 2, out.Channels())
	assert.Greater(t, out.Length(), 0)
	assert.False(t, out.IsSilent(-60))
	assert.LessOrEqual(t, out.Peak(), 1.0)
}

func TestMixReportContents(t *testing.T) {
	e := NewEngine()
	detected := &genre.Result{Genre: genre.House, Confidence: 0.8, Tempo: 120}

	_, report, err := e.Mix(context.Background(), sessionStems(), detected)
	require.NoError(t, err)

	assert.Equal(t, genre.House, report.Genre)
	assert.Equal(t, 120.0, report.Tempo)
	require.Len(t, report.Stems, 3)

	roles := make(map[string]audio.Role)
	for _, s := range report.Stems {
		roles[s.Name] = s.Role
		assert.NotEmpty(t, s.Bus)
	}
	assert.Equal(t, audio.RoleKick, roles["kick.wav"])
	assert.Equal(t, audio.RoleBass, roles["bass.wav"])
	assert.Equal(t, audio.RoleSynth, roles["synth.wav"])

	assert.NotNil(t, report.Masking)
	assert.NotNil(t, report.Metrics)
	assert.NotEmpty(t, report.Balance)
	assert.NotEmpty(t, report.Buses)
}

func TestMixNoStems(t *testing.T) {
	e := NewEngine()
	_, _, err := e.Mix(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestMixCancelledContext(t *testing.T) {
	e := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.Mix(ctx, sessionStems(), nil)
	assert.Error(t, err)
}

func TestMixSampleRateMismatch(t *testing.T) {
	e := NewEngine()
	stems := []*audio.Stem{
		audio.NewStem("kick.wav", audio.NewMonoBuffer(make([]float64, 44100), 44100)),
		audio.NewStem("bass.wav", audio.NewMonoBuffer(make([]float64, 48000), 48000)),
	}

	_, _, err := e.Mix(context.Background(), stems, nil)
	assert.Error(t, err)
}

func TestRoleAngleSymmetry(t *testing.T) {
	// Paired roles alternate sides with equal magnitude
	a0 := RoleAngle(audio.RoleGuitar, genre.Rock, 0)
	a1 := RoleAngle(audio.RoleGuitar, genre.Rock, 1)
	assert.InDelta(t, -a0, a1, 1e-9)

	// Low-end anchors stay centered
	assert.Equal(t, 0.0, RoleAngle(audio.RoleKick, genre.House, 0))
	assert.Equal(t, 0.0, RoleAngle(audio.RoleBass, genre.House, 0))
}

func TestMixSurvivesShortStems(t *testing.T) {
	e := NewEngine()

	// Shorter than the masking analysis window: analysis degrades,
	// the render still completes
	short := make([]float64, 1500)
	for i := range short {
		short[i] = 0.5 * math.Sin(2*math.Pi*60*float64(i)/44100)
	}
	stems := []*audio.Stem{
		audio.NewStem("kick.wav", audio.NewMonoBuffer(short, 44100)),
		audio.NewStem("bass.wav", audio.NewMonoBuffer(short, 44100)),
	}

	out, report, err := e.Mix(context.Background(), stems, nil)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, 2, out.Channels())
	require.NotNil(t, report.Masking)
	assert.Empty(t, report.Masking.Conflicts)
}

func TestMixAllSilentStemsRendersSilence(t *testing.T) {
	e := NewEngine()

	stems := []*audio.Stem{
		audio.NewStem("kick.wav", audio.NewMonoBuffer(make([]float64, 220500), 44100)),
		audio.NewStem("bass.wav", audio.NewMonoBuffer(make([]float64, 220500), 44100)),
	}

	out, report, err := e.Mix(context.Background(), stems, nil)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.True(t, out.IsSilent(-100))
	require.NotNil(t, report.Metrics)
	assert.Equal(t, loudness.SilenceLUFS, report.Metrics.IntegratedLUFS)
}
