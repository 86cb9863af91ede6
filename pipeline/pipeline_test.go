package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mix/analysis/loudness"
	"github.com/RyanBlaney/sonido-mix/audio"
)

// sessionStems builds a minimal session with deterministic filenames:
// a gridded kick, a sustained bass and a chordal synth.
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
		synthSig[i] = 0.25*math.Sin(2*math.Pi*440*tsec) + 0.15*math.Sin(2*math.Pi*660*tsec)
	}

	return []*audio.Stem{
		audio.NewStem("kick.wav", audio.NewMonoBuffer(kickSig, 44100)),
		audio.NewStem("bass.wav", audio.NewMonoBuffer(bassSig, 44100)),
		audio.NewStem("synth.wav", audio.NewMonoBuffer(synthSig, 44100)),
	}
}

func TestRunEndToEnd(t *testing.T) {
	p := New()

	out, report, err := p.Run(context.Background(), sessionStems(), Options{Genre: "house"})
	require.NoError(t, err)
	require.NotNil(t, out)
	require.NotNil(t, report)

	assert.Equal(t, 2, out.Channels())
	assert.False(t, out.IsSilent(-60))

	// Ceiling comes from the resolved platform
	ceiling := audio.DBToLinear(report.Platform.CeilingDB)
	assert.LessOrEqual(t, out.Peak(), ceiling+1e-9)

	require.NotNil(t, report.Genre)
	assert.Equal(t, "house", report.Genre.Genre)
	assert.Equal(t, 1.0, report.Genre.Confidence)
	require.NotNil(t, report.Mix)
	require.NotNil(t, report.Mastering)
	assert.NotEmpty(t, report.Platform.Name)

	stages := make([]string, 0, len(report.Timings))
	for _, tm := range report.Timings {
		stages = append(stages, tm.Stage)
	}
	assert.Equal(t, []string{"detect", "mix", "master"}, stages)
}

func TestRunPlatformOverride(t *testing.T) {
	p := New()

	_, report, err := p.Run(context.Background(), sessionStems(), Options{
		Genre:    "house",
		Platform: "club",
	})
	require.NoError(t, err)

	assert.Equal(t, "club", report.Platform.Name)
}

func TestRunTransparentMode(t *testing.T) {
	p := New()

	_, report, err := p.Run(context.Background(), sessionStems(), Options{
		Genre:       "house",
		Transparent: true,
		TargetLUFS:  -16,
	})
	require.NoError(t, err)

	assert.Contains(t, report.Mastering.Chain, "transparent")
}

func TestRunAllSilentStemsProducesQuietFloorReport(t *testing.T) {
	p := New()

	stems := []*audio.Stem{
		audio.NewStem("kick.wav", audio.NewMonoBuffer(make([]float64, 220500), 44100)),
		audio.NewStem("bass.wav", audio.NewMonoBuffer(make([]float64, 220500), 44100)),
		audio.NewStem("synth.wav", audio.NewMonoBuffer(make([]float64, 220500), 44100)),
	}

	out, report, err := p.Run(context.Background(), stems, Options{Genre: "house"})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.True(t, out.IsSilent(-100))

	require.NotNil(t, report.Mastering)
	metrics := report.Mastering.Metrics
	require.NotNil(t, metrics)
	assert.Equal(t, loudness.SilenceLUFS, metrics.IntegratedLUFS)
	assert.False(t, math.IsNaN(metrics.TruePeakDB))
	assert.False(t, math.IsNaN(metrics.LoudnessRange))
	assert.False(t, math.IsNaN(metrics.CrestDB))
}

func TestRunRejectsBadOverrides(t *testing.T) {
	p := New()
	stems := sessionStems()

	_, _, err := p.Run(context.Background(), stems, Options{Genre: "polka"})
	assert.Error(t, err)

	_, _, err = p.Run(context.Background(), stems, Options{Platform: "myspace"})
	assert.Error(t, err)
}

func TestRunRejectsEmptySession(t *testing.T) {
	p := New()
	_, _, err := p.Run(context.Background(), nil, Options{})
	assert.Error(t, err)
}

func TestRunHonorsCancellation(t *testing.T) {
	p := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Run(ctx, sessionStems(), Options{Genre: "house"})
	assert.Error(t, err)
}
