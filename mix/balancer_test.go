package mix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/presets"
)

func toneStem(name string, role audio.Role, freq, amplitude float64) *audio.Stem {
	samples := make([]float64, 44100)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/44100)
	}
	stem := audio.NewStem(name, audio.NewMonoBuffer(samples, 44100))
	stem.Role = role
	return stem
}

func TestBalancePushesTowardReferenceLevels(t *testing.T) {
	b := NewBalancer()
	kick := toneStem("kick", audio.RoleKick, 60, 0.8)
	bass := toneStem("bass", audio.RoleBass, 80, 0.2)

	decisions, err := b.Balance([]*audio.Stem{kick, bass})
	require.NoError(t, err)
	require.Len(t, decisions, 2)

	// Kick anchors the scale; bass should be pulled up toward its
	// reference offset from the kick RMS
	anchor := kick.RMSDB
	wantBass := anchor + presets.ReferenceLevel(audio.RoleBass) - bass.RMSDB
	assert.InDelta(t, wantBass, bass.GainDB, 1e-9)
}

func TestBalanceClampsExtremeBoost(t *testing.T) {
	b := NewBalancer()
	loud := toneStem("kick", audio.RoleKick, 60, 0.8)
	faint := toneStem("pad", audio.RolePad, 400, 0.0001)

	decisions, err := b.Balance([]*audio.Stem{loud, faint})
	require.NoError(t, err)

	assert.LessOrEqual(t, faint.GainDB, maxBoostDB)
	for _, d := range decisions {
		if d.Stem == "pad" {
			assert.True(t, d.Clamped)
		}
	}
}

func TestBalanceCapsNearSilentStems(t *testing.T) {
	b := NewBalancer()
	loud := toneStem("kick", audio.RoleKick, 60, 0.8)
	ambience := toneStem("fx", audio.RoleFX, 400, 2e-4)

	_, err := b.Balance([]*audio.Stem{loud, ambience})
	require.NoError(t, err)

	assert.Less(t, ambience.RMSDB, quietStemDB)
	assert.LessOrEqual(t, ambience.GainDB, quietBoostCap)
}

func TestBalanceHotStemGetsHeadroom(t *testing.T) {
	b := NewBalancer()
	hot := toneStem("vocal", audio.RoleVocal, 400, 0.99)
	quiet := toneStem("pad", audio.RolePad, 300, 0.1)

	_, err := b.Balance([]*audio.Stem{hot, quiet})
	require.NoError(t, err)

	// After the trim the hot stem's peak must sit at or below -6 dBFS
	assert.LessOrEqual(t, hot.PeakDB+hot.GainDB, hotPeakTarget+1e-9)
}

func TestBalanceAllSilentLeavesGainsFlat(t *testing.T) {
	b := NewBalancer()
	stems := []*audio.Stem{
		audio.NewStem("a", audio.NewMonoBuffer(make([]float64, 4096), 44100)),
		audio.NewStem("b", audio.NewMonoBuffer(make([]float64, 4096), 44100)),
	}

	decisions, err := b.Balance(stems)
	require.NoError(t, err)
	require.Len(t, decisions, 2)

	for _, s := range stems {
		assert.Equal(t, 0.0, s.GainDB)
	}
}

func TestBalanceNoStemsErrors(t *testing.T) {
	b := NewBalancer()
	_, err := b.Balance(nil)
	assert.Error(t, err)
}

func TestBusTrimMovesTowardTarget(t *testing.T) {
	samples := make([]float64, 44100)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*200*float64(i)/44100)
	}
	buf := audio.NewMonoBuffer(samples, 44100)

	gain := BusTrim(buf, -12)
	assert.InDelta(t, -12-buf.RMSDB(), gain, 1e-9)
}

func TestBusTrimClamps(t *testing.T) {
	samples := make([]float64, 44100)
	for i := range samples {
		samples[i] = 1e-4 * math.Sin(2*math.Pi*200*float64(i)/44100)
	}
	quiet := audio.NewMonoBuffer(samples, 44100)

	// Huge boost request clamps to +6
	assert.Equal(t, 6.0, BusTrim(quiet, 0))

	// Silence is left alone
	silent := audio.NewMonoBuffer(make([]float64, 4096), 44100)
	assert.Equal(t, 0.0, BusTrim(silent, -12))
}
