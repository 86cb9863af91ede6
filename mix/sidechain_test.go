package mix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/masking"
)

// duckTestStems builds a kick with hits on a 120 BPM grid and a
// sustained bass, the pair every sidechain rule exists for.
func duckTestStems() (kick, bass *audio.Stem) {
	kickSig := make([]float64, 220500)
	beatLen := 22050
	for beat := 0; beat*beatLen < len(kickSig); beat++ {
		start := beat * beatLen
		for i := 0; i < 4000 && start+i < len(kickSig); i++ {
			env := math.Exp(-float64(i) / 1000.0)
			kickSig[start+i] = 0.9 * env * math.Sin(2*math.Pi*60*float64(i)/44100)
		}
	}
	kick = audio.NewStem("kick", audio.NewMonoBuffer(kickSig, 44100))
	kick.Role = audio.RoleKick

	bassSig := make([]float64, 220500)
	for i := range bassSig {
		bassSig[i] = 0.5 * math.Sin(2*math.Pi*80*float64(i)/44100)
	}
	bass = audio.NewStem("bass", audio.NewMonoBuffer(bassSig, 44100))
	bass.Role = audio.RoleBass
	return kick, bass
}

func TestApplyStaticKickBassRule(t *testing.T) {
	m := NewSidechainMatrix()
	kick, bass := duckTestStems()
	before := bass.Buffer.RMS()
	kickPeak := kick.Buffer.Peak()

	applied, err := m.Apply([]*audio.Stem{kick, bass}, "", nil)
	require.NoError(t, err)
	require.Len(t, applied, 1)

	assert.Equal(t, "kick", applied[0].Source)
	assert.Equal(t, "bass", applied[0].Target)
	assert.Less(t, bass.Buffer.RMS(), before)

	// Kick is never ducked by its own rule
	assert.Equal(t, kickPeak, kick.Buffer.Peak())
}

func TestApplyMaskingRecOverridesStaticRule(t *testing.T) {
	m := NewSidechainMatrix()
	kick, bass := duckTestStems()

	recs := []masking.SidechainRecommendation{{
		Source: "kick", Target: "bass",
		ReductionDB: 5, AttackMs: 5, ReleaseMs: 100,
		LowFreq: 40, HighFreq: 120,
	}}

	applied, err := m.Apply([]*audio.Stem{kick, bass}, "", recs)
	require.NoError(t, err)

	// One pass only: the static rule is skipped for the covered pair
	require.Len(t, applied, 1)
	assert.Equal(t, 5.0, applied[0].Ratio)
	assert.Equal(t, -20.0, applied[0].ThresholdDB)
}

func TestApplyMaskingRatioFloor(t *testing.T) {
	m := NewSidechainMatrix()
	kick, bass := duckTestStems()

	recs := []masking.SidechainRecommendation{{
		Source: "kick", Target: "bass",
		ReductionDB: 0.5, AttackMs: 5, ReleaseMs: 100,
		LowFreq: 40, HighFreq: 120,
	}}

	applied, err := m.Apply([]*audio.Stem{kick, bass}, "", recs)
	require.NoError(t, err)
	require.Len(t, applied, 1)

	assert.Equal(t, minMaskingRatio, applied[0].Ratio)
}

func TestApplyGenreRecipePump(t *testing.T) {
	m := NewSidechainMatrix()
	kick, bass := duckTestStems()
	before := bass.Buffer.RMS()

	applied, err := m.Apply([]*audio.Stem{kick, bass}, "house", nil)
	require.NoError(t, err)
	require.Len(t, applied, 1)

	// House recipe: ratio 2 + 0.25*12, attack 2 ms, release 80 ms
	assert.InDelta(t, 5.0, applied[0].Ratio, 1e-9)
	assert.Equal(t, 2.0, applied[0].AttackMs)
	assert.Equal(t, 80.0, applied[0].ReleaseMs)
	assert.Less(t, bass.Buffer.RMS(), before)
}

func TestApplyUnknownMaskingStemsIgnored(t *testing.T) {
	m := NewSidechainMatrix()
	kick, bass := duckTestStems()

	recs := []masking.SidechainRecommendation{{
		Source: "ghost", Target: "bass",
		ReductionDB: 5, AttackMs: 5, ReleaseMs: 100,
	}}

	applied, err := m.Apply([]*audio.Stem{kick, bass}, "", recs)
	require.NoError(t, err)

	// Falls through to the static rule
	require.Len(t, applied, 1)
	assert.Equal(t, "kick", applied[0].Source)
}

func TestApplyNoApplicableRoles(t *testing.T) {
	m := NewSidechainMatrix()

	pad := audio.NewStem("pad", audio.NewMonoBuffer(make([]float64, 44100), 44100))
	pad.Role = audio.RolePad

	applied, err := m.Apply([]*audio.Stem{pad}, "", nil)
	require.NoError(t, err)
	assert.Empty(t, applied)
}
