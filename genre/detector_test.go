package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mix/audio"
)

func TestIsKnownGenre(t *testing.T) {
	assert.True(t, IsKnownGenre(House))
	assert.True(t, IsKnownGenre(Acoustic))
	assert.False(t, IsKnownGenre("polka"))
	assert.False(t, IsKnownGenre(""))
}

func TestTempoOverrideRescuesAmbiguousHouse(t *testing.T) {
	hd := NewHeuristicDetector()

	r := &Result{Genre: Pop, Confidence: 0.30, Tempo: 124}
	hd.applyTempoOverride(r)

	assert.Equal(t, House, r.Genre)
	assert.Equal(t, 0.45, r.Confidence)
	assert.True(t, r.Overridden)
}

func TestTempoOverrideRescuesAmbiguousTechno(t *testing.T) {
	hd := NewHeuristicDetector()

	r := &Result{Genre: Rock, Confidence: 0.30, Tempo: 135}
	hd.applyTempoOverride(r)

	assert.Equal(t, Techno, r.Genre)
	assert.Equal(t, 0.40, r.Confidence)
	assert.True(t, r.Overridden)
}

func TestTempoOverrideLeavesConfidentCalls(t *testing.T) {
	hd := NewHeuristicDetector()

	r := &Result{Genre: Pop, Confidence: 0.55, Tempo: 124}
	hd.applyTempoOverride(r)

	assert.Equal(t, Pop, r.Genre)
	assert.False(t, r.Overridden)
}

func TestTempoOverrideLeavesElectronicWinners(t *testing.T) {
	hd := NewHeuristicDetector()

	r := &Result{Genre: EDM, Confidence: 0.20, Tempo: 124}
	hd.applyTempoOverride(r)

	assert.Equal(t, EDM, r.Genre)
	assert.Equal(t, 0.20, r.Confidence)
	assert.False(t, r.Overridden)
}

func TestTempoOverrideIgnoresNonDanceTempo(t *testing.T) {
	hd := NewHeuristicDetector()

	r := &Result{Genre: Acoustic, Confidence: 0.25, Tempo: 95}
	hd.applyTempoOverride(r)

	assert.Equal(t, Acoustic, r.Genre)
	assert.False(t, r.Overridden)
}

func TestDetectFourOnFloorTrack(t *testing.T) {
	hd := NewHeuristicDetector()

	signal := kickPattern(128, 20, 44100)
	result, err := hd.Detect(audio.NewMonoBuffer(signal, 44100))
	require.NoError(t, err)

	assert.Contains(t, []string{House, Techno, EDM}, result.Genre)
	assert.InDelta(t, 128.0, result.Tempo, 4.0)
	assert.NotNil(t, result.Spectral)
	assert.NotNil(t, result.Dynamics)
	assert.NotEmpty(t, result.Scores)
}

func TestDetectEmptyBuffer(t *testing.T) {
	hd := NewHeuristicDetector()

	_, err := hd.Detect(nil)
	assert.Error(t, err)

	_, err = hd.Detect(audio.NewMonoBuffer(nil, 44100))
	assert.Error(t, err)
}

func TestBestScoreDeterministicTieBreak(t *testing.T) {
	scores := map[string]float64{House: 0.3, Techno: 0.3, Pop: 0.1}

	// KnownGenres order lists house before techno
	winner, best := bestScore(scores)
	assert.Equal(t, House, winner)
	assert.Equal(t, 0.3, best)
}
