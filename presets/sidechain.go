package presets

import "github.com/RyanBlaney/sonido-mix/audio"

// SidechainRule describes one ducking relationship: when the source
// role plays, the target role's level dips. A zero LowFreq/HighFreq
// pair means the full-band signal keys the compressor.
type SidechainRule struct {
	Source      audio.Role `json:"source"`
	Target      audio.Role `json:"target"`
	LowFreq     float64    `json:"low_freq"`
	HighFreq    float64    `json:"high_freq"`
	ThresholdDB float64    `json:"threshold_db"`
	Ratio       float64    `json:"ratio"`
	AttackMs    float64    `json:"attack_ms"`
	ReleaseMs   float64    `json:"release_ms"`
}

// StaticSidechainRules are the genre-independent ducking defaults.
// The kick always carves space in the bass; vocals push sustained
// instruments down a touch; the snare keeps its crack through vocals.
var StaticSidechainRules = []SidechainRule{
	{audio.RoleKick, audio.RoleBass, 40, 120, -20, 10, 5, 100},
	{audio.RoleKick, audio.RoleSynth, 40, 150, -22, 6, 5, 120},
	{audio.RoleVocal, audio.RoleSynth, 0, 0, -25, 3, 10, 150},
	{audio.RoleVocal, audio.RoleGuitar, 0, 0, -25, 3, 10, 150},
	{audio.RoleVocal, audio.RolePiano, 0, 0, -26, 2.5, 15, 180},
	{audio.RoleSnare, audio.RoleVocal, 2000, 5000, -18, 4, 3, 60},
}

// GenreSidechain is the genre-level pumping recipe: dance genres lean
// on kick-keyed ducking much harder than the rest.
type GenreSidechain struct {
	Enabled   bool         `json:"enabled"`
	Source    audio.Role   `json:"source"`
	Targets   []audio.Role `json:"targets"`
	Amount    float64      `json:"amount"`
	AttackMs  float64      `json:"attack_ms"`
	ReleaseMs float64      `json:"release_ms"`
}

var genreSidechains = map[string]GenreSidechain{
	"house": {
		Enabled: true, Source: audio.RoleKick,
		Targets: []audio.Role{audio.RoleBass},
		Amount:  0.25, AttackMs: 2, ReleaseMs: 80,
	},
	"techno": {
		Enabled: true, Source: audio.RoleKick,
		Targets: []audio.Role{audio.RoleBass, audio.RoleSynth},
		Amount:  0.35, AttackMs: 1, ReleaseMs: 40,
	},
	"edm": {
		Enabled: true, Source: audio.RoleKick,
		Targets: []audio.Role{audio.RoleBass, audio.RoleSynth},
		Amount:  0.4, AttackMs: 1, ReleaseMs: 50,
	},
	"hiphop": {
		Enabled: true, Source: audio.RoleKick,
		Targets: []audio.Role{audio.RoleBass},
		Amount:  0.3, AttackMs: 5, ReleaseMs: 100,
	},
}

// SidechainForGenre returns the genre pumping recipe; genres without
// one return a disabled zero value.
func SidechainForGenre(genre string) GenreSidechain {
	return genreSidechains[genre]
}
