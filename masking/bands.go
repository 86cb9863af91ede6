package masking

import "github.com/RyanBlaney/sonido-mix/audio"

// CriticalBand is a frequency region where two instruments commonly
// fight for space.
type CriticalBand struct {
	Name string  `json:"name"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Center returns the band's center frequency.
func (cb CriticalBand) Center() float64 {
	return (cb.Low + cb.High) / 2.0
}

var criticalBands = map[string]CriticalBand{
	"kick_fundamental":  {"kick_fundamental", 40, 80},
	"bass_fundamental":  {"bass_fundamental", 80, 200},
	"low_mids":          {"low_mids", 200, 500},
	"vocal_fundamental": {"vocal_fundamental", 200, 800},
	"presence":          {"presence", 2000, 5000},
	"sibilance":         {"sibilance", 5000, 10000},
	"air":               {"air", 10000, 20000},
}

// conflictPair names two roles and the band they typically collide in.
type conflictPair struct {
	roleA audio.Role
	roleB audio.Role
	band  string
}

// conflictPairs is the fixed list of role collisions worth checking.
// Pairs not listed here rarely mask each other enough to treat.
var conflictPairs = []conflictPair{
	{audio.RoleKick, audio.RoleBass, "kick_fundamental"},
	{audio.RoleKick, audio.RoleBass, "bass_fundamental"},
	{audio.RoleVocal, audio.RoleSynth, "vocal_fundamental"},
	{audio.RoleVocal, audio.RoleSynth, "presence"},
	{audio.RoleVocal, audio.RoleGuitar, "presence"},
	{audio.RoleSnare, audio.RoleVocal, "presence"},
}

// rolePriority decides which stem keeps the contested band. Higher
// priority wins; the other stem gets the corrective EQ.
var rolePriority = map[audio.Role]int{
	audio.RoleKick:  5,
	audio.RoleBass:  4,
	audio.RoleVocal: 3,
	audio.RoleSnare: 2,
}

func priorityOf(role audio.Role) int {
	if p, ok := rolePriority[role]; ok {
		return p
	}
	return 1
}
