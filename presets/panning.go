package presets

import "github.com/RyanBlaney/sonido-mix/audio"

// Panning strategies place roles in the stereo field per genre family.
// Angles run -60 (full left) to +60 (full right).
var panningStrategies = map[string]map[audio.Role]float64{
	"electronic": {
		// Wide synths, centered bass/kick
		audio.RoleBass:       0,
		audio.RoleKick:       0,
		audio.RoleSnare:      0,
		audio.RoleHihat:      25,
		audio.RolePercussion: -30,
		audio.RoleSynth:      15,
		audio.RolePad:        -15,
		audio.RoleLead:       0,
		audio.RoleVocal:      0,
		audio.RoleFX:         45,
	},
	"rock": {
		// Rhythm guitars hard panned, drums natural
		audio.RoleBass:         0,
		audio.RoleKick:         0,
		audio.RoleSnare:        0,
		audio.RoleHihat:        -15,
		audio.RoleGuitar:       40,
		audio.RolePiano:        -20,
		audio.RoleVocal:        0,
		audio.RoleBackingVocal: 35,
	},
	"hiphop": {
		// Heavy center focus
		audio.RoleBass:       0,
		audio.RoleKick:       0,
		audio.RoleSnare:      0,
		audio.RoleHihat:      15,
		audio.RolePercussion: -20,
		audio.RoleSynth:      10,
		audio.RolePiano:      -10,
		audio.RoleVocal:      0,
		audio.RoleFX:         40,
	},
}

// strategyForGenre maps genre names onto the three placement families.
func strategyForGenre(genre string) map[audio.Role]float64 {
	switch genre {
	case "rock", "acoustic":
		return panningStrategies["rock"]
	case "hiphop", "rnb":
		return panningStrategies["hiphop"]
	default:
		return panningStrategies["electronic"]
	}
}

// PanningAngle returns the pan position for a role within a genre.
// Duplicate instruments alternate sides: odd track indexes flip the
// sign so two guitars or two backing vocals spread symmetrically.
func PanningAngle(role audio.Role, genre string, trackIndex int) float64 {
	strategy := strategyForGenre(genre)

	lookupRole := role
	if role == audio.RoleLeadVocal {
		lookupRole = audio.RoleVocal
	}

	angle, ok := strategy[lookupRole]
	if !ok {
		angle = InstrumentFor(role).PanDegrees
	}

	if trackIndex%2 == 1 && angle != 0 {
		angle = -angle
	}
	return angle
}
