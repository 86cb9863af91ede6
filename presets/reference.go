package presets

import "github.com/RyanBlaney/sonido-mix/audio"

// referenceLevels are target RMS levels per role, in dB relative to the
// loudest stem in the session. The loudest stem defines 0; a kick
// should then sit 6 dB under it, fx 16 dB under, and so on.
var referenceLevels = map[audio.Role]float64{
	audio.RoleKick:         -6,
	audio.RoleBass:         -8,
	audio.RoleSnare:        -10,
	audio.RoleDrums:        -8,
	audio.RoleVocal:        -8,
	audio.RoleLeadVocal:    -7,
	audio.RoleBackingVocal: -12,
	audio.RoleSynth:        -12,
	audio.RolePad:          -14,
	audio.RoleLead:         -10,
	audio.RoleGuitar:       -11,
	audio.RolePiano:        -11,
	audio.RoleStrings:      -13,
	audio.RoleFX:           -16,
	audio.RoleOther:        -12,
}

// ReferenceLevel returns the target relative RMS for a role.
func ReferenceLevel(role audio.Role) float64 {
	if level, ok := referenceLevels[role]; ok {
		return level
	}
	return referenceLevels[audio.RoleOther]
}
