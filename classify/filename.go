package classify

import (
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-mix/audio"
)

// filenameRule maps filename keywords to a role. Rules are checked in
// order and the first match wins, so more specific instruments come
// before generic ones (e.g. "kick" before "drum").
type filenameRule struct {
	keywords []string
	role     audio.Role
}

var filenameRules = []filenameRule{
	{[]string{"kick", "bd", "kick_drum"}, audio.RoleKick},
	{[]string{"snare", "sd", "clap"}, audio.RoleSnare},
	{[]string{"hihat", "hh", "hat", "cymbal", "ride"}, audio.RoleHihat},
	{[]string{"perc", "shaker", "tamb", "conga", "bongo"}, audio.RolePercussion},
	{[]string{"drum", "drums", "beat", "loop"}, audio.RoleDrums},
	{[]string{"bass", "sub", "808"}, audio.RoleBass},
	{[]string{"vocal", "vox", "voice", "lead_voc"}, audio.RoleVocal},
	{[]string{"backing", "bv", "choir", "harmony"}, audio.RoleBackingVocal},
	{[]string{"synth", "keys", "pad", "chord"}, audio.RoleSynth},
	{[]string{"lead", "arp", "pluck", "melody"}, audio.RoleLead},
	{[]string{"guitar", "gtr"}, audio.RoleGuitar},
	{[]string{"piano", "rhodes", "organ"}, audio.RolePiano},
	{[]string{"fx", "sfx", "riser", "impact", "noise"}, audio.RoleFX},
	{[]string{"string", "violin", "cello"}, audio.RoleStrings},
}

// RoleFromFilename guesses the role from a stem's filename. The
// extension and directory are stripped, matching is case-insensitive
// substring containment. A filename hit always outranks content
// analysis: producers name their exports.
func RoleFromFilename(name string) (audio.Role, bool) {
	base := strings.ToLower(filepath.Base(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	for _, rule := range filenameRules {
		for _, kw := range rule.keywords {
			if strings.Contains(base, kw) {
				return rule.role, true
			}
		}
	}
	return audio.RoleOther, false
}
