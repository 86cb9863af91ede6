package audio

// Role identifies the musical function of a stem within the mix.
type Role string

const (
	RoleKick         Role = "kick"
	RoleSnare        Role = "snare"
	RoleHihat        Role = "hihat"
	RolePercussion   Role = "percussion"
	RoleDrums        Role = "drums"
	RoleBass         Role = "bass"
	RoleVocal        Role = "vocal"
	RoleLeadVocal    Role = "lead_vocal"
	RoleBackingVocal Role = "backing_vocal"
	RoleSynth        Role = "synth"
	RolePad          Role = "pad"
	RoleLead         Role = "lead"
	RoleGuitar       Role = "guitar"
	RolePiano        Role = "piano"
	RoleStrings      Role = "strings"
	RoleFX           Role = "fx"
	RoleOther        Role = "other"
)

// IsDrum reports whether the role routes to the drum bus.
func (r Role) IsDrum() bool {
	switch r {
	case RoleKick, RoleSnare, RoleHihat, RolePercussion, RoleDrums:
		return true
	}
	return false
}

// IsVocal reports whether the role routes to the vocal bus.
func (r Role) IsVocal() bool {
	switch r {
	case RoleVocal, RoleLeadVocal, RoleBackingVocal:
		return true
	}
	return false
}

// Stem is a single named track plus everything the engine learns about it.
type Stem struct {
	Name       string  `json:"name"`
	Role       Role    `json:"role"`
	Confidence float64 `json:"confidence"`
	Buffer     *Buffer `json:"-"`

	// Measured levels, filled in during analysis
	RMSDB  float64 `json:"rms_db"`
	PeakDB float64 `json:"peak_db"`

	// Decisions applied during mixing
	GainDB     float64 `json:"gain_db"`
	PanDegrees float64 `json:"pan_degrees"`
	TrackIndex int     `json:"track_index"`
}

// NewStem wraps a buffer with a name. Role is assigned by classification.
func NewStem(name string, buf *Buffer) *Stem {
	return &Stem{
		Name:   name,
		Role:   RoleOther,
		Buffer: buf,
	}
}

// MeasureLevels snapshots RMS and peak in dBFS.
func (s *Stem) MeasureLevels() {
	s.RMSDB = s.Buffer.RMSDB()
	s.PeakDB = s.Buffer.PeakDB()
}
