package presets

import "github.com/RyanBlaney/sonido-mix/audio"

// EQSetting is one band of an instrument's corrective EQ.
type EQSetting struct {
	GainDB float64 `json:"gain_db"`
	Q      float64 `json:"q"`
	Freq   float64 `json:"freq"`
}

// CompressionSettings parameterize a stem compressor.
type CompressionSettings struct {
	ThresholdDB float64 `json:"threshold_db"`
	Ratio       float64 `json:"ratio"`
	AttackMs    float64 `json:"attack_ms"`
	ReleaseMs   float64 `json:"release_ms"`
}

// InstrumentPreset is the processing recipe for one stem role:
// six corrective EQ bands, compression, a high-pass corner, optional
// width and de-essing. Panning angles run -60 (full left) to +60
// (full right).
type InstrumentPreset struct {
	Name         string              `json:"name"`
	GainDB       float64             `json:"gain_db"`
	PanDegrees   float64             `json:"pan_degrees"`
	EQ           [6]EQSetting        `json:"eq"`
	Compression  CompressionSettings `json:"compression"`
	HighpassFreq float64             `json:"highpass_freq"`
	StereoWidth  float64             `json:"stereo_width"` // 0 means leave width alone
	DeEss        bool                `json:"deess"`
	DeEssFreq    float64             `json:"deess_freq"`
}

var instrumentPresets = map[audio.Role]InstrumentPreset{
	audio.RoleBass: {
		Name:       "Bass Guitar/Synth Bass",
		GainDB:     -3,
		PanDegrees: 0,
		EQ: [6]EQSetting{
			{2, 0.7, 60},     // sub boost
			{-3, 0.5, 250},   // cut mud
			{0, 0.8, 800},
			{1, 1.0, 2000},   // add click
			{-2, 0.5, 5000},
			{-4, 0.3, 12000}, // roll off highs
		},
		Compression:  CompressionSettings{-18, 4, 10, 80},
		HighpassFreq: 30,
	},
	audio.RoleKick: {
		Name:       "Kick Drum",
		GainDB:     0,
		PanDegrees: 0,
		EQ: [6]EQSetting{
			{4, 1.0, 50},   // sub punch
			{-4, 0.8, 200}, // box removal
			{-2, 0.5, 500},
			{3, 1.5, 3000}, // beater click
			{0, 0.7, 6000},
			{-6, 0.3, 12000},
		},
		Compression:  CompressionSettings{-12, 6, 3, 50},
		HighpassFreq: 25,
	},
	audio.RoleSnare: {
		Name:       "Snare Drum",
		GainDB:     -2,
		PanDegrees: 0,
		EQ: [6]EQSetting{
			{-4, 0.6, 60},
			{2, 0.8, 200},  // body
			{-2, 1.0, 500},
			{3, 1.2, 2500}, // crack
			{2, 0.8, 5000}, // snap
			{1, 0.5, 10000},
		},
		Compression:  CompressionSettings{-14, 5, 5, 40},
		HighpassFreq: 60,
	},
	audio.RoleDrums: {
		Name:       "Full Drum Kit / Drum Bus",
		GainDB:     0,
		PanDegrees: 0,
		EQ: [6]EQSetting{
			{2, 0.8, 60},
			{-2, 0.6, 300},
			{0, 0.8, 800},
			{2, 1.0, 3000},
			{1, 0.7, 8000},
			{0, 0.5, 12000},
		},
		Compression:  CompressionSettings{-16, 4, 8, 60},
		HighpassFreq: 30,
	},
	audio.RoleHihat: {
		Name:       "Hi-Hats / Cymbals",
		GainDB:     -4,
		PanDegrees: 25,
		EQ: [6]EQSetting{
			{-8, 0.5, 60}, // kill sub
			{-3, 0.7, 250},
			{1, 1.0, 1500},
			{3, 1.2, 4000}, // presence
			{4, 0.8, 8000}, // brightness
			{3, 0.5, 14000},
		},
		Compression:  CompressionSettings{-15, 4, 5, 60},
		HighpassFreq: 300,
	},
	audio.RolePercussion: {
		Name:       "Percussion / Shakers",
		GainDB:     -5,
		PanDegrees: -30,
		EQ: [6]EQSetting{
			{-6, 0.5, 80},
			{-2, 0.6, 200},
			{1, 0.8, 1000},
			{2, 1.0, 3500},
			{3, 0.8, 7000},
			{2, 0.6, 12000},
		},
		Compression:  CompressionSettings{-18, 3, 8, 70},
		HighpassFreq: 150,
	},
	audio.RoleSynth: {
		Name:       "Synth Chords / Pads",
		GainDB:     -2,
		PanDegrees: 15,
		EQ: [6]EQSetting{
			{-6, 0.7, 80},
			{-2, 0.5, 200},
			{2, 1.2, 1000}, // body
			{3, 1.5, 3000}, // presence
			{2, 0.8, 8000},
			{1, 0.5, 15000},
		},
		Compression:  CompressionSettings{-20, 3, 15, 100},
		HighpassFreq: 100,
		StereoWidth:  120,
	},
	audio.RoleLead: {
		Name:       "Lead Synth / Lead Instrument",
		GainDB:     -5,
		PanDegrees: -15,
		EQ: [6]EQSetting{
			{-5, 0.7, 80},
			{1, 0.8, 400},
			{2, 1.0, 1200},
			{3, 1.2, 2500}, // forward
			{4, 0.8, 6000}, // clarity
			{2, 0.6, 12000},
		},
		Compression:  CompressionSettings{-22, 3, 20, 150},
		HighpassFreq: 120,
	},
	audio.RolePad: {
		Name:       "Ambient Pads / Atmospheres",
		GainDB:     -6,
		PanDegrees: 0,
		EQ: [6]EQSetting{
			{-8, 0.6, 100},
			{-3, 0.5, 300},
			{1, 0.8, 800},
			{2, 1.0, 2500},
			{3, 0.6, 6000},
			{2, 0.4, 12000},
		},
		Compression:  CompressionSettings{-24, 2, 30, 200},
		HighpassFreq: 150,
		StereoWidth:  140,
	},
	audio.RoleVocal: {
		Name:       "Lead Vocal",
		GainDB:     0,
		PanDegrees: 0,
		EQ: [6]EQSetting{
			{-6, 0.7, 80},  // rumble cut
			{-2, 0.8, 250}, // mud cut
			{1, 0.6, 800},
			{3, 1.0, 3000}, // presence
			{2, 0.8, 5000},
			{1, 0.5, 12000},
		},
		Compression:  CompressionSettings{-16, 4, 10, 80},
		HighpassFreq: 80,
		DeEss:        true,
		DeEssFreq:    6000,
	},
	audio.RoleBackingVocal: {
		Name:       "Backing Vocals",
		GainDB:     -4,
		PanDegrees: 35,
		EQ: [6]EQSetting{
			{-8, 0.6, 100},
			{-3, 0.7, 300},
			{0, 0.8, 800},
			{2, 1.0, 2500},
			{1, 0.8, 5000},
			{0, 0.5, 10000},
		},
		Compression:  CompressionSettings{-18, 3, 15, 100},
		HighpassFreq: 120,
		DeEss:        true,
		DeEssFreq:    6000,
	},
	audio.RoleGuitar: {
		Name:       "Electric Guitar",
		GainDB:     -3,
		PanDegrees: 20,
		EQ: [6]EQSetting{
			{-6, 0.6, 80},
			{-1, 0.7, 250},
			{2, 1.0, 800},
			{3, 1.2, 2500},
			{2, 0.8, 5000},
			{0, 0.5, 10000},
		},
		Compression:  CompressionSettings{-18, 3, 15, 100},
		HighpassFreq: 80,
	},
	audio.RolePiano: {
		Name:       "Piano / Keys",
		GainDB:     -2,
		PanDegrees: -10,
		EQ: [6]EQSetting{
			{-2, 0.7, 60},
			{-1, 0.6, 250},
			{1, 0.8, 800},
			{2, 1.0, 2500},
			{2, 0.7, 6000},
			{1, 0.5, 12000},
		},
		Compression:  CompressionSettings{-22, 2, 25, 150},
		HighpassFreq: 40,
	},
	audio.RoleFX: {
		Name:       "Sound Effects / FX",
		GainDB:     -6,
		PanDegrees: 45,
		EQ: [6]EQSetting{
			{-4, 0.6, 100},
			{-2, 0.5, 300},
			{1, 0.8, 1000},
			{2, 1.0, 3000},
			{3, 0.7, 7000},
			{2, 0.5, 14000},
		},
		Compression:  CompressionSettings{-20, 2, 15, 100},
		HighpassFreq: 100,
		StereoWidth:  150,
	},
	audio.RoleStrings: {
		Name:       "Strings / Orchestra",
		GainDB:     -4,
		PanDegrees: 10,
		EQ: [6]EQSetting{
			{-4, 0.6, 80},
			{-2, 0.5, 250},
			{1, 0.7, 700},
			{2, 0.9, 2000},
			{3, 0.7, 6000},
			{2, 0.5, 12000},
		},
		Compression:  CompressionSettings{-24, 2, 30, 200},
		HighpassFreq: 80,
		StereoWidth:  130,
	},
	audio.RoleOther: {
		Name:       "Other / Unknown",
		GainDB:     -4,
		PanDegrees: 0,
		EQ: [6]EQSetting{
			{-2, 0.7, 80},
			{-1, 0.6, 300},
			{0, 0.8, 800},
			{1, 1.0, 2500},
			{1, 0.7, 6000},
			{0, 0.5, 12000},
		},
		Compression:  CompressionSettings{-20, 2, 20, 100},
		HighpassFreq: 60,
	},
}

// InstrumentFor returns the processing preset for a role. Unknown and
// vocal-alias roles map to sensible defaults rather than erroring.
func InstrumentFor(role audio.Role) InstrumentPreset {
	switch role {
	case audio.RoleLeadVocal:
		role = audio.RoleVocal
	}
	if p, ok := instrumentPresets[role]; ok {
		return p
	}
	return instrumentPresets[audio.RoleOther]
}
