package presets

import "github.com/RyanBlaney/sonido-mix/dsp"

// MultibandSettings parameterize the mastering multiband compressor.
// Thresholds and ratios have one entry per band (len(crossovers)+1).
type MultibandSettings struct {
	Crossovers []float64 `json:"crossovers"`
	Ratios     []float64 `json:"ratios"`
	Thresholds []float64 `json:"thresholds"`
}

// SaturationSettings set the tape and tube drive amounts.
type SaturationSettings struct {
	Tape float64 `json:"tape"`
	Tube float64 `json:"tube"`
}

// LimiterSettings set the final limiter ceiling and release.
type LimiterSettings struct {
	CeilingDB float64 `json:"ceiling_db"`
	ReleaseMs float64 `json:"release_ms"`
}

// MasteringPreset is a complete genre-tuned mastering chain.
type MasteringPreset struct {
	Genre       string             `json:"genre"`
	TargetLUFS  float64            `json:"target_lufs"`
	CeilingDBTP float64            `json:"ceiling_dbtp"`
	EQ          []dsp.EQBand       `json:"eq"`
	Multiband   MultibandSettings  `json:"multiband"`
	Saturation  SaturationSettings `json:"saturation"`
	StereoWidth float64            `json:"stereo_width"`
	Limiter     LimiterSettings    `json:"limiter"`
}

var masteringPresets = map[string]MasteringPreset{
	"house": {
		Genre:       "house",
		TargetLUFS:  -9.0,
		CeilingDBTP: -0.5,
		EQ: []dsp.EQBand{
			{Freq: 50, GainDB: 1.5, Q: 0.7, Type: dsp.LowShelfBand},
			{Freq: 200, GainDB: -1.0, Q: 1.5, Type: dsp.BellBand},
			{Freq: 3500, GainDB: 1.5, Q: 1.5, Type: dsp.BellBand},
			{Freq: 10000, GainDB: 2.0, Q: 0.7, Type: dsp.HighShelfBand},
		},
		Multiband: MultibandSettings{
			Crossovers: []float64{80, 400, 2500, 10000},
			Ratios:     []float64{2.5, 2.0, 2.0, 2.0, 1.5},
			Thresholds: []float64{-12, -14, -14, -14, -16},
		},
		Saturation:  SaturationSettings{Tape: 0.20, Tube: 0.15},
		StereoWidth: 120,
		Limiter:     LimiterSettings{CeilingDB: -0.5, ReleaseMs: 80},
	},
	"techno": {
		Genre:       "techno",
		TargetLUFS:  -8.0,
		CeilingDBTP: -0.3,
		EQ: []dsp.EQBand{
			{Freq: 50, GainDB: 2.0, Q: 0.7, Type: dsp.LowShelfBand},
			{Freq: 200, GainDB: -1.5, Q: 1.5, Type: dsp.BellBand},
			{Freq: 4000, GainDB: 2.0, Q: 1.5, Type: dsp.BellBand},
			{Freq: 12000, GainDB: 2.0, Q: 0.7, Type: dsp.HighShelfBand},
		},
		Multiband: MultibandSettings{
			Crossovers: []float64{80, 400, 2000, 8000},
			Ratios:     []float64{3.0, 2.5, 2.5, 2.0, 1.5},
			Thresholds: []float64{-10, -12, -12, -14, -16},
		},
		Saturation:  SaturationSettings{Tape: 0.25, Tube: 0.20},
		StereoWidth: 125,
		Limiter:     LimiterSettings{CeilingDB: -0.3, ReleaseMs: 50},
	},
	"edm": {
		Genre:       "edm",
		TargetLUFS:  -8.0,
		CeilingDBTP: -0.5,
		EQ: []dsp.EQBand{
			{Freq: 50, GainDB: 1.5, Q: 0.7, Type: dsp.LowShelfBand},
			{Freq: 200, GainDB: -1.5, Q: 1.5, Type: dsp.BellBand},
			{Freq: 4000, GainDB: 2.0, Q: 1.5, Type: dsp.BellBand},
			{Freq: 12000, GainDB: 2.5, Q: 0.7, Type: dsp.HighShelfBand},
		},
		Multiband: MultibandSettings{
			Crossovers: []float64{100, 500, 2000, 8000},
			Ratios:     []float64{3.0, 2.0, 2.5, 2.0, 1.5},
			Thresholds: []float64{-12, -15, -14, -15, -18},
		},
		Saturation:  SaturationSettings{Tape: 0.25, Tube: 0.15},
		StereoWidth: 130,
		Limiter:     LimiterSettings{CeilingDB: -0.5, ReleaseMs: 50},
	},
	"hiphop": {
		Genre:       "hiphop",
		TargetLUFS:  -10.0,
		CeilingDBTP: -0.5,
		EQ: []dsp.EQBand{
			{Freq: 60, GainDB: 2.5, Q: 0.7, Type: dsp.LowShelfBand},
			{Freq: 150, GainDB: -1.0, Q: 1.5, Type: dsp.BellBand},
			{Freq: 3000, GainDB: 1.5, Q: 1.5, Type: dsp.BellBand},
			{Freq: 10000, GainDB: 2.0, Q: 0.7, Type: dsp.HighShelfBand},
		},
		Multiband: MultibandSettings{
			Crossovers: []float64{80, 400, 2500, 10000},
			Ratios:     []float64{3.5, 2.5, 2.0, 2.0, 1.5},
			Thresholds: []float64{-10, -14, -15, -14, -16},
		},
		Saturation:  SaturationSettings{Tape: 0.30, Tube: 0.20},
		StereoWidth: 115,
		Limiter:     LimiterSettings{CeilingDB: -0.5, ReleaseMs: 80},
	},
	"pop": {
		Genre:       "pop",
		TargetLUFS:  -10.0,
		CeilingDBTP: -1.0,
		EQ: []dsp.EQBand{
			{Freq: 60, GainDB: 1.0, Q: 0.7, Type: dsp.LowShelfBand},
			{Freq: 250, GainDB: -1.0, Q: 1.5, Type: dsp.BellBand},
			{Freq: 3500, GainDB: 1.5, Q: 1.5, Type: dsp.BellBand},
			{Freq: 12000, GainDB: 2.5, Q: 0.7, Type: dsp.HighShelfBand},
		},
		Multiband: MultibandSettings{
			Crossovers: []float64{100, 500, 3000, 10000},
			Ratios:     []float64{2.5, 2.0, 2.0, 2.0, 1.5},
			Thresholds: []float64{-14, -16, -15, -14, -16},
		},
		Saturation:  SaturationSettings{Tape: 0.15, Tube: 0.10},
		StereoWidth: 120,
		Limiter:     LimiterSettings{CeilingDB: -1.0, ReleaseMs: 100},
	},
	"rock": {
		Genre:       "rock",
		TargetLUFS:  -12.0,
		CeilingDBTP: -1.0,
		EQ: []dsp.EQBand{
			{Freq: 80, GainDB: 1.0, Q: 0.7, Type: dsp.LowShelfBand},
			{Freq: 300, GainDB: -1.0, Q: 1.5, Type: dsp.BellBand},
			{Freq: 3000, GainDB: 1.5, Q: 1.5, Type: dsp.BellBand},
			{Freq: 10000, GainDB: 1.5, Q: 0.7, Type: dsp.HighShelfBand},
		},
		Multiband: MultibandSettings{
			Crossovers: []float64{100, 400, 2500, 8000},
			Ratios:     []float64{2.5, 2.0, 2.0, 2.0, 1.5},
			Thresholds: []float64{-16, -18, -16, -16, -18},
		},
		Saturation:  SaturationSettings{Tape: 0.25, Tube: 0.15},
		StereoWidth: 110,
		Limiter:     LimiterSettings{CeilingDB: -1.0, ReleaseMs: 150},
	},
	"rnb": {
		Genre:       "rnb",
		TargetLUFS:  -12.0,
		CeilingDBTP: -1.0,
		EQ: []dsp.EQBand{
			{Freq: 80, GainDB: 1.5, Q: 0.7, Type: dsp.LowShelfBand},
			{Freq: 200, GainDB: -0.5, Q: 1.5, Type: dsp.BellBand},
			{Freq: 2500, GainDB: 1.0, Q: 1.5, Type: dsp.BellBand},
			{Freq: 8000, GainDB: 1.5, Q: 0.7, Type: dsp.HighShelfBand},
		},
		Multiband: MultibandSettings{
			Crossovers: []float64{100, 400, 2000, 8000},
			Ratios:     []float64{2.0, 2.0, 1.8, 1.8, 1.5},
			Thresholds: []float64{-18, -18, -17, -18, -20},
		},
		Saturation:  SaturationSettings{Tape: 0.20, Tube: 0.25},
		StereoWidth: 110,
		Limiter:     LimiterSettings{CeilingDB: -1.0, ReleaseMs: 150},
	},
	"acoustic": {
		Genre:       "acoustic",
		TargetLUFS:  -14.0,
		CeilingDBTP: -1.5,
		EQ: []dsp.EQBand{
			{Freq: 100, GainDB: 0.5, Q: 0.7, Type: dsp.LowShelfBand},
			{Freq: 250, GainDB: -0.5, Q: 1.5, Type: dsp.BellBand},
			{Freq: 3000, GainDB: 1.0, Q: 1.5, Type: dsp.BellBand},
			{Freq: 10000, GainDB: 1.0, Q: 0.7, Type: dsp.HighShelfBand},
		},
		Multiband: MultibandSettings{
			Crossovers: []float64{100, 500, 2500, 10000},
			Ratios:     []float64{1.8, 1.5, 1.5, 1.5, 1.3},
			Thresholds: []float64{-20, -20, -18, -20, -22},
		},
		Saturation:  SaturationSettings{Tape: 0.10, Tube: 0.05},
		StereoWidth: 105,
		Limiter:     LimiterSettings{CeilingDB: -1.5, ReleaseMs: 200},
	},
}

// MasteringFor returns the mastering preset for a genre, falling back
// to pop for anything unknown.
func MasteringFor(genre string) MasteringPreset {
	if p, ok := masteringPresets[genre]; ok {
		return p
	}
	return masteringPresets["pop"]
}
