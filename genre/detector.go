package genre

import (
	"fmt"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/logging"
)

// Genre names used across presets and detection.
const (
	House    = "house"
	Techno   = "techno"
	EDM      = "edm"
	HipHop   = "hiphop"
	Pop      = "pop"
	Rock     = "rock"
	RnB      = "rnb"
	Acoustic = "acoustic"
)

// KnownGenres lists every genre the engine has presets for.
var KnownGenres = []string{House, Techno, EDM, HipHop, Pop, Rock, RnB, Acoustic}

// IsKnownGenre reports whether presets exist for the given name.
func IsKnownGenre(name string) bool {
	for _, g := range KnownGenres {
		if g == name {
			return true
		}
	}
	return false
}

// Result holds a detection outcome plus the evidence behind it.
type Result struct {
	Genre      string             `json:"genre"`
	Confidence float64            `json:"confidence"`
	Tempo      float64            `json:"tempo"`
	Scores     map[string]float64 `json:"scores"`
	Spectral   *SpectralProfile   `json:"spectral"`
	Dynamics   *DynamicsProfile   `json:"dynamics"`
	Overridden bool               `json:"overridden"`
}

// Detector infers the genre of a track. The heuristic detector ships
// with the engine; a model-backed implementation can slot in behind
// the same interface.
type Detector interface {
	Detect(buf *audio.Buffer) (*Result, error)
}

// HeuristicDetector scores genres from tempo, spectral balance,
// dynamics and rhythm regularity with additive per-genre rules.
type HeuristicDetector struct {
	logger logging.Logger
}

// NewHeuristicDetector creates the default detector.
func NewHeuristicDetector() *HeuristicDetector {
	return &HeuristicDetector{
		logger: logging.WithFields(logging.Fields{"component": "genre"}),
	}
}

// Detect analyzes the buffer and returns the winning genre.
func (hd *HeuristicDetector) Detect(buf *audio.Buffer) (*Result, error) {
	if buf == nil || buf.Length() == 0 {
		return nil, fmt.Errorf("empty buffer")
	}

	mono := buf.Mono()
	sampleRate := buf.SampleRate

	tempoEst := NewTempoEstimator(sampleRate)
	tempo := tempoEst.Estimate(mono)
	fourOnFloor := tempoEst.FourOnFloorScore(mono, tempo)

	prof := newProfiler(sampleRate)
	spectralProfile, err := prof.spectralProfile(mono)
	if err != nil {
		return nil, fmt.Errorf("spectral profile: %w", err)
	}
	dynamics := prof.dynamicsProfile(mono)

	scores := scoreGenres(tempo, fourOnFloor, spectralProfile, dynamics)

	// Normalize so scores read as a probability-like distribution
	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total > 0 {
		for g := range scores {
			scores[g] /= total
		}
	}

	winner, confidence := bestScore(scores)

	result := &Result{
		Genre:      winner,
		Confidence: confidence,
		Tempo:      tempo,
		Scores:     scores,
		Spectral:   spectralProfile,
		Dynamics:   dynamics,
	}

	hd.applyTempoOverride(result)

	hd.logger.Info("genre detected", logging.Fields{
		"genre":      result.Genre,
		"confidence": result.Confidence,
		"tempo":      result.Tempo,
		"overridden": result.Overridden,
	})

	return result, nil
}

// applyTempoOverride rescues low-confidence calls in the dance tempo
// ranges: ambiguous 118-130 BPM material is almost always house,
// 128-145 BPM techno.
func (hd *HeuristicDetector) applyTempoOverride(r *Result) {
	electronic := r.Genre == House || r.Genre == Techno || r.Genre == EDM
	if electronic || r.Confidence >= 0.40 {
		return
	}

	switch {
	case r.Tempo >= 118 && r.Tempo <= 130:
		r.Genre = House
		r.Confidence = 0.45
		r.Overridden = true
	case r.Tempo >= 128 && r.Tempo <= 145:
		r.Genre = Techno
		r.Confidence = 0.40
		r.Overridden = true
	}
}

func bestScore(scores map[string]float64) (string, float64) {
	winner := Pop
	best := -1.0
	// Iterate the fixed genre list so ties resolve deterministically
	for _, g := range KnownGenres {
		if s := scores[g]; s > best {
			best = s
			winner = g
		}
	}
	if best < 0 {
		best = 0
	}
	return winner, best
}

// scoreGenres applies the additive rule tables.
func scoreGenres(tempo, fourOnFloor float64, sp *SpectralProfile, dyn *DynamicsProfile) map[string]float64 {
	scores := make(map[string]float64, len(KnownGenres))

	// house: tight tempo window, solid low end, lean mids, regular kick
	s := 0.0
	switch {
	case tempo >= 120 && tempo <= 128:
		s += 0.50
	case tempo >= 118 && tempo <= 130:
		s += 0.40
	case tempo >= 115 && tempo <= 133:
		s += 0.25
	}
	if sp.LowEndRatio > 0.15 {
		s += 0.20
	}
	if sp.MidRatio < 0.45 {
		s += 0.15
	}
	if dyn.TransientDensity > 0.25 {
		s += 0.10
	}
	if fourOnFloor > 0.4 {
		s += 0.15
	}
	scores[House] = s

	// techno: faster, heavier low end, leaner mids
	s = 0.0
	switch {
	case tempo >= 128 && tempo <= 140:
		s += 0.45
	case tempo >= 125 && tempo <= 145:
		s += 0.35
	}
	if sp.LowEndRatio > 0.18 {
		s += 0.20
	}
	if sp.MidRatio < 0.40 {
		s += 0.15
	}
	if fourOnFloor > 0.4 {
		s += 0.15
	}
	scores[Techno] = s

	// edm: wide tempo range, crushed dynamics, bright top
	s = 0.0
	switch {
	case tempo >= 128 && tempo <= 150:
		s += 0.40
	case tempo >= 125 && tempo <= 160:
		s += 0.30
	}
	if sp.LowEndRatio > 0.20 {
		s += 0.20
	}
	if dyn.CrestDB < 6 {
		s += 0.15
	}
	if sp.HighRatio > 0.10 {
		s += 0.15
	}
	scores[EDM] = s

	// hiphop: half-time tempo, prominent sub
	s = 0.0
	switch {
	case tempo >= 75 && tempo <= 95:
		s += 0.45
	case tempo >= 70 && tempo <= 100:
		s += 0.35
	case tempo >= 65 && tempo <= 110:
		s += 0.15
	}
	if sp.SubRatio > 0.06 {
		s += 0.25
	}
	if sp.LowEndRatio > 0.25 {
		s += 0.15
	}
	scores[HipHop] = s

	// pop: mid-tempo, balanced spectrum, bright
	s = 0.0
	if tempo >= 100 && tempo <= 125 {
		s += 0.30
	}
	if sp.LowEndRatio > 0.12 && sp.LowEndRatio < 0.28 {
		s += 0.20
	}
	if sp.MidRatio > 0.25 && sp.MidRatio < 0.45 {
		s += 0.15
	}
	if sp.Brightness > 0.4 {
		s += 0.15
	}
	if sp.HighMidRatio > 0.08 {
		s += 0.15
	}
	scores[Pop] = s

	// rock: guitar mids, real drums, wide dynamics, little sub
	s = 0.0
	if tempo >= 100 && tempo <= 145 {
		s += 0.10
	}
	switch {
	case sp.MidRatio > 0.50:
		s += 0.30
	case sp.MidRatio > 0.45:
		s += 0.15
	}
	switch {
	case dyn.CrestDB > 7:
		s += 0.25
	case dyn.CrestDB > 5:
		s += 0.10
	}
	switch {
	case dyn.DynamicRangeDB > 18:
		s += 0.20
	case dyn.DynamicRangeDB > 14:
		s += 0.10
	}
	if sp.SubRatio < 0.04 {
		s += 0.15
	}
	scores[Rock] = s

	// rnb: slow tempo, warm balance, smooth top
	s = 0.0
	switch {
	case tempo >= 65 && tempo <= 95:
		s += 0.40
	case tempo >= 60 && tempo <= 100:
		s += 0.25
	}
	if sp.LowEndRatio > 0.15 && sp.LowEndRatio < 0.28 {
		s += 0.20
	}
	if sp.Brightness < 0.6 {
		s += 0.15
	}
	if sp.HighMidRatio > 0.08 {
		s += 0.15
	}
	scores[RnB] = s

	// acoustic: unprocessed dynamics, no sub, sparse transients
	s = 0.0
	switch {
	case dyn.DynamicRangeDB > 20:
		s += 0.35
	case dyn.DynamicRangeDB > 16:
		s += 0.20
	}
	switch {
	case dyn.CrestDB > 8:
		s += 0.30
	case dyn.CrestDB > 6:
		s += 0.15
	}
	if sp.SubRatio < 0.03 {
		s += 0.20
	}
	if dyn.TransientDensity < 0.25 {
		s += 0.15
	}
	scores[Acoustic] = s

	return scores
}
