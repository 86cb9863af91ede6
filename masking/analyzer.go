package masking

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-mix/analysis/spectral"
	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/logging"
)

// materialSeverity: conflicts below this are not worth treating.
const materialSeverity = 0.3

// Conflict records spectral masking between two stems in one band.
type Conflict struct {
	StemA    string       `json:"stem_a"`
	StemB    string       `json:"stem_b"`
	RoleA    audio.Role   `json:"role_a"`
	RoleB    audio.Role   `json:"role_b"`
	Band     CriticalBand `json:"band"`
	Severity float64      `json:"severity"`
}

// EQRecommendation suggests a corrective cut on one stem.
type EQRecommendation struct {
	Stem   string  `json:"stem"`
	Freq   float64 `json:"freq"`
	GainDB float64 `json:"gain_db"`
	Q      float64 `json:"q"`
	Reason string  `json:"reason"`
}

// SidechainRecommendation suggests ducking one stem from another.
type SidechainRecommendation struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	ReductionDB float64 `json:"reduction_db"`
	AttackMs    float64 `json:"attack_ms"`
	ReleaseMs   float64 `json:"release_ms"`
	LowFreq     float64 `json:"low_freq"`
	HighFreq    float64 `json:"high_freq"`
}

// Report is the full masking analysis output.
type Report struct {
	Conflicts  []Conflict                `json:"conflicts"`
	EQ         []EQRecommendation        `json:"eq"`
	Sidechains []SidechainRecommendation `json:"sidechains"`
}

// Analyzer measures pairwise spectral masking between stems.
type Analyzer struct {
	stft       *spectral.STFT
	windowSize int
	hopSize    int
	logger     logging.Logger
}

// NewAnalyzer creates a masking analyzer with the standard analysis
// resolution.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		stft:       spectral.NewSTFT(),
		windowSize: 2048,
		hopSize:    1024,
		logger:     logging.WithFields(logging.Fields{"component": "masking"}),
	}
}

// Analyze runs every applicable conflict pair over the stems and
// derives EQ and sidechain recommendations from the material conflicts.
func (a *Analyzer) Analyze(stems []*audio.Stem) (*Report, error) {
	if len(stems) < 2 {
		return &Report{}, nil
	}

	// Cache one STFT per stem; several pairs may reuse it
	spectra := make(map[string]*spectral.STFTResult, len(stems))
	byRole := make(map[audio.Role][]*audio.Stem)
	for _, stem := range stems {
		byRole[stem.Role] = append(byRole[stem.Role], stem)
	}

	report := &Report{}

	for _, pair := range conflictPairs {
		band, ok := criticalBands[pair.band]
		if !ok {
			continue
		}

		for _, stemA := range byRole[pair.roleA] {
			for _, stemB := range byRole[pair.roleB] {
				severity, err := a.pairSeverity(stemA, stemB, band, spectra)
				if err != nil {
					return nil, fmt.Errorf("masking %s vs %s: %w", stemA.Name, stemB.Name, err)
				}
				if severity <= materialSeverity {
					continue
				}

				conflict := Conflict{
					StemA:    stemA.Name,
					StemB:    stemB.Name,
					RoleA:    stemA.Role,
					RoleB:    stemB.Role,
					Band:     band,
					Severity: severity,
				}
				report.Conflicts = append(report.Conflicts, conflict)
				a.recommend(report, conflict, stemA, stemB)
			}
		}
	}

	a.logger.Info("masking analysis complete", logging.Fields{
		"conflicts":  len(report.Conflicts),
		"eq_recs":    len(report.EQ),
		"sidechains": len(report.Sidechains),
	})

	return report, nil
}

// pairSeverity measures how much two stems occupy the band at the same
// time: the mean of their envelope correlation and their overlap
// (elementwise minimum of the normalized envelopes). Symmetric in
// stem order.
func (a *Analyzer) pairSeverity(stemA, stemB *audio.Stem, band CriticalBand, spectra map[string]*spectral.STFTResult) (float64, error) {
	envA, err := a.bandEnvelope(stemA, band, spectra)
	if err != nil {
		return 0, err
	}
	envB, err := a.bandEnvelope(stemB, band, spectra)
	if err != nil {
		return 0, err
	}

	n := min(len(envA), len(envB))
	if n < 2 {
		return 0, nil
	}
	envA, envB = envA[:n], envB[:n]

	corr := stat.Correlation(envA, envB, nil)
	if math.IsNaN(corr) {
		corr = 0
	}

	overlap := 0.0
	for i := range envA {
		overlap += math.Min(envA[i], envB[i])
	}
	overlap /= float64(n)

	return math.Max(0, (corr+overlap)/2.0), nil
}

// bandEnvelope returns the stem's per-frame energy inside the band,
// normalized by its own maximum.
func (a *Analyzer) bandEnvelope(stem *audio.Stem, band CriticalBand, spectra map[string]*spectral.STFTResult) ([]float64, error) {
	result, ok := spectra[stem.Name]
	if !ok {
		mono := stem.Buffer.Mono()
		// Too short to frame: no envelope, the pair scores zero
		if len(mono) < a.windowSize {
			a.logger.Debug("stem too short for masking analysis, skipping", logging.Fields{
				"stem":    stem.Name,
				"samples": len(mono),
			})
			return nil, nil
		}
		var err error
		result, err = a.stft.Compute(mono, a.windowSize, a.hopSize, stem.Buffer.SampleRate, spectral.NewHannWindow(a.windowSize))
		if err != nil {
			return nil, err
		}
		spectra[stem.Name] = result
	}

	env := result.FrameBandEnergies(band.Low, band.High)

	peak := 0.0
	for _, v := range env {
		if v > peak {
			peak = v
		}
	}
	if peak > 1e-20 {
		for i := range env {
			env[i] /= peak
		}
	}
	return env, nil
}

// recommend turns a material conflict into treatment: the lower
// priority stem gets a cut proportional to severity, and kick/bass
// collisions additionally get a sidechain suggestion.
func (a *Analyzer) recommend(report *Report, c Conflict, stemA, stemB *audio.Stem) {
	loser := stemB
	if priorityOf(stemA.Role) < priorityOf(stemB.Role) {
		loser = stemA
	}

	report.EQ = append(report.EQ, EQRecommendation{
		Stem:   loser.Name,
		Freq:   c.Band.Center(),
		GainDB: -2.0 * c.Severity,
		Q:      2.0,
		Reason: fmt.Sprintf("masked by %s in %s", otherName(c, loser.Name), c.Band.Name),
	})

	kickBass := (c.RoleA == audio.RoleKick && c.RoleB == audio.RoleBass) ||
		(c.RoleA == audio.RoleBass && c.RoleB == audio.RoleKick)
	if kickBass {
		source, target := stemA, stemB
		if source.Role != audio.RoleKick {
			source, target = stemB, stemA
		}
		report.Sidechains = append(report.Sidechains, SidechainRecommendation{
			Source:      source.Name,
			Target:      target.Name,
			ReductionDB: 3.0 * c.Severity,
			AttackMs:    5.0,
			ReleaseMs:   100.0,
			LowFreq:     c.Band.Low,
			HighFreq:    c.Band.High,
		})
	}
}

func otherName(c Conflict, name string) string {
	if c.StemA == name {
		return c.StemB
	}
	return c.StemA
}
