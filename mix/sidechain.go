package mix

import (
	"fmt"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/dsp"
	"github.com/RyanBlaney/sonido-mix/logging"
	"github.com/RyanBlaney/sonido-mix/masking"
	"github.com/RyanBlaney/sonido-mix/presets"
)

// minMaskingRatio floors masking-derived sidechain ratios so a weak
// conflict still produces an audible duck.
const minMaskingRatio = 3.0

// AppliedSidechain records one executed ducking pass.
type AppliedSidechain struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	ThresholdDB float64 `json:"threshold_db"`
	Ratio       float64 `json:"ratio"`
	AttackMs    float64 `json:"attack_ms"`
	ReleaseMs   float64 `json:"release_ms"`
}

// SidechainMatrix resolves which stems duck which and applies the
// compression. Rules come from three places: the static role table,
// the genre recipe, and masking analysis.
type SidechainMatrix struct {
	logger logging.Logger
}

// NewSidechainMatrix creates the matrix.
func NewSidechainMatrix() *SidechainMatrix {
	return &SidechainMatrix{
		logger: logging.WithFields(logging.Fields{"component": "sidechain"}),
	}
}

// Apply runs every applicable rule over the stems in place and returns
// what was done. Masking recommendations override the static kick/bass
// rule's ratio when present; the genre recipe adds its pumping rules on
// top for whatever it still covers.
func (m *SidechainMatrix) Apply(stems []*audio.Stem, genre string, maskingRecs []masking.SidechainRecommendation) ([]AppliedSidechain, error) {
	byRole := make(map[audio.Role][]*audio.Stem)
	byName := make(map[string]*audio.Stem)
	for _, s := range stems {
		byRole[s.Role] = append(byRole[s.Role], s)
		byName[s.Name] = s
	}

	var applied []AppliedSidechain

	// Masking-derived rules first; they carry measured severities
	ducked := make(map[string]bool)
	for _, rec := range maskingRecs {
		source, okS := byName[rec.Source]
		target, okT := byName[rec.Target]
		if !okS || !okT {
			continue
		}

		ratio := rec.ReductionDB
		if ratio < minMaskingRatio {
			ratio = minMaskingRatio
		}

		rule := presets.SidechainRule{
			Source:      source.Role,
			Target:      target.Role,
			LowFreq:     rec.LowFreq,
			HighFreq:    rec.HighFreq,
			ThresholdDB: -20,
			Ratio:       ratio,
			AttackMs:    rec.AttackMs,
			ReleaseMs:   rec.ReleaseMs,
		}
		if err := m.duck(source, target, rule, &applied); err != nil {
			return nil, err
		}
		ducked[source.Name+"->"+target.Name] = true
	}

	// Genre pumping next. Amount maps to depth: a 0.4 EDM pump is a
	// much harder duck than the 0.25 house groove
	if recipe := presets.SidechainForGenre(genre); recipe.Enabled {
		for _, targetRole := range recipe.Targets {
			rule := presets.SidechainRule{
				Source:      recipe.Source,
				Target:      targetRole,
				LowFreq:     30,
				HighFreq:    200,
				ThresholdDB: -24,
				Ratio:       2 + recipe.Amount*12,
				AttackMs:    recipe.AttackMs,
				ReleaseMs:   recipe.ReleaseMs,
			}
			for _, source := range byRole[recipe.Source] {
				for _, target := range byRole[targetRole] {
					if ducked[source.Name+"->"+target.Name] {
						continue
					}
					if err := m.duck(source, target, rule, &applied); err != nil {
						return nil, err
					}
					ducked[source.Name+"->"+target.Name] = true
				}
			}
		}
	}

	// Static role rules for everything not already covered
	for _, rule := range presets.StaticSidechainRules {
		for _, source := range byRole[rule.Source] {
			for _, target := range byRole[rule.Target] {
				if ducked[source.Name+"->"+target.Name] {
					continue
				}
				if err := m.duck(source, target, rule, &applied); err != nil {
					return nil, err
				}
				ducked[source.Name+"->"+target.Name] = true
			}
		}
	}

	m.logger.Info("sidechain matrix applied", logging.Fields{"rules": len(applied)})
	return applied, nil
}

// duck compresses the target stem keyed on the source stem.
func (m *SidechainMatrix) duck(source, target *audio.Stem, rule presets.SidechainRule, applied *[]AppliedSidechain) error {
	if source == target {
		return nil
	}

	sc := dsp.NewSidechainCompressor(
		target.Buffer.SampleRate, rule.ThresholdDB, rule.Ratio, rule.AttackMs, rule.ReleaseMs)
	sc.LowFreq = rule.LowFreq
	sc.HighFreq = rule.HighFreq

	key := source.Buffer.Mono()
	gain, err := sc.GainCurve(key)
	if err != nil {
		return fmt.Errorf("sidechain %s -> %s: %w", source.Name, target.Name, err)
	}

	for _, ch := range target.Buffer.Samples {
		n := min(len(ch), len(gain))
		for i := 0; i < n; i++ {
			ch[i] *= gain[i]
		}
	}

	*applied = append(*applied, AppliedSidechain{
		Source:      source.Name,
		Target:      target.Name,
		ThresholdDB: rule.ThresholdDB,
		Ratio:       rule.Ratio,
		AttackMs:    rule.AttackMs,
		ReleaseMs:   rule.ReleaseMs,
	})

	m.logger.Debug("ducked", logging.Fields{
		"source": source.Name,
		"target": target.Name,
		"ratio":  rule.Ratio,
	})
	return nil
}
