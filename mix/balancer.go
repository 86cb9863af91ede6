package mix

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/logging"
	"github.com/RyanBlaney/sonido-mix/presets"
)

// Balancer safety limits. Gains outside these bounds point at broken
// input, not a quiet performance.
const (
	maxCutDB   = -24.0
	maxBoostDB = 12.0

	// Stems this quiet are probably ambience or bleed; boosting them
	// to a reference level would raise the noise floor
	quietStemDB   = -60.0
	quietBoostCap = 6.0
	hotPeakDB     = -3.0
	hotPeakTarget = -6.0
)

// BalanceDecision records the gain chosen for one stem and why.
type BalanceDecision struct {
	Stem    string     `json:"stem"`
	Role    audio.Role `json:"role"`
	GainDB  float64    `json:"gain_db"`
	Clamped bool       `json:"clamped"`
}

// Balancer sets initial stem gains from role reference levels. The
// loudest stem anchors the scale; every other stem is pushed toward
// its role's offset from that anchor.
type Balancer struct {
	logger logging.Logger
}

// NewBalancer creates a balancer.
func NewBalancer() *Balancer {
	return &Balancer{
		logger: logging.WithFields(logging.Fields{"component": "balancer"}),
	}
}

// Balance computes and stores a gain for every stem. Stems must have
// measured levels (MeasureLevels) before calling.
func (b *Balancer) Balance(stems []*audio.Stem) ([]BalanceDecision, error) {
	if len(stems) == 0 {
		return nil, fmt.Errorf("no stems to balance")
	}

	maxRMS := math.Inf(-1)
	for _, s := range stems {
		s.MeasureLevels()
		if s.RMSDB > maxRMS {
			maxRMS = s.RMSDB
		}
	}
	// An all-silent session still renders: leave gains flat and let the
	// meters report the quiet floor downstream
	if maxRMS <= audio.SilenceFloorDB {
		b.logger.Warn("all stems are silent, leaving gains flat")
		decisions := make([]BalanceDecision, 0, len(stems))
		for _, s := range stems {
			s.GainDB = 0
			decisions = append(decisions, BalanceDecision{Stem: s.Name, Role: s.Role})
		}
		return decisions, nil
	}

	decisions := make([]BalanceDecision, 0, len(stems))
	for _, s := range stems {
		gain, clamped := b.gainFor(s, maxRMS)
		s.GainDB = gain

		decisions = append(decisions, BalanceDecision{
			Stem: s.Name, Role: s.Role, GainDB: gain, Clamped: clamped,
		})

		b.logger.Debug("balance decision", logging.Fields{
			"stem":    s.Name,
			"role":    string(s.Role),
			"rms_db":  s.RMSDB,
			"gain_db": gain,
		})
	}

	return decisions, nil
}

func (b *Balancer) gainFor(s *audio.Stem, maxRMS float64) (gain float64, clamped bool) {
	target := maxRMS + presets.ReferenceLevel(s.Role)
	gain = target - s.RMSDB

	if gain > maxBoostDB {
		gain, clamped = maxBoostDB, true
	}
	if gain < maxCutDB {
		gain, clamped = maxCutDB, true
	}

	// Near-silent stems get a modest boost at most
	if s.RMSDB < quietStemDB && gain > quietBoostCap {
		gain, clamped = quietBoostCap, true
	}

	// Hot stems must come down far enough to leave peak headroom
	if s.PeakDB > hotPeakDB {
		ceiling := -(s.PeakDB - hotPeakTarget)
		if gain > ceiling {
			gain, clamped = ceiling, true
		}
	}

	return gain, clamped
}

// BusTrim computes a gain moving a bus toward the target RMS, clamped
// to [-18, +6] dB.
func BusTrim(buf *audio.Buffer, targetRMSDB float64) float64 {
	rms := buf.RMSDB()
	if rms <= audio.SilenceFloorDB {
		return 0
	}
	gain := targetRMSDB - rms
	return math.Max(-18, math.Min(6, gain))
}
