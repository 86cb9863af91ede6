package masking

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mix/analysis/spectral"
	"github.com/RyanBlaney/sonido-mix/audio"
)

// BalanceBand is one region of the full-mix tonal balance check.
type BalanceBand struct {
	Name  string  `json:"name"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Ratio float64 `json:"ratio"`
}

// BalanceReport summarizes the spectral balance of a summed mix and
// flags regions that are out of proportion.
type BalanceReport struct {
	Bands    []BalanceBand `json:"bands"`
	Warnings []string      `json:"warnings"`
}

var balanceBands = []struct {
	name string
	low  float64
	high float64
}{
	{"sub", 20, 60},
	{"bass", 60, 250},
	{"low_mids", 250, 500},
	{"mids", 500, 2000},
	{"high_mids", 2000, 4000},
	{"highs", 4000, 10000},
	{"air", 10000, 20000},
}

// CheckBalance measures band energy ratios of a mix and emits warnings
// for common tonal problems.
func (a *Analyzer) CheckBalance(mix *audio.Buffer) (*BalanceReport, error) {
	mono := mix.Mono()
	if len(mono) < a.windowSize {
		return nil, fmt.Errorf("mix too short for balance check")
	}

	result, err := a.stft.Compute(mono, a.windowSize, a.hopSize, mix.SampleRate, spectral.NewHannWindow(a.windowSize))
	if err != nil {
		return nil, err
	}

	total := result.TotalEnergy()
	report := &BalanceReport{}
	ratios := make(map[string]float64, len(balanceBands))

	nyquist := float64(mix.SampleRate) / 2.0
	for _, b := range balanceBands {
		ratio := 0.0
		if total > 0 {
			ratio = result.BandEnergy(b.low, math.Min(b.high, nyquist)) / total
		}
		ratios[b.name] = ratio
		report.Bands = append(report.Bands, BalanceBand{
			Name: b.name, Low: b.low, High: b.high, Ratio: ratio,
		})
	}

	lowEnd := ratios["sub"] + ratios["bass"]
	mids := ratios["low_mids"] + ratios["mids"]
	highs := ratios["high_mids"] + ratios["highs"]

	if lowEnd < 0.15 {
		report.Warnings = append(report.Warnings, "mix sounds thin: low end below 15% of energy")
	}
	if lowEnd > 0.35 {
		report.Warnings = append(report.Warnings, "mix sounds muddy: low end above 35% of energy")
	}
	if mids < 0.20 {
		report.Warnings = append(report.Warnings, "mix lacks body: mids below 20% of energy")
	}
	if highs < 0.10 {
		report.Warnings = append(report.Warnings, "mix sounds dull: highs below 10% of energy")
	}
	if highs > 0.25 {
		report.Warnings = append(report.Warnings, "mix sounds harsh: highs above 25% of energy")
	}

	return report, nil
}
