package mix

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-mix/analysis/loudness"
	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/classify"
	"github.com/RyanBlaney/sonido-mix/dsp"
	"github.com/RyanBlaney/sonido-mix/genre"
	"github.com/RyanBlaney/sonido-mix/logging"
	"github.com/RyanBlaney/sonido-mix/masking"
	"github.com/RyanBlaney/sonido-mix/presets"
)

// Quality floors for the rendered mix. Falling under these does not
// fail the mix, it produces a warning in the report.
const (
	minCrestDB        = 3.0
	minDynamicRangeDB = 6.0

	// Mastering needs headroom; the bounce never leaves here hotter
	// than -1 dBFS
	mixPeakCeiling = 0.891
)

// MixReport records every decision the engine made while rendering.
type MixReport struct {
	Genre      string                 `json:"genre"`
	Tempo      float64                `json:"tempo"`
	Stems      []StemSummary          `json:"stems"`
	Balance    []BalanceDecision      `json:"balance"`
	Sidechains []AppliedSidechain     `json:"sidechains"`
	Masking    *masking.Report        `json:"masking"`
	Buses      []string               `json:"buses"`
	Mono       *dsp.MonoCompatibility `json:"mono"`
	Spectrum   *masking.BalanceReport `json:"spectrum"`
	Metrics    *loudness.Metrics      `json:"metrics"`
	Warnings   []string               `json:"warnings"`
}

// StemSummary is the per-stem slice of the report.
type StemSummary struct {
	Name       string     `json:"name"`
	Role       audio.Role `json:"role"`
	Confidence float64    `json:"confidence"`
	GainDB     float64    `json:"gain_db"`
	PanDegrees float64    `json:"pan_degrees"`
	Bus        Bus        `json:"bus"`
}

// Engine renders a session of raw stems into a balanced stereo mix:
// classification, masking analysis, balancing, per-stem processing,
// sidechaining, bus rendering and master-bus glue.
type Engine struct {
	classifier *classify.Classifier
	analyzer   *masking.Analyzer
	balancer   *Balancer
	buses      *BusProcessor
	logger     logging.Logger
}

// NewEngine creates a mix engine.
func NewEngine() *Engine {
	return &Engine{
		classifier: classify.NewClassifier(),
		analyzer:   masking.NewAnalyzer(),
		balancer:   NewBalancer(),
		buses:      NewBusProcessor(),
		logger:     logging.WithFields(logging.Fields{"component": "mix_engine"}),
	}
}

// Mix renders the stems. The genre result steers panning, sidechain
// pumping and compressor timing; pass nil to let the engine fall back
// to tempo estimation and neutral placement. Stem buffers are modified
// in place.
func (e *Engine) Mix(ctx context.Context, stems []*audio.Stem, detected *genre.Result) (*audio.Buffer, *MixReport, error) {
	if len(stems) == 0 {
		return nil, nil, fmt.Errorf("no stems to mix")
	}

	if err := audio.AlignStems(stems); err != nil {
		return nil, nil, fmt.Errorf("align: %w", err)
	}

	e.classifier.ClassifyAll(stems)

	genreName, tempo := e.resolveContext(stems, detected)
	report := &MixReport{Genre: genreName, Tempo: tempo}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Masking is an enhancement: a failed analysis is logged, not fatal
	maskingReport, err := e.analyzer.Analyze(stems)
	if err != nil {
		e.logger.Warn("masking analysis failed, continuing without it", logging.Fields{
			"error": err.Error(),
		})
		maskingReport = &masking.Report{}
	}
	report.Masking = maskingReport

	decisions, err := e.balancer.Balance(stems)
	if err != nil {
		return nil, nil, fmt.Errorf("balance: %w", err)
	}
	report.Balance = decisions

	if err := e.applyMaskingEQ(stems, maskingReport.EQ); err != nil {
		return nil, nil, fmt.Errorf("masking eq: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if err := e.processStems(stems, tempo, genreName); err != nil {
		return nil, nil, err
	}

	matrix := NewSidechainMatrix()
	applied, err := matrix.Apply(stems, genreName, maskingReport.Sidechains)
	if err != nil {
		return nil, nil, fmt.Errorf("sidechain: %w", err)
	}
	report.Sidechains = applied

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	rendered, err := e.buses.Render(stems)
	if err != nil {
		return nil, nil, err
	}

	bufs := make([]*audio.Buffer, 0, len(rendered))
	for bus, buf := range rendered {
		report.Buses = append(report.Buses, string(bus))
		bufs = append(bufs, buf)
	}

	mixed, err := audio.MixBuffers(bufs)
	if err != nil {
		return nil, nil, fmt.Errorf("bus sum: %w", err)
	}

	if err := e.masterGlue(mixed); err != nil {
		return nil, nil, fmt.Errorf("master glue: %w", err)
	}

	if peak := mixed.Peak(); peak > mixPeakCeiling {
		mixed.Scale(mixPeakCeiling / peak)
	}

	for _, s := range stems {
		report.Stems = append(report.Stems, StemSummary{
			Name:       s.Name,
			Role:       s.Role,
			Confidence: s.Confidence,
			GainDB:     s.GainDB,
			PanDegrees: s.PanDegrees,
			Bus:        BusFor(s.Role),
		})
	}

	if err := e.qualityChecks(mixed, report); err != nil {
		return nil, nil, err
	}

	e.logger.Info("mix rendered", logging.Fields{
		"genre":    genreName,
		"tempo":    tempo,
		"stems":    len(stems),
		"warnings": len(report.Warnings),
	})

	return mixed, report, nil
}

// resolveContext extracts genre and tempo, estimating tempo from the
// drums (or the first stem) when no detection result is available.
func (e *Engine) resolveContext(stems []*audio.Stem, detected *genre.Result) (string, float64) {
	if detected != nil {
		return detected.Genre, detected.Tempo
	}

	source := stems[0]
	for _, s := range stems {
		if s.Role.IsDrum() {
			source = s
			break
		}
	}

	te := genre.NewTempoEstimator(source.Buffer.SampleRate)
	return "", te.Estimate(source.Buffer.Mono())
}

// applyMaskingEQ applies the analyzer's corrective cuts before the
// channel strips run, so role EQ works on already-unmasked material.
func (e *Engine) applyMaskingEQ(stems []*audio.Stem, recs []masking.EQRecommendation) error {
	byName := make(map[string]*audio.Stem, len(stems))
	for _, s := range stems {
		byName[s.Name] = s
	}

	for _, rec := range recs {
		stem, ok := byName[rec.Stem]
		if !ok {
			continue
		}
		for _, ch := range stem.Buffer.Samples {
			eq, err := dsp.NewBiquad(stem.Buffer.SampleRate, dsp.Peaking, rec.Freq, rec.Q, rec.GainDB)
			if err != nil {
				return err
			}
			eq.ProcessInPlace(ch)
		}
	}
	return nil
}

// processStems runs the channel strips across a worker pool. Stems are
// independent at this stage, so they parallelize cleanly.
func (e *Engine) processStems(stems []*audio.Stem, tempo float64, genreName string) error {
	processor := NewStemProcessor(tempo, genreName)

	numWorkers := runtime.NumCPU()
	if numWorkers > len(stems) {
		numWorkers = len(stems)
	}

	jobs := make(chan *audio.Stem, len(stems))
	errs := make(chan error, len(stems))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stem := range jobs {
				if err := processor.Process(stem); err != nil {
					errs <- err
				}
			}
		}()
	}

	for _, s := range stems {
		jobs <- s
	}
	close(jobs)
	wg.Wait()
	close(errs)

	for err := range errs {
		return err
	}
	return nil
}

// masterGlue runs a slow, gentle compressor over the summed buses so
// the mix moves as one piece.
func (e *Engine) masterGlue(buf *audio.Buffer) error {
	glue := dsp.NewCompressor(buf.SampleRate, -12, 1.5, 30, 200)
	glue.MakeupDB = 0.5

	if buf.Channels() == 2 {
		left, right, err := glue.ProcessStereo(buf.Samples[0], buf.Samples[1])
		if err != nil {
			return err
		}
		buf.Samples[0], buf.Samples[1] = left, right
		return nil
	}
	for i, ch := range buf.Samples {
		buf.Samples[i] = glue.ProcessBuffer(ch)
	}
	return nil
}

// qualityChecks measures the finished mix and attaches warnings for
// anything a mix engineer would flag: mono fold-down problems, crushed
// dynamics, spectral imbalance.
func (e *Engine) qualityChecks(mixed *audio.Buffer, report *MixReport) error {
	if mixed.Channels() == 2 {
		mono, err := dsp.CheckMonoCompatibility(mixed.Samples[0], mixed.Samples[1])
		if err != nil {
			return fmt.Errorf("mono check: %w", err)
		}
		report.Mono = mono
		if !mono.Compatible {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("mix loses %.1f dB in mono (correlation %.2f)", -mono.CancellationDB, mono.Correlation))
		}
	}

	meter, err := loudness.NewMeter(mixed.SampleRate)
	if err != nil {
		return fmt.Errorf("loudness meter: %w", err)
	}
	metrics, err := meter.Measure(mixed)
	if err != nil {
		return fmt.Errorf("loudness measure: %w", err)
	}
	report.Metrics = metrics

	if metrics.CrestDB < minCrestDB {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("crest factor %.1f dB is below %.0f dB, transients are crushed", metrics.CrestDB, minCrestDB))
	}
	if metrics.DynamicRangeDB < minDynamicRangeDB {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("dynamic range %.1f dB is below %.0f dB", metrics.DynamicRangeDB, minDynamicRangeDB))
	}

	// Spectral balance is advisory; a mix too short to frame skips it
	spectrum, err := e.analyzer.CheckBalance(mixed)
	if err != nil {
		e.logger.Warn("balance check skipped", logging.Fields{"error": err.Error()})
		return nil
	}
	report.Spectrum = spectrum
	report.Warnings = append(report.Warnings, spectrum.Warnings...)

	return nil
}

// RoleAngle reports where a role would be placed for a genre, for
// callers inspecting placement without running a mix.
func RoleAngle(role audio.Role, genreName string, trackIndex int) float64 {
	return presets.PanningAngle(role, genreName, trackIndex)
}
