package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/genre"
	"github.com/RyanBlaney/sonido-mix/logging"
	"github.com/RyanBlaney/sonido-mix/master"
	"github.com/RyanBlaney/sonido-mix/mix"
	"github.com/RyanBlaney/sonido-mix/presets"
)

// Options steer one end-to-end run. Zero values mean automatic: detect
// the genre, pick the platform from the mix loudness, use the
// platform's loudness target.
type Options struct {
	Genre       string  `json:"genre"`
	Platform    string  `json:"platform"`
	TargetLUFS  float64 `json:"target_lufs"` // 0 uses the platform target
	Transparent bool    `json:"transparent"`
}

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Report is the full session report: every stage's decisions plus
// timings.
type Report struct {
	Genre     *genre.Result          `json:"genre"`
	Mix       *mix.MixReport         `json:"mix"`
	Mastering *master.Report         `json:"mastering"`
	Platform  presets.PlatformPreset `json:"platform"`
	Timings   []StageTiming          `json:"timings"`
}

// Pipeline runs stems through detection, mixing and mastering.
type Pipeline struct {
	detector genre.Detector
	logger   logging.Logger
}

// New creates a pipeline with the default heuristic genre detector.
func New() *Pipeline {
	return &Pipeline{
		detector: genre.NewHeuristicDetector(),
		logger:   logging.WithFields(logging.Fields{"component": "pipeline"}),
	}
}

// Run takes raw stems to a mastered stereo buffer. Stem buffers are
// modified in place; cancellation is honored between stages.
func (p *Pipeline) Run(ctx context.Context, stems []*audio.Stem, opts Options) (*audio.Buffer, *Report, error) {
	if len(stems) == 0 {
		return nil, nil, fmt.Errorf("no stems")
	}
	if opts.Genre != "" && !genre.IsKnownGenre(opts.Genre) {
		return nil, nil, fmt.Errorf("unknown genre %q", opts.Genre)
	}
	if opts.Platform != "" && !presets.IsKnownPlatform(opts.Platform) {
		return nil, nil, fmt.Errorf("unknown platform %q", opts.Platform)
	}

	report := &Report{}
	sampleRate := stems[0].Buffer.SampleRate

	detected, err := p.timed(report, "detect", func() (*genre.Result, error) {
		return p.detect(stems, opts.Genre)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("genre detection: %w", err)
	}
	report.Genre = detected

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	mixEngine := mix.NewEngine()
	mixed, mixReport, err := mixEngine.Mix(ctx, stems, detected)
	report.Timings = append(report.Timings, StageTiming{"mix", time.Since(start)})
	if err != nil {
		return nil, nil, fmt.Errorf("mix: %w", err)
	}
	report.Mix = mixReport

	platform := p.resolvePlatform(opts, mixReport)
	report.Platform = platform

	target := platform.TargetLUFS
	if opts.TargetLUFS != 0 {
		target = opts.TargetLUFS
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	start = time.Now()
	masterEngine, err := master.NewEngine(sampleRate)
	if err != nil {
		return nil, nil, err
	}
	masterReport, err := masterEngine.Master(ctx, mixed, presets.MasteringFor(detected.Genre), master.Options{
		TargetLUFS:  target,
		CeilingDB:   platform.CeilingDB,
		TempoBPM:    detected.Tempo,
		Transparent: opts.Transparent,
	})
	report.Timings = append(report.Timings, StageTiming{"master", time.Since(start)})
	if err != nil {
		return nil, nil, fmt.Errorf("master: %w", err)
	}
	report.Mastering = masterReport

	p.logger.Info("session complete", logging.Fields{
		"genre":    detected.Genre,
		"platform": platform.Name,
		"lufs":     masterReport.Metrics.IntegratedLUFS,
	})

	return mixed, report, nil
}

// detect runs genre detection on a rough reference mix, or wraps a
// user override with a tempo estimate so downstream timing still
// works.
func (p *Pipeline) detect(stems []*audio.Stem, override string) (*genre.Result, error) {
	rough, err := audio.RoughMix(stems)
	if err != nil {
		return nil, err
	}

	if override != "" {
		te := genre.NewTempoEstimator(rough.SampleRate)
		return &genre.Result{
			Genre:      override,
			Confidence: 1.0,
			Tempo:      te.Estimate(rough.Mono()),
		}, nil
	}

	return p.detector.Detect(rough)
}

func (p *Pipeline) resolvePlatform(opts Options, mixReport *mix.MixReport) presets.PlatformPreset {
	if opts.Platform != "" {
		return presets.PlatformFor(opts.Platform)
	}
	if mixReport.Metrics != nil {
		return presets.PickPlatform(mixReport.Metrics.IntegratedLUFS)
	}
	return presets.PlatformFor("")
}

// timed wraps a stage with a timing record.
func (p *Pipeline) timed(report *Report, stage string, fn func() (*genre.Result, error)) (*genre.Result, error) {
	start := time.Now()
	result, err := fn()
	report.Timings = append(report.Timings, StageTiming{stage, time.Since(start)})
	return result, err
}
