package master

import (
	"context"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mix/analysis/loudness"
	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/dsp"
	"github.com/RyanBlaney/sonido-mix/logging"
	"github.com/RyanBlaney/sonido-mix/presets"
)

// Mastering chain constants. The normalization target sits 1 LU above
// the final target so the limiter has work to do; the limiter pulls
// the overshoot back down.
const (
	normalizeHeadroomLU = 1.0
	maxNormalizeGainDB  = 24.0
	limiterStages       = 3
	truePeakSlackDB     = 0.1
	truePeakPasses      = 3

	tapeMix    = 0.30
	tubeMix    = 0.25
	tubeWarmth = 0.2

	crestGateDB = 18.0
)

// Options resolve the loudness targets for one mastering run. The
// genre preset supplies tonal and dynamics settings; the platform (or
// the user) supplies the final numbers here.
type Options struct {
	TargetLUFS  float64 `json:"target_lufs"`
	CeilingDB   float64 `json:"ceiling_db"`
	TempoBPM    float64 `json:"tempo_bpm"`   // 0 disables BPM-synced limiter release
	Transparent bool    `json:"transparent"` // skip the colored chain entirely
}

// QC holds the pass/fail quality gates measured after mastering.
type QC struct {
	LUFSSafe     bool `json:"lufs_safe"`
	TruePeakSafe bool `json:"true_peak_safe"`
	CrestSafe    bool `json:"crest_safe"`
	LRASafe      bool `json:"lra_safe"`
	AllSafe      bool `json:"all_safe"`
}

// Report describes what the mastering chain did and how the result
// measures.
type Report struct {
	Chain    []string          `json:"chain"`
	GainDB   float64           `json:"gain_db"`
	Metrics  *loudness.Metrics `json:"metrics"`
	QC       QC                `json:"qc"`
	Warnings []string          `json:"warnings"`
}

// Engine is the mastering processor. The pro chain applies linear-phase
// EQ, multiband compression, saturation, stereo imaging, crest-gated
// bus compression, loudness normalization and multi-stage limiting.
// The transparent mode only normalizes and limits.
type Engine struct {
	sampleRate int
	eq         *dsp.LinearPhaseEQ
	multiband  *MultibandCompressor
	imager     *StereoImager
	limiter    *Limiter
	meter      *loudness.Meter
	logger     logging.Logger
}

// NewEngine creates a mastering engine for the given sample rate.
func NewEngine(sampleRate int) (*Engine, error) {
	meter, err := loudness.NewMeter(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("mastering meter: %w", err)
	}
	return &Engine{
		sampleRate: sampleRate,
		eq:         dsp.NewLinearPhaseEQ(sampleRate),
		multiband:  NewMultibandCompressor(sampleRate),
		imager:     NewStereoImager(sampleRate),
		limiter:    NewLimiter(sampleRate),
		meter:      meter,
		logger:     logging.WithFields(logging.Fields{"component": "mastering"}),
	}, nil
}

// Master runs the chain over the buffer in place and returns the
// report. The genre preset is ignored in transparent mode.
func (e *Engine) Master(ctx context.Context, buf *audio.Buffer, preset presets.MasteringPreset, opts Options) (*Report, error) {
	if buf == nil || buf.Length() == 0 {
		return nil, fmt.Errorf("no audio to master")
	}
	if buf.SampleRate != e.sampleRate {
		return nil, fmt.Errorf("buffer rate %d does not match engine rate %d", buf.SampleRate, e.sampleRate)
	}

	if opts.Transparent {
		return e.transparent(buf, opts)
	}
	return e.pro(ctx, buf, preset, opts)
}

func (e *Engine) pro(ctx context.Context, buf *audio.Buffer, preset presets.MasteringPreset, opts Options) (*Report, error) {
	report := &Report{}

	e.logger.Info("mastering start", logging.Fields{
		"genre":       preset.Genre,
		"target_lufs": opts.TargetLUFS,
		"ceiling_db":  opts.CeilingDB,
	})

	if len(preset.EQ) > 0 {
		if err := e.applyEQ(buf, preset.EQ); err != nil {
			return nil, fmt.Errorf("mastering eq: %w", err)
		}
		report.Chain = append(report.Chain, fmt.Sprintf("eq: %d bands", len(preset.EQ)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(preset.Multiband.Crossovers) > 0 {
		if err := e.multiband.Process(buf, preset.Multiband); err != nil {
			return nil, fmt.Errorf("multiband: %w", err)
		}
		report.Chain = append(report.Chain,
			fmt.Sprintf("multiband: %d bands", len(preset.Multiband.Crossovers)+1))
	}

	e.applySaturation(buf, preset.Saturation)
	if preset.Saturation.Tape > 0 || preset.Saturation.Tube > 0 {
		report.Chain = append(report.Chain,
			fmt.Sprintf("saturation: tape %.0f%% tube %.0f%%", preset.Saturation.Tape*100, preset.Saturation.Tube*100))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if buf.Channels() == 2 && preset.StereoWidth != 100 {
		if err := e.imager.Process(buf, preset.StereoWidth); err != nil {
			return nil, fmt.Errorf("imaging: %w", err)
		}
		report.Chain = append(report.Chain, fmt.Sprintf("width: %.0f%%", preset.StereoWidth))
	}

	if e.busCompress(buf) {
		report.Chain = append(report.Chain, "bus compression")
	}

	gain, err := e.meter.NormalizeToLUFS(buf, opts.TargetLUFS+normalizeHeadroomLU, maxNormalizeGainDB)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	report.GainDB = gain

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	release := preset.Limiter.ReleaseMs
	if opts.TempoBPM > 0 {
		// Release no longer than half a beat keeps pumping on the grid
		beatMs := 60000.0 / opts.TempoBPM
		release = math.Min(release, beatMs/2)
	}
	e.limiter.MultiStage(buf, opts.CeilingDB, release, limiterStages)
	report.Chain = append(report.Chain, fmt.Sprintf("limiter: %.1f dBTP", opts.CeilingDB))

	e.matchLoudness(buf, opts.TargetLUFS, opts.CeilingDB)
	e.enforceTruePeak(buf, opts.CeilingDB)
	buf.Clip(math.Pow(10.0, opts.CeilingDB/20.0))

	return e.finish(buf, report, opts)
}

func (e *Engine) transparent(buf *audio.Buffer, opts Options) (*Report, error) {
	report := &Report{Chain: []string{"transparent"}}

	current, err := e.meter.IntegratedLUFS(buf)
	if err != nil {
		return nil, fmt.Errorf("transparent measure: %w", err)
	}

	if current > loudness.SilenceLUFS {
		gain := opts.TargetLUFS - current
		gain = math.Max(-12, math.Min(18, gain))
		buf.Gain(gain)
		report.GainDB = gain
	}

	e.limiter.Transparent(buf, opts.CeilingDB)
	report.Chain = append(report.Chain, fmt.Sprintf("limiter: %.1f dBTP", opts.CeilingDB))

	return e.finish(buf, report, opts)
}

func (e *Engine) applyEQ(buf *audio.Buffer, bands []dsp.EQBand) error {
	if buf.Channels() == 2 {
		left, right, err := e.eq.ProcessStereo(buf.Samples[0], buf.Samples[1], bands)
		if err != nil {
			return err
		}
		buf.Samples[0], buf.Samples[1] = left, right
		return nil
	}
	for i, ch := range buf.Samples {
		out, err := e.eq.ProcessBuffer(ch, bands)
		if err != nil {
			return err
		}
		buf.Samples[i] = out
	}
	return nil
}

func (e *Engine) applySaturation(buf *audio.Buffer, settings presets.SaturationSettings) {
	if settings.Tape > 0 {
		for i, ch := range buf.Samples {
			tape := dsp.NewTapeSaturator(settings.Tape)
			tape.Mix = tapeMix
			buf.Samples[i] = tape.ProcessBuffer(ch)
		}
	}
	if settings.Tube > 0 {
		for i, ch := range buf.Samples {
			tube := dsp.NewTubeSaturator(buf.SampleRate, settings.Tube, tubeWarmth)
			tube.Mix = tubeMix
			buf.Samples[i] = tube.ProcessBuffer(ch)
		}
	}
}

// busCompress engages a gentle 2:1 compressor only when the program's
// crest factor is high enough that the limiter would otherwise work
// too hard. Returns whether it ran.
func (e *Engine) busCompress(buf *audio.Buffer) bool {
	crest := buf.PeakDB() - buf.RMSDB()
	if crest <= crestGateDB {
		return false
	}

	comp := dsp.NewCompressor(buf.SampleRate, -18, 2, 30, 250)
	if buf.Channels() == 2 {
		left, right, err := comp.ProcessStereo(buf.Samples[0], buf.Samples[1])
		if err != nil {
			return false
		}
		buf.Samples[0], buf.Samples[1] = left, right
	} else {
		for i, ch := range buf.Samples {
			buf.Samples[i] = comp.ProcessBuffer(ch)
		}
	}

	e.logger.Debug("bus compression engaged", logging.Fields{"crest_db": crest})
	return true
}

// matchLoudness iterates toward the target: measure, apply 70% of the
// delta, re-limit if the peak escaped. Conservative steps avoid
// oscillating around the target.
func (e *Engine) matchLoudness(buf *audio.Buffer, targetLUFS, ceilingDB float64) {
	for i := 0; i < 3; i++ {
		current, err := e.meter.IntegratedLUFS(buf)
		if err != nil || current <= loudness.SilenceLUFS {
			return
		}

		delta := targetLUFS - current
		if math.Abs(delta) < 0.5 {
			return
		}

		buf.Gain(delta * 0.7)
		if e.meter.TruePeakDB(buf) > ceilingDB {
			e.limiter.Process(buf, ceilingDB, ceilingDB-3.0, 150)
		}
	}
}

// enforceTruePeak measures inter-sample peaks and pulls the level down
// until they sit under the ceiling, with a small extra margin per pass.
func (e *Engine) enforceTruePeak(buf *audio.Buffer, ceilingDB float64) {
	for i := 0; i < truePeakPasses; i++ {
		tp := e.meter.TruePeakDB(buf)
		if tp <= ceilingDB+truePeakSlackDB {
			return
		}
		buf.Gain(-(tp - ceilingDB + 0.3))

		e.logger.Debug("true peak pass", logging.Fields{
			"pass":       i + 1,
			"true_peak":  tp,
			"ceiling_db": ceilingDB,
		})
	}
}

// finish measures the result and fills the QC gates and warnings.
func (e *Engine) finish(buf *audio.Buffer, report *Report, opts Options) (*Report, error) {
	metrics, err := e.meter.Measure(buf)
	if err != nil {
		return nil, fmt.Errorf("final measure: %w", err)
	}
	report.Metrics = metrics

	lufsOK := math.Abs(metrics.IntegratedLUFS-opts.TargetLUFS) < 1.0
	tpOK := metrics.TruePeakDB <= opts.CeilingDB+truePeakSlackDB
	crestOK := metrics.CrestDB >= 3.0
	lraOK := metrics.LoudnessRange >= 3.0

	report.QC = QC{
		LUFSSafe:     lufsOK,
		TruePeakSafe: tpOK,
		CrestSafe:    crestOK,
		LRASafe:      lraOK,
		AllSafe:      lufsOK && tpOK && crestOK && lraOK,
	}

	if metrics.CrestDB < 4.0 {
		report.Warnings = append(report.Warnings, "low crest factor, may sound over-compressed")
	}
	if metrics.LoudnessRange < 4.0 {
		report.Warnings = append(report.Warnings, "low loudness range, limited dynamics")
	}
	if !lufsOK && metrics.IntegratedLUFS > loudness.SilenceLUFS {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("loudness %.1f LUFS missed target %.1f", metrics.IntegratedLUFS, opts.TargetLUFS))
	}

	e.logger.Info("mastering complete", logging.Fields{
		"lufs":      metrics.IntegratedLUFS,
		"true_peak": metrics.TruePeakDB,
		"crest":     metrics.CrestDB,
	})

	return report, nil
}
