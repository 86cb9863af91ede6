package mix

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/dsp"
	"github.com/RyanBlaney/sonido-mix/logging"
	"github.com/RyanBlaney/sonido-mix/presets"
)

// Corrective EQ from the instrument tables is applied at 60% strength.
// The tables describe a full treatment; stems that already sound close
// to right need less of it.
const eqScale = 0.6

// eqSkipDB skips bands whose scaled gain would be inaudible.
const eqSkipDB = 0.1

// StemProcessor runs one stem through its role's channel strip:
// gain, high-pass, de-essing, corrective EQ, compression, width
// and panning.
type StemProcessor struct {
	tempo  float64 // BPM, 0 when unknown
	genre  string
	logger logging.Logger
}

// NewStemProcessor creates a processor. Tempo of 0 disables
// tempo-synced compressor release.
func NewStemProcessor(tempo float64, genre string) *StemProcessor {
	return &StemProcessor{
		tempo:  tempo,
		genre:  genre,
		logger: logging.WithFields(logging.Fields{"component": "stem_processor"}),
	}
}

// Process applies the full channel strip in place.
func (p *StemProcessor) Process(stem *audio.Stem) error {
	preset := presets.InstrumentFor(stem.Role)
	buf := stem.Buffer

	buf.Gain(stem.GainDB)

	if err := p.highpass(buf, preset.HighpassFreq); err != nil {
		return fmt.Errorf("stem %s highpass: %w", stem.Name, err)
	}

	if preset.DeEss && stem.Role.IsVocal() {
		if err := p.deess(buf, preset.DeEssFreq); err != nil {
			return fmt.Errorf("stem %s de-ess: %w", stem.Name, err)
		}
	}

	if err := p.correctiveEQ(buf, preset.EQ); err != nil {
		return fmt.Errorf("stem %s eq: %w", stem.Name, err)
	}

	if err := p.compress(buf, preset.Compression); err != nil {
		return fmt.Errorf("stem %s compression: %w", stem.Name, err)
	}

	if preset.StereoWidth > 0 {
		if err := p.width(buf, preset.StereoWidth); err != nil {
			return fmt.Errorf("stem %s width: %w", stem.Name, err)
		}
	}

	angle := presets.PanningAngle(stem.Role, p.genre, stem.TrackIndex)
	stem.PanDegrees = angle
	p.pan(buf, angle)

	p.logger.Debug("stem processed", logging.Fields{
		"stem": stem.Name,
		"role": string(stem.Role),
		"pan":  angle,
	})
	return nil
}

func (p *StemProcessor) highpass(buf *audio.Buffer, freq float64) error {
	if freq <= 0 {
		return nil
	}
	for i, ch := range buf.Samples {
		hp, err := dsp.NewButterworthHighpass(buf.SampleRate, freq)
		if err != nil {
			return err
		}
		buf.Samples[i] = hp.ProcessZeroPhase(ch)
	}
	return nil
}

func (p *StemProcessor) deess(buf *audio.Buffer, centerFreq float64) error {
	for i, ch := range buf.Samples {
		de := dsp.NewDeEsser(buf.SampleRate)
		if centerFreq > 0 {
			de.LowEdge = centerFreq * 0.75
			de.HighEdge = centerFreq * 1.5
		}
		// Tune threshold to the material instead of a fixed level
		_, de.ThresholdDB = dsp.DetectSibilance(ch, buf.SampleRate)

		out, err := de.ProcessBuffer(ch)
		if err != nil {
			return err
		}
		buf.Samples[i] = out
	}
	return nil
}

func (p *StemProcessor) correctiveEQ(buf *audio.Buffer, bands [6]presets.EQSetting) error {
	for i, ch := range buf.Samples {
		for _, band := range bands {
			gain := band.GainDB * eqScale
			if math.Abs(gain) < eqSkipDB {
				continue
			}
			if band.Freq >= float64(buf.SampleRate)/2 {
				continue
			}
			eq, err := dsp.NewBiquad(buf.SampleRate, dsp.Peaking, band.Freq, band.Q, gain)
			if err != nil {
				return err
			}
			eq.ProcessInPlace(ch)
		}
		buf.Samples[i] = ch
	}
	return nil
}

func (p *StemProcessor) compress(buf *audio.Buffer, settings presets.CompressionSettings) error {
	release := settings.ReleaseMs
	if p.tempo > 0 {
		// Breathe with the groove: pull the release toward a beat length
		beatMs := 60000.0 / p.tempo
		release = settings.ReleaseMs*0.6 + beatMs*0.4
	}

	comp := dsp.NewCompressor(buf.SampleRate, settings.ThresholdDB, settings.Ratio, settings.AttackMs, release)

	if buf.Channels() == 2 {
		left, right, err := comp.ProcessStereo(buf.Samples[0], buf.Samples[1])
		if err != nil {
			return err
		}
		buf.Samples[0], buf.Samples[1] = left, right
		return nil
	}
	for i, ch := range buf.Samples {
		buf.Samples[i] = comp.ProcessBuffer(ch)
	}
	return nil
}

func (p *StemProcessor) width(buf *audio.Buffer, widthPercent float64) error {
	if buf.Channels() != 2 {
		return nil
	}
	width := math.Max(80, math.Min(150, widthPercent))
	left, right, err := dsp.ApplyWidthSafeBass(buf.Samples[0], buf.Samples[1], width, 150, buf.SampleRate)
	if err != nil {
		return err
	}
	buf.Samples[0], buf.Samples[1] = left, right
	return nil
}

// pan places the stem with a constant-power law. Angles run -60 (full
// left) to +60 (full right); mono stems are widened to stereo first.
func (p *StemProcessor) pan(buf *audio.Buffer, angleDegrees float64) {
	if angleDegrees == 0 && buf.Channels() == 2 {
		return
	}

	stereo := buf.Stereo()
	buf.Samples = stereo.Samples

	position := math.Max(-1, math.Min(1, angleDegrees/60.0))
	theta := (position + 1) * math.Pi / 4
	gainL := math.Sqrt2 * math.Cos(theta)
	gainR := math.Sqrt2 * math.Sin(theta)

	for i := range buf.Samples[0] {
		buf.Samples[0][i] *= gainL
		buf.Samples[1][i] *= gainR
	}
}
