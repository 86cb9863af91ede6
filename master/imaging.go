package master

import (
	"fmt"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/dsp"
)

// Imager band layout: tight bass, natural mids, open highs. The
// per-band widths are scaled by the preset's overall width, with the
// low band capped at mono-safe 100%.
const (
	imagerLowCrossover  = 200.0
	imagerHighCrossover = 4000.0

	imagerLowWidth  = 80.0
	imagerMidWidth  = 100.0
	imagerHighWidth = 120.0
)

// StereoImager adjusts stereo width per frequency band in the M/S
// domain. Low frequencies stay centered, highs open up.
type StereoImager struct {
	sampleRate int
}

// NewStereoImager creates an imager.
func NewStereoImager(sampleRate int) *StereoImager {
	return &StereoImager{sampleRate: sampleRate}
}

// Process widens the buffer in place. widthPercent is the preset's
// overall width; 100 applies the band layout as-is.
func (si *StereoImager) Process(buf *audio.Buffer, widthPercent float64) error {
	if buf.Channels() != 2 {
		return nil
	}

	mid, side, err := dsp.EncodeMS(buf.Samples[0], buf.Samples[1])
	if err != nil {
		return fmt.Errorf("imager encode: %w", err)
	}

	bands, err := dsp.SplitBands(side, si.sampleRate, []float64{imagerLowCrossover, imagerHighCrossover})
	if err != nil {
		return fmt.Errorf("imager split: %w", err)
	}

	scale := widthPercent / 100.0
	widths := []float64{
		// Bass never widens past mono-safe regardless of the preset
		min(imagerLowWidth*scale, 100.0) / 100.0,
		imagerMidWidth * scale / 100.0,
		imagerHighWidth * scale / 100.0,
	}

	processed := make([]float64, len(side))
	for b, band := range bands {
		for i, v := range band {
			processed[i] += v * widths[b]
		}
	}

	left, right, err := dsp.DecodeMS(mid, processed)
	if err != nil {
		return fmt.Errorf("imager decode: %w", err)
	}
	buf.Samples[0], buf.Samples[1] = left, right
	return nil
}
