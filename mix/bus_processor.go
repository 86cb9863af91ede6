package mix

import (
	"fmt"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/dsp"
	"github.com/RyanBlaney/sonido-mix/logging"
)

// Bus names the three submix groups.
type Bus string

const (
	DrumBus  Bus = "drums"
	VocalBus Bus = "vocals"
	MusicBus Bus = "music"
)

// busTargetRMSDB is where each rendered bus should sit before the
// buses are summed.
const busTargetRMSDB = -12.0

// BusFor routes a role to its submix group.
func BusFor(role audio.Role) Bus {
	switch {
	case role.IsDrum():
		return DrumBus
	case role.IsVocal():
		return VocalBus
	default:
		return MusicBus
	}
}

// BusProcessor renders and glues the three submix groups. Each bus
// gets its own treatment: drums get punch glue and parallel crush,
// vocals get presence and density, music gets a gentle clean-up.
type BusProcessor struct {
	logger logging.Logger
}

// NewBusProcessor creates a bus processor.
func NewBusProcessor() *BusProcessor {
	return &BusProcessor{
		logger: logging.WithFields(logging.Fields{"component": "bus_processor"}),
	}
}

// Render groups processed stems by bus, sums each group, applies the
// bus treatment and a trim toward the bus target level. Buses with no
// stems are omitted from the result.
func (bp *BusProcessor) Render(stems []*audio.Stem) (map[Bus]*audio.Buffer, error) {
	groups := make(map[Bus][]*audio.Stem)
	for _, s := range stems {
		bus := BusFor(s.Role)
		groups[bus] = append(groups[bus], s)
	}

	rendered := make(map[Bus]*audio.Buffer, len(groups))
	for bus, members := range groups {
		sum, err := audio.SumStems(members)
		if err != nil {
			return nil, fmt.Errorf("bus %s: %w", bus, err)
		}

		switch bus {
		case DrumBus:
			err = bp.processDrums(sum)
		case VocalBus:
			err = bp.processVocals(sum)
		default:
			err = bp.processMusic(sum)
		}
		if err != nil {
			return nil, fmt.Errorf("bus %s: %w", bus, err)
		}

		sum.Gain(BusTrim(sum, busTargetRMSDB))
		rendered[bus] = sum

		bp.logger.Debug("bus rendered", logging.Fields{
			"bus":   string(bus),
			"stems": len(members),
		})
	}

	return rendered, nil
}

// processDrums glues the kit, crushes a parallel copy for density, and
// adds thump and attack.
func (bp *BusProcessor) processDrums(buf *audio.Buffer) error {
	glue := dsp.NewCompressor(buf.SampleRate, -15, 2.5, 30, 150)
	glue.MakeupDB = 2

	for i, ch := range buf.Samples {
		dry := make([]float64, len(ch))
		copy(dry, ch)

		glued := glue.ProcessBuffer(ch)

		crush := dsp.NewCompressor(buf.SampleRate, -20, 6, 5, 80)
		crushed := crush.ProcessBuffer(dry)

		buf.Samples[i] = dsp.ParallelMix(glued, crushed, 0.25)
	}

	if err := bp.applyPeaks(buf, []peakSpec{
		{80, 1, 1.5},
		{3000, 1.5, 2},
	}); err != nil {
		return err
	}

	// Drums stay tight in the stereo field
	return bp.applyWidth(buf, 90)
}

// processVocals adds presence and air, then densifies with a parallel
// compressor under a gentle glue pass.
func (bp *BusProcessor) processVocals(buf *audio.Buffer) error {
	for i, ch := range buf.Samples {
		presence, err := dsp.NewBiquad(buf.SampleRate, dsp.Peaking, 3000, 1, 2)
		if err != nil {
			return err
		}
		presence.ProcessInPlace(ch)

		air, err := dsp.NewBiquad(buf.SampleRate, dsp.HighShelf, 8000, 0.7, 1.5)
		if err != nil {
			return err
		}
		air.ProcessInPlace(ch)

		dry := make([]float64, len(ch))
		copy(dry, ch)

		crush := dsp.NewCompressor(buf.SampleRate, -22, 8, 3, 60)
		crushed := crush.ProcessBuffer(ch)
		blended := dsp.ParallelMix(dry, crushed, 0.30)

		glue := dsp.NewCompressor(buf.SampleRate, -16, 3, 10, 100)
		glue.MakeupDB = 2.5
		buf.Samples[i] = glue.ProcessBuffer(blended)
	}
	return nil
}

// processMusic cleans low-mid congestion, opens the top, and glues.
func (bp *BusProcessor) processMusic(buf *audio.Buffer) error {
	for i, ch := range buf.Samples {
		mud, err := dsp.NewBiquad(buf.SampleRate, dsp.Peaking, 250, 1, -1.5)
		if err != nil {
			return err
		}
		mud.ProcessInPlace(ch)

		box, err := dsp.NewBiquad(buf.SampleRate, dsp.Peaking, 350, 1.2, -1)
		if err != nil {
			return err
		}
		box.ProcessInPlace(ch)

		sheen, err := dsp.NewBiquad(buf.SampleRate, dsp.HighShelf, 10000, 0.7, 1.5)
		if err != nil {
			return err
		}
		sheen.ProcessInPlace(ch)

		glue := dsp.NewCompressor(buf.SampleRate, -18, 2, 20, 120)
		glue.MakeupDB = 1.5
		buf.Samples[i] = glue.ProcessBuffer(ch)
	}
	return nil
}

type peakSpec struct {
	freq   float64
	gainDB float64
	q      float64
}

func (bp *BusProcessor) applyPeaks(buf *audio.Buffer, peaks []peakSpec) error {
	for i, ch := range buf.Samples {
		for _, p := range peaks {
			eq, err := dsp.NewBiquad(buf.SampleRate, dsp.Peaking, p.freq, p.q, p.gainDB)
			if err != nil {
				return err
			}
			eq.ProcessInPlace(ch)
		}
		buf.Samples[i] = ch
	}
	return nil
}

func (bp *BusProcessor) applyWidth(buf *audio.Buffer, widthPercent float64) error {
	if buf.Channels() != 2 {
		return nil
	}
	left, right, err := dsp.ApplyWidthSafeBass(buf.Samples[0], buf.Samples[1], widthPercent, 150, buf.SampleRate)
	if err != nil {
		return err
	}
	buf.Samples[0], buf.Samples[1] = left, right
	return nil
}
