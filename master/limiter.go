package master

import (
	"math"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/logging"
)

// Limiter timing. No oversampling in the gain path; the true-peak
// margin is handled by the soft-knee stage and the engine's iterative
// enforcement instead, which avoids modulation artifacts.
const (
	lookaheadMs   = 5.0
	softKneeStart = 0.9 // fraction of the ceiling where the soft knee engages
	softKneeScale = 1.5
)

// Limiter is a brick-wall peak limiter with lookahead, instant attack
// and exponential release, followed by a tanh soft-knee true-peak
// stage and a hard safety clip.
type Limiter struct {
	sampleRate int
	logger     logging.Logger
}

// NewLimiter creates a limiter.
func NewLimiter(sampleRate int) *Limiter {
	return &Limiter{
		sampleRate: sampleRate,
		logger:     logging.WithFields(logging.Fields{"component": "limiter"}),
	}
}

// Process limits the buffer in place. The gain computer runs on the
// linked channel peak so the stereo image holds under reduction.
func (l *Limiter) Process(buf *audio.Buffer, ceilingDB, thresholdDB, releaseMs float64) {
	ceiling := math.Pow(10.0, ceilingDB/20.0)
	threshold := math.Pow(10.0, thresholdDB/20.0)

	lookahead := int(lookaheadMs * float64(l.sampleRate) / 1000.0)
	gain := l.gainReduction(buf, threshold, ceiling, releaseMs, lookahead)

	for _, ch := range buf.Samples {
		for i := range ch {
			ch[i] *= gain[i]
		}
	}

	l.softKnee(buf, ceiling)
	buf.Clip(ceiling)
}

// gainReduction builds the per-sample gain from the linked peak
// envelope. Lookahead shifts the envelope earlier so reduction is in
// place before the peak arrives.
func (l *Limiter) gainReduction(buf *audio.Buffer, threshold, ceiling, releaseMs float64, lookahead int) []float64 {
	n := buf.Length()
	peaks := make([]float64, n)
	for i := 0; i < n; i++ {
		p := 0.0
		for _, ch := range buf.Samples {
			if a := math.Abs(ch[i]); a > p {
				p = a
			}
		}
		peaks[i] = p
	}

	required := make([]float64, n)
	for i, p := range peaks {
		if p > threshold {
			required[i] = ceiling / (p + 1e-10)
		} else {
			required[i] = 1.0
		}
	}

	// Shift earlier by the lookahead so attack leads the transient
	if lookahead > 0 && n > lookahead {
		shifted := make([]float64, n)
		copy(shifted, required[lookahead:])
		for i := n - lookahead; i < n; i++ {
			shifted[i] = required[n-1]
		}
		required = shifted
	}

	releaseSamples := releaseMs * float64(l.sampleRate) / 1000.0
	if releaseSamples < 1 {
		releaseSamples = 1
	}
	releaseCoef := math.Exp(-1.0 / releaseSamples)

	smoothed := make([]float64, n)
	if n > 0 {
		smoothed[0] = required[0]
	}
	for i := 1; i < n; i++ {
		if required[i] < smoothed[i-1] {
			// Instant attack
			smoothed[i] = required[i]
		} else {
			smoothed[i] = releaseCoef*smoothed[i-1] + (1.0-releaseCoef)*required[i]
		}
	}
	return smoothed
}

// softKnee rounds off whatever still pokes above 90% of the ceiling
// with a tanh curve, so the final clip rarely engages on program
// material.
func (l *Limiter) softKnee(buf *audio.Buffer, ceiling float64) {
	threshold := ceiling * softKneeStart
	kneeNorm := math.Tanh(softKneeScale)

	for _, ch := range buf.Samples {
		for i, sample := range ch {
			abs := math.Abs(sample)
			if abs <= threshold {
				continue
			}
			excess := (abs - threshold) / (1.0 - threshold + 0.01)
			shaped := threshold + (ceiling-threshold)*math.Tanh(excess*softKneeScale)/kneeNorm
			if shaped > ceiling {
				shaped = ceiling
			}
			if sample < 0 {
				shaped = -shaped
			}
			ch[i] = shaped
		}
	}
}

// MultiStage runs the limiter in stages with descending ceilings so
// each stage only works a few dB. Stage releases shorten as the
// ceiling drops.
func (l *Limiter) MultiStage(buf *audio.Buffer, ceilingDB, releaseMs float64, stages int) {
	if stages < 1 {
		stages = 1
	}

	for i := 0; i < stages; i++ {
		stageCeiling := ceilingDB
		if stages > 1 {
			stageCeiling = -6.0 + (ceilingDB+6.0)*float64(i)/float64(stages-1)
		}
		l.Process(buf, stageCeiling, stageCeiling-3.0, releaseMs/float64(i+1))

		l.logger.Debug("limiter stage", logging.Fields{
			"stage":      i + 1,
			"ceiling_db": stageCeiling,
		})
	}
}

// Transparent is the gentle mode: slow envelope following with
// lookahead and a short moving-average gain smooth, no soft knee
// coloration. Used by the transparent mastering path.
func (l *Limiter) Transparent(buf *audio.Buffer, ceilingDB float64) {
	ceiling := math.Pow(10.0, ceilingDB/20.0)

	n := buf.Length()
	peaks := make([]float64, n)
	for i := 0; i < n; i++ {
		p := 0.0
		for _, ch := range buf.Samples {
			if a := math.Abs(ch[i]); a > p {
				p = a
			}
		}
		peaks[i] = p
	}

	attackCoef := math.Exp(-1.0 / (5.0 * float64(l.sampleRate) / 1000.0))
	releaseCoef := math.Exp(-1.0 / (100.0 * float64(l.sampleRate) / 1000.0))

	envelope := make([]float64, n)
	env := 0.0
	for i, p := range peaks {
		if p > env {
			env = attackCoef*env + (1.0-attackCoef)*p
		} else {
			env = releaseCoef*env + (1.0-releaseCoef)*p
		}
		envelope[i] = env
	}

	// Lookahead shift
	lookahead := int(lookaheadMs * float64(l.sampleRate) / 1000.0)
	if lookahead > 0 && n > lookahead {
		shifted := make([]float64, n)
		copy(shifted, envelope[lookahead:])
		for i := n - lookahead; i < n; i++ {
			shifted[i] = envelope[n-1]
		}
		envelope = shifted
	}

	gain := make([]float64, n)
	for i, env := range envelope {
		if env > ceiling {
			gain[i] = ceiling / env
		} else {
			gain[i] = 1.0
		}
	}
	smoothMovingAverage(gain, l.sampleRate)

	for _, ch := range buf.Samples {
		for i := range ch {
			ch[i] *= gain[i]
		}
	}
	buf.Clip(ceiling)
}

// smoothMovingAverage runs a 1 ms moving average over the gain curve.
func smoothMovingAverage(gain []float64, sampleRate int) {
	window := sampleRate / 1000
	if window < 2 {
		return
	}

	smoothed := make([]float64, len(gain))
	acc := 0.0
	for i := range gain {
		acc += gain[i]
		if i >= window {
			acc -= gain[i-window]
			smoothed[i] = acc / float64(window)
		} else {
			smoothed[i] = acc / float64(i+1)
		}
	}
	copy(gain, smoothed)
}
