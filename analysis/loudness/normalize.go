package loudness

import (
	"fmt"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/logging"
)

// NormalizeToLUFS gains the buffer toward the target integrated
// loudness and returns the gain applied in dB. maxGainDB bounds the
// boost for near-silent input; the result is scaled back if it would
// push the sample peak past 0.99.
func (m *Meter) NormalizeToLUFS(buf *audio.Buffer, targetLUFS, maxGainDB float64) (float64, error) {
	current, err := m.IntegratedLUFS(buf)
	if err != nil {
		return 0, fmt.Errorf("measure before normalize: %w", err)
	}
	if current <= SilenceLUFS {
		logging.Debug("normalize skipped: input is silent")
		return 0, nil
	}

	gainDB := targetLUFS - current
	if gainDB > maxGainDB {
		gainDB = maxGainDB
	}
	if gainDB < -maxGainDB {
		gainDB = -maxGainDB
	}

	buf.Gain(gainDB)

	// Peak safety: keep a hair below full scale
	if peak := buf.Peak(); peak > 0.99 {
		buf.Scale(0.99 / peak)
	}

	logging.Debug("loudness normalized", logging.Fields{
		"input_lufs":  current,
		"target_lufs": targetLUFS,
		"gain_db":     gainDB,
	})

	return gainDB, nil
}
