package audiofile

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mix/audio"
)

func testTone(channels int, n int) *audio.Buffer {
	left := make([]float64, n)
	for i := range left {
		left[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
	}
	if channels == 1 {
		return audio.NewMonoBuffer(left, 44100)
	}
	right := make([]float64, n)
	for i := range right {
		right[i] = 0.3 * math.Sin(2*math.Pi*880*float64(i)/44100)
	}
	buf, _ := audio.NewStereoBuffer(left, right, 44100)
	return buf
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	original := testTone(2, 4410)

	require.NoError(t, WriteWAV(path, original))

	decoded, err := ReadWAV(path)
	require.NoError(t, err)

	assert.Equal(t, 2, decoded.Channels())
	assert.Equal(t, 44100, decoded.SampleRate)
	assert.Equal(t, original.Length(), decoded.Length())

	// 24-bit quantization error is far below this tolerance
	for ch := 0; ch < 2; ch++ {
		for i := 0; i < original.Length(); i++ {
			assert.InDelta(t, original.Samples[ch][i], decoded.Samples[ch][i], 1e-4)
		}
	}
}

func TestWriteClampsOvers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")
	hot := audio.NewMonoBuffer([]float64{1.5, -1.5, 0.5}, 44100)

	require.NoError(t, WriteWAV(path, hot))

	decoded, err := ReadWAV(path)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, decoded.Samples[0][0], 1e-4)
	assert.InDelta(t, -1.0, decoded.Samples[0][1], 1e-4)
}

func TestWriteRejectsEmptyBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	assert.Error(t, WriteWAV(path, nil))
	assert.Error(t, WriteWAV(path, audio.NewMonoBuffer(nil, 44100)))
}

func TestReadRejectsMissingFile(t *testing.T) {
	_, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestLoadStemsNamesAfterFiles(t *testing.T) {
	dir := t.TempDir()
	kickPath := filepath.Join(dir, "kick.wav")
	bassPath := filepath.Join(dir, "bass.wav")

	require.NoError(t, WriteWAV(kickPath, testTone(1, 4410)))
	require.NoError(t, WriteWAV(bassPath, testTone(2, 4410)))

	stems, err := LoadStems([]string{kickPath, bassPath})
	require.NoError(t, err)
	require.Len(t, stems, 2)

	assert.Equal(t, "kick.wav", stems[0].Name)
	assert.Equal(t, "bass.wav", stems[1].Name)
	assert.Equal(t, 1, stems[0].Buffer.Channels())
	assert.Equal(t, 2, stems[1].Buffer.Channels())
}

func TestLoadStemsRejectsEmptyList(t *testing.T) {
	_, err := LoadStems(nil)
	assert.Error(t, err)
}
