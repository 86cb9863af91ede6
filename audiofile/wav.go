// Package audiofile reads and writes WAV files for the CLI layer.
// Integer PCM (16/24/32-bit) and float formats decode to the engine's
// planar float64 buffers; output is 24-bit PCM.
package audiofile

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-mix/audio"
	"github.com/RyanBlaney/sonido-mix/logging"
)

const outputBitDepth = 24

// ReadWAV decodes a WAV file into a Buffer. Multichannel files beyond
// stereo are rejected; the engine works in mono and stereo only.
func ReadWAV(path string) (*audio.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read PCM from %s: %w", path, err)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%s has %d channels, only mono and stereo are supported", path, channels)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = pcm.SourceBitDepth
	}
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	frames := len(pcm.Data) / channels
	buf, err := audio.NewBuffer(channels, frames, pcm.Format.SampleRate)
	if err != nil {
		return nil, err
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			buf.Samples[ch][i] = float64(pcm.Data[i*channels+ch]) * scale
		}
	}

	logging.Debug("wav decoded", logging.Fields{
		"path":        filepath.Base(path),
		"channels":    channels,
		"sample_rate": pcm.Format.SampleRate,
		"bit_depth":   bitDepth,
		"frames":      frames,
	})

	return buf, nil
}

// WriteWAV encodes a buffer as 24-bit PCM. Samples are clamped to
// full scale before quantization.
func WriteWAV(path string, buf *audio.Buffer) error {
	if buf == nil || buf.Length() == 0 {
		return fmt.Errorf("no audio to write")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	channels := buf.Channels()
	frames := buf.Length()
	fullScale := float64(int64(1)<<(outputBitDepth-1)) - 1

	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			sample := math.Max(-1.0, math.Min(1.0, buf.Samples[ch][i]))
			data[i*channels+ch] = int(math.Round(sample * fullScale))
		}
	}

	pcm := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  buf.SampleRate,
		},
		Data:           data,
		SourceBitDepth: outputBitDepth,
	}

	encoder := wav.NewEncoder(file, buf.SampleRate, outputBitDepth, channels, 1)
	if err := encoder.Write(pcm); err != nil {
		encoder.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}

	logging.Debug("wav encoded", logging.Fields{
		"path":      filepath.Base(path),
		"channels":  channels,
		"frames":    frames,
		"bit_depth": outputBitDepth,
	})

	return nil
}

// LoadStems reads a set of WAV files as stems named after their
// filenames. All files must share a sample rate.
func LoadStems(paths []string) ([]*audio.Stem, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}

	stems := make([]*audio.Stem, 0, len(paths))
	for _, path := range paths {
		buf, err := ReadWAV(path)
		if err != nil {
			return nil, err
		}
		stems = append(stems, audio.NewStem(filepath.Base(path), buf))
	}

	rate := stems[0].Buffer.SampleRate
	for _, s := range stems {
		if s.Buffer.SampleRate != rate {
			return nil, fmt.Errorf("stem %s rate %d differs from session rate %d, resample inputs first",
				s.Name, s.Buffer.SampleRate, rate)
		}
	}

	return stems, nil
}
