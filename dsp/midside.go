package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// EncodeMS converts left/right channels to mid/side.
// mid = (L+R)/2, side = (L-R)/2.
func EncodeMS(left, right []float64) (mid, side []float64, err error) {
	if len(left) != len(right) {
		return nil, nil, fmt.Errorf("channel length mismatch: %d vs %d", len(left), len(right))
	}

	mid = make([]float64, len(left))
	side = make([]float64, len(left))
	for i := range left {
		mid[i] = 0.5 * (left[i] + right[i])
		side[i] = 0.5 * (left[i] - right[i])
	}
	return mid, side, nil
}

// DecodeMS converts mid/side back to left/right.
// L = mid + side, R = mid - side.
func DecodeMS(mid, side []float64) (left, right []float64, err error) {
	if len(mid) != len(side) {
		return nil, nil, fmt.Errorf("channel length mismatch: %d vs %d", len(mid), len(side))
	}

	left = make([]float64, len(mid))
	right = make([]float64, len(mid))
	for i := range mid {
		left[i] = mid[i] + side[i]
		right[i] = mid[i] - side[i]
	}
	return left, right, nil
}

// ApplyWidth scales the stereo image. widthPercent of 100 leaves the
// signal untouched, 0 collapses to mono, 150 widens by half.
func ApplyWidth(left, right []float64, widthPercent float64) (outLeft, outRight []float64, err error) {
	mid, side, err := EncodeMS(left, right)
	if err != nil {
		return nil, nil, err
	}

	scale := widthPercent / 100.0
	for i := range side {
		side[i] *= scale
	}

	return DecodeMS(mid, side)
}

// ApplyWidthSafeBass widens like ApplyWidth but keeps frequencies below
// bassFreq in the mid channel: the side signal is high-passed with a
// zero-phase Butterworth so low end stays mono and phase coherent.
func ApplyWidthSafeBass(left, right []float64, widthPercent, bassFreq float64, sampleRate int) (outLeft, outRight []float64, err error) {
	mid, side, err := EncodeMS(left, right)
	if err != nil {
		return nil, nil, err
	}

	hp, err := NewButterworthHighpass(sampleRate, bassFreq)
	if err != nil {
		return nil, nil, err
	}
	side = hp.ProcessZeroPhase(side)

	scale := widthPercent / 100.0
	for i := range side {
		side[i] *= scale
	}

	return DecodeMS(mid, side)
}

// MonoCompatibility reports how well a stereo signal survives a mono
// fold-down: the channel correlation and the level change in dB when
// the channels are summed.
type MonoCompatibility struct {
	Correlation    float64 `json:"correlation"`
	CancellationDB float64 `json:"cancellation_db"`
	Compatible     bool    `json:"compatible"`
}

// CheckMonoCompatibility measures correlation and sum cancellation.
// Compatible means correlation >= 0.1 and cancellation above -6 dB.
func CheckMonoCompatibility(left, right []float64) (*MonoCompatibility, error) {
	if len(left) != len(right) {
		return nil, fmt.Errorf("channel length mismatch: %d vs %d", len(left), len(right))
	}
	if len(left) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	corr := stat.Correlation(left, right, nil)
	if math.IsNaN(corr) {
		// Constant channels; treat as fully correlated
		corr = 1.0
	}

	stereoPower := 0.0
	monoPower := 0.0
	for i := range left {
		stereoPower += left[i]*left[i] + right[i]*right[i]
		m := 0.5 * (left[i] + right[i])
		monoPower += 2.0 * m * m
	}

	cancellation := 0.0
	if stereoPower > 1e-20 {
		cancellation = 10.0 * math.Log10((monoPower+1e-20)/stereoPower)
	}

	return &MonoCompatibility{
		Correlation:    corr,
		CancellationDB: cancellation,
		Compatible:     corr >= 0.1 && cancellation > -6.0,
	}, nil
}
