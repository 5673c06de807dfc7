package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mjibson/go-dsp/fft"
)

// MinSamples is the shortest series a spectrum is computed for.
const MinSamples = 4

var ErrTooFewSamples = errors.New("analysis: too few samples")

// Bin is one frequency of a power spectrum.
type Bin struct {
	Freq  float64
	Power float64
}

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of data. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// Spectrum is the power spectrum of samples taken every sampleDt seconds,
// after removing the mean so the constant offset does not swamp bin 0.
func Spectrum(samples []float64, sampleDt float64) ([]Bin, error) {
	if len(samples) < MinSamples {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrTooFewSamples, len(samples), MinSamples)
	}
	if !(sampleDt > 0) {
		return nil, fmt.Errorf("analysis: sample interval must be positive, got %g", sampleDt)
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	centered := make([]float64, len(samples))
	for i, v := range samples {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	resolution := 1 / (float64(len(samples)) * sampleDt)
	bins := make([]Bin, len(ps))
	for i, p := range ps {
		bins[i] = Bin{Freq: float64(i) * resolution, Power: p}
	}
	return bins, nil
}

// DominantFrequency is the frequency of the strongest bin above DC. A series
// with no variation reports 0.
func DominantFrequency(samples []float64, sampleDt float64) (float64, error) {
	bins, err := Spectrum(samples, sampleDt)
	if err != nil {
		return 0, err
	}

	best := Bin{}
	for _, b := range bins[1:] {
		if b.Power > best.Power {
			best = b
		}
	}
	return best.Freq, nil
}

// UniformPrefix returns the spacing of times and the length of the leading
// run of samples that keep that spacing. A run recorded every N steps ends
// with a final frame off that cadence, which this drops. The tolerance
// absorbs the 6-decimal rounding of stored times.
func UniformPrefix(times []float64) (float64, int, error) {
	if len(times) < 2 {
		return 0, 0, fmt.Errorf("%w: got %d, need 2", ErrTooFewSamples, len(times))
	}
	dt := times[1] - times[0]
	if !(dt > 0) {
		return 0, 0, fmt.Errorf("analysis: sample times must increase, got spacing %g", dt)
	}

	tol := 1e-4*dt + 2e-6
	n := 2
	for n < len(times) && math.Abs(times[n]-times[n-1]-dt) <= tol {
		n++
	}
	return dt, n, nil
}

// HemSeries returns one coordinate (0=x, 1=y, 2=z) of the particle at the
// center of the bottom row in every frame.
func HemSeries(frames [][]mgl64.Vec3, rows, cols, axis int) ([]float64, error) {
	hem := (rows-1)*cols + cols/2
	out := make([]float64, len(frames))
	for i, frame := range frames {
		if len(frame) != rows*cols {
			return nil, fmt.Errorf("analysis: frame %d has %d particles, want %d", i, len(frame), rows*cols)
		}
		out[i] = frame[hem][axis]
	}
	return out, nil
}
