package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func sine(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		dt   float64
		n    int
	}{
		{"power of two", 2.0, 0.01, 512},
		{"odd length", 1.5, 0.02, 301},
		{"fast flutter", 12.0, 0.005, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DominantFrequency(sine(tt.freq, tt.dt, tt.n), tt.dt)
			if err != nil {
				t.Fatal(err)
			}
			resolution := 1 / (float64(tt.n) * tt.dt)
			if math.Abs(got-tt.freq) > resolution {
				t.Errorf("dominant frequency = %.3f Hz, want %.3f ± %.3f", got, tt.freq, resolution)
			}
		})
	}
}

func TestSpectrumRemovesMean(t *testing.T) {
	bins, err := Spectrum(sine(2, 0.01, 256), 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 128 {
		t.Fatalf("expected 128 bins, got %d", len(bins))
	}
	if bins[0].Power > 1e-9 {
		t.Errorf("DC bin should be empty after centering, got %g", bins[0].Power)
	}
	if bins[1].Freq != 1/2.56 {
		t.Errorf("bin spacing = %g, want %g", bins[1].Freq, 1/2.56)
	}
}

func TestDominantFrequency_Flat(t *testing.T) {
	got, err := DominantFrequency([]float64{1, 1, 1, 1, 1, 1}, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("flat series should report 0 Hz, got %g", got)
	}
}

func TestSpectrum_Errors(t *testing.T) {
	if _, err := Spectrum([]float64{1, 2, 3}, 0.1); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
	if _, err := Spectrum([]float64{1, 2, 3, 4}, 0); err == nil {
		t.Error("expected an error for a zero sample interval")
	}
}

func TestHemSeries(t *testing.T) {
	frames := [][]mgl64.Vec3{
		make([]mgl64.Vec3, 9),
		make([]mgl64.Vec3, 9),
	}
	frames[0][7] = mgl64.Vec3{0, -0.4, 0.1}
	frames[1][7] = mgl64.Vec3{0, -0.4, -0.2}

	z, err := HemSeries(frames, 3, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if z[0] != 0.1 || z[1] != -0.2 {
		t.Errorf("hem z = %v, want [0.1 -0.2]", z)
	}

	if _, err := HemSeries(frames, 4, 3, 2); err == nil {
		t.Error("expected a shape error")
	}
}

func TestUniformPrefix(t *testing.T) {
	tests := []struct {
		name   string
		times  []float64
		wantDt float64
		wantN  int
	}{
		{"even", []float64{0, 0.05, 0.1, 0.15}, 0.05, 4},
		{"short final frame", []float64{0, 0.05, 0.1, 0.15, 0.17}, 0.05, 4},
		{"two samples", []float64{1, 1.5}, 0.5, 2},
		{"rounded on disk", []float64{0, 0.033333, 0.066667, 0.1}, 0.033333, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, n, err := UniformPrefix(tt.times)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(dt-tt.wantDt) > 1e-12 || n != tt.wantN {
				t.Errorf("UniformPrefix = (%g, %d), want (%g, %d)", dt, n, tt.wantDt, tt.wantN)
			}
		})
	}

	if _, _, err := UniformPrefix([]float64{0}); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
	if _, _, err := UniformPrefix([]float64{1, 1, 2}); err == nil {
		t.Error("expected an error for repeated times")
	}
}
