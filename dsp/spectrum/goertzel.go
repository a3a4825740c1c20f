package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dso/dsp/window"
)

// Goertzel evaluates a single DFT term with the Goertzel recurrence.
//
// The analyzer is stateful: Power and Magnitude reflect every sample
// processed since the last Reset. The magnitude is exact for any target
// frequency, including frequencies between FFT bins.
type Goertzel struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
}

// NewGoertzel creates a Goertzel analyzer for frequency, which must lie in
// [0, sampleRate/2].
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("goertzel: %w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if !(frequency >= 0) || frequency > sampleRate/2 {
		return nil, fmt.Errorf("goertzel: frequency must be between 0 and sampleRate/2: %v", frequency)
	}

	return &Goertzel{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Reset clears the internal state.
func (g *Goertzel) Reset() {
	g.s0 = 0
	g.s1 = 0
}

// ProcessBlock updates the internal state with a block of samples.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1

	coeff := g.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
}

// Power returns |X(f)|^2 over the processed samples.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Magnitude returns |X(f)|.
func (g *Goertzel) Magnitude() float64 {
	p := g.Power()
	if p <= 0 {
		return 0
	}

	return math.Sqrt(p)
}

// Frequency returns the target frequency.
func (g *Goertzel) Frequency() float64 { return g.frequency }

// ToneAmplitudes measures the amplitude of each frequency in samples with the
// same window and scaling as Analyze, but without zero padding or bin
// quantization. Results are in the units of samples.
func ToneAmplitudes(samples []float64, sampleRate float64, frequencies []float64, opts ...Option) ([]float64, error) {
	n := len(samples)
	if n == 0 {
		return nil, ErrEmptyWaveform
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	coeffs := window.Generate(cfg.window, n, window.WithParam(cfg.param))
	if err := window.NormalizeSum(coeffs); err != nil {
		return nil, fmt.Errorf("tone window: %w", err)
	}

	windowed, err := window.ApplyCoefficients(samples, coeffs)
	if err != nil {
		return nil, fmt.Errorf("tone window: %w", err)
	}

	out := make([]float64, len(frequencies))
	for i, f := range frequencies {
		g, err := NewGoertzel(f, sampleRate)
		if err != nil {
			return nil, err
		}

		g.ProcessBlock(windowed)
		out[i] = 2 / float64(n) * g.Magnitude()
	}

	return out, nil
}
