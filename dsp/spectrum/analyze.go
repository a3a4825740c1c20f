package spectrum

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cwbudde/algo-dso/dsp/window"
)

// Spectrum is a single-sided amplitude spectrum.
//
// Freq and Amplitude are index aligned and hold ceil(FFTLength/2) bins,
// starting at 0 Hz and ending just below Nyquist. Amplitude is in the units
// of the analyzed samples (volts for scope captures).
type Spectrum struct {
	Freq       []float64
	Amplitude  []float64
	FFTLength  int
	SampleRate float64
}

// Len returns the number of bins.
func (s Spectrum) Len() int { return len(s.Amplitude) }

// BinWidth returns the spacing of adjacent bins in Hz.
func (s Spectrum) BinWidth() float64 {
	if s.FFTLength == 0 {
		return 0
	}
	return s.SampleRate / float64(s.FFTLength)
}

// Option configures Analyze.
type Option func(*config)

type config struct {
	window window.Type
	param  float64
}

func defaultConfig() config {
	return config{
		window: window.TypeKaiser,
		param:  window.DefaultKaiserBeta,
	}
}

// WithWindow selects the analysis window. The shape parameter falls back to
// the window's default unless WithWindowParam follows.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
		c.param = window.Info(t).DefaultParam
	}
}

// WithWindowParam sets the window shape parameter (Kaiser beta).
func WithWindowParam(v float64) Option {
	return func(c *config) {
		if v >= 0 && !math.IsInf(v, 0) {
			c.param = v
		}
	}
}

// Analyze computes the single-sided amplitude spectrum of samples taken at
// sampleRate Hz. samples is not modified.
func Analyze(samples []float64, sampleRate float64, opts ...Option) (Spectrum, error) {
	n := len(samples)
	if n == 0 {
		return Spectrum{}, ErrEmptyWaveform
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return Spectrum{}, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	coeffs := window.Generate(cfg.window, n, window.WithParam(cfg.param))
	if err := window.NormalizeSum(coeffs); err != nil {
		return Spectrum{}, fmt.Errorf("spectrum window: %w", err)
	}

	windowed, err := window.ApplyCoefficients(samples, coeffs)
	if err != nil {
		return Spectrum{}, fmt.Errorf("spectrum window: %w", err)
	}

	fftLength := NextFastLen(n)

	in := make([]complex128, fftLength)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	out, err := forward(in)
	if err != nil {
		return Spectrum{}, err
	}

	half := fftLength / 2

	amplitude := Magnitude(FFTShift(out)[half:])
	vecmath.ScaleBlock(amplitude, amplitude, 2/float64(fftLength))

	freq := FFTShift(FFTFreq(fftLength))[half:]
	vecmath.ScaleBlock(freq, freq, sampleRate)

	return Spectrum{
		Freq:       freq,
		Amplitude:  amplitude,
		FFTLength:  fftLength,
		SampleRate: sampleRate,
	}, nil
}

// forward returns the DFT of in. A single point is its own transform.
// Lengths with a factor of five run on gonum's mixed-radix FFT: algo-fft
// plans return wrong coefficients for 2^a*5^b lengths with a >= 3.
func forward(in []complex128) ([]complex128, error) {
	n := len(in)
	out := make([]complex128, n)

	switch {
	case n == 1:
		out[0] = in[0]
		return out, nil
	case n%5 == 0:
		return fourier.NewCmplxFFT(n).Coefficients(out, in), nil
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("spectrum init fft plan: %w", err)
	}

	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("spectrum forward fft: %w", err)
	}

	return out, nil
}
