package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// milliwatt is the dBm reference power in watts.
const milliwatt = 1e-3

// PowerSpectrum returns amplitude^2 per bin in V^2.
func PowerSpectrum(s Spectrum) []float64 {
	if len(s.Amplitude) == 0 {
		return nil
	}

	out := make([]float64, len(s.Amplitude))
	vecmath.MulBlock(out, s.Amplitude, s.Amplitude)

	return out
}

// PowerSpectrumDBm returns 10*log10(a^2/1mW/R) per bin for a reference
// impedance of R ohms. A bin with zero amplitude fails the whole view with
// ErrNonPositiveAmplitude; use PowerSpectrumDBmFloor to clamp instead.
func PowerSpectrumDBm(s Spectrum, referenceImpedance float64) ([]float64, error) {
	if err := validateImpedance(referenceImpedance); err != nil {
		return nil, err
	}

	out := make([]float64, len(s.Amplitude))
	for i, a := range s.Amplitude {
		if !(a > 0) {
			return nil, fmt.Errorf("%w: bin %d (%g Hz) = %g", ErrNonPositiveAmplitude, i, binFreq(s, i), a)
		}

		out[i] = dBm(a, referenceImpedance)
	}

	return out, nil
}

// PowerSpectrumDBmFloor is PowerSpectrumDBm with zero-amplitude bins and any
// value below floorDBm clamped to floorDBm.
func PowerSpectrumDBmFloor(s Spectrum, referenceImpedance, floorDBm float64) ([]float64, error) {
	if err := validateImpedance(referenceImpedance); err != nil {
		return nil, err
	}

	out := make([]float64, len(s.Amplitude))
	for i, a := range s.Amplitude {
		if !(a > 0) {
			out[i] = floorDBm
			continue
		}

		out[i] = math.Max(dBm(a, referenceImpedance), floorDBm)
	}

	return out, nil
}

func dBm(a, r float64) float64 {
	return 10 * math.Log10(a*a/milliwatt/r)
}

func validateImpedance(r float64) error {
	if !(r > 0) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidImpedance, r)
	}

	return nil
}

func binFreq(s Spectrum, i int) float64 {
	if i < len(s.Freq) {
		return s.Freq[i]
	}

	return math.NaN()
}
