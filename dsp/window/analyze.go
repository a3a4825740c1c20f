package window

import (
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

const (
	// gridOversample is the number of response points per bin used to
	// locate nulls and sidelobes.
	gridOversample = 32
	// maxGrid caps the zero-padded transform length.
	maxGrid = 1 << 22
)

// Analysis holds numerically computed spectral properties of a window.
type Analysis struct {
	// CoherentGain is sum(w[n]) / N, the DC response of the window.
	CoherentGain float64
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
	// Bandwidth3dB is the two-sided half-power main lobe width in bins.
	Bandwidth3dB float64
	// FirstNullBins is the distance from DC to the first spectral null.
	FirstNullBins float64
	// HighestSidelobedB is the highest sidelobe relative to DC.
	HighestSidelobedB float64
	// ScallopLossdB is the level of a tone half a bin off center.
	ScallopLossdB float64
}

// Analyze evaluates the window's DTFT numerically.
func Analyze(coeffs []float64) Analysis {
	n := len(coeffs)
	if n == 0 {
		return Analysis{}
	}

	dc := dtftPower(coeffs, 0)
	if dc == 0 {
		return Analysis{}
	}

	cg, _ := CoherentGain(coeffs)
	enbw, _ := EquivalentNoiseBandwidth(coeffs)

	grid, err := gridPower(coeffs)
	if err != nil {
		return Analysis{CoherentGain: cg, ENBW: enbw}
	}

	nf := float64(n)
	m := float64(2 * (len(grid) - 1))
	null := firstNull(grid, dc)

	return Analysis{
		CoherentGain:      cg,
		ENBW:              enbw,
		Bandwidth3dB:      2 * halfPowerFreq(coeffs, dc) * nf,
		FirstNullBins:     float64(null) / m * nf,
		HighestSidelobedB: sidelobeLevel(grid, dc, null),
		ScallopLossdB:     10 * math.Log10(dtftPower(coeffs, 0.5/nf)/dc),
	}
}

// dtftPower returns |W(f)|^2 at normalized frequency f in cycles/sample.
func dtftPower(coeffs []float64, f float64) float64 {
	re, im := 0.0, 0.0
	w := 2 * math.Pi * f

	for k, c := range coeffs {
		s, co := math.Sincos(w * float64(k))
		re += c * co
		im -= c * s
	}

	return re*re + im*im
}

func halfPowerFreq(coeffs []float64, dc float64) float64 {
	lo, hi := 0.0, 0.5

	for range 64 {
		mid := (lo + hi) / 2
		if dtftPower(coeffs, mid)/dc > 0.5 {
			lo = mid
		} else {
			hi = mid
		}
	}

	return lo
}

// gridPower returns |W(k/m)|^2 for k in 0..m/2 from a zero-padded
// power-of-two transform of about gridOversample points per bin.
func gridPower(coeffs []float64) ([]float64, error) {
	n := len(coeffs)

	m := 2
	for m < gridOversample*n && m < maxGrid {
		m <<= 1
	}

	for m < n {
		m <<= 1
	}

	plan, err := algofft.NewPlan64(m)
	if err != nil {
		return nil, err
	}

	in := make([]complex128, m)
	for i, c := range coeffs {
		in[i] = complex(c, 0)
	}

	out := make([]complex128, m)
	if err := plan.Forward(out, in); err != nil {
		return nil, err
	}

	p := make([]float64, m/2+1)
	for k := range p {
		re, im := real(out[k]), imag(out[k])
		p[k] = re*re + im*im
	}

	return p, nil
}

// firstNull walks out from DC until the response turns upward after falling
// below a tenth of DC and returns the grid index of that minimum.
func firstNull(grid []float64, dc float64) int {
	prev := grid[0]

	for k := 1; k < len(grid); k++ {
		v := grid[k]
		if prev < dc*0.1 && v > prev {
			return k - 1
		}

		prev = v
	}

	return len(grid) - 1
}

func sidelobeLevel(grid []float64, dc float64, from int) float64 {
	peak := 0.0

	for _, v := range grid[from:] {
		if v > peak {
			peak = v
		}
	}

	if peak <= 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(peak/dc)
}
