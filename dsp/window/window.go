package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop
	TypeKaiser
)

// DefaultKaiserBeta is the Kaiser shape parameter used for capture spectra.
const DefaultKaiserBeta = 12.0

// Metadata holds static properties of a window type.
type Metadata struct {
	Name     string
	HasParam bool
	// DefaultParam is the shape parameter used when none is supplied.
	DefaultParam float64
}

var metadataByType = map[Type]Metadata{
	TypeRectangular:         {Name: "rectangular"},
	TypeHann:                {Name: "hann"},
	TypeHamming:             {Name: "hamming"},
	TypeBlackman:            {Name: "blackman"},
	TypeBlackmanHarris4Term: {Name: "blackman-harris-4t"},
	TypeFlatTop:             {Name: "flat-top"},
	TypeKaiser:              {Name: "kaiser", HasParam: true, DefaultParam: DefaultKaiserBeta},
}

// Cosine-sum coefficients, w(x) = sum c[k] cos(2 pi k x) over x in [0,1].
var (
	hannCoeffs            = []float64{0.5, -0.5}
	hammingCoeffs         = []float64{0.54, -0.46}
	blackmanCoeffs        = []float64{0.42, -0.5, 0.08}
	blackmanHarris4Coeffs = []float64{0.35875, -0.48829, 0.14128, -0.01168}
	flatTopCoeffs         = []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}
)

// Option configures window generation.
type Option func(*config)

type config struct {
	param    float64
	hasParam bool
	periodic bool
}

// WithParam sets the shape parameter of parametric windows (Kaiser beta).
// Negative values are ignored.
func WithParam(v float64) Option {
	return func(c *config) {
		if v >= 0 && !math.IsNaN(v) {
			c.param = v
			c.hasParam = true
		}
	}
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Types returns all supported window types in declaration order.
func Types() []Type {
	return []Type{
		TypeRectangular,
		TypeHann,
		TypeHamming,
		TypeBlackman,
		TypeBlackmanHarris4Term,
		TypeFlatTop,
		TypeKaiser,
	}
}

// Info returns static metadata for a window type.
func Info(t Type) Metadata {
	if m, ok := metadataByType[t]; ok {
		return m
	}

	return Metadata{}
}

// Lookup resolves a window by its metadata name.
func Lookup(name string) (Type, bool) {
	for t, m := range metadataByType {
		if m.Name == name {
			return t, true
		}
	}

	return 0, false
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := config{param: Info(t).DefaultParam}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		x := samplePosition(i, length, cfg.periodic)
		out[i] = evalWindow(t, x, cfg.param)
	}

	return out
}

// Kaiser returns symmetric Kaiser window coefficients.
func Kaiser(size int, beta float64) ([]float64, error) {
	if err := validateKaiser(size, beta); err != nil {
		return nil, err
	}

	return Generate(TypeKaiser, size, WithParam(beta)), nil
}

// NormalizeSum scales coeffs in place so that they sum to len(coeffs).
// A window normalized this way leaves the amplitude of a coherent tone
// unchanged after the transform.
func NormalizeSum(coeffs []float64) error {
	if len(coeffs) == 0 {
		return errEmptyCoeffs
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return errZeroCoherentGain
	}

	vecmath.ScaleBlock(coeffs, coeffs, float64(len(coeffs))/sum)

	return nil
}

// ApplyCoefficients multiplies samples with coefficients and returns a new slice.
func ApplyCoefficients(samples, coeffs []float64) ([]float64, error) {
	if len(samples) != len(coeffs) {
		return nil, errMismatchedLength
	}

	out := make([]float64, len(samples))
	vecmath.MulBlock(out, samples, coeffs)

	return out, nil
}

// CoherentGain returns sum(w)/N.
func CoherentGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs)), nil
}

// EquivalentNoiseBandwidth returns the ENBW in bins for a window.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := 0.0
	sumSquares := 0.0

	for _, c := range coeffs {
		sum += c
		sumSquares += c * c
	}

	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return float64(len(coeffs)) * sumSquares / (sum * sum), nil
}

func evalWindow(t Type, x, param float64) float64 {
	switch t {
	case TypeRectangular:
		return 1
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	case TypeBlackmanHarris4Term:
		return cosineFromCoeffs(x, blackmanHarris4Coeffs)
	case TypeFlatTop:
		return cosineFromCoeffs(x, flatTopCoeffs)
	case TypeKaiser:
		return kaiserAt(x, param)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0.5
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}

func kaiserAt(x, beta float64) float64 {
	if beta <= 0 {
		return 1
	}

	r := 2*x - 1
	term := math.Sqrt(math.Max(0, 1-r*r))

	return besselI0(beta*term) / besselI0(beta)
}

// besselI0 evaluates the modified Bessel function I0 by its power series,
// sum ((x/2)^k / k!)^2, until terms stop contributing.
func besselI0(x float64) float64 {
	half := x / 2
	sum := 1.0
	term := 1.0

	for k := 1; k < 500; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term

		if term < sum*1e-17 {
			break
		}
	}

	return sum
}
