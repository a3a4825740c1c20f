package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates amplitude*sin(2 pi f n / fs).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// captureHeader is a 15 byte waveform response prefix as sent by the scope
// with command headers disabled.
var captureHeader = []byte("DAT2,#900000000")

// FramedCapture wraps raw sample codes in the 15 byte response header and the
// two byte terminator that the scope sends around a waveform block.
func FramedCapture(codes ...byte) []byte {
	out := make([]byte, 0, len(captureHeader)+len(codes)+2)
	out = append(out, captureHeader...)
	out = append(out, codes...)
	return append(out, '\n', '\n')
}

// RepeatedCode returns n copies of code.
func RepeatedCode(code byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = code
	}
	return out
}

// SineCodes quantizes a sine of the given peak (in codes, at most 127) to the
// scope's byte encoding, where negative values c are sent as c+255.
func SineCodes(cycles float64, peak float64, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		v := int(math.Round(peak * math.Sin(2*math.Pi*cycles*float64(i)/float64(n))))
		if v < 0 {
			v += 255
		}
		out[i] = byte(v)
	}
	return out
}
