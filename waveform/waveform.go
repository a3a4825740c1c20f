package waveform

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dso/dsp/spectrum"
)

const (
	// HeaderLen is the length of the response header preceding the samples.
	HeaderLen = 15
	// TrailerLen is the length of the terminator following the samples.
	TrailerLen = 2
	// MinCaptureLen is the shortest block that still carries one sample.
	MinCaptureLen = HeaderLen + TrailerLen + 1

	// CodesPerDivision is the number of sample codes per vertical division.
	CodesPerDivision = 25.0
	// HorizontalDivisions is the number of time divisions across the screen.
	HorizontalDivisions = 14
)

// Calibration holds the channel and timebase settings that were active
// when a capture was taken.
type Calibration struct {
	VoltsPerDivision float64
	VoltageOffset    float64
	TimePerDivision  float64
	SampleRate       float64 // Hz
}

// Validate reports whether c can be used to decode a capture.
func (c Calibration) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"volts/division", c.VoltsPerDivision},
		{"voltage offset", c.VoltageOffset},
		{"time/division", c.TimePerDivision},
		{"sample rate", c.SampleRate},
	}

	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite: %v", ErrInvalidCalibration, f.name, f.v)
		}
	}

	if c.VoltsPerDivision == 0 {
		return fmt.Errorf("%w: volts/division is zero", ErrInvalidCalibration)
	}

	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidCalibration, c.SampleRate)
	}

	return nil
}

// StartTime returns the time of the first sample. The capture is centered on
// the trigger, so the first sample sits half a screen before it.
func (c Calibration) StartTime() float64 {
	return -(c.TimePerDivision * HorizontalDivisions / 2)
}

// Waveform is a decoded capture. Time and Volt are index aligned.
type Waveform struct {
	Time       []float64 // seconds
	Volt       []float64 // volts
	SampleRate float64   // Hz
}

// Len returns the number of samples.
func (w Waveform) Len() int { return len(w.Volt) }

// Spectrum returns the single-sided amplitude spectrum of the voltage trace.
func (w Waveform) Spectrum(opts ...spectrum.Option) (spectrum.Spectrum, error) {
	return spectrum.Analyze(w.Volt, w.SampleRate, opts...)
}

// DecodeSample maps a raw sample code to its signed value.
func DecodeSample(b byte) int {
	if b > 127 {
		return int(b) - 255
	}

	return int(b)
}

// Payload returns the sample codes of raw without header and terminator.
// The returned slice aliases raw.
func Payload(raw []byte) ([]byte, error) {
	if len(raw) < MinCaptureLen {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedCapture, len(raw), MinCaptureLen)
	}

	return raw[HeaderLen : len(raw)-TrailerLen], nil
}

// Decode converts a raw waveform block to calibrated samples. raw is not
// modified and the result does not alias it.
func Decode(raw []byte, cal Calibration) (Waveform, error) {
	codes, err := Payload(raw)
	if err != nil {
		return Waveform{}, err
	}

	if err := cal.Validate(); err != nil {
		return Waveform{}, err
	}

	n := len(codes)
	w := Waveform{
		Time:       make([]float64, n),
		Volt:       make([]float64, n),
		SampleRate: cal.SampleRate,
	}

	t0 := cal.StartTime()
	dt := 1 / cal.SampleRate

	for i, b := range codes {
		w.Volt[i] = float64(DecodeSample(b))/CodesPerDivision*cal.VoltsPerDivision - cal.VoltageOffset
		w.Time[i] = t0 + float64(i)*dt
	}

	return w, nil
}
