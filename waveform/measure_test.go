package waveform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sineTrace(offset, amp, freq, phase, fs float64, n int) Waveform {
	w := Waveform{Time: make([]float64, n), Volt: make([]float64, n), SampleRate: fs}
	for i := range w.Volt {
		w.Time[i] = float64(i) / fs
		w.Volt[i] = offset + amp*math.Sin(2*math.Pi*freq*w.Time[i]+phase)
	}
	return w
}

func TestMeasureSine(t *testing.T) {
	m := Measure(sineTrace(0.5, 2, 10, 0.3, 1000, 1000))

	assert.Equal(t, 1000, m.Samples)
	assert.InDelta(t, 0.5, m.Mean, 1e-12)
	assert.InDelta(t, 2/math.Sqrt2, m.ACRMS, 1e-9)
	assert.InDelta(t, math.Sqrt(0.25+2), m.RMS, 1e-9)
	assert.InDelta(t, 2.5, m.Max, 2e-3)
	assert.InDelta(t, -1.5, m.Min, 2e-3)
	assert.InDelta(t, 4, m.PeakToPeak, 4e-3)
	assert.InDelta(t, 2.5/1.5, m.CrestFactor, 2e-3)
	assert.Equal(t, 20, m.Crossings)
	assert.InDelta(t, 10, m.Frequency, 1e-4)
	assert.Less(t, m.MaxTime, m.MinTime)
}

func TestMeasureDecodedCapture(t *testing.T) {
	// Alternating +1/-1 division steps, two samples each.
	codes := []byte{25, 25, 230, 230, 25, 25, 230, 230, 25, 25, 230, 230}
	raw := append([]byte("DAT2,#900000000"), codes...)
	raw = append(raw, '\n', '\n')

	w, err := Decode(raw, Calibration{VoltsPerDivision: 1, TimePerDivision: 1e-6, SampleRate: 1e6})
	assert.NoError(t, err)

	m := Measure(w)
	assert.InDelta(t, 0, m.Mean, 1e-12)
	assert.InDelta(t, 1, m.RMS, 1e-12)
	assert.InDelta(t, 2, m.PeakToPeak, 1e-12)
	assert.Equal(t, 5, m.Crossings)
	// Rising passes halfway between samples 3-4 and 7-8.
	assert.InDelta(t, 1e6/4, m.Frequency, 1e-6)
}

func TestMeasureFlat(t *testing.T) {
	dc := Waveform{Time: []float64{0, 1, 2}, Volt: []float64{0.7, 0.7, 0.7}}
	m := Measure(dc)
	assert.Equal(t, 0, m.Crossings)
	assert.Zero(t, m.Frequency)
	assert.InDelta(t, 0, m.ACRMS, 1e-12)
	assert.InDelta(t, 1, m.CrestFactor, 1e-12)

	zero := Waveform{Time: []float64{0, 1}, Volt: []float64{0, 0}}
	assert.Zero(t, Measure(zero).CrestFactor)

	assert.Equal(t, Measurements{}, Measure(Waveform{}))
}
