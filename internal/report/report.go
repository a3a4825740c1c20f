// Package report renders captures and spectra as aligned text tables.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-dso/dsp/spectrum"
	"github.com/cwbudde/algo-dso/waveform"
)

// Default titles, one per view.
const (
	TitleTrace     = "Voltage over Time"
	TitleAmplitude = "Amplitude Spectrum"
	TitlePower     = "Power Spectrum"
	TitleDBm       = "Power Spectrum in dBm"
	TitleSummary   = "Spectrum Summary"
	TitleMeasure   = "Trace Measurements"
	TitleTones     = "Tone Amplitudes"
)

var errLength = errors.New("report: column lengths differ")

// table collects rows and remembers the first write error.
type table struct {
	tw  *tabwriter.Writer
	err error
}

func newTable(w io.Writer, title string, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}

	if title != "" {
		t.printf("%s\n\n", title)
	}

	for i, h := range header {
		if i > 0 {
			t.printf("\t")
		}
		t.printf("%s", h)
	}
	t.printf("\n")

	for i, h := range header {
		if i > 0 {
			t.printf("\t")
		}
		t.printf("%s", strings.Repeat("-", len(h)))
	}
	t.printf("\n")

	return t
}

func (t *table) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.tw, format, args...)
}

func (t *table) flush() error {
	if t.err != nil {
		return t.err
	}
	return t.tw.Flush()
}

// Trace writes the time/voltage pairs of w.
func Trace(out io.Writer, title string, w waveform.Waveform) error {
	if len(w.Time) != len(w.Volt) {
		return errLength
	}

	t := newTable(out, title, "Time [s]", "Voltage [V]")
	for i := range w.Volt {
		t.printf("%.6e\t%.6f\n", w.Time[i], w.Volt[i])
	}

	return t.flush()
}

// Amplitude writes the single-sided amplitude spectrum in volts.
func Amplitude(out io.Writer, title string, s spectrum.Spectrum) error {
	return column(out, title, s.Freq, s.Amplitude, "Amplitude [V]", "%.6e")
}

// Power writes a power view, as returned by spectrum.PowerSpectrum.
func Power(out io.Writer, title string, s spectrum.Spectrum, power []float64) error {
	return column(out, title, s.Freq, power, "Power [V^2]", "%.6e")
}

// DBm writes a dBm view, as returned by spectrum.PowerSpectrumDBm.
func DBm(out io.Writer, title string, s spectrum.Spectrum, dbm []float64) error {
	return column(out, title, s.Freq, dbm, "Level [dBm]", "%.2f")
}

func column(out io.Writer, title string, freq, values []float64, label, format string) error {
	if len(freq) != len(values) {
		return fmt.Errorf("%w: %d frequencies, %d values", errLength, len(freq), len(values))
	}

	t := newTable(out, title, "Frequency [Hz]", label)
	for i, v := range values {
		t.printf("%.3f\t"+format+"\n", freq[i], v)
	}

	return t.flush()
}

// Summary writes the figures of a spectrum summary as name/value rows.
func Summary(out io.Writer, title string, s spectrum.Spectrum, sum spectrum.Summary) error {
	t := newTable(out, title, "Quantity", "Value")

	t.printf("FFT length\t%d\n", s.FFTLength)
	t.printf("Bins\t%d\n", sum.BinCount)
	t.printf("Bin width [Hz]\t%.6g\n", s.BinWidth())
	t.printf("DC [V]\t%.6e\n", sum.DC)
	t.printf("Peak [V]\t%.6e\n", sum.Peak)
	t.printf("Peak bin\t%d\n", sum.PeakBin)
	t.printf("Peak frequency [Hz]\t%.6g\n", sum.PeakFreq)
	t.printf("Centroid [Hz]\t%.6g\n", sum.Centroid)
	t.printf("Rolloff 85%% [Hz]\t%.6g\n", sum.Rolloff)
	t.printf("Energy [V^2]\t%.6e\n", sum.Energy)

	return t.flush()
}

// Measurements writes the automatic trace measurements.
func Measurements(out io.Writer, title string, m waveform.Measurements) error {
	t := newTable(out, title, "Quantity", "Value")

	t.printf("Samples\t%d\n", m.Samples)
	t.printf("Mean [V]\t%.6f\n", m.Mean)
	t.printf("RMS [V]\t%.6f\n", m.RMS)
	t.printf("AC RMS [V]\t%.6f\n", m.ACRMS)
	t.printf("Min [V]\t%.6f\n", m.Min)
	t.printf("Max [V]\t%.6f\n", m.Max)
	t.printf("Peak-peak [V]\t%.6f\n", m.PeakToPeak)
	t.printf("Crest factor\t%.4f\n", m.CrestFactor)
	t.printf("Crossings\t%d\n", m.Crossings)
	t.printf("Frequency [Hz]\t%.6g\n", m.Frequency)

	return t.flush()
}

// Tones writes the amplitude measured at each requested frequency.
func Tones(out io.Writer, title string, freqs, amplitudes []float64) error {
	return column(out, title, freqs, amplitudes, "Amplitude [V]", "%.6e")
}
