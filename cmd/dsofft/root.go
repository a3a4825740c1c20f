package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-dso/dsp/spectrum"
	"github.com/cwbudde/algo-dso/dsp/window"
	"github.com/cwbudde/algo-dso/internal/config"
	"github.com/cwbudde/algo-dso/internal/report"
	"github.com/cwbudde/algo-dso/waveform"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "dsofft",
		Short:         "Decode oscilloscope captures and print their spectrum",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(stdout)
	root.SetErr(stderr)
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(newCaptureCmd(), newDecodeCmd(), newWindowCmd())

	return root
}

// setup resolves the configuration of cmd and builds the console logger.
func setup(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	v, err := config.New(cmd.Flags())
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(cfg.LogLevel).
		With().Timestamp().
		Logger()

	return cfg, log, nil
}

// analysisFlags holds the window selection and tone list shared by capture
// and decode.
type analysisFlags struct {
	window string
	beta   float64
	tones  []float64
}

func (a *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.window, "window", window.Info(window.TypeKaiser).Name, "analysis window")
	cmd.Flags().Float64Var(&a.beta, "beta", window.DefaultKaiserBeta, "shape parameter of parametric windows")
	cmd.Flags().Float64SliceVar(&a.tones, "tone", nil, "also print the amplitude at these frequencies in Hz")
}

func (a *analysisFlags) options(cmd *cobra.Command) ([]spectrum.Option, error) {
	t, ok := window.Lookup(strings.ToLower(strings.TrimSpace(a.window)))
	if !ok {
		return nil, fmt.Errorf("unknown window %q (see dsofft window --list)", a.window)
	}

	opts := []spectrum.Option{spectrum.WithWindow(t)}
	if cmd.Flags().Changed("beta") {
		opts = append(opts, spectrum.WithWindowParam(a.beta))
	}

	return opts, nil
}

// render prints the view selected in cfg, followed by the tone table when
// tones are given.
func render(out io.Writer, cfg config.Config, w waveform.Waveform, opts []spectrum.Option, tones []float64) error {
	if err := renderView(out, cfg, w, opts); err != nil {
		return err
	}

	if len(tones) == 0 {
		return nil
	}

	amps, err := spectrum.ToneAmplitudes(w.Volt, w.SampleRate, tones, opts...)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}

	return report.Tones(out, report.TitleTones, tones, amps)
}

func renderView(out io.Writer, cfg config.Config, w waveform.Waveform, opts []spectrum.Option) error {
	if cfg.View == config.ViewTrace {
		return report.Trace(out, report.TitleTrace, w)
	}

	s, err := w.Spectrum(opts...)
	if err != nil {
		return err
	}

	switch cfg.View {
	case config.ViewAmplitude:
		return report.Amplitude(out, report.TitleAmplitude, s)
	case config.ViewPower:
		return report.Power(out, report.TitlePower, s, spectrum.PowerSpectrum(s))
	case config.ViewSummary:
		if err := report.Measurements(out, report.TitleMeasure, waveform.Measure(w)); err != nil {
			return err
		}

		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}

		return report.Summary(out, report.TitleSummary, s, spectrum.Summarize(s))
	}

	var dbm []float64
	if cfg.ClampDBm {
		dbm, err = spectrum.PowerSpectrumDBmFloor(s, cfg.Impedance, cfg.DBmFloor)
	} else {
		dbm, err = spectrum.PowerSpectrumDBm(s, cfg.Impedance)
	}

	if err != nil {
		return err
	}

	return report.DBm(out, fmt.Sprintf("%s (R = %g ohm)", report.TitleDBm, cfg.Impedance), s, dbm)
}
