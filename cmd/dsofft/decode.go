package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-dso/instrument/sds"
	"github.com/cwbudde/algo-dso/waveform"
)

func newDecodeCmd() *cobra.Command {
	var (
		af   analysisFlags
		cal  waveform.Calibration
		sara string
	)

	cmd := &cobra.Command{
		Use:   "decode [flags] capture.bin",
		Short: "Decode a raw waveform response saved to disk and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			opts, err := af.options(cmd)
			if err != nil {
				return err
			}

			cal.SampleRate, err = sds.ParseSampleRate(sara)
			if err != nil {
				return fmt.Errorf("--sara: %w", err)
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			w, err := waveform.Decode(raw, cal)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			log.Debug().
				Str("file", args[0]).
				Int("samples", w.Len()).
				Float64("sample_rate", w.SampleRate).
				Msg("decoded")

			return render(cmd.OutOrStdout(), cfg, w, opts, af.tones)
		},
	}

	cmd.Flags().Float64Var(&cal.VoltsPerDivision, "vdiv", 1, "volts per division (Cn:VDIV?)")
	cmd.Flags().Float64Var(&cal.VoltageOffset, "offset", 0, "voltage offset (Cn:OFST?)")
	cmd.Flags().Float64Var(&cal.TimePerDivision, "tdiv", 1e-3, "seconds per division (TDIV?)")
	cmd.Flags().StringVar(&sara, "sara", "1GSa/s", "sample rate as reported by SARA?, e.g. 500MSa/s")
	af.register(cmd)

	return cmd
}
