package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-dso/instrument/scpi"
	"github.com/cwbudde/algo-dso/instrument/sds"
)

func newCaptureCmd() *cobra.Command {
	var af analysisFlags

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Acquire one channel over the network and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}

			opts, err := af.options(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			conn, err := scpi.Dial(ctx, cfg.Addr,
				scpi.WithTimeout(cfg.Timeout),
				scpi.WithMaxBlock(cfg.MaxBlock),
				scpi.WithLogger(log),
			)
			if err != nil {
				return err
			}
			defer conn.Close()

			scope := sds.New(conn, sds.WithLogger(log))

			if err := scope.Prepare(ctx); err != nil {
				return err
			}

			idn, err := scope.Identity(ctx)
			if err != nil {
				return err
			}

			mode, err := scope.AcquisitionMode(ctx)
			if err != nil {
				return err
			}

			attn, err := scope.Attenuation(ctx, cfg.Channel)
			if err != nil {
				return err
			}

			log.Info().
				Str("instrument", idn).
				Str("acquisition", mode).
				Float64("attenuation", attn).
				Int("channel", cfg.Channel).
				Msg("connected")

			w, err := scope.Acquire(ctx, cfg.Channel)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), cfg, w, opts, af.tones)
		},
	}

	af.register(cmd)

	return cmd
}
