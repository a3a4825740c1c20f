package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-dso/dsp/window"
)

func newWindowCmd() *cobra.Command {
	var (
		size     int
		param    float64
		periodic bool
		list     bool
	)

	cmd := &cobra.Command{
		Use:   "window [flags] [window-name ...]",
		Short: "Print spectral properties of the analysis windows",
		Long: "Prints spectral properties of the analysis windows.\n" +
			"Without arguments it prints all windows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if list {
				return printList(out)
			}

			types, err := resolveWindows(args)
			if err != nil {
				return err
			}

			if size <= 0 {
				return fmt.Errorf("--size must be > 0: %d", size)
			}

			var opts []window.Option
			if periodic {
				opts = append(opts, window.WithPeriodic())
			}

			override := cmd.Flags().Changed("beta")

			return printAnalysis(out, types, size, param, override, opts)
		},
	}

	cmd.Flags().IntVar(&size, "size", 1024, "window length in samples")
	cmd.Flags().Float64Var(&param, "beta", window.DefaultKaiserBeta, "shape parameter for parametric windows (kaiser)")
	cmd.Flags().BoolVar(&periodic, "periodic", false, "use periodic (FFT) form instead of symmetric")
	cmd.Flags().BoolVar(&list, "list", false, "list available window names")

	return cmd
}

func printList(out io.Writer) error {
	names := make([]string, 0, len(window.Types()))
	for _, t := range window.Types() {
		names = append(names, window.Info(t).Name)
	}

	sort.Strings(names)

	for _, n := range names {
		if _, err := fmt.Fprintln(out, n); err != nil {
			return err
		}
	}

	return nil
}

func resolveWindows(names []string) ([]window.Type, error) {
	if len(names) == 0 {
		return window.Types(), nil
	}

	types := make([]window.Type, 0, len(names))
	for _, name := range names {
		t, ok := window.Lookup(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("unknown window %q (use --list to see available)", name)
		}

		types = append(types, t)
	}

	return types, nil
}

func printAnalysis(out io.Writer, types []window.Type, size int, param float64, override bool, baseOpts []window.Option) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Window\tSize\tCoherent Gain\tENBW [bins]\tBW 3dB [bins]\tSidelobe [dB]\t1st Null [bins]\tScallop [dB]\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(tw, "------\t----\t-------------\t-----------\t-------------\t-------------\t---------------\t------------\n"); err != nil {
		return err
	}

	for _, t := range types {
		info := window.Info(t)

		opts := append([]window.Option(nil), baseOpts...)
		p := info.DefaultParam
		if info.HasParam && override {
			p = param
			opts = append(opts, window.WithParam(p))
		}

		a := window.Analyze(window.Generate(t, size, opts...))

		label := info.Name
		if info.HasParam {
			label = fmt.Sprintf("%s (b=%.2f)", info.Name, p)
		}

		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.4f\t%.2f\t%.4f\t%.4f\n",
			label,
			size,
			a.CoherentGain,
			a.ENBW,
			a.Bandwidth3dB,
			a.HighestSidelobedB,
			a.FirstNullBins,
			a.ScallopLossdB,
		); err != nil {
			return err
		}
	}

	return tw.Flush()
}
