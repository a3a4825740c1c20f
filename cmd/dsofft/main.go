// Command dsofft reads a waveform from a Siglent SDS1000X-series
// oscilloscope, or from a raw capture file, and prints its trace or
// spectrum.
//
// Usage:
//
//	dsofft capture [flags]
//	dsofft decode [flags] capture.bin
//	dsofft window [flags] [window-name ...]
//
// Examples:
//
//	dsofft capture --addr 192.168.1.20 --channel 2 --view dbm --impedance 50
//	dsofft decode --vdiv 0.2 --tdiv 5e-7 --sara 1GSa/s --view summary c1.bin
//	dsofft window --size 4096 kaiser hann
//
// Every setting of the root command can also be given as a DSO_* environment
// variable (DSO_ADDR, DSO_VIEW, ...) or in a --config file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
