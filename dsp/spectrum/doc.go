// Package spectrum turns sampled waveforms into single-sided amplitude
// spectra and derives the power and dBm views from them.
//
// Analyze windows the samples (Kaiser, beta 12, normalized to unity coherent
// gain), zero-pads to the next 5-smooth length, transforms with algo-fft
// (gonum for lengths with a factor of five) and keeps the non-negative
// frequency half scaled by 2/fftLength. The result is
// a pure function of its inputs; repeated calls produce bit-identical output.
package spectrum
