// Package waveform decodes raw Siglent SDS1000X waveform blocks into
// calibrated time and voltage samples.
//
// A block as returned by "Cn:WF? DAT2" carries a 15 byte response header,
// one byte per sample and a 2 byte terminator. Sample codes above 127 are
// negative and are recovered as code-255. This is the instrument's own
// mapping and differs from two's complement by one code; it is reproduced
// as is.
package waveform
