package spectrum

import "errors"

var (
	// ErrEmptyWaveform is returned when there are no samples to analyze.
	ErrEmptyWaveform = errors.New("waveform has no samples")
	// ErrInvalidSampleRate is returned for a zero, negative or non-finite rate.
	ErrInvalidSampleRate = errors.New("sample rate must be positive and finite")
	// ErrNonPositiveAmplitude is returned when a dBm view meets a zero bin.
	ErrNonPositiveAmplitude = errors.New("amplitude must be positive for dBm")
	// ErrInvalidImpedance is returned for a zero, negative or non-finite reference impedance.
	ErrInvalidImpedance = errors.New("reference impedance must be positive and finite")
)
