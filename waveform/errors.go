package waveform

import "errors"

var (
	// ErrMalformedCapture is returned when a block is too short to hold the
	// header, the terminator and at least one sample.
	ErrMalformedCapture = errors.New("malformed capture")
	// ErrInvalidCalibration is returned for non-finite calibration values,
	// a zero volts/division or a non-positive sample rate.
	ErrInvalidCalibration = errors.New("invalid calibration")
)
