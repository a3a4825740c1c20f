// Package sds drives a Siglent SDS1000X-series oscilloscope far enough to
// read one channel's waveform together with the settings needed to
// calibrate it.
package sds

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-dso/waveform"
)

// Channels is the number of analog inputs of an SDS1102X.
const Channels = 2

var (
	// ErrInvalidChannel is returned for a channel outside 1..Channels.
	ErrInvalidChannel = errors.New("invalid channel")
	// ErrBadResponse is returned when a query answer cannot be parsed.
	ErrBadResponse = errors.New("unparseable instrument response")
)

// Session is the instrument conversation the driver runs on.
// *scpi.Conn satisfies it.
type Session interface {
	Query(ctx context.Context, cmd string) (string, error)
	Write(ctx context.Context, cmd string) error
	ReadRaw(ctx context.Context) ([]byte, error)
}

// Option configures a Scope.
type Option func(*Scope)

// WithLogger sets the driver logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scope) {
		s.log = l
	}
}

// Scope is an SDS1000X-series oscilloscope reached through a Session.
type Scope struct {
	s        Session
	log      zerolog.Logger
	prepared bool
}

// New returns a driver that talks over s.
func New(s Session, opts ...Option) *Scope {
	sc := &Scope{s: s, log: zerolog.Nop()}

	for _, opt := range opts {
		if opt != nil {
			opt(sc)
		}
	}

	return sc
}

// Prepare switches command headers off so that responses carry bare values.
// The command is sent once per Scope.
func (sc *Scope) Prepare(ctx context.Context) error {
	if sc.prepared {
		return nil
	}

	if err := sc.s.Write(ctx, "CHDR OFF"); err != nil {
		return err
	}

	sc.prepared = true

	return nil
}

// Identity returns the *IDN? string.
func (sc *Scope) Identity(ctx context.Context) (string, error) {
	resp, err := sc.s.Query(ctx, "*IDN?")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp), nil
}

// AcquisitionMode returns the acquisition way (SAMPLING, PEAK_DETECT, ...).
func (sc *Scope) AcquisitionMode(ctx context.Context) (string, error) {
	resp, err := sc.s.Query(ctx, "ACQW?")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp), nil
}

// Attenuation returns the input attenuation factor configured on channel ch.
func (sc *Scope) Attenuation(ctx context.Context, ch int) (float64, error) {
	return sc.channelValue(ctx, ch, "ATTN")
}

// VoltsPerDivision returns the vertical scale of channel ch in volts.
func (sc *Scope) VoltsPerDivision(ctx context.Context, ch int) (float64, error) {
	return sc.channelValue(ctx, ch, "VDIV")
}

// VoltageOffset returns the vertical offset of channel ch in volts.
func (sc *Scope) VoltageOffset(ctx context.Context, ch int) (float64, error) {
	return sc.channelValue(ctx, ch, "OFST")
}

// TimePerDivision returns the horizontal scale in seconds.
func (sc *Scope) TimePerDivision(ctx context.Context) (float64, error) {
	return sc.value(ctx, "TDIV?")
}

// SampleRate returns the current sample rate in Hz.
func (sc *Scope) SampleRate(ctx context.Context) (float64, error) {
	resp, err := sc.s.Query(ctx, "SARA?")
	if err != nil {
		return 0, err
	}

	return ParseSampleRate(resp)
}

// Calibration reads the settings needed to decode a capture of channel ch.
func (sc *Scope) Calibration(ctx context.Context, ch int) (waveform.Calibration, error) {
	var (
		cal waveform.Calibration
		err error
	)

	if cal.VoltsPerDivision, err = sc.VoltsPerDivision(ctx, ch); err != nil {
		return waveform.Calibration{}, err
	}

	if cal.VoltageOffset, err = sc.VoltageOffset(ctx, ch); err != nil {
		return waveform.Calibration{}, err
	}

	if cal.TimePerDivision, err = sc.TimePerDivision(ctx); err != nil {
		return waveform.Calibration{}, err
	}

	if cal.SampleRate, err = sc.SampleRate(ctx); err != nil {
		return waveform.Calibration{}, err
	}

	return cal, nil
}

// Capture reads the calibration and the raw waveform block of channel ch.
// It calls Prepare first.
func (sc *Scope) Capture(ctx context.Context, ch int) ([]byte, waveform.Calibration, error) {
	if err := validateChannel(ch); err != nil {
		return nil, waveform.Calibration{}, err
	}

	if err := sc.Prepare(ctx); err != nil {
		return nil, waveform.Calibration{}, err
	}

	cal, err := sc.Calibration(ctx, ch)
	if err != nil {
		return nil, waveform.Calibration{}, err
	}

	if err := sc.s.Write(ctx, fmt.Sprintf("C%d:WF? DAT2", ch)); err != nil {
		return nil, waveform.Calibration{}, err
	}

	raw, err := sc.s.ReadRaw(ctx)
	if err != nil {
		return nil, waveform.Calibration{}, fmt.Errorf("read waveform C%d: %w", ch, err)
	}

	sc.log.Info().
		Int("channel", ch).
		Int("bytes", len(raw)).
		Float64("vdiv", cal.VoltsPerDivision).
		Float64("offset", cal.VoltageOffset).
		Float64("tdiv", cal.TimePerDivision).
		Float64("sample_rate", cal.SampleRate).
		Msg("capture read")

	return raw, cal, nil
}

// Acquire captures channel ch and decodes it.
func (sc *Scope) Acquire(ctx context.Context, ch int) (waveform.Waveform, error) {
	raw, cal, err := sc.Capture(ctx, ch)
	if err != nil {
		return waveform.Waveform{}, err
	}

	w, err := waveform.Decode(raw, cal)
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("decode C%d: %w", ch, err)
	}

	return w, nil
}

func (sc *Scope) channelValue(ctx context.Context, ch int, param string) (float64, error) {
	if err := validateChannel(ch); err != nil {
		return 0, err
	}

	return sc.value(ctx, fmt.Sprintf("C%d:%s?", ch, param))
}

func (sc *Scope) value(ctx context.Context, cmd string) (float64, error) {
	resp, err := sc.s.Query(ctx, cmd)
	if err != nil {
		return 0, err
	}

	v, err := ParseValue(resp)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd, err)
	}

	return v, nil
}

func validateChannel(ch int) error {
	if ch < 1 || ch > Channels {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidChannel, ch, Channels)
	}

	return nil
}

// ParseValue parses a numeric response such as "2.00E-01", "2.00E-01V" or
// "C1:VDIV 2.00E-01V", ignoring a command header and a trailing unit.
func ParseValue(resp string) (float64, error) {
	fields := strings.Fields(resp)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadResponse, resp)
	}

	s := strings.TrimRightFunc(fields[len(fields)-1], unicode.IsLetter)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadResponse, resp)
	}

	return v, nil
}

var rateUnits = []struct {
	suffix string
	scale  float64
}{
	{"G", 1e9},
	{"M", 1e6},
	{"k", 1e3},
	{"K", 1e3},
}

// ParseSampleRate parses a SARA? response such as "1.00GSa/s" or "500MSa/s".
// The first metric prefix found, in the order G, M, k, K, scales everything
// before it; a response without a prefix is parsed as a plain number of Hz.
func ParseSampleRate(resp string) (float64, error) {
	s := strings.TrimSuffix(strings.TrimSpace(resp), "Sa/s")

	for _, u := range rateUnits {
		if i := strings.Index(s, u.suffix); i >= 0 {
			v, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
			if err != nil {
				return 0, fmt.Errorf("%w: sample rate %q", ErrBadResponse, resp)
			}

			return v * u.scale, nil
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: sample rate %q", ErrBadResponse, resp)
	}

	return v, nil
}
