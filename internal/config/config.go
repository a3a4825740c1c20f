// Package config resolves dsofft settings from flags, DSO_* environment
// variables, an optional config file and built-in defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. DSO_ADDR.
const EnvPrefix = "DSO"

// Keys shared by flags, environment and config file.
const (
	KeyConfig    = "config"
	KeyAddr      = "addr"
	KeyChannel   = "channel"
	KeyTimeout   = "timeout"
	KeyMaxBlock  = "max-block"
	KeyImpedance = "impedance"
	KeyDBmFloor  = "dbm-floor"
	KeyView      = "view"
	KeyLogLevel  = "log-level"
)

// Output views understood by the report package.
const (
	ViewTrace     = "trace"
	ViewAmplitude = "amplitude"
	ViewPower     = "power"
	ViewDBm       = "dbm"
	ViewSummary   = "summary"
)

// Views lists the accepted values of the view setting.
var Views = []string{ViewTrace, ViewAmplitude, ViewPower, ViewDBm, ViewSummary}

// ErrInvalid is returned when a resolved setting is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved CLI configuration.
type Config struct {
	Addr     string
	Channel  int
	Timeout  time.Duration
	MaxBlock int
	// Impedance is the reference impedance in ohms for dBm views.
	Impedance float64
	// DBmFloor clamps zero-amplitude bins in dBm views when ClampDBm is set.
	// Otherwise such bins are an error.
	DBmFloor float64
	ClampDBm bool
	View     string
	LogLevel zerolog.Level
}

// AddFlags registers every setting on fs with its default.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "config file (yaml, toml or json)")
	fs.String(KeyAddr, "192.168.178.66", "instrument address, host[:port] (port defaults to 5025)")
	fs.Int(KeyChannel, 1, "analog input channel (1 or 2)")
	fs.Duration(KeyTimeout, 60*time.Second, "per-operation instrument timeout")
	fs.Int(KeyMaxBlock, 20<<20, "largest accepted waveform block in bytes")
	fs.Float64(KeyImpedance, 1, "reference impedance in ohms for dBm")
	fs.Float64(KeyDBmFloor, 0, "clamp dBm of zero-amplitude bins to this floor instead of failing")
	fs.String(KeyView, ViewDBm, "output view: "+strings.Join(Views, ", "))
	fs.String(KeyLogLevel, zerolog.InfoLevel.String(), "log level (debug, info, warn, error)")
}

// New returns a viper instance reading fs and DSO_* variables.
func New(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	return v, nil
}

// Load resolves the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString(KeyLogLevel)))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, KeyLogLevel, err)
	}

	cfg := Config{
		Addr:      strings.TrimSpace(v.GetString(KeyAddr)),
		Channel:   v.GetInt(KeyChannel),
		Timeout:   v.GetDuration(KeyTimeout),
		MaxBlock:  v.GetInt(KeyMaxBlock),
		Impedance: v.GetFloat64(KeyImpedance),
		DBmFloor:  v.GetFloat64(KeyDBmFloor),
		ClampDBm:  v.IsSet(KeyDBmFloor),
		View:      strings.ToLower(v.GetString(KeyView)),
		LogLevel:  level,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks ranges that do not depend on the instrument.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalid, KeyAddr)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: %s must be > 0: %v", ErrInvalid, KeyTimeout, c.Timeout)
	case c.MaxBlock <= 0:
		return fmt.Errorf("%w: %s must be > 0: %d", ErrInvalid, KeyMaxBlock, c.MaxBlock)
	case !(c.Impedance > 0) || math.IsInf(c.Impedance, 0):
		return fmt.Errorf("%w: %s must be a positive number of ohms: %v", ErrInvalid, KeyImpedance, c.Impedance)
	case c.ClampDBm && (math.IsNaN(c.DBmFloor) || math.IsInf(c.DBmFloor, 0)):
		return fmt.Errorf("%w: %s must be finite", ErrInvalid, KeyDBmFloor)
	}

	for _, view := range Views {
		if c.View == view {
			return nil
		}
	}

	return fmt.Errorf("%w: %s %q (want one of %s)", ErrInvalid, KeyView, c.View, strings.Join(Views, ", "))
}
