package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))

	v, err := New(fs)
	require.NoError(t, err)

	return Load(v)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, Config{
		Addr:      "192.168.178.66",
		Channel:   1,
		Timeout:   60 * time.Second,
		MaxBlock:  20 << 20,
		Impedance: 1,
		View:      ViewDBm,
		LogLevel:  zerolog.InfoLevel,
	}, cfg)
}

func TestEnvOverridesDefault(t *testing.T) {
	t.Setenv("DSO_ADDR", "10.0.0.7:5025")
	t.Setenv("DSO_MAX_BLOCK", "4096")
	t.Setenv("DSO_IMPEDANCE", "50")
	t.Setenv("DSO_DBM_FLOOR", "-200")
	t.Setenv("DSO_LOG_LEVEL", "DEBUG")

	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.7:5025", cfg.Addr)
	assert.Equal(t, 4096, cfg.MaxBlock)
	assert.InDelta(t, 50.0, cfg.Impedance, 0)
	assert.True(t, cfg.ClampDBm)
	assert.InDelta(t, -200.0, cfg.DBmFloor, 0)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("DSO_CHANNEL", "2")
	t.Setenv("DSO_VIEW", "power")

	cfg, err := load(t, "--channel", "1", "--timeout", "5s")
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Channel)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, ViewPower, cfg.View, "unset flag must not hide env")
	assert.False(t, cfg.ClampDBm)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dso.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: scope.lab\nview: summary\nimpedance: 50\n"), 0o600))

	t.Setenv("DSO_IMPEDANCE", "75")

	cfg, err := load(t, "--config", path)
	require.NoError(t, err)

	assert.Equal(t, "scope.lab", cfg.Addr)
	assert.Equal(t, ViewSummary, cfg.View)
	assert.InDelta(t, 75.0, cfg.Impedance, 0, "env wins over file")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := load(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestInvalid(t *testing.T) {
	cases := map[string][]string{
		"view":      {"--view", "spectrogram"},
		"impedance": {"--impedance", "0"},
		"negative":  {"--impedance", "-50"},
		"timeout":   {"--timeout", "0s"},
		"max-block": {"--max-block", "0"},
		"addr":      {"--addr", " "},
		"log-level": {"--log-level", "loud"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(t, args...)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
