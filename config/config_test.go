package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stroked/stroker"
)

const sample = `
[stroker]
type = "tcode_serial"
serial_port = "/dev/ttyUSB0"

[limits.stroke]
speed = 2.0
default_min = 0.0
default_max = 1.0

[limits.twist]
speed = 1.0
default_min = 0.25
default_max = 0.75
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stroked.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	root, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcode_serial", root.Stroker.Type)
	assert.Equal(t, "/dev/ttyUSB0", root.Stroker.SerialPort)
	assert.Equal(t, 115200, root.Stroker.Baud) // defaulted

	l := root.LimitsFor(stroker.Stroke)
	assert.Equal(t, AxisLimits{Speed: 2.0, DefaultMin: 0.0, DefaultMax: 1.0}, l)
	l = root.LimitsFor(stroker.Twist)
	assert.Equal(t, AxisLimits{Speed: 1.0, DefaultMin: 0.25, DefaultMax: 0.75}, l)

	// unconfigured axes fall back to the pessimistic defaults
	assert.Equal(t, DefaultLimits, root.LimitsFor(stroker.Roll))
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stroked.toml")
	require.NoError(t, os.WriteFile(path, []byte("stroker = ["), 0644))
	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefaultPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvVar, "/tmp/custom.toml")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.toml", path)
}
