// Package config loads the stroked.toml configuration file: how to
// connect to the device and the per-axis safety limits.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"stroked/stroker"
)

const defaultBaud = 115200

// EnvVar overrides the configuration file location when set.
const EnvVar = "STROKED_CONFIG"

// Root is the top-level configuration document.
type Root struct {
	Stroker Stroker               `toml:"stroker"`
	Limits  map[string]AxisLimits `toml:"limits"`
}

// Stroker specifies how to connect to the device.
type Stroker struct {
	// Type selects the backend: "tcode_serial" or "debug".
	Type string `toml:"type"`

	// SerialPort is the device path, e.g. /dev/ttyUSB0 (or COM5 on
	// Windows). Used by the tcode_serial backend.
	SerialPort string `toml:"serial_port"`

	// Baud is the serial baud rate; defaults to 115200.
	Baud int `toml:"baud"`
}

// AxisLimits are the configured safety limits for one axis kind.
type AxisLimits struct {
	// Speed is the limit in full-scale movements per second.
	Speed float64 `toml:"speed"`

	// DefaultMin and DefaultMax seed the axis's motion window; both
	// can be adjusted dynamically later.
	DefaultMin float64 `toml:"default_min"`
	DefaultMax float64 `toml:"default_max"`
}

// DefaultLimits is the very pessimistic fallback for axes the file does
// not configure.
var DefaultLimits = AxisLimits{Speed: 0.25, DefaultMin: 0.4, DefaultMax: 0.6}

// DefaultPath returns where the config lives when EnvVar is unset:
// stroked.toml in the user config directory.
func DefaultPath() (string, error) {
	if env := os.Getenv(EnvVar); env != "" {
		return env, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("find user config dir: %w", err)
	}
	return filepath.Join(dir, "stroked.toml"), nil
}

// Load reads and parses the configuration at path.
func Load(path string) (*Root, error) {
	var root Root
	if _, err := toml.DecodeFile(path, &root); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if root.Stroker.Baud == 0 {
		root.Stroker.Baud = defaultBaud
	}
	return &root, nil
}

// LimitsFor returns the configured limits for kind, falling back to
// DefaultLimits with a warning.
func (r *Root) LimitsFor(kind stroker.AxisKind) AxisLimits {
	if l, ok := r.Limits[kind.String()]; ok {
		return l
	}
	log.Printf("axis %s has no limits configured; using conservative defaults", kind)
	return DefaultLimits
}
