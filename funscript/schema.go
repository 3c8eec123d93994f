// Package funscript loads funscript timeline files and tracks playback
// through them.
//
// A funscript is a JSON document describing how one axis moves over the
// duration of a video: a sorted list of (time, position) points, an
// optional inversion flag, and the integer scale positions are expressed
// in. Multi-axis files embed further scripts under "axes".
package funscript

import (
	"encoding/json"
	"fmt"
	"os"
)

// Action is one raw datapoint on the curve the funscript represents.
type Action struct {
	// At is the timestamp in milliseconds relative to the start of
	// the video.
	At int64 `json:"at"`

	// Pos is the position at this point in time, in 0..Range units.
	Pos int64 `json:"pos"`
}

// Script is a parsed funscript file. Unknown keys are ignored.
type Script struct {
	// Actions must be sorted by timestamp; seek correctness depends
	// on it.
	Actions []Action `json:"actions"`

	Inverted bool `json:"inverted"`

	// Range is the maximum value of Pos; typically 100. Zero means
	// the file did not say, see Fixup.
	Range int64 `json:"range"`

	// Axes holds embedded scripts for further axes in multi-axis
	// files.
	Axes []AxisScript `json:"axes"`
}

// AxisScript is one embedded per-axis script in a multi-axis funscript.
type AxisScript struct {
	// ID names the axis, either as a kind name ("twist") or a T-Code
	// axis name ("R0").
	ID       string   `json:"id"`
	Actions  []Action `json:"actions"`
	Inverted bool     `json:"inverted"`
	Range    int64    `json:"range"`
}

// Fixup fills in defaults for fields older files omit.
func (s *Script) Fixup() {
	if s.Range == 0 {
		s.Range = 100
	}
	for i := range s.Axes {
		if s.Axes[i].Range == 0 {
			s.Axes[i].Range = 100
		}
	}
}

// Load reads and parses the funscript at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read funscript: %w", err)
	}
	var s Script
	if err = json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse funscript %s: %w", path, err)
	}
	s.Fixup()
	return &s, nil
}
