package stroker

import (
	"errors"
	"fmt"
	"math"
)

// MaxRampMillis is the longest ramp time the wire protocol can express.
const MaxRampMillis = 9999

// An AxisID identifies one mechanical axis on a connected device.
// IDs are assigned sequentially during discovery and are only meaningful
// within the session that produced them.
type AxisID int

// AxisKind is the semantic role of an axis, independent of the
// device-assigned AxisID.
type AxisKind int

const (
	Stroke AxisKind = iota // up/down
	Surge                  // forward/backward
	Sway                   // left/right
	Twist
	Roll
	Pitch
	Vibration
	Valve
	Suction
	Lubricant
)

var axisKindNames = map[AxisKind]string{
	Stroke:    "stroke",
	Surge:     "surge",
	Sway:      "sway",
	Twist:     "twist",
	Roll:      "roll",
	Pitch:     "pitch",
	Vibration: "vibration",
	Valve:     "valve",
	Suction:   "suction",
	Lubricant: "lubricant",
}

func (k AxisKind) String() string {
	if s, ok := axisKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("AxisKind(%d)", int(k))
}

// ParseAxisKind converts a kind name (as used in configuration and
// funscript axis extensions) back to an AxisKind.
func ParseAxisKind(s string) (AxisKind, error) {
	for k, name := range axisKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, errors.New("unknown axis kind: " + s)
}

// An AxisDescriptor describes one discovered axis. Immutable for the
// lifetime of the session that produced it.
type AxisDescriptor struct {
	ID   AxisID
	Kind AxisKind

	// SafeSpeedLimit is a suggested speed ceiling in full-scale
	// movements per second for callers that have no better number.
	SafeSpeedLimit float64
}

// A Device is a motion device backend. Implementations are selected at
// connection time; the coordinator only ever sees this interface.
type Device interface {
	// Axes returns the discovered axis set. Pure read of cached
	// discovery data.
	Axes() []AxisDescriptor

	// Stop halts all motion as soon as possible.
	Stop() error

	// Move performs a single validated movement.
	Move(Movement) error

	// Description returns a human-readable device description, or ""
	// if the backend does not report one.
	Description() string
}

// A Movement is a validated motion command. Construction is the single
// choke point keeping malformed commands away from hardware: a Movement
// that exists always has a finite target in [0,1] and a ramp time within
// the protocol maximum.
type Movement struct {
	axis       AxisID
	target     float64
	rampMillis int64
}

// NewMovement validates and constructs a Movement.
// target is normalised to [0,1]; rampMillis must be in [0, MaxRampMillis].
func NewMovement(axis AxisID, target float64, rampMillis int64) (Movement, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return Movement{}, fmt.Errorf("movement target not finite: %v", target)
	}
	if target < 0 || target > 1 {
		return Movement{}, fmt.Errorf("movement target out of range: %v", target)
	}
	if rampMillis < 0 || rampMillis > MaxRampMillis {
		return Movement{}, fmt.Errorf("movement ramp time out of range: %dms", rampMillis)
	}
	return Movement{axis: axis, target: target, rampMillis: rampMillis}, nil
}

func (m Movement) Axis() AxisID      { return m.axis }
func (m Movement) Target() float64   { return m.target }
func (m Movement) RampMillis() int64 { return m.rampMillis }

func (m Movement) String() string {
	return fmt.Sprintf("axis %d to %.4f in %dms", m.axis, m.target, m.rampMillis)
}
