// Package debug provides a stroker.Device that drives no hardware and
// only emits log lines. Useful for trying out timelines without a
// machine attached.
package debug

import (
	"fmt"
	"log"

	"stroked/stroker"
)

var axes = []stroker.AxisDescriptor{
	{ID: 1, Kind: stroker.Stroke, SafeSpeedLimit: 2.0},
	{ID: 2, Kind: stroker.Surge, SafeSpeedLimit: 2.0},
	{ID: 3, Kind: stroker.Sway, SafeSpeedLimit: 2.0},
	{ID: 4, Kind: stroker.Twist, SafeSpeedLimit: 2.0},
	{ID: 5, Kind: stroker.Roll, SafeSpeedLimit: 2.0},
	{ID: 6, Kind: stroker.Pitch, SafeSpeedLimit: 2.0},
}

// Device logs every command instead of moving anything.
type Device struct{}

var _ stroker.Device = Device{}

func New() Device { return Device{} }

func (Device) Axes() []stroker.AxisDescriptor {
	out := make([]stroker.AxisDescriptor, len(axes))
	copy(out, axes)
	return out
}

func (Device) Stop() error {
	log.Println("debug device: stop")
	return nil
}

func (Device) Move(m stroker.Movement) error {
	for _, ax := range axes {
		if ax.ID == m.Axis() {
			log.Printf("debug device: move %s (%s)", m, ax.Kind)
			return nil
		}
	}
	return fmt.Errorf("no such axis: %d", m.Axis())
}

func (Device) Description() string { return "debug device" }
