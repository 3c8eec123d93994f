package main

import "stroked/stroker"

// dispatchEvent is one device command as mirrored onto the API's
// server-sent event stream.
type dispatchEvent struct {
	Type   string  `json:"type"` // "move" or "stop"
	Axis   int     `json:"axis,omitempty"`
	Target float64 `json:"target,omitempty"`
	RampMs int64   `json:"rampMs,omitempty"`
}

// observedDevice forwards to the real device and mirrors every
// successful command onto the events channel. Sends never block: a slow
// SSE consumer drops events rather than stalling the control loop.
type observedDevice struct {
	dev    stroker.Device
	events chan dispatchEvent
}

var _ stroker.Device = observedDevice{}

func (o observedDevice) Axes() []stroker.AxisDescriptor { return o.dev.Axes() }
func (o observedDevice) Description() string            { return o.dev.Description() }

func (o observedDevice) Move(m stroker.Movement) error {
	err := o.dev.Move(m)
	if err == nil {
		o.publish(dispatchEvent{
			Type:   "move",
			Axis:   int(m.Axis()),
			Target: m.Target(),
			RampMs: m.RampMillis(),
		})
	}
	return err
}

func (o observedDevice) Stop() error {
	err := o.dev.Stop()
	if err == nil {
		o.publish(dispatchEvent{Type: "stop"})
	}
	return err
}

func (o observedDevice) publish(ev dispatchEvent) {
	select {
	case o.events <- ev:
	default:
	}
}
