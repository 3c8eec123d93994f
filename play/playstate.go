package play

import (
	"fmt"
	"time"

	"stroked/funscript"
	"stroked/stroker"
)

// pausedSeekRampMillis is the ramp used when seeking while paused: a
// long, gentle drift to the new position that stays under most speed
// limits.
const pausedSeekRampMillis = 1000

// An AxisPlaystate pairs one timeline tracker with one motion limiter.
// Created when a timeline is matched to a live axis; replaced wholesale
// when a new timeline for the same axis arrives.
type AxisPlaystate struct {
	script  *funscript.Playstate
	Limiter *Limiter
}

func NewAxisPlaystate(actions []funscript.NormalisedAction, limits AxisLimits) *AxisPlaystate {
	return &AxisPlaystate{
		script:  funscript.NewPlaystate(actions),
		Limiter: NewLimiter(limits.Speed, limits.Min, limits.Max),
	}
}

// Tick advances playback to nowMillis and dispatches the due action, if
// any. Actions whose own timestamp is already in the past are dropped
// without commanding motion.
func (ap *AxisPlaystate) Tick(nowMillis int64, axis stroker.AxisID, dev stroker.Device) error {
	a, ok := ap.script.Tick(nowMillis)
	if !ok {
		return nil
	}
	if a.At < nowMillis {
		return nil
	}
	return ap.dispatch(a.Pos, a.At-nowMillis, axis, dev)
}

// Seek relocates playback to nowMillis and dispatches the next action
// immediately so the axis moves toward where it ought to be.
func (ap *AxisPlaystate) Seek(nowMillis int64, paused bool, axis stroker.AxisID, dev stroker.Device) error {
	ap.script.Seek(nowMillis)
	a, ok := ap.script.Tick(nowMillis)
	if !ok {
		return nil
	}
	duration := a.At - nowMillis
	if paused {
		duration = pausedSeekRampMillis
	}
	return ap.dispatch(a.Pos, duration, axis, dev)
}

func (ap *AxisPlaystate) dispatch(rawTarget float64, durationMillis int64, axis stroker.AxisID, dev stroker.Device) error {
	now := time.Now()
	target, duration := ap.Limiter.LimitCommand(now, rawTarget, durationMillis)
	m, err := stroker.NewMovement(axis, target, duration)
	if err != nil {
		return fmt.Errorf("construct movement: %w", err)
	}
	if err = dev.Move(m); err != nil {
		return fmt.Errorf("command movement (%s): %w", m, err)
	}
	ap.Limiter.NotifyCommanded(now, target, duration)
	return nil
}
