package play

import (
	"math"
	"time"
)

// Limiter converts desired (target, duration) pairs into safe ones for
// one axis. It keeps its own notion of where the axis currently is by
// extrapolating the last motion it was told about; it never reads the
// device back.
type Limiter struct {
	// SpeedLimit is the ceiling in full-scale movements per second.
	SpeedLimit float64

	// Min and Max bound the motion window. Min > Max is allowed and
	// inverts the motion.
	Min float64
	Max float64

	lastStart      float64
	lastStartTime  time.Time
	lastTarget     float64
	lastTargetTime time.Time
}

// NewLimiter returns a limiter that assumes the axis starts at centre.
func NewLimiter(speedLimit, min, max float64) *Limiter {
	now := time.Now()
	return &Limiter{
		SpeedLimit:     speedLimit,
		Min:            min,
		Max:            max,
		lastStart:      0.5,
		lastStartTime:  now,
		lastTarget:     0.5,
		lastTargetTime: now,
	}
}

// EstimatePosition returns where the axis should be at now, assuming it
// followed the last committed motion linearly. Pure function of stored
// state and now.
func (l *Limiter) EstimatePosition(now time.Time) float64 {
	switch {
	case !now.Before(l.lastTargetTime):
		return l.lastTarget
	case now.After(l.lastStartTime):
		frac := now.Sub(l.lastStartTime).Seconds() / l.lastTargetTime.Sub(l.lastStartTime).Seconds()
		return l.lastStart + (l.lastTarget-l.lastStart)*frac
	default:
		return l.lastStart
	}
}

// LimitCommand remaps a normalised target into the [Min, Max] window and
// clamps the implied speed to SpeedLimit. When clamping, the duration is
// kept and the target pulled nearer: arriving at a closer point on time
// wins over arriving at the exact point late.
func (l *Limiter) LimitCommand(now time.Time, target float64, durationMillis int64) (float64, int64) {
	cur := l.EstimatePosition(now)
	target = l.Min + (l.Max-l.Min)*target
	delta := target - cur

	d := durationMillis
	if d < 1 {
		d = 1
	}
	speed := math.Abs(delta) / (float64(d) * 0.001)
	if speed <= l.SpeedLimit {
		return target, durationMillis
	}
	return cur + delta*(l.SpeedLimit/speed), durationMillis
}

// NotifyCommanded records that a motion was actually dispatched. It must
// be called right after each successful dispatch; skipping it leaves
// every later estimate anchored to a motion that never happened.
func (l *Limiter) NotifyCommanded(now time.Time, target float64, durationMillis int64) {
	start := l.EstimatePosition(now)
	l.lastStart = start
	l.lastStartTime = now
	l.lastTarget = target
	l.lastTargetTime = now.Add(time.Duration(durationMillis) * time.Millisecond)
}
