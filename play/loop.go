// Package play synchronises timeline playback with a motion device: it
// owns one limiter/tracker pair per active axis and drives the device
// from a serialized stream of player lifecycle events.
package play

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"stroked/funscript"
	"stroked/stroker"
)

const messageBacklog = 256

// AxisLimits seed one axis's limiter.
type AxisLimits struct {
	Speed float64
	Min   float64
	Max   float64
}

// A Message is one external lifecycle event consumed by the Loop.
type Message interface{ message() }

// VideoStarting announces new content. Any running funscript search is
// cancelled and a fresh one started for this video.
type VideoStarting struct {
	VideoPath string
	// ScriptPath optionally overrides where funscripts are searched;
	// relative paths resolve against the working directory.
	ScriptPath string
}

// UseScript delivers a loaded, normalised timeline for one axis kind.
// Produced asynchronously by the search task.
type UseScript struct {
	Kind    stroker.AxisKind
	Actions []funscript.NormalisedAction
}

// Seek reports a sudden jump of the playback clock.
type Seek struct{ NowMillis int64 }

// TimeChange reports the playback clock ticking forward.
type TimeChange struct{ NowMillis int64 }

// PauseChange reports the player pausing or resuming.
type PauseChange struct{ Paused bool }

// LimitChange adjusts one axis's motion window, either by a relative
// delta (MinBy/MaxBy) or an absolute value (MinNew/MaxNew). Supplying
// both forms for the same bound is an error.
type LimitChange struct {
	Axis   stroker.AxisKind
	MinBy  *float64
	MinNew *float64
	MaxBy  *float64
	MaxNew *float64
}

// Shutdown stops the device and terminates the loop.
type Shutdown struct{}

func (VideoStarting) message() {}
func (UseScript) message()     {}
func (Seek) message()          {}
func (TimeChange) message()    {}
func (PauseChange) message()   {}
func (LimitChange) message()   {}
func (Shutdown) message()      {}

// Loop is the synchronization coordinator. The device session, the live
// axis map and all limiter state are owned exclusively by the goroutine
// running Run; everything else talks to it through Submit.
type Loop struct {
	dev    stroker.Device
	limits func(stroker.AxisKind) AxisLimits

	msgs chan Message

	axes   []stroker.AxisDescriptor
	byAxis map[stroker.AxisID]*AxisPlaystate
	paused bool

	searchCancel context.CancelFunc
}

func NewLoop(dev stroker.Device, limits func(stroker.AxisKind) AxisLimits) *Loop {
	return &Loop{
		dev:    dev,
		limits: limits,
		msgs:   make(chan Message, messageBacklog),
		axes:   dev.Axes(),
		byAxis: make(map[stroker.AxisID]*AxisPlaystate),
	}
}

// Axes returns the device axis set the loop may address.
func (l *Loop) Axes() []stroker.AxisDescriptor { return l.axes }

// Description returns the device's self-description. Pure read of data
// cached at connect time.
func (l *Loop) Description() string { return l.dev.Description() }

// Submit queues an event. Events are processed strictly in arrival
// order, one at a time; Submit blocks when the backlog is full.
func (l *Loop) Submit(m Message) { l.msgs <- m }

// Run consumes events until Shutdown. A device dispatch failure aborts
// the loop with an error: axis state may be inconsistent after a failed
// write, so continuing silently is not safe.
func (l *Loop) Run() error {
	defer func() {
		if l.searchCancel != nil {
			l.searchCancel()
		}
	}()

	for msg := range l.msgs {
		switch m := msg.(type) {
		case VideoStarting:
			log.Printf("video starting: %s", m.VideoPath)
			if l.searchCancel != nil {
				l.searchCancel()
			}
			ctx, cancel := context.WithCancel(context.Background())
			l.searchCancel = cancel
			go func() {
				if err := searchScripts(ctx, m.VideoPath, m.ScriptPath, l.Submit); err != nil {
					log.Println("ERROR: funscript search:", err)
				}
			}()

		case UseScript:
			l.useScript(m)

		case Seek:
			for _, id := range l.liveAxes() {
				if err := l.byAxis[id].Seek(m.NowMillis, l.paused, id, l.dev); err != nil {
					return fmt.Errorf("seek axis %d: %w", id, err)
				}
			}

		case TimeChange:
			if l.paused {
				continue
			}
			for _, id := range l.liveAxes() {
				if err := l.byAxis[id].Tick(m.NowMillis, id, l.dev); err != nil {
					return fmt.Errorf("time change axis %d: %w", id, err)
				}
			}

		case PauseChange:
			l.paused = m.Paused
			if m.Paused {
				if err := l.dev.Stop(); err != nil {
					return fmt.Errorf("stop on pause: %w", err)
				}
			}
			// resuming performs no resynchronization; drift that
			// accumulated while paused lasts until the next action

		case LimitChange:
			if err := l.changeLimits(m); err != nil {
				log.Println("ERROR: axis limit change:", err)
			}

		case Shutdown:
			if err := l.dev.Stop(); err != nil {
				return fmt.Errorf("stop on shutdown: %w", err)
			}
			return nil
		}
	}
	return nil
}

// liveAxes returns the keys of the live axis map in a stable order.
func (l *Loop) liveAxes() []stroker.AxisID {
	ids := make([]stroker.AxisID, 0, len(l.byAxis))
	for id := range l.byAxis {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (l *Loop) useScript(m UseScript) {
	axis := l.findAxis(m.Kind)
	if axis == nil {
		log.Printf("no device axis for %s; dropping timeline (%d actions)", m.Kind, len(m.Actions))
		return
	}
	l.byAxis[axis.ID] = NewAxisPlaystate(m.Actions, l.limits(m.Kind))
	log.Printf("timeline for %s: %d actions on axis %d", m.Kind, len(m.Actions), axis.ID)
}

func (l *Loop) changeLimits(m LimitChange) error {
	axis := l.findAxis(m.Axis)
	if axis == nil {
		return fmt.Errorf("no device axis for %s", m.Axis)
	}
	ap, ok := l.byAxis[axis.ID]
	if !ok {
		return fmt.Errorf("axis %s is not in use", m.Axis)
	}
	if err := updateLimit("min", m.MinBy, m.MinNew, &ap.Limiter.Min); err != nil {
		return err
	}
	if err := updateLimit("max", m.MaxBy, m.MaxNew, &ap.Limiter.Max); err != nil {
		return err
	}
	log.Printf("limits: %.4f <= %s <= %.4f", ap.Limiter.Min, m.Axis, ap.Limiter.Max)
	return nil
}

func (l *Loop) findAxis(kind stroker.AxisKind) *stroker.AxisDescriptor {
	for i := range l.axes {
		if l.axes[i].Kind == kind {
			return &l.axes[i]
		}
	}
	return nil
}

// updateLimit applies a relative or absolute change to one bound.
// Relative changes clamp to [0,1]; absolute assignments out of range are
// rejected with the bound unchanged. Nothing forces min <= max: an
// out-of-order window inverts the motion.
func updateLimit(name string, by, abs *float64, target *float64) error {
	switch {
	case by != nil && abs != nil:
		return errors.New("conflicting relative and absolute " + name + " limit")
	case by != nil:
		v := *target + *by
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		*target = v
	case abs != nil:
		if *abs < 0 || *abs > 1 {
			return fmt.Errorf("can't set %s limit to %v: out of range", name, *abs)
		}
		*target = *abs
	}
	return nil
}
