package play

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stroked/funscript"
	"stroked/stroker"
)

type fakeDevice struct {
	axes    []stroker.AxisDescriptor
	moves   []stroker.Movement
	stops   int
	moveErr error
}

func (d *fakeDevice) Axes() []stroker.AxisDescriptor { return d.axes }
func (d *fakeDevice) Description() string            { return "fake device" }

func (d *fakeDevice) Stop() error {
	d.stops++
	return nil
}

func (d *fakeDevice) Move(m stroker.Movement) error {
	if d.moveErr != nil {
		return d.moveErr
	}
	d.moves = append(d.moves, m)
	return nil
}

func twoAxisDevice() *fakeDevice {
	return &fakeDevice{axes: []stroker.AxisDescriptor{
		{ID: 0, Kind: stroker.Stroke, SafeSpeedLimit: 2},
		{ID: 1, Kind: stroker.Twist, SafeSpeedLimit: 2},
	}}
}

func openLimits(stroker.AxisKind) AxisLimits {
	return AxisLimits{Speed: 2, Min: 0, Max: 1}
}

// rampActions is the 0->1 ramp timeline: position 0 at t=0, full scale
// at t=1000.
var rampActions = []funscript.NormalisedAction{
	{At: 0, Pos: 0},
	{At: 1000, Pos: 1},
}

func TestLoop_TimeChangePlayback(t *testing.T) {
	dev := twoAxisDevice()
	l := NewLoop(dev, openLimits)

	l.Submit(UseScript{Kind: stroker.Stroke, Actions: rampActions})
	l.Submit(TimeChange{NowMillis: 500})
	l.Submit(TimeChange{NowMillis: 1000})
	l.Submit(TimeChange{NowMillis: 1500})
	l.Submit(Shutdown{})
	require.NoError(t, l.Run())

	// t=500 drops the stale opening action, t=1000 dispatches the
	// boundary action, t=1500 finds the cursor exhausted
	require.Len(t, dev.moves, 1)
	m := dev.moves[0]
	assert.Equal(t, stroker.AxisID(0), m.Axis())
	assert.Greater(t, m.Target(), 0.5)
	assert.LessOrEqual(t, m.Target(), 1.0)

	assert.Equal(t, 1, dev.stops) // shutdown
}

func TestLoop_SeekDispatchesTowardTarget(t *testing.T) {
	dev := twoAxisDevice()
	l := NewLoop(dev, openLimits)

	l.Submit(UseScript{Kind: stroker.Stroke, Actions: rampActions})
	l.Submit(Seek{NowMillis: 500})
	l.Submit(Shutdown{})
	require.NoError(t, l.Run())

	// remaining time to the 1000ms action is the ramp; 1.0 over
	// 500ms is 1/s, inside the 2/s limit, so it passes unclamped
	require.Len(t, dev.moves, 1)
	assert.InDelta(t, 1.0, dev.moves[0].Target(), 1e-9)
	assert.Equal(t, int64(500), dev.moves[0].RampMillis())
}

func TestLoop_SeekSpeedClamped(t *testing.T) {
	dev := twoAxisDevice()
	l := NewLoop(dev, func(stroker.AxisKind) AxisLimits {
		return AxisLimits{Speed: 0.5, Min: 0, Max: 1}
	})

	l.Submit(UseScript{Kind: stroker.Stroke, Actions: rampActions})
	l.Submit(Seek{NowMillis: 500})
	l.Submit(Shutdown{})
	require.NoError(t, l.Run())

	// implied 1/s exceeds the 0.5/s ceiling: target pulls in to
	// 0.5 + 0.5*(0.5/1.0) = 0.75 with the duration unchanged
	require.Len(t, dev.moves, 1)
	assert.InDelta(t, 0.75, dev.moves[0].Target(), 1e-9)
	assert.Equal(t, int64(500), dev.moves[0].RampMillis())
}

func TestLoop_PauseBehaviour(t *testing.T) {
	dev := twoAxisDevice()
	l := NewLoop(dev, openLimits)

	l.Submit(UseScript{Kind: stroker.Stroke, Actions: rampActions})
	l.Submit(PauseChange{Paused: true})
	l.Submit(TimeChange{NowMillis: 500}) // ignored while paused
	l.Submit(Seek{NowMillis: 500})       // still works, with the long ramp
	l.Submit(PauseChange{Paused: false}) // no corrective stop or move
	l.Submit(Shutdown{})
	require.NoError(t, l.Run())

	assert.Equal(t, 2, dev.stops) // pause + shutdown
	require.Len(t, dev.moves, 1)
	assert.Equal(t, int64(pausedSeekRampMillis), dev.moves[0].RampMillis())
}

func TestLoop_UnmatchedTimelineDropped(t *testing.T) {
	dev := twoAxisDevice()
	l := NewLoop(dev, openLimits)

	l.Submit(UseScript{Kind: stroker.Vibration, Actions: rampActions})
	l.Submit(TimeChange{NowMillis: 500})
	l.Submit(Shutdown{})
	require.NoError(t, l.Run())

	assert.Empty(t, dev.moves)
	assert.Empty(t, l.byAxis)
}

func TestLoop_TimelineReplacement(t *testing.T) {
	dev := twoAxisDevice()
	l := NewLoop(dev, openLimits)

	l.Submit(UseScript{Kind: stroker.Stroke, Actions: rampActions})
	l.Submit(UseScript{Kind: stroker.Stroke, Actions: []funscript.NormalisedAction{
		{At: 2000, Pos: 0.5},
	}})
	l.Submit(TimeChange{NowMillis: 1000})
	l.Submit(Shutdown{})
	require.NoError(t, l.Run())

	// the replacement timeline starts fresh: its first action fires
	// on the first tick, not the old timeline's 1.0 boundary action
	require.Len(t, dev.moves, 1)
	assert.InDelta(t, 0.5, dev.moves[0].Target(), 1e-9)
	assert.Equal(t, int64(1000), dev.moves[0].RampMillis())
	assert.Len(t, l.byAxis, 1)
}

func TestLoop_LimitChange(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	dev := twoAxisDevice()
	l := NewLoop(dev, func(stroker.AxisKind) AxisLimits {
		return AxisLimits{Speed: 2, Min: 0.45, Max: 0.9}
	})

	l.Submit(UseScript{Kind: stroker.Stroke, Actions: rampActions})
	l.Submit(LimitChange{Axis: stroker.Stroke, MinBy: f(0.1)})
	l.Submit(Shutdown{})
	require.NoError(t, l.Run())

	lim := l.byAxis[0].Limiter
	assert.InDelta(t, 0.55, lim.Min, 1e-9)
	assert.InDelta(t, 0.9, lim.Max, 1e-9)
}

func TestLoop_LimitChangeRejected(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	dev := twoAxisDevice()
	l := NewLoop(dev, func(stroker.AxisKind) AxisLimits {
		return AxisLimits{Speed: 2, Min: 0.45, Max: 0.9}
	})

	l.Submit(UseScript{Kind: stroker.Stroke, Actions: rampActions})
	// absolute out-of-range assignment
	l.Submit(LimitChange{Axis: stroker.Stroke, MinNew: f(1.5)})
	// conflicting relative and absolute forms
	l.Submit(LimitChange{Axis: stroker.Stroke, MinBy: f(0.1), MinNew: f(0.5)})
	// axis kind with no device axis
	l.Submit(LimitChange{Axis: stroker.Vibration, MinBy: f(0.1)})
	// axis kind with a device axis but no live timeline
	l.Submit(LimitChange{Axis: stroker.Twist, MinBy: f(0.1)})
	l.Submit(Shutdown{})
	require.NoError(t, l.Run())

	// all four were rejected and the limiter is untouched
	lim := l.byAxis[0].Limiter
	assert.InDelta(t, 0.45, lim.Min, 1e-9)
	assert.InDelta(t, 0.9, lim.Max, 1e-9)
}

func TestLoop_RelativeLimitClamps(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	dev := twoAxisDevice()
	l := NewLoop(dev, func(stroker.AxisKind) AxisLimits {
		return AxisLimits{Speed: 2, Min: 0.45, Max: 0.9}
	})

	l.Submit(UseScript{Kind: stroker.Stroke, Actions: rampActions})
	l.Submit(LimitChange{Axis: stroker.Stroke, MinBy: f(-1), MaxBy: f(1)})
	l.Submit(Shutdown{})
	require.NoError(t, l.Run())

	lim := l.byAxis[0].Limiter
	assert.InDelta(t, 0.0, lim.Min, 1e-9)
	assert.InDelta(t, 1.0, lim.Max, 1e-9)
}

func TestLoop_DispatchFailureAborts(t *testing.T) {
	dev := twoAxisDevice()
	dev.moveErr = errors.New("port unplugged")
	l := NewLoop(dev, openLimits)

	l.Submit(UseScript{Kind: stroker.Stroke, Actions: rampActions})
	l.Submit(Seek{NowMillis: 500})
	assert.Error(t, l.Run())
}

func TestLoop_OversizedRampAborts(t *testing.T) {
	dev := twoAxisDevice()
	l := NewLoop(dev, openLimits)

	// the next action is further away than the protocol can express
	l.Submit(UseScript{Kind: stroker.Stroke, Actions: []funscript.NormalisedAction{
		{At: 0, Pos: 0},
		{At: 60000, Pos: 1},
	}})
	l.Submit(Seek{NowMillis: 0})
	assert.Error(t, l.Run())
	assert.Empty(t, dev.moves)
}

func TestLoop_VideoStartingLoadsScripts(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "movie.funscript",
		`{"actions":[{"at":0,"pos":0},{"at":1000,"pos":100}],"range":100}`)
	writeScript(t, dir, "movie.twist.funscript",
		`{"actions":[{"at":0,"pos":50}],"range":100}`)

	dev := twoAxisDevice()
	l := NewLoop(dev, openLimits)

	l.Submit(VideoStarting{VideoPath: dir + "/movie.mp4"})
	go func() {
		time.Sleep(500 * time.Millisecond)
		l.Submit(Shutdown{})
	}()
	require.NoError(t, l.Run())

	assert.Len(t, l.byAxis, 2)
}
