package funscript

import "sort"

// Playstate tracks playback through one axis's normalised action list.
//
// The action list is shared read-only; Playstate itself is owned and
// mutated by a single goroutine.
type Playstate struct {
	actions []NormalisedAction

	// next indexes the next action to return. It may run past the end
	// of the list, meaning playback is exhausted.
	next int

	// due is the time at which the next tick fires, valid when hasDue.
	due    int64
	hasDue bool
}

func NewPlaystate(actions []NormalisedAction) *Playstate {
	return &Playstate{actions: actions, due: 0, hasDue: true}
}

// Seek relocates playback to the given time in milliseconds. The next
// tick fires immediately, and the cursor moves to the first action
// strictly after now.
func (p *Playstate) Seek(now int64) {
	p.due = now
	p.hasDue = true
	p.next = sort.Search(len(p.actions), func(i int) bool {
		return p.actions[i].At >= now+1
	})
}

// Tick reports the current time and returns the action at the cursor if
// one is due. The returned action may already be in the past; callers
// decide whether a stale action is still worth acting on.
func (p *Playstate) Tick(now int64) (NormalisedAction, bool) {
	if !p.hasDue || now < p.due {
		return NormalisedAction{}, false
	}
	if p.next >= len(p.actions) {
		return NormalisedAction{}, false
	}
	a := p.actions[p.next]
	p.next++
	p.due = a.At
	return a, true
}
