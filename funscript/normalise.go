package funscript

// A NormalisedAction is one timeline datapoint in canonical form: raw
// script units converted to [0,1] full scale with any inversion already
// applied. Immutable once produced; shared read-only across seeks.
type NormalisedAction struct {
	// At is milliseconds since the start of the video.
	At int64
	// Pos is the axis position, between 0.0 and 1.0 full scale.
	Pos float64
}

// Normalise converts the main action list of a script to canonical form.
func Normalise(s *Script) []NormalisedAction {
	return normalise(s.Actions, s.Inverted, s.Range)
}

// NormaliseAxis converts one embedded axis script to canonical form.
func NormaliseAxis(ax *AxisScript) []NormalisedAction {
	return normalise(ax.Actions, ax.Inverted, ax.Range)
}

func normalise(actions []Action, inverted bool, scale int64) []NormalisedAction {
	if scale <= 0 {
		scale = 100
	}
	out := make([]NormalisedAction, 0, len(actions))
	for _, a := range actions {
		pos := float64(a.Pos) / float64(scale)
		if pos < 0 {
			pos = 0
		} else if pos > 1 {
			pos = 1
		}
		if inverted {
			pos = 1 - pos
		}
		out = append(out, NormalisedAction{At: a.At, Pos: pos})
	}
	return out
}
