package tcode

import (
	"errors"
	"strconv"
	"strings"

	"stroked/stroker"
)

// axisKinds maps each known T-Code axis name to its semantic kind.
// Axes with names outside this table stay invisible to callers.
var axisKinds = map[string]stroker.AxisKind{
	"L0": stroker.Stroke,
	"L1": stroker.Surge,
	"L2": stroker.Sway,
	"R0": stroker.Twist,
	"R1": stroker.Roll,
	"R2": stroker.Pitch,
	"V0": stroker.Vibration,
	"A0": stroker.Valve,
	"A1": stroker.Suction,
	"A2": stroker.Lubricant,
}

// discoveredAxis is one parsed line of a D2 axis enumeration response,
// e.g. "L0 0 9999 Up".
type discoveredAxis struct {
	name         string
	preferredMin int
	preferredMax int
	identified   string
}

func parseAxisLine(line string) (ax discoveredAxis, err error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return ax, errors.New("expected at least 4 fields")
	}
	ax.name = fields[0]
	ax.preferredMin, err = strconv.Atoi(fields[1])
	if err != nil {
		return ax, errors.New("invalid preferred min: " + fields[1])
	}
	ax.preferredMax, err = strconv.Atoi(fields[2])
	if err != nil {
		return ax, errors.New("invalid preferred max: " + fields[2])
	}
	ax.identified = fields[3]
	return ax, nil
}
