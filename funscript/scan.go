package funscript

import (
	"strings"

	"stroked/stroker"
)

// axisExtensions maps filename extensions to the axis kind they carry.
// A file with none of these is a stroke script.
var axisExtensions = []struct {
	ext  string
	kind stroker.AxisKind
}{
	{".surge", stroker.Surge},
	{".sway", stroker.Sway},
	{".twist", stroker.Twist},
	{".roll", stroker.Roll},
	{".pitch", stroker.Pitch},
	{".vib", stroker.Vibration},
}

// axisIDs maps the "id" field of embedded multi-axis scripts to a kind.
// Both kind names and T-Code style names are accepted.
var axisIDs = map[string]stroker.AxisKind{
	"L0": stroker.Stroke, "L1": stroker.Surge, "L2": stroker.Sway,
	"R0": stroker.Twist, "R1": stroker.Roll, "R2": stroker.Pitch,
	"V0": stroker.Vibration, "A0": stroker.Valve, "A1": stroker.Suction,
	"A2": stroker.Lubricant,
}

// KindForAxisID resolves the axis named by an embedded script's id.
func KindForAxisID(id string) (stroker.AxisKind, bool) {
	if k, ok := axisIDs[id]; ok {
		return k, true
	}
	k, err := stroker.ParseAxisKind(id)
	return k, err == nil
}

// A Cluster is a set of funscript files, at most one per axis.
type Cluster struct {
	Scripts map[stroker.AxisKind]string
}

// A ScanResult holds every funscript in a directory that relates to one
// video: the main cluster plus any named override clusters that can be
// switched in at will.
type ScanResult struct {
	Main      Cluster
	Overrides map[string]Cluster
}

// Scan matches a directory listing against the video's filename and
// groups candidate funscripts into clusters.
//
// "movie.funscript" and "movie.twist.funscript" land in the main
// cluster; "movie.soft.funscript" forms the ".soft" override cluster.
func Scan(filenames []string, videoName string) *ScanResult {
	stem := videoName
	if i := strings.LastIndex(videoName, "."); i >= 0 {
		stem = videoName[:i]
	}

	scan := &ScanResult{
		Main:      Cluster{Scripts: make(map[stroker.AxisKind]string)},
		Overrides: make(map[string]Cluster),
	}

	for _, file := range filenames {
		rest, ok := strings.CutPrefix(file, stem)
		if !ok {
			continue
		}
		rest, ok = strings.CutSuffix(rest, ".funscript")
		if !ok {
			continue
		}

		kind := stroker.Stroke
		for _, ae := range axisExtensions {
			if r, ok := strings.CutSuffix(rest, ae.ext); ok {
				kind = ae.kind
				rest = r
			}
		}

		cluster := scan.Main
		if rest != "" {
			c, ok := scan.Overrides[rest]
			if !ok {
				c = Cluster{Scripts: make(map[stroker.AxisKind]string)}
				scan.Overrides[rest] = c
			}
			cluster = c
		}
		cluster.Scripts[kind] = file
	}

	return scan
}
