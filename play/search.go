package play

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"stroked/funscript"
	"stroked/stroker"
)

// searchScripts finds and loads the funscripts for a newly started
// video, feeding each successfully normalised timeline back through
// submit. Per-file failures are logged and skipped; only being unable to
// list the directory is an error.
//
// Cancellation is cooperative: the context is checked between files, so
// a replaced search stops promptly without interrupting a load already
// in flight.
func searchScripts(ctx context.Context, videoPath, scriptPath string, submit func(Message)) error {
	scanName, scanDir := scanTarget(videoPath, scriptPath)

	entries, err := os.ReadDir(scanDir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", scanDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() || e.Type()&os.ModeSymlink != 0 {
			names = append(names, e.Name())
		}
	}

	scan := funscript.Scan(names, scanName)

	kinds := make([]stroker.AxisKind, 0, len(scan.Main.Scripts))
	for kind := range scan.Main.Scripts {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, kind := range kinds {
		select {
		case <-ctx.Done():
			log.Println("funscript search cancelled")
			return nil
		default:
		}

		filename := scan.Main.Scripts[kind]
		s, err := funscript.Load(filepath.Join(scanDir, filename))
		if err != nil {
			log.Printf("ERROR: load %s: %v", filename, err)
			continue
		}
		submit(UseScript{Kind: kind, Actions: funscript.Normalise(s)})

		for i := range s.Axes {
			ax := &s.Axes[i]
			axKind, ok := funscript.KindForAxisID(ax.ID)
			if !ok {
				log.Printf("unknown axis id %q in %s; skipping", ax.ID, filename)
				continue
			}
			submit(UseScript{Kind: axKind, Actions: funscript.NormaliseAxis(ax)})
		}
	}

	return nil
}

// scanTarget decides which filename to match scripts against and in
// which directory. An explicit script path wins over the video's own
// location.
func scanTarget(videoPath, scriptPath string) (name, dir string) {
	if scriptPath != "" {
		// a relative path resolves against the working directory
		return filepath.Base(scriptPath), filepath.Dir(scriptPath)
	}
	return filepath.Base(videoPath), filepath.Dir(videoPath)
}
