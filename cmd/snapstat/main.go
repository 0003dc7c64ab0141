// Command snapstat summarises garden snapshot files as CSV.
//
//	snapstat -root runs -glob '**/snapshot_*.json' > summary.csv
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/sprout/telemetry"
)

func main() {
	root := flag.String("root", ".", "Directory to search")
	pattern := flag.String("glob", "**/snapshot*.json", "Doublestar pattern relative to root")
	flag.Parse()

	if !doublestar.ValidatePattern(*pattern) {
		log.Fatalf("invalid pattern %q", *pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(*root), *pattern, doublestar.WithFilesOnly())
	if err != nil {
		log.Fatalf("glob: %v", err)
	}
	sort.Strings(matches)

	rows := make([]telemetry.SnapshotSummary, 0, len(matches))
	for _, m := range matches {
		path := filepath.Join(*root, filepath.FromSlash(m))
		snap, err := telemetry.LoadSnapshot(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		rows = append(rows, snap.Summary(path))
	}

	if len(rows) == 0 {
		log.Fatalf("no snapshots under %s matching %s", *root, *pattern)
	}
	if err := gocsv.Marshal(rows, os.Stdout); err != nil {
		log.Fatalf("write csv: %v", err)
	}
}
