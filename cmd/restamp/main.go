package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kmmndr/motiontrim/internal/logger"
	"github.com/kmmndr/motiontrim/internal/restamp"
)

// restamp sets the times of trimmed videos from the capture timestamp in
// their names.
func main() {
	var dir string
	var pattern string

	flag.StringVar(&dir, "dir", "output", "Directory containing the files")
	flag.StringVar(&pattern, "pattern", "motion_*.mp4", "Glob of files to update")
	flag.Parse()

	zlog, err := logger.New("info")
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}
	defer zlog.Sync()

	results, err := restamp.Dir(dir, pattern, zlog)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	updated := 0
	for _, r := range results {
		if r.Skipped == nil {
			updated++
		}
	}
	fmt.Printf("Updated %d of %d files\n", updated, len(results))
}
