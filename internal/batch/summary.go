package batch

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/kmmndr/motiontrim/internal/pipeline"
)

// Summary tallies the results of a batch run.
type Summary struct {
	Total     int
	Succeeded int
	Empty     int
	Results   []pipeline.Result
}

func (s *Summary) Add(res pipeline.Result) {
	s.Results = append(s.Results, res)
	switch {
	case res.Err != nil:
	case res.Empty:
		s.Empty++
	default:
		s.Succeeded++
	}
}

func (s *Summary) Done() int {
	return len(s.Results)
}

func (s *Summary) Failed() int {
	return s.Done() - s.Succeeded - s.Empty
}

// Failures returns the failed results ordered by input path.
func (s *Summary) Failures() []pipeline.Result {
	var failed []pipeline.Result
	for _, res := range s.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Job.Input < failed[j].Job.Input })
	return failed
}

// Print writes a human readable report of the run.
func (s *Summary) Print(w io.Writer, elapsed time.Duration) {
	fmt.Fprintf(w, "\nAll videos processed. Total: %d\n", s.Total)
	fmt.Fprintf(w, "Succeeded: %d, no motion: %d, failed: %d\n", s.Succeeded, s.Empty, s.Failed())
	for _, res := range s.Failures() {
		fmt.Fprintf(w, "  FAILED %s: %v\n", res.Job.Input, res.Err)
	}
	fmt.Fprintf(w, "Total processing time: %.2f seconds\n", elapsed.Seconds())
}
