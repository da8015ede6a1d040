package pipeline

import "time"

// RunStats tracks progress across a batch run.
type RunStats struct {
	Total     int           // Jobs resolved.
	Current   int           // 1-based index of the job being run.
	Completed int           // Jobs that finished without error.
	Elapsed   time.Duration // Wall time of the run phase.
}

// Remaining returns the number of resolved jobs that never ran to completion.
func (s *RunStats) Remaining() int {
	return s.Total - s.Completed
}
