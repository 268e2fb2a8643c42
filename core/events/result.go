package events

import "time"

// ResultEvent is published when the run completes.
type ResultEvent struct {
	RunID       string
	Duration    time.Duration
	Score       float64
	Violations  int
	FilledCells int
	TotalCells  int
}
