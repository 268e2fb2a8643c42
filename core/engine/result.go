package engine

import (
	"time"

	"github.com/ktakeda47/jikanwari/core/evaluator"
	"github.com/ktakeda47/jikanwari/core/filler"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/optimizer"
	"github.com/ktakeda47/jikanwari/core/placement"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Phase is the wall time and yield of one pipeline phase.
type Phase struct {
	Name       string
	Duration   time.Duration
	Placed     int
	Infeasible int
}

// Result is everything one generation run produced. Constraint shortfalls
// live in Violations and Infeasibilities rather than in an error: a weak
// timetable is still a timetable.
type Result struct {
	RunID    string
	Seed     int64
	Started  time.Time
	Duration time.Duration

	Schedule        *timetable.Schedule
	Score           evaluator.Breakdown
	Violations      []model.Violation
	Infeasibilities []placement.Infeasibility
	Fill            filler.Report
	Optimizer       optimizer.Stats
	LockedCells     int
	Phases          []Phase

	Config Config
}

// FillRate is the filled share of the grid, zero for an empty school.
func (r *Result) FillRate() float64 {
	total := r.Schedule.CellCount()
	if total == 0 {
		return 0
	}
	return float64(r.Schedule.FilledCount()) / float64(total)
}

// Clean reports whether the run ended without critical or high violations,
// the bar for handing a timetable to the staff room.
func (r *Result) Clean() bool {
	for _, v := range r.Violations {
		if v.Priority == model.PriorityCritical || v.Priority == model.PriorityHigh {
			return false
		}
	}
	return true
}
