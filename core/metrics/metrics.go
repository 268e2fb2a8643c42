package metrics

import "time"

// RunSample is the final snapshot of one generation run.
type RunSample struct {
	RunID             string
	Seed              int64
	Score             float64
	Violations        int
	JiritsuViolations int
	FilledCells       int
	TotalCells        int
	Duration          time.Duration
	Time              time.Time
}

// FillRate is the filled share of the grid, zero for an empty school.
func (r RunSample) FillRate() float64 {
	if r.TotalCells == 0 {
		return 0
	}
	return float64(r.FilledCells) / float64(r.TotalCells)
}

// Sink records generation outcomes for observability purposes.
type Sink interface {
	RecordRun(RunSample) error
}

// PhaseSample covers one pipeline phase of a run.
type PhaseSample struct {
	RunID      string
	Phase      string
	Duration   time.Duration
	Placed     int
	Infeasible int
	Time       time.Time
}

// PhaseRecorder is implemented by sinks able to record per-phase samples.
type PhaseRecorder interface {
	RecordPhase(PhaseSample) error
}

// OptimizerSample summarizes the swap search of one run.
type OptimizerSample struct {
	RunID        string
	Iterations   int
	Attempted    int
	Accepted     int
	Kicks        int
	InitialScore float64
	FinalScore   float64
	Time         time.Time
}

// OptimizerRecorder is implemented by sinks able to record optimizer runs.
type OptimizerRecorder interface {
	RecordOptimizer(OptimizerSample) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunSample) error             { return nil }
func (NopSink) RecordPhase(PhaseSample) error         { return nil }
func (NopSink) RecordOptimizer(OptimizerSample) error { return nil }
