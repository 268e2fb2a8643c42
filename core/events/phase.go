package events

import "time"

// PhaseEvent is published after each pipeline phase. Phase can be "lock",
// "jiritsu", "grade5", "exchange_early", "greedy", "exchange_final",
// "optimize", "fill" or "validate".
type PhaseEvent struct {
	RunID      string
	Phase      string
	Duration   time.Duration
	Placed     int
	Infeasible int
}
