package events

// RunEvent is published when a generation run starts.
type RunEvent struct {
	RunID      string
	Seed       int64
	Classes    int
	StartEmpty bool
}
