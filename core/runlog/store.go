// Package runlog persists one record per generation run so that schools
// can compare seeds and settings across attempts.
package runlog

import (
	"context"
	"fmt"
	"time"
)

// PhaseTiming is the wall time and yield of one pipeline phase.
type PhaseTiming struct {
	Phase      string `json:"phase"`
	DurationMS int64  `json:"duration_ms"`
	Placed     int    `json:"placed"`
	Infeasible int    `json:"infeasible"`
}

// RunRecord captures one generation run and its outcome.
type RunRecord struct {
	RunID             string        `json:"run_id"`
	Started           time.Time     `json:"started"`
	Duration          time.Duration `json:"duration"`
	Seed              int64         `json:"seed"`
	Classes           int           `json:"classes"`
	Score             float64       `json:"score"`
	Violations        int           `json:"violations"`
	JiritsuViolations int           `json:"jiritsu_violations"`
	FilledCells       int           `json:"filled_cells"`
	TotalCells        int           `json:"total_cells"`
	Infeasibilities   []string      `json:"infeasibilities,omitempty"`
	Phases            []PhaseTiming `json:"phases,omitempty"`
}

// RunQuery defines filters for retrieving records. Zero fields match
// everything.
type RunQuery struct {
	RunID    string
	Since    time.Time
	Until    time.Time
	MaxScore float64 // keep records at or below this score when positive
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// Backend names accepted in configuration.
const (
	BackendNone   = "none"
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Config selects where run records go.
type Config struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendNone
	}
}

// Validate checks the backend name and its requirements.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNone:
		return nil
	case BackendJSONL, BackendSQLite:
		if c.Path == "" {
			return fmt.Errorf("runlog: backend %s needs a path", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("runlog: unknown backend %q", c.Backend)
	}
}

// NewStore builds the configured store. The none backend discards records.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NopStore{}, nil
	case BackendJSONL:
		return NewJSONLStore(cfg.Path)
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("runlog: unknown backend %q", cfg.Backend)
	}
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error { return nil }

func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) { return nil, nil }

func (NopStore) Close() error { return nil }

func (r RunRecord) matches(q RunQuery) bool {
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if !q.Since.IsZero() && r.Started.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && r.Started.After(q.Until) {
		return false
	}
	if q.MaxScore > 0 && r.Score > q.MaxScore {
		return false
	}
	return true
}
