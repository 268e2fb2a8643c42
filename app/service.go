// Package app assembles the configured pieces into a runnable
// generation service: logger, validator, evaluator, metric sinks, run
// log store, event bus and the engine itself.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ktakeda47/jikanwari/config"
	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/engine"
	"github.com/ktakeda47/jikanwari/core/evaluator"
	"github.com/ktakeda47/jikanwari/core/events"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/runlog"
	"github.com/ktakeda47/jikanwari/core/timetable"
	"github.com/ktakeda47/jikanwari/infra/loader"
	"github.com/ktakeda47/jikanwari/infra/logger"
	"github.com/ktakeda47/jikanwari/infra/metrics"
	"github.com/ktakeda47/jikanwari/internal/eventbus"
)

// Service orchestrates one school's timetable generation.
type Service struct {
	Generator *engine.Generator
	School    *timetable.School
	Initial   *timetable.Schedule
	Store     runlog.Store

	bus       eventbus.EventBus
	validator *constraint.Validator
	log       logger.Logger
}

// New creates a Service from the configuration. The school file named by
// the configuration is loaded immediately so that data errors surface
// before any generation work starts.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided to New")
	}
	if cfg.SchoolFile == "" {
		return nil, fmt.Errorf("app: no school file configured")
	}
	logg := logger.New("service")

	rules, err := cfg.Calendar.Rules()
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	validator, err := constraint.NewDefaultValidator(rules, cfg.Calendar.HourTolerance)
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	eval, err := evaluator.New(validator, cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := runlog.NewStore(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log store: %w", err)
	}
	bus := eventbus.New()

	gen, err := engine.New(validator, eval, logger.New("engine"), sink, bus, store, cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	school, initial, err := loader.Load(cfg.SchoolFile, cfg.Subjects.Catalog())
	if err != nil {
		return nil, fmt.Errorf("school file %s: %w", cfg.SchoolFile, err)
	}

	return &Service{
		Generator: gen,
		School:    school,
		Initial:   initial,
		Store:     store,
		bus:       bus,
		validator: validator,
		log:       logg,
	}, nil
}

// Run executes one generation run against the loaded school, logging
// pipeline progress as it happens.
func (s *Service) Run(ctx context.Context) (*engine.Result, error) {
	sub := s.bus.Subscribe(32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.progress(sub)
	}()

	res, err := s.Generator.Generate(ctx, s.School, s.Initial)

	s.bus.Unsubscribe(sub)
	<-done
	return res, err
}

// ValidateSetup runs the pre-flight data checks and, when an initial
// timetable was loaded with the school file, scans it for violations.
func (s *Service) ValidateSetup() ([]model.Violation, error) {
	if err := s.School.Validate(); err != nil {
		return nil, err
	}
	if s.Initial == nil || s.Initial.FilledCount() == 0 {
		return nil, nil
	}
	violations := s.validator.FindAllViolations(s.Initial, s.School)
	model.SortViolations(violations)
	return violations, nil
}

// History returns stored run records matching the query, newest last.
func (s *Service) History(ctx context.Context, q runlog.RunQuery) ([]runlog.RunRecord, error) {
	return s.Store.Query(ctx, q)
}

// Close releases resources held by the service.
func (s *Service) Close() error { return s.Generator.Close() }

func (s *Service) progress(sub <-chan eventbus.Event) {
	for e := range sub {
		switch ev := e.(type) {
		case events.RunEvent:
			s.log.Infof("run %s: seed %d, %d classes", ev.RunID, ev.Seed, ev.Classes)
		case events.PhaseEvent:
			if ev.Infeasible > 0 {
				s.log.Warnf("%s: %d placed, %d infeasible in %s",
					ev.Phase, ev.Placed, ev.Infeasible, ev.Duration.Round(time.Millisecond))
				continue
			}
			s.log.Infof("%s: %d placed in %s",
				ev.Phase, ev.Placed, ev.Duration.Round(time.Millisecond))
		case events.ResultEvent:
			s.log.Infof("run %s done: score %.2f, %d violations, %d/%d cells filled",
				ev.RunID, ev.Score, ev.Violations, ev.FilledCells, ev.TotalCells)
		}
	}
}
