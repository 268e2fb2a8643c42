// Package engine drives one timetable generation run end to end: the lock
// pass, the placement phases, swap optimization, the empty-slot fill
// ladder and the final validation. The engine owns phase ordering and run
// accounting; the actual placement logic lives in the placement, optimizer
// and filler packages.
package engine

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/evaluator"
	"github.com/ktakeda47/jikanwari/core/events"
	"github.com/ktakeda47/jikanwari/core/filler"
	"github.com/ktakeda47/jikanwari/core/logger"
	"github.com/ktakeda47/jikanwari/core/metrics"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/optimizer"
	"github.com/ktakeda47/jikanwari/core/placement"
	"github.com/ktakeda47/jikanwari/core/runlog"
	"github.com/ktakeda47/jikanwari/core/timetable"
	"github.com/ktakeda47/jikanwari/internal/eventbus"
)

// Generator runs the generation pipeline. The validator, evaluator and
// logger are required; sink, bus and store are optional observers that may
// be nil.
type Generator struct {
	validator *constraint.Validator
	eval      *evaluator.Evaluator
	log       logger.Logger
	sink      metrics.Sink
	bus       eventbus.EventBus
	store     runlog.Store
	cfg       Config
}

// New builds a generator. The config is defaulted and validated here so
// every Generate call runs with the same settled settings.
func New(v *constraint.Validator, eval *evaluator.Evaluator, log logger.Logger,
	sink metrics.Sink, bus eventbus.EventBus, store runlog.Store, cfg Config) (*Generator, error) {
	if v == nil || eval == nil || log == nil {
		return nil, fmt.Errorf("engine: nil parameter provided to New")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		validator: v,
		eval:      eval,
		log:       log,
		sink:      sink,
		bus:       bus,
		store:     store,
		cfg:       cfg,
	}, nil
}

// Config returns the settled run settings.
func (g *Generator) Config() Config { return g.cfg }

// Close releases the observers handed to the generator.
func (g *Generator) Close() error {
	var first error
	if g.bus != nil {
		g.bus.Close()
	}
	if g.store != nil {
		if err := g.store.Close(); err != nil {
			first = err
		}
	}
	if c, ok := g.sink.(io.Closer); ok {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// runState carries the accounting of one Generate call.
type runState struct {
	id      string
	seed    int64
	started time.Time
	phases  []Phase
	infeas  []placement.Infeasibility
}

// Generate produces a timetable for the school. A non-nil initial schedule
// seeds the run: its regular-class content is kept and locked unless
// StartEmpty discards it. Constraint shortfalls come back inside the
// result; the error return covers setup problems and cancellation only.
func (g *Generator) Generate(ctx context.Context, school *timetable.School,
	initial *timetable.Schedule) (*Result, error) {
	if school == nil {
		return nil, fmt.Errorf("engine: nil school provided to Generate")
	}
	if err := school.Validate(); err != nil {
		return nil, err
	}

	seed := g.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	run := &runState{id: uuid.NewString(), seed: seed, started: time.Now()}

	g.log.Infof("generation %s starting: seed %d, %d classes", run.id, seed, len(school.Classes()))
	if g.bus != nil {
		g.bus.Publish(events.RunEvent{
			RunID:      run.id,
			Seed:       seed,
			Classes:    len(school.Classes()),
			StartEmpty: g.cfg.StartEmpty,
		})
	}

	jiritsu, err := placement.NewJiritsuPlacer(g.validator, g.log)
	if err != nil {
		return nil, err
	}
	grade5, err := placement.NewGrade5Synchronizer(g.validator, g.log)
	if err != nil {
		return nil, err
	}
	exchange, err := placement.NewExchangeSync(g.validator, g.log)
	if err != nil {
		return nil, err
	}
	greedy, err := placement.NewGreedyPlacer(g.validator, g.log, rng, g.cfg.RandomnessLevel)
	if err != nil {
		return nil, err
	}
	swapper, err := optimizer.New(g.eval, g.log, rng, g.cfg.optimizerConfig())
	if err != nil {
		return nil, err
	}
	passes := filler.DefaultPasses()
	if !g.cfg.AllowSoftConstraints {
		passes = []string{filler.PassStrict, filler.PassBalanced}
	}
	fill, err := filler.New(g.validator, g.log, rng, passes...)
	if err != nil {
		return nil, err
	}

	before := 0
	if initial != nil && !g.cfg.StartEmpty {
		before = initial.FilledCount()
	}
	start := time.Now()
	s, locked := g.prepare(school, initial)
	g.phase(run, "lock", start, s.FilledCount()-before, 0)

	start = time.Now()
	before = s.FilledCount()
	infeas, err := jiritsu.Place(ctx, s, school)
	run.infeas = append(run.infeas, infeas...)
	g.phase(run, "jiritsu", start, s.FilledCount()-before, len(infeas))
	if err != nil {
		return nil, fmt.Errorf("engine: jiritsu phase: %w", err)
	}

	start = time.Now()
	before = s.FilledCount()
	infeas, err = grade5.Sync(ctx, s, school)
	run.infeas = append(run.infeas, infeas...)
	g.phase(run, "grade5", start, s.FilledCount()-before, len(infeas))
	if err != nil {
		return nil, fmt.Errorf("engine: grade5 phase: %w", err)
	}

	start = time.Now()
	mirrored := exchange.SyncEarly(s, school)
	g.phase(run, "exchange_early", start, mirrored, 0)

	start = time.Now()
	before = s.FilledCount()
	infeas, err = greedy.Place(ctx, s, school)
	run.infeas = append(run.infeas, infeas...)
	g.phase(run, "greedy", start, s.FilledCount()-before, len(infeas))
	if err != nil {
		return nil, fmt.Errorf("engine: greedy phase: %w", err)
	}

	start = time.Now()
	mirrored, repaired := exchange.SyncFinal(s, school)
	g.phase(run, "exchange_final", start, mirrored+repaired, 0)

	start = time.Now()
	s, stats, err := swapper.Optimize(ctx, s, school)
	swapAttempts.Add(float64(stats.Attempted))
	swapAccepted.Add(float64(stats.Accepted))
	g.phase(run, "optimize", start, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("engine: optimize phase: %w", err)
	}

	start = time.Now()
	report, err := fill.Fill(ctx, s, school)
	g.phase(run, "fill", start, report.Filled, len(report.Unfilled))
	if err != nil {
		return nil, fmt.Errorf("engine: fill phase: %w", err)
	}

	start = time.Now()
	violations := g.validator.FindAllViolations(s, school)
	model.SortViolations(violations)
	breakdown := g.eval.ScoreViolations(violations, s, school)
	g.phase(run, "validate", start, 0, 0)
	g.gauge(violations)

	echo := g.cfg
	echo.Seed = seed
	res := &Result{
		RunID:           run.id,
		Seed:            seed,
		Started:         run.started,
		Duration:        time.Since(run.started),
		Schedule:        s,
		Score:           breakdown,
		Violations:      violations,
		Infeasibilities: run.infeas,
		Fill:            report,
		Optimizer:       stats,
		LockedCells:     locked,
		Phases:          run.phases,
		Config:          echo,
	}
	g.finish(ctx, res, breakdown)
	return res, nil
}

// prepare builds the working schedule and runs the lock pass. StartEmpty
// keeps the initial schedule's test-period marks but none of its content.
func (g *Generator) prepare(school *timetable.School, initial *timetable.Schedule) (*timetable.Schedule, int) {
	var s *timetable.Schedule
	switch {
	case initial == nil:
		s = timetable.NewSchedule(school)
	case g.cfg.StartEmpty:
		s = timetable.NewSchedule(school)
		for _, slot := range initial.TestPeriods() {
			s.MarkTestPeriod(slot)
		}
	default:
		s = initial.Clone()
	}
	return s, g.lock(s, school)
}

// lock pins everything generation must not touch. The fixed-period table
// is stamped into its empty ruled cells, every cell holding a protected
// subject is pinned, and on a re-generation the filled cells of regular
// and joint classes stay put while exchange-class lessons reopen so the
// mirror passes can re-sync them. Self-reliance cells stay locked even in
// exchange classes.
func (g *Generator) lock(s *timetable.Schedule, school *timetable.School) int {
	for _, r := range g.validator.FixedRules() {
		for _, class := range s.Classes() {
			if !r.AppliesTo(class.Grade) {
				continue
			}
			if _, filled := s.Get(r.Slot, class); filled {
				continue
			}
			a := model.Assignment{Subject: r.Subject}
			if t, ok := school.TeacherFor(r.Subject, class); ok {
				a.Teacher = t
			}
			if err := s.PlaceLocked(r.Slot, class, a); err != nil {
				g.log.Warnf("fixed rule %s %s for %s: %v", r.Slot, r.Subject, class, err)
			}
		}
	}
	s.LockFixed()

	cat := school.Catalog()
	locked := 0
	for _, class := range s.Classes() {
		for _, slot := range model.AllSlots() {
			if s.IsLocked(slot, class) {
				locked++
				continue
			}
			a, filled := s.Get(slot, class)
			if !filled {
				continue
			}
			if class.IsExchange() && !cat.IsSelfReliance(a.Subject) {
				continue
			}
			s.Lock(slot, class)
			locked++
		}
	}
	return locked
}

// phase closes one pipeline phase: timing, collectors, event, sink.
func (g *Generator) phase(run *runState, name string, start time.Time, placed, infeasible int) {
	d := time.Since(start)
	run.phases = append(run.phases, Phase{Name: name, Duration: d, Placed: placed, Infeasible: infeasible})
	phaseDuration.WithLabelValues(name).Observe(d.Seconds())
	if placed > 0 {
		placements.WithLabelValues(name).Add(float64(placed))
	}
	g.log.Debugf("phase %s done in %s: %d placed, %d infeasible", name, d, placed, infeasible)
	if g.bus != nil {
		g.bus.Publish(events.PhaseEvent{
			RunID:      run.id,
			Phase:      name,
			Duration:   d,
			Placed:     placed,
			Infeasible: infeasible,
		})
	}
	if g.sink != nil {
		if rec, ok := g.sink.(metrics.PhaseRecorder); ok {
			_ = rec.RecordPhase(metrics.PhaseSample{
				RunID:      run.id,
				Phase:      name,
				Duration:   d,
				Placed:     placed,
				Infeasible: infeasible,
				Time:       time.Now(),
			})
		}
	}
}

// gauge publishes the final violation tally, resetting ranks that cleared.
func (g *Generator) gauge(violations []model.Violation) {
	counts := model.CountByPriority(violations)
	for _, p := range []model.Priority{
		model.PriorityCritical, model.PriorityHigh, model.PriorityMedium, model.PriorityLow,
	} {
		violationRank.WithLabelValues(p.String()).Set(float64(counts[p]))
	}
}

// finish emits the run's terminal records to the log, bus, sink and store.
func (g *Generator) finish(ctx context.Context, res *Result, breakdown evaluator.Breakdown) {
	s := res.Schedule
	g.log.Infof("generation %s finished in %s: score %.2f, %d violations, %d/%d cells filled",
		res.RunID, res.Duration.Round(time.Millisecond), breakdown.Total,
		len(res.Violations), s.FilledCount(), s.CellCount())

	if g.bus != nil {
		g.bus.Publish(events.ResultEvent{
			RunID:       res.RunID,
			Duration:    res.Duration,
			Score:       breakdown.Total,
			Violations:  len(res.Violations),
			FilledCells: s.FilledCount(),
			TotalCells:  s.CellCount(),
		})
	}
	if g.sink != nil {
		if err := g.sink.RecordRun(metrics.RunSample{
			RunID:             res.RunID,
			Seed:              res.Seed,
			Score:             breakdown.Total,
			Violations:        len(res.Violations),
			JiritsuViolations: breakdown.JiritsuViolations,
			FilledCells:       s.FilledCount(),
			TotalCells:        s.CellCount(),
			Duration:          res.Duration,
			Time:              time.Now(),
		}); err != nil {
			g.log.Warnf("metrics sink rejected run sample: %v", err)
		}
		if rec, ok := g.sink.(metrics.OptimizerRecorder); ok {
			_ = rec.RecordOptimizer(metrics.OptimizerSample{
				RunID:        res.RunID,
				Iterations:   res.Optimizer.Iterations,
				Attempted:    res.Optimizer.Attempted,
				Accepted:     res.Optimizer.Accepted,
				Kicks:        res.Optimizer.Kicks,
				InitialScore: res.Optimizer.InitialScore,
				FinalScore:   res.Optimizer.FinalScore,
				Time:         time.Now(),
			})
		}
	}
	if g.store != nil {
		if err := g.store.Append(ctx, g.record(res)); err != nil {
			g.log.Warnf("run log append failed: %v", err)
		}
	}
}

// record maps a result onto the run-log row shape.
func (g *Generator) record(res *Result) runlog.RunRecord {
	var infeas []string
	for _, i := range res.Infeasibilities {
		infeas = append(infeas, i.String())
	}
	phases := make([]runlog.PhaseTiming, 0, len(res.Phases))
	for _, p := range res.Phases {
		phases = append(phases, runlog.PhaseTiming{
			Phase:      p.Name,
			DurationMS: p.Duration.Milliseconds(),
			Placed:     p.Placed,
			Infeasible: p.Infeasible,
		})
	}
	return runlog.RunRecord{
		RunID:             res.RunID,
		Started:           res.Started,
		Duration:          res.Duration,
		Seed:              res.Seed,
		Classes:           len(res.Schedule.Classes()),
		Score:             res.Score.Total,
		Violations:        len(res.Violations),
		JiritsuViolations: res.Score.JiritsuViolations,
		FilledCells:       res.Schedule.FilledCount(),
		TotalCells:        res.Schedule.CellCount(),
		Infeasibilities:   infeas,
		Phases:            phases,
	}
}
