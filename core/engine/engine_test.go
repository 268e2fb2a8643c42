package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/evaluator"
	"github.com/ktakeda47/jikanwari/core/events"
	"github.com/ktakeda47/jikanwari/core/metrics"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/runlog"
	"github.com/ktakeda47/jikanwari/core/timetable"
	"github.com/ktakeda47/jikanwari/infra/logger"
	"github.com/ktakeda47/jikanwari/internal/eventbus"
)

var (
	c11 = model.ClassRef{Grade: 1, Number: 1}
	c12 = model.ClassRef{Grade: 1, Number: 2}
	c16 = model.ClassRef{Grade: 1, Number: 6}
)

var phaseOrder = []string{
	"lock", "jiritsu", "grade5", "exchange_early", "greedy",
	"exchange_final", "optimize", "fill", "validate",
}

func newCatalog() *model.SubjectCatalog {
	return model.NewSubjectCatalog(model.CatalogSets{
		Fixed:          []model.Subject{"欠", "YT", "道", "学", "総", "行"},
		SelfReliance:   []model.Subject{"自立", "日生", "作業"},
		ParentEligible: []model.Subject{"数", "英"},
		Core:           []model.Subject{"国", "数", "英", "理", "社"},
		Skill:          []model.Subject{"音", "美", "技", "家"},
		PE:             []model.Subject{"保"},
		TestMarkers:    []model.Subject{"テスト"},
	})
}

// regularHours is the weekly demand used by the two-homeroom fixture. It
// leaves one free cell per class next to the Monday-6 fixed period so the
// fill ladder has work to do.
var regularHours = []struct {
	subject model.Subject
	hours   int
}{
	{"国", 4}, {"数", 4}, {"英", 3}, {"理", 3}, {"社", 3},
	{"音", 2}, {"美", 2}, {"技", 2}, {"家", 2}, {"保", 3},
}

// newTwoClassSchool staffs every (class, subject) pair with its own
// teacher so teacher conflicts cannot occur by construction.
func newTwoClassSchool(t *testing.T) *timetable.School {
	t.Helper()
	data := timetable.SchoolData{Classes: []model.ClassRef{c11, c12}}
	for _, class := range data.Classes {
		for _, rh := range regularHours {
			data.RequiredHours = append(data.RequiredHours, timetable.HourRequirement{
				Class: class, Subject: rh.subject, Hours: rh.hours,
			})
			data.Assignments = append(data.Assignments, timetable.TeacherAssignment{
				Subject: rh.subject, Class: class,
				Teacher: model.Teacher(string(rh.subject) + class.String()),
			})
		}
	}
	school, err := timetable.NewSchool(newCatalog(), data)
	require.NoError(t, err)
	return school
}

func mondaySix(t *testing.T) []constraint.FixedPeriodRule {
	t.Helper()
	slot, err := model.NewTimeSlot(model.Monday, 6)
	require.NoError(t, err)
	return []constraint.FixedPeriodRule{{Slot: slot, Subject: "欠", Grades: []int{1, 2}}}
}

func newGenerator(t *testing.T, cfg Config, sink metrics.Sink,
	bus eventbus.EventBus, store runlog.Store) *Generator {
	t.Helper()
	v, err := constraint.NewDefaultValidator(mondaySix(t), 0.5)
	require.NoError(t, err)
	eval, err := evaluator.New(v, evaluator.DefaultWeights())
	require.NoError(t, err)
	g, err := New(v, eval, logger.NopLogger{}, sink, bus, store, cfg)
	require.NoError(t, err)
	return g
}

// fastConfig keeps the swap search short so tests stay quick.
func fastConfig() Config {
	return Config{MaxIterations: 5, SwapsPerIter: 5, Seed: 42, AllowSoftConstraints: true}
}

type recordedRuns struct {
	runs       []metrics.RunSample
	phases     []metrics.PhaseSample
	optimizers []metrics.OptimizerSample
}

func (r *recordedRuns) RecordRun(s metrics.RunSample) error { r.runs = append(r.runs, s); return nil }

func (r *recordedRuns) RecordPhase(s metrics.PhaseSample) error {
	r.phases = append(r.phases, s)
	return nil
}

func (r *recordedRuns) RecordOptimizer(s metrics.OptimizerSample) error {
	r.optimizers = append(r.optimizers, s)
	return nil
}

type memoryStore struct {
	records []runlog.RunRecord
}

func (m *memoryStore) Append(_ context.Context, rec runlog.RunRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryStore) Query(context.Context, runlog.RunQuery) ([]runlog.RunRecord, error) {
	return m.records, nil
}

func (m *memoryStore) Close() error { return nil }

func TestNewRejectsBadArguments(t *testing.T) {
	v, err := constraint.NewDefaultValidator(nil, 0.5)
	require.NoError(t, err)
	eval, err := evaluator.New(v, evaluator.DefaultWeights())
	require.NoError(t, err)

	_, err = New(nil, eval, logger.NopLogger{}, nil, nil, nil, Config{})
	assert.ErrorContains(t, err, "nil parameter")
	_, err = New(v, nil, logger.NopLogger{}, nil, nil, nil, Config{})
	assert.ErrorContains(t, err, "nil parameter")
	_, err = New(v, eval, nil, nil, nil, nil, Config{})
	assert.ErrorContains(t, err, "nil parameter")
	_, err = New(v, eval, logger.NopLogger{}, nil, nil, nil, Config{RandomnessLevel: 2})
	assert.ErrorContains(t, err, "randomness_level")
}

func TestGenerateRejectsBrokenSchool(t *testing.T) {
	data := timetable.SchoolData{
		Classes:       []model.ClassRef{c11},
		RequiredHours: []timetable.HourRequirement{{Class: c11, Subject: "数", Hours: 4}},
	}
	school, err := timetable.NewSchool(newCatalog(), data)
	require.NoError(t, err)

	g := newGenerator(t, fastConfig(), nil, nil, nil)
	_, err = g.Generate(context.Background(), school, nil)
	var setup *timetable.SetupError
	require.ErrorAs(t, err, &setup)
	assert.Contains(t, setup.Gaps[0], "no teacher assigned")
}

func TestGenerateFillsTheWholeGrid(t *testing.T) {
	school := newTwoClassSchool(t)
	g := newGenerator(t, fastConfig(), nil, nil, nil)

	res, err := g.Generate(context.Background(), school, nil)
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), res.Seed)
	assert.Equal(t, int64(42), res.Config.Seed)

	mon6, _ := model.NewTimeSlot(model.Monday, 6)
	for _, class := range []model.ClassRef{c11, c12} {
		assert.Equal(t, model.Subject("欠"), res.Schedule.Subject(mon6, class))
		assert.True(t, res.Schedule.IsLocked(mon6, class))
		for _, rh := range regularHours {
			got := res.Schedule.HourCount(class, rh.subject)
			if got < rh.hours {
				t.Fatalf("class %s subject %s: placed %d of %d hours", class, rh.subject, got, rh.hours)
			}
		}
	}

	assert.Empty(t, res.Fill.Unfilled)
	assert.Equal(t, res.Schedule.CellCount(), res.Schedule.FilledCount())
	assert.Equal(t, 1.0, res.FillRate())
	assert.True(t, res.Clean(), "violations: %v", res.Violations)
	assert.Empty(t, res.Infeasibilities)

	names := make([]string, 0, len(res.Phases))
	for _, p := range res.Phases {
		names = append(names, p.Name)
	}
	assert.Equal(t, phaseOrder, names)
	assert.Equal(t, 2, res.Phases[0].Placed, "lock pass stamps Monday 6 for both classes")
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	school := newTwoClassSchool(t)
	cfg := fastConfig()
	cfg.Seed = 77

	first, err := newGenerator(t, cfg, nil, nil, nil).Generate(context.Background(), school, nil)
	require.NoError(t, err)
	second, err := newGenerator(t, cfg, nil, nil, nil).Generate(context.Background(), school, nil)
	require.NoError(t, err)

	for _, class := range first.Schedule.Classes() {
		for _, slot := range model.AllSlots() {
			a, _ := first.Schedule.Get(slot, class)
			b, _ := second.Schedule.Get(slot, class)
			if a != b {
				t.Fatalf("%s %s diverged between seeded runs: %v vs %v", slot, class, a, b)
			}
		}
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestGenerateDrawsSeedWhenUnset(t *testing.T) {
	school := newTwoClassSchool(t)
	cfg := fastConfig()
	cfg.Seed = 0

	res, err := newGenerator(t, cfg, nil, nil, nil).Generate(context.Background(), school, nil)
	require.NoError(t, err)
	assert.NotZero(t, res.Seed)
	assert.Equal(t, res.Seed, res.Config.Seed)
}

func TestGenerateNotifiesObservers(t *testing.T) {
	reg := prometheus.NewRegistry()
	ResetMetrics(reg)
	t.Cleanup(func() { ResetMetrics(nil) })

	school := newTwoClassSchool(t)
	sink := &recordedRuns{}
	store := &memoryStore{}
	bus := eventbus.New()
	sub := bus.Subscribe(64)

	g := newGenerator(t, fastConfig(), sink, bus, store)
	res, err := g.Generate(context.Background(), school, nil)
	require.NoError(t, err)
	require.NoError(t, g.Close())

	var runs, phases, results int
	for e := range sub {
		switch ev := e.(type) {
		case events.RunEvent:
			runs++
			assert.Equal(t, res.RunID, ev.RunID)
			assert.Equal(t, 2, ev.Classes)
		case events.PhaseEvent:
			assert.Equal(t, phaseOrder[phases], ev.Phase)
			phases++
		case events.ResultEvent:
			results++
			assert.Equal(t, res.Schedule.FilledCount(), ev.FilledCells)
		}
	}
	assert.Equal(t, 1, runs)
	assert.Equal(t, len(phaseOrder), phases)
	assert.Equal(t, 1, results)

	require.Len(t, sink.runs, 1)
	assert.Equal(t, res.RunID, sink.runs[0].RunID)
	assert.Equal(t, 1.0, sink.runs[0].FillRate())
	assert.Len(t, sink.phases, len(phaseOrder))
	require.Len(t, sink.optimizers, 1)
	assert.Equal(t, res.Optimizer.Attempted, sink.optimizers[0].Attempted)

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, res.RunID, rec.RunID)
	assert.Equal(t, res.Score.Total, rec.Score)
	assert.Len(t, rec.Phases, len(phaseOrder))

	greedyPlaced := testutil.ToFloat64(placements.WithLabelValues("greedy"))
	assert.Equal(t, float64(56), greedyPlaced, "28 required hours per class")
	assert.Equal(t, float64(0),
		testutil.ToFloat64(violationRank.WithLabelValues(model.PriorityCritical.String())))
}

func TestGenerateKeepsInitialScheduleContent(t *testing.T) {
	school := newTwoClassSchool(t)
	initial := timetable.NewSchedule(school)
	mon1, _ := model.NewTimeSlot(model.Monday, 1)
	require.NoError(t, initial.Place(mon1, c11, model.NewAssignment("国", "国1-1")))

	g := newGenerator(t, fastConfig(), nil, nil, nil)
	res, err := g.Generate(context.Background(), school, initial)
	require.NoError(t, err)

	assert.Equal(t, model.Subject("国"), res.Schedule.Subject(mon1, c11))
	assert.True(t, res.Schedule.IsLocked(mon1, c11))
	assert.False(t, initial.IsLocked(mon1, c11), "caller's schedule stays untouched")
	assert.Equal(t, 1, initial.FilledCount())
}

func TestGenerateStartEmptyKeepsOnlyTestPeriods(t *testing.T) {
	school := newTwoClassSchool(t)
	initial := timetable.NewSchedule(school)
	mon1, _ := model.NewTimeSlot(model.Monday, 1)
	fri6, _ := model.NewTimeSlot(model.Friday, 6)
	require.NoError(t, initial.Place(mon1, c11, model.NewAssignment("美", "美1-1")))
	initial.MarkTestPeriod(fri6)

	cfg := fastConfig()
	cfg.StartEmpty = true
	g := newGenerator(t, cfg, nil, nil, nil)
	res, err := g.Generate(context.Background(), school, initial)
	require.NoError(t, err)

	assert.True(t, res.Schedule.IsTestPeriod(fri6))
	_, filled := res.Schedule.Get(fri6, c11)
	assert.False(t, filled, "test periods admit no regular lessons")
	assert.False(t, res.Schedule.IsLocked(mon1, c11),
		"the discarded initial content leaves no lock behind")
	assert.Equal(t, 1, initial.FilledCount())
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	school := newTwoClassSchool(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := newGenerator(t, fastConfig(), nil, nil, nil)
	_, err := g.Generate(ctx, school, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLockPassReopensExchangeLessons(t *testing.T) {
	data := timetable.SchoolData{
		Classes: []model.ClassRef{c11, c16},
		RequiredHours: []timetable.HourRequirement{
			{Class: c11, Subject: "国", Hours: 1},
			{Class: c16, Subject: "国", Hours: 1},
			{Class: c16, Subject: "自立", Hours: 1},
		},
		Assignments: []timetable.TeacherAssignment{
			{Subject: "国", Class: c11, Teacher: "鈴木"},
			{Subject: "国", Class: c16, Teacher: "鈴木"},
			{Subject: "自立", Class: c16, Teacher: "田村"},
		},
		Pairings: []timetable.ClassPairing{{Exchange: c16, Parent: c11}},
	}
	school, err := timetable.NewSchool(newCatalog(), data)
	require.NoError(t, err)

	s := timetable.NewSchedule(school)
	mon1, _ := model.NewTimeSlot(model.Monday, 1)
	tue1, _ := model.NewTimeSlot(model.Tuesday, 1)
	wed1, _ := model.NewTimeSlot(model.Wednesday, 1)
	require.NoError(t, s.Place(mon1, c11, model.NewAssignment("国", "鈴木")))
	require.NoError(t, s.Place(tue1, c16, model.NewAssignment("国", "鈴木")))
	require.NoError(t, s.Place(wed1, c16, model.NewAssignment("自立", "田村")))

	g := newGenerator(t, fastConfig(), nil, nil, nil)
	locked := g.lock(s, school)

	assert.True(t, s.IsLocked(mon1, c11), "regular-class content is pinned")
	assert.False(t, s.IsLocked(tue1, c16), "exchange lessons reopen for re-syncing")
	assert.True(t, s.IsLocked(wed1, c16), "self-reliance placements stay pinned")
	mon6, _ := model.NewTimeSlot(model.Monday, 6)
	assert.Equal(t, model.Subject("欠"), s.Subject(mon6, c11))
	assert.True(t, s.IsLocked(mon6, c16))
	assert.Equal(t, 4, locked, "two stamped cells plus two pinned placements")
}
