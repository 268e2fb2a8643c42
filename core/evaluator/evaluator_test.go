package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

var (
	c11 = model.ClassRef{Grade: 1, Number: 1}
	c16 = model.ClassRef{Grade: 1, Number: 6}
)

func newCatalog(t *testing.T) *model.SubjectCatalog {
	t.Helper()
	return model.NewSubjectCatalog(model.CatalogSets{
		Fixed:          []model.Subject{"欠", "YT", "道", "学", "総", "行"},
		SelfReliance:   []model.Subject{"自立"},
		ParentEligible: []model.Subject{"数", "英"},
		Core:           []model.Subject{"国", "数", "英", "理", "社"},
		Skill:          []model.Subject{"音", "美", "技", "家"},
		PE:             []model.Subject{"保"},
		TestMarkers:    []model.Subject{"テスト"},
	})
}

func newSchool(t *testing.T) *timetable.School {
	t.Helper()
	cat := newCatalog(t)
	school, err := timetable.NewSchool(cat, timetable.SchoolData{
		Classes: []model.ClassRef{c11, c16},
		RequiredHours: []timetable.HourRequirement{
			{Class: c11, Subject: "数", Hours: 4},
			{Class: c11, Subject: "国", Hours: 4},
			{Class: c16, Subject: "自立", Hours: 2},
		},
		Assignments: []timetable.TeacherAssignment{
			{Class: c11, Subject: "数", Teacher: "田中"},
			{Class: c11, Subject: "国", Teacher: "鈴木"},
			{Class: c16, Subject: "自立", Teacher: "高橋"},
		},
		Pairings: []timetable.ClassPairing{{Exchange: c16, Parent: c11}},
	})
	require.NoError(t, err)
	return school
}

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	v, err := constraint.NewDefaultValidator(nil, 0.5)
	require.NoError(t, err)
	ev, err := New(v, DefaultWeights())
	require.NoError(t, err)
	return ev
}

func slot(t *testing.T, d model.Day, p int) model.TimeSlot {
	t.Helper()
	ts, err := model.NewTimeSlot(d, p)
	require.NoError(t, err)
	return ts
}

func TestNewRejectsNilValidator(t *testing.T) {
	if _, err := New(nil, DefaultWeights()); err == nil {
		t.Fatal("expected error for nil validator")
	}
}

func TestScoreEmptyScheduleCountsDeficits(t *testing.T) {
	school := newSchool(t)
	ev := newEvaluator(t)
	s := timetable.NewSchedule(school)

	b := ev.Score(s, school)

	// Three subjects short of their weekly hours, nothing else wrong.
	assert.Equal(t, 3, b.ByPriority[model.PriorityMedium])
	assert.Equal(t, 0, b.JiritsuViolations)
	assert.InDelta(t, 3*DefaultWeights().Medium, b.Total, 1e-9)
}

func TestScoreIsIdempotent(t *testing.T) {
	school := newSchool(t)
	ev := newEvaluator(t)
	s := timetable.NewSchedule(school)
	require.NoError(t, s.Place(slot(t, model.Monday, 1), c11, model.NewAssignment("数", "田中")))

	first := ev.Score(s, school)
	second := ev.Score(s, school)
	assert.Equal(t, first, second)
}

func TestJiritsuBreakOutweighsPriorityRank(t *testing.T) {
	school := newSchool(t)
	ev := newEvaluator(t)

	stranded := timetable.NewSchedule(school)
	// Self-reliance opposite a parent subject that is not eligible.
	require.NoError(t, stranded.Place(slot(t, model.Monday, 1), c16, model.NewAssignment("自立", "高橋")))
	require.NoError(t, stranded.Place(slot(t, model.Monday, 1), c11, model.NewAssignment("国", "鈴木")))

	mirrored := timetable.NewSchedule(school)
	require.NoError(t, mirrored.Place(slot(t, model.Monday, 1), c16, model.NewAssignment("自立", "高橋")))
	require.NoError(t, mirrored.Place(slot(t, model.Monday, 1), c11, model.NewAssignment("数", "田中")))

	bad := ev.Score(stranded, school)
	good := ev.Score(mirrored, school)

	assert.Equal(t, 1, bad.JiritsuViolations)
	assert.Equal(t, 0, good.JiritsuViolations)
	assert.Greater(t, bad.Total, good.Total)
	assert.GreaterOrEqual(t, bad.Total-good.Total, DefaultWeights().Jiritsu-DefaultWeights().High)
}

func TestWorkloadVarianceLevelsLoads(t *testing.T) {
	school := newSchool(t)
	ev := newEvaluator(t)

	lopsided := timetable.NewSchedule(school)
	require.NoError(t, lopsided.Place(slot(t, model.Monday, 1), c11, model.NewAssignment("数", "田中")))
	require.NoError(t, lopsided.Place(slot(t, model.Tuesday, 1), c11, model.NewAssignment("数", "田中")))

	level := timetable.NewSchedule(school)
	require.NoError(t, level.Place(slot(t, model.Monday, 1), c11, model.NewAssignment("数", "田中")))
	require.NoError(t, level.Place(slot(t, model.Tuesday, 1), c11, model.NewAssignment("国", "鈴木")))

	lop := ev.Score(lopsided, school)
	lev := ev.Score(level, school)
	assert.Greater(t, lop.WorkloadVariance, lev.WorkloadVariance)
}

func TestTeacherLoadsSkipExemptAndEmpty(t *testing.T) {
	cat := newCatalog(t)
	school, err := timetable.NewSchool(cat, timetable.SchoolData{
		Classes: []model.ClassRef{c11},
		RequiredHours: []timetable.HourRequirement{
			{Class: c11, Subject: "数", Hours: 1},
		},
		Assignments: []timetable.TeacherAssignment{
			{Class: c11, Subject: "数", Teacher: "田中"},
		},
		ExemptTeachers: []model.Teacher{"欠課"},
	})
	require.NoError(t, err)

	s := timetable.NewSchedule(school)
	require.NoError(t, s.Place(slot(t, model.Monday, 1), c11, model.NewAssignment("数", "田中")))
	require.NoError(t, s.Place(slot(t, model.Monday, 6), c11, model.NewAssignment("欠", "欠課")))

	loads := TeacherLoads(s, school)
	require.Len(t, loads, len(school.Teachers()))
	var total float64
	for _, l := range loads {
		total += l
	}
	assert.InDelta(t, 1, total, 1e-9)
}
