package placement

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

var (
	c11 = model.ClassRef{Grade: 1, Number: 1}
	c12 = model.ClassRef{Grade: 1, Number: 2}
	c13 = model.ClassRef{Grade: 1, Number: 3}
	c15 = model.ClassRef{Grade: 1, Number: 5}
	c25 = model.ClassRef{Grade: 2, Number: 5}
	c35 = model.ClassRef{Grade: 3, Number: 5}
	c16 = model.ClassRef{Grade: 1, Number: 6}
	c17 = model.ClassRef{Grade: 1, Number: 7}
)

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

func newSchool(t *testing.T, data timetable.SchoolData) *timetable.School {
	t.Helper()
	school, err := timetable.NewSchool(newCatalog(), data)
	require.NoError(t, err)
	return school
}

func slot(t *testing.T, d model.Day, p int) model.TimeSlot {
	t.Helper()
	ts, err := model.NewTimeSlot(d, p)
	require.NoError(t, err)
	return ts
}

func mustPlace(t *testing.T, s *timetable.Schedule, ts model.TimeSlot,
	c model.ClassRef, sub model.Subject, teacher model.Teacher) {
	t.Helper()
	require.NoError(t, s.Place(ts, c, model.NewAssignment(sub, teacher)))
}

// blockExcept marks the teacher unavailable at every slot not listed.
func blockExcept(s *timetable.School, teacher model.Teacher, allowed ...model.TimeSlot) {
	ok := make(map[model.TimeSlot]struct{}, len(allowed))
	for _, ts := range allowed {
		ok[ts] = struct{}{}
	}
	for _, ts := range model.AllSlots() {
		if _, keep := ok[ts]; !keep {
			s.AddUnavailability(teacher, ts)
		}
	}
}

// lockExcept locks every cell of the class except the listed slots.
func lockExcept(s *timetable.Schedule, c model.ClassRef, allowed ...model.TimeSlot) {
	ok := make(map[model.TimeSlot]struct{}, len(allowed))
	for _, ts := range allowed {
		ok[ts] = struct{}{}
	}
	for _, ts := range model.AllSlots() {
		if _, keep := ok[ts]; !keep {
			s.Lock(ts, c)
		}
	}
}
