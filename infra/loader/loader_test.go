package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktakeda47/jikanwari/core/model"
)

func testCatalog() *model.SubjectCatalog {
	return model.NewSubjectCatalog(model.CatalogSets{
		Fixed:          []model.Subject{"欠", "YT", "行", "学"},
		SelfReliance:   []model.Subject{"自立"},
		ParentEligible: []model.Subject{"数", "英"},
		Core:           []model.Subject{"国", "数", "英"},
		PE:             []model.Subject{"保"},
	})
}

func writeSchoolFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

const schoolYAML = `classes: ["1-1", "1-2", "1-5", "1-6"]
hours:
  - {class: "1-1", subject: "数", hours: 4}
  - {class: "1-1", subject: "国", hours: 4}
  - {class: "1-6", subject: "自立", hours: 2}
teachers:
  - {subject: "数", teacher: "田中", classes: ["1-1", "1-2"]}
  - {subject: "国", teacher: "鈴木", classes: ["1-1"]}
  - {subject: "自立", teacher: "高橋", classes: ["1-6"]}
absences:
  - {teacher: "田中", day: "wed", periods: [5, 6]}
  - {teacher: "鈴木", day: "fri"}
pairings:
  - {exchange: "1-6", parent: "1-1"}
exempt_teachers: ["欠課"]
test_periods:
  - {day: "thu", period: 1}
meetings:
  - {day: "mon", period: 6, subject: "行"}
  - {classes: ["1-5"], day: "wed", period: 4, subject: "学", teacher: "校長"}
`

func TestLoadBuildsSchoolAndInitialSchedule(t *testing.T) {
	path := writeSchoolFile(t, "school.yaml", schoolYAML)
	school, initial, err := Load(path, testCatalog())
	require.NoError(t, err)

	c11 := model.ClassRef{Grade: 1, Number: 1}
	c15 := model.ClassRef{Grade: 1, Number: 5}
	c16 := model.ClassRef{Grade: 1, Number: 6}
	assert.Len(t, school.Classes(), 4)
	assert.Equal(t, 4, school.RequiredHours(c11, "数"))
	assert.Equal(t, 2, school.RequiredHours(c16, "自立"))

	teacher, ok := school.TeacherFor("数", model.ClassRef{Grade: 1, Number: 2})
	require.True(t, ok)
	assert.Equal(t, model.Teacher("田中"), teacher)

	wed5 := model.TimeSlot{Day: model.Wednesday, Period: 5}
	wed4 := model.TimeSlot{Day: model.Wednesday, Period: 4}
	assert.True(t, school.IsTeacherUnavailable("田中", wed5))
	assert.False(t, school.IsTeacherUnavailable("田中", wed4))
	for p := 1; p <= model.PeriodsPerDay; p++ {
		assert.True(t, school.IsTeacherUnavailable("鈴木",
			model.TimeSlot{Day: model.Friday, Period: p}),
			"a dayless absence blocks period %d", p)
	}

	parent, ok := school.ParentOf(c16)
	require.True(t, ok)
	assert.Equal(t, c11, parent)
	assert.True(t, school.IsExemptTeacher("欠課"))

	thu1 := model.TimeSlot{Day: model.Thursday, Period: 1}
	assert.True(t, initial.IsTestPeriod(thu1))

	mon6 := model.TimeSlot{Day: model.Monday, Period: 6}
	for _, class := range school.Classes() {
		assert.Equal(t, model.Subject("行"), initial.Subject(mon6, class))
		assert.True(t, initial.IsLocked(mon6, class))
	}
	a, ok := initial.Get(wed4, c15)
	require.True(t, ok)
	assert.Equal(t, model.Subject("学"), a.Subject)
	assert.Equal(t, model.Teacher("校長"), a.Teacher)
	_, filled := initial.Get(wed4, c11)
	assert.False(t, filled, "the scoped meeting touches only its classes")
}

func TestLoadReadsJSON(t *testing.T) {
	path := writeSchoolFile(t, "school.json",
		`{"classes": ["2-1"], "hours": [{"class": "2-1", "subject": "英", "hours": 3}]}`)
	school, initial, err := Load(path, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 3, school.RequiredHours(model.ClassRef{Grade: 2, Number: 1}, "英"))
	assert.Zero(t, initial.FilledCount())
}

func TestLoadRejectsBadData(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"bad class", `classes: ["9-1"]`, "grade 9 out of range"},
		{"bad day", "classes: [\"1-1\"]\nabsences:\n  - {teacher: \"x\", day: \"nonday\"}", "unknown day"},
		{"missing subject", "classes: [\"1-1\"]\nhours:\n  - {class: \"1-1\", hours: 2}", "no subject"},
		{"staffing without classes", "classes: [\"1-1\"]\nteachers:\n  - {subject: \"数\", teacher: \"田中\"}", "lists no classes"},
		{"hours for unknown class", "classes: [\"1-1\"]\nhours:\n  - {class: \"1-2\", subject: \"数\", hours: 2}", "unknown class"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSchoolFile(t, "school.yaml", tc.data)
			_, _, err := Load(path, testCatalog())
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeSchoolFile(t, "school.txt", "classes")
	_, _, err := Load(path, testCatalog())
	assert.ErrorContains(t, err, "unsupported school file format")
}
