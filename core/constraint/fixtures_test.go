package constraint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

var (
	c11 = model.ClassRef{Grade: 1, Number: 1}
	c12 = model.ClassRef{Grade: 1, Number: 2}
	c15 = model.ClassRef{Grade: 1, Number: 5}
	c25 = model.ClassRef{Grade: 2, Number: 5}
	c35 = model.ClassRef{Grade: 3, Number: 5}
	c16 = model.ClassRef{Grade: 1, Number: 6}
	c17 = model.ClassRef{Grade: 1, Number: 7}
)

func newCatalog() *model.SubjectCatalog {
	return model.NewSubjectCatalog(model.CatalogSets{
		Fixed:          []model.Subject{"欠", "YT", "道", "学", "総", "行"},
		SelfReliance:   []model.Subject{"自立", "作業"},
		ParentEligible: []model.Subject{"数", "英"},
		Core:           []model.Subject{"国", "数", "英", "理", "社"},
		Skill:          []model.Subject{"音", "美", "技", "家"},
		PE:             []model.Subject{"保"},
		TestMarkers:    []model.Subject{"テスト"},
	})
}

// fixtureSchool builds a small school: two regular classes with their
// exchange classes, the joint trio, and one teacher per subject column.
func fixtureSchool(t *testing.T) *timetable.School {
	t.Helper()
	classes := []model.ClassRef{c11, c12, c15, c25, c35, c16, c17}
	var hours []timetable.HourRequirement
	var staff []timetable.TeacherAssignment
	for _, c := range []model.ClassRef{c11, c12} {
		hours = append(hours,
			timetable.HourRequirement{Class: c, Subject: "数", Hours: 4},
			timetable.HourRequirement{Class: c, Subject: "英", Hours: 4},
			timetable.HourRequirement{Class: c, Subject: "国", Hours: 4},
			timetable.HourRequirement{Class: c, Subject: "理", Hours: 3},
			timetable.HourRequirement{Class: c, Subject: "保", Hours: 3},
		)
	}
	staff = append(staff,
		timetable.TeacherAssignment{Subject: "数", Class: c11, Teacher: "田中"},
		timetable.TeacherAssignment{Subject: "数", Class: c12, Teacher: "田中"},
		timetable.TeacherAssignment{Subject: "英", Class: c11, Teacher: "佐藤"},
		timetable.TeacherAssignment{Subject: "英", Class: c12, Teacher: "佐藤"},
		timetable.TeacherAssignment{Subject: "国", Class: c11, Teacher: "鈴木"},
		timetable.TeacherAssignment{Subject: "国", Class: c12, Teacher: "山田"},
		timetable.TeacherAssignment{Subject: "理", Class: c11, Teacher: "伊藤"},
		timetable.TeacherAssignment{Subject: "理", Class: c12, Teacher: "伊藤"},
		timetable.TeacherAssignment{Subject: "保", Class: c11, Teacher: "渡辺"},
		timetable.TeacherAssignment{Subject: "保", Class: c12, Teacher: "中村"},
		timetable.TeacherAssignment{Subject: "国", Class: c15, Teacher: "小林"},
		timetable.TeacherAssignment{Subject: "国", Class: c25, Teacher: "小林"},
		timetable.TeacherAssignment{Subject: "国", Class: c35, Teacher: "小林"},
		timetable.TeacherAssignment{Subject: "美", Class: c15, Teacher: "加藤"},
		timetable.TeacherAssignment{Subject: "美", Class: c25, Teacher: "加藤"},
		timetable.TeacherAssignment{Subject: "美", Class: c35, Teacher: "加藤"},
		timetable.TeacherAssignment{Subject: "自立", Class: c16, Teacher: "高橋"},
		timetable.TeacherAssignment{Subject: "自立", Class: c17, Teacher: "高橋"},
		timetable.TeacherAssignment{Subject: "保", Class: c16, Teacher: "渡辺"},
	)
	hours = append(hours,
		timetable.HourRequirement{Class: c15, Subject: "国", Hours: 4},
		timetable.HourRequirement{Class: c25, Subject: "国", Hours: 4},
		timetable.HourRequirement{Class: c35, Subject: "国", Hours: 4},
		timetable.HourRequirement{Class: c15, Subject: "美", Hours: 1},
		timetable.HourRequirement{Class: c25, Subject: "美", Hours: 1},
		timetable.HourRequirement{Class: c35, Subject: "美", Hours: 1},
		timetable.HourRequirement{Class: c16, Subject: "自立", Hours: 2},
		timetable.HourRequirement{Class: c17, Subject: "自立", Hours: 2},
	)
	school, err := timetable.NewSchool(newCatalog(), timetable.SchoolData{
		Classes:     classes,
		RequiredHours: hours,
		Assignments: staff,
		Pairings: []timetable.ClassPairing{
			{Exchange: c16, Parent: c11},
			{Exchange: c17, Parent: c12},
		},
		ExemptTeachers: []model.Teacher{"欠課", "YT担当", "道担当"},
	})
	require.NoError(t, err)
	return school
}

func mustPlace(t *testing.T, s *timetable.Schedule, slot model.TimeSlot,
	class model.ClassRef, subject model.Subject, teacher model.Teacher) {
	t.Helper()
	require.NoError(t, s.Place(slot, class, model.NewAssignment(subject, teacher)))
}

func slot(d model.Day, p int) model.TimeSlot {
	return model.TimeSlot{Day: d, Period: p}
}
