package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// TeacherAvailability forbids assigning a teacher into a slot covered by an
// absence or meeting lock.
type TeacherAvailability struct{}

// NewTeacherAvailability returns the rule.
func NewTeacherAvailability() *TeacherAvailability { return &TeacherAvailability{} }

func (*TeacherAvailability) Name() string { return "teacher_availability" }

func (*TeacherAvailability) Priority() model.Priority { return model.PriorityHigh }

func (c *TeacherAvailability) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	if a.Teacher.IsZero() || school.IsExemptTeacher(a.Teacher) {
		return true
	}
	return !school.IsTeacherUnavailable(a.Teacher, slot)
}

func (c *TeacherAvailability) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	var out []model.Violation
	for _, class := range s.Classes() {
		for _, slot := range model.AllSlots() {
			a, ok := s.Get(slot, class)
			if !ok || a.Teacher.IsZero() || school.IsExemptTeacher(a.Teacher) {
				continue
			}
			if !school.IsTeacherUnavailable(a.Teacher, slot) {
				continue
			}
			out = append(out, model.Violation{
				Constraint: c.Name(),
				Priority:   c.Priority(),
				Cells:      []model.Cell{{Slot: slot, Class: class}},
				Subject:    a.Subject,
				Teacher:    a.Teacher,
				Message:    fmt.Sprintf("teacher %s is unavailable at %s but assigned to %s", a.Teacher, slot, class),
			})
		}
	}
	return out
}
