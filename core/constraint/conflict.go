package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// TeacherConflict forbids one teacher holding two different assignments in
// the same slot. Exempt: placeholder teachers, exam supervision slots, the
// joint group teaching one shared lesson, a parent and its exchange class
// taught together, and self-reliance run jointly across exchange classes.
type TeacherConflict struct{}

// NewTeacherConflict returns the rule.
func NewTeacherConflict() *TeacherConflict { return &TeacherConflict{} }

func (*TeacherConflict) Name() string { return "teacher_conflict" }

func (*TeacherConflict) Priority() model.Priority { return model.PriorityCritical }

// Check vetoes the candidate when its teacher is already booked at the slot
// for a class outside the exemptions.
func (c *TeacherConflict) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	if a.Teacher.IsZero() || school.IsExemptTeacher(a.Teacher) {
		return true
	}
	if s.IsTestPeriod(slot) {
		return true
	}
	others := s.TeacherClassesAt(slot, a.Teacher)
	if len(others) == 0 {
		return true
	}
	for _, other := range others {
		if other == class {
			return true
		}
		if !sharedLesson(s, school, slot, class, a.Subject, other) {
			return false
		}
	}
	return true
}

// sharedLesson reports whether two classes may legitimately share one
// teacher at the slot: the joint group on one subject, a parent/exchange
// pair on one subject, or exchange classes in a joint self-reliance block.
func sharedLesson(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, subject model.Subject, other model.ClassRef) bool {
	otherSubject := s.Subject(slot, other)
	if class.IsJoint() && other.IsJoint() {
		return otherSubject == subject
	}
	if pairedClasses(school, class, other) {
		return otherSubject == subject
	}
	cat := school.Catalog()
	if class.IsExchange() && other.IsExchange() &&
		cat.IsSelfReliance(subject) && cat.IsSelfReliance(otherSubject) {
		return true
	}
	return false
}

func pairedClasses(school *timetable.School, a, b model.ClassRef) bool {
	if p, ok := school.ParentOf(a); ok && p == b {
		return true
	}
	if p, ok := school.ParentOf(b); ok && p == a {
		return true
	}
	return false
}

// FindViolations scans every slot for teachers booked into conflicting
// classes.
func (c *TeacherConflict) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	var out []model.Violation
	for _, slot := range model.AllSlots() {
		if s.IsTestPeriod(slot) {
			continue
		}
		byTeacher := make(map[model.Teacher][]model.ClassRef)
		for _, class := range s.Classes() {
			a, ok := s.Get(slot, class)
			if !ok || a.Teacher.IsZero() || school.IsExemptTeacher(a.Teacher) {
				continue
			}
			byTeacher[a.Teacher] = append(byTeacher[a.Teacher], class)
		}
		for teacher, classes := range byTeacher {
			if len(classes) < 2 {
				continue
			}
			if groupedLesson(s, school, slot, classes) {
				continue
			}
			cells := make([]model.Cell, len(classes))
			for i, cl := range classes {
				cells[i] = model.Cell{Slot: slot, Class: cl}
			}
			out = append(out, model.Violation{
				Constraint: c.Name(),
				Priority:   c.Priority(),
				Cells:      cells,
				Teacher:    teacher,
				Message: fmt.Sprintf("teacher %s booked for %d classes at %s",
					teacher, len(classes), slot),
			})
		}
	}
	return out
}

// groupedLesson reports whether the whole class group legitimately shares
// one teacher at the slot.
func groupedLesson(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, classes []model.ClassRef) bool {
	first := classes[0]
	for _, other := range classes[1:] {
		if !sharedLesson(s, school, slot, first, s.Subject(slot, first), other) {
			return false
		}
	}
	return true
}
