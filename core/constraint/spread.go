package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// JiritsuSpread prefers self-reliance hours of exchange classes sharing one
// teacher not to overlap. Overlap is legal (the teacher supervises both as
// one block) but spreading the hours gives each class closer attention, so
// overlaps are reported at the lowest priority for the optimizer to try to
// swap away.
type JiritsuSpread struct{}

// NewJiritsuSpread returns the rule.
func NewJiritsuSpread() *JiritsuSpread { return &JiritsuSpread{} }

func (*JiritsuSpread) Name() string { return "jiritsu_spread" }

func (*JiritsuSpread) Priority() model.Priority { return model.PriorityLow }

// Check never vetoes: the preference must not block placement when no
// non-overlapping slot exists.
func (c *JiritsuSpread) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	return true
}

func (c *JiritsuSpread) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	cat := school.Catalog()
	var out []model.Violation
	for _, slot := range model.AllSlots() {
		byTeacher := make(map[model.Teacher][]model.ClassRef)
		for _, class := range s.Classes() {
			if !class.IsExchange() {
				continue
			}
			a, ok := s.Get(slot, class)
			if !ok || !cat.IsSelfReliance(a.Subject) || a.Teacher.IsZero() {
				continue
			}
			byTeacher[a.Teacher] = append(byTeacher[a.Teacher], class)
		}
		for teacher, classes := range byTeacher {
			if len(classes) < 2 {
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
				Message: fmt.Sprintf("teacher %s runs self-reliance for %d classes at once at %s",
					teacher, len(classes), slot),
			})
		}
	}
	return out
}
