package constraint

import (
	"fmt"
	"math"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// StandardHours is the soft weekly-hour target: each class should hold
// exactly the required number of lessons per subject. Deviations beyond the
// tolerance are reported; placement stops at the target unless the
// exceed-hours relaxation is active.
type StandardHours struct {
	tolerance float64
}

// NewStandardHours builds the rule with the deviation tolerance, 0.5 when
// non-positive.
func NewStandardHours(tolerance float64) *StandardHours {
	if tolerance <= 0 {
		tolerance = 0.5
	}
	return &StandardHours{tolerance: tolerance}
}

func (*StandardHours) Name() string { return "standard_hours" }

func (*StandardHours) Priority() model.Priority { return model.PriorityMedium }

func (c *StandardHours) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	return c.CheckRelaxed(s, school, slot, class, a, Relax{})
}

// CheckRelaxed allows passing the weekly target when the exceed-hours
// relaxation is active.
func (c *StandardHours) CheckRelaxed(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment, r Relax) bool {
	if school.Catalog().IsProtected(a.Subject) {
		return true
	}
	required := school.RequiredHours(class, a.Subject)
	if required == 0 {
		// Subjects outside the class's plan are the ultra-relaxed filler's
		// business, not an hour-count matter.
		return true
	}
	if r.ExceedHours {
		return true
	}
	return s.HourCount(class, a.Subject) < required
}

func (c *StandardHours) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	var out []model.Violation
	for _, class := range s.Classes() {
		for _, sub := range school.RequiredSubjects(class) {
			required := school.RequiredHours(class, sub)
			if required == 0 || school.Catalog().IsProtected(sub) {
				continue
			}
			got := s.HourCount(class, sub)
			if math.Abs(float64(got-required)) <= c.tolerance {
				continue
			}
			out = append(out, model.Violation{
				Constraint: c.Name(),
				Priority:   c.Priority(),
				Cells:      subjectCells(s, class, sub),
				Subject:    sub,
				Message:    fmt.Sprintf("class %s holds %d hours of %s, needs %d", class, got, sub, required),
			})
		}
	}
	return out
}

func subjectCells(s *timetable.Schedule, class model.ClassRef, sub model.Subject) []model.Cell {
	var cells []model.Cell
	for _, slot := range model.AllSlots() {
		if s.Subject(slot, class) == sub {
			cells = append(cells, model.Cell{Slot: slot, Class: class})
		}
	}
	return cells
}
