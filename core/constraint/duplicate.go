package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// DailyDuplicate limits a subject to one lesson per class per day. Fixed
// pseudo-subjects are exempt. Fallback placement passes may relax the limit
// to two for core academics.
type DailyDuplicate struct{}

// NewDailyDuplicate returns the rule.
func NewDailyDuplicate() *DailyDuplicate { return &DailyDuplicate{} }

func (*DailyDuplicate) Name() string { return "daily_duplicate" }

func (*DailyDuplicate) Priority() model.Priority { return model.PriorityMedium }

func (c *DailyDuplicate) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	return c.CheckRelaxed(s, school, slot, class, a, Relax{})
}

// CheckRelaxed honors the daily-double relaxation for core subjects.
func (c *DailyDuplicate) CheckRelaxed(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment, r Relax) bool {
	cat := school.Catalog()
	if cat.IsProtected(a.Subject) {
		return true
	}
	limit := 1
	if r.DailyDouble && cat.IsCore(a.Subject) {
		limit = 2
	}
	return s.DailyCount(class, slot.Day, a.Subject) < limit
}

func (c *DailyDuplicate) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	cat := school.Catalog()
	var out []model.Violation
	for _, class := range s.Classes() {
		for _, day := range model.Days {
			counted := make(map[model.Subject]bool)
			for p := 1; p <= model.PeriodsPerDay; p++ {
				slot := model.TimeSlot{Day: day, Period: p}
				sub := s.Subject(slot, class)
				if sub.IsZero() || cat.IsProtected(sub) || counted[sub] {
					continue
				}
				counted[sub] = true
				n := s.DailyCount(class, day, sub)
				if n <= 1 {
					continue
				}
				var cells []model.Cell
				for q := 1; q <= model.PeriodsPerDay; q++ {
					qs := model.TimeSlot{Day: day, Period: q}
					if s.Subject(qs, class) == sub {
						cells = append(cells, model.Cell{Slot: qs, Class: class})
					}
				}
				out = append(out, model.Violation{
					Constraint: c.Name(),
					Priority:   c.Priority(),
					Cells:      cells,
					Subject:    sub,
					Message:    fmt.Sprintf("class %s has %s %d times on %s", class, sub, n, day),
				})
			}
		}
	}
	return out
}
