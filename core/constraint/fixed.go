package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// FixedPeriodRule pins one (day, period) cell to a pseudo-subject for the
// listed grades. An empty grade list applies the rule to every grade.
type FixedPeriodRule struct {
	Slot    model.TimeSlot
	Subject model.Subject
	Grades  []int
}

// AppliesTo reports whether the rule covers the grade.
func (r FixedPeriodRule) AppliesTo(grade int) bool {
	if len(r.Grades) == 0 {
		return true
	}
	for _, g := range r.Grades {
		if g == grade {
			return true
		}
	}
	return false
}

// FixedPeriod enforces the school's pinned-cell table, e.g. Monday period 6
// held as the absence pseudo-subject for grades 1 and 2 while grade 3 stays
// free for regular lessons.
type FixedPeriod struct {
	rules []FixedPeriodRule
}

// NewFixedPeriod builds the rule from the pinned-cell table.
func NewFixedPeriod(rules []FixedPeriodRule) *FixedPeriod {
	return &FixedPeriod{rules: rules}
}

func (*FixedPeriod) Name() string { return "fixed_period" }

func (*FixedPeriod) Priority() model.Priority { return model.PriorityCritical }

// Rules returns the pinned-cell table, for the engine's lock pass.
func (c *FixedPeriod) Rules() []FixedPeriodRule {
	out := make([]FixedPeriodRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// RuleFor returns the pinned subject for a cell, if any.
func (c *FixedPeriod) RuleFor(slot model.TimeSlot, class model.ClassRef) (model.Subject, bool) {
	for _, r := range c.rules {
		if r.Slot == slot && r.AppliesTo(class.Grade) {
			return r.Subject, true
		}
	}
	return "", false
}

// Check vetoes any candidate other than the pinned subject in a ruled cell.
func (c *FixedPeriod) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	want, ruled := c.RuleFor(slot, class)
	if !ruled {
		return true
	}
	return a.Subject == want
}

// FindViolations reports every ruled cell not holding its pinned subject.
// Empty ruled cells count too: the lock pass should have filled them.
func (c *FixedPeriod) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	var out []model.Violation
	for _, class := range s.Classes() {
		for _, r := range c.rules {
			if !r.AppliesTo(class.Grade) {
				continue
			}
			got := s.Subject(r.Slot, class)
			if got == r.Subject {
				continue
			}
			msg := fmt.Sprintf("%s must hold %s for class %s, found empty", r.Slot, r.Subject, class)
			if !got.IsZero() {
				msg = fmt.Sprintf("%s must hold %s for class %s, found %s", r.Slot, r.Subject, class, got)
			}
			out = append(out, model.Violation{
				Constraint: c.Name(),
				Priority:   c.Priority(),
				Cells:      []model.Cell{{Slot: r.Slot, Class: class}},
				Subject:    r.Subject,
				Message:    msg,
			})
		}
	}
	return out
}
