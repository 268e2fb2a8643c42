package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// GymUsage allows at most one PE group in the gym per slot. A group is a
// single class, the whole joint group, or a parent with its exchange class
// doing PE together.
type GymUsage struct{}

// NewGymUsage returns the rule.
func NewGymUsage() *GymUsage { return &GymUsage{} }

func (*GymUsage) Name() string { return "gym_usage" }

func (*GymUsage) Priority() model.Priority { return model.PriorityHigh }

// gymGroupKey buckets classes sharing one gym session: the joint group
// collapses to a single bucket and an exchange class shares its parent's.
func gymGroupKey(school *timetable.School, class model.ClassRef) model.ClassRef {
	if class.IsJoint() {
		return model.ClassRef{Grade: 0, Number: 5}
	}
	if parent, ok := school.ParentOf(class); ok {
		return parent
	}
	return class
}

func peClassesAt(s *timetable.Schedule, school *timetable.School, slot model.TimeSlot) []model.ClassRef {
	cat := school.Catalog()
	var out []model.ClassRef
	for _, class := range s.Classes() {
		if cat.IsPE(s.Subject(slot, class)) {
			out = append(out, class)
		}
	}
	return out
}

func (c *GymUsage) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	if !school.Catalog().IsPE(a.Subject) {
		return true
	}
	candidate := gymGroupKey(school, class)
	for _, other := range peClassesAt(s, school, slot) {
		if other == class {
			continue
		}
		if gymGroupKey(school, other) != candidate {
			return false
		}
	}
	return true
}

func (c *GymUsage) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	var out []model.Violation
	for _, slot := range model.AllSlots() {
		classes := peClassesAt(s, school, slot)
		if len(classes) < 2 {
			continue
		}
		groups := make(map[model.ClassRef]struct{})
		cells := make([]model.Cell, len(classes))
		for i, cl := range classes {
			groups[gymGroupKey(school, cl)] = struct{}{}
			cells[i] = model.Cell{Slot: slot, Class: cl}
		}
		if len(groups) <= 1 {
			continue
		}
		out = append(out, model.Violation{
			Constraint: c.Name(),
			Priority:   c.Priority(),
			Cells:      cells,
			Message:    fmt.Sprintf("%d PE groups share the gym at %s", len(groups), slot),
		})
	}
	return out
}
