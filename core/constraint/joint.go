package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// JointSync keeps the special-needs joint group in lockstep: a slot that
// holds a shared lesson holds it for every member. Fixed pseudo-subjects,
// test markers, self-reliance and PE stay outside the rule; the group
// schedules those per class.
type JointSync struct{}

// NewJointSync returns the rule.
func NewJointSync() *JointSync { return &JointSync{} }

func (*JointSync) Name() string { return "joint_sync" }

func (*JointSync) Priority() model.Priority { return model.PriorityHigh }

// perClassContent reports content a joint member runs on its own schedule
// rather than with the group.
func perClassContent(cat *model.SubjectCatalog, sub model.Subject) bool {
	return cat.IsProtected(sub) || cat.IsSelfReliance(sub) || cat.IsPE(sub)
}

// Check admits per-class content freely. A shared-subject candidate must
// match every member already showing shared content; empty members are
// fine, the synchronizer fills the group one cell at a time within one
// commit.
func (c *JointSync) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	if !class.IsJoint() {
		return true
	}
	cat := school.Catalog()
	if perClassContent(cat, a.Subject) {
		return true
	}
	for _, member := range school.JointGroup() {
		if member == class {
			continue
		}
		got, ok := s.Get(slot, member)
		if !ok || perClassContent(cat, got.Subject) {
			continue
		}
		if got.Subject != a.Subject {
			return false
		}
	}
	return true
}

func (c *JointSync) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	group := school.JointGroup()
	if len(group) < 2 {
		return nil
	}
	cat := school.Catalog()
	var out []model.Violation
	for _, slot := range model.AllSlots() {
		var shared []model.Cell
		var lessons []model.Assignment
		empty := 0
		for _, member := range group {
			a, ok := s.Get(slot, member)
			if !ok {
				empty++
				continue
			}
			if perClassContent(cat, a.Subject) {
				continue
			}
			shared = append(shared, model.Cell{Slot: slot, Class: member})
			lessons = append(lessons, a)
		}
		if len(shared) == 0 {
			continue
		}
		uniform := true
		for _, a := range lessons[1:] {
			if a.Subject != lessons[0].Subject {
				uniform = false
				break
			}
		}
		if uniform && empty == 0 {
			continue
		}
		msg := fmt.Sprintf("joint group out of lockstep at %s: %d of %d members empty during %s",
			slot, empty, len(group), lessons[0].Subject)
		if !uniform {
			msg = fmt.Sprintf("joint group shows differing lessons at %s", slot)
		}
		out = append(out, model.Violation{
			Constraint: c.Name(),
			Priority:   c.Priority(),
			Cells:      shared,
			Subject:    lessons[0].Subject,
			Message:    msg,
		})
	}
	return out
}
