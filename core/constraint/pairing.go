package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// SelfReliancePairing enforces the self-reliance rule in both directions:
// an exchange class may hold a self-reliance activity only while its parent
// class is in a pairing-eligible subject (Math or English), and the parent
// cell may not move away from those subjects while the activity is held.
type SelfReliancePairing struct{}

// NewSelfReliancePairing returns the rule.
func NewSelfReliancePairing() *SelfReliancePairing { return &SelfReliancePairing{} }

func (*SelfReliancePairing) Name() string { return "self_reliance_pairing" }

func (*SelfReliancePairing) Priority() model.Priority { return model.PriorityHigh }

func (c *SelfReliancePairing) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	cat := school.Catalog()

	// Re-stating the subject a cell already shows is a no-op, never a new
	// violation.
	if a.Subject == s.Subject(slot, class) {
		return true
	}

	if class.IsExchange() && cat.IsSelfReliance(a.Subject) {
		parent, ok := school.ParentOf(class)
		if !ok {
			return false
		}
		return cat.IsParentEligible(s.Subject(slot, parent))
	}

	if exchange, ok := school.ExchangeOf(class); ok {
		if cat.IsSelfReliance(s.Subject(slot, exchange)) {
			return cat.IsParentEligible(a.Subject)
		}
	}
	return true
}

func (c *SelfReliancePairing) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	cat := school.Catalog()
	var out []model.Violation
	for _, class := range s.Classes() {
		if !class.IsExchange() {
			continue
		}
		parent, ok := school.ParentOf(class)
		if !ok {
			continue
		}
		for _, slot := range model.AllSlots() {
			a, ok := s.Get(slot, class)
			if !ok || !cat.IsSelfReliance(a.Subject) {
				continue
			}
			parentSubject := s.Subject(slot, parent)
			if cat.IsParentEligible(parentSubject) {
				continue
			}
			msg := fmt.Sprintf("%s holds %s at %s but parent %s is empty",
				class, a.Subject, slot, parent)
			if !parentSubject.IsZero() {
				msg = fmt.Sprintf("%s holds %s at %s but parent %s shows %s",
					class, a.Subject, slot, parent, parentSubject)
			}
			out = append(out, model.Violation{
				Constraint: c.Name(),
				Priority:   c.Priority(),
				Cells: []model.Cell{
					{Slot: slot, Class: class},
					{Slot: slot, Class: parent},
				},
				Subject: a.Subject,
				Message: msg,
			})
		}
	}
	return out
}
