package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// ExchangeMirror keeps an exchange class in lockstep with its parent
// whenever it is not in a self-reliance activity: the two cells must show
// the same subject. PE is exempt, and fixed pseudo-subjects follow their
// own rules.
type ExchangeMirror struct{}

// NewExchangeMirror returns the rule.
func NewExchangeMirror() *ExchangeMirror { return &ExchangeMirror{} }

func (*ExchangeMirror) Name() string { return "exchange_mirror" }

func (*ExchangeMirror) Priority() model.Priority { return model.PriorityHigh }

func (c *ExchangeMirror) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	cat := school.Catalog()
	if a.Subject == s.Subject(slot, class) {
		return true
	}
	if cat.IsSelfReliance(a.Subject) || cat.IsPE(a.Subject) || cat.IsProtected(a.Subject) {
		return true
	}

	if class.IsExchange() {
		parent, ok := school.ParentOf(class)
		if !ok {
			return false
		}
		return s.Subject(slot, parent) == a.Subject
	}

	if exchange, ok := school.ExchangeOf(class); ok {
		mirrored := s.Subject(slot, exchange)
		if mirrored.IsZero() || cat.IsSelfReliance(mirrored) ||
			cat.IsPE(mirrored) || cat.IsProtected(mirrored) {
			return true
		}
		return mirrored == a.Subject
	}
	return true
}

func (c *ExchangeMirror) FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
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
			if !ok {
				continue
			}
			if cat.IsSelfReliance(a.Subject) || cat.IsPE(a.Subject) || cat.IsProtected(a.Subject) {
				continue
			}
			parentSubject := s.Subject(slot, parent)
			if parentSubject == a.Subject {
				continue
			}
			msg := fmt.Sprintf("%s shows %s at %s while parent %s is empty",
				class, a.Subject, slot, parent)
			if !parentSubject.IsZero() {
				msg = fmt.Sprintf("%s shows %s at %s while parent %s shows %s",
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
