package placement

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/logger"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// ExchangeSync keeps exchange classes moving with their parent class.
// Outside self-reliance hours the students sit in the parent classroom, so
// the exchange column mirrors the parent column subject for subject.
type ExchangeSync struct {
	validator *constraint.Validator
	log       logger.Logger
}

// NewExchangeSync builds the sync service.
func NewExchangeSync(v *constraint.Validator, log logger.Logger) (*ExchangeSync, error) {
	if v == nil {
		return nil, fmt.Errorf("placement: nil validator provided to NewExchangeSync")
	}
	if log == nil {
		return nil, fmt.Errorf("placement: nil logger provided to NewExchangeSync")
	}
	return &ExchangeSync{validator: v, log: log}, nil
}

// SyncEarly copies parent lessons into still-empty exchange cells before the
// greedy pass runs, so the greedy pass sees those hours as spoken for.
// Returns the number of cells mirrored.
func (e *ExchangeSync) SyncEarly(s *timetable.Schedule, school *timetable.School) int {
	mirrored := 0
	for _, pair := range e.pairs(school) {
		mirrored += e.mirrorEmpty(s, school, pair)
	}
	return mirrored
}

// SyncFinal runs after placement and optimization: it mirrors any remaining
// empty exchange cells and pulls drifted cells back onto the parent subject.
// Cells it cannot repair stay put for the violation report.
func (e *ExchangeSync) SyncFinal(s *timetable.Schedule, school *timetable.School) (mirrored, repaired int) {
	for _, pair := range e.pairs(school) {
		mirrored += e.mirrorEmpty(s, school, pair)
		repaired += e.repairDrift(s, school, pair)
	}
	return mirrored, repaired
}

type exchangePair struct {
	exchange model.ClassRef
	parent   model.ClassRef
}

func (e *ExchangeSync) pairs(school *timetable.School) []exchangePair {
	var pairs []exchangePair
	for _, class := range school.Classes() {
		if !class.IsExchange() {
			continue
		}
		if parent, ok := school.ParentOf(class); ok {
			pairs = append(pairs, exchangePair{exchange: class, parent: parent})
		}
	}
	return pairs
}

func (e *ExchangeSync) mirrorEmpty(s *timetable.Schedule, school *timetable.School,
	pair exchangePair) int {
	mirrored := 0
	for _, slot := range model.AllSlots() {
		if !openCell(s, slot, pair.exchange) {
			continue
		}
		parent, filled := s.Get(slot, pair.parent)
		if !filled || !e.mirrorable(school, parent.Subject) {
			continue
		}
		a := e.mirrorAssignment(school, pair, parent)
		if !e.validator.Check(s, school, slot, pair.exchange, a) {
			continue
		}
		if err := s.Place(slot, pair.exchange, a); err == nil {
			mirrored++
		}
	}
	return mirrored
}

func (e *ExchangeSync) repairDrift(s *timetable.Schedule, school *timetable.School,
	pair exchangePair) int {
	cat := school.Catalog()
	repaired := 0
	for _, slot := range model.AllSlots() {
		if s.IsLocked(slot, pair.exchange) || s.IsTestPeriod(slot) {
			continue
		}
		current, filled := s.Get(slot, pair.exchange)
		if !filled || cat.IsSelfReliance(current.Subject) ||
			cat.IsProtected(current.Subject) || cat.IsPE(current.Subject) {
			continue
		}
		parent, parentFilled := s.Get(slot, pair.parent)
		if !parentFilled || parent.Subject == current.Subject || !e.mirrorable(school, parent.Subject) {
			continue
		}
		if err := s.Remove(slot, pair.exchange); err != nil {
			continue
		}
		a := e.mirrorAssignment(school, pair, parent)
		if e.validator.Check(s, school, slot, pair.exchange, a) &&
			s.Place(slot, pair.exchange, a) == nil {
			repaired++
			continue
		}
		// Mirror refused, keep what was there.
		if err := s.Place(slot, pair.exchange, current); err != nil {
			e.log.Errorf("could not restore %s at %s after failed mirror: %v",
				pair.exchange, slot, err)
		}
	}
	return repaired
}

// mirrorable excludes subjects the mirror never copies: pinned
// pseudo-subjects arrive through the lock pass, PE pairing is a deliberate
// placement decision, and self-reliance never appears on the parent side.
func (e *ExchangeSync) mirrorable(school *timetable.School, sub model.Subject) bool {
	cat := school.Catalog()
	return !sub.IsZero() && !cat.IsProtected(sub) && !cat.IsPE(sub) && !cat.IsSelfReliance(sub)
}

// mirrorAssignment picks the teacher for a mirrored lesson: the exchange
// class's own staffing when the school assigns one, otherwise the parent's
// teacher, since the students join the parent classroom.
func (e *ExchangeSync) mirrorAssignment(school *timetable.School, pair exchangePair,
	parent model.Assignment) model.Assignment {
	if teacher, ok := school.TeacherFor(parent.Subject, pair.exchange); ok {
		return model.NewAssignment(parent.Subject, teacher)
	}
	return model.NewAssignment(parent.Subject, parent.Teacher)
}
