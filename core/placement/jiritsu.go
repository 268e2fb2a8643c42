package placement

import (
	"context"
	"fmt"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/logger"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

const defaultNodeLimit = 10000

// JiritsuRequirement is one exchange class's outstanding self-reliance hours.
type JiritsuRequirement struct {
	Exchange model.ClassRef
	Parent   model.ClassRef
	Subject  model.Subject
	Teacher  model.Teacher
	Hours    int
	Placed   int
}

// JiritsuPlacer positions self-reliance activities for exchange classes by
// backtracking search. Every placement drags the paired parent cell along:
// the parent must show Math or English while the activity runs, so an empty
// parent cell gets one of those placed in the same step and removed again
// when the search unwinds.
type JiritsuPlacer struct {
	validator *constraint.Validator
	log       logger.Logger
	nodeLimit int
}

// NewJiritsuPlacer builds the placer with the default search budget.
func NewJiritsuPlacer(v *constraint.Validator, log logger.Logger) (*JiritsuPlacer, error) {
	if v == nil {
		return nil, fmt.Errorf("placement: nil validator provided to NewJiritsuPlacer")
	}
	if log == nil {
		return nil, fmt.Errorf("placement: nil logger provided to NewJiritsuPlacer")
	}
	return &JiritsuPlacer{validator: v, log: log, nodeLimit: defaultNodeLimit}, nil
}

// Analyze derives the outstanding self-reliance requirements from the
// school's hour table and the schedule's current counts.
func (p *JiritsuPlacer) Analyze(s *timetable.Schedule, school *timetable.School) []JiritsuRequirement {
	cat := school.Catalog()
	var reqs []JiritsuRequirement
	for _, class := range school.Classes() {
		if !class.IsExchange() {
			continue
		}
		parent, ok := school.ParentOf(class)
		if !ok {
			continue
		}
		for _, sub := range school.RequiredSubjects(class) {
			if !cat.IsSelfReliance(sub) {
				continue
			}
			teacher, _ := school.TeacherFor(sub, class)
			reqs = append(reqs, JiritsuRequirement{
				Exchange: class,
				Parent:   parent,
				Subject:  sub,
				Teacher:  teacher,
				Hours:    school.RequiredHours(class, sub),
				Placed:   s.HourCount(class, sub),
			})
		}
	}
	return reqs
}

type jiritsuUnit struct {
	exchange model.ClassRef
	parent   model.ClassRef
	subject  model.Subject
	teacher  model.Teacher
}

// Place runs the search. Hours that find no legal slot come back as
// infeasibilities; the error return is reserved for cancellation.
func (p *JiritsuPlacer) Place(ctx context.Context, s *timetable.Schedule,
	school *timetable.School) ([]Infeasibility, error) {
	var units []jiritsuUnit
	for _, r := range p.Analyze(s, school) {
		for i := r.Placed; i < r.Hours; i++ {
			units = append(units, jiritsuUnit{
				exchange: r.Exchange,
				parent:   r.Parent,
				subject:  r.Subject,
				teacher:  r.Teacher,
			})
		}
	}
	if len(units) == 0 {
		return nil, nil
	}

	nodes := 0
	if p.search(ctx, s, school, units, 0, &nodes) {
		p.log.Debugf("self-reliance search placed %d hours in %d nodes", len(units), nodes)
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The exact search gave up, either exhausted or over budget. Take every
	// placement that still fits and report the rest.
	p.log.Warnf("self-reliance search failed after %d nodes, falling back to best effort", nodes)
	missing := make(map[jiritsuUnit]int)
	var order []jiritsuUnit
	for _, u := range units {
		if p.placeFirstFit(s, school, u) {
			continue
		}
		if _, seen := missing[u]; !seen {
			order = append(order, u)
		}
		missing[u]++
	}
	infeasible := make([]Infeasibility, 0, len(order))
	for _, u := range order {
		infeasible = append(infeasible, Infeasibility{
			Classes: []model.ClassRef{u.exchange},
			Subject: u.subject,
			Missing: missing[u],
			Reason:  "no slot satisfies the pairing rule",
		})
	}
	return infeasible, nil
}

func (p *JiritsuPlacer) search(ctx context.Context, s *timetable.Schedule,
	school *timetable.School, units []jiritsuUnit, idx int, nodes *int) bool {
	if idx == len(units) {
		return true
	}
	u := units[idx]
	for _, cand := range p.candidates(s, school, u) {
		*nodes++
		if *nodes > p.nodeLimit {
			return false
		}
		if *nodes%256 == 0 && ctx.Err() != nil {
			return false
		}
		undo, ok := p.tryPlace(s, school, u, cand.slot)
		if !ok {
			continue
		}
		if p.search(ctx, s, school, units, idx+1, nodes) {
			return true
		}
		undo()
	}
	return false
}

// candidates ranks the open slots for one activity hour. Tuesday through
// Thursday and the morning periods are preferred, and a parent already
// sitting in the first-choice pairing subject saves the propagation write.
func (p *JiritsuPlacer) candidates(s *timetable.Schedule, school *timetable.School,
	u jiritsuUnit) []scoredSlot {
	cat := school.Catalog()
	var preferred model.Subject
	if eligible := cat.ParentEligible(); len(eligible) > 0 {
		preferred = eligible[0]
	}
	var list []scoredSlot
	for _, slot := range model.AllSlots() {
		if !openCell(s, slot, u.exchange) {
			continue
		}
		parentSub := s.Subject(slot, u.parent)
		if !parentSub.IsZero() && !cat.IsParentEligible(parentSub) {
			continue
		}
		score := 0.0
		switch slot.Day {
		case model.Tuesday, model.Wednesday, model.Thursday:
			score -= 10
		}
		if slot.Period <= 3 {
			score -= 5
		}
		if !parentSub.IsZero() && parentSub == preferred {
			score -= 3
		}
		list = append(list, scoredSlot{slot: slot, score: score})
	}
	sortScored(list)
	return list
}

// tryPlace commits one activity hour at slot, propagating Math or English
// onto an empty parent cell first so the pairing check sees a valid parent.
// The returned undo removes exactly what this call added.
func (p *JiritsuPlacer) tryPlace(s *timetable.Schedule, school *timetable.School,
	u jiritsuUnit, slot model.TimeSlot) (func(), bool) {
	parentPlaced := false
	if s.Subject(slot, u.parent).IsZero() {
		if !openCell(s, slot, u.parent) {
			return nil, false
		}
		placed := false
		for _, sub := range p.parentChoices(s, school, u.parent) {
			teacher, ok := school.TeacherFor(sub, u.parent)
			if !ok {
				continue
			}
			a := model.NewAssignment(sub, teacher)
			if !p.validator.Check(s, school, slot, u.parent, a) {
				continue
			}
			if err := s.Place(slot, u.parent, a); err != nil {
				continue
			}
			placed = true
			break
		}
		if !placed {
			return nil, false
		}
		parentPlaced = true
	}

	a := model.NewAssignment(u.subject, u.teacher)
	if !p.validator.Check(s, school, slot, u.exchange, a) || s.Place(slot, u.exchange, a) != nil {
		if parentPlaced {
			_ = s.Remove(slot, u.parent)
		}
		return nil, false
	}
	return func() {
		_ = s.Remove(slot, u.exchange)
		if parentPlaced {
			_ = s.Remove(slot, u.parent)
		}
	}, true
}

// parentChoices orders the pairing-eligible subjects for a parent write,
// deficits first so the propagation also works toward required hours.
func (p *JiritsuPlacer) parentChoices(s *timetable.Schedule, school *timetable.School,
	parent model.ClassRef) []model.Subject {
	eligible := school.Catalog().ParentEligible()
	var deficit, rest []model.Subject
	for _, sub := range eligible {
		if s.HourCount(parent, sub) < school.RequiredHours(parent, sub) {
			deficit = append(deficit, sub)
		} else {
			rest = append(rest, sub)
		}
	}
	return append(deficit, rest...)
}

func (p *JiritsuPlacer) placeFirstFit(s *timetable.Schedule, school *timetable.School,
	u jiritsuUnit) bool {
	for _, cand := range p.candidates(s, school, u) {
		if _, ok := p.tryPlace(s, school, u, cand.slot); ok {
			return true
		}
	}
	return false
}
