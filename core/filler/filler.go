// Package filler drains the cells left empty after placement and
// optimization. It walks a ladder of passes, strictest first, so that a
// cell is only ever filled under the loosest rules that were actually
// needed. Cells no pass can serve stay empty and are reported.
package filler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/logger"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Report summarizes one fill run.
type Report struct {
	Filled   int
	PerPass  map[string]int
	Unfilled []model.Cell
}

// Filler runs each configured pass school-wide before moving to the next.
type Filler struct {
	log    logger.Logger
	rng    *rand.Rand
	passes []Strategy
}

// New builds a filler over the named passes, in order. With no names it
// runs the default ladder.
func New(v *constraint.Validator, log logger.Logger, rng *rand.Rand, passNames ...string) (*Filler, error) {
	if v == nil {
		return nil, errors.New("filler: nil validator provided to New")
	}
	if log == nil {
		return nil, errors.New("filler: nil logger provided to New")
	}
	if rng == nil {
		return nil, errors.New("filler: nil rng provided to New")
	}
	if len(passNames) == 0 {
		passNames = DefaultPasses()
	}
	reg := NewRegistry(v)
	passes := make([]Strategy, 0, len(passNames))
	for _, name := range passNames {
		p, err := reg.Create(name)
		if err != nil {
			return nil, fmt.Errorf("filler: %w", err)
		}
		passes = append(passes, p)
	}
	return &Filler{log: log, rng: rng, passes: passes}, nil
}

// Fill visits every empty cell once per pass. The ladder stops early only
// on context cancellation; cells still empty afterwards come back in the
// report rather than as an error.
func (f *Filler) Fill(ctx context.Context, s *timetable.Schedule, school *timetable.School) (Report, error) {
	report := Report{PerPass: make(map[string]int, len(f.passes))}
	for _, pass := range f.passes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		placed := 0
		for _, cell := range f.order(s.EmptyCells()) {
			candidates := f.candidates(s, school, cell)
			if len(candidates) == 0 {
				continue
			}
			if pass.Fill(s, school, cell, candidates) {
				placed++
			}
		}
		report.Filled += placed
		report.PerPass[pass.Name()] = placed
		f.log.Debugf("fill pass %s placed %d lessons", pass.Name(), placed)
	}
	report.Unfilled = s.EmptyCells()
	if n := len(report.Unfilled); n > 0 {
		f.log.Warnf("%d cells remain empty after the full fill ladder", n)
	}
	return report, nil
}

// order arranges one pass's visit sequence: the joint group's Wednesday
// fourth period first, then third-grade sixth periods early in the week,
// then the shuffled remainder. Exchange cells go last so their parent is
// already decided within the same pass.
func (f *Filler) order(cells []model.Cell) []model.Cell {
	var first, second, rest, mirrors []model.Cell
	for _, c := range cells {
		switch {
		case c.Class.IsExchange():
			mirrors = append(mirrors, c)
		case c.Class.IsJoint() && c.Slot.Day == model.Wednesday && c.Slot.Period == 4:
			first = append(first, c)
		case c.Class.Grade == 3 && c.Slot.Period == model.PeriodsPerDay && c.Slot.Day <= model.Wednesday:
			second = append(second, c)
		default:
			rest = append(rest, c)
		}
	}
	f.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	out := make([]model.Cell, 0, len(cells))
	out = append(out, first...)
	out = append(out, second...)
	out = append(out, rest...)
	out = append(out, mirrors...)
	return out
}

// candidates lists what may go into the cell. Exchange classes only ever
// mirror their parent; everyone else draws from its required subjects.
func (f *Filler) candidates(s *timetable.Schedule, school *timetable.School, cell model.Cell) []model.Assignment {
	if cell.Class.IsExchange() {
		return f.mirrorCandidate(s, school, cell)
	}
	owner := cell.Class
	if owner.IsJoint() {
		// Staffing is resolved through the lead member so the whole
		// group offers identical candidates and can stay in lockstep.
		if group := school.JointGroup(); len(group) > 0 {
			owner = group[0]
		}
	}
	cat := school.Catalog()
	var out []model.Assignment
	for _, sub := range school.RequiredSubjects(owner) {
		if !cat.Fillable(sub) {
			continue
		}
		teacher, ok := school.TeacherFor(sub, owner)
		if !ok {
			continue
		}
		out = append(out, model.NewAssignment(sub, teacher))
	}
	return out
}

// mirrorCandidate projects the parent's current lesson onto the exchange
// cell. An empty parent yields nothing; the cell is retried next pass.
func (f *Filler) mirrorCandidate(s *timetable.Schedule, school *timetable.School, cell model.Cell) []model.Assignment {
	parent, ok := school.ParentOf(cell.Class)
	if !ok {
		return nil
	}
	got, ok := s.Get(cell.Slot, parent)
	if !ok {
		return nil
	}
	cat := school.Catalog()
	if cat.IsProtected(got.Subject) || cat.IsSelfReliance(got.Subject) || cat.IsPE(got.Subject) {
		return nil
	}
	a := got
	if t, ok := school.TeacherFor(got.Subject, cell.Class); ok {
		a.Teacher = t
	}
	return []model.Assignment{a}
}
