package filler

import (
	"sort"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/factory"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Strategy is one rung of the fill ladder: it either places an assignment
// into the cell or leaves it for a looser pass.
type Strategy interface {
	Name() string
	Fill(s *timetable.Schedule, school *timetable.School, cell model.Cell,
		candidates []model.Assignment) bool
}

// Pass names accepted in configuration.
const (
	PassStrict   = "strict"
	PassBalanced = "balanced"
	PassRelaxed  = "relaxed"
	PassUltra    = "ultra"
)

// DefaultPasses is the ladder in its deployed order, strictest first.
func DefaultPasses() []string {
	return []string{PassStrict, PassBalanced, PassRelaxed, PassUltra}
}

// NewRegistry registers the built-in passes over the given validator.
func NewRegistry(v *constraint.Validator) *factory.Registry[Strategy] {
	reg := factory.NewRegistry[Strategy]()
	_ = reg.Register(PassStrict, func() (Strategy, error) {
		return &strictPass{base{v}}, nil
	})
	_ = reg.Register(PassBalanced, func() (Strategy, error) {
		return &balancedPass{base{v}}, nil
	})
	_ = reg.Register(PassRelaxed, func() (Strategy, error) {
		return &relaxedPass{base{v}}, nil
	})
	_ = reg.Register(PassUltra, func() (Strategy, error) {
		return &ultraPass{base{v}}, nil
	})
	return reg
}

type base struct {
	validator *constraint.Validator
}

// fill tries the candidates against the pass's rules, deepest deficit
// first. Fixed pseudo-subjects and self-reliance never qualify as filler.
func (b base) fill(s *timetable.Schedule, school *timetable.School, cell model.Cell,
	candidates []model.Assignment, r constraint.Relax, coreOnly, allowOver bool) bool {
	cat := school.Catalog()
	type option struct {
		a       model.Assignment
		deficit int
		order   int
	}
	var options []option
	for i, a := range candidates {
		if !cat.Fillable(a.Subject) {
			continue
		}
		if coreOnly && !cat.IsCore(a.Subject) {
			continue
		}
		deficit := school.RequiredHours(cell.Class, a.Subject) - s.HourCount(cell.Class, a.Subject)
		if !allowOver && deficit <= 0 {
			continue
		}
		options = append(options, option{a: a, deficit: deficit, order: i})
	}
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].deficit != options[j].deficit {
			return options[i].deficit > options[j].deficit
		}
		return options[i].order < options[j].order
	})
	for _, opt := range options {
		if !b.validator.CheckRelaxed(s, school, cell.Slot, cell.Class, opt.a, r) {
			continue
		}
		if s.Place(cell.Slot, cell.Class, opt.a) == nil {
			return true
		}
	}
	return false
}

// strictPass places only subjects still under their required hours, under
// the full constraint set.
type strictPass struct{ base }

func (p *strictPass) Name() string { return PassStrict }

func (p *strictPass) Fill(s *timetable.Schedule, school *timetable.School,
	cell model.Cell, candidates []model.Assignment) bool {
	return p.fill(s, school, cell, candidates, constraint.Relax{}, false, false)
}

// balancedPass still stays under required hours but lets core subjects
// double up within a day when nothing else fits.
type balancedPass struct{ base }

func (p *balancedPass) Name() string { return PassBalanced }

func (p *balancedPass) Fill(s *timetable.Schedule, school *timetable.School,
	cell model.Cell, candidates []model.Assignment) bool {
	return p.fill(s, school, cell, candidates, constraint.Relax{DailyDouble: true}, false, false)
}

// relaxedPass lets core academics run past their required hours.
type relaxedPass struct{ base }

func (p *relaxedPass) Name() string { return PassRelaxed }

func (p *relaxedPass) Fill(s *timetable.Schedule, school *timetable.School,
	cell model.Cell, candidates []model.Assignment) bool {
	return p.fill(s, school, cell, candidates,
		constraint.Relax{DailyDouble: true, ExceedHours: true}, true, true)
}

// ultraPass takes any placeable subject with a free teacher, hours be
// damned. Cells it cannot fill are genuinely stuck.
type ultraPass struct{ base }

func (p *ultraPass) Name() string { return PassUltra }

func (p *ultraPass) Fill(s *timetable.Schedule, school *timetable.School,
	cell model.Cell, candidates []model.Assignment) bool {
	return p.fill(s, school, cell, candidates,
		constraint.Relax{DailyDouble: true, ExceedHours: true}, false, true)
}
