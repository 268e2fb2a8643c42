package constraint

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Validator runs a fixed set of constraints as one unit: a combined veto
// for prospective placements and an aggregated violation scan.
type Validator struct {
	constraints []Constraint
}

// NewValidator builds a validator over the given rules.
func NewValidator(rules ...Constraint) (*Validator, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("constraint: no rules provided to NewValidator")
	}
	for _, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("constraint: nil rule provided to NewValidator")
		}
	}
	return &Validator{constraints: rules}, nil
}

// NewDefaultValidator wires the full rule set with the school's pinned-cell
// table and the hour tolerance.
func NewDefaultValidator(fixed []FixedPeriodRule, hourTolerance float64) (*Validator, error) {
	return NewValidator(
		NewTeacherConflict(),
		NewFixedPeriod(fixed),
		NewTeacherAvailability(),
		NewSelfReliancePairing(),
		NewExchangeMirror(),
		NewJointSync(),
		NewGymUsage(),
		NewDailyDuplicate(),
		NewStandardHours(hourTolerance),
		NewJiritsuSpread(),
	)
}

// Constraints returns the rule set in evaluation order.
func (v *Validator) Constraints() []Constraint {
	out := make([]Constraint, len(v.constraints))
	copy(out, v.constraints)
	return out
}

// Check reports whether all rules accept the candidate placement.
func (v *Validator) Check(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool {
	return v.CheckRelaxed(s, school, slot, class, a, Relax{})
}

// CheckRelaxed is Check with relaxations applied to the rules that honor
// them.
func (v *Validator) CheckRelaxed(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment, r Relax) bool {
	for _, rule := range v.constraints {
		if rc, ok := rule.(RelaxableChecker); ok {
			if !rc.CheckRelaxed(s, school, slot, class, a, r) {
				return false
			}
			continue
		}
		if !rule.Check(s, school, slot, class, a) {
			return false
		}
	}
	return true
}

// Blocking names the rules that reject the candidate, for diagnostics.
func (v *Validator) Blocking(s *timetable.Schedule, school *timetable.School,
	slot model.TimeSlot, class model.ClassRef, a model.Assignment) []string {
	var names []string
	for _, rule := range v.constraints {
		if !rule.Check(s, school, slot, class, a) {
			names = append(names, rule.Name())
		}
	}
	return names
}

// FindAllViolations aggregates every rule's scan into one list, sorted by
// descending priority then by cell. The scan has no hidden state: repeated
// calls on an unchanged schedule return identical results.
func (v *Validator) FindAllViolations(s *timetable.Schedule, school *timetable.School) []model.Violation {
	var out []model.Violation
	for _, rule := range v.constraints {
		out = append(out, rule.FindViolations(s, school)...)
	}
	model.SortViolations(out)
	return out
}

// FixedRules returns the pinned-cell table when the set contains the
// fixed-period rule, for the engine's lock pass.
func (v *Validator) FixedRules() []FixedPeriodRule {
	for _, rule := range v.constraints {
		if fp, ok := rule.(*FixedPeriod); ok {
			return fp.Rules()
		}
	}
	return nil
}
