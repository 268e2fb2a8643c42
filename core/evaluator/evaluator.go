package evaluator

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Weights turns violation counts into the scalar badness score. Pairing
// breaks carry their own weight on top of the priority ranks because a
// timetable that strands a self-reliance activity is worse than its HIGH
// rank alone suggests.
type Weights struct {
	Critical float64 `json:"critical"`
	High     float64 `json:"high"`
	Medium   float64 `json:"medium"`
	Low      float64 `json:"low"`
	Jiritsu  float64 `json:"jiritsu"`
	Workload float64 `json:"workload"`
}

// DefaultWeights mirrors the deployed tuning.
func DefaultWeights() Weights {
	return Weights{
		Critical: 1000,
		High:     100,
		Medium:   10,
		Low:      1,
		Jiritsu:  1000,
		Workload: 0.01,
	}
}

func (w Weights) forPriority(p model.Priority) float64 {
	switch p {
	case model.PriorityCritical:
		return w.Critical
	case model.PriorityHigh:
		return w.High
	case model.PriorityMedium:
		return w.Medium
	default:
		return w.Low
	}
}

// Breakdown is one scoring result: the scalar plus the terms it came from.
type Breakdown struct {
	Total             float64
	ByPriority        map[model.Priority]int
	JiritsuViolations int
	OtherViolations   int
	WorkloadVariance  float64
}

// Evaluator computes the weighted badness of a schedule. Lower is better;
// zero means no violations and perfectly level teacher loads.
type Evaluator struct {
	validator *constraint.Validator
	weights   Weights
}

var pairingRule = constraint.NewSelfReliancePairing().Name()

// New builds an evaluator over the validator's rule set.
func New(v *constraint.Validator, w Weights) (*Evaluator, error) {
	if v == nil {
		return nil, fmt.Errorf("evaluator: nil validator provided to New")
	}
	return &Evaluator{validator: v, weights: w}, nil
}

// Score runs the full violation scan and folds it into one Breakdown.
func (e *Evaluator) Score(s *timetable.Schedule, school *timetable.School) Breakdown {
	violations := e.validator.FindAllViolations(s, school)
	return e.fold(violations, s, school)
}

// ScoreViolations folds an existing scan result, for callers that already
// hold one.
func (e *Evaluator) ScoreViolations(violations []model.Violation,
	s *timetable.Schedule, school *timetable.School) Breakdown {
	return e.fold(violations, s, school)
}

func (e *Evaluator) fold(violations []model.Violation,
	s *timetable.Schedule, school *timetable.School) Breakdown {
	b := Breakdown{ByPriority: make(map[model.Priority]int, 4)}
	for _, v := range violations {
		b.ByPriority[v.Priority]++
		if v.Constraint == pairingRule {
			b.JiritsuViolations++
			b.Total += e.weights.Jiritsu
			continue
		}
		b.OtherViolations++
		b.Total += e.weights.forPriority(v.Priority)
	}
	b.WorkloadVariance = e.workloadVariance(s, school)
	b.Total += b.WorkloadVariance * e.weights.Workload
	return b
}

// workloadVariance measures how unevenly weekly lessons spread across the
// teaching staff. Placeholder names stay out of the sample.
func (e *Evaluator) workloadVariance(s *timetable.Schedule, school *timetable.School) float64 {
	loads := TeacherLoads(s, school)
	if len(loads) < 2 {
		return 0
	}
	return stat.PopVariance(loads, nil)
}

// TeacherLoads counts weekly assigned lessons per teacher, in the school's
// staffing order.
func TeacherLoads(s *timetable.Schedule, school *timetable.School) []float64 {
	counts := make(map[model.Teacher]float64)
	for _, class := range s.Classes() {
		for _, slot := range model.AllSlots() {
			a, ok := s.Get(slot, class)
			if !ok || a.Teacher.IsZero() || school.IsExemptTeacher(a.Teacher) {
				continue
			}
			counts[a.Teacher]++
		}
	}
	teachers := school.Teachers()
	loads := make([]float64, 0, len(teachers))
	for _, t := range teachers {
		loads = append(loads, counts[t])
	}
	return loads
}

// MeanLoad is the average weekly lessons per teacher, for reporting.
func MeanLoad(s *timetable.Schedule, school *timetable.School) float64 {
	loads := TeacherLoads(s, school)
	if len(loads) == 0 {
		return 0
	}
	return stat.Mean(loads, nil)
}
