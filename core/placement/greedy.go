package placement

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/logger"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// GreedyPlacer fills required-hour deficits for the regular classes, most
// constrained first. Slots are ranked by subject time-of-day fit and teacher
// load, with a seeded jitter so equal-quality slots spread between runs.
type GreedyPlacer struct {
	validator  *constraint.Validator
	log        logger.Logger
	rng        *rand.Rand
	randomness float64
}

// NewGreedyPlacer builds the placer. Randomness is clamped to [0, 1]; zero
// makes ranking fully deterministic.
func NewGreedyPlacer(v *constraint.Validator, log logger.Logger, rng *rand.Rand,
	randomness float64) (*GreedyPlacer, error) {
	if v == nil {
		return nil, fmt.Errorf("placement: nil validator provided to NewGreedyPlacer")
	}
	if log == nil {
		return nil, fmt.Errorf("placement: nil logger provided to NewGreedyPlacer")
	}
	if rng == nil {
		return nil, fmt.Errorf("placement: nil rng provided to NewGreedyPlacer")
	}
	if randomness < 0 {
		randomness = 0
	}
	if randomness > 1 {
		randomness = 1
	}
	return &GreedyPlacer{validator: v, log: log, rng: rng, randomness: randomness}, nil
}

type deficit struct {
	class   model.ClassRef
	subject model.Subject
	teacher model.Teacher
	missing int
	ratio   float64
	order   int
}

// Place works through the deficit list. Hours with no feasible slot even
// under the relaxed daily limit come back as infeasibilities.
func (p *GreedyPlacer) Place(ctx context.Context, s *timetable.Schedule,
	school *timetable.School) ([]Infeasibility, error) {
	deficits, infeasible := p.deficits(s, school)
	for _, d := range deficits {
		if err := ctx.Err(); err != nil {
			return infeasible, err
		}
		left := d.missing
		for left > 0 {
			if _, ok := p.placeHour(s, school, d, constraint.Relax{}); ok {
				left--
				continue
			}
			if _, ok := p.placeHour(s, school, d, constraint.Relax{DailyDouble: true}); ok {
				left--
				continue
			}
			infeasible = append(infeasible, Infeasibility{
				Classes: []model.ClassRef{d.class},
				Subject: d.subject,
				Missing: left,
				Reason:  "no feasible slot even with the daily limit relaxed",
			})
			break
		}
	}
	return infeasible, nil
}

// deficits lists outstanding (class, subject) hours for regular classes,
// sorted most constrained first: highest missing-to-open-cells ratio, then
// largest deficit, then roster order.
func (p *GreedyPlacer) deficits(s *timetable.Schedule,
	school *timetable.School) ([]deficit, []Infeasibility) {
	cat := school.Catalog()
	var list []deficit
	var infeasible []Infeasibility
	order := 0
	for _, class := range school.Classes() {
		if !class.IsRegular() {
			continue
		}
		open := p.openCount(s, class)
		for _, sub := range school.RequiredSubjects(class) {
			if cat.IsProtected(sub) || cat.IsSelfReliance(sub) {
				continue
			}
			missing := school.RequiredHours(class, sub) - s.HourCount(class, sub)
			if missing <= 0 {
				continue
			}
			teacher, ok := school.TeacherFor(sub, class)
			if !ok {
				infeasible = append(infeasible, Infeasibility{
					Classes: []model.ClassRef{class},
					Subject: sub,
					Missing: missing,
					Reason:  "no teacher assigned",
				})
				continue
			}
			divisor := open
			if divisor < 1 {
				divisor = 1
			}
			list = append(list, deficit{
				class:   class,
				subject: sub,
				teacher: teacher,
				missing: missing,
				ratio:   float64(missing) / float64(divisor),
				order:   order,
			})
			order++
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].ratio != list[j].ratio {
			return list[i].ratio > list[j].ratio
		}
		if list[i].missing != list[j].missing {
			return list[i].missing > list[j].missing
		}
		return list[i].order < list[j].order
	})
	return list, infeasible
}

func (p *GreedyPlacer) openCount(s *timetable.Schedule, class model.ClassRef) int {
	open := 0
	for _, slot := range model.AllSlots() {
		if openCell(s, slot, class) {
			open++
		}
	}
	return open
}

func (p *GreedyPlacer) placeHour(s *timetable.Schedule, school *timetable.School,
	d deficit, relax constraint.Relax) (model.TimeSlot, bool) {
	a := model.NewAssignment(d.subject, d.teacher)
	for _, cand := range p.rank(s, school, d) {
		if !p.validator.CheckRelaxed(s, school, cand.slot, d.class, a, relax) {
			continue
		}
		if s.Place(cand.slot, d.class, a) == nil {
			return cand.slot, true
		}
	}
	return model.TimeSlot{}, false
}

// rank scores the open slots for one deficit hour. Core subjects pull
// toward mornings, skill subjects toward afternoons, PE toward Tuesday, and
// days where the teacher is already heavily booked fall behind.
func (p *GreedyPlacer) rank(s *timetable.Schedule, school *timetable.School,
	d deficit) []scoredSlot {
	cat := school.Catalog()
	var list []scoredSlot
	for _, slot := range model.AllSlots() {
		if !openCell(s, slot, d.class) {
			continue
		}
		score := 0.0
		if cat.IsCore(d.subject) && slot.Period <= 3 {
			score -= 3
		}
		if cat.IsSkill(d.subject) && slot.Period >= 4 {
			score -= 3
		}
		if cat.IsPE(d.subject) && slot.Day == model.Tuesday {
			score -= 5
		}
		score += float64(teacherDayLoad(s, d.teacher, slot.Day))
		if p.randomness > 0 {
			score += (p.rng.Float64()*2 - 1) * p.randomness * 2
		}
		list = append(list, scoredSlot{slot: slot, score: score})
	}
	sortScored(list)
	return list
}
