// Package optimizer implements the post-placement repair pass: random
// pairwise swaps accepted when they do not worsen the weighted violation
// score, with an annealing-style escape hatch and a perturbation kick on
// stagnation. Best effort, never optimal.
package optimizer

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/ktakeda47/jikanwari/core/evaluator"
	"github.com/ktakeda47/jikanwari/core/logger"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Config tunes the search.
type Config struct {
	MaxIterations int     // outer iteration budget
	SwapsPerIter  int     // swap attempts per iteration
	Patience      int     // non-improving iterations before a kick
	KickSwaps     int     // forced swaps per kick
	Temperature   float64 // annealing temperature for worse swaps
	Randomness    float64 // scales the probability of accepting worse swaps
}

// DefaultConfig matches the deployed tuning.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 100,
		SwapsPerIter:  21,
		Patience:      20,
		KickSwaps:     3,
		Temperature:   0.1,
		Randomness:    0.3,
	}
}

// Stats summarizes one optimization run.
type Stats struct {
	Iterations   int
	Attempted    int
	Accepted     int
	Kicks        int
	InitialScore float64
	FinalScore   float64
}

// Optimizer improves a placed schedule by hill climbing over swaps.
type Optimizer struct {
	eval *evaluator.Evaluator
	log  logger.Logger
	rng  *rand.Rand
	cfg  Config
}

// New builds the optimizer.
func New(eval *evaluator.Evaluator, log logger.Logger, rng *rand.Rand, cfg Config) (*Optimizer, error) {
	if eval == nil {
		return nil, fmt.Errorf("optimizer: nil evaluator provided to New")
	}
	if log == nil {
		return nil, fmt.Errorf("optimizer: nil logger provided to New")
	}
	if rng == nil {
		return nil, fmt.Errorf("optimizer: nil rng provided to New")
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultConfig().MaxIterations
	}
	if cfg.SwapsPerIter <= 0 {
		cfg.SwapsPerIter = DefaultConfig().SwapsPerIter
	}
	if cfg.Patience <= 0 {
		cfg.Patience = DefaultConfig().Patience
	}
	if cfg.KickSwaps <= 0 {
		cfg.KickSwaps = DefaultConfig().KickSwaps
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultConfig().Temperature
	}
	if cfg.Randomness < 0 {
		cfg.Randomness = 0
	}
	if cfg.Randomness > 1 {
		cfg.Randomness = 1
	}
	return &Optimizer{eval: eval, log: log, rng: rng, cfg: cfg}, nil
}

// Optimize runs the search and returns the best schedule seen, which the
// caller adopts in place of the input. The input schedule is consumed as
// scratch space.
func (o *Optimizer) Optimize(ctx context.Context, s *timetable.Schedule,
	school *timetable.School) (*timetable.Schedule, Stats, error) {
	pool := newSwapPool(s, school)
	stats := Stats{InitialScore: o.eval.Score(s, school).Total}
	stats.FinalScore = stats.InitialScore
	if pool.empty() {
		return s, stats, nil
	}

	best := s.Clone()
	bestScore := stats.InitialScore
	current := stats.InitialScore
	sinceImprove := 0

	for iter := 0; iter < o.cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			stats.Iterations = iter
			stats.FinalScore = bestScore
			return best, stats, err
		}
		improved := false
		for k := 0; k < o.cfg.SwapsPerIter; k++ {
			move, ok := pool.random(o.rng, s, school)
			if !ok {
				continue
			}
			stats.Attempted++
			if !move.apply(s) {
				continue
			}
			score := o.eval.Score(s, school).Total
			if o.accept(score, current) {
				stats.Accepted++
				current = score
				if score < bestScore {
					bestScore = score
					best = s.Clone()
					improved = true
				}
				continue
			}
			move.revert(s)
		}
		stats.Iterations = iter + 1
		if bestScore == 0 {
			break
		}
		if improved {
			sinceImprove = 0
			continue
		}
		sinceImprove++
		if sinceImprove >= o.cfg.Patience {
			o.kick(s, school, pool)
			current = o.eval.Score(s, school).Total
			sinceImprove = 0
			stats.Kicks++
		}
	}

	stats.FinalScore = bestScore
	o.log.Debugf("optimizer: %d iterations, %d/%d swaps accepted, %d kicks, score %.2f -> %.2f",
		stats.Iterations, stats.Accepted, stats.Attempted, stats.Kicks,
		stats.InitialScore, stats.FinalScore)
	return best, stats, nil
}

// accept takes every non-worsening swap and lets a worse one through with
// annealing probability scaled by the randomness level.
func (o *Optimizer) accept(score, current float64) bool {
	if score <= current {
		return true
	}
	if o.cfg.Randomness == 0 {
		return false
	}
	delta := score - current
	return o.rng.Float64() < math.Exp(-delta/o.cfg.Temperature)*o.cfg.Randomness
}

// kick jolts the schedule out of a local minimum with unconditional random
// swaps. The best snapshot protects the result from a bad kick.
func (o *Optimizer) kick(s *timetable.Schedule, school *timetable.School, pool *swapPool) {
	for i := 0; i < o.cfg.KickSwaps; i++ {
		if move, ok := pool.random(o.rng, s, school); ok {
			move.apply(s)
		}
	}
}

// swapPool indexes the cells the optimizer may touch: filled, unlocked,
// outside test periods, on ordinary classes, holding movable subjects.
// Swaps permute assignments among exactly these cells, so the pool stays
// valid for the whole run.
type swapPool struct {
	byClass map[model.ClassRef][]model.TimeSlot
	bySlot  map[model.TimeSlot][]model.ClassRef
	classes []model.ClassRef
	slots   []model.TimeSlot
}

func newSwapPool(s *timetable.Schedule, school *timetable.School) *swapPool {
	cat := school.Catalog()
	p := &swapPool{
		byClass: make(map[model.ClassRef][]model.TimeSlot),
		bySlot:  make(map[model.TimeSlot][]model.ClassRef),
	}
	for _, class := range s.Classes() {
		if !class.IsRegular() {
			continue
		}
		for _, slot := range model.AllSlots() {
			a, ok := s.Get(slot, class)
			if !ok || s.IsLocked(slot, class) || s.IsTestPeriod(slot) {
				continue
			}
			if cat.IsProtected(a.Subject) || cat.IsSelfReliance(a.Subject) {
				continue
			}
			if len(p.byClass[class]) == 0 {
				p.classes = append(p.classes, class)
			}
			if len(p.bySlot[slot]) == 0 {
				p.slots = append(p.slots, slot)
			}
			p.byClass[class] = append(p.byClass[class], slot)
			p.bySlot[slot] = append(p.bySlot[slot], class)
		}
	}
	return p
}

func (p *swapPool) empty() bool { return len(p.classes) == 0 }

// random draws one candidate move: either two slots of one class or two
// classes at one slot.
func (p *swapPool) random(rng *rand.Rand, s *timetable.Schedule,
	school *timetable.School) (swapMove, bool) {
	if rng.Intn(2) == 0 {
		if move, ok := p.sameClass(rng, s); ok {
			return move, true
		}
		return p.sameSlot(rng, s, school)
	}
	if move, ok := p.sameSlot(rng, s, school); ok {
		return move, true
	}
	return p.sameClass(rng, s)
}

func (p *swapPool) sameClass(rng *rand.Rand, s *timetable.Schedule) (swapMove, bool) {
	if len(p.classes) == 0 {
		return swapMove{}, false
	}
	class := p.classes[rng.Intn(len(p.classes))]
	slots := p.byClass[class]
	if len(slots) < 2 {
		return swapMove{}, false
	}
	i := rng.Intn(len(slots))
	j := rng.Intn(len(slots) - 1)
	if j >= i {
		j++
	}
	a, _ := s.Get(slots[i], class)
	b, _ := s.Get(slots[j], class)
	if a.Subject == b.Subject {
		return swapMove{}, false
	}
	return swapMove{
		first:       model.Cell{Slot: slots[i], Class: class},
		second:      model.Cell{Slot: slots[j], Class: class},
		firstWas:    a,
		secondWas:   b,
		firstAfter:  b,
		secondAfter: a,
	}, true
}

func (p *swapPool) sameSlot(rng *rand.Rand, s *timetable.Schedule,
	school *timetable.School) (swapMove, bool) {
	if len(p.slots) == 0 {
		return swapMove{}, false
	}
	slot := p.slots[rng.Intn(len(p.slots))]
	classes := p.bySlot[slot]
	if len(classes) < 2 {
		return swapMove{}, false
	}
	i := rng.Intn(len(classes))
	j := rng.Intn(len(classes) - 1)
	if j >= i {
		j++
	}
	a, _ := s.Get(slot, classes[i])
	b, _ := s.Get(slot, classes[j])
	if a.Subject == b.Subject {
		return swapMove{}, false
	}
	// Crossing class lines means re-staffing both lessons.
	firstTeacher, ok := school.TeacherFor(b.Subject, classes[i])
	if !ok {
		return swapMove{}, false
	}
	secondTeacher, ok := school.TeacherFor(a.Subject, classes[j])
	if !ok {
		return swapMove{}, false
	}
	return swapMove{
		first:       model.Cell{Slot: slot, Class: classes[i]},
		second:      model.Cell{Slot: slot, Class: classes[j]},
		firstWas:    a,
		secondWas:   b,
		firstAfter:  model.NewAssignment(b.Subject, firstTeacher),
		secondAfter: model.NewAssignment(a.Subject, secondTeacher),
	}, true
}

// swapMove is one reversible exchange of two assignments.
type swapMove struct {
	first, second           model.Cell
	firstWas, secondWas     model.Assignment
	firstAfter, secondAfter model.Assignment
}

func (m swapMove) apply(s *timetable.Schedule) bool {
	return m.write(s, m.firstAfter, m.secondAfter)
}

func (m swapMove) revert(s *timetable.Schedule) {
	m.write(s, m.firstWas, m.secondWas)
}

func (m swapMove) write(s *timetable.Schedule, first, second model.Assignment) bool {
	if s.Remove(m.first.Slot, m.first.Class) != nil {
		return false
	}
	if s.Remove(m.second.Slot, m.second.Class) != nil {
		_ = s.Place(m.first.Slot, m.first.Class, m.firstWas)
		return false
	}
	if s.Place(m.first.Slot, m.first.Class, first) != nil {
		_ = s.Place(m.first.Slot, m.first.Class, m.firstWas)
		_ = s.Place(m.second.Slot, m.second.Class, m.secondWas)
		return false
	}
	if s.Place(m.second.Slot, m.second.Class, second) != nil {
		_ = s.Remove(m.first.Slot, m.first.Class)
		_ = s.Place(m.first.Slot, m.first.Class, m.firstWas)
		_ = s.Place(m.second.Slot, m.second.Class, m.secondWas)
		return false
	}
	return true
}
