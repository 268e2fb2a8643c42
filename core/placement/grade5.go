package placement

import (
	"context"
	"fmt"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/logger"
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Grade5Synchronizer places the joint special-needs group's shared lessons.
// Each shared subject hour lands in exactly one slot across all member
// classes with one shared teacher, committed all-or-nothing.
type Grade5Synchronizer struct {
	validator *constraint.Validator
	log       logger.Logger
}

// NewGrade5Synchronizer builds the synchronizer.
func NewGrade5Synchronizer(v *constraint.Validator, log logger.Logger) (*Grade5Synchronizer, error) {
	if v == nil {
		return nil, fmt.Errorf("placement: nil validator provided to NewGrade5Synchronizer")
	}
	if log == nil {
		return nil, fmt.Errorf("placement: nil logger provided to NewGrade5Synchronizer")
	}
	return &Grade5Synchronizer{validator: v, log: log}, nil
}

// SharedSubjects lists the subjects the whole group must take in lockstep:
// required by every member with equal weekly hours. Fixed pseudo-subjects
// are pinned elsewhere, self-reliance stays per class, and PE runs with each
// grade's own peers rather than with the group.
func (g *Grade5Synchronizer) SharedSubjects(school *timetable.School) []model.Subject {
	group := school.JointGroup()
	if len(group) < 2 {
		return nil
	}
	cat := school.Catalog()
	var shared []model.Subject
	for _, sub := range school.RequiredSubjects(group[0]) {
		if cat.IsProtected(sub) || cat.IsSelfReliance(sub) || cat.IsPE(sub) {
			continue
		}
		hours := school.RequiredHours(group[0], sub)
		everyMember := true
		for _, member := range group[1:] {
			if school.RequiredHours(member, sub) != hours {
				everyMember = false
				break
			}
		}
		if everyMember {
			shared = append(shared, sub)
		}
	}
	return shared
}

// Sync commits every outstanding shared hour. Subjects that run out of
// common slots come back as infeasibilities for the whole group.
func (g *Grade5Synchronizer) Sync(ctx context.Context, s *timetable.Schedule,
	school *timetable.School) ([]Infeasibility, error) {
	group := school.JointGroup()
	if len(group) < 2 {
		return nil, nil
	}
	var infeasible []Infeasibility
	for _, sub := range g.SharedSubjects(school) {
		if err := ctx.Err(); err != nil {
			return infeasible, err
		}
		teacher, ok := school.TeacherFor(sub, group[0])
		if !ok {
			infeasible = append(infeasible, Infeasibility{
				Classes: group,
				Subject: sub,
				Missing: g.outstanding(s, school, group, sub),
				Reason:  "no shared teacher assigned",
			})
			continue
		}
		for g.outstanding(s, school, group, sub) > 0 {
			slot, placed := g.placeHour(s, school, group, sub, teacher)
			if !placed {
				infeasible = append(infeasible, Infeasibility{
					Classes: group,
					Subject: sub,
					Missing: g.outstanding(s, school, group, sub),
					Reason:  "no common slot for the whole group",
				})
				break
			}
			g.log.Debugf("joint group %s placed at %s", sub, slot)
		}
	}
	return infeasible, nil
}

// outstanding is the number of lockstep hours still to place: the gap of the
// member furthest behind.
func (g *Grade5Synchronizer) outstanding(s *timetable.Schedule, school *timetable.School,
	group []model.ClassRef, sub model.Subject) int {
	required := school.RequiredHours(group[0], sub)
	most := 0
	for _, member := range group {
		if gap := required - s.HourCount(member, sub); gap > most {
			most = gap
		}
	}
	return most
}

func (g *Grade5Synchronizer) placeHour(s *timetable.Schedule, school *timetable.School,
	group []model.ClassRef, sub model.Subject, teacher model.Teacher) (model.TimeSlot, bool) {
	for _, cand := range g.candidates(s, school, group, sub) {
		if g.commit(s, school, group, cand.slot, sub, teacher) {
			return cand.slot, true
		}
	}
	return model.TimeSlot{}, false
}

// candidates ranks the slots open for every member at once. Period 1 and
// the last period of the week sit at the back of the queue; core subjects
// pull toward mornings and skill subjects toward afternoons.
func (g *Grade5Synchronizer) candidates(s *timetable.Schedule, school *timetable.School,
	group []model.ClassRef, sub model.Subject) []scoredSlot {
	cat := school.Catalog()
	last := model.AllSlots()[len(model.AllSlots())-1]
	var list []scoredSlot
	for _, slot := range model.AllSlots() {
		open := true
		for _, member := range group {
			if !openCell(s, slot, member) {
				open = false
				break
			}
		}
		if !open {
			continue
		}
		score := 0.0
		if slot.Period == 1 {
			score += 5
		}
		if slot == last {
			score += 5
		}
		if cat.IsCore(sub) && slot.Period <= 3 {
			score -= 10
		}
		if cat.IsSkill(sub) && slot.Period >= 4 {
			score -= 5
		}
		list = append(list, scoredSlot{slot: slot, score: score})
	}
	sortScored(list)
	return list
}

// commit places the hour for every member or for none of them.
func (g *Grade5Synchronizer) commit(s *timetable.Schedule, school *timetable.School,
	group []model.ClassRef, slot model.TimeSlot, sub model.Subject, teacher model.Teacher) bool {
	a := model.NewAssignment(sub, teacher)
	placed := make([]model.ClassRef, 0, len(group))
	for _, member := range group {
		if !g.validator.Check(s, school, slot, member, a) || s.Place(slot, member, a) != nil {
			for _, done := range placed {
				_ = s.Remove(slot, done)
			}
			return false
		}
		placed = append(placed, member)
	}
	return true
}
