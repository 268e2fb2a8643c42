// Package placement hosts the services that fill a schedule: the
// self-reliance backtracker, the joint-group synchronizer, the exchange
// mirror passes and the greedy subject placer. Each service mutates the
// schedule through its guarded API and reports what it could not place
// instead of failing the run.
package placement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Infeasibility records hours that found no legal slot. The generation run
// carries on; callers fold these into the result's warning list.
type Infeasibility struct {
	Classes []model.ClassRef
	Subject model.Subject
	Missing int
	Reason  string
}

func (i Infeasibility) String() string {
	names := make([]string, 0, len(i.Classes))
	for _, c := range i.Classes {
		names = append(names, c.String())
	}
	return fmt.Sprintf("%s %s short %dh: %s",
		strings.Join(names, ","), i.Subject, i.Missing, i.Reason)
}

// scoredSlot ranks a candidate. Scores sort ascending; negative means
// attractive.
type scoredSlot struct {
	slot  model.TimeSlot
	score float64
}

func sortScored(list []scoredSlot) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score < list[j].score
		}
		return list[i].slot.Index() < list[j].slot.Index()
	})
}

// teacherDayLoad counts lessons the teacher already gives on the slot's day.
func teacherDayLoad(s *timetable.Schedule, t model.Teacher, day model.Day) int {
	load := 0
	for p := 1; p <= model.PeriodsPerDay; p++ {
		slot := model.TimeSlot{Day: day, Period: p}
		if s.TeacherBusy(slot, t) {
			load++
		}
	}
	return load
}

// openCell reports whether the cell accepts a placement right now.
func openCell(s *timetable.Schedule, slot model.TimeSlot, class model.ClassRef) bool {
	if s.IsLocked(slot, class) {
		return false
	}
	if s.IsTestPeriod(slot) && !class.IsJoint() {
		return false
	}
	_, filled := s.Get(slot, class)
	return !filled
}
