package constraint

import (
	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Constraint is one scheduling rule. Check is the fast local veto used
// while searching: it answers whether placing the candidate assignment at
// the slot would break the rule given the schedule as it stands.
// FindViolations is the full post-hoc scan used for reporting and scoring.
//
// Both operations are read-only; running them twice on an unchanged
// schedule yields identical results.
type Constraint interface {
	Name() string
	Priority() model.Priority
	Check(s *timetable.Schedule, school *timetable.School,
		slot model.TimeSlot, class model.ClassRef, a model.Assignment) bool
	FindViolations(s *timetable.Schedule, school *timetable.School) []model.Violation
}

// Relax loosens specific rules during fallback placement passes. Only the
// two soft rules honor it; CRITICAL and HIGH rules ignore relaxation
// entirely.
type Relax struct {
	DailyDouble bool // core subjects may reach two lessons on one day
	ExceedHours bool // weekly required-hour targets may be exceeded
}

// RelaxableChecker is implemented by constraints whose Check honors a
// Relax. Checkers lacking the interface are applied strictly.
type RelaxableChecker interface {
	CheckRelaxed(s *timetable.Schedule, school *timetable.School,
		slot model.TimeSlot, class model.ClassRef, a model.Assignment, r Relax) bool
}
