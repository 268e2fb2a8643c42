package timetable

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ktakeda47/jikanwari/core/model"
)

// Mutation rejections. Callers distinguish them with errors.Is.
var (
	ErrSlotOccupied = errors.New("cell already holds an assignment")
	ErrCellLocked   = errors.New("cell is locked")
	ErrTestPeriod   = errors.New("slot lies in a protected test period")
	ErrUnknownClass = errors.New("class is not on the roster")
	ErrEmptySubject = errors.New("assignment has no subject")
)

type dailyKey struct {
	class   model.ClassRef
	day     model.Day
	subject model.Subject
}

type hoursKey struct {
	class   model.ClassRef
	subject model.Subject
}

type slotTeacherKey struct {
	slot    model.TimeSlot
	teacher model.Teacher
}

// Schedule is the mutable weekly grid: one optional Assignment per
// (TimeSlot, ClassRef) cell plus per-cell lock flags and test-period marks.
//
// Every mutation keeps the derived counters (teacher occupancy, per-day
// subject counts, weekly subject counts) in step within the same call, so
// reads between mutations never see stale values. The API is single-writer:
// nothing here is safe for concurrent mutation.
type Schedule struct {
	catalog *model.SubjectCatalog
	classes []model.ClassRef

	cells  map[model.Cell]model.Assignment
	locked map[model.Cell]struct{}
	tests  map[model.TimeSlot]struct{}

	teacherAt map[slotTeacherKey][]model.ClassRef
	daily     map[dailyKey]int
	hours     map[hoursKey]int
}

// NewSchedule builds an empty grid for the school's roster.
func NewSchedule(school *School) *Schedule {
	return &Schedule{
		catalog:   school.Catalog(),
		classes:   school.Classes(),
		cells:     make(map[model.Cell]model.Assignment),
		locked:    make(map[model.Cell]struct{}),
		tests:     make(map[model.TimeSlot]struct{}),
		teacherAt: make(map[slotTeacherKey][]model.ClassRef),
		daily:     make(map[dailyKey]int),
		hours:     make(map[hoursKey]int),
	}
}

// Classes returns the roster order the grid iterates in.
func (s *Schedule) Classes() []model.ClassRef {
	out := make([]model.ClassRef, len(s.classes))
	copy(out, s.classes)
	return out
}

// Catalog returns the subject catalog the grid was built with.
func (s *Schedule) Catalog() *model.SubjectCatalog { return s.catalog }

// Get returns the assignment at the cell, if any.
func (s *Schedule) Get(slot model.TimeSlot, class model.ClassRef) (model.Assignment, bool) {
	a, ok := s.cells[model.Cell{Slot: slot, Class: class}]
	return a, ok
}

// Subject returns the subject at the cell, empty when the cell is.
func (s *Schedule) Subject(slot model.TimeSlot, class model.ClassRef) model.Subject {
	return s.cells[model.Cell{Slot: slot, Class: class}].Subject
}

func (s *Schedule) knownClass(c model.ClassRef) bool {
	for _, kc := range s.classes {
		if kc == c {
			return true
		}
	}
	return false
}

func (s *Schedule) guardMutation(slot model.TimeSlot, class model.ClassRef) error {
	cell := model.Cell{Slot: slot, Class: class}
	if !slot.Valid() {
		return fmt.Errorf("timetable: invalid slot %v", slot)
	}
	if !s.knownClass(class) {
		return fmt.Errorf("timetable: %s: %w", class, ErrUnknownClass)
	}
	if _, locked := s.locked[cell]; locked {
		return fmt.Errorf("timetable: %s: %w", cell, ErrCellLocked)
	}
	if s.IsTestPeriod(slot) && !class.IsJoint() {
		return fmt.Errorf("timetable: %s: %w", cell, ErrTestPeriod)
	}
	return nil
}

// Place writes an assignment into an empty, unlocked cell. Test-period
// slots reject writes for every class except the joint group, which keeps
// normal instruction during exams.
func (s *Schedule) Place(slot model.TimeSlot, class model.ClassRef, a model.Assignment) error {
	if a.Subject.IsZero() {
		return fmt.Errorf("timetable: %w", ErrEmptySubject)
	}
	if err := s.guardMutation(slot, class); err != nil {
		return err
	}
	cell := model.Cell{Slot: slot, Class: class}
	if _, occupied := s.cells[cell]; occupied {
		return fmt.Errorf("timetable: %s: %w", cell, ErrSlotOccupied)
	}

	s.cells[cell] = a
	s.hours[hoursKey{class, a.Subject}]++
	s.daily[dailyKey{class, slot.Day, a.Subject}]++
	if !a.Teacher.IsZero() {
		key := slotTeacherKey{slot, a.Teacher}
		s.teacherAt[key] = append(s.teacherAt[key], class)
	}
	return nil
}

// Remove clears a cell. Locked cells reject removal until explicitly
// unlocked; test-period slots reject it for all but the joint group.
func (s *Schedule) Remove(slot model.TimeSlot, class model.ClassRef) error {
	if err := s.guardMutation(slot, class); err != nil {
		return err
	}
	cell := model.Cell{Slot: slot, Class: class}
	a, ok := s.cells[cell]
	if !ok {
		return nil
	}

	delete(s.cells, cell)
	s.decrementHours(hoursKey{class, a.Subject})
	s.decrementDaily(dailyKey{class, slot.Day, a.Subject})
	if !a.Teacher.IsZero() {
		s.dropTeacherClass(slotTeacherKey{slot, a.Teacher}, class)
	}
	return nil
}

func (s *Schedule) decrementHours(k hoursKey) {
	if s.hours[k] <= 1 {
		delete(s.hours, k)
		return
	}
	s.hours[k]--
}

func (s *Schedule) decrementDaily(k dailyKey) {
	if s.daily[k] <= 1 {
		delete(s.daily, k)
		return
	}
	s.daily[k]--
}

func (s *Schedule) dropTeacherClass(k slotTeacherKey, class model.ClassRef) {
	list := s.teacherAt[k]
	for i, c := range list {
		if c == class {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.teacherAt, k)
		return
	}
	s.teacherAt[k] = list
}

// Lock pins a cell against any further mutation.
func (s *Schedule) Lock(slot model.TimeSlot, class model.ClassRef) {
	s.locked[model.Cell{Slot: slot, Class: class}] = struct{}{}
}

// Unlock is the explicit override that re-opens a locked cell.
func (s *Schedule) Unlock(slot model.TimeSlot, class model.ClassRef) {
	delete(s.locked, model.Cell{Slot: slot, Class: class})
}

// IsLocked reports whether the cell is pinned.
func (s *Schedule) IsLocked(slot model.TimeSlot, class model.ClassRef) bool {
	_, ok := s.locked[model.Cell{Slot: slot, Class: class}]
	return ok
}

// PlaceLocked places and immediately pins, used while loading fixed cells.
func (s *Schedule) PlaceLocked(slot model.TimeSlot, class model.ClassRef, a model.Assignment) error {
	if err := s.Place(slot, class, a); err != nil {
		return err
	}
	s.Lock(slot, class)
	return nil
}

// LockFixed pins every cell currently holding a fixed-protected or
// exam-marker subject and returns how many cells were pinned.
func (s *Schedule) LockFixed() int {
	n := 0
	for cell, a := range s.cells {
		if !s.catalog.IsProtected(a.Subject) {
			continue
		}
		if _, already := s.locked[cell]; already {
			continue
		}
		s.locked[cell] = struct{}{}
		n++
	}
	return n
}

// MarkTestPeriod flags a slot as an exam sitting. Existing content stays;
// later mutations at the slot are rejected for all but the joint group.
func (s *Schedule) MarkTestPeriod(slot model.TimeSlot) {
	s.tests[slot] = struct{}{}
}

// IsTestPeriod reports whether the slot is an exam sitting.
func (s *Schedule) IsTestPeriod(slot model.TimeSlot) bool {
	_, ok := s.tests[slot]
	return ok
}

// TestPeriods returns the flagged slots in week order.
func (s *Schedule) TestPeriods() []model.TimeSlot {
	out := make([]model.TimeSlot, 0, len(s.tests))
	for slot := range s.tests {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// HourCount returns how many hours of the subject the class currently holds.
func (s *Schedule) HourCount(class model.ClassRef, sub model.Subject) int {
	return s.hours[hoursKey{class, sub}]
}

// DailyCount returns how many cells of the subject the class holds on a day.
func (s *Schedule) DailyCount(class model.ClassRef, day model.Day, sub model.Subject) int {
	return s.daily[dailyKey{class, day, sub}]
}

// TeacherClassesAt lists the classes a teacher is assigned to at a slot.
func (s *Schedule) TeacherClassesAt(slot model.TimeSlot, t model.Teacher) []model.ClassRef {
	list := s.teacherAt[slotTeacherKey{slot, t}]
	out := make([]model.ClassRef, len(list))
	copy(out, list)
	return out
}

// TeacherBusy reports whether the teacher already teaches anything at the
// slot.
func (s *Schedule) TeacherBusy(slot model.TimeSlot, t model.Teacher) bool {
	return len(s.teacherAt[slotTeacherKey{slot, t}]) > 0
}

// DailySubjects returns the subjects a class holds on a day, period order.
func (s *Schedule) DailySubjects(class model.ClassRef, day model.Day) []model.Subject {
	var out []model.Subject
	for p := 1; p <= model.PeriodsPerDay; p++ {
		a, ok := s.Get(model.TimeSlot{Day: day, Period: p}, class)
		if ok {
			out = append(out, a.Subject)
		}
	}
	return out
}

// EmptyCells lists all unfilled, unlocked cells in roster-then-week order.
func (s *Schedule) EmptyCells() []model.Cell {
	var out []model.Cell
	for _, class := range s.classes {
		for _, slot := range model.AllSlots() {
			cell := model.Cell{Slot: slot, Class: class}
			if _, filled := s.cells[cell]; filled {
				continue
			}
			if _, locked := s.locked[cell]; locked {
				continue
			}
			if s.IsTestPeriod(slot) && !class.IsJoint() {
				continue
			}
			out = append(out, cell)
		}
	}
	return out
}

// FilledCount returns the number of occupied cells.
func (s *Schedule) FilledCount() int { return len(s.cells) }

// CellCount returns the grid capacity: classes times weekly slots.
func (s *Schedule) CellCount() int {
	return len(s.classes) * len(model.Days) * model.PeriodsPerDay
}

// Clone deep-copies the grid, locks, marks and counters.
func (s *Schedule) Clone() *Schedule {
	c := &Schedule{
		catalog:   s.catalog,
		classes:   append([]model.ClassRef(nil), s.classes...),
		cells:     make(map[model.Cell]model.Assignment, len(s.cells)),
		locked:    make(map[model.Cell]struct{}, len(s.locked)),
		tests:     make(map[model.TimeSlot]struct{}, len(s.tests)),
		teacherAt: make(map[slotTeacherKey][]model.ClassRef, len(s.teacherAt)),
		daily:     make(map[dailyKey]int, len(s.daily)),
		hours:     make(map[hoursKey]int, len(s.hours)),
	}
	for k, v := range s.cells {
		c.cells[k] = v
	}
	for k := range s.locked {
		c.locked[k] = struct{}{}
	}
	for k := range s.tests {
		c.tests[k] = struct{}{}
	}
	for k, v := range s.teacherAt {
		c.teacherAt[k] = append([]model.ClassRef(nil), v...)
	}
	for k, v := range s.daily {
		c.daily[k] = v
	}
	for k, v := range s.hours {
		c.hours[k] = v
	}
	return c
}
