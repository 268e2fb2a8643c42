package timetable

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ktakeda47/jikanwari/core/model"
)

// HourRequirement states how many weekly hours of a subject a class must
// receive.
type HourRequirement struct {
	Class   model.ClassRef
	Subject model.Subject
	Hours   int
}

// TeacherAssignment maps one (subject, class) pair to the teacher in charge.
type TeacherAssignment struct {
	Subject model.Subject
	Class   model.ClassRef
	Teacher model.Teacher
}

// TeacherAbsence marks one slot where a teacher cannot teach.
type TeacherAbsence struct {
	Teacher model.Teacher
	Slot    model.TimeSlot
}

// ClassPairing ties an exchange class to its parent homeroom.
type ClassPairing struct {
	Exchange model.ClassRef
	Parent   model.ClassRef
}

// SchoolData is the raw material a loader hands to NewSchool.
type SchoolData struct {
	Classes        []model.ClassRef
	RequiredHours  []HourRequirement
	Assignments    []TeacherAssignment
	Unavailable    []TeacherAbsence
	Pairings       []ClassPairing
	ExemptTeachers []model.Teacher // placeholder names exempt from conflict rules
}

type subjectClassKey struct {
	subject model.Subject
	class   model.ClassRef
}

// School is the static reference aggregate for one timetable generation:
// roster, subject catalog, staffing, required hours and class pairings.
// It is built once by the loader and read-only while the engine runs.
type School struct {
	catalog *model.SubjectCatalog

	classes  []model.ClassRef
	classSet map[model.ClassRef]struct{}
	teachers []model.Teacher

	required     map[model.ClassRef]map[model.Subject]int
	subjectOrder map[model.ClassRef][]model.Subject

	assigned    map[subjectClassKey]model.Teacher
	unavailable map[model.Teacher]map[model.TimeSlot]struct{}

	parentOf   map[model.ClassRef]model.ClassRef
	exchangeOf map[model.ClassRef]model.ClassRef

	exempt map[model.Teacher]struct{}
}

// NewSchool indexes the raw data into a School. Structural problems in the
// data (unknown classes, bad slots) surface here; scheduling feasibility
// gaps are reported later by Validate.
func NewSchool(catalog *model.SubjectCatalog, data SchoolData) (*School, error) {
	if catalog == nil {
		return nil, fmt.Errorf("timetable: nil catalog provided to NewSchool")
	}
	if len(data.Classes) == 0 {
		return nil, fmt.Errorf("timetable: school has no classes")
	}

	s := &School{
		catalog:      catalog,
		classSet:     make(map[model.ClassRef]struct{}, len(data.Classes)),
		required:     make(map[model.ClassRef]map[model.Subject]int),
		subjectOrder: make(map[model.ClassRef][]model.Subject),
		assigned:     make(map[subjectClassKey]model.Teacher),
		unavailable:  make(map[model.Teacher]map[model.TimeSlot]struct{}),
		parentOf:     make(map[model.ClassRef]model.ClassRef),
		exchangeOf:   make(map[model.ClassRef]model.ClassRef),
		exempt:       make(map[model.Teacher]struct{}),
	}

	for _, c := range data.Classes {
		if _, dup := s.classSet[c]; dup {
			return nil, fmt.Errorf("timetable: class %s listed twice", c)
		}
		s.classSet[c] = struct{}{}
		s.classes = append(s.classes, c)
	}

	for _, r := range data.RequiredHours {
		if _, ok := s.classSet[r.Class]; !ok {
			return nil, fmt.Errorf("timetable: required hours refer to unknown class %s", r.Class)
		}
		if r.Hours < 0 {
			return nil, fmt.Errorf("timetable: negative hours for %s %s", r.Class, r.Subject)
		}
		m := s.required[r.Class]
		if m == nil {
			m = make(map[model.Subject]int)
			s.required[r.Class] = m
		}
		if _, dup := m[r.Subject]; !dup {
			s.subjectOrder[r.Class] = append(s.subjectOrder[r.Class], r.Subject)
		}
		m[r.Subject] = r.Hours
	}

	seenTeacher := make(map[model.Teacher]struct{})
	for _, a := range data.Assignments {
		if _, ok := s.classSet[a.Class]; !ok {
			return nil, fmt.Errorf("timetable: staffing refers to unknown class %s", a.Class)
		}
		if a.Teacher.IsZero() {
			return nil, fmt.Errorf("timetable: empty teacher for %s %s", a.Class, a.Subject)
		}
		s.assigned[subjectClassKey{a.Subject, a.Class}] = a.Teacher
		if _, ok := seenTeacher[a.Teacher]; !ok {
			seenTeacher[a.Teacher] = struct{}{}
			s.teachers = append(s.teachers, a.Teacher)
		}
	}

	for _, u := range data.Unavailable {
		if !u.Slot.Valid() {
			return nil, fmt.Errorf("timetable: invalid absence slot %v for %s", u.Slot, u.Teacher)
		}
		s.AddUnavailability(u.Teacher, u.Slot)
	}

	for _, p := range data.Pairings {
		if !p.Exchange.IsExchange() {
			return nil, fmt.Errorf("timetable: pairing source %s is not an exchange class", p.Exchange)
		}
		if _, dup := s.parentOf[p.Exchange]; dup {
			return nil, fmt.Errorf("timetable: exchange class %s paired twice", p.Exchange)
		}
		s.parentOf[p.Exchange] = p.Parent
		s.exchangeOf[p.Parent] = p.Exchange
	}

	for _, t := range data.ExemptTeachers {
		s.exempt[t] = struct{}{}
	}

	return s, nil
}

// Catalog returns the subject category catalog.
func (s *School) Catalog() *model.SubjectCatalog { return s.catalog }

// Classes returns the roster in its original input order.
func (s *School) Classes() []model.ClassRef {
	out := make([]model.ClassRef, len(s.classes))
	copy(out, s.classes)
	return out
}

// HasClass reports whether c is on the roster.
func (s *School) HasClass(c model.ClassRef) bool {
	_, ok := s.classSet[c]
	return ok
}

// Teachers returns all teachers appearing in the staffing table, in first
// appearance order.
func (s *School) Teachers() []model.Teacher {
	out := make([]model.Teacher, len(s.teachers))
	copy(out, s.teachers)
	return out
}

// RequiredHours returns the weekly hour target for a class and subject,
// zero when none is required.
func (s *School) RequiredHours(c model.ClassRef, sub model.Subject) int {
	return s.required[c][sub]
}

// RequiredSubjects lists the subjects a class needs, in input order.
func (s *School) RequiredSubjects(c model.ClassRef) []model.Subject {
	out := make([]model.Subject, len(s.subjectOrder[c]))
	copy(out, s.subjectOrder[c])
	return out
}

// TeacherFor resolves the teacher in charge of a subject for a class.
func (s *School) TeacherFor(sub model.Subject, c model.ClassRef) (model.Teacher, bool) {
	t, ok := s.assigned[subjectClassKey{sub, c}]
	return t, ok
}

// AddUnavailability records one slot a teacher cannot teach. Loaders call
// this while merging absence and meeting facts, before generation starts.
func (s *School) AddUnavailability(t model.Teacher, slot model.TimeSlot) {
	if t.IsZero() {
		return
	}
	m := s.unavailable[t]
	if m == nil {
		m = make(map[model.TimeSlot]struct{})
		s.unavailable[t] = m
	}
	m[slot] = struct{}{}
}

// IsTeacherUnavailable reports whether the teacher is absent or locked out
// of the slot.
func (s *School) IsTeacherUnavailable(t model.Teacher, slot model.TimeSlot) bool {
	_, ok := s.unavailable[t][slot]
	return ok
}

// ParentOf resolves the parent homeroom of an exchange class.
func (s *School) ParentOf(exchange model.ClassRef) (model.ClassRef, bool) {
	p, ok := s.parentOf[exchange]
	return p, ok
}

// ExchangeOf resolves the exchange class paired with a parent homeroom.
func (s *School) ExchangeOf(parent model.ClassRef) (model.ClassRef, bool) {
	e, ok := s.exchangeOf[parent]
	return e, ok
}

// JointGroup returns the synchronized special-needs classes on the roster,
// in roster order.
func (s *School) JointGroup() []model.ClassRef {
	var out []model.ClassRef
	for _, c := range s.classes {
		if c.IsJoint() {
			out = append(out, c)
		}
	}
	return out
}

// IsExemptTeacher reports whether the name is a placeholder exempt from
// conflict rules ("欠課" and kin).
func (s *School) IsExemptTeacher(t model.Teacher) bool {
	_, ok := s.exempt[t]
	return ok
}

// SetupError lists every feasibility gap found during pre-flight validation.
type SetupError struct {
	Gaps []string
}

// Error summarises the gap list.
func (e *SetupError) Error() string {
	if len(e.Gaps) == 1 {
		return "timetable: school setup invalid: " + e.Gaps[0]
	}
	return fmt.Sprintf("timetable: school setup invalid: %d problems, first: %s",
		len(e.Gaps), e.Gaps[0])
}

// Validate checks that generation can start at all: every required teachable
// subject has a capable teacher, pairings resolve to roster classes, and
// weekly demand fits the grid. All gaps are collected so the caller can
// report every problem at once.
func (s *School) Validate() error {
	var gaps []string

	for _, c := range s.classes {
		total := 0
		for _, sub := range s.subjectOrder[c] {
			hours := s.required[c][sub]
			total += hours
			if hours == 0 {
				continue
			}
			if s.catalog.IsFixed(sub) || s.catalog.IsTestMarker(sub) {
				continue
			}
			if _, ok := s.TeacherFor(sub, c); !ok {
				gaps = append(gaps, fmt.Sprintf("no teacher assigned for %s to class %s", sub, c))
			}
		}
		if total > len(model.Days)*model.PeriodsPerDay {
			gaps = append(gaps, fmt.Sprintf("class %s requires %d hours, week holds %d",
				c, total, len(model.Days)*model.PeriodsPerDay))
		}
	}

	for ex, parent := range s.parentOf {
		if !s.HasClass(ex) {
			gaps = append(gaps, fmt.Sprintf("paired exchange class %s is not on the roster", ex))
		}
		if !s.HasClass(parent) {
			gaps = append(gaps, fmt.Sprintf("parent class %s of %s is not on the roster", parent, ex))
		}
		if parent.IsExchange() || parent.IsJoint() {
			gaps = append(gaps, fmt.Sprintf("parent class %s of %s must be a regular homeroom", parent, ex))
		}
	}

	for _, c := range s.classes {
		if c.IsExchange() {
			if _, ok := s.parentOf[c]; !ok {
				gaps = append(gaps, fmt.Sprintf("exchange class %s has no parent pairing", c))
			}
		}
	}

	if len(gaps) == 0 {
		return nil
	}
	sort.Strings(gaps)
	return &SetupError{Gaps: gaps}
}

// DescribeGaps renders a SetupError gap list for logs and CLI output.
func DescribeGaps(err error) string {
	var se *SetupError
	if !errors.As(err, &se) {
		return err.Error()
	}
	return "- " + strings.Join(se.Gaps, "\n- ")
}
