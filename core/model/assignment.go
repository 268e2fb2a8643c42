package model

import "fmt"

// Assignment is the content of one timetable cell: a subject and the teacher
// delivering it. Teacher may be empty when no teacher could be resolved.
type Assignment struct {
	Subject Subject
	Teacher Teacher
}

// NewAssignment pairs a subject with an optional teacher.
func NewAssignment(subject Subject, teacher Teacher) Assignment {
	return Assignment{Subject: subject, Teacher: teacher}
}

// IsZero reports whether the cell content is empty.
func (a Assignment) IsZero() bool {
	return a.Subject.IsZero() && a.Teacher.IsZero()
}

// String renders "subject(teacher)" or just the subject.
func (a Assignment) String() string {
	if a.Teacher.IsZero() {
		return a.Subject.String()
	}
	return fmt.Sprintf("%s(%s)", a.Subject, a.Teacher)
}

// Cell addresses one position of the weekly grid.
type Cell struct {
	Slot  TimeSlot
	Class ClassRef
}

// String renders "Mon-1 2-3".
func (c Cell) String() string {
	return fmt.Sprintf("%s %s", c.Slot, c.Class)
}
