package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Class numbers with special scheduling behaviour.
const (
	jointClassNumber = 5
	exchangeNumberLo = 6
	exchangeNumberHi = 7
)

// ClassRef identifies a homeroom group by grade and class number.
// Number 5 is the special-needs joint class synchronized across grades;
// numbers 6 and 7 are exchange classes tied to a parent homeroom.
type ClassRef struct {
	Grade  int
	Number int
}

// NewClassRef builds a reference and validates the grade range.
func NewClassRef(grade, number int) (ClassRef, error) {
	if grade < 1 || grade > 3 {
		return ClassRef{}, fmt.Errorf("model: grade %d out of range 1..3", grade)
	}
	if number < 1 {
		return ClassRef{}, fmt.Errorf("model: class number %d must be positive", number)
	}
	return ClassRef{Grade: grade, Number: number}, nil
}

// ParseClassRef reads the "grade-number" form used throughout input files,
// e.g. "2-3" or "1-6".
func ParseClassRef(s string) (ClassRef, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return ClassRef{}, fmt.Errorf("model: malformed class reference %q", s)
	}
	grade, err := strconv.Atoi(parts[0])
	if err != nil {
		return ClassRef{}, fmt.Errorf("model: malformed class grade in %q", s)
	}
	number, err := strconv.Atoi(parts[1])
	if err != nil {
		return ClassRef{}, fmt.Errorf("model: malformed class number in %q", s)
	}
	return NewClassRef(grade, number)
}

// String renders the reference as "grade-number".
func (c ClassRef) String() string {
	return fmt.Sprintf("%d-%d", c.Grade, c.Number)
}

// IsZero reports whether the reference is unset.
func (c ClassRef) IsZero() bool {
	return c.Grade == 0 && c.Number == 0
}

// IsJoint reports whether the class belongs to the synchronized joint group.
func (c ClassRef) IsJoint() bool {
	return c.Number == jointClassNumber
}

// IsExchange reports whether the class is an exchange class paired with a
// parent homeroom.
func (c ClassRef) IsExchange() bool {
	return c.Number == exchangeNumberLo || c.Number == exchangeNumberHi
}

// IsRegular reports whether the class is an ordinary homeroom, neither joint
// nor exchange.
func (c ClassRef) IsRegular() bool {
	return !c.IsJoint() && !c.IsExchange()
}

// Less orders references by grade then number, matching roster order.
func (c ClassRef) Less(other ClassRef) bool {
	if c.Grade != other.Grade {
		return c.Grade < other.Grade
	}
	return c.Number < other.Number
}
