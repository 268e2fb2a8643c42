package model

import (
	"fmt"
	"strings"
)

// Day identifies a school day within the teaching week.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// PeriodsPerDay is the number of teaching periods on every school day.
const PeriodsPerDay = 6

// Days lists the teaching week in order.
var Days = [...]Day{Monday, Tuesday, Wednesday, Thursday, Friday}

// String returns the short English day name.
func (d Day) String() string {
	switch d {
	case Monday:
		return "Mon"
	case Tuesday:
		return "Tue"
	case Wednesday:
		return "Wed"
	case Thursday:
		return "Thu"
	case Friday:
		return "Fri"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the five teaching days.
func (d Day) Valid() bool {
	return d >= Monday && d <= Friday
}

// ParseDay resolves English and Japanese day spellings used in input files.
func ParseDay(s string) (Day, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mon", "monday", "月", "月曜", "月曜日":
		return Monday, nil
	case "tue", "tuesday", "火", "火曜", "火曜日":
		return Tuesday, nil
	case "wed", "wednesday", "水", "水曜", "水曜日":
		return Wednesday, nil
	case "thu", "thursday", "木", "木曜", "木曜日":
		return Thursday, nil
	case "fri", "friday", "金", "金曜", "金曜日":
		return Friday, nil
	}
	return 0, fmt.Errorf("model: unknown day %q", s)
}

// TimeSlot is one cell column of the weekly grid: a day and a period number.
// It is a value type; two slots are equal when both fields match.
type TimeSlot struct {
	Day    Day
	Period int // 1-based, 1..PeriodsPerDay
}

// NewTimeSlot builds a slot and validates its range.
func NewTimeSlot(d Day, period int) (TimeSlot, error) {
	if !d.Valid() {
		return TimeSlot{}, fmt.Errorf("model: invalid day %d", int(d))
	}
	if period < 1 || period > PeriodsPerDay {
		return TimeSlot{}, fmt.Errorf("model: period %d out of range 1..%d", period, PeriodsPerDay)
	}
	return TimeSlot{Day: d, Period: period}, nil
}

// String renders the slot as "Mon-1".
func (t TimeSlot) String() string {
	return fmt.Sprintf("%s-%d", t.Day, t.Period)
}

// Valid reports whether the slot lies inside the weekly grid.
func (t TimeSlot) Valid() bool {
	return t.Day.Valid() && t.Period >= 1 && t.Period <= PeriodsPerDay
}

// Index returns a stable ordinal for sorting, Monday period 1 first.
func (t TimeSlot) Index() int {
	return int(t.Day)*PeriodsPerDay + t.Period - 1
}

// AllSlots enumerates the weekly grid in Monday-period-1 order.
func AllSlots() []TimeSlot {
	slots := make([]TimeSlot, 0, len(Days)*PeriodsPerDay)
	for _, d := range Days {
		for p := 1; p <= PeriodsPerDay; p++ {
			slots = append(slots, TimeSlot{Day: d, Period: p})
		}
	}
	return slots
}
