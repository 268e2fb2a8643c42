package model

import "sort"

// Priority ranks constraint rules. Higher values dominate the weighted
// schedule score; CRITICAL rules are never knowingly violated by placement.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns the conventional upper-case rank name.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	default:
		return "unknown"
	}
}

// Violation reports one broken rule instance found in a schedule.
type Violation struct {
	Constraint string   // rule name, e.g. "teacher_conflict"
	Priority   Priority
	Cells      []Cell   // every cell involved
	Subject    Subject  // subject in question, when meaningful
	Teacher    Teacher  // teacher in question, when meaningful
	Message    string   // human-readable description
}

// SortViolations orders violations by descending priority, then by the first
// affected cell, giving reports and tests a stable order.
func SortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Priority != vs[j].Priority {
			return vs[i].Priority > vs[j].Priority
		}
		ci, cj := firstCell(vs[i]), firstCell(vs[j])
		if ci.Slot.Index() != cj.Slot.Index() {
			return ci.Slot.Index() < cj.Slot.Index()
		}
		if ci.Class != cj.Class {
			return ci.Class.Less(cj.Class)
		}
		return vs[i].Constraint < vs[j].Constraint
	})
}

func firstCell(v Violation) Cell {
	if len(v.Cells) == 0 {
		return Cell{}
	}
	return v.Cells[0]
}

// CountByPriority tallies violations per priority rank.
func CountByPriority(vs []Violation) map[Priority]int {
	counts := make(map[Priority]int, 4)
	for _, v := range vs {
		counts[v.Priority]++
	}
	return counts
}
