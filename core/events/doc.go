// Package events defines the generation related events emitted on the event bus.
//
// Available event types:
//   - RunEvent: a timetable generation run started
//   - PhaseEvent: one pipeline phase finished
//   - ResultEvent: the run completed with its final score
package events
