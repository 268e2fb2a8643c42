// Package export renders a finished schedule for the outside world:
// machine-readable JSON and the CSV layout the school office imports into
// its spreadsheet.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// Row is one timetable cell in export order.
type Row struct {
	Class   string `json:"class"`
	Day     string `json:"day"`
	Period  int    `json:"period"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher,omitempty"`
	Locked  bool   `json:"locked,omitempty"`
}

// Rows flattens the schedule, classes in roster order and slots in week
// order. Empty cells yield blank rows so every class exports the same
// rectangle.
func Rows(s *timetable.Schedule) []Row {
	classes := s.Classes()
	rows := make([]Row, 0, len(classes)*len(model.Days)*model.PeriodsPerDay)
	for _, class := range classes {
		for _, slot := range model.AllSlots() {
			a, _ := s.Get(slot, class)
			rows = append(rows, Row{
				Class:   class.String(),
				Day:     slot.Day.String(),
				Period:  slot.Period,
				Subject: string(a.Subject),
				Teacher: string(a.Teacher),
				Locked:  s.IsLocked(slot, class),
			})
		}
	}
	return rows
}

// WriteJSON writes the rows to w in JSON format.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteCSV writes the rows to w in CSV format with office-import headers.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"class", "day", "period", "subject", "teacher", "locked"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Class,
			r.Day,
			strconv.Itoa(r.Period),
			r.Subject,
			r.Teacher,
			strconv.FormatBool(r.Locked),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
