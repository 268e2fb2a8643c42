// Package loader reads the school data file: the class roster, weekly
// hour requirements, staffing, teacher absences and the pairing table,
// plus the facts that seed the initial schedule (test periods and
// pre-locked meeting cells).
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/timetable"
)

// HourEntry is one weekly requirement row.
type HourEntry struct {
	Class   string `json:"class"`
	Subject string `json:"subject"`
	Hours   int    `json:"hours"`
}

// TeacherEntry assigns one teacher to a subject for the listed classes.
type TeacherEntry struct {
	Subject string   `json:"subject"`
	Teacher string   `json:"teacher"`
	Classes []string `json:"classes"`
}

// AbsenceEntry blocks a teacher's slots. An empty period list blocks the
// whole day.
type AbsenceEntry struct {
	Teacher string `json:"teacher"`
	Day     string `json:"day"`
	Periods []int  `json:"periods"`
}

// PairingEntry ties an exchange class to its parent homeroom.
type PairingEntry struct {
	Exchange string `json:"exchange"`
	Parent   string `json:"parent"`
}

// SlotEntry names one cell column of the weekly grid.
type SlotEntry struct {
	Day    string `json:"day"`
	Period int    `json:"period"`
}

// MeetingEntry pre-locks one cell, e.g. a staff meeting or an assembly.
// An empty class list covers the whole roster.
type MeetingEntry struct {
	Classes []string `json:"classes"`
	Day     string   `json:"day"`
	Period  int      `json:"period"`
	Subject string   `json:"subject"`
	Teacher string   `json:"teacher"`
}

// File is the school data document as written by the school office.
type File struct {
	Classes        []string       `json:"classes"`
	Hours          []HourEntry    `json:"hours"`
	Teachers       []TeacherEntry `json:"teachers"`
	Absences       []AbsenceEntry `json:"absences"`
	Pairings       []PairingEntry `json:"pairings"`
	ExemptTeachers []string       `json:"exempt_teachers"`
	TestPeriods    []SlotEntry    `json:"test_periods"`
	Meetings       []MeetingEntry `json:"meetings"`
}

// Load reads the school data file and builds the school plus the initial
// schedule holding its test-period marks and pre-locked meetings.
func Load(path string, catalog *model.SubjectCatalog) (*timetable.School, *timetable.Schedule, error) {
	if catalog == nil {
		return nil, nil, fmt.Errorf("loader: nil catalog provided to Load")
	}
	f, err := read(path)
	if err != nil {
		return nil, nil, err
	}
	return Build(f, catalog)
}

func read(path string) (*File, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("loader: unsupported school file format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	var f File
	if err := k.UnmarshalWithConf("", &f, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return &f, nil
}

// Build turns a parsed document into the school aggregate and the seeded
// initial schedule.
func Build(f *File, catalog *model.SubjectCatalog) (*timetable.School, *timetable.Schedule, error) {
	data, err := schoolData(f)
	if err != nil {
		return nil, nil, err
	}
	school, err := timetable.NewSchool(catalog, data)
	if err != nil {
		return nil, nil, err
	}
	initial, err := seedSchedule(f, school)
	if err != nil {
		return nil, nil, err
	}
	return school, initial, nil
}

func schoolData(f *File) (timetable.SchoolData, error) {
	var data timetable.SchoolData
	for _, name := range f.Classes {
		class, err := model.ParseClassRef(name)
		if err != nil {
			return data, fmt.Errorf("loader: class list: %w", err)
		}
		data.Classes = append(data.Classes, class)
	}

	for _, h := range f.Hours {
		class, err := model.ParseClassRef(h.Class)
		if err != nil {
			return data, fmt.Errorf("loader: hours: %w", err)
		}
		if h.Subject == "" {
			return data, fmt.Errorf("loader: hours entry for %s has no subject", h.Class)
		}
		data.RequiredHours = append(data.RequiredHours, timetable.HourRequirement{
			Class:   class,
			Subject: model.Subject(h.Subject),
			Hours:   h.Hours,
		})
	}

	for _, te := range f.Teachers {
		if len(te.Classes) == 0 {
			return data, fmt.Errorf("loader: staffing for %s by %s lists no classes", te.Subject, te.Teacher)
		}
		for _, name := range te.Classes {
			class, err := model.ParseClassRef(name)
			if err != nil {
				return data, fmt.Errorf("loader: staffing: %w", err)
			}
			data.Assignments = append(data.Assignments, timetable.TeacherAssignment{
				Subject: model.Subject(te.Subject),
				Class:   class,
				Teacher: model.Teacher(te.Teacher),
			})
		}
	}

	for _, a := range f.Absences {
		day, err := model.ParseDay(a.Day)
		if err != nil {
			return data, fmt.Errorf("loader: absence for %s: %w", a.Teacher, err)
		}
		periods := a.Periods
		if len(periods) == 0 {
			for p := 1; p <= model.PeriodsPerDay; p++ {
				periods = append(periods, p)
			}
		}
		for _, p := range periods {
			slot, err := model.NewTimeSlot(day, p)
			if err != nil {
				return data, fmt.Errorf("loader: absence for %s: %w", a.Teacher, err)
			}
			data.Unavailable = append(data.Unavailable, timetable.TeacherAbsence{
				Teacher: model.Teacher(a.Teacher),
				Slot:    slot,
			})
		}
	}

	for _, p := range f.Pairings {
		exchange, err := model.ParseClassRef(p.Exchange)
		if err != nil {
			return data, fmt.Errorf("loader: pairing: %w", err)
		}
		parent, err := model.ParseClassRef(p.Parent)
		if err != nil {
			return data, fmt.Errorf("loader: pairing: %w", err)
		}
		data.Pairings = append(data.Pairings, timetable.ClassPairing{
			Exchange: exchange,
			Parent:   parent,
		})
	}

	for _, name := range f.ExemptTeachers {
		data.ExemptTeachers = append(data.ExemptTeachers, model.Teacher(name))
	}
	return data, nil
}

func seedSchedule(f *File, school *timetable.School) (*timetable.Schedule, error) {
	s := timetable.NewSchedule(school)
	for _, tp := range f.TestPeriods {
		day, err := model.ParseDay(tp.Day)
		if err != nil {
			return nil, fmt.Errorf("loader: test period: %w", err)
		}
		slot, err := model.NewTimeSlot(day, tp.Period)
		if err != nil {
			return nil, fmt.Errorf("loader: test period: %w", err)
		}
		s.MarkTestPeriod(slot)
	}

	for _, m := range f.Meetings {
		day, err := model.ParseDay(m.Day)
		if err != nil {
			return nil, fmt.Errorf("loader: meeting: %w", err)
		}
		slot, err := model.NewTimeSlot(day, m.Period)
		if err != nil {
			return nil, fmt.Errorf("loader: meeting: %w", err)
		}
		classes := school.Classes()
		if len(m.Classes) > 0 {
			classes = make([]model.ClassRef, 0, len(m.Classes))
			for _, name := range m.Classes {
				class, err := model.ParseClassRef(name)
				if err != nil {
					return nil, fmt.Errorf("loader: meeting: %w", err)
				}
				classes = append(classes, class)
			}
		}
		a := model.NewAssignment(model.Subject(m.Subject), model.Teacher(m.Teacher))
		for _, class := range classes {
			if err := s.PlaceLocked(slot, class, a); err != nil {
				return nil, fmt.Errorf("loader: meeting at %s for %s: %w", slot, class, err)
			}
		}
	}
	return s, nil
}
