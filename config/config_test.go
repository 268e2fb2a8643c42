package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ktakeda47/jikanwari/core/model"
	"github.com/ktakeda47/jikanwari/core/runlog"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `school_file: "school.yaml"
engine:
  max_iterations: 250
  randomness_level: 0.5
  seed: 7
  allow_soft_constraints: true
weights:
  critical: 500
  high: 50
  medium: 5
  low: 1
  jiritsu: 500
  workload: 0.05
calendar:
  hour_tolerance: 1.0
  fixed_rules:
    - day: "mon"
      period: 6
      subject: "欠"
      grades: [1, 2]
metrics:
  sinks:
    - "nop"
runlog:
  backend: "jsonl"
  path: "runs.jsonl"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"school_file", cfg.SchoolFile, "school.yaml"},
		{"engine.max_iterations", cfg.Engine.MaxIterations, 250},
		{"engine.randomness_level", cfg.Engine.RandomnessLevel, 0.5},
		{"engine.seed", cfg.Engine.Seed, int64(7)},
		{"engine.allow_soft_constraints", cfg.Engine.AllowSoftConstraints, true},
		{"engine.swaps_per_iter default", cfg.Engine.SwapsPerIter, 21},
		{"weights.critical", cfg.Weights.Critical, 500.0},
		{"weights.workload", cfg.Weights.Workload, 0.05},
		{"calendar.hour_tolerance", cfg.Calendar.HourTolerance, 1.0},
		{"calendar rule count", len(cfg.Calendar.FixedRules), 1},
		{"metrics sink", cfg.Metrics.Sinks[0], "nop"},
		{"runlog.backend", cfg.RunLog.Backend, runlog.BackendJSONL},
		{"runlog.path", cfg.RunLog.Path, "runs.jsonl"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "config.json", `{"school_file": "school.json"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Weights.Critical != 1000 {
		t.Errorf("default critical weight: %v", cfg.Weights.Critical)
	}
	if len(cfg.Calendar.FixedRules) != 4 {
		t.Fatalf("default calendar rules: %d", len(cfg.Calendar.FixedRules))
	}
	if cfg.Calendar.FixedRules[0].Subject != "欠" {
		t.Errorf("first default rule subject: %s", cfg.Calendar.FixedRules[0].Subject)
	}
	if cfg.RunLog.Backend != runlog.BackendNone {
		t.Errorf("default runlog backend: %s", cfg.RunLog.Backend)
	}
	if cfg.Engine.MaxIterations != 100 {
		t.Errorf("default iteration budget: %d", cfg.Engine.MaxIterations)
	}

	catalog := cfg.Subjects.Catalog()
	if !catalog.IsProtected("道徳") {
		t.Error("long moral-education spelling should be protected by default")
	}
	if !catalog.IsSelfReliance("生単") {
		t.Error("生単 should be in the self-reliance family by default")
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an unsupported-format error")
	}
}

func TestLoadRejectsBadCalendar(t *testing.T) {
	path := writeConfig(t, "config.yaml", `calendar:
  fixed_rules:
    - day: "someday"
      period: 6
      subject: "欠"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected a day parse error")
	}
}

func TestCalendarRules(t *testing.T) {
	var cal CalendarConfig
	cal.SetDefaults()
	rules, err := cal.Rules()
	if err != nil {
		t.Fatalf("rules error: %v", err)
	}
	if len(rules) != 4 {
		t.Fatalf("rule count: %d", len(rules))
	}
	mon6 := model.TimeSlot{Day: model.Monday, Period: 6}
	if rules[0].Slot != mon6 || rules[0].Subject != "欠" {
		t.Errorf("first rule: %+v", rules[0])
	}
	if !rules[0].AppliesTo(1) || rules[0].AppliesTo(3) {
		t.Error("Monday 6 closure must cover grades 1-2 only")
	}
	last := rules[3]
	if last.Slot.Day != model.Friday || !last.AppliesTo(3) {
		t.Errorf("Friday supervised study must cover every grade: %+v", last)
	}
}
