package config

import (
	"fmt"

	"github.com/ktakeda47/jikanwari/core/constraint"
	"github.com/ktakeda47/jikanwari/core/model"
)

// FixedRule is one pinned-cell entry of the weekly calendar. An empty
// grade list applies the rule to every grade.
type FixedRule struct {
	Day     string `json:"day"`
	Period  int    `json:"period"`
	Subject string `json:"subject"`
	Grades  []int  `json:"grades"`
}

// CalendarConfig holds the pinned-cell table and the weekly-hour
// tolerance the validator reports against.
type CalendarConfig struct {
	FixedRules    []FixedRule `json:"fixed_rules"`
	HourTolerance float64     `json:"hour_tolerance"`
}

// SetDefaults installs the deployed table: Monday 6 closes grades 1 and 2,
// supervised study holds the remaining sixth periods, Friday for all
// grades.
func (c *CalendarConfig) SetDefaults() {
	if len(c.FixedRules) == 0 {
		c.FixedRules = []FixedRule{
			{Day: "mon", Period: 6, Subject: "欠", Grades: []int{1, 2}},
			{Day: "tue", Period: 6, Subject: "YT", Grades: []int{1, 2}},
			{Day: "wed", Period: 6, Subject: "YT", Grades: []int{1, 2}},
			{Day: "fri", Period: 6, Subject: "YT"},
		}
	}
	if c.HourTolerance == 0 {
		c.HourTolerance = 0.5
	}
}

// Validate checks each rule parses, without building it yet.
func (c CalendarConfig) Validate() error {
	_, err := c.Rules()
	return err
}

// Rules converts the table into the validator's rule form.
func (c CalendarConfig) Rules() ([]constraint.FixedPeriodRule, error) {
	rules := make([]constraint.FixedPeriodRule, 0, len(c.FixedRules))
	for _, r := range c.FixedRules {
		day, err := model.ParseDay(r.Day)
		if err != nil {
			return nil, fmt.Errorf("config: fixed rule: %w", err)
		}
		slot, err := model.NewTimeSlot(day, r.Period)
		if err != nil {
			return nil, fmt.Errorf("config: fixed rule: %w", err)
		}
		if r.Subject == "" {
			return nil, fmt.Errorf("config: fixed rule at %s has no subject", slot)
		}
		rules = append(rules, constraint.FixedPeriodRule{
			Slot:    slot,
			Subject: model.Subject(r.Subject),
			Grades:  r.Grades,
		})
	}
	return rules, nil
}
