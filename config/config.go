// Package config loads the application configuration: engine tuning,
// subject categories, the fixed-period calendar, evaluator weights and
// the observability sections. School data (roster, hours, staffing)
// lives in its own file read by infra/loader.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ktakeda47/jikanwari/core/engine"
	"github.com/ktakeda47/jikanwari/core/evaluator"
	"github.com/ktakeda47/jikanwari/core/metrics"
	"github.com/ktakeda47/jikanwari/core/runlog"
)

type Config struct {
	SchoolFile string            `json:"school_file"`
	Engine     engine.Config     `json:"engine"`
	Weights    evaluator.Weights `json:"weights"`
	Subjects   SubjectsConfig    `json:"subjects"`
	Calendar   CalendarConfig    `json:"calendar"`
	Metrics    metrics.Config    `json:"metrics"`
	RunLog     runlog.Config     `json:"runlog"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("JW_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "jw_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every unset section with the deployed defaults.
func (c *Config) SetDefaults() {
	c.Engine.SetDefaults()
	if c.Weights == (evaluator.Weights{}) {
		c.Weights = evaluator.DefaultWeights()
	}
	c.Subjects.SetDefaults()
	c.Calendar.SetDefaults()
	c.Metrics.SetDefaults()
	c.RunLog.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Calendar.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return c.RunLog.Validate()
}
