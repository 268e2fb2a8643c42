package metrics

import "fmt"

// Sink names accepted in configuration.
const (
	SinkNop        = "nop"
	SinkPrometheus = "prometheus"
	SinkInflux     = "influx"
)

// Config selects the sinks that receive generation metrics.
type Config struct {
	Sinks  []string     `json:"sinks"`
	Influx InfluxConfig `json:"influx"`
}

// InfluxConfig locates the InfluxDB bucket run samples are written to.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if len(c.Sinks) == 0 {
		c.Sinks = []string{SinkNop}
	}
}

// Validate checks sink names and that configured sinks have what they need.
func (c *Config) Validate() error {
	for _, name := range c.Sinks {
		switch name {
		case SinkNop, SinkPrometheus:
		case SinkInflux:
			if c.Influx.URL == "" || c.Influx.Bucket == "" {
				return fmt.Errorf("metrics: influx sink needs url and bucket")
			}
		default:
			return fmt.Errorf("metrics: unknown sink %q", name)
		}
	}
	return nil
}
