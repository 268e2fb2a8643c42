package metrics

import (
	"fmt"

	coremetrics "github.com/ktakeda47/jikanwari/core/metrics"
)

// NewSink builds the configured sink set. One configured sink is returned
// directly; several are wrapped in a MultiSink; none yields a NopSink.
func NewSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	for _, name := range cfg.Sinks {
		switch name {
		case coremetrics.SinkNop:
			sinks = append(sinks, coremetrics.NopSink{})
		case coremetrics.SinkPrometheus:
			s, err := NewPromSink()
			if err != nil {
				return nil, fmt.Errorf("metrics: prometheus sink: %w", err)
			}
			sinks = append(sinks, s)
		case coremetrics.SinkInflux:
			sinks = append(sinks, NewInfluxSinkWithFallback(
				cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket))
		default:
			return nil, fmt.Errorf("metrics: unknown sink %q", name)
		}
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
