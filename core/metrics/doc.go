// Package metrics defines the sink interfaces for recording generation
// outcomes. Sinks like PromSink and InfluxSink live under infra/metrics
// and can be combined with NewMultiSink; the infra factory returns a
// MultiSink automatically when multiple sinks are configured. NopSink
// discards everything and is the default.
package metrics
