package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/ktakeda47/jikanwari/core/metrics"
	"github.com/ktakeda47/jikanwari/infra/logger"
)

// InfluxSink writes generation samples to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails, so a missing database never stops a
// generation run.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run summary as one point.
func (s *InfluxSink) RecordRun(r coremetrics.RunSample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("generation_run").
		AddTag("run_id", r.RunID).
		AddTag("seed", strconv.FormatInt(r.Seed, 10)).
		AddField("score", round3(r.Score)).
		AddField("violations", r.Violations).
		AddField("jiritsu_violations", r.JiritsuViolations).
		AddField("filled_cells", r.FilledCells).
		AddField("total_cells", r.TotalCells).
		AddField("fill_rate", round3(r.FillRate())).
		AddField("duration_ms", r.Duration.Milliseconds()).
		SetTime(r.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPhase writes one pipeline phase sample.
func (s *InfluxSink) RecordPhase(ph coremetrics.PhaseSample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("generation_phase").
		AddTag("run_id", ph.RunID).
		AddTag("phase", ph.Phase).
		AddField("duration_ms", ph.Duration.Milliseconds()).
		AddField("placed", ph.Placed).
		AddField("infeasible", ph.Infeasible).
		SetTime(ph.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordOptimizer writes the swap search summary.
func (s *InfluxSink) RecordOptimizer(o coremetrics.OptimizerSample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("generation_optimizer").
		AddTag("run_id", o.RunID).
		AddField("iterations", o.Iterations).
		AddField("attempted", o.Attempted).
		AddField("accepted", o.Accepted).
		AddField("kicks", o.Kicks).
		AddField("initial_score", round3(o.InitialScore)).
		AddField("final_score", round3(o.FinalScore)).
		SetTime(o.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
