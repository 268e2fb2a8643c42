package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	coremetrics "github.com/ktakeda47/jikanwari/core/metrics"
)

func TestInfluxSink_RecordRun(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer func() { _ = sink.Close() }()

	err := sink.RecordRun(coremetrics.RunSample{
		RunID:       "run-1",
		Seed:        42,
		Score:       10.5,
		Violations:  3,
		FilledCells: 150,
		TotalCells:  180,
		Duration:    time.Second,
		Time:        time.Now(),
	})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}

	if !strings.Contains(body, "generation_run") {
		t.Errorf("measurement missing from line protocol: %q", body)
	}
	if !strings.Contains(body, "run_id=run-1") {
		t.Errorf("run_id tag missing: %q", body)
	}
	if !strings.Contains(body, "score=10.5") {
		t.Errorf("score field missing: %q", body)
	}
}

func TestInfluxSink_RecordPhase(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer func() { _ = sink.Close() }()

	err := sink.RecordPhase(coremetrics.PhaseSample{
		RunID:    "run-1",
		Phase:    "jiritsu",
		Duration: 30 * time.Millisecond,
		Placed:   6,
		Time:     time.Now(),
	})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	if !strings.Contains(body, "generation_phase") || !strings.Contains(body, "phase=jiritsu") {
		t.Errorf("phase point malformed: %q", body)
	}
}

func TestInfluxSinkWithFallbackReturnsNopWhenUnreachable(t *testing.T) {
	sink := NewInfluxSinkWithFallback("http://127.0.0.1:1", "t", "o", "b")
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback, got %T", sink)
	}
}
