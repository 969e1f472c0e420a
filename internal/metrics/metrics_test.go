package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObservationHooks_TracksInFlightAndDuration(t *testing.T) {
	hooks := ObservationHooks("test_subsystem_inflight", "operation")
	meta := map[string]string{"asset_id": "a-1"}
	ctx := context.Background()

	hooks.OnStart(ctx, meta)

	collector := collectors["test_subsystem_inflight:operation"]
	gauge := collector.inFlight.WithLabelValues("a-1")
	if v := gaugeValue(t, gauge); v != 1 {
		t.Fatalf("expected in-flight gauge to read 1, got %v", v)
	}

	hooks.OnComplete(ctx, meta, nil, 10*time.Millisecond)
	if v := gaugeValue(t, gauge); v != 0 {
		t.Fatalf("expected in-flight gauge to return to 0, got %v", v)
	}
}

func TestObservationHooks_ReusesCollectorForSameKey(t *testing.T) {
	first := ObservationHooks("test_subsystem_reuse", "operation")
	second := ObservationHooks("test_subsystem_reuse", "operation")

	meta := map[string]string{"transaction_id": "tx-1"}
	first.OnStart(context.Background(), meta)
	second.OnComplete(context.Background(), meta, nil, time.Millisecond)

	collector := collectors["test_subsystem_reuse:operation"]
	gauge := collector.inFlight.WithLabelValues("tx-1")
	if v := gaugeValue(t, gauge); v != 0 {
		t.Fatalf("expected the two hooks instances to share one collector, got %v", v)
	}
}

func TestResourceLabel_FallsBackToUnknown(t *testing.T) {
	if got := resourceLabel(map[string]string{}); got != "unknown" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
	if got := resourceLabel(map[string]string{"bid_id": "b-1"}); got != "b-1" {
		t.Fatalf("expected bid_id to be picked up, got %q", got)
	}
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}
