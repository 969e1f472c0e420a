// Package metrics wires engine operations to Prometheus via the
// core.ObservationHooks factory, so AssetLifecycle, TransactionEngine, and
// AuctionEngine stay unaware of the metrics backend.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	core "github.com/r3e-network/rwa-control-plane/internal/core/service"
)

// Registry holds the control plane's Prometheus collectors.
var Registry = prometheus.NewRegistry()

var (
	collectorsMu sync.Mutex
	collectors   = map[string]observationCollector{}
)

type observationCollector struct {
	inFlight *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

// ObservationHooks builds core.ObservationHooks backed by a per-subsystem
// Prometheus gauge+histogram pair, registered lazily on first use.
func ObservationHooks(subsystem, operation string) core.ObservationHooks {
	key := subsystem + ":" + operation
	collector := lookupOrCreate(key, subsystem, operation)

	return core.ObservationHooks{
		OnStart: func(_ context.Context, meta map[string]string) {
			collector.inFlight.WithLabelValues(resourceLabel(meta)).Inc()
		},
		OnComplete: func(_ context.Context, meta map[string]string, err error, duration time.Duration) {
			label := resourceLabel(meta)
			collector.inFlight.WithLabelValues(label).Dec()
			status := "success"
			if err != nil {
				status = "error"
			}
			collector.duration.WithLabelValues(label, status).Observe(duration.Seconds())
		},
	}
}

func lookupOrCreate(key, subsystem, operation string) observationCollector {
	collectorsMu.Lock()
	defer collectorsMu.Unlock()
	if c, ok := collectors[key]; ok {
		return c
	}
	c := observationCollector{
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rwa_control_plane",
			Subsystem: subsystem,
			Name:      operation + "_in_flight",
			Help:      "Current in-flight " + operation + " operations for " + subsystem + ".",
		}, []string{"resource"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rwa_control_plane",
			Subsystem: subsystem,
			Name:      operation + "_duration_seconds",
			Help:      "Duration of " + operation + " operations for " + subsystem + ".",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"resource", "status"}),
	}
	Registry.MustRegister(c.inFlight, c.duration)
	collectors[key] = c
	return c
}

func resourceLabel(meta map[string]string) string {
	for _, key := range []string{"asset_id", "transaction_id", "auction_id", "bid_id"} {
		if v, ok := meta[key]; ok && v != "" {
			return v
		}
	}
	return "unknown"
}

// AssetLifecycleHooks instruments AssetLifecycle operations.
func AssetLifecycleHooks() core.ObservationHooks { return ObservationHooks("asset_lifecycle", "operation") }

// TransactionEngineHooks instruments TransactionEngine operations.
func TransactionEngineHooks() core.ObservationHooks {
	return ObservationHooks("transaction_engine", "operation")
}

// AuctionEngineHooks instruments AuctionEngine operations.
func AuctionEngineHooks() core.ObservationHooks { return ObservationHooks("auction_engine", "operation") }

// SchedulerTickHooks instruments a single scheduler tick.
func SchedulerTickHooks() core.ObservationHooks { return ObservationHooks("scheduler", "tick") }
