package service

import (
	"context"
	"time"
)

// ObservationHooks captures optional callbacks around an engine operation,
// used to drive metrics without coupling engines to Prometheus directly.
type ObservationHooks struct {
	OnStart    func(ctx context.Context, meta map[string]string)
	OnComplete func(ctx context.Context, meta map[string]string, err error, duration time.Duration)
}

// NoopObservationHooks is the safe default used when no hooks are wired.
var NoopObservationHooks = ObservationHooks{}

// StartObservation triggers OnStart and returns a completion callback that
// triggers OnComplete with the elapsed duration.
func StartObservation(ctx context.Context, hooks ObservationHooks, meta map[string]string) func(error) {
	if hooks.OnStart != nil {
		hooks.OnStart(ctx, meta)
	}
	start := time.Now()
	return func(err error) {
		if hooks.OnComplete != nil {
			hooks.OnComplete(ctx, meta, err, time.Since(start))
		}
	}
}
