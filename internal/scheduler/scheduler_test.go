package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTicker struct {
	calls int32
}

func (f *fakeTicker) Tick(ctx context.Context) (int, int, error) {
	atomic.AddInt32(&f.calls, 1)
	return 1, 0, nil
}

func TestNew_RejectsInvalidTickInterval(t *testing.T) {
	if _, err := New(&fakeTicker{}, "not-a-duration", nil); err == nil {
		t.Fatal("expected an error for an invalid tick interval")
	}
}

func TestScheduler_RunsTickerOnSchedule(t *testing.T) {
	ticker := &fakeTicker{}
	s, err := New(ticker, "100ms", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	defer cancel()

	deadline := time.After(2 * time.Second)
	for {
		if atomic.LoadInt32(&ticker.calls) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expected at least one tick within 2s")
		case <-time.After(20 * time.Millisecond):
		}
	}

	s.Stop()
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	s, err := New(&fakeTicker{}, "1s", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	s.Start(ctx)
	s.Stop()
	s.Stop()
}
