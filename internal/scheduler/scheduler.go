// Package scheduler drives the time-based transitions AuctionEngine cannot
// trigger on its own: activating SCHEDULED auctions and ending ACTIVE ones
// once their window passes. It runs AuctionEngine.Tick on a fixed cron
// schedule rather than hand-parsing cron expressions per trigger.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/r3e-network/rwa-control-plane/pkg/logger"
)

// Ticker is the subset of AuctionEngine the scheduler depends on.
type Ticker interface {
	Tick(ctx context.Context) (activated, ended int, err error)
}

// Scheduler runs Ticker.Tick on a cron schedule until Stop is called.
type Scheduler struct {
	cron   *cron.Cron
	ticker Ticker
	log    *logger.Logger

	mu      sync.Mutex
	running bool
}

// New builds a Scheduler that fires every tickInterval (an "@every ..."
// duration spec, e.g. "30s") against ticker.
func New(ticker Ticker, tickInterval string, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.NewDefault("scheduler")
	}
	c := cron.New()
	s := &Scheduler{cron: c, ticker: ticker, log: log}

	spec := fmt.Sprintf("@every %s", tickInterval)
	if _, err := c.AddFunc(spec, s.runTick); err != nil {
		return nil, fmt.Errorf("scheduler: invalid tick interval %q: %w", tickInterval, err)
	}
	return s, nil
}

func (s *Scheduler) runTick() {
	ctx := context.Background()
	activated, ended, err := s.ticker.Tick(ctx)
	if err != nil {
		s.log.WithError(err).Error("auction tick failed")
		return
	}
	if activated > 0 || ended > 0 {
		s.log.WithField("activated", activated).WithField("ended", ended).Info("auction tick completed")
	}
}

// Start begins the cron scheduler in the background. Safe to call once;
// subsequent calls are no-ops.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop halts the cron scheduler, waiting for any in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}
