// Command controlplane wires the persistence, collaborator, cache, and
// scheduling layers together and runs the background auction clock. It does
// not expose a transport: engines are consumed as Go packages by whatever
// transport layer is deployed alongside this process.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/r3e-network/rwa-control-plane/internal/collaborators"
	"github.com/r3e-network/rwa-control-plane/internal/collaborators/synthetic"
	"github.com/r3e-network/rwa-control-plane/internal/engine/assetlifecycle"
	"github.com/r3e-network/rwa-control-plane/internal/engine/auction"
	"github.com/r3e-network/rwa-control-plane/internal/engine/transaction"
	"github.com/r3e-network/rwa-control-plane/internal/metrics"
	"github.com/r3e-network/rwa-control-plane/internal/platform/database"
	"github.com/r3e-network/rwa-control-plane/internal/platform/migrations"
	"github.com/r3e-network/rwa-control-plane/internal/scheduler"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
	"github.com/r3e-network/rwa-control-plane/internal/storage/memory"
	"github.com/r3e-network/rwa-control-plane/internal/storage/postgres"
	"github.com/r3e-network/rwa-control-plane/pkg/config"
	"github.com/r3e-network/rwa-control-plane/pkg/logger"
)

// Engines is the set of state machines this process constructs and hands to
// whatever transport or batch job consumes them.
type Engines struct {
	AssetLifecycle *assetlifecycle.Service
	Transaction    *transaction.Service
	Auction        *auction.Service
}

func main() {
	dsn := flag.String("dsn", "", "PostgreSQL DSN (overrides config/env; in-memory storage when empty)")
	runMigrations := flag.Bool("migrate", true, "run embedded database migrations on startup (ignored for in-memory)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if trimmed := *dsn; trimmed != "" {
		cfg.Database.DSN = trimmed
	}

	appLog := logger.New(cfg.Logging)

	rootCtx := context.Background()

	store, closeStore, err := buildStore(rootCtx, cfg, *runMigrations, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("build store")
	}
	defer closeStore()

	collabs := synthetic.Set()
	engines := buildEngines(store, collabs, cfg, appLog)

	sched, err := scheduler.New(engines.Auction, cfg.Scheduler.TickInterval.String(), appLog)
	if err != nil {
		appLog.WithError(err).Fatal("build scheduler")
	}

	ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched.Start(ctx)
	appLog.WithField("tick_interval", cfg.Scheduler.TickInterval).Info("control plane running")

	<-ctx.Done()
	appLog.Info("shutting down")
	sched.Stop()
}

// buildStore selects the PostgreSQL-backed Store when a DSN is configured,
// falling back to the in-memory Store for development and tests.
func buildStore(ctx context.Context, cfg *config.Config, runMigrations bool, log *logger.Logger) (storage.Store, func(), error) {
	if cfg.Database.DSN == "" {
		log.Info("no database DSN configured, using in-memory store")
		return memory.New(), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	if runMigrations && cfg.Database.MigrateOnStart {
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	store := postgres.New(sqlxFrom(db))
	return store, func() { db.Close() }, nil
}

func sqlxFrom(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}

func buildEngines(store storage.Store, collabs collaborators.Set, cfg *config.Config, log *logger.Logger) Engines {
	assetHooks := metrics.ObservationHooks("asset_lifecycle", "operation")
	txHooks := metrics.ObservationHooks("transaction", "operation")
	auctionHooks := metrics.ObservationHooks("auction", "operation")

	return Engines{
		AssetLifecycle: assetlifecycle.New(store, collabs.Tokenization, log, assetHooks),
		Transaction:    transaction.New(store, collabs, log, txHooks),
		Auction: auction.New(store, collabs, auction.Config{
			BidIncrementPct:    decimal.NewFromFloat(cfg.Auction.BidIncrementPct),
			MinDurationSeconds: cfg.Auction.MinDurationSeconds,
			MaxDurationSeconds: cfg.Auction.MaxDurationSeconds,
		}, log, auctionHooks),
	}
}
