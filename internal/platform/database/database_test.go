package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/r3e-network/rwa-control-plane/pkg/config"
)

func TestOpen_FailsPingOnUnreachableHost(t *testing.T) {
	cfg := config.DatabaseConfig{
		DSN:          "host=127.0.0.1 port=1 dbname=nope sslmode=disable connect_timeout=1",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := Open(ctx, cfg)
	if err == nil {
		t.Fatal("expected an error connecting to an unreachable database")
	}
	if !strings.Contains(err.Error(), "ping database") {
		t.Fatalf("expected ping failure to be wrapped with context, got: %v", err)
	}
}

func TestOpen_RejectsMalformedDSN(t *testing.T) {
	cfg := config.DatabaseConfig{DSN: "://not a dsn"}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Open(ctx, cfg)
	if err == nil {
		t.Fatal("expected an error for a malformed DSN")
	}
}
