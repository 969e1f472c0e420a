package cache

import (
	"context"
	"testing"
	"time"
)

type payload struct {
	Signature string `json:"signature"`
}

func TestMemoryCache_PutGetRoundtrip(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	key := Key("escrow", "tx-1")

	var dest payload
	if ok, err := c.Get(ctx, key, &dest); err != nil || ok {
		t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Put(ctx, key, payload{Signature: "sig-abc"}, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	ok, err := c.Get(ctx, key, &dest)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if dest.Signature != "sig-abc" {
		t.Fatalf("expected sig-abc, got %q", dest.Signature)
	}
}

func TestMemoryCache_ExpiresEntries(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	key := Key("payment", "tx-2")

	if err := c.Put(ctx, key, payload{Signature: "sig-expired"}, time.Millisecond); err != nil {
		t.Fatalf("put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var dest payload
	ok, err := c.Get(ctx, key, &dest)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected cache miss after expiry")
	}
}

func TestNew_SelectsBackendByAddress(t *testing.T) {
	switch New("").(type) {
	case *memoryCache:
	default:
		t.Fatalf("expected memoryCache when addr is empty")
	}
	switch New("localhost:6379").(type) {
	case *redisCache:
	default:
		t.Fatalf("expected redisCache when addr is set")
	}
}
