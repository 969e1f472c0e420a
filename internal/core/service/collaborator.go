package service

import (
	"context"
	"time"

	"github.com/r3e-network/rwa-control-plane/internal/cache"
)

// CallIdempotent wraps a collaborator call that returns a single string
// result (an offering id, escrow id, or transaction signature) with an
// idempotency cache keyed by (collaborator, entityID), a bounded retry
// policy, and a per-attempt timeout. A cache hit short-circuits fn
// entirely, satisfying the requirement that a retried call against the
// same entity never re-invokes the backend.
func CallIdempotent(
	ctx context.Context,
	idempotency cache.Idempotency,
	policy RetryPolicy,
	timeout time.Duration,
	collaborator, entityID string,
	fn func(ctx context.Context) (string, error),
) (string, error) {
	key := cache.Key(collaborator, entityID)

	var cached string
	if ok, err := idempotency.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	var result string
	err := Retry(ctx, policy, func() error {
		callCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		r, err := fn(callCtx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return "", err
	}

	_ = idempotency.Put(ctx, key, result, 24*time.Hour)
	return result, nil
}
