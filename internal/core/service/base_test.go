package service

import (
	"context"
	"testing"

	"github.com/r3e-network/rwa-control-plane/internal/domain/user"
	"github.com/r3e-network/rwa-control-plane/internal/storage/memory"
)

func TestBase_EnsureVerifiedUser(t *testing.T) {
	store := memory.New()
	base := NewBase(store, store)
	ctx := context.Background()

	pending, err := store.CreateUser(ctx, user.User{KYCStatus: user.KYCPending})
	if err != nil {
		t.Fatalf("create pending user: %v", err)
	}
	if err := base.EnsureVerifiedUser(ctx, pending.ID); err == nil {
		t.Fatalf("expected KYC-required error for pending user")
	}

	verified, err := store.CreateUser(ctx, user.User{KYCStatus: user.KYCVerified})
	if err != nil {
		t.Fatalf("create verified user: %v", err)
	}
	if err := base.EnsureVerifiedUser(ctx, verified.ID); err != nil {
		t.Fatalf("expected no error for verified user, got %v", err)
	}
}

func TestBase_EnsureVerifiedWalletResolvesByAddress(t *testing.T) {
	store := memory.New()
	base := NewBase(store, store)
	ctx := context.Background()

	u, err := store.CreateUser(ctx, user.User{WalletAddress: "wallet-zed", KYCStatus: user.KYCVerified})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	resolvedID, err := base.EnsureVerifiedWallet(ctx, "wallet-zed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolvedID != u.ID {
		t.Fatalf("expected resolved id %q, got %q", u.ID, resolvedID)
	}

	if _, err := base.EnsureVerifiedWallet(ctx, "wallet-unknown"); err == nil {
		t.Fatalf("expected not-found error for unknown wallet")
	}
}
