package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	"github.com/r3e-network/rwa-control-plane/internal/domain/user"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
)

// TestStore_AtomicSurfacesCallbackError checks that Atomic propagates the
// callback's error and that calling other Store methods from inside the
// callback does not deadlock against Atomic's own lock.
func TestStore_AtomicSurfacesCallbackError(t *testing.T) {
	s := New()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(ctx context.Context) error {
		if _, err := s.CreateAsset(ctx, asset.Asset{Name: "in-flight"}); err != nil {
			t.Fatalf("create asset: %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected Atomic to surface the callback error, got %v", err)
	}
}

func TestStore_GetUserByWallet(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, user.User{WalletAddress: "wallet-xyz"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	found, err := s.GetUserByWallet(ctx, "wallet-xyz")
	if err != nil {
		t.Fatalf("get by wallet: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected %q, got %q", created.ID, found.ID)
	}

	if _, err := s.GetUserByWallet(ctx, "no-such-wallet"); err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestStore_ListAssetsFiltersAndPaginates(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.CreateAsset(ctx, asset.Asset{
			Name:               "asset",
			BankID:             "bank-1",
			TokenizationStatus: asset.StatusDraft,
		}); err != nil {
			t.Fatalf("create asset %d: %v", i, err)
		}
	}
	if _, err := s.CreateAsset(ctx, asset.Asset{Name: "other-bank", BankID: "bank-2", TokenizationStatus: asset.StatusDraft}); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	all, err := s.ListAssets(ctx, storage.AssetFilter{BankID: "bank-1"}, storage.Pagination{Page: 1, Limit: 20}, storage.Sort{})
	if err != nil {
		t.Fatalf("list assets: %v", err)
	}
	if len(all.Data) != 5 {
		t.Fatalf("expected 5 assets for bank-1, got %d", len(all.Data))
	}
	if all.Total != 5 {
		t.Fatalf("expected total of 5, got %d", all.Total)
	}

	page, err := s.ListAssets(ctx, storage.AssetFilter{BankID: "bank-1"}, storage.Pagination{Page: 2, Limit: 2}, storage.Sort{})
	if err != nil {
		t.Fatalf("list assets page: %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page.Data))
	}
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages for 5 items at limit 2, got %d", page.TotalPages)
	}
}

func TestStore_GetAssetForUpdateNotFound(t *testing.T) {
	s := New()
	if _, err := s.GetAssetForUpdate(context.Background(), "missing"); err == nil {
		t.Fatalf("expected not-found error for missing asset")
	}
}
