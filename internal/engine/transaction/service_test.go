package transaction

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/r3e-network/rwa-control-plane/internal/collaborators/synthetic"
	coreservice "github.com/r3e-network/rwa-control-plane/internal/core/service"
	assetdomain "github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	investordomain "github.com/r3e-network/rwa-control-plane/internal/domain/investor"
	transactiondomain "github.com/r3e-network/rwa-control-plane/internal/domain/transaction"
	"github.com/r3e-network/rwa-control-plane/internal/domain/user"
	"github.com/r3e-network/rwa-control-plane/internal/storage/memory"
)

func listedAsset(t *testing.T, store *memory.Store, totalSupply, availableSupply int64) assetdomain.Asset {
	t.Helper()
	a, err := store.CreateAsset(context.Background(), assetdomain.Asset{
		Name:               "Desert Solar Farm",
		TotalValue:         decimal.NewFromInt(1_000_000),
		TotalSupply:        totalSupply,
		AvailableSupply:    availableSupply,
		PricePerToken:      decimal.NewFromInt(100),
		TokenizationStatus: assetdomain.StatusTokenized,
		ListingStatus:      assetdomain.ListingListed,
	})
	require.NoError(t, err)
	return a
}

func verifiedBuyer(t *testing.T, store *memory.Store) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), user.User{
		Email:     "buyer@example.com",
		Role:      user.RoleInvestor,
		KYCStatus: user.KYCVerified,
		IsActive:  true,
	})
	require.NoError(t, err)
	_, err = store.CreateInvestor(context.Background(), investordomain.Profile{UserID: u.ID})
	require.NoError(t, err)
	return u
}

func newService(store *memory.Store) *Service {
	return New(store, synthetic.Set(), nil, coreservice.NoopObservationHooks)
}

// TestService_Create_PricePerTokenDerivation exercises the literal example:
// totalValue=1_000_000, totalSupply=10_000 -> pricePerToken=100.
func TestService_Create_PricePerTokenDerivation(t *testing.T) {
	store := memory.New()
	buyer := verifiedBuyer(t, store)
	a, err := store.CreateAsset(context.Background(), assetdomain.Asset{
		Name:               "Office Tower",
		TotalValue:         decimal.NewFromInt(1_000_000),
		TotalSupply:        10_000,
		AvailableSupply:    10_000,
		TokenizationStatus: assetdomain.StatusTokenized,
		ListingStatus:      assetdomain.ListingListed,
	})
	require.NoError(t, err)
	require.True(t, a.DerivedPricePerToken().Equal(decimal.NewFromInt(100)))

	a.PricePerToken = a.DerivedPricePerToken()
	a, err = store.UpdateAsset(context.Background(), a)
	require.NoError(t, err)

	svc := newService(store)
	tx, err := svc.Create(context.Background(), buyer.ID, a.ID, 50, transactiondomain.TypePrimarySale)
	require.NoError(t, err)
	require.True(t, tx.Amount.Equal(decimal.NewFromInt(5000)))
}

// TestService_Create_RejectsOversupply exercises the literal example:
// totalSupply=10_000, 9_900 already committed, buy of 101 -> INSUFFICIENT_SUPPLY.
func TestService_Create_RejectsOversupply(t *testing.T) {
	store := memory.New()
	buyer := verifiedBuyer(t, store)
	a := listedAsset(t, store, 10_000, 100)

	svc := newService(store)
	_, err := svc.Create(context.Background(), buyer.ID, a.ID, 101, transactiondomain.TypePrimarySale)
	require.Error(t, err)

	ok, err := svc.Create(context.Background(), buyer.ID, a.ID, 100, transactiondomain.TypePrimarySale)
	require.NoError(t, err)
	require.EqualValues(t, 100, ok.TokenAmount)
}

func TestService_FullLifecycle(t *testing.T) {
	store := memory.New()
	buyer := verifiedBuyer(t, store)
	a := listedAsset(t, store, 1000, 1000)

	svc := newService(store)
	ctx := context.Background()

	tx, err := svc.Create(ctx, buyer.ID, a.ID, 10, "")
	require.NoError(t, err)
	require.Equal(t, transactiondomain.StatusPending, tx.Status)

	reloaded, err := store.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 990, reloaded.AvailableSupply)

	tx, err = svc.CreateEscrow(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, transactiondomain.StatusEscrowCreated, tx.Status)
	require.NotEmpty(t, tx.EscrowAddress)

	tx, err = svc.RecordPayment(ctx, tx.ID, "sig-1")
	require.NoError(t, err)
	require.Equal(t, transactiondomain.StatusPaymentReceived, tx.Status)

	tx, err = svc.TransferTokens(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, transactiondomain.StatusTokensTransferred, tx.Status)

	tx, err = svc.Complete(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, transactiondomain.StatusCompleted, tx.Status)
	require.NotNil(t, tx.CompletedAt)

	// idempotent replay
	again, err := svc.Complete(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, tx.Status, again.Status)

	stats, err := svc.UserStats(ctx, buyer.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stats.CompletedTransactions)
	require.EqualValues(t, 10, stats.TotalTokens)
}

func TestService_CancelRestoresSupply(t *testing.T) {
	store := memory.New()
	buyer := verifiedBuyer(t, store)
	a := listedAsset(t, store, 500, 500)

	svc := newService(store)
	ctx := context.Background()

	tx, err := svc.Create(ctx, buyer.ID, a.ID, 200, "")
	require.NoError(t, err)

	mid, err := store.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 300, mid.AvailableSupply)

	cancelled, err := svc.Cancel(ctx, tx.ID, "buyer withdrew")
	require.NoError(t, err)
	require.Equal(t, transactiondomain.StatusCancelled, cancelled.Status)

	restored, err := store.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 500, restored.AvailableSupply)

	_, err = svc.Cancel(ctx, tx.ID, "again")
	require.Error(t, err, "a terminal transaction cannot be cancelled twice")
}

func TestService_CreateRejectsUnverifiedBuyer(t *testing.T) {
	store := memory.New()
	a := listedAsset(t, store, 100, 100)
	unverified, err := store.CreateUser(context.Background(), user.User{Role: user.RoleInvestor, KYCStatus: user.KYCPending})
	require.NoError(t, err)

	svc := newService(store)
	_, err = svc.Create(context.Background(), unverified.ID, a.ID, 1, "")
	require.Error(t, err)
}
