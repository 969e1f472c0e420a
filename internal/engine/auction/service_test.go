package auction

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/r3e-network/rwa-control-plane/internal/collaborators/synthetic"
	coreservice "github.com/r3e-network/rwa-control-plane/internal/core/service"
	assetdomain "github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	auctiondomain "github.com/r3e-network/rwa-control-plane/internal/domain/auction"
	biddomain "github.com/r3e-network/rwa-control-plane/internal/domain/bid"
	"github.com/r3e-network/rwa-control-plane/internal/domain/user"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
	"github.com/r3e-network/rwa-control-plane/internal/storage/memory"
)

func setupAsset(t *testing.T, store *memory.Store, available int64) assetdomain.Asset {
	t.Helper()
	a, err := store.CreateAsset(context.Background(), assetdomain.Asset{
		Name:               "Harbor Tower",
		TotalSupply:        1000,
		AvailableSupply:    available,
		PricePerToken:      decimal.NewFromInt(100),
		TokenizationStatus: assetdomain.StatusTokenized,
	})
	require.NoError(t, err)
	return a
}

func verifiedBidder(t *testing.T, store *memory.Store, wallet string) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), user.User{
		WalletAddress: wallet,
		Role:          user.RoleInvestor,
		KYCStatus:     user.KYCVerified,
		IsActive:      true,
	})
	require.NoError(t, err)
	return u
}

func newService(store *memory.Store) *Service {
	return New(store, synthetic.Set(), Config{}, nil, coreservice.NoopObservationHooks)
}

func TestService_CreateValidatesWindowAndSupply(t *testing.T) {
	store := memory.New()
	a := setupAsset(t, store, 500)

	start := time.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	svc := newService(store)
	created, err := svc.Create(context.Background(), a.ID, CreateParams{
		ReservePrice: decimal.NewFromInt(50000),
		TokenAmount:  500,
		StartTime:    start,
		EndTime:      end,
	})
	require.NoError(t, err)
	require.Equal(t, auctiondomain.StatusScheduled, created.Status)

	reloaded, err := store.GetAsset(context.Background(), a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, reloaded.AvailableSupply)

	_, err = svc.Create(context.Background(), a.ID, CreateParams{
		ReservePrice: decimal.NewFromInt(1000),
		TokenAmount:  1,
		StartTime:    start.Add(30 * time.Minute),
		EndTime:      end.Add(30 * time.Minute),
	})
	require.Error(t, err, "expected insufficient supply after full reservation")
}

// TestService_BiddingRace exercises the exact numeric scenario: reserve
// price 50000, bids of 60000 then 62000 (rejected, below the 5% minimum
// increment over 60000) then 63000 (accepted, displacing the first bidder).
func TestService_BiddingRace(t *testing.T) {
	store := memory.New()
	a := setupAsset(t, store, 100)
	verifiedBidder(t, store, "wallet-alice")
	verifiedBidder(t, store, "wallet-bob")

	start := time.Now().Add(-time.Minute)
	end := start.Add(time.Hour)

	svc := newService(store)
	created, err := svc.Create(context.Background(), a.ID, CreateParams{
		ReservePrice: decimal.NewFromInt(50000),
		TokenAmount:  100,
		StartTime:    start,
		EndTime:      end,
	})
	require.NoError(t, err)
	require.Equal(t, auctiondomain.StatusActive, created.Status)

	_, err = svc.PlaceBid(context.Background(), created.ID, "wallet-alice", decimal.NewFromInt(60000))
	require.NoError(t, err)

	_, err = svc.PlaceBid(context.Background(), created.ID, "wallet-bob", decimal.NewFromInt(62000))
	require.Error(t, err, "62000 is below the 5% minimum increment over 60000")

	winning, err := svc.PlaceBid(context.Background(), created.ID, "wallet-bob", decimal.NewFromInt(63000))
	require.NoError(t, err)
	require.True(t, winning.IsWinning)

	history, err := svc.BidHistory(context.Background(), created.ID, storage.Pagination{}, storage.Sort{})
	require.NoError(t, err)
	require.Len(t, history.Data, 2)
	winners := 0
	for _, b := range history.Data {
		if b.IsWinning {
			winners++
		}
	}
	require.Equal(t, 1, winners, "at most one bid may be winning at a time")
}

// TestService_SettleCancelsOnUnmetReserve exercises the exact numeric
// scenario: reserve 50000, high bid 40000 < reserve -> CANCELLED, and
// checks reserved supply is restored to the asset.
func TestService_SettleCancelsOnUnmetReserve(t *testing.T) {
	store := memory.New()
	a := setupAsset(t, store, 0)
	verifiedBidder(t, store, "wallet-carol")

	start := time.Now().Add(-2 * time.Hour)
	end := time.Now().Add(-time.Minute)

	highBid := decimal.NewFromInt(40000)
	auctionRecord, err := store.CreateAuction(context.Background(), auctiondomain.Auction{
		AssetID:       a.ID,
		ReservePrice:  decimal.NewFromInt(50000),
		CurrentBid:    &highBid,
		CurrentBidder: "wallet-carol",
		TokenAmount:   100,
		StartTime:     start,
		EndTime:       end,
		Status:        auctiondomain.StatusEnded,
	})
	require.NoError(t, err)
	_, err = store.CreateBid(context.Background(), biddomain.Bid{
		AuctionID: auctionRecord.ID,
		Bidder:    "wallet-carol",
		Amount:    highBid,
		IsWinning: true,
	})
	require.NoError(t, err)

	svc := newService(store)
	settled, err := svc.Settle(context.Background(), auctionRecord.ID)
	require.NoError(t, err)
	require.Equal(t, auctiondomain.StatusCancelled, settled.Status)

	reloaded, err := store.GetAsset(context.Background(), a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 100, reloaded.AvailableSupply, "reserved supply must be restored on unmet-reserve cancellation")
}
