// Package auction implements the time-boxed competitive-sale state
// machine: scheduling, concurrent bidding with atomic displacement and
// refund, settlement, and cancellation.
package auction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/r3e-network/rwa-control-plane/internal/cache"
	"github.com/r3e-network/rwa-control-plane/internal/collaborators"
	coreservice "github.com/r3e-network/rwa-control-plane/internal/core/service"
	assetdomain "github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	auctiondomain "github.com/r3e-network/rwa-control-plane/internal/domain/auction"
	biddomain "github.com/r3e-network/rwa-control-plane/internal/domain/bid"
	"github.com/r3e-network/rwa-control-plane/internal/domain/holding"
	"github.com/r3e-network/rwa-control-plane/internal/domain/transaction"
	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
	"github.com/r3e-network/rwa-control-plane/pkg/logger"
)

// Config holds the tunable auction parameters.
type Config struct {
	BidIncrementPct    decimal.Decimal
	MinDurationSeconds int
	MaxDurationSeconds int
}

var collaboratorRetryPolicy = coreservice.RetryPolicy{
	Attempts:       3,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     2 * time.Second,
	Multiplier:     2,
}

const collaboratorTimeout = 30 * time.Second

// Service owns the auction state machine.
type Service struct {
	base        *coreservice.Base
	store       storage.Store
	payment     collaborators.Payment
	xfer        collaborators.TokenTransfer
	idempotency cache.Idempotency
	cfg         Config
	log         *logger.Logger
	hooks       coreservice.ObservationHooks
}

// New constructs a Service.
func New(store storage.Store, collabs collaborators.Set, cfg Config, log *logger.Logger, hooks coreservice.ObservationHooks) *Service {
	if log == nil {
		log = logger.NewDefault("auction-engine")
	}
	if cfg.BidIncrementPct.IsZero() {
		cfg.BidIncrementPct = decimal.NewFromFloat(0.05)
	}
	if cfg.MinDurationSeconds == 0 {
		cfg.MinDurationSeconds = 3600
	}
	return &Service{
		base:        coreservice.NewBase(store, store),
		store:       store,
		payment:     collabs.Payment,
		xfer:        collabs.TokenTransfer,
		idempotency: cache.NewMemory(),
		cfg:         cfg,
		log:         log,
		hooks:       hooks,
	}
}

// transferOut issues a best-effort, idempotent payment to recipient and logs
// rather than propagates any failure: a failed refund or payout must never
// block the bid/cancel/settle transition that triggered it.
func (s *Service) transferOut(ctx context.Context, auctionID, entityKey, recipient string, amount decimal.Decimal, failureMsg string) {
	_, err := coreservice.CallIdempotent(ctx, s.idempotency, collaboratorRetryPolicy, collaboratorTimeout, "payment-refund", entityKey, func(ctx context.Context) (string, error) {
		return s.payment.TransferOut(ctx, auctionID, recipient, amount)
	})
	if err != nil {
		s.log.WithError(err).WithField("auction_id", auctionID).Warn(failureMsg)
	}
}

// Descriptor advertises this engine's placement and capabilities.
func (s *Service) Descriptor() coreservice.Descriptor {
	return coreservice.Descriptor{
		Name:   "AuctionEngine",
		Domain: "auctions",
		Layer:  coreservice.LayerEngine,
	}.WithCapabilities("create", "place-bid", "cancel-bid", "settle", "cancel", "extend", "tick")
}

func (s *Service) observe(ctx context.Context, auctionID string) func(error) {
	return coreservice.StartObservation(ctx, s.hooks, map[string]string{"auction_id": auctionID})
}

// CreateParams captures Auction.create's input record.
type CreateParams struct {
	ReservePrice decimal.Decimal
	TokenAmount  int64
	StartTime    time.Time
	EndTime      time.Time
}

// Create schedules a new auction, reserving tokenAmount against the
// asset's availableSupply for the auction's lifetime.
func (s *Service) Create(ctx context.Context, assetID string, params CreateParams) (auctiondomain.Auction, error) {
	if params.ReservePrice.LessThanOrEqual(decimal.Zero) {
		return auctiondomain.Auction{}, domainerrors.InvalidInput("reserve_price", "reserve_price must be positive")
	}
	if params.TokenAmount <= 0 {
		return auctiondomain.Auction{}, domainerrors.InvalidInput("token_amount", "token_amount must be positive")
	}

	var result auctiondomain.Auction
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()

		a, err := s.store.GetAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if a.TokenizationStatus != assetdomain.StatusTokenized {
			return domainerrors.InvalidStatus("NOT_TOKENIZED", "asset must be TOKENIZED to auction")
		}
		if !params.EndTime.After(params.StartTime) {
			return domainerrors.InvalidInput("end_time", "end_time must be after start_time")
		}
		if minDuration := time.Duration(s.cfg.MinDurationSeconds) * time.Second; params.EndTime.Sub(params.StartTime) < minDuration {
			return domainerrors.InvalidInput("end_time", "auction window is shorter than the minimum duration")
		}
		if a.AvailableSupply < params.TokenAmount {
			return domainerrors.Conflict("INSUFFICIENT_SUPPLY", "not enough available supply to auction")
		}

		overlapping, err := s.store.ListOverlapping(ctx, assetID, params.StartTime, params.EndTime)
		if err != nil {
			return domainerrors.Internal("list overlapping auctions", err)
		}
		if len(overlapping) > 0 {
			return domainerrors.Conflict("OVERLAPPING_AUCTION", "an open auction already covers this window")
		}

		status := auctiondomain.StatusScheduled
		if !params.StartTime.After(now) {
			status = auctiondomain.StatusActive
		}

		a.AvailableSupply -= params.TokenAmount
		if _, err := s.store.UpdateAsset(ctx, a); err != nil {
			return domainerrors.Internal("reserve supply", err)
		}

		created, err := s.store.CreateAuction(ctx, auctiondomain.Auction{
			AssetID:      assetID,
			ReservePrice: params.ReservePrice,
			TokenAmount:  params.TokenAmount,
			StartTime:    params.StartTime,
			EndTime:      params.EndTime,
			Status:       status,
		})
		if err != nil {
			return domainerrors.Internal("create auction", err)
		}
		result = created
		return nil
	})
	if err != nil {
		return auctiondomain.Auction{}, err
	}
	return result, nil
}

// PlaceBid validates and atomically records a new bid, displacing and
// refunding the previous winner.
func (s *Service) PlaceBid(ctx context.Context, auctionID, bidderWallet string, amount decimal.Decimal) (biddomain.Bid, error) {
	var result biddomain.Bid
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		a, err := s.store.GetAuctionForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if a.Status != auctiondomain.StatusActive || now.Before(a.StartTime) || now.After(a.EndTime) {
			return domainerrors.InvalidStatus("AUCTION_NOT_ACTIVE", "auction is not currently active")
		}

		if _, err := s.base.EnsureVerifiedWallet(ctx, bidderWallet); err != nil {
			return err
		}

		minimum := a.MinimumBid(s.cfg.BidIncrementPct)
		if amount.LessThan(minimum) {
			return domainerrors.Conflict("BID_TOO_LOW", "bid is below the minimum acceptable amount").
				WithDetail("minimum", minimum.String())
		}

		previousBidder := a.CurrentBidder
		previousAmount := a.CurrentBid

		if err := s.store.ClearWinning(ctx, auctionID); err != nil {
			return domainerrors.Internal("clear winning bid", err)
		}

		newBid, err := s.store.CreateBid(ctx, biddomain.Bid{
			AuctionID: auctionID,
			Bidder:    bidderWallet,
			Amount:    amount,
			IsWinning: true,
		})
		if err != nil {
			return domainerrors.Internal("create bid", err)
		}

		a.CurrentBid = &amount
		a.CurrentBidder = bidderWallet
		if _, err := s.store.UpdateAuction(ctx, a); err != nil {
			return domainerrors.Internal("update auction", err)
		}

		if previousBidder != "" && previousBidder != bidderWallet && previousAmount != nil {
			s.transferOut(ctx, auctionID, auctionID+":"+previousBidder, previousBidder, *previousAmount, "refund to displaced bidder failed")
		}

		result = newBid
		return nil
	})
	if err != nil {
		return biddomain.Bid{}, err
	}
	return result, nil
}

// CancelBid withdraws a non-winning bid placed by bidderWallet, refunding
// the held amount. The current winning bid cannot be cancelled directly;
// a higher bid or the auction's own Cancel/Settle path supersedes it.
func (s *Service) CancelBid(ctx context.Context, bidID, bidderWallet string) error {
	return s.store.Atomic(ctx, func(ctx context.Context) error {
		b, err := s.store.GetBid(ctx, bidID)
		if err != nil {
			return err
		}
		if b.Bidder != bidderWallet {
			return domainerrors.Forbidden("NOT_BID_OWNER", "bid does not belong to this wallet")
		}
		if b.IsWinning {
			return domainerrors.InvalidStatus("WINNING_BID", "the current winning bid cannot be cancelled directly")
		}
		if err := s.store.DeleteBid(ctx, bidID); err != nil {
			return err
		}
		s.transferOut(ctx, b.AuctionID, bidID, b.Bidder, b.Amount, "refund on bid cancel failed")
		return nil
	})
}

// Settle finalizes an ended auction: creates the settlement transaction
// and upserts the winner's holding, or cancels if reserve was unmet.
// Idempotent against an already-SETTLED auction.
func (s *Service) Settle(ctx context.Context, auctionID string) (auctiondomain.Auction, error) {
	var result auctiondomain.Auction
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		a, err := s.store.GetAuctionForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if a.Status == auctiondomain.StatusSettled {
			result = a
			return nil
		}
		now := time.Now().UTC()
		if a.Status != auctiondomain.StatusEnded && a.Status != auctiondomain.StatusActive {
			return domainerrors.InvalidStatus("AUCTION_NOT_ENDED", "auction has not ended")
		}
		if now.Before(a.EndTime) {
			return domainerrors.InvalidStatus("AUCTION_NOT_ENDED", "auction has not reached its end time")
		}

		if a.CurrentBid == nil || a.CurrentBid.LessThan(a.ReservePrice) {
			if err := s.cancelLocked(ctx, &a); err != nil {
				return err
			}
			result = a
			return nil
		}

		winnerUser, err := s.store.GetUserByWallet(ctx, a.CurrentBidder)
		if err != nil {
			return err
		}
		winnerInvestor, err := s.store.GetInvestorByUserID(ctx, winnerUser.ID)
		if err != nil {
			return domainerrors.New(domainerrors.CodeNotFound, "NO_PROFILE", "winning bidder has no investor profile")
		}

		assetObj, err := s.store.GetAsset(ctx, a.AssetID)
		if err != nil {
			return err
		}

		tx, err := s.store.CreateTransaction(ctx, transaction.Transaction{
			AssetID:     a.AssetID,
			BuyerID:     winnerUser.ID,
			Type:        transaction.TypeAuctionSettlement,
			Amount:      *a.CurrentBid,
			TokenAmount: a.TokenAmount,
			Status:      transaction.StatusCompleted,
		})
		if err != nil {
			return domainerrors.Internal("create settlement transaction", err)
		}
		completedAt := now
		tx.CompletedAt = &completedAt
		if _, err := s.store.UpdateTransaction(ctx, tx); err != nil {
			return domainerrors.Internal("update settlement transaction", err)
		}

		existing, err := s.store.GetHoldingForUpdate(ctx, a.AssetID, winnerInvestor.ID)
		if err != nil {
			existing = holding.Holding{AssetID: a.AssetID, InvestorProfileID: winnerInvestor.ID}
		}
		existing.TokenAmount += a.TokenAmount
		existing.CostBasis = existing.CostBasis.Add(*a.CurrentBid)
		if _, err := s.store.UpsertHolding(ctx, existing); err != nil {
			return domainerrors.Internal("upsert holding", err)
		}

		if _, err := s.xfer.Transfer(ctx, assetObj.MintAddress, assetObj.BankID, winnerUser.ID, a.TokenAmount); err != nil {
			s.log.WithError(err).WithField("auction_id", auctionID).Warn("winner token transfer failed")
		}
		s.transferOut(ctx, auctionID, "settlement:"+auctionID, assetObj.BankID, *a.CurrentBid, "seller payout failed")

		a.Status = auctiondomain.StatusSettled
		a.SettledAt = &now
		updated, err := s.store.UpdateAuction(ctx, a)
		if err != nil {
			return domainerrors.Internal("update auction", err)
		}
		result = updated
		return nil
	})
	if err != nil {
		return auctiondomain.Auction{}, err
	}
	return result, nil
}

// cancelLocked transitions a into CANCELLED and restores reserved supply.
// Caller must already hold a locked under Atomic.
func (s *Service) cancelLocked(ctx context.Context, a *auctiondomain.Auction) error {
	if assetObj, err := s.store.GetAssetForUpdate(ctx, a.AssetID); err == nil {
		assetObj.AvailableSupply += a.TokenAmount
		if _, err := s.store.UpdateAsset(ctx, assetObj); err != nil {
			s.log.WithError(err).WithField("auction_id", a.ID).Warn("restore reserved supply failed")
		}
	}

	bids, err := s.store.ListBids(ctx, a.ID)
	if err == nil {
		for _, b := range bids {
			s.transferOut(ctx, a.ID, b.ID, b.Bidder, b.Amount, "refund on cancel failed")
		}
	}

	a.Status = auctiondomain.StatusCancelled
	updated, err := s.store.UpdateAuction(ctx, *a)
	if err != nil {
		return domainerrors.Internal("update auction", err)
	}
	*a = updated
	return nil
}

// Cancel cancels a non-terminal auction and refunds outstanding bids.
func (s *Service) Cancel(ctx context.Context, auctionID string) (auctiondomain.Auction, error) {
	var result auctiondomain.Auction
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		a, err := s.store.GetAuctionForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if a.Status.IsTerminal() {
			return domainerrors.InvalidStatus("INVALID_STATUS", "auction is already terminal")
		}
		if err := s.cancelLocked(ctx, &a); err != nil {
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		return auctiondomain.Auction{}, err
	}
	return result, nil
}

// Extend pushes out an open auction's end time.
func (s *Service) Extend(ctx context.Context, auctionID string, newEndTime time.Time) (auctiondomain.Auction, error) {
	a, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return auctiondomain.Auction{}, err
	}
	if !a.IsOpenForScheduling() {
		return auctiondomain.Auction{}, domainerrors.InvalidStatus("INVALID_STATUS", "auction must be SCHEDULED or ACTIVE to extend")
	}
	if !newEndTime.After(a.EndTime) {
		return auctiondomain.Auction{}, domainerrors.InvalidInput("end_time", "new end time must be after the current end time")
	}
	a.EndTime = newEndTime
	updated, err := s.store.UpdateAuction(ctx, a)
	if err != nil {
		return auctiondomain.Auction{}, domainerrors.Internal("update auction", err)
	}
	return updated, nil
}

// BidHistory returns a page of bids for an auction, most recent first by
// default. Pass a zero storage.Pagination/storage.Sort to use the defaults.
func (s *Service) BidHistory(ctx context.Context, auctionID string, pagination storage.Pagination, sort storage.Sort) (storage.ListResult[biddomain.Bid], error) {
	return s.store.BidHistory(ctx, auctionID, pagination, sort)
}

// Tick advances time-driven transitions: SCHEDULED auctions whose start
// time has passed become ACTIVE; ACTIVE auctions whose end time has
// passed become ENDED. Used by internal/scheduler.
func (s *Service) Tick(ctx context.Context) (activated, ended int, err error) {
	done := s.observe(ctx, "")
	defer func() { done(err) }()

	now := time.Now().UTC()

	dueToActivate, err := s.store.ListDueToActivate(ctx, now, 0)
	if err != nil {
		return 0, 0, domainerrors.Internal("list due to activate", err)
	}
	for _, a := range dueToActivate {
		a.Status = auctiondomain.StatusActive
		if _, err := s.store.UpdateAuction(ctx, a); err != nil {
			return activated, ended, domainerrors.Internal("activate auction", err)
		}
		activated++
	}

	dueToEnd, err := s.store.ListDueToEnd(ctx, now, 0)
	if err != nil {
		return activated, 0, domainerrors.Internal("list due to end", err)
	}
	for _, a := range dueToEnd {
		a.Status = auctiondomain.StatusEnded
		if _, err := s.store.UpdateAuction(ctx, a); err != nil {
			return activated, ended, domainerrors.Internal("end auction", err)
		}
		ended++
	}

	return activated, ended, nil
}
