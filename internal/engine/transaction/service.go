// Package transaction implements the purchase state machine: a buyer
// reserves supply, funds escrow, pays, receives tokens, and the engine
// settles the resulting holding atomically on completion.
package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/r3e-network/rwa-control-plane/internal/cache"
	"github.com/r3e-network/rwa-control-plane/internal/collaborators"
	coreservice "github.com/r3e-network/rwa-control-plane/internal/core/service"
	"github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	"github.com/r3e-network/rwa-control-plane/internal/domain/holding"
	"github.com/r3e-network/rwa-control-plane/internal/domain/transaction"
	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
	"github.com/r3e-network/rwa-control-plane/pkg/logger"
)

// collaboratorRetryPolicy bounds retries for the escrow and token-transfer
// calls this engine makes; collaborator adapters may still apply their own
// finer-grained retry beneath this.
var collaboratorRetryPolicy = coreservice.RetryPolicy{
	Attempts:       3,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     2 * time.Second,
	Multiplier:     2,
}

const collaboratorTimeout = 30 * time.Second

// Service owns the purchase state machine.
type Service struct {
	base        *coreservice.Base
	store       storage.Store
	escrow      collaborators.Escrow
	payment     collaborators.Payment
	xfer        collaborators.TokenTransfer
	idempotency cache.Idempotency
	log         *logger.Logger
	hooks       coreservice.ObservationHooks
}

// New constructs a Service.
func New(store storage.Store, collabs collaborators.Set, log *logger.Logger, hooks coreservice.ObservationHooks) *Service {
	if log == nil {
		log = logger.NewDefault("transaction-engine")
	}
	return &Service{
		base:        coreservice.NewBase(store, store),
		store:       store,
		escrow:      collabs.Escrow,
		payment:     collabs.Payment,
		xfer:        collabs.TokenTransfer,
		idempotency: cache.NewMemory(),
		log:         log,
		hooks:       hooks,
	}
}

// Descriptor advertises this engine's placement and capabilities.
func (s *Service) Descriptor() coreservice.Descriptor {
	return coreservice.Descriptor{
		Name:   "TransactionEngine",
		Domain: "purchases",
		Layer:  coreservice.LayerEngine,
	}.WithCapabilities("create", "create-escrow", "record-payment", "transfer-tokens", "complete", "cancel")
}

func (s *Service) observe(ctx context.Context, txID string) func(error) {
	return coreservice.StartObservation(ctx, s.hooks, map[string]string{"transaction_id": txID})
}

// Create reserves availableSupply and inserts a PENDING transaction.
func (s *Service) Create(ctx context.Context, buyerID, assetID string, tokenAmount int64, txType transaction.Type) (transaction.Transaction, error) {
	if tokenAmount <= 0 {
		return transaction.Transaction{}, domainerrors.InvalidInput("token_amount", "token_amount must be positive")
	}
	if txType == "" {
		txType = transaction.TypePrimarySale
	}

	var result transaction.Transaction
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		a, err := s.store.GetAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if a.ListingStatus != asset.ListingListed {
			return domainerrors.InvalidStatus("NOT_LISTED", "asset is not listed on the marketplace")
		}
		if a.PricePerToken.LessThanOrEqual(decimal.Zero) {
			return domainerrors.InvalidStatus("NO_PRICE", "asset has no price per token")
		}
		if a.AvailableSupply < tokenAmount {
			return domainerrors.Conflict("INSUFFICIENT_SUPPLY", "not enough available supply for this purchase").
				WithDetail("available", a.AvailableSupply)
		}

		if err := s.base.EnsureVerifiedUser(ctx, buyerID); err != nil {
			return err
		}

		amount := a.PricePerToken.Mul(decimal.NewFromInt(tokenAmount))

		a.AvailableSupply -= tokenAmount
		if _, err := s.store.UpdateAsset(ctx, a); err != nil {
			return domainerrors.Internal("reserve supply", err)
		}

		created, err := s.store.CreateTransaction(ctx, transaction.Transaction{
			AssetID:     assetID,
			BuyerID:     buyerID,
			Type:        txType,
			Amount:      amount,
			TokenAmount: tokenAmount,
			Status:      transaction.StatusPending,
		})
		if err != nil {
			return domainerrors.Internal("create transaction", err)
		}
		result = created
		return nil
	})
	if err != nil {
		return transaction.Transaction{}, err
	}
	return result, nil
}

// CreateEscrow opens an escrow for a PENDING transaction.
func (s *Service) CreateEscrow(ctx context.Context, txID string) (transaction.Transaction, error) {
	done := s.observe(ctx, txID)
	defer func() { done(nil) }()

	t, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		return transaction.Transaction{}, err
	}
	if t.Status == transaction.StatusEscrowCreated {
		return t, nil
	}
	if t.Status != transaction.StatusPending {
		return transaction.Transaction{}, domainerrors.InvalidStatus("INVALID_STATUS", "createEscrow requires status PENDING")
	}

	escrowID, err := coreservice.CallIdempotent(ctx, s.idempotency, collaboratorRetryPolicy, collaboratorTimeout, "escrow", txID,
		func(ctx context.Context) (string, error) {
			return s.escrow.Open(ctx, t.BuyerID, t.SellerID, t.Amount, time.Now().Add(24*time.Hour))
		})
	if err != nil {
		return transaction.Transaction{}, domainerrors.CollaboratorFailure("escrow", err)
	}

	t.EscrowAddress = escrowID
	t.Status = transaction.StatusEscrowCreated
	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return transaction.Transaction{}, domainerrors.Internal("update transaction", err)
	}
	return updated, nil
}

// RecordPayment transitions ESCROW_CREATED to PAYMENT_RECEIVED after
// optionally verifying the payment signature.
func (s *Service) RecordPayment(ctx context.Context, txID, paymentSignature string) (transaction.Transaction, error) {
	done := s.observe(ctx, txID)
	defer func() { done(nil) }()

	t, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		return transaction.Transaction{}, err
	}
	if t.Status == transaction.StatusPaymentReceived {
		return t, nil
	}
	if t.Status != transaction.StatusEscrowCreated {
		return transaction.Transaction{}, domainerrors.InvalidStatus("INVALID_STATUS", "recordPayment requires status ESCROW_CREATED")
	}

	if ok, err := s.payment.VerifyInbound(ctx, paymentSignature, t.Amount, t.EscrowAddress); err != nil {
		return transaction.Transaction{}, domainerrors.CollaboratorFailure("payment", err)
	} else if !ok {
		return transaction.Transaction{}, domainerrors.InvalidInput("payment_signature", "payment could not be verified")
	}

	t.TxSignature = paymentSignature
	t.Status = transaction.StatusPaymentReceived
	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return transaction.Transaction{}, domainerrors.Internal("update transaction", err)
	}
	return updated, nil
}

// TransferTokens transitions PAYMENT_RECEIVED to TOKENS_TRANSFERRED.
func (s *Service) TransferTokens(ctx context.Context, txID string) (transaction.Transaction, error) {
	done := s.observe(ctx, txID)
	defer func() { done(nil) }()

	t, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		return transaction.Transaction{}, err
	}
	if t.Status == transaction.StatusTokensTransferred {
		return t, nil
	}
	if t.Status != transaction.StatusPaymentReceived {
		return transaction.Transaction{}, domainerrors.InvalidStatus("INVALID_STATUS", "transferTokens requires status PAYMENT_RECEIVED")
	}

	a, err := s.store.GetAsset(ctx, t.AssetID)
	if err != nil {
		return transaction.Transaction{}, err
	}

	sig, err := coreservice.CallIdempotent(ctx, s.idempotency, collaboratorRetryPolicy, collaboratorTimeout, "token-transfer", txID,
		func(ctx context.Context) (string, error) {
			return s.xfer.Transfer(ctx, a.MintAddress, a.BankID, t.BuyerID, t.TokenAmount)
		})
	if err != nil {
		return transaction.Transaction{}, domainerrors.CollaboratorFailure("token-transfer", err)
	}

	t.TxSignature = sig
	t.Status = transaction.StatusTokensTransferred
	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return transaction.Transaction{}, domainerrors.Internal("update transaction", err)
	}
	return updated, nil
}

// Complete finalizes a TOKENS_TRANSFERRED transaction: marks it COMPLETED
// and upserts the buyer's holding, atomically. Idempotent on replay.
func (s *Service) Complete(ctx context.Context, txID string) (transaction.Transaction, error) {
	var result transaction.Transaction
	var overbooked error
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		t, err := s.store.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if t.Status == transaction.StatusCompleted {
			result = t
			return nil
		}
		if t.Status != transaction.StatusTokensTransferred {
			return domainerrors.InvalidStatus("INVALID_STATUS", "complete requires status TOKENS_TRANSFERRED")
		}

		inv, err := s.store.GetInvestorByUserID(ctx, t.BuyerID)
		if err != nil {
			return domainerrors.New(domainerrors.CodeNotFound, "NO_PROFILE", "buyer has no investor profile")
		}

		a, err := s.store.GetAsset(ctx, t.AssetID)
		if err != nil {
			return err
		}
		sold, err := s.store.SumTokenAmountByAsset(ctx, t.AssetID)
		if err != nil {
			return domainerrors.Internal("sum holdings", err)
		}
		// A transaction can reach TOKENS_TRANSFERRED after supply was already
		// exhausted by other completions; refuse to settle a holding that
		// would oversell the asset and fail the transaction instead.
		if sold+t.TokenAmount > a.TotalSupply {
			failed, err := s.failTransaction(ctx, t, "completing this transaction would oversell the asset's total supply")
			if err != nil {
				return err
			}
			result = failed
			overbooked = domainerrors.Conflict("INSUFFICIENT_SUPPLY", "completing this transaction would oversell the asset's total supply").
				WithDetail("sold", sold).WithDetail("total_supply", a.TotalSupply)
			return nil
		}

		existing, err := s.store.GetHoldingForUpdate(ctx, t.AssetID, inv.ID)
		if err != nil {
			existing = holding.Holding{AssetID: t.AssetID, InvestorProfileID: inv.ID}
		}
		existing.TokenAmount += t.TokenAmount
		existing.CostBasis = existing.CostBasis.Add(t.Amount)
		if _, err := s.store.UpsertHolding(ctx, existing); err != nil {
			return domainerrors.Internal("upsert holding", err)
		}

		now := time.Now().UTC()
		t.Status = transaction.StatusCompleted
		t.CompletedAt = &now
		updated, err := s.store.UpdateTransaction(ctx, t)
		if err != nil {
			return domainerrors.Internal("update transaction", err)
		}
		result = updated
		return nil
	})
	if err != nil {
		return transaction.Transaction{}, err
	}
	if overbooked != nil {
		return result, overbooked
	}
	return result, nil
}

// failTransaction marks t FAILED with reason, restores any reserved supply,
// issues a best-effort escrow refund, and returns the updated transaction.
// Must be called from inside an Atomic block.
func (s *Service) failTransaction(ctx context.Context, t transaction.Transaction, reason string) (transaction.Transaction, error) {
	if a, err := s.store.GetAssetForUpdate(ctx, t.AssetID); err == nil {
		a.AvailableSupply += t.TokenAmount
		if _, err := s.store.UpdateAsset(ctx, a); err != nil {
			return transaction.Transaction{}, domainerrors.Internal("restore supply", err)
		}
	}
	if t.EscrowAddress != "" {
		if err := s.escrow.Refund(ctx, t.EscrowAddress, t.BuyerID); err != nil {
			s.log.WithError(err).WithField("transaction_id", t.ID).Warn("escrow refund failed during overbooked completion")
		}
	}
	t.FailureReason = reason
	t.Status = transaction.StatusFailed
	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return transaction.Transaction{}, domainerrors.Internal("update transaction", err)
	}
	return updated, nil
}

// Cancel marks a non-terminal transaction CANCELLED, restoring reserved
// supply and issuing a best-effort escrow refund.
func (s *Service) Cancel(ctx context.Context, txID, reason string) (transaction.Transaction, error) {
	var result transaction.Transaction
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		t, err := s.store.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if t.Status.IsTerminal() {
			return domainerrors.InvalidStatus("INVALID_STATUS", "transaction is already terminal")
		}

		a, err := s.store.GetAssetForUpdate(ctx, t.AssetID)
		if err == nil {
			a.AvailableSupply += t.TokenAmount
			s.store.UpdateAsset(ctx, a)
		}

		if t.EscrowAddress != "" {
			if err := s.escrow.Refund(ctx, t.EscrowAddress, t.BuyerID); err != nil {
				s.log.WithError(err).WithField("transaction_id", txID).Warn("escrow refund failed during cancel")
			}
		}

		t.FailureReason = reason
		t.Status = transaction.StatusCancelled
		updated, err := s.store.UpdateTransaction(ctx, t)
		if err != nil {
			return domainerrors.Internal("update transaction", err)
		}
		result = updated
		return nil
	})
	if err != nil {
		return transaction.Transaction{}, err
	}
	return result, nil
}

// GetByID returns a transaction by id.
func (s *Service) GetByID(ctx context.Context, id string) (transaction.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ListByUser lists a buyer's transactions.
func (s *Service) ListByUser(ctx context.Context, buyerID string, filter storage.TransactionFilter, pagination storage.Pagination, sort storage.Sort) (storage.ListResult[transaction.Transaction], error) {
	filter.BuyerID = buyerID
	return s.store.ListTransactions(ctx, filter, pagination, sort)
}

// ListByAsset lists an asset's transactions.
func (s *Service) ListByAsset(ctx context.Context, assetID string, filter storage.TransactionFilter, pagination storage.Pagination, sort storage.Sort) (storage.ListResult[transaction.Transaction], error) {
	filter.AssetID = assetID
	return s.store.ListTransactions(ctx, filter, pagination, sort)
}

// UserStats aggregates a buyer's transaction history.
type UserStats struct {
	TotalTransactions     int
	CompletedTransactions int
	TotalInvested         decimal.Decimal
	TotalTokens           int64
}

// UserStats returns aggregate purchase figures for a buyer.
func (s *Service) UserStats(ctx context.Context, buyerID string) (UserStats, error) {
	filter := storage.TransactionFilter{BuyerID: buyerID}
	total, err := s.store.CountTransactions(ctx, filter)
	if err != nil {
		return UserStats{}, domainerrors.Internal("count transactions", err)
	}
	completedFilter := filter
	completedFilter.Status = string(transaction.StatusCompleted)
	completed, err := s.store.CountTransactions(ctx, completedFilter)
	if err != nil {
		return UserStats{}, domainerrors.Internal("count completed transactions", err)
	}
	sums, err := s.store.SumTransactions(ctx, completedFilter)
	if err != nil {
		return UserStats{}, domainerrors.Internal("sum transactions", err)
	}
	return UserStats{
		TotalTransactions:     total,
		CompletedTransactions: completed,
		TotalInvested:         sums.Amount,
		TotalTokens:           sums.TokenAmount,
	}, nil
}
