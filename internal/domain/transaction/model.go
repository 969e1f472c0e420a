// Package transaction holds the purchase model driven by TransactionEngine:
// a primary-sale (or secondary-sale / auction-settlement / redemption) buy
// coordinated step by step with escrow, payment, and token-transfer
// collaborators.
package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type enumerates the kinds of transaction the engine records.
type Type string

const (
	TypePrimarySale       Type = "PRIMARY_SALE"
	TypeSecondarySale     Type = "SECONDARY_SALE"
	TypeAuctionSettlement Type = "AUCTION_SETTLEMENT"
	TypeRedemption        Type = "REDEMPTION"
)

// Status is a step in the purchase state machine. Terminal statuses are
// COMPLETED, CANCELLED, and REFUNDED.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusEscrowCreated     Status = "ESCROW_CREATED"
	StatusPaymentReceived   Status = "PAYMENT_RECEIVED"
	StatusTokensTransferred Status = "TOKENS_TRANSFERRED"
	StatusCompleted         Status = "COMPLETED"
	StatusFailed            Status = "FAILED"
	StatusCancelled         Status = "CANCELLED"
	StatusRefunded          Status = "REFUNDED"
)

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// Transaction is a single purchase moving through the engine's state
// machine. TokenAmount and Amount are fixed at creation; every later step
// only advances Status and records collaborator artifacts.
type Transaction struct {
	ID             string
	AssetID        string
	BuyerID        string
	SellerID       string
	Type           Type
	Amount         decimal.Decimal
	TokenAmount    int64
	EscrowAddress  string
	TxSignature    string
	Status         Status
	FailureReason  string
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
