// Package collaborators defines the narrow external-system interfaces the
// engines consume: Tokenization, Escrow, Payment, TokenTransfer, and KYC.
// Production adapters and the synthetic dev backends in ./synthetic both
// satisfy these interfaces; which is wired is a configuration concern.
package collaborators

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OfferingParams describes the offering submitted to the Tokenization
// collaborator by AssetLifecycle.tokenize.
type OfferingParams struct {
	AssetID           string
	Symbol            string
	TotalSupply       int64
	MinimumInvestment decimal.Decimal
	MaximumInvestment decimal.Decimal
}

// DeployResult is returned by Tokenization.DeployToken.
type DeployResult struct {
	MintAddress string
	MetadataURI string
	TxSignature string
}

// Tokenization creates marketplace offerings and deploys their on-chain
// token representation. Both calls must be idempotent given the same
// (assetId, symbol) tuple.
type Tokenization interface {
	CreateOffering(ctx context.Context, params OfferingParams) (offeringID string, err error)
	DeployToken(ctx context.Context, offeringID string, authority string) (DeployResult, error)
}

// Escrow holds funds between payment and token transfer.
type Escrow interface {
	Open(ctx context.Context, buyer, seller string, amount decimal.Decimal, expiresAt time.Time) (escrowID string, err error)
	Release(ctx context.Context, escrowID string) error
	Refund(ctx context.Context, escrowID string, recipient string) error
}

// Payment verifies inbound payments and moves funds out on the platform's
// behalf (auction refunds, seller payouts).
type Payment interface {
	VerifyInbound(ctx context.Context, signature string, expectedAmount decimal.Decimal, destination string) (bool, error)
	TransferOut(ctx context.Context, from, to string, amount decimal.Decimal) (signature string, err error)
}

// TokenTransfer moves tokenized-asset units on-chain.
type TokenTransfer interface {
	Transfer(ctx context.Context, mint, from, to string, amount int64) (signature string, err error)
}

// KYCLevel describes the depth of identity verification performed.
type KYCLevel string

const (
	KYCLevelNone  KYCLevel = "NONE"
	KYCLevelBasic KYCLevel = "BASIC"
	KYCLevelFull  KYCLevel = "FULL"
)

// KYCResult is returned by KYC.IsVerified.
type KYCResult struct {
	Verified  bool
	Level     KYCLevel
	ExpiresAt *time.Time
}

// KYC answers identity-verification questions. It is consulted by an
// admission filter, not per engine call — the engines themselves gate on
// User.KYCStatus already recorded by that filter.
type KYC interface {
	IsVerified(ctx context.Context, walletAddress string) (KYCResult, error)
}

// Set bundles every collaborator an engine may need, so constructors take
// one argument instead of five.
type Set struct {
	Tokenization  Tokenization
	Escrow        Escrow
	Payment       Payment
	TokenTransfer TokenTransfer
	KYC           KYC
}
