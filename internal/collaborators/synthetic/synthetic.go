// Package synthetic provides deterministic, non-networked collaborator
// backends, which cmd/controlplane always wires. They exist so the
// engines are runnable and testable without real external systems, while
// still honoring the idempotent-on-retry contract every collaborator call
// must satisfy: every generated identifier is a deterministic function of
// its inputs rather than randomly minted.
package synthetic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/r3e-network/rwa-control-plane/internal/collaborators"
)

var synthNamespace = uuid.MustParse("6f1c0b2e-6e8e-4c8a-9a2e-3a7a6b6b6b6b")

func deterministicID(parts ...string) string {
	key := ""
	for _, p := range parts {
		key += p + "|"
	}
	return uuid.NewSHA1(synthNamespace, []byte(key)).String()
}

// Tokenization derives offeringId/mintAddress from (assetId, symbol).
type Tokenization struct{}

func (Tokenization) CreateOffering(_ context.Context, params collaborators.OfferingParams) (string, error) {
	return deterministicID("offering", params.AssetID, params.Symbol), nil
}

func (Tokenization) DeployToken(_ context.Context, offeringID string, authority string) (collaborators.DeployResult, error) {
	return collaborators.DeployResult{
		MintAddress: deterministicID("mint", offeringID, authority),
		MetadataURI: fmt.Sprintf("synthetic://metadata/%s", offeringID),
		TxSignature: deterministicID("deploy-sig", offeringID),
	}, nil
}

// Escrow derives an escrow id from (buyer, seller, amount, expiresAt) and
// keeps no state; Release and Refund are no-ops.
type Escrow struct{}

func (Escrow) Open(_ context.Context, buyer, seller string, amount decimal.Decimal, expiresAt time.Time) (string, error) {
	return deterministicID("escrow", buyer, seller, amount.String(), expiresAt.UTC().String()), nil
}

func (Escrow) Release(_ context.Context, _ string) error { return nil }

func (Escrow) Refund(_ context.Context, _ string, _ string) error { return nil }

// Payment accepts every inbound signature and mints a deterministic
// outbound signature.
type Payment struct{}

func (Payment) VerifyInbound(_ context.Context, _ string, _ decimal.Decimal, _ string) (bool, error) {
	return true, nil
}

func (Payment) TransferOut(_ context.Context, from, to string, amount decimal.Decimal) (string, error) {
	return deterministicID("payment-out", from, to, amount.String()), nil
}

// TokenTransfer mints a deterministic signature for every transfer.
type TokenTransfer struct{}

func (TokenTransfer) Transfer(_ context.Context, mint, from, to string, amount int64) (string, error) {
	return deterministicID("transfer", mint, from, to, fmt.Sprintf("%d", amount)), nil
}

// KYC reports every wallet as fully verified; real admission gating
// happens against User.KYCStatus, which this backend never touches.
type KYC struct{}

func (KYC) IsVerified(_ context.Context, walletAddress string) (collaborators.KYCResult, error) {
	return collaborators.KYCResult{Verified: true, Level: collaborators.KYCLevelFull}, nil
}

// Set builds a collaborators.Set wired entirely with synthetic backends.
func Set() collaborators.Set {
	return collaborators.Set{
		Tokenization:  Tokenization{},
		Escrow:        Escrow{},
		Payment:       Payment{},
		TokenTransfer: TokenTransfer{},
		KYC:           KYC{},
	}
}
