// Package asset holds the tokenized-asset model: a bank-owned real-world
// item represented as a fixed supply of priced tokens, moving through a
// tokenization status and, independently, a marketplace listing status.
package asset

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenizationStatus tracks an asset's progress toward becoming an on-chain
// security. See AssetLifecycle for the allowed transitions.
type TokenizationStatus string

const (
	StatusDraft               TokenizationStatus = "DRAFT"
	StatusPendingReview       TokenizationStatus = "PENDING_REVIEW"
	StatusPendingTokenization TokenizationStatus = "PENDING_TOKENIZATION"
	StatusTokenized           TokenizationStatus = "TOKENIZED"
	StatusFailed              TokenizationStatus = "FAILED"
)

// ListingStatus tracks an asset's availability on the primary marketplace.
// It is independent of TokenizationStatus except that it may only leave
// ListingUnlisted once the asset is TOKENIZED.
type ListingStatus string

const (
	ListingUnlisted ListingStatus = "UNLISTED"
	ListingPending  ListingStatus = "PENDING"
	ListingListed   ListingStatus = "LISTED"
	ListingSoldOut  ListingStatus = "SOLD_OUT"
	ListingDelisted ListingStatus = "DELISTED"
)

// Type enumerates the kinds of real-world asset the platform tokenizes.
type Type string

const (
	TypeRealEstate       Type = "REAL_ESTATE"
	TypeCommodity        Type = "COMMODITY"
	TypeFixedIncome      Type = "FIXED_INCOME"
	TypePrivateEquity    Type = "PRIVATE_EQUITY"
	TypeInfrastructure   Type = "INFRASTRUCTURE"
	TypeArtCollectible   Type = "ART_COLLECTIBLE"
	TypeOther            Type = "OTHER"
)

// Asset is a bank-owned real-world item represented as TotalSupply tokens.
type Asset struct {
	ID          string
	BankID      string
	Name        string
	Description string
	AssetType   Type

	TotalValue      decimal.Decimal
	TotalSupply     int64
	AvailableSupply int64
	PricePerToken   decimal.Decimal

	MintAddress          string
	MetadataURI          string
	TokenizationOfferingID string

	Symbol            string
	MinimumInvestment decimal.Decimal
	MaximumInvestment decimal.Decimal
	OfferingStart     *time.Time
	OfferingEnd       *time.Time

	TokenizationStatus TokenizationStatus
	ListingStatus      ListingStatus

	TokenizedAt *time.Time
	ListedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DerivedPricePerToken returns TotalValue/TotalSupply, the default price when
// the caller does not override it at creation time.
func (a Asset) DerivedPricePerToken() decimal.Decimal {
	if a.TotalSupply == 0 {
		return decimal.Zero
	}
	return a.TotalValue.DivRound(decimal.NewFromInt(a.TotalSupply), 18)
}

// CanMutate reports whether field-level edits are permitted for the asset's
// current tokenization status.
func (a Asset) CanMutate() bool {
	switch a.TokenizationStatus {
	case StatusDraft, StatusPendingReview, StatusFailed:
		return true
	default:
		return false
	}
}

// CanDelete reports whether the asset (and cascading documents) may be
// removed outright.
func (a Asset) CanDelete() bool {
	return a.TokenizationStatus == StatusDraft
}

// CanTokenize reports whether tokenize() may be invoked from the asset's
// current status.
func (a Asset) CanTokenize() bool {
	switch a.TokenizationStatus {
	case StatusDraft, StatusPendingTokenization, StatusFailed:
		return true
	default:
		return false
	}
}
