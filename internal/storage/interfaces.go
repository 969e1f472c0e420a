// Package storage defines the persistence contracts consumed by the
// tokenization, transaction, and auction engines, plus the unit-of-work
// primitive every multi-table mutation runs inside.
package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	"github.com/r3e-network/rwa-control-plane/internal/domain/auction"
	"github.com/r3e-network/rwa-control-plane/internal/domain/bank"
	"github.com/r3e-network/rwa-control-plane/internal/domain/bid"
	"github.com/r3e-network/rwa-control-plane/internal/domain/document"
	"github.com/r3e-network/rwa-control-plane/internal/domain/holding"
	"github.com/r3e-network/rwa-control-plane/internal/domain/investor"
	"github.com/r3e-network/rwa-control-plane/internal/domain/transaction"
	"github.com/r3e-network/rwa-control-plane/internal/domain/user"
)

// AssetFilter narrows ListAssets/CountAssets by the fields the marketplace
// browse and portfolio views need to filter on. MinValue/MaxValue bound
// TotalValue inclusively; Search matches Name or Description
// case-insensitively.
type AssetFilter struct {
	BankID             string
	AssetType          string
	TokenizationStatus string
	ListingStatus      string
	MinValue           *decimal.Decimal
	MaxValue           *decimal.Decimal
	Search             string
}

// TransactionFilter narrows ListTransactions/CountTransactions and the
// aggregate queries below.
type TransactionFilter struct {
	AssetID  string
	BuyerID  string
	SellerID string
	Type     string
	Status   string
}

// AuctionFilter narrows ListAuctions/CountAuctions. MinReservePrice/
// MaxReservePrice bound ReservePrice inclusively.
type AuctionFilter struct {
	AssetID         string
	Status          string
	MinReservePrice *decimal.Decimal
	MaxReservePrice *decimal.Decimal
}

// UserStore persists platform users (investors, asset owners, operators).
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

// InvestorStore persists investor profiles.
type InvestorStore interface {
	CreateInvestor(ctx context.Context, inv investor.Profile) (investor.Profile, error)
	UpdateInvestor(ctx context.Context, inv investor.Profile) (investor.Profile, error)
	GetInvestor(ctx context.Context, id string) (investor.Profile, error)
	GetInvestorByUserID(ctx context.Context, userID string) (investor.Profile, error)
	ListInvestors(ctx context.Context) ([]investor.Profile, error)
}

// BankStore persists issuing-bank institutions.
type BankStore interface {
	CreateBank(ctx context.Context, b bank.Bank) (bank.Bank, error)
	UpdateBank(ctx context.Context, b bank.Bank) (bank.Bank, error)
	GetBank(ctx context.Context, id string) (bank.Bank, error)
	// GetBankByCode is the findBy(uniqueField) accessor for Bank.Code.
	GetBankByCode(ctx context.Context, code string) (bank.Bank, error)
	ListBanks(ctx context.Context) ([]bank.Bank, error)
}

// AssetStore persists real-world assets moving through the tokenization
// lifecycle.
type AssetStore interface {
	CreateAsset(ctx context.Context, a asset.Asset) (asset.Asset, error)
	UpdateAsset(ctx context.Context, a asset.Asset) (asset.Asset, error)
	GetAsset(ctx context.Context, id string) (asset.Asset, error)
	// GetAssetForUpdate locks the asset row for the duration of the
	// enclosing transaction, serializing concurrent supply mutations.
	GetAssetForUpdate(ctx context.Context, id string) (asset.Asset, error)
	ListAssets(ctx context.Context, filter AssetFilter, pagination Pagination, sort Sort) (ListResult[asset.Asset], error)
	CountAssets(ctx context.Context, filter AssetFilter) (int, error)
	DeleteAsset(ctx context.Context, id string) error
}

// DocumentStore persists supporting documents attached to an asset.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d document.Document) (document.Document, error)
	GetDocument(ctx context.Context, id string) (document.Document, error)
	ListDocuments(ctx context.Context, assetID string) ([]document.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// HoldingStore persists per-investor token balances.
type HoldingStore interface {
	UpsertHolding(ctx context.Context, h holding.Holding) (holding.Holding, error)
	GetHolding(ctx context.Context, assetID, investorID string) (holding.Holding, error)
	// GetHoldingForUpdate locks the holding row (if it exists) for the
	// duration of the enclosing transaction.
	GetHoldingForUpdate(ctx context.Context, assetID, investorID string) (holding.Holding, error)
	ListHoldingsByAsset(ctx context.Context, assetID string) ([]holding.Holding, error)
	ListHoldingsByInvestor(ctx context.Context, investorID string) ([]holding.Holding, error)
	// SumTokenAmountByAsset sums TokenAmount across every holding on
	// assetID. AssetLifecycle.Stats' soldTokens figure is defined as this
	// sum, not as a derived supply subtraction.
	SumTokenAmountByAsset(ctx context.Context, assetID string) (int64, error)
}

// TransactionFilterStatusCounts maps a transaction status to the count of
// filter-matching transactions in that status.
type TransactionFilterStatusCounts map[string]int

// TransactionSums totals amount and tokenAmount across a set of
// filter-matching transactions.
type TransactionSums struct {
	Amount      decimal.Decimal
	TokenAmount int64
}

// TransactionStore persists purchase transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t transaction.Transaction) (transaction.Transaction, error)
	UpdateTransaction(ctx context.Context, t transaction.Transaction) (transaction.Transaction, error)
	GetTransaction(ctx context.Context, id string) (transaction.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter, pagination Pagination, sort Sort) (ListResult[transaction.Transaction], error)
	CountTransactions(ctx context.Context, filter TransactionFilter) (int, error)
	// CountTransactionsByStatus groups filter-matching transactions by
	// status.
	CountTransactionsByStatus(ctx context.Context, filter TransactionFilter) (TransactionFilterStatusCounts, error)
	// SumTransactions totals amount and tokenAmount across filter-matching
	// transactions.
	SumTransactions(ctx context.Context, filter TransactionFilter) (TransactionSums, error)
}

// AuctionStore persists auctions.
type AuctionStore interface {
	CreateAuction(ctx context.Context, a auction.Auction) (auction.Auction, error)
	UpdateAuction(ctx context.Context, a auction.Auction) (auction.Auction, error)
	GetAuction(ctx context.Context, id string) (auction.Auction, error)
	GetAuctionForUpdate(ctx context.Context, id string) (auction.Auction, error)
	ListAuctions(ctx context.Context, filter AuctionFilter, pagination Pagination, sort Sort) (ListResult[auction.Auction], error)
	CountAuctions(ctx context.Context, filter AuctionFilter) (int, error)
	// ListOverlapping returns auctions for assetID whose scheduling window
	// is open (SCHEDULED or ACTIVE) and overlaps [start, end), used to
	// enforce the non-overlap invariant.
	ListOverlapping(ctx context.Context, assetID string, start, end time.Time) ([]auction.Auction, error)
	// ListDueToActivate returns SCHEDULED auctions whose StartTime has
	// passed, for the scheduler tick.
	ListDueToActivate(ctx context.Context, asOf time.Time, limit int) ([]auction.Auction, error)
	// ListDueToEnd returns ACTIVE auctions whose EndTime has passed, for
	// the scheduler tick.
	ListDueToEnd(ctx context.Context, asOf time.Time, limit int) ([]auction.Auction, error)
}

// BidStore persists bids placed against auctions.
type BidStore interface {
	CreateBid(ctx context.Context, b bid.Bid) (bid.Bid, error)
	GetBid(ctx context.Context, id string) (bid.Bid, error)
	// ListBids returns every bid for auctionID with no pagination or
	// guaranteed order, for cascades (refund loops, cancellation) that need
	// the complete set rather than a single page.
	ListBids(ctx context.Context, auctionID string) ([]bid.Bid, error)
	// BidHistory returns a single page of bids for auctionID, ordered by
	// createdAt desc by default. This backs the auction bidHistory
	// operation.
	BidHistory(ctx context.Context, auctionID string, pagination Pagination, sort Sort) (ListResult[bid.Bid], error)
	// ClearWinning unmarks every other bid on the auction so at most one
	// bid carries IsWinning, then the caller marks the new winner.
	ClearWinning(ctx context.Context, auctionID string) error
	// DeleteBid removes a non-winning bid, used by CancelBid.
	DeleteBid(ctx context.Context, id string) error
}

// Store aggregates every per-entity store plus the unit-of-work primitive.
// Engines depend on Store, never on a concrete postgres/memory package.
type Store interface {
	UserStore
	InvestorStore
	BankStore
	AssetStore
	DocumentStore
	HoldingStore
	TransactionStore
	AuctionStore
	BidStore

	// Atomic runs fn with a context carrying a single transaction; if fn
	// returns an error the transaction is rolled back, else committed.
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}
