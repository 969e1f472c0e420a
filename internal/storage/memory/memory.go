// Package memory is a thread-safe in-memory Store implementation used by
// engine unit tests and local prototyping. It trades real transaction
// isolation for two mutexes: Atomic holds atomicMu for its whole callback,
// and each method holds mu for its own map access, which is sufficient for
// the engines' single-process tests. Atomic does not roll back: writes a
// callback made before returning an error stay in the store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
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
	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
)

// Store is the in-memory storage.Store implementation.
type Store struct {
	// atomicMu serializes whole Atomic callbacks against each other so two
	// concurrent multi-step operations (e.g. two purchases racing the same
	// asset's availableSupply) cannot interleave. It is distinct from mu,
	// which individual CRUD methods hold only for the duration of a single
	// map access — methods called from inside an Atomic callback still
	// need to acquire mu without deadlocking against the held atomicMu.
	atomicMu sync.Mutex
	mu       sync.Mutex

	users        map[string]user.User
	investors    map[string]investor.Profile
	banks        map[string]bank.Bank
	assets       map[string]asset.Asset
	documents    map[string]document.Document
	holdings     map[string]holding.Holding
	transactions map[string]transaction.Transaction
	auctions     map[string]auction.Auction
	bids         map[string]bid.Bid
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[string]user.User),
		investors:    make(map[string]investor.Profile),
		banks:        make(map[string]bank.Bank),
		assets:       make(map[string]asset.Asset),
		documents:    make(map[string]document.Document),
		holdings:     make(map[string]holding.Holding),
		transactions: make(map[string]transaction.Transaction),
		auctions:     make(map[string]auction.Auction),
		bids:         make(map[string]bid.Bid),
	}
}

var _ storage.Store = (*Store)(nil)

// Atomic serializes fn against every other Atomic callback so multi-step
// read-modify-write sequences (reserve supply, then insert a row) observe
// a consistent view. The callback receives ctx unchanged; the memory store
// has no notion of a nested transaction, so fn's individual store calls
// still take mu for their own map access as usual.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	s.atomicMu.Lock()
	defer s.atomicMu.Unlock()
	return fn(ctx)
}

func (s *Store) lock()   { s.mu.Lock() }
func (s *Store) unlock() { s.mu.Unlock() }

// --- users ---------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.lock()
	defer s.unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.lock()
	defer s.unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return user.User{}, domainerrors.NotFound("USER", u.ID)
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.lock()
	defer s.unlock()
	u, ok := s.users[id]
	if !ok {
		return user.User{}, domainerrors.NotFound("USER", id)
	}
	return u, nil
}

func (s *Store) GetUserByWallet(_ context.Context, walletAddress string) (user.User, error) {
	s.lock()
	defer s.unlock()
	for _, u := range s.users {
		if u.WalletAddress != "" && u.WalletAddress == walletAddress {
			return u, nil
		}
	}
	return user.User{}, domainerrors.NotFound("USER", walletAddress)
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.lock()
	defer s.unlock()
	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- investors -------------------------------------------------------------

func (s *Store) CreateInvestor(_ context.Context, inv investor.Profile) (investor.Profile, error) {
	s.lock()
	defer s.unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	inv.CreatedAt, inv.UpdatedAt = now, now
	s.investors[inv.ID] = inv
	return inv, nil
}

func (s *Store) UpdateInvestor(_ context.Context, inv investor.Profile) (investor.Profile, error) {
	s.lock()
	defer s.unlock()
	existing, ok := s.investors[inv.ID]
	if !ok {
		return investor.Profile{}, domainerrors.NotFound("INVESTOR", inv.ID)
	}
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = time.Now().UTC()
	s.investors[inv.ID] = inv
	return inv, nil
}

func (s *Store) GetInvestor(_ context.Context, id string) (investor.Profile, error) {
	s.lock()
	defer s.unlock()
	inv, ok := s.investors[id]
	if !ok {
		return investor.Profile{}, domainerrors.NotFound("INVESTOR", id)
	}
	return inv, nil
}

func (s *Store) GetInvestorByUserID(_ context.Context, userID string) (investor.Profile, error) {
	s.lock()
	defer s.unlock()
	for _, inv := range s.investors {
		if inv.UserID == userID {
			return inv, nil
		}
	}
	return investor.Profile{}, domainerrors.NotFound("INVESTOR", userID)
}

func (s *Store) ListInvestors(_ context.Context) ([]investor.Profile, error) {
	s.lock()
	defer s.unlock()
	out := make([]investor.Profile, 0, len(s.investors))
	for _, inv := range s.investors {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- banks -----------------------------------------------------------------

func (s *Store) CreateBank(_ context.Context, b bank.Bank) (bank.Bank, error) {
	s.lock()
	defer s.unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	s.banks[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBank(_ context.Context, b bank.Bank) (bank.Bank, error) {
	s.lock()
	defer s.unlock()
	existing, ok := s.banks[b.ID]
	if !ok {
		return bank.Bank{}, domainerrors.NotFound("BANK", b.ID)
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	s.banks[b.ID] = b
	return b, nil
}

func (s *Store) GetBank(_ context.Context, id string) (bank.Bank, error) {
	s.lock()
	defer s.unlock()
	b, ok := s.banks[id]
	if !ok {
		return bank.Bank{}, domainerrors.NotFound("BANK", id)
	}
	return b, nil
}

func (s *Store) GetBankByCode(_ context.Context, code string) (bank.Bank, error) {
	s.lock()
	defer s.unlock()
	for _, b := range s.banks {
		if b.Code == code {
			return b, nil
		}
	}
	return bank.Bank{}, domainerrors.NotFound("BANK", code)
}

func (s *Store) ListBanks(_ context.Context) ([]bank.Bank, error) {
	s.lock()
	defer s.unlock()
	out := make([]bank.Bank, 0, len(s.banks))
	for _, b := range s.banks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- assets ------------------------------------------------------------

func (s *Store) CreateAsset(_ context.Context, a asset.Asset) (asset.Asset, error) {
	s.lock()
	defer s.unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.assets[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAsset(_ context.Context, a asset.Asset) (asset.Asset, error) {
	s.lock()
	defer s.unlock()
	existing, ok := s.assets[a.ID]
	if !ok {
		return asset.Asset{}, domainerrors.NotFound("ASSET", a.ID)
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.assets[a.ID] = a
	return a, nil
}

func (s *Store) GetAsset(_ context.Context, id string) (asset.Asset, error) {
	s.lock()
	defer s.unlock()
	a, ok := s.assets[id]
	if !ok {
		return asset.Asset{}, domainerrors.NotFound("ASSET", id)
	}
	return a, nil
}

// GetAssetForUpdate is identical to GetAsset here: Atomic already holds the
// store-wide mutex for the whole callback, so no finer-grained row lock is
// needed.
func (s *Store) GetAssetForUpdate(ctx context.Context, id string) (asset.Asset, error) {
	return s.GetAsset(ctx, id)
}

func matchAssetFilter(a asset.Asset, filter storage.AssetFilter) bool {
	if filter.BankID != "" && a.BankID != filter.BankID {
		return false
	}
	if filter.AssetType != "" && string(a.AssetType) != filter.AssetType {
		return false
	}
	if filter.TokenizationStatus != "" && string(a.TokenizationStatus) != filter.TokenizationStatus {
		return false
	}
	if filter.ListingStatus != "" && string(a.ListingStatus) != filter.ListingStatus {
		return false
	}
	if filter.MinValue != nil && a.TotalValue.LessThan(*filter.MinValue) {
		return false
	}
	if filter.MaxValue != nil && a.TotalValue.GreaterThan(*filter.MaxValue) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(a.Name), needle) && !strings.Contains(strings.ToLower(a.Description), needle) {
			return false
		}
	}
	return true
}

func (s *Store) ListAssets(_ context.Context, filter storage.AssetFilter, pagination storage.Pagination, sortBy storage.Sort) (storage.ListResult[asset.Asset], error) {
	s.lock()
	defer s.unlock()
	out := make([]asset.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		if matchAssetFilter(a, filter) {
			out = append(out, a)
		}
	}
	sort.Slice(out, createdAtLess(sortBy, func(i int) time.Time { return out[i].CreatedAt }))
	pagination = pagination.Normalize()
	return storage.NewListResult(paginate(out, pagination.Offset(), pagination.Limit), len(out), pagination), nil
}

func (s *Store) CountAssets(_ context.Context, filter storage.AssetFilter) (int, error) {
	s.lock()
	defer s.unlock()
	count := 0
	for _, a := range s.assets {
		if matchAssetFilter(a, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteAsset(_ context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.assets[id]; !ok {
		return domainerrors.NotFound("ASSET", id)
	}
	delete(s.assets, id)
	return nil
}

// --- documents ---------------------------------------------------------

func (s *Store) CreateDocument(_ context.Context, d document.Document) (document.Document, error) {
	s.lock()
	defer s.unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()
	s.documents[d.ID] = d
	return d, nil
}

func (s *Store) GetDocument(_ context.Context, id string) (document.Document, error) {
	s.lock()
	defer s.unlock()
	d, ok := s.documents[id]
	if !ok {
		return document.Document{}, domainerrors.NotFound("DOCUMENT", id)
	}
	return d, nil
}

func (s *Store) ListDocuments(_ context.Context, assetID string) ([]document.Document, error) {
	s.lock()
	defer s.unlock()
	out := make([]document.Document, 0)
	for _, d := range s.documents {
		if d.AssetID == assetID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.documents[id]; !ok {
		return domainerrors.NotFound("DOCUMENT", id)
	}
	delete(s.documents, id)
	return nil
}

// --- holdings ------------------------------------------------------------

func holdingKey(assetID, investorID string) string { return assetID + "|" + investorID }

func (s *Store) UpsertHolding(_ context.Context, h holding.Holding) (holding.Holding, error) {
	s.lock()
	defer s.unlock()
	key := holdingKey(h.AssetID, h.InvestorProfileID)
	existing, ok := s.findHoldingLocked(key)
	now := time.Now().UTC()
	if ok {
		h.ID = existing.ID
		h.CreatedAt = existing.CreatedAt
	} else if h.ID == "" {
		h.ID = uuid.NewString()
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	s.holdings[h.ID] = h
	return h, nil
}

func (s *Store) findHoldingLocked(key string) (holding.Holding, bool) {
	for _, h := range s.holdings {
		if holdingKey(h.AssetID, h.InvestorProfileID) == key {
			return h, true
		}
	}
	return holding.Holding{}, false
}

func (s *Store) GetHolding(_ context.Context, assetID, investorID string) (holding.Holding, error) {
	s.lock()
	defer s.unlock()
	h, ok := s.findHoldingLocked(holdingKey(assetID, investorID))
	if !ok {
		return holding.Holding{}, domainerrors.NotFound("HOLDING", holdingKey(assetID, investorID))
	}
	return h, nil
}

// GetHoldingForUpdate mirrors GetHolding; see GetAssetForUpdate.
func (s *Store) GetHoldingForUpdate(ctx context.Context, assetID, investorID string) (holding.Holding, error) {
	return s.GetHolding(ctx, assetID, investorID)
}

func (s *Store) ListHoldingsByAsset(_ context.Context, assetID string) ([]holding.Holding, error) {
	s.lock()
	defer s.unlock()
	out := make([]holding.Holding, 0)
	for _, h := range s.holdings {
		if h.AssetID == assetID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListHoldingsByInvestor(_ context.Context, investorID string) ([]holding.Holding, error) {
	s.lock()
	defer s.unlock()
	out := make([]holding.Holding, 0)
	for _, h := range s.holdings {
		if h.InvestorProfileID == investorID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SumTokenAmountByAsset(_ context.Context, assetID string) (int64, error) {
	s.lock()
	defer s.unlock()
	var total int64
	for _, h := range s.holdings {
		if h.AssetID == assetID {
			total += h.TokenAmount
		}
	}
	return total, nil
}

// --- transactions --------------------------------------------------------

func (s *Store) CreateTransaction(_ context.Context, t transaction.Transaction) (transaction.Transaction, error) {
	s.lock()
	defer s.unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t transaction.Transaction) (transaction.Transaction, error) {
	s.lock()
	defer s.unlock()
	existing, ok := s.transactions[t.ID]
	if !ok {
		return transaction.Transaction{}, domainerrors.NotFound("TRANSACTION", t.ID)
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (transaction.Transaction, error) {
	s.lock()
	defer s.unlock()
	t, ok := s.transactions[id]
	if !ok {
		return transaction.Transaction{}, domainerrors.NotFound("TRANSACTION", id)
	}
	return t, nil
}

func matchTransactionFilter(t transaction.Transaction, filter storage.TransactionFilter) bool {
	if filter.AssetID != "" && t.AssetID != filter.AssetID {
		return false
	}
	if filter.BuyerID != "" && t.BuyerID != filter.BuyerID {
		return false
	}
	if filter.SellerID != "" && t.SellerID != filter.SellerID {
		return false
	}
	if filter.Type != "" && string(t.Type) != filter.Type {
		return false
	}
	if filter.Status != "" && string(t.Status) != filter.Status {
		return false
	}
	return true
}

func (s *Store) ListTransactions(_ context.Context, filter storage.TransactionFilter, pagination storage.Pagination, sortBy storage.Sort) (storage.ListResult[transaction.Transaction], error) {
	s.lock()
	defer s.unlock()
	out := make([]transaction.Transaction, 0)
	for _, t := range s.transactions {
		if matchTransactionFilter(t, filter) {
			out = append(out, t)
		}
	}
	sort.Slice(out, createdAtLess(sortBy, func(i int) time.Time { return out[i].CreatedAt }))
	pagination = pagination.Normalize()
	return storage.NewListResult(paginate(out, pagination.Offset(), pagination.Limit), len(out), pagination), nil
}

func (s *Store) CountTransactions(_ context.Context, filter storage.TransactionFilter) (int, error) {
	s.lock()
	defer s.unlock()
	count := 0
	for _, t := range s.transactions {
		if matchTransactionFilter(t, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountTransactionsByStatus(_ context.Context, filter storage.TransactionFilter) (storage.TransactionFilterStatusCounts, error) {
	s.lock()
	defer s.unlock()
	out := storage.TransactionFilterStatusCounts{}
	for _, t := range s.transactions {
		if matchTransactionFilter(t, filter) {
			out[string(t.Status)]++
		}
	}
	return out, nil
}

func (s *Store) SumTransactions(_ context.Context, filter storage.TransactionFilter) (storage.TransactionSums, error) {
	s.lock()
	defer s.unlock()
	sums := storage.TransactionSums{Amount: decimal.Zero}
	for _, t := range s.transactions {
		if matchTransactionFilter(t, filter) {
			sums.Amount = sums.Amount.Add(t.Amount)
			sums.TokenAmount += t.TokenAmount
		}
	}
	return sums, nil
}

// --- auctions --------------------------------------------------------------

func (s *Store) CreateAuction(_ context.Context, a auction.Auction) (auction.Auction, error) {
	s.lock()
	defer s.unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.auctions[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAuction(_ context.Context, a auction.Auction) (auction.Auction, error) {
	s.lock()
	defer s.unlock()
	existing, ok := s.auctions[a.ID]
	if !ok {
		return auction.Auction{}, domainerrors.NotFound("AUCTION", a.ID)
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.auctions[a.ID] = a
	return a, nil
}

func (s *Store) GetAuction(_ context.Context, id string) (auction.Auction, error) {
	s.lock()
	defer s.unlock()
	a, ok := s.auctions[id]
	if !ok {
		return auction.Auction{}, domainerrors.NotFound("AUCTION", id)
	}
	return a, nil
}

// GetAuctionForUpdate mirrors GetAuction; see GetAssetForUpdate.
func (s *Store) GetAuctionForUpdate(ctx context.Context, id string) (auction.Auction, error) {
	return s.GetAuction(ctx, id)
}

func matchAuctionFilter(a auction.Auction, filter storage.AuctionFilter) bool {
	if filter.AssetID != "" && a.AssetID != filter.AssetID {
		return false
	}
	if filter.Status != "" && string(a.Status) != filter.Status {
		return false
	}
	if filter.MinReservePrice != nil && a.ReservePrice.LessThan(*filter.MinReservePrice) {
		return false
	}
	if filter.MaxReservePrice != nil && a.ReservePrice.GreaterThan(*filter.MaxReservePrice) {
		return false
	}
	return true
}

func (s *Store) ListAuctions(_ context.Context, filter storage.AuctionFilter, pagination storage.Pagination, sortBy storage.Sort) (storage.ListResult[auction.Auction], error) {
	s.lock()
	defer s.unlock()
	out := make([]auction.Auction, 0)
	for _, a := range s.auctions {
		if matchAuctionFilter(a, filter) {
			out = append(out, a)
		}
	}
	sort.Slice(out, createdAtLess(sortBy, func(i int) time.Time { return out[i].CreatedAt }))
	pagination = pagination.Normalize()
	return storage.NewListResult(paginate(out, pagination.Offset(), pagination.Limit), len(out), pagination), nil
}

func (s *Store) CountAuctions(_ context.Context, filter storage.AuctionFilter) (int, error) {
	s.lock()
	defer s.unlock()
	count := 0
	for _, a := range s.auctions {
		if matchAuctionFilter(a, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListOverlapping(_ context.Context, assetID string, start, end time.Time) ([]auction.Auction, error) {
	s.lock()
	defer s.unlock()
	out := make([]auction.Auction, 0)
	for _, a := range s.auctions {
		if a.AssetID != assetID || !a.IsOpenForScheduling() {
			continue
		}
		if a.Overlaps(start, end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) ListDueToActivate(_ context.Context, asOf time.Time, limit int) ([]auction.Auction, error) {
	s.lock()
	defer s.unlock()
	out := make([]auction.Auction, 0)
	for _, a := range s.auctions {
		if a.Status == auction.StatusScheduled && !a.StartTime.After(asOf) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return capSlice(out, limit), nil
}

func (s *Store) ListDueToEnd(_ context.Context, asOf time.Time, limit int) ([]auction.Auction, error) {
	s.lock()
	defer s.unlock()
	out := make([]auction.Auction, 0)
	for _, a := range s.auctions {
		if a.Status == auction.StatusActive && !a.EndTime.After(asOf) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	return capSlice(out, limit), nil
}

// --- bids --------------------------------------------------------------

func (s *Store) CreateBid(_ context.Context, b bid.Bid) (bid.Bid, error) {
	s.lock()
	defer s.unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now().UTC()
	s.bids[b.ID] = b
	return b, nil
}

func (s *Store) GetBid(_ context.Context, id string) (bid.Bid, error) {
	s.lock()
	defer s.unlock()
	b, ok := s.bids[id]
	if !ok {
		return bid.Bid{}, domainerrors.NotFound("bid", id)
	}
	return b, nil
}

func (s *Store) DeleteBid(_ context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.bids[id]; !ok {
		return domainerrors.NotFound("bid", id)
	}
	delete(s.bids, id)
	return nil
}

func (s *Store) ListBids(_ context.Context, auctionID string) ([]bid.Bid, error) {
	s.lock()
	defer s.unlock()
	out := make([]bid.Bid, 0)
	for _, b := range s.bids {
		if b.AuctionID == auctionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) BidHistory(_ context.Context, auctionID string, pagination storage.Pagination, sortBy storage.Sort) (storage.ListResult[bid.Bid], error) {
	s.lock()
	defer s.unlock()
	out := make([]bid.Bid, 0)
	for _, b := range s.bids {
		if b.AuctionID == auctionID {
			out = append(out, b)
		}
	}
	sort.Slice(out, createdAtLess(sortBy, func(i int) time.Time { return out[i].CreatedAt }))
	pagination = pagination.Normalize()
	return storage.NewListResult(paginate(out, pagination.Offset(), pagination.Limit), len(out), pagination), nil
}

func (s *Store) ClearWinning(_ context.Context, auctionID string) error {
	s.lock()
	defer s.unlock()
	for id, b := range s.bids {
		if b.AuctionID == auctionID && b.IsWinning {
			b.IsWinning = false
			s.bids[id] = b
		}
	}
	return nil
}

// createdAtLess returns a sort.Slice comparator ordering by createdAt per
// sortBy.Direction. The field every List query sorts by here; callers that
// pass a different Sort.Field still get a well-defined order rather than an
// error, matching the "default createdAt desc" contract.
func createdAtLess(sortBy storage.Sort, at func(i int) time.Time) func(i, j int) bool {
	sortBy = sortBy.Normalize()
	if sortBy.Direction == storage.SortAsc {
		return func(i, j int) bool { return at(i).Before(at(j)) }
	}
	return func(i, j int) bool { return at(i).After(at(j)) }
}

func capSlice(items []auction.Auction, limit int) []auction.Auction {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
