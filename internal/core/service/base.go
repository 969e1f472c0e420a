package service

import (
	"context"
	"strings"

	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
)

// Base bundles helpers shared by the tokenization, transaction, and auction
// engines: user/investor existence checks and the KYC gate every purchase
// and bid flows through.
type Base struct {
	users     storage.UserStore
	investors storage.InvestorStore
}

// NewBase constructs a helper bound to the provided stores.
func NewBase(users storage.UserStore, investors storage.InvestorStore) *Base {
	return &Base{users: users, investors: investors}
}

// EnsureUser validates presence and existence of a user ID.
func (b *Base) EnsureUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domainerrors.InvalidInput("user_id", "user_id is required")
	}
	if b.users == nil {
		return nil
	}
	if _, err := b.users.GetUser(ctx, userID); err != nil {
		return err
	}
	return nil
}

// EnsureInvestor validates presence and existence of an investor ID.
func (b *Base) EnsureInvestor(ctx context.Context, investorID string) error {
	if strings.TrimSpace(investorID) == "" {
		return domainerrors.InvalidInput("investor_id", "investor_id is required")
	}
	if b.investors == nil {
		return nil
	}
	if _, err := b.investors.GetInvestor(ctx, investorID); err != nil {
		return err
	}
	return nil
}

// EnsureVerifiedUser validates that userID exists and is KYC VERIFIED,
// returning CodeKYCRequired otherwise. TransactionEngine.Create calls this
// for the acting buyer before reserving supply or creating escrow.
func (b *Base) EnsureVerifiedUser(ctx context.Context, userID string) error {
	u, err := b.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !u.IsVerified() {
		return domainerrors.KYCRequired(u.ID)
	}
	return nil
}

// EnsureVerifiedWallet resolves walletAddress to a User and validates KYC
// VERIFIED status. AuctionEngine.PlaceBid calls this for the bidder wallet.
func (b *Base) EnsureVerifiedWallet(ctx context.Context, walletAddress string) (string, error) {
	u, err := b.users.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		return "", err
	}
	if !u.IsVerified() {
		return "", domainerrors.KYCRequired(u.ID)
	}
	return u.ID, nil
}
