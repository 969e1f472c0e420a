// Package bid holds individual bids placed against an Auction.
package bid

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bid is a single offer against an auction. At most one bid per auction may
// have IsWinning set.
type Bid struct {
	ID         string
	AuctionID  string
	Bidder     string
	Amount     decimal.Decimal
	Signature  string
	IsWinning  bool
	CreatedAt  time.Time
}
