// Package auction holds the time-boxed competitive-sale model driven by
// AuctionEngine: a fixed TokenAmount of one asset sold to the highest bidder
// above ReservePrice, with concurrent bidding, displacement, and refunds.
package auction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is a step in the auction state machine.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusActive    Status = "ACTIVE"
	StatusEnded     Status = "ENDED"
	StatusSettled   Status = "SETTLED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusSettled || s == StatusCancelled
}

// Auction is a time-boxed sale of TokenAmount tokens of one asset.
type Auction struct {
	ID              string
	AssetID         string
	ReservePrice    decimal.Decimal
	CurrentBid      *decimal.Decimal
	CurrentBidder   string
	TokenAmount     int64
	StartTime       time.Time
	EndTime         time.Time
	Status          Status
	SettledAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Overlaps reports whether the auction's [StartTime, EndTime] window
// overlaps the given window. Used to enforce the non-overlap invariant.
func (a Auction) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime)
}

// IsOpenForScheduling reports whether the auction counts toward the
// non-overlap check (SCHEDULED or ACTIVE).
func (a Auction) IsOpenForScheduling() bool {
	return a.Status == StatusScheduled || a.Status == StatusActive
}

// MinimumBid returns the smallest amount placeBid will currently accept.
func (a Auction) MinimumBid(incrementPct decimal.Decimal) decimal.Decimal {
	if a.CurrentBid == nil {
		return a.ReservePrice
	}
	one := decimal.NewFromInt(1)
	return a.CurrentBid.Mul(one.Add(incrementPct))
}
