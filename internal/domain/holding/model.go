// Package holding holds the per-investor, per-asset ownership record
// maintained by TransactionEngine and AuctionEngine on settlement.
package holding

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is uniquely keyed by (InvestorProfileID, AssetID). TokenAmount is
// monotonically non-decreasing under the primary-sale and auction-settlement
// paths implemented in this core.
type Holding struct {
	ID                string
	InvestorProfileID string
	AssetID           string
	TokenAmount       int64
	CostBasis         decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
