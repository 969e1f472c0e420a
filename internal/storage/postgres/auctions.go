package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	auctiondomain "github.com/r3e-network/rwa-control-plane/internal/domain/auction"
	biddomain "github.com/r3e-network/rwa-control-plane/internal/domain/bid"
	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
)

type auctionRow struct {
	ID             string              `db:"id"`
	AssetID        string              `db:"asset_id"`
	ReservePrice   decimal.Decimal     `db:"reserve_price"`
	CurrentBid     decimal.NullDecimal `db:"current_bid"`
	CurrentBidder  string              `db:"current_bidder"`
	TokenAmount    int64               `db:"token_amount"`
	StartTime      time.Time           `db:"start_time"`
	EndTime        time.Time           `db:"end_time"`
	Status         string              `db:"status"`
	SettledAt      sql.NullTime        `db:"settled_at"`
	CreatedAt      time.Time           `db:"created_at"`
	UpdatedAt      time.Time           `db:"updated_at"`
}

func (r auctionRow) toDomain() auctiondomain.Auction {
	a := auctiondomain.Auction{
		ID:            r.ID,
		AssetID:       r.AssetID,
		ReservePrice:  r.ReservePrice,
		CurrentBidder: r.CurrentBidder,
		TokenAmount:   r.TokenAmount,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Status:        auctiondomain.Status(r.Status),
		SettledAt:     nullTimeToPtr(r.SettledAt),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.CurrentBid.Valid {
		bid := r.CurrentBid.Decimal
		a.CurrentBid = &bid
	}
	return a
}

func currentBidParam(a auctiondomain.Auction) decimal.NullDecimal {
	if a.CurrentBid == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *a.CurrentBid, Valid: true}
}

func (s *Store) CreateAuction(ctx context.Context, a auctiondomain.Auction) (auctiondomain.Auction, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO auctions (id, asset_id, reserve_price, current_bid, current_bidder, token_amount,
			start_time, end_time, status, settled_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, a.ID, a.AssetID, a.ReservePrice, currentBidParam(a), a.CurrentBidder, a.TokenAmount,
		a.StartTime, a.EndTime, string(a.Status), ptrToNullTime(a.SettledAt), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return auctiondomain.Auction{}, domainerrors.Wrap(domainerrors.CodeInternal, "AUCTION_INSERT_FAILED", "failed to insert auction", err)
	}
	return a, nil
}

func (s *Store) UpdateAuction(ctx context.Context, a auctiondomain.Auction) (auctiondomain.Auction, error) {
	a.UpdatedAt = time.Now().UTC()
	_, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE auctions SET reserve_price=$2, current_bid=$3, current_bidder=$4, token_amount=$5,
			start_time=$6, end_time=$7, status=$8, settled_at=$9, updated_at=$10
		WHERE id=$1
	`, a.ID, a.ReservePrice, currentBidParam(a), a.CurrentBidder, a.TokenAmount,
		a.StartTime, a.EndTime, string(a.Status), ptrToNullTime(a.SettledAt), a.UpdatedAt)
	if err != nil {
		return auctiondomain.Auction{}, domainerrors.Wrap(domainerrors.CodeInternal, "AUCTION_UPDATE_FAILED", "failed to update auction", err)
	}
	return s.GetAuction(ctx, a.ID)
}

func (s *Store) GetAuction(ctx context.Context, id string) (auctiondomain.Auction, error) {
	var row auctionRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM auctions WHERE id=$1`, id)
	if err != nil {
		return auctiondomain.Auction{}, wrapQueryErr("auction", id, err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetAuctionForUpdate(ctx context.Context, id string) (auctiondomain.Auction, error) {
	var row auctionRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM auctions WHERE id=$1 FOR UPDATE`, id)
	if err != nil {
		return auctiondomain.Auction{}, wrapQueryErr("auction", id, err)
	}
	return row.toDomain(), nil
}

func auctionFilterClause(filter storage.AuctionFilter) (string, []interface{}) {
	clause := " WHERE 1=1"
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AssetID != "" {
		clause += " AND asset_id=" + arg(filter.AssetID)
	}
	if filter.Status != "" {
		clause += " AND status=" + arg(filter.Status)
	}
	if filter.MinReservePrice != nil {
		clause += " AND reserve_price >= " + arg(*filter.MinReservePrice)
	}
	if filter.MaxReservePrice != nil {
		clause += " AND reserve_price <= " + arg(*filter.MaxReservePrice)
	}
	return clause, args
}

func auctionSortColumn(sortBy storage.Sort) string {
	sortBy = sortBy.Normalize()
	column := "created_at"
	if sortBy.Field == "startTime" {
		column = "start_time"
	}
	if sortBy.Direction == storage.SortAsc {
		return column + " ASC"
	}
	return column + " DESC"
}

func (s *Store) ListAuctions(ctx context.Context, filter storage.AuctionFilter, pagination storage.Pagination, sortBy storage.Sort) (storage.ListResult[auctiondomain.Auction], error) {
	pagination = pagination.Normalize()

	total, err := s.CountAuctions(ctx, filter)
	if err != nil {
		return storage.ListResult[auctiondomain.Auction]{}, err
	}

	clause, args := auctionFilterClause(filter)
	query := "SELECT * FROM auctions" + clause + " ORDER BY " + auctionSortColumn(sortBy)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	query += " LIMIT " + arg(pagination.Limit) + " OFFSET " + arg(pagination.Offset())

	var rows []auctionRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return storage.ListResult[auctiondomain.Auction]{}, domainerrors.Wrap(domainerrors.CodeInternal, "AUCTION_LIST_FAILED", "failed to list auctions", err)
	}
	out := make([]auctiondomain.Auction, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return storage.NewListResult(out, total, pagination), nil
}

func (s *Store) CountAuctions(ctx context.Context, filter storage.AuctionFilter) (int, error) {
	clause, args := auctionFilterClause(filter)
	var count int
	if err := s.querier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM auctions"+clause, args...); err != nil {
		return 0, domainerrors.Wrap(domainerrors.CodeInternal, "AUCTION_COUNT_FAILED", "failed to count auctions", err)
	}
	return count, nil
}

func (s *Store) ListOverlapping(ctx context.Context, assetID string, start, end time.Time) ([]auctiondomain.Auction, error) {
	var rows []auctionRow
	err := s.querier(ctx).SelectContext(ctx, &rows, `
		SELECT * FROM auctions
		WHERE asset_id=$1 AND status IN ('SCHEDULED','ACTIVE') AND start_time < $3 AND end_time > $2
	`, assetID, start, end)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "AUCTION_OVERLAP_QUERY_FAILED", "failed to query overlapping auctions", err)
	}
	out := make([]auctiondomain.Auction, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Store) ListDueToActivate(ctx context.Context, asOf time.Time, limit int) ([]auctiondomain.Auction, error) {
	var rows []auctionRow
	err := s.querier(ctx).SelectContext(ctx, &rows, `
		SELECT * FROM auctions WHERE status='SCHEDULED' AND start_time <= $1 ORDER BY start_time LIMIT NULLIF($2, 0)
	`, asOf, limit)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "AUCTION_DUE_ACTIVATE_QUERY_FAILED", "failed to query auctions due to activate", err)
	}
	out := make([]auctiondomain.Auction, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Store) ListDueToEnd(ctx context.Context, asOf time.Time, limit int) ([]auctiondomain.Auction, error) {
	var rows []auctionRow
	err := s.querier(ctx).SelectContext(ctx, &rows, `
		SELECT * FROM auctions WHERE status='ACTIVE' AND end_time <= $1 ORDER BY end_time LIMIT NULLIF($2, 0)
	`, asOf, limit)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "AUCTION_DUE_END_QUERY_FAILED", "failed to query auctions due to end", err)
	}
	out := make([]auctiondomain.Auction, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

type bidRow struct {
	ID        string          `db:"id"`
	AuctionID string          `db:"auction_id"`
	Bidder    string          `db:"bidder"`
	Amount    decimal.Decimal `db:"amount"`
	Signature string          `db:"signature"`
	IsWinning bool            `db:"is_winning"`
	CreatedAt time.Time       `db:"created_at"`
}

func (r bidRow) toDomain() biddomain.Bid {
	return biddomain.Bid{
		ID:        r.ID,
		AuctionID: r.AuctionID,
		Bidder:    r.Bidder,
		Amount:    r.Amount,
		Signature: r.Signature,
		IsWinning: r.IsWinning,
		CreatedAt: r.CreatedAt,
	}
}

func (s *Store) CreateBid(ctx context.Context, b biddomain.Bid) (biddomain.Bid, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now().UTC()

	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO bids (id, auction_id, bidder, amount, signature, is_winning, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, b.ID, b.AuctionID, b.Bidder, b.Amount, b.Signature, b.IsWinning, b.CreatedAt)
	if err != nil {
		return biddomain.Bid{}, domainerrors.Wrap(domainerrors.CodeInternal, "BID_INSERT_FAILED", "failed to insert bid", err)
	}
	return b, nil
}

func (s *Store) GetBid(ctx context.Context, id string) (biddomain.Bid, error) {
	var row bidRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM bids WHERE id=$1`, id)
	if err != nil {
		return biddomain.Bid{}, wrapQueryErr("bid", id, err)
	}
	return row.toDomain(), nil
}

// ListBids returns every bid for auctionID with no guaranteed order, for
// cascades (refund loops, cancellation) that need the complete set rather
// than a single page.
func (s *Store) ListBids(ctx context.Context, auctionID string) ([]biddomain.Bid, error) {
	var rows []bidRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, `SELECT * FROM bids WHERE auction_id=$1`, auctionID); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "BID_LIST_FAILED", "failed to list bids", err)
	}
	out := make([]biddomain.Bid, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// BidHistory returns a single page of bids for auctionID, ordered by
// createdAt desc by default.
func (s *Store) BidHistory(ctx context.Context, auctionID string, pagination storage.Pagination, sortBy storage.Sort) (storage.ListResult[biddomain.Bid], error) {
	pagination = pagination.Normalize()
	sortBy = sortBy.Normalize()
	direction := "DESC"
	if sortBy.Direction == storage.SortAsc {
		direction = "ASC"
	}

	var total int
	if err := s.querier(ctx).GetContext(ctx, &total, `SELECT COUNT(*) FROM bids WHERE auction_id=$1`, auctionID); err != nil {
		return storage.ListResult[biddomain.Bid]{}, domainerrors.Wrap(domainerrors.CodeInternal, "BID_COUNT_FAILED", "failed to count bids", err)
	}

	var rows []bidRow
	query := fmt.Sprintf(`SELECT * FROM bids WHERE auction_id=$1 ORDER BY created_at %s LIMIT $2 OFFSET $3`, direction)
	if err := s.querier(ctx).SelectContext(ctx, &rows, query, auctionID, pagination.Limit, pagination.Offset()); err != nil {
		return storage.ListResult[biddomain.Bid]{}, domainerrors.Wrap(domainerrors.CodeInternal, "BID_HISTORY_FAILED", "failed to list bid history", err)
	}
	out := make([]biddomain.Bid, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return storage.NewListResult(out, total, pagination), nil
}

func (s *Store) ClearWinning(ctx context.Context, auctionID string) error {
	_, err := s.querier(ctx).ExecContext(ctx, `UPDATE bids SET is_winning=FALSE WHERE auction_id=$1 AND is_winning`, auctionID)
	if err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "BID_CLEAR_WINNING_FAILED", "failed to clear winning bid", err)
	}
	return nil
}

func (s *Store) DeleteBid(ctx context.Context, id string) error {
	_, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM bids WHERE id=$1`, id)
	if err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "BID_DELETE_FAILED", "failed to delete bid", err)
	}
	return nil
}
