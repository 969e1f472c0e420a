package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/r3e-network/rwa-control-plane/internal/domain/holding"
	"github.com/r3e-network/rwa-control-plane/internal/domain/transaction"
	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
)

type holdingRow struct {
	ID                string          `db:"id"`
	InvestorProfileID string          `db:"investor_profile_id"`
	AssetID           string          `db:"asset_id"`
	TokenAmount       int64           `db:"token_amount"`
	CostBasis         decimal.Decimal `db:"cost_basis"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r holdingRow) toDomain() holding.Holding {
	return holding.Holding{
		ID:                r.ID,
		InvestorProfileID: r.InvestorProfileID,
		AssetID:           r.AssetID,
		TokenAmount:       r.TokenAmount,
		CostBasis:         r.CostBasis,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// UpsertHolding inserts a new holding or, for the (investor, asset) pair
// already on file, overwrites TokenAmount and CostBasis with h's values,
// matching the in-memory store. The engines read the locked holding, add
// the purchase to it, and pass the new totals here.
func (s *Store) UpsertHolding(ctx context.Context, h holding.Holding) (holding.Holding, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now

	var row holdingRow
	err := s.querier(ctx).GetContext(ctx, &row, `
		INSERT INTO holdings (id, investor_profile_id, asset_id, token_amount, cost_basis, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (investor_profile_id, asset_id) DO UPDATE SET
			token_amount = EXCLUDED.token_amount,
			cost_basis = EXCLUDED.cost_basis,
			updated_at = EXCLUDED.updated_at
		RETURNING *
	`, h.ID, h.InvestorProfileID, h.AssetID, h.TokenAmount, h.CostBasis, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return holding.Holding{}, domainerrors.Wrap(domainerrors.CodeInternal, "HOLDING_UPSERT_FAILED", "failed to upsert holding", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetHolding(ctx context.Context, assetID, investorID string) (holding.Holding, error) {
	var row holdingRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM holdings WHERE asset_id=$1 AND investor_profile_id=$2`, assetID, investorID)
	if err != nil {
		return holding.Holding{}, wrapQueryErr("holding", assetID+"/"+investorID, err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetHoldingForUpdate(ctx context.Context, assetID, investorID string) (holding.Holding, error) {
	var row holdingRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM holdings WHERE asset_id=$1 AND investor_profile_id=$2 FOR UPDATE`, assetID, investorID)
	if err != nil {
		return holding.Holding{}, wrapQueryErr("holding", assetID+"/"+investorID, err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListHoldingsByAsset(ctx context.Context, assetID string) ([]holding.Holding, error) {
	var rows []holdingRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, `SELECT * FROM holdings WHERE asset_id=$1 ORDER BY created_at`, assetID); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "HOLDING_LIST_FAILED", "failed to list holdings by asset", err)
	}
	out := make([]holding.Holding, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Store) ListHoldingsByInvestor(ctx context.Context, investorID string) ([]holding.Holding, error) {
	var rows []holdingRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, `SELECT * FROM holdings WHERE investor_profile_id=$1 ORDER BY created_at`, investorID); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "HOLDING_LIST_FAILED", "failed to list holdings by investor", err)
	}
	out := make([]holding.Holding, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Store) SumTokenAmountByAsset(ctx context.Context, assetID string) (int64, error) {
	var total sql.NullInt64
	err := s.querier(ctx).GetContext(ctx, &total, `SELECT COALESCE(SUM(token_amount), 0) FROM holdings WHERE asset_id=$1`, assetID)
	if err != nil {
		return 0, domainerrors.Wrap(domainerrors.CodeInternal, "HOLDING_SUM_FAILED", "failed to sum holdings by asset", err)
	}
	return total.Int64, nil
}

type transactionRow struct {
	ID            string          `db:"id"`
	AssetID       string          `db:"asset_id"`
	BuyerID       string          `db:"buyer_id"`
	SellerID      string          `db:"seller_id"`
	TxType        string          `db:"tx_type"`
	Amount        decimal.Decimal `db:"amount"`
	TokenAmount   int64           `db:"token_amount"`
	EscrowAddress string          `db:"escrow_address"`
	TxSignature   string          `db:"tx_signature"`
	Status        string          `db:"status"`
	FailureReason string          `db:"failure_reason"`
	CompletedAt   sql.NullTime    `db:"completed_at"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r transactionRow) toDomain() transaction.Transaction {
	return transaction.Transaction{
		ID:            r.ID,
		AssetID:       r.AssetID,
		BuyerID:       r.BuyerID,
		SellerID:      r.SellerID,
		Type:          transaction.Type(r.TxType),
		Amount:        r.Amount,
		TokenAmount:   r.TokenAmount,
		EscrowAddress: r.EscrowAddress,
		TxSignature:   r.TxSignature,
		Status:        transaction.Status(r.Status),
		FailureReason: r.FailureReason,
		CompletedAt:   nullTimeToPtr(r.CompletedAt),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (s *Store) CreateTransaction(ctx context.Context, t transaction.Transaction) (transaction.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO transactions (id, asset_id, buyer_id, seller_id, tx_type, amount, token_amount,
			escrow_address, tx_signature, status, failure_reason, completed_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, t.ID, t.AssetID, t.BuyerID, t.SellerID, string(t.Type), t.Amount, t.TokenAmount,
		t.EscrowAddress, t.TxSignature, string(t.Status), t.FailureReason, ptrToNullTime(t.CompletedAt), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return transaction.Transaction{}, domainerrors.Wrap(domainerrors.CodeInternal, "TRANSACTION_INSERT_FAILED", "failed to insert transaction", err)
	}
	return t, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t transaction.Transaction) (transaction.Transaction, error) {
	t.UpdatedAt = time.Now().UTC()
	_, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE transactions SET seller_id=$2, amount=$3, token_amount=$4, escrow_address=$5,
			tx_signature=$6, status=$7, failure_reason=$8, completed_at=$9, updated_at=$10
		WHERE id=$1
	`, t.ID, t.SellerID, t.Amount, t.TokenAmount, t.EscrowAddress, t.TxSignature,
		string(t.Status), t.FailureReason, ptrToNullTime(t.CompletedAt), t.UpdatedAt)
	if err != nil {
		return transaction.Transaction{}, domainerrors.Wrap(domainerrors.CodeInternal, "TRANSACTION_UPDATE_FAILED", "failed to update transaction", err)
	}
	return s.GetTransaction(ctx, t.ID)
}

func (s *Store) GetTransaction(ctx context.Context, id string) (transaction.Transaction, error) {
	var row transactionRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM transactions WHERE id=$1`, id)
	if err != nil {
		return transaction.Transaction{}, wrapQueryErr("transaction", id, err)
	}
	return row.toDomain(), nil
}

func transactionFilterClause(filter storage.TransactionFilter) (string, []interface{}) {
	clause := " WHERE 1=1"
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AssetID != "" {
		clause += " AND asset_id=" + arg(filter.AssetID)
	}
	if filter.BuyerID != "" {
		clause += " AND buyer_id=" + arg(filter.BuyerID)
	}
	if filter.SellerID != "" {
		clause += " AND seller_id=" + arg(filter.SellerID)
	}
	if filter.Type != "" {
		clause += " AND tx_type=" + arg(filter.Type)
	}
	if filter.Status != "" {
		clause += " AND status=" + arg(filter.Status)
	}
	return clause, args
}

func transactionSortColumn(sortBy storage.Sort) string {
	sortBy = sortBy.Normalize()
	column := "created_at"
	if sortBy.Field == "amount" {
		column = "amount"
	}
	if sortBy.Direction == storage.SortAsc {
		return column + " ASC"
	}
	return column + " DESC"
}

func (s *Store) ListTransactions(ctx context.Context, filter storage.TransactionFilter, pagination storage.Pagination, sortBy storage.Sort) (storage.ListResult[transaction.Transaction], error) {
	pagination = pagination.Normalize()

	total, err := s.CountTransactions(ctx, filter)
	if err != nil {
		return storage.ListResult[transaction.Transaction]{}, err
	}

	clause, args := transactionFilterClause(filter)
	query := "SELECT * FROM transactions" + clause + " ORDER BY " + transactionSortColumn(sortBy)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	query += " LIMIT " + arg(pagination.Limit) + " OFFSET " + arg(pagination.Offset())

	var rows []transactionRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return storage.ListResult[transaction.Transaction]{}, domainerrors.Wrap(domainerrors.CodeInternal, "TRANSACTION_LIST_FAILED", "failed to list transactions", err)
	}
	out := make([]transaction.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return storage.NewListResult(out, total, pagination), nil
}

func (s *Store) CountTransactions(ctx context.Context, filter storage.TransactionFilter) (int, error) {
	clause, args := transactionFilterClause(filter)
	var count int
	if err := s.querier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM transactions"+clause, args...); err != nil {
		return 0, domainerrors.Wrap(domainerrors.CodeInternal, "TRANSACTION_COUNT_FAILED", "failed to count transactions", err)
	}
	return count, nil
}

func (s *Store) CountTransactionsByStatus(ctx context.Context, filter storage.TransactionFilter) (storage.TransactionFilterStatusCounts, error) {
	clause, args := transactionFilterClause(filter)
	type statusCount struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	var rows []statusCount
	query := "SELECT status, COUNT(*) AS count FROM transactions" + clause + " GROUP BY status"
	if err := s.querier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "TRANSACTION_STATUS_COUNT_FAILED", "failed to count transactions by status", err)
	}
	out := storage.TransactionFilterStatusCounts{}
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *Store) SumTransactions(ctx context.Context, filter storage.TransactionFilter) (storage.TransactionSums, error) {
	clause, args := transactionFilterClause(filter)
	type sums struct {
		Amount      decimal.Decimal `db:"amount"`
		TokenAmount int64           `db:"token_amount"`
	}
	var row sums
	query := "SELECT COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(token_amount), 0) AS token_amount FROM transactions" + clause
	if err := s.querier(ctx).GetContext(ctx, &row, query, args...); err != nil {
		return storage.TransactionSums{}, domainerrors.Wrap(domainerrors.CodeInternal, "TRANSACTION_SUM_FAILED", "failed to sum transactions", err)
	}
	return storage.TransactionSums{Amount: row.Amount, TokenAmount: row.TokenAmount}, nil
}
