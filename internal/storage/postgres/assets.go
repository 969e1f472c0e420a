package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	"github.com/r3e-network/rwa-control-plane/internal/domain/document"
	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
)

type assetRow struct {
	ID                     string          `db:"id"`
	BankID                 string          `db:"bank_id"`
	Name                   string          `db:"name"`
	Description            string          `db:"description"`
	AssetType              string          `db:"asset_type"`
	TotalValue             decimal.Decimal `db:"total_value"`
	TotalSupply            int64           `db:"total_supply"`
	AvailableSupply        int64           `db:"available_supply"`
	PricePerToken          decimal.Decimal `db:"price_per_token"`
	MintAddress            string          `db:"mint_address"`
	MetadataURI            string          `db:"metadata_uri"`
	TokenizationOfferingID string          `db:"tokenization_offering_id"`
	Symbol                 string          `db:"symbol"`
	MinimumInvestment      decimal.Decimal `db:"minimum_investment"`
	MaximumInvestment      decimal.Decimal `db:"maximum_investment"`
	OfferingStart          sql.NullTime    `db:"offering_start"`
	OfferingEnd            sql.NullTime    `db:"offering_end"`
	TokenizationStatus     string          `db:"tokenization_status"`
	ListingStatus          string          `db:"listing_status"`
	TokenizedAt            sql.NullTime    `db:"tokenized_at"`
	ListedAt               sql.NullTime    `db:"listed_at"`
	CreatedAt              time.Time       `db:"created_at"`
	UpdatedAt              time.Time       `db:"updated_at"`
}

func (r assetRow) toDomain() asset.Asset {
	return asset.Asset{
		ID:                     r.ID,
		BankID:                 r.BankID,
		Name:                   r.Name,
		Description:            r.Description,
		AssetType:              asset.Type(r.AssetType),
		TotalValue:             r.TotalValue,
		TotalSupply:            r.TotalSupply,
		AvailableSupply:        r.AvailableSupply,
		PricePerToken:          r.PricePerToken,
		MintAddress:            r.MintAddress,
		MetadataURI:            r.MetadataURI,
		TokenizationOfferingID: r.TokenizationOfferingID,
		Symbol:                 r.Symbol,
		MinimumInvestment:      r.MinimumInvestment,
		MaximumInvestment:      r.MaximumInvestment,
		OfferingStart:          nullTimeToPtr(r.OfferingStart),
		OfferingEnd:            nullTimeToPtr(r.OfferingEnd),
		TokenizationStatus:     asset.TokenizationStatus(r.TokenizationStatus),
		ListingStatus:          asset.ListingStatus(r.ListingStatus),
		TokenizedAt:            nullTimeToPtr(r.TokenizedAt),
		ListedAt:               nullTimeToPtr(r.ListedAt),
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
}

func (s *Store) CreateAsset(ctx context.Context, a asset.Asset) (asset.Asset, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO assets (
			id, bank_id, name, description, asset_type, total_value, total_supply, available_supply,
			price_per_token, mint_address, metadata_uri, tokenization_offering_id, symbol,
			minimum_investment, maximum_investment, offering_start, offering_end,
			tokenization_status, listing_status, tokenized_at, listed_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
	`,
		a.ID, a.BankID, a.Name, a.Description, string(a.AssetType), a.TotalValue, a.TotalSupply, a.AvailableSupply,
		a.PricePerToken, a.MintAddress, a.MetadataURI, a.TokenizationOfferingID, a.Symbol,
		a.MinimumInvestment, a.MaximumInvestment, ptrToNullTime(a.OfferingStart), ptrToNullTime(a.OfferingEnd),
		string(a.TokenizationStatus), string(a.ListingStatus), ptrToNullTime(a.TokenizedAt), ptrToNullTime(a.ListedAt),
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return asset.Asset{}, domainerrors.Wrap(domainerrors.CodeInternal, "ASSET_INSERT_FAILED", "failed to insert asset", err)
	}
	return a, nil
}

func (s *Store) UpdateAsset(ctx context.Context, a asset.Asset) (asset.Asset, error) {
	a.UpdatedAt = time.Now().UTC()
	_, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE assets SET
			bank_id=$2, name=$3, description=$4, asset_type=$5, total_value=$6, total_supply=$7,
			available_supply=$8, price_per_token=$9, mint_address=$10, metadata_uri=$11,
			tokenization_offering_id=$12, symbol=$13, minimum_investment=$14, maximum_investment=$15,
			offering_start=$16, offering_end=$17, tokenization_status=$18, listing_status=$19,
			tokenized_at=$20, listed_at=$21, updated_at=$22
		WHERE id=$1
	`,
		a.ID, a.BankID, a.Name, a.Description, string(a.AssetType), a.TotalValue, a.TotalSupply,
		a.AvailableSupply, a.PricePerToken, a.MintAddress, a.MetadataURI,
		a.TokenizationOfferingID, a.Symbol, a.MinimumInvestment, a.MaximumInvestment,
		ptrToNullTime(a.OfferingStart), ptrToNullTime(a.OfferingEnd), string(a.TokenizationStatus), string(a.ListingStatus),
		ptrToNullTime(a.TokenizedAt), ptrToNullTime(a.ListedAt), a.UpdatedAt)
	if err != nil {
		return asset.Asset{}, domainerrors.Wrap(domainerrors.CodeInternal, "ASSET_UPDATE_FAILED", "failed to update asset", err)
	}
	return s.GetAsset(ctx, a.ID)
}

func (s *Store) GetAsset(ctx context.Context, id string) (asset.Asset, error) {
	var row assetRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM assets WHERE id=$1`, id)
	if err != nil {
		return asset.Asset{}, wrapQueryErr("asset", id, err)
	}
	return row.toDomain(), nil
}

// GetAssetForUpdate locks the asset row with SELECT ... FOR UPDATE, which
// only has serializing effect when called inside Atomic; callers outside a
// transaction get a plain read, mirroring the in-memory implementation.
func (s *Store) GetAssetForUpdate(ctx context.Context, id string) (asset.Asset, error) {
	var row assetRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM assets WHERE id=$1 FOR UPDATE`, id)
	if err != nil {
		return asset.Asset{}, wrapQueryErr("asset", id, err)
	}
	return row.toDomain(), nil
}

// assetFilterClause builds the WHERE clause shared by ListAssets and
// CountAssets so the two never drift apart.
func assetFilterClause(filter storage.AssetFilter) (string, []interface{}) {
	clause := " WHERE 1=1"
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.BankID != "" {
		clause += " AND bank_id=" + arg(filter.BankID)
	}
	if filter.AssetType != "" {
		clause += " AND asset_type=" + arg(filter.AssetType)
	}
	if filter.TokenizationStatus != "" {
		clause += " AND tokenization_status=" + arg(filter.TokenizationStatus)
	}
	if filter.ListingStatus != "" {
		clause += " AND listing_status=" + arg(filter.ListingStatus)
	}
	if filter.MinValue != nil {
		clause += " AND total_value >= " + arg(*filter.MinValue)
	}
	if filter.MaxValue != nil {
		clause += " AND total_value <= " + arg(*filter.MaxValue)
	}
	if filter.Search != "" {
		clause += " AND (name ILIKE " + arg("%"+filter.Search+"%") + " OR description ILIKE " + arg("%"+filter.Search+"%") + ")"
	}
	return clause, args
}

func assetSortColumn(sortBy storage.Sort) string {
	sortBy = sortBy.Normalize()
	column := "created_at"
	if sortBy.Field == "totalValue" {
		column = "total_value"
	}
	if sortBy.Direction == storage.SortAsc {
		return column + " ASC"
	}
	return column + " DESC"
}

func (s *Store) ListAssets(ctx context.Context, filter storage.AssetFilter, pagination storage.Pagination, sortBy storage.Sort) (storage.ListResult[asset.Asset], error) {
	pagination = pagination.Normalize()

	total, err := s.CountAssets(ctx, filter)
	if err != nil {
		return storage.ListResult[asset.Asset]{}, err
	}

	clause, args := assetFilterClause(filter)
	query := "SELECT * FROM assets" + clause + " ORDER BY " + assetSortColumn(sortBy)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	query += " LIMIT " + arg(pagination.Limit) + " OFFSET " + arg(pagination.Offset())

	var rows []assetRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return storage.ListResult[asset.Asset]{}, domainerrors.Wrap(domainerrors.CodeInternal, "ASSET_LIST_FAILED", "failed to list assets", err)
	}
	out := make([]asset.Asset, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return storage.NewListResult(out, total, pagination), nil
}

func (s *Store) CountAssets(ctx context.Context, filter storage.AssetFilter) (int, error) {
	clause, args := assetFilterClause(filter)
	var count int
	if err := s.querier(ctx).GetContext(ctx, &count, "SELECT COUNT(*) FROM assets"+clause, args...); err != nil {
		return 0, domainerrors.Wrap(domainerrors.CodeInternal, "ASSET_COUNT_FAILED", "failed to count assets", err)
	}
	return count, nil
}

func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	_, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM assets WHERE id=$1`, id)
	if err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "ASSET_DELETE_FAILED", "failed to delete asset", err)
	}
	return nil
}

type documentRow struct {
	ID         string    `db:"id"`
	AssetID    string    `db:"asset_id"`
	DocType    string    `db:"doc_type"`
	Name       string    `db:"name"`
	StorageKey string    `db:"storage_key"`
	MIMEType   string    `db:"mime_type"`
	SizeBytes  int64     `db:"size_bytes"`
	UploadedBy string    `db:"uploaded_by"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r documentRow) toDomain() document.Document {
	return document.Document{
		ID:         r.ID,
		AssetID:    r.AssetID,
		Type:       document.Type(r.DocType),
		Name:       r.Name,
		StorageKey: r.StorageKey,
		MIMEType:   r.MIMEType,
		SizeBytes:  r.SizeBytes,
		UploadedBy: r.UploadedBy,
		CreatedAt:  r.CreatedAt,
	}
}

func (s *Store) CreateDocument(ctx context.Context, d document.Document) (document.Document, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()

	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO documents (id, asset_id, doc_type, name, storage_key, mime_type, size_bytes, uploaded_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, d.ID, d.AssetID, string(d.Type), d.Name, d.StorageKey, d.MIMEType, d.SizeBytes, d.UploadedBy, d.CreatedAt)
	if err != nil {
		return document.Document{}, domainerrors.Wrap(domainerrors.CodeInternal, "DOCUMENT_INSERT_FAILED", "failed to insert document", err)
	}
	return d, nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (document.Document, error) {
	var row documentRow
	err := s.querier(ctx).GetContext(ctx, &row, `SELECT * FROM documents WHERE id=$1`, id)
	if err != nil {
		return document.Document{}, wrapQueryErr("document", id, err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListDocuments(ctx context.Context, assetID string) ([]document.Document, error) {
	var rows []documentRow
	if err := s.querier(ctx).SelectContext(ctx, &rows, `SELECT * FROM documents WHERE asset_id=$1 ORDER BY created_at`, assetID); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "DOCUMENT_LIST_FAILED", "failed to list documents", err)
	}
	out := make([]document.Document, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM documents WHERE id=$1`, id)
	if err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "DOCUMENT_DELETE_FAILED", "failed to delete document", err)
	}
	return nil
}
