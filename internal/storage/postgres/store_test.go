package postgres

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	"github.com/r3e-network/rwa-control-plane/internal/domain/bank"
	"github.com/r3e-network/rwa-control-plane/internal/domain/user"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
)

// TestStoreIntegration exercises the Postgres Store against a real database
// and is skipped unless TEST_POSTGRES_DSN is set, matching how the rest of
// this codebase gates driver-dependent tests.
func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	applySchema(t, db)
	resetTables(t, db)

	store := New(sqlx.NewDb(db, "postgres"))
	ctx := context.Background()

	admin, err := store.CreateUser(ctx, user.User{Email: "admin@bank.example", Role: user.RoleBankAdmin, KYCStatus: user.KYCVerified})
	require.NoError(t, err)

	b, err := store.CreateBank(ctx, bank.Bank{Name: "First Trust", Code: "FT", AdminUserID: admin.ID})
	require.NoError(t, err)

	a, err := store.CreateAsset(ctx, asset.Asset{
		BankID:             b.ID,
		Name:               "Warehouse 12",
		AssetType:          asset.TypeRealEstate,
		TotalValue:         decimal.NewFromInt(1_000_000),
		TotalSupply:        10_000,
		AvailableSupply:    10_000,
		PricePerToken:      decimal.NewFromInt(100),
		TokenizationStatus: asset.StatusDraft,
		ListingStatus:      asset.ListingUnlisted,
	})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)

	locked, err := store.GetAssetForUpdate(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, locked.ID)

	err = store.Atomic(ctx, func(ctx context.Context) error {
		locked, err := store.GetAssetForUpdate(ctx, a.ID)
		if err != nil {
			return err
		}
		locked.AvailableSupply -= 100
		_, err = store.UpdateAsset(ctx, locked)
		return err
	})
	require.NoError(t, err)

	reloaded, err := store.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 9_900, reloaded.AvailableSupply)

	listed, err := store.ListAssets(ctx, storage.AssetFilter{BankID: b.ID}, storage.Pagination{}, storage.Sort{})
	require.NoError(t, err)
	require.Len(t, listed.Data, 1)
	require.Equal(t, 1, listed.Total)
}

func applySchema(t *testing.T, db *sql.DB) {
	t.Helper()
	path := filepath.Join("..", "..", "platform", "migrations", "sql", "0001_init.up.sql")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = db.Exec(string(content))
	require.NoError(t, err)
}

func resetTables(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`
		TRUNCATE
			bids,
			auctions,
			transactions,
			holdings,
			documents,
			assets,
			banks,
			investor_profiles,
			users
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)
}
