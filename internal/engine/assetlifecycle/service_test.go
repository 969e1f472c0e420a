package assetlifecycle

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/r3e-network/rwa-control-plane/internal/collaborators/synthetic"
	coreservice "github.com/r3e-network/rwa-control-plane/internal/core/service"
	"github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	"github.com/r3e-network/rwa-control-plane/internal/domain/document"
	"github.com/r3e-network/rwa-control-plane/internal/storage/memory"
)

func newService(store *memory.Store) *Service {
	return New(store, synthetic.Tokenization{}, nil, coreservice.NoopObservationHooks)
}

func TestService_CreateDerivesPricePerToken(t *testing.T) {
	store := memory.New()
	svc := newService(store)

	a, err := svc.Create(context.Background(), "bank-1", CreateParams{
		Name:        "Vineyard Estate",
		TotalValue:  decimal.NewFromInt(1_000_000),
		TotalSupply: 10_000,
	})
	require.NoError(t, err)
	require.True(t, a.PricePerToken.Equal(decimal.NewFromInt(100)))
	require.Equal(t, a.TotalSupply, a.AvailableSupply)
	require.Equal(t, asset.StatusDraft, a.TokenizationStatus)
}

func TestService_SubmitForReviewRequiresDocuments(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := context.Background()

	a, err := svc.Create(ctx, "bank-1", CreateParams{
		Name:        "Grain Silo Complex",
		TotalValue:  decimal.NewFromInt(500_000),
		TotalSupply: 5_000,
	})
	require.NoError(t, err)

	_, err = svc.SubmitForReview(ctx, a.ID)
	require.Error(t, err, "no supporting documents uploaded yet")

	_, err = store.CreateDocument(ctx, document.Document{AssetID: a.ID, Type: document.TypeAppraisal, Name: "appraisal.pdf"})
	require.NoError(t, err)
	_, err = svc.SubmitForReview(ctx, a.ID)
	require.Error(t, err, "legal opinion still missing")

	_, err = store.CreateDocument(ctx, document.Document{AssetID: a.ID, Type: document.TypeLegalOpinion, Name: "legal.pdf"})
	require.NoError(t, err)
	updated, err := svc.SubmitForReview(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, asset.StatusPendingReview, updated.TokenizationStatus)
}

func TestService_TokenizeValidatesSymbolAndIsIdempotent(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := context.Background()

	a, err := svc.Create(ctx, "bank-1", CreateParams{
		Name:        "Art Collection",
		TotalValue:  decimal.NewFromInt(200_000),
		TotalSupply: 2_000,
	})
	require.NoError(t, err)

	_, err = svc.Tokenize(ctx, a.ID, TokenizeParams{Symbol: "bad symbol"})
	require.Error(t, err)

	tokenized, err := svc.Tokenize(ctx, a.ID, TokenizeParams{Symbol: "ART-1", MinimumInvestment: decimal.NewFromInt(100)})
	require.NoError(t, err)
	require.Equal(t, asset.StatusTokenized, tokenized.TokenizationStatus)
	require.NotEmpty(t, tokenized.MintAddress)

	again, err := svc.Tokenize(ctx, a.ID, TokenizeParams{Symbol: "ART-1", MinimumInvestment: decimal.NewFromInt(100)})
	require.NoError(t, err)
	require.Equal(t, tokenized.MintAddress, again.MintAddress, "tokenize must be idempotent on replay")

	listed, err := svc.ListOnMarketplace(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, asset.ListingListed, listed.ListingStatus)

	delisted, err := svc.DelistFromMarketplace(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, asset.ListingDelisted, delisted.ListingStatus)
}

func TestService_DeleteCascadesDocumentsOnlyForDraft(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := context.Background()

	a, err := svc.Create(ctx, "bank-1", CreateParams{
		Name:        "Storage Warehouse",
		TotalValue:  decimal.NewFromInt(300_000),
		TotalSupply: 3_000,
	})
	require.NoError(t, err)
	doc, err := store.CreateDocument(ctx, document.Document{AssetID: a.ID, Type: document.TypeAppraisal, Name: "a.pdf"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID))

	_, err = store.GetAsset(ctx, a.ID)
	require.Error(t, err)
	_, err = store.GetDocument(ctx, doc.ID)
	require.Error(t, err, "documents must cascade-delete with their asset")
}
