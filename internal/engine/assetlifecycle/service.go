// Package assetlifecycle implements the tokenization state machine: an
// Asset moves from DRAFT through review and tokenization, then
// independently through a marketplace listing state.
package assetlifecycle

import (
	"context"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/r3e-network/rwa-control-plane/internal/cache"
	"github.com/r3e-network/rwa-control-plane/internal/collaborators"
	coreservice "github.com/r3e-network/rwa-control-plane/internal/core/service"
	"github.com/r3e-network/rwa-control-plane/internal/domain/asset"
	"github.com/r3e-network/rwa-control-plane/internal/domain/document"
	domainerrors "github.com/r3e-network/rwa-control-plane/internal/errors"
	"github.com/r3e-network/rwa-control-plane/internal/storage"
	"github.com/r3e-network/rwa-control-plane/pkg/logger"
)

var collaboratorRetryPolicy = coreservice.RetryPolicy{
	Attempts:       3,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     2 * time.Second,
	Multiplier:     2,
}

const collaboratorTimeout = 30 * time.Second

var symbolPattern = regexp.MustCompile(`^[A-Z0-9-]{3,10}$`)

// CreateParams captures Asset.create's input record.
type CreateParams struct {
	Name          string
	Description   string
	AssetType     asset.Type
	TotalValue    decimal.Decimal
	TotalSupply   int64
	PricePerToken *decimal.Decimal
}

// UpdateParams captures Asset.update's input record; nil fields are left
// unchanged.
type UpdateParams struct {
	Name        *string
	Description *string
	AssetType   *asset.Type
	TotalValue  *decimal.Decimal
}

// TokenizeParams captures Asset.tokenize's input record.
type TokenizeParams struct {
	Symbol            string
	MinimumInvestment decimal.Decimal
	MaximumInvestment *decimal.Decimal
	StartDate         *time.Time
	EndDate           *time.Time
}

// Stats is the result of Stats(id).
type Stats struct {
	TotalValue       decimal.Decimal
	TotalSupply      int64
	PricePerToken    decimal.Decimal
	SoldTokens       int64
	AvailableTokens  int64
	TransactionCount int
	InvestorCount    int
}

// Service owns the tokenization lifecycle for assets. Which Tokenization
// backend (real or synthetic) is wired in is a configuration concern
// decided by the caller, not by this Service.
type Service struct {
	base         *coreservice.Base
	store        storage.Store
	tokenization collaborators.Tokenization
	idempotency  cache.Idempotency
	log          *logger.Logger
	hooks        coreservice.ObservationHooks
}

// New constructs a Service. A nil log falls back to a component-tagged
// default logger; a zero hooks value disables instrumentation.
func New(store storage.Store, tokenization collaborators.Tokenization, log *logger.Logger, hooks coreservice.ObservationHooks) *Service {
	if log == nil {
		log = logger.NewDefault("asset-lifecycle")
	}
	return &Service{
		base:         coreservice.NewBase(store, store),
		store:        store,
		tokenization: tokenization,
		idempotency:  cache.NewMemory(),
		log:          log,
		hooks:        hooks,
	}
}

// Descriptor advertises this engine's placement and capabilities.
func (s *Service) Descriptor() coreservice.Descriptor {
	return coreservice.Descriptor{
		Name:   "AssetLifecycle",
		Domain: "tokenization",
		Layer:  coreservice.LayerEngine,
	}.WithCapabilities("create", "submit-for-review", "approve", "tokenize", "list", "delist", "stats")
}

func (s *Service) observe(ctx context.Context, op, assetID string) func(error) {
	return coreservice.StartObservation(ctx, s.hooks, map[string]string{"asset_id": assetID})
}

// Create inserts a new asset in (DRAFT, UNLISTED).
func (s *Service) Create(ctx context.Context, bankID string, params CreateParams) (asset.Asset, error) {
	done := s.observe(ctx, "create", "")
	defer func() { done(nil) }()

	if bankID == "" {
		return asset.Asset{}, domainerrors.InvalidInput("bank_id", "bank_id is required")
	}
	if params.TotalValue.LessThanOrEqual(decimal.Zero) {
		return asset.Asset{}, domainerrors.InvalidInput("total_value", "total_value must be positive")
	}
	if params.TotalSupply <= 0 {
		return asset.Asset{}, domainerrors.InvalidInput("total_supply", "total_supply must be positive")
	}

	price := params.PricePerToken
	a := asset.Asset{
		BankID:          bankID,
		Name:            params.Name,
		Description:     params.Description,
		AssetType:       params.AssetType,
		TotalValue:      params.TotalValue,
		TotalSupply:     params.TotalSupply,
		AvailableSupply: params.TotalSupply,
		TokenizationStatus: asset.StatusDraft,
		ListingStatus:      asset.ListingUnlisted,
	}
	if price != nil {
		a.PricePerToken = *price
	} else {
		a.PricePerToken = a.DerivedPricePerToken()
	}

	created, err := s.store.CreateAsset(ctx, a)
	if err != nil {
		return asset.Asset{}, domainerrors.Internal("create asset", err)
	}
	return created, nil
}

// Update edits mutable fields while tokenizationStatus permits it.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (asset.Asset, error) {
	done := s.observe(ctx, "update", id)
	defer func() { done(nil) }()

	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return asset.Asset{}, err
	}
	if !a.CanMutate() {
		return asset.Asset{}, domainerrors.InvalidStatus("ASSET_TOKENIZED", "asset is tokenized and can no longer be edited")
	}

	if params.Name != nil {
		a.Name = *params.Name
	}
	if params.Description != nil {
		a.Description = *params.Description
	}
	if params.AssetType != nil {
		a.AssetType = *params.AssetType
	}
	if params.TotalValue != nil {
		a.TotalValue = *params.TotalValue
		a.PricePerToken = a.DerivedPricePerToken()
	}

	updated, err := s.store.UpdateAsset(ctx, a)
	if err != nil {
		return asset.Asset{}, domainerrors.Internal("update asset", err)
	}
	return updated, nil
}

// Delete removes a DRAFT asset and cascades its documents.
func (s *Service) Delete(ctx context.Context, id string) error {
	done := s.observe(ctx, "delete", id)
	var opErr error
	defer func() { done(opErr) }()

	return s.store.Atomic(ctx, func(ctx context.Context) error {
		a, err := s.store.GetAsset(ctx, id)
		if err != nil {
			opErr = err
			return err
		}
		if !a.CanDelete() {
			opErr = domainerrors.InvalidStatus("CANNOT_DELETE", "only DRAFT assets may be deleted")
			return opErr
		}
		docs, err := s.store.ListDocuments(ctx, id)
		if err != nil {
			opErr = domainerrors.Internal("list documents", err)
			return opErr
		}
		for _, d := range docs {
			if err := s.store.DeleteDocument(ctx, d.ID); err != nil {
				opErr = domainerrors.Internal("delete document", err)
				return opErr
			}
		}
		if err := s.store.DeleteAsset(ctx, id); err != nil {
			opErr = domainerrors.Internal("delete asset", err)
			return opErr
		}
		return nil
	})
}

// SubmitForReview requires DRAFT plus at least one APPRAISAL and one
// LEGAL_OPINION document.
func (s *Service) SubmitForReview(ctx context.Context, id string) (asset.Asset, error) {
	done := s.observe(ctx, "submit-for-review", id)
	defer func() { done(nil) }()

	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return asset.Asset{}, err
	}
	if a.TokenizationStatus != asset.StatusDraft {
		return asset.Asset{}, domainerrors.InvalidStatus("INVALID_STATUS", "submitForReview requires status DRAFT")
	}

	docs, err := s.store.ListDocuments(ctx, id)
	if err != nil {
		return asset.Asset{}, domainerrors.Internal("list documents", err)
	}
	present := map[document.Type]bool{}
	for _, d := range docs {
		present[d.Type] = true
	}
	var missing []string
	for _, required := range document.RequiredForReview {
		if !present[required] {
			missing = append(missing, string(required))
		}
	}
	if len(missing) > 0 {
		return asset.Asset{}, domainerrors.New(domainerrors.CodeInvalidInput, "MISSING_DOCUMENTS", "required documents are missing").
			WithDetail("missing", missing)
	}

	a.TokenizationStatus = asset.StatusPendingReview
	updated, err := s.store.UpdateAsset(ctx, a)
	if err != nil {
		return asset.Asset{}, domainerrors.Internal("update asset", err)
	}
	return updated, nil
}

// ApproveForTokenization requires PENDING_REVIEW.
func (s *Service) ApproveForTokenization(ctx context.Context, id string) (asset.Asset, error) {
	done := s.observe(ctx, "approve", id)
	defer func() { done(nil) }()

	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return asset.Asset{}, err
	}
	if a.TokenizationStatus == asset.StatusPendingTokenization {
		return a, nil // idempotent replay
	}
	if a.TokenizationStatus != asset.StatusPendingReview {
		return asset.Asset{}, domainerrors.InvalidStatus("INVALID_STATUS", "approveForTokenization requires status PENDING_REVIEW")
	}

	a.TokenizationStatus = asset.StatusPendingTokenization
	updated, err := s.store.UpdateAsset(ctx, a)
	if err != nil {
		return asset.Asset{}, domainerrors.Internal("update asset", err)
	}
	return updated, nil
}

// Tokenize drives the Tokenization collaborator and records the resulting
// offering/mint identifiers, or marks the asset FAILED on collaborator
// error.
func (s *Service) Tokenize(ctx context.Context, id string, params TokenizeParams) (asset.Asset, error) {
	var opErr error
	done := s.observe(ctx, "tokenize", id)
	defer func() { done(opErr) }()

	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		opErr = err
		return asset.Asset{}, err
	}
	if a.TokenizationStatus == asset.StatusTokenized {
		return a, nil // idempotent replay
	}
	if !a.CanTokenize() {
		opErr = domainerrors.InvalidStatus("INVALID_STATUS", "tokenize requires status DRAFT, PENDING_TOKENIZATION, or FAILED")
		return asset.Asset{}, opErr
	}
	if !symbolPattern.MatchString(params.Symbol) {
		opErr = domainerrors.InvalidInput("symbol", "symbol must match ^[A-Z0-9-]{3,10}$")
		return asset.Asset{}, opErr
	}

	offeringID, err := coreservice.CallIdempotent(ctx, s.idempotency, collaboratorRetryPolicy, collaboratorTimeout, "tokenization-offering", a.ID,
		func(ctx context.Context) (string, error) {
			return s.tokenization.CreateOffering(ctx, collaborators.OfferingParams{
				AssetID:           a.ID,
				Symbol:            params.Symbol,
				TotalSupply:       a.TotalSupply,
				MinimumInvestment: params.MinimumInvestment,
			})
		})
	if err != nil {
		a.TokenizationStatus = asset.StatusFailed
		s.store.UpdateAsset(ctx, a)
		opErr = domainerrors.CollaboratorFailure("tokenization", err)
		return asset.Asset{}, opErr
	}

	deployed, err := s.tokenization.DeployToken(ctx, offeringID, a.BankID)
	if err != nil {
		a.TokenizationStatus = asset.StatusFailed
		s.store.UpdateAsset(ctx, a)
		opErr = domainerrors.CollaboratorFailure("tokenization", err)
		return asset.Asset{}, opErr
	}

	now := time.Now().UTC()
	a.TokenizationOfferingID = offeringID
	a.MintAddress = deployed.MintAddress
	a.MetadataURI = deployed.MetadataURI
	a.Symbol = params.Symbol
	a.MinimumInvestment = params.MinimumInvestment
	if params.MaximumInvestment != nil {
		a.MaximumInvestment = *params.MaximumInvestment
	}
	a.OfferingStart = params.StartDate
	a.OfferingEnd = params.EndDate
	a.TokenizationStatus = asset.StatusTokenized
	a.TokenizedAt = &now

	updated, err := s.store.UpdateAsset(ctx, a)
	if err != nil {
		opErr = domainerrors.Internal("update asset", err)
		return asset.Asset{}, opErr
	}
	return updated, nil
}

// ListOnMarketplace requires TOKENIZED.
func (s *Service) ListOnMarketplace(ctx context.Context, id string) (asset.Asset, error) {
	done := s.observe(ctx, "list", id)
	defer func() { done(nil) }()

	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return asset.Asset{}, err
	}
	if a.ListingStatus == asset.ListingListed {
		return a, nil
	}
	if a.TokenizationStatus != asset.StatusTokenized {
		return asset.Asset{}, domainerrors.InvalidStatus("INVALID_STATUS", "listOnMarketplace requires status TOKENIZED")
	}

	now := time.Now().UTC()
	a.ListingStatus = asset.ListingListed
	a.ListedAt = &now
	updated, err := s.store.UpdateAsset(ctx, a)
	if err != nil {
		return asset.Asset{}, domainerrors.Internal("update asset", err)
	}
	return updated, nil
}

// DelistFromMarketplace may be called from any state.
func (s *Service) DelistFromMarketplace(ctx context.Context, id string) (asset.Asset, error) {
	done := s.observe(ctx, "delist", id)
	defer func() { done(nil) }()

	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return asset.Asset{}, err
	}
	a.ListingStatus = asset.ListingDelisted
	updated, err := s.store.UpdateAsset(ctx, a)
	if err != nil {
		return asset.Asset{}, domainerrors.Internal("update asset", err)
	}
	return updated, nil
}

// Stats reports derived supply/transaction figures for an asset.
func (s *Service) Stats(ctx context.Context, id string) (Stats, error) {
	a, err := s.store.GetAsset(ctx, id)
	if err != nil {
		return Stats{}, err
	}

	txCount, err := s.store.CountTransactions(ctx, storage.TransactionFilter{AssetID: id, Status: "COMPLETED"})
	if err != nil {
		return Stats{}, domainerrors.Internal("count transactions", err)
	}

	holdings, err := s.store.ListHoldingsByAsset(ctx, id)
	if err != nil {
		return Stats{}, domainerrors.Internal("list holdings", err)
	}
	var sold int64
	for _, h := range holdings {
		sold += h.TokenAmount
	}

	return Stats{
		TotalValue:       a.TotalValue,
		TotalSupply:      a.TotalSupply,
		PricePerToken:    a.PricePerToken,
		SoldTokens:       sold,
		AvailableTokens:  a.AvailableSupply,
		TransactionCount: txCount,
		InvestorCount:    len(holdings),
	}, nil
}
