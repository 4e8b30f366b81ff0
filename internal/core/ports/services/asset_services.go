package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// AssetReaderSvc defines read operations for fixed asset data
type AssetReaderSvc interface {
	// GetAssetByID retrieves a specific fixed asset.
	GetAssetByID(ctx context.Context, companyID string, assetID string, userID string) (*domain.FixedAsset, error)

	// ListAssets retrieves a paginated list of fixed assets.
	ListAssets(ctx context.Context, companyID string, userID string, activeOnly bool, limit int, offset int) ([]domain.FixedAsset, error)

	// GetSchedule derives the full depreciation schedule for an asset.
	GetSchedule(ctx context.Context, companyID string, assetID string, userID string) ([]domain.ScheduleLine, error)
}

// AssetWriterSvc defines write operations for fixed asset data
type AssetWriterSvc interface {
	// CreateAsset persists a new fixed asset after validating its depreciation inputs.
	CreateAsset(ctx context.Context, companyID string, req dto.CreateAssetRequest, userID string) (*domain.FixedAsset, error)

	// DeactivateAsset marks an asset as no longer depreciable.
	DeactivateAsset(ctx context.Context, companyID string, assetID string, userID string) error
}

// DepreciationRunnerSvc defines the period depreciation run
type DepreciationRunnerSvc interface {
	// RunPeriod posts the scheduled depreciation for every active asset for the
	// given period. Each asset posts atomically; a failed asset does not roll
	// back the others. Re-running the same period is a no-op per already-posted
	// asset.
	RunPeriod(ctx context.Context, companyID string, periodID string, userID string) (*dto.DepreciationRunResponse, error)
}

// AssetSvcFacade combines all fixed asset service interfaces
// This is a facade for clients that need access to all operations
type AssetSvcFacade interface {
	AssetReaderSvc
	AssetWriterSvc
	DepreciationRunnerSvc
}
