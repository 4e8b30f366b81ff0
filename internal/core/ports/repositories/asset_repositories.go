package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AssetReader defines read operations for fixed asset data
type AssetReader interface {
	// FindAssetByID retrieves a specific fixed asset by its unique identifier.
	FindAssetByID(ctx context.Context, companyID string, assetID string) (*domain.FixedAsset, error)

	// ListAssets retrieves a paginated list of fixed assets for a company.
	ListAssets(ctx context.Context, companyID string, activeOnly bool, limit int, offset int) ([]domain.FixedAsset, error)
}

// AssetWriter defines write operations for fixed asset data
type AssetWriter interface {
	// SaveAsset persists a new fixed asset.
	SaveAsset(ctx context.Context, asset domain.FixedAsset) error

	// AddAssetDepreciation adds a posted depreciation amount to an asset's
	// accumulated total. The increment happens in SQL so concurrent period
	// runs do not lose updates.
	AddAssetDepreciation(ctx context.Context, companyID string, assetID string, amount decimal.Decimal, userID string, now time.Time) error

	// DeactivateAsset marks an asset as no longer depreciable.
	DeactivateAsset(ctx context.Context, companyID string, assetID string, userID string, now time.Time) error
}

// AssetRepositoryFacade combines all asset-related repository interfaces
// This is a facade for clients that need access to all operations
type AssetRepositoryFacade interface {
	AssetReader
	AssetWriter
}

// AssetRepositoryWithTx extends AssetRepositoryFacade with transaction capabilities
type AssetRepositoryWithTx interface {
	AssetRepositoryFacade
	TransactionManager
}
