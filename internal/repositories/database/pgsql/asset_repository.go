package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const assetColumns = `asset_id, company_id, asset_code, description, acquisition_date, acquisition_cost, salvage_value, useful_life_periods, method, expense_account_id, accumulated_account_id, accumulated_depreciation, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAssetRepository struct {
	BaseRepository
}

// newPgxAssetRepository creates a new repository for fixed asset data.
func newPgxAssetRepository(pool *pgxpool.Pool) portsrepo.AssetRepositoryWithTx {
	return &PgxAssetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAssetRepository implements portsrepo.AssetRepositoryWithTx
var _ portsrepo.AssetRepositoryWithTx = (*PgxAssetRepository)(nil)

func scanAsset(row pgx.Row) (*domain.FixedAsset, error) {
	var a domain.FixedAsset
	err := row.Scan(
		&a.AssetID,
		&a.CompanyID,
		&a.AssetCode,
		&a.Description,
		&a.AcquisitionDate,
		&a.AcquisitionCost,
		&a.SalvageValue,
		&a.UsefulLifePeriods,
		&a.Method,
		&a.ExpenseAccountID,
		&a.AccumulatedAccountID,
		&a.AccumulatedDepreciation,
		&a.IsActive,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveAsset persists a new fixed asset.
func (r *PgxAssetRepository) SaveAsset(ctx context.Context, asset domain.FixedAsset) error {
	query := `
		INSERT INTO fixed_assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		asset.AssetID,
		asset.CompanyID,
		asset.AssetCode,
		asset.Description,
		asset.AcquisitionDate,
		asset.AcquisitionCost,
		asset.SalvageValue,
		asset.UsefulLifePeriods,
		asset.Method,
		asset.ExpenseAccountID,
		asset.AccumulatedAccountID,
		asset.AccumulatedDepreciation,
		asset.IsActive,
		asset.CreatedAt,
		asset.CreatedBy,
		asset.LastUpdatedAt,
		asset.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: asset code %s already exists in company", apperrors.ErrDuplicate, asset.AssetCode)
		}
		return fmt.Errorf("failed to save asset %s: %w", asset.AssetID, err)
	}
	return nil
}

// FindAssetByID retrieves a fixed asset by its ID within a company.
func (r *PgxAssetRepository) FindAssetByID(ctx context.Context, companyID string, assetID string) (*domain.FixedAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM fixed_assets WHERE asset_id = $1 AND company_id = $2;`

	a, err := scanAsset(r.Pool.QueryRow(ctx, query, assetID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find asset "+assetID, err)
	}
	return a, nil
}

// ListAssets retrieves a paginated list of fixed assets for a company.
func (r *PgxAssetRepository) ListAssets(ctx context.Context, companyID string, activeOnly bool, limit int, offset int) ([]domain.FixedAsset, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if activeOnly {
		query := `SELECT ` + assetColumns + ` FROM fixed_assets WHERE company_id = $1 AND is_active = TRUE ORDER BY asset_code LIMIT $2 OFFSET $3;`
		rows, err = r.Pool.Query(ctx, query, companyID, limit, offset)
	} else {
		query := `SELECT ` + assetColumns + ` FROM fixed_assets WHERE company_id = $1 ORDER BY asset_code LIMIT $2 OFFSET $3;`
		rows, err = r.Pool.Query(ctx, query, companyID, limit, offset)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list assets for company "+companyID, err)
	}
	defer rows.Close()

	assets := []domain.FixedAsset{}
	for rows.Next() {
		a, scanErr := scanAsset(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan asset row", scanErr)
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating asset rows", err)
	}
	return assets, nil
}

// AddAssetDepreciation adds a posted depreciation amount to an asset's
// accumulated total.
func (r *PgxAssetRepository) AddAssetDepreciation(ctx context.Context, companyID string, assetID string, amount decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE fixed_assets
		SET accumulated_depreciation = accumulated_depreciation + $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE asset_id = $1 AND company_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, assetID, companyID, amount, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update depreciation for asset "+assetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("asset " + assetID + " not found for update")
	}
	return nil
}

// DeactivateAsset marks an asset as no longer depreciable.
func (r *PgxAssetRepository) DeactivateAsset(ctx context.Context, companyID string, assetID string, userID string, now time.Time) error {
	query := `
		UPDATE fixed_assets
		SET is_active = FALSE,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE asset_id = $1 AND company_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, assetID, companyID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate asset "+assetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("asset " + assetID + " not found for deactivation")
	}
	return nil
}
