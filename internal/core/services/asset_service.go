package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// assetService provides fixed asset registration and the period
// depreciation run. Depreciation postings go through the posting engine,
// one entry per asset per period, keyed so re-runs never post twice.
type assetService struct {
	BaseService
	assetRepo    portsrepo.AssetRepositoryWithTx
	periodRepo   portsrepo.PeriodRepositoryWithTx
	accountRepo  portsrepo.AccountRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	journalRepo  portsrepo.JournalReader
	ledgerSvc    portssvc.LedgerSvcFacade
}

// NewAssetService creates a new AssetService.
func NewAssetService(
	assetRepo portsrepo.AssetRepositoryWithTx,
	periodRepo portsrepo.PeriodRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	journalRepo portsrepo.JournalReader,
	ledgerSvc portssvc.LedgerSvcFacade,
	authorizer portssvc.CompanyAuthorizerSvc,
) portssvc.AssetSvcFacade {
	return &assetService{
		BaseService:  BaseService{CompanyAuthorizer: authorizer},
		assetRepo:    assetRepo,
		periodRepo:   periodRepo,
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		journalRepo:  journalRepo,
		ledgerSvc:    ledgerSvc,
	}
}

// Ensure assetService implements the portssvc.AssetSvcFacade interface
var _ portssvc.AssetSvcFacade = (*assetService)(nil)

// CreateAsset persists a new fixed asset after validating its depreciation
// inputs and the accounts it will post against.
func (s *assetService) CreateAsset(ctx context.Context, companyID string, req dto.CreateAssetRequest, userID string) (*domain.FixedAsset, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.FindAccountsByIDs(ctx, companyID, uniqueStrings([]string{req.ExpenseAccountID, req.AccumulatedAccountID})); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	asset := domain.FixedAsset{
		AssetID:                 uuid.NewString(),
		CompanyID:               companyID,
		AssetCode:               req.AssetCode,
		Description:             req.Description,
		AcquisitionDate:         req.AcquisitionDate,
		AcquisitionCost:         req.AcquisitionCost,
		SalvageValue:            req.SalvageValue,
		UsefulLifePeriods:       req.UsefulLifePeriods,
		Method:                  req.Method,
		ExpenseAccountID:        req.ExpenseAccountID,
		AccumulatedAccountID:    req.AccumulatedAccountID,
		AccumulatedDepreciation: decimal.Zero,
		IsActive:                true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := asset.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.assetRepo.SaveAsset(ctx, asset); err != nil {
		s.LogError(ctx, err, "Failed to save asset", slog.String("company_id", companyID), slog.String("asset_code", req.AssetCode))
		return nil, err
	}
	return &asset, nil
}

// GetAssetByID retrieves a specific fixed asset.
func (s *assetService) GetAssetByID(ctx context.Context, companyID string, assetID string, userID string) (*domain.FixedAsset, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.assetRepo.FindAssetByID(ctx, companyID, assetID)
}

// ListAssets retrieves a paginated list of fixed assets.
func (s *assetService) ListAssets(ctx context.Context, companyID string, userID string, activeOnly bool, limit int, offset int) ([]domain.FixedAsset, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.assetRepo.ListAssets(ctx, companyID, activeOnly, limit, offset)
}

// GetSchedule derives the full depreciation schedule for an asset at the
// company base currency's precision.
func (s *assetService) GetSchedule(ctx context.Context, companyID string, assetID string, userID string) ([]domain.ScheduleLine, error) {
	tenant, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly)
	if err != nil {
		return nil, err
	}
	asset, err := s.assetRepo.FindAssetByID(ctx, companyID, assetID)
	if err != nil {
		return nil, err
	}
	places, err := s.basePrecision(ctx, tenant.BaseCurrencyCode)
	if err != nil {
		return nil, err
	}
	lines, err := asset.GenerateSchedule(places)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return lines, nil
}

// DeactivateAsset marks an asset as no longer depreciable.
func (s *assetService) DeactivateAsset(ctx context.Context, companyID string, assetID string, userID string) error {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return err
	}
	if _, err := s.assetRepo.FindAssetByID(ctx, companyID, assetID); err != nil {
		return err
	}
	return s.assetRepo.DeactivateAsset(ctx, companyID, assetID, userID, time.Now().UTC())
}

// RunPeriod posts the scheduled depreciation for every active asset for the
// given period. Each asset posts independently; one failing asset is reported
// and the run continues. The idempotency key couples asset and period, so
// re-running a period skips assets that already posted.
func (s *assetService) RunPeriod(ctx context.Context, companyID string, periodID string, userID string) (*dto.DepreciationRunResponse, error) {
	tenant, err := s.Authorize(ctx, userID, companyID, domain.RoleMember)
	if err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindPeriodByID(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}

	places, err := s.basePrecision(ctx, tenant.BaseCurrencyCode)
	if err != nil {
		return nil, err
	}

	const pageSize = 200
	response := &dto.DepreciationRunResponse{PeriodID: periodID, Results: []dto.AssetRunResult{}}
	for offset := 0; ; offset += pageSize {
		assets, err := s.assetRepo.ListAssets(ctx, companyID, true, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for i := range assets {
			result := s.runAsset(ctx, companyID, &assets[i], period, tenant.BaseCurrencyCode, places, userID)
			response.Results = append(response.Results, result)
		}
		if len(assets) < pageSize {
			break
		}
	}

	s.LogInfo(ctx, "Depreciation run finished",
		slog.String("period_id", periodID),
		slog.String("company_id", companyID),
		slog.Int("assets", len(response.Results)))
	return response, nil
}

// runAsset posts one asset's depreciation for the period and records the outcome.
func (s *assetService) runAsset(ctx context.Context, companyID string, asset *domain.FixedAsset, period *domain.Period, baseCurrencyCode string, places int32, userID string) dto.AssetRunResult {
	result := dto.AssetRunResult{AssetID: asset.AssetID, Amount: decimal.Zero}

	idx := periodOrdinal(asset.AcquisitionDate, period.StartDate)
	if idx < 1 || idx > asset.UsefulLifePeriods {
		result.Status = dto.RunSkipped
		return result
	}

	schedule, err := asset.GenerateSchedule(places)
	if err != nil {
		result.Status = dto.RunFailed
		result.Error = err.Error()
		return result
	}
	amount := schedule[idx-1].Amount
	if amount.IsZero() {
		result.Status = dto.RunSkipped
		return result
	}
	result.Amount = amount

	// An existing entry under this key means the asset already posted for
	// this exact period. Periods are independent, so a later period having
	// run does not block an earlier one.
	key := asset.AssetID + ":" + period.PeriodID + ":depreciation"
	if _, err := s.journalRepo.FindEntryByIdempotencyKey(ctx, companyID, key); err == nil {
		result.Status = dto.RunSkipped
		return result
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		result.Status = dto.RunFailed
		result.Error = err.Error()
		return result
	}

	entry, err := s.ledgerSvc.PostEntry(ctx, companyID, dto.PostEntryRequest{
		EntryDate:      period.EndDate,
		Description:    "Depreciation of " + asset.AssetCode + " for " + period.Name,
		CurrencyCode:   baseCurrencyCode,
		IdempotencyKey: key,
		Lines: []dto.PostEntryLine{
			{AccountID: asset.ExpenseAccountID, Side: domain.DebitLine, Amount: amount},
			{AccountID: asset.AccumulatedAccountID, Side: domain.CreditLine, Amount: amount},
		},
		SourceType: domain.SourceDepreciation,
		SourceID:   &asset.AssetID,
	}, userID)
	if err != nil {
		result.Status = dto.RunFailed
		result.Error = err.Error()
		s.LogError(ctx, err, "Depreciation posting failed",
			slog.String("asset_id", asset.AssetID),
			slog.String("period_id", period.PeriodID))
		return result
	}

	if err := s.assetRepo.AddAssetDepreciation(ctx, companyID, asset.AssetID, amount, userID, time.Now().UTC()); err != nil {
		result.Status = dto.RunFailed
		result.Error = err.Error()
		return result
	}

	result.Status = dto.RunPosted
	result.EntryID = &entry.EntryID
	return result
}

// basePrecision loads the decimal precision of the company's base currency.
func (s *assetService) basePrecision(ctx context.Context, baseCurrencyCode string) (int32, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, baseCurrencyCode)
	if err != nil {
		return 0, fmt.Errorf("failed to load base currency: %w", err)
	}
	return currency.Precision, nil
}

// periodOrdinal is the 1-based position of a period in an asset's schedule,
// counted in calendar months from the acquisition month.
func periodOrdinal(acquisitionDate, periodStart time.Time) int {
	years := periodStart.Year() - acquisitionDate.Year()
	months := int(periodStart.Month()) - int(acquisitionDate.Month())
	return years*12 + months + 1
}
