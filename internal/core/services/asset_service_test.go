package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/core/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

type AssetServiceTestSuite struct {
	suite.Suite
	mockAssetRepo    *MockAssetRepository
	mockPeriodRepo   *MockPeriodRepository
	mockAccountRepo  *MockAccountRepository
	mockCurrencyRepo *MockCurrencyRepository
	mockJournalRepo  *MockJournalRepository
	mockLedgerSvc    *MockLedgerService
	mockAuthorizer   *MockAuthorizer
	service          portssvc.AssetSvcFacade

	companyID string
	userID    string
	tenant    *domain.TenantContext
	period    *domain.Period
}

func (suite *AssetServiceTestSuite) SetupTest() {
	suite.mockAssetRepo = new(MockAssetRepository)
	suite.mockPeriodRepo = new(MockPeriodRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.mockAuthorizer = new(MockAuthorizer)
	suite.service = services.NewAssetService(
		suite.mockAssetRepo,
		suite.mockPeriodRepo,
		suite.mockAccountRepo,
		suite.mockCurrencyRepo,
		suite.mockJournalRepo,
		suite.mockLedgerSvc,
		suite.mockAuthorizer,
	)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.tenant = &domain.TenantContext{
		CompanyID:        suite.companyID,
		BaseCurrencyCode: "USD",
		UserID:           suite.userID,
		Role:             domain.RoleMember,
	}
	suite.period = &domain.Period{
		PeriodID:  uuid.NewString(),
		CompanyID: suite.companyID,
		Name:      "2026-03",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:    domain.PeriodOpen,
	}
}

func (suite *AssetServiceTestSuite) expectAuthorize(role domain.CompanyRole) {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.companyID, role).
		Return(suite.tenant, nil).Once()
}

// testAsset acquired January 2026 with a 12-month straight line of 100/month.
func (suite *AssetServiceTestSuite) testAsset() domain.FixedAsset {
	return domain.FixedAsset{
		AssetID:                 uuid.NewString(),
		CompanyID:               suite.companyID,
		AssetCode:               "LAPTOP-01",
		AcquisitionDate:         time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		AcquisitionCost:         decimal.NewFromInt(1300),
		SalvageValue:            decimal.NewFromInt(100),
		UsefulLifePeriods:       12,
		Method:                  domain.StraightLine,
		ExpenseAccountID:        uuid.NewString(),
		AccumulatedAccountID:    uuid.NewString(),
		AccumulatedDepreciation: decimal.Zero,
		IsActive:                true,
	}
}

func (suite *AssetServiceTestSuite) expectRunPreamble(assets []domain.FixedAsset) {
	ctx := context.Background()
	suite.expectAuthorize(domain.RoleMember)
	suite.mockPeriodRepo.On("FindPeriodByID", ctx, suite.companyID, suite.period.PeriodID).
		Return(suite.period, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").
		Return(&domain.Currency{CurrencyCode: "USD", Precision: 2}, nil).Once()
	suite.mockAssetRepo.On("ListAssets", ctx, suite.companyID, true, 200, 0).
		Return(assets, nil).Once()
}

// expectNoPriorEntry stubs the idempotency key lookup for an asset that has
// not yet posted for the suite period.
func (suite *AssetServiceTestSuite) expectNoPriorEntry(asset domain.FixedAsset) {
	key := asset.AssetID + ":" + suite.period.PeriodID + ":depreciation"
	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", context.Background(), suite.companyID, key).
		Return(nil, apperrors.ErrNotFound).Once()
}

func (suite *AssetServiceTestSuite) TestCreateAsset_Success() {
	ctx := context.Background()
	expenseID := uuid.NewString()
	accumulatedID := uuid.NewString()
	req := dto.CreateAssetRequest{
		AssetCode:            "TRUCK-07",
		Description:          "Delivery truck",
		AcquisitionDate:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		AcquisitionCost:      decimal.NewFromInt(50000),
		SalvageValue:         decimal.NewFromInt(5000),
		UsefulLifePeriods:    60,
		Method:               domain.StraightLine,
		ExpenseAccountID:     expenseID,
		AccumulatedAccountID: accumulatedID,
	}

	suite.expectAuthorize(domain.RoleMember)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.companyID, mock.AnythingOfType("[]string")).
		Return(map[string]domain.Account{expenseID: {}, accumulatedID: {}}, nil).Once()
	suite.mockAssetRepo.On("SaveAsset", ctx, mock.AnythingOfType("domain.FixedAsset")).Return(nil).Once()

	asset, err := suite.service.CreateAsset(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(asset.IsActive)
	suite.True(asset.AccumulatedDepreciation.IsZero())
	suite.mockAssetRepo.AssertExpectations(suite.T())
}

func (suite *AssetServiceTestSuite) TestCreateAsset_SalvageAboveCostRejected() {
	ctx := context.Background()
	req := dto.CreateAssetRequest{
		AssetCode:            "BAD-01",
		AcquisitionDate:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		AcquisitionCost:      decimal.NewFromInt(100),
		SalvageValue:         decimal.NewFromInt(200),
		UsefulLifePeriods:    12,
		Method:               domain.StraightLine,
		ExpenseAccountID:     uuid.NewString(),
		AccumulatedAccountID: uuid.NewString(),
	}

	suite.expectAuthorize(domain.RoleMember)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.companyID, mock.AnythingOfType("[]string")).
		Return(map[string]domain.Account{}, nil).Once()

	_, err := suite.service.CreateAsset(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAssetRepo.AssertNotCalled(suite.T(), "SaveAsset", mock.Anything, mock.Anything)
}

func (suite *AssetServiceTestSuite) TestRunPeriod_PostsScheduledAmount() {
	ctx := context.Background()
	asset := suite.testAsset()
	entryID := uuid.NewString()

	suite.expectRunPreamble([]domain.FixedAsset{asset})
	suite.expectNoPriorEntry(asset)
	suite.mockLedgerSvc.On("PostEntry", ctx, suite.companyID, mock.AnythingOfType("dto.PostEntryRequest"), suite.userID).
		Run(func(args mock.Arguments) {
			req := args.Get(2).(dto.PostEntryRequest)
			suite.Equal(asset.AssetID+":"+suite.period.PeriodID+":depreciation", req.IdempotencyKey)
			suite.Equal(domain.SourceDepreciation, req.SourceType)
			suite.True(req.EntryDate.Equal(suite.period.EndDate))
			suite.Require().Len(req.Lines, 2)
			suite.Equal(asset.ExpenseAccountID, req.Lines[0].AccountID)
			suite.Equal(domain.DebitLine, req.Lines[0].Side)
			suite.True(req.Lines[0].Amount.Equal(decimal.NewFromInt(100)))
			suite.Equal(asset.AccumulatedAccountID, req.Lines[1].AccountID)
			suite.Equal(domain.CreditLine, req.Lines[1].Side)
		}).
		Return(&domain.JournalEntry{EntryID: entryID, Status: domain.Posted}, nil).Once()
	suite.mockAssetRepo.On("AddAssetDepreciation", ctx, suite.companyID, asset.AssetID, mock.Anything, suite.userID, mock.Anything).
		Run(func(args mock.Arguments) {
			amount := args.Get(3).(decimal.Decimal)
			suite.True(amount.Equal(decimal.NewFromInt(100)), "got %s", amount.String())
		}).
		Return(nil).Once()

	response, err := suite.service.RunPeriod(ctx, suite.companyID, suite.period.PeriodID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(response.Results, 1)
	suite.Equal(dto.RunPosted, response.Results[0].Status)
	suite.True(response.Results[0].Amount.Equal(decimal.NewFromInt(100)))
	suite.Require().NotNil(response.Results[0].EntryID)
	suite.Equal(entryID, *response.Results[0].EntryID)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
	suite.mockAssetRepo.AssertExpectations(suite.T())
}

func (suite *AssetServiceTestSuite) TestRunPeriod_SkipsAssetOutsideLife() {
	ctx := context.Background()
	asset := suite.testAsset()
	asset.AcquisitionDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) // acquired after the period

	suite.expectRunPreamble([]domain.FixedAsset{asset})

	response, err := suite.service.RunPeriod(ctx, suite.companyID, suite.period.PeriodID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(response.Results, 1)
	suite.Equal(dto.RunSkipped, response.Results[0].Status)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AssetServiceTestSuite) TestRunPeriod_SkipsAlreadyPostedAsset() {
	ctx := context.Background()
	asset := suite.testAsset()
	key := asset.AssetID + ":" + suite.period.PeriodID + ":depreciation"

	suite.expectRunPreamble([]domain.FixedAsset{asset})
	suite.mockJournalRepo.On("FindEntryByIdempotencyKey", ctx, suite.companyID, key).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()

	response, err := suite.service.RunPeriod(ctx, suite.companyID, suite.period.PeriodID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(response.Results, 1)
	suite.Equal(dto.RunSkipped, response.Results[0].Status)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AssetServiceTestSuite) TestRunPeriod_EarlierPeriodPostsAfterLaterRun() {
	ctx := context.Background()
	// February's run happens after March already posted. The March posting
	// moved the accumulated total, but February's own key has no entry yet,
	// so February still posts its scheduled 100.
	suite.period = &domain.Period{
		PeriodID:  uuid.NewString(),
		CompanyID: suite.companyID,
		Name:      "2026-02",
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		Status:    domain.PeriodOpen,
	}
	asset := suite.testAsset()
	asset.AccumulatedDepreciation = decimal.NewFromInt(100)

	suite.expectRunPreamble([]domain.FixedAsset{asset})
	suite.expectNoPriorEntry(asset)
	suite.mockLedgerSvc.On("PostEntry", ctx, suite.companyID, mock.AnythingOfType("dto.PostEntryRequest"), suite.userID).
		Run(func(args mock.Arguments) {
			req := args.Get(2).(dto.PostEntryRequest)
			suite.Equal(asset.AssetID+":"+suite.period.PeriodID+":depreciation", req.IdempotencyKey)
			suite.Require().Len(req.Lines, 2)
			suite.True(req.Lines[0].Amount.Equal(decimal.NewFromInt(100)))
		}).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockAssetRepo.On("AddAssetDepreciation", ctx, suite.companyID, asset.AssetID, mock.Anything, suite.userID, mock.Anything).
		Run(func(args mock.Arguments) {
			amount := args.Get(3).(decimal.Decimal)
			suite.True(amount.Equal(decimal.NewFromInt(100)), "got %s", amount.String())
		}).
		Return(nil).Once()

	response, err := suite.service.RunPeriod(ctx, suite.companyID, suite.period.PeriodID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(response.Results, 1)
	suite.Equal(dto.RunPosted, response.Results[0].Status)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
	suite.mockAssetRepo.AssertExpectations(suite.T())
}

func (suite *AssetServiceTestSuite) TestRunPeriod_PagesThroughAllAssets() {
	ctx := context.Background()
	// Two pages of assets, all acquired after the period so each one is
	// skipped without posting. The run must still visit every page.
	firstPage := make([]domain.FixedAsset, 200)
	for i := range firstPage {
		a := suite.testAsset()
		a.AcquisitionDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		firstPage[i] = a
	}
	last := suite.testAsset()
	last.AcquisitionDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	suite.expectRunPreamble(firstPage)
	suite.mockAssetRepo.On("ListAssets", ctx, suite.companyID, true, 200, 200).
		Return([]domain.FixedAsset{last}, nil).Once()

	response, err := suite.service.RunPeriod(ctx, suite.companyID, suite.period.PeriodID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(response.Results, 201)
	suite.mockAssetRepo.AssertExpectations(suite.T())
}

func (suite *AssetServiceTestSuite) TestRunPeriod_OneFailureDoesNotStopRun() {
	ctx := context.Background()
	failing := suite.testAsset()
	healthy := suite.testAsset()

	suite.expectRunPreamble([]domain.FixedAsset{failing, healthy})
	suite.expectNoPriorEntry(failing)
	suite.expectNoPriorEntry(healthy)
	suite.mockLedgerSvc.On("PostEntry", ctx, suite.companyID, mock.MatchedBy(func(req dto.PostEntryRequest) bool {
		return req.SourceID != nil && *req.SourceID == failing.AssetID
	}), suite.userID).Return(nil, apperrors.ErrPeriodClosed).Once()
	suite.mockLedgerSvc.On("PostEntry", ctx, suite.companyID, mock.MatchedBy(func(req dto.PostEntryRequest) bool {
		return req.SourceID != nil && *req.SourceID == healthy.AssetID
	}), suite.userID).Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockAssetRepo.On("AddAssetDepreciation", ctx, suite.companyID, healthy.AssetID, mock.Anything, suite.userID, mock.Anything).
		Return(nil).Once()

	response, err := suite.service.RunPeriod(ctx, suite.companyID, suite.period.PeriodID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(response.Results, 2)
	suite.Equal(dto.RunFailed, response.Results[0].Status)
	suite.NotEmpty(response.Results[0].Error)
	suite.Equal(dto.RunPosted, response.Results[1].Status)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *AssetServiceTestSuite) TestGetSchedule_UsesBasePrecision() {
	ctx := context.Background()
	asset := suite.testAsset()

	suite.expectAuthorize(domain.RoleReadOnly)
	suite.mockAssetRepo.On("FindAssetByID", ctx, suite.companyID, asset.AssetID).
		Return(&asset, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").
		Return(&domain.Currency{CurrencyCode: "USD", Precision: 2}, nil).Once()

	lines, err := suite.service.GetSchedule(ctx, suite.companyID, asset.AssetID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(lines, 12)
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	suite.True(total.Equal(asset.DepreciableBase()))
}

func TestAssetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssetServiceTestSuite))
}
