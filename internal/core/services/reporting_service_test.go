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
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockDocumentRepo  *MockDocumentRepository
	mockAuthorizer    *MockAuthorizer
	service           portssvc.ReportingService

	companyID string
	userID    string
	tenant    *domain.TenantContext
	asOf      time.Time
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockAuthorizer = new(MockAuthorizer)
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockDocumentRepo, suite.mockAuthorizer)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.tenant = &domain.TenantContext{
		CompanyID:        suite.companyID,
		BaseCurrencyCode: "USD",
		UserID:           suite.userID,
		Role:             domain.RoleReadOnly,
	}
	suite.asOf = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
}

func (suite *ReportingServiceTestSuite) expectAuthorize() {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.companyID, domain.RoleReadOnly).
		Return(suite.tenant, nil).Once()
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_TotalsAgree() {
	ctx := context.Background()
	rows := []domain.TrialBalanceRow{
		{AccountID: uuid.NewString(), AccountCode: "1000", AccountName: "Cash", Debit: decimal.NewFromInt(500), Credit: decimal.Zero},
		{AccountID: uuid.NewString(), AccountCode: "4000", AccountName: "Revenue", Debit: decimal.Zero, Credit: decimal.NewFromInt(500)},
	}

	suite.expectAuthorize()
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, suite.companyID, suite.asOf).Return(rows, nil).Once()

	report, err := suite.service.TrialBalance(ctx, suite.companyID, suite.asOf, suite.userID)

	suite.Require().NoError(err)
	suite.Len(report.Rows, 2)
	suite.True(report.TotalDebit.Equal(decimal.NewFromInt(500)))
	suite.True(report.TotalDebit.Equal(report.TotalCredit))
}

func (suite *ReportingServiceTestSuite) TestIncomeStatement_NetIncome() {
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	revenue := []domain.AccountAmount{
		{AccountID: uuid.NewString(), Code: "4000", Name: "Sales", NetAmount: decimal.NewFromInt(900)},
	}
	expenses := []domain.AccountAmount{
		{AccountID: uuid.NewString(), Code: "5000", Name: "Rent", NetAmount: decimal.NewFromInt(300)},
		{AccountID: uuid.NewString(), Code: "5100", Name: "Payroll", NetAmount: decimal.NewFromInt(200)},
	}

	suite.expectAuthorize()
	suite.mockReportingRepo.On("GetIncomeStatementData", ctx, suite.companyID, from, to).
		Return(revenue, expenses, nil).Once()

	report, err := suite.service.IncomeStatement(ctx, suite.companyID, from, to, suite.userID)

	suite.Require().NoError(err)
	suite.True(report.NetIncome.Equal(decimal.NewFromInt(400)))
}

func (suite *ReportingServiceTestSuite) TestCashflow_NetsPerAccount() {
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	accountID := uuid.NewString()
	inflows := []domain.AccountAmount{{AccountID: accountID, Code: "1000", Name: "Cash", NetAmount: decimal.NewFromInt(800)}}
	outflows := []domain.AccountAmount{{AccountID: accountID, Code: "1000", Name: "Cash", NetAmount: decimal.NewFromInt(350)}}

	suite.expectAuthorize()
	suite.mockReportingRepo.On("GetCashflowData", ctx, suite.companyID, from, to).
		Return(inflows, outflows, nil).Once()

	report, err := suite.service.Cashflow(ctx, suite.companyID, from, to, suite.userID)

	suite.Require().NoError(err)
	suite.True(report.NetChange.Equal(decimal.NewFromInt(450)))
	suite.Require().Len(report.ByAccount, 1)
	suite.True(report.ByAccount[0].NetAmount.Equal(decimal.NewFromInt(450)))
}

func (suite *ReportingServiceTestSuite) TestARAging_BucketsByDaysPastDue() {
	ctx := context.Background()
	customerID := uuid.NewString()
	docs := []domain.OutstandingDocument{
		// Not yet due, lands in the first bucket.
		{DocumentID: uuid.NewString(), CounterpartyID: customerID, CounterpartyName: "Acme", DueDate: suite.asOf.AddDate(0, 0, 10), Outstanding: decimal.NewFromInt(100)},
		// 45 days overdue.
		{DocumentID: uuid.NewString(), CounterpartyID: customerID, CounterpartyName: "Acme", DueDate: suite.asOf.AddDate(0, 0, -45), Outstanding: decimal.NewFromInt(200)},
		// 120 days overdue, open-ended bucket.
		{DocumentID: uuid.NewString(), CounterpartyID: customerID, CounterpartyName: "Acme", DueDate: suite.asOf.AddDate(0, 0, -120), Outstanding: decimal.NewFromInt(50)},
	}

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("ListOutstandingInvoices", ctx, suite.companyID).Return(docs, nil).Once()

	report, err := suite.service.ARAging(ctx, suite.companyID, suite.asOf, nil, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.KindInvoice, report.Kind)
	suite.Require().Len(report.Rows, 1)
	row := report.Rows[0]
	suite.Require().Len(row.Buckets, 4)
	suite.Equal("0-30", row.Buckets[0].Label)
	suite.Equal("31-60", row.Buckets[1].Label)
	suite.Equal("61-90", row.Buckets[2].Label)
	suite.Equal("90+", row.Buckets[3].Label)
	suite.True(row.Buckets[0].Amount.Equal(decimal.NewFromInt(100)))
	suite.True(row.Buckets[1].Amount.Equal(decimal.NewFromInt(200)))
	suite.True(row.Buckets[2].Amount.IsZero())
	suite.True(row.Buckets[3].Amount.Equal(decimal.NewFromInt(50)))
	suite.True(report.Total.Equal(decimal.NewFromInt(350)))
}

func (suite *ReportingServiceTestSuite) TestAPAging_SortsRowsByVendorName() {
	ctx := context.Background()
	docs := []domain.OutstandingDocument{
		{DocumentID: uuid.NewString(), CounterpartyID: uuid.NewString(), CounterpartyName: "Zeta Supplies", DueDate: suite.asOf, Outstanding: decimal.NewFromInt(10)},
		{DocumentID: uuid.NewString(), CounterpartyID: uuid.NewString(), CounterpartyName: "Alpha Freight", DueDate: suite.asOf, Outstanding: decimal.NewFromInt(20)},
	}

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("ListOutstandingBills", ctx, suite.companyID).Return(docs, nil).Once()

	report, err := suite.service.APAging(ctx, suite.companyID, suite.asOf, nil, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.KindBill, report.Kind)
	suite.Require().Len(report.Rows, 2)
	suite.Equal("Alpha Freight", report.Rows[0].CounterpartyName)
	suite.Equal("Zeta Supplies", report.Rows[1].CounterpartyName)
}

func (suite *ReportingServiceTestSuite) TestARAging_CustomBoundaries() {
	ctx := context.Background()
	docs := []domain.OutstandingDocument{
		{DocumentID: uuid.NewString(), CounterpartyID: uuid.NewString(), CounterpartyName: "Acme", DueDate: suite.asOf.AddDate(0, 0, -10), Outstanding: decimal.NewFromInt(75)},
	}

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("ListOutstandingInvoices", ctx, suite.companyID).Return(docs, nil).Once()

	report, err := suite.service.ARAging(ctx, suite.companyID, suite.asOf, []int{7, 14}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(report.Rows, 1)
	row := report.Rows[0]
	suite.Require().Len(row.Buckets, 3)
	suite.Equal("0-7", row.Buckets[0].Label)
	suite.Equal("8-14", row.Buckets[1].Label)
	suite.Equal("14+", row.Buckets[2].Label)
	suite.True(row.Buckets[1].Amount.Equal(decimal.NewFromInt(75)))
}

func (suite *ReportingServiceTestSuite) TestARAging_InvalidBoundariesRejected() {
	ctx := context.Background()

	suite.expectAuthorize()

	_, err := suite.service.ARAging(ctx, suite.companyID, suite.asOf, []int{30, 30}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "ListOutstandingInvoices", mock.Anything, mock.Anything)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
