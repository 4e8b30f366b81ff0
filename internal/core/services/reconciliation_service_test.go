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

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockBankRepo    *MockBankRepository
	mockJournalRepo *MockJournalRepository
	mockAuthorizer  *MockAuthorizer
	service         portssvc.ReconciliationSvcFacade

	companyID string
	userID    string
	tenant    *domain.TenantContext
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockBankRepo = new(MockBankRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAuthorizer = new(MockAuthorizer)
	suite.service = services.NewReconciliationService(
		suite.mockBankRepo,
		suite.mockJournalRepo,
		suite.mockAuthorizer,
		decimal.RequireFromString("0.05"),
		7,
	)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.tenant = &domain.TenantContext{
		CompanyID:        suite.companyID,
		BaseCurrencyCode: "USD",
		UserID:           suite.userID,
		Role:             domain.RoleMember,
	}
}

func (suite *ReconciliationServiceTestSuite) expectAuthorize(role domain.CompanyRole) {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.companyID, role).
		Return(suite.tenant, nil).Once()
}

func (suite *ReconciliationServiceTestSuite) unmatchedTransaction(amount string) *domain.BankTransaction {
	return &domain.BankTransaction{
		TransactionID: uuid.NewString(),
		CompanyID:     suite.companyID,
		ExternalRef:   "STMT-" + uuid.NewString()[:8],
		ValueDate:     time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString(amount),
		CurrencyCode:  "USD",
		Status:        domain.Unmatched,
	}
}

func (suite *ReconciliationServiceTestSuite) TestImport_DedupesWithinBatchAndReportsSkipped() {
	ctx := context.Background()
	req := dto.ImportBankTransactionsRequest{
		Transactions: []dto.BankTransactionImport{
			{ExternalRef: "REF-1", ValueDate: time.Now().UTC(), Amount: decimal.NewFromInt(100), CurrencyCode: "USD"},
			{ExternalRef: "REF-1", ValueDate: time.Now().UTC(), Amount: decimal.NewFromInt(100), CurrencyCode: "USD"},
			{ExternalRef: "REF-2", ValueDate: time.Now().UTC(), Amount: decimal.NewFromInt(-40), CurrencyCode: "USD"},
		},
	}

	suite.expectAuthorize(domain.RoleMember)
	// REF-2 already exists in storage, so only one row lands.
	suite.mockBankRepo.On("SaveBankTransactions", ctx, mock.AnythingOfType("[]domain.BankTransaction")).
		Run(func(args mock.Arguments) {
			rows := args.Get(1).([]domain.BankTransaction)
			suite.Require().Len(rows, 2)
			suite.Equal("REF-1", rows[0].ExternalRef)
			suite.Equal("REF-2", rows[1].ExternalRef)
			suite.Equal(domain.Unmatched, rows[0].Status)
		}).
		Return(1, nil).Once()

	response, err := suite.service.ImportBankTransactions(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, response.Imported)
	suite.Equal(2, response.Skipped)
	suite.mockBankRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestMatch_Success() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("100.00")
	lineID := uuid.NewString()

	suite.expectAuthorize(domain.RoleMember)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()
	suite.mockJournalRepo.On("FindLineByID", ctx, suite.companyID, lineID).
		Return(&domain.JournalLine{LineID: lineID, BaseAmount: decimal.RequireFromString("100.03")}, nil).Once()
	suite.mockBankRepo.On("IsLineMatched", ctx, suite.companyID, lineID).Return(false, nil).Once()
	suite.mockBankRepo.On("UpdateMatch", ctx, suite.companyID, txn.TransactionID, domain.Matched, &lineID, suite.userID, mock.Anything).
		Return(nil).Once()

	got, err := suite.service.MatchTransaction(ctx, suite.companyID, txn.TransactionID, dto.MatchTransactionRequest{LineID: lineID}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Matched, got.Status)
	suite.Require().NotNil(got.MatchedLineID)
	suite.Equal(lineID, *got.MatchedLineID)
	suite.mockBankRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestMatch_AmountOutsideTolerance() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("100.00")
	lineID := uuid.NewString()

	suite.expectAuthorize(domain.RoleMember)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()
	suite.mockJournalRepo.On("FindLineByID", ctx, suite.companyID, lineID).
		Return(&domain.JournalLine{LineID: lineID, BaseAmount: decimal.RequireFromString("100.06")}, nil).Once()
	suite.mockBankRepo.On("IsLineMatched", ctx, suite.companyID, lineID).Return(false, nil).Once()

	_, err := suite.service.MatchTransaction(ctx, suite.companyID, txn.TransactionID, dto.MatchTransactionRequest{LineID: lineID}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAmountOutsideTolerance)
	suite.mockBankRepo.AssertNotCalled(suite.T(), "UpdateMatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestMatch_NegativeStatementAmountComparesAbsolute() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("-250.00") // outflow on the statement
	lineID := uuid.NewString()

	suite.expectAuthorize(domain.RoleMember)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()
	suite.mockJournalRepo.On("FindLineByID", ctx, suite.companyID, lineID).
		Return(&domain.JournalLine{LineID: lineID, BaseAmount: decimal.RequireFromString("250.00")}, nil).Once()
	suite.mockBankRepo.On("IsLineMatched", ctx, suite.companyID, lineID).Return(false, nil).Once()
	suite.mockBankRepo.On("UpdateMatch", ctx, suite.companyID, txn.TransactionID, domain.Matched, &lineID, suite.userID, mock.Anything).
		Return(nil).Once()

	got, err := suite.service.MatchTransaction(ctx, suite.companyID, txn.TransactionID, dto.MatchTransactionRequest{LineID: lineID}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Matched, got.Status)
}

func (suite *ReconciliationServiceTestSuite) TestMatch_ForeignStatementCurrencyRejected() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("100.00")
	txn.CurrencyCode = "EUR"

	suite.expectAuthorize(domain.RoleMember)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()

	_, err := suite.service.MatchTransaction(ctx, suite.companyID, txn.TransactionID, dto.MatchTransactionRequest{LineID: uuid.NewString()}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "FindLineByID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestMatch_LineAlreadyMatched() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("100.00")
	lineID := uuid.NewString()

	suite.expectAuthorize(domain.RoleMember)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()
	suite.mockJournalRepo.On("FindLineByID", ctx, suite.companyID, lineID).
		Return(&domain.JournalLine{LineID: lineID, BaseAmount: decimal.NewFromInt(100)}, nil).Once()
	suite.mockBankRepo.On("IsLineMatched", ctx, suite.companyID, lineID).Return(true, nil).Once()

	_, err := suite.service.MatchTransaction(ctx, suite.companyID, txn.TransactionID, dto.MatchTransactionRequest{LineID: lineID}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrLineAlreadyMatched)
}

func (suite *ReconciliationServiceTestSuite) TestMatch_AlreadyMatchedTransactionRejected() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("100.00")
	txn.Status = domain.Matched

	suite.expectAuthorize(domain.RoleMember)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()

	_, err := suite.service.MatchTransaction(ctx, suite.companyID, txn.TransactionID, dto.MatchTransactionRequest{LineID: uuid.NewString()}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrState)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "FindLineByID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestUnmatch_ClearsLink() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("100.00")
	lineID := uuid.NewString()
	txn.Status = domain.Matched
	txn.MatchedLineID = &lineID

	suite.expectAuthorize(domain.RoleMember)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()
	suite.mockBankRepo.On("UpdateMatch", ctx, suite.companyID, txn.TransactionID, domain.Unmatched, (*string)(nil), suite.userID, mock.Anything).
		Return(nil).Once()

	got, err := suite.service.UnmatchTransaction(ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Unmatched, got.Status)
	suite.Nil(got.MatchedLineID)
}

func (suite *ReconciliationServiceTestSuite) TestIgnore_AlreadyIgnoredIsNoOp() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("100.00")
	txn.Status = domain.Ignored

	suite.expectAuthorize(domain.RoleMember)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()

	got, err := suite.service.IgnoreTransaction(ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Ignored, got.Status)
	suite.mockBankRepo.AssertNotCalled(suite.T(), "UpdateMatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestIgnore_MatchedTransactionRejected() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("100.00")
	txn.Status = domain.Matched

	suite.expectAuthorize(domain.RoleMember)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()

	_, err := suite.service.IgnoreTransaction(ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrState)
}

func (suite *ReconciliationServiceTestSuite) TestSuggestMatches_RanksByAmountThenDate() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("100.00")

	farAmount := domain.MatchCandidate{
		Line:       domain.JournalLine{LineID: uuid.NewString(), BaseAmount: decimal.RequireFromString("100.04")},
		EntryDate:  txn.ValueDate,
		AmountDiff: decimal.RequireFromString("0.04"),
	}
	exactButOlder := domain.MatchCandidate{
		Line:       domain.JournalLine{LineID: uuid.NewString(), BaseAmount: decimal.RequireFromString("100.00")},
		EntryDate:  txn.ValueDate.AddDate(0, 0, -3),
		AmountDiff: decimal.Zero,
	}
	exactSameDay := domain.MatchCandidate{
		Line:       domain.JournalLine{LineID: uuid.NewString(), BaseAmount: decimal.RequireFromString("100.00")},
		EntryDate:  txn.ValueDate,
		AmountDiff: decimal.Zero,
	}

	suite.expectAuthorize(domain.RoleReadOnly)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()
	suite.mockBankRepo.On("ListCandidateLines", ctx, suite.companyID, mock.Anything, mock.Anything, txn.ValueDate, 7).
		Return([]domain.MatchCandidate{farAmount, exactButOlder, exactSameDay}, nil).Once()

	candidates, err := suite.service.SuggestMatches(ctx, suite.companyID, txn.TransactionID, suite.userID, dto.SuggestMatchesParams{})

	suite.Require().NoError(err)
	suite.Require().Len(candidates, 3)
	suite.Equal(exactSameDay.Line.LineID, candidates[0].Line.LineID)
	suite.Equal(exactButOlder.Line.LineID, candidates[1].Line.LineID)
	suite.Equal(farAmount.Line.LineID, candidates[2].Line.LineID)
	suite.Equal(0, candidates[0].DateDiff)
	suite.Equal(3, candidates[1].DateDiff)
}

func (suite *ReconciliationServiceTestSuite) TestSuggestMatches_AppliesLimit() {
	ctx := context.Background()
	txn := suite.unmatchedTransaction("50.00")

	candidates := make([]domain.MatchCandidate, 5)
	for i := range candidates {
		candidates[i] = domain.MatchCandidate{
			Line:       domain.JournalLine{LineID: uuid.NewString(), BaseAmount: decimal.NewFromInt(50)},
			EntryDate:  txn.ValueDate.AddDate(0, 0, -i),
			AmountDiff: decimal.Zero,
		}
	}

	suite.expectAuthorize(domain.RoleReadOnly)
	suite.mockBankRepo.On("FindBankTransactionByID", ctx, suite.companyID, txn.TransactionID).
		Return(txn, nil).Once()
	suite.mockBankRepo.On("ListCandidateLines", ctx, suite.companyID, mock.Anything, mock.Anything, txn.ValueDate, 7).
		Return(candidates, nil).Once()

	got, err := suite.service.SuggestMatches(ctx, suite.companyID, txn.TransactionID, suite.userID, dto.SuggestMatchesParams{Limit: 2})

	suite.Require().NoError(err)
	suite.Len(got, 2)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
