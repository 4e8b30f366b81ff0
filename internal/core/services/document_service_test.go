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

type DocumentServiceTestSuite struct {
	suite.Suite
	mockDocumentRepo *MockDocumentRepository
	mockAccountRepo  *MockAccountRepository
	mockCurrencyRepo *MockCurrencyRepository
	mockLedgerSvc    *MockLedgerService
	mockAuthorizer   *MockAuthorizer
	service          portssvc.DocumentSvcFacade

	companyID   string
	userID      string
	tenant      *domain.TenantContext
	customerID  string
	arAccountID string
}

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.mockDocumentRepo = new(MockDocumentRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.mockAuthorizer = new(MockAuthorizer)
	suite.service = services.NewDocumentService(
		suite.mockDocumentRepo,
		suite.mockAccountRepo,
		suite.mockCurrencyRepo,
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
	suite.customerID = uuid.NewString()
	suite.arAccountID = uuid.NewString()
}

func (suite *DocumentServiceTestSuite) expectAuthorize() {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.companyID, domain.RoleMember).
		Return(suite.tenant, nil).Once()
}

func (suite *DocumentServiceTestSuite) draftInvoice() *domain.Invoice {
	invoiceID := uuid.NewString()
	return &domain.Invoice{
		InvoiceID:     invoiceID,
		CompanyID:     suite.companyID,
		CustomerID:    suite.customerID,
		InvoiceNumber: "INV-001",
		IssueDate:     time.Now().UTC(),
		DueDate:       time.Now().UTC().AddDate(0, 1, 0),
		CurrencyCode:  "USD",
		Status:        domain.DocDraft,
		Total:         decimal.NewFromInt(150),
		PaidTotal:     decimal.Zero,
		Lines: []domain.DocumentLine{
			{LineID: uuid.NewString(), DocumentID: invoiceID, AccountID: uuid.NewString(), Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(50), LineTotal: decimal.NewFromInt(150)},
		},
	}
}

func (suite *DocumentServiceTestSuite) TestCreateInvoice_Success() {
	ctx := context.Background()
	revenueAccountID := uuid.NewString()
	req := dto.CreateInvoiceRequest{
		CustomerID:    suite.customerID,
		InvoiceNumber: "INV-001",
		IssueDate:     time.Now().UTC(),
		DueDate:       time.Now().UTC().AddDate(0, 1, 0),
		CurrencyCode:  "USD",
		Lines: []dto.DocumentLineRequest{
			{AccountID: revenueAccountID, Description: "Consulting", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("50.00")},
		},
	}

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customerID).
		Return(&domain.Customer{CustomerID: suite.customerID, CompanyID: suite.companyID, Name: "Acme"}, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").
		Return(&domain.Currency{CurrencyCode: "USD", Precision: 2}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, suite.companyID, []string{revenueAccountID}).
		Return(map[string]domain.Account{revenueAccountID: {AccountID: revenueAccountID}}, nil).Once()
	suite.mockDocumentRepo.On("SaveInvoice", ctx, mock.AnythingOfType("domain.Invoice")).Return(nil).Once()

	invoice, err := suite.service.CreateInvoice(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocDraft, invoice.Status)
	suite.True(invoice.Total.Equal(decimal.NewFromInt(150)))
	suite.True(invoice.PaidTotal.IsZero())
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestFinalizeInvoice_PostsAndLocks() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	entryID := uuid.NewString()

	finalized := *invoice
	finalized.Status = domain.DocFinalized
	finalized.EntryID = &entryID

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(invoice, nil).Once()
	suite.mockDocumentRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customerID).
		Return(&domain.Customer{CustomerID: suite.customerID, DefaultARAccountID: &suite.arAccountID}, nil).Once()
	suite.mockLedgerSvc.On("PostEntry", ctx, suite.companyID, mock.AnythingOfType("dto.PostEntryRequest"), suite.userID).
		Run(func(args mock.Arguments) {
			req := args.Get(2).(dto.PostEntryRequest)
			suite.Equal(invoice.InvoiceID+":finalize", req.IdempotencyKey)
			suite.Equal(domain.SourceInvoice, req.SourceType)
			suite.Require().Len(req.Lines, 2)
			suite.Equal(suite.arAccountID, req.Lines[0].AccountID)
			suite.Equal(domain.DebitLine, req.Lines[0].Side)
			suite.True(req.Lines[0].Amount.Equal(invoice.Total))
			suite.Equal(domain.CreditLine, req.Lines[1].Side)
		}).
		Return(&domain.JournalEntry{EntryID: entryID, Status: domain.Posted}, nil).Once()
	suite.mockDocumentRepo.On("UpdateInvoice", ctx, mock.AnythingOfType("domain.Invoice")).
		Run(func(args mock.Arguments) {
			updated := args.Get(1).(domain.Invoice)
			suite.Equal(domain.DocFinalized, updated.Status)
			suite.Require().NotNil(updated.EntryID)
			suite.Equal(entryID, *updated.EntryID)
		}).
		Return(nil).Once()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(&finalized, nil).Once()

	got, err := suite.service.FinalizeInvoice(ctx, suite.companyID, invoice.InvoiceID, dto.FinalizeDocumentRequest{}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocFinalized, got.Status)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestFinalizeInvoice_AlreadyFinalizedRejected() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	invoice.Status = domain.DocFinalized

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(invoice, nil).Once()

	_, err := suite.service.FinalizeInvoice(ctx, suite.companyID, invoice.InvoiceID, dto.FinalizeDocumentRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrState)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestFinalizeInvoice_NoSettlementAccount() {
	ctx := context.Background()
	invoice := suite.draftInvoice()

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(invoice, nil).Once()
	suite.mockDocumentRepo.On("FindCustomerByID", ctx, suite.companyID, suite.customerID).
		Return(&domain.Customer{CustomerID: suite.customerID}, nil).Once()

	_, err := suite.service.FinalizeInvoice(ctx, suite.companyID, invoice.InvoiceID, dto.FinalizeDocumentRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNoSettlementAccount)
}

func (suite *DocumentServiceTestSuite) TestVoidInvoice_ReversesPosting() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	entryID := uuid.NewString()
	invoice.Status = domain.DocFinalized
	invoice.EntryID = &entryID

	voided := *invoice
	voided.Status = domain.DocVoid

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(invoice, nil).Once()
	suite.mockLedgerSvc.On("ReverseEntry", ctx, suite.companyID, entryID, mock.AnythingOfType("dto.ReverseEntryRequest"), suite.userID).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockDocumentRepo.On("UpdateInvoice", ctx, mock.AnythingOfType("domain.Invoice")).Return(nil).Once()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(&voided, nil).Once()

	got, err := suite.service.VoidInvoice(ctx, suite.companyID, invoice.InvoiceID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocVoid, got.Status)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestVoidInvoice_AlreadyVoidIsNoOp() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	invoice.Status = domain.DocVoid

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(invoice, nil).Once()

	got, err := suite.service.VoidInvoice(ctx, suite.companyID, invoice.InvoiceID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocVoid, got.Status)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "ReverseEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "UpdateInvoice", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestVoidInvoice_PaidRejected() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	invoice.Status = domain.DocPaid

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(invoice, nil).Once()

	_, err := suite.service.VoidInvoice(ctx, suite.companyID, invoice.InvoiceID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrState)
}

func (suite *DocumentServiceTestSuite) TestVoidInvoice_PartiallyPaidRejected() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	entryID := uuid.NewString()
	invoice.Status = domain.DocPartiallyPaid
	invoice.EntryID = &entryID
	invoice.PaidTotal = decimal.NewFromInt(50)

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(invoice, nil).Once()

	_, err := suite.service.VoidInvoice(ctx, suite.companyID, invoice.InvoiceID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrState)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "ReverseEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "UpdateInvoice", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestDeleteInvoice_FinalizedRejected() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	invoice.Status = domain.DocFinalized

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindInvoiceByID", ctx, suite.companyID, invoice.InvoiceID).
		Return(invoice, nil).Once()

	err := suite.service.DeleteInvoice(ctx, suite.companyID, invoice.InvoiceID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrState)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "DeleteInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) paymentRequest(invoiceID string, amount decimal.Decimal) dto.RecordPaymentRequest {
	return dto.RecordPaymentRequest{
		Kind:                domain.KindInvoice,
		PaymentDate:         time.Now().UTC(),
		CurrencyCode:        "USD",
		Amount:              amount,
		CashAccountID:       uuid.NewString(),
		SettlementAccountID: suite.arAccountID,
		IdempotencyKey:      uuid.NewString(),
		Allocations: []dto.PaymentAllocationRequest{
			{DocumentID: invoiceID, Amount: amount},
		},
	}
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_FullPaymentMarksPaid() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	invoice.Status = domain.DocFinalized
	req := suite.paymentRequest(invoice.InvoiceID, invoice.Total)
	entryID := uuid.NewString()

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindPaymentByID", ctx, suite.companyID, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockDocumentRepo.On("FindInvoicesByIDs", ctx, suite.companyID, []string{invoice.InvoiceID}).
		Return(map[string]domain.Invoice{invoice.InvoiceID: *invoice}, nil).Once()
	suite.mockLedgerSvc.On("PostEntry", ctx, suite.companyID, mock.AnythingOfType("dto.PostEntryRequest"), suite.userID).
		Run(func(args mock.Arguments) {
			postReq := args.Get(2).(dto.PostEntryRequest)
			suite.Equal(req.IdempotencyKey, postReq.IdempotencyKey)
			suite.Equal(domain.SourcePayment, postReq.SourceType)
			suite.Require().Len(postReq.Lines, 2)
			suite.Equal(req.CashAccountID, postReq.Lines[0].AccountID)
			suite.Equal(domain.DebitLine, postReq.Lines[0].Side)
			suite.Equal(req.SettlementAccountID, postReq.Lines[1].AccountID)
			suite.Equal(domain.CreditLine, postReq.Lines[1].Side)
		}).
		Return(&domain.JournalEntry{EntryID: entryID, Status: domain.Posted}, nil).Once()
	suite.mockDocumentRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.Invoice"), mock.Anything).
		Run(func(args mock.Arguments) {
			invoices := args.Get(2).([]domain.Invoice)
			suite.Require().Len(invoices, 1)
			suite.Equal(domain.DocPaid, invoices[0].Status)
			suite.True(invoices[0].PaidTotal.Equal(invoice.Total))
		}).
		Return(nil).Once()

	payment, err := suite.service.RecordPayment(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(payment.EntryID)
	suite.Equal(entryID, *payment.EntryID)
	suite.Len(payment.Allocations, 1)
	suite.mockDocumentRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_PartialPayment() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	invoice.Status = domain.DocFinalized
	req := suite.paymentRequest(invoice.InvoiceID, decimal.NewFromInt(50))

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindPaymentByID", ctx, suite.companyID, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockDocumentRepo.On("FindInvoicesByIDs", ctx, suite.companyID, []string{invoice.InvoiceID}).
		Return(map[string]domain.Invoice{invoice.InvoiceID: *invoice}, nil).Once()
	suite.mockLedgerSvc.On("PostEntry", ctx, suite.companyID, mock.Anything, suite.userID).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.Posted}, nil).Once()
	suite.mockDocumentRepo.On("SavePayment", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			invoices := args.Get(2).([]domain.Invoice)
			suite.Require().Len(invoices, 1)
			suite.Equal(domain.DocPartiallyPaid, invoices[0].Status)
		}).
		Return(nil).Once()

	_, err := suite.service.RecordPayment(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_AllocationMismatch() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	req := suite.paymentRequest(invoice.InvoiceID, decimal.NewFromInt(100))
	req.Allocations[0].Amount = decimal.NewFromInt(60)

	suite.expectAuthorize()

	_, err := suite.service.RecordPayment(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAllocationMismatch)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_OverAllocation() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	invoice.Status = domain.DocFinalized
	over := invoice.Total.Add(decimal.NewFromInt(1))
	req := suite.paymentRequest(invoice.InvoiceID, over)

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindPaymentByID", ctx, suite.companyID, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockDocumentRepo.On("FindInvoicesByIDs", ctx, suite.companyID, []string{invoice.InvoiceID}).
		Return(map[string]domain.Invoice{invoice.InvoiceID: *invoice}, nil).Once()

	_, err := suite.service.RecordPayment(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrOverAllocation)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_CurrencyMismatchRejected() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	invoice.Status = domain.DocFinalized
	req := suite.paymentRequest(invoice.InvoiceID, invoice.Total)
	req.CurrencyCode = "JPY"

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindPaymentByID", ctx, suite.companyID, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockDocumentRepo.On("FindInvoicesByIDs", ctx, suite.companyID, []string{invoice.InvoiceID}).
		Return(map[string]domain.Invoice{invoice.InvoiceID: *invoice}, nil).Once()

	_, err := suite.service.RecordPayment(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_DraftDocumentRejected() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	req := suite.paymentRequest(invoice.InvoiceID, invoice.Total)

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindPaymentByID", ctx, suite.companyID, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockDocumentRepo.On("FindInvoicesByIDs", ctx, suite.companyID, []string{invoice.InvoiceID}).
		Return(map[string]domain.Invoice{invoice.InvoiceID: *invoice}, nil).Once()

	_, err := suite.service.RecordPayment(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrState)
}

func (suite *DocumentServiceTestSuite) TestRecordPayment_ReplayReturnsExisting() {
	ctx := context.Background()
	invoice := suite.draftInvoice()
	req := suite.paymentRequest(invoice.InvoiceID, invoice.Total)

	existing := &domain.Payment{
		PaymentID: uuid.NewString(),
		CompanyID: suite.companyID,
		Kind:      domain.KindInvoice,
		Amount:    invoice.Total,
	}

	suite.expectAuthorize()
	suite.mockDocumentRepo.On("FindPaymentByID", ctx, suite.companyID, mock.AnythingOfType("string")).
		Return(existing, nil).Once()

	payment, err := suite.service.RecordPayment(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(existing.PaymentID, payment.PaymentID)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockDocumentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}
