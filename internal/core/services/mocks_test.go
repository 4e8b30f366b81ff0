package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// --- Mock CompanyAuthorizer ---

type MockAuthorizer struct {
	mock.Mock
}

var _ portssvc.CompanyAuthorizerSvc = (*MockAuthorizer)(nil)

func (m *MockAuthorizer) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) (*domain.TenantContext, error) {
	args := m.Called(ctx, userID, companyID, requiredRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TenantContext), args.Error(1)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryWithTx = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, companyID string, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, companyID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryByIdempotencyKey(ctx context.Context, companyID string, idempotencyKey string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, companyID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntriesByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, companyID, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, entry, lines, balanceChanges)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveReversalEntry(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, reversal, lines, balanceChanges)
	return args.Error(0)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, companyID string, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, companyID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryIDs(ctx context.Context, companyID string, entryIDs []string) (map[string][]domain.JournalLine, error) {
	args := m.Called(ctx, companyID, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) FindLineByID(ctx context.Context, companyID string, lineID string) (*domain.JournalLine, error) {
	args := m.Called(ctx, companyID, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListLinesByAccountID(ctx context.Context, companyID string, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	args := m.Called(ctx, companyID, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalLine), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockJournalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockJournalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, companyID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, companyID string, code string) (*domain.Account, error) {
	args := m.Called(ctx, companyID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, companyID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListChildAccounts(ctx context.Context, companyID string, parentAccountID string) ([]domain.Account, error) {
	args := m.Called(ctx, companyID, parentAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasPostedLines(ctx context.Context, companyID string, accountID string) (bool, error) {
	args := m.Called(ctx, companyID, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, companyID string, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, companyID, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, companyID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock PeriodRepository ---

type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodRepositoryWithTx = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, companyID string, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, companyID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, companyID string, date time.Time) (*domain.Period, error) {
	args := m.Called(ctx, companyID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindOverlappingPeriod(ctx context.Context, companyID string, startDate, endDate time.Time) (*domain.Period, error) {
	args := m.Called(ctx, companyID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, companyID string, limit int, offset int) ([]domain.Period, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) UpdatePeriodStatus(ctx context.Context, companyID string, periodID string, status domain.PeriodStatus, userID string, now time.Time) error {
	args := m.Called(ctx, companyID, periodID, status, userID, now)
	return args.Error(0)
}

func (m *MockPeriodRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockPeriodRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPeriodRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

var _ portsrepo.CurrencyRepositoryFacade = (*MockCurrencyRepository)(nil)

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

// --- Mock ExchangeRateRepository ---

type MockExchangeRateRepository struct {
	mock.Mock
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*MockExchangeRateRepository)(nil)

func (m *MockExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, onDate time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode, onDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// --- Mock DocumentRepository ---

type MockDocumentRepository struct {
	mock.Mock
}

var _ portsrepo.DocumentRepositoryWithTx = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) FindInvoiceByID(ctx context.Context, companyID string, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, companyID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockDocumentRepository) FindInvoicesByIDs(ctx context.Context, companyID string, invoiceIDs []string) (map[string]domain.Invoice, error) {
	args := m.Called(ctx, companyID, invoiceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Invoice), args.Error(1)
}

func (m *MockDocumentRepository) ListInvoices(ctx context.Context, companyID string, status *domain.DocumentStatus, limit int, offset int) ([]domain.Invoice, error) {
	args := m.Called(ctx, companyID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockDocumentRepository) ListOutstandingInvoices(ctx context.Context, companyID string) ([]domain.OutstandingDocument, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutstandingDocument), args.Error(1)
}

func (m *MockDocumentRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteInvoice(ctx context.Context, companyID string, invoiceID string) error {
	args := m.Called(ctx, companyID, invoiceID)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindBillByID(ctx context.Context, companyID string, billID string) (*domain.Bill, error) {
	args := m.Called(ctx, companyID, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockDocumentRepository) FindBillsByIDs(ctx context.Context, companyID string, billIDs []string) (map[string]domain.Bill, error) {
	args := m.Called(ctx, companyID, billIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Bill), args.Error(1)
}

func (m *MockDocumentRepository) ListBills(ctx context.Context, companyID string, status *domain.DocumentStatus, limit int, offset int) ([]domain.Bill, error) {
	args := m.Called(ctx, companyID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *MockDocumentRepository) ListOutstandingBills(ctx context.Context, companyID string) ([]domain.OutstandingDocument, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutstandingDocument), args.Error(1)
}

func (m *MockDocumentRepository) SaveBill(ctx context.Context, bill domain.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateBill(ctx context.Context, bill domain.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteBill(ctx context.Context, companyID string, billID string) error {
	args := m.Called(ctx, companyID, billID)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindPaymentByID(ctx context.Context, companyID string, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, companyID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockDocumentRepository) ListPayments(ctx context.Context, companyID string, limit int, offset int) ([]domain.Payment, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockDocumentRepository) SavePayment(ctx context.Context, payment domain.Payment, invoices []domain.Invoice, bills []domain.Bill) error {
	args := m.Called(ctx, payment, invoices, bills)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindCustomerByID(ctx context.Context, companyID string, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, companyID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockDocumentRepository) ListCustomers(ctx context.Context, companyID string, limit int, offset int) ([]domain.Customer, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockDocumentRepository) FindVendorByID(ctx context.Context, companyID string, vendorID string) (*domain.Vendor, error) {
	args := m.Called(ctx, companyID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vendor), args.Error(1)
}

func (m *MockDocumentRepository) ListVendors(ctx context.Context, companyID string, limit int, offset int) ([]domain.Vendor, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vendor), args.Error(1)
}

func (m *MockDocumentRepository) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockDocumentRepository) SaveVendor(ctx context.Context, vendor domain.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockDocumentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockDocumentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDocumentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AssetRepository ---

type MockAssetRepository struct {
	mock.Mock
}

var _ portsrepo.AssetRepositoryWithTx = (*MockAssetRepository)(nil)

func (m *MockAssetRepository) FindAssetByID(ctx context.Context, companyID string, assetID string) (*domain.FixedAsset, error) {
	args := m.Called(ctx, companyID, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FixedAsset), args.Error(1)
}

func (m *MockAssetRepository) ListAssets(ctx context.Context, companyID string, activeOnly bool, limit int, offset int) ([]domain.FixedAsset, error) {
	args := m.Called(ctx, companyID, activeOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FixedAsset), args.Error(1)
}

func (m *MockAssetRepository) SaveAsset(ctx context.Context, asset domain.FixedAsset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) AddAssetDepreciation(ctx context.Context, companyID string, assetID string, amount decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, companyID, assetID, amount, userID, now)
	return args.Error(0)
}

func (m *MockAssetRepository) DeactivateAsset(ctx context.Context, companyID string, assetID string, userID string, now time.Time) error {
	args := m.Called(ctx, companyID, assetID, userID, now)
	return args.Error(0)
}

func (m *MockAssetRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockAssetRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAssetRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock BankRepository ---

type MockBankRepository struct {
	mock.Mock
}

var _ portsrepo.BankRepositoryWithTx = (*MockBankRepository)(nil)

func (m *MockBankRepository) FindBankTransactionByID(ctx context.Context, companyID string, transactionID string) (*domain.BankTransaction, error) {
	args := m.Called(ctx, companyID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankTransaction), args.Error(1)
}

func (m *MockBankRepository) ListBankTransactions(ctx context.Context, companyID string, status *domain.MatchStatus, limit int, offset int) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, companyID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockBankRepository) ListCandidateLines(ctx context.Context, companyID string, amount decimal.Decimal, tolerance decimal.Decimal, valueDate time.Time, windowDays int) ([]domain.MatchCandidate, error) {
	args := m.Called(ctx, companyID, amount, tolerance, valueDate, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchCandidate), args.Error(1)
}

func (m *MockBankRepository) IsLineMatched(ctx context.Context, companyID string, lineID string) (bool, error) {
	args := m.Called(ctx, companyID, lineID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBankRepository) SaveBankTransactions(ctx context.Context, transactions []domain.BankTransaction) (int, error) {
	args := m.Called(ctx, transactions)
	return args.Int(0), args.Error(1)
}

func (m *MockBankRepository) UpdateMatch(ctx context.Context, companyID string, transactionID string, status domain.MatchStatus, matchedLineID *string, userID string, now time.Time) error {
	args := m.Called(ctx, companyID, transactionID, status, matchedLineID, userID, now)
	return args.Error(0)
}

func (m *MockBankRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockBankRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockBankRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock ReportingRepository ---

type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetAccountBalanceAsOf(ctx context.Context, companyID string, accountID string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, companyID, accountID, asOf)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReportingRepository) GetTrialBalanceData(ctx context.Context, companyID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, companyID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetIncomeStatementData(ctx context.Context, companyID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	args := m.Called(ctx, companyID, from, to)
	var revenue, expenses []domain.AccountAmount
	if args.Get(0) != nil {
		revenue = args.Get(0).([]domain.AccountAmount)
	}
	if args.Get(1) != nil {
		expenses = args.Get(1).([]domain.AccountAmount)
	}
	return revenue, expenses, args.Error(2)
}

func (m *MockReportingRepository) GetBalanceSheetData(ctx context.Context, companyID string, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error) {
	args := m.Called(ctx, companyID, asOf)
	var assets, liabilities, equity []domain.AccountAmount
	if args.Get(0) != nil {
		assets = args.Get(0).([]domain.AccountAmount)
	}
	if args.Get(1) != nil {
		liabilities = args.Get(1).([]domain.AccountAmount)
	}
	if args.Get(2) != nil {
		equity = args.Get(2).([]domain.AccountAmount)
	}
	return assets, liabilities, equity, args.Error(3)
}

func (m *MockReportingRepository) GetCashflowData(ctx context.Context, companyID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	args := m.Called(ctx, companyID, from, to)
	var inflows, outflows []domain.AccountAmount
	if args.Get(0) != nil {
		inflows = args.Get(0).([]domain.AccountAmount)
	}
	if args.Get(1) != nil {
		outflows = args.Get(1).([]domain.AccountAmount)
	}
	return inflows, outflows, args.Error(2)
}

// --- Mock LedgerService ---

type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) PostEntry(ctx context.Context, companyID string, req dto.PostEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, companyID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ReverseEntry(ctx context.Context, companyID string, entryID string, req dto.ReverseEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, companyID, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) GetEntryByID(ctx context.Context, companyID string, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, companyID, entryID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, companyID string, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, companyID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockLedgerService) ListLinesByAccount(ctx context.Context, companyID string, accountID string, userID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	args := m.Called(ctx, companyID, accountID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLinesResponse), args.Error(1)
}
