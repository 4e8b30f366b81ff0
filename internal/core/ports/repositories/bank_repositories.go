package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BankTransactionReader defines read operations for imported bank transaction data
type BankTransactionReader interface {
	// FindBankTransactionByID retrieves a specific imported bank transaction.
	FindBankTransactionByID(ctx context.Context, companyID string, transactionID string) (*domain.BankTransaction, error)

	// ListBankTransactions retrieves a paginated list of bank transactions, optionally filtered by status.
	ListBankTransactions(ctx context.Context, companyID string, status *domain.MatchStatus, limit int, offset int) ([]domain.BankTransaction, error)

	// ListCandidateLines retrieves unmatched ledger lines whose base amount is within tolerance
	// of the given amount and whose entry date falls within the day window around valueDate.
	ListCandidateLines(ctx context.Context, companyID string, amount decimal.Decimal, tolerance decimal.Decimal, valueDate time.Time, windowDays int) ([]domain.MatchCandidate, error)

	// IsLineMatched reports whether a ledger line is already matched to a bank transaction.
	IsLineMatched(ctx context.Context, companyID string, lineID string) (bool, error)
}

// BankTransactionWriter defines write operations for imported bank transaction data
type BankTransactionWriter interface {
	// SaveBankTransactions persists a batch of imported transactions, skipping rows whose
	// external reference already exists for the company. Returns the number inserted.
	SaveBankTransactions(ctx context.Context, transactions []domain.BankTransaction) (int, error)

	// UpdateMatch records the match status and matched line of a bank transaction.
	UpdateMatch(ctx context.Context, companyID string, transactionID string, status domain.MatchStatus, matchedLineID *string, userID string, now time.Time) error
}

// BankRepositoryFacade combines all bank reconciliation repository interfaces
// This is a facade for clients that need access to all operations
type BankRepositoryFacade interface {
	BankTransactionReader
	BankTransactionWriter
}

// BankRepositoryWithTx extends BankRepositoryFacade with transaction capabilities
type BankRepositoryWithTx interface {
	BankRepositoryFacade
	TransactionManager
}
