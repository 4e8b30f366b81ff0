package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// ReconciliationReaderSvc defines read operations for bank reconciliation
type ReconciliationReaderSvc interface {
	// GetBankTransactionByID retrieves a specific imported bank transaction.
	GetBankTransactionByID(ctx context.Context, companyID string, transactionID string, userID string) (*domain.BankTransaction, error)

	// ListBankTransactions retrieves a paginated list of bank transactions, optionally filtered by status.
	ListBankTransactions(ctx context.Context, companyID string, userID string, params dto.ListBankTransactionsParams) ([]domain.BankTransaction, error)

	// SuggestMatches returns candidate ledger lines for a bank transaction,
	// ranked by amount closeness then date proximity.
	SuggestMatches(ctx context.Context, companyID string, transactionID string, userID string, params dto.SuggestMatchesParams) ([]domain.MatchCandidate, error)
}

// ReconciliationWriterSvc defines write operations for bank reconciliation
type ReconciliationWriterSvc interface {
	// ImportBankTransactions ingests a batch of bank statement rows, skipping
	// duplicates by external reference.
	ImportBankTransactions(ctx context.Context, companyID string, req dto.ImportBankTransactionsRequest, userID string) (*dto.ImportBankTransactionsResponse, error)

	// MatchTransaction links a bank transaction to a ledger line within the amount tolerance.
	MatchTransaction(ctx context.Context, companyID string, transactionID string, req dto.MatchTransactionRequest, userID string) (*domain.BankTransaction, error)

	// UnmatchTransaction clears a previous match, returning the transaction to unmatched.
	UnmatchTransaction(ctx context.Context, companyID string, transactionID string, userID string) (*domain.BankTransaction, error)

	// IgnoreTransaction marks a bank transaction as ignored for reconciliation.
	IgnoreTransaction(ctx context.Context, companyID string, transactionID string, userID string) (*domain.BankTransaction, error)
}

// ReconciliationSvcFacade combines all reconciliation service interfaces
// This is a facade for clients that need access to all operations
type ReconciliationSvcFacade interface {
	ReconciliationReaderSvc
	ReconciliationWriterSvc
}
