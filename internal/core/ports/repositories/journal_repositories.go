package repositories

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal entry data
type JournalReader interface {
	// FindEntryByID retrieves a specific journal entry by its unique identifier.
	FindEntryByID(ctx context.Context, companyID string, entryID string) (*domain.JournalEntry, error)

	// FindEntryByIdempotencyKey retrieves a journal entry previously posted with the given key.
	FindEntryByIdempotencyKey(ctx context.Context, companyID string, idempotencyKey string) (*domain.JournalEntry, error)

	// ListEntriesByCompany retrieves a paginated list of journal entries using token-based pagination.
	// It returns the entries, a token for the next page, and an error.
	ListEntriesByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entry data
type JournalWriter interface {
	// SaveEntry persists a journal entry and its lines, updating account balances within a transaction.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error

	// SaveReversalEntry persists a reversal entry and marks its original entry
	// REVERSED in the same transaction. The reversal's OriginalEntryID names
	// the entry being reversed.
	SaveReversalEntry(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error
}

// LineReader defines read operations for journal line data
type LineReader interface {
	// FindLinesByEntryID retrieves all lines associated with a single journal entry.
	FindLinesByEntryID(ctx context.Context, companyID string, entryID string) ([]domain.JournalLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple journal entries, grouped by entry ID.
	FindLinesByEntryIDs(ctx context.Context, companyID string, entryIDs []string) (map[string][]domain.JournalLine, error)

	// FindLineByID retrieves a single journal line.
	FindLineByID(ctx context.Context, companyID string, lineID string) (*domain.JournalLine, error)

	// ListLinesByAccountID retrieves a paginated list of lines for a specific account using token-based pagination.
	// It returns the lines, a token for the next page, and an error.
	ListLinesByAccountID(ctx context.Context, companyID string, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LineReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
