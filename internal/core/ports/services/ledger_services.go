package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// LedgerReaderSvc defines read operations for posted journal entries
type LedgerReaderSvc interface {
	// GetEntryByID retrieves a specific journal entry with its lines.
	GetEntryByID(ctx context.Context, companyID string, entryID string, requestingUserID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of journal entries in a company.
	ListEntries(ctx context.Context, companyID string, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// LedgerWriterSvc defines write operations for the posting engine
type LedgerWriterSvc interface {
	// PostEntry validates and atomically posts a balanced journal entry.
	// A repeated idempotency key returns the originally posted entry.
	PostEntry(ctx context.Context, companyID string, req dto.PostEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// ReverseEntry creates and posts the reversing entry for a posted entry.
	ReverseEntry(ctx context.Context, companyID string, entryID string, req dto.ReverseEntryRequest, userID string) (*domain.JournalEntry, error)
}

// LineReaderSvc defines read operations for journal line data
type LineReaderSvc interface {
	// ListLinesByAccount retrieves lines for a specific account.
	ListLinesByAccount(ctx context.Context, companyID string, accountID string, userID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
// This is a facade for clients that need access to all operations
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LineReaderSvc
}
