package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostEntryLine defines one line of an entry to post.
type PostEntryLine struct {
	AccountID string          `json:"accountID" binding:"required"`
	Side      domain.LineSide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Notes     string          `json:"notes"`
}

// PostEntryRequest defines the data needed to post a journal entry.
// The idempotency key, when repeated for a company, returns the original entry
// instead of posting again.
type PostEntryRequest struct {
	EntryDate      time.Time       `json:"entryDate" binding:"required"`
	Description    string          `json:"description"`
	CurrencyCode   string          `json:"currencyCode" binding:"required"`
	IdempotencyKey string          `json:"idempotencyKey" binding:"required"`
	Lines          []PostEntryLine `json:"lines" binding:"required,min=2,dive"`

	// Set by internal producers (document workflows, depreciation runs);
	// never accepted from the public API.
	SourceType domain.EntrySource `json:"-"`
	SourceID   *string            `json:"-"`
}

// ReverseEntryRequest defines the optional overrides for a reversal posting.
type ReverseEntryRequest struct {
	EntryDate   *time.Time `json:"entryDate"`   // defaults to today
	Description string     `json:"description"` // defaults to "Reversal of <entryID>"
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	Side         domain.LineSide `json:"side"`
	Amount       decimal.Decimal `json:"amount"`
	BaseAmount   decimal.Decimal `json:"baseAmount"`
	CurrencyCode string          `json:"currencyCode"`
	Notes        string          `json:"notes,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID          string          `json:"entryID"`
	EntryDate        time.Time       `json:"entryDate"`
	Description      string          `json:"description"`
	CurrencyCode     string          `json:"currencyCode"`
	Status           string          `json:"status"`
	SourceType       string          `json:"sourceType,omitempty"`
	SourceID         *string         `json:"sourceID,omitempty"`
	OriginalEntryID  *string         `json:"originalEntryID,omitempty"`
	ReversingEntryID *string         `json:"reversingEntryID,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Lines            []LineResponse  `json:"lines,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
}

// ToLineResponse converts a domain.JournalLine to LineResponse DTO.
func ToLineResponse(line *domain.JournalLine) LineResponse {
	return LineResponse{
		LineID:       line.LineID,
		EntryID:      line.EntryID,
		AccountID:    line.AccountID,
		Side:         line.Side,
		Amount:       line.Amount,
		BaseAmount:   line.BaseAmount,
		CurrencyCode: line.CurrencyCode,
		Notes:        line.Notes,
	}
}

// ToLineResponses converts a slice of domain.JournalLine to []LineResponse.
func ToLineResponses(lines []domain.JournalLine) []LineResponse {
	responses := make([]LineResponse, len(lines))
	for i, line := range lines {
		responses[i] = ToLineResponse(&line)
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(entry *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:          entry.EntryID,
		EntryDate:        entry.EntryDate,
		Description:      entry.Description,
		CurrencyCode:     entry.CurrencyCode,
		Status:           string(entry.Status),
		SourceType:       string(entry.SourceType),
		SourceID:         entry.SourceID,
		OriginalEntryID:  entry.OriginalEntryID,
		ReversingEntryID: entry.ReversingEntryID,
		Amount:           entry.Amount,
		Lines:            ToLineResponses(entry.Lines),
		CreatedAt:        entry.CreatedAt,
		CreatedBy:        entry.CreatedBy,
	}
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit            int     `form:"limit,default=20"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals,default=false"`
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListLinesParams defines query parameters for listing lines of an account.
type ListLinesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse wraps a page of journal lines.
type ListLinesResponse struct {
	Lines     []LineResponse `json:"lines"`
	NextToken *string        `json:"nextToken,omitempty"`
}
