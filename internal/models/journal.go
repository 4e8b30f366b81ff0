package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// JournalEntry is the database representation of a balanced financial event.
type JournalEntry struct {
	EntryID          string          `json:"entryID"`
	CompanyID        string          `json:"companyID"`
	EntryDate        time.Time       `json:"entryDate"`
	Description      string          `json:"description"`
	CurrencyCode     string          `json:"currencyCode"`
	Status           JournalStatus   `json:"status"`
	IdempotencyKey   string          `json:"idempotencyKey"`
	SourceType       string          `json:"sourceType"`
	SourceID         *string         `json:"sourceID"`
	OriginalEntryID  *string         `json:"originalEntryID"`
	ReversingEntryID *string         `json:"reversingEntryID"`
	ExchangeRateID   *string         `json:"exchangeRateID"`
	Amount           decimal.Decimal `json:"amount"`
	AuditFields
}

// LineSide indicates whether a journal line is a debit or a credit.
type LineSide string

const (
	Debit  LineSide = "DEBIT"
	Credit LineSide = "CREDIT"
)

// JournalLine is the database representation of a single entry line.
type JournalLine struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	CompanyID    string          `json:"companyID"`
	AccountID    string          `json:"accountID"`
	Side         LineSide        `json:"side"`
	Amount       decimal.Decimal `json:"amount"`
	BaseAmount   decimal.Decimal `json:"baseAmount"`
	CurrencyCode string          `json:"currencyCode"`
	Notes        string          `json:"notes"`
	AuditFields
}
