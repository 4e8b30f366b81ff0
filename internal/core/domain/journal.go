package domain

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

// EntrySource names the component that produced a journal entry.
type EntrySource string

const (
	SourceManual       EntrySource = "MANUAL"
	SourceInvoice      EntrySource = "INVOICE"
	SourceBill         EntrySource = "BILL"
	SourcePayment      EntrySource = "PAYMENT"
	SourceDepreciation EntrySource = "DEPRECIATION"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple journal lines. Once posted, the entry and its lines are immutable;
// the only way to undo one is an explicit reversal entry with flipped sides.
type JournalEntry struct {
	EntryID          string        `json:"entryID"`   // Primary Key (UUID)
	CompanyID        string        `json:"companyID"` // FK -> companies.company_id (NON-NULL)
	EntryDate        time.Time     `json:"entryDate"` // posting date, decides the accounting period
	Description      string        `json:"description"`
	CurrencyCode     string        `json:"currencyCode"` // entry currency; lines also carry base amounts
	Status           JournalStatus `json:"status"`
	IdempotencyKey   string        `json:"idempotencyKey"`              // unique per company
	SourceType       EntrySource   `json:"sourceType"`                  // producer of this entry
	SourceID         *string       `json:"sourceID,omitempty"`          // document/asset that produced it
	OriginalEntryID  *string       `json:"originalEntryID,omitempty"`   // set on reversal entries
	ReversingEntryID *string       `json:"reversingEntryID,omitempty"`  // set on reversed originals
	ExchangeRateID   *string       `json:"exchangeRateID,omitempty"`    // rate snapshot used for conversion
	Amount           decimal.Decimal `json:"amount"`                    // total debit side in base currency
	Lines            []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// IsReversal reports whether this entry reverses another entry.
func (e *JournalEntry) IsReversal() bool {
	return e.OriginalEntryID != nil
}

// LineSide indicates whether a journal line is a debit or a credit.
type LineSide string

const (
	DebitLine  LineSide = "DEBIT"
	CreditLine LineSide = "CREDIT"
)

// Opposite returns the flipped side, used when building reversal entries.
func (s LineSide) Opposite() LineSide {
	if s == DebitLine {
		return CreditLine
	}
	return DebitLine
}

// JournalLine is a single line item within a journal entry, affecting one
// leaf account. Amount is in entry currency; BaseAmount is the converted
// amount in the company's base currency, fixed at posting time.
type JournalLine struct {
	LineID       string          `json:"lineID"`    // Primary Key (UUID)
	EntryID      string          `json:"entryID"`   // FK -> journal_entries.entry_id (NON-NULL)
	CompanyID    string          `json:"companyID"` // FK -> companies.company_id (NON-NULL)
	AccountID    string          `json:"accountID"` // FK -> accounts.account_id; leaf only
	Side         LineSide        `json:"side"`
	Amount       decimal.Decimal `json:"amount"`     // positive, in entry currency
	BaseAmount   decimal.Decimal `json:"baseAmount"` // positive, in company base currency
	CurrencyCode string          `json:"currencyCode"`
	Notes        string          `json:"notes"`
	AuditFields
}

// EntryDraft is the caller-supplied shape of an entry before validation and
// posting. The ledger engine turns a draft into a posted JournalEntry.
type EntryDraft struct {
	EntryDate    time.Time
	Description  string
	CurrencyCode string
	SourceType   EntrySource
	SourceID     *string
	Lines        []DraftLine
}

// DraftLine is one requested line of an EntryDraft.
type DraftLine struct {
	AccountID string
	Side      LineSide
	Amount    decimal.Decimal // positive, in entry currency
	Notes     string
}
