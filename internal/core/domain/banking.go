package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchStatus is the reconciliation state of an imported bank transaction.
type MatchStatus string

const (
	Unmatched MatchStatus = "UNMATCHED"
	Matched   MatchStatus = "MATCHED"
	Ignored   MatchStatus = "IGNORED"
)

// BankTransaction is an imported external bank record awaiting
// reconciliation against posted journal lines.
type BankTransaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	CompanyID     string          `json:"companyID"`
	ExternalRef   string          `json:"externalRef"` // bank-side identifier, unique per company
	ValueDate     time.Time       `json:"valueDate"`
	Amount        decimal.Decimal `json:"amount"` // signed; positive = money in
	CurrencyCode  string          `json:"currencyCode"`
	Description   string          `json:"description"`
	Status        MatchStatus     `json:"status"`
	MatchedLineID *string         `json:"matchedLineID,omitempty"` // FK -> journal_lines when matched
	AuditFields
}

// MatchCandidate is a ranked reconciliation suggestion for a bank transaction.
type MatchCandidate struct {
	Line       JournalLine     `json:"line"`
	EntryDate  time.Time       `json:"entryDate"`
	AmountDiff decimal.Decimal `json:"amountDiff"` // absolute difference, zero for exact
	DateDiff   int             `json:"dateDiffDays"`
}
