package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single leaf account in a trial balance report.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// AccountAmount represents an account with its net amount for financial reports.
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// TrialBalanceReport lists per-leaf-account balances with their totals.
// For a consistent ledger TotalDebit always equals TotalCredit.
type TrialBalanceReport struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// IncomeStatementReport aggregates revenue and expense accounts over a range.
type IncomeStatementReport struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Revenue   []AccountAmount `json:"revenue"`
	Expenses  []AccountAmount `json:"expenses"`
	NetIncome decimal.Decimal `json:"netIncome"`
}

// BalanceSheetReport aggregates asset, liability and equity balances as of a date.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}

// CashflowReport summarises cash and bank account movement over a range.
type CashflowReport struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Inflows    decimal.Decimal `json:"inflows"`
	Outflows   decimal.Decimal `json:"outflows"`
	NetChange  decimal.Decimal `json:"netChange"`
	ByAccount  []AccountAmount `json:"byAccount"`
}

// AgingBucket is one time-since-due bucket of an aging report.
type AgingBucket struct {
	Label   string          `json:"label"`  // e.g. "31-60"
	FromDay int             `json:"fromDay"`
	ToDay   int             `json:"toDay"` // -1 for open-ended
	Amount  decimal.Decimal `json:"amount"`
}

// AgingRow is one counterparty's outstanding amounts split into buckets.
type AgingRow struct {
	CounterpartyID   string          `json:"counterpartyID"`
	CounterpartyName string          `json:"counterpartyName"`
	Buckets          []AgingBucket   `json:"buckets"`
	Total            decimal.Decimal `json:"total"`
}

// AgingReport groups outstanding AR or AP into time-since-due buckets.
type AgingReport struct {
	Kind  DocumentKind    `json:"kind"` // INVOICE => AR, BILL => AP
	AsOf  time.Time       `json:"asOf"`
	Rows  []AgingRow      `json:"rows"`
	Total decimal.Decimal `json:"total"`
}

// DefaultAgingBoundaries are the bucket edges (in days past due) used when a
// caller does not supply its own.
var DefaultAgingBoundaries = []int{30, 60, 90}

// OutstandingDocument is the minimal document view the aging report needs.
type OutstandingDocument struct {
	DocumentID       string
	CounterpartyID   string
	CounterpartyName string
	DueDate          time.Time
	Outstanding      decimal.Decimal
}
