package domain

import "github.com/shopspring/decimal"

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalSide is the side on which an account's balance normally increases.
type NormalSide string

const (
	DebitNormal  NormalSide = "DEBIT"
	CreditNormal NormalSide = "CREDIT"
)

// NormalSideFor returns the conventional normal balance side for an account type.
func NormalSideFor(t AccountType) NormalSide {
	switch t {
	case Asset, Expense:
		return DebitNormal
	default:
		return CreditNormal
	}
}

// Account represents one node in a company's chart of accounts. Accounts form
// a tree via ParentAccountID; only leaf accounts may receive postings.
type Account struct {
	AccountID       string          `json:"accountID"` // Primary Key (UUID)
	CompanyID       string          `json:"companyID"` // FK -> companies.company_id (NON-NULL)
	Code            string          `json:"code"`      // chart code, e.g. "1130"
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	NormalSide      NormalSide      `json:"normalSide"`
	CurrencyCode    string          `json:"currencyCode"`
	ParentAccountID *string         `json:"parentAccountID,omitempty"` // nullable self reference
	Description     string          `json:"description"`
	IsLeaf          bool            `json:"isLeaf"` // maintained on writes; false once a child exists
	IsCash          bool            `json:"isCash"` // marks cash/bank accounts for the cashflow report
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"` // persisted running balance in base currency
	AuditFields
}
