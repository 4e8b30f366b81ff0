package models

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

// Account is the database representation of a chart-of-accounts node.
type Account struct {
	AccountID       string          `json:"accountID"`
	CompanyID       string          `json:"companyID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	NormalSide      string          `json:"normalSide"`
	CurrencyCode    string          `json:"currencyCode"`
	ParentAccountID *string         `json:"parentAccountID"`
	Description     string          `json:"description"`
	IsLeaf          bool            `json:"isLeaf"`
	IsCash          bool            `json:"isCash"`
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"`
	AuditFields
}
