package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	Precision    int32  `json:"precision"`    // minor-unit decimal places (2 for USD, 0 for JPY)
	AuditFields
}

// ExchangeRate is a point-in-time conversion rate between two currencies.
// Once a posted journal line snapshots a rate it must never change.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"` // Primary Key (UUID)
	FromCode       string          `json:"fromCurrencyCode"`
	ToCode         string          `json:"toCurrencyCode"`
	Rate           decimal.Decimal `json:"rate"` // multiply a From amount by Rate to get a To amount
	EffectiveDate  time.Time       `json:"effectiveDate"`
	AuditFields
}
