package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the database representation of a supported currency.
type Currency struct {
	CurrencyCode string `json:"currencyCode"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int32  `json:"precision"`
	AuditFields
}

// ExchangeRate is the database representation of a point-in-time rate.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	FromCode       string          `json:"fromCurrencyCode"`
	ToCode         string          `json:"toCurrencyCode"`
	Rate           decimal.Decimal `json:"rate"`
	EffectiveDate  time.Time       `json:"effectiveDate"`
	AuditFields
}
