package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BankTransactionImport is one statement row to ingest.
type BankTransactionImport struct {
	ExternalRef  string          `json:"externalRef" binding:"required"`
	ValueDate    time.Time       `json:"valueDate" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"` // signed: positive inflow, negative outflow
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Description  string          `json:"description"`
}

// ImportBankTransactionsRequest defines a batch of statement rows to ingest.
type ImportBankTransactionsRequest struct {
	Transactions []BankTransactionImport `json:"transactions" binding:"required,min=1,dive"`
}

// ImportBankTransactionsResponse summarizes an import batch.
type ImportBankTransactionsResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // duplicates by external reference
}

// MatchTransactionRequest links a bank transaction to a ledger line.
type MatchTransactionRequest struct {
	LineID string `json:"lineID" binding:"required"`
}

// ListBankTransactionsParams defines query parameters for listing bank transactions.
type ListBankTransactionsParams struct {
	Status *string `form:"status"`
	Limit  int     `form:"limit,default=20"`
	Offset int     `form:"offset,default=0"`
}

// SuggestMatchesParams defines query parameters for match suggestions.
type SuggestMatchesParams struct {
	WindowDays int `form:"windowDays,default=7"`
	Limit      int `form:"limit,default=10"`
}

// BankTransactionResponse defines the data returned for a bank transaction.
type BankTransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	ExternalRef   string          `json:"externalRef"`
	ValueDate     time.Time       `json:"valueDate"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	MatchedLineID *string         `json:"matchedLineID,omitempty"`
}

// ToBankTransactionResponse converts a domain.BankTransaction to its DTO.
func ToBankTransactionResponse(t *domain.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		TransactionID: t.TransactionID,
		ExternalRef:   t.ExternalRef,
		ValueDate:     t.ValueDate,
		Amount:        t.Amount,
		CurrencyCode:  t.CurrencyCode,
		Description:   t.Description,
		Status:        string(t.Status),
		MatchedLineID: t.MatchedLineID,
	}
}

// ToListBankTransactionResponse converts a slice of domain.BankTransaction to DTOs.
func ToListBankTransactionResponse(txns []domain.BankTransaction) []BankTransactionResponse {
	res := make([]BankTransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToBankTransactionResponse(&txns[i])
	}
	return res
}

// MatchCandidateResponse is one ranked suggestion for a bank transaction.
type MatchCandidateResponse struct {
	Line       LineResponse    `json:"line"`
	EntryDate  time.Time       `json:"entryDate"`
	AmountDiff decimal.Decimal `json:"amountDiff"`
	DateDiff   int             `json:"dateDiffDays"`
}

// ToMatchCandidateResponses converts domain candidates to DTOs.
func ToMatchCandidateResponses(candidates []domain.MatchCandidate) []MatchCandidateResponse {
	res := make([]MatchCandidateResponse, len(candidates))
	for i, c := range candidates {
		res[i] = MatchCandidateResponse{
			Line:       ToLineResponse(&c.Line),
			EntryDate:  c.EntryDate,
			AmountDiff: c.AmountDiff,
			DateDiff:   c.DateDiff,
		}
	}
	return res
}
