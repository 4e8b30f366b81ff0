package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentAllocationRequest applies part of a payment to one document.
type PaymentAllocationRequest struct {
	DocumentID string          `json:"documentID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// RecordPaymentRequest defines the data needed to record a payment against
// one or more documents of the same kind. The allocation amounts must sum to
// Amount, and no allocation may exceed its document's outstanding balance.
type RecordPaymentRequest struct {
	Kind                domain.DocumentKind        `json:"kind" binding:"required,oneof=INVOICE BILL"`
	PaymentDate         time.Time                  `json:"paymentDate" binding:"required"`
	CurrencyCode        string                     `json:"currencyCode" binding:"required,len=3"`
	Amount              decimal.Decimal            `json:"amount" binding:"required"`
	CashAccountID       string                     `json:"cashAccountID" binding:"required"`
	SettlementAccountID string                     `json:"settlementAccountID" binding:"required"` // AR or AP control account
	IdempotencyKey      string                     `json:"idempotencyKey" binding:"required"`
	Allocations         []PaymentAllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// ListPaymentsParams defines query parameters for listing payments.
type ListPaymentsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// PaymentAllocationResponse defines the data returned for one allocation.
type PaymentAllocationResponse struct {
	AllocationID string          `json:"allocationID"`
	DocumentID   string          `json:"documentID"`
	Amount       decimal.Decimal `json:"amount"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID     string                      `json:"paymentID"`
	Kind          string                      `json:"kind"`
	PaymentDate   time.Time                   `json:"paymentDate"`
	CurrencyCode  string                      `json:"currencyCode"`
	Amount        decimal.Decimal             `json:"amount"`
	CashAccountID string                      `json:"cashAccountID"`
	EntryID       *string                     `json:"entryID,omitempty"`
	Allocations   []PaymentAllocationResponse `json:"allocations,omitempty"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	allocations := make([]PaymentAllocationResponse, len(p.Allocations))
	for i, a := range p.Allocations {
		allocations[i] = PaymentAllocationResponse{
			AllocationID: a.AllocationID,
			DocumentID:   a.DocumentID,
			Amount:       a.Amount,
		}
	}
	return PaymentResponse{
		PaymentID:     p.PaymentID,
		Kind:          string(p.Kind),
		PaymentDate:   p.PaymentDate,
		CurrencyCode:  p.CurrencyCode,
		Amount:        p.Amount,
		CashAccountID: p.CashAccountID,
		EntryID:       p.EntryID,
		Allocations:   allocations,
	}
}

// ToListPaymentResponse converts a slice of domain.Payment to []PaymentResponse.
func ToListPaymentResponse(payments []domain.Payment) []PaymentResponse {
	res := make([]PaymentResponse, len(payments))
	for i := range payments {
		res[i] = ToPaymentResponse(&payments[i])
	}
	return res
}
