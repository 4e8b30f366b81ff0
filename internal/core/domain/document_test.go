package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.DocumentStatus
		to   domain.DocumentStatus
		want bool
	}{
		{"draft to finalized", domain.DocDraft, domain.DocFinalized, true},
		{"draft to void", domain.DocDraft, domain.DocVoid, true},
		{"draft to paid skips finalize", domain.DocDraft, domain.DocPaid, false},
		{"finalized to partially paid", domain.DocFinalized, domain.DocPartiallyPaid, true},
		{"finalized to paid", domain.DocFinalized, domain.DocPaid, true},
		{"finalized to void", domain.DocFinalized, domain.DocVoid, true},
		{"finalized back to draft", domain.DocFinalized, domain.DocDraft, false},
		{"partially paid to paid", domain.DocPartiallyPaid, domain.DocPaid, true},
		{"partially paid cannot void with payments applied", domain.DocPartiallyPaid, domain.DocVoid, false},
		{"paid is terminal", domain.DocPaid, domain.DocVoid, false},
		{"void is terminal", domain.DocVoid, domain.DocFinalized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to))
		})
	}
}

func TestInvoice_Outstanding(t *testing.T) {
	invoice := domain.Invoice{
		Total:     decimal.NewFromInt(150),
		PaidTotal: decimal.NewFromInt(40),
	}
	assert.True(t, invoice.Outstanding().Equal(decimal.NewFromInt(110)))
}

func TestBill_Outstanding(t *testing.T) {
	bill := domain.Bill{
		Total:     decimal.NewFromInt(90),
		PaidTotal: decimal.NewFromInt(90),
	}
	assert.True(t, bill.Outstanding().IsZero())
}

func TestDocumentKind_IsValid(t *testing.T) {
	assert.True(t, domain.KindInvoice.IsValid())
	assert.True(t, domain.KindBill.IsValid())
	assert.False(t, domain.DocumentKind("RECEIPT").IsValid())
}
