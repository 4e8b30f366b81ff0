package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes the two mirrored document families.
type DocumentKind string

const (
	KindInvoice DocumentKind = "INVOICE" // customer-facing, drives AR and revenue
	KindBill    DocumentKind = "BILL"    // vendor-facing, drives AP and expense
)

// IsValid reports whether k is a known document kind.
func (k DocumentKind) IsValid() bool {
	return k == KindInvoice || k == KindBill
}

// DocumentStatus is the lifecycle state of an invoice or bill.
type DocumentStatus string

const (
	DocDraft         DocumentStatus = "DRAFT"
	DocFinalized     DocumentStatus = "FINALIZED"
	DocPartiallyPaid DocumentStatus = "PARTIALLY_PAID"
	DocPaid          DocumentStatus = "PAID"
	DocVoid          DocumentStatus = "VOID"
)

// docTransitions is the allowed state machine for invoices and bills.
// Voiding an already-void document is handled as a no-op by the workflow,
// not as a transition. A document carrying payments cannot be voided;
// voiding would reverse the finalize posting but leave the cash postings
// and the paid total in place, so the payments must be reversed first.
var docTransitions = map[DocumentStatus][]DocumentStatus{
	DocDraft:         {DocFinalized, DocVoid},
	DocFinalized:     {DocPartiallyPaid, DocPaid, DocVoid},
	DocPartiallyPaid: {DocPaid},
	DocPaid:          {},
	DocVoid:          {},
}

// CanTransition reports whether a document may move from one status to another.
func CanTransition(from, to DocumentStatus) bool {
	for _, s := range docTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError describes a rejected lifecycle transition.
func TransitionError(kind DocumentKind, from, to DocumentStatus) error {
	return fmt.Errorf("%s cannot go from %s to %s", kind, from, to)
}

// DocumentLine is one line item on an invoice or bill. Each line carries the
// revenue (invoice) or expense (bill) account it posts against.
type DocumentLine struct {
	LineID      string          `json:"lineID"`    // Primary Key (UUID)
	DocumentID  string          `json:"documentID"`
	CompanyID   string          `json:"companyID"`
	AccountID   string          `json:"accountID"` // revenue/expense leaf account
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"` // quantity * unit price
}

// Invoice is a customer document. Finalizing it posts revenue against AR;
// once any payment references it, it can only be voided, never deleted.
type Invoice struct {
	InvoiceID     string          `json:"invoiceID"` // Primary Key (UUID)
	CompanyID     string          `json:"companyID"`
	CustomerID    string          `json:"customerID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	IssueDate     time.Time       `json:"issueDate"`
	DueDate       time.Time       `json:"dueDate"`
	CurrencyCode  string          `json:"currencyCode"`
	Status        DocumentStatus  `json:"status"`
	Total         decimal.Decimal `json:"total"`   // computed from lines, must be >= 0
	PaidTotal     decimal.Decimal `json:"paidTotal"`
	EntryID       *string         `json:"entryID,omitempty"` // 1:1 with the finalize posting
	Lines         []DocumentLine  `json:"lines,omitempty"`
	AuditFields
}

// Outstanding is the unpaid remainder of the invoice total.
func (i *Invoice) Outstanding() decimal.Decimal {
	return i.Total.Sub(i.PaidTotal)
}

// Bill is the vendor-side mirror of Invoice; finalizing posts expense
// against AP.
type Bill struct {
	BillID       string          `json:"billID"` // Primary Key (UUID)
	CompanyID    string          `json:"companyID"`
	VendorID     string          `json:"vendorID"`
	BillNumber   string          `json:"billNumber"`
	IssueDate    time.Time       `json:"issueDate"`
	DueDate      time.Time       `json:"dueDate"`
	CurrencyCode string          `json:"currencyCode"`
	Status       DocumentStatus  `json:"status"`
	Total        decimal.Decimal `json:"total"`
	PaidTotal    decimal.Decimal `json:"paidTotal"`
	EntryID      *string         `json:"entryID,omitempty"`
	Lines        []DocumentLine  `json:"lines,omitempty"`
	AuditFields
}

// Outstanding is the unpaid remainder of the bill total.
func (b *Bill) Outstanding() decimal.Decimal {
	return b.Total.Sub(b.PaidTotal)
}

// Payment records a cash movement applied against one or more documents.
// The sum of its allocations equals Amount and each allocation may not
// exceed the target document's outstanding balance at record time.
type Payment struct {
	PaymentID     string          `json:"paymentID"` // Primary Key (UUID)
	CompanyID     string          `json:"companyID"`
	Kind          DocumentKind    `json:"kind"` // which document family it pays
	PaymentDate   time.Time       `json:"paymentDate"`
	CurrencyCode  string          `json:"currencyCode"`
	Amount        decimal.Decimal `json:"amount"`
	CashAccountID string          `json:"cashAccountID"`     // bank/cash leaf account
	EntryID       *string         `json:"entryID,omitempty"` // cash-movement posting
	Allocations   []PaymentAllocation `json:"allocations,omitempty"`
	AuditFields
}

// PaymentAllocation applies part of a payment to one document.
type PaymentAllocation struct {
	AllocationID string          `json:"allocationID"` // Primary Key (UUID)
	PaymentID    string          `json:"paymentID"`
	DocumentID   string          `json:"documentID"`
	Amount       decimal.Decimal `json:"amount"` // positive
}

// Customer is a per-company counterparty on invoices.
type Customer struct {
	CustomerID         string  `json:"customerID"` // Primary Key (UUID)
	CompanyID          string  `json:"companyID"`
	Name               string  `json:"name"`
	DefaultARAccountID *string `json:"defaultARAccountID,omitempty"`
	AuditFields
}

// Vendor is a per-company counterparty on bills.
type Vendor struct {
	VendorID           string  `json:"vendorID"` // Primary Key (UUID)
	CompanyID          string  `json:"companyID"`
	Name               string  `json:"name"`
	DefaultAPAccountID *string `json:"defaultAPAccountID,omitempty"`
	AuditFields
}
