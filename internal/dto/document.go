package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DocumentLineRequest defines one line item of an invoice or bill.
type DocumentLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"` // revenue/expense leaf account
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreateInvoiceRequest defines the data needed to create a draft invoice.
type CreateInvoiceRequest struct {
	CustomerID    string                `json:"customerID" binding:"required"`
	InvoiceNumber string                `json:"invoiceNumber" binding:"required"`
	IssueDate     time.Time             `json:"issueDate" binding:"required"`
	DueDate       time.Time             `json:"dueDate" binding:"required"`
	CurrencyCode  string                `json:"currencyCode" binding:"required,len=3"`
	Lines         []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest defines the data allowed for updating a draft invoice.
// Lines, when present, replace the existing lines entirely.
type UpdateInvoiceRequest struct {
	IssueDate *time.Time            `json:"issueDate"`
	DueDate   *time.Time            `json:"dueDate"`
	Lines     []DocumentLineRequest `json:"lines" binding:"omitempty,min=1,dive"`
}

// CreateBillRequest defines the data needed to create a draft bill.
type CreateBillRequest struct {
	VendorID     string                `json:"vendorID" binding:"required"`
	BillNumber   string                `json:"billNumber" binding:"required"`
	IssueDate    time.Time             `json:"issueDate" binding:"required"`
	DueDate      time.Time             `json:"dueDate" binding:"required"`
	CurrencyCode string                `json:"currencyCode" binding:"required,len=3"`
	Lines        []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateBillRequest defines the data allowed for updating a draft bill.
type UpdateBillRequest struct {
	IssueDate *time.Time            `json:"issueDate"`
	DueDate   *time.Time            `json:"dueDate"`
	Lines     []DocumentLineRequest `json:"lines" binding:"omitempty,min=1,dive"`
}

// FinalizeDocumentRequest defines the optional overrides for finalizing a document.
// SettlementAccountID overrides the counterparty's default AR (invoice) or
// AP (bill) control account.
type FinalizeDocumentRequest struct {
	SettlementAccountID *string `json:"settlementAccountID"`
}

// ListDocumentsParams defines query parameters for listing invoices or bills.
type ListDocumentsParams struct {
	Status *string `form:"status"`
	Limit  int     `form:"limit,default=20"`
	Offset int     `form:"offset,default=0"`
}

// DocumentLineResponse defines the data returned for a document line.
type DocumentLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID     string                 `json:"invoiceID"`
	CustomerID    string                 `json:"customerID"`
	InvoiceNumber string                 `json:"invoiceNumber"`
	IssueDate     time.Time              `json:"issueDate"`
	DueDate       time.Time              `json:"dueDate"`
	CurrencyCode  string                 `json:"currencyCode"`
	Status        string                 `json:"status"`
	Total         decimal.Decimal        `json:"total"`
	PaidTotal     decimal.Decimal        `json:"paidTotal"`
	Outstanding   decimal.Decimal        `json:"outstanding"`
	EntryID       *string                `json:"entryID,omitempty"`
	Lines         []DocumentLineResponse `json:"lines,omitempty"`
}

// BillResponse defines the data returned for a bill.
type BillResponse struct {
	BillID       string                 `json:"billID"`
	VendorID     string                 `json:"vendorID"`
	BillNumber   string                 `json:"billNumber"`
	IssueDate    time.Time              `json:"issueDate"`
	DueDate      time.Time              `json:"dueDate"`
	CurrencyCode string                 `json:"currencyCode"`
	Status       string                 `json:"status"`
	Total        decimal.Decimal        `json:"total"`
	PaidTotal    decimal.Decimal        `json:"paidTotal"`
	Outstanding  decimal.Decimal        `json:"outstanding"`
	EntryID      *string                `json:"entryID,omitempty"`
	Lines        []DocumentLineResponse `json:"lines,omitempty"`
}

// ToDocumentLineResponses converts domain document lines to DTOs.
func ToDocumentLineResponses(lines []domain.DocumentLine) []DocumentLineResponse {
	res := make([]DocumentLineResponse, len(lines))
	for i, l := range lines {
		res[i] = DocumentLineResponse{
			LineID:      l.LineID,
			AccountID:   l.AccountID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		}
	}
	return res
}

// ToInvoiceResponse converts a domain.Invoice to InvoiceResponse DTO.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:     inv.InvoiceID,
		CustomerID:    inv.CustomerID,
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		CurrencyCode:  inv.CurrencyCode,
		Status:        string(inv.Status),
		Total:         inv.Total,
		PaidTotal:     inv.PaidTotal,
		Outstanding:   inv.Outstanding(),
		EntryID:       inv.EntryID,
		Lines:         ToDocumentLineResponses(inv.Lines),
	}
}

// ToListInvoiceResponse converts a slice of domain.Invoice to []InvoiceResponse.
func ToListInvoiceResponse(invoices []domain.Invoice) []InvoiceResponse {
	res := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		res[i] = ToInvoiceResponse(&invoices[i])
	}
	return res
}

// ToBillResponse converts a domain.Bill to BillResponse DTO.
func ToBillResponse(bill *domain.Bill) BillResponse {
	return BillResponse{
		BillID:       bill.BillID,
		VendorID:     bill.VendorID,
		BillNumber:   bill.BillNumber,
		IssueDate:    bill.IssueDate,
		DueDate:      bill.DueDate,
		CurrencyCode: bill.CurrencyCode,
		Status:       string(bill.Status),
		Total:        bill.Total,
		PaidTotal:    bill.PaidTotal,
		Outstanding:  bill.Outstanding(),
		EntryID:      bill.EntryID,
		Lines:        ToDocumentLineResponses(bill.Lines),
	}
}

// ToListBillResponse converts a slice of domain.Bill to []BillResponse.
func ToListBillResponse(bills []domain.Bill) []BillResponse {
	res := make([]BillResponse, len(bills))
	for i := range bills {
		res[i] = ToBillResponse(&bills[i])
	}
	return res
}

// CreateCustomerRequest defines the data needed to create a customer.
type CreateCustomerRequest struct {
	Name               string  `json:"name" binding:"required"`
	DefaultARAccountID *string `json:"defaultARAccountID"`
}

// CreateVendorRequest defines the data needed to create a vendor.
type CreateVendorRequest struct {
	Name               string  `json:"name" binding:"required"`
	DefaultAPAccountID *string `json:"defaultAPAccountID"`
}

// ListPartiesParams defines query parameters for listing customers or vendors.
type ListPartiesParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// CustomerResponse defines the data returned for a customer.
type CustomerResponse struct {
	CustomerID         string  `json:"customerID"`
	Name               string  `json:"name"`
	DefaultARAccountID *string `json:"defaultARAccountID,omitempty"`
}

// ToCustomerResponse converts a domain.Customer to CustomerResponse DTO.
func ToCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:         c.CustomerID,
		Name:               c.Name,
		DefaultARAccountID: c.DefaultARAccountID,
	}
}

// ToListCustomerResponse converts a slice of domain.Customer to []CustomerResponse.
func ToListCustomerResponse(customers []domain.Customer) []CustomerResponse {
	res := make([]CustomerResponse, len(customers))
	for i := range customers {
		res[i] = ToCustomerResponse(&customers[i])
	}
	return res
}

// VendorResponse defines the data returned for a vendor.
type VendorResponse struct {
	VendorID           string  `json:"vendorID"`
	Name               string  `json:"name"`
	DefaultAPAccountID *string `json:"defaultAPAccountID,omitempty"`
}

// ToVendorResponse converts a domain.Vendor to VendorResponse DTO.
func ToVendorResponse(v *domain.Vendor) VendorResponse {
	return VendorResponse{
		VendorID:           v.VendorID,
		Name:               v.Name,
		DefaultAPAccountID: v.DefaultAPAccountID,
	}
}

// ToListVendorResponse converts a slice of domain.Vendor to []VendorResponse.
func ToListVendorResponse(vendors []domain.Vendor) []VendorResponse {
	res := make([]VendorResponse, len(vendors))
	for i := range vendors {
		res[i] = ToVendorResponse(&vendors[i])
	}
	return res
}
