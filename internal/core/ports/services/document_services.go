package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// InvoiceSvc defines lifecycle operations for customer invoices
type InvoiceSvc interface {
	// CreateInvoice persists a new draft invoice.
	CreateInvoice(ctx context.Context, companyID string, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error)

	// GetInvoiceByID retrieves a specific invoice with its lines.
	GetInvoiceByID(ctx context.Context, companyID string, invoiceID string, userID string) (*domain.Invoice, error)

	// ListInvoices retrieves a paginated list of invoices, optionally filtered by status.
	ListInvoices(ctx context.Context, companyID string, userID string, params dto.ListDocumentsParams) ([]domain.Invoice, error)

	// UpdateInvoice updates a draft invoice's details and lines.
	UpdateInvoice(ctx context.Context, companyID string, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error)

	// FinalizeInvoice transitions a draft invoice to finalized and posts revenue against AR.
	FinalizeInvoice(ctx context.Context, companyID string, invoiceID string, req dto.FinalizeDocumentRequest, userID string) (*domain.Invoice, error)

	// VoidInvoice voids an invoice, reversing its posting if it was finalized.
	// Voiding an already-void invoice is a no-op.
	VoidInvoice(ctx context.Context, companyID string, invoiceID string, userID string) (*domain.Invoice, error)

	// DeleteInvoice removes a draft invoice. Non-draft invoices cannot be deleted.
	DeleteInvoice(ctx context.Context, companyID string, invoiceID string, userID string) error
}

// BillSvc defines lifecycle operations for vendor bills
type BillSvc interface {
	// CreateBill persists a new draft bill.
	CreateBill(ctx context.Context, companyID string, req dto.CreateBillRequest, userID string) (*domain.Bill, error)

	// GetBillByID retrieves a specific bill with its lines.
	GetBillByID(ctx context.Context, companyID string, billID string, userID string) (*domain.Bill, error)

	// ListBills retrieves a paginated list of bills, optionally filtered by status.
	ListBills(ctx context.Context, companyID string, userID string, params dto.ListDocumentsParams) ([]domain.Bill, error)

	// UpdateBill updates a draft bill's details and lines.
	UpdateBill(ctx context.Context, companyID string, billID string, req dto.UpdateBillRequest, userID string) (*domain.Bill, error)

	// FinalizeBill transitions a draft bill to finalized and posts expense against AP.
	FinalizeBill(ctx context.Context, companyID string, billID string, req dto.FinalizeDocumentRequest, userID string) (*domain.Bill, error)

	// VoidBill voids a bill, reversing its posting if it was finalized.
	// Voiding an already-void bill is a no-op.
	VoidBill(ctx context.Context, companyID string, billID string, userID string) (*domain.Bill, error)

	// DeleteBill removes a draft bill. Non-draft bills cannot be deleted.
	DeleteBill(ctx context.Context, companyID string, billID string, userID string) error
}

// PaymentSvc defines operations for recording payments against documents
type PaymentSvc interface {
	// RecordPayment posts the cash movement and applies allocations to documents.
	RecordPayment(ctx context.Context, companyID string, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error)

	// GetPaymentByID retrieves a payment with its allocations.
	GetPaymentByID(ctx context.Context, companyID string, paymentID string, userID string) (*domain.Payment, error)

	// ListPayments retrieves a paginated list of payments for a company.
	ListPayments(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Payment, error)
}

// PartySvc defines operations for customers and vendors
type PartySvc interface {
	// CreateCustomer persists a new customer.
	CreateCustomer(ctx context.Context, companyID string, req dto.CreateCustomerRequest, userID string) (*domain.Customer, error)

	// ListCustomers retrieves a paginated list of customers.
	ListCustomers(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Customer, error)

	// CreateVendor persists a new vendor.
	CreateVendor(ctx context.Context, companyID string, req dto.CreateVendorRequest, userID string) (*domain.Vendor, error)

	// ListVendors retrieves a paginated list of vendors.
	ListVendors(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Vendor, error)
}

// DocumentSvcFacade combines all document workflow service interfaces
// This is a facade for clients that need access to all operations
type DocumentSvcFacade interface {
	InvoiceSvc
	BillSvc
	PaymentSvc
	PartySvc
}
