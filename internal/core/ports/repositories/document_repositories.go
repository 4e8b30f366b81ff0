package repositories

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// InvoiceReader defines read operations for invoice data
type InvoiceReader interface {
	// FindInvoiceByID retrieves a specific invoice with its lines.
	FindInvoiceByID(ctx context.Context, companyID string, invoiceID string) (*domain.Invoice, error)

	// FindInvoicesByIDs retrieves multiple invoices by their IDs within a company.
	FindInvoicesByIDs(ctx context.Context, companyID string, invoiceIDs []string) (map[string]domain.Invoice, error)

	// ListInvoices retrieves a paginated list of invoices, optionally filtered by status.
	ListInvoices(ctx context.Context, companyID string, status *domain.DocumentStatus, limit int, offset int) ([]domain.Invoice, error)

	// ListOutstandingInvoices retrieves finalized and partially paid invoices for aging.
	ListOutstandingInvoices(ctx context.Context, companyID string) ([]domain.OutstandingDocument, error)
}

// InvoiceWriter defines write operations for invoice data
type InvoiceWriter interface {
	// SaveInvoice persists a new invoice with its lines.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// UpdateInvoice updates an invoice's mutable fields and replaces its lines.
	UpdateInvoice(ctx context.Context, invoice domain.Invoice) error

	// DeleteInvoice removes a draft invoice and its lines.
	DeleteInvoice(ctx context.Context, companyID string, invoiceID string) error
}

// BillReader defines read operations for bill data
type BillReader interface {
	// FindBillByID retrieves a specific bill with its lines.
	FindBillByID(ctx context.Context, companyID string, billID string) (*domain.Bill, error)

	// FindBillsByIDs retrieves multiple bills by their IDs within a company.
	FindBillsByIDs(ctx context.Context, companyID string, billIDs []string) (map[string]domain.Bill, error)

	// ListBills retrieves a paginated list of bills, optionally filtered by status.
	ListBills(ctx context.Context, companyID string, status *domain.DocumentStatus, limit int, offset int) ([]domain.Bill, error)

	// ListOutstandingBills retrieves finalized and partially paid bills for aging.
	ListOutstandingBills(ctx context.Context, companyID string) ([]domain.OutstandingDocument, error)
}

// BillWriter defines write operations for bill data
type BillWriter interface {
	// SaveBill persists a new bill with its lines.
	SaveBill(ctx context.Context, bill domain.Bill) error

	// UpdateBill updates a bill's mutable fields and replaces its lines.
	UpdateBill(ctx context.Context, bill domain.Bill) error

	// DeleteBill removes a draft bill and its lines.
	DeleteBill(ctx context.Context, companyID string, billID string) error
}

// PaymentReader defines read operations for payment data
type PaymentReader interface {
	// FindPaymentByID retrieves a payment with its allocations.
	FindPaymentByID(ctx context.Context, companyID string, paymentID string) (*domain.Payment, error)

	// ListPayments retrieves a paginated list of payments for a company.
	ListPayments(ctx context.Context, companyID string, limit int, offset int) ([]domain.Payment, error)
}

// PaymentWriter defines write operations for payment data
type PaymentWriter interface {
	// SavePayment persists a payment with its allocations and the updated paid totals
	// and statuses of the allocated documents, all within a single transaction.
	SavePayment(ctx context.Context, payment domain.Payment, invoices []domain.Invoice, bills []domain.Bill) error
}

// PartyReader defines read operations for customer and vendor data
type PartyReader interface {
	// FindCustomerByID retrieves a specific customer.
	FindCustomerByID(ctx context.Context, companyID string, customerID string) (*domain.Customer, error)

	// ListCustomers retrieves a paginated list of customers for a company.
	ListCustomers(ctx context.Context, companyID string, limit int, offset int) ([]domain.Customer, error)

	// FindVendorByID retrieves a specific vendor.
	FindVendorByID(ctx context.Context, companyID string, vendorID string) (*domain.Vendor, error)

	// ListVendors retrieves a paginated list of vendors for a company.
	ListVendors(ctx context.Context, companyID string, limit int, offset int) ([]domain.Vendor, error)
}

// PartyWriter defines write operations for customer and vendor data
type PartyWriter interface {
	// SaveCustomer persists a new customer.
	SaveCustomer(ctx context.Context, customer domain.Customer) error

	// SaveVendor persists a new vendor.
	SaveVendor(ctx context.Context, vendor domain.Vendor) error
}

// DocumentRepositoryFacade combines all document-related repository interfaces
// This is a facade for clients that need access to all operations
type DocumentRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
	BillReader
	BillWriter
	PaymentReader
	PaymentWriter
	PartyReader
	PartyWriter
}

// DocumentRepositoryWithTx extends DocumentRepositoryFacade with transaction capabilities
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}
