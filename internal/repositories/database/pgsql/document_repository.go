package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoiceColumns = `invoice_id, company_id, customer_id, invoice_number, issue_date, due_date, currency_code, status, total, paid_total, entry_id, created_at, created_by, last_updated_at, last_updated_by`

const billColumns = `bill_id, company_id, vendor_id, bill_number, issue_date, due_date, currency_code, status, total, paid_total, entry_id, created_at, created_by, last_updated_at, last_updated_by`

const documentLineColumns = `line_id, document_id, company_id, account_id, description, quantity, unit_price, line_total`

type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a new repository for invoices, bills,
// payments and counterparties.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxDocumentRepository implements portsrepo.DocumentRepositoryWithTx
var _ portsrepo.DocumentRepositoryWithTx = (*PgxDocumentRepository)(nil)

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.InvoiceID,
		&inv.CompanyID,
		&inv.CustomerID,
		&inv.InvoiceNumber,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.CurrencyCode,
		&inv.Status,
		&inv.Total,
		&inv.PaidTotal,
		&inv.EntryID,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanBill(row pgx.Row) (*domain.Bill, error) {
	var bill domain.Bill
	err := row.Scan(
		&bill.BillID,
		&bill.CompanyID,
		&bill.VendorID,
		&bill.BillNumber,
		&bill.IssueDate,
		&bill.DueDate,
		&bill.CurrencyCode,
		&bill.Status,
		&bill.Total,
		&bill.PaidTotal,
		&bill.EntryID,
		&bill.CreatedAt,
		&bill.CreatedBy,
		&bill.LastUpdatedAt,
		&bill.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *PgxDocumentRepository) findDocumentLines(ctx context.Context, companyID string, documentID string) ([]domain.DocumentLine, error) {
	query := `SELECT ` + documentLineColumns + ` FROM document_lines WHERE company_id = $1 AND document_id = $2 ORDER BY line_id;`

	rows, err := r.Pool.Query(ctx, query, companyID, documentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for document "+documentID, err)
	}
	defer rows.Close()

	lines := []domain.DocumentLine{}
	for rows.Next() {
		var l domain.DocumentLine
		if scanErr := rows.Scan(
			&l.LineID,
			&l.DocumentID,
			&l.CompanyID,
			&l.AccountID,
			&l.Description,
			&l.Quantity,
			&l.UnitPrice,
			&l.LineTotal,
		); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan document line row", scanErr)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating document line rows", err)
	}
	return lines, nil
}

func insertDocumentLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.DocumentLine) error {
	query := `
		INSERT INTO document_lines (` + documentLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.LineID, l.DocumentID, l.CompanyID, l.AccountID, l.Description, l.Quantity, l.UnitPrice, l.LineTotal)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert document lines", err)
	}
	return nil
}

// SaveInvoice persists a new invoice with its lines.
func (r *PgxDocumentRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, query,
		invoice.InvoiceID,
		invoice.CompanyID,
		invoice.CustomerID,
		invoice.InvoiceNumber,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.CurrencyCode,
		invoice.Status,
		invoice.Total,
		invoice.PaidTotal,
		invoice.EntryID,
		invoice.CreatedAt,
		invoice.CreatedBy,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: invoice number %s already exists in company", apperrors.ErrDuplicate, invoice.InvoiceNumber)
		}
		return apperrors.NewAppError(500, "failed to save invoice "+invoice.InvoiceID, err)
	}

	if err := insertDocumentLinesInTx(ctx, tx, invoice.Lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdateInvoice updates an invoice's mutable fields and replaces its lines
// when new lines are provided.
func (r *PgxDocumentRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE invoices
		SET issue_date = $3,
		    due_date = $4,
		    status = $5,
		    total = $6,
		    paid_total = $7,
		    entry_id = $8,
		    last_updated_at = $9,
		    last_updated_by = $10
		WHERE invoice_id = $1 AND company_id = $2;
	`
	cmdTag, err := tx.Exec(ctx, query,
		invoice.InvoiceID,
		invoice.CompanyID,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.Status,
		invoice.Total,
		invoice.PaidTotal,
		invoice.EntryID,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update invoice "+invoice.InvoiceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("invoice " + invoice.InvoiceID + " not found for update")
	}

	if invoice.Lines != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE company_id = $1 AND document_id = $2;`, invoice.CompanyID, invoice.InvoiceID); err != nil {
			return apperrors.NewAppError(500, "failed to replace lines for invoice "+invoice.InvoiceID, err)
		}
		if err := insertDocumentLinesInTx(ctx, tx, invoice.Lines); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

// DeleteInvoice removes a draft invoice and its lines.
func (r *PgxDocumentRepository) DeleteInvoice(ctx context.Context, companyID string, invoiceID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE company_id = $1 AND document_id = $2;`, companyID, invoiceID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for invoice "+invoiceID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE invoice_id = $1 AND company_id = $2;`, invoiceID, companyID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete invoice "+invoiceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("invoice " + invoiceID + " not found for delete")
	}
	return r.Commit(ctx, tx)
}

// FindInvoiceByID retrieves an invoice with its lines.
func (r *PgxDocumentRepository) FindInvoiceByID(ctx context.Context, companyID string, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1 AND company_id = $2;`

	inv, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice "+invoiceID, err)
	}

	lines, err := r.findDocumentLines(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

// FindInvoicesByIDs retrieves multiple invoices by their IDs within a company.
func (r *PgxDocumentRepository) FindInvoicesByIDs(ctx context.Context, companyID string, invoiceIDs []string) (map[string]domain.Invoice, error) {
	if len(invoiceIDs) == 0 {
		return map[string]domain.Invoice{}, nil
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE company_id = $1 AND invoice_id = ANY($2);`

	rows, err := r.Pool.Query(ctx, query, companyID, invoiceIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invoices by IDs", err)
	}
	defer rows.Close()

	invoices := make(map[string]domain.Invoice, len(invoiceIDs))
	for rows.Next() {
		inv, scanErr := scanInvoice(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invoice row", scanErr)
		}
		invoices[inv.InvoiceID] = *inv
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating invoice rows", err)
	}

	if len(invoices) != len(invoiceIDs) {
		return nil, fmt.Errorf("%w: one or more invoices not found", apperrors.ErrNotFound)
	}
	return invoices, nil
}

// ListInvoices retrieves a paginated list of invoices, optionally filtered by status.
func (r *PgxDocumentRepository) ListInvoices(ctx context.Context, companyID string, status *domain.DocumentStatus, limit int, offset int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if status != nil {
		query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE company_id = $1 AND status = $2 ORDER BY issue_date DESC, invoice_number LIMIT $3 OFFSET $4;`
		rows, err = r.Pool.Query(ctx, query, companyID, *status, limit, offset)
	} else {
		query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE company_id = $1 ORDER BY issue_date DESC, invoice_number LIMIT $2 OFFSET $3;`
		rows, err = r.Pool.Query(ctx, query, companyID, limit, offset)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list invoices for company "+companyID, err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		inv, scanErr := scanInvoice(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan invoice row", scanErr)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating invoice rows", err)
	}
	return invoices, nil
}

// ListOutstandingInvoices retrieves finalized and partially paid invoices for aging.
func (r *PgxDocumentRepository) ListOutstandingInvoices(ctx context.Context, companyID string) ([]domain.OutstandingDocument, error) {
	query := `
		SELECT i.invoice_id, i.customer_id, c.name, i.due_date, i.total - i.paid_total
		FROM invoices i
		JOIN customers c ON i.customer_id = c.customer_id
		WHERE i.company_id = $1 AND i.status IN ('FINALIZED', 'PARTIALLY_PAID')
		ORDER BY i.due_date;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list outstanding invoices for company "+companyID, err)
	}
	defer rows.Close()

	docs := []domain.OutstandingDocument{}
	for rows.Next() {
		var d domain.OutstandingDocument
		if scanErr := rows.Scan(&d.DocumentID, &d.CounterpartyID, &d.CounterpartyName, &d.DueDate, &d.Outstanding); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan outstanding invoice row", scanErr)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating outstanding invoice rows", err)
	}
	return docs, nil
}

// SaveBill persists a new bill with its lines.
func (r *PgxDocumentRepository) SaveBill(ctx context.Context, bill domain.Bill) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, query,
		bill.BillID,
		bill.CompanyID,
		bill.VendorID,
		bill.BillNumber,
		bill.IssueDate,
		bill.DueDate,
		bill.CurrencyCode,
		bill.Status,
		bill.Total,
		bill.PaidTotal,
		bill.EntryID,
		bill.CreatedAt,
		bill.CreatedBy,
		bill.LastUpdatedAt,
		bill.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: bill number %s already exists in company", apperrors.ErrDuplicate, bill.BillNumber)
		}
		return apperrors.NewAppError(500, "failed to save bill "+bill.BillID, err)
	}

	if err := insertDocumentLinesInTx(ctx, tx, bill.Lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdateBill updates a bill's mutable fields and replaces its lines when new
// lines are provided.
func (r *PgxDocumentRepository) UpdateBill(ctx context.Context, bill domain.Bill) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE bills
		SET issue_date = $3,
		    due_date = $4,
		    status = $5,
		    total = $6,
		    paid_total = $7,
		    entry_id = $8,
		    last_updated_at = $9,
		    last_updated_by = $10
		WHERE bill_id = $1 AND company_id = $2;
	`
	cmdTag, err := tx.Exec(ctx, query,
		bill.BillID,
		bill.CompanyID,
		bill.IssueDate,
		bill.DueDate,
		bill.Status,
		bill.Total,
		bill.PaidTotal,
		bill.EntryID,
		bill.LastUpdatedAt,
		bill.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update bill "+bill.BillID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("bill " + bill.BillID + " not found for update")
	}

	if bill.Lines != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE company_id = $1 AND document_id = $2;`, bill.CompanyID, bill.BillID); err != nil {
			return apperrors.NewAppError(500, "failed to replace lines for bill "+bill.BillID, err)
		}
		if err := insertDocumentLinesInTx(ctx, tx, bill.Lines); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

// DeleteBill removes a draft bill and its lines.
func (r *PgxDocumentRepository) DeleteBill(ctx context.Context, companyID string, billID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE company_id = $1 AND document_id = $2;`, companyID, billID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for bill "+billID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM bills WHERE bill_id = $1 AND company_id = $2;`, billID, companyID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete bill "+billID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("bill " + billID + " not found for delete")
	}
	return r.Commit(ctx, tx)
}

// FindBillByID retrieves a bill with its lines.
func (r *PgxDocumentRepository) FindBillByID(ctx context.Context, companyID string, billID string) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_id = $1 AND company_id = $2;`

	bill, err := scanBill(r.Pool.QueryRow(ctx, query, billID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find bill "+billID, err)
	}

	lines, err := r.findDocumentLines(ctx, companyID, billID)
	if err != nil {
		return nil, err
	}
	bill.Lines = lines
	return bill, nil
}

// FindBillsByIDs retrieves multiple bills by their IDs within a company.
func (r *PgxDocumentRepository) FindBillsByIDs(ctx context.Context, companyID string, billIDs []string) (map[string]domain.Bill, error) {
	if len(billIDs) == 0 {
		return map[string]domain.Bill{}, nil
	}

	query := `SELECT ` + billColumns + ` FROM bills WHERE company_id = $1 AND bill_id = ANY($2);`

	rows, err := r.Pool.Query(ctx, query, companyID, billIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bills by IDs", err)
	}
	defer rows.Close()

	bills := make(map[string]domain.Bill, len(billIDs))
	for rows.Next() {
		bill, scanErr := scanBill(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bill row", scanErr)
		}
		bills[bill.BillID] = *bill
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bill rows", err)
	}

	if len(bills) != len(billIDs) {
		return nil, fmt.Errorf("%w: one or more bills not found", apperrors.ErrNotFound)
	}
	return bills, nil
}

// ListBills retrieves a paginated list of bills, optionally filtered by status.
func (r *PgxDocumentRepository) ListBills(ctx context.Context, companyID string, status *domain.DocumentStatus, limit int, offset int) ([]domain.Bill, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if status != nil {
		query := `SELECT ` + billColumns + ` FROM bills WHERE company_id = $1 AND status = $2 ORDER BY issue_date DESC, bill_number LIMIT $3 OFFSET $4;`
		rows, err = r.Pool.Query(ctx, query, companyID, *status, limit, offset)
	} else {
		query := `SELECT ` + billColumns + ` FROM bills WHERE company_id = $1 ORDER BY issue_date DESC, bill_number LIMIT $2 OFFSET $3;`
		rows, err = r.Pool.Query(ctx, query, companyID, limit, offset)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list bills for company "+companyID, err)
	}
	defer rows.Close()

	bills := []domain.Bill{}
	for rows.Next() {
		bill, scanErr := scanBill(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bill row", scanErr)
		}
		bills = append(bills, *bill)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bill rows", err)
	}
	return bills, nil
}

// ListOutstandingBills retrieves finalized and partially paid bills for aging.
func (r *PgxDocumentRepository) ListOutstandingBills(ctx context.Context, companyID string) ([]domain.OutstandingDocument, error) {
	query := `
		SELECT b.bill_id, b.vendor_id, v.name, b.due_date, b.total - b.paid_total
		FROM bills b
		JOIN vendors v ON b.vendor_id = v.vendor_id
		WHERE b.company_id = $1 AND b.status IN ('FINALIZED', 'PARTIALLY_PAID')
		ORDER BY b.due_date;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list outstanding bills for company "+companyID, err)
	}
	defer rows.Close()

	docs := []domain.OutstandingDocument{}
	for rows.Next() {
		var d domain.OutstandingDocument
		if scanErr := rows.Scan(&d.DocumentID, &d.CounterpartyID, &d.CounterpartyName, &d.DueDate, &d.Outstanding); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan outstanding bill row", scanErr)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating outstanding bill rows", err)
	}
	return docs, nil
}

// SavePayment persists a payment with its allocations and the updated paid
// totals and statuses of the allocated documents in a single transaction.
func (r *PgxDocumentRepository) SavePayment(ctx context.Context, payment domain.Payment, invoices []domain.Invoice, bills []domain.Bill) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	paymentQuery := `
		INSERT INTO payments (payment_id, company_id, kind, payment_date, currency_code, amount, cash_account_id, entry_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, paymentQuery,
		payment.PaymentID,
		payment.CompanyID,
		payment.Kind,
		payment.PaymentDate,
		payment.CurrencyCode,
		payment.Amount,
		payment.CashAccountID,
		payment.EntryID,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: payment %s already exists", apperrors.ErrDuplicate, payment.PaymentID)
		}
		return apperrors.NewAppError(500, "failed to save payment "+payment.PaymentID, err)
	}

	allocationQuery := `
		INSERT INTO payment_allocations (allocation_id, payment_id, document_id, amount)
		VALUES ($1, $2, $3, $4);
	`
	batch := &pgx.Batch{}
	for _, a := range payment.Allocations {
		batch.Queue(allocationQuery, a.AllocationID, a.PaymentID, a.DocumentID, a.Amount)
	}

	invoiceUpdate := `
		UPDATE invoices
		SET paid_total = $3, status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE invoice_id = $1 AND company_id = $2;
	`
	for _, inv := range invoices {
		batch.Queue(invoiceUpdate, inv.InvoiceID, inv.CompanyID, inv.PaidTotal, inv.Status, inv.LastUpdatedAt, inv.LastUpdatedBy)
	}

	billUpdate := `
		UPDATE bills
		SET paid_total = $3, status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE bill_id = $1 AND company_id = $2;
	`
	for _, bill := range bills {
		batch.Queue(billUpdate, bill.BillID, bill.CompanyID, bill.PaidTotal, bill.Status, bill.LastUpdatedAt, bill.LastUpdatedBy)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to apply payment "+payment.PaymentID, err)
	}
	return r.Commit(ctx, tx)
}

// FindPaymentByID retrieves a payment with its allocations.
func (r *PgxDocumentRepository) FindPaymentByID(ctx context.Context, companyID string, paymentID string) (*domain.Payment, error) {
	query := `
		SELECT payment_id, company_id, kind, payment_date, currency_code, amount, cash_account_id, entry_id, created_at, created_by, last_updated_at, last_updated_by
		FROM payments
		WHERE payment_id = $1 AND company_id = $2;
	`
	var p domain.Payment
	err := r.Pool.QueryRow(ctx, query, paymentID, companyID).Scan(
		&p.PaymentID,
		&p.CompanyID,
		&p.Kind,
		&p.PaymentDate,
		&p.CurrencyCode,
		&p.Amount,
		&p.CashAccountID,
		&p.EntryID,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find payment "+paymentID, err)
	}

	allocQuery := `SELECT allocation_id, payment_id, document_id, amount FROM payment_allocations WHERE payment_id = $1 ORDER BY allocation_id;`
	rows, err := r.Pool.Query(ctx, allocQuery, paymentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query allocations for payment "+paymentID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.PaymentAllocation
		if scanErr := rows.Scan(&a.AllocationID, &a.PaymentID, &a.DocumentID, &a.Amount); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan allocation row", scanErr)
		}
		p.Allocations = append(p.Allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating allocation rows", err)
	}
	return &p, nil
}

// ListPayments retrieves a paginated list of payments for a company.
func (r *PgxDocumentRepository) ListPayments(ctx context.Context, companyID string, limit int, offset int) ([]domain.Payment, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT payment_id, company_id, kind, payment_date, currency_code, amount, cash_account_id, entry_id, created_at, created_by, last_updated_at, last_updated_by
		FROM payments
		WHERE company_id = $1
		ORDER BY payment_date DESC, payment_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list payments for company "+companyID, err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		if scanErr := rows.Scan(
			&p.PaymentID,
			&p.CompanyID,
			&p.Kind,
			&p.PaymentDate,
			&p.CurrencyCode,
			&p.Amount,
			&p.CashAccountID,
			&p.EntryID,
			&p.CreatedAt,
			&p.CreatedBy,
			&p.LastUpdatedAt,
			&p.LastUpdatedBy,
		); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment row", scanErr)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payment rows", err)
	}
	return payments, nil
}

// SaveCustomer persists a new customer.
func (r *PgxDocumentRepository) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	query := `
		INSERT INTO customers (customer_id, company_id, name, default_ar_account_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		customer.CustomerID,
		customer.CompanyID,
		customer.Name,
		customer.DefaultARAccountID,
		customer.CreatedAt,
		customer.CreatedBy,
		customer.LastUpdatedAt,
		customer.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: customer %s already exists", apperrors.ErrDuplicate, customer.CustomerID)
		}
		return fmt.Errorf("failed to save customer %s: %w", customer.CustomerID, err)
	}
	return nil
}

// FindCustomerByID retrieves a customer within a company.
func (r *PgxDocumentRepository) FindCustomerByID(ctx context.Context, companyID string, customerID string) (*domain.Customer, error) {
	query := `
		SELECT customer_id, company_id, name, default_ar_account_id, created_at, created_by, last_updated_at, last_updated_by
		FROM customers
		WHERE customer_id = $1 AND company_id = $2;
	`
	var c domain.Customer
	err := r.Pool.QueryRow(ctx, query, customerID, companyID).Scan(
		&c.CustomerID,
		&c.CompanyID,
		&c.Name,
		&c.DefaultARAccountID,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find customer "+customerID, err)
	}
	return &c, nil
}

// ListCustomers retrieves a paginated list of customers for a company.
func (r *PgxDocumentRepository) ListCustomers(ctx context.Context, companyID string, limit int, offset int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT customer_id, company_id, name, default_ar_account_id, created_at, created_by, last_updated_at, last_updated_by
		FROM customers
		WHERE company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list customers for company "+companyID, err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if scanErr := rows.Scan(
			&c.CustomerID,
			&c.CompanyID,
			&c.Name,
			&c.DefaultARAccountID,
			&c.CreatedAt,
			&c.CreatedBy,
			&c.LastUpdatedAt,
			&c.LastUpdatedBy,
		); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan customer row", scanErr)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating customer rows", err)
	}
	return customers, nil
}

// SaveVendor persists a new vendor.
func (r *PgxDocumentRepository) SaveVendor(ctx context.Context, vendor domain.Vendor) error {
	query := `
		INSERT INTO vendors (vendor_id, company_id, name, default_ap_account_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		vendor.VendorID,
		vendor.CompanyID,
		vendor.Name,
		vendor.DefaultAPAccountID,
		vendor.CreatedAt,
		vendor.CreatedBy,
		vendor.LastUpdatedAt,
		vendor.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: vendor %s already exists", apperrors.ErrDuplicate, vendor.VendorID)
		}
		return fmt.Errorf("failed to save vendor %s: %w", vendor.VendorID, err)
	}
	return nil
}

// FindVendorByID retrieves a vendor within a company.
func (r *PgxDocumentRepository) FindVendorByID(ctx context.Context, companyID string, vendorID string) (*domain.Vendor, error) {
	query := `
		SELECT vendor_id, company_id, name, default_ap_account_id, created_at, created_by, last_updated_at, last_updated_by
		FROM vendors
		WHERE vendor_id = $1 AND company_id = $2;
	`
	var v domain.Vendor
	err := r.Pool.QueryRow(ctx, query, vendorID, companyID).Scan(
		&v.VendorID,
		&v.CompanyID,
		&v.Name,
		&v.DefaultAPAccountID,
		&v.CreatedAt,
		&v.CreatedBy,
		&v.LastUpdatedAt,
		&v.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find vendor "+vendorID, err)
	}
	return &v, nil
}

// ListVendors retrieves a paginated list of vendors for a company.
func (r *PgxDocumentRepository) ListVendors(ctx context.Context, companyID string, limit int, offset int) ([]domain.Vendor, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT vendor_id, company_id, name, default_ap_account_id, created_at, created_by, last_updated_at, last_updated_by
		FROM vendors
		WHERE company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list vendors for company "+companyID, err)
	}
	defer rows.Close()

	vendors := []domain.Vendor{}
	for rows.Next() {
		var v domain.Vendor
		if scanErr := rows.Scan(
			&v.VendorID,
			&v.CompanyID,
			&v.Name,
			&v.DefaultAPAccountID,
			&v.CreatedAt,
			&v.CreatedBy,
			&v.LastUpdatedAt,
			&v.LastUpdatedBy,
		); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan vendor row", scanErr)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating vendor rows", err)
	}
	return vendors, nil
}
