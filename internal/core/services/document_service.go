package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

var (
	ErrNoSettlementAccount = errors.New("no settlement account: provide one or set a default on the counterparty")
	ErrAllocationMismatch  = errors.New("allocation amounts must sum to the payment amount")
	ErrOverAllocation      = errors.New("allocation exceeds the document's outstanding balance")
	ErrZeroTotal           = errors.New("document total must be positive to finalize")
)

// documentService provides invoice, bill, payment and counterparty workflows.
// All ledger effects go through the posting engine so document postings get
// the same validation, conversion and idempotency as manual entries.
type documentService struct {
	BaseService
	documentRepo portsrepo.DocumentRepositoryWithTx
	accountRepo  portsrepo.AccountRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	ledgerSvc    portssvc.LedgerSvcFacade
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	documentRepo portsrepo.DocumentRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	authorizer portssvc.CompanyAuthorizerSvc,
) portssvc.DocumentSvcFacade {
	return &documentService{
		BaseService:  BaseService{CompanyAuthorizer: authorizer},
		documentRepo: documentRepo,
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		ledgerSvc:    ledgerSvc,
	}
}

// Ensure documentService implements the portssvc.DocumentSvcFacade interface
var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// buildDocumentLines converts line requests into domain lines, computing each
// line total at the currency's precision and the document total from the lines.
func (s *documentService) buildDocumentLines(ctx context.Context, companyID string, documentID string, currencyCode string, reqLines []dto.DocumentLineRequest) ([]domain.DocumentLine, decimal.Decimal, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, decimal.Zero, fmt.Errorf("%w: unknown currency %s", apperrors.ErrValidation, currencyCode)
		}
		return nil, decimal.Zero, fmt.Errorf("failed to validate currency: %w", err)
	}

	accountIDs := make([]string, 0, len(reqLines))
	for _, l := range reqLines {
		accountIDs = append(accountIDs, l.AccountID)
	}
	if _, err := s.accountRepo.FindAccountsByIDs(ctx, companyID, uniqueStrings(accountIDs)); err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	lines := make([]domain.DocumentLine, len(reqLines))
	for i, lr := range reqLines {
		if lr.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, decimal.Zero, fmt.Errorf("%w: line quantity must be positive for account %s", apperrors.ErrValidation, lr.AccountID)
		}
		if lr.UnitPrice.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: line unit price cannot be negative for account %s", apperrors.ErrValidation, lr.AccountID)
		}
		lineTotal := lr.Quantity.Mul(lr.UnitPrice).RoundBank(currency.Precision)
		lines[i] = domain.DocumentLine{
			LineID:      uuid.NewString(),
			DocumentID:  documentID,
			CompanyID:   companyID,
			AccountID:   lr.AccountID,
			Description: lr.Description,
			Quantity:    lr.Quantity,
			UnitPrice:   lr.UnitPrice,
			LineTotal:   lineTotal,
		}
		total = total.Add(lineTotal)
	}
	if total.IsNegative() {
		return nil, decimal.Zero, fmt.Errorf("%w: document total cannot be negative", apperrors.ErrValidation)
	}
	return lines, total, nil
}

// CreateInvoice persists a new draft invoice.
func (s *documentService) CreateInvoice(ctx context.Context, companyID string, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}
	if _, err := s.documentRepo.FindCustomerByID(ctx, companyID, req.CustomerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invoiceID := uuid.NewString()
	lines, total, err := s.buildDocumentLines(ctx, companyID, invoiceID, req.CurrencyCode, req.Lines)
	if err != nil {
		return nil, err
	}

	invoice := domain.Invoice{
		InvoiceID:     invoiceID,
		CompanyID:     companyID,
		CustomerID:    req.CustomerID,
		InvoiceNumber: req.InvoiceNumber,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		CurrencyCode:  req.CurrencyCode,
		Status:        domain.DocDraft,
		Total:         total,
		PaidTotal:     decimal.Zero,
		Lines:         lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.documentRepo.SaveInvoice(ctx, invoice); err != nil {
		s.LogError(ctx, err, "Failed to save invoice", slog.String("company_id", companyID))
		return nil, err
	}
	return &invoice, nil
}

// GetInvoiceByID retrieves a specific invoice with its lines.
func (s *documentService) GetInvoiceByID(ctx context.Context, companyID string, invoiceID string, userID string) (*domain.Invoice, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.documentRepo.FindInvoiceByID(ctx, companyID, invoiceID)
}

// ListInvoices retrieves a paginated list of invoices, optionally filtered by status.
func (s *documentService) ListInvoices(ctx context.Context, companyID string, userID string, params dto.ListDocumentsParams) ([]domain.Invoice, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	var status *domain.DocumentStatus
	if params.Status != nil {
		st := domain.DocumentStatus(*params.Status)
		status = &st
	}
	return s.documentRepo.ListInvoices(ctx, companyID, status, params.Limit, params.Offset)
}

// UpdateInvoice updates a draft invoice's details and lines.
func (s *documentService) UpdateInvoice(ctx context.Context, companyID string, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	invoice, err := s.documentRepo.FindInvoiceByID(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.DocDraft {
		return nil, fmt.Errorf("%w: only draft invoices can be updated", apperrors.ErrState)
	}

	if req.IssueDate != nil {
		invoice.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if req.Lines != nil {
		lines, total, err := s.buildDocumentLines(ctx, companyID, invoiceID, invoice.CurrencyCode, req.Lines)
		if err != nil {
			return nil, err
		}
		invoice.Lines = lines
		invoice.Total = total
	} else {
		invoice.Lines = nil // leave stored lines untouched
	}
	invoice.LastUpdatedAt = time.Now().UTC()
	invoice.LastUpdatedBy = userID

	if err := s.documentRepo.UpdateInvoice(ctx, *invoice); err != nil {
		return nil, err
	}
	return s.documentRepo.FindInvoiceByID(ctx, companyID, invoiceID)
}

// FinalizeInvoice transitions a draft invoice to finalized and posts its
// revenue against the AR control account. The posting key is derived from the
// invoice ID, so finalize retries never post twice.
func (s *documentService) FinalizeInvoice(ctx context.Context, companyID string, invoiceID string, req dto.FinalizeDocumentRequest, userID string) (*domain.Invoice, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	invoice, err := s.documentRepo.FindInvoiceByID(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(invoice.Status, domain.DocFinalized) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrState, domain.TransitionError(domain.KindInvoice, invoice.Status, domain.DocFinalized))
	}
	if !invoice.Total.IsPositive() {
		return nil, fmt.Errorf("%w: invoice %s", ErrZeroTotal, invoiceID)
	}

	arAccountID, err := s.settlementAccountFor(ctx, companyID, req.SettlementAccountID, invoice.CustomerID, domain.KindInvoice)
	if err != nil {
		return nil, err
	}

	// Debit AR for the total, credit each line's revenue account.
	postLines := make([]dto.PostEntryLine, 0, len(invoice.Lines)+1)
	postLines = append(postLines, dto.PostEntryLine{
		AccountID: arAccountID,
		Side:      domain.DebitLine,
		Amount:    invoice.Total,
		Notes:     "Invoice " + invoice.InvoiceNumber,
	})
	for _, l := range invoice.Lines {
		postLines = append(postLines, dto.PostEntryLine{
			AccountID: l.AccountID,
			Side:      domain.CreditLine,
			Amount:    l.LineTotal,
			Notes:     l.Description,
		})
	}

	entry, err := s.ledgerSvc.PostEntry(ctx, companyID, dto.PostEntryRequest{
		EntryDate:      invoice.IssueDate,
		Description:    "Invoice " + invoice.InvoiceNumber,
		CurrencyCode:   invoice.CurrencyCode,
		IdempotencyKey: invoiceID + ":finalize",
		Lines:          postLines,
		SourceType:     domain.SourceInvoice,
		SourceID:       &invoiceID,
	}, userID)
	if err != nil {
		return nil, err
	}

	invoice.Status = domain.DocFinalized
	invoice.EntryID = &entry.EntryID
	invoice.Lines = nil // keep stored lines as-is
	invoice.LastUpdatedAt = time.Now().UTC()
	invoice.LastUpdatedBy = userID
	if err := s.documentRepo.UpdateInvoice(ctx, *invoice); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Invoice finalized",
		slog.String("invoice_id", invoiceID),
		slog.String("entry_id", entry.EntryID),
		slog.String("company_id", companyID))
	return s.documentRepo.FindInvoiceByID(ctx, companyID, invoiceID)
}

// VoidInvoice voids an invoice, reversing its posting if it was finalized.
// Voiding an already-void invoice is a no-op.
func (s *documentService) VoidInvoice(ctx context.Context, companyID string, invoiceID string, userID string) (*domain.Invoice, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	invoice, err := s.documentRepo.FindInvoiceByID(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == domain.DocVoid {
		return invoice, nil
	}
	if !domain.CanTransition(invoice.Status, domain.DocVoid) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrState, domain.TransitionError(domain.KindInvoice, invoice.Status, domain.DocVoid))
	}

	if invoice.EntryID != nil {
		if _, err := s.ledgerSvc.ReverseEntry(ctx, companyID, *invoice.EntryID, dto.ReverseEntryRequest{
			Description: "Void of invoice " + invoice.InvoiceNumber,
		}, userID); err != nil && !errors.Is(err, ErrAlreadyReversed) {
			return nil, err
		}
	}

	invoice.Status = domain.DocVoid
	invoice.Lines = nil
	invoice.LastUpdatedAt = time.Now().UTC()
	invoice.LastUpdatedBy = userID
	if err := s.documentRepo.UpdateInvoice(ctx, *invoice); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Invoice voided", slog.String("invoice_id", invoiceID), slog.String("company_id", companyID))
	return s.documentRepo.FindInvoiceByID(ctx, companyID, invoiceID)
}

// DeleteInvoice removes a draft invoice. Non-draft invoices cannot be deleted.
func (s *documentService) DeleteInvoice(ctx context.Context, companyID string, invoiceID string, userID string) error {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return err
	}

	invoice, err := s.documentRepo.FindInvoiceByID(ctx, companyID, invoiceID)
	if err != nil {
		return err
	}
	if invoice.Status != domain.DocDraft {
		return fmt.Errorf("%w: only draft invoices can be deleted", apperrors.ErrState)
	}
	return s.documentRepo.DeleteInvoice(ctx, companyID, invoiceID)
}

// CreateBill persists a new draft bill.
func (s *documentService) CreateBill(ctx context.Context, companyID string, req dto.CreateBillRequest, userID string) (*domain.Bill, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}
	if _, err := s.documentRepo.FindVendorByID(ctx, companyID, req.VendorID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	billID := uuid.NewString()
	lines, total, err := s.buildDocumentLines(ctx, companyID, billID, req.CurrencyCode, req.Lines)
	if err != nil {
		return nil, err
	}

	bill := domain.Bill{
		BillID:       billID,
		CompanyID:    companyID,
		VendorID:     req.VendorID,
		BillNumber:   req.BillNumber,
		IssueDate:    req.IssueDate,
		DueDate:      req.DueDate,
		CurrencyCode: req.CurrencyCode,
		Status:       domain.DocDraft,
		Total:        total,
		PaidTotal:    decimal.Zero,
		Lines:        lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.documentRepo.SaveBill(ctx, bill); err != nil {
		s.LogError(ctx, err, "Failed to save bill", slog.String("company_id", companyID))
		return nil, err
	}
	return &bill, nil
}

// GetBillByID retrieves a specific bill with its lines.
func (s *documentService) GetBillByID(ctx context.Context, companyID string, billID string, userID string) (*domain.Bill, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.documentRepo.FindBillByID(ctx, companyID, billID)
}

// ListBills retrieves a paginated list of bills, optionally filtered by status.
func (s *documentService) ListBills(ctx context.Context, companyID string, userID string, params dto.ListDocumentsParams) ([]domain.Bill, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	var status *domain.DocumentStatus
	if params.Status != nil {
		st := domain.DocumentStatus(*params.Status)
		status = &st
	}
	return s.documentRepo.ListBills(ctx, companyID, status, params.Limit, params.Offset)
}

// UpdateBill updates a draft bill's details and lines.
func (s *documentService) UpdateBill(ctx context.Context, companyID string, billID string, req dto.UpdateBillRequest, userID string) (*domain.Bill, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	bill, err := s.documentRepo.FindBillByID(ctx, companyID, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != domain.DocDraft {
		return nil, fmt.Errorf("%w: only draft bills can be updated", apperrors.ErrState)
	}

	if req.IssueDate != nil {
		bill.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		bill.DueDate = *req.DueDate
	}
	if req.Lines != nil {
		lines, total, err := s.buildDocumentLines(ctx, companyID, billID, bill.CurrencyCode, req.Lines)
		if err != nil {
			return nil, err
		}
		bill.Lines = lines
		bill.Total = total
	} else {
		bill.Lines = nil
	}
	bill.LastUpdatedAt = time.Now().UTC()
	bill.LastUpdatedBy = userID

	if err := s.documentRepo.UpdateBill(ctx, *bill); err != nil {
		return nil, err
	}
	return s.documentRepo.FindBillByID(ctx, companyID, billID)
}

// FinalizeBill transitions a draft bill to finalized and posts its expense
// against the AP control account.
func (s *documentService) FinalizeBill(ctx context.Context, companyID string, billID string, req dto.FinalizeDocumentRequest, userID string) (*domain.Bill, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	bill, err := s.documentRepo.FindBillByID(ctx, companyID, billID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(bill.Status, domain.DocFinalized) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrState, domain.TransitionError(domain.KindBill, bill.Status, domain.DocFinalized))
	}
	if !bill.Total.IsPositive() {
		return nil, fmt.Errorf("%w: bill %s", ErrZeroTotal, billID)
	}

	apAccountID, err := s.settlementAccountFor(ctx, companyID, req.SettlementAccountID, bill.VendorID, domain.KindBill)
	if err != nil {
		return nil, err
	}

	// Debit each line's expense account, credit AP for the total.
	postLines := make([]dto.PostEntryLine, 0, len(bill.Lines)+1)
	for _, l := range bill.Lines {
		postLines = append(postLines, dto.PostEntryLine{
			AccountID: l.AccountID,
			Side:      domain.DebitLine,
			Amount:    l.LineTotal,
			Notes:     l.Description,
		})
	}
	postLines = append(postLines, dto.PostEntryLine{
		AccountID: apAccountID,
		Side:      domain.CreditLine,
		Amount:    bill.Total,
		Notes:     "Bill " + bill.BillNumber,
	})

	entry, err := s.ledgerSvc.PostEntry(ctx, companyID, dto.PostEntryRequest{
		EntryDate:      bill.IssueDate,
		Description:    "Bill " + bill.BillNumber,
		CurrencyCode:   bill.CurrencyCode,
		IdempotencyKey: billID + ":finalize",
		Lines:          postLines,
		SourceType:     domain.SourceBill,
		SourceID:       &billID,
	}, userID)
	if err != nil {
		return nil, err
	}

	bill.Status = domain.DocFinalized
	bill.EntryID = &entry.EntryID
	bill.Lines = nil
	bill.LastUpdatedAt = time.Now().UTC()
	bill.LastUpdatedBy = userID
	if err := s.documentRepo.UpdateBill(ctx, *bill); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Bill finalized",
		slog.String("bill_id", billID),
		slog.String("entry_id", entry.EntryID),
		slog.String("company_id", companyID))
	return s.documentRepo.FindBillByID(ctx, companyID, billID)
}

// VoidBill voids a bill, reversing its posting if it was finalized.
// Voiding an already-void bill is a no-op.
func (s *documentService) VoidBill(ctx context.Context, companyID string, billID string, userID string) (*domain.Bill, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	bill, err := s.documentRepo.FindBillByID(ctx, companyID, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status == domain.DocVoid {
		return bill, nil
	}
	if !domain.CanTransition(bill.Status, domain.DocVoid) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrState, domain.TransitionError(domain.KindBill, bill.Status, domain.DocVoid))
	}

	if bill.EntryID != nil {
		if _, err := s.ledgerSvc.ReverseEntry(ctx, companyID, *bill.EntryID, dto.ReverseEntryRequest{
			Description: "Void of bill " + bill.BillNumber,
		}, userID); err != nil && !errors.Is(err, ErrAlreadyReversed) {
			return nil, err
		}
	}

	bill.Status = domain.DocVoid
	bill.Lines = nil
	bill.LastUpdatedAt = time.Now().UTC()
	bill.LastUpdatedBy = userID
	if err := s.documentRepo.UpdateBill(ctx, *bill); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Bill voided", slog.String("bill_id", billID), slog.String("company_id", companyID))
	return s.documentRepo.FindBillByID(ctx, companyID, billID)
}

// DeleteBill removes a draft bill. Non-draft bills cannot be deleted.
func (s *documentService) DeleteBill(ctx context.Context, companyID string, billID string, userID string) error {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return err
	}

	bill, err := s.documentRepo.FindBillByID(ctx, companyID, billID)
	if err != nil {
		return err
	}
	if bill.Status != domain.DocDraft {
		return fmt.Errorf("%w: only draft bills can be deleted", apperrors.ErrState)
	}
	return s.documentRepo.DeleteBill(ctx, companyID, billID)
}

// settlementAccountFor resolves the AR or AP control account for a document:
// the explicit override when given, otherwise the counterparty's default.
func (s *documentService) settlementAccountFor(ctx context.Context, companyID string, override *string, counterpartyID string, kind domain.DocumentKind) (string, error) {
	if override != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, companyID, *override); err != nil {
			return "", err
		}
		return *override, nil
	}

	var defaultAccountID *string
	if kind == domain.KindInvoice {
		customer, err := s.documentRepo.FindCustomerByID(ctx, companyID, counterpartyID)
		if err != nil {
			return "", err
		}
		defaultAccountID = customer.DefaultARAccountID
	} else {
		vendor, err := s.documentRepo.FindVendorByID(ctx, companyID, counterpartyID)
		if err != nil {
			return "", err
		}
		defaultAccountID = vendor.DefaultAPAccountID
	}
	if defaultAccountID == nil {
		return "", fmt.Errorf("%w (%s)", ErrNoSettlementAccount, kind)
	}
	return *defaultAccountID, nil
}

// RecordPayment posts the cash movement and applies allocations to documents.
// The payment ID is derived from the idempotency key, so a replayed request
// neither double-posts nor double-applies.
func (s *documentService) RecordPayment(ctx context.Context, companyID string, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	allocSum := decimal.Zero
	for _, a := range req.Allocations {
		if !a.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: allocation amount must be positive for document %s", apperrors.ErrValidation, a.DocumentID)
		}
		allocSum = allocSum.Add(a.Amount)
	}
	if !allocSum.Equal(req.Amount) {
		return nil, fmt.Errorf("%w: allocations sum %s, payment amount %s", ErrAllocationMismatch, allocSum.String(), req.Amount.String())
	}

	// Deterministic ID: replaying the same key reproduces the same payment.
	paymentID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(companyID+":payment:"+req.IdempotencyKey)).String()

	if existing, err := s.documentRepo.FindPaymentByID(ctx, companyID, paymentID); err == nil {
		return existing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	docIDs := make([]string, len(req.Allocations))
	allocByDoc := make(map[string]decimal.Decimal, len(req.Allocations))
	for i, a := range req.Allocations {
		docIDs[i] = a.DocumentID
		if _, dup := allocByDoc[a.DocumentID]; dup {
			return nil, fmt.Errorf("%w: duplicate allocation for document %s", apperrors.ErrValidation, a.DocumentID)
		}
		allocByDoc[a.DocumentID] = a.Amount
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	var updatedInvoices []domain.Invoice
	var updatedBills []domain.Bill
	if req.Kind == domain.KindInvoice {
		invoices, err := s.documentRepo.FindInvoicesByIDs(ctx, companyID, docIDs)
		if err != nil {
			return nil, err
		}
		for docID, alloc := range allocByDoc {
			inv := invoices[docID]
			// Allocations net against the document's outstanding amount in the
			// document's own currency, so the payment must share it.
			if inv.CurrencyCode != req.CurrencyCode {
				return nil, fmt.Errorf("%w: invoice %s is in %s, payment is in %s", apperrors.ErrValidation, docID, inv.CurrencyCode, req.CurrencyCode)
			}
			if err := applyAllocation(domain.KindInvoice, docID, inv.Status, inv.Outstanding(), alloc); err != nil {
				return nil, err
			}
			inv.PaidTotal = inv.PaidTotal.Add(alloc)
			if inv.Outstanding().IsZero() {
				inv.Status = domain.DocPaid
			} else {
				inv.Status = domain.DocPartiallyPaid
			}
			inv.Lines = nil
			inv.LastUpdatedAt = now
			inv.LastUpdatedBy = userID
			updatedInvoices = append(updatedInvoices, inv)
		}
	} else {
		bills, err := s.documentRepo.FindBillsByIDs(ctx, companyID, docIDs)
		if err != nil {
			return nil, err
		}
		for docID, alloc := range allocByDoc {
			bill := bills[docID]
			if bill.CurrencyCode != req.CurrencyCode {
				return nil, fmt.Errorf("%w: bill %s is in %s, payment is in %s", apperrors.ErrValidation, docID, bill.CurrencyCode, req.CurrencyCode)
			}
			if err := applyAllocation(domain.KindBill, docID, bill.Status, bill.Outstanding(), alloc); err != nil {
				return nil, err
			}
			bill.PaidTotal = bill.PaidTotal.Add(alloc)
			if bill.Outstanding().IsZero() {
				bill.Status = domain.DocPaid
			} else {
				bill.Status = domain.DocPartiallyPaid
			}
			bill.Lines = nil
			bill.LastUpdatedAt = now
			bill.LastUpdatedBy = userID
			updatedBills = append(updatedBills, bill)
		}
	}

	// Invoice payment: cash in, AR down. Bill payment: AP down, cash out.
	var postLines []dto.PostEntryLine
	if req.Kind == domain.KindInvoice {
		postLines = []dto.PostEntryLine{
			{AccountID: req.CashAccountID, Side: domain.DebitLine, Amount: req.Amount},
			{AccountID: req.SettlementAccountID, Side: domain.CreditLine, Amount: req.Amount},
		}
	} else {
		postLines = []dto.PostEntryLine{
			{AccountID: req.SettlementAccountID, Side: domain.DebitLine, Amount: req.Amount},
			{AccountID: req.CashAccountID, Side: domain.CreditLine, Amount: req.Amount},
		}
	}

	entry, err := s.ledgerSvc.PostEntry(ctx, companyID, dto.PostEntryRequest{
		EntryDate:      req.PaymentDate,
		Description:    fmt.Sprintf("Payment %s", paymentID[:8]),
		CurrencyCode:   req.CurrencyCode,
		IdempotencyKey: req.IdempotencyKey,
		Lines:          postLines,
		SourceType:     domain.SourcePayment,
		SourceID:       &paymentID,
	}, userID)
	if err != nil {
		return nil, err
	}

	allocations := make([]domain.PaymentAllocation, len(req.Allocations))
	for i, a := range req.Allocations {
		allocations[i] = domain.PaymentAllocation{
			AllocationID: uuid.NewString(),
			PaymentID:    paymentID,
			DocumentID:   a.DocumentID,
			Amount:       a.Amount,
		}
	}

	payment := domain.Payment{
		PaymentID:     paymentID,
		CompanyID:     companyID,
		Kind:          req.Kind,
		PaymentDate:   req.PaymentDate,
		CurrencyCode:  req.CurrencyCode,
		Amount:        req.Amount,
		CashAccountID: req.CashAccountID,
		EntryID:       &entry.EntryID,
		Allocations:   allocations,
		AuditFields:   audit,
	}

	if err := s.documentRepo.SavePayment(ctx, payment, updatedInvoices, updatedBills); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.documentRepo.FindPaymentByID(ctx, companyID, paymentID)
		}
		s.LogError(ctx, err, "Failed to save payment", slog.String("payment_id", paymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", paymentID),
		slog.String("entry_id", entry.EntryID),
		slog.String("company_id", companyID))
	return &payment, nil
}

// applyAllocation validates one allocation against a document's state.
func applyAllocation(kind domain.DocumentKind, docID string, status domain.DocumentStatus, outstanding, alloc decimal.Decimal) error {
	if status != domain.DocFinalized && status != domain.DocPartiallyPaid {
		return fmt.Errorf("%w: %s %s is %s and cannot accept payments", apperrors.ErrState, kind, docID, status)
	}
	if alloc.GreaterThan(outstanding) {
		return fmt.Errorf("%w: %s outstanding %s, allocated %s", ErrOverAllocation, docID, outstanding.String(), alloc.String())
	}
	return nil
}

// GetPaymentByID retrieves a payment with its allocations.
func (s *documentService) GetPaymentByID(ctx context.Context, companyID string, paymentID string, userID string) (*domain.Payment, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.documentRepo.FindPaymentByID(ctx, companyID, paymentID)
}

// ListPayments retrieves a paginated list of payments for a company.
func (s *documentService) ListPayments(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Payment, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.documentRepo.ListPayments(ctx, companyID, limit, offset)
}

// CreateCustomer persists a new customer.
func (s *documentService) CreateCustomer(ctx context.Context, companyID string, req dto.CreateCustomerRequest, userID string) (*domain.Customer, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}
	if req.DefaultARAccountID != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, companyID, *req.DefaultARAccountID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		CustomerID:         uuid.NewString(),
		CompanyID:          companyID,
		Name:               req.Name,
		DefaultARAccountID: req.DefaultARAccountID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.documentRepo.SaveCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListCustomers retrieves a paginated list of customers.
func (s *documentService) ListCustomers(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Customer, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.documentRepo.ListCustomers(ctx, companyID, limit, offset)
}

// CreateVendor persists a new vendor.
func (s *documentService) CreateVendor(ctx context.Context, companyID string, req dto.CreateVendorRequest, userID string) (*domain.Vendor, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}
	if req.DefaultAPAccountID != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, companyID, *req.DefaultAPAccountID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	vendor := domain.Vendor{
		VendorID:           uuid.NewString(),
		CompanyID:          companyID,
		Name:               req.Name,
		DefaultAPAccountID: req.DefaultAPAccountID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.documentRepo.SaveVendor(ctx, vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// ListVendors retrieves a paginated list of vendors.
func (s *documentService) ListVendors(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Vendor, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.documentRepo.ListVendors(ctx, companyID, limit, offset)
}
