package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
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
	ErrLineAlreadyMatched     = errors.New("ledger line is already matched to another bank transaction")
	ErrAmountOutsideTolerance = errors.New("line amount differs from the bank transaction beyond the tolerance")
)

// reconciliationService matches imported bank statement rows against posted
// journal lines. Matching never mutates the ledger; it only records which
// line explains which statement row.
type reconciliationService struct {
	BaseService
	bankRepo    portsrepo.BankRepositoryWithTx
	journalRepo portsrepo.JournalRepositoryWithTx
	tolerance   decimal.Decimal
	windowDays  int
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	bankRepo portsrepo.BankRepositoryWithTx,
	journalRepo portsrepo.JournalRepositoryWithTx,
	authorizer portssvc.CompanyAuthorizerSvc,
	tolerance decimal.Decimal,
	windowDays int,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		BaseService: BaseService{CompanyAuthorizer: authorizer},
		bankRepo:    bankRepo,
		journalRepo: journalRepo,
		tolerance:   tolerance,
		windowDays:  windowDays,
	}
}

// Ensure reconciliationService implements the portssvc.ReconciliationSvcFacade interface
var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// ImportBankTransactions ingests a batch of statement rows. Rows whose
// external reference already exists for the company are counted as skipped.
func (s *reconciliationService) ImportBankTransactions(ctx context.Context, companyID string, req dto.ImportBankTransactionsRequest, userID string) (*dto.ImportBankTransactionsResponse, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Transactions))
	now := time.Now().UTC()
	transactions := make([]domain.BankTransaction, 0, len(req.Transactions))
	for _, row := range req.Transactions {
		if _, dup := seen[row.ExternalRef]; dup {
			continue
		}
		seen[row.ExternalRef] = struct{}{}
		transactions = append(transactions, domain.BankTransaction{
			TransactionID: uuid.NewString(),
			CompanyID:     companyID,
			ExternalRef:   row.ExternalRef,
			ValueDate:     row.ValueDate,
			Amount:        row.Amount,
			CurrencyCode:  row.CurrencyCode,
			Description:   row.Description,
			Status:        domain.Unmatched,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		})
	}

	inserted, err := s.bankRepo.SaveBankTransactions(ctx, transactions)
	if err != nil {
		s.LogError(ctx, err, "Failed to import bank transactions", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Bank transactions imported",
		slog.String("company_id", companyID),
		slog.Int("imported", inserted),
		slog.Int("skipped", len(req.Transactions)-inserted))
	return &dto.ImportBankTransactionsResponse{
		Imported: inserted,
		Skipped:  len(req.Transactions) - inserted,
	}, nil
}

// GetBankTransactionByID retrieves a specific imported bank transaction.
func (s *reconciliationService) GetBankTransactionByID(ctx context.Context, companyID string, transactionID string, userID string) (*domain.BankTransaction, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.bankRepo.FindBankTransactionByID(ctx, companyID, transactionID)
}

// ListBankTransactions retrieves a paginated list of bank transactions.
func (s *reconciliationService) ListBankTransactions(ctx context.Context, companyID string, userID string, params dto.ListBankTransactionsParams) ([]domain.BankTransaction, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	var status *domain.MatchStatus
	if params.Status != nil {
		st := domain.MatchStatus(*params.Status)
		if st != domain.Unmatched && st != domain.Matched && st != domain.Ignored {
			return nil, fmt.Errorf("%w: unknown match status %q", apperrors.ErrValidation, *params.Status)
		}
		status = &st
	}
	return s.bankRepo.ListBankTransactions(ctx, companyID, status, params.Limit, params.Offset)
}

// SuggestMatches returns candidate ledger lines for a bank transaction, ranked
// by amount closeness, then by date proximity to the statement's value date.
func (s *reconciliationService) SuggestMatches(ctx context.Context, companyID string, transactionID string, userID string, params dto.SuggestMatchesParams) ([]domain.MatchCandidate, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	txn, err := s.bankRepo.FindBankTransactionByID(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}

	windowDays := params.WindowDays
	if windowDays <= 0 {
		windowDays = s.windowDays
	}

	candidates, err := s.bankRepo.ListCandidateLines(ctx, companyID, txn.Amount.Abs(), s.tolerance, txn.ValueDate, windowDays)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidates[i].DateDiff = daysBetween(candidates[i].EntryDate, txn.ValueDate)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].AmountDiff.Equal(candidates[j].AmountDiff) {
			return candidates[i].AmountDiff.LessThan(candidates[j].AmountDiff)
		}
		return candidates[i].DateDiff < candidates[j].DateDiff
	})

	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// MatchTransaction links an unmatched bank transaction to a posted ledger line.
// The line's base amount must agree with the statement amount within tolerance.
func (s *reconciliationService) MatchTransaction(ctx context.Context, companyID string, transactionID string, req dto.MatchTransactionRequest, userID string) (*domain.BankTransaction, error) {
	tenant, err := s.Authorize(ctx, userID, companyID, domain.RoleMember)
	if err != nil {
		return nil, err
	}

	txn, err := s.bankRepo.FindBankTransactionByID(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.Unmatched {
		return nil, fmt.Errorf("%w: transaction is %s, only unmatched transactions can be matched", apperrors.ErrState, txn.Status)
	}
	// Ledger line base amounts are in the company base currency, so a
	// statement row in any other currency cannot be compared directly.
	if txn.CurrencyCode != tenant.BaseCurrencyCode {
		return nil, fmt.Errorf("%w: statement currency %s does not match base currency %s", apperrors.ErrValidation, txn.CurrencyCode, tenant.BaseCurrencyCode)
	}

	line, err := s.journalRepo.FindLineByID(ctx, companyID, req.LineID)
	if err != nil {
		return nil, err
	}

	matched, err := s.bankRepo.IsLineMatched(ctx, companyID, req.LineID)
	if err != nil {
		return nil, err
	}
	if matched {
		return nil, fmt.Errorf("%w: line %s", ErrLineAlreadyMatched, req.LineID)
	}

	diff := line.BaseAmount.Sub(txn.Amount.Abs()).Abs()
	if diff.GreaterThan(s.tolerance) {
		return nil, fmt.Errorf("%w: line %s, transaction %s", ErrAmountOutsideTolerance, line.BaseAmount.String(), txn.Amount.String())
	}

	now := time.Now().UTC()
	if err := s.bankRepo.UpdateMatch(ctx, companyID, transactionID, domain.Matched, &req.LineID, userID, now); err != nil {
		return nil, err
	}
	txn.Status = domain.Matched
	txn.MatchedLineID = &req.LineID
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	s.LogInfo(ctx, "Bank transaction matched",
		slog.String("transaction_id", transactionID),
		slog.String("line_id", req.LineID),
		slog.String("company_id", companyID))
	return txn, nil
}

// UnmatchTransaction clears a previous match.
func (s *reconciliationService) UnmatchTransaction(ctx context.Context, companyID string, transactionID string, userID string) (*domain.BankTransaction, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	txn, err := s.bankRepo.FindBankTransactionByID(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.Matched {
		return nil, fmt.Errorf("%w: transaction is %s, only matched transactions can be unmatched", apperrors.ErrState, txn.Status)
	}

	now := time.Now().UTC()
	if err := s.bankRepo.UpdateMatch(ctx, companyID, transactionID, domain.Unmatched, nil, userID, now); err != nil {
		return nil, err
	}
	txn.Status = domain.Unmatched
	txn.MatchedLineID = nil
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID
	return txn, nil
}

// IgnoreTransaction marks an unmatched bank transaction as ignored.
// Ignoring an already-ignored transaction is a no-op.
func (s *reconciliationService) IgnoreTransaction(ctx context.Context, companyID string, transactionID string, userID string) (*domain.BankTransaction, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	txn, err := s.bankRepo.FindBankTransactionByID(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status == domain.Ignored {
		return txn, nil
	}
	if txn.Status != domain.Unmatched {
		return nil, fmt.Errorf("%w: transaction is %s, only unmatched transactions can be ignored", apperrors.ErrState, txn.Status)
	}

	now := time.Now().UTC()
	if err := s.bankRepo.UpdateMatch(ctx, companyID, transactionID, domain.Ignored, nil, userID, now); err != nil {
		return nil, err
	}
	txn.Status = domain.Ignored
	txn.MatchedLineID = nil
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID
	return txn, nil
}

// daysBetween is the absolute whole-day distance between two timestamps.
func daysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
