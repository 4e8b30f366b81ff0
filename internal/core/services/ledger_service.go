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
	"github.com/finbooks/finbooks_app/internal/utils/accounting"
)

var (
	ErrEntryMinLines    = errors.New("entry must have at least two lines")
	ErrEntryMinAccounts = errors.New("entry must affect at least two different accounts")
	ErrAccountNotLeaf   = errors.New("postings are only allowed on leaf accounts")
	ErrAccountInactive  = errors.New("account is inactive")
	ErrNoExchangeRate   = errors.New("no exchange rate to base currency")
	ErrAlreadyReversed  = errors.New("entry is already reversed")
)

// ledgerService is the posting engine. It validates, converts and atomically
// posts balanced journal entries, and produces reversal entries.
type ledgerService struct {
	BaseService
	journalRepo      portsrepo.JournalRepositoryWithTx
	accountRepo      portsrepo.AccountRepositoryFacade
	periodRepo       portsrepo.PeriodRepositoryFacade
	currencyRepo     portsrepo.CurrencyRepositoryFacade
	exchangeRateRepo portsrepo.ExchangeRateRepositoryFacade
	maxRetries       int
}

// NewLedgerService creates a new LedgerService. maxRetries bounds automatic
// retries of postings that hit a serialization conflict.
func NewLedgerService(
	journalRepo portsrepo.JournalRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryFacade,
	periodRepo portsrepo.PeriodRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	exchangeRateRepo portsrepo.ExchangeRateRepositoryFacade,
	authorizer portssvc.CompanyAuthorizerSvc,
	maxRetries int,
) portssvc.LedgerSvcFacade {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ledgerService{
		BaseService:      BaseService{CompanyAuthorizer: authorizer},
		journalRepo:      journalRepo,
		accountRepo:      accountRepo,
		periodRepo:       periodRepo,
		currencyRepo:     currencyRepo,
		exchangeRateRepo: exchangeRateRepo,
		maxRetries:       maxRetries,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// checkPeriodOpen rejects postings dated into a closed period. Dates not
// covered by any period are accepted.
func (s *ledgerService) checkPeriodOpen(ctx context.Context, companyID string, entryDate time.Time) error {
	period, err := s.periodRepo.FindPeriodForDate(ctx, companyID, entryDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to resolve period for date: %w", err)
	}
	if period.IsClosed() {
		return fmt.Errorf("%w: %s falls in closed period %s", apperrors.ErrPeriodClosed, entryDate.Format("2006-01-02"), period.Name)
	}
	return nil
}

// resolveRate returns the conversion rate from the entry currency to the
// company base currency and the ID of the rate snapshot used. The rate is 1
// and the ID nil when the entry is already in base currency.
func (s *ledgerService) resolveRate(ctx context.Context, tenant *domain.TenantContext, currencyCode string, onDate time.Time) (decimal.Decimal, *string, error) {
	if currencyCode == tenant.BaseCurrencyCode {
		return decimal.NewFromInt(1), nil, nil
	}
	rate, err := s.exchangeRateRepo.FindExchangeRate(ctx, currencyCode, tenant.BaseCurrencyCode, onDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil, fmt.Errorf("%w: %s to %s on %s", ErrNoExchangeRate, currencyCode, tenant.BaseCurrencyCode, onDate.Format("2006-01-02"))
		}
		return decimal.Zero, nil, fmt.Errorf("failed to resolve exchange rate: %w", err)
	}
	return rate.Rate, &rate.ExchangeRateID, nil
}

// validateAccounts loads the accounts of a posting and checks they are
// active leaves of this company. Returns account types keyed by ID.
func (s *ledgerService) validateAccounts(ctx context.Context, companyID string, accountIDs []string) (map[string]domain.AccountType, error) {
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, companyID, accountIDs)
	if err != nil {
		return nil, err
	}

	accountTypes := make(map[string]domain.AccountType, len(accountsMap))
	for id, acc := range accountsMap {
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s", ErrAccountInactive, id)
		}
		if !acc.IsLeaf {
			return nil, fmt.Errorf("%w: account %s", ErrAccountNotLeaf, id)
		}
		accountTypes[id] = acc.AccountType
	}
	return accountTypes, nil
}

// balanceChangesFor computes per-account signed balance deltas for a set of lines.
func balanceChangesFor(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal)
	for _, line := range lines {
		signed, err := accounting.SignedAmount(line, accountTypes[line.AccountID])
		if err != nil {
			return nil, err
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}
	return changes, nil
}

// uniqueStrings returns the distinct values of a string slice.
func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// PostEntry validates and atomically posts a balanced journal entry.
// A repeated idempotency key returns the originally posted entry instead of
// posting twice. Serialization conflicts are retried up to maxRetries times.
func (s *ledgerService) PostEntry(ctx context.Context, companyID string, req dto.PostEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	tenant, err := s.Authorize(ctx, creatorUserID, companyID, domain.RoleMember)
	if err != nil {
		return nil, err
	}

	if len(req.Lines) < 2 {
		return nil, ErrEntryMinLines
	}
	accountIDs := make([]string, 0, len(req.Lines))
	for _, l := range req.Lines {
		accountIDs = append(accountIDs, l.AccountID)
	}
	uniqueAccountIDs := uniqueStrings(accountIDs)
	if len(uniqueAccountIDs) < 2 {
		return nil, ErrEntryMinAccounts
	}

	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown currency %s", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate entry currency: %w", err)
	}
	baseCurrency, err := s.currencyRepo.FindCurrencyByCode(ctx, tenant.BaseCurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load base currency: %w", err)
	}

	if err := s.checkPeriodOpen(ctx, companyID, req.EntryDate); err != nil {
		return nil, err
	}

	accountTypes, err := s.validateAccounts(ctx, companyID, uniqueAccountIDs)
	if err != nil {
		return nil, err
	}

	rate, exchangeRateID, err := s.resolveRate(ctx, tenant, req.CurrencyCode, req.EntryDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lr := range req.Lines {
		if lr.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: line amount must be positive for account %s", apperrors.ErrValidation, lr.AccountID)
		}
		lines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			CompanyID:    companyID,
			AccountID:    lr.AccountID,
			Side:         lr.Side,
			Amount:       lr.Amount,
			CurrencyCode: req.CurrencyCode,
			Notes:        lr.Notes,
			AuditFields:  audit,
		}
	}

	if err := accounting.ConvertToBase(lines, rate, baseCurrency.Precision); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	balanceChanges, err := balanceChangesFor(lines, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
	}

	debits, _ := accounting.Sides(lines)

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = domain.SourceManual
	}

	entry := domain.JournalEntry{
		EntryID:        entryID,
		CompanyID:      companyID,
		EntryDate:      req.EntryDate,
		Description:    req.Description,
		CurrencyCode:   req.CurrencyCode,
		Status:         domain.Posted,
		IdempotencyKey: req.IdempotencyKey,
		SourceType:     sourceType,
		SourceID:       req.SourceID,
		ExchangeRateID: exchangeRateID,
		Amount:         debits,
		AuditFields:    audit,
	}

	for attempt := 0; ; attempt++ {
		err = s.journalRepo.SaveEntry(ctx, entry, lines, balanceChanges)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			// The key was used before; return the original posting.
			s.LogInfo(ctx, "Idempotent replay of posting",
				slog.String("company_id", companyID),
				slog.String("idempotency_key", req.IdempotencyKey))
			return s.findEntryWithLinesByKey(ctx, companyID, req.IdempotencyKey)
		}
		if apperrors.IsRetryable(err) && attempt < s.maxRetries {
			s.LogDebug(ctx, "Retrying posting after conflict",
				slog.String("entry_id", entryID),
				slog.Int("attempt", attempt+1))
			continue
		}
		s.LogError(ctx, err, "Failed to post entry", slog.String("entry_id", entryID))
		return nil, err
	}

	entry.Lines = lines
	return &entry, nil
}

func (s *ledgerService) findEntryWithLinesByKey(ctx context.Context, companyID string, idempotencyKey string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByIdempotencyKey(ctx, companyID, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch original entry for idempotency key: %w", err)
	}
	lines, err := s.journalRepo.FindLinesByEntryID(ctx, companyID, entry.EntryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

// ReverseEntry creates and posts the reversing entry for a posted entry.
// The reversal carries the original base amounts with flipped sides, so no
// re-conversion happens and the pair nets to zero exactly.
func (s *ledgerService) ReverseEntry(ctx context.Context, companyID string, entryID string, req dto.ReverseEntryRequest, userID string) (*domain.JournalEntry, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	original, err := s.journalRepo.FindEntryByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.Reversed {
		return nil, fmt.Errorf("%w: entry %s", ErrAlreadyReversed, entryID)
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}

	reversalDate := time.Now().UTC()
	if req.EntryDate != nil {
		reversalDate = *req.EntryDate
	}
	if err := s.checkPeriodOpen(ctx, companyID, reversalDate); err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(originalLines))
	for _, l := range originalLines {
		accountIDs = append(accountIDs, l.AccountID)
	}
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, companyID, uniqueStrings(accountIDs))
	if err != nil {
		return nil, err
	}
	accountTypes := make(map[string]domain.AccountType, len(accountsMap))
	for id, acc := range accountsMap {
		accountTypes[id] = acc.AccountType
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Reversal of %s", entryID)
	}

	reversalLines := make([]domain.JournalLine, len(originalLines))
	for i, l := range originalLines {
		reversalLines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      reversalID,
			CompanyID:    companyID,
			AccountID:    l.AccountID,
			Side:         l.Side.Opposite(),
			Amount:       l.Amount,
			BaseAmount:   l.BaseAmount,
			CurrencyCode: l.CurrencyCode,
			Notes:        l.Notes,
			AuditFields:  audit,
		}
	}

	balanceChanges, err := balanceChangesFor(reversalLines, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("internal error calculating reversal balance changes: %w", err)
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		CompanyID:       companyID,
		EntryDate:       reversalDate,
		Description:     description,
		CurrencyCode:    original.CurrencyCode,
		Status:          domain.Posted,
		IdempotencyKey:  entryID + ":reverse",
		SourceType:      original.SourceType,
		SourceID:        original.SourceID,
		OriginalEntryID: &entryID,
		ExchangeRateID:  original.ExchangeRateID,
		Amount:          original.Amount,
		AuditFields:     audit,
	}

	// The reversal posting and the REVERSED mark on the original commit
	// together, so a crash between the two cannot leave a half-reversed pair.
	for attempt := 0; ; attempt++ {
		err = s.journalRepo.SaveReversalEntry(ctx, reversal, reversalLines, balanceChanges)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			// A reversal for this entry was already posted.
			return s.findEntryWithLinesByKey(ctx, companyID, reversal.IdempotencyKey)
		}
		if apperrors.IsRetryable(err) && attempt < s.maxRetries {
			continue
		}
		s.LogError(ctx, err, "Failed to post reversal", slog.String("original_entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", reversalID),
		slog.String("company_id", companyID))

	reversal.Lines = reversalLines
	return &reversal, nil
}

// GetEntryByID retrieves a specific journal entry with its lines.
func (s *ledgerService) GetEntryByID(ctx context.Context, companyID string, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	if _, err := s.Authorize(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	entry, err := s.journalRepo.FindEntryByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := s.journalRepo.FindLinesByEntryID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of journal entries in a company.
func (s *ledgerService) ListEntries(ctx context.Context, companyID string, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	entries, nextToken, err := s.journalRepo.ListEntriesByCompany(ctx, companyID, params.Limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		return nil, err
	}

	entryIDs := make([]string, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.EntryID
	}
	linesMap, err := s.journalRepo.FindLinesByEntryIDs(ctx, companyID, entryIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		entries[i].Lines = linesMap[entries[i].EntryID]
		responses[i] = dto.ToEntryResponse(&entries[i])
	}
	return &dto.ListEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// ListLinesByAccount retrieves lines for a specific account.
func (s *ledgerService) ListLinesByAccount(ctx context.Context, companyID string, accountID string, userID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, companyID, accountID); err != nil {
		return nil, err
	}

	lines, nextToken, err := s.journalRepo.ListLinesByAccountID(ctx, companyID, accountID, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListLinesResponse{Lines: dto.ToLineResponses(lines), NextToken: nextToken}, nil
}
