package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_app/internal/models"
	"github.com/finbooks/finbooks_app/internal/utils/mapping"
	"github.com/finbooks/finbooks_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const entryColumns = `entry_id, company_id, entry_date, description, currency_code, status, idempotency_key, source_type, source_id, original_entry_id, reversing_entry_id, exchange_rate_id, amount, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, company_id, account_id, side, amount, base_amount, currency_code, notes, created_at, created_by, last_updated_at, last_updated_by`

// idempotencyConstraint is the unique index on (company_id, idempotency_key).
const idempotencyConstraint = "journal_entries_company_idempotency_key"

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal entry and line data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.CompanyID,
		&m.EntryDate,
		&m.Description,
		&m.CurrencyCode,
		&m.Status,
		&m.IdempotencyKey,
		&m.SourceType,
		&m.SourceID,
		&m.OriginalEntryID,
		&m.ReversingEntryID,
		&m.ExchangeRateID,
		&m.Amount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanLine(row pgx.Row) (*models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.CompanyID,
		&m.AccountID,
		&m.Side,
		&m.Amount,
		&m.BaseAmount,
		&m.CurrencyCode,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveEntry persists a journal entry, updates account balances, and saves the
// associated lines within a single DB transaction. A repeated idempotency key
// surfaces as ErrDuplicate so the caller can fetch the original entry instead.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored if the transaction commits successfully

	if err := r.saveEntryInTx(ctx, tx, entry, lines, balanceChanges); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: committing entry %s", apperrors.ErrConflict, entry.EntryID)
		}
		return err
	}
	return nil
}

// SaveReversalEntry persists a reversal entry and marks its original entry
// REVERSED in the same transaction, so the ledger never shows a reversal
// without its original being flagged, or the other way round.
func (r *PgxJournalRepository) SaveReversalEntry(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	if reversal.OriginalEntryID == nil {
		return fmt.Errorf("%w: reversal entry %s has no original entry", apperrors.ErrValidation, reversal.EntryID)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.saveEntryInTx(ctx, tx, reversal, lines, balanceChanges); err != nil {
		return err
	}

	updateQuery := `
		UPDATE journal_entries
		SET status = $3,
		    reversing_entry_id = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE entry_id = $1 AND company_id = $2;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery,
		*reversal.OriginalEntryID,
		reversal.CompanyID,
		domain.Reversed,
		reversal.EntryID,
		reversal.CreatedAt,
		reversal.CreatedBy,
	)
	if err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: marking entry %s reversed", apperrors.ErrConflict, *reversal.OriginalEntryID)
		}
		return apperrors.NewAppError(500, "failed to mark entry "+*reversal.OriginalEntryID+" reversed", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("entry " + *reversal.OriginalEntryID + " not found for reversal")
	}

	if err := r.Commit(ctx, tx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: committing reversal %s", apperrors.ErrConflict, reversal.EntryID)
		}
		return err
	}
	return nil
}

// saveEntryInTx runs the entry insert, account locking, balance updates, line
// batch, and per-period aggregate upserts inside the caller's transaction.
func (r *PgxJournalRepository) saveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal) error {
	now := entry.CreatedAt
	userID := entry.CreatedBy

	// 1. Insert the entry header.
	modelEntry := mapping.ToModelJournalEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := tx.Exec(ctx, entryQuery,
		modelEntry.EntryID,
		modelEntry.CompanyID,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.CurrencyCode,
		modelEntry.Status,
		modelEntry.IdempotencyKey,
		modelEntry.SourceType,
		modelEntry.SourceID,
		modelEntry.OriginalEntryID,
		modelEntry.ReversingEntryID,
		modelEntry.ExchangeRateID,
		modelEntry.Amount,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, idempotencyConstraint) {
			return fmt.Errorf("%w: idempotency key %q already used", apperrors.ErrDuplicate, modelEntry.IdempotencyKey)
		}
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: posting entry %s", apperrors.ErrConflict, modelEntry.EntryID)
		}
		return apperrors.NewAppError(500, "failed to insert journal entry "+modelEntry.EntryID, err)
	}

	// 2. Lock the affected accounts in a stable order.
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	sort.Strings(accountIDs)

	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, entry.CompanyID, accountIDs); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: locking accounts for entry %s", apperrors.ErrConflict, modelEntry.EntryID)
		}
		return err
	}

	// 3. Apply balance changes.
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return err
	}

	// 4. Insert the lines as a batch.
	lineQuery := `
		INSERT INTO journal_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		modelLine := mapping.ToModelJournalLine(line)
		modelLine.CreatedAt = now
		modelLine.CreatedBy = userID
		modelLine.LastUpdatedAt = now
		modelLine.LastUpdatedBy = userID

		batch.Queue(lineQuery,
			modelLine.LineID,
			modelLine.EntryID,
			modelLine.CompanyID,
			modelLine.AccountID,
			modelLine.Side,
			modelLine.Amount,
			modelLine.BaseAmount,
			modelLine.CurrencyCode,
			modelLine.Notes,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line batch for entry "+modelEntry.EntryID, err)
	}

	// 5. Fold the lines into the per-period balance aggregates.
	if err := r.upsertAccountBalancesInTx(ctx, tx, entry, lines, now); err != nil {
		return err
	}
	return nil
}

// upsertAccountBalancesInTx adds an entry's line totals to the
// account_balances rows for the entry's calendar month. Reversal entries go
// through the same path, so an original plus its reversal nets to zero in the
// aggregate without any status bookkeeping.
func (r *PgxJournalRepository) upsertAccountBalancesInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, now time.Time) error {
	type balanceDelta struct {
		debit  decimal.Decimal
		credit decimal.Decimal
	}
	deltas := make(map[string]*balanceDelta, len(lines))
	for _, line := range lines {
		d, ok := deltas[line.AccountID]
		if !ok {
			d = &balanceDelta{debit: decimal.Zero, credit: decimal.Zero}
			deltas[line.AccountID] = d
		}
		if line.Side == domain.DebitLine {
			d.debit = d.debit.Add(line.BaseAmount)
		} else {
			d.credit = d.credit.Add(line.BaseAmount)
		}
	}

	accountIDs := make([]string, 0, len(deltas))
	for accID := range deltas {
		accountIDs = append(accountIDs, accID)
	}
	sort.Strings(accountIDs)

	periodStart := monthStart(entry.EntryDate)
	upsertQuery := `
		INSERT INTO account_balances (company_id, account_id, period_start, debit_total, credit_total, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, account_id, period_start)
		DO UPDATE SET debit_total = account_balances.debit_total + EXCLUDED.debit_total,
		              credit_total = account_balances.credit_total + EXCLUDED.credit_total,
		              last_updated_at = EXCLUDED.last_updated_at;
	`
	batch := &pgx.Batch{}
	for _, accID := range accountIDs {
		d := deltas[accID]
		batch.Queue(upsertQuery, entry.CompanyID, accID, periodStart, d.debit, d.credit, now)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: updating balance aggregates for entry %s", apperrors.ErrConflict, entry.EntryID)
		}
		return apperrors.NewAppError(500, "failed to update balance aggregates for entry "+entry.EntryID, err)
	}
	return nil
}

// monthStart truncates a date to the first day of its calendar month in UTC.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FindEntryByID retrieves a journal entry by its ID within a company.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, companyID string, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 AND company_id = $2;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by ID "+entryID, err)
	}

	entry := mapping.ToDomainJournalEntry(*m)
	return &entry, nil
}

// FindEntryByIdempotencyKey retrieves the entry previously posted with the given key.
func (r *PgxJournalRepository) FindEntryByIdempotencyKey(ctx context.Context, companyID string, idempotencyKey string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE company_id = $1 AND idempotency_key = $2;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, companyID, idempotencyKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by idempotency key", err)
	}

	entry := mapping.ToDomainJournalEntry(*m)
	return &entry, nil
}

// ListEntriesByCompany retrieves a paginated list of entries using token-based pagination.
func (r *PgxJournalRepository) ListEntriesByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + entryColumns + ` FROM journal_entries`

	filterClause := `WHERE company_id = $1`
	if !includeReversals {
		filterClause += ` AND status != 'REVERSED' AND original_entry_id IS NULL`
	}

	// Ordering must be stable for cursor pagination.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{companyID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (entry_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + filterClause + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries for company "+companyID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row for company "+companyID, scanErr)
		}
		modelEntries = append(modelEntries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows for company "+companyID, err)
	}

	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		lastEntry := modelEntries[limit-1]
		newToken := pagination.EncodeToken(lastEntry.EntryDate, lastEntry.CreatedAt)
		nextTokenVal = &newToken
		results = modelEntries[:limit]
	}

	entries := make([]domain.JournalEntry, len(results))
	for i, m := range results {
		entries[i] = mapping.ToDomainJournalEntry(m)
	}
	return entries, nextTokenVal, nil
}

// FindLinesByEntryID retrieves all lines associated with a single entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, companyID string, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 AND company_id = $2 ORDER BY line_id;`

	rows, err := r.Pool.Query(ctx, query, entryID, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		m, scanErr := scanLine(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, scanErr)
		}
		lines = append(lines, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}

	return mapping.ToDomainJournalLineSlice(lines), nil
}

// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
func (r *PgxJournalRepository) FindLinesByEntryIDs(ctx context.Context, companyID string, entryIDs []string) (map[string][]domain.JournalLine, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.JournalLine{}, nil
	}

	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE company_id = $1 AND entry_id = ANY($2) ORDER BY entry_id, line_id;`

	rows, err := r.Pool.Query(ctx, query, companyID, entryIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry IDs", err)
	}
	defer rows.Close()

	linesMap := make(map[string][]domain.JournalLine)
	for rows.Next() {
		m, scanErr := scanLine(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row during batch fetch", scanErr)
		}
		line := mapping.ToDomainJournalLine(*m)
		linesMap[line.EntryID] = append(linesMap[line.EntryID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows during batch fetch", err)
	}

	// Ensure even entries with no lines have an entry (empty slice).
	for _, id := range entryIDs {
		if _, exists := linesMap[id]; !exists {
			linesMap[id] = []domain.JournalLine{}
		}
	}
	return linesMap, nil
}

// FindLineByID retrieves a single journal line.
func (r *PgxJournalRepository) FindLineByID(ctx context.Context, companyID string, lineID string) (*domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE line_id = $1 AND company_id = $2;`

	m, err := scanLine(r.Pool.QueryRow(ctx, query, lineID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find line by ID "+lineID, err)
	}

	line := mapping.ToDomainJournalLine(*m)
	return &line, nil
}

// ListLinesByAccountID retrieves a paginated list of lines for a specific account
// using token-based pagination over (entry_date, created_at).
func (r *PgxJournalRepository) ListLinesByAccountID(ctx context.Context, companyID string, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT l.line_id, l.entry_id, l.company_id, l.account_id, l.side, l.amount, l.base_amount, l.currency_code, l.notes,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, e.entry_date
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1 AND l.company_id = $2 AND e.status = 'POSTED'
	`
	orderByClause := `ORDER BY e.entry_date DESC, l.created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID, companyID}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (e.entry_date, l.created_at) < ($3, $4)`
		args = append(args, lastEntryDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query lines for account "+accountID, err)
	}
	defer rows.Close()

	type lineWithDate struct {
		line      models.JournalLine
		entryDate time.Time
	}
	scanned := make([]lineWithDate, 0, fetchLimit)
	for rows.Next() {
		var m models.JournalLine
		var entryDate time.Time
		scanErr := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.CompanyID,
			&m.AccountID,
			&m.Side,
			&m.Amount,
			&m.BaseAmount,
			&m.CurrencyCode,
			&m.Notes,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&entryDate,
		)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan line row for account "+accountID, scanErr)
		}
		scanned = append(scanned, lineWithDate{line: m, entryDate: entryDate})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating line rows for account "+accountID, err)
	}

	var nextTokenVal *string
	results := scanned
	if len(scanned) > limit {
		last := scanned[limit-1]
		token := pagination.EncodeToken(last.entryDate, last.line.CreatedAt)
		nextTokenVal = &token
		results = scanned[:limit]
	}

	lines := make([]domain.JournalLine, len(results))
	for i, s := range results {
		lines[i] = mapping.ToDomainJournalLine(s.line)
	}
	return lines, nextTokenVal, nil
}
