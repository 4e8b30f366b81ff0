package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const bankTransactionColumns = `transaction_id, company_id, external_ref, value_date, amount, currency_code, description, status, matched_line_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxBankRepository struct {
	BaseRepository
}

// newPgxBankRepository creates a new repository for bank reconciliation data.
func newPgxBankRepository(pool *pgxpool.Pool) portsrepo.BankRepositoryWithTx {
	return &PgxBankRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxBankRepository implements portsrepo.BankRepositoryWithTx
var _ portsrepo.BankRepositoryWithTx = (*PgxBankRepository)(nil)

func scanBankTransaction(row pgx.Row) (*domain.BankTransaction, error) {
	var t domain.BankTransaction
	err := row.Scan(
		&t.TransactionID,
		&t.CompanyID,
		&t.ExternalRef,
		&t.ValueDate,
		&t.Amount,
		&t.CurrencyCode,
		&t.Description,
		&t.Status,
		&t.MatchedLineID,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveBankTransactions persists a batch of imported transactions. Rows whose
// external reference already exists for the company are skipped rather than
// rejected, so re-importing the same statement is safe. Returns the number of
// rows actually inserted.
func (r *PgxBankRepository) SaveBankTransactions(ctx context.Context, transactions []domain.BankTransaction) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO bank_transactions (` + bankTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (company_id, external_ref) DO NOTHING;
	`
	inserted := 0
	for _, t := range transactions {
		cmdTag, execErr := tx.Exec(ctx, query,
			t.TransactionID,
			t.CompanyID,
			t.ExternalRef,
			t.ValueDate,
			t.Amount,
			t.CurrencyCode,
			t.Description,
			t.Status,
			t.MatchedLineID,
			t.CreatedAt,
			t.CreatedBy,
			t.LastUpdatedAt,
			t.LastUpdatedBy,
		)
		if execErr != nil {
			return 0, apperrors.NewAppError(500, "failed to import bank transaction "+t.ExternalRef, execErr)
		}
		inserted += int(cmdTag.RowsAffected())
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// FindBankTransactionByID retrieves a bank transaction within a company.
func (r *PgxBankRepository) FindBankTransactionByID(ctx context.Context, companyID string, transactionID string) (*domain.BankTransaction, error) {
	query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions WHERE transaction_id = $1 AND company_id = $2;`

	t, err := scanBankTransaction(r.Pool.QueryRow(ctx, query, transactionID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find bank transaction "+transactionID, err)
	}
	return t, nil
}

// ListBankTransactions retrieves a paginated list of bank transactions,
// optionally filtered by match status.
func (r *PgxBankRepository) ListBankTransactions(ctx context.Context, companyID string, status *domain.MatchStatus, limit int, offset int) ([]domain.BankTransaction, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if status != nil {
		query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions WHERE company_id = $1 AND status = $2 ORDER BY value_date DESC, external_ref LIMIT $3 OFFSET $4;`
		rows, err = r.Pool.Query(ctx, query, companyID, *status, limit, offset)
	} else {
		query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions WHERE company_id = $1 ORDER BY value_date DESC, external_ref LIMIT $2 OFFSET $3;`
		rows, err = r.Pool.Query(ctx, query, companyID, limit, offset)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list bank transactions for company "+companyID, err)
	}
	defer rows.Close()

	transactions := []domain.BankTransaction{}
	for rows.Next() {
		t, scanErr := scanBankTransaction(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bank transaction row", scanErr)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bank transaction rows", err)
	}
	return transactions, nil
}

// ListCandidateLines retrieves posted, unmatched ledger lines whose base amount
// is within tolerance of the given amount and whose entry date falls within the
// day window around valueDate. Final ranking happens in the service layer.
func (r *PgxBankRepository) ListCandidateLines(ctx context.Context, companyID string, amount decimal.Decimal, tolerance decimal.Decimal, valueDate time.Time, windowDays int) ([]domain.MatchCandidate, error) {
	windowStart := valueDate.AddDate(0, 0, -windowDays)
	windowEnd := valueDate.AddDate(0, 0, windowDays)

	query := `
		SELECT l.line_id, l.entry_id, l.company_id, l.account_id, l.side, l.amount, l.base_amount, l.currency_code, l.notes,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, e.entry_date
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.company_id = $1
		  AND e.status = 'POSTED'
		  AND ABS(l.base_amount - $2) <= $3
		  AND e.entry_date BETWEEN $4 AND $5
		  AND NOT EXISTS (
		      SELECT 1 FROM bank_transactions b
		      WHERE b.company_id = l.company_id AND b.matched_line_id = l.line_id AND b.status = 'MATCHED'
		  )
		ORDER BY ABS(l.base_amount - $2), e.entry_date;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, amount, tolerance, windowStart, windowEnd)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query candidate lines", err)
	}
	defer rows.Close()

	candidates := []domain.MatchCandidate{}
	for rows.Next() {
		var c domain.MatchCandidate
		if scanErr := rows.Scan(
			&c.Line.LineID,
			&c.Line.EntryID,
			&c.Line.CompanyID,
			&c.Line.AccountID,
			&c.Line.Side,
			&c.Line.Amount,
			&c.Line.BaseAmount,
			&c.Line.CurrencyCode,
			&c.Line.Notes,
			&c.Line.CreatedAt,
			&c.Line.CreatedBy,
			&c.Line.LastUpdatedAt,
			&c.Line.LastUpdatedBy,
			&c.EntryDate,
		); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan candidate line row", scanErr)
		}
		c.AmountDiff = c.Line.BaseAmount.Sub(amount).Abs()
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating candidate line rows", err)
	}
	return candidates, nil
}

// IsLineMatched reports whether a ledger line is already matched to a bank transaction.
func (r *PgxBankRepository) IsLineMatched(ctx context.Context, companyID string, lineID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bank_transactions
			WHERE company_id = $1 AND matched_line_id = $2 AND status = 'MATCHED'
		);
	`
	var matched bool
	if err := r.Pool.QueryRow(ctx, query, companyID, lineID).Scan(&matched); err != nil {
		return false, apperrors.NewAppError(500, "failed to check match state of line "+lineID, err)
	}
	return matched, nil
}

// UpdateMatch records the match status and matched line of a bank transaction.
func (r *PgxBankRepository) UpdateMatch(ctx context.Context, companyID string, transactionID string, status domain.MatchStatus, matchedLineID *string, userID string, now time.Time) error {
	query := `
		UPDATE bank_transactions
		SET status = $3,
		    matched_line_id = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE transaction_id = $1 AND company_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, transactionID, companyID, status, matchedLineID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update match for bank transaction "+transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("bank transaction " + transactionID + " not found for update")
	}
	return nil
}
