package pgsql

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for financial report queries.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// Point-in-time balances read the account_balances aggregates for the full
// months before asOf and scan journal lines only inside asOf's own month.
// The aggregates carry every entry, originals and reversals alike, so a
// reversed pair nets to zero without filtering on entry status.

// GetAccountBalanceAsOf computes the signed balance of an account as of a
// date. The sign follows the account's normal side, so a healthy asset or
// liability account both report positive.
func (r *PgxReportingRepository) GetAccountBalanceAsOf(ctx context.Context, companyID string, accountID string, asOf time.Time) (decimal.Decimal, error) {
	aggregateQuery := `
		SELECT COALESCE(SUM(
			CASE
				WHEN a.normal_side = 'DEBIT' THEN b.debit_total - b.credit_total
				ELSE b.credit_total - b.debit_total
			END
		), 0)
		FROM account_balances b
		JOIN accounts a ON b.account_id = a.account_id
		WHERE b.company_id = $1 AND b.account_id = $2 AND b.period_start < $3;
	`
	var settled decimal.Decimal
	if err := r.Pool.QueryRow(ctx, aggregateQuery, companyID, accountID, monthStart(asOf)).Scan(&settled); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to read balance aggregates for account "+accountID, err)
	}

	intraMonthQuery := `
		SELECT COALESCE(SUM(
			CASE
				WHEN l.side = a.normal_side THEN l.base_amount
				ELSE -l.base_amount
			END
		), 0)
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id
		WHERE l.company_id = $1 AND l.account_id = $2
		  AND e.entry_date >= $3 AND e.entry_date <= $4;
	`
	var intraMonth decimal.Decimal
	if err := r.Pool.QueryRow(ctx, intraMonthQuery, companyID, accountID, monthStart(asOf), asOf).Scan(&intraMonth); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to compute balance for account "+accountID, err)
	}
	return settled.Add(intraMonth), nil
}

// GetTrialBalanceData retrieves per-account debit and credit totals as of a
// specific date. Accounts with no postings are omitted.
func (r *PgxReportingRepository) GetTrialBalanceData(ctx context.Context, companyID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(t.debit), 0) AS debit,
		       COALESCE(SUM(t.credit), 0) AS credit
		FROM (
			SELECT account_id, debit_total AS debit, credit_total AS credit
			FROM account_balances
			WHERE company_id = $1 AND period_start < $2
			UNION ALL
			SELECT l.account_id,
			       CASE WHEN l.side = 'DEBIT' THEN l.base_amount ELSE 0 END,
			       CASE WHEN l.side = 'CREDIT' THEN l.base_amount ELSE 0 END
			FROM journal_lines l
			JOIN journal_entries e ON l.entry_id = e.entry_id
			WHERE l.company_id = $1 AND e.entry_date >= $2 AND e.entry_date <= $3
		) t
		JOIN accounts a ON t.account_id = a.account_id
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, monthStart(asOf), asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance data", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		if scanErr := rows.Scan(&row.AccountID, &row.AccountCode, &row.AccountName, &row.AccountType, &row.Debit, &row.Credit); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", scanErr)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}
	return result, nil
}

// netAmountsByTypeAsOf aggregates per-account net balances in base currency
// as of a date for accounts of a given type, combining the monthly aggregates
// with the current month's lines. Amounts on the account's normal side count
// positive.
func (r *PgxReportingRepository) netAmountsByTypeAsOf(ctx context.Context, companyID string, accountType domain.AccountType, asOf time.Time) ([]domain.AccountAmount, error) {
	query := `
		SELECT a.account_id, a.code, a.name,
		       COALESCE(SUM(
		           CASE
		               WHEN a.normal_side = 'DEBIT' THEN t.debit - t.credit
		               ELSE t.credit - t.debit
		           END
		       ), 0) AS net_amount
		FROM (
			SELECT account_id, debit_total AS debit, credit_total AS credit
			FROM account_balances
			WHERE company_id = $1 AND period_start < $3
			UNION ALL
			SELECT l.account_id,
			       CASE WHEN l.side = 'DEBIT' THEN l.base_amount ELSE 0 END,
			       CASE WHEN l.side = 'CREDIT' THEN l.base_amount ELSE 0 END
			FROM journal_lines l
			JOIN journal_entries e ON l.entry_id = e.entry_id
			WHERE l.company_id = $1 AND e.entry_date >= $3 AND e.entry_date <= $4
		) t
		JOIN accounts a ON t.account_id = a.account_id
		WHERE a.account_type = $2
		GROUP BY a.account_id, a.code, a.name
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, accountType, monthStart(asOf), asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query net balances for type "+string(accountType), err)
	}
	defer rows.Close()

	amounts := []domain.AccountAmount{}
	for rows.Next() {
		var a domain.AccountAmount
		if scanErr := rows.Scan(&a.AccountID, &a.Code, &a.Name, &a.NetAmount); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan net balance row", scanErr)
		}
		amounts = append(amounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating net balance rows", err)
	}
	return amounts, nil
}

// netAmountsByType aggregates per-account net movement in base currency over a
// date range for accounts of a given type. Originals and reversals both count,
// so a reversed pair inside the range nets to zero. Amounts on the account's
// normal side count positive.
func (r *PgxReportingRepository) netAmountsByType(ctx context.Context, companyID string, accountType domain.AccountType, from, to time.Time) ([]domain.AccountAmount, error) {
	query := `
		SELECT a.account_id, a.code, a.name,
		       COALESCE(SUM(
		           CASE
		               WHEN l.side = a.normal_side THEN l.base_amount
		               ELSE -l.base_amount
		           END
		       ), 0) AS net_amount
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id
		WHERE l.company_id = $1 AND a.account_type = $2
		  AND e.entry_date >= $3 AND e.entry_date <= $4
		GROUP BY a.account_id, a.code, a.name
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, accountType, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query net amounts for type "+string(accountType), err)
	}
	defer rows.Close()

	amounts := []domain.AccountAmount{}
	for rows.Next() {
		var a domain.AccountAmount
		if scanErr := rows.Scan(&a.AccountID, &a.Code, &a.Name, &a.NetAmount); scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan net amount row", scanErr)
		}
		amounts = append(amounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating net amount rows", err)
	}
	return amounts, nil
}

// GetIncomeStatementData retrieves revenue and expense totals for a date range.
func (r *PgxReportingRepository) GetIncomeStatementData(ctx context.Context, companyID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	revenue, err := r.netAmountsByType(ctx, companyID, domain.Revenue, from, to)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := r.netAmountsByType(ctx, companyID, domain.Expense, from, to)
	if err != nil {
		return nil, nil, err
	}
	return revenue, expenses, nil
}

// GetBalanceSheetData retrieves asset, liability and equity balances as of a
// specific date. Balance sheet accounts accumulate from the beginning of time,
// which is what the monthly aggregates hold.
func (r *PgxReportingRepository) GetBalanceSheetData(ctx context.Context, companyID string, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error) {
	assets, err := r.netAmountsByTypeAsOf(ctx, companyID, domain.Asset, asOf)
	if err != nil {
		return nil, nil, nil, err
	}
	liabilities, err := r.netAmountsByTypeAsOf(ctx, companyID, domain.Liability, asOf)
	if err != nil {
		return nil, nil, nil, err
	}
	equity, err := r.netAmountsByTypeAsOf(ctx, companyID, domain.Equity, asOf)
	if err != nil {
		return nil, nil, nil, err
	}
	return assets, liabilities, equity, nil
}

// GetCashflowData retrieves inflow and outflow totals per cash account for a
// date range. Cash accounts are asset accounts flagged is_cash.
func (r *PgxReportingRepository) GetCashflowData(ctx context.Context, companyID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	query := `
		SELECT a.account_id, a.code, a.name,
		       COALESCE(SUM(CASE WHEN l.side = 'DEBIT' THEN l.base_amount ELSE 0 END), 0) AS inflow,
		       COALESCE(SUM(CASE WHEN l.side = 'CREDIT' THEN l.base_amount ELSE 0 END), 0) AS outflow
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id
		WHERE l.company_id = $1 AND a.account_type = 'ASSET' AND a.is_cash = TRUE
		  AND e.entry_date >= $2 AND e.entry_date <= $3
		GROUP BY a.account_id, a.code, a.name
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query cashflow data", err)
	}
	defer rows.Close()

	inflows := []domain.AccountAmount{}
	outflows := []domain.AccountAmount{}
	for rows.Next() {
		var accountID, code, name string
		var inflow, outflow decimal.Decimal
		if scanErr := rows.Scan(&accountID, &code, &name, &inflow, &outflow); scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan cashflow row", scanErr)
		}
		inflows = append(inflows, domain.AccountAmount{AccountID: accountID, Code: code, Name: name, NetAmount: inflow})
		outflows = append(outflows, domain.AccountAmount{AccountID: accountID, Code: code, Name: name, NetAmount: outflow})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating cashflow rows", err)
	}
	return inflows, outflows, nil
}
