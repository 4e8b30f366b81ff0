package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetAccountBalanceAsOf computes the signed balance of an account from posted lines up to a date.
	GetAccountBalanceAsOf(ctx context.Context, companyID string, accountID string, asOf time.Time) (decimal.Decimal, error)

	// GetTrialBalanceData retrieves per-account debit and credit totals as of a specific date.
	GetTrialBalanceData(ctx context.Context, companyID string, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetIncomeStatementData retrieves revenue and expense totals for a date range.
	GetIncomeStatementData(ctx context.Context, companyID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error)

	// GetBalanceSheetData retrieves asset, liability and equity balances as of a specific date.
	GetBalanceSheetData(ctx context.Context, companyID string, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error)

	// GetCashflowData retrieves inflow and outflow totals per cash account for a date range.
	GetCashflowData(ctx context.Context, companyID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error)
}
