package services

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance generates a trial balance report as of a specific date.
	TrialBalance(ctx context.Context, companyID string, asOf time.Time, userID string) (*domain.TrialBalanceReport, error)

	// IncomeStatement generates a profit and loss report for a date range.
	IncomeStatement(ctx context.Context, companyID string, from, to time.Time, userID string) (*domain.IncomeStatementReport, error)

	// BalanceSheet generates a balance sheet report as of a specific date.
	BalanceSheet(ctx context.Context, companyID string, asOf time.Time, userID string) (*domain.BalanceSheetReport, error)

	// Cashflow summarizes inflows and outflows through cash accounts for a date range.
	Cashflow(ctx context.Context, companyID string, from, to time.Time, userID string) (*domain.CashflowReport, error)

	// ARAging buckets outstanding invoices by days overdue as of a date.
	// Empty boundaries fall back to the default 30/60/90 buckets.
	ARAging(ctx context.Context, companyID string, asOf time.Time, boundaries []int, userID string) (*domain.AgingReport, error)

	// APAging buckets outstanding bills by days overdue as of a date.
	APAging(ctx context.Context, companyID string, asOf time.Time, boundaries []int, userID string) (*domain.AgingReport, error)
}
