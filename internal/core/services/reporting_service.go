package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
)

// reportingService derives financial reports from posted ledger data and
// outstanding documents. Reports are computed on demand, never stored.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	documentRepo  portsrepo.DocumentRepositoryFacade
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, documentRepo portsrepo.DocumentRepositoryFacade, authorizer portssvc.CompanyAuthorizerSvc) portssvc.ReportingService {
	return &reportingService{
		BaseService:   BaseService{CompanyAuthorizer: authorizer},
		reportingRepo: reportingRepo,
		documentRepo:  documentRepo,
	}
}

// Ensure reportingService implements the portssvc.ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance generates a trial balance as of a date. For a consistent
// ledger the debit and credit totals always agree.
func (s *reportingService) TrialBalance(ctx context.Context, companyID string, asOf time.Time, userID string) (*domain.TrialBalanceReport, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, r := range rows {
		totalDebit = totalDebit.Add(r.Debit)
		totalCredit = totalCredit.Add(r.Credit)
	}
	return &domain.TrialBalanceReport{
		AsOf:        asOf,
		Rows:        rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
	}, nil
}

// IncomeStatement generates a profit and loss report for a date range.
func (s *reportingService) IncomeStatement(ctx context.Context, companyID string, from, to time.Time, userID string) (*domain.IncomeStatementReport, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	revenue, expenses, err := s.reportingRepo.GetIncomeStatementData(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}
	return &domain.IncomeStatementReport{
		From:      from,
		To:        to,
		Revenue:   revenue,
		Expenses:  expenses,
		NetIncome: sumAmounts(revenue).Sub(sumAmounts(expenses)),
	}, nil
}

// BalanceSheet generates a balance sheet as of a date.
func (s *reportingService) BalanceSheet(ctx context.Context, companyID string, asOf time.Time, userID string) (*domain.BalanceSheetReport, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	assets, liabilities, equity, err := s.reportingRepo.GetBalanceSheetData(ctx, companyID, asOf)
	if err != nil {
		return nil, err
	}
	return &domain.BalanceSheetReport{
		AsOf:             asOf,
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		TotalAssets:      sumAmounts(assets),
		TotalLiabilities: sumAmounts(liabilities),
		TotalEquity:      sumAmounts(equity),
	}, nil
}

// Cashflow summarizes movement through cash-flagged accounts for a date range.
func (s *reportingService) Cashflow(ctx context.Context, companyID string, from, to time.Time, userID string) (*domain.CashflowReport, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	inflows, outflows, err := s.reportingRepo.GetCashflowData(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	// Net per account, inflow minus outflow. The slices are parallel by account.
	outByAccount := make(map[string]decimal.Decimal, len(outflows))
	for _, o := range outflows {
		outByAccount[o.AccountID] = o.NetAmount
	}
	byAccount := make([]domain.AccountAmount, len(inflows))
	for i, in := range inflows {
		byAccount[i] = domain.AccountAmount{
			AccountID: in.AccountID,
			Code:      in.Code,
			Name:      in.Name,
			NetAmount: in.NetAmount.Sub(outByAccount[in.AccountID]),
		}
	}

	totalIn := sumAmounts(inflows)
	totalOut := sumAmounts(outflows)
	return &domain.CashflowReport{
		From:      from,
		To:        to,
		Inflows:   totalIn,
		Outflows:  totalOut,
		NetChange: totalIn.Sub(totalOut),
		ByAccount: byAccount,
	}, nil
}

// ARAging buckets outstanding invoices by days overdue as of a date.
func (s *reportingService) ARAging(ctx context.Context, companyID string, asOf time.Time, boundaries []int, userID string) (*domain.AgingReport, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	boundaries, err := resolveBoundaries(boundaries)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.ListOutstandingInvoices(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return buildAgingReport(domain.KindInvoice, asOf, boundaries, docs), nil
}

// APAging buckets outstanding bills by days overdue as of a date.
func (s *reportingService) APAging(ctx context.Context, companyID string, asOf time.Time, boundaries []int, userID string) (*domain.AgingReport, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	boundaries, err := resolveBoundaries(boundaries)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.ListOutstandingBills(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return buildAgingReport(domain.KindBill, asOf, boundaries, docs), nil
}

// resolveBoundaries validates caller-supplied bucket boundaries, falling back
// to the 30/60/90 defaults when none are given. Boundaries must be strictly
// increasing positive day counts.
func resolveBoundaries(boundaries []int) ([]int, error) {
	if len(boundaries) == 0 {
		return domain.DefaultAgingBoundaries, nil
	}
	prev := 0
	for _, b := range boundaries {
		if b <= prev {
			return nil, fmt.Errorf("%w: aging boundaries must be strictly increasing positive day counts", apperrors.ErrValidation)
		}
		prev = b
	}
	return boundaries, nil
}

// emptyBuckets builds the bucket skeleton from the boundaries: with the
// defaults, 0-30, 31-60, 61-90 and an open-ended 90+.
func emptyBuckets(boundaries []int) []domain.AgingBucket {
	buckets := make([]domain.AgingBucket, 0, len(boundaries)+1)
	from := 0
	for _, b := range boundaries {
		buckets = append(buckets, domain.AgingBucket{
			Label:   fmt.Sprintf("%d-%d", from, b),
			FromDay: from,
			ToDay:   b,
			Amount:  decimal.Zero,
		})
		from = b + 1
	}
	buckets = append(buckets, domain.AgingBucket{
		Label:   fmt.Sprintf("%d+", boundaries[len(boundaries)-1]),
		FromDay: from,
		ToDay:   -1,
		Amount:  decimal.Zero,
	})
	return buckets
}

// bucketIndex places a days-past-due value into its bucket. Documents not yet
// due land in the first bucket.
func bucketIndex(buckets []domain.AgingBucket, daysPastDue int) int {
	if daysPastDue < 0 {
		daysPastDue = 0
	}
	for i, b := range buckets {
		if b.ToDay == -1 || daysPastDue <= b.ToDay {
			return i
		}
	}
	return len(buckets) - 1
}

// buildAgingReport groups outstanding documents per counterparty into
// days-past-due buckets.
func buildAgingReport(kind domain.DocumentKind, asOf time.Time, boundaries []int, docs []domain.OutstandingDocument) *domain.AgingReport {
	type rowAccum struct {
		name    string
		buckets []domain.AgingBucket
		total   decimal.Decimal
	}

	rowsByParty := make(map[string]*rowAccum)
	order := make([]string, 0)
	grandTotal := decimal.Zero

	for _, doc := range docs {
		row, ok := rowsByParty[doc.CounterpartyID]
		if !ok {
			row = &rowAccum{name: doc.CounterpartyName, buckets: emptyBuckets(boundaries), total: decimal.Zero}
			rowsByParty[doc.CounterpartyID] = row
			order = append(order, doc.CounterpartyID)
		}

		daysPastDue := int(asOf.Sub(doc.DueDate).Hours() / 24)
		idx := bucketIndex(row.buckets, daysPastDue)
		row.buckets[idx].Amount = row.buckets[idx].Amount.Add(doc.Outstanding)
		row.total = row.total.Add(doc.Outstanding)
		grandTotal = grandTotal.Add(doc.Outstanding)
	}

	sort.Slice(order, func(i, j int) bool {
		return rowsByParty[order[i]].name < rowsByParty[order[j]].name
	})

	rows := make([]domain.AgingRow, len(order))
	for i, partyID := range order {
		row := rowsByParty[partyID]
		rows[i] = domain.AgingRow{
			CounterpartyID:   partyID,
			CounterpartyName: row.name,
			Buckets:          row.buckets,
			Total:            row.total,
		}
	}

	return &domain.AgingReport{Kind: kind, AsOf: asOf, Rows: rows, Total: grandTotal}
}

// sumAmounts totals the net amounts of a report section.
func sumAmounts(amounts []domain.AccountAmount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.NetAmount)
	}
	return total
}
