package services

import (
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/platform/config"
)

// NewServiceContainer wires all application services. The company service
// doubles as the authorizer every tenant-scoped service checks against.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Company = NewCompanyService(repos.CompanyRepo, repos.CurrencyRepo)
	authorizer := container.Company

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency)
	container.Account = NewAccountService(repos.AccountRepo, repos.CurrencyRepo, repos.ReportingRepo, authorizer)
	container.Period = NewPeriodService(repos.PeriodRepo, authorizer)
	container.Ledger = NewLedgerService(repos.JournalRepo, repos.AccountRepo, repos.PeriodRepo, repos.CurrencyRepo, repos.ExchangeRateRepo, authorizer, cfg.PostRetryMax)
	container.Document = NewDocumentService(repos.DocumentRepo, repos.AccountRepo, repos.CurrencyRepo, container.Ledger, authorizer)
	container.Asset = NewAssetService(repos.AssetRepo, repos.PeriodRepo, repos.AccountRepo, repos.CurrencyRepo, repos.JournalRepo, container.Ledger, authorizer)
	container.Reconciliation = NewReconciliationService(repos.BankRepo, repos.JournalRepo, authorizer, cfg.ReconcileAmountTolerance, cfg.ReconcileWindowDays)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.DocumentRepo, authorizer)

	return container
}
