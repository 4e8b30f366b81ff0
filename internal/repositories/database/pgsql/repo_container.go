package pgsql

import (
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	companyRepo := newPgxCompanyRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo)
	periodRepo := newPgxPeriodRepository(dbPool)
	documentRepo := newPgxDocumentRepository(dbPool)
	assetRepo := newPgxAssetRepository(dbPool)
	bankRepo := newPgxBankRepository(dbPool)
	reportingRepo := newPgxReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CompanyRepo:      companyRepo,
		AccountRepo:      accountRepo,
		CurrencyRepo:     currencyRepo,
		ExchangeRateRepo: exchangeRateRepo,
		JournalRepo:      journalRepo,
		PeriodRepo:       periodRepo,
		DocumentRepo:     documentRepo,
		AssetRepo:        assetRepo,
		BankRepo:         bankRepo,
		ReportingRepo:    reportingRepo,
	}
}
