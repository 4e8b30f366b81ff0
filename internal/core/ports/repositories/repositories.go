package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	CompanyRepo      CompanyRepositoryWithTx
	AccountRepo      AccountRepositoryWithTx
	CurrencyRepo     CurrencyRepositoryWithTx
	ExchangeRateRepo ExchangeRateRepositoryWithTx
	JournalRepo      JournalRepositoryWithTx
	PeriodRepo       PeriodRepositoryWithTx
	DocumentRepo     DocumentRepositoryWithTx
	AssetRepo        AssetRepositoryWithTx
	BankRepo         BankRepositoryWithTx
	ReportingRepo    ReportingRepository
}
