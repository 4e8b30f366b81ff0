package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// PeriodReader defines read operations for accounting period data
type PeriodReader interface {
	// FindPeriodByID retrieves a specific period by its unique identifier.
	FindPeriodByID(ctx context.Context, companyID string, periodID string) (*domain.Period, error)

	// FindPeriodForDate retrieves the period whose date range contains the given date.
	FindPeriodForDate(ctx context.Context, companyID string, date time.Time) (*domain.Period, error)

	// FindOverlappingPeriod retrieves any period whose range overlaps [startDate, endDate].
	FindOverlappingPeriod(ctx context.Context, companyID string, startDate, endDate time.Time) (*domain.Period, error)

	// ListPeriods retrieves a paginated list of periods for a given company ordered by start date.
	ListPeriods(ctx context.Context, companyID string, limit int, offset int) ([]domain.Period, error)
}

// PeriodWriter defines write operations for accounting period data
type PeriodWriter interface {
	// SavePeriod persists a new period.
	SavePeriod(ctx context.Context, period domain.Period) error

	// UpdatePeriodStatus transitions a period between open and closed.
	UpdatePeriodStatus(ctx context.Context, companyID string, periodID string, status domain.PeriodStatus, userID string, now time.Time) error
}

// PeriodRepositoryFacade combines all period-related repository interfaces
// This is a facade for clients that need access to all operations
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}

// PeriodRepositoryWithTx extends PeriodRepositoryFacade with transaction capabilities
type PeriodRepositoryWithTx interface {
	PeriodRepositoryFacade
	TransactionManager
}
