package services

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// PeriodReaderSvc defines read operations for accounting period data
type PeriodReaderSvc interface {
	// GetPeriodByID retrieves a specific period.
	GetPeriodByID(ctx context.Context, companyID string, periodID string, userID string) (*domain.Period, error)

	// GetPeriodForDate retrieves the period containing the given date, if any.
	GetPeriodForDate(ctx context.Context, companyID string, date time.Time, userID string) (*domain.Period, error)

	// ListPeriods retrieves a paginated list of periods ordered by start date.
	ListPeriods(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Period, error)
}

// PeriodWriterSvc defines write operations for accounting period data
type PeriodWriterSvc interface {
	// CreatePeriod persists a new open period. Ranges may not overlap existing periods.
	CreatePeriod(ctx context.Context, companyID string, req dto.CreatePeriodRequest, userID string) (*domain.Period, error)

	// ClosePeriod transitions an open period to closed.
	ClosePeriod(ctx context.Context, companyID string, periodID string, userID string) (*domain.Period, error)

	// ReopenPeriod transitions a closed period back to open. Admin only.
	ReopenPeriod(ctx context.Context, companyID string, periodID string, userID string) (*domain.Period, error)
}

// PeriodSvcFacade combines all period-related service interfaces
type PeriodSvcFacade interface {
	PeriodReaderSvc
	PeriodWriterSvc
}
