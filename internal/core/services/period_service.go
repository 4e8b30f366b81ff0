package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

var ErrPeriodOverlap = errors.New("period overlaps an existing period")

// periodService provides accounting period lifecycle operations.
type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepositoryWithTx
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryWithTx, authorizer portssvc.CompanyAuthorizerSvc) portssvc.PeriodSvcFacade {
	return &periodService{
		BaseService: BaseService{CompanyAuthorizer: authorizer},
		periodRepo:  periodRepo,
	}
}

// Ensure periodService implements the portssvc.PeriodSvcFacade interface
var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// CreatePeriod persists a new open period after checking range validity and overlap.
func (s *periodService) CreatePeriod(ctx context.Context, companyID string, req dto.CreatePeriodRequest, userID string) (*domain.Period, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: period end date precedes start date", apperrors.ErrValidation)
	}

	existing, err := s.periodRepo.FindOverlappingPeriod(ctx, companyID, req.StartDate, req.EndDate)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check period overlap: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: overlaps period %s", ErrPeriodOverlap, existing.Name)
	}

	now := time.Now().UTC()
	period := domain.Period{
		PeriodID:  uuid.NewString(),
		CompanyID: companyID,
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		s.LogError(ctx, err, "Failed to save period", slog.String("company_id", companyID))
		return nil, err
	}
	return &period, nil
}

// GetPeriodByID retrieves a specific period.
func (s *periodService) GetPeriodByID(ctx context.Context, companyID string, periodID string, userID string) (*domain.Period, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.periodRepo.FindPeriodByID(ctx, companyID, periodID)
}

// GetPeriodForDate retrieves the period containing the given date, if any.
func (s *periodService) GetPeriodForDate(ctx context.Context, companyID string, date time.Time, userID string) (*domain.Period, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.periodRepo.FindPeriodForDate(ctx, companyID, date)
}

// ListPeriods retrieves a paginated list of periods ordered by start date.
func (s *periodService) ListPeriods(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Period, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.periodRepo.ListPeriods(ctx, companyID, limit, offset)
}

// ClosePeriod transitions an open period to closed. Closing is idempotent.
func (s *periodService) ClosePeriod(ctx context.Context, companyID string, periodID string, userID string) (*domain.Period, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindPeriodByID(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}
	if period.IsClosed() {
		return period, nil
	}

	now := time.Now().UTC()
	if err := s.periodRepo.UpdatePeriodStatus(ctx, companyID, periodID, domain.PeriodClosed, userID, now); err != nil {
		return nil, err
	}
	period.Status = domain.PeriodClosed
	period.LastUpdatedAt = now
	period.LastUpdatedBy = userID
	s.LogInfo(ctx, "Period closed", slog.String("period_id", periodID), slog.String("company_id", companyID))
	return period, nil
}

// ReopenPeriod transitions a closed period back to open. Admin only.
func (s *periodService) ReopenPeriod(ctx context.Context, companyID string, periodID string, userID string) (*domain.Period, error) {
	if _, err := s.Authorize(ctx, userID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindPeriodByID(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}
	if !period.IsClosed() {
		return period, nil
	}

	now := time.Now().UTC()
	if err := s.periodRepo.UpdatePeriodStatus(ctx, companyID, periodID, domain.PeriodOpen, userID, now); err != nil {
		return nil, err
	}
	period.Status = domain.PeriodOpen
	period.LastUpdatedAt = now
	period.LastUpdatedBy = userID
	s.LogInfo(ctx, "Period reopened", slog.String("period_id", periodID), slog.String("company_id", companyID))
	return period, nil
}
