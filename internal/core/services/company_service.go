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
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// companyService provides company, membership and tenant authorization operations.
type companyService struct {
	companyRepo  portsrepo.CompanyRepositoryWithTx
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryWithTx, currencyRepo portsrepo.CurrencyRepositoryFacade) portssvc.CompanySvcFacade {
	return &companyService{
		companyRepo:  companyRepo,
		currencyRepo: currencyRepo,
	}
}

// Ensure companyService implements the portssvc.CompanySvcFacade interface
var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// roleRank orders company roles by privilege for authorization checks.
func roleRank(role domain.CompanyRole) int {
	switch role {
	case domain.RoleAdmin:
		return 3
	case domain.RoleMember:
		return 2
	case domain.RoleReadOnly:
		return 1
	default:
		return 0
	}
}

// AuthorizeUserAction checks membership and role, returning the resolved
// tenant context. A non-member gets ErrNotFound rather than ErrForbidden so
// the company's existence is not leaked across tenants.
func (s *companyService) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) (*domain.TenantContext, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	member, err := s.companyRepo.FindMemberRole(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member.Role == domain.RoleRemoved {
		return nil, apperrors.ErrNotFound
	}
	if roleRank(member.Role) < roleRank(requiredRole) {
		logger.Warn("Insufficient role for company action",
			slog.String("user_id", userID),
			slog.String("company_id", companyID),
			slog.String("role", string(member.Role)),
			slog.String("required_role", string(requiredRole)))
		return nil, apperrors.ErrForbidden
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company %s: %w", companyID, err)
	}

	return &domain.TenantContext{
		CompanyID:        company.CompanyID,
		BaseCurrencyCode: company.BaseCurrencyCode,
		UserID:           userID,
		Role:             member.Role,
	}, nil
}

// CreateCompany persists a new company and enrolls the creator as admin.
func (s *companyService) CreateCompany(ctx context.Context, name, baseCurrencyCode, creatorUserID string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if name == "" {
		return nil, fmt.Errorf("%w: company name is required", apperrors.ErrValidation)
	}
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, baseCurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown base currency %s", apperrors.ErrValidation, baseCurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate base currency: %w", err)
	}

	now := time.Now().UTC()
	company := domain.Company{
		CompanyID:        uuid.NewString(),
		Name:             name,
		BaseCurrencyCode: baseCurrencyCode,
		IsActive:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		logger.Error("Failed to save company", slog.String("error", err.Error()))
		return nil, err
	}

	membership := domain.CompanyMember{
		UserID:    creatorUserID,
		CompanyID: company.CompanyID,
		Role:      domain.RoleAdmin,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.companyRepo.AddMember(ctx, membership); err != nil {
		logger.Error("Failed to enroll creator as admin", slog.String("error", err.Error()), slog.String("company_id", company.CompanyID))
		return nil, err
	}

	logger.Info("Company created", slog.String("company_id", company.CompanyID), slog.String("name", name))
	return &company, nil
}

// GetCompanyByID retrieves a specific company by its ID.
func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	return s.companyRepo.FindCompanyByID(ctx, companyID)
}

// ListUserCompanies retrieves companies a user belongs to.
func (s *companyService) ListUserCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	return s.companyRepo.ListCompaniesByUserID(ctx, userID)
}

// ListCompanyMembers retrieves all members and their roles for a company.
func (s *companyService) ListCompanyMembers(ctx context.Context, companyID string, requestingUserID string) ([]domain.CompanyMember, error) {
	if _, err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.companyRepo.ListMembers(ctx, companyID)
}

// AddMember adds a user to a company with a specific role. Admin only.
func (s *companyService) AddMember(ctx context.Context, addingUserID, targetUserID, companyID string, role domain.CompanyRole) error {
	if _, err := s.AuthorizeUserAction(ctx, addingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	now := time.Now().UTC()
	membership := domain.CompanyMember{
		UserID:    targetUserID,
		CompanyID: companyID,
		Role:      role,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     addingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: addingUserID,
		},
	}
	return s.companyRepo.AddMember(ctx, membership)
}

// DeactivateCompany marks a company as inactive. Admin only.
func (s *companyService) DeactivateCompany(ctx context.Context, companyID string, requestingUserID string) error {
	if _, err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	company.IsActive = false
	company.LastUpdatedAt = now
	company.LastUpdatedBy = requestingUserID
	return s.companyRepo.UpdateCompany(ctx, *company)
}
