package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// CompanyReaderSvc defines read operations for company data
type CompanyReaderSvc interface {
	// GetCompanyByID retrieves a specific company by its ID.
	GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListUserCompanies retrieves companies a user belongs to.
	ListUserCompanies(ctx context.Context, userID string) ([]domain.Company, error)

	// ListCompanyMembers retrieves all members and their roles for a company.
	// Only members of the company can access this data.
	ListCompanyMembers(ctx context.Context, companyID string, requestingUserID string) ([]domain.CompanyMember, error)
}

// CompanyWriterSvc defines write operations for company data
type CompanyWriterSvc interface {
	// CreateCompany persists a new company and enrolls the creator as admin.
	CreateCompany(ctx context.Context, name, baseCurrencyCode, creatorUserID string) (*domain.Company, error)

	// DeactivateCompany marks a company as inactive.
	DeactivateCompany(ctx context.Context, companyID string, requestingUserID string) error
}

// CompanyMembershipSvc defines operations for managing company membership
type CompanyMembershipSvc interface {
	// AddMember adds a user to a company with a specific role.
	// Only company admins can add members.
	AddMember(ctx context.Context, addingUserID, targetUserID, companyID string, role domain.CompanyRole) error
}

// CompanyAuthorizerSvc defines operations for tenant authorization
type CompanyAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has the required role in a company
	// and returns the resolved tenant context on success.
	AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.CompanyRole) (*domain.TenantContext, error)
}

// CompanySvcFacade combines all company-related service interfaces
// This is a facade for clients that need access to all operations
type CompanySvcFacade interface {
	CompanyReaderSvc
	CompanyWriterSvc
	CompanyMembershipSvc
	CompanyAuthorizerSvc
}
