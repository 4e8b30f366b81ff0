package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// CreateCompanyRequest defines the data needed to create a company.
type CreateCompanyRequest struct {
	Name             string `json:"name" binding:"required"`
	BaseCurrencyCode string `json:"baseCurrencyCode" binding:"required,len=3"`
}

// CompanyResponse defines the data returned for a company.
type CompanyResponse struct {
	CompanyID        string    `json:"companyID"`
	Name             string    `json:"name"`
	BaseCurrencyCode string    `json:"baseCurrencyCode"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ToCompanyResponse converts a domain.Company to CompanyResponse DTO.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:        c.CompanyID,
		Name:             c.Name,
		BaseCurrencyCode: c.BaseCurrencyCode,
		IsActive:         c.IsActive,
		CreatedAt:        c.CreatedAt,
	}
}

// ToListCompanyResponse converts a slice of domain.Company to []CompanyResponse.
func ToListCompanyResponse(companies []domain.Company) []CompanyResponse {
	res := make([]CompanyResponse, len(companies))
	for i, c := range companies {
		res[i] = ToCompanyResponse(&c)
	}
	return res
}

// AddMemberRequest defines the data needed to add a user to a company.
type AddMemberRequest struct {
	UserID string             `json:"userID" binding:"required"`
	Role   domain.CompanyRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// MemberResponse defines the data returned for a company membership.
type MemberResponse struct {
	UserID    string             `json:"userID"`
	CompanyID string             `json:"companyID"`
	Role      domain.CompanyRole `json:"role"`
}

// ToMemberResponses converts a slice of domain.CompanyMember to []MemberResponse.
func ToMemberResponses(members []domain.CompanyMember) []MemberResponse {
	res := make([]MemberResponse, len(members))
	for i, m := range members {
		res[i] = MemberResponse{UserID: m.UserID, CompanyID: m.CompanyID, Role: m.Role}
	}
	return res
}
