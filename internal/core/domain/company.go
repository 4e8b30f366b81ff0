package domain

// Company is the tenant isolation root. Every other entity references exactly
// one company, and no operation may read or write across company boundaries.
type Company struct {
	CompanyID        string `json:"companyID"` // Primary Key (UUID)
	Name             string `json:"name"`
	BaseCurrencyCode string `json:"baseCurrencyCode"` // FK -> currencies.code (NON-NULL)
	IsActive         bool   `json:"isActive"`
	AuditFields
}

// CompanyRole defines the possible roles a user can have within a company.
type CompanyRole string

const (
	RoleAdmin    CompanyRole = "ADMIN"
	RoleMember   CompanyRole = "MEMBER"
	RoleReadOnly CompanyRole = "READONLY"
	RoleRemoved  CompanyRole = "REMOVED"
)

// CompanyMember represents the membership of a user in a company.
type CompanyMember struct {
	UserID    string      `json:"userID"`
	CompanyID string      `json:"companyID"`
	Role      CompanyRole `json:"role"`
	AuditFields
}

// TenantContext is the validated tenant boundary threaded explicitly through
// every operation. It is constructed once per request after a membership
// check and never stored globally.
type TenantContext struct {
	CompanyID        string
	BaseCurrencyCode string
	UserID           string
	Role             CompanyRole
}

// Owns reports whether the given company ID belongs to this tenant.
func (t TenantContext) Owns(companyID string) bool {
	return t.CompanyID == companyID
}
