package domain

import "time"

// PeriodStatus indicates whether a period still accepts postings.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// Period is a company's accounting time bucket: a non-overlapping, contiguous
// date range. Postings dated into a closed period are rejected.
type Period struct {
	PeriodID  string       `json:"periodID"` // Primary Key (UUID)
	CompanyID string       `json:"companyID"`
	Name      string       `json:"name"` // e.g. "2025-07"
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"` // inclusive
	Status    PeriodStatus `json:"status"`
	AuditFields
}

// Contains reports whether d falls inside the period's date range.
func (p *Period) Contains(d time.Time) bool {
	day := d.Truncate(24 * time.Hour)
	return !day.Before(p.StartDate.Truncate(24*time.Hour)) && !day.After(p.EndDate.Truncate(24*time.Hour))
}

// IsClosed reports whether the period no longer accepts postings.
func (p *Period) IsClosed() bool {
	return p.Status == PeriodClosed
}
