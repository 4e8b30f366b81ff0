package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// CreatePeriodRequest defines the data needed to open a new accounting period.
type CreatePeriodRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

// ListPeriodsParams defines query parameters for listing periods.
type ListPeriodsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// PeriodResponse defines the data returned for an accounting period.
type PeriodResponse struct {
	PeriodID  string    `json:"periodID"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

// ToPeriodResponse converts a domain.Period to PeriodResponse DTO.
func ToPeriodResponse(p *domain.Period) PeriodResponse {
	return PeriodResponse{
		PeriodID:  p.PeriodID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    string(p.Status),
	}
}

// ToListPeriodResponse converts a slice of domain.Period to []PeriodResponse.
func ToListPeriodResponse(periods []domain.Period) []PeriodResponse {
	res := make([]PeriodResponse, len(periods))
	for i, p := range periods {
		res[i] = ToPeriodResponse(&p)
	}
	return res
}
