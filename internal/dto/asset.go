package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAssetRequest defines the data needed to register a fixed asset.
type CreateAssetRequest struct {
	AssetCode            string                    `json:"assetCode" binding:"required"`
	Description          string                    `json:"description"`
	AcquisitionDate      time.Time                 `json:"acquisitionDate" binding:"required"`
	AcquisitionCost      decimal.Decimal           `json:"acquisitionCost" binding:"required"`
	SalvageValue         decimal.Decimal           `json:"salvageValue"`
	UsefulLifePeriods    int                       `json:"usefulLifePeriods" binding:"required,min=1"`
	Method               domain.DepreciationMethod `json:"method" binding:"required,oneof=STRAIGHT_LINE DECLINING_BALANCE"`
	ExpenseAccountID     string                    `json:"expenseAccountID" binding:"required"`
	AccumulatedAccountID string                    `json:"accumulatedAccountID" binding:"required"`
}

// ListAssetsParams defines query parameters for listing fixed assets.
type ListAssetsParams struct {
	ActiveOnly bool `form:"activeOnly,default=false"`
	Limit      int  `form:"limit,default=20"`
	Offset     int  `form:"offset,default=0"`
}

// AssetResponse defines the data returned for a fixed asset.
type AssetResponse struct {
	AssetID                 string          `json:"assetID"`
	AssetCode               string          `json:"assetCode"`
	Description             string          `json:"description"`
	AcquisitionDate         time.Time       `json:"acquisitionDate"`
	AcquisitionCost         decimal.Decimal `json:"acquisitionCost"`
	SalvageValue            decimal.Decimal `json:"salvageValue"`
	UsefulLifePeriods       int             `json:"usefulLifePeriods"`
	Method                  string          `json:"method"`
	ExpenseAccountID        string          `json:"expenseAccountID"`
	AccumulatedAccountID    string          `json:"accumulatedAccountID"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulatedDepreciation"`
	IsActive                bool            `json:"isActive"`
}

// ToAssetResponse converts a domain.FixedAsset to AssetResponse DTO.
func ToAssetResponse(a *domain.FixedAsset) AssetResponse {
	return AssetResponse{
		AssetID:                 a.AssetID,
		AssetCode:               a.AssetCode,
		Description:             a.Description,
		AcquisitionDate:         a.AcquisitionDate,
		AcquisitionCost:         a.AcquisitionCost,
		SalvageValue:            a.SalvageValue,
		UsefulLifePeriods:       a.UsefulLifePeriods,
		Method:                  string(a.Method),
		ExpenseAccountID:        a.ExpenseAccountID,
		AccumulatedAccountID:    a.AccumulatedAccountID,
		AccumulatedDepreciation: a.AccumulatedDepreciation,
		IsActive:                a.IsActive,
	}
}

// ToListAssetResponse converts a slice of domain.FixedAsset to []AssetResponse.
func ToListAssetResponse(assets []domain.FixedAsset) []AssetResponse {
	res := make([]AssetResponse, len(assets))
	for i := range assets {
		res[i] = ToAssetResponse(&assets[i])
	}
	return res
}

// ScheduleLineResponse is one period of a derived depreciation schedule.
type ScheduleLineResponse struct {
	PeriodIndex int             `json:"periodIndex"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToScheduleResponse converts domain schedule lines to DTOs.
func ToScheduleResponse(lines []domain.ScheduleLine) []ScheduleLineResponse {
	res := make([]ScheduleLineResponse, len(lines))
	for i, l := range lines {
		res[i] = ScheduleLineResponse{PeriodIndex: l.PeriodIndex, Amount: l.Amount}
	}
	return res
}

// Depreciation run outcomes per asset.
const (
	RunPosted  = "POSTED"
	RunSkipped = "SKIPPED"
	RunFailed  = "FAILED"
)

// AssetRunResult is the outcome of one asset in a depreciation run.
type AssetRunResult struct {
	AssetID string          `json:"assetID"`
	Status  string          `json:"status"`
	Amount  decimal.Decimal `json:"amount"`
	EntryID *string         `json:"entryID,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// DepreciationRunResponse summarizes a period depreciation run.
type DepreciationRunResponse struct {
	PeriodID string           `json:"periodID"`
	Results  []AssetRunResult `json:"results"`
}
