package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DepreciationMethod selects how an asset's cost is spread over its life.
type DepreciationMethod string

const (
	StraightLine     DepreciationMethod = "STRAIGHT_LINE"
	DecliningBalance DepreciationMethod = "DECLINING_BALANCE"
)

// IsValid reports whether m is a supported depreciation method.
func (m DepreciationMethod) IsValid() bool {
	return m == StraightLine || m == DecliningBalance
}

// FixedAsset tracks a long-term asset and the inputs to its depreciation
// schedule. The schedule itself is derived, never hand-edited.
type FixedAsset struct {
	AssetID                  string             `json:"assetID"` // Primary Key (UUID)
	CompanyID                string             `json:"companyID"`
	AssetCode                string             `json:"assetCode"`
	Description              string             `json:"description"`
	AcquisitionDate          time.Time          `json:"acquisitionDate"`
	AcquisitionCost          decimal.Decimal    `json:"acquisitionCost"` // >= 0
	SalvageValue             decimal.Decimal    `json:"salvageValue"`    // >= 0, <= cost
	UsefulLifePeriods        int                `json:"usefulLifePeriods"` // > 0
	Method                   DepreciationMethod `json:"method"`
	ExpenseAccountID         string             `json:"expenseAccountID"`         // depreciation expense leaf
	AccumulatedAccountID     string             `json:"accumulatedAccountID"`     // accumulated depreciation leaf
	AccumulatedDepreciation  decimal.Decimal    `json:"accumulatedDepreciation"`  // posted so far
	IsActive                 bool               `json:"isActive"`
	AuditFields
}

// Validate checks the asset's depreciation inputs.
func (a *FixedAsset) Validate() error {
	if a.AcquisitionCost.IsNegative() {
		return fmt.Errorf("acquisition cost must be >= 0")
	}
	if a.SalvageValue.IsNegative() {
		return fmt.Errorf("salvage value must be >= 0")
	}
	if a.SalvageValue.GreaterThan(a.AcquisitionCost) {
		return fmt.Errorf("salvage value cannot exceed acquisition cost")
	}
	if a.UsefulLifePeriods <= 0 {
		return fmt.Errorf("useful life must be > 0 periods")
	}
	if !a.Method.IsValid() {
		return fmt.Errorf("unknown depreciation method %q", a.Method)
	}
	return nil
}

// DepreciableBase is the total amount to depreciate over the asset's life.
func (a *FixedAsset) DepreciableBase() decimal.Decimal {
	return a.AcquisitionCost.Sub(a.SalvageValue)
}

// ScheduleLine is one (period ordinal, amount) pair of a depreciation schedule.
type ScheduleLine struct {
	PeriodIndex int             `json:"periodIndex"` // 1-based ordinal from the acquisition period
	Amount      decimal.Decimal `json:"amount"`
}

// GenerateSchedule deterministically derives the asset's depreciation
// schedule from its fields, rounded to the given number of decimal places.
//
// Straight-line spreads (cost - salvage) evenly, with any rounding residual
// folded into the final period so the schedule sums exactly to the base.
// Declining-balance applies a fixed 2/life rate to the remaining book value
// each period, never depreciating below salvage; the final period takes the
// remainder down to salvage.
func (a *FixedAsset) GenerateSchedule(places int32) ([]ScheduleLine, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	base := a.DepreciableBase()
	life := a.UsefulLifePeriods
	lines := make([]ScheduleLine, 0, life)

	switch a.Method {
	case StraightLine:
		perPeriod := base.Div(decimal.NewFromInt(int64(life))).RoundBank(places)
		accumulated := decimal.Zero
		for i := 1; i <= life; i++ {
			amount := perPeriod
			if i == life {
				// Final period absorbs the rounding residual.
				amount = base.Sub(accumulated)
			}
			accumulated = accumulated.Add(amount)
			lines = append(lines, ScheduleLine{PeriodIndex: i, Amount: amount})
		}

	case DecliningBalance:
		rate := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(life)))
		bookValue := a.AcquisitionCost
		accumulated := decimal.Zero
		for i := 1; i <= life; i++ {
			var amount decimal.Decimal
			if i == life {
				// Close out to salvage exactly.
				amount = base.Sub(accumulated)
			} else {
				amount = bookValue.Mul(rate).RoundBank(places)
				// Never depreciate below salvage value.
				if remaining := base.Sub(accumulated); amount.GreaterThan(remaining) {
					amount = remaining
				}
			}
			if amount.IsNegative() {
				amount = decimal.Zero
			}
			accumulated = accumulated.Add(amount)
			bookValue = bookValue.Sub(amount)
			lines = append(lines, ScheduleLine{PeriodIndex: i, Amount: amount})
		}
	}

	return lines, nil
}
