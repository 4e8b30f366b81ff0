package accounting

import (
	"fmt"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the correct sign to a line's base amount based on the
// account type and line side. This is used in both services and repositories
// to keep the accounting convention in one place.
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func SignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	signed := line.BaseAmount
	isDebit := line.Side == domain.DebitLine

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signed = signed.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			signed = signed.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' for account ID %s", accountType, line.AccountID)
	}
	return signed, nil
}

// Sides returns the debit and credit sums of the given lines in base currency.
func Sides(lines []domain.JournalLine) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.Side == domain.DebitLine {
			debits = debits.Add(l.BaseAmount)
		} else {
			credits = credits.Add(l.BaseAmount)
		}
	}
	return debits, credits
}

// ValidateEntryBalance checks that an entry's lines balance exactly in base
// currency: at least two positive lines with sum(debits) == sum(credits).
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry must have at least two lines")
	}
	for _, l := range lines {
		if l.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("line amount must be positive for account %s", l.AccountID)
		}
		if l.BaseAmount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("base amount must be positive for account %s", l.AccountID)
		}
	}
	debits, credits := Sides(lines)
	if !debits.Equal(credits) {
		return fmt.Errorf("entry does not balance: debits %s, credits %s", debits.String(), credits.String())
	}
	return nil
}

// ConvertToBase fills each line's BaseAmount by multiplying its entry-currency
// amount by rate and rounding to the base currency's minor unit with banker's
// rounding. If per-line rounding breaks the balance by a residual, the residual
// is absorbed into the largest-magnitude line rather than silently dropped.
//
// Lines is modified in place. The rate is 1 when the entry currency is the
// base currency.
func ConvertToBase(lines []domain.JournalLine, rate decimal.Decimal, places int32) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("exchange rate must be positive, got %s", rate.String())
	}

	for i := range lines {
		lines[i].BaseAmount = lines[i].Amount.Mul(rate).RoundBank(places)
	}

	debits, credits := Sides(lines)
	residual := debits.Sub(credits)
	if residual.IsZero() {
		return nil
	}

	// Rounding may only ever introduce a sub-minor-unit drift per line.
	maxResidual := decimal.New(int64(len(lines)), -places)
	if residual.Abs().GreaterThan(maxResidual) {
		return fmt.Errorf("conversion residual %s exceeds rounding tolerance", residual.String())
	}

	// Absorb into the largest-magnitude line. Adding to a credit line or
	// subtracting from a debit line both shrink debits-minus-credits.
	largest := 0
	for i := range lines {
		if lines[i].BaseAmount.GreaterThan(lines[largest].BaseAmount) {
			largest = i
		}
	}
	if lines[largest].Side == domain.DebitLine {
		lines[largest].BaseAmount = lines[largest].BaseAmount.Sub(residual)
	} else {
		lines[largest].BaseAmount = lines[largest].BaseAmount.Add(residual)
	}

	if lines[largest].BaseAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("residual absorption produced a non-positive base amount")
	}
	return nil
}
