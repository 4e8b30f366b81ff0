package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/utils/accounting"
)

func line(side domain.LineSide, amount, baseAmount string) domain.JournalLine {
	return domain.JournalLine{
		AccountID:  "acc_123",
		Side:       side,
		Amount:     decimal.RequireFromString(amount),
		BaseAmount: decimal.RequireFromString(baseAmount),
	}
}

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		name        string
		side        domain.LineSide
		accountType domain.AccountType
		want        string
	}{
		{"debit to asset is positive", domain.DebitLine, domain.Asset, "100"},
		{"credit to asset is negative", domain.CreditLine, domain.Asset, "-100"},
		{"debit to expense is positive", domain.DebitLine, domain.Expense, "100"},
		{"debit to liability is negative", domain.DebitLine, domain.Liability, "-100"},
		{"credit to liability is positive", domain.CreditLine, domain.Liability, "100"},
		{"credit to revenue is positive", domain.CreditLine, domain.Revenue, "100"},
		{"debit to equity is negative", domain.DebitLine, domain.Equity, "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.SignedAmount(line(tt.side, "100", "100"), tt.accountType)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestSignedAmount_UnknownAccountType(t *testing.T) {
	_, err := accounting.SignedAmount(line(domain.DebitLine, "100", "100"), "GOODWILL")
	assert.Error(t, err)
}

func TestValidateEntryBalance(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.JournalLine
		wantErr bool
	}{
		{
			name: "balanced pair",
			lines: []domain.JournalLine{
				line(domain.DebitLine, "100", "100"),
				line(domain.CreditLine, "100", "100"),
			},
			wantErr: false,
		},
		{
			name: "balanced split",
			lines: []domain.JournalLine{
				line(domain.DebitLine, "100", "100"),
				line(domain.CreditLine, "60", "60"),
				line(domain.CreditLine, "40", "40"),
			},
			wantErr: false,
		},
		{
			name: "unbalanced",
			lines: []domain.JournalLine{
				line(domain.DebitLine, "100", "100"),
				line(domain.CreditLine, "99.99", "99.99"),
			},
			wantErr: true,
		},
		{
			name: "single line",
			lines: []domain.JournalLine{
				line(domain.DebitLine, "100", "100"),
			},
			wantErr: true,
		},
		{
			name: "zero amount line",
			lines: []domain.JournalLine{
				line(domain.DebitLine, "0", "0"),
				line(domain.CreditLine, "0", "0"),
			},
			wantErr: true,
		},
		{
			name: "negative base amount",
			lines: []domain.JournalLine{
				line(domain.DebitLine, "100", "-100"),
				line(domain.CreditLine, "100", "-100"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accounting.ValidateEntryBalance(tt.lines)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConvertToBase_RateOfOne(t *testing.T) {
	lines := []domain.JournalLine{
		line(domain.DebitLine, "100", "0"),
		line(domain.CreditLine, "100", "0"),
	}

	err := accounting.ConvertToBase(lines, decimal.NewFromInt(1), 2)
	require.NoError(t, err)
	assert.True(t, lines[0].BaseAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, lines[1].BaseAmount.Equal(decimal.NewFromInt(100)))
}

func TestConvertToBase_ResidualGoesToLargestLine(t *testing.T) {
	// 33.335 rounds to 33.34 (banker's) on the debit, while the two credits
	// round to 16.67 each. The residual lands on the largest line so the
	// entry still balances.
	lines := []domain.JournalLine{
		line(domain.DebitLine, "33.335", "0"),
		line(domain.CreditLine, "16.665", "0"),
		line(domain.CreditLine, "16.67", "0"),
	}

	err := accounting.ConvertToBase(lines, decimal.NewFromInt(1), 2)
	require.NoError(t, err)

	debits, credits := accounting.Sides(lines)
	assert.True(t, debits.Equal(credits), "debits %s, credits %s", debits, credits)
}

func TestConvertToBase_ForeignRate(t *testing.T) {
	lines := []domain.JournalLine{
		line(domain.DebitLine, "100", "0"),
		line(domain.CreditLine, "100", "0"),
	}

	err := accounting.ConvertToBase(lines, decimal.RequireFromString("1.1"), 2)
	require.NoError(t, err)
	assert.True(t, lines[0].BaseAmount.Equal(decimal.RequireFromString("110")))

	debits, credits := accounting.Sides(lines)
	assert.True(t, debits.Equal(credits))
}

func TestConvertToBase_NonPositiveRateRejected(t *testing.T) {
	lines := []domain.JournalLine{
		line(domain.DebitLine, "100", "0"),
		line(domain.CreditLine, "100", "0"),
	}

	err := accounting.ConvertToBase(lines, decimal.Zero, 2)
	assert.Error(t, err)
}
