package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

func TestPeriod_Contains(t *testing.T) {
	period := domain.Period{
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"first day", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"mid period with time of day", time.Date(2026, 3, 15, 17, 30, 0, 0, time.UTC), true},
		{"last day inclusive", time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC), true},
		{"day before", time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), false},
		{"day after", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.Contains(tt.date))
		})
	}
}

func TestPeriod_IsClosed(t *testing.T) {
	open := domain.Period{Status: domain.PeriodOpen}
	closed := domain.Period{Status: domain.PeriodClosed}

	assert.False(t, open.IsClosed())
	assert.True(t, closed.IsClosed())
}
