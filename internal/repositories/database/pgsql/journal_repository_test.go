package pgsql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"mid-month truncates to the first",
			time.Date(2026, 3, 17, 14, 30, 0, 0, time.UTC),
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"first of month is unchanged",
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"non-UTC input buckets in UTC",
			time.Date(2026, 12, 31, 23, 0, 0, 0, time.FixedZone("plus5", 5*3600)),
			time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, monthStart(tt.in).Equal(tt.want))
		})
	}
}
