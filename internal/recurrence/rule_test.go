package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNext_Daily(t *testing.T) {
	got, err := Next("daily", date(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 1), got)
}

func TestNext_Weekly(t *testing.T) {
	got, err := Next("weekly", date(2024, 12, 30))
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 6), got)
}

func TestNext_MonthlyNumeric(t *testing.T) {
	tests := []struct {
		name string
		rule string
		base time.Time
		want time.Time
	}{
		{"leap year clamp", "monthly:31", date(2024, 2, 1), date(2024, 2, 29)},
		{"non-leap clamp", "monthly:31", date(2023, 2, 1), date(2023, 2, 28)},
		{"rolls to next month when day has passed", "monthly:31", date(2024, 2, 29), date(2024, 3, 31)},
		{"day still ahead in base month", "monthly:15", date(2024, 1, 10), date(2024, 1, 15)},
		{"same day rolls forward", "monthly:15", date(2024, 1, 15), date(2024, 2, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.rule, tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_MonthlyBare(t *testing.T) {
	got, err := Next("monthly", date(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), got, "day 31 clamps to February's length")
}

func TestNext_MonthlyLastDay(t *testing.T) {
	got, err := Next("monthly:last_day", date(2024, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), got)
}

func TestNext_MonthlyLastBizDay(t *testing.T) {
	// March 31, 2024 is a Sunday; the last business day is Friday the 29th.
	got, err := Next("monthly:last_biz_day", date(2024, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 29), got)
}

func TestNext_QuarterlyFlat(t *testing.T) {
	got, err := Next("quarterly", date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 31), got, "bare quarterly is a flat 90-day add")
}

func TestNext_QuarterlyLastBizDay(t *testing.T) {
	// Q1 2024 ends on Sunday March 31; last business day is March 29.
	got, err := Next("quarterly:last_biz_day", date(2024, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 29), got)

	// Past the current quarter's last business day: June 30, 2024 is a
	// Sunday, so Q2 resolves to Friday June 28.
	got, err = Next("quarterly:last_biz_day", date(2024, 3, 30))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 6, 28), got)
}

func TestNext_AnnuallyFlat365(t *testing.T) {
	// Flat 365-day add lands a day short across the 2024 leap day.
	got, err := Next("annually", date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 12, 31), got)
}

func TestNext_UnknownRules(t *testing.T) {
	bad := []string{
		"", "fortnightly", "monthly:abc", "monthly:0", "monthly:32",
		"daily:5", "weekly:monday", "annually:1", "quarterly:first_day",
	}
	for _, rule := range bad {
		t.Run(rule, func(t *testing.T) {
			_, err := Next(rule, date(2024, 1, 1))
			assert.ErrorIs(t, err, ErrUnknownRule)
		})
	}
}
