package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodWindow(t *testing.T) {
	tests := []struct {
		period  Period
		want    time.Duration
		bounded bool
	}{
		{PeriodDaily, 24 * time.Hour, true},
		{PeriodWeekly, 7 * 24 * time.Hour, true},
		{PeriodMonthly, 30 * 24 * time.Hour, true},
		{PeriodQuarterly, 90 * 24 * time.Hour, true},
		{PeriodYearly, 365 * 24 * time.Hour, true},
		{PeriodAll, 0, false},
		{Period("bogus"), 0, false},
	}

	for _, tt := range tests {
		window, bounded := tt.period.Window()
		assert.Equal(t, tt.bounded, bounded, "period %q", tt.period)
		assert.Equal(t, tt.want, window, "period %q", tt.period)
	}
}
