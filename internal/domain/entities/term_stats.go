package entities

import "time"

// Period selects the trailing time window for analytics queries. The window
// is measured backwards from the clock's current time; All is unbounded.
type Period string

const (
	PeriodDaily     Period = "daily"
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
	PeriodAll       Period = "all"
)

// Window returns the trailing duration for the period. The second result is
// false for PeriodAll (and anything unrecognized), meaning no time bound.
func (p Period) Window() (time.Duration, bool) {
	switch p {
	case PeriodDaily:
		return 24 * time.Hour, true
	case PeriodWeekly:
		return 7 * 24 * time.Hour, true
	case PeriodMonthly:
		return 30 * 24 * time.Hour, true
	case PeriodQuarterly:
		return 90 * 24 * time.Hour, true
	case PeriodYearly:
		return 365 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// TermFilter restricts the population counted by term analytics. The zero
// value applies no restriction.
type TermFilter struct {
	SearchType       *SearchType
	ClickThroughOnly bool
}

// DateCount is one calendar-date bucket in a term detail series.
type DateCount struct {
	X time.Time `json:"x"`
	Y int64     `json:"y"`
}

// TermDetails is the per-term search volume series for a period. Buckets with
// no matching events are omitted rather than reported with a zero count.
type TermDetails struct {
	Term   string      `json:"term"`
	Period Period      `json:"period"`
	Data   []DateCount `json:"data"`
}

// TrendingTerm is one row of the trending ranking.
type TrendingTerm struct {
	Term         string `json:"term"`
	Searches     int64  `json:"searches"`
	ClickThrough int64  `json:"click_through"`
}
