package edgar

import (
	"time"
)

// Filing form types served by the companyconcept API that this client
// matches against.
const (
	FormQuarterly = "10-Q"
	FormAnnual    = "10-K"
)

// FilingEntry is one disclosed numeric fact from a company's XBRL filings.
// Entries are immutable once fetched; the full set for a (ticker, concept)
// pair is cached as a unit.
type FilingEntry struct {
	Start string  `json:"start,omitempty"` // period start, "2006-01-02"; absent for instant facts
	End   string  `json:"end"`             // period end, "2006-01-02"
	Val   float64 `json:"val"`
	FY    int     `json:"fy"`   // fiscal year label as filed
	FP    string  `json:"fp"`   // fiscal period label: Q1-Q4 or FY
	Form  string  `json:"form"` // 10-Q, 10-K, amendments
	Filed string  `json:"filed"`
}

// EndDate parses the entry's period end.
func (e FilingEntry) EndDate() (time.Time, bool) {
	t, err := time.Parse("2006-01-02", e.End)
	return t, err == nil
}

// SpanDays returns the length of the entry's reporting period in days,
// or false for instant (point-in-time) facts with no start date.
func (e FilingEntry) SpanDays() (float64, bool) {
	if e.Start == "" {
		return 0, false
	}
	start, err := time.Parse("2006-01-02", e.Start)
	if err != nil {
		return 0, false
	}
	end, ok := e.EndDate()
	if !ok {
		return 0, false
	}
	return end.Sub(start).Hours() / 24, true
}

// conceptResponse is the companyconcept API payload; entries are grouped
// by disclosed unit (USD, USD/shares, shares, ...).
type conceptResponse struct {
	Units map[string][]FilingEntry `json:"units"`
}
