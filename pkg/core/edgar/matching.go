package edgar

import (
	"math"
	"time"
)

// Matching tolerances. Filers rarely end a quarter on the exact calendar
// month boundary (Apple uses a 52/53-week year), so period ends are
// matched within a small window.
const (
	matchToleranceDays    = 5
	labelToleranceDays    = 30
	quarterSpanMinDays    = 80
	quarterSpanMaxDays    = 100
	annualSpanMinDays     = 350
)

func daysBetween(a, b time.Time) float64 {
	return math.Abs(a.Sub(b).Hours() / 24)
}

// findMatchingEntry picks the value for a target period end out of a
// concept's filing entries.
//
// Pass 1 scans entries of the required form within matchToleranceDays of
// the target; quarterly matches additionally reject spans over 100 days,
// which are annual figures restated inside a 10-Q. Pass 2 falls back to
// the fiscal-period label (Q1/Q2/Q3, FY for the fourth quarter) with a
// widened window.
func findMatchingEntry(entries []FilingEntry, periodEnd time.Time, formType string, fiscalQuarter int) (float64, bool) {
	for _, entry := range entries {
		if entry.Form != formType {
			continue
		}
		end, ok := entry.EndDate()
		if !ok || daysBetween(end, periodEnd) > matchToleranceDays {
			continue
		}
		if formType == FormQuarterly {
			if span, ok := entry.SpanDays(); ok && span > quarterSpanMaxDays {
				continue
			}
		}
		return entry.Val, true
	}

	targetFP := "FY"
	switch fiscalQuarter {
	case 1:
		targetFP = "Q1"
	case 2:
		targetFP = "Q2"
	case 3:
		targetFP = "Q3"
	}

	for _, entry := range entries {
		if entry.Form != formType || entry.FP != targetFP {
			continue
		}
		end, ok := entry.EndDate()
		if !ok {
			continue
		}
		if daysBetween(end, periodEnd) <= labelToleranceDays {
			return entry.Val, true
		}
	}

	return 0, false
}

// findQuarterlyEntryIn10K looks for a discrete fourth-quarter figure
// disclosed directly inside an annual filing: a 10-K entry with a
// quarterly span (80-100 days) ending at the Q4 period end. Some filers
// report it; most leave Q4 to be derived.
func findQuarterlyEntryIn10K(entries []FilingEntry, periodEnd time.Time) (float64, bool) {
	for _, entry := range entries {
		if entry.Form != FormAnnual || entry.Start == "" {
			continue
		}
		end, ok := entry.EndDate()
		if !ok || daysBetween(end, periodEnd) > matchToleranceDays {
			continue
		}
		if span, ok := entry.SpanDays(); ok && span >= quarterSpanMinDays && span <= quarterSpanMaxDays {
			return entry.Val, true
		}
	}
	return 0, false
}

// findAnnualEntryIn10K finds the full-year figure in an annual filing:
// fiscal-period label FY, or a span longer than 350 days, ending at the
// fiscal year end.
func findAnnualEntryIn10K(entries []FilingEntry, periodEnd time.Time) (float64, bool) {
	for _, entry := range entries {
		if entry.Form != FormAnnual {
			continue
		}
		end, ok := entry.EndDate()
		if !ok || daysBetween(end, periodEnd) > matchToleranceDays {
			continue
		}
		if entry.FP == "FY" {
			return entry.Val, true
		}
		if span, ok := entry.SpanDays(); ok && span > annualSpanMinDays {
			return entry.Val, true
		}
	}
	return 0, false
}
