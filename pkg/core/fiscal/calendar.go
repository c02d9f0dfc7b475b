// Package fiscal converts company-specific fiscal periods into calendar
// dates. Companies end their fiscal years in different months (Apple in
// September, Microsoft in June, Salesforce in January), so "FY2024 Q2"
// maps to a different calendar window per ticker.
package fiscal

import (
	"fmt"
	"time"

	"execcheck/pkg/core/companies"
)

// ErrInvalidQuarter is returned when a fiscal quarter is outside 1-4.
var ErrInvalidQuarter = fmt.Errorf("fiscal quarter must be 1-4")

// FilingLagDays is how long after a quarter ends we assume the filing and
// transcript exist. Quarters younger than this are treated as incomplete.
const FilingLagDays = 60

// QuarterDates describes one fiscal quarter's calendar window.
type QuarterDates struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	FiscalYear    int       `json:"fiscal_year"`
	FiscalQuarter int       `json:"fiscal_quarter"`
	Ticker        string    `json:"ticker"`
}

// Calendar performs fiscal date arithmetic against a company directory.
type Calendar struct {
	dir *companies.Directory
}

// NewCalendar builds a calendar over the given directory.
func NewCalendar(dir *companies.Directory) *Calendar {
	return &Calendar{dir: dir}
}

// QuarterEndDate returns the last calendar day of the given fiscal quarter.
//
// The quarter's end month is offset (fq-4)*3 months back from the fiscal
// year-end month; month underflow/overflow carries into the year. A
// December fiscal year end needs no special case: it falls out of the same
// arithmetic.
func (c *Calendar) QuarterEndDate(ticker string, fiscalYear, fiscalQuarter int) (time.Time, error) {
	if fiscalQuarter < 1 || fiscalQuarter > 4 {
		return time.Time{}, fmt.Errorf("%w, got %d", ErrInvalidQuarter, fiscalQuarter)
	}

	fyEndMonth, err := c.dir.FiscalYearEndMonth(ticker)
	if err != nil {
		return time.Time{}, err
	}

	// Q1=-9, Q2=-6, Q3=-3, Q4=0 months from fiscal year end.
	targetMonth := int(fyEndMonth) + (fiscalQuarter-4)*3
	targetYear := fiscalYear
	for targetMonth <= 0 {
		targetMonth += 12
		targetYear--
	}
	for targetMonth > 12 {
		targetMonth -= 12
		targetYear++
	}

	return lastDayOfMonth(targetYear, time.Month(targetMonth)), nil
}

// QuarterStartDate returns the day after the previous quarter's end date.
func (c *Calendar) QuarterStartDate(ticker string, fiscalYear, fiscalQuarter int) (time.Time, error) {
	if fiscalQuarter < 1 || fiscalQuarter > 4 {
		return time.Time{}, fmt.Errorf("%w, got %d", ErrInvalidQuarter, fiscalQuarter)
	}

	var prevEnd time.Time
	var err error
	if fiscalQuarter == 1 {
		prevEnd, err = c.QuarterEndDate(ticker, fiscalYear-1, 4)
	} else {
		prevEnd, err = c.QuarterEndDate(ticker, fiscalYear, fiscalQuarter-1)
	}
	if err != nil {
		return time.Time{}, err
	}
	return prevEnd.AddDate(0, 0, 1), nil
}

// QuarterDates bundles start and end for one fiscal quarter.
func (c *Calendar) QuarterDates(ticker string, fiscalYear, fiscalQuarter int) (QuarterDates, error) {
	start, err := c.QuarterStartDate(ticker, fiscalYear, fiscalQuarter)
	if err != nil {
		return QuarterDates{}, err
	}
	end, err := c.QuarterEndDate(ticker, fiscalYear, fiscalQuarter)
	if err != nil {
		return QuarterDates{}, err
	}
	return QuarterDates{
		Start:         start,
		End:           end,
		FiscalYear:    fiscalYear,
		FiscalQuarter: fiscalQuarter,
		Ticker:        ticker,
	}, nil
}

// RecentQuarters returns up to n completed quarters, most recent first.
func (c *Calendar) RecentQuarters(ticker string, n int) ([]QuarterDates, error) {
	return c.RecentQuartersAt(ticker, n, time.Now())
}

// RecentQuartersAt is RecentQuarters with an explicit clock.
//
// A quarter counts as completed once its end date is at least FilingLagDays
// in the past, so the corresponding filing had time to appear. The walk is
// bounded to three fiscal years back so it always terminates.
func (c *Calendar) RecentQuartersAt(ticker string, n int, now time.Time) ([]QuarterDates, error) {
	fyEndMonth, err := c.dir.FiscalYearEndMonth(ticker)
	if err != nil {
		return nil, err
	}

	currentFY := now.Year()
	if int(now.Month()) > int(fyEndMonth) {
		currentFY++
	}

	cutoff := now.AddDate(0, 0, -FilingLagDays)

	var quarters []QuarterDates
	fy, fq := currentFY, 4
	for len(quarters) < n {
		end, err := c.QuarterEndDate(ticker, fy, fq)
		if err != nil {
			return nil, err
		}
		if !end.After(cutoff) {
			qd, err := c.QuarterDates(ticker, fy, fq)
			if err != nil {
				return nil, err
			}
			quarters = append(quarters, qd)
		}
		fq--
		if fq == 0 {
			fq = 4
			fy--
		}
		if fy < currentFY-3 {
			break
		}
	}

	return quarters, nil
}

func lastDayOfMonth(year int, month time.Month) time.Time {
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}
