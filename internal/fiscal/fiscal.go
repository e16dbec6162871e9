// Package fiscal handles civil dates and fiscal-year boundaries.
package fiscal

import (
	"fmt"
	"time"
)

// DateFormat is the layout used for dates on the command line and in CSV.
const DateFormat = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a civil day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// PrevDay returns the civil day before t.
func PrevDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, -1)
}

// MonthDay is the recurring month and day a fiscal year starts on.
type MonthDay struct {
	Month time.Month
	Day   int
}

// April1 is the fiscal-year start used by the bookkeeping system by default.
var April1 = MonthDay{Month: time.April, Day: 1}

// ParseMonthDay parses "MM-DD", e.g. "04-01".
func ParseMonthDay(s string) (MonthDay, error) {
	t, err := time.Parse("01-02", s)
	if err != nil {
		return MonthDay{}, fmt.Errorf("parsing fiscal year start %q: %w", s, err)
	}
	return MonthDay{Month: t.Month(), Day: t.Day()}, nil
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// YearStart returns the first day of the fiscal year containing anchor.
func YearStart(anchor time.Time, md MonthDay) time.Time {
	anchor = Day(anchor)
	start := Date(anchor.Year(), md.Month, md.Day)
	if anchor.Before(start) {
		start = Date(anchor.Year()-1, md.Month, md.Day)
	}
	return start
}

// YearEnd returns the last day of the fiscal year containing anchor.
func YearEnd(anchor time.Time, md MonthDay) time.Time {
	return YearStart(anchor, md).AddDate(1, 0, -1)
}
