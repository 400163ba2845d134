// Package dates handles the calendar-date strings ("YYYY-MM-DD") and month
// strings ("YYYY-MM") used throughout the agenda.
package dates

import (
	"fmt"
	"time"
)

const (
	Layout      = "2006-01-02"
	MonthLayout = "2006-01"
	BRLayout    = "02/01/2006"
)

func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

func Format(t time.Time) string { return t.Format(Layout) }

// Today returns the calendar date of now in its own location.
func Today(now time.Time) string { return now.Format(Layout) }

// Pretty renders an ISO date as dd/mm/yyyy, returning s unchanged when it
// does not parse.
func Pretty(s string) string {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return s
	}
	return t.Format(BRLayout)
}

// MonthOf returns the "YYYY-MM" month of an ISO date.
func MonthOf(s string) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Format(MonthLayout), nil
}

func ParseMonth(m string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, m)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", m)
	}
	return t, nil
}

func ShiftMonth(m string, delta int) (string, error) {
	t, err := ParseMonth(m)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, delta, 0).Format(MonthLayout), nil
}

// MonthRange returns the first and last date of month m, inclusive.
func MonthRange(m string) (first, last string, err error) {
	t, err := ParseMonth(m)
	if err != nil {
		return "", "", err
	}
	return Format(t), Format(t.AddDate(0, 1, -1)), nil
}

// Grid returns the dates shown by a Sunday-first month calendar: the days of
// m padded with the tail of the previous month and the head of the next one
// so the grid holds whole weeks.
func Grid(m string) ([]time.Time, error) {
	first, err := ParseMonth(m)
	if err != nil {
		return nil, err
	}
	start := first.AddDate(0, 0, -int(first.Weekday()))
	last := first.AddDate(0, 1, -1)
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}
