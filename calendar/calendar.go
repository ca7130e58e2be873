// Package calendar contains the weekend and business-day arithmetic
// used for lookback windows and cache coverage accounting.
//
// Holidays are never hardcoded here: callers pass in the non-trading
// days they already know about.
package calendar

import (
	"time"

	"cloud.google.com/go/civil"
)

// weekday returns the day of the week for the given date
func weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// IsWeekend returns true if the date falls on a Saturday or Sunday
func IsWeekend(d civil.Date) bool {
	wd := weekday(d)

	return wd == time.Saturday || wd == time.Sunday
}

// MostRecentBusinessDay rolls a weekend date back to the preceding Friday.
// Weekdays are returned unchanged, holidays are not consulted
func MostRecentBusinessDay(d civil.Date) civil.Date {
	switch weekday(d) {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(-2)
	default:
		return d
	}
}

// SubtractBusinessDays steps back n times, each time first rolling a weekend
// back to its Friday and then moving one calendar day back.
// The result is a safe lower bound and is not snapped, so it can be a weekend
func SubtractBusinessDays(d civil.Date, n int) civil.Date {
	current := d

	for ; n > 0; n-- {
		current = MostRecentBusinessDay(current).AddDays(-1)
	}

	return current
}

// Range returns every date in [from, to], in ascending order
func Range(from, to civil.Date) []civil.Date {
	if to.Before(from) {
		return nil
	}

	dates := make([]civil.Date, 0, to.DaysSince(from)+1)

	for d := from; !d.After(to); d = d.AddDays(1) {
		dates = append(dates, d)
	}

	return dates
}

// IsBusinessDay returns true if the date is neither a weekend
// nor one of the given non-trading days
func IsBusinessDay(d civil.Date, nonTrading map[civil.Date]struct{}) bool {
	if IsWeekend(d) {
		return false
	}

	_, marked := nonTrading[d]

	return !marked
}

// BusinessDays counts the dates in [from, to] that are neither weekends
// nor one of the given non-trading days
func BusinessDays(from, to civil.Date, nonTrading map[civil.Date]struct{}) int {
	count := 0

	for d := from; !d.After(to); d = d.AddDays(1) {
		if IsBusinessDay(d, nonTrading) {
			count++
		}
	}

	return count
}

// DateSet builds a lookup set out of the given dates
func DateSet(dates []civil.Date) map[civil.Date]struct{} {
	set := make(map[civil.Date]struct{}, len(dates))

	for _, d := range dates {
		set[d] = struct{}{}
	}

	return set
}
