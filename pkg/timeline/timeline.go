// Package timeline generates the calendar dates at which repository history
// is sampled.
package timeline

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"time"
)

// DayLayout formats a calendar date as YYYY-MM-DD.
const DayLayout = "2006-01-02"

// ReversedDayLayout formats a calendar date as DD-MM-YYYY.
const ReversedDayLayout = "02-01-2006"

// DefaultFrequency is the sampling interval in days when none is given.
const DefaultFrequency = 30

// Sentinel errors.
var (
	ErrInvalidDate      = errors.New("invalid date format")
	ErrInvalidFrequency = errors.New("frequency must be a positive number of days")
)

var monthPattern = regexp.MustCompile(`^([0-9]{4})-([0-9]{2})$`)

// Sample returns start, start+freq, start+2*freq, ... (in calendar days),
// each strictly before end. The result is ascending and empty when start is
// not before end.
func Sample(start, end time.Time, freqDays int) ([]time.Time, error) {
	if freqDays <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrequency, freqDays)
	}

	var dates []time.Time

	for k := 0; ; k++ {
		current := start.AddDate(0, 0, k*freqDays)
		if !current.Before(end) {
			break
		}

		dates = append(dates, current)
	}

	return dates, nil
}

// Reverse returns a copy of dates in the opposite order.
func Reverse(dates []time.Time) []time.Time {
	out := slices.Clone(dates)
	slices.Reverse(out)

	return out
}

// Day truncates t to midnight of its calendar day in t's location.
func Day(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Format renders the calendar fields of t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(DayLayout)
}

// FormatReversed renders the calendar fields of t as DD-MM-YYYY.
func FormatReversed(t time.Time) string {
	return t.Format(ReversedDayLayout)
}

// ParseMonth parses a strict YYYY-MM string into the first day of that
// month in the local time zone.
func ParseMonth(value string) (time.Time, error) {
	match := monthPattern.FindStringSubmatch(value)
	if match == nil {
		return time.Time{}, fmt.Errorf("%w: %q (must be YYYY-MM)", ErrInvalidDate, value)
	}

	year, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	month, err := strconv.Atoi(match[2])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %q (month must be 01-12)", ErrInvalidDate, value)
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local), nil
}
