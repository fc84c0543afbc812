// Package dateutil converts between date keys ("YYYY-MM-DD") and local calendar
// dates without ever going through UTC.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KeyLayout is the time layout of a date key.
const KeyLayout = "2006-01-02"

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
)

// weekdayMap maps weekday names to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Decode converts a date key into local midnight of that calendar day.
// It never fails: an unparseable month or day becomes 1 and an unparseable
// year becomes the current local year. Out-of-range fields normalize the way
// time.Date does (2025-02-30 is March 2nd).
func Decode(key string) time.Time {
	parts := strings.Split(strings.TrimSpace(key), "-")
	year := time.Now().Year()
	month, day := 1, 1

	if len(parts) > 0 {
		if v, err := strconv.Atoi(parts[0]); err == nil {
			year = v
		}
	}
	if len(parts) > 1 {
		if v, err := strconv.Atoi(parts[1]); err == nil && v != 0 {
			month = v
		}
	}
	if len(parts) > 2 {
		if v, err := strconv.Atoi(parts[2]); err == nil && v != 0 {
			day = v
		}
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}

// Encode formats the local calendar fields of t as a date key.
// The clock and zone of t are ignored; its own Year/Month/Day are used as-is.
func Encode(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// Today returns the date key of the current local day.
func Today() string {
	return Encode(time.Now())
}

// AddDays returns the key n days after key (n may be negative).
func AddDays(key string, n int) string {
	return Encode(Decode(key).AddDate(0, 0, n))
}

// ParseKey validates s strictly and returns it as local midnight.
func ParseKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ValidKey reports whether s is a well-formed Gregorian date key.
func ValidKey(s string) bool {
	_, err := ParseKey(s)
	return err == nil
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b string) int {
	ta, tb := Decode(a), Decode(b)
	// Noon avoids DST days that are 23 or 25 hours long.
	ta = time.Date(ta.Year(), ta.Month(), ta.Day(), 12, 0, 0, 0, time.UTC)
	tb = time.Date(tb.Year(), tb.Month(), tb.Day(), 12, 0, 0, 0, time.UTC)
	return int(tb.Sub(ta).Hours() / 24)
}

// DateRange represents a validated, inclusive range of date keys.
type DateRange struct {
	Start string
	End   string
}

// NewDateRange creates a new DateRange with validation.
// startDate can be empty (defaults to today) or a date key.
// endDate can be empty (defaults to startDate) or a date key.
func NewDateRange(startDate, endDate string) (*DateRange, error) {
	if startDate == "" {
		startDate = Today()
	}
	if !ValidKey(startDate) {
		return nil, ErrInvalidDateFormat
	}
	if endDate == "" {
		endDate = startDate
	}
	if !ValidKey(endDate) {
		return nil, ErrInvalidDateFormat
	}
	if endDate < startDate {
		return nil, ErrEndDateBeforeStart
	}
	return &DateRange{Start: startDate, End: endDate}, nil
}

// Days returns how many calendar days the range covers, ends included.
func (r DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

// Contains reports whether key falls inside the range.
func (r DateRange) Contains(key string) bool {
	return key >= r.Start && key <= r.End
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//   - Keywords: "tomorrow", "yesterday"
//   - Weekday names: "monday" through "sunday" (next occurrence, always future)
//   - Next prefixed: "next-monday" through "next-sunday", "next-week"
//
// All inputs are case-insensitive. The result is a date key.
func ParseRelativeDate(s string, relativeTo time.Time) (string, error) {
	today := time.Date(relativeTo.Year(), relativeTo.Month(), relativeTo.Day(), 0, 0, 0, 0, time.Local)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return Encode(today), nil
	case "tomorrow":
		return Encode(today.AddDate(0, 0, 1)), nil
	case "yesterday":
		return Encode(today.AddDate(0, 0, -1)), nil
	case "next-week":
		return Encode(today.AddDate(0, 0, 7)), nil
	}

	if strings.HasPrefix(input, "next-") {
		if target, ok := weekdayMap[strings.TrimPrefix(input, "next-")]; ok {
			return Encode(nextWeekday(today, target)), nil
		}
		return "", ErrInvalidDateFormat
	}

	if target, ok := weekdayMap[input]; ok {
		return Encode(nextWeekday(today, target)), nil
	}

	if _, err := ParseKey(input); err != nil {
		return "", err
	}
	return input, nil
}

// nextWeekday returns the next occurrence of the given weekday after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}
