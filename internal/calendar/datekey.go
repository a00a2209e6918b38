package calendar

import (
	"fmt"
	"time"
)

const dateKeyLayout = "2006-01-02"

// MinYear and MaxYear bound the four-digit years a DateKey can hold. Outside
// them string order stops matching date order.
const (
	MinYear = 1
	MaxYear = 9999
)

// DateKey is a calendar day in YYYY-MM-DD form with no time-of-day and no
// timezone. The zero-padded ISO layout makes string order equal date order.
type DateKey string

// ParseError reports a textual date that is not a valid DateKey.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewDateKey builds a DateKey from a proleptic Gregorian triple. Out-of-range
// months and days are normalized, so day 0 is the last day of the previous month.
func NewDateKey(year int, month time.Month, day int) DateKey {
	return DateKeyFromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateKeyFromTime takes the calendar day of t as seen in t's own location.
func DateKeyFromTime(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates text and returns it as a DateKey. Only the strict
// YYYY-MM-DD layout is accepted.
func ParseDateKey(text string) (DateKey, error) {
	parsed, err := time.ParseInLocation(dateKeyLayout, text, time.UTC)
	if err != nil {
		return "", &ParseError{Input: text, Err: err}
	}
	if parsed.Year() < MinYear {
		return "", &ParseError{Input: text, Err: fmt.Errorf("year before %04d", MinYear)}
	}
	return DateKeyFromTime(parsed), nil
}

// Time returns midnight UTC of the day. Arithmetic on the result never
// crosses a daylight-saving boundary.
func (key DateKey) Time() time.Time {
	parsed, err := time.ParseInLocation(dateKeyLayout, string(key), time.UTC)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func (key DateKey) Parts() (year int, month time.Month, day int) {
	return key.Time().Date()
}

func (key DateKey) AddDays(n int) DateKey {
	return DateKeyFromTime(key.Time().AddDate(0, 0, n))
}

func (key DateKey) Weekday() time.Weekday {
	return key.Time().Weekday()
}

func (key DateKey) Compare(other DateKey) int {
	switch {
	case key < other:
		return -1
	case key > other:
		return 1
	default:
		return 0
	}
}

// InRange reports whether start <= key <= end.
func (key DateKey) InRange(start, end DateKey) bool {
	return key.Compare(start) >= 0 && key.Compare(end) <= 0
}

func (key DateKey) String() string {
	return string(key)
}

// DaysInMonth is computed through day-0 normalization of the following month.
func DaysInMonth(year int, month time.Month) int {
	_, _, day := NewDateKey(year, month+1, 0).Parts()
	return day
}

// MonthRange returns the first and last day of the month.
func MonthRange(year int, month time.Month) (DateKey, DateKey) {
	return NewDateKey(year, month, 1), NewDateKey(year, month+1, 0)
}

// SpanInRange reports whether every day of the n-day span beginning on the
// given year, month and day has a four-digit year.
func SpanInRange(year int, month time.Month, day int, n int) bool {
	if year < MinYear || year > MaxYear {
		return false
	}
	start := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, n-1)
	return start.Year() >= MinYear && end.Year() <= MaxYear
}

// WeekStart returns the Sunday on or before key.
func WeekStart(key DateKey) DateKey {
	return key.AddDays(-int(key.Weekday()))
}

// Dates lists every day from start through end inclusive. An inverted range
// yields nothing.
func Dates(start, end DateKey) []DateKey {
	if start.Compare(end) > 0 {
		return nil
	}
	var dates []DateKey
	for current := start; current.Compare(end) <= 0; current = current.AddDays(1) {
		dates = append(dates, current)
	}
	return dates
}
