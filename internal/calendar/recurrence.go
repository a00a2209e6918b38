package calendar

import (
	"strings"
	"time"
)

// WeekdaySet is a bitmask of time.Weekday values.
type WeekdaySet uint8

var weekdayAbbreviations = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, day := range days {
		set = set.With(day)
	}
	return set
}

func (set WeekdaySet) With(day time.Weekday) WeekdaySet {
	if day < time.Sunday || day > time.Saturday {
		return set
	}
	return set | 1<<uint(day)
}

func (set WeekdaySet) Has(day time.Weekday) bool {
	if day < time.Sunday || day > time.Saturday {
		return false
	}
	return set&(1<<uint(day)) != 0
}

func (set WeekdaySet) Empty() bool {
	return set == 0
}

// Days lists the members in Sunday-first order.
func (set WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for day := time.Sunday; day <= time.Saturday; day++ {
		if set.Has(day) {
			days = append(days, day)
		}
	}
	return days
}

// ParseWeekday accepts full names and common abbreviations, case-insensitively.
func ParseWeekday(name string) (time.Weekday, bool) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return day, ok
}

// MatchedWeekdays scans free text for the English three-letter weekday
// abbreviations anywhere in it, ignoring case. Text without any of them
// matches no day at all; that is the degraded result, not an error.
func MatchedWeekdays(text string) WeekdaySet {
	lower := strings.ToLower(text)
	var set WeekdaySet
	for index, abbreviation := range weekdayAbbreviations {
		if strings.Contains(lower, abbreviation) {
			set = set.With(time.Weekday(index))
		}
	}
	return set
}

func IsActiveOn(text string, weekday time.Weekday) bool {
	return MatchedWeekdays(text).Has(weekday)
}

// TimeHint strips the leading weekday words and separators from a schedule
// descriptor, so "Tue/Thu 3-5pm" becomes "3-5pm".
func TimeHint(text string) string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '/' || r == ',' || r == '&' || r == '+'
	})
	for index, field := range fields {
		word := strings.TrimSuffix(strings.ToLower(field), ".")
		if _, ok := weekdayNames[word]; ok {
			continue
		}
		if _, ok := weekdayNames[strings.TrimSuffix(word, "s")]; ok {
			continue
		}
		if word == "and" {
			continue
		}
		return strings.Join(fields[index:], " ")
	}
	return ""
}
