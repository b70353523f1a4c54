package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidWeekday    = errors.New("invalid weekday")
	ErrInvalidTimeFormat = errors.New("invalid time format")
)

// Weekday numbers days Monday-first: Monday=0 ... Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayShortNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayShortNames[d]
}

// WeekdayOf converts Go's Sunday-first weekday of t.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// WeekdayMask is a 7-bit set; bit i set means Weekday(i) is selected.
type WeekdayMask uint8

const (
	MaskWeekdays WeekdayMask = 0b0011111
	MaskWeekend  WeekdayMask = 0b1100000
	MaskEveryDay WeekdayMask = 0b1111111
)

// WeekdaysToMask folds days into a mask. Any day outside Monday..Sunday fails
// with ErrInvalidWeekday.
func WeekdaysToMask(days []Weekday) (WeekdayMask, error) {
	var mask WeekdayMask
	for _, d := range days {
		if !d.Valid() {
			return 0, fmt.Errorf("weekday %d must be 0..6 (Mon..Sun): %w", int(d), ErrInvalidWeekday)
		}
		mask |= 1 << uint(d)
	}
	return mask, nil
}

// MaskHasDay reports whether day is selected in mask.
func MaskHasDay(mask WeekdayMask, day Weekday) bool {
	return mask.Has(day)
}

func (m WeekdayMask) Has(day Weekday) bool {
	if !day.Valid() {
		return false
	}
	return m&(1<<uint(day)) != 0
}

// Days lists the selected days in Monday-first order.
func (m WeekdayMask) Days() []Weekday {
	var days []Weekday
	for d := Monday; d <= Sunday; d++ {
		if m.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

func (m WeekdayMask) String() string {
	switch m & MaskEveryDay {
	case 0:
		return "never"
	case MaskEveryDay:
		return "every day"
	case MaskWeekdays:
		return "weekdays"
	case MaskWeekend:
		return "weekend"
	}
	names := make([]string, 0, 7)
	for _, d := range m.Days() {
		names = append(names, d.String())
	}
	return strings.Join(names, ",")
}

// ParseWeekdays accepts a comma-separated list of day names ("mon,wed,fri",
// full names work too) or one of the shorthands weekdays, weekend, daily.
func ParseWeekdays(s string) (WeekdayMask, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, nil
	case "weekdays":
		return MaskWeekdays, nil
	case "weekend", "weekends":
		return MaskWeekend, nil
	case "daily", "everyday", "every day", "all":
		return MaskEveryDay, nil
	}

	var days []Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) < 3 {
			return 0, fmt.Errorf("weekday %q: %w", part, ErrInvalidWeekday)
		}
		found := false
		for i, name := range weekdayShortNames {
			if strings.HasPrefix(part, strings.ToLower(name)) {
				days = append(days, Weekday(i))
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("weekday %q: %w", part, ErrInvalidWeekday)
		}
	}
	return WeekdaysToMask(days)
}

// ParseTimeOfDay parses "HH:MM" into hour and minute. The text must be exactly
// two colon-separated integers with hour in 0..23 and minute in 0..59.
func ParseTimeOfDay(text string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("time %q must be HH:MM: %w", text, ErrInvalidTimeFormat)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("hour %q: %w", parts[0], ErrInvalidTimeFormat)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("minute %q: %w", parts[1], ErrInvalidTimeFormat)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range: %w", text, ErrInvalidTimeFormat)
	}
	return hour, minute, nil
}

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}
