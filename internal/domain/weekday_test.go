package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdaysToMask_SetsBitPerDay(t *testing.T) {
	mask, err := WeekdaysToMask([]Weekday{Monday, Wednesday, Sunday})
	require.NoError(t, err)
	assert.Equal(t, WeekdayMask(0b1000101), mask)
}

func TestWeekdaysToMask_MondayThroughFriday(t *testing.T) {
	mask, err := WeekdaysToMask([]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday})
	require.NoError(t, err)
	assert.Equal(t, MaskWeekdays, mask)
}

func TestWeekdaysToMask_Empty(t *testing.T) {
	mask, err := WeekdaysToMask(nil)
	require.NoError(t, err)
	assert.Equal(t, WeekdayMask(0), mask)
}

func TestWeekdaysToMask_RejectsOutOfRange(t *testing.T) {
	for _, d := range []Weekday{-1, 7, 42} {
		_, err := WeekdaysToMask([]Weekday{Monday, d})
		require.Error(t, err, "day=%d", d)
		assert.ErrorIs(t, err, ErrInvalidWeekday)
	}
}

func TestMaskHasDay(t *testing.T) {
	mask := MaskWeekend
	assert.True(t, MaskHasDay(mask, Saturday))
	assert.True(t, MaskHasDay(mask, Sunday))
	assert.False(t, MaskHasDay(mask, Friday))
	assert.False(t, MaskHasDay(mask, Weekday(9)))
}

func TestWeekdayOf_MondayFirst(t *testing.T) {
	// 2025-06-16 is a Monday.
	mon := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, Weekday(i), WeekdayOf(mon.AddDate(0, 0, i)))
	}
}

func TestWeekdayMask_String(t *testing.T) {
	cases := []struct {
		mask WeekdayMask
		want string
	}{
		{0, "never"},
		{MaskEveryDay, "every day"},
		{MaskWeekdays, "weekdays"},
		{MaskWeekend, "weekend"},
		{0b0010101, "Mon,Wed,Fri"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.mask.String())
	}
}

func TestParseWeekdays(t *testing.T) {
	cases := []struct {
		in   string
		want WeekdayMask
	}{
		{"mon,wed,fri", 0b0010101},
		{"Monday, Thursday", 0b0001001},
		{"weekdays", MaskWeekdays},
		{"weekend", MaskWeekend},
		{"daily", MaskEveryDay},
		{"", 0},
	}
	for _, tc := range cases {
		got, err := ParseWeekdays(tc.in)
		require.NoError(t, err, "in=%q", tc.in)
		assert.Equal(t, tc.want, got, "in=%q", tc.in)
	}
}

func TestParseWeekdays_Unknown(t *testing.T) {
	for _, in := range []string{"mon,funday", "tu", "xyz"} {
		_, err := ParseWeekdays(in)
		assert.ErrorIs(t, err, ErrInvalidWeekday, "in=%q", in)
	}
}

func TestParseTimeOfDay_Valid(t *testing.T) {
	cases := []struct {
		in           string
		hour, minute int
	}{
		{"07:00", 7, 0},
		{"7:05", 7, 5},
		{"23:59", 23, 59},
		{"00:00", 0, 0},
		{" 06:30 ", 6, 30},
	}
	for _, tc := range cases {
		h, m, err := ParseTimeOfDay(tc.in)
		require.NoError(t, err, "in=%q", tc.in)
		assert.Equal(t, tc.hour, h)
		assert.Equal(t, tc.minute, m)
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, in := range []string{"", "7", "24:00", "12:60", "-1:00", "12:30:00", "ab:cd", "12-30"} {
		_, _, err := ParseTimeOfDay(in)
		require.Error(t, err, "in=%q", in)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, "in=%q", in)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-21", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("21/06/2025", time.UTC)
	assert.Error(t, err)
}
