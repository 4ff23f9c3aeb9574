package model

import "time"

// BirthdayWindowDays is the length of the upcoming-birthday window.
const BirthdayWindowDays = 7

// MonthDay identifies a calendar day independent of the year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// UpcomingMonthDays returns the month/day pairs of the half-open window
// [today, today+days). The window follows the calendar, so it crosses month
// and year boundaries.
func UpcomingMonthDays(today time.Time, days int) []MonthDay {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]MonthDay, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		out = append(out, MonthDay{Month: d.Month(), Day: d.Day()})
	}
	return out
}
