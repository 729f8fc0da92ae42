// Package timezone decides which calendar day an instant belongs to.
//
// Every day boundary in the application is Indian Standard Time (UTC+05:30), whatever the
// server or client location is. IST has no daylight saving, so a fixed zone is used instead
// of the tz database.
package timezone

import "time"

const (
	DayKeyLayout = "2006-01-02"
	istOffset    = 5*60*60 + 30*60
	day          = 24 * time.Hour
)

var IST = time.FixedZone("IST", istOffset)

// StartOfDay returns IST midnight of the IST calendar day containing t.
func StartOfDay(t time.Time) time.Time {
	t = t.In(IST)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, IST)
}

// EndOfDay returns the last nanosecond of the IST calendar day containing t.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(day - time.Nanosecond)
}

// DayKey returns the YYYY-MM-DD key of the IST calendar day containing t.
func DayKey(t time.Time) string {
	return t.In(IST).Format(DayKeyLayout)
}

// ParseDayKey returns IST midnight of the day identified by key.
func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, key, IST)
}

// AddDays moves n calendar days from the IST day containing t and returns that day's midnight.
func AddDays(t time.Time, n int) time.Time {
	d := StartOfDay(t)
	return time.Date(d.Year(), d.Month(), d.Day()+n, 0, 0, 0, 0, IST)
}

// DaysBetween returns the number of calendar days from the day of `from` to the day of `to`.
// It is negative when `to` falls on an earlier day.
func DaysBetween(from, to time.Time) int {
	return int(StartOfDay(to).Sub(StartOfDay(from)) / day)
}

// SameDay reports whether a and b fall on the same IST calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}
