package schedule

import "time"

// startOfDay returns midnight of t's calendar date in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// addDays moves by calendar days, so DST transitions never shift the date.
func addDays(day time.Time, n int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+n, 0, 0, 0, 0, day.Location())
}

// daysBetween counts calendar days from a to b. Both must be midnights in
// the same location.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// mondayOf rounds day back to the Monday of its week.
func mondayOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return addDays(day, -offset)
}

// weekdayDates holds every date of one weekday within one month. A weekday
// occurs at most five times per month.
type weekdayDates struct {
	dates [5]time.Time
	n     int
}

func weekdaysInMonth(year int, month time.Month, weekday time.Weekday, loc *time.Location) weekdayDates {
	var out weekdayDates
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	for day := addDays(first, offset); day.Month() == month && out.n < len(out.dates); day = addDays(day, 7) {
		out.dates[out.n] = day
		out.n++
	}
	return out
}

// nth returns the ordinal-th date (1-based); -1 selects the last one.
func (w weekdayDates) nth(ordinal int) (time.Time, bool) {
	if w.n == 0 {
		return time.Time{}, false
	}
	if ordinal == -1 {
		return w.dates[w.n-1], true
	}
	if ordinal < 1 || ordinal > w.n {
		return time.Time{}, false
	}
	return w.dates[ordinal-1], true
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func validWeekday(day int) bool {
	return day >= 0 && day <= 6
}
