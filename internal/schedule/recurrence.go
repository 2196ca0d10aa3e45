package schedule

import (
	"time"
)

const (
	// lookbackDays starts the scan a week before the window so patterns whose
	// phase reaches into the window are still seen.
	lookbackDays = 7
	// minScanDays covers every view the module offers (day, 24h, week).
	minScanDays = 63
	maxScanDays = lookbackDays + 366 + 1
)

// GenerateOccurrences expands event into the occurrences whose [start, end)
// interval overlaps [windowStart, windowEnd). It never reads the clock and
// never fails: malformed rules yield no occurrences.
func GenerateOccurrences(event Event, windowStart, windowEnd time.Time) []Occurrence {
	if !windowEnd.After(windowStart) {
		return nil
	}

	if !event.IsRecurring() {
		if !overlaps(event.StartTime, event.EndTime, windowStart, windowEnd) {
			return nil
		}
		return []Occurrence{singleOccurrence(event)}
	}

	rule := event.Recurrence.Normalize()
	loc := event.StartTime.Location()
	duration := event.EndTime.Sub(event.StartTime)
	anchorDay := startOfDay(event.StartTime, loc)
	matcher := newDayMatcher(rule, anchorDay)
	if matcher == nil {
		return nil
	}

	first := addDays(startOfDay(windowStart, loc), -lookbackDays)
	lastDay := startOfDay(windowEnd, loc)
	limit := scanLimit(first, lastDay)

	seen := make(map[int64]struct{})
	occurrences := make([]Occurrence, 0, 8)
	for i := 0; i < limit; i++ {
		day := addDays(first, i)
		if day.After(lastDay) {
			break
		}
		if day.Before(anchorDay) {
			continue
		}
		if !matcher(day) {
			continue
		}

		start := atClockOf(day, event.StartTime)
		key := start.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		end := start.Add(duration)
		if !overlaps(start, end, windowStart, windowEnd) {
			continue
		}
		occurrences = append(occurrences, recurringOccurrence(event, start, end))
	}

	return occurrences
}

// ExpandEvents runs GenerateOccurrences for every event and returns the
// merged, sorted result.
func ExpandEvents(events []Event, windowStart, windowEnd time.Time) []Occurrence {
	if len(events) == 0 {
		return nil
	}

	occurrences := make([]Occurrence, 0, len(events))
	for _, event := range events {
		occurrences = append(occurrences, GenerateOccurrences(event, windowStart, windowEnd)...)
	}
	SortOccurrences(occurrences)
	return occurrences
}

// ExpandCatalog is ExpandEvents plus venue names.
func ExpandCatalog(catalog Catalog, windowStart, windowEnd time.Time) []Occurrence {
	occurrences := ExpandEvents(catalog.Events, windowStart, windowEnd)
	names := make(map[string]string, len(catalog.Venues))
	for _, venue := range catalog.Venues {
		names[venue.ID] = venue.Name
	}
	for i := range occurrences {
		occurrences[i].VenueName = names[occurrences[i].VenueID]
	}
	SortOccurrences(occurrences)
	return occurrences
}

type dayMatcher func(day time.Time) bool

func newDayMatcher(rule RecurrenceRule, anchorDay time.Time) dayMatcher {
	switch rule.Frequency {
	case FrequencyWeekly:
		days := make(map[time.Weekday]bool, len(rule.DaysOfWeek))
		for _, day := range rule.DaysOfWeek {
			if validWeekday(day) {
				days[time.Weekday(day)] = true
			}
		}
		if len(days) == 0 {
			return nil
		}
		return func(day time.Time) bool {
			return days[day.Weekday()]
		}

	case FrequencyBiweekly:
		if rule.DayOfWeek == nil || !validWeekday(*rule.DayOfWeek) {
			return nil
		}
		weekday := time.Weekday(*rule.DayOfWeek)
		firstOccurrence := addDays(mondayOf(anchorDay), (int(weekday)+6)%7)
		return func(day time.Time) bool {
			if day.Weekday() != weekday {
				return false
			}
			days := daysBetween(firstOccurrence, day)
			if days < 0 {
				return false
			}
			return (days/7)%2 == 0
		}

	case FrequencyMonthly:
		if rule.MonthDay != nil {
			monthDay := *rule.MonthDay
			return func(day time.Time) bool {
				return day.Day() == monthDay
			}
		}
		if rule.DayOfWeek == nil || !validWeekday(*rule.DayOfWeek) || len(rule.WeeksOfMonth) == 0 {
			return nil
		}
		weekday := time.Weekday(*rule.DayOfWeek)
		ordinals := make([]int, 0, len(rule.WeeksOfMonth))
		for _, week := range rule.WeeksOfMonth {
			if ordinal, ok := week.ordinal(); ok {
				ordinals = append(ordinals, ordinal)
			}
		}
		if len(ordinals) == 0 {
			return nil
		}
		return func(day time.Time) bool {
			if day.Weekday() != weekday {
				return false
			}
			dates := weekdaysInMonth(day.Year(), day.Month(), weekday, day.Location())
			for _, ordinal := range ordinals {
				if match, ok := dates.nth(ordinal); ok && sameDate(match, day) {
					return true
				}
			}
			return false
		}

	default:
		return nil
	}
}

func scanLimit(first, lastDay time.Time) int {
	span := daysBetween(first, lastDay) + 1
	if span < minScanDays {
		return minScanDays
	}
	if span > maxScanDays {
		return maxScanDays
	}
	return span
}

// atClockOf places the wall-clock time of anchor on day.
func atClockOf(day, anchor time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), day.Location())
}

func overlaps(start, end, windowStart, windowEnd time.Time) bool {
	return start.Before(windowEnd) && end.After(windowStart)
}

func singleOccurrence(event Event) Occurrence {
	occurrence := baseOccurrence(event)
	occurrence.ID = event.ID
	occurrence.Start = event.StartTime
	occurrence.End = event.EndTime
	if event.RegistrationDeadline != nil && event.RegistrationDeadline.At != nil {
		at := *event.RegistrationDeadline.At
		occurrence.RegistrationDeadline = &at
	}
	return occurrence
}

func recurringOccurrence(event Event, start, end time.Time) Occurrence {
	occurrence := baseOccurrence(event)
	occurrence.ID = event.ID + "-occurrence-" + start.Format("2006-01-02")
	occurrence.Start = start
	occurrence.End = end
	if event.RegistrationDeadline != nil && event.RegistrationDeadline.Recurring != nil {
		occurrence.RegistrationDeadline = resolveDeadline(*event.RegistrationDeadline.Recurring, start)
	}
	return occurrence
}

// resolveDeadline returns nil when the HH:MM part cannot be parsed.
func resolveDeadline(deadline RecurrenceDeadline, occurrenceStart time.Time) *time.Time {
	hour, minute, ok := deadline.clock()
	if !ok {
		return nil
	}
	day := addDays(startOfDay(occurrenceStart, occurrenceStart.Location()), -deadline.DaysBefore)
	resolved := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	return &resolved
}

func baseOccurrence(event Event) Occurrence {
	occurrence := Occurrence{
		BaseID:          event.ID,
		Title:           event.Title,
		Description:     event.Description,
		VenueID:         event.VenueID,
		Cost:            event.Cost,
		Tags:            append([]string(nil), event.Tags...),
		URL:             event.URL,
		RegistrationURL: event.RegistrationURL,
	}
	if event.Recurrence != nil {
		rule := event.Recurrence.Normalize()
		occurrence.Recurrence = &rule
	}
	return occurrence
}
