package schedule

import (
	"sort"
	"strconv"
	"strings"
)

const (
	textOneTime   = "Eenmalig evenement"
	textRecurring = "Terugkerend evenement"
)

var dayNames = [7]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"}

var weekNames = map[WeekOfMonth]string{
	WeekFirst:  "eerste",
	WeekSecond: "tweede",
	WeekThird:  "derde",
	WeekFourth: "vierde",
	WeekLast:   "laatste",
}

// FormatRecurrenceRule describes rule in Dutch. A nil rule is a one-time
// event; anything it cannot describe gets a generic fallback.
func FormatRecurrenceRule(rule *RecurrenceRule) string {
	if rule == nil {
		return textOneTime
	}

	normalized := rule.Normalize()
	switch normalized.Frequency {
	case FrequencyNone:
		return textOneTime
	case FrequencyWeekly:
		return formatWeekly(normalized.DaysOfWeek)
	case FrequencyBiweekly:
		if normalized.DayOfWeek == nil || !validWeekday(*normalized.DayOfWeek) {
			return textRecurring
		}
		return "Om de 2 weken op " + dayNames[*normalized.DayOfWeek]
	case FrequencyMonthly:
		return formatMonthly(normalized)
	default:
		return textRecurring
	}
}

func formatWeekly(days []int) string {
	set := make(map[int]bool, len(days))
	for _, day := range days {
		if validWeekday(day) {
			set[day] = true
		}
	}
	if len(set) == 0 {
		return textRecurring
	}
	if len(set) == 7 {
		return "Elke dag"
	}
	if len(set) == 5 && !set[0] && !set[6] {
		return "Elke werkdag"
	}

	ordered := make([]int, 0, len(set))
	for day := range set {
		ordered = append(ordered, day)
	}
	// Monday first, Sunday last.
	sort.Slice(ordered, func(i, j int) bool {
		return (ordered[i]+6)%7 < (ordered[j]+6)%7
	})

	names := make([]string, 0, len(ordered))
	for _, day := range ordered {
		names = append(names, dayNames[day])
	}
	return "Elke " + strings.Join(names, ", ")
}

func formatMonthly(rule RecurrenceRule) string {
	if rule.MonthDay != nil {
		if *rule.MonthDay < 1 || *rule.MonthDay > 31 {
			return textRecurring
		}
		return "Elke maand op de " + strconv.Itoa(*rule.MonthDay) + "e"
	}

	if rule.DayOfWeek == nil || !validWeekday(*rule.DayOfWeek) || len(rule.WeeksOfMonth) == 0 {
		return textRecurring
	}

	weeks := make([]WeekOfMonth, 0, len(rule.WeeksOfMonth))
	seen := make(map[WeekOfMonth]bool, len(rule.WeeksOfMonth))
	for _, week := range rule.WeeksOfMonth {
		key := WeekOfMonth(strings.ToUpper(strings.TrimSpace(string(week))))
		if _, ok := weekNames[key]; !ok || seen[key] {
			continue
		}
		seen[key] = true
		weeks = append(weeks, key)
	}
	if len(weeks) == 0 {
		return textRecurring
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weekRank(weeks[i]) < weekRank(weeks[j])
	})

	ordinals := make([]string, 0, len(weeks))
	for _, week := range weeks {
		ordinals = append(ordinals, weekNames[week])
	}

	return "Elke " + strings.Join(ordinals, " en ") + " " + dayNames[*rule.DayOfWeek] + " van de maand"
}

func weekRank(week WeekOfMonth) int {
	ordinal, _ := week.ordinal()
	if ordinal == -1 {
		return 5
	}
	return ordinal
}
