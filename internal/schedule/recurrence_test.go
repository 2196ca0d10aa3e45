package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amsterdam(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	return loc
}

func recurringEvent(start time.Time, duration time.Duration, rule RecurrenceRule) Event {
	return Event{
		ID:         "evt",
		Title:      "Soep op zondag",
		VenueID:    "venue-1",
		StartTime:  start,
		EndTime:    start.Add(duration),
		Recurrence: &rule,
	}
}

func startDates(items []Occurrence) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Start.Format("2006-01-02"))
	}
	return out
}

func TestGenerateOccurrences_NonRecurringInsideWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 11, 10, 18, 0, 0, 0, time.UTC)
	event := Event{
		ID:                   "single",
		Title:                "Buurtmaaltijd",
		StartTime:            start,
		EndTime:              start.Add(2 * time.Hour),
		RegistrationDeadline: AbsoluteDeadline(start.Add(-24 * time.Hour)),
	}

	got := GenerateOccurrences(event, start.Add(-time.Hour), start.Add(time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, "single", got[0].ID)
	assert.Equal(t, "single", got[0].BaseID)
	assert.True(t, got[0].Start.Equal(start))
	require.NotNil(t, got[0].RegistrationDeadline)
	assert.True(t, got[0].RegistrationDeadline.Equal(start.Add(-24*time.Hour)))
}

func TestGenerateOccurrences_NonRecurringOutsideWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 11, 10, 18, 0, 0, 0, time.UTC)
	event := Event{ID: "single", StartTime: start, EndTime: start.Add(time.Hour)}

	assert.Empty(t, GenerateOccurrences(event, start.Add(time.Hour), start.Add(3*time.Hour)))
	assert.Empty(t, GenerateOccurrences(event, start.Add(-3*time.Hour), start))
}

func TestGenerateOccurrences_NoneFrequencySpellings(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 11, 10, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		frequency Frequency
	}{
		{name: "canonical", frequency: FrequencyNone},
		{name: "lowercase", frequency: "none"},
		{name: "titlecase", frequency: "None"},
		{name: "padded", frequency: " NONE"},
		{name: "empty", frequency: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			event := recurringEvent(start, time.Hour, RecurrenceRule{Frequency: tc.frequency})
			assert.False(t, event.IsRecurring())

			got := GenerateOccurrences(event, start.Add(-time.Hour), start.Add(time.Hour))
			require.Len(t, got, 1)
			assert.Equal(t, "evt", got[0].ID)
			assert.True(t, got[0].Start.Equal(start))
			assert.Equal(t, "Eenmalig evenement", FormatRecurrenceRule(event.Recurrence))
		})
	}
}

func TestGenerateOccurrences_KeepsTitleAsStored(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 11, 10, 18, 0, 0, 0, time.UTC)
	single := Event{ID: "single", Title: "  Soep  op maandag ", StartTime: start, EndTime: start.Add(time.Hour)}
	untitled := Event{ID: "untitled", StartTime: start, EndTime: start.Add(time.Hour)}

	got := GenerateOccurrences(single, start.Add(-time.Hour), start.Add(time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, "  Soep  op maandag ", got[0].Title)

	got = GenerateOccurrences(untitled, start.Add(-time.Hour), start.Add(time.Hour))
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Title)
}

func TestGenerateOccurrences_NonRecurringDropsRecurringDeadline(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 11, 10, 18, 0, 0, 0, time.UTC)
	event := Event{
		ID:                   "single",
		StartTime:            start,
		EndTime:              start.Add(time.Hour),
		Recurrence:           &RecurrenceRule{Frequency: FrequencyNone},
		RegistrationDeadline: RecurringDeadline(1, "12:00"),
	}

	got := GenerateOccurrences(event, start.Add(-time.Hour), start.Add(time.Hour))
	require.Len(t, got, 1)
	assert.Nil(t, got[0].RegistrationDeadline)
}

func TestGenerateOccurrences_WeeklyAllDays(t *testing.T) {
	t.Parallel()

	loc := amsterdam(t)
	anchor := time.Date(2025, 11, 3, 12, 0, 0, 0, loc)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
	})

	windowStart := time.Date(2025, 11, 10, 0, 0, 0, 0, loc)
	got := GenerateOccurrences(event, windowStart, windowStart.AddDate(0, 0, 7))

	require.Len(t, got, 7)
	assert.Equal(t, []string{
		"2025-11-10", "2025-11-11", "2025-11-12", "2025-11-13",
		"2025-11-14", "2025-11-15", "2025-11-16",
	}, startDates(got))
	assert.Equal(t, "Elke dag", FormatRecurrenceRule(event.Recurrence))
}

func TestGenerateOccurrences_WeeklyLegacyDayOfWeek(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 4, 17, 30, 0, 0, time.UTC) // Tuesday
	event := recurringEvent(anchor, 90*time.Minute, RecurrenceRule{
		Frequency: FrequencyWeekly,
		DayOfWeek: IntPtr(2),
	})

	windowStart := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, windowStart.AddDate(0, 0, 14))
	assert.Equal(t, []string{"2025-11-11", "2025-11-18"}, startDates(got))
	for _, item := range got {
		assert.Equal(t, 17, item.Start.Hour())
		assert.Equal(t, 30, item.Start.Minute())
	}
}

func TestGenerateOccurrences_WeeklyDaysOfWeekBeatLegacyField(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{5},
		DayOfWeek:  IntPtr(1),
	})

	windowStart := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, windowStart.AddDate(0, 0, 7))
	assert.Equal(t, []string{"2025-11-14"}, startDates(got))
}

func TestGenerateOccurrences_BiweeklyPhaseLockedToAnchor(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 5, 18, 0, 0, 0, time.UTC) // Wednesday
	event := recurringEvent(anchor, 2*time.Hour, RecurrenceRule{
		Frequency: FrequencyBiweekly,
		DayOfWeek: IntPtr(3),
	})

	weekStart := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC) // Monday of anchor week
	got := GenerateOccurrences(event, weekStart, weekStart.AddDate(0, 0, 42))
	SortOccurrences(got)

	assert.Equal(t, []string{"2025-11-05", "2025-11-19", "2025-12-03"}, startDates(got))
	for _, item := range got {
		weeks := daysBetween(weekStart, startOfDay(item.Start, time.UTC)) / 7
		assert.Zero(t, weeks%2, "occurrence %s is in odd week %d", item.ID, weeks)
	}
}

func TestGenerateOccurrences_BiweeklyDayBeforeAnchorWeekday(t *testing.T) {
	t.Parallel()

	// Anchor on Thursday, rule on Monday: the Monday of the anchor week is
	// before the anchor, so the first occurrence is two weeks later.
	anchor := time.Date(2025, 11, 6, 10, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency: FrequencyBiweekly,
		DayOfWeek: IntPtr(1),
	})

	windowStart := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, windowStart.AddDate(0, 0, 35))
	SortOccurrences(got)
	assert.Equal(t, []string{"2025-11-17", "2025-12-01"}, startDates(got))
}

func TestGenerateOccurrences_MonthlyLastFridayPicksFifth(t *testing.T) {
	t.Parallel()

	// October 2025 has five Fridays: 3, 10, 17, 24, 31.
	anchor := time.Date(2025, 9, 1, 19, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:    FrequencyMonthly,
		DayOfWeek:    IntPtr(5),
		WeeksOfMonth: []WeekOfMonth{WeekLast},
	})

	windowStart := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"2025-10-31"}, startDates(got))
}

func TestGenerateOccurrences_MonthlyLastFridayInFourFridayMonth(t *testing.T) {
	t.Parallel()

	// November 2025 has four Fridays: 7, 14, 21, 28.
	anchor := time.Date(2025, 9, 1, 19, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:    FrequencyMonthly,
		DayOfWeek:    IntPtr(5),
		WeeksOfMonth: []WeekOfMonth{WeekLast},
	})

	windowStart := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"2025-11-28"}, startDates(got))
}

func TestGenerateOccurrences_MonthlyFirstAndThird(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:    FrequencyMonthly,
		DayOfWeek:    IntPtr(2),
		WeeksOfMonth: []WeekOfMonth{WeekThird, WeekFirst},
	})

	windowStart := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	SortOccurrences(got)
	assert.Equal(t, []string{"2025-12-02", "2025-12-16"}, startDates(got))
}

func TestGenerateOccurrences_MonthlyByDateBeatsWeekdayFields(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:    FrequencyMonthly,
		MonthDay:     IntPtr(15),
		DayOfWeek:    IntPtr(5),
		WeeksOfMonth: []WeekOfMonth{WeekFirst},
	})

	windowStart := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"2025-12-15"}, startDates(got))
}

func TestGenerateOccurrences_MonthlyDay31SkipsShortMonths(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency: FrequencyMonthly,
		MonthDay:  IntPtr(31),
	})

	windowStart := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, GenerateOccurrences(event, windowStart, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)))
}

func TestGenerateOccurrences_NothingBeforeAnchor(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 12, 18, 0, 0, 0, time.UTC) // Wednesday
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
	})

	windowStart := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, windowStart.AddDate(0, 0, 7))

	assert.Equal(t, []string{
		"2025-11-12", "2025-11-13", "2025-11-14", "2025-11-15", "2025-11-16",
	}, startDates(got))
	for _, item := range got {
		assert.False(t, startOfDay(item.Start, time.UTC).Before(startOfDay(anchor, time.UTC)))
	}
}

func TestGenerateOccurrences_WindowOverlapIsStrict(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, 2*time.Hour, RecurrenceRule{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{1},
	})

	monday := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

	// Window ends exactly at the start: excluded.
	assert.Empty(t, GenerateOccurrences(event, monday, monday.Add(10*time.Hour)))
	// Window starts exactly at the end: excluded.
	assert.Empty(t, GenerateOccurrences(event, monday.Add(12*time.Hour), monday.Add(20*time.Hour)))
	// Window starts mid-occurrence: included.
	got := GenerateOccurrences(event, monday.Add(11*time.Hour), monday.Add(20*time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, "evt-occurrence-2025-11-10", got[0].ID)
}

func TestGenerateOccurrences_OccurrenceSpanningIntoWindow(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 3, 22, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, 4*time.Hour, RecurrenceRule{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{0},
	})

	// Sunday 22:00 to Monday 02:00 overlaps a Monday-only window.
	monday := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, monday, monday.Add(24*time.Hour))
	require.Len(t, got, 1)
	assert.Equal(t, "2025-11-09", got[0].Start.Format("2006-01-02"))
}

func TestGenerateOccurrences_PreservesDurationAndWallClockAcrossDST(t *testing.T) {
	t.Parallel()

	loc := amsterdam(t)
	// Summer time anchor; the window lies after the switch to winter time.
	anchor := time.Date(2025, 10, 1, 18, 30, 0, 0, loc)
	event := recurringEvent(anchor, 150*time.Minute, RecurrenceRule{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{3},
	})

	windowStart := time.Date(2025, 10, 20, 0, 0, 0, 0, loc)
	got := GenerateOccurrences(event, windowStart, windowStart.AddDate(0, 0, 14))
	require.Len(t, got, 2)
	for _, item := range got {
		assert.Equal(t, 150*time.Minute, item.End.Sub(item.Start))
		assert.Equal(t, 18, item.Start.In(loc).Hour())
		assert.Equal(t, 30, item.Start.In(loc).Minute())
	}
}

func TestGenerateOccurrences_ResolvesRecurringDeadline(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 3, 16, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{1},
	})
	event.RegistrationDeadline = RecurringDeadline(2, "15:00")

	windowStart := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, windowStart.Add(24*time.Hour))
	require.Len(t, got, 1)
	require.True(t, got[0].Start.Equal(time.Date(2025, 11, 10, 16, 0, 0, 0, time.UTC)))
	require.NotNil(t, got[0].RegistrationDeadline)
	assert.True(t, got[0].RegistrationDeadline.Equal(time.Date(2025, 11, 8, 15, 0, 0, 0, time.UTC)),
		"got %s", got[0].RegistrationDeadline)
}

func TestGenerateOccurrences_DropsAbsoluteDeadlineOnRecurringEvent(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 3, 16, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{1},
	})
	event.RegistrationDeadline = AbsoluteDeadline(time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC))

	windowStart := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, windowStart.Add(24*time.Hour))
	require.Len(t, got, 1)
	assert.Nil(t, got[0].RegistrationDeadline)
}

func TestGenerateOccurrences_MalformedDeadlineClockIsDropped(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 3, 16, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{
		Frequency:  FrequencyWeekly,
		DaysOfWeek: []int{1},
	})
	event.RegistrationDeadline = RecurringDeadline(1, "half vier")

	windowStart := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, windowStart.Add(24*time.Hour))
	require.Len(t, got, 1)
	assert.Nil(t, got[0].RegistrationDeadline)
}

func TestGenerateOccurrences_MalformedRulesYieldNothing(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 3, 16, 0, 0, 0, time.UTC)
	windowStart := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 7)

	rules := map[string]RecurrenceRule{
		"weekly_without_days":     {Frequency: FrequencyWeekly},
		"weekly_out_of_range_day": {Frequency: FrequencyWeekly, DaysOfWeek: []int{9}},
		"biweekly_without_day":    {Frequency: FrequencyBiweekly},
		"monthly_empty":           {Frequency: FrequencyMonthly},
		"monthly_weeks_no_day":    {Frequency: FrequencyMonthly, WeeksOfMonth: []WeekOfMonth{WeekFirst}},
		"monthly_unknown_week":    {Frequency: FrequencyMonthly, DayOfWeek: IntPtr(1), WeeksOfMonth: []WeekOfMonth{"FIFTH"}},
		"unknown_frequency":       {Frequency: "YEARLY"},
	}

	for name, rule := range rules {
		rule := rule
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, GenerateOccurrences(recurringEvent(anchor, time.Hour, rule), windowStart, windowEnd))
		})
	}
}

func TestGenerateOccurrences_EmptyWindow(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 11, 3, 16, 0, 0, 0, time.UTC)
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{Frequency: FrequencyWeekly, DaysOfWeek: []int{1}})
	assert.Empty(t, GenerateOccurrences(event, anchor, anchor))
}

func TestGenerateOccurrences_PropertiesHoldAcrossRules(t *testing.T) {
	t.Parallel()

	loc := amsterdam(t)
	anchor := time.Date(2025, 10, 15, 17, 45, 0, 0, loc)
	rules := []RecurrenceRule{
		{Frequency: FrequencyWeekly, DaysOfWeek: []int{0, 2, 4, 6}},
		{Frequency: FrequencyWeekly, DayOfWeek: IntPtr(3)},
		{Frequency: FrequencyBiweekly, DayOfWeek: IntPtr(6)},
		{Frequency: FrequencyMonthly, MonthDay: IntPtr(1)},
		{Frequency: FrequencyMonthly, DayOfWeek: IntPtr(0), WeeksOfMonth: []WeekOfMonth{WeekSecond, WeekLast}},
	}

	for i := 0; i < 60; i += 3 {
		windowStart := time.Date(2025, 10, 1, 6, 0, 0, 0, loc).AddDate(0, 0, i)
		windowEnd := windowStart.AddDate(0, 0, 7)
		for _, rule := range rules {
			event := recurringEvent(anchor, 95*time.Minute, rule)
			got := GenerateOccurrences(event, windowStart, windowEnd)

			seen := make(map[int64]bool, len(got))
			for _, item := range got {
				assert.False(t, startOfDay(item.Start, loc).Before(startOfDay(anchor, loc)))
				assert.Equal(t, 95*time.Minute, item.End.Sub(item.Start))
				assert.True(t, item.Start.Before(windowEnd) && item.End.After(windowStart))
				assert.False(t, seen[item.Start.UnixNano()], "duplicate start %s", item.Start)
				seen[item.Start.UnixNano()] = true
				assert.Equal(t, "evt", item.BaseID)
			}
		}
	}
}

func TestGenerateOccurrences_LongWindowWidensScan(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC) // Monday
	event := recurringEvent(anchor, time.Hour, RecurrenceRule{Frequency: FrequencyWeekly, DaysOfWeek: []int{1}})

	windowStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got := GenerateOccurrences(event, windowStart, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.Len(t, got, 26)
}

func TestExpandCatalog_AttachesVenueNamesAndSorts(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	catalog := Catalog{
		Venues: []Venue{{ID: "v1", Name: "Huiskamer Noord"}, {ID: "v2", Name: "Buurthuis Zuid"}},
		Events: []Event{
			{ID: "late", Title: "Avondeten", VenueID: "v1", StartTime: day.Add(18 * time.Hour), EndTime: day.Add(20 * time.Hour)},
			recurringEvent(day.AddDate(0, 0, -7).Add(12*time.Hour), time.Hour, RecurrenceRule{Frequency: FrequencyWeekly, DaysOfWeek: []int{1}}),
		},
	}
	catalog.Events[1].VenueID = "v2"

	got := ExpandCatalog(catalog, day, day.Add(24*time.Hour))
	require.Len(t, got, 2)
	assert.Equal(t, "evt-occurrence-2025-11-10", got[0].ID)
	assert.Equal(t, "Buurthuis Zuid", got[0].VenueName)
	assert.Equal(t, "late", got[1].ID)
	assert.Equal(t, "Huiskamer Noord", got[1].VenueName)
}

func TestEvent_JSONRoundTripKeepsFieldNames(t *testing.T) {
	t.Parallel()

	raw := `{
		"id": "soep",
		"title": "Soep",
		"cost": 0,
		"startTime": "2025-11-03T16:00:00Z",
		"endTime": "2025-11-03T17:00:00Z",
		"recurrence": {"frequency": "MONTHLY", "dayOfWeek": 5, "weeksOfMonth": ["LAST"]},
		"registrationDeadline": {"daysBefore": 2, "time": "15:00"}
	}`

	var event Event
	require.NoError(t, json.Unmarshal([]byte(raw), &event))
	require.NotNil(t, event.Recurrence)
	assert.Equal(t, FrequencyMonthly, event.Recurrence.Frequency)
	require.NotNil(t, event.Recurrence.DayOfWeek)
	assert.Equal(t, 5, *event.Recurrence.DayOfWeek)
	require.NotNil(t, event.RegistrationDeadline)
	require.NotNil(t, event.RegistrationDeadline.Recurring)
	assert.Equal(t, 2, event.RegistrationDeadline.Recurring.DaysBefore)

	encoded, err := json.Marshal(event)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(encoded, &generic))
	recurrence, ok := generic["recurrence"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, recurrence, "weeksOfMonth")
	assert.Contains(t, recurrence, "dayOfWeek")
	deadline, ok := generic["registrationDeadline"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "15:00", deadline["time"])
}

func TestDeadline_UnmarshalAbsoluteString(t *testing.T) {
	t.Parallel()

	var deadline Deadline
	require.NoError(t, json.Unmarshal([]byte(`"2025-11-08T15:00:00Z"`), &deadline))
	require.NotNil(t, deadline.At)
	assert.Nil(t, deadline.Recurring)
	assert.True(t, deadline.At.Equal(time.Date(2025, 11, 8, 15, 0, 0, 0, time.UTC)))
}
