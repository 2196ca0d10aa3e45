package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_FreeOnlyAndTags(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	items := []Occurrence{
		{ID: "a", Title: "Soep", Start: now, End: now.Add(time.Hour), Tags: []string{"Vegan", "soep"}},
		{ID: "b", Title: "Diner", Start: now, End: now.Add(time.Hour), Cost: 3.5, Tags: []string{"vegan"}},
		{ID: "c", Title: "Brood", Start: now, End: now.Add(time.Hour), Tags: []string{"brood"}, VenueID: "v2"},
	}

	filtered := Filter{FreeOnly: true, Tags: []string{" VEGAN "}}.Apply(items)
	require.Len(t, filtered, 1)
	assert.Equal(t, "a", filtered[0].ID)

	byVenue := Filter{VenueIDs: []string{"v2"}}.Apply(items)
	require.Len(t, byVenue, 1)
	assert.Equal(t, "c", byVenue[0].ID)

	assert.Len(t, Filter{}.Apply(items), 3)
}

func TestUpcoming_DropsFinishedAndCaps(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	items := []Occurrence{
		{ID: "later", Title: "Later", Start: now.Add(5 * time.Hour), End: now.Add(6 * time.Hour)},
		{ID: "done", Title: "Done", Start: now.Add(-3 * time.Hour), End: now.Add(-time.Hour)},
		{ID: "running", Title: "Running", Start: now.Add(-time.Hour), End: now.Add(time.Hour)},
		{ID: "soon", Title: "Soon", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)},
	}

	upcoming := Upcoming(items, now, 2)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "running", upcoming[0].ID)
	assert.Equal(t, "soon", upcoming[1].ID)

	assert.Nil(t, Upcoming(items, now, 0))
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	items := []Occurrence{
		{ID: "b", Start: now.Add(2 * time.Hour), End: now.Add(3 * time.Hour)},
		{ID: "a", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)},
	}

	next, ok := NextOccurrence(items, now).Get()
	require.True(t, ok)
	assert.Equal(t, "a", next.ID)

	assert.False(t, NextOccurrence(nil, now).IsPresent())
}

func TestDeadlinesWithin(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		value := now.Add(d)
		return &value
	}
	items := []Occurrence{
		{ID: "past", RegistrationDeadline: at(-time.Minute)},
		{ID: "late", RegistrationDeadline: at(20 * time.Hour)},
		{ID: "none"},
		{ID: "soon", RegistrationDeadline: at(2 * time.Hour)},
		{ID: "far", RegistrationDeadline: at(30 * time.Hour)},
	}

	due := DeadlinesWithin(items, now, 24*time.Hour)
	require.Len(t, due, 2)
	assert.Equal(t, "soon", due[0].ID)
	assert.Equal(t, "late", due[1].ID)
}

func TestGroupByDay_UsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CET", 3600)
	items := []Occurrence{
		// 23:30 UTC is already the next day in CET.
		{ID: "a", Start: time.Date(2025, 11, 10, 10, 0, 0, 0, time.UTC)},
		{ID: "b", Start: time.Date(2025, 11, 10, 23, 30, 0, 0, time.UTC)},
		{ID: "c", Start: time.Date(2025, 11, 11, 9, 0, 0, 0, time.UTC)},
	}

	groups := GroupByDay(items, loc)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Items, 1)
	assert.Len(t, groups[1].Items, 2)
	assert.Equal(t, "2025-11-11", groups[1].Day.Format("2006-01-02"))
}

func TestHumanizeDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Duration
		out  string
	}{
		{name: "zero", in: 0, out: "nu"},
		{name: "seconds_round_up", in: 20 * time.Second, out: "1m"},
		{name: "minutes", in: 24 * time.Minute, out: "24m"},
		{name: "hours_minutes", in: 4*time.Hour + 24*time.Minute, out: "4h 24m"},
		{name: "days_hours_minutes", in: 2*24*time.Hour + 3*time.Hour + 5*time.Minute, out: "2d 3h 5m"},
		{name: "whole_day", in: 24 * time.Hour, out: "1d"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.out, HumanizeDuration(tc.in))
		})
	}
}

func TestFormatCost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "gratis", FormatCost(0))
	assert.Equal(t, "€2.50", FormatCost(2.5))
}
