package schedule

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

type Filter struct {
	FreeOnly bool
	Tags     []string
	VenueIDs []string
}

func SortOccurrences(items []Occurrence) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Start.Equal(items[j].Start) {
			return items[i].Start.Before(items[j].Start)
		}
		if !strings.EqualFold(items[i].VenueName, items[j].VenueName) {
			return strings.ToLower(items[i].VenueName) < strings.ToLower(items[j].VenueName)
		}
		if !strings.EqualFold(items[i].Title, items[j].Title) {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		}
		return items[i].ID < items[j].ID
	})
}

// Apply keeps occurrences matching every configured criterion. Tags match
// case-insensitively and any single tag is enough.
func (f Filter) Apply(items []Occurrence) []Occurrence {
	if len(items) == 0 {
		return nil
	}

	tags := make(map[string]struct{}, len(f.Tags))
	for _, tag := range f.Tags {
		if trimmed := strings.ToLower(strings.TrimSpace(tag)); trimmed != "" {
			tags[trimmed] = struct{}{}
		}
	}
	venues := make(map[string]struct{}, len(f.VenueIDs))
	for _, id := range f.VenueIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			venues[trimmed] = struct{}{}
		}
	}

	filtered := make([]Occurrence, 0, len(items))
	for _, item := range items {
		if f.FreeOnly && !item.IsFree() {
			continue
		}
		if len(venues) > 0 {
			if _, ok := venues[item.VenueID]; !ok {
				continue
			}
		}
		if len(tags) > 0 && !hasAnyTag(item.Tags, tags) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func hasAnyTag(itemTags []string, wanted map[string]struct{}) bool {
	for _, tag := range itemTags {
		if _, ok := wanted[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return true
		}
	}
	return false
}

func Upcoming(items []Occurrence, now time.Time, maxItems int) []Occurrence {
	if len(items) == 0 || maxItems <= 0 {
		return nil
	}

	copyItems := make([]Occurrence, 0, len(items))
	for _, item := range items {
		if !item.End.After(now) {
			continue
		}
		copyItems = append(copyItems, item)
	}

	SortOccurrences(copyItems)
	if len(copyItems) > maxItems {
		copyItems = copyItems[:maxItems]
	}
	return copyItems
}

func NextOccurrence(items []Occurrence, now time.Time) mo.Option[Occurrence] {
	upcoming := Upcoming(items, now, 1)
	if len(upcoming) == 0 {
		return mo.None[Occurrence]()
	}
	return mo.Some(upcoming[0])
}

// DeadlinesWithin returns occurrences whose registration deadline lies in
// [now, now+lead], earliest deadline first.
func DeadlinesWithin(items []Occurrence, now time.Time, lead time.Duration) []Occurrence {
	limit := now.Add(lead)
	due := make([]Occurrence, 0)
	for _, item := range items {
		if item.RegistrationDeadline == nil {
			continue
		}
		deadline := *item.RegistrationDeadline
		if deadline.Before(now) || deadline.After(limit) {
			continue
		}
		due = append(due, item)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].RegistrationDeadline.Before(*due[j].RegistrationDeadline)
	})
	return due
}

type DayGroup struct {
	Day   time.Time    `json:"day"`
	Items []Occurrence `json:"items"`
}

// GroupByDay buckets sorted occurrences by their start date in loc.
func GroupByDay(items []Occurrence, loc *time.Location) []DayGroup {
	groups := make([]DayGroup, 0)
	for _, item := range items {
		day := startOfDay(item.Start, loc)
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Items = append(groups[n-1].Items, item)
			continue
		}
		groups = append(groups, DayGroup{Day: day, Items: []Occurrence{item}})
	}
	return groups
}

func CountdownText(now time.Time, item Occurrence) string {
	if !item.Start.After(now) {
		return "nu"
	}
	return HumanizeDuration(item.Start.Sub(now))
}

func HumanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "nu"
	}

	minutes := int(math.Ceil(d.Minutes()))

	days := minutes / (24 * 60)
	remaining := minutes % (24 * 60)
	hours := remaining / 60
	mins := remaining % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, strconv.Itoa(days)+"d")
	}
	if hours > 0 {
		parts = append(parts, strconv.Itoa(hours)+"h")
	}
	if mins > 0 {
		parts = append(parts, strconv.Itoa(mins)+"m")
	}
	if len(parts) == 0 {
		parts = append(parts, "0m")
	}
	return strings.Join(parts, " ")
}

func FormatCost(cost float64) string {
	if cost <= 0 {
		return "gratis"
	}
	return "€" + strconv.FormatFloat(cost, 'f', 2, 64)
}
