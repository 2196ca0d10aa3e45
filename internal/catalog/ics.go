package catalog

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/rs/zerolog/log"
)

// Properties carrying fields that plain iCalendar has no slot for.
const (
	propertyVenueID         = ics.ComponentProperty("X-FOODEVENTS-VENUE-ID")
	propertyCost            = ics.ComponentProperty("X-FOODEVENTS-COST")
	propertyRegistrationURL = ics.ComponentProperty("X-FOODEVENTS-REGISTRATION-URL")
	propertyDeadline        = ics.ComponentProperty("X-FOODEVENTS-DEADLINE")
)

// ParseICS maps the VEVENTs of a calendar to catalog events. Venues are
// derived from LOCATION. Events whose RRULE cannot be expressed are skipped
// with a warning.
func ParseICS(r io.Reader, loc *time.Location) (schedule.Catalog, error) {
	if loc == nil {
		loc = time.Local
	}

	parsed, err := ics.ParseCalendar(r)
	if err != nil {
		return schedule.Catalog{}, fmt.Errorf("parse ics payload: %w", err)
	}

	catalog := schedule.Catalog{}
	venues := make(map[string]struct{})
	for _, component := range parsed.Events() {
		event, venue, mapErr := mapEvent(component, loc)
		if mapErr != nil {
			log.Warn().Err(mapErr).Str("uid", propertyValue(component.GetProperty(ics.ComponentPropertyUniqueId))).Msg("skipping ics event")
			continue
		}
		if venue.ID != "" {
			if _, ok := venues[venue.ID]; !ok {
				venues[venue.ID] = struct{}{}
				catalog.Venues = append(catalog.Venues, venue)
			}
		}
		catalog.Events = append(catalog.Events, event)
	}

	return catalog, nil
}

func mapEvent(component *ics.VEvent, loc *time.Location) (schedule.Event, schedule.Venue, error) {
	start, err := propertyTime(component.GetProperty(ics.ComponentPropertyDtStart), loc)
	if err != nil {
		return schedule.Event{}, schedule.Venue{}, fmt.Errorf("read DTSTART: %w", err)
	}
	allDay := isAllDay(component.GetProperty(ics.ComponentPropertyDtStart))
	if allDay {
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	}

	end, err := propertyTime(component.GetProperty(ics.ComponentPropertyDtEnd), loc)
	switch {
	case err != nil || !end.After(start):
		if allDay {
			end = start.AddDate(0, 0, 1)
		} else {
			end = start.Add(defaultDuration)
		}
	case allDay:
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	default:
		end = end.In(start.Location())
	}

	event := schedule.Event{
		ID:              sanitize(propertyValue(component.GetProperty(ics.ComponentPropertyUniqueId))),
		Title:           sanitize(propertyValue(component.GetProperty(ics.ComponentPropertySummary))),
		Description:     strings.TrimSpace(propertyValue(component.GetProperty(ics.ComponentPropertyDescription))),
		URL:             strings.TrimSpace(propertyValue(component.GetProperty(ics.ComponentPropertyUrl))),
		RegistrationURL: strings.TrimSpace(propertyValue(component.GetProperty(propertyRegistrationURL))),
		Tags:            splitCategories(component.GetProperties(ics.ComponentPropertyCategories)),
		StartTime:       start,
		EndTime:         end,
	}

	if value := strings.TrimSpace(propertyValue(component.GetProperty(propertyCost))); value != "" {
		cost, parseErr := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
		if parseErr != nil {
			return schedule.Event{}, schedule.Venue{}, fmt.Errorf("parse cost %q: %w", value, parseErr)
		}
		event.Cost = cost
	}

	if value := strings.TrimSpace(propertyValue(component.GetProperty(ics.ComponentPropertyRrule))); value != "" {
		rule, ruleErr := schedule.FromRRULE(value, start)
		if ruleErr != nil {
			return schedule.Event{}, schedule.Venue{}, ruleErr
		}
		event.Recurrence = &rule
	}

	if value := strings.TrimSpace(propertyValue(component.GetProperty(propertyDeadline))); value != "" {
		deadline, deadlineErr := parseDeadline(value, loc)
		if deadlineErr != nil {
			log.Warn().Err(deadlineErr).Str("uid", event.ID).Msg("ignoring registration deadline")
		} else {
			event.RegistrationDeadline = deadline
		}
	}

	var venue schedule.Venue
	location := sanitize(propertyValue(component.GetProperty(ics.ComponentPropertyLocation)))
	venueIDValue := sanitize(propertyValue(component.GetProperty(propertyVenueID)))
	if location != "" || venueIDValue != "" {
		venue = schedule.Venue{ID: venueIDValue, Name: fallback(location, venueIDValue)}
		if venue.ID == "" {
			venue.ID = venueID(location)
		}
		event.VenueID = venue.ID
	}

	if event.ID == "" {
		event.ID = eventID(event)
	}
	return event, venue, nil
}

// parseDeadline reads "<days>@HH:MM" as a per-occurrence descriptor and
// anything else as an absolute time.
func parseDeadline(value string, loc *time.Location) (*schedule.Deadline, error) {
	if days, clock, ok := strings.Cut(value, "@"); ok {
		daysBefore, err := strconv.Atoi(strings.TrimSpace(days))
		if err != nil {
			return nil, fmt.Errorf("parse deadline days %q: %w", days, err)
		}
		return schedule.RecurringDeadline(daysBefore, strings.TrimSpace(clock)), nil
	}

	at, err := parseICSTimeValue(value, loc)
	if err != nil {
		return nil, err
	}
	return schedule.AbsoluteDeadline(at), nil
}

func formatDeadline(deadline *schedule.Deadline) string {
	switch {
	case deadline == nil:
		return ""
	case deadline.Recurring != nil:
		return strconv.Itoa(deadline.Recurring.DaysBefore) + "@" + deadline.Recurring.Time
	case deadline.At != nil:
		return deadline.At.UTC().Format(icsUTCLayout)
	default:
		return ""
	}
}

// propertyTime reads a DATE or DATE-TIME property. TZID values stay in
// their zone, UTC values move to loc and floating values are read in loc.
func propertyTime(property *ics.IANAProperty, loc *time.Location) (time.Time, error) {
	if property == nil {
		return time.Time{}, errors.New("property not set")
	}
	if values, ok := property.ICalParameters[string(ics.ParameterTzid)]; ok && len(values) > 0 {
		zone, err := time.LoadLocation(strings.Trim(strings.TrimSpace(values[0]), `"`))
		if err != nil {
			return time.Time{}, fmt.Errorf("load TZID %q: %w", values[0], err)
		}
		return parseICSTimeValue(property.Value, zone)
	}
	return parseICSTimeValue(property.Value, loc)
}

func parseICSTimeValue(value string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("empty time value")
	}

	layouts := []string{
		"20060102T150405Z",
		"20060102T1504Z",
		"20060102T150405",
		"20060102T1504",
		"20060102",
	}
	for _, layout := range layouts {
		if strings.HasSuffix(layout, "Z") {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.In(loc), nil
			}
			continue
		}
		if parsed, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time value %q", trimmed)
}

func splitCategories(properties []*ics.IANAProperty) []string {
	tags := make([]string, 0)
	for _, property := range properties {
		if property == nil {
			continue
		}
		for _, value := range strings.Split(property.Value, ",") {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func isAllDay(property *ics.IANAProperty) bool {
	if property == nil {
		return false
	}
	if values, ok := property.ICalParameters["VALUE"]; ok && len(values) > 0 {
		for _, value := range values {
			if strings.EqualFold(strings.TrimSpace(value), "DATE") {
				return true
			}
		}
	}
	trimmed := strings.TrimSpace(property.Value)
	return len(trimmed) == 8
}

func propertyValue(property *ics.IANAProperty) string {
	if property == nil {
		return ""
	}
	return property.Value
}

func sanitize(value string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(value)), " ")
}
