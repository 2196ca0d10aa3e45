package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/rs/zerolog/log"
)

const (
	productID     = "-//rbright//waybar-foodevents//NL"
	untitledEvent = "Maaltijd"

	icsLocalLayout = "20060102T150405"
	icsUTCLayout   = "20060102T150405Z"
)

// WriteICS writes one VEVENT per base event. Recurring events carry their
// RRULE so calendar clients expand them themselves.
func WriteICS(w io.Writer, catalog schedule.Catalog, now time.Time) error {
	calendar := ics.NewCalendar()
	calendar.SetMethod(ics.MethodPublish)
	calendar.SetProductId(productID)
	calendar.SetName("Gratis eten Rotterdam")

	for _, event := range catalog.Events {
		addEvent(calendar, catalog, event, now)
	}

	if err := calendar.SerializeTo(w); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

// WriteOccurrencesICS writes already expanded occurrences, one VEVENT each.
func WriteOccurrencesICS(w io.Writer, items []schedule.Occurrence, now time.Time) error {
	calendar := ics.NewCalendar()
	calendar.SetMethod(ics.MethodPublish)
	calendar.SetProductId(productID)

	for _, item := range items {
		component := calendar.AddEvent(item.ID)
		component.SetDtStampTime(now.UTC())
		setTime(component, ics.ComponentPropertyDtStart, item.Start)
		setTime(component, ics.ComponentPropertyDtEnd, item.End)
		component.SetSummary(item.Title)
		if item.Description != "" {
			component.SetDescription(item.Description)
		}
		if item.VenueName != "" {
			component.SetLocation(item.VenueName)
		}
		if link := schedule.OpenURL(item); link != "" {
			component.SetURL(link)
		}
	}

	if err := calendar.SerializeTo(w); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

func addEvent(calendar *ics.Calendar, catalog schedule.Catalog, event schedule.Event, now time.Time) {
	component := calendar.AddEvent(event.ID)
	component.SetDtStampTime(now.UTC())
	setTime(component, ics.ComponentPropertyDtStart, event.StartTime)
	setTime(component, ics.ComponentPropertyDtEnd, event.EndTime)
	component.SetSummary(fallback(event.Title, untitledEvent))
	if event.Description != "" {
		component.SetDescription(event.Description)
	}
	if event.URL != "" {
		component.SetURL(event.URL)
	}
	if len(event.Tags) > 0 {
		component.SetProperty(ics.ComponentPropertyCategories, strings.Join(event.Tags, ","))
	}

	if venue, ok := catalog.Venue(event.VenueID).Get(); ok {
		component.SetLocation(venueLocation(venue))
	}
	if event.VenueID != "" {
		component.SetProperty(propertyVenueID, event.VenueID)
	}
	component.SetProperty(propertyCost, strconv.FormatFloat(event.Cost, 'f', 2, 64))
	if event.RegistrationURL != "" {
		component.SetProperty(propertyRegistrationURL, event.RegistrationURL)
	}
	if value := formatDeadline(event.RegistrationDeadline); value != "" {
		component.SetProperty(propertyDeadline, value)
	}

	if event.IsRecurring() {
		rule, err := schedule.ToRRULE(*event.Recurrence)
		if err != nil {
			log.Warn().Err(err).Str("event", event.ID).Msg("exporting recurring event without rrule")
			return
		}
		component.AddRrule(rule)
	}
}

// setTime writes t as local time with its IANA zone as TZID, so clients
// expand an RRULE on the same wall clock as the engine. Times without a
// named zone are written in UTC.
func setTime(component *ics.VEvent, property ics.ComponentProperty, t time.Time) {
	if zone := tzid(t.Location()); zone != "" {
		component.SetProperty(property, t.Format(icsLocalLayout), ics.WithTZID(zone))
		return
	}
	component.SetProperty(property, t.UTC().Format(icsUTCLayout))
}

func tzid(loc *time.Location) string {
	if loc == nil {
		return ""
	}
	name := loc.String()
	switch name {
	case "", "UTC", "Local":
		return ""
	}
	if _, err := time.LoadLocation(name); err != nil {
		return ""
	}
	return name
}

func venueLocation(venue schedule.Venue) string {
	parts := []string{venue.Name}
	if venue.Address != "" {
		parts = append(parts, venue.Address)
	}
	if venue.City != "" {
		parts = append(parts, venue.City)
	}
	return strings.Join(parts, ", ")
}
