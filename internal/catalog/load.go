package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rbright/waybar-foodevents/internal/schedule"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("catalog not found")

// idNamespace seeds name-based ids for events and venues that carry none.
var idNamespace = uuid.MustParse("6f1f4a52-0d6e-4f38-9a57-7c1d5c2b9e3a")

const defaultDuration = time.Hour

type rawCatalog struct {
	Venues []schedule.Venue `json:"venues" yaml:"venues"`
	Events []rawEvent       `json:"events" yaml:"events"`
}

// rawEvent mirrors schedule.Event with string times so that zone-less
// values can be placed in the catalog's location.
type rawEvent struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Description     string   `json:"description" yaml:"description"`
	VenueID         string   `json:"venueId" yaml:"venueId"`
	Cost            float64  `json:"cost" yaml:"cost"`
	Tags            []string `json:"tags" yaml:"tags"`
	URL             string   `json:"url" yaml:"url"`
	RegistrationURL string   `json:"registrationUrl" yaml:"registrationUrl"`
	StartTime       string   `json:"startTime" yaml:"startTime"`
	EndTime         string   `json:"endTime" yaml:"endTime"`

	Recurrence           *schedule.RecurrenceRule `json:"recurrence" yaml:"recurrence"`
	RegistrationDeadline *schedule.Deadline       `json:"registrationDeadline" yaml:"registrationDeadline"`
}

// Load reads a JSON or YAML catalog. A missing file yields an empty catalog
// and ErrNotFound.
func Load(path string, loc *time.Location) (schedule.Catalog, error) {
	if loc == nil {
		loc = time.Local
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return schedule.Catalog{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return schedule.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	return Decode(payload, formatOf(path), loc)
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a catalog payload, fills in missing ids and normalises
// every event.
func Decode(payload []byte, format Format, loc *time.Location) (schedule.Catalog, error) {
	var raw rawCatalog
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(payload, &raw); err != nil {
			return schedule.Catalog{}, fmt.Errorf("decode yaml catalog: %w", err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(payload))
		if err := decoder.Decode(&raw); err != nil {
			return schedule.Catalog{}, fmt.Errorf("decode json catalog: %w", err)
		}
	}

	catalog := schedule.Catalog{
		Venues: make([]schedule.Venue, 0, len(raw.Venues)),
		Events: make([]schedule.Event, 0, len(raw.Events)),
	}
	for _, venue := range raw.Venues {
		venue.Name = strings.TrimSpace(venue.Name)
		if strings.TrimSpace(venue.ID) == "" {
			venue.ID = venueID(venue.Name)
		}
		catalog.Venues = append(catalog.Venues, venue)
	}

	for i, item := range raw.Events {
		event, err := item.toEvent(loc)
		if err != nil {
			return schedule.Catalog{}, fmt.Errorf("event %d (%s): %w", i, fallback(item.ID, item.Title), err)
		}
		catalog.Events = append(catalog.Events, event)
	}

	return catalog, nil
}

func (r rawEvent) toEvent(loc *time.Location) (schedule.Event, error) {
	start, err := parseTime(r.StartTime, loc)
	if err != nil {
		return schedule.Event{}, fmt.Errorf("parse startTime: %w", err)
	}

	end := start.Add(defaultDuration)
	if strings.TrimSpace(r.EndTime) != "" {
		parsed, parseErr := parseTime(r.EndTime, loc)
		if parseErr != nil {
			return schedule.Event{}, fmt.Errorf("parse endTime: %w", parseErr)
		}
		if parsed.After(start) {
			end = parsed
		}
	}

	event := schedule.Event{
		ID:                   strings.TrimSpace(r.ID),
		Title:                strings.TrimSpace(r.Title),
		Description:          strings.TrimSpace(r.Description),
		VenueID:              strings.TrimSpace(r.VenueID),
		Cost:                 r.Cost,
		Tags:                 r.Tags,
		URL:                  strings.TrimSpace(r.URL),
		RegistrationURL:      strings.TrimSpace(r.RegistrationURL),
		StartTime:            start,
		EndTime:              end,
		RegistrationDeadline: r.RegistrationDeadline,
	}
	if r.Recurrence != nil {
		rule := r.Recurrence.Normalize()
		event.Recurrence = &rule
	}
	if event.RegistrationDeadline != nil && event.RegistrationDeadline.IsZero() {
		event.RegistrationDeadline = nil
	}
	if event.ID == "" {
		event.ID = eventID(event)
	}
	return event, nil
}

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseTime accepts RFC 3339 values as-is and reads zone-less values as
// wall-clock time in loc. The result is always expressed in loc so the
// anchor's civil date and time-of-day are loc's.
func parseTime(value string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}

	if parsed, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return parsed.In(loc), nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time value %q", trimmed)
}

func eventID(event schedule.Event) string {
	key := strings.Join([]string{
		strings.ToLower(event.Title),
		event.VenueID,
		event.StartTime.UTC().Format(time.RFC3339),
	}, "|")
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

func venueID(name string) string {
	return uuid.NewSHA1(idNamespace, []byte("venue|"+strings.ToLower(strings.TrimSpace(name)))).String()
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
