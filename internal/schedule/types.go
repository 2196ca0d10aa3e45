package schedule

import (
	"strings"
	"time"

	"github.com/samber/mo"
)

type Venue struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Address   string  `json:"address,omitempty" yaml:"address,omitempty"`
	City      string  `json:"city,omitempty" yaml:"city,omitempty"`
	Latitude  float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

// Event is the stored base record. Its StartTime is the anchor: the date is
// the earliest possible occurrence and the wall-clock time is reused for
// every generated occurrence.
type Event struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	VenueID     string   `json:"venueId,omitempty" yaml:"venueId,omitempty"`
	Cost        float64  `json:"cost" yaml:"cost"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	RegistrationURL string `json:"registrationUrl,omitempty" yaml:"registrationUrl,omitempty"`

	StartTime time.Time `json:"startTime" yaml:"startTime"`
	EndTime   time.Time `json:"endTime" yaml:"endTime"`

	Recurrence           *RecurrenceRule `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`
	RegistrationDeadline *Deadline       `json:"registrationDeadline,omitempty" yaml:"registrationDeadline,omitempty"`
}

// IsRecurring reports whether the normalized rule repeats. "none" in any
// casing counts as a one-time event.
func (e Event) IsRecurring() bool {
	return e.Recurrence != nil && e.Recurrence.Normalize().Frequency != FrequencyNone
}

func (e Event) IsFree() bool {
	return e.Cost <= 0
}

type Occurrence struct {
	ID          string   `json:"id"`
	BaseID      string   `json:"baseId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	VenueID     string   `json:"venueId,omitempty"`
	VenueName   string   `json:"venueName,omitempty"`
	Cost        float64  `json:"cost"`
	Tags        []string `json:"tags,omitempty"`

	URL             string `json:"url,omitempty"`
	RegistrationURL string `json:"registrationUrl,omitempty"`

	Start                time.Time       `json:"startTime"`
	End                  time.Time       `json:"endTime"`
	Recurrence           *RecurrenceRule `json:"recurrence,omitempty"`
	RegistrationDeadline *time.Time      `json:"registrationDeadline,omitempty"`
}

func (o Occurrence) IsFree() bool {
	return o.Cost <= 0
}

type Catalog struct {
	Venues []Venue `json:"venues" yaml:"venues"`
	Events []Event `json:"events" yaml:"events"`
}

func (c Catalog) Venue(id string) mo.Option[Venue] {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return mo.None[Venue]()
	}
	for _, venue := range c.Venues {
		if venue.ID == trimmed {
			return mo.Some(venue)
		}
	}
	return mo.None[Venue]()
}

func (c Catalog) Event(id string) mo.Option[Event] {
	for _, event := range c.Events {
		if event.ID == id {
			return mo.Some(event)
		}
	}
	return mo.None[Event]()
}
