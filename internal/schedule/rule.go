package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Frequency string

const (
	FrequencyNone     Frequency = "NONE"
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
)

type WeekOfMonth string

const (
	WeekFirst  WeekOfMonth = "FIRST"
	WeekSecond WeekOfMonth = "SECOND"
	WeekThird  WeekOfMonth = "THIRD"
	WeekFourth WeekOfMonth = "FOURTH"
	WeekLast   WeekOfMonth = "LAST"
)

// ordinal returns the 1-based position for FIRST..FOURTH and -1 for LAST.
func (w WeekOfMonth) ordinal() (int, bool) {
	switch WeekOfMonth(strings.ToUpper(strings.TrimSpace(string(w)))) {
	case WeekFirst:
		return 1, true
	case WeekSecond:
		return 2, true
	case WeekThird:
		return 3, true
	case WeekFourth:
		return 4, true
	case WeekLast:
		return -1, true
	default:
		return 0, false
	}
}

type RecurrenceRule struct {
	Frequency    Frequency     `json:"frequency" yaml:"frequency"`
	DaysOfWeek   []int         `json:"daysOfWeek,omitempty" yaml:"daysOfWeek,omitempty"`
	DayOfWeek    *int          `json:"dayOfWeek,omitempty" yaml:"dayOfWeek,omitempty"`
	MonthDay     *int          `json:"monthDay,omitempty" yaml:"monthDay,omitempty"`
	WeeksOfMonth []WeekOfMonth `json:"weeksOfMonth,omitempty" yaml:"weeksOfMonth,omitempty"`
}

// Normalize returns a copy with a canonical frequency and with the legacy
// single-day WEEKLY field folded into DaysOfWeek. When both are present
// DaysOfWeek wins and DayOfWeek is dropped.
func (r RecurrenceRule) Normalize() RecurrenceRule {
	out := RecurrenceRule{
		Frequency:    Frequency(strings.ToUpper(strings.TrimSpace(string(r.Frequency)))),
		DaysOfWeek:   append([]int(nil), r.DaysOfWeek...),
		DayOfWeek:    copyInt(r.DayOfWeek),
		MonthDay:     copyInt(r.MonthDay),
		WeeksOfMonth: append([]WeekOfMonth(nil), r.WeeksOfMonth...),
	}
	if out.Frequency == "" {
		out.Frequency = FrequencyNone
	}

	if out.Frequency == FrequencyWeekly {
		if len(out.DaysOfWeek) == 0 && out.DayOfWeek != nil {
			out.DaysOfWeek = []int{*out.DayOfWeek}
		}
		out.DayOfWeek = nil
	}
	return out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func IntPtr(v int) *int {
	return &v
}

// RecurrenceDeadline is resolved per occurrence: DaysBefore days before the
// occurrence date, at the HH:MM wall-clock time.
type RecurrenceDeadline struct {
	DaysBefore int    `json:"daysBefore" yaml:"daysBefore"`
	Time       string `json:"time" yaml:"time"`
}

// clock parses Time as HH:MM.
func (d RecurrenceDeadline) clock() (hour, minute int, ok bool) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(d.Time))
	if err != nil {
		return 0, 0, false
	}
	return parsed.Hour(), parsed.Minute(), true
}

// Deadline is either an absolute time or a per-occurrence descriptor. On the
// wire the absolute form is a string and the descriptor is an object.
type Deadline struct {
	At        *time.Time
	Recurring *RecurrenceDeadline
}

func AbsoluteDeadline(at time.Time) *Deadline {
	return &Deadline{At: &at}
}

func RecurringDeadline(daysBefore int, clock string) *Deadline {
	return &Deadline{Recurring: &RecurrenceDeadline{DaysBefore: daysBefore, Time: clock}}
}

func (d Deadline) IsZero() bool {
	return d.At == nil && d.Recurring == nil
}

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseDeadlineTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range deadlineLayouts {
		if layout == time.RFC3339Nano {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed, nil
			}
			continue
		}
		if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse deadline %q", trimmed)
}

func (d Deadline) MarshalJSON() ([]byte, error) {
	switch {
	case d.Recurring != nil:
		return json.Marshal(d.Recurring)
	case d.At != nil:
		return json.Marshal(d.At.Format(time.RFC3339))
	default:
		return []byte("null"), nil
	}
}

func (d *Deadline) UnmarshalJSON(data []byte) error {
	*d = Deadline{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '{' {
		var recurring RecurrenceDeadline
		if err := json.Unmarshal(trimmed, &recurring); err != nil {
			return fmt.Errorf("decode recurrence deadline: %w", err)
		}
		d.Recurring = &recurring
		return nil
	}

	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("decode deadline: %w", err)
	}
	at, err := parseDeadlineTime(raw)
	if err != nil {
		return err
	}
	d.At = &at
	return nil
}

func (d Deadline) MarshalYAML() (interface{}, error) {
	switch {
	case d.Recurring != nil:
		return d.Recurring, nil
	case d.At != nil:
		return d.At.Format(time.RFC3339), nil
	default:
		return nil, nil
	}
}

func (d *Deadline) UnmarshalYAML(value *yaml.Node) error {
	*d = Deadline{}
	switch value.Kind {
	case yaml.MappingNode:
		var recurring RecurrenceDeadline
		if err := value.Decode(&recurring); err != nil {
			return fmt.Errorf("decode recurrence deadline: %w", err)
		}
		d.Recurring = &recurring
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return nil
		}
		var at time.Time
		if err := value.Decode(&at); err == nil {
			d.At = &at
			return nil
		}
		parsed, err := parseDeadlineTime(value.Value)
		if err != nil {
			return err
		}
		d.At = &parsed
		return nil
	default:
		return fmt.Errorf("unexpected deadline node at line %d", value.Line)
	}
}
