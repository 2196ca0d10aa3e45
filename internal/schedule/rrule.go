package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var ErrUnsupportedRule = errors.New("unsupported recurrence rule")

// rruleWeekdays is indexed by our weekday numbering (0=Sunday).
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// ROption converts rule into the equivalent RFC 5545 option set anchored at
// dtstart. Weeks start on Monday, which keeps BIWEEKLY phase-locked to the
// anchor week.
func ROption(rule RecurrenceRule, dtstart time.Time) (rrule.ROption, error) {
	normalized := rule.Normalize()
	opt := rrule.ROption{Dtstart: dtstart, Wkst: rrule.MO}

	switch normalized.Frequency {
	case FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
		for _, day := range normalized.DaysOfWeek {
			if validWeekday(day) {
				opt.Byweekday = append(opt.Byweekday, rruleWeekdays[day])
			}
		}
		if len(opt.Byweekday) == 0 {
			return rrule.ROption{}, fmt.Errorf("%w: weekly rule without days", ErrUnsupportedRule)
		}
	case FrequencyBiweekly:
		if normalized.DayOfWeek == nil || !validWeekday(*normalized.DayOfWeek) {
			return rrule.ROption{}, fmt.Errorf("%w: biweekly rule without day", ErrUnsupportedRule)
		}
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[*normalized.DayOfWeek]}
	case FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
		if normalized.MonthDay != nil {
			opt.Bymonthday = []int{*normalized.MonthDay}
			break
		}
		if normalized.DayOfWeek == nil || !validWeekday(*normalized.DayOfWeek) {
			return rrule.ROption{}, fmt.Errorf("%w: monthly rule without day", ErrUnsupportedRule)
		}
		for _, week := range normalized.WeeksOfMonth {
			if ordinal, ok := week.ordinal(); ok {
				opt.Byweekday = append(opt.Byweekday, rruleWeekdays[*normalized.DayOfWeek].Nth(ordinal))
			}
		}
		if len(opt.Byweekday) == 0 {
			return rrule.ROption{}, fmt.Errorf("%w: monthly rule without weeks", ErrUnsupportedRule)
		}
	default:
		return rrule.ROption{}, fmt.Errorf("%w: frequency %q", ErrUnsupportedRule, normalized.Frequency)
	}

	return opt, nil
}

// ToRRULE renders rule as an RRULE value without DTSTART.
func ToRRULE(rule RecurrenceRule) (string, error) {
	opt, err := ROption(rule, time.Time{})
	if err != nil {
		return "", err
	}
	return opt.RRuleString(), nil
}

// FromRRULE parses an RRULE value. anchor supplies the weekday or month day
// when the rule leaves it implicit.
func FromRRULE(value string, anchor time.Time) (RecurrenceRule, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return RecurrenceRule{}, fmt.Errorf("parse rrule: %w", err)
	}
	return FromROption(*opt, anchor)
}

// FromROption maps the subset of RFC 5545 that the recurrence engine can
// express. Bounded rules (COUNT/UNTIL) are rejected since a RecurrenceRule
// never ends.
func FromROption(opt rrule.ROption, anchor time.Time) (RecurrenceRule, error) {
	if opt.Count > 0 || !opt.Until.IsZero() {
		return RecurrenceRule{}, fmt.Errorf("%w: bounded rule", ErrUnsupportedRule)
	}
	if len(opt.Bysetpos) > 0 || len(opt.Bymonth) > 0 || len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 {
		return RecurrenceRule{}, fmt.Errorf("%w: unsupported BY part", ErrUnsupportedRule)
	}

	interval := opt.Interval
	if interval <= 0 {
		interval = 1
	}
	anchorDay := int(anchor.Weekday())

	switch opt.Freq {
	case rrule.DAILY:
		if interval != 1 || len(opt.Byweekday) > 0 || len(opt.Bymonthday) > 0 {
			return RecurrenceRule{}, fmt.Errorf("%w: daily rule with modifiers", ErrUnsupportedRule)
		}
		return RecurrenceRule{Frequency: FrequencyWeekly, DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6}}, nil

	case rrule.WEEKLY:
		days := make([]int, 0, len(opt.Byweekday))
		for i := range opt.Byweekday {
			if opt.Byweekday[i].N() != 0 {
				return RecurrenceRule{}, fmt.Errorf("%w: ordinal weekday in weekly rule", ErrUnsupportedRule)
			}
			days = append(days, fromRRuleDay(opt.Byweekday[i].Day()))
		}
		if len(days) == 0 {
			days = append(days, anchorDay)
		}
		switch {
		case interval == 1:
			return RecurrenceRule{Frequency: FrequencyWeekly, DaysOfWeek: days}, nil
		case interval == 2 && len(days) == 1:
			return RecurrenceRule{Frequency: FrequencyBiweekly, DayOfWeek: IntPtr(days[0])}, nil
		default:
			return RecurrenceRule{}, fmt.Errorf("%w: weekly interval %d", ErrUnsupportedRule, interval)
		}

	case rrule.MONTHLY:
		if interval != 1 {
			return RecurrenceRule{}, fmt.Errorf("%w: monthly interval %d", ErrUnsupportedRule, interval)
		}
		if len(opt.Bymonthday) > 0 {
			if len(opt.Bymonthday) != 1 || opt.Bymonthday[0] < 1 || len(opt.Byweekday) > 0 {
				return RecurrenceRule{}, fmt.Errorf("%w: month day list", ErrUnsupportedRule)
			}
			return RecurrenceRule{Frequency: FrequencyMonthly, MonthDay: IntPtr(opt.Bymonthday[0])}, nil
		}
		if len(opt.Byweekday) == 0 {
			return RecurrenceRule{Frequency: FrequencyMonthly, MonthDay: IntPtr(anchor.Day())}, nil
		}
		return monthlyByWeekday(opt.Byweekday)

	default:
		return RecurrenceRule{}, fmt.Errorf("%w: frequency %v", ErrUnsupportedRule, opt.Freq)
	}
}

func monthlyByWeekday(weekdays []rrule.Weekday) (RecurrenceRule, error) {
	day := fromRRuleDay(weekdays[0].Day())
	weeks := make([]WeekOfMonth, 0, len(weekdays))
	for i := range weekdays {
		if fromRRuleDay(weekdays[i].Day()) != day {
			return RecurrenceRule{}, fmt.Errorf("%w: mixed weekdays in monthly rule", ErrUnsupportedRule)
		}
		switch weekdays[i].N() {
		case 1:
			weeks = append(weeks, WeekFirst)
		case 2:
			weeks = append(weeks, WeekSecond)
		case 3:
			weeks = append(weeks, WeekThird)
		case 4:
			weeks = append(weeks, WeekFourth)
		case -1:
			weeks = append(weeks, WeekLast)
		default:
			return RecurrenceRule{}, fmt.Errorf("%w: weekday ordinal %d", ErrUnsupportedRule, weekdays[i].N())
		}
	}
	return RecurrenceRule{Frequency: FrequencyMonthly, DayOfWeek: IntPtr(day), WeeksOfMonth: weeks}, nil
}

// fromRRuleDay converts rrule's Monday-based numbering to ours.
func fromRRuleDay(day int) int {
	return (day + 1) % 7
}
