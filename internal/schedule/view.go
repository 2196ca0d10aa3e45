package schedule

import (
	"fmt"
	"strings"
	"time"
)

type View string

const (
	ViewToday View = "today"
	ViewNext  View = "24h"
	ViewWeek  View = "week"
)

func ParseView(value string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "today", "vandaag":
		return ViewToday, nil
	case "24h", "next24h", "next-24h":
		return ViewNext, nil
	case "week":
		return ViewWeek, nil
	default:
		return "", fmt.Errorf("unknown view %q", value)
	}
}

// Window returns the half-open range for the view. now is supplied by the
// caller; loc decides where "today" begins.
func (v View) Window(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = now.Location()
	}
	today := startOfDay(now, loc)
	switch v {
	case ViewNext:
		return now, now.Add(24 * time.Hour)
	case ViewWeek:
		return today, addDays(today, 7)
	default:
		return today, addDays(today, 1)
	}
}

func (v View) Label() string {
	switch v {
	case ViewNext:
		return "komende 24 uur"
	case ViewWeek:
		return "deze week"
	default:
		return "vandaag"
	}
}
