package waybar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/samber/mo"
)

const maxTooltipItems = 5

type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

type Status struct {
	Now       time.Time
	Location  *time.Location
	View      schedule.View
	Next      mo.Option[schedule.Occurrence]
	Items     []schedule.Occurrence
	Deadlines []schedule.Occurrence
}

// dutchWeekdays is indexed by time.Weekday.
var dutchWeekdays = [7]string{"zo", "ma", "di", "wo", "do", "vr", "za"}

func Render(status Status) Output {
	loc := status.Location
	if loc == nil {
		loc = time.Local
	}

	next, hasNext := status.Next.Get()
	classes := make([]string, 0, 2)
	text := "—"
	if hasNext {
		text = schedule.CountdownText(status.Now, next)
		classes = append(classes, "normal")
	} else {
		classes = append(classes, "clear")
	}
	if len(status.Deadlines) > 0 {
		classes = append(classes, "deadline")
	}

	return Output{
		Text:    text,
		Tooltip: tooltip(status, loc),
		Class:   strings.Join(classes, " "),
	}
}

func RenderUnknown(message string) Output {
	return Output{Text: "?", Tooltip: strings.TrimSpace(message), Class: "unknown"}
}

func RenderError(message string) Output {
	return Output{Text: "!", Tooltip: strings.TrimSpace(message), Class: "error"}
}

func Encode(output Output) ([]byte, error) {
	payload, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("marshal waybar output: %w", err)
	}
	return payload, nil
}

func tooltip(status Status, loc *time.Location) string {
	var b strings.Builder

	if next, ok := status.Next.Get(); ok {
		if next.Start.After(status.Now) {
			_, _ = fmt.Fprintf(&b, "Volgende over %s: %s\n", schedule.HumanizeDuration(next.Start.Sub(status.Now)), next.Title)
		} else {
			_, _ = fmt.Fprintf(&b, "Nu bezig: %s\n", next.Title)
		}
		_, _ = fmt.Fprintf(&b, "Start: %s\n", FormatDay(next.Start, loc))
		if strings.TrimSpace(next.VenueName) != "" {
			_, _ = fmt.Fprintf(&b, "Locatie: %s\n", next.VenueName)
		}
		_, _ = fmt.Fprintf(&b, "Kosten: %s\n", schedule.FormatCost(next.Cost))
		if next.Recurrence != nil {
			_, _ = fmt.Fprintf(&b, "Herhaling: %s\n", schedule.FormatRecurrenceRule(next.Recurrence))
		}
		if next.RegistrationDeadline != nil {
			_, _ = fmt.Fprintf(&b, "Aanmelden vóór: %s\n", FormatDay(*next.RegistrationDeadline, loc))
		}
	} else {
		_, _ = fmt.Fprintf(&b, "Geen eten gepland %s\n", status.View.Label())
	}

	if len(status.Deadlines) > 0 {
		_, _ = fmt.Fprint(&b, "\nAanmelden sluit binnenkort:\n")
		for _, item := range status.Deadlines {
			_, _ = fmt.Fprintf(&b, "%s  %s\n", FormatDay(*item.RegistrationDeadline, loc), item.Title)
		}
	}

	if len(status.Items) > 0 {
		_, _ = fmt.Fprintf(&b, "\n%s:\n", capitalize(status.View.Label()))
		limit := len(status.Items)
		if limit > maxTooltipItems {
			limit = maxTooltipItems
		}
		for _, item := range status.Items[:limit] {
			line := FormatDay(item.Start, loc) + "  " + item.Title
			if item.VenueName != "" {
				line += " @ " + item.VenueName
			}
			_, _ = fmt.Fprintln(&b, line)
		}
		if extra := len(status.Items) - limit; extra > 0 {
			_, _ = fmt.Fprintf(&b, "… en nog %d\n", extra)
		}
	}

	_, _ = fmt.Fprint(&b, "Klik voor het menu")
	return strings.TrimSpace(b.String())
}

// FormatDay renders a time as "wo 18:00" in loc.
func FormatDay(value time.Time, loc *time.Location) string {
	local := value.In(loc)
	return dutchWeekdays[local.Weekday()] + " " + local.Format("15:04")
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
