package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/rbright/waybar-foodevents/internal/state"
)

var (
	dutchDays   = [7]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"}
	dutchMonths = [12]string{"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"}
)

// list prints the occurrences of a view grouped per day.
func (r *runner) list(rawView string) error {
	view := r.cfg.View
	if rawView != "" {
		parsed, err := schedule.ParseView(rawView)
		if err != nil {
			return err
		}
		view = parsed
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return err
	}
	selection, err := state.LoadSelection(r.cfg.SelectionPath)
	if err != nil {
		return err
	}

	now := r.now()
	windowStart, windowEnd := view.Window(now, r.cfg.Location)
	filter := r.cfg.Filter(resolveSelectedVenues(cat.Venues, selection))
	items := filter.Apply(schedule.ExpandCatalog(cat, windowStart, windowEnd))

	if len(items) == 0 {
		_, _ = fmt.Fprintf(r.stdout, "Geen eten gepland %s\n", view.Label())
		return nil
	}

	for i, group := range schedule.GroupByDay(items, r.cfg.Location) {
		if i > 0 {
			_, _ = fmt.Fprintln(r.stdout)
		}
		_, _ = fmt.Fprintln(r.stdout, dayHeading(group.Day))
		for _, item := range group.Items {
			_, _ = fmt.Fprintln(r.stdout, "  "+listLine(item, r.cfg.Location))
		}
	}
	return nil
}

func dayHeading(day time.Time) string {
	return fmt.Sprintf("%s %d %s", dutchDays[day.Weekday()], day.Day(), dutchMonths[day.Month()-1])
}

func listLine(item schedule.Occurrence, loc *time.Location) string {
	parts := []string{
		fmt.Sprintf("%s-%s  %s", item.Start.In(loc).Format("15:04"), item.End.In(loc).Format("15:04"), item.Title),
	}
	if item.VenueName != "" {
		parts[0] += " @ " + item.VenueName
	}
	parts = append(parts, schedule.FormatCost(item.Cost), schedule.FormatRecurrenceRule(item.Recurrence))
	if item.RegistrationDeadline != nil {
		parts = append(parts, "aanmelden vóór "+item.RegistrationDeadline.In(loc).Format("02-01 15:04"))
	}
	return strings.Join(parts, " · ")
}
