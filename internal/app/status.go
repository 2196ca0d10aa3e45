package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rbright/waybar-foodevents/internal/catalog"
	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/rbright/waybar-foodevents/internal/state"
	"github.com/rbright/waybar-foodevents/internal/waybar"
	"github.com/rs/zerolog/log"
)

func (r *runner) buildStatus(ctx context.Context) (waybar.Output, error) {
	if err := ctx.Err(); err != nil {
		return waybar.Output{}, err
	}
	if err := state.EnsureDirs(r.cfg.StateDir, r.cfg.MenuDir, r.cfg.SelectionPath); err != nil {
		return waybar.Output{}, err
	}

	cat, err := r.loadCatalog()
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return r.renderDegraded(waybar.RenderUnknown(fmt.Sprintf("Geen catalogus gevonden\n%s", r.cfg.CatalogPath)))
		}
		log.Error().Err(err).Msg("load catalog")
		return r.renderDegraded(waybar.RenderError(fmt.Sprintf("Catalogus kon niet worden gelezen: %s", err.Error())))
	}

	if err := state.SaveVenues(r.cfg.VenuesPath, cat.Venues); err != nil {
		return waybar.Output{}, err
	}

	selection, err := state.LoadSelection(r.cfg.SelectionPath)
	if err != nil {
		return waybar.Output{}, err
	}

	now := r.now()
	windowStart, windowEnd := r.cfg.View.Window(now, r.cfg.Location)
	filter := r.cfg.Filter(resolveSelectedVenues(cat.Venues, selection))
	inView := filter.Apply(schedule.ExpandCatalog(cat, windowStart, windowEnd))
	upcoming := schedule.Upcoming(inView, now, r.cfg.MaxItems)
	next := schedule.NextOccurrence(inView, now)
	deadlines := schedule.DeadlinesWithin(inView, now, r.cfg.DeadlineLead)

	log.Debug().
		Int("events", len(cat.Events)).
		Int("occurrences", len(inView)).
		Str("view", string(r.cfg.View)).
		Msg("status built")

	if err := state.SaveOccurrences(r.cfg.ItemsPath, upcoming); err != nil {
		return waybar.Output{}, err
	}

	statusLine := fmt.Sprintf("Geen eten gepland %s", r.cfg.View.Label())
	menuData := state.MenuData{StatusLine: statusLine, Items: upcoming, Now: now, Location: r.cfg.Location}
	if item, ok := next.Get(); ok {
		menuData.Next = &item
	}
	if err := state.WriteMenu(r.cfg.MenuPath, menuData); err != nil {
		return waybar.Output{}, err
	}

	return waybar.Render(waybar.Status{
		Now:       now,
		Location:  r.cfg.Location,
		View:      r.cfg.View,
		Next:      next,
		Items:     upcoming,
		Deadlines: deadlines,
	}), nil
}

func (r *runner) renderDegraded(out waybar.Output) (waybar.Output, error) {
	if err := state.SaveOccurrences(r.cfg.ItemsPath, nil); err != nil {
		return waybar.Output{}, err
	}
	if err := state.WriteMenu(r.cfg.MenuPath, state.MenuData{StatusLine: out.Tooltip}); err != nil {
		return waybar.Output{}, err
	}
	return out, nil
}

func writeOutput(w io.Writer, output waybar.Output) error {
	payload, err := waybar.Encode(output)
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}
