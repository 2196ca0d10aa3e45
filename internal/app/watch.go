package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rbright/waybar-foodevents/internal/notify"
	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/rbright/waybar-foodevents/internal/state"
	"github.com/rbright/waybar-foodevents/internal/web"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// deadlineScan bounds how far ahead occurrences are expanded when looking
// for registration deadlines; deadlines precede their occurrence.
const deadlineScan = 31 * 24 * time.Hour

// notifyDeadlines reminds about every registration deadline inside the lead
// window exactly once and returns how many reminders went out.
func (r *runner) notifyDeadlines(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return 0, err
	}
	selection, err := state.LoadSelection(r.cfg.SelectionPath)
	if err != nil {
		return 0, err
	}

	now := r.now()
	filter := r.cfg.Filter(resolveSelectedVenues(cat.Venues, selection))
	items := filter.Apply(schedule.ExpandCatalog(cat, now, now.Add(r.cfg.DeadlineLead+deadlineScan)))
	due := schedule.DeadlinesWithin(items, now, r.cfg.DeadlineLead)
	if len(due) == 0 {
		return 0, nil
	}

	notified, err := state.LoadNotified(r.cfg.NotifiedPath)
	if err != nil {
		return 0, err
	}

	pending := make([]schedule.Occurrence, 0, len(due))
	for _, item := range due {
		if !notified.Has(item.ID) {
			pending = append(pending, item)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	notifier, closeNotifier, err := r.notifier(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeNotifier != nil {
			_ = closeNotifier()
		}
	}()

	delivered := notify.Deadlines(ctx, notifier, pending, notified, now, r.cfg.Location)
	for _, id := range delivered {
		notified[id] = now
	}
	if err := state.SaveNotified(r.cfg.NotifiedPath, notified, now); err != nil {
		return len(delivered), err
	}
	return len(delivered), nil
}

// tick is one scheduled run: refresh the module state, then send reminders.
func (r *runner) tick(ctx context.Context) {
	if _, err := r.buildStatus(ctx); err != nil {
		log.Error().Err(err).Msg("refresh failed")
	}
	sent, err := r.notifyDeadlines(ctx)
	if err != nil {
		log.Error().Err(err).Msg("deadline notifications failed")
		return
	}
	if sent > 0 {
		log.Info().Int("sent", sent).Msg("deadline notifications delivered")
	}
}

// watchChain skips a scheduled run while the previous one is still going,
// so two runs never race on the notified store.
func watchChain() cron.Chain {
	return cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger))
}

func (r *runner) watch(ctx context.Context) error {
	sched, err := cron.ParseStandard(r.cfg.NotifyCron)
	if err != nil {
		return fmt.Errorf("parse notify cron %q: %w", r.cfg.NotifyCron, err)
	}

	c := cron.New(cron.WithLocation(r.cfg.Location))
	c.Schedule(sched, watchChain().Then(cron.FuncJob(func() { r.tick(ctx) })))

	log.Info().Str("cron", r.cfg.NotifyCron).Msg("watching food events")
	r.tick(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (r *runner) serve(ctx context.Context) error {
	server := web.New(web.Options{
		Source:        r.loadCatalog,
		Location:      r.cfg.Location,
		DefaultView:   r.cfg.View,
		Filter:        r.cfg.Filter(nil),
		ExportHorizon: r.cfg.ExportHorizon,
		Now:           r.now,
	})

	log.Info().Str("listen", r.cfg.Listen).Msg("serving food events")
	return server.Listen(ctx, r.cfg.Listen)
}
