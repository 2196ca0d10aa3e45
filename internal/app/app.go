package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rbright/waybar-foodevents/internal/catalog"
	"github.com/rbright/waybar-foodevents/internal/config"
	"github.com/rbright/waybar-foodevents/internal/notify"
	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/rbright/waybar-foodevents/internal/selector"
	"github.com/rbright/waybar-foodevents/internal/state"
	"github.com/rs/zerolog/log"
)

const usage = "waybar-foodevents <status|refresh|open-next|open-item N|select-venues|list [today|24h|week]|export-ics [path]|notify-deadlines|watch|serve>"

type command struct {
	name  string
	index int
	arg   string
}

// runner carries the collaborators a command needs. Tests swap the clock and
// the desktop integrations.
type runner struct {
	cfg    config.Runtime
	stdout io.Writer

	now          func() time.Time
	openURL      func(ctx context.Context, url string) error
	notifier     func(ctx context.Context) (notify.Notifier, func() error, error)
	selectVenues func(ctx context.Context, venues []schedule.Venue, current map[string]bool) ([]string, error)
}

func newRunner(cfg config.Runtime, stdout io.Writer) *runner {
	return &runner{
		cfg:          cfg,
		stdout:       stdout,
		now:          time.Now,
		openURL:      openURL,
		notifier:     dbusNotifier,
		selectVenues: selector.SelectVenues,
	}
}

func Run(ctx context.Context, args []string, cfg config.Runtime, stdout io.Writer) error {
	cmd, err := parseArgs(args)
	if err != nil {
		return err
	}
	return newRunner(cfg, stdout).run(ctx, cmd)
}

// IsLongRunning reports whether args start a command that runs until
// cancelled.
func IsLongRunning(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch strings.TrimSpace(args[0]) {
	case "watch", "serve":
		return true
	default:
		return false
	}
}

func (r *runner) run(ctx context.Context, cmd command) error {
	switch cmd.name {
	case "status":
		out, err := r.buildStatus(ctx)
		if err != nil {
			return err
		}
		return writeOutput(r.stdout, out)
	case "refresh":
		_, err := r.buildStatus(ctx)
		return err
	case "open-next":
		return r.openItem(ctx, 1)
	case "open-item":
		return r.openItem(ctx, cmd.index)
	case "select-venues":
		return r.selectVenuesCommand(ctx)
	case "list":
		return r.list(cmd.arg)
	case "export-ics":
		return r.exportICS(cmd.arg)
	case "notify-deadlines":
		_, err := r.notifyDeadlines(ctx)
		return err
	case "watch":
		return r.watch(ctx)
	case "serve":
		return r.serve(ctx)
	default:
		return fmt.Errorf("unsupported command %q", cmd.name)
	}
}

func parseArgs(args []string) (command, error) {
	if len(args) == 0 {
		return command{name: "status"}, nil
	}

	name := strings.TrimSpace(args[0])
	switch name {
	case "status", "refresh", "open-next", "select-venues", "notify-deadlines", "watch", "serve":
		if len(args) > 1 {
			return command{}, fmt.Errorf("unexpected argument %q", args[1])
		}
		return command{name: name}, nil
	case "list", "export-ics":
		if len(args) > 2 {
			return command{}, fmt.Errorf("unexpected argument %q", args[2])
		}
		cmd := command{name: name}
		if len(args) == 2 {
			cmd.arg = strings.TrimSpace(args[1])
		}
		return cmd, nil
	case "open-item":
		if len(args) != 2 {
			return command{}, fmt.Errorf("usage: waybar-foodevents open-item <index>")
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(args[1]))
		if convErr != nil || n < 1 {
			return command{}, fmt.Errorf("invalid item index %q", args[1])
		}
		return command{name: name, index: n}, nil
	default:
		return command{}, fmt.Errorf("usage: %s", usage)
	}
}

func Usage() string {
	return usage
}

func (r *runner) loadCatalog() (schedule.Catalog, error) {
	return catalog.LoadAll(r.cfg.CatalogPath, r.cfg.ICSFiles, r.cfg.Location)
}

func (r *runner) openItem(ctx context.Context, index int) error {
	items, err := state.LoadOccurrences(r.cfg.ItemsPath)
	if err != nil {
		return err
	}
	if len(items) == 0 || index > len(items) {
		return nil
	}

	url := schedule.OpenURL(items[index-1])
	if url == "" {
		log.Info().Str("occurrence", items[index-1].ID).Msg("occurrence has no link")
		return nil
	}
	return r.openURL(ctx, url)
}

func (r *runner) selectVenuesCommand(ctx context.Context) error {
	if err := state.EnsureDirs(r.cfg.StateDir, r.cfg.MenuDir, r.cfg.SelectionPath); err != nil {
		return err
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return err
	}
	if err := state.SaveVenues(r.cfg.VenuesPath, cat.Venues); err != nil {
		return err
	}

	selection, err := state.LoadSelection(r.cfg.SelectionPath)
	if err != nil {
		return err
	}

	current := make(map[string]bool, len(cat.Venues))
	for _, id := range resolveSelectedVenues(cat.Venues, selection) {
		current[id] = true
	}
	if len(current) == 0 {
		for _, venue := range cat.Venues {
			current[venue.ID] = true
		}
	}

	selected, err := r.selectVenues(ctx, cat.Venues, current)
	if err != nil {
		if errors.Is(err, selector.ErrSelectionCancelled) {
			return nil
		}
		return err
	}

	if err := state.SaveSelection(r.cfg.SelectionPath, selected, r.now()); err != nil {
		return err
	}

	if _, err := r.buildStatus(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(r.stdout, "Saved %d selected venue(s)\n", len(selected))
	return nil
}

// resolveSelectedVenues keeps the saved ids that still exist. An empty
// result means no venue filter.
func resolveSelectedVenues(venues []schedule.Venue, selection state.Selection) []string {
	if !selection.Exists || len(selection.SelectedIDs) == 0 {
		return nil
	}

	available := make(map[string]struct{}, len(venues))
	for _, venue := range venues {
		available[venue.ID] = struct{}{}
	}

	resolved := make([]string, 0, len(selection.SelectedIDs))
	for _, id := range selection.SelectedIDs {
		if _, ok := available[id]; ok {
			resolved = append(resolved, id)
		}
	}
	return resolved
}

func (r *runner) exportICS(path string) error {
	cat, err := r.loadCatalog()
	if err != nil {
		return err
	}

	if path == "" || path == "-" {
		return catalog.WriteICS(r.stdout, cat, r.now())
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ics file: %w", err)
	}
	if err := catalog.WriteICS(file, cat, r.now()); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close ics file: %w", err)
	}
	_, _ = fmt.Fprintf(r.stdout, "Exported %d event(s) to %s\n", len(cat.Events), path)
	return nil
}

func openURL(ctx context.Context, url string) error {
	if _, err := exec.LookPath("xdg-open"); err != nil {
		return fmt.Errorf("xdg-open not found")
	}

	cmd := exec.CommandContext(ctx, "xdg-open", url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open url: %w", err)
	}
	return nil
}

func dbusNotifier(ctx context.Context) (notify.Notifier, func() error, error) {
	client, err := notify.NewDBus(ctx)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}
