package selector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/rbright/waybar-foodevents/internal/schedule"
)

var ErrSelectionCancelled = errors.New("venue selection cancelled")

func SelectVenues(ctx context.Context, venues []schedule.Venue, currentSelected map[string]bool) ([]string, error) {
	if len(venues) == 0 {
		return nil, fmt.Errorf("no venues available")
	}

	if !hasGraphicalSession() {
		return nil, fmt.Errorf("venue selection requires a graphical session")
	}

	if _, err := exec.LookPath("zenity"); err != nil {
		return nil, fmt.Errorf("zenity is required for venue selection")
	}

	return selectWithZenity(ctx, venues, currentSelected)
}

func hasGraphicalSession() bool {
	return strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" || strings.TrimSpace(os.Getenv("DISPLAY")) != ""
}

func zenityArgs(venues []schedule.Venue, currentSelected map[string]bool) []string {
	args := []string{
		"--list",
		"--checklist",
		"--title=Gratis eten: locaties",
		"--text=Kies de locaties die in de module verschijnen",
		"--modal",
		"--width=720",
		"--height=560",
		"--separator=\n",
		"--print-column=4",
		"--column=Toon",
		"--column=Locatie",
		"--column=Adres",
		"--column=ID",
		"--hide-column=4",
	}

	for _, venue := range venues {
		checked := "FALSE"
		if currentSelected[venue.ID] {
			checked = "TRUE"
		}

		args = append(args,
			checked,
			venueLabel(venue),
			venueAddress(venue),
			venue.ID,
		)
	}
	return args
}

func selectWithZenity(ctx context.Context, venues []schedule.Venue, currentSelected map[string]bool) ([]string, error) {
	cmd := exec.CommandContext(ctx, "zenity", zenityArgs(venues, currentSelected)...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, ErrSelectionCancelled
		}
		return nil, fmt.Errorf("zenity selector failed: %w", err)
	}

	selected := parseSelectionOutput(string(out))
	return normalizeIDs(selected), nil
}

func parseSelectionOutput(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '\n' || r == '|'
	})
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		result = append(result, value)
	}
	return result
}

func venueLabel(venue schedule.Venue) string {
	name := strings.TrimSpace(venue.Name)
	if name == "" {
		return venue.ID
	}
	return name
}

func venueAddress(venue schedule.Venue) string {
	parts := make([]string, 0, 2)
	if address := strings.TrimSpace(venue.Address); address != "" {
		parts = append(parts, address)
	}
	if city := strings.TrimSpace(venue.City); city != "" {
		parts = append(parts, city)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func normalizeIDs(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	sort.Strings(result)
	return result
}
