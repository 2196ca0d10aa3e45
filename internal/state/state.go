package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rbright/waybar-foodevents/internal/schedule"
)

// notifiedRetention bounds how long sent reminders are remembered.
const notifiedRetention = 30 * 24 * time.Hour

type Selection struct {
	SelectedIDs []string `json:"selectedVenueIds"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`

	Exists bool `json:"-"`
}

func EnsureDirs(stateDir, menuDir, selectionPath string) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.MkdirAll(menuDir, 0o755); err != nil {
		return fmt.Errorf("create menu dir: %w", err)
	}
	if strings.TrimSpace(selectionPath) != "" {
		if err := os.MkdirAll(filepath.Dir(selectionPath), 0o755); err != nil {
			return fmt.Errorf("create selection dir: %w", err)
		}
	}
	return nil
}

func SaveOccurrences(path string, items []schedule.Occurrence) error {
	if items == nil {
		items = []schedule.Occurrence{}
	}
	return saveJSON(path, "occurrences", items)
}

func LoadOccurrences(path string) ([]schedule.Occurrence, error) {
	var items []schedule.Occurrence
	if _, err := loadJSON(path, "occurrences", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func SaveVenues(path string, venues []schedule.Venue) error {
	if venues == nil {
		venues = []schedule.Venue{}
	}
	return saveJSON(path, "venues", venues)
}

func LoadVenues(path string) ([]schedule.Venue, error) {
	var venues []schedule.Venue
	if _, err := loadJSON(path, "venues", &venues); err != nil {
		return nil, err
	}
	return venues, nil
}

func SaveSelection(path string, selectedIDs []string, now time.Time) error {
	selection := Selection{
		SelectedIDs: normalizeIDs(selectedIDs),
		UpdatedAt:   now.UTC().Format(time.RFC3339),
		Exists:      true,
	}
	return saveJSON(path, "selection", selection)
}

func LoadSelection(path string) (Selection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Selection{Exists: false}, nil
		}
		return Selection{}, fmt.Errorf("read selection file: %w", err)
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		return Selection{Exists: true}, nil
	}

	var selection Selection
	if err := json.Unmarshal(raw, &selection); err != nil {
		return Selection{}, fmt.Errorf("decode selection file: %w", err)
	}
	selection.Exists = true
	selection.SelectedIDs = normalizeIDs(selection.SelectedIDs)
	return selection, nil
}

// Notified maps occurrence ids to the time their deadline reminder was sent.
type Notified map[string]time.Time

func (n Notified) Has(id string) bool {
	_, ok := n[id]
	return ok
}

func LoadNotified(path string) (Notified, error) {
	notified := make(Notified)
	if _, err := loadJSON(path, "notified", &notified); err != nil {
		return nil, err
	}
	if notified == nil {
		notified = make(Notified)
	}
	return notified, nil
}

// SaveNotified persists n, dropping entries older than the retention window.
func SaveNotified(path string, n Notified, now time.Time) error {
	kept := make(Notified, len(n))
	for id, sentAt := range n {
		if now.Sub(sentAt) > notifiedRetention {
			continue
		}
		kept[id] = sentAt.UTC()
	}
	return saveJSON(path, "notified", kept)
}

func saveJSON(path, what string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s dir: %w", what, err)
	}

	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", what, err)
	}

	return writeFileAtomically(path, append(payload, '\n'))
}

func loadJSON(path, what string, target any) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s file: %w", what, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return true, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return true, fmt.Errorf("decode %s file: %w", what, err)
	}
	return true, nil
}

func normalizeIDs(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	normalized := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}

	sort.Strings(normalized)
	return normalized
}

func writeFileAtomically(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
