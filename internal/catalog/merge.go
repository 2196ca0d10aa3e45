package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rbright/waybar-foodevents/internal/schedule"
)

// Merge combines catalogs. When ids collide the earlier catalog wins.
func Merge(base schedule.Catalog, extra ...schedule.Catalog) schedule.Catalog {
	merged := schedule.Catalog{
		Venues: make([]schedule.Venue, 0, len(base.Venues)),
		Events: make([]schedule.Event, 0, len(base.Events)),
	}
	venues := make(map[string]struct{})
	events := make(map[string]struct{})

	for _, catalog := range append([]schedule.Catalog{base}, extra...) {
		for _, venue := range catalog.Venues {
			if _, ok := venues[venue.ID]; ok {
				continue
			}
			venues[venue.ID] = struct{}{}
			merged.Venues = append(merged.Venues, venue)
		}
		for _, event := range catalog.Events {
			if _, ok := events[event.ID]; ok {
				continue
			}
			events[event.ID] = struct{}{}
			merged.Events = append(merged.Events, event)
		}
	}
	return merged
}

// LoadAll reads the main catalog plus every ICS file and merges them. A
// missing main catalog is tolerated when ICS files supply events.
func LoadAll(path string, icsFiles []string, loc *time.Location) (schedule.Catalog, error) {
	base, err := Load(path, loc)
	if err != nil && !(len(icsFiles) > 0 && errors.Is(err, ErrNotFound)) {
		return schedule.Catalog{}, err
	}

	extra := make([]schedule.Catalog, 0, len(icsFiles))
	for _, file := range icsFiles {
		imported, importErr := loadICSFile(file, loc)
		if importErr != nil {
			return schedule.Catalog{}, importErr
		}
		extra = append(extra, imported)
	}

	return Merge(base, extra...), nil
}

func loadICSFile(path string, loc *time.Location) (schedule.Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return schedule.Catalog{}, fmt.Errorf("open ics file: %w", err)
	}
	defer file.Close()

	imported, err := ParseICS(file, loc)
	if err != nil {
		return schedule.Catalog{}, fmt.Errorf("import %s: %w", path, err)
	}
	return imported, nil
}
