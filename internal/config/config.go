package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

const (
	maxActionItems    = 12
	maxExportHorizon  = 366
	defaultTimezone   = "Europe/Amsterdam"
	defaultNotifyCron = "*/15 * * * *"
	defaultListen     = "127.0.0.1:8787"
)

type Runtime struct {
	ConfigFile string

	CatalogPath string
	ICSFiles    []string
	Location    *time.Location

	View          schedule.View
	MaxItems      int
	FreeOnly      bool
	Tags          []string
	DeadlineLead  time.Duration
	ExportHorizon time.Duration
	NotifyCron    string
	Listen        string
	LogLevel      string
	Timeout       time.Duration

	StateDir      string
	MenuDir       string
	MenuPath      string
	ItemsPath     string
	VenuesPath    string
	NotifiedPath  string
	SelectionPath string
}

// Filter is the occurrence filter implied by the configured criteria.
func (r Runtime) Filter(venueIDs []string) schedule.Filter {
	return schedule.Filter{FreeOnly: r.FreeOnly, Tags: r.Tags, VenueIDs: venueIDs}
}

func Load() (Runtime, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Runtime{}, fmt.Errorf("resolve home dir: %w", err)
	}

	xdgConfig := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	xdgState := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if xdgState == "" {
		xdgState = filepath.Join(home, ".local", "state")
	}

	xdgData := strings.TrimSpace(os.Getenv("XDG_DATA_HOME"))
	if xdgData == "" {
		xdgData = filepath.Join(home, ".local", "share")
	}

	defaultConfig := filepath.Join(xdgConfig, "waybar", "foodevents.env")
	configFile := strings.TrimSpace(os.Getenv("WAYBAR_FOODEVENTS_CONFIG_FILE"))
	if configFile == "" {
		configFile = defaultConfig
	}

	if err := loadEnvFile(configFile); err != nil {
		return Runtime{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("WAYBAR_FOODEVENTS")
	v.AutomaticEnv()

	_ = v.BindEnv("catalog_file", "WAYBAR_FOODEVENTS_CATALOG_FILE", "CATALOG_FILE")
	_ = v.BindEnv("ics_files", "WAYBAR_FOODEVENTS_ICS_FILES", "ICS_FILES")
	_ = v.BindEnv("timezone", "WAYBAR_FOODEVENTS_TIMEZONE", "TIMEZONE")
	_ = v.BindEnv("view", "WAYBAR_FOODEVENTS_VIEW", "VIEW")
	_ = v.BindEnv("max_items", "WAYBAR_FOODEVENTS_MAX_ITEMS", "MAX_ITEMS")
	_ = v.BindEnv("free_only", "WAYBAR_FOODEVENTS_FREE_ONLY", "FREE_ONLY")
	_ = v.BindEnv("tags", "WAYBAR_FOODEVENTS_TAGS", "TAGS")
	_ = v.BindEnv("deadline_lead_hours", "WAYBAR_FOODEVENTS_DEADLINE_LEAD_HOURS", "DEADLINE_LEAD_HOURS")
	_ = v.BindEnv("export_horizon_days", "WAYBAR_FOODEVENTS_EXPORT_HORIZON_DAYS", "EXPORT_HORIZON_DAYS")
	_ = v.BindEnv("notify_cron", "WAYBAR_FOODEVENTS_NOTIFY_CRON", "NOTIFY_CRON")
	_ = v.BindEnv("listen", "WAYBAR_FOODEVENTS_LISTEN", "LISTEN")
	_ = v.BindEnv("log_level", "WAYBAR_FOODEVENTS_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("timeout_seconds", "WAYBAR_FOODEVENTS_TIMEOUT_SECONDS")
	_ = v.BindEnv("state_dir", "WAYBAR_FOODEVENTS_STATE_DIR")
	_ = v.BindEnv("menu_dir", "WAYBAR_FOODEVENTS_MENU_DIR")
	_ = v.BindEnv("selection_file", "WAYBAR_FOODEVENTS_SELECTION_FILE")

	v.SetDefault("catalog_file", filepath.Join(xdgData, "foodevents", "catalog.json"))
	v.SetDefault("ics_files", "")
	v.SetDefault("timezone", defaultTimezone)
	v.SetDefault("view", string(schedule.ViewToday))
	v.SetDefault("max_items", 8)
	v.SetDefault("free_only", false)
	v.SetDefault("tags", "")
	v.SetDefault("deadline_lead_hours", 24)
	v.SetDefault("export_horizon_days", 28)
	v.SetDefault("notify_cron", defaultNotifyCron)
	v.SetDefault("listen", defaultListen)
	v.SetDefault("log_level", "info")
	v.SetDefault("timeout_seconds", 20)
	v.SetDefault("state_dir", filepath.Join(xdgState, "waybar", "foodevents"))
	v.SetDefault("menu_dir", filepath.Join(xdgState, "waybar", "menus"))
	v.SetDefault("selection_file", filepath.Join(xdgConfig, "waybar", "foodevents-selected-venues.json"))

	location, err := time.LoadLocation(strings.TrimSpace(v.GetString("timezone")))
	if err != nil {
		return Runtime{}, fmt.Errorf("load timezone: %w", err)
	}

	view, err := schedule.ParseView(v.GetString("view"))
	if err != nil {
		return Runtime{}, fmt.Errorf("parse view: %w", err)
	}

	maxItems := v.GetInt("max_items")
	if maxItems < 1 {
		maxItems = 1
	}
	if maxItems > maxActionItems {
		maxItems = maxActionItems
	}

	timeoutSeconds := v.GetInt("timeout_seconds")
	if timeoutSeconds <= 0 {
		timeoutSeconds = 20
	}

	leadHours := v.GetInt("deadline_lead_hours")
	if leadHours <= 0 {
		leadHours = 24
	}

	horizonDays := v.GetInt("export_horizon_days")
	if horizonDays < 1 {
		horizonDays = 1
	}
	if horizonDays > maxExportHorizon {
		horizonDays = maxExportHorizon
	}

	notifyCron := strings.TrimSpace(v.GetString("notify_cron"))
	if notifyCron == "" {
		notifyCron = defaultNotifyCron
	}

	listen := strings.TrimSpace(v.GetString("listen"))
	if listen == "" {
		listen = defaultListen
	}

	stateDir := strings.TrimSpace(v.GetString("state_dir"))
	if stateDir == "" {
		stateDir = filepath.Join(xdgState, "waybar", "foodevents")
	}

	menuDir := strings.TrimSpace(v.GetString("menu_dir"))
	if menuDir == "" {
		menuDir = filepath.Join(xdgState, "waybar", "menus")
	}

	selectionPath := strings.TrimSpace(v.GetString("selection_file"))
	if selectionPath == "" {
		selectionPath = filepath.Join(xdgConfig, "waybar", "foodevents-selected-venues.json")
	}

	return Runtime{
		ConfigFile:    configFile,
		CatalogPath:   strings.TrimSpace(v.GetString("catalog_file")),
		ICSFiles:      splitList(v.GetString("ics_files")),
		Location:      location,
		View:          view,
		MaxItems:      maxItems,
		FreeOnly:      v.GetBool("free_only"),
		Tags:          splitList(v.GetString("tags")),
		DeadlineLead:  time.Duration(leadHours) * time.Hour,
		ExportHorizon: time.Duration(horizonDays) * 24 * time.Hour,
		NotifyCron:    notifyCron,
		Listen:        listen,
		LogLevel:      strings.TrimSpace(v.GetString("log_level")),
		Timeout:       time.Duration(timeoutSeconds) * time.Second,
		StateDir:      stateDir,
		MenuDir:       menuDir,
		MenuPath:      filepath.Join(menuDir, "foodevents.xml"),
		ItemsPath:     filepath.Join(stateDir, "occurrences.json"),
		VenuesPath:    filepath.Join(stateDir, "venues.json"),
		NotifiedPath:  filepath.Join(stateDir, "notified.json"),
		SelectionPath: selectionPath,
	}, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// loadEnvFile copies KEY=value pairs into the process environment without
// overriding variables that are already set. A missing file is ignored.
func loadEnvFile(path string) error {
	file, err := ini.LoadSources(ini.LoadOptions{
		Loose:                   true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, path)
	if err != nil {
		return fmt.Errorf("parse env file %s: %w", path, err)
	}

	for _, section := range file.Sections() {
		for _, key := range section.Keys() {
			name := strings.TrimSpace(strings.TrimPrefix(key.Name(), "export "))
			if name == "" {
				continue
			}
			if _, exists := os.LookupEnv(name); exists {
				continue
			}
			_ = os.Setenv(name, key.Value())
		}
	}
	return nil
}
