package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rbright/waybar-foodevents/internal/schedule"
)

type MenuData struct {
	StatusLine string
	Next       *schedule.Occurrence
	Items      []schedule.Occurrence
	Now        time.Time
	Location   *time.Location
}

const untitledEvent = "Maaltijd"

// dutchWeekdays is indexed by time.Weekday.
var dutchWeekdays = [7]string{"zo", "ma", "di", "wo", "do", "vr", "za"}

// WriteMenu renders the GtkBuilder menu Waybar attaches to the module.
// Item ids match the actions the app command handles.
func WriteMenu(path string, data MenuData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create menu dir: %w", err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	menu := doc.CreateElement("interface").CreateElement("object")
	menu.CreateAttr("class", "GtkMenu")
	menu.CreateAttr("id", "menu")

	if data.Next != nil {
		prefix := "Open"
		if registrationURL, _, _ := schedule.DeriveLinks(*data.Next); registrationURL != "" {
			prefix = "Aanmelden"
		}
		addMenuItem(menu, "open_next", fmt.Sprintf("%s: %s", prefix, fallback(data.Next.Title, untitledEvent)))
		addSeparator(menu, "separator_next")
	}

	if len(data.Items) > 0 {
		for idx, item := range data.Items {
			addMenuItem(menu, fmt.Sprintf("open_%d", idx+1), itemLabel(item, data.Now, data.Location))
		}
	} else {
		addMenuItem(menu, "noop", fallback(data.StatusLine, "Geen eten gepland"))
	}

	addSeparator(menu, "separator_actions")
	addMenuItem(menu, "select_venues", "Locaties kiezen…")
	addMenuItem(menu, "export_ics", "Exporteer agenda")
	addMenuItem(menu, "refresh", "Vernieuwen")

	doc.Indent(2)
	payload, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("render menu: %w", err)
	}
	return writeFileAtomically(path, payload)
}

func addMenuItem(menu *etree.Element, id, label string) {
	object := menu.CreateElement("child").CreateElement("object")
	object.CreateAttr("class", "GtkMenuItem")
	object.CreateAttr("id", id)
	property := object.CreateElement("property")
	property.CreateAttr("name", "label")
	property.SetText(label)
}

func addSeparator(menu *etree.Element, id string) {
	object := menu.CreateElement("child").CreateElement("object")
	object.CreateAttr("class", "GtkSeparatorMenuItem")
	object.CreateAttr("id", id)
}

func itemLabel(item schedule.Occurrence, now time.Time, loc *time.Location) string {
	label := fmt.Sprintf("%s  %s", formatStart(item.Start, now, loc), fallback(item.Title, untitledEvent))
	if item.VenueName != "" {
		label += " @ " + item.VenueName
	}
	if !item.IsFree() {
		label += " (" + schedule.FormatCost(item.Cost) + ")"
	}
	return label
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func formatStart(value, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	local := value.In(loc)
	today := now.In(loc)
	if today.Year() == local.Year() && today.YearDay() == local.YearDay() {
		return local.Format("15:04")
	}
	return dutchWeekdays[local.Weekday()] + " " + local.Format("15:04")
}
