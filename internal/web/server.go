package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rbright/waybar-foodevents/internal/catalog"
	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/rs/zerolog/log"
)

// CatalogSource returns the current catalog. It is called per request so
// edits to the catalog file show up without a restart.
type CatalogSource func() (schedule.Catalog, error)

type Options struct {
	Source        CatalogSource
	Location      *time.Location
	DefaultView   schedule.View
	Filter        schedule.Filter
	ExportHorizon time.Duration
	Now           func() time.Time
}

type Server struct {
	app  *fiber.App
	opts Options
}

type occurrenceView struct {
	schedule.Occurrence
	RecurrenceText string `json:"recurrenceText"`
	Free           bool   `json:"free"`
}

type eventView struct {
	schedule.Event
	RecurrenceText string `json:"recurrenceText"`
	RRule          string `json:"rrule,omitempty"`
}

type occurrencesResponse struct {
	View        schedule.View    `json:"view"`
	WindowStart time.Time        `json:"windowStart"`
	WindowEnd   time.Time        `json:"windowEnd"`
	Occurrences []occurrenceView `json:"occurrences"`
}

func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DefaultView == "" {
		opts.DefaultView = schedule.ViewToday
	}
	if opts.ExportHorizon <= 0 {
		opts.ExportHorizon = 28 * 24 * time.Hour
	}

	app := fiber.New(fiber.Config{
		AppName:               "waybar-foodevents",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          errorHandler,
	})

	s := &Server{app: app, opts: opts}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	api := s.app.Group("/api")
	api.Get("/occurrences", s.listOccurrences)
	api.Get("/events", s.listEvents)
	api.Get("/events/:id/occurrences", s.eventOccurrences)

	s.app.Get("/calendar.ics", s.calendarICS)
	s.app.Get("/occurrences.ics", s.occurrencesICS)
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	}
}

func (s *Server) listOccurrences(c *fiber.Ctx) error {
	cat, err := s.opts.Source()
	if err != nil {
		return err
	}

	view, windowStart, windowEnd, err := s.window(c)
	if err != nil {
		return err
	}

	filter := s.opts.Filter
	if c.Query("free") != "" {
		filter.FreeOnly = c.QueryBool("free")
	}
	if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
		filter.Tags = strings.Split(tag, ",")
	}
	if venue := strings.TrimSpace(c.Query("venue")); venue != "" {
		filter.VenueIDs = strings.Split(venue, ",")
	}

	items := filter.Apply(schedule.ExpandCatalog(cat, windowStart, windowEnd))
	return c.JSON(occurrencesResponse{
		View:        view,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Occurrences: toViews(items),
	})
}

func (s *Server) listEvents(c *fiber.Ctx) error {
	cat, err := s.opts.Source()
	if err != nil {
		return err
	}

	views := make([]eventView, 0, len(cat.Events))
	for _, event := range cat.Events {
		view := eventView{Event: event, RecurrenceText: schedule.FormatRecurrenceRule(event.Recurrence)}
		if event.IsRecurring() {
			if rule, ruleErr := schedule.ToRRULE(*event.Recurrence); ruleErr == nil {
				view.RRule = rule
			}
		}
		views = append(views, view)
	}
	return c.JSON(views)
}

func (s *Server) eventOccurrences(c *fiber.Ctx) error {
	cat, err := s.opts.Source()
	if err != nil {
		return err
	}

	event, ok := cat.Event(c.Params("id")).Get()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "event not found")
	}

	view, windowStart, windowEnd, err := s.window(c)
	if err != nil {
		return err
	}

	single := schedule.Catalog{Venues: cat.Venues, Events: []schedule.Event{event}}
	items := schedule.ExpandCatalog(single, windowStart, windowEnd)
	return c.JSON(occurrencesResponse{
		View:        view,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Occurrences: toViews(items),
	})
}

func (s *Server) calendarICS(c *fiber.Ctx) error {
	cat, err := s.opts.Source()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := catalog.WriteICS(&buf, cat, s.opts.Now()); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) occurrencesICS(c *fiber.Ctx) error {
	cat, err := s.opts.Source()
	if err != nil {
		return err
	}

	now := s.opts.Now()
	items := s.opts.Filter.Apply(schedule.ExpandCatalog(cat, now, now.Add(s.opts.ExportHorizon)))

	var buf bytes.Buffer
	if err := catalog.WriteOccurrencesICS(&buf, items, now); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) window(c *fiber.Ctx) (schedule.View, time.Time, time.Time, error) {
	view := s.opts.DefaultView
	if raw := c.Query("view"); raw != "" {
		parsed, err := schedule.ParseView(raw)
		if err != nil {
			return "", time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view = parsed
	}
	start, end := view.Window(s.opts.Now(), s.opts.Location)
	return view, start, end, nil
}

func toViews(items []schedule.Occurrence) []occurrenceView {
	views := make([]occurrenceView, 0, len(items))
	for _, item := range items {
		views = append(views, occurrenceView{
			Occurrence:     item,
			RecurrenceText: schedule.FormatRecurrenceRule(item.Recurrence),
			Free:           item.IsFree(),
		})
	}
	return views
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	if errors.Is(err, catalog.ErrNotFound) {
		code = fiber.StatusServiceUnavailable
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
