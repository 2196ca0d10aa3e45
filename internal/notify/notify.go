package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rbright/waybar-foodevents/internal/schedule"
	"github.com/rs/zerolog/log"
)

const (
	notificationsService = "org.freedesktop.Notifications"
	notificationsPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod         = notificationsService + ".Notify"

	appName         = "Waybar Foodevents"
	expireTimeoutMS = int32(10000)
)

type Message struct {
	Summary string
	Body    string
	URL     string
}

type Notifier interface {
	Notify(ctx context.Context, message Message) error
}

// DBusNotifier talks to the session bus notification daemon.
type DBusNotifier struct {
	conn *dbus.Conn
}

func NewDBus(ctx context.Context) (*DBusNotifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &DBusNotifier{conn: conn}, nil
}

func (n *DBusNotifier) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	return n.conn.Close()
}

func (n *DBusNotifier) Notify(ctx context.Context, message Message) error {
	body := message.Body
	if strings.TrimSpace(message.URL) != "" {
		body = strings.TrimSpace(body + "\n" + message.URL)
	}

	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(byte(1)),
		"category": dbus.MakeVariant("reminder"),
	}

	obj := n.conn.Object(notificationsService, notificationsPath)
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		appName,
		uint32(0),
		"",
		message.Summary,
		body,
		[]string{},
		hints,
		expireTimeoutMS,
	)
	if call.Err != nil {
		return fmt.Errorf("send notification: %w", call.Err)
	}
	return nil
}

// DeadlineMessage builds the reminder for an occurrence whose registration
// closes soon.
func DeadlineMessage(item schedule.Occurrence, now time.Time, loc *time.Location) Message {
	deadline := item.Start
	if item.RegistrationDeadline != nil {
		deadline = *item.RegistrationDeadline
	}

	lines := []string{
		fmt.Sprintf("Aanmelden sluit over %s (%s)", schedule.HumanizeDuration(deadline.Sub(now)), deadline.In(loc).Format("02-01 15:04")),
		fmt.Sprintf("Start: %s", item.Start.In(loc).Format("02-01 15:04")),
	}
	if item.VenueName != "" {
		lines = append(lines, "Locatie: "+item.VenueName)
	}

	registrationURL, infoURL, _ := schedule.DeriveLinks(item)
	link := registrationURL
	if link == "" {
		link = infoURL
	}

	return Message{
		Summary: item.Title,
		Body:    strings.Join(lines, "\n"),
		URL:     link,
	}
}

// Sent reports which occurrence ids have already been reminded.
type Sent interface {
	Has(id string) bool
}

// Deadlines sends one reminder per due occurrence not yet in sent and
// returns the ids that were delivered. Delivery failures are logged and
// retried on the next run.
func Deadlines(ctx context.Context, notifier Notifier, items []schedule.Occurrence, sent Sent, now time.Time, loc *time.Location) []string {
	delivered := make([]string, 0, len(items))
	for _, item := range items {
		if sent != nil && sent.Has(item.ID) {
			continue
		}
		if err := notifier.Notify(ctx, DeadlineMessage(item, now, loc)); err != nil {
			log.Warn().Err(err).Str("occurrence", item.ID).Msg("deadline notification failed")
			continue
		}
		log.Info().Str("occurrence", item.ID).Msg("deadline notification sent")
		delivered = append(delivered, item.ID)
	}
	return delivered
}
