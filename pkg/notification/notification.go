// Package notification fans a single notification out to several channels.
//
//	type OrderShipped struct{ Order models.Order }
//	func (n *OrderShipped) Via() []string { return []string{"database", "push", "mail"} }
//	func (n *OrderShipped) ToDatabase() notification.DatabaseData { ... }
//	func (n *OrderShipped) ToMail() notification.MailData { ... }
//
//	notification.Send(ctx, notification.Recipient{UserID: 4, Email: "a@b.io"}, &OrderShipped{...})
//
// The "database" and "push" channels need a Store and a Pusher installed at
// boot with UseStore and UsePusher.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/diamantrouge/maison/pkg/httpclient"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/mail"
)

const (
	ChannelMail     = "mail"
	ChannelDatabase = "database"
	ChannelPush     = "push"
	ChannelWebhook  = "webhook"
)

// Recipient identifies who receives a notification.
type Recipient struct {
	UserID uint
	Email  string
}

// MailData carries the data needed to send an email notification.
type MailData struct {
	To       string // overrides the recipient address if set
	Subject  string
	Template string // registered mail template; Body is used when empty
	Data     any
	Body     string
}

// WebhookData carries an arbitrary JSON payload to POST to a URL.
type WebhookData struct {
	URL     string
	Payload any
	Headers map[string]string
}

// DatabaseData is persisted by the Store.
type DatabaseData struct {
	Type    string
	Title   string
	Message string
}

type Notification interface {
	Via() []string
}

type Mailable interface {
	ToMail() MailData
}

type Webhookable interface {
	ToWebhook() WebhookData
}

type Storable interface {
	ToDatabase() DatabaseData
}

// Pushable chooses its own realtime payload. Without it the push channel
// sends whatever the database channel stored.
type Pushable interface {
	ToPush() any
}

// Store persists database notifications and returns the stored record.
type Store interface {
	SaveNotification(ctx context.Context, userID uint, d DatabaseData) (any, error)
}

// Pusher delivers a realtime payload to a connected user. *ws.Hub satisfies it.
type Pusher interface {
	SendTo(userID uint, v any) error
}

var (
	mu     sync.RWMutex
	store  Store
	pusher Pusher
)

func UseStore(s Store) {
	mu.Lock()
	store = s
	mu.Unlock()
}

func UsePusher(p Pusher) {
	mu.Lock()
	pusher = p
	mu.Unlock()
}

// ErrNoChannel is returned when a notification names a channel it cannot serve.
var ErrNoChannel = errors.New("notification: channel not supported")

// Send dispatches n through every channel returned by Via, in order.
// A failing channel does not stop the others; all errors are joined.
func Send(ctx context.Context, to Recipient, n Notification) error {
	var (
		errs   []error
		stored any
	)
	for _, channel := range n.Via() {
		var err error
		switch channel {
		case ChannelMail:
			err = sendMail(ctx, to, n)
		case ChannelDatabase:
			stored, err = saveDatabase(ctx, to, n)
		case ChannelPush:
			err = push(to, n, stored)
		case ChannelWebhook:
			err = sendWebhook(ctx, n)
		default:
			err = fmt.Errorf("%w: %q", ErrNoChannel, channel)
		}
		if err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed",
				"channel", channel, "type", fmt.Sprintf("%T", n), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sendMail(ctx context.Context, to Recipient, n Notification) error {
	m, ok := n.(Mailable)
	if !ok {
		return fmt.Errorf("%w: %T is not Mailable", ErrNoChannel, n)
	}
	d := m.ToMail()

	addr := d.To
	if addr == "" {
		addr = to.Email
	}
	if addr == "" {
		return errors.New("notification: mail recipient has no address")
	}

	msg := mail.To(addr).WithSubject(d.Subject)
	if d.Template != "" {
		msg = msg.Template(d.Template, d.Data)
	} else {
		msg = msg.HTML(d.Body)
	}
	return msg.Send(ctx)
}

func saveDatabase(ctx context.Context, to Recipient, n Notification) (any, error) {
	s, ok := n.(Storable)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not Storable", ErrNoChannel, n)
	}
	mu.RLock()
	st := store
	mu.RUnlock()
	if st == nil {
		return nil, errors.New("notification: no store installed")
	}
	if to.UserID == 0 {
		return nil, errors.New("notification: database channel needs a user id")
	}
	return st.SaveNotification(ctx, to.UserID, s.ToDatabase())
}

func push(to Recipient, n Notification, stored any) error {
	mu.RLock()
	p := pusher
	mu.RUnlock()
	if p == nil || to.UserID == 0 {
		return nil
	}

	payload := stored
	if pn, ok := n.(Pushable); ok {
		payload = pn.ToPush()
	}
	if payload == nil {
		return fmt.Errorf("%w: %T has nothing to push", ErrNoChannel, n)
	}
	return p.SendTo(to.UserID, payload)
}

func sendWebhook(ctx context.Context, n Notification) error {
	wh, ok := n.(Webhookable)
	if !ok {
		return fmt.Errorf("%w: %T is not Webhookable", ErrNoChannel, n)
	}
	d := wh.ToWebhook()
	if d.URL == "" {
		return nil
	}

	req := httpclient.Post(d.URL).JSON(d.Payload).Timeout(10*time.Second).Retry(2, time.Second)
	for k, v := range d.Headers {
		req = req.Header(k, v)
	}
	resp, err := req.Send(ctx)
	if err != nil {
		return fmt.Errorf("notification: webhook: %w", err)
	}
	return resp.Throw()
}
