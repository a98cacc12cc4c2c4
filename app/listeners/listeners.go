// Package listeners reacts to shop events: the admin live feed, customer
// mail and the order webhook.
package listeners

import (
	"context"

	"github.com/diamantrouge/maison/app/events"
	"github.com/diamantrouge/maison/app/jobs"
	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/notifications"
	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/event"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/notification"
	"github.com/diamantrouge/maison/pkg/sse"
)

// OrderSummary is what the admin feed receives for an order.
type OrderSummary struct {
	ID            uint   `json:"id"`
	Customer      string `json:"customer"`
	Total         string `json:"total"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
	Items         int    `json:"items"`
}

func summarize(o *models.Order) OrderSummary {
	s := OrderSummary{
		ID:            o.ID,
		Total:         o.TotalAmount.StringFixed(2),
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Items:         len(o.OrderItems),
	}
	if o.User != nil {
		s.Customer = o.User.Email
	}
	return s
}

// Register wires every listener. feed is the admin order stream.
func Register(feed *sse.Broker) {
	event.Listen(events.OrderPlaced, func(ctx context.Context, payload any) {
		if o, ok := payload.(*models.Order); ok {
			feed.Publish("order.placed", summarize(o))
		}
	})
	event.Listen(events.OrderPlaced, sendConfirmation)
	event.Listen(events.OrderPlaced, postWebhook)

	event.Listen(events.OrderStatusChanged, func(ctx context.Context, payload any) {
		if o, ok := payload.(*models.Order); ok {
			feed.Publish("order.updated", summarize(o))
		}
	})
	event.Listen(events.NewsletterSubscribed, func(ctx context.Context, payload any) {
		if sub, ok := payload.(*models.NewsletterSubscriber); ok {
			feed.Publish("newsletter.subscribed", map[string]any{"id": sub.ID, "email": sub.Email})
		}
	})
}

func sendConfirmation(ctx context.Context, payload any) {
	o, ok := payload.(*models.Order)
	if !ok {
		return
	}
	m := jobs.OrderMail(o, "order_confirmation.html", "Confirmation de votre commande Diamant Rouge", nil)
	if m == nil {
		logger.WithCtx(ctx).Warn("order: no address for confirmation", "order_id", o.ID)
		return
	}
	jobs.QueueMail(ctx, m)
}

func postWebhook(ctx context.Context, payload any) {
	o, ok := payload.(*models.Order)
	if !ok {
		return
	}
	url := config.Get("ORDER_WEBHOOK_URL", "")
	if url == "" {
		return
	}
	_ = notification.Send(ctx, notification.Recipient{}, &notifications.OrderPlaced{Order: o, URL: url})
}
