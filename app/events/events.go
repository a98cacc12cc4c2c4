// Package events names the in-process events of the shop. Payloads are
// documented next to each name.
package events

const (
	// OrderPlaced carries the reloaded *models.Order with User and items.
	OrderPlaced = "order.placed"
	// OrderStatusChanged carries the *models.Order after the update.
	OrderStatusChanged = "order.status_changed"
	// NewsletterSubscribed carries the *models.NewsletterSubscriber.
	NewsletterSubscribed = "newsletter.subscribed"
)
