// Package notifications defines the customer notifications of the shop and
// the channels each one travels through.
package notifications

import (
	"fmt"
	"time"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/pkg/notification"
)

var (
	_ notification.Storable    = (*OrderUpdate)(nil)
	_ notification.Storable    = (*AppointmentReminder)(nil)
	_ notification.Webhookable = (*OrderPlaced)(nil)
)

var statusLabels = map[string]string{
	models.OrderPending:    "en attente",
	models.OrderProcessing: "en préparation",
	models.OrderConfirmed:  "confirmée",
	models.OrderShipped:    "expédiée",
	models.OrderDelivered:  "livrée",
	models.OrderCancelled:  "annulée",
}

// StatusLabel is the French wording of an order status.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// OrderUpdate tells the customer their order moved to a new status.
type OrderUpdate struct {
	Order *models.Order
}

func (*OrderUpdate) Via() []string {
	return []string{notification.ChannelDatabase, notification.ChannelPush}
}

func (n *OrderUpdate) ToDatabase() notification.DatabaseData {
	return notification.DatabaseData{
		Type:    models.NotificationOrderUpdate,
		Title:   "Mise à jour de votre commande",
		Message: fmt.Sprintf("Votre commande #%d est désormais %s.", n.Order.ID, StatusLabel(n.Order.Status)),
	}
}

// AppointmentReminder is sent the day before a consultation.
type AppointmentReminder struct {
	Appointment *models.Appointment
}

func (*AppointmentReminder) Via() []string {
	return []string{notification.ChannelDatabase, notification.ChannelPush}
}

func (n *AppointmentReminder) ToDatabase() notification.DatabaseData {
	a := n.Appointment
	return notification.DatabaseData{
		Type:  models.NotificationAppointmentReminder,
		Title: "Rappel de rendez-vous",
		Message: fmt.Sprintf("Votre rendez-vous « %s » a lieu demain à %s (%s).",
			a.TypeLabel(), a.AppointmentTime, models.LocationLabel(a.Location)),
	}
}

// OrderPlaced posts a new order to the back-office webhook.
type OrderPlaced struct {
	Order *models.Order
	URL   string
}

func (*OrderPlaced) Via() []string { return []string{notification.ChannelWebhook} }

func (n *OrderPlaced) ToWebhook() notification.WebhookData {
	o := n.Order
	customer := ""
	if o.User != nil {
		customer = o.User.Email
	}
	return notification.WebhookData{
		URL: n.URL,
		Payload: map[string]any{
			"text": fmt.Sprintf("Nouvelle commande #%d de %s : %s MAD (%s)",
				o.ID, customer, o.TotalAmount.StringFixed(2), o.PaymentMethod),
			"orderId":  o.ID,
			"total":    o.TotalAmount.StringFixed(2),
			"items":    len(o.OrderItems),
			"placedAt": o.CreatedAt.Format(time.RFC3339),
			"payment":  o.PaymentMethod,
			"customer": customer,
		},
	}
}
