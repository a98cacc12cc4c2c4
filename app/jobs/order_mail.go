package jobs

import (
	"fmt"

	"github.com/diamantrouge/maison/app/models"
)

// OrderMail builds the mail for an order with a loaded User and items.
// It returns nil when the order has no customer address.
func OrderMail(o *models.Order, template, subject string, extra map[string]any) *SendMail {
	if o.User == nil || o.User.Email == "" {
		return nil
	}
	items := make([]map[string]any, 0, len(o.OrderItems))
	for _, it := range o.OrderItems {
		name := fmt.Sprintf("Produit #%d", it.ProductID)
		if it.Product != nil {
			name = it.Product.Translation(models.DefaultLocale).Name
		}
		variation := ""
		if it.Variation != nil {
			variation = it.Variation.VariationType + " " + it.Variation.VariationValue
		}
		items = append(items, map[string]any{
			"Name":      name,
			"Variation": variation,
			"Quantity":  it.Quantity,
			"Subtotal":  it.Subtotal().StringFixed(2),
		})
	}

	data := map[string]any{
		"Name":          o.User.Name,
		"OrderID":       o.ID,
		"Items":         items,
		"Total":         o.TotalAmount.StringFixed(2),
		"PaymentMethod": o.PaymentMethod,
		"GiftMessage":   o.GiftMessage,
		"Status":        o.Status,
	}
	for k, v := range extra {
		data[k] = v
	}
	return &SendMail{To: o.User.Email, Subject: subject, Template: template, Data: data}
}
