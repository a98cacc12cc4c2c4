package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diamantrouge/maison/app/events"
	"github.com/diamantrouge/maison/app/jobs"
	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/notifications"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/pkg/event"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/metrics"
	"github.com/diamantrouge/maison/pkg/notification"
)

type OrderService struct {
	orders *repositories.OrderRepository
}

func NewOrderService(orders *repositories.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

type PlaceOrderInput struct {
	PaymentMethod          string `json:"paymentMethod"   validate:"required"`
	ShippingAddress        string `json:"shippingAddress" validate:"max=255"`
	City                   string `json:"city"            validate:"max=120"`
	PostalCode             string `json:"postalCode"      validate:"max=20"`
	Country                string `json:"country"         validate:"max=120"`
	IncludeLuxuryPackaging bool   `json:"includeLuxuryPackaging"`
	IncludeInsurance       bool   `json:"includeInsurance"`
	GiftMessage            string `json:"giftMessage"`
	SpecialInstructions    string `json:"specialInstructions"`
}

// Place turns the user's cart into a PENDING order. Prices are frozen from
// the catalog at this moment and the cart is emptied in the same
// transaction.
func (s *OrderService) Place(ctx context.Context, userID uint, in PlaceOrderInput) (*models.Order, error) {
	method := strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	if !slices.Contains(models.PaymentMethods, method) {
		return nil, invalid("Mode de paiement invalide")
	}

	placed, err := s.orders.PlaceFromCart(ctx, userID, func(lines []models.CartItem) (*models.Order, error) {
		uid := userID
		o := &models.Order{
			UserID:                 &uid,
			Status:                 models.OrderPending,
			PaymentMethod:          method,
			ShippingAddress:        in.ShippingAddress,
			City:                   in.City,
			PostalCode:             in.PostalCode,
			Country:                in.Country,
			IncludeLuxuryPackaging: in.IncludeLuxuryPackaging,
			IncludeInsurance:       in.IncludeInsurance,
			GiftMessage:            in.GiftMessage,
			SpecialInstructions:    in.SpecialInstructions,
			TotalAmount:            decimal.Zero,
		}
		for _, l := range lines {
			if l.Product == nil {
				return nil, invalid(fmt.Sprintf("Le produit #%d n'est plus disponible", l.ProductID))
			}
			item := models.OrderItem{
				ProductID:   l.ProductID,
				VariationID: l.VariationID,
				Quantity:    l.Quantity,
				Price:       l.Product.UnitPrice(l.Variation),
			}
			o.TotalAmount = o.TotalAmount.Add(item.Subtotal())
			o.OrderItems = append(o.OrderItems, item)
		}
		return o, nil
	})
	if errors.Is(err, repositories.ErrEmptyCart) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Find(ctx, placed.ID)
	if err != nil {
		return nil, err
	}
	metrics.OrdersPlaced.WithLabelValues(method).Inc()
	logger.WithCtx(ctx).Info("order: placed", "order_id", order.ID, "user_id", userID,
		"total", order.TotalAmount.StringFixed(2), "payment_method", method)
	event.FireAsync(ctx, events.OrderPlaced, order)
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orders.ListForUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context, status string) ([]models.Order, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && status != "ALL" && !slices.Contains(models.OrderStatuses, status) {
		return nil, invalid("Statut de commande invalide")
	}
	if status == "ALL" {
		status = ""
	}
	return s.orders.List(ctx, status)
}

// UpdateStatus moves an order to status, notifies the owner in-app and
// queues the update mail.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !slices.Contains(models.OrderStatuses, status) {
		return nil, invalid("Statut de commande invalide")
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Commande introuvable")
		}
		return nil, err
	}
	order, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID != nil {
		to := notification.Recipient{UserID: *order.UserID}
		if err := notification.Send(ctx, to, &notifications.OrderUpdate{Order: order}); err != nil {
			logger.WithCtx(ctx).Warn("order: notify failed", "order_id", id, "error", err)
		}
	}
	if m := jobs.OrderMail(order, "order_update.html",
		fmt.Sprintf("Votre commande n°%d : %s", order.ID, notifications.StatusLabel(status)),
		map[string]any{"Status": notifications.StatusLabel(status)}); m != nil {
		jobs.QueueMail(ctx, m)
	}
	event.Fire(ctx, events.OrderStatusChanged, order)
	return order, nil
}
