package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
)

// ErrEmptyCart is returned by PlaceFromCart when the user has no lines.
var ErrEmptyCart = errors.New("repositories: cart is empty")

type OrderRepository struct{ base }

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{base{db}}
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Preload("OrderItems.Product.Translations").Preload("OrderItems.Variation")
}

// PlaceFromCart reads the user's cart, lets build turn it into an order,
// stores the order with its items and empties the cart, all in one
// transaction.
func (r *OrderRepository) PlaceFromCart(ctx context.Context, userID uint, build func([]models.CartItem) (*models.Order, error)) (*models.Order, error) {
	var order *models.Order
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		var lines []models.CartItem
		err := tx.Preload("Product").Preload("Variation").
			Where("user_id = ?", userID).Order("id").Find(&lines).Error
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		order, err = build(lines)
		if err != nil {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return order, nil
}

func (r *OrderRepository) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var out []models.Order
	err := r.conn(ctx).Scopes(orderItems).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, mapErr(err)
}

// List returns every order, newest first, optionally filtered by status.
func (r *OrderRepository) List(ctx context.Context, status string) ([]models.Order, error) {
	q := r.conn(ctx).Scopes(orderItems).Preload("User")
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}
	var out []models.Order
	err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, mapErr(err)
}

func (r *OrderRepository) Find(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.conn(ctx).Scopes(orderItems).Preload("User").First(&o, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.conn(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
