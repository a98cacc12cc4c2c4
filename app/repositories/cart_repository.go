package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
)

type CartRepository struct{ base }

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{base{db}}
}

func cartDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Product.Translations").Preload("Variation")
}

func (r *CartRepository) ListForUser(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var out []models.CartItem
	err := r.conn(ctx).Scopes(cartDetails).Where("user_id = ?", userID).Order("id").Find(&out).Error
	return out, mapErr(err)
}

func (r *CartRepository) Find(ctx context.Context, id uint) (*models.CartItem, error) {
	var line models.CartItem
	if err := r.conn(ctx).Scopes(cartDetails).First(&line, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &line, nil
}

// FindLine returns the user's line for (product, variation). A nil
// variation matches only lines without one.
func (r *CartRepository) FindLine(ctx context.Context, userID, productID uint, variationID *uint) (*models.CartItem, error) {
	q := r.conn(ctx).Where("user_id = ? AND product_id = ?", userID, productID)
	if variationID == nil {
		q = q.Where("variation_id IS NULL")
	} else {
		q = q.Where("variation_id = ?", *variationID)
	}
	var line models.CartItem
	if err := q.First(&line).Error; err != nil {
		return nil, mapErr(err)
	}
	return &line, nil
}

func (r *CartRepository) Create(ctx context.Context, line *models.CartItem) error {
	return mapErr(r.conn(ctx).Create(line).Error)
}

func (r *CartRepository) SetQuantity(ctx context.Context, id uint, qty int) error {
	return mapErr(r.conn(ctx).Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", qty).Error)
}

// Increment adds qty to a line atomically.
func (r *CartRepository) Increment(ctx context.Context, id uint, qty int) error {
	return mapErr(r.conn(ctx).Model(&models.CartItem{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", qty)).Error)
}

func (r *CartRepository) Delete(ctx context.Context, id uint) error {
	return mapErr(r.conn(ctx).Delete(&models.CartItem{}, id).Error)
}

// Clear removes every line of the user and returns how many were removed.
func (r *CartRepository) Clear(ctx context.Context, userID uint) (int64, error) {
	res := r.conn(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, mapErr(res.Error)
}
