package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diamantrouge/maison/app/models"
)

type WishlistRepository struct{ base }

func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{base{db}}
}

func (r *WishlistRepository) ListForUser(ctx context.Context, userID uint) ([]models.Wishlist, error) {
	var out []models.Wishlist
	err := r.conn(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error
	return out, mapErr(err)
}

// Add inserts the entry unless it already exists and returns the stored row.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID uint) (*models.Wishlist, error) {
	entry := models.Wishlist{UserID: userID, ProductID: productID}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&entry).Error
	if err != nil {
		return nil, mapErr(err)
	}
	var stored models.Wishlist
	err = r.conn(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&stored).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &stored, nil
}

// Remove deletes the entry and reports whether one existed.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID uint) (bool, error) {
	res := r.conn(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Wishlist{})
	return res.RowsAffected > 0, mapErr(res.Error)
}
