package repositories

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
)

type UserRepository struct{ base }

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{base{db}}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.conn(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) Find(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.conn(ctx).First(&u, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// Profile loads a user with orders (newest first, with items) and wishlist.
func (r *UserRepository) Profile(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.conn(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Orders.OrderItems.Product.Translations").
		Preload("Orders.OrderItems.Variation").
		Preload("Wishlist.Product.Translations").
		First(&u, id).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return mapErr(r.conn(ctx).Create(u).Error)
}

// Update writes the given columns only.
func (r *UserRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.conn(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken stores the digest of a password-reset token.
func (r *UserRepository) SetResetToken(ctx context.Context, id uint, digest string, expires time.Time) error {
	return r.Update(ctx, id, map[string]any{"reset_token": digest, "reset_token_expiry": expires})
}

// FindByResetToken returns the user holding an unexpired reset token.
func (r *UserRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	var u models.User
	err := r.conn(ctx).
		Where("reset_token = ? AND reset_token_expiry > ?", digest, now).
		First(&u).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// ResetPassword sets a new hash and clears the reset token.
func (r *UserRepository) ResetPassword(ctx context.Context, id uint, hash string) error {
	return r.Update(ctx, id, map[string]any{
		"password":           hash,
		"reset_token":        gorm.Expr("NULL"),
		"reset_token_expiry": gorm.Expr("NULL"),
	})
}

// List returns every user with orders and wishlist, newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.conn(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Orders.OrderItems").
		Preload("Wishlist").
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, mapErr(err)
}

// Delete removes a user with their cart, wishlist and notifications. Orders
// and appointments are kept and detached.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return mapErr(r.Transaction(ctx, func(tx *gorm.DB) error {
		for _, m := range []any{&models.CartItem{}, &models.Wishlist{}, &models.Notification{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		for _, m := range []any{&models.Order{}, &models.Appointment{}} {
			if err := tx.Model(m).Where("user_id = ?", id).Update("user_id", gorm.Expr("NULL")).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}
