package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
)

type NewsletterRepository struct{ base }

func NewNewsletterRepository(db *gorm.DB) *NewsletterRepository {
	return &NewsletterRepository{base{db}}
}

// Subscribe stores email unless present. created reports a new row.
func (r *NewsletterRepository) Subscribe(ctx context.Context, email string) (sub *models.NewsletterSubscriber, created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var s models.NewsletterSubscriber
	err = r.conn(ctx).Where("email = ?", email).First(&s).Error
	if err == nil {
		return &s, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, mapErr(err)
	}
	s = models.NewsletterSubscriber{Email: email}
	if err := r.conn(ctx).Create(&s).Error; err != nil {
		return nil, false, mapErr(err)
	}
	return &s, true, nil
}

func (r *NewsletterRepository) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	var out []models.NewsletterSubscriber
	err := r.conn(ctx).Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, mapErr(err)
}

func (r *NewsletterRepository) Emails(ctx context.Context) ([]string, error) {
	var out []string
	err := r.conn(ctx).Model(&models.NewsletterSubscriber{}).Order("id").Pluck("email", &out).Error
	return out, mapErr(err)
}

func (r *NewsletterRepository) Delete(ctx context.Context, id uint) error {
	res := r.conn(ctx).Delete(&models.NewsletterSubscriber{}, id)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NewsletterRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	res := r.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Delete(&models.NewsletterSubscriber{})
	return res.RowsAffected > 0, mapErr(res.Error)
}
