package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/pkg/notification"
)

type NotificationRepository struct{ base }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{base{db}}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return mapErr(r.conn(ctx).Create(n).Error)
}

// SaveNotification backs the "database" notification channel.
func (r *NotificationRepository) SaveNotification(ctx context.Context, userID uint, d notification.DatabaseData) (any, error) {
	n := &models.Notification{UserID: userID, Type: d.Type, Title: d.Title, Message: d.Message}
	if err := r.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := r.conn(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, mapErr(err)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, mapErr(res.Error)
}

func (r *NotificationRepository) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	res := r.conn(ctx).Where("user_id = ?", userID).Delete(&models.Notification{})
	return res.RowsAffected, mapErr(res.Error)
}
