package services

import (
	"context"
	"slices"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/pkg/notification"
)

type NotificationService struct {
	notifications *repositories.NotificationRepository
}

func NewNotificationService(notifications *repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.notifications.ListForUser(ctx, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	return s.notifications.DeleteAll(ctx, userID)
}

// Alert is a free-form in-app notification of one of the known types.
type Alert struct {
	Type    string `json:"type"    validate:"required"`
	Title   string `json:"title"   validate:"max=255"`
	Message string `json:"message" validate:"required"`
}

func (*Alert) Via() []string {
	return []string{notification.ChannelDatabase, notification.ChannelPush}
}

func (a *Alert) ToDatabase() notification.DatabaseData {
	return notification.DatabaseData{Type: a.Type, Title: a.Title, Message: a.Message}
}

// Notify stores a for userID and pushes it to their open sockets.
func (s *NotificationService) Notify(ctx context.Context, userID uint, a *Alert) error {
	if !slices.Contains(models.NotificationTypes, a.Type) {
		return invalid("Type de notification inconnu")
	}
	return notification.Send(ctx, notification.Recipient{UserID: userID}, a)
}
