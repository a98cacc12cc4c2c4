package models

import "time"

type NewsletterSubscriber struct {
	ID        uint      `gorm:"primaryKey"                    json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `gorm:"index"                         json:"createdAt"`
}

const (
	NotificationProductRestock      = "PRODUCT_RESTOCK"
	NotificationPriceDrop           = "PRICE_DROP"
	NotificationNewCollection       = "NEW_COLLECTION"
	NotificationAppointmentReminder = "APPOINTMENT_REMINDER"
	NotificationOrderUpdate         = "ORDER_UPDATE"
)

var NotificationTypes = []string{
	NotificationProductRestock,
	NotificationPriceDrop,
	NotificationNewCollection,
	NotificationAppointmentReminder,
	NotificationOrderUpdate,
}

type Notification struct {
	ID        uint      `gorm:"primaryKey"                      json:"id"`
	UserID    uint      `gorm:"not null;index"                  json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"     json:"-"`
	Type      string    `gorm:"size:30;not null"                json:"type"`
	Title     string    `gorm:"size:255"                        json:"title"`
	Message   string    `gorm:"type:text;not null"              json:"message"`
	IsRead    bool      `gorm:"not null;default:false;index"    json:"isRead"`
	CreatedAt time.Time `gorm:"index"                           json:"createdAt"`
}
