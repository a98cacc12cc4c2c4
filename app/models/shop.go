package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one cart line. A user holds at most one line per
// (product, variation); a nil variation counts as its own value.
type CartItem struct {
	ID          uint              `gorm:"primaryKey"                         json:"id"`
	UserID      uint              `gorm:"not null;uniqueIndex:idx_cart_line" json:"userId"`
	ProductID   uint              `gorm:"not null;uniqueIndex:idx_cart_line" json:"productId"`
	Product     *Product          `gorm:"constraint:OnDelete:CASCADE"        json:"product,omitempty"`
	VariationID *uint             `gorm:"uniqueIndex:idx_cart_line"          json:"variationId"`
	Variation   *ProductVariation `gorm:"constraint:OnDelete:CASCADE"        json:"variation,omitempty"`
	Quantity    int               `gorm:"not null;default:1"                 json:"quantity"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type Wishlist struct {
	ID        uint      `gorm:"primaryKey"                             json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_entry" json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_entry" json:"productId"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE"            json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	OrderPending    = "PENDING"
	OrderProcessing = "PROCESSING"
	OrderConfirmed  = "CONFIRMED"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
	OrderCancelled  = "CANCELLED"
)

var OrderStatuses = []string{OrderPending, OrderProcessing, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled}

const (
	PaymentCreditCard     = "CREDIT_CARD"
	PaymentBankTransfer   = "BANK_TRANSFER"
	PaymentPayPal         = "PAYPAL"
	PaymentCashOnDelivery = "CASH_ON_DELIVERY"
)

var PaymentMethods = []string{PaymentCreditCard, PaymentBankTransfer, PaymentPayPal, PaymentCashOnDelivery}

// Order keeps its rows when the customer account is deleted; UserID is then
// nil.
type Order struct {
	ID          uint            `gorm:"primaryKey"                      json:"id"`
	UserID      *uint           `gorm:"index"                           json:"userId"`
	User        *User           `json:"user,omitempty"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"     json:"totalAmount"`
	Status      string          `gorm:"size:20;not null;default:PENDING;index" json:"status"`

	PaymentMethod   string `gorm:"size:30;not null" json:"paymentMethod"`
	ShippingAddress string `gorm:"size:255"         json:"shippingAddress"`
	City            string `gorm:"size:120"         json:"city"`
	PostalCode      string `gorm:"size:20"          json:"postalCode"`
	Country         string `gorm:"size:120"         json:"country"`

	IncludeLuxuryPackaging bool   `json:"includeLuxuryPackaging"`
	IncludeInsurance       bool   `json:"includeInsurance"`
	GiftMessage            string `gorm:"type:text" json:"giftMessage"`
	SpecialInstructions    string `gorm:"type:text" json:"specialInstructions"`

	OrderItems []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"orderItems"`
	CreatedAt  time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// OrderItem freezes the unit price at checkout.
type OrderItem struct {
	ID          uint              `gorm:"primaryKey"                  json:"id"`
	OrderID     uint              `gorm:"not null;index"              json:"orderId"`
	ProductID   uint              `gorm:"not null;index"              json:"productId"`
	Product     *Product          `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	VariationID *uint             `json:"variationId"`
	Variation   *ProductVariation `gorm:"constraint:OnDelete:SET NULL" json:"variation,omitempty"`
	Quantity    int               `gorm:"not null"                    json:"quantity"`
	Price       decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"price"`
}

// Subtotal is Price × Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
