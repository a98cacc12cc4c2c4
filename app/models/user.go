package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Member tiers.
const (
	MemberRegular  = "regular"
	MemberGold     = "gold"
	MemberPlatinum = "platinum"
	MemberVIP      = "vip"
)

var MemberStatuses = []string{MemberRegular, MemberGold, MemberPlatinum, MemberVIP}

type User struct {
	ID           uint   `gorm:"primaryKey"                         json:"id"`
	Email        string `gorm:"size:255;uniqueIndex;not null"      json:"email"`
	Password     string `gorm:"size:255;not null"                  json:"-"`
	Name         string `gorm:"size:255"                           json:"name"`
	Role         string `gorm:"size:20;not null;default:customer"  json:"role"`
	MemberStatus string `gorm:"size:20;not null;default:regular"   json:"memberStatus"`

	PhoneNumber string `gorm:"size:40"  json:"phoneNumber"`
	Address     string `gorm:"size:255" json:"address"`
	City        string `gorm:"size:120" json:"city"`
	PostalCode  string `gorm:"size:20"  json:"postalCode"`
	Country     string `gorm:"size:120" json:"country"`

	PreferredMetals    datatypes.JSONSlice[string] `json:"preferredMetals"`
	PreferredGemstones datatypes.JSONSlice[string] `json:"preferredGemstones"`
	RingSize           string                      `gorm:"size:20" json:"ringSize"`
	BraceletSize       string                      `gorm:"size:20" json:"braceletSize"`
	NecklaceLength     string                      `gorm:"size:20" json:"necklaceLength"`

	// ResetToken holds the sha256 of the emailed token.
	ResetToken       *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	Orders    []Order    `gorm:"constraint:OnDelete:SET NULL" json:"orders,omitempty"`
	Wishlist  []Wishlist `gorm:"constraint:OnDelete:CASCADE"  json:"wishlist,omitempty"`
	CartItems []CartItem `gorm:"constraint:OnDelete:CASCADE"  json:"cartItems,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// StringList builds a JSON list column value; nil becomes an empty list.
func StringList(v []string) datatypes.JSONSlice[string] {
	if v == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](v)
}
