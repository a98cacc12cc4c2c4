package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DefaultLocale is used when a translation for the requested language is
// missing.
const DefaultLocale = "fr"

// Category groups products (rings, bracelets, ...).
type Category struct {
	ID           uint                  `gorm:"primaryKey"                      json:"id"`
	Slug         string                `gorm:"size:120;uniqueIndex;not null"   json:"slug"`
	Translations []CategoryTranslation `gorm:"constraint:OnDelete:CASCADE"     json:"translations"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

type CategoryTranslation struct {
	ID          uint   `gorm:"primaryKey"                                json:"id"`
	CategoryID  uint   `gorm:"not null;uniqueIndex:idx_category_language" json:"categoryId"`
	Language    string `gorm:"size:5;not null;uniqueIndex:idx_category_language" json:"language"`
	Name        string `gorm:"size:255;not null"                         json:"name"`
	Description string `gorm:"type:text"                                 json:"description"`
}

// Name returns the category name in locale, falling back to French then to
// the first translation.
func (c Category) Name(locale string) string {
	i := pickLocale(len(c.Translations), func(i int) string { return c.Translations[i].Language }, locale)
	if i < 0 {
		return c.Slug
	}
	return c.Translations[i].Name
}

// Product is a catalog item. Its price is BasePrice plus the selected
// variation's AdditionalPrice.
type Product struct {
	ID           uint                        `gorm:"primaryKey"                     json:"id"`
	SKU          string                      `gorm:"size:64;uniqueIndex;not null"   json:"sku"`
	BasePrice    decimal.Decimal             `gorm:"type:decimal(12,2);not null"    json:"basePrice"`
	CategoryID   uint                        `gorm:"not null;index"                 json:"categoryId"`
	Category     *Category                   `gorm:"constraint:OnDelete:RESTRICT"   json:"category,omitempty"`
	Images       datatypes.JSONSlice[string] `json:"images"`
	Featured     bool                        `gorm:"not null;default:false;index"   json:"featured"`
	Translations []ProductTranslation        `gorm:"constraint:OnDelete:CASCADE"    json:"translations"`
	Variations   []ProductVariation          `gorm:"constraint:OnDelete:CASCADE"    json:"variations"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

type ProductTranslation struct {
	ID          uint   `gorm:"primaryKey"                                       json:"id"`
	ProductID   uint   `gorm:"not null;uniqueIndex:idx_product_language"         json:"productId"`
	Language    string `gorm:"size:5;not null;uniqueIndex:idx_product_language;index" json:"language"`
	Name        string `gorm:"size:255;not null"                                json:"name"`
	Description string `gorm:"type:text"                                        json:"description"`
}

// ProductVariation is a purchasable option such as a ring size.
type ProductVariation struct {
	ID              uint            `gorm:"primaryKey"                            json:"id"`
	ProductID       uint            `gorm:"not null;index"                        json:"productId"`
	VariationType   string          `gorm:"size:50;not null"                      json:"type"`
	VariationValue  string          `gorm:"size:50;not null"                      json:"value"`
	AdditionalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"additionalPrice"`
	Inventory       int             `gorm:"not null;default:0"                    json:"inventory"`
}

// Translation returns the product text for locale, falling back to French
// then to the first translation.
func (p Product) Translation(locale string) ProductTranslation {
	i := pickLocale(len(p.Translations), func(i int) string { return p.Translations[i].Language }, locale)
	if i < 0 {
		return ProductTranslation{Name: p.SKU}
	}
	return p.Translations[i]
}

// UnitPrice is the price of one unit with the given variation.
func (p Product) UnitPrice(v *ProductVariation) decimal.Decimal {
	if v == nil {
		return p.BasePrice
	}
	return p.BasePrice.Add(v.AdditionalPrice)
}

// Variation returns the variation with id, if it belongs to the product.
func (p Product) Variation(id uint) (*ProductVariation, bool) {
	for i := range p.Variations {
		if p.Variations[i].ID == id {
			return &p.Variations[i], true
		}
	}
	return nil, false
}

func pickLocale(n int, lang func(int) string, locale string) int {
	if n == 0 {
		return -1
	}
	fallback := -1
	for i := 0; i < n; i++ {
		switch lang(i) {
		case locale:
			return i
		case DefaultLocale:
			fallback = i
		}
	}
	if fallback >= 0 {
		return fallback
	}
	return 0
}
