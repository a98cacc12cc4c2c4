package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/pkg/orm"
)

type ProductRepository struct{ base }

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{base{db}}
}

// ProductFilter narrows the storefront listing.
type ProductFilter struct {
	CategorySlug string
	Featured     *bool
	Page         int
	PerPage      int
}

// SearchParams drives the free-text search.
type SearchParams struct {
	Query        string
	CategorySlug string
	Limit        int
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Translations").
		Preload("Variations", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Category.Translations")
}

func inCategory(slug string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if slug == "" || slug == "all" {
			return db
		}
		return db.Where("category_id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Category{}).Select("id").Where("slug = ?", slug))
	}
}

// List returns a page of products, featured first, and the total count.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	q := r.conn(ctx).Model(&models.Product{}).Scopes(inCategory(f.CategorySlug))
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	var out []models.Product
	err := q.Scopes(withDetails, orm.Paginate(f.Page, f.PerPage)).
		Order("featured DESC").Order("id").
		Find(&out).Error
	return out, total, mapErr(err)
}

// All returns every product ordered by id (admin and export).
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.conn(ctx).Scopes(withDetails).Order("id").Find(&out).Error
	return out, mapErr(err)
}

func (r *ProductRepository) Find(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.conn(ctx).Scopes(withDetails).First(&p, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// likeEscaper makes wildcards in a search term literal. The escape is '!'
// since MySQL string literals treat a backslash as an escape themselves.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search matches q against any translation's name or description,
// case-insensitively.
func (r *ProductRepository) Search(ctx context.Context, p SearchParams) ([]models.Product, error) {
	like := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(p.Query))) + "%"
	matching := r.db.Session(&gorm.Session{NewDB: true}).
		Model(&models.ProductTranslation{}).
		Select("product_id").
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", like, like)

	var out []models.Product
	err := r.conn(ctx).
		Scopes(withDetails, inCategory(p.CategorySlug)).
		Where("id IN (?)", matching).
		Order("featured DESC").Order("id").
		Limit(p.Limit).
		Find(&out).Error
	return out, mapErr(err)
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return mapErr(r.conn(ctx).Create(p).Error)
}

// Update saves the scalar columns, replaces the translations when non-nil
// and syncs the variations when non-nil.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product, translations []models.ProductTranslation, variations []models.ProductVariation) error {
	return mapErr(r.Transaction(ctx, func(tx *gorm.DB) error {
		err := tx.Model(p).Select("sku", "base_price", "category_id", "images", "featured").Updates(p).Error
		if err != nil {
			return err
		}
		if translations != nil {
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductTranslation{}).Error; err != nil {
				return err
			}
			for i := range translations {
				translations[i].ID = 0
				translations[i].ProductID = p.ID
			}
			if len(translations) > 0 {
				if err := tx.Create(&translations).Error; err != nil {
					return err
				}
			}
		}
		if variations != nil {
			return syncVariations(tx, p.ID, variations)
		}
		return nil
	}))
}

type variationKey struct{ kind, value string }

// syncVariations keeps variation ids stable so cart lines and order lines
// still point at them. An input row matches a stored one by id, else by
// (type, value); matches are updated in place, the rest inserted. Stored
// rows left unmatched are deleted, unless an order line references them.
func syncVariations(tx *gorm.DB, productID uint, in []models.ProductVariation) error {
	var stored []models.ProductVariation
	if err := tx.Where("product_id = ?", productID).Find(&stored).Error; err != nil {
		return err
	}
	byID := make(map[uint]*models.ProductVariation, len(stored))
	byKey := make(map[variationKey]*models.ProductVariation, len(stored))
	for i := range stored {
		v := &stored[i]
		byID[v.ID] = v
		byKey[variationKey{v.VariationType, v.VariationValue}] = v
	}

	kept := make(map[uint]bool, len(in))
	for i := range in {
		v := &in[i]
		v.ProductID = productID
		match := byID[v.ID]
		if match == nil {
			match = byKey[variationKey{v.VariationType, v.VariationValue}]
		}
		if match == nil || kept[match.ID] {
			v.ID = 0
			if err := tx.Create(v).Error; err != nil {
				return err
			}
			continue
		}
		v.ID = match.ID
		kept[match.ID] = true
		err := tx.Model(match).
			Select("variation_type", "variation_value", "additional_price", "inventory").
			Updates(v).Error
		if err != nil {
			return err
		}
	}

	var dropped []uint
	for _, v := range stored {
		if !kept[v.ID] {
			dropped = append(dropped, v.ID)
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	var ordered int64
	if err := tx.Model(&models.OrderItem{}).Where("variation_id IN ?", dropped).Count(&ordered).Error; err != nil {
		return err
	}
	if ordered > 0 {
		return ErrInUse
	}
	return tx.Delete(&models.ProductVariation{}, dropped).Error
}

// Delete removes a product with its translations, variations, cart lines
// and wishlist entries. Products already ordered cannot be deleted.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return mapErr(r.Transaction(ctx, func(tx *gorm.DB) error {
		for _, m := range []any{&models.CartItem{}, &models.Wishlist{}, &models.ProductTranslation{}, &models.ProductVariation{}} {
			if err := tx.Where("product_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

// Ordered reports whether any order line references the product.
func (r *ProductRepository) Ordered(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.conn(ctx).Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&n).Error
	return n > 0, mapErr(err)
}
