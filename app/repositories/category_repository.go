package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/diamantrouge/maison/app/models"
)

type CategoryRepository struct{ base }

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{base{db}}
}

func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.conn(ctx).Preload("Translations").Order("slug").Find(&out).Error
	return out, mapErr(err)
}

func (r *CategoryRepository) Find(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.conn(ctx).Preload("Translations").First(&c, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.conn(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return mapErr(r.conn(ctx).Create(c).Error)
}

// Update saves the slug and, when translations is non-nil, replaces the
// translation set.
func (r *CategoryRepository) Update(ctx context.Context, c *models.Category, translations []models.CategoryTranslation) error {
	return mapErr(r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(c).Update("slug", c.Slug).Error; err != nil {
			return err
		}
		if translations == nil {
			return nil
		}
		if err := tx.Where("category_id = ?", c.ID).Delete(&models.CategoryTranslation{}).Error; err != nil {
			return err
		}
		for i := range translations {
			translations[i].ID = 0
			translations[i].CategoryID = c.ID
		}
		if len(translations) > 0 {
			if err := tx.Create(&translations).Error; err != nil {
				return err
			}
		}
		c.Translations = translations
		return nil
	}))
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	return mapErr(r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.CategoryTranslation{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

func (r *CategoryRepository) CountProducts(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.conn(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error
	return n, mapErr(err)
}
