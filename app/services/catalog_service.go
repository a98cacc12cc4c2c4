package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/pkg/cache"
	"github.com/diamantrouge/maison/pkg/collection"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/orm"
)

const (
	catalogPrefix     = "catalog:"
	searchCacheTTL    = 5 * time.Minute
	categoryCacheTTL  = 10 * time.Minute
	DefaultSearchSize = 10
	maxSearchSize     = 50
)

type CatalogService struct {
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
}

func NewCatalogService(products *repositories.ProductRepository, categories *repositories.CategoryRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

// ─── Storefront ───────────────────────────────────────────────────────────────

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := orm.Remember(ctx, catalogPrefix+"categories", categoryCacheTTL, &out, func() (err error) {
		out, err = s.categories.All(ctx)
		return err
	})
	return out, err
}

func (s *CatalogService) Products(ctx context.Context, f repositories.ProductFilter) ([]models.Product, orm.Pagination, error) {
	f.Page, f.PerPage = orm.Page(f.Page, f.PerPage)
	items, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, orm.Pagination{}, err
	}
	return items, orm.NewPagination(f.Page, f.PerPage, total), nil
}

func (s *CatalogService) Product(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("Produit introuvable")
	}
	return p, err
}

// SearchQuery is the storefront search request.
type SearchQuery struct {
	Q        string
	Category string
	Locale   string
	Limit    int
}

// SearchHit is one product rendered in the requested locale.
type SearchHit struct {
	ID           uint            `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	CategoryName string          `json:"categoryName"`
	Image        string          `json:"image"`
	Images       []string        `json:"images"`
	Featured     bool            `json:"featured"`
}

type SearchResult struct {
	Results  []SearchHit `json:"results"`
	Total    int         `json:"total"`
	Query    string      `json:"query"`
	Category string      `json:"category"`
}

// Search matches q against product names and descriptions in any language,
// featured pieces first. Results are cached per (q, category, locale, limit).
func (s *CatalogService) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	q.Q = strings.TrimSpace(q.Q)
	if q.Q == "" {
		return nil, invalid("Le paramètre de recherche q est requis")
	}
	if q.Limit < 1 {
		q.Limit = DefaultSearchSize
	}
	if q.Limit > maxSearchSize {
		q.Limit = maxSearchSize
	}
	if q.Locale == "" {
		q.Locale = models.DefaultLocale
	}
	if q.Category == "" {
		q.Category = "all"
	}

	key := fmt.Sprintf("%ssearch:%s:%s:%d:%s", catalogPrefix, q.Locale, q.Category, q.Limit, url.QueryEscape(strings.ToLower(q.Q)))
	var out SearchResult
	err := orm.Remember(ctx, key, searchCacheTTL, &out, func() error {
		products, err := s.products.Search(ctx, repositories.SearchParams{Query: q.Q, CategorySlug: q.Category, Limit: q.Limit})
		if err != nil {
			return err
		}
		hits := collection.Map(products, func(p models.Product) SearchHit { return toHit(p, q.Locale) })
		out = SearchResult{Results: hits, Total: len(hits), Query: q.Q, Category: q.Category}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func toHit(p models.Product, locale string) SearchHit {
	tr := p.Translation(locale)
	h := SearchHit{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        tr.Name,
		Description: tr.Description,
		Price:       p.BasePrice,
		Images:      []string(p.Images),
		Featured:    p.Featured,
	}
	if h.Images == nil {
		h.Images = []string{}
	}
	if len(h.Images) > 0 {
		h.Image = h.Images[0]
	}
	if p.Category != nil {
		h.Category = p.Category.Slug
		h.CategoryName = p.Category.Name(locale)
	}
	return h
}

// ─── Back-office ──────────────────────────────────────────────────────────────

func (s *CatalogService) AllProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.All(ctx)
}

type TranslationInput struct {
	Language    string `json:"language"    validate:"required,max=5"`
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description"`
}

// VariationInput identifies a stored variation by ID, or failing that by
// type and value, so edits keep cart and order references intact.
type VariationInput struct {
	ID              uint            `json:"id"`
	Type            string          `json:"type"            validate:"required,max=50"`
	Value           string          `json:"value"           validate:"required,max=50"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice" validate:"gte=0"`
	Inventory       int             `json:"inventory"       validate:"gte=0"`
}

// ProductInput creates or replaces a product. A category is given either by
// id or by slug. Nil translation or variation lists leave the stored sets
// untouched on update.
type ProductInput struct {
	SKU          string             `json:"sku"          validate:"required,max=64"`
	BasePrice    decimal.Decimal    `json:"basePrice"    validate:"required,gte=0"`
	CategoryID   uint               `json:"categoryId"`
	CategorySlug string             `json:"categorySlug"`
	Images       []string           `json:"images"`
	Featured     bool               `json:"featured"`
	Translations []TranslationInput `json:"translations" validate:"dive"`
	Variations   []VariationInput   `json:"variations"   validate:"dive"`
}

func (s *CatalogService) resolveCategory(ctx context.Context, in ProductInput) (uint, error) {
	switch {
	case in.CategorySlug != "":
		c, err := s.categories.FindBySlug(ctx, in.CategorySlug)
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, invalid("Catégorie inconnue : " + in.CategorySlug)
		}
		if err != nil {
			return 0, err
		}
		return c.ID, nil
	case in.CategoryID != 0:
		if _, err := s.categories.Find(ctx, in.CategoryID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return 0, invalid("Catégorie inconnue")
			}
			return 0, err
		}
		return in.CategoryID, nil
	default:
		return 0, invalid("Une catégorie est requise")
	}
}

func translationsOf(in []TranslationInput) []models.ProductTranslation {
	if in == nil {
		return nil
	}
	return collection.Map(in, func(t TranslationInput) models.ProductTranslation {
		return models.ProductTranslation{Language: t.Language, Name: t.Name, Description: t.Description}
	})
}

func variationsOf(in []VariationInput) []models.ProductVariation {
	if in == nil {
		return nil
	}
	return collection.Map(in, func(v VariationInput) models.ProductVariation {
		return models.ProductVariation{
			ID:              v.ID,
			VariationType:   v.Type,
			VariationValue:  v.Value,
			AdditionalPrice: v.AdditionalPrice,
			Inventory:       v.Inventory,
		}
	})
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	catID, err := s.resolveCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	p := &models.Product{
		SKU:          strings.TrimSpace(in.SKU),
		BasePrice:    in.BasePrice,
		CategoryID:   catID,
		Images:       models.StringList(in.Images),
		Featured:     in.Featured,
		Translations: translationsOf(in.Translations),
		Variations:   variationsOf(in.Variations),
	}
	for i := range p.Variations {
		p.Variations[i].ID = 0
	}
	if err := s.products.Create(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Un produit existe déjà avec ce SKU")
		}
		return nil, err
	}
	s.flush(ctx)
	return s.products.Find(ctx, p.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	catID, err := s.resolveCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	p.SKU = strings.TrimSpace(in.SKU)
	p.BasePrice = in.BasePrice
	p.CategoryID = catID
	p.Category = nil
	p.Images = models.StringList(in.Images)
	p.Featured = in.Featured

	err = s.products.Update(ctx, p, translationsOf(in.Translations), variationsOf(in.Variations))
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return nil, conflict("Un produit existe déjà avec ce SKU")
	case errors.Is(err, repositories.ErrInUse):
		return nil, conflict("Une variante retirée figure dans des commandes")
	}
	if err != nil {
		return nil, err
	}
	s.flush(ctx)
	return s.products.Find(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	ordered, err := s.products.Ordered(ctx, id)
	if err != nil {
		return err
	}
	if ordered {
		return conflict("Ce produit figure dans des commandes et ne peut pas être supprimé")
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Produit introuvable")
		}
		return err
	}
	s.flush(ctx)
	return nil
}

type CategoryTranslationInput struct {
	Language    string `json:"language"    validate:"required,max=5"`
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description"`
}

type CategoryInput struct {
	Slug         string                     `json:"slug"         validate:"required,slug,max=120"`
	Translations []CategoryTranslationInput `json:"translations" validate:"dive"`
}

func categoryTranslationsOf(in []CategoryTranslationInput) []models.CategoryTranslation {
	if in == nil {
		return nil
	}
	return collection.Map(in, func(t CategoryTranslationInput) models.CategoryTranslation {
		return models.CategoryTranslation{Language: t.Language, Name: t.Name, Description: t.Description}
	})
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	c := &models.Category{Slug: in.Slug, Translations: categoryTranslationsOf(in.Translations)}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Une catégorie existe déjà avec ce slug")
		}
		return nil, err
	}
	s.flush(ctx)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	c, err := s.categories.Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("Catégorie introuvable")
	}
	if err != nil {
		return nil, err
	}
	c.Slug = in.Slug
	if err := s.categories.Update(ctx, c, categoryTranslationsOf(in.Translations)); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Une catégorie existe déjà avec ce slug")
		}
		return nil, err
	}
	s.flush(ctx)
	return s.categories.Find(ctx, id)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	n, err := s.categories.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflict(fmt.Sprintf("Cette catégorie contient encore %d produit(s)", n))
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Catégorie introuvable")
		}
		return err
	}
	s.flush(ctx)
	return nil
}

// flush drops every cached catalog read after a write.
func (s *CatalogService) flush(ctx context.Context) {
	if err := cache.DeleteByPrefix(ctx, catalogPrefix); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache flush failed", "error", err)
	}
}
