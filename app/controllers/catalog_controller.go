package controllers

import (
	"net/http"

	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/ctx"
)

type CatalogController struct {
	service *services.CatalogService
}

func NewCatalogController(service *services.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

func (cc *CatalogController) Categories(c *ctx.Context) {
	cats, err := cc.service.Categories(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(cats)
}

// productQuery is the public listing filter.
type productQuery struct {
	Category string `query:"category"`
	Featured *bool  `query:"featured"`
	Page     int    `query:"page"     validate:"nullable,gte=1"`
	PerPage  int    `query:"perPage"  validate:"nullable,gte=1,lte=100"`
}

func (cc *CatalogController) Products(c *ctx.Context) {
	var q productQuery
	if !c.BindQuery(&q) {
		return
	}
	f := repositories.ProductFilter{CategorySlug: q.Category, Featured: q.Featured, Page: q.Page, PerPage: q.PerPage}

	items, p, err := cc.service.Products(c.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(items, p)
}

func (cc *CatalogController) Show(c *ctx.Context) {
	pid, ok := id(c)
	if !ok {
		return
	}
	p, err := cc.service.Product(c.Context(), pid)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

func (cc *CatalogController) Search(c *ctx.Context) {
	limit, ok := c.QueryInt("limit", services.DefaultSearchSize)
	if !ok {
		c.Error(http.StatusBadRequest, "limit doit être un entier")
		return
	}
	res, err := cc.service.Search(c.Context(), services.SearchQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Locale:   c.Query("locale"),
		Limit:    limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.SetHeader("Cache-Control", "s-maxage=300, stale-while-revalidate")
	c.Success(res)
}

// ─── Back-office ──────────────────────────────────────────────────────────────

func (cc *CatalogController) AdminProducts(c *ctx.Context) {
	items, err := cc.service.AllProducts(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(items)
}

func (cc *CatalogController) CreateProduct(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	p, err := cc.service.CreateProduct(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusCreated, "Produit créé", p)
}

func (cc *CatalogController) UpdateProduct(c *ctx.Context) {
	pid, ok := id(c)
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	p, err := cc.service.UpdateProduct(c.Context(), pid, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Produit mis à jour", p)
}

func (cc *CatalogController) DeleteProduct(c *ctx.Context) {
	pid, ok := id(c)
	if !ok {
		return
	}
	if err := cc.service.DeleteProduct(c.Context(), pid); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Produit supprimé", nil)
}

func (cc *CatalogController) CreateCategory(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	cat, err := cc.service.CreateCategory(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusCreated, "Catégorie créée", cat)
}

func (cc *CatalogController) UpdateCategory(c *ctx.Context) {
	cid, ok := id(c)
	if !ok {
		return
	}
	var in services.CategoryInput
	if !c.BindJSONWith(&in, http.StatusBadRequest) {
		return
	}
	cat, err := cc.service.UpdateCategory(c.Context(), cid, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Catégorie mise à jour", cat)
}

func (cc *CatalogController) DeleteCategory(c *ctx.Context) {
	cid, ok := id(c)
	if !ok {
		return
	}
	if err := cc.service.DeleteCategory(c.Context(), cid); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Catégorie supprimée", nil)
}
