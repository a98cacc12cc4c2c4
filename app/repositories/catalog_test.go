package repositories_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/internal/testdb"
)

func TestCategoriesOrderedBySlug(t *testing.T) {
	db := testdb.Seeded(t)
	cats, err := repositories.NewCategoryRepository(db).All(context.Background())
	require.NoError(t, err)

	var slugs []string
	for _, c := range cats {
		slugs = append(slugs, c.Slug)
	}
	assert.Equal(t, []string{"bracelets", "earrings", "necklaces", "rings", "watches"}, slugs)
	assert.Equal(t, "Bagues de Luxe", cats[3].Name("fr"))
	assert.Equal(t, "Luxury Rings", cats[3].Name("en"))
	assert.Equal(t, "Bagues de Luxe", cats[3].Name("de"), "falls back to French")
}

func TestProductListFeaturedFirst(t *testing.T) {
	db := testdb.Seeded(t)
	repo := repositories.NewProductRepository(db)

	items, total, err := repo.List(context.Background(), repositories.ProductFilter{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "ROUGE-PASSION-001", items[0].SKU)
	assert.Len(t, items[0].Variations, 5)
	require.NotNil(t, items[0].Category)
	assert.Equal(t, "rings", items[0].Category.Slug)

	items, total, err = repo.List(context.Background(), repositories.ProductFilter{CategorySlug: "necklaces", Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "DIVINE-PEARL-001", items[0].SKU)

	featured := true
	_, total, err = repo.List(context.Background(), repositories.ProductFilter{Featured: &featured, Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestProductSearch(t *testing.T) {
	db := testdb.Seeded(t)
	repo := repositories.NewProductRepository(db)
	ctx := context.Background()

	got, err := repo.Search(ctx, repositories.SearchParams{Query: "PERLE", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "DIVINE-PEARL-001", got[0].SKU)

	got, err = repo.Search(ctx, repositories.SearchParams{Query: "or", CategorySlug: "bracelets", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "IMPERIAL-BRACELET-001", got[0].SKU)

	got, err = repo.Search(ctx, repositories.SearchParams{Query: "saphir introuvable", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProductSearchTreatsWildcardsLiterally(t *testing.T) {
	db := testdb.Seeded(t)
	repo := repositories.NewProductRepository(db)

	for _, q := range []string{"%", "_", "__", "!", "or%ange"} {
		got, err := repo.Search(context.Background(), repositories.SearchParams{Query: q, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, got, "query %q", q)
	}
}

func TestProductCreateDuplicateSKU(t *testing.T) {
	db := testdb.Seeded(t)
	repo := repositories.NewProductRepository(db)
	cat, err := repositories.NewCategoryRepository(db).FindBySlug(context.Background(), "rings")
	require.NoError(t, err)

	err = repo.Create(context.Background(), &models.Product{
		SKU:        "ROUGE-PASSION-001",
		BasePrice:  decimal.NewFromInt(10),
		CategoryID: cat.ID,
	})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestProductUpdateReplacesSets(t *testing.T) {
	db := testdb.Seeded(t)
	repo := repositories.NewProductRepository(db)
	ctx := context.Background()

	p, err := repo.Find(ctx, 1)
	require.NoError(t, err)
	p.BasePrice = decimal.RequireFromString("5200.00")

	err = repo.Update(ctx, p,
		[]models.ProductTranslation{{Language: "fr", Name: "Bague Passion"}},
		[]models.ProductVariation{{VariationType: "Size", VariationValue: "50", Inventory: 2}},
	)
	require.NoError(t, err)

	p, err = repo.Find(ctx, 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5200").Equal(p.BasePrice))
	require.Len(t, p.Translations, 1)
	assert.Equal(t, "Bague Passion", p.Translations[0].Name)
	require.Len(t, p.Variations, 1)
	assert.Equal(t, "50", p.Variations[0].VariationValue)
	assert.Equal(t, uint(2), p.Variations[0].ID, "matched variation keeps its id")
	assert.Equal(t, 2, p.Variations[0].Inventory)
}

func TestProductUpdateKeepsOrderedVariations(t *testing.T) {
	db := testdb.Seeded(t)
	repo := repositories.NewProductRepository(db)
	ctx := context.Background()

	order := models.Order{PaymentMethod: models.PaymentPayPal, TotalAmount: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&order).Error)
	ordered := uint(4)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: order.ID, ProductID: 1, VariationID: &ordered, Quantity: 1, Price: decimal.NewFromInt(10)}).Error)

	p, err := repo.Find(ctx, 1)
	require.NoError(t, err)
	err = repo.Update(ctx, p, nil, []models.ProductVariation{{ID: 1, VariationType: "Size", VariationValue: "48", Inventory: 9}})
	assert.ErrorIs(t, err, repositories.ErrInUse)

	p, err = repo.Find(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, p.Variations, 5, "rejected update is rolled back")
	assert.Equal(t, 5, p.Variations[0].Inventory)
}

func TestCategoryDeleteAndCount(t *testing.T) {
	db := testdb.Seeded(t)
	repo := repositories.NewCategoryRepository(db)
	ctx := context.Background()

	rings, err := repo.FindBySlug(ctx, "rings")
	require.NoError(t, err)
	n, err := repo.CountProducts(ctx, rings.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	watches, err := repo.FindBySlug(ctx, "watches")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, watches.ID))
	_, err = repo.Find(ctx, watches.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, watches.ID), repositories.ErrNotFound)
}
