// Package graphql exposes the catalog as a read-only GraphQL schema.
package graphql

import (
	"strconv"

	gql "github.com/graphql-go/graphql"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/pkg/graphql"
)

const maxProducts = 100

var localeArg = gql.FieldConfigArgument{
	"locale": &gql.ArgumentConfig{Type: gql.String, DefaultValue: models.DefaultLocale},
}

func locale(p gql.ResolveParams) string {
	if l, ok := p.Args["locale"].(string); ok && l != "" {
		return l
	}
	return models.DefaultLocale
}

var categoryType = gql.NewObject(gql.ObjectConfig{
	Name: "Category",
	Fields: gql.Fields{
		"id":   &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"slug": &gql.Field{Type: gql.NewNonNull(gql.String)},
		"name": &gql.Field{
			Type: gql.String,
			Args: localeArg,
			Resolve: func(p gql.ResolveParams) (any, error) {
				return p.Source.(models.Category).Name(locale(p)), nil
			},
		},
	},
})

var variationType = gql.NewObject(gql.ObjectConfig{
	Name: "Variation",
	Fields: gql.Fields{
		"id":    &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"type":  &gql.Field{Type: gql.String, Resolve: variation(func(v models.ProductVariation) any { return v.VariationType })},
		"value": &gql.Field{Type: gql.String, Resolve: variation(func(v models.ProductVariation) any { return v.VariationValue })},
		"additionalPrice": &gql.Field{
			Type:    gql.String,
			Resolve: variation(func(v models.ProductVariation) any { return v.AdditionalPrice.StringFixed(2) }),
		},
		"inventory": &gql.Field{Type: gql.Int},
	},
})

func variation(get func(models.ProductVariation) any) gql.FieldResolveFn {
	return func(p gql.ResolveParams) (any, error) {
		return get(p.Source.(models.ProductVariation)), nil
	}
}

func product(get func(models.Product, gql.ResolveParams) any) gql.FieldResolveFn {
	return func(p gql.ResolveParams) (any, error) {
		return get(p.Source.(models.Product), p), nil
	}
}

var productType = gql.NewObject(gql.ObjectConfig{
	Name: "Product",
	Fields: gql.Fields{
		"id":  &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"sku": &gql.Field{Type: gql.NewNonNull(gql.String)},
		"name": &gql.Field{
			Type:    gql.String,
			Args:    localeArg,
			Resolve: product(func(pr models.Product, p gql.ResolveParams) any { return pr.Translation(locale(p)).Name }),
		},
		"description": &gql.Field{
			Type:    gql.String,
			Args:    localeArg,
			Resolve: product(func(pr models.Product, p gql.ResolveParams) any { return pr.Translation(locale(p)).Description }),
		},
		"price": &gql.Field{
			Type:    gql.String,
			Resolve: product(func(pr models.Product, _ gql.ResolveParams) any { return pr.BasePrice.StringFixed(2) }),
		},
		"featured": &gql.Field{Type: gql.Boolean},
		"images": &gql.Field{
			Type:    gql.NewList(gql.String),
			Resolve: product(func(pr models.Product, _ gql.ResolveParams) any { return []string(pr.Images) }),
		},
		"category": &gql.Field{
			Type: categoryType,
			Resolve: product(func(pr models.Product, _ gql.ResolveParams) any {
				if pr.Category == nil {
					return nil
				}
				return *pr.Category
			}),
		},
		"variations": &gql.Field{
			Type:    gql.NewList(variationType),
			Resolve: product(func(pr models.Product, _ gql.ResolveParams) any { return pr.Variations }),
		},
	},
})

// NewSchema builds the catalog schema on top of the catalog service.
func NewSchema(catalog *services.CatalogService) (gql.Schema, error) {
	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"products": &gql.Field{
				Type: gql.NewList(productType),
				Args: gql.FieldConfigArgument{
					"category": &gql.ArgumentConfig{Type: gql.String},
					"featured": &gql.ArgumentConfig{Type: gql.Boolean},
					"limit":    &gql.ArgumentConfig{Type: gql.Int, DefaultValue: 20},
				},
				Resolve: func(p gql.ResolveParams) (any, error) {
					f := repositories.ProductFilter{PerPage: maxProducts}
					f.CategorySlug, _ = p.Args["category"].(string)
					if v, ok := p.Args["featured"].(bool); ok {
						f.Featured = &v
					}
					if n, ok := p.Args["limit"].(int); ok && n > 0 && n < maxProducts {
						f.PerPage = n
					}
					items, _, err := catalog.Products(p.Context, f)
					return items, err
				},
			},
			"product": &gql.Field{
				Type: productType,
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
				},
				Resolve: func(p gql.ResolveParams) (any, error) {
					raw, _ := p.Args["id"].(string)
					id, err := strconv.ParseUint(raw, 10, 64)
					if err != nil || id == 0 {
						return nil, nil
					}
					pr, err := catalog.Product(p.Context, uint(id))
					if err != nil {
						return nil, err
					}
					return *pr, nil
				},
			},
			"categories": &gql.Field{
				Type: gql.NewList(categoryType),
				Resolve: func(p gql.ResolveParams) (any, error) {
					return catalog.Categories(p.Context)
				},
			},
		},
	})
	return graphql.NewSchema(query)
}
