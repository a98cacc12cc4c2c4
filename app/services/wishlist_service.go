package services

import (
	"context"
	"errors"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
)

type WishlistService struct {
	wishlist *repositories.WishlistRepository
	products *repositories.ProductRepository
}

func NewWishlistService(wishlist *repositories.WishlistRepository, products *repositories.ProductRepository) *WishlistService {
	return &WishlistService{wishlist: wishlist, products: products}
}

func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.Wishlist, error) {
	return s.wishlist.ListForUser(ctx, userID)
}

func (s *WishlistService) Add(ctx context.Context, userID, productID uint) (*models.Wishlist, error) {
	if productID == 0 {
		return nil, invalid("productId est requis")
	}
	if _, err := s.products.Find(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Produit introuvable")
		}
		return nil, err
	}
	return s.wishlist.Add(ctx, userID, productID)
}

// Remove reports whether an entry was deleted; removing an absent product is
// not an error.
func (s *WishlistService) Remove(ctx context.Context, userID, productID uint) (bool, error) {
	if productID == 0 {
		return false, invalid("productId est requis")
	}
	return s.wishlist.Remove(ctx, userID, productID)
}
