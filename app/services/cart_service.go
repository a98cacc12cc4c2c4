package services

import (
	"context"
	"errors"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
)

type CartService struct {
	cart     *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartService(cart *repositories.CartRepository, products *repositories.ProductRepository) *CartService {
	return &CartService{cart: cart, products: products}
}

type AddToCartInput struct {
	ProductID   uint  `json:"productId"   validate:"required"`
	VariationID *uint `json:"variationId"`
	Quantity    int   `json:"quantity"    validate:"required,gte=1"`
}

func (s *CartService) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.cart.ListForUser(ctx, userID)
}

// Add puts quantity units of a product in the cart, merging into the
// existing line for the same (product, variation).
func (s *CartService) Add(ctx context.Context, userID uint, in AddToCartInput) (*models.CartItem, error) {
	if in.Quantity < 1 {
		return nil, invalid("La quantité doit être au moins 1")
	}
	p, err := s.products.Find(ctx, in.ProductID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("Produit introuvable")
	}
	if err != nil {
		return nil, err
	}
	if in.VariationID != nil {
		if _, ok := p.Variation(*in.VariationID); !ok {
			return nil, invalid("Cette variation n'appartient pas au produit")
		}
	}

	// A concurrent insert of the same line surfaces as ErrDuplicate; the
	// second pass then finds it and merges.
	for attempt := 0; attempt < 2; attempt++ {
		line, err := s.cart.FindLine(ctx, userID, in.ProductID, in.VariationID)
		switch {
		case err == nil:
			if err := s.cart.Increment(ctx, line.ID, in.Quantity); err != nil {
				return nil, err
			}
			return s.cart.Find(ctx, line.ID)
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, err
		}

		line = &models.CartItem{
			UserID:      userID,
			ProductID:   in.ProductID,
			VariationID: in.VariationID,
			Quantity:    in.Quantity,
		}
		err = s.cart.Create(ctx, line)
		if err == nil {
			return s.cart.Find(ctx, line.ID)
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, conflict("Le panier a été modifié, veuillez réessayer")
}

// owned loads a line and checks it belongs to userID.
func (s *CartService) owned(ctx context.Context, userID, lineID uint) (*models.CartItem, error) {
	line, err := s.cart.Find(ctx, lineID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("Article introuvable")
	}
	if err != nil {
		return nil, err
	}
	if line.UserID != userID {
		return nil, forbidden("Cet article ne vous appartient pas")
	}
	return line, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID uint, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, invalid("La quantité doit être au moins 1")
	}
	line, err := s.owned(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if err := s.cart.SetQuantity(ctx, line.ID, qty); err != nil {
		return nil, err
	}
	line.Quantity = qty
	return line, nil
}

func (s *CartService) Remove(ctx context.Context, userID, lineID uint) error {
	line, err := s.owned(ctx, userID, lineID)
	if err != nil {
		return err
	}
	return s.cart.Delete(ctx, line.ID)
}

func (s *CartService) Clear(ctx context.Context, userID uint) (int64, error) {
	return s.cart.Clear(ctx, userID)
}
