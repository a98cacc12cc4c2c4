package services

import (
	"context"
	"errors"
	"slices"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/pkg/session"
)

type ProfileService struct {
	users *repositories.UserRepository
}

func NewProfileService(users *repositories.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.Profile(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("Utilisateur introuvable")
	}
	return u, err
}

type AddressInput struct {
	Address     string `json:"address"     validate:"max=255"`
	City        string `json:"city"        validate:"max=120"`
	PostalCode  string `json:"postalCode"  validate:"max=20"`
	Country     string `json:"country"     validate:"max=120"`
	PhoneNumber string `json:"phoneNumber" validate:"max=40"`
}

func (s *ProfileService) UpdateAddress(ctx context.Context, userID uint, in AddressInput) (*models.User, error) {
	return s.update(ctx, userID, map[string]any{
		"address":      in.Address,
		"city":         in.City,
		"postal_code":  in.PostalCode,
		"country":      in.Country,
		"phone_number": in.PhoneNumber,
	})
}

type PreferencesInput struct {
	PreferredMetals    []string `json:"preferredMetals"    validate:"max=20"`
	PreferredGemstones []string `json:"preferredGemstones" validate:"max=20"`
	RingSize           string   `json:"ringSize"           validate:"max=20"`
	BraceletSize       string   `json:"braceletSize"       validate:"max=20"`
	NecklaceLength     string   `json:"necklaceLength"     validate:"max=20"`
}

func (s *ProfileService) UpdatePreferences(ctx context.Context, userID uint, in PreferencesInput) (*models.User, error) {
	return s.update(ctx, userID, map[string]any{
		"preferred_metals":    models.StringList(in.PreferredMetals),
		"preferred_gemstones": models.StringList(in.PreferredGemstones),
		"ring_size":           in.RingSize,
		"bracelet_size":       in.BraceletSize,
		"necklace_length":     in.NecklaceLength,
	})
}

// UpdateMemberStatus changes another customer's tier (admin only).
func (s *ProfileService) UpdateMemberStatus(ctx context.Context, targetID uint, status string) (*models.User, error) {
	if !slices.Contains(models.MemberStatuses, status) {
		return nil, invalid("Statut de membre invalide")
	}
	return s.update(ctx, targetID, map[string]any{"member_status": status})
}

func (s *ProfileService) update(ctx context.Context, userID uint, fields map[string]any) (*models.User, error) {
	if _, err := s.users.Find(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Utilisateur introuvable")
		}
		return nil, err
	}
	if err := s.users.Update(ctx, userID, fields); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	return s.users.Find(ctx, userID)
}

// ─── Back-office ──────────────────────────────────────────────────────────────

// UserService is the admin view over customer accounts.
type UserService struct {
	*ProfileService
	cart *repositories.CartRepository
}

func NewUserService(users *repositories.UserRepository, cart *repositories.CartRepository) *UserService {
	return &UserService{ProfileService: NewProfileService(users), cart: cart}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

type AdminUserInput struct {
	Name        string `json:"name"        validate:"max=255"`
	Role        string `json:"role"        validate:"nullable,in=customer,admin"`
	PhoneNumber string `json:"phoneNumber" validate:"max=40"`
	Address     string `json:"address"     validate:"max=255"`
	City        string `json:"city"        validate:"max=120"`
	PostalCode  string `json:"postalCode"  validate:"max=20"`
	Country     string `json:"country"     validate:"max=120"`
}

func (s *UserService) Update(ctx context.Context, id uint, in AdminUserInput) (*models.User, error) {
	fields := map[string]any{
		"name":         in.Name,
		"phone_number": in.PhoneNumber,
		"address":      in.Address,
		"city":         in.City,
		"postal_code":  in.PostalCode,
		"country":      in.Country,
	}
	var previous string
	if in.Role != "" {
		fields["role"] = in.Role
		if u, err := s.users.Find(ctx, id); err == nil {
			previous = u.Role
		}
	}
	u, err := s.update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	// Tokens carry the role, so a promotion or demotion signs the user out.
	if previous != "" && previous != u.Role {
		if _, err := session.DestroyUser(ctx, id); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Delete removes the account with its cart, wishlist and notifications and
// revokes its sessions. Orders and appointments stay for bookkeeping.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound("Utilisateur introuvable")
	}
	if err != nil {
		return err
	}
	_, err = session.DestroyUser(ctx, id)
	return err
}

func (s *UserService) Cart(ctx context.Context, id uint) ([]models.CartItem, error) {
	if _, err := s.users.Find(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Utilisateur introuvable")
		}
		return nil, err
	}
	return s.cart.ListForUser(ctx, id)
}
