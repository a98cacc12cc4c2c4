package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/diamantrouge/maison/app/jobs"
	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/auth"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/session"
)

// ResetTokenTTL is how long an emailed password-reset link stays valid.
const ResetTokenTTL = 6 * time.Hour

type AuthService struct {
	users *repositories.UserRepository
	ttl   time.Duration
	now   func() time.Time
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users, ttl: config.JWTTTL(), now: time.Now}
}

type SignupInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"max=255"`
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:        in.Email,
		Password:     hash,
		Name:         in.Name,
		Role:         models.RoleCustomer,
		MemberStatus: models.MemberRegular,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	logger.WithCtx(ctx).Info("auth: signup", "user_id", u.ID)
	return u, nil
}

// Login is the result of a successful sign-in.
type Login struct {
	Token string        `json:"token"`
	User  *models.User  `json:"user"`
	TTL   time.Duration `json:"-"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Login, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.Password, password) {
		logger.WithCtx(ctx).Warn("auth: bad password", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	sid, err := session.Start(ctx, u.ID, s.ttl)
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateToken(u.ID, u.Role, u.Email, sid, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Login{Token: token, User: u, TTL: s.ttl}, nil
}

// Logout revokes the session behind the caller's token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return session.Destroy(ctx, sessionID)
}

// RequestPasswordReset mails a reset link when the account exists. Unknown
// addresses succeed silently so the endpoint cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := auth.RandomToken(32)
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, u.ID, auth.HashToken(token), s.now().UTC().Add(ResetTokenTTL)); err != nil {
		return err
	}

	jobs.QueueMail(ctx, &jobs.SendMail{
		To:       u.Email,
		Subject:  "Réinitialisation de votre mot de passe",
		Template: "password_reset.html",
		Data: map[string]any{
			"Name":       u.Name,
			"ResetURL":   config.BaseURL() + "/reset-password?token=" + url.QueryEscape(token),
			"ValidHours": int(ResetTokenTTL.Hours()),
		},
	})
	return nil
}

type UpdatePasswordInput struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *AuthService) UpdatePassword(ctx context.Context, in UpdatePasswordInput) error {
	u, err := s.users.FindByResetToken(ctx, auth.HashToken(in.Token), s.now().UTC())
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	return s.users.ResetPassword(ctx, u.ID, hash)
}
