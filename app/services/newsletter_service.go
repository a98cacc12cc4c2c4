package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/diamantrouge/maison/app/events"
	"github.com/diamantrouge/maison/app/jobs"
	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/collection"
	"github.com/diamantrouge/maison/pkg/crypt"
	"github.com/diamantrouge/maison/pkg/event"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/validate"
)

const welcomeSubject = "Bienvenue dans le Cercle Diamant Rouge"

type NewsletterService struct {
	subscribers *repositories.NewsletterRepository
}

func NewNewsletterService(subscribers *repositories.NewsletterRepository) *NewsletterService {
	return &NewsletterService{subscribers: subscribers}
}

const unsubscribePurpose = "newsletter.unsubscribe"

type unsubscribeClaim struct {
	Email string `json:"e"`
}

// UnsubscribeURL is the signed one-click opt-out link for email.
func UnsubscribeURL(email string) (string, error) {
	tok, err := crypt.Seal(unsubscribePurpose, unsubscribeClaim{Email: strings.ToLower(email)})
	if err != nil {
		return "", err
	}
	return config.BaseURL() + "/api/newsletter/unsubscribe?token=" + url.QueryEscape(tok), nil
}

// Subscribe registers email and queues the welcome mail for new
// subscribers. created is false when the address was already on the list.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscriber, bool, error) {
	email = strings.TrimSpace(email)
	if !validate.IsEmail(email) {
		return nil, false, invalid("Adresse email invalide")
	}
	sub, created, err := s.subscribers.Subscribe(ctx, email)
	if err != nil || !created {
		return sub, false, err
	}

	s.queue(ctx, sub.Email, welcomeSubject, "newsletter_welcome.html", map[string]any{
		"ShopURL": config.BaseURL(),
	})
	event.FireAsync(ctx, events.NewsletterSubscribed, sub)
	return sub, true, nil
}

func (s *NewsletterService) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	return s.subscribers.List(ctx)
}

type CampaignInput struct {
	Subject    string   `json:"subject"    validate:"required,max=255"`
	Message    string   `json:"message"    validate:"required"`
	Recipients []string `json:"recipients"`
}

// Send queues one mail per recipient, every subscriber when none are given,
// and returns how many were queued.
func (s *NewsletterService) Send(ctx context.Context, in CampaignInput) (int, error) {
	recipients := collection.Filter(
		collection.Unique(collection.Map(in.Recipients, func(e string) string { return strings.ToLower(strings.TrimSpace(e)) })),
		validate.IsEmail,
	)
	if len(in.Recipients) == 0 {
		all, err := s.subscribers.Emails(ctx)
		if err != nil {
			return 0, err
		}
		recipients = all
	}

	paragraphs := collection.Filter(
		collection.Map(strings.Split(in.Message, "\n\n"), strings.TrimSpace),
		func(p string) bool { return p != "" },
	)
	for _, to := range recipients {
		s.queue(ctx, to, in.Subject, "newsletter_campaign.html", map[string]any{
			"Subject":    in.Subject,
			"Paragraphs": paragraphs,
		})
	}
	logger.WithCtx(ctx).Info("newsletter: campaign queued", "subject", in.Subject, "recipients", len(recipients))
	return len(recipients), nil
}

func (s *NewsletterService) queue(ctx context.Context, to, subject, template string, data map[string]any) {
	if link, err := UnsubscribeURL(to); err == nil {
		data["UnsubscribeURL"] = link
	} else {
		logger.WithCtx(ctx).Warn("newsletter: unsubscribe link unavailable", "error", err)
	}
	jobs.QueueMail(ctx, &jobs.SendMail{To: to, Subject: subject, Template: template, Data: data})
}

func (s *NewsletterService) Delete(ctx context.Context, id uint) error {
	err := s.subscribers.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound("Abonné introuvable")
	}
	return err
}

// Unsubscribe removes the address sealed in token. Unknown addresses are
// treated as already unsubscribed.
func (s *NewsletterService) Unsubscribe(ctx context.Context, token string) (string, error) {
	var claim unsubscribeClaim
	if err := crypt.Open(unsubscribePurpose, token, &claim); err != nil || claim.Email == "" {
		return "", invalid("Lien de désinscription invalide")
	}
	if _, err := s.subscribers.DeleteByEmail(ctx, claim.Email); err != nil {
		return "", err
	}
	return claim.Email, nil
}
