package services

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/internal/testdb"
)

func TestUnsubscribeToken(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	captureMail(t)
	s := NewNewsletterService(repositories.NewNewsletterRepository(db))

	_, created, err := s.Subscribe(ctx, "Yasmine@Example.com")
	require.NoError(t, err)
	require.True(t, created)

	link, err := UnsubscribeURL("yasmine@example.com")
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/api/newsletter/unsubscribe", u.Path)

	email, err := s.Unsubscribe(ctx, u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "yasmine@example.com", email)

	// The link keeps working after the address is gone.
	_, err = s.Unsubscribe(ctx, u.Query().Get("token"))
	assert.NoError(t, err)

	_, err = s.Unsubscribe(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCampaignRecipients(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	outbox := captureMail(t)
	s := NewNewsletterService(repositories.NewNewsletterRepository(db))

	n, err := s.Send(ctx, CampaignInput{Subject: "Soirée privée", Message: "Bonsoir", Recipients: []string{
		"Karim@example.com", " karim@example.com", "not-an-email", "salma@example.com",
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, outbox.SentTo("karim@example.com"), 1)
	assert.Equal(t, "Soirée privée", outbox.SentTo("karim@example.com")[0].Subject)

	n, err = s.Send(ctx, CampaignInput{Subject: "Vide", Message: "Personne"})
	require.NoError(t, err)
	assert.Zero(t, n, "no subscribers yet")
}

func TestPublicPath(t *testing.T) {
	dir := t.TempDir()
	s := &ImageService{publicDir: dir}

	got, err := s.publicPath("/products/rouge-passion.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "products", "rouge-passion.jpg"), got)

	for _, raw := range []string{"../etc/passwd", "/products/../../secret", "/", "a\x00b"} {
		_, err := s.publicPath(raw)
		assert.ErrorIs(t, err, ErrInvalidInput, raw)
	}
}
