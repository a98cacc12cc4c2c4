package mail_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/pkg/mail"
)

func TestTemplateAndFakeTransport(t *testing.T) {
	fsys := fstest.MapFS{
		"welcome.html": {Data: []byte(`<p>Bonjour {{.Name}}</p>`)},
	}
	require.NoError(t, mail.UseTemplates(fsys, "*.html"))

	fake := &mail.Fake{}
	mail.SetTransport(fake)
	defer mail.SetTransport(nil)

	err := mail.To("sophie@example.com").
		WithSubject("Bienvenue").
		Template("welcome.html", map[string]string{"Name": "Sophie"}).
		Send(context.Background())
	require.NoError(t, err)

	got := fake.SentTo("SOPHIE@example.com")
	require.Len(t, got, 1)
	assert.Equal(t, "Bienvenue", got[0].Subject)
	assert.Contains(t, got[0].Body, "Bonjour Sophie")
	assert.True(t, got[0].IsHTML)
}

func TestUnknownTemplateFailsOnSend(t *testing.T) {
	require.NoError(t, mail.UseTemplates(fstest.MapFS{
		"a.html": {Data: []byte(`a`)},
	}, "*.html"))
	mail.SetTransport(&mail.Fake{})
	defer mail.SetTransport(nil)

	err := mail.To("x@example.com").Template("missing.html", nil).Send(context.Background())
	assert.Error(t, err)
}

func TestNoRecipients(t *testing.T) {
	mail.SetTransport(&mail.Fake{})
	defer mail.SetTransport(nil)
	assert.Error(t, mail.To().Text("hi").Send(context.Background()))
}

func TestRawEncodesSubject(t *testing.T) {
	raw := string(mail.To("a@example.com").WithSubject("Votre commande a été expédiée").Text("ok").Raw("noreply@diamant-rouge.com"))
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
	assert.Contains(t, raw, "Content-Type: text/plain")
	assert.Contains(t, raw, "\r\n\r\nok")
}
