package controllers_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/services"
	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/testkit"
)

func (a *api) userID(email string) uint {
	a.t.Helper()
	var u models.User
	require.NoError(a.t, a.db.Where("email = ?", email).First(&u).Error)
	return u.ID
}

func TestSignupAndLogin(t *testing.T) {
	a := newAPI(t)

	body := map[string]string{"email": "amina@example.com", "password": "secret1", "name": "Amina"}
	rec := a.do(http.MethodPost, "/api/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var u models.User
	decode(t, rec, &u)
	assert.Equal(t, "customer", u.Role)
	assert.NotContains(t, rec.Body.String(), "secret1")

	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/auth/signup", "", body).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/auth/signup", "",
		map[string]string{"email": "amina@example.com"}).Code)

	rec = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "amina@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok := a.login("amina@example.com", "secret1")
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/user/profile", tok, nil).Code)

	creds := map[string]string{"email": "amina@example.com", "password": "secret1"}
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/auth/login", tok, creds).Code, "already signed in")
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/auth/signup", tok,
		map[string]string{"email": "other@example.com", "password": "secret1"}).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/auth/login", "not-a-token", creds).Code, "stale tokens may log in again")
}

func TestLogoutRevokesToken(t *testing.T) {
	a := newAPI(t)
	tok := a.customer()

	rec := a.do(http.MethodPost, "/api/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/user/profile", tok, nil).Code)

	// Logging out twice is harmless.
	assert.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/auth/logout", "", nil).Code)
}

func TestNewsletterSubscription(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/newsletter", "", map[string]string{"email": "leila@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, a.outbox.SentTo("leila@example.com"), 1, "welcome mail")

	rec = a.do(http.MethodPost, "/api/newsletter", "", map[string]string{"email": "leila@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, a.outbox.SentTo("leila@example.com"), 1, "no second welcome")

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/newsletter", "", map[string]string{"email": "nope"}).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/newsletter", "", map[string]string{}).Code)

	link, err := services.UnsubscribeURL("leila@example.com")
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	rec = a.do(http.MethodGet, "/api/newsletter/unsubscribe?"+u.RawQuery, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var subs []models.NewsletterSubscriber
	decode(t, a.do(http.MethodGet, "/api/admin/newsletter", a.admin(), nil), &subs)
	assert.Empty(t, subs)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/newsletter/unsubscribe?token=forged", "", nil).Code)
}

func TestNewsletterCampaign(t *testing.T) {
	a := newAPI(t)
	tok := a.admin()
	for _, e := range []string{"a@example.com", "b@example.com"} {
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/newsletter", "", map[string]string{"email": e}).Code)
	}

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/admin/newsletter/send", tok,
		map[string]string{"subject": "Collection Printemps"}).Code)

	rec := a.do(http.MethodPost, "/api/admin/newsletter/send", tok, map[string]any{
		"subject": "Collection Printemps", "message": "Découvrez nos nouveautés.\n\nÀ très bientôt.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Queued int `json:"queued"`
	}
	decode(t, rec, &out)
	assert.Equal(t, 2, out.Queued)
	assert.Len(t, a.outbox.SentTo("b@example.com"), 2, "welcome then campaign")

	rec = a.do(http.MethodPost, "/api/admin/newsletter/send", tok, map[string]any{
		"subject": "Privé", "message": "Avant-première", "recipients": []string{"VIP@diamant-rouge.com", "vip@diamant-rouge.com ", "bad"},
	})
	decode(t, rec, &out)
	assert.Equal(t, 1, out.Queued)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/admin/newsletter", a.customer(), nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/admin/newsletter/999", tok, nil).Code)
}

func TestNotifications(t *testing.T) {
	a := newAPI(t)
	admin := a.admin()
	uid := a.userID("customer@diamant-rouge.com")

	path := "/api/admin/users/" + itoa(uid) + "/notifications"
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, path, admin,
		map[string]string{"type": "GOSSIP", "message": "?"}).Code)
	rec := a.do(http.MethodPost, path, admin, map[string]string{
		"type": models.NotificationNewCollection, "title": "Nouvelle collection", "message": "La collection Éclat est arrivée",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	tok := a.customer()
	var list []models.Notification
	decode(t, a.do(http.MethodGet, "/api/notifications", tok, nil), &list)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsRead)

	var count struct {
		Count int64 `json:"count"`
	}
	decode(t, a.do(http.MethodPut, "/api/notifications", tok, nil), &count)
	assert.Equal(t, int64(1), count.Count)
	decode(t, a.do(http.MethodGet, "/api/notifications", tok, nil), &list)
	assert.True(t, list[0].IsRead)

	decode(t, a.do(http.MethodGet, "/api/notifications", a.vip(), nil), &list)
	assert.Empty(t, list, "notifications are private")

	decode(t, a.do(http.MethodDelete, "/api/notifications", tok, nil), &count)
	assert.Equal(t, int64(1), count.Count)
	decode(t, a.do(http.MethodGet, "/api/notifications", tok, nil), &list)
	assert.Empty(t, list)
}

func TestAdminUsers(t *testing.T) {
	a := newAPI(t)
	admin := a.admin()

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/admin/users", a.customer(), nil).Code)

	var users []models.User
	decode(t, a.do(http.MethodGet, "/api/admin/users", admin, nil), &users)
	assert.Len(t, users, 3)

	vip := a.userID("vip@diamant-rouge.com")
	rec := a.do(http.MethodPut, "/api/admin/users/"+itoa(vip), admin, map[string]string{"role": "emperor"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(http.MethodPut, "/api/admin/users/"+itoa(vip), admin, map[string]string{"city": "Rabat"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var u models.User
	decode(t, rec, &u)
	assert.Equal(t, "Rabat", u.City)

	self := a.userID("admin@diamant-rouge.com")
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodDelete, "/api/admin/users/"+itoa(self), admin, nil).Code)

	customer := a.userID("customer@diamant-rouge.com")
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/admin/users/"+itoa(customer)+"/cart", admin, nil).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/api/admin/users/"+itoa(customer), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/admin/users/"+itoa(customer)+"/cart", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/admin/users/"+itoa(customer), admin, nil).Code)
}

func TestDeletedOrPromotedUserIsSignedOut(t *testing.T) {
	a := newAPI(t)
	admin, customer, vip := a.admin(), a.customer(), a.vip()

	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/cart", customer, nil).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/api/admin/users/"+itoa(a.userID("customer@diamant-rouge.com")), admin, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/cart", customer, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/cart", customer, map[string]any{"productId": 2, "quantity": 1}).Code)

	vipID := itoa(a.userID("vip@diamant-rouge.com"))
	require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/api/admin/users/"+vipID, admin, map[string]string{"city": "Rabat"}).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/cart", vip, nil).Code, "profile edits keep the session")

	require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/api/admin/users/"+vipID, admin, map[string]string{"role": "admin"}).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/cart", vip, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/admin/users", a.vip(), nil).Code, "new login carries the new role")
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/admin/users", admin, nil).Code)
}

func TestImageOptimize(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for x := 0; x < 64; x++ {
		img.Set(x, x%32, color.RGBA{R: 0x9b, A: 0xff})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ring.png"), buf.Bytes(), 0o644))

	config.Set("PUBLIC_DIR", dir)
	t.Cleanup(func() { config.Set("PUBLIC_DIR", "public") })
	a := newAPI(t)

	cases := []struct {
		name string
		path string
		code int
	}{
		{"missing url", "/api/images/optimize", http.StatusBadRequest},
		{"traversal", "/api/images/optimize?url=../etc/passwd", http.StatusBadRequest},
		{"width not a number", "/api/images/optimize?url=/ring.png&w=large", http.StatusBadRequest},
		{"width too large", "/api/images/optimize?url=/ring.png&w=99999", http.StatusBadRequest},
		{"zero width", "/api/images/optimize?url=/ring.png&w=0", http.StatusBadRequest},
		{"zero quality", "/api/images/optimize?url=/ring.png&q=0", http.StatusBadRequest},
		{"unknown file", "/api/images/optimize?url=/missing.png", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, a.do(http.MethodGet, tc.path, "", nil).Code)
		})
	}

	rec := a.do(http.MethodGet, "/api/images/optimize?url=/ring.png&w=32&q=80&f=png", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(rec.Header().Get("Cache-Control"), "immutable"))
	out, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 32, out.Bounds().Dx())
}

func TestUploadRequiresAdmin(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/upload-image", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/upload-image", a.customer(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/upload-image", a.admin(), nil).Code)
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"up"`)
}

func TestChatbotScenarios(t *testing.T) {
	a := newAPI(t)
	testkit.RunDir(t, a.handler, "testdata/chatbot")
}
