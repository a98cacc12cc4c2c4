package controllers_test

import (
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/app/models"
)

var resetLink = regexp.MustCompile(`reset-password\?token=([0-9a-f]{64})`)

func TestPasswordReset(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.outbox.Sent(), "unknown address gets no mail")

	rec = a.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"email": "customer@diamant-rouge.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	sent := a.outbox.SentTo("customer@diamant-rouge.com")
	require.Len(t, sent, 1)
	m := resetLink.FindStringSubmatch(sent[0].Body)
	require.Len(t, m, 2, sent[0].Body)
	token := m[1]

	rec = a.do(http.MethodPost, "/api/auth/update-password", "", map[string]string{"token": "deadbeef", "password": "nouveau123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/update-password", "", map[string]string{"token": token})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "password required")

	rec = a.do(http.MethodPost, "/api/auth/update-password", "", map[string]string{"token": token, "password": "nouveau123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	a.login("customer@diamant-rouge.com", "nouveau123")

	rec = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "customer@diamant-rouge.com", "password": "customer123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/update-password", "", map[string]string{"token": token, "password": "encore456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "token is single use")
}

func TestProfileUpdates(t *testing.T) {
	a := newAPI(t)
	tok := a.customer()

	rec := a.do(http.MethodPost, "/api/user/update-address", tok, map[string]string{
		"address":     "12 Boulevard d'Anfa",
		"city":        "Casablanca",
		"postalCode":  "20000",
		"country":     "Maroc",
		"phoneNumber": "+212600000000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

	rec = a.do(http.MethodPost, "/api/user/update-preferences", tok, map[string]any{
		"preferredMetals":    []string{"or rose", "platine"},
		"preferredGemstones": []string{"rubis"},
		"ringSize":           "52",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var u models.User
	decode(t, a.do(http.MethodGet, "/api/user/profile", tok, nil), &u)
	assert.Equal(t, "Casablanca", u.City)
	assert.Equal(t, "+212600000000", u.PhoneNumber)
	assert.Equal(t, []string{"or rose", "platine"}, []string(u.PreferredMetals))
	assert.Equal(t, []string{"rubis"}, []string(u.PreferredGemstones))
	assert.Equal(t, "52", u.RingSize)
}

func TestUpdateMemberStatus(t *testing.T) {
	a := newAPI(t)
	target := a.userID("customer@diamant-rouge.com")

	rec := a.do(http.MethodPost, "/api/user/update-member-status", a.customer(),
		map[string]any{"targetUserId": target, "memberStatus": "vip"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	tok := a.admin()
	rec = a.do(http.MethodPost, "/api/user/update-member-status", tok,
		map[string]any{"targetUserId": target, "memberStatus": "diamond"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/user/update-member-status", tok,
		map[string]any{"targetUserId": 999, "memberStatus": "gold"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/api/user/update-member-status", tok,
		map[string]any{"targetUserId": target, "memberStatus": "gold"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var u models.User
	decode(t, rec, &u)
	assert.Equal(t, "gold", u.MemberStatus)
}

func TestAdminOrderStatus(t *testing.T) {
	a := newAPI(t)
	tok := a.customer()
	a.do(http.MethodPost, "/api/cart", tok, map[string]any{"productId": 1, "quantity": 1})
	rec := a.do(http.MethodPost, "/api/order/place-order", tok, map[string]any{"paymentMethod": "BANK_TRANSFER"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order models.Order
	decode(t, rec, &order)

	admin := a.admin()
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/admin/orders", tok, nil).Code)

	var all []models.Order
	decode(t, a.do(http.MethodGet, "/api/admin/orders", admin, nil), &all)
	require.Len(t, all, 1)

	rec = a.do(http.MethodPut, "/api/admin/orders/"+itoa(order.ID)+"/status", admin, map[string]string{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(http.MethodPut, "/api/admin/orders/999/status", admin, map[string]string{"status": "SHIPPED"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPut, "/api/admin/orders/"+itoa(order.ID)+"/status", admin, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updates := 0
	for _, m := range a.outbox.SentTo("customer@diamant-rouge.com") {
		if strings.HasPrefix(m.Subject, "Votre commande n°"+itoa(order.ID)) {
			updates++
		}
	}
	assert.Equal(t, 1, updates, "order update mail")

	var filtered []models.Order
	decode(t, a.do(http.MethodGet, "/api/admin/orders?status=SHIPPED", admin, nil), &filtered)
	assert.Len(t, filtered, 1)
	decode(t, a.do(http.MethodGet, "/api/admin/orders?status=PENDING", admin, nil), &filtered)
	assert.Empty(t, filtered)

	var notes []models.Notification
	decode(t, a.do(http.MethodGet, "/api/notifications", tok, nil), &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationOrderUpdate, notes[0].Type)
}
