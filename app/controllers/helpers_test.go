package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/internal/testdb"
	"github.com/diamantrouge/maison/pkg/app"
	"github.com/diamantrouge/maison/pkg/mail"
	"github.com/diamantrouge/maison/pkg/queue"
	"github.com/diamantrouge/maison/resources"
)

type api struct {
	t       *testing.T
	handler http.Handler
	db      *gorm.DB
	outbox  *mail.Fake
}

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// newAPI serves the full route table over a freshly seeded database with
// jobs running inline and mail captured.
func newAPI(t *testing.T) *api {
	t.Helper()
	config.Set("RATE_LIMIT", "100000")
	db := testdb.Seeded(t)
	a, err := app.New(db)
	require.NoError(t, err)
	require.NoError(t, mail.UseTemplates(resources.Mail, resources.MailPattern))

	outbox := &mail.Fake{}
	mail.SetTransport(outbox)
	queue.SetSync(true)
	t.Cleanup(func() {
		mail.SetTransport(nil)
		queue.SetSync(false)
	})
	return &api{t: t, handler: a.Handler(), db: db, outbox: outbox}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *api) login(email, password string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	decode(a.t, rec, &out)
	require.NotEmpty(a.t, out.Token)
	return out.Token
}

func (a *api) customer() string { return a.login("customer@diamant-rouge.com", "customer123") }
func (a *api) vip() string      { return a.login("vip@diamant-rouge.com", "vip123") }
func (a *api) admin() string    { return a.login("admin@diamant-rouge.com", "admin123") }

// decode unwraps the envelope's data into dest.
func decode(t *testing.T, rec *httptest.ResponseRecorder, dest any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest), rec.Body.String())
	}
	return env
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
