package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/diamantrouge/maison/pkg/auth"
	appctx "github.com/diamantrouge/maison/pkg/ctx"
)

func TestWrapAndSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"sku": "ROUGE-PASSION-001"})
	})(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":{"sku":"ROUGE-PASSION-001"}`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreatedAndMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Message(http.StatusCreated, "Rendez-vous confirmé", map[string]any{"id": 1})
	})(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Rendez-vous confirmé"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestParamUint(t *testing.T) {
	r := chi.NewRouter()
	var got uint
	var ok bool
	r.Get("/products/{id}", appctx.Wrap(func(c *appctx.Context) {
		got, ok = c.ParamUint("id")
		c.Success(nil)
	}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/12", nil))
	if !ok || got != 12 {
		t.Errorf("expected 12, got %d (ok=%v)", got, ok)
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/abc", nil))
	if ok {
		t.Error("expected non-numeric id to be rejected")
	}
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?w=640&q=abc&id=9", nil)
	appctx.Wrap(func(c *appctx.Context) {
		if w, ok := c.QueryInt("w", 800); !ok || w != 640 {
			t.Errorf("expected w=640, got %d", w)
		}
		if _, ok := c.QueryInt("q", 75); ok {
			t.Error("expected q to be rejected")
		}
		if f, ok := c.QueryInt("missing", 75); !ok || f != 75 {
			t.Errorf("expected default 75, got %d", f)
		}
		if id, ok := c.QueryUint("id"); !ok || id != 9 {
			t.Errorf("expected id 9, got %d", id)
		}
		c.Success(nil)
	})(httptest.NewRecorder(), req)
}

func TestBindJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"email":"sophie@example.com","password":"Sophie#2025"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Email    string `json:"email"    validate:"required,email"`
			Password string `json:"password" validate:"required,min=8"`
		}
		if !c.BindJSON(&input) {
			t.Error("expected BindJSON to succeed")
			return
		}
		if input.Email != "sophie@example.com" {
			t.Errorf("expected email, got %s", input.Email)
		}
		c.Success(nil)
	})(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBindJSONInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Email string `json:"email" validate:"required"`
		}
		if c.BindJSON(&input) {
			t.Error("expected BindJSON to fail")
		}
	})(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestBindJSONMalformed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Email string `json:"email"`
		}
		c.BindJSON(&input)
	})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestClaimsAccessors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: 5, Role: auth.RoleAdmin}))

	appctx.Wrap(func(c *appctx.Context) {
		if c.UserID() != 5 {
			t.Errorf("expected user 5, got %d", c.UserID())
		}
		if !c.IsAdmin() {
			t.Error("expected admin")
		}
		c.Success(nil)
	})(httptest.NewRecorder(), req)

	appctx.Wrap(func(c *appctx.Context) {
		if c.UserID() != 0 || c.IsAdmin() {
			t.Error("guest must have no identity")
		}
		c.Success(nil)
	})(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestDataAndClientIP(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")

	appctx.Wrap(func(c *appctx.Context) {
		if ip := c.ClientIP(); ip != "1.2.3.4" {
			t.Errorf("expected 1.2.3.4, got %s", ip)
		}
		c.Data(http.StatusOK, "image/webp", []byte("RIFF"))
	})(rec, req)

	if rec.Header().Get("Content-Type") != "image/webp" || rec.Body.String() != "RIFF" {
		t.Errorf("unexpected response: %v %q", rec.Header(), rec.Body.String())
	}
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	appctx.Wrap(func(c *appctx.Context) {
		c.NotFound("Product not found")
	})(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Product not found") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestBindJSONWithStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":0}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			ProductID uint `json:"productId" validate:"required"`
			Quantity  int  `json:"quantity"`
		}
		c.BindJSONWith(&input, http.StatusBadRequest)
	})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"The productId field is required."`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
