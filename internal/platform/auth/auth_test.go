package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := ComparePassword("s3cret!", hash)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !ok {
		t.Error("expected matching password to verify")
	}

	ok, err = ComparePassword("wrong", hash)
	if err != nil {
		t.Fatalf("compare wrong: %v", err)
	}
	if ok {
		t.Error("expected non-matching password to fail")
	}
}

func TestComparePassword_Malformed(t *testing.T) {
	if _, err := ComparePassword("x", "nodot"); err == nil {
		t.Error("expected error for malformed stored hash")
	}
}

func TestMiddleware_RoundTrip(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	issuer := NewTokenIssuer(secret, time.Hour)

	profID := 7
	token, err := issuer.Issue(&Principal{
		UserID:         42,
		Username:       "drsilva",
		Role:           "professional",
		ProfessionalID: &profID,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *Principal
	handler := func(c echo.Context) error {
		got = PrincipalFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}

	if err := Middleware(secret)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected principal in context")
	}
	if got.UserID != 42 || got.Username != "drsilva" || got.Role != "professional" {
		t.Errorf("unexpected principal: %+v", got)
	}
	if got.ProfessionalID == nil || *got.ProfessionalID != 7 {
		t.Errorf("expected professional id 7, got %v", got.ProfessionalID)
	}
}

func TestMiddleware_AnonymousPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		if PrincipalFromContext(c.Request().Context()) != nil {
			t.Error("expected no principal for anonymous request")
		}
		return c.NoContent(http.StatusOK)
	}

	if err := Middleware([]byte("k"))(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Middleware([]byte("k"))(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	issuer := NewTokenIssuer(secret, -time.Minute)
	token, err := issuer.Issue(&Principal{UserID: 1, Username: "u", Role: "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = Middleware(secret)(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", err)
	}
}
