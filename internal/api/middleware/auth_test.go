package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/adverts/adverts-api/internal/core/authz"
	"github.com/adverts/adverts-api/internal/core/domain"
)

// stubValidator accepts exactly one token.
type stubValidator struct {
	token  string
	claims *domain.Claims
}

func (v stubValidator) Validate(token string) (*domain.Claims, error) {
	if token != v.token {
		return nil, domain.ErrInvalidToken
	}
	return v.claims, nil
}

var adminValidator = stubValidator{
	token:  "good-token",
	claims: &domain.Claims{Username: "richard_admin", Role: domain.RoleAdmin},
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(adminValidator)
	handler := mw(func(c echo.Context) error {
		called = true
		claims, _ := c.Get(ClaimsKey).(*domain.Claims)
		if claims == nil || claims.Username != "richard_admin" {
			t.Fatalf("claims not set on echo context")
		}
		if authz.ClaimsFromContext(c.Request().Context()) != claims {
			t.Fatalf("claims not set on request context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeaderIsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(adminValidator)
	handler := mw(func(c echo.Context) error {
		called = true
		if c.Get(ClaimsKey) != nil {
			t.Fatalf("anonymous request must not carry claims")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	headers := map[string]string{
		"wrong scheme":  "Token good-token",
		"no token":      "Bearer",
		"invalid token": "Bearer not-a-token",
	}

	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			mw := Auth(adminValidator)
			handler := mw(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
