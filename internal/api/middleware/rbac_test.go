package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/adverts/adverts-api/internal/core/authz"
	"github.com/adverts/adverts-api/internal/core/domain"
)

func runRBAC(t *testing.T, op authz.Operation, claims *domain.Claims) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(ClaimsKey, claims)
	}

	called := false
	handler := RBAC(op)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestRBAC_Allows(t *testing.T) {
	rec, called := runRBAC(t, authz.OpListAdverts, &domain.Claims{Role: domain.RoleUser})
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbids(t *testing.T) {
	rec, called := runRBAC(t, authz.OpDeleteAdvert, &domain.Claims{Role: domain.RoleUser})
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRBAC_Anonymous(t *testing.T) {
	rec, called := runRBAC(t, authz.OpGetAdvert, nil)
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	if _, called := runRBAC(t, authz.OpLogin, nil); !called {
		t.Fatalf("login must be reachable anonymously")
	}
}
