package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adverts/adverts-api/internal/core/domain"
	"github.com/adverts/adverts-api/internal/core/patch"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"advert not found", fmt.Errorf("get advert 9: %w", domain.ErrAdvertNotFound), http.StatusNotFound, `"Advert not found"`},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusNotFound, `"User Not Found"`},
		{"anonymous", domain.ErrUnauthenticated, http.StatusUnauthorized, `{"error":"authentication required"}`},
		{"bad token", domain.ErrInvalidToken, http.StatusUnauthorized, `{"error":"authentication required"}`},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, `{"error":"forbidden"}`},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "id must be an integer"), http.StatusBadRequest, `{"error":"id must be an integer"}`},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if got := rec.Body.String(); got != tc.body+"\n" {
				t.Fatalf("expected body %s, got %s", tc.body, got)
			}
		})
	}
}

func TestHTTPErrorHandler_InvalidPatch(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPatch, "/adverts/1", nil), rec)

	err := &patch.Error{Index: 1, Op: patch.OpReplace, Path: "/Id", Err: patch.ErrInvalidPath}
	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
