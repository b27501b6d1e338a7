package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adverts/adverts-api/internal/core/authz"
	"github.com/adverts/adverts-api/internal/core/domain"
)

// RBAC enforces authz.Policy for op before the handler runs.
func RBAC(op authz.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := c.Get(ClaimsKey).(*domain.Claims)

			err := authz.Allow(claims, op)
			switch {
			case err == nil:
				return next(c)
			case errors.Is(err, domain.ErrUnauthenticated):
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			default:
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
		}
	}
}
