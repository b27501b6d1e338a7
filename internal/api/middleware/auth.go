package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adverts/adverts-api/internal/core/authz"
	"github.com/adverts/adverts-api/internal/core/ports"
)

// ClaimsKey is the echo.Context key holding *domain.Claims.
const ClaimsKey = "claims"

// Auth resolves the bearer token, if any, into claims. Requests without an
// Authorization header pass through anonymously and are left to RBAC; a header
// that is present but malformed or carries an invalid token is rejected here.
func Auth(tokens ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ClaimsKey, claims)
			c.SetRequest(c.Request().WithContext(authz.WithClaims(c.Request().Context(), claims)))

			return next(c)
		}
	}
}
