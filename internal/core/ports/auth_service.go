package ports

import (
	"context"

	"github.com/adverts/adverts-api/internal/core/domain"
)

// AuthService authenticates credentials and issues bearer tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.Credential, error)
}

// TokenValidator turns a bearer token back into claims.
type TokenValidator interface {
	Validate(token string) (*domain.Claims, error)
}
