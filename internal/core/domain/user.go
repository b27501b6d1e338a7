package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// TokenLifetime is fixed; tokens cannot be revoked before it elapses.
const TokenLifetime = 15 * time.Minute

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
)

// Credential is an entry of the read-only credential store.
// PasswordHash holds a bcrypt hash; plaintext never leaves the seed step.
type Credential struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	GivenName    string `json:"given_name"`
	Surname      string `json:"surname"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

// Claims is the validated identity carried by a bearer token.
type Claims struct {
	Username  string
	Email     string
	GivenName string
	Surname   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
