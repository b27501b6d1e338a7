package ports

import "github.com/adverts/adverts-api/internal/core/domain"

// CredentialStore is the read-only table of known users, loaded once at
// startup.
type CredentialStore interface {
	Users() []domain.Credential
}
