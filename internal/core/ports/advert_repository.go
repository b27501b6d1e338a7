package ports

import (
	"context"

	"github.com/adverts/adverts-api/internal/core/domain"
)

// AdvertRepository defines persistence operations for adverts.
// Lookups of a missing id return domain.ErrAdvertNotFound, never a nil record
// with a nil error.
type AdvertRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Advert, error)
	List(ctx context.Context) ([]domain.Advert, error)
	// Create inserts a and sets a.ID to the identifier assigned by storage.
	Create(ctx context.Context, a *domain.Advert) error
	// Update replaces every mutable field of the advert with a.ID.
	Update(ctx context.Context, a *domain.Advert) error
	Delete(ctx context.Context, id int64) error
}

// Pinger is implemented by collaborators the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
