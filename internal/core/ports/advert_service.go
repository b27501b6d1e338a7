package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adverts/adverts-api/internal/core/domain"
	"github.com/adverts/adverts-api/internal/core/patch"
)

// CreateAdvertInput carries a new advert. A zero DateAdded defaults to now.
type CreateAdvertInput struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	DateAdded      time.Time
	IdempotencyKey string
}

// UpdateAdvertInput fully replaces the mutable fields of advert ID.
type UpdateAdvertInput struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	DateAdded   time.Time
}

// AdvertService defines the advert use cases. Mutations return the whole
// collection as it stands after the change.
type AdvertService interface {
	Create(ctx context.Context, input CreateAdvertInput) ([]domain.Advert, error)
	List(ctx context.Context) ([]domain.Advert, error)
	Get(ctx context.Context, id int64) (*domain.Advert, error)
	Update(ctx context.Context, input UpdateAdvertInput) ([]domain.Advert, error)
	Patch(ctx context.Context, id int64, doc patch.Document) (*domain.Advert, error)
	Delete(ctx context.Context, id int64) ([]domain.Advert, error)
}

// AdvertEvent describes a committed change, published after the fact.
type AdvertEvent struct {
	Type       string
	AdvertID   int64
	Advert     *domain.Advert
	Actor      string
	OccurredAt time.Time
}

// EventPublisher delivers AdvertEvents to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event AdvertEvent) error
}

// IdempotencyStore remembers keys already used for a create request.
type IdempotencyStore interface {
	// Claim records key and reports whether this was its first use.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so that a failed create can be retried with it.
	Release(ctx context.Context, key string) error
}
