package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adverts/adverts-api/internal/core/authz"
	"github.com/adverts/adverts-api/internal/core/domain"
	"github.com/adverts/adverts-api/internal/core/patch"
	"github.com/adverts/adverts-api/internal/core/ports"
)

const (
	EventAdvertCreated = "advert.created"
	EventAdvertUpdated = "advert.updated"
	EventAdvertPatched = "advert.patched"
	EventAdvertDeleted = "advert.deleted"
)

const releaseTimeout = 2 * time.Second

// AdvertService orchestrates advert CRUD against the repository. Every method
// checks the caller carried in ctx against authz.Policy before touching
// storage.
type AdvertService struct {
	repo        ports.AdvertRepository
	idempotency ports.IdempotencyStore
	events      ports.EventPublisher
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAdvertService wires the service. idempotency and events are optional.
func NewAdvertService(
	repo ports.AdvertRepository,
	idempotency ports.IdempotencyStore,
	events ports.EventPublisher,
	logger zerolog.Logger,
) *AdvertService {
	return &AdvertService{
		repo:        repo,
		idempotency: idempotency,
		events:      events,
		now:         time.Now,
		logger:      logger,
	}
}

// Create inserts a new advert and returns the resulting collection. When an
// idempotency key is supplied and was already used, nothing is inserted.
func (s *AdvertService) Create(ctx context.Context, input ports.CreateAdvertInput) ([]domain.Advert, error) {
	if err := authz.Check(ctx, authz.OpCreateAdvert); err != nil {
		return nil, err
	}

	claimed := false
	if input.IdempotencyKey != "" && s.idempotency != nil {
		first, err := s.idempotency.Claim(ctx, input.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("idempotency check failed, processing anyway")
		} else if !first {
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Msg("idempotent replay")
			return s.list(ctx)
		}
		claimed = err == nil
	}

	advert := &domain.Advert{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		DateAdded:   input.DateAdded.UTC(),
	}
	if input.DateAdded.IsZero() {
		advert.DateAdded = s.now().UTC()
	}

	if err := s.repo.Create(ctx, advert); err != nil {
		s.logger.Error().Err(err).Msg("failed to create advert")
		if claimed {
			s.releaseKey(ctx, input.IdempotencyKey)
		}
		return nil, fmt.Errorf("create advert: %w", err)
	}

	s.logger.Info().Int64("advert_id", advert.ID).Msg("advert created")
	s.publish(ctx, EventAdvertCreated, advert.ID, advert)

	return s.list(ctx)
}

// List returns every advert.
func (s *AdvertService) List(ctx context.Context) ([]domain.Advert, error) {
	if err := authz.Check(ctx, authz.OpListAdverts); err != nil {
		return nil, err
	}
	return s.list(ctx)
}

// Get returns one advert or domain.ErrAdvertNotFound.
func (s *AdvertService) Get(ctx context.Context, id int64) (*domain.Advert, error) {
	if err := authz.Check(ctx, authz.OpGetAdvert); err != nil {
		return nil, err
	}

	advert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get advert %d: %w", id, err)
	}
	return advert, nil
}

// Update replaces name, description, price and date added of an existing
// advert. The identifier itself never changes.
func (s *AdvertService) Update(ctx context.Context, input ports.UpdateAdvertInput) ([]domain.Advert, error) {
	if err := authz.Check(ctx, authz.OpUpdateAdvert); err != nil {
		return nil, err
	}

	advert := &domain.Advert{
		ID:          input.ID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		DateAdded:   input.DateAdded.UTC(),
	}
	if err := s.repo.Update(ctx, advert); err != nil {
		return nil, fmt.Errorf("update advert %d: %w", input.ID, err)
	}

	s.logger.Info().Int64("advert_id", advert.ID).Msg("advert updated")
	s.publish(ctx, EventAdvertUpdated, advert.ID, advert)

	return s.list(ctx)
}

// Patch applies doc to the stored advert. Either every operation succeeds and
// the result is persisted, or storage is left untouched and the error wraps
// patch.ErrInvalidPatch.
func (s *AdvertService) Patch(ctx context.Context, id int64, doc patch.Document) (*domain.Advert, error) {
	if err := authz.Check(ctx, authz.OpPatchAdvert); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("patch advert %d: %w", id, err)
	}

	patched, err := ApplyAdvertPatch(doc, *current)
	if err != nil {
		s.logger.Debug().Err(err).Int64("advert_id", id).Msg("patch rejected")
		return nil, err
	}

	if err := s.repo.Update(ctx, &patched); err != nil {
		return nil, fmt.Errorf("patch advert %d: %w", id, err)
	}

	s.logger.Info().Int64("advert_id", id).Int("operations", len(doc)).Msg("advert patched")
	s.publish(ctx, EventAdvertPatched, id, &patched)

	return &patched, nil
}

// Delete removes an advert and returns the remaining collection.
func (s *AdvertService) Delete(ctx context.Context, id int64) ([]domain.Advert, error) {
	if err := authz.Check(ctx, authz.OpDeleteAdvert); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete advert %d: %w", id, err)
	}

	s.logger.Info().Int64("advert_id", id).Msg("advert deleted")
	s.publish(ctx, EventAdvertDeleted, id, nil)

	return s.list(ctx)
}

func (s *AdvertService) list(ctx context.Context) ([]domain.Advert, error) {
	adverts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list adverts: %w", err)
	}
	return adverts, nil
}

// releaseKey frees a key claimed by a create that never stored anything.
// It runs on a context detached from cancellation so a timed-out request
// still gives its key back.
func (s *AdvertService) releaseKey(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.idempotency.Release(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

// publish is best effort; the change is already committed.
func (s *AdvertService) publish(ctx context.Context, eventType string, id int64, advert *domain.Advert) {
	if s.events == nil {
		return
	}

	event := ports.AdvertEvent{
		Type:       eventType,
		AdvertID:   id,
		Advert:     advert,
		OccurredAt: s.now().UTC(),
	}
	if claims := authz.ClaimsFromContext(ctx); claims != nil {
		event.Actor = claims.Username
	}

	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Int64("advert_id", id).Msg("failed to publish advert event")
	}
}
