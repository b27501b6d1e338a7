package handler

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/adverts/adverts-api/internal/core/domain"
	"github.com/adverts/adverts-api/internal/core/patch"
	"github.com/adverts/adverts-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createAdvertRequest, idempotencyKey string) (ports.CreateAdvertInput, error) {
	added, err := parseDateAdded(req.DateAdded)
	if err != nil {
		return ports.CreateAdvertInput{}, err
	}
	return ports.CreateAdvertInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		DateAdded:      added,
		IdempotencyKey: idempotencyKey,
	}, nil
}

func toUpdateInput(req updateAdvertRequest) (ports.UpdateAdvertInput, error) {
	added, err := parseDateAdded(req.DateAdded)
	if err != nil {
		return ports.UpdateAdvertInput{}, err
	}
	return ports.UpdateAdvertInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		DateAdded:   added,
	}, nil
}

// parseDateAdded accepts the same layouts as a dateAdded patch. Empty means
// unset.
func parseDateAdded(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := patch.ParseTime(s)
	if err != nil {
		return time.Time{}, errors.New("dateAdded must be an RFC 3339 timestamp")
	}
	return t, nil
}

// --- Service result → HTTP response ---

func toAdvertResponse(a *domain.Advert) advertResponse {
	return advertResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Price:       json.Number(a.Price.String()),
		DateAdded:   a.DateAdded.UTC(),
	}
}

func toAdvertResponses(adverts []domain.Advert) []advertResponse {
	out := make([]advertResponse, 0, len(adverts))
	for i := range adverts {
		out = append(out, toAdvertResponse(&adverts[i]))
	}
	return out
}
