package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adverts/adverts-api/internal/core/domain"
	"github.com/adverts/adverts-api/internal/core/patch"
)

// advertSchema whitelists the patchable advert fields. ID is deliberately
// absent so it can never be patched.
var advertSchema = patch.NewSchema[domain.Advert](nil,
	patch.NewField("Name", patch.String,
		func(a *domain.Advert) string { return a.Name },
		func(a *domain.Advert, v string) { a.Name = v }),
	patch.NewField("Description", patch.String,
		func(a *domain.Advert) string { return a.Description },
		func(a *domain.Advert, v string) { a.Description = v }),
	patch.NewField("Price", patch.Decimal,
		func(a *domain.Advert) decimal.Decimal { return a.Price },
		func(a *domain.Advert, v decimal.Decimal) { a.Price = v }),
	patch.NewField("DateAdded", patch.Timestamp,
		func(a *domain.Advert) time.Time { return a.DateAdded },
		func(a *domain.Advert, v time.Time) { a.DateAdded = v.UTC() }),
)

// ApplyAdvertPatch runs doc against a copy of advert.
func ApplyAdvertPatch(doc patch.Document, advert domain.Advert) (domain.Advert, error) {
	return advertSchema.Apply(doc, advert)
}
