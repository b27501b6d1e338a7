package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrAdvertNotFound = errors.New("advert not found")

// Advert is the single catalog entity exposed by the API.
// ID is assigned by storage on create and never changes afterwards.
type Advert struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	DateAdded   time.Time
}
