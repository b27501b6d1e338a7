package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// errorResponse is the standard error envelope returned on 4xx/5xx responses
// other than not-found.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createAdvertRequest struct {
	Name        string          `json:"name"        validate:"max=200"`
	Description string          `json:"description" validate:"max=4000"`
	Price       decimal.Decimal `json:"price"       swaggertype:"number"`
	DateAdded   string          `json:"dateAdded"   example:"2024-01-01T00:00:00Z"`
}

type updateAdvertRequest struct {
	ID          int64           `json:"id"          validate:"required,gt=0"`
	Name        string          `json:"name"        validate:"max=200"`
	Description string          `json:"description" validate:"max=4000"`
	Price       decimal.Decimal `json:"price"       swaggertype:"number"`
	DateAdded   string          `json:"dateAdded"   example:"2024-01-01T00:00:00Z"`
}

// advertResponse is the public projection of an advert. Price is emitted as a
// JSON number in its exact decimal form.
type advertResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price" swaggertype:"number"`
	DateAdded   time.Time   `json:"dateAdded"`
}

// patchOperation documents one element of a PATCH body.
type patchOperation struct {
	Op    string `json:"op"    example:"replace"`
	Path  string `json:"path"  example:"/Name"`
	From  string `json:"from,omitempty"`
	Value any    `json:"value,omitempty"`
}
