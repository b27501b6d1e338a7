package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adverts/adverts-api/internal/api/metrics"
	"github.com/adverts/adverts-api/internal/core/domain"
	"github.com/adverts/adverts-api/internal/core/patch"
	"github.com/adverts/adverts-api/internal/core/ports"
)

// AdvertHandler handles HTTP requests for advert operations. Authorization
// has already been enforced by the RBAC middleware when these run.
type AdvertHandler struct {
	service ports.AdvertService
}

func NewAdvertHandler(service ports.AdvertService) *AdvertHandler {
	return &AdvertHandler{service: service}
}

// Create handles POST /adverts.
//
// @Summary      Create an advert
// @Tags         adverts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createAdvertRequest  true   "Advert to create"
// @Success      201              {array}   advertResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /adverts [post]
func (h *AdvertHandler) Create(c echo.Context) error {
	var req createAdvertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	input, err := toCreateInput(req, c.Request().Header.Get("Idempotency-Key"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	adverts, err := h.service.Create(c.Request().Context(), input)
	observeMutation("create", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAdvertResponses(adverts))
}

// List handles GET /adverts.
//
// @Summary      List adverts
// @Tags         adverts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   advertResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /adverts [get]
func (h *AdvertHandler) List(c echo.Context) error {
	adverts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdvertResponses(adverts))
}

// Get handles GET /adverts/:id.
//
// @Summary      Get an advert by id
// @Tags         adverts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Advert id"
// @Success      200  {object}  advertResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {string}  string  "Advert not found"
// @Router       /adverts/{id} [get]
func (h *AdvertHandler) Get(c echo.Context) error {
	id, err := advertID(c)
	if err != nil {
		return err
	}

	advert, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdvertResponse(advert))
}

// Update handles PUT /adverts. The advert to replace is named by the id in
// the body.
//
// @Summary      Replace an advert
// @Tags         adverts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateAdvertRequest  true  "Full advert including id"
// @Success      200   {array}   advertResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {string}  string  "Advert not found"
// @Failure      422   {object}  errorResponse
// @Router       /adverts [put]
func (h *AdvertHandler) Update(c echo.Context) error {
	var req updateAdvertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	input, err := toUpdateInput(req)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	adverts, err := h.service.Update(c.Request().Context(), input)
	observeMutation("update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdvertResponses(adverts))
}

// Patch handles PATCH /adverts/:id with a JSON Patch document.
//
// @Summary      Partially update an advert
// @Tags         adverts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Advert id"
// @Param        body  body      []patchOperation  true  "JSON Patch document"
// @Success      200   {object}  advertResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {string}  string  "Advert not found"
// @Router       /adverts/{id} [patch]
func (h *AdvertHandler) Patch(c echo.Context) error {
	id, err := advertID(c)
	if err != nil {
		return err
	}

	var doc patch.Document
	dec := json.NewDecoder(c.Request().Body)
	if err := dec.Decode(&doc); err != nil || dec.More() {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid patch document"})
	}
	metrics.PatchOperationsPerDocument.Observe(float64(len(doc)))

	advert, err := h.service.Patch(c.Request().Context(), id, doc)
	observeMutation("patch", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdvertResponse(advert))
}

// Delete handles DELETE /adverts/:id.
//
// @Summary      Delete an advert
// @Tags         adverts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Advert id"
// @Success      200  {array}   advertResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {string}  string  "Advert not found"
// @Router       /adverts/{id} [delete]
func (h *AdvertHandler) Delete(c echo.Context) error {
	id, err := advertID(c)
	if err != nil {
		return err
	}

	adverts, err := h.service.Delete(c.Request().Context(), id)
	observeMutation("delete", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdvertResponses(adverts))
}

func observeMutation(operation string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAdvertNotFound):
		result = "not_found"
	case errors.Is(err, patch.ErrInvalidPatch):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.AdvertMutationsTotal.WithLabelValues(operation, result).Inc()
}
