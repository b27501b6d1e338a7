package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// advertID parses the :id path parameter.
func advertID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}
	return id, nil
}
