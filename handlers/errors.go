package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"complaint_desk_go/logger"
	"complaint_desk_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError maps service errors to status codes. Internal details are logged,
// never returned.
func respondError(c echo.Context, err error) error {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": validation.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
	case errors.Is(err, services.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You do not have permission to perform this action"})
	case errors.Is(err, services.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	case errors.Is(err, services.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": "A record with the same unique value already exists"})
	}

	logger.Log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong. Please try again."})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

// queryInt parses an integer query parameter, falling back to def
func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
