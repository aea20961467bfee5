package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/didim/welfare-matcher/internal/ingest"
	"github.com/didim/welfare-matcher/internal/models"
)

// writeError maps domain errors onto HTTP responses.
func (s *Server) writeError(c echo.Context, err error) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, models.ErrNotFound), errors.Is(err, ingest.ErrUnknownSource):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, models.ErrDataUnavailable):
		s.Log.Warn("data unavailable", map[string]interface{}{"path": c.Path(), "error": err.Error()})
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "Data is temporarily unavailable, please try again",
		})
	default:
		s.Log.Error("request failed", map[string]interface{}{"path": c.Path(), "error": err.Error()})
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
