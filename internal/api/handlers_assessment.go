package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/didim/welfare-matcher/internal/auth"
	"github.com/didim/welfare-matcher/internal/models"
)

func (s *Server) handleSubmitAssessment(c echo.Context) error {
	var a models.Assessment
	if err := c.Bind(&a); err != nil {
		return badRequest(c, "Invalid assessment body")
	}

	result, err := s.Recommendations.Submit(c.Request().Context(), auth.UserIDFromContext(c), a)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetAssessment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid assessment id")
	}

	result, err := s.Recommendations.Result(c.Request().Context(), id)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// handleRecommendationClick always answers 204 for a well-formed id; click
// tracking never surfaces storage errors to the user.
func (s *Server) handleRecommendationClick(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid recommendation id")
	}
	s.Recommendations.TrackClick(c.Request().Context(), id)
	return c.NoContent(http.StatusNoContent)
}
