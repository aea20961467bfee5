package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/didim/welfare-matcher/internal/ai"
	"github.com/didim/welfare-matcher/internal/auth"
	"github.com/didim/welfare-matcher/internal/models"
)

type createApplicationRequest struct {
	ProgramID     int64          `json:"programId"`
	ApplicantName string         `json:"applicantName"`
	Profile       models.Profile `json:"profile"`
	LogID         *uuid.UUID     `json:"logId,omitempty"`
	ProductNames  []string       `json:"productNames,omitempty"`
}

type applicationResponse struct {
	ID      *uuid.UUID                `json:"id"`
	Program string                    `json:"programName"`
	Subsidy string                    `json:"subsidy"`
	Content models.ApplicationContent `json:"content"`
}

// handleCreateApplication drafts the application text for a program and
// stores it. The draft is returned even when it could not be stored; id is
// null in that case.
func (s *Server) handleCreateApplication(c echo.Context) error {
	var req createApplicationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid application body")
	}
	if req.ProgramID <= 0 {
		return s.writeError(c, &models.ValidationError{Field: "programId", Message: "programId is required"})
	}
	if err := req.Profile.Validate(time.Now()); err != nil {
		return s.writeError(c, err)
	}
	if s.Applications == nil || s.Writer == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "application drafting is not configured"})
	}

	ctx := c.Request().Context()
	program, err := s.Applications.GetProgram(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return s.writeError(c, err)
		}
		return s.writeError(c, errors.Join(models.ErrDataUnavailable, err))
	}

	productNames := req.ProductNames
	if len(productNames) == 0 && req.LogID != nil {
		productNames = s.recommendedProductNames(c, *req.LogID)
	}

	subsidy := s.Policy.FormatSubsidy(program.SubsidyLimit)
	content := s.Writer.Write(ctx, ai.ApplicationRequest{
		ApplicantName: strings.TrimSpace(req.ApplicantName),
		Profile:       req.Profile,
		Program:       *program,
		SubsidyText:   subsidy,
		ProductNames:  productNames,
		Now:           time.Now(),
	})

	app := models.Application{
		ID:        uuid.New(),
		UserID:    auth.UserIDFromContext(c),
		ProgramID: program.ID,
		LogID:     req.LogID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	resp := applicationResponse{Program: program.ProgramName, Subsidy: subsidy, Content: content}
	if err := s.Applications.SaveApplication(ctx, app); err != nil {
		s.Log.Error("failed to save application", map[string]interface{}{"program_id": program.ID, "error": err.Error()})
		s.Metrics.IncPersistenceFailure("application")
	} else {
		resp.ID = &app.ID
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) recommendedProductNames(c echo.Context, logID uuid.UUID) []string {
	result, err := s.Recommendations.Result(c.Request().Context(), logID)
	if err != nil {
		s.Log.Warn("assessment not available for application", map[string]interface{}{"log_id": logID.String(), "error": err.Error()})
		return nil
	}
	names := make([]string, 0, len(result.Products))
	for _, p := range result.Products {
		names = append(names, p.Name)
	}
	return names
}
