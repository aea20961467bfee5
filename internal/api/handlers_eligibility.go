package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/didim/welfare-matcher/internal/models"
)

type eligibleProgram struct {
	ID           int64  `json:"id"`
	Ministry     string `json:"ministry"`
	ProgramName  string `json:"programName"`
	Description  string `json:"description"`
	SubsidyLimit *int64 `json:"subsidyLimit"`
	Score        int    `json:"score"`
}

// handleEligibility returns every eligible program with its score, best
// first, together with the selected result card.
func (s *Server) handleEligibility(c echo.Context) error {
	var profile models.Profile
	if err := c.Bind(&profile); err != nil {
		return badRequest(c, "Invalid profile body")
	}

	scored, err := s.Eligibility.Rank(c.Request().Context(), profile)
	if err != nil {
		return s.writeError(c, err)
	}

	programs := make([]eligibleProgram, 0, len(scored))
	ranked := make([]models.Program, 0, len(scored))
	for _, sp := range scored {
		programs = append(programs, eligibleProgram{
			ID:           sp.Program.ID,
			Ministry:     sp.Program.Ministry,
			ProgramName:  sp.Program.ProgramName,
			Description:  sp.Program.Description,
			SubsidyLimit: sp.Program.SubsidyLimit,
			Score:        sp.Score,
		})
		ranked = append(ranked, sp.Program)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"programs": programs,
		"best":     s.Policy.SelectBest(ranked),
	})
}

func (s *Server) handleBestProgram(c echo.Context) error {
	var profile models.Profile
	if err := c.Bind(&profile); err != nil {
		return badRequest(c, "Invalid profile body")
	}

	result, err := s.Eligibility.Best(c.Request().Context(), profile)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
