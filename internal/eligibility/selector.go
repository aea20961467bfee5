package eligibility

import (
	"fmt"
	"strings"

	"github.com/didim/welfare-matcher/internal/models"
)

// SelectBest decorates the first ranked program for display, or returns the
// general-purchase result when nothing is eligible.
func (p *Policy) SelectBest(ranked []models.Program) models.ProgramResult {
	if len(ranked) == 0 {
		return p.GeneralResult()
	}

	best := ranked[0]
	id := best.ID
	return models.ProgramResult{
		ID:              ministrySlug(best.Ministry),
		Ministry:        best.Ministry,
		ProgramName:     best.ProgramName,
		Description:     fmt.Sprintf("%s %s 대상자입니다.", best.Ministry, best.ProgramName),
		SubsidyLimit:    p.FormatSubsidy(best.SubsidyLimit),
		SelfPaymentRate: p.SelfPaymentRate(best.Ministry, best.ProgramName),
		Color:           p.Color(best.Ministry),
		ProgramID:       &id,
	}
}

func ministrySlug(ministry string) string {
	return strings.TrimSuffix(strings.ToLower(ministry), "부")
}
