package eligibility

import (
	"slices"
	"time"

	"github.com/didim/welfare-matcher/internal/models"
)

// Axis weights. Veteran programs dominate any combination of other axes.
const (
	scoreVeteran     = 1000
	scoreOccupation  = 100
	scoreDisability  = 50
	scoreAgeRange    = 30
	scoreLTCGrade    = 40
	scoreSeasonality = 20
	priorityBase     = 10
	priorityWeight   = 10
)

// Evaluation is the outcome of checking one profile against one program.
type Evaluation struct {
	IsEligible bool `json:"is_eligible"`
	Score      int  `json:"score"`
}

// Evaluate checks every axis in a fixed order. All axes are evaluated even
// after a disqualification; the age axis only scores when nothing before
// it (itself included) has disqualified the profile.
func Evaluate(profile models.Profile, c models.Criteria, now time.Time) Evaluation {
	ev := Evaluation{IsEligible: true}
	age := profile.Age(now)
	month := int(now.Month())

	if c.IsVeteran != nil && *c.IsVeteran {
		if profile.IsVeteran {
			ev.Score += scoreVeteran
		} else {
			ev.IsEligible = false
		}
	}

	if len(c.Occupation) > 0 {
		if slices.Contains(c.Occupation, profile.Occupation) {
			ev.Score += scoreOccupation
		} else {
			ev.IsEligible = false
		}
	}

	if len(c.DisabilityTypes) > 0 {
		evaluateDisability(&ev, profile.DisabilityType, c.DisabilityTypes)
	}

	if c.AgeRange != nil {
		if lo := c.AgeRange.Min; lo != nil && *lo != 0 && age < *lo {
			ev.IsEligible = false
		}
		if hi := c.AgeRange.Max; hi != nil && *hi != 0 && age > *hi {
			ev.IsEligible = false
		}
		if ev.IsEligible {
			ev.Score += scoreAgeRange
		}
	}

	if c.LTCGrade != nil && c.LTCGrade.Min != nil && *c.LTCGrade.Min != 0 {
		if profile.LTCGrade == nil || *profile.LTCGrade < *c.LTCGrade.Min {
			ev.IsEligible = false
		} else {
			ev.Score += scoreLTCGrade
		}
	}

	if c.Seasonality != nil && c.Seasonality.Months != nil {
		if slices.Contains(c.Seasonality.Months, month) {
			ev.Score += scoreSeasonality
		} else {
			ev.IsEligible = false
		}
	}

	if c.Priority != nil && *c.Priority != 0 {
		ev.Score += (priorityBase - *c.Priority) * priorityWeight
	}

	return ev
}

// evaluateDisability applies the disability axis. A "none" profile can
// still qualify for programs open to the elderly, but earns no score there.
func evaluateDisability(ev *Evaluation, profileType string, allowed []string) {
	switch {
	case profileType == models.DisabilityNone && !slices.Contains(allowed, models.DisabilityNone):
		if !slices.Contains(allowed, models.DisabilityElderly) {
			ev.IsEligible = false
		}
	case profileType != models.DisabilityNone && profileType != models.DisabilityElderly &&
		!slices.Contains(allowed, profileType):
		ev.IsEligible = false
	case profileType == models.DisabilityElderly && !slices.Contains(allowed, models.DisabilityElderly):
		ev.IsEligible = false
	default:
		ev.Score += scoreDisability
	}
}
