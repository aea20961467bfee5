package models

import (
	"fmt"
	"time"
)

// Occupations and disability types recognised by the eligibility rules.
const (
	OccupationWorker    = "worker"
	OccupationJobSeeker = "job_seeker"
	OccupationStudent   = "student"
	OccupationNone      = "none"

	DisabilityPhysical      = "physical"
	DisabilityVisual        = "visual"
	DisabilityHearing       = "hearing"
	DisabilityDevelopmental = "developmental"
	DisabilityElderly       = "elderly"
	DisabilityNone          = "none"
)

const (
	maxAge      = 130
	maxLTCGrade = 6
)

// Profile is the applicant data used for program eligibility.
type Profile struct {
	BirthYear      int    `json:"birthYear"`
	Occupation     string `json:"occupation"`
	DisabilityType string `json:"disabilityType"`
	IsVeteran      bool   `json:"isVeteran"`
	LTCGrade       *int   `json:"ltcGrade,omitempty"`
}

// Age is the calendar-year difference, matching how programs publish age limits.
func (p Profile) Age(now time.Time) int {
	return now.Year() - p.BirthYear
}

// ValidationError reports a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate rejects profiles that cannot be scored meaningfully.
func (p Profile) Validate(now time.Time) error {
	if p.BirthYear <= 0 {
		return &ValidationError{Field: "birthYear", Message: "is required"}
	}
	if p.BirthYear > now.Year() {
		return &ValidationError{Field: "birthYear", Message: "cannot be in the future"}
	}
	if p.Age(now) > maxAge {
		return &ValidationError{Field: "birthYear", Message: "is out of range"}
	}
	if p.Occupation == "" {
		return &ValidationError{Field: "occupation", Message: "is required"}
	}
	if p.DisabilityType == "" {
		return &ValidationError{Field: "disabilityType", Message: "is required"}
	}
	if p.LTCGrade != nil && (*p.LTCGrade < 1 || *p.LTCGrade > maxLTCGrade) {
		return &ValidationError{Field: "ltcGrade", Message: fmt.Sprintf("must be between 1 and %d", maxLTCGrade)}
	}
	return nil
}

// OccupationLabel returns the Korean label used in generated documents.
func OccupationLabel(occupation string) string {
	switch occupation {
	case OccupationWorker:
		return "근로자"
	case OccupationStudent:
		return "학생"
	case OccupationJobSeeker:
		return "구직자"
	default:
		return "기타"
	}
}
