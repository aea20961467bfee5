package models

import (
	"encoding/json"
	"time"
)

// AgeRange bounds are inclusive. A nil or zero bound is no bound.
type AgeRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

type LTCGradeRange struct {
	Min *int `json:"min,omitempty"`
}

type Seasonality struct {
	Months []int `json:"months"`
}

// Criteria is the decoded target_criteria document of a program.
// A nil field means the axis places no constraint on applicants.
type Criteria struct {
	Occupation      []string       `json:"occupation,omitempty"`
	DisabilityTypes []string       `json:"disability_types,omitempty"`
	AgeRange        *AgeRange      `json:"age_range,omitempty"`
	IsVeteran       *bool          `json:"is_veteran,omitempty"`
	LTCGrade        *LTCGradeRange `json:"ltc_grade,omitempty"`
	Seasonality     *Seasonality   `json:"seasonality,omitempty"`
	Priority        *int           `json:"priority,omitempty"`
}

// DecodeCriteria parses a target_criteria document axis by axis.
// Axes that are missing, null or of the wrong shape are left nil so that
// a single malformed entry never disqualifies or crashes evaluation.
func DecodeCriteria(raw []byte) Criteria {
	var c Criteria
	if len(raw) == 0 {
		return c
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return c
	}

	decodeAxis(fields, "occupation", &c.Occupation)
	decodeAxis(fields, "disability_types", &c.DisabilityTypes)
	decodeAxis(fields, "age_range", &c.AgeRange)
	decodeAxis(fields, "is_veteran", &c.IsVeteran)
	decodeAxis(fields, "ltc_grade", &c.LTCGrade)
	decodeAxis(fields, "seasonality", &c.Seasonality)
	decodeAxis(fields, "priority", &c.Priority)

	// seasonality without a months array does not constrain
	if c.Seasonality != nil && c.Seasonality.Months == nil {
		c.Seasonality = nil
	}
	return c
}

func decodeAxis[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// Program is one entry of the welfare program catalog.
type Program struct {
	ID           int64     `json:"id"`
	Ministry     string    `json:"ministry"`
	ProgramName  string    `json:"program_name"`
	Description  string    `json:"description,omitempty"`
	SubsidyLimit *int64    `json:"subsidy_limit,omitempty"`
	Criteria     Criteria  `json:"target_criteria"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// ProgramResult is the presentation record for the single best program.
type ProgramResult struct {
	ID              string `json:"id"`
	Ministry        string `json:"ministry"`
	ProgramName     string `json:"programName"`
	Description     string `json:"description"`
	SubsidyLimit    string `json:"subsidyLimit"`
	SelfPaymentRate string `json:"selfPaymentRate"`
	Color           string `json:"color"`
	ProgramID       *int64 `json:"programId"`
}
