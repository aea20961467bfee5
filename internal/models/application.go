package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationContent is the "device necessity and utilization plan" draft.
type ApplicationContent struct {
	Necessity       string `json:"necessity"`
	UtilizationPlan string `json:"utilization_plan"`
	ExpectedEffect  string `json:"expected_effect"`
	FullText        string `json:"full_text"`
	Source          string `json:"source,omitempty"`
}

type Application struct {
	ID        uuid.UUID          `json:"id"`
	UserID    *uuid.UUID         `json:"user_id,omitempty"`
	ProgramID int64              `json:"program_id"`
	LogID     *uuid.UUID         `json:"assessment_log_id,omitempty"`
	Content   ApplicationContent `json:"generated_content"`
	CreatedAt time.Time          `json:"created_at"`
}
