package models

import (
	"time"

	"github.com/google/uuid"
)

// Assessment domains, in the order they are presented on the form.
const (
	DomainSensory       = "sensory"
	DomainMobility      = "mobility"
	DomainADL           = "adl"
	DomainCommunication = "communication"
	DomainPositioning   = "positioning"
	DomainVehicle       = "vehicle"
	DomainComputer      = "computer"
	DomainLeisure       = "leisure"
	DomainEnvironment   = "environment"
)

// Domains lists every assessment domain key.
var Domains = []string{
	DomainSensory, DomainMobility, DomainADL, DomainCommunication, DomainPositioning,
	DomainVehicle, DomainComputer, DomainLeisure, DomainEnvironment,
}

type SensoryForm struct {
	VisualImpairment  string `json:"visual_impairment"`
	HearingImpairment string `json:"hearing_impairment"`
}

type MobilityForm struct {
	WalkingAbility    string `json:"walking_ability"`
	UpperLimbStrength string `json:"upper_limb_strength"`
}

type ADLForm struct {
	Eating   string `json:"eating"`
	Dressing string `json:"dressing"`
	Bathing  string `json:"bathing"`
}

type CommunicationForm struct {
	VerbalAbility string `json:"verbal_ability"`
	Comprehension string `json:"comprehension"`
}

type PositioningForm struct {
	SittingBalance string `json:"sitting_balance"`
	HasDeformity   string `json:"has_deformity"`
}

type VehicleForm struct {
	DrivingStatus string `json:"driving_status"`
	VehicleType   string `json:"vehicle_type"`
}

type ComputerForm struct {
	KeyboardUse string `json:"keyboard_use"`
	MouseUse    string `json:"mouse_use"`
}

type LeisureForm struct {
	Interests []string `json:"interests"`
}

type EnvironmentForm struct {
	HomeType string   `json:"home_type"`
	Barriers []string `json:"barriers,omitempty"`
}

type GoalForm struct {
	Age             int    `json:"age"`
	Residence       string `json:"residence"`
	GoalDescription string `json:"goal_description"`
}

// Assessment is the functional-needs questionnaire. Only the sections of
// the selected domains are expected to be filled in.
type Assessment struct {
	SelectedDomains []string           `json:"selectedDomains"`
	Sensory         *SensoryForm       `json:"sensory,omitempty"`
	Mobility        *MobilityForm      `json:"mobility,omitempty"`
	ADL             *ADLForm           `json:"adl,omitempty"`
	Communication   *CommunicationForm `json:"communication,omitempty"`
	Positioning     *PositioningForm   `json:"positioning,omitempty"`
	Vehicle         *VehicleForm       `json:"vehicle,omitempty"`
	Computer        *ComputerForm      `json:"computer,omitempty"`
	Leisure         *LeisureForm       `json:"leisure,omitempty"`
	Environment     *EnvironmentForm   `json:"environment,omitempty"`
	Common          *GoalForm          `json:"common,omitempty"`
}

// Analysis source values.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceCache    = "cache"
)

// Analysis is the classifier output used to query and rank products.
type Analysis struct {
	TargetDomain        string   `json:"target_domain"`
	RecommendedCategory string   `json:"recommended_category"`
	SearchTags          []string `json:"search_tags"`
	Reasoning           string   `json:"reasoning"`
	Source              string   `json:"source,omitempty"`
}

// AssessmentLog is the persisted audit record of one submission.
type AssessmentLog struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Input     Assessment `json:"input_data"`
	Analysis  Analysis   `json:"analysis"`
	CreatedAt time.Time  `json:"created_at"`
}

// Recommendation links a ranked product to the assessment that produced it.
type Recommendation struct {
	ID        uuid.UUID `json:"id"`
	LogID     uuid.UUID `json:"log_id"`
	ProductID int64     `json:"product_id"`
	Rank      int       `json:"rank"`
	Score     int       `json:"score"`
	IsClicked bool      `json:"is_clicked"`
}

// AssessmentResult is what a client sees after submitting an assessment.
type AssessmentResult struct {
	LogID     *uuid.UUID      `json:"logId"`
	Analysis  Analysis        `json:"analysis"`
	Products  []RankedProduct `json:"products"`
	CreatedAt time.Time       `json:"createdAt"`
}
