package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/didim/welfare-matcher/internal/models"
)

var march2025 = time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)

func TestEvaluate_Axes(t *testing.T) {
	worker := models.Profile{BirthYear: 1985, Occupation: "worker", DisabilityType: "physical"}

	tests := []struct {
		name     string
		profile  models.Profile
		criteria models.Criteria
		want     Evaluation
	}{
		{
			name:     "empty criteria admits everyone",
			profile:  worker,
			criteria: models.Criteria{},
			want:     Evaluation{IsEligible: true, Score: 0},
		},
		{
			name:     "veteran required and missing",
			profile:  worker,
			criteria: models.Criteria{IsVeteran: boolPtr(true)},
			want:     Evaluation{IsEligible: false, Score: 0},
		},
		{
			name:     "veteran matched",
			profile:  models.Profile{BirthYear: 1960, Occupation: "none", DisabilityType: "physical", IsVeteran: true},
			criteria: models.Criteria{IsVeteran: boolPtr(true)},
			want:     Evaluation{IsEligible: true, Score: 1000},
		},
		{
			name:     "veteran false places no constraint",
			profile:  worker,
			criteria: models.Criteria{IsVeteran: boolPtr(false)},
			want:     Evaluation{IsEligible: true, Score: 0},
		},
		{
			name:     "occupation mismatch",
			profile:  worker,
			criteria: models.Criteria{Occupation: []string{"student"}},
			want:     Evaluation{IsEligible: false, Score: 0},
		},
		{
			name:     "occupation and disability match",
			profile:  worker,
			criteria: models.Criteria{Occupation: []string{"worker"}, DisabilityTypes: disabled},
			want:     Evaluation{IsEligible: true, Score: 150},
		},
		{
			name:     "age axis does not score after an earlier disqualification",
			profile:  worker,
			criteria: models.Criteria{Occupation: []string{"student"}, AgeRange: &models.AgeRange{Max: intPtr(100)}},
			want:     Evaluation{IsEligible: false, Score: 0},
		},
		{
			name:     "evaluation continues after disqualification",
			profile:  worker,
			criteria: models.Criteria{Occupation: []string{"student"}, DisabilityTypes: disabled, Priority: intPtr(4)},
			want:     Evaluation{IsEligible: false, Score: 110},
		},
		{
			name:     "age below minimum",
			profile:  worker,
			criteria: models.Criteria{AgeRange: &models.AgeRange{Min: intPtr(65)}},
			want:     Evaluation{IsEligible: false, Score: 0},
		},
		{
			name:     "age above maximum",
			profile:  worker,
			criteria: models.Criteria{AgeRange: &models.AgeRange{Max: intPtr(30)}},
			want:     Evaluation{IsEligible: false, Score: 0},
		},
		{
			name:     "age bounds are inclusive",
			profile:  models.Profile{BirthYear: 1960, Occupation: "none", DisabilityType: "elderly"},
			criteria: models.Criteria{AgeRange: &models.AgeRange{Min: intPtr(65), Max: intPtr(65)}},
			want:     Evaluation{IsEligible: true, Score: 30},
		},
		{
			name:     "zero age bounds are ignored",
			profile:  worker,
			criteria: models.Criteria{AgeRange: &models.AgeRange{Min: intPtr(0), Max: intPtr(0)}},
			want:     Evaluation{IsEligible: true, Score: 30},
		},
		{
			name:     "ltc grade required but absent",
			profile:  models.Profile{BirthYear: 1950, Occupation: "none", DisabilityType: "elderly"},
			criteria: models.Criteria{LTCGrade: &models.LTCGradeRange{Min: intPtr(1)}},
			want:     Evaluation{IsEligible: false, Score: 0},
		},
		{
			name:     "ltc grade below minimum",
			profile:  models.Profile{BirthYear: 1950, Occupation: "none", DisabilityType: "elderly", LTCGrade: intPtr(2)},
			criteria: models.Criteria{LTCGrade: &models.LTCGradeRange{Min: intPtr(3)}},
			want:     Evaluation{IsEligible: false, Score: 0},
		},
		{
			name:     "ltc grade satisfied",
			profile:  models.Profile{BirthYear: 1950, Occupation: "none", DisabilityType: "elderly", LTCGrade: intPtr(4)},
			criteria: models.Criteria{LTCGrade: &models.LTCGradeRange{Min: intPtr(3)}},
			want:     Evaluation{IsEligible: true, Score: 40},
		},
		{
			name:     "out of season",
			profile:  worker,
			criteria: models.Criteria{Seasonality: &models.Seasonality{Months: []int{5, 6}}},
			want:     Evaluation{IsEligible: false, Score: 0},
		},
		{
			name:     "in season",
			profile:  worker,
			criteria: models.Criteria{Seasonality: &models.Seasonality{Months: []int{3}}},
			want:     Evaluation{IsEligible: true, Score: 20},
		},
		{
			name:     "empty months never match",
			profile:  worker,
			criteria: models.Criteria{Seasonality: &models.Seasonality{Months: []int{}}},
			want:     Evaluation{IsEligible: false, Score: 0},
		},
		{
			name:     "priority one",
			profile:  worker,
			criteria: models.Criteria{Priority: intPtr(1)},
			want:     Evaluation{IsEligible: true, Score: 90},
		},
		{
			name:     "priority beyond ten goes negative",
			profile:  worker,
			criteria: models.Criteria{Priority: intPtr(12)},
			want:     Evaluation{IsEligible: true, Score: -20},
		},
		{
			name:     "priority zero is ignored",
			profile:  worker,
			criteria: models.Criteria{Priority: intPtr(0)},
			want:     Evaluation{IsEligible: true, Score: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.profile, tt.criteria, march2025))
		})
	}
}

func TestEvaluate_Disability(t *testing.T) {
	tests := []struct {
		name        string
		profileType string
		allowed     []string
		want        Evaluation
	}{
		{"listed type scores", "visual", []string{"visual"}, Evaluation{IsEligible: true, Score: 50}},
		{"unlisted type", "hearing", []string{"visual"}, Evaluation{IsEligible: false}},
		{"none without elderly", "none", disabled, Evaluation{IsEligible: false}},
		{"none admitted by elderly without score", "none", []string{"elderly"}, Evaluation{IsEligible: true, Score: 0}},
		{"none explicitly listed scores", "none", []string{"none"}, Evaluation{IsEligible: true, Score: 50}},
		{"elderly listed", "elderly", []string{"elderly"}, Evaluation{IsEligible: true, Score: 50}},
		{"elderly unlisted", "elderly", disabled, Evaluation{IsEligible: false}},
		{"empty list is no constraint", "hearing", []string{}, Evaluation{IsEligible: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Profile{BirthYear: 1980, Occupation: "none", DisabilityType: tt.profileType}
			got := Evaluate(p, models.Criteria{DisabilityTypes: tt.allowed}, march2025)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_ScoreIsIndependentOfOtherPrograms(t *testing.T) {
	p := models.Profile{BirthYear: 1950, Occupation: "none", DisabilityType: "elderly"}
	programs := catalog()

	first := Evaluate(p, programs[5].Criteria, march2025)
	for _, other := range programs {
		Evaluate(p, other.Criteria, march2025)
	}
	assert.Equal(t, first, Evaluate(p, programs[5].Criteria, march2025))
}
