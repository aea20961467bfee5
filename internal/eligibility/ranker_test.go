package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/didim/welfare-matcher/internal/models"
)

func ids(programs []models.Program) []int64 {
	out := make([]int64, len(programs))
	for i, p := range programs {
		out[i] = p.ID
	}
	return out
}

func TestRankPrograms_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		profile models.Profile
		now     time.Time
		want    []int64
	}{
		{
			name:    "elderly applicant",
			profile: models.Profile{BirthYear: 1950, Occupation: "none", DisabilityType: "elderly"},
			now:     march2025,
			want:    []int64{6},
		},
		{
			name:    "elderly applicant with care grade",
			profile: models.Profile{BirthYear: 1950, Occupation: "none", DisabilityType: "elderly", LTCGrade: intPtr(3)},
			now:     march2025,
			want:    []int64{8, 6},
		},
		{
			name:    "non-disabled student",
			profile: models.Profile{BirthYear: 2000, Occupation: "student", DisabilityType: "none"},
			now:     march2025,
			want:    []int64{},
		},
		{
			name:    "veteran worker",
			profile: models.Profile{BirthYear: 1970, Occupation: "worker", DisabilityType: "physical", IsVeteran: true},
			now:     march2025,
			want:    []int64{1, 2, 7},
		},
		{
			name:    "visually impaired, in season",
			profile: models.Profile{BirthYear: 1990, Occupation: "none", DisabilityType: "visual"},
			now:     time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
			want:    []int64{5, 7},
		},
		{
			name:    "visually impaired, out of season",
			profile: models.Profile{BirthYear: 1990, Occupation: "none", DisabilityType: "visual"},
			now:     march2025,
			want:    []int64{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(RankPrograms(tt.profile, catalog(), tt.now)))
		})
	}
}

func TestScorePrograms_Scores(t *testing.T) {
	p := models.Profile{BirthYear: 1970, Occupation: "worker", DisabilityType: "physical", IsVeteran: true}
	scored := ScorePrograms(p, catalog(), march2025)

	require.Len(t, scored, 3)
	assert.Equal(t, 1090, scored[0].Score)
	assert.Equal(t, 230, scored[1].Score)
	assert.Equal(t, 100, scored[2].Score)
}

func TestRankPrograms_TiesKeepCatalogOrder(t *testing.T) {
	programs := []models.Program{
		{ID: 10, Criteria: models.Criteria{Priority: intPtr(5)}},
		{ID: 11, Criteria: models.Criteria{Priority: intPtr(3)}},
		{ID: 12, Criteria: models.Criteria{Priority: intPtr(5)}},
		{ID: 13, Criteria: models.Criteria{Priority: intPtr(5)}},
	}
	p := models.Profile{BirthYear: 1980, Occupation: "worker", DisabilityType: "physical"}

	assert.Equal(t, []int64{11, 10, 12, 13}, ids(RankPrograms(p, programs, march2025)))
}

func TestRankPrograms_EmptyCatalog(t *testing.T) {
	p := models.Profile{BirthYear: 1980, Occupation: "worker", DisabilityType: "physical"}
	got := RankPrograms(p, nil, march2025)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRankPrograms_Idempotent(t *testing.T) {
	profiles := []models.Profile{
		{BirthYear: 1970, Occupation: "worker", DisabilityType: "physical", IsVeteran: true},
		{BirthYear: 1950, Occupation: "none", DisabilityType: "elderly", LTCGrade: intPtr(2)},
		{BirthYear: 1990, Occupation: "none", DisabilityType: "visual"},
	}
	snapshot := catalog()

	for _, p := range profiles {
		first := RankPrograms(p, snapshot, march2025)
		second := RankPrograms(p, snapshot, march2025)
		assert.Equal(t, first, second)
		assert.Equal(t, ScorePrograms(p, snapshot, march2025), ScorePrograms(p, snapshot, march2025))
	}
	assert.Equal(t, catalog(), snapshot)
}
