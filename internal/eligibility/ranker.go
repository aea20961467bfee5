package eligibility

import (
	"sort"
	"time"

	"github.com/didim/welfare-matcher/internal/models"
)

// Scored pairs an eligible program with its score.
type Scored struct {
	Program models.Program `json:"program"`
	Score   int            `json:"score"`
}

// ScorePrograms keeps the eligible programs and orders them by descending
// score. Ties keep the order of the input catalog.
func ScorePrograms(profile models.Profile, programs []models.Program, now time.Time) []Scored {
	out := make([]Scored, 0, len(programs))
	for _, p := range programs {
		ev := Evaluate(profile, p.Criteria, now)
		if !ev.IsEligible {
			continue
		}
		out = append(out, Scored{Program: p, Score: ev.Score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// RankPrograms returns the eligible programs best first.
func RankPrograms(profile models.Profile, programs []models.Program, now time.Time) []models.Program {
	scored := ScorePrograms(profile, programs, now)
	out := make([]models.Program, len(scored))
	for i, s := range scored {
		out[i] = s.Program
	}
	return out
}
