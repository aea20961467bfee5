package recommend

import (
	"sort"

	"github.com/didim/welfare-matcher/internal/models"
)

// DefaultLimit is the number of products shown for one assessment.
const DefaultLimit = 5

const (
	categoryMatchScore = 10
	tagMatchScore      = 2
)

// ScoreProduct rates a product against an analysis.
func ScoreProduct(a models.Analysis, p models.Product) int {
	score := 0
	if p.Category == a.RecommendedCategory {
		score += categoryMatchScore
	}

	wanted := make(map[string]struct{}, len(a.SearchTags))
	for _, t := range a.SearchTags {
		wanted[t] = struct{}{}
	}
	for _, t := range p.Tags {
		if _, ok := wanted[t]; ok {
			score += tagMatchScore
		}
	}
	return score
}

// RankProducts scores candidates already filtered to the analysis domain and
// returns at most limit of them, best first. Equal scores keep input order.
func RankProducts(a models.Analysis, candidates []models.Product, limit int) []models.RankedProduct {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]models.RankedProduct, 0, len(candidates))
	for _, p := range candidates {
		ranked = append(ranked, models.RankedProduct{Product: p, Score: ScoreProduct(a, p)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
