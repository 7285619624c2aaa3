// Package scoring ranks video search results against a generated recipe.
//
// The weights are an ad hoc relevance heuristic. They are kept as literal
// constants and must not be tuned: callers and tests depend on exact integer
// scores.
package scoring

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/aromabalance/balance/internal/domain/model"
)

// Relevance weights.
const (
	weightNameInTitle       = 10
	weightTokenInTitle      = 3
	weightTokenInDesc       = 1
	weightIngredientInTitle = 2
	weightIngredientInDesc  = 1
	weightCuisineInTitle    = 5
	weightRecipeWord        = 2
	weightWeCookWord        = 2
	weightHowToCookPhrase   = 3
)

// Title keywords typical for Russian-language cooking videos.
const (
	keywordRecipe    = "рецепт"
	keywordWeCook    = "готовим"
	keywordHowToCook = "как приготовить"
)

// Freshness buckets, measured in 30-day months.
const (
	monthLength  = 30 * 24 * time.Hour
	freshMonths  = 6
	recentMonths = 12
	agingMonths  = 24
	bonusFresh   = 3
	bonusRecent  = 2
	bonusAging   = 1
)

// ErrNoCandidates is returned when selection is attempted on an empty result set.
var ErrNoCandidates = errors.New("no video candidates")

// Score computes the relevance of a single candidate for recipe r at instant now.
func Score(c model.VideoCandidate, r model.RecipeQuery, now time.Time) int {
	title := strings.ToLower(c.Title)
	desc := strings.ToLower(c.Description)
	name := strings.ToLower(r.Name)

	score := 0
	if strings.Contains(title, name) {
		score += weightNameInTitle
	}

	for _, token := range strings.Fields(name) {
		if strings.Contains(title, token) {
			score += weightTokenInTitle
		}
		if strings.Contains(desc, token) {
			score += weightTokenInDesc
		}
	}

	// Ingredients are matched as supplied; only the video text is lower-cased.
	for _, ingredient := range r.LeadingIngredients() {
		if strings.Contains(title, ingredient) {
			score += weightIngredientInTitle
		}
		if strings.Contains(desc, ingredient) {
			score += weightIngredientInDesc
		}
	}

	if r.Cuisine != "" && strings.Contains(title, strings.ToLower(r.Cuisine)) {
		score += weightCuisineInTitle
	}

	if strings.Contains(title, keywordRecipe) {
		score += weightRecipeWord
	}
	if strings.Contains(title, keywordWeCook) {
		score += weightWeCookWord
	}
	if strings.Contains(title, keywordHowToCook) {
		score += weightHowToCookPhrase
	}

	return score + freshnessBonus(c.PublishedAt, now)
}

// freshnessBonus favours recently published videos. Month length is a fixed
// 30 days, not calendar months.
func freshnessBonus(publishedAt, now time.Time) int {
	monthsOld := float64(now.Sub(publishedAt)) / float64(monthLength)
	switch {
	case monthsOld < freshMonths:
		return bonusFresh
	case monthsOld < recentMonths:
		return bonusRecent
	case monthsOld < agingMonths:
		return bonusAging
	default:
		return 0
	}
}

// Rank scores every candidate and orders them by descending score.
// Equal scores keep their input order.
func Rank(candidates []model.VideoCandidate, r model.RecipeQuery, now time.Time) []model.ScoredCandidate {
	scored := make([]model.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = model.ScoredCandidate{VideoCandidate: c, Score: Score(c, r, now)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// SelectBestMatch returns the highest scoring candidate using the wall clock
// for the freshness bonus.
func SelectBestMatch(candidates []model.VideoCandidate, r model.RecipeQuery) (model.VideoCandidate, error) {
	best, err := NewSelector().Select(candidates, r)
	if err != nil {
		return model.VideoCandidate{}, err
	}
	return best.VideoCandidate, nil
}
