// Package model contains domain models passed between layers.
package model

import "time"

// maxMainIngredients is how many leading ingredients take part in search and scoring.
const maxMainIngredients = 3

// VideoCandidate is one video search result under consideration.
// Values are supplied per request by the search provider and never persisted.
type VideoCandidate struct {
	VideoID     string    `json:"videoId"`     // provider id, used to build the embed URL
	Title       string    `json:"title"`       // video title as returned by the provider
	Description string    `json:"description"` // provider description snippet
	PublishedAt time.Time `json:"publishedAt"` // publish timestamp
}

// RecipeQuery describes the generated recipe a video is being picked for.
type RecipeQuery struct {
	Name            string   // recipe name
	Cuisine         string   // empty when absent
	MainIngredients []string // ordered; only the first three are used
}

// LeadingIngredients returns at most the first three main ingredients.
func (r RecipeQuery) LeadingIngredients() []string {
	if len(r.MainIngredients) <= maxMainIngredients {
		return r.MainIngredients
	}
	return r.MainIngredients[:maxMainIngredients]
}

// ScoredCandidate is a candidate together with its relevance score.
type ScoredCandidate struct {
	VideoCandidate
	Score int `json:"score"`
}
