// Package search builds provider queries and playable URLs for recipe videos.
package search

import (
	"strings"

	"github.com/aromabalance/balance/internal/domain/model"
)

// Fixed query phrases appended to every recipe search.
const (
	phrasePreparation = "рецепт приготовления"
	phraseHowToCook   = "как приготовить"
	phraseStepByStep  = "пошаговый рецепт"
	cuisineSuffix     = "кухня"
)

// DefaultEmbedHost is the host serving embeddable players.
const DefaultEmbedHost = "www.youtube.com"

// BuildQuery assembles the provider search string for a recipe. Empty parts
// are dropped before joining with single spaces.
func BuildQuery(r model.RecipeQuery) string {
	cuisine := ""
	if r.Cuisine != "" {
		cuisine = r.Cuisine + " " + cuisineSuffix
	}

	parts := []string{
		r.Name,
		phrasePreparation,
		phraseHowToCook,
		cuisine,
		strings.Join(r.LeadingIngredients(), " "),
		phraseStepByStep,
	}

	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// EmbedURL returns the playable embed URL for videoID on host.
func EmbedURL(host, videoID string) string {
	if host == "" {
		host = DefaultEmbedHost
	}
	return "https://" + host + "/embed/" + videoID
}
