package probe

import (
	"context"
	"fmt"

	"github.com/aromabalance/balance/pkg/logger"
)

// sampleRecipes is the catalog the probe cycles through. Repeats within a
// run exercise the service cache.
var sampleRecipes = []VideoRequest{ //nolint:gochecknoglobals // fixed sample catalog
	{Query: "борщ", Recipe: Recipe{Name: "Борщ", Cuisine: "украинская", MainIngredients: []string{"свекла", "капуста", "картофель"}}},
	{Recipe: Recipe{Name: "Хумус", Cuisine: "ближневосточная", MainIngredients: []string{"нут", "тахини", "лимон"}}},
	{Recipe: Recipe{Name: "Рататуй", Cuisine: "французская", MainIngredients: []string{"баклажан", "кабачок", "томаты"}}},
	{Recipe: Recipe{Name: "Фалафель", MainIngredients: []string{"нут", "петрушка", "чеснок"}}},
	{Recipe: Recipe{Name: "Минестроне", Cuisine: "итальянская", MainIngredients: []string{"фасоль", "морковь", "сельдерей", "паста"}}},
	{Recipe: Recipe{Name: "Гречка с грибами", Cuisine: "русская", MainIngredients: []string{"гречка", "шампиньоны", "лук"}}},
	{Recipe: Recipe{Name: "Тофу терияки", Cuisine: "японская", MainIngredients: []string{"тофу", "соевый соус", "имбирь"}}},
	{Query: "овощное карри"},
}

// generateRequests builds n lookups by cycling through the sample catalog.
func generateRequests(ctx context.Context, config *Config, stats *Stats) ([]VideoRequest, error) {
	if config.Requests <= 0 {
		return nil, fmt.Errorf("requests must be positive, got %d", config.Requests)
	}

	requests := make([]VideoRequest, config.Requests)
	for i := range requests {
		requests[i] = sampleRecipes[i%len(sampleRecipes)]
	}

	stats.Generated = len(requests)
	config.Logger.Info(ctx, "generated lookups",
		logger.Int("count", len(requests)),
		logger.Int("distinct", minInt(len(requests), len(sampleRecipes))))
	return requests, nil
}

// recipeLabel names a lookup for logs and reports.
func recipeLabel(req VideoRequest) string {
	if req.Recipe.Name != "" {
		return req.Recipe.Name
	}
	return req.Query
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
