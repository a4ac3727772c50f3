package candidates

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jinzhu/gorm"

	"foodflow/internal/models"
	"foodflow/internal/usage"
)

// CatalogRetriever finds recipes for the expiring batch by vector
// similarity over the recipe catalog. The ranking it returns is trusted
// downstream and passed through unmodified.
type CatalogRetriever struct {
	db       *gorm.DB
	embedder Embedder
	ledger   *usage.Ledger
	limit    int
}

// NewCatalogRetriever creates a retriever over the given catalog. limit
// caps how many candidates one run retrieves.
func NewCatalogRetriever(db *gorm.DB, embedder Embedder, ledger *usage.Ledger, limit int) *CatalogRetriever {
	if limit <= 0 {
		limit = 3
	}
	return &CatalogRetriever{db: db, embedder: embedder, ledger: ledger, limit: limit}
}

// FindRecipes implements RecipeFinder. The query text names the expiring
// ingredients first so dishes that consume them rank higher.
func (r *CatalogRetriever) FindRecipes(ctx context.Context, batch []models.ExpiringItem, current []models.IngredientRecord) ([]models.RecipeCandidate, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	query := buildRecipeQuery(batch, current)
	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed recipe query: %w", err)
	}
	// Only successful embeds hit the ledger; a failed call costs nothing.
	r.ledger.Record(usage.KindEmbedding, r.ledger.CountTokens(query))

	var recipes []models.CatalogRecipe
	if err := r.db.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}

	type scored struct {
		recipe models.CatalogRecipe
		score  float32
	}
	ranked := make([]scored, 0, len(recipes))
	for _, recipe := range recipes {
		ranked = append(ranked, scored{recipe, cosineSimilarity(queryVec, recipe.Embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := r.limit
	if len(ranked) < n {
		n = len(ranked)
	}

	result := make([]models.RecipeCandidate, 0, n)
	for _, s := range ranked[:n] {
		result = append(result, models.RecipeCandidate{
			DishName:            s.recipe.Title,
			RequiredIngredients: s.recipe.Ingredients,
			Score:               float64(s.score),
			Instructions:        s.recipe.Instructions,
		})
	}
	return result, nil
}

// buildRecipeQuery composes the retrieval query from the expiring batch
// and the remaining inventory
func buildRecipeQuery(batch []models.ExpiringItem, current []models.IngredientRecord) string {
	var b strings.Builder
	b.WriteString("Dish using soon-to-expire ingredients: ")
	for i, item := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.Name)
	}
	if len(current) > 0 {
		b.WriteString(". Also available: ")
		for i, r := range current {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.Name)
		}
	}
	return b.String()
}
