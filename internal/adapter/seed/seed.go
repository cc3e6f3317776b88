// Package seed loads a recipe catalog from a HuJSON file into a repository.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"weekplanner/internal/domain"
)

var errMissingID = errors.New("recipe id is required")

type catalogFile struct {
	Recipes []domain.Recipe `json:"recipes"`
}

// Load reads and parses the catalog at path.
func Load(path string) ([]domain.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	recipes, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return recipes, nil
}

// Parse decodes a catalog. Comments and trailing commas are allowed. Every
// recipe needs a stable id so that seeding twice does not duplicate it.
func Parse(data []byte) ([]domain.Recipe, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var f catalogFile
	if err := json.Unmarshal(standardized, &f); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	seen := make(map[string]bool, len(f.Recipes))
	for i, r := range f.Recipes {
		if r.ID == "" {
			return nil, fmt.Errorf("recipe %d: %w", i, errMissingID)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("recipe %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("recipe %q: %w", r.ID, err)
		}
	}
	return f.Recipes, nil
}

// Apply inserts the recipes the repository does not have yet and returns how
// many were added.
func Apply(ctx context.Context, repo domain.RecipeRepository, recipes []domain.Recipe) (int, error) {
	added := 0
	for _, r := range recipes {
		existing, err := repo.GetRecipe(ctx, r.ID)
		if err != nil {
			return added, err
		}
		if existing != nil {
			continue
		}
		if _, err := repo.CreateRecipe(ctx, r); err != nil {
			return added, fmt.Errorf("seed recipe %q: %w", r.ID, err)
		}
		added++
	}
	return added, nil
}
