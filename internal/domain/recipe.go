package domain

import (
	"context"
	"strings"
	"time"
)

// Difficulty is the declared effort level of a recipe. The zero value means
// the recipe does not declare one.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is empty or one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Recipe is a catalog entry. CookingTime and Servings are optional.
type Recipe struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	Category     string     `json:"category,omitempty"`
	Area         string     `json:"area,omitempty"`
	Difficulty   Difficulty `json:"difficulty,omitempty"`
	CookingTime  *int       `json:"cookingTime,omitempty"`
	Servings     *int       `json:"servings,omitempty"`
	CreatorID    string     `json:"creatorId,omitempty"`
	Ingredients  []string   `json:"ingredients,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Validate checks the fields a user must get right when authoring a recipe.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return Invalid("title", "must not be empty")
	}
	if !r.Difficulty.Valid() {
		return Invalid("difficulty", "must be Easy, Medium or Hard")
	}
	if r.CookingTime != nil && *r.CookingTime < 0 {
		return Invalid("cookingTime", "must be >= 0")
	}
	if r.Servings != nil && *r.Servings <= 0 {
		return Invalid("servings", "must be > 0")
	}
	return nil
}

// Ref projects the fields a weekplan slot displays.
func (r Recipe) Ref() RecipeRef {
	return RecipeRef{ID: r.ID, Title: r.Title, ImageURL: r.ImageURL, Category: r.Category}
}

// RecipeRef is the lightweight recipe reference held in a weekplan draft.
type RecipeRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl,omitempty"`
	Category string `json:"category,omitempty"`
}

// RecipeRepository is the port for recipe persistence.
type RecipeRepository interface {
	ListRecipes(ctx context.Context) ([]Recipe, error)
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	CreateRecipe(ctx context.Context, r Recipe) (*Recipe, error)
	DeleteRecipe(ctx context.Context, creatorID, id string) error
}

// FavoriteRepository is the port for a user's saved recipes.
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID, recipeID string) error
	RemoveFavorite(ctx context.Context, userID, recipeID string) error
	ListFavorites(ctx context.Context, userID string) ([]string, error)
}

// RecipeCatalog resolves recipe ids for the weekplan editor.
type RecipeCatalog interface {
	GetAllRecipes(ctx context.Context) ([]Recipe, error)
	GetRecipeByID(ctx context.Context, id string) (*Recipe, error)
}
