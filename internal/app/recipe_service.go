package app

import (
	"context"
	"fmt"
	"time"

	"weekplanner/internal/domain"
)

// RecipeService encapsulates recipe discovery, authoring and favorites.
type RecipeService struct {
	recipes   domain.RecipeRepository
	favorites domain.FavoriteRepository
}

// NewRecipeService creates a RecipeService backed by the given repositories.
func NewRecipeService(recipes domain.RecipeRepository, favorites domain.FavoriteRepository) *RecipeService {
	return &RecipeService{recipes: recipes, favorites: favorites}
}

// Search returns the catalog narrowed by c.
func (s *RecipeService) Search(ctx context.Context, c domain.FilterCriteria) ([]domain.Recipe, error) {
	all, err := s.recipes.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterRecipes(all, c), nil
}

// Cuisines lists the distinct cuisines present in the catalog.
func (s *RecipeService) Cuisines(ctx context.Context) ([]string, error) {
	all, err := s.recipes.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Cuisines(all), nil
}

// Get returns a recipe or ErrNotFound.
func (s *RecipeService) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	r, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// Create validates and stores a recipe authored by creatorID.
func (s *RecipeService) Create(ctx context.Context, creatorID string, r domain.Recipe) (*domain.Recipe, error) {
	if creatorID == "" {
		return nil, domain.Invalid("user", "sign in to create recipes")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.ID = ""
	r.CreatorID = creatorID
	r.CreatedAt = time.Now().UTC()
	return s.recipes.CreateRecipe(ctx, r)
}

// Delete removes a recipe authored by creatorID.
func (s *RecipeService) Delete(ctx context.Context, creatorID, id string) error {
	return s.recipes.DeleteRecipe(ctx, creatorID, id)
}

// Favorite saves a recipe for the user.
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID string) error {
	if _, err := s.Get(ctx, recipeID); err != nil {
		return err
	}
	return s.favorites.AddFavorite(ctx, userID, recipeID)
}

// Unfavorite removes a saved recipe. Removing one that was not saved is a no-op.
func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID string) error {
	return s.favorites.RemoveFavorite(ctx, userID, recipeID)
}

// Favorites returns the user's saved recipes that still exist.
func (s *RecipeService) Favorites(ctx context.Context, userID string) ([]domain.Recipe, error) {
	ids, err := s.favorites.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	out := make([]domain.Recipe, 0, len(ids))
	for _, id := range ids {
		r, err := s.recipes.GetRecipe(ctx, id)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Catalog exposes the recipe repository as the editor's RecipeCatalog.
func (s *RecipeService) Catalog() domain.RecipeCatalog {
	return catalog{repo: s.recipes}
}

type catalog struct {
	repo domain.RecipeRepository
}

func (c catalog) GetAllRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return c.repo.ListRecipes(ctx)
}

func (c catalog) GetRecipeByID(ctx context.Context, id string) (*domain.Recipe, error) {
	return c.repo.GetRecipe(ctx, id)
}
