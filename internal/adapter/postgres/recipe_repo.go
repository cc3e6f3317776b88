package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"weekplanner/internal/domain"
)

const recipeColumns = "id, title, image_url, category, area, difficulty, cooking_time, servings, creator_id, ingredients, instructions, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (domain.Recipe, error) {
	var r domain.Recipe
	var difficulty string
	var cookingTime, servings sql.NullInt64
	err := row.Scan(&r.ID, &r.Title, &r.ImageURL, &r.Category, &r.Area, &difficulty,
		&cookingTime, &servings, &r.CreatorID, pq.Array(&r.Ingredients), &r.Instructions, &r.CreatedAt)
	if err != nil {
		return r, err
	}
	r.Difficulty = domain.Difficulty(difficulty)
	if cookingTime.Valid {
		v := int(cookingTime.Int64)
		r.CookingTime = &v
	}
	if servings.Valid {
		v := int(servings.Int64)
		r.Servings = &v
	}
	return r, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// ListRecipes returns all recipes, oldest first.
func (d *DB) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT "+recipeColumns+" FROM recipes ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Recipe, 0)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRecipe returns the recipe or nil when absent.
func (d *DB) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	r, err := scanRecipe(d.sql.QueryRowContext(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecipe inserts r, generating an id when r has none.
func (d *DB) CreateRecipe(ctx context.Context, r domain.Recipe) (*domain.Recipe, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	created, err := scanRecipe(d.sql.QueryRowContext(ctx,
		"INSERT INTO recipes ("+recipeColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING "+recipeColumns,
		r.ID, r.Title, r.ImageURL, r.Category, r.Area, string(r.Difficulty),
		nullInt(r.CookingTime), nullInt(r.Servings), r.CreatorID, pq.Array(r.Ingredients), r.Instructions, r.CreatedAt,
	))
	if isUniqueViolation(err) {
		return nil, errors.New("recipe already exists")
	}
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteRecipe removes a recipe authored by creatorID.
func (d *DB) DeleteRecipe(ctx context.Context, creatorID, id string) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM recipes WHERE id = $1 AND creator_id = $2", id, creatorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddFavorite saves recipeID for userID. Saving twice is a no-op.
func (d *DB) AddFavorite(ctx context.Context, userID, recipeID string) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO favorites (user_id, recipe_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (user_id, recipe_id) DO NOTHING",
		userID, recipeID, time.Now().UTC(),
	)
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return err
}

// RemoveFavorite drops recipeID from the user's favorites.
func (d *DB) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2", userID, recipeID)
	return err
}

// ListFavorites returns the user's favorite recipe ids in the order saved.
func (d *DB) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT recipe_id FROM favorites WHERE user_id = $1 ORDER BY created_at ASC, recipe_id ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
