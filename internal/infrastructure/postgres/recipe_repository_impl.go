package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platewise/recipebox/internal/domain/entity"
	"github.com/platewise/recipebox/internal/domain/repository"
)

type RecipeRepository struct {
	pool *pgxpool.Pool
}

func NewRecipeRepository(pool *pgxpool.Pool) *RecipeRepository {
	return &RecipeRepository{pool: pool}
}

func (r *RecipeRepository) List(ctx context.Context, ownerID string) ([]entity.Recipe, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, time_minutes, price, COALESCE(image_url, ''), created_at, updated_at
		FROM recipes
		WHERE user_id = $1
		ORDER BY id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := make([]entity.Recipe, 0)
	for rows.Next() {
		var rec entity.Recipe
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.TimeMinutes,
			&rec.Price, &rec.ImageURL, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		if err := r.loadAssociationIDs(ctx, &recipes[i]); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (r *RecipeRepository) Get(ctx context.Context, ownerID string, id int64) (*entity.RecipeDetail, error) {
	d := &entity.RecipeDetail{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, time_minutes, price, COALESCE(image_url, ''), created_at, updated_at
		FROM recipes
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)
	if err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.TimeMinutes,
		&d.Price, &d.ImageURL, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	tagRows, err := r.pool.Query(ctx, `
		SELECT t.id, t.user_id, t.name
		FROM tags t JOIN recipe_tags rt ON rt.tag_id = t.id
		WHERE rt.recipe_id = $1
		ORDER BY t.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	d.Tags = make([]entity.Tag, 0)
	for tagRows.Next() {
		var t entity.Tag
		if err := tagRows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		d.Tags = append(d.Tags, t)
		d.TagIDs = append(d.TagIDs, t.ID)
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	ingRows, err := r.pool.Query(ctx, `
		SELECT i.id, i.user_id, i.name
		FROM ingredients i JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = $1
		ORDER BY i.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer ingRows.Close()
	d.Ingredients = make([]entity.Ingredient, 0)
	for ingRows.Next() {
		var in entity.Ingredient
		if err := ingRows.Scan(&in.ID, &in.UserID, &in.Name); err != nil {
			return nil, err
		}
		d.Ingredients = append(d.Ingredients, in)
		d.IngredientIDs = append(d.IngredientIDs, in.ID)
	}
	return d, ingRows.Err()
}

func (r *RecipeRepository) Create(ctx context.Context, ownerID string, in repository.RecipeInput) (*entity.Recipe, error) {
	var rec *entity.Recipe
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rec = &entity.Recipe{UserID: ownerID, Title: in.Title, TimeMinutes: in.TimeMinutes, Price: in.Price}
		row := tx.QueryRow(ctx, `
			INSERT INTO recipes (user_id, title, time_minutes, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, ownerID, in.Title, in.TimeMinutes, in.Price)
		if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return err
		}
		return r.replaceAssociations(ctx, tx, ownerID, rec.ID, in)
	})
	if err != nil {
		return nil, err
	}
	rec.TagIDs = in.TagIDs
	rec.IngredientIDs = in.IngredientIDs
	return rec, nil
}

func (r *RecipeRepository) Update(ctx context.Context, ownerID string, id int64, in repository.RecipeInput) (*entity.Recipe, error) {
	var rec *entity.Recipe
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rec = &entity.Recipe{ID: id, UserID: ownerID, Title: in.Title, TimeMinutes: in.TimeMinutes, Price: in.Price}
		row := tx.QueryRow(ctx, `
			UPDATE recipes
			SET title = $1, time_minutes = $2, price = $3, updated_at = $4
			WHERE id = $5 AND user_id = $6
			RETURNING created_at, updated_at, COALESCE(image_url, '')
		`, in.Title, in.TimeMinutes, in.Price, time.Now(), id, ownerID)
		if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt, &rec.ImageURL); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repository.ErrNotFound
			}
			return err
		}
		return r.replaceAssociations(ctx, tx, ownerID, id, in)
	})
	if err != nil {
		return nil, err
	}
	rec.TagIDs = in.TagIDs
	rec.IngredientIDs = in.IngredientIDs
	return rec, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM recipes WHERE id = $1 AND user_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) SetImageURL(ctx context.Context, ownerID string, id int64, url string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE recipes SET image_url = $1, updated_at = $2 WHERE id = $3 AND user_id = $4
	`, url, time.Now(), id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) loadAssociationIDs(ctx context.Context, rec *entity.Recipe) error {
	rows, err := r.pool.Query(ctx, `
		SELECT tag_id FROM recipe_tags WHERE recipe_id = $1 ORDER BY tag_id
	`, rec.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		rec.TagIDs = append(rec.TagIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	ingRows, err := r.pool.Query(ctx, `
		SELECT ingredient_id FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY ingredient_id
	`, rec.ID)
	if err != nil {
		return err
	}
	defer ingRows.Close()
	for ingRows.Next() {
		var id int64
		if err := ingRows.Scan(&id); err != nil {
			return err
		}
		rec.IngredientIDs = append(rec.IngredientIDs, id)
	}
	return ingRows.Err()
}

// replaceAssociations rewrites the recipe's join rows. Association ids are
// deduped, then inserted via a select filtered by the owner, so a foreign or
// unknown id simply inserts nothing and fails the count check.
func (r *RecipeRepository) replaceAssociations(ctx context.Context, tx pgx.Tx, ownerID string, recipeID int64, in repository.RecipeInput) error {
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipeID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipeID); err != nil {
		return err
	}
	if tagIDs := dedupeIDs(in.TagIDs); len(tagIDs) > 0 {
		res, err := tx.Exec(ctx, `
			INSERT INTO recipe_tags (recipe_id, tag_id)
			SELECT $1, id FROM tags WHERE id = ANY($2) AND user_id = $3
		`, recipeID, tagIDs, ownerID)
		if err != nil {
			return err
		}
		if res.RowsAffected() != int64(len(tagIDs)) {
			return repository.ErrNotFound
		}
	}
	if ingIDs := dedupeIDs(in.IngredientIDs); len(ingIDs) > 0 {
		res, err := tx.Exec(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id)
			SELECT $1, id FROM ingredients WHERE id = ANY($2) AND user_id = $3
		`, recipeID, ingIDs, ownerID)
		if err != nil {
			return err
		}
		if res.RowsAffected() != int64(len(ingIDs)) {
			return repository.ErrNotFound
		}
	}
	return nil
}

// dedupeIDs drops repeated ids while keeping first-seen order. The insert
// selects distinct rows, so the row count must be compared against unique ids.
func dedupeIDs(ids []int64) []int64 {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
