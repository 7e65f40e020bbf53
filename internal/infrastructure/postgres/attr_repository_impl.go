package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platewise/recipebox/internal/domain/entity"
	"github.com/platewise/recipebox/internal/domain/repository"
)

// orderClause maps a whitelisted AttrOrder to SQL. The column name is never
// taken from user input directly.
func orderClause(order repository.AttrOrder) string {
	if order == repository.OrderByName {
		return "ORDER BY name DESC"
	}
	return "ORDER BY id DESC"
}

type TagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

func (r *TagRepository) List(ctx context.Context, ownerID string, order repository.AttrOrder) ([]entity.Tag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name FROM tags
		WHERE user_id = $1 `+orderClause(order), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]entity.Tag, 0)
	for rows.Next() {
		var t entity.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *TagRepository) Create(ctx context.Context, ownerID, name string) (*entity.Tag, error) {
	t := &entity.Tag{UserID: ownerID, Name: name}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tags (user_id, name) VALUES ($1, $2) RETURNING id
	`, ownerID, name)
	if err := row.Scan(&t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

type IngredientRepository struct {
	pool *pgxpool.Pool
}

func NewIngredientRepository(pool *pgxpool.Pool) *IngredientRepository {
	return &IngredientRepository{pool: pool}
}

func (r *IngredientRepository) List(ctx context.Context, ownerID string, order repository.AttrOrder) ([]entity.Ingredient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name FROM ingredients
		WHERE user_id = $1 `+orderClause(order), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ingredients := make([]entity.Ingredient, 0)
	for rows.Next() {
		var in entity.Ingredient
		if err := rows.Scan(&in.ID, &in.UserID, &in.Name); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, in)
	}
	return ingredients, rows.Err()
}

func (r *IngredientRepository) Create(ctx context.Context, ownerID, name string) (*entity.Ingredient, error) {
	in := &entity.Ingredient{UserID: ownerID, Name: name}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ingredients (user_id, name) VALUES ($1, $2) RETURNING id
	`, ownerID, name)
	if err := row.Scan(&in.ID); err != nil {
		return nil, err
	}
	return in, nil
}

var (
	_ repository.TagRepository        = (*TagRepository)(nil)
	_ repository.IngredientRepository = (*IngredientRepository)(nil)
)
