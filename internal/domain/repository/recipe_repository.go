package repository

import (
	"context"

	"github.com/platewise/recipebox/internal/domain/entity"
)

// AttrOrder selects the descending list order for tags and ingredients.
// The two deployed variants of this API ordered by different columns, so the
// column is a caller choice rather than a constant.
type AttrOrder string

const (
	OrderByID   AttrOrder = "id"
	OrderByName AttrOrder = "name"
)

// Valid reports whether the order names a whitelisted column.
func (o AttrOrder) Valid() bool {
	return o == OrderByID || o == OrderByName
}

// TagRepository and IngredientRepository share the same owner-scoped
// list/create contract. Every call takes the owner explicitly; there is no
// ambient current user.
type TagRepository interface {
	List(ctx context.Context, ownerID string, order AttrOrder) ([]entity.Tag, error)
	Create(ctx context.Context, ownerID, name string) (*entity.Tag, error)
}

type IngredientRepository interface {
	List(ctx context.Context, ownerID string, order AttrOrder) ([]entity.Ingredient, error)
	Create(ctx context.Context, ownerID, name string) (*entity.Ingredient, error)
}

// RecipeInput carries the mutable fields of a recipe. Tag and ingredient ids
// must belong to the same owner; unknown or foreign ids fail the write.
type RecipeInput struct {
	Title         string
	TimeMinutes   int
	Price         float64
	TagIDs        []int64
	IngredientIDs []int64
}

// RecipeRepository owns full CRUD for recipes, scoped to the owner on every
// call. Get returns the detail form with associations expanded.
type RecipeRepository interface {
	List(ctx context.Context, ownerID string) ([]entity.Recipe, error)
	Get(ctx context.Context, ownerID string, id int64) (*entity.RecipeDetail, error)
	Create(ctx context.Context, ownerID string, in RecipeInput) (*entity.Recipe, error)
	Update(ctx context.Context, ownerID string, id int64, in RecipeInput) (*entity.Recipe, error)
	Delete(ctx context.Context, ownerID string, id int64) error
	SetImageURL(ctx context.Context, ownerID string, id int64, url string) error
}
