package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platewise/recipebox/internal/application"
	"github.com/platewise/recipebox/internal/domain/entity"
	"github.com/platewise/recipebox/internal/domain/repository"
	"github.com/platewise/recipebox/pkg/response"
)

// writeServiceError maps service errors onto the API taxonomy: field-keyed
// 400s for validation, 404 for missing or foreign-owned rows (never 403, so
// existence is not leaked), 500 otherwise.
func writeServiceError(c *gin.Context, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", verr.Fields)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

// MethodNotAllowed is mounted on routes whose verb set is deliberately
// restricted, e.g. POST /users/me.
func MethodNotAllowed(c *gin.Context) {
	response.Error[any](c, http.StatusMethodNotAllowed, "method not allowed", nil)
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	}
}

func tagJSON(t entity.Tag) gin.H {
	return gin.H{"id": t.ID, "name": t.Name}
}

func ingredientJSON(in entity.Ingredient) gin.H {
	return gin.H{"id": in.ID, "name": in.Name}
}

// recipeJSON is the summary representation: associations by id only.
func recipeJSON(r entity.Recipe) gin.H {
	tagIDs := r.TagIDs
	if tagIDs == nil {
		tagIDs = []int64{}
	}
	ingredientIDs := r.IngredientIDs
	if ingredientIDs == nil {
		ingredientIDs = []int64{}
	}
	return gin.H{
		"id":           r.ID,
		"title":        r.Title,
		"time_minutes": r.TimeMinutes,
		"price":        r.Price,
		"image_url":    r.ImageURL,
		"tags":         tagIDs,
		"ingredients":  ingredientIDs,
	}
}

// recipeDetailJSON expands tags and ingredients inline.
func recipeDetailJSON(d *entity.RecipeDetail) gin.H {
	tags := make([]gin.H, 0, len(d.Tags))
	for _, t := range d.Tags {
		tags = append(tags, tagJSON(t))
	}
	ingredients := make([]gin.H, 0, len(d.Ingredients))
	for _, in := range d.Ingredients {
		ingredients = append(ingredients, ingredientJSON(in))
	}
	return gin.H{
		"id":           d.ID,
		"title":        d.Title,
		"time_minutes": d.TimeMinutes,
		"price":        d.Price,
		"image_url":    d.ImageURL,
		"tags":         tags,
		"ingredients":  ingredients,
	}
}
