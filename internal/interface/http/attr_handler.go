package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/platewise/recipebox/internal/application"
	"github.com/platewise/recipebox/internal/interface/middleware"
	"github.com/platewise/recipebox/pkg/response"
	"github.com/platewise/recipebox/pkg/validation"
)

// AttrHandler serves the tag and ingredient endpoints. The two resources
// differ only in field shape, so one handler covers both.
type AttrHandler struct {
	Svc    *application.RecipeService
	Logger *logrus.Logger
}

func NewAttrHandler(svc *application.RecipeService, logger *logrus.Logger) *AttrHandler {
	return &AttrHandler{Svc: svc, Logger: logger}
}

type createAttrRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListTags handles GET /recipes/tags.
func (h *AttrHandler) ListTags(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	tags, err := h.Svc.ListTags(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagJSON(t))
	}
	response.Success(c, http.StatusOK, out, "tags", nil)
}

// CreateTag handles POST /recipes/tags.
func (h *AttrHandler) CreateTag(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req createAttrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.CreateTag(c.Request.Context(), uid, req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tagJSON(*t), "tag created", nil)
}

// ListIngredients handles GET /recipes/ingredients.
func (h *AttrHandler) ListIngredients(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	ingredients, err := h.Svc.ListIngredients(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(ingredients))
	for _, in := range ingredients {
		out = append(out, ingredientJSON(in))
	}
	response.Success(c, http.StatusOK, out, "ingredients", nil)
}

// CreateIngredient handles POST /recipes/ingredients.
func (h *AttrHandler) CreateIngredient(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req createAttrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in, err := h.Svc.CreateIngredient(c.Request.Context(), uid, req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ingredientJSON(*in), "ingredient created", nil)
}
