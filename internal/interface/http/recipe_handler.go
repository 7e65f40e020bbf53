package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/platewise/recipebox/internal/application"
	"github.com/platewise/recipebox/internal/domain/repository"
	"github.com/platewise/recipebox/internal/interface/middleware"
	"github.com/platewise/recipebox/pkg/response"
	"github.com/platewise/recipebox/pkg/validation"
)

type RecipeHandler struct {
	Svc    *application.RecipeService
	Logger *logrus.Logger
}

func NewRecipeHandler(svc *application.RecipeService, logger *logrus.Logger) *RecipeHandler {
	return &RecipeHandler{Svc: svc, Logger: logger}
}

type recipeRequest struct {
	Title         string  `json:"title" binding:"required"`
	TimeMinutes   int     `json:"time_minutes" binding:"gte=0"`
	Price         float64 `json:"price" binding:"gte=0"`
	TagIDs        []int64 `json:"tags"`
	IngredientIDs []int64 `json:"ingredients"`
}

type recipePatchRequest struct {
	Title         *string  `json:"title"`
	TimeMinutes   *int     `json:"time_minutes"`
	Price         *float64 `json:"price"`
	TagIDs        *[]int64 `json:"tags"`
	IngredientIDs *[]int64 `json:"ingredients"`
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusNotFound, "not found", nil)
		return 0, false
	}
	return id, true
}

// List handles GET /recipes/recipes: summary representation, newest first.
func (h *RecipeHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	recipes, err := h.Svc.ListRecipes(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, recipeJSON(r))
	}
	response.Success(c, http.StatusOK, out, "recipes", nil)
}

// Get handles GET /recipes/recipes/:id: detail representation with expanded
// associations.
func (h *RecipeHandler) Get(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := recipeID(c)
	if !ok {
		return
	}
	d, err := h.Svc.GetRecipe(c.Request.Context(), uid, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recipeDetailJSON(d), "recipe", nil)
}

// Create handles POST /recipes/recipes.
func (h *RecipeHandler) Create(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	rec, err := h.Svc.CreateRecipe(c.Request.Context(), uid, repository.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, recipeJSON(*rec), "recipe created", nil)
}

// Update handles PUT /recipes/recipes/:id: full replacement.
func (h *RecipeHandler) Update(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := recipeID(c)
	if !ok {
		return
	}
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	rec, err := h.Svc.UpdateRecipe(c.Request.Context(), uid, id, repository.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recipeJSON(*rec), "recipe updated", nil)
}

// Patch handles PATCH /recipes/recipes/:id: partial update.
func (h *RecipeHandler) Patch(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := recipeID(c)
	if !ok {
		return
	}
	var req recipePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	rec, err := h.Svc.PatchRecipe(c.Request.Context(), uid, id, application.RecipePatch{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recipeJSON(*rec), "recipe updated", nil)
}

// Delete handles DELETE /recipes/recipes/:id.
func (h *RecipeHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteRecipe(c.Request.Context(), uid, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage handles POST /recipes/recipes/:id/image (multipart form,
// field "image").
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := recipeID(c)
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"image": "is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"image": "unreadable"})
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadRecipeImage(c.Request.Context(), uid, id, f, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "image_url": url}, "image uploaded", nil)
}

// Search handles GET /recipes/recipes/search?q=.
func (h *RecipeHandler) Search(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchRecipes(c.Request.Context(), uid, q, size)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}
