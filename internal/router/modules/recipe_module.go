package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/platewise/recipebox/internal/container"
	handlers "github.com/platewise/recipebox/internal/interface/http"
	"github.com/platewise/recipebox/internal/interface/middleware"
)

// RecipeModule wires the owner-scoped recipe, tag, and ingredient routes.
// Everything here requires authentication.
type RecipeModule struct {
	Attrs    *handlers.AttrHandler
	Recipes  *handlers.RecipeHandler
	Resolver middleware.CurrentUserResolver
}

func NewRecipeModule(attrs *handlers.AttrHandler, recipes *handlers.RecipeHandler, resolver middleware.CurrentUserResolver) *RecipeModule {
	return &RecipeModule{Attrs: attrs, Recipes: recipes, Resolver: resolver}
}

func (m *RecipeModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/recipes")
	auth.Use(middleware.Auth(m.Resolver))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/tags", m.Attrs.ListTags)
		auth.POST("/tags", m.Attrs.CreateTag)
		auth.GET("/ingredients", m.Attrs.ListIngredients)
		auth.POST("/ingredients", m.Attrs.CreateIngredient)

		auth.GET("/recipes", m.Recipes.List)
		auth.POST("/recipes", m.Recipes.Create)
		// Registered before :id so the literal segment wins.
		auth.GET("/recipes/search", m.Recipes.Search)
		auth.GET("/recipes/:id", m.Recipes.Get)
		auth.PUT("/recipes/:id", m.Recipes.Update)
		auth.PATCH("/recipes/:id", m.Recipes.Patch)
		auth.DELETE("/recipes/:id", m.Recipes.Delete)
		auth.POST("/recipes/:id/image", m.Recipes.UploadImage)
	}
}
