package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/platewise/recipebox/config"
	"github.com/platewise/recipebox/internal/container"
	handlers "github.com/platewise/recipebox/internal/interface/http"
	"github.com/platewise/recipebox/internal/interface/middleware"
)

// UserModule wires account and authentication routes.
// Public: POST /api/users/create, POST /api/users/token, POST /api/users/login,
// POST /api/users/password-reset, POST /api/users/password-reset/confirm.
// Protected: GET/PATCH /api/users/me, POST /api/users/logout.
type UserModule struct {
	Handler  *handlers.UserHandler
	Reset    *handlers.PasswordResetHandler
	Resolver middleware.CurrentUserResolver
	AuthMode string
}

func NewUserModule(h *handlers.UserHandler, reset *handlers.PasswordResetHandler, resolver middleware.CurrentUserResolver, authMode string) *UserModule {
	return &UserModule{Handler: h, Reset: reset, Resolver: resolver, AuthMode: authMode}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	createLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	credentialLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/users/create", createLimiter, m.Handler.Create)
	rg.POST("/users/token", credentialLimiter, m.Handler.Token)
	if m.AuthMode == config.AuthModeSession {
		rg.POST("/users/login", credentialLimiter, m.Handler.Login)
	}
	rg.POST("/users/password-reset", resetLimiter, m.Reset.Init)
	rg.POST("/users/password-reset/confirm", resetLimiter, m.Reset.Confirm)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Resolver))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/users/me", m.Handler.Me)
		auth.PATCH("/users/me", m.Handler.UpdateMe)
		// The profile route accepts GET and PATCH only. Auth runs first, so
		// anonymous callers get 401 rather than 405.
		auth.POST("/users/me", handlers.MethodNotAllowed)
		if m.AuthMode == config.AuthModeSession {
			auth.POST("/users/logout", m.Handler.Logout)
		}
	}
}
