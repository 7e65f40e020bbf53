package router

import (
	"github.com/platewise/recipebox/internal/application"
	"github.com/platewise/recipebox/internal/container"
	"github.com/platewise/recipebox/internal/domain/repository"
	pginfra "github.com/platewise/recipebox/internal/infrastructure/postgres"
	"github.com/platewise/recipebox/internal/infrastructure/redisstore"
	handlers "github.com/platewise/recipebox/internal/interface/http"
	"github.com/platewise/recipebox/internal/router/modules"
)

// InitModules builds the services from container singletons and registers
// every feature module. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	sessions := redisstore.NewSessionStore(container.GetRedis())
	tokens := redisstore.NewTokenStore(container.GetRedis())

	// A nil *RabbitPublisher must stay a nil interface, or the publish guard
	// in the service would pass and hit a nil receiver.
	var pub application.EmailPublisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	userSvc := application.NewUserService(
		userRepo,
		container.GetResetTokens(),
		pub,
		logger,
		cfg.AppName,
		cfg.ResetPasswordURL,
		cfg.MailSendEnabled,
	)
	authSvc := application.NewAuthService(userRepo, sessions, tokens, logger, cfg.SessionTTL, cfg.RememberMeTTL)

	recipeSvc := application.NewRecipeService(
		pginfra.NewTagRepository(pool),
		pginfra.NewIngredientRepository(pool),
		pginfra.NewRecipeRepository(pool),
		logger,
		repository.AttrOrder(cfg.AttrOrderField),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetES(),
		cfg.ESRecipesIndex,
	)

	userHandler := handlers.NewUserHandler(userSvc, authSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	resetHandler := handlers.NewPasswordResetHandler(userSvc, logger)
	attrHandler := handlers.NewAttrHandler(recipeSvc, logger)
	recipeHandler := handlers.NewRecipeHandler(recipeSvc, logger)

	resolver := container.GetResolver()
	r.Add(modules.NewUserModule(userHandler, resetHandler, resolver, cfg.AuthMode))
	r.Add(modules.NewRecipeModule(attrHandler, recipeHandler, resolver))
}
