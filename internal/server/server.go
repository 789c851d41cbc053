// Package server assembles the HTTP application.
package server

import (
	"time"

	"dungji/internal/handlers"
	"dungji/internal/middleware"
	"dungji/internal/models"
	"dungji/internal/repositories"
	"dungji/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators of the application.
type Deps struct {
	DB              *gorm.DB
	Log             *logrus.Logger
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RequestLogging  bool

	// Publisher receives domain events. Nil disables publishing.
	Publisher services.EventPublisher

	// Limiter throttles credential endpoints. Nil disables rate limiting.
	Limiter        middleware.Limiter
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// New wires repositories, services and handlers into a Fiber app.
func New(deps Deps) *fiber.App {
	store := repositories.NewStore(deps.DB)
	log := deps.Log

	categoryService := services.NewCategoryService(store.Categories, log)
	productService := services.NewProductService(store.Products, store.Categories, log)
	userService := services.NewUserService(store.Users, log)
	authService := services.NewAuthService(store.Users, deps.JWTSecret, deps.AccessTokenTTL, deps.RefreshTokenTTL, log)
	groupBuyService := services.NewGroupBuyService(store.GroupBuys, store.Products, store.Users, deps.Publisher, log)
	participationService := services.NewParticipationService(store.Participations, deps.Publisher, log)

	app := fiber.New(fiber.Config{
		AppName:      "dungji",
		ErrorHandler: handlers.ErrorHandler(log),
	})
	app.Use(recover.New())
	if deps.RequestLogging {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	auth := middleware.AuthRequired(authService, log)
	seller := middleware.RequireRole(models.RoleSeller)
	limit := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Limiter != nil {
		limit = middleware.RateLimit(deps.Limiter, "auth", deps.AuthRateLimit, deps.AuthRateWindow, log)
	}

	api := app.Group("/api")
	handlers.NewAuthHandler(authService, userService, log).RegisterRoutes(api, auth, limit)
	handlers.NewCategoryHandler(categoryService, log).RegisterRoutes(api, auth, seller)
	handlers.NewProductHandler(productService, log).RegisterRoutes(api, auth, seller)
	handlers.NewGroupBuyHandler(groupBuyService, log).RegisterRoutes(api, auth)
	handlers.NewParticipationHandler(participationService, log).RegisterRoutes(api, auth)

	return app
}
