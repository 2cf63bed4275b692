package routes

import (
	"time"

	"github.com/findmyphone/backend/internal/config"
	"github.com/findmyphone/backend/internal/handlers"
	"github.com/findmyphone/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	phoneHandler *handlers.PhoneHandler,
	matchHandler *handlers.MatchHandler,
	chatHandler *handlers.ChatHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Phones — browsing is public, reporting and editing require auth
	api.Get("/phones", phoneHandler.List)
	api.Get("/phones/:id", phoneHandler.Get)
	api.Post("/phones", middleware.JWTProtected(cfg), phoneHandler.Create)
	api.Put("/phones/:id", middleware.JWTProtected(cfg), phoneHandler.Update)
	api.Delete("/phones/:id", middleware.JWTProtected(cfg), phoneHandler.Delete)

	// Matches — always scoped to the caller
	matches := api.Group("/matches", middleware.JWTProtected(cfg))
	matches.Get("/", matchHandler.List)
	matches.Get("/:id", matchHandler.Get)
	matches.Post("/:id/verify", matchHandler.Verify)
	matches.Post("/:id/reject", matchHandler.Reject)

	// Chat
	chats := api.Group("/chats", middleware.JWTProtected(cfg))
	chats.Get("/", chatHandler.List)
	chats.Post("/phone/:phoneId", chatHandler.OpenForPhone)
	chats.Get("/:id", chatHandler.Get)
	chats.Post("/:id/messages", chatHandler.SendMessage)
}
