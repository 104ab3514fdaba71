package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/config"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Google  *handlers.GoogleHandler
	Authors *handlers.AuthorHandler
	Posts   *handlers.PostHandler
	Comment *handlers.CommentHandler
	Health  *handlers.HealthHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	tokens *services.TokenService,
	resolver middleware.AuthorResolver,
	h Handlers,
) {
	api := app.Group("/api")

	// General API rate limiter, per IP
	if cfg.RateLimit > 0 {
		api.Use(perIPLimiter(cfg.RateLimit))
	}

	api.Get("/health", h.Health.Check)

	// Reads are public; OptionalAuth only enriches them with the caller.
	// Writes carry AuthRequired on the individual route so public routes in
	// the same group are never gated.
	optional := middleware.OptionalAuth(tokens, resolver)
	protected := middleware.AuthRequired(tokens, resolver)

	// Auth (stricter limit)
	auth := api.Group("/auth")
	if cfg.AuthRateLimit > 0 {
		auth.Use(perIPLimiter(cfg.AuthRateLimit))
	}
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Get("/google", h.Google.Start)
	auth.Get("/google/callback", h.Google.Callback)
	auth.Get("/me", protected, h.Auth.Me)
	auth.Put("/password", protected, h.Auth.ChangePassword)

	// Authors
	authors := api.Group("/authors")
	authors.Get("/", h.Authors.List)
	authors.Post("/", h.Auth.Register)
	authors.Get("/:id", h.Authors.Get)
	authors.Get("/:id/posts", h.Authors.Posts)
	authors.Put("/:id", protected, h.Authors.Update)
	authors.Patch("/:id/avatar", protected, h.Authors.UpdateAvatar)
	authors.Delete("/:id", optional, middleware.AdminRequired(cfg), h.Authors.Delete)

	// Posts
	posts := api.Group("/posts")
	posts.Get("/", h.Posts.List)
	posts.Get("/:id", optional, h.Posts.Get)
	posts.Post("/", protected, h.Posts.Create)
	posts.Put("/:id", protected, h.Posts.Update)
	posts.Patch("/:id/cover", protected, h.Posts.UpdateCover)
	posts.Delete("/:id", protected, h.Posts.Delete)

	// Comments, embedded in their post
	posts.Get("/:id/comments", h.Comment.List)
	posts.Get("/:id/comments/:commentId", h.Comment.Get)
	posts.Post("/:id/comments", protected, h.Comment.Create)
	posts.Put("/:id/comments/:commentId", protected, h.Comment.Update)
	posts.Delete("/:id/comments/:commentId", protected, h.Comment.Delete)
}

func perIPLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
