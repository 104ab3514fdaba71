// Package server assembles the HTTP application from its dependencies.
package server

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/config"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/routes"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/store"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/upload"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

type Deps struct {
	DB        *gorm.DB
	PostStore store.PostStore
	Uploads   *upload.Store
	// Google overrides the provider endpoints; nil uses Google's.
	Google *services.GoogleConfig
	// Quiet drops the access log, for tests.
	Quiet bool
}

func New(cfg *config.Config, deps Deps) *fiber.App {
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := services.NewAuthService(deps.DB, tokens)
	postService := services.NewPostService(deps.PostStore)
	authorService := services.NewAuthorService(deps.DB, authService, postService)

	googleCfg := services.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleCallbackURL(),
	}
	if deps.Google != nil {
		googleCfg = *deps.Google
	}
	googleService := services.NewGoogleService(googleCfg, authService, tokens)

	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.UploadMaxBytes) + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	if cfg.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	if !deps.Quiet {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
		}))
	}
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	if deps.Uploads != nil {
		app.Static(upload.PublicPrefix, deps.Uploads.Dir())
	}

	routes.Setup(app, cfg, tokens, authService, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService, deps.Uploads),
		Google:  handlers.NewGoogleHandler(googleService, cfg.FrontendURL),
		Authors: handlers.NewAuthorHandler(authorService, deps.Uploads),
		Posts:   handlers.NewPostHandler(postService, deps.Uploads),
		Comment: handlers.NewCommentHandler(postService),
		Health:  handlers.NewHealthHandler(deps.DB, cfg.PostStore),
	})

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}
