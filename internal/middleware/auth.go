package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthorResolver loads the author a verified token points at.
type AuthorResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*models.Author, error)
}

const tokenLocalsKey = "token"

// AuthRequired rejects the request with 401 unless it carries a valid bearer
// token for an existing author, which is then attached to the request.
func AuthRequired(tokens *services.TokenService, authors AuthorResolver) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:    tokens.Keyfunc,
		ContextKey: tokenLocalsKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			// jwtware does not insist on an expiry; Verify applies the full rules.
			token, _ := c.Locals(tokenLocalsKey).(*jwt.Token)
			if token == nil {
				return unauthorized(c, "Unauthorized: invalid or expired token")
			}
			id, err := tokens.Verify(token.Raw)
			if err != nil {
				return unauthorized(c, "Unauthorized: invalid or expired token")
			}
			author, err := authors.Resolve(c.UserContext(), id)
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					return unauthorized(c, "Unauthorized: author not found")
				}
				slog.Error("author lookup failed", "path", c.Path(), "error", err)
				return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
					Error: true, Message: "Internal server error",
				})
			}
			identity.Attach(c, author)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return unauthorized(c, "Unauthorized: missing bearer token")
			}
			return unauthorized(c, "Unauthorized: invalid or expired token")
		},
	})
}

// OptionalAuth attaches the author when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(tokens *services.TokenService, authors AuthorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}
		id, err := tokens.Verify(raw)
		if err != nil {
			return c.Next()
		}
		author, err := authors.Resolve(c.UserContext(), id)
		if err != nil {
			if !errors.Is(err, services.ErrNotFound) {
				slog.Warn("optional auth lookup failed", "path", c.Path(), "error", err)
			}
			return c.Next()
		}
		identity.Attach(c, author)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
