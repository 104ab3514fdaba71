package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/upload"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// respondError maps a service error to its status. Unclassified errors are
// logged with full detail and reported to the client as a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		return errorJSON(c, fiber.StatusUnauthorized, "Authentication required")
	case errors.Is(err, services.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, capitalize(err.Error()))
	case errors.Is(err, upload.ErrTooLarge):
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, upload.ErrUnsupportedType):
		return errorJSON(c, fiber.StatusUnsupportedMediaType, err.Error())
	}

	attrs := []any{
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"error", err.Error(),
	}
	if p, ok := identity.From(c); ok {
		attrs = append(attrs, "author_id", p.ID.String())
	}
	slog.Error("request failed", attrs...)
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

// discardUpload removes a file saved earlier in a request that then failed.
func discardUpload(c *fiber.Ctx, uploads *upload.Store, fileURL string) {
	if uploads == nil || fileURL == "" {
		return
	}
	if err := uploads.Remove(fileURL); err != nil {
		slog.Warn("failed to discard upload", "request_id", requestID(c), "error", err.Error())
	}
}

func invalidBody(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
}

// paramID parses a UUID route parameter.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
