package handlers

import (
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/upload"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	uploads     *upload.Store
}

func NewAuthHandler(authService *services.AuthService, uploads *upload.Store) *AuthHandler {
	return &AuthHandler{authService: authService, uploads: uploads}
}

// Register accepts JSON or a multipart form with an optional avatar file.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	var avatar string
	if h.uploads != nil {
		var err error
		avatar, err = h.uploads.FromForm(c, "avatar")
		if err != nil {
			return respondError(c, err)
		}
		if avatar != "" {
			req.Avatar = avatar
		}
	}

	author, token, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		discardUpload(c, h.uploads, avatar)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
		Token:   token,
		Message: "Registration successful",
		Author:  author,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	token, _, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.LoginResponse{Token: token, Message: "Login successful"})
}

// Me returns the authenticated author. The password hash is never serialised.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	author, ok := identity.Author(c)
	if !ok {
		return respondError(c, services.ErrUnauthenticated)
	}
	return c.JSON(author)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.ChangePassword(c.UserContext(), p.ID, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated"})
}
