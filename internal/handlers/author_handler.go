package handlers

import (
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/upload"
	"github.com/gofiber/fiber/v2"
)

type AuthorHandler struct {
	authors *services.AuthorService
	uploads *upload.Store
}

func NewAuthorHandler(authors *services.AuthorService, uploads *upload.Store) *AuthorHandler {
	return &AuthorHandler{authors: authors, uploads: uploads}
}

func (h *AuthorHandler) List(c *fiber.Ctx) error {
	resp, err := h.authors.List(c.UserContext(), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthorHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid author id")
	}
	author, err := h.authors.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(author)
}

func (h *AuthorHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid author id")
	}
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.UpdateAuthorRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	author, err := h.authors.Update(c.UserContext(), p, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(author)
}

func (h *AuthorHandler) UpdateAvatar(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid author id")
	}
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	// Ownership is checked before the file touches the disk.
	if p.ID != id {
		return respondError(c, services.ErrForbidden)
	}

	if h.uploads == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Uploads are disabled")
	}
	avatar, err := h.uploads.FromForm(c, "avatar")
	if err != nil {
		return respondError(c, err)
	}
	if avatar == "" {
		return errorJSON(c, fiber.StatusBadRequest, "avatar file is required")
	}

	author, err := h.authors.SetAvatar(c.UserContext(), p, id, avatar)
	if err != nil {
		discardUpload(c, h.uploads, avatar)
		return respondError(c, err)
	}
	return c.JSON(author)
}

func (h *AuthorHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid author id")
	}
	if err := h.authors.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Author deleted"})
}

func (h *AuthorHandler) Posts(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid author id")
	}
	resp, err := h.authors.Posts(c.UserContext(), id, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func pageQuery(c *fiber.Ctx) services.Page {
	return services.NewPage(c.QueryInt("page", 1), c.QueryInt("limit", 0))
}
