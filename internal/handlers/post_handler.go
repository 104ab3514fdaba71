package handlers

import (
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/upload"
	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	posts   *services.PostService
	uploads *upload.Store
}

func NewPostHandler(posts *services.PostService, uploads *upload.Store) *PostHandler {
	return &PostHandler{posts: posts, uploads: uploads}
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	resp, err := h.posts.List(c.UserContext(), services.PostQuery{
		Title: c.Query("title"),
		Page:  pageQuery(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Get is public. When the caller is signed in the permissions block reflects
// what they may do; otherwise it only grants reading.
func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post id")
	}
	p, _ := identity.From(c)
	resp, err := h.posts.Detail(c.UserContext(), p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	var cover string
	if h.uploads != nil {
		cover, err = h.uploads.FromForm(c, "cover")
		if err != nil {
			return respondError(c, err)
		}
		if cover != "" {
			req.Cover = cover
		}
	}

	post, err := h.posts.Create(c.UserContext(), p, &req)
	if err != nil {
		discardUpload(c, h.uploads, cover)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post id")
	}
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	post, err := h.posts.Update(c.UserContext(), p, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) UpdateCover(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post id")
	}
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	// Authorise first so rejected callers never write to the upload dir.
	if err := h.posts.CheckEdit(c.UserContext(), p, id); err != nil {
		return respondError(c, err)
	}

	if h.uploads == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Uploads are disabled")
	}
	cover, err := h.uploads.FromForm(c, "cover")
	if err != nil {
		return respondError(c, err)
	}
	if cover == "" {
		return errorJSON(c, fiber.StatusBadRequest, "cover file is required")
	}

	post, err := h.posts.SetCover(c.UserContext(), p, id, cover)
	if err != nil {
		discardUpload(c, h.uploads, cover)
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post id")
	}
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.posts.Delete(c.UserContext(), p, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Post deleted"})
}
