package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CommentHandler struct {
	posts *services.PostService
}

func NewCommentHandler(posts *services.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post id")
	}
	comments, err := h.posts.Comments(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

func (h *CommentHandler) Get(c *fiber.Ctx) error {
	postID, commentID, ok := commentParams(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post or comment id")
	}
	comment, err := h.posts.Comment(c.UserContext(), postID, commentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	postID, ok := paramID(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post id")
	}
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	comment, err := h.posts.AddComment(c.UserContext(), p, displayName(c), postID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	postID, commentID, ok := commentParams(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post or comment id")
	}
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	comment, err := h.posts.UpdateComment(c.UserContext(), p, postID, commentID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	postID, commentID, ok := commentParams(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid post or comment id")
	}
	p, err := identity.Require(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.posts.DeleteComment(c.UserContext(), p, postID, commentID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Comment deleted"})
}

func commentParams(c *fiber.Ctx) (uuid.UUID, uuid.UUID, bool) {
	postID, ok := paramID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	commentID, ok := paramID(c, "commentId")
	return postID, commentID, ok
}

// displayName is the signed-in author's full name, used when a comment is
// posted without an explicit name.
func displayName(c *fiber.Ctx) string {
	author, ok := identity.Author(c)
	if !ok {
		return ""
	}
	return strings.TrimSpace(author.FirstName + " " + author.LastName)
}
